package match

import (
	"regexp"
	"strings"
	"unicode"
)

// License number patterns in priority order. Later entries are deliberately
// looser and exist only as fallbacks, so the first match wins.
var licensePatterns = []*regexp.Regexp{
	// DL 123456, LICENSE: ABC123, LIC. X9Y8Z7, ...
	regexp.MustCompile(`(?i)(?:DL|D\.L\.|LICENSE|LIC\.?|NO\.?|#|CDL)\s*[:.]?\s*([A-Z0-9]{6,12})`),
	// ID NO: 123456, CARD # AB12CD
	regexp.MustCompile(`(?i)(?:ID|CARD)\s*(?:NO\.?|#)\s*[:.]?\s*([A-Z0-9]{6,12})`),
	// A1234567
	regexp.MustCompile(`(?i)\b([A-Z]\d{7,10})\b`),
	// Bare run of 8-10 digits, very common on older cards.
	regexp.MustCompile(`\b(\d{8,10})\b`),
}

// ocrDigitFixer corrects the letter/digit confusions Tesseract makes most
// often inside license numbers.
var ocrDigitFixer = strings.NewReplacer(
	"O", "0", "o", "0",
	"I", "1", "l", "1",
)

// Name patterns in priority order. The last resort accepts any two adjacent
// capitalized words, which is why candidates are validated afterwards.
var namePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:NAME|CARDHOLDER|FN|FIRST|LAST)[:.]?\s*([A-Z][a-z]+)\s+([A-Z][a-z]+)`),
	regexp.MustCompile(`(?:NAME)[:.]?\s*([A-Z]+),?\s+([A-Z]+)`),
	regexp.MustCompile(`\b([A-Z][a-z]{2,})\s+([A-Z][a-z]{2,})\b`),
}

// ExtractLicenseNumber pulls a license number out of OCR text, or returns
// the empty string when no pattern matches. The captured candidate is
// normalized for the usual O/0 and I/1 confusions.
func ExtractLicenseNumber(text string) string {
	for _, pattern := range licensePatterns {
		m := pattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		return ocrDigitFixer.Replace(m[1])
	}
	return ""
}

// ExtractName pulls a first and last name out of OCR text. Candidates are
// title-cased and must be alphabetic and at least two letters each; a pair
// failing validation lets the cascade continue to the next pattern. Both
// returns are empty when nothing usable was found.
func ExtractName(text string) (first, last string) {
	for _, pattern := range namePatterns {
		m := pattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		f := titleWord(strings.TrimSpace(m[1]))
		l := titleWord(strings.TrimSpace(m[2]))
		if validName(f) && validName(l) {
			return f, l
		}
	}
	return "", ""
}

func titleWord(w string) string {
	if w == "" {
		return w
	}
	return strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
}

func validName(w string) bool {
	if len(w) < 2 {
		return false
	}
	for _, r := range w {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
