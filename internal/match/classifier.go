package match

import "strings"

const (
	exactMatchWeight = 2
	fuzzyMatchWeight = 1
	// Keywords must be longer than this before a plain substring hit is
	// accepted as evidence; short tokens collide with too much OCR noise.
	fuzzyMinKeywordLen = 4
	// A raw score at or above this (two exact hits, or an equivalent mix)
	// earns the confidence boost.
	strongScoreThreshold = 4
	confidenceBoost      = 1.5
	// Any keyword evidence at all guarantees at least this confidence.
	confidenceFloor = 40.0
	// Fraction of a category's keyword table expected to appear on a real
	// card; the base confidence is measured against it.
	expectedKeywordFraction = 0.3
)

// MatchCardType scores the combined OCR text against every category's
// keyword table and returns the winning category with a 0-100 confidence.
//
// Whole-word occurrences count double and report the keyword as-is; for
// keywords longer than four characters a bare substring hit counts single
// and reports the keyword with a trailing "*". Ties go to the category
// declared first, and a zero top score means the text matched nothing at
// all, which is reported as Unknown with zero confidence.
func MatchCardType(text string) Result {
	textLower := strings.ToLower(text)

	type tally struct {
		score int
		found []string
	}
	tallies := make([]tally, len(cardKeywords))

	for i, ck := range cardKeywords {
		for _, keyword := range ck.keywords {
			hits := wordPatterns[keyword].FindAllStringIndex(textLower, -1)
			if len(hits) > 0 {
				tallies[i].score += len(hits) * exactMatchWeight
				tallies[i].found = append(tallies[i].found, keyword)
				continue
			}
			if len(keyword) > fuzzyMinKeywordLen && strings.Contains(textLower, keyword) {
				tallies[i].score += fuzzyMatchWeight
				tallies[i].found = append(tallies[i].found, keyword+"*")
			}
		}
	}

	best := 0
	for i := range tallies {
		if tallies[i].score > tallies[best].score {
			best = i
		}
	}

	if tallies[best].score == 0 {
		return Result{
			Label:         Unknown,
			Confidence:    0,
			ExtractedText: text,
			KeywordsFound: []string{},
		}
	}

	return Result{
		Label:         cardKeywords[best].category,
		Confidence:    confidence(tallies[best].score, len(tallies[best].found), len(cardKeywords[best].keywords)),
		ExtractedText: text,
		KeywordsFound: tallies[best].found,
	}
}

func confidence(score, foundCount, tableSize int) float64 {
	denominator := float64(tableSize) * expectedKeywordFraction
	if denominator < 1 {
		denominator = 1
	}
	c := float64(foundCount) / denominator * 100
	if c > 100 {
		c = 100
	}
	if score >= strongScoreThreshold {
		c *= confidenceBoost
		if c > 100 {
			c = 100
		}
	}
	if foundCount > 0 && c < confidenceFloor {
		c = confidenceFloor
	}
	return c
}
