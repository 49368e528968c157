package match

// Category is one of the fixed document types the matcher can assign.
type Category string

const (
	DriversLicence Category = "Drivers Licence"
	GhanaCard      Category = "Ghana Card"
	VoterID        Category = "Voter ID"
	Unknown        Category = "Unknown"
)

// Result holds the outcome of classifying one ID card image.
//
// KeywordsFound entries ending in "*" were matched as plain substrings
// rather than whole words. LicenseNumber, FirstName and LastName are only
// populated for a Drivers Licence match, and stay empty when the
// corresponding pattern cascade found nothing.
type Result struct {
	Label         Category `json:"label"`
	Confidence    float64  `json:"confidence"`
	ExtractedText string   `json:"extracted_text"`
	KeywordsFound []string `json:"keywords_found"`
	LicenseNumber string   `json:"license_number,omitempty"`
	FirstName     string   `json:"first_name,omitempty"`
	LastName      string   `json:"last_name,omitempty"`
}
