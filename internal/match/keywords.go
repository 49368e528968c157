package match

import "regexp"

// categoryKeywords pairs a card type with the lowercase keywords that hint
// at it. Declaration order matters twice: categories are scored in this
// order and the first category reaching the top score wins a tie.
type categoryKeywords struct {
	category Category
	keywords []string
}

var cardKeywords = []categoryKeywords{
	{
		category: DriversLicence,
		keywords: []string{
			"driver", "licence", "license", "driving", "dvla",
			"driver's licence", "driver's license", "driving licence",
			"drivers", "drive", "motor", "vehicle", "dl",
			"california", "cardholder", "dmv", "lic", "operator",
		},
	},
	{
		category: GhanaCard,
		keywords: []string{
			"ghana", "nia", "national identification", "ghana card",
			"national identification authority", "republic of ghana",
			"ghanacard", "national id", "citizenship",
		},
	},
	{
		category: VoterID,
		keywords: []string{
			"voter", "electoral", "commission", "voter id", "voter's id",
			"electoral commission", "voter identification", "polling",
			"vote", "election", "elector", "ballot",
		},
	},
}

// wordPatterns holds one compiled whole-word pattern per keyword, built once
// at startup so scoring itself never compiles regexps.
var wordPatterns = compileWordPatterns()

func compileWordPatterns() map[string]*regexp.Regexp {
	patterns := make(map[string]*regexp.Regexp)
	for _, ck := range cardKeywords {
		for _, keyword := range ck.keywords {
			if _, ok := patterns[keyword]; ok {
				continue
			}
			patterns[keyword] = regexp.MustCompile(`\b` + regexp.QuoteMeta(keyword) + `\b`)
		}
	}
	return patterns
}
