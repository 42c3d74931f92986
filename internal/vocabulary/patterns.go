package vocabulary

import "strings"

// PatternRule adds Terms whenever Match accepts the normalized query. Rules
// catch multi-word phrases, in any order or script, that plain substring
// lookup against Entries would miss.
type PatternRule struct {
	Name  string
	Match func(query string) bool
	Terms []string
}

// Patterns returns the rule table. Callers must not modify it.
func Patterns() []PatternRule { return patterns }

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// allOf matches when the query contains at least one marker from every group.
func allOf(groups ...[]string) func(string) bool {
	for _, g := range groups {
		normalizeAll(g)
	}
	return func(q string) bool {
		for _, g := range groups {
			if !containsAny(q, g) {
				return false
			}
		}
		return true
	}
}

type paperSubject struct {
	id       string
	markers  []string
	native   string
	latin    string
	phonetic string
	english  string
}

type paperNumber struct {
	id         string
	markers    []string
	native     string
	nativeWord string
	latin      string
	latinWord  string
	phonetic   string
}

var paperMarkers = []string{"পত্র", "paper", "potro", "patro"}

var paperSubjects = []paperSubject{
	{"bangla", []string{"বাংলা", "bangla", "bengali"}, "বাংলা", "bangla", "bangla", "bengali"},
	{"english", []string{"ইংরেজি", "ইংরেজী", "english", "ingreji"}, "ইংরেজি", "english", "ingreji", "english"},
	{"physics", []string{"পদার্থ", "physics", "podartho"}, "পদার্থবিজ্ঞান", "physics", "podartho biggan", "physics"},
	{"chemistry", []string{"রসায়ন", "chemistry", "chem", "roshayon"}, "রসায়ন", "chemistry", "roshayon", "chemistry"},
	{"biology", []string{"জীববিজ্ঞান", "জীব বিজ্ঞান", "biology", "jibbiggan"}, "জীববিজ্ঞান", "biology", "jibbiggan", "biology"},
	{"higher_math", []string{"উচ্চতর গণিত", "higher math", "h.math", "uchchotor gonit"}, "উচ্চতর গণিত", "higher math", "uchchotor gonit", "higher mathematics"},
}

var paperNumbers = []paperNumber{
	{"1st", []string{"১ম", "প্রথম", "1st", "first", "prothom"}, "১ম", "প্রথম", "1st", "first", "prothom"},
	{"2nd", []string{"২য়", "দ্বিতীয়", "2nd", "second", "dwitiyo", "ditio"}, "২য়", "দ্বিতীয়", "2nd", "second", "dwitiyo"},
}

func subjectPaperRules() []PatternRule {
	rules := make([]PatternRule, 0, len(paperSubjects)*len(paperNumbers))
	for _, s := range paperSubjects {
		for _, n := range paperNumbers {
			rules = append(rules, PatternRule{
				Name:  s.id + "_" + n.id + "_paper",
				Match: allOf(s.markers, n.markers, paperMarkers),
				Terms: []string{
					s.native + " " + n.native + " পত্র",
					s.native + " " + n.nativeWord + " পত্র",
					s.latin + " " + n.latin + " paper",
					s.latin + " " + n.latinWord + " paper",
					s.phonetic + " " + n.phonetic + " potro",
					s.english + " " + n.latinWord + " paper",
				},
			})
		}
	}
	return rules
}

var patterns = append(subjectPaperRules(),
	PatternRule{
		Name:  "math_chapter",
		Match: allOf([]string{"গণিত", "math", "gonit"}, []string{"অধ্যায়", "chapter", "oddhay"}),
		Terms: []string{"গণিত অধ্যায়", "math chapter", "mathematics chapter", "gonit oddhay"},
	},
	PatternRule{
		Name:  "ssc_board_question",
		Match: allOf([]string{"ssc", "এসএসসি", "মাধ্যমিক"}, []string{"প্রশ্ন", "question", "proshno"}),
		Terms: []string{"ssc board question", "এসএসসি বোর্ড প্রশ্ন", "ssc question", "ssc proshno"},
	},
	PatternRule{
		Name:  "hsc_board_question",
		Match: allOf([]string{"hsc", "এইচএসসি", "উচ্চ মাধ্যমিক"}, []string{"প্রশ্ন", "question", "proshno"}),
		Terms: []string{"hsc board question", "এইচএসসি বোর্ড প্রশ্ন", "hsc question", "hsc proshno"},
	},
	PatternRule{
		Name:  "creative_question",
		Match: allOf([]string{"সৃজনশীল", "creative", "srijonshil"}, []string{"প্রশ্ন", "question", "proshno"}),
		Terms: []string{"সৃজনশীল প্রশ্ন", "creative question", "srijonshil proshno", "cq"},
	},
)
