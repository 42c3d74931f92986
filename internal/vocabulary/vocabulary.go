// Package vocabulary holds the static educational vocabulary used to widen
// search recall: subjects, class levels, paper numbers, exam boards and
// content kinds, each with native-script, Latin, phonetic and synonym forms.
package vocabulary

import (
	"fmt"
	"strings"

	"github.com/pathshala/pathshala/pkg/utils"
)

// Entry maps one canonical concept to every way students write it.
type Entry struct {
	ID       string
	Native   []string
	Latin    []string
	Phonetic []string
	Synonyms []string
}

// Terms returns the union of the entry's four lists.
func (e Entry) Terms() []string {
	out := make([]string, 0, len(e.Native)+len(e.Latin)+len(e.Phonetic)+len(e.Synonyms))
	out = append(out, e.Native...)
	out = append(out, e.Latin...)
	out = append(out, e.Phonetic...)
	return append(out, e.Synonyms...)
}

// Matches reports whether query contains any of the entry's terms.
// query must already be normalized with Normalize.
func (e Entry) Matches(query string) bool {
	if query == "" {
		return false
	}
	for _, t := range e.Terms() {
		if strings.Contains(query, t) {
			return true
		}
	}
	return false
}

// Normalize trims and lower-cases s and brings it to NFC, the same form
// stored record text is kept in.
func Normalize(s string) string {
	return utils.NFC(strings.ToLower(strings.TrimSpace(s)))
}

// Entries returns the vocabulary table. Callers must not modify it.
func Entries() []Entry { return entries }

// Validate checks the table invariants: unique IDs, no empty list and every
// term already lower-cased, trimmed and NFC.
func Validate(list []Entry) error {
	seen := make(map[string]bool, len(list))
	for _, e := range list {
		if e.ID == "" {
			return fmt.Errorf("vocabulary entry with empty id")
		}
		if seen[e.ID] {
			return fmt.Errorf("duplicate vocabulary id %q", e.ID)
		}
		seen[e.ID] = true
		lists := map[string][]string{"native": e.Native, "latin": e.Latin, "phonetic": e.Phonetic, "synonyms": e.Synonyms}
		for name, terms := range lists {
			if len(terms) == 0 {
				return fmt.Errorf("vocabulary entry %q has empty %s list", e.ID, name)
			}
			for _, t := range terms {
				if t == "" || Normalize(t) != t {
					return fmt.Errorf("vocabulary entry %q: %s term %q is not normalized", e.ID, name, t)
				}
			}
		}
	}
	return nil
}

func normalizeAll(terms []string) []string {
	for i, t := range terms {
		terms[i] = Normalize(t)
	}
	return terms
}

func init() {
	for i := range entries {
		e := &entries[i]
		normalizeAll(e.Native)
		normalizeAll(e.Latin)
		normalizeAll(e.Phonetic)
		normalizeAll(e.Synonyms)
	}
	for i := range patterns {
		normalizeAll(patterns[i].Terms)
	}
}

var entries = []Entry{
	// Subjects.
	{
		ID:       "mathematics",
		Native:   []string{"গণিত", "গনিত", "ম্যাথ", "অঙ্ক"},
		Latin:    []string{"math", "maths", "mathematics"},
		Phonetic: []string{"gonit", "gonito", "ganit"},
		Synonyms: []string{"arithmetic", "algebra", "geometry", "পাটিগণিত", "বীজগণিত", "জ্যামিতি"},
	},
	{
		ID:       "higher_math",
		Native:   []string{"উচ্চতর গণিত"},
		Latin:    []string{"higher math", "higher mathematics"},
		Phonetic: []string{"uchchotor gonit", "uccotor gonit"},
		Synonyms: []string{"h.math", "hmath"},
	},
	{
		ID:       "physics",
		Native:   []string{"পদার্থবিজ্ঞান", "পদার্থবিদ্যা", "পদার্থ বিজ্ঞান"},
		Latin:    []string{"physics"},
		Phonetic: []string{"podartho", "podartho biggan", "padartha bigyan"},
		Synonyms: []string{"physical science"},
	},
	{
		ID:       "chemistry",
		Native:   []string{"রসায়ন", "রসায়ন বিজ্ঞান"},
		Latin:    []string{"chemistry", "chem"},
		Phonetic: []string{"roshayon", "rasayan"},
		Synonyms: []string{"chemical science"},
	},
	{
		ID:       "biology",
		Native:   []string{"জীববিজ্ঞান", "জীব বিজ্ঞান"},
		Latin:    []string{"biology"},
		Phonetic: []string{"jibbiggan", "jib biggan", "jeebbigyan"},
		Synonyms: []string{"life science", "botany", "zoology", "উদ্ভিদবিজ্ঞান", "প্রাণিবিজ্ঞান"},
	},
	{
		ID:       "bangla",
		Native:   []string{"বাংলা", "বাঙলা"},
		Latin:    []string{"bangla", "bengali"},
		Phonetic: []string{"bangala", "banglaa"},
		Synonyms: []string{"bangla literature", "bangla grammar", "বাংলা সাহিত্য", "বাংলা ব্যাকরণ"},
	},
	{
		ID:       "english",
		Native:   []string{"ইংরেজি", "ইংরেজী", "ইংলিশ"},
		Latin:    []string{"english"},
		Phonetic: []string{"ingreji", "ingriji", "engreji"},
		Synonyms: []string{"english grammar", "english literature"},
	},
	{
		ID:       "ict",
		Native:   []string{"তথ্য ও যোগাযোগ প্রযুক্তি", "আইসিটি"},
		Latin:    []string{"ict", "information technology", "information and communication technology"},
		Phonetic: []string{"tottho projukti", "totthyo o jogajog projukti"},
		Synonyms: []string{"computer", "কম্পিউটার", "programming"},
	},
	{
		ID:       "general_science",
		Native:   []string{"সাধারণ বিজ্ঞান", "বিজ্ঞান"},
		Latin:    []string{"general science", "science"},
		Phonetic: []string{"biggan", "bigyan"},
		Synonyms: []string{"সাধারন বিজ্ঞান"},
	},
	{
		ID:       "accounting",
		Native:   []string{"হিসাববিজ্ঞান", "হিসাব বিজ্ঞান"},
		Latin:    []string{"accounting", "accountancy"},
		Phonetic: []string{"hishab biggan", "hisab bigyan"},
		Synonyms: []string{"bookkeeping"},
	},
	{
		ID:       "economics",
		Native:   []string{"অর্থনীতি"},
		Latin:    []string{"economics"},
		Phonetic: []string{"orthoniti", "arthaniti"},
		Synonyms: []string{"economy"},
	},
	{
		ID:       "religion",
		Native:   []string{"ধর্ম", "ইসলাম শিক্ষা", "হিন্দু ধর্ম"},
		Latin:    []string{"religion", "religious studies", "islamic studies"},
		Phonetic: []string{"dhormo", "islam shikkha"},
		Synonyms: []string{"ethics", "নৈতিক শিক্ষা"},
	},
	{
		ID:       "bgs",
		Native:   []string{"বাংলাদেশ ও বিশ্বপরিচয়"},
		Latin:    []string{"bangladesh and global studies", "bgs"},
		Phonetic: []string{"bangladesh o bishwoporichoy"},
		Synonyms: []string{"social science", "সমাজ বিজ্ঞান"},
	},
	{
		ID:       "geography",
		Native:   []string{"ভূগোল"},
		Latin:    []string{"geography"},
		Phonetic: []string{"bhugol", "vugol"},
		Synonyms: []string{"earth science", "environment"},
	},
	{
		ID:       "history",
		Native:   []string{"ইতিহাস"},
		Latin:    []string{"history"},
		Phonetic: []string{"itihash", "itihas"},
		Synonyms: []string{"civilization"},
	},

	// Class levels.
	{
		ID:       "class_6",
		Native:   []string{"ষষ্ঠ শ্রেণি", "৬ষ্ঠ শ্রেণি", "ষষ্ঠ শ্রেণী"},
		Latin:    []string{"class 6", "class six", "grade 6"},
		Phonetic: []string{"shoshtho shreni", "sasto shreni"},
		Synonyms: []string{"6th grade", "sixth grade"},
	},
	{
		ID:       "class_7",
		Native:   []string{"সপ্তম শ্রেণি", "৭ম শ্রেণি", "সপ্তম শ্রেণী"},
		Latin:    []string{"class 7", "class seven", "grade 7"},
		Phonetic: []string{"shoptom shreni", "saptam shreni"},
		Synonyms: []string{"7th grade", "seventh grade"},
	},
	{
		ID:       "class_8",
		Native:   []string{"অষ্টম শ্রেণি", "৮ম শ্রেণি", "অষ্টম শ্রেণী"},
		Latin:    []string{"class 8", "class eight", "grade 8"},
		Phonetic: []string{"oshtom shreni", "astam shreni"},
		Synonyms: []string{"8th grade", "eighth grade", "jsc"},
	},
	{
		ID:       "class_9_10",
		Native:   []string{"নবম শ্রেণি", "দশম শ্রেণি", "নবম-দশম শ্রেণি"},
		Latin:    []string{"class 9", "class 10", "class nine", "class ten", "class 9-10"},
		Phonetic: []string{"nobom shreni", "doshom shreni"},
		Synonyms: []string{"9th grade", "10th grade"},
	},
	{
		ID:       "ssc",
		Native:   []string{"এসএসসি", "মাধ্যমিক"},
		Latin:    []string{"ssc", "secondary school certificate"},
		Phonetic: []string{"madhyamik", "maddhomik"},
		Synonyms: []string{"dakhil", "দাখিল"},
	},
	{
		ID:       "hsc",
		Native:   []string{"এইচএসসি", "উচ্চ মাধ্যমিক"},
		Latin:    []string{"hsc", "higher secondary certificate"},
		Phonetic: []string{"uchcho madhyamik", "ucchomadhyomik"},
		Synonyms: []string{"alim", "আলিম", "class 11", "class 12", "intermediate"},
	},

	// Paper numbers.
	{
		ID:       "first_paper",
		Native:   []string{"১ম পত্র", "প্রথম পত্র"},
		Latin:    []string{"1st paper", "first paper", "paper 1", "paper one"},
		Phonetic: []string{"prothom potro", "prothom patro"},
		Synonyms: []string{"part 1", "part one"},
	},
	{
		ID:       "second_paper",
		Native:   []string{"২য় পত্র", "দ্বিতীয় পত্র"},
		Latin:    []string{"2nd paper", "second paper", "paper 2", "paper two"},
		Phonetic: []string{"dwitiyo potro", "ditio potro"},
		Synonyms: []string{"part 2", "part two"},
	},

	// Exam boards.
	{
		ID:       "board_dhaka",
		Native:   []string{"ঢাকা বোর্ড", "ঢাকা"},
		Latin:    []string{"dhaka board", "dhaka"},
		Phonetic: []string{"dacca"},
		Synonyms: []string{"dhaka education board"},
	},
	{
		ID:       "board_rajshahi",
		Native:   []string{"রাজশাহী বোর্ড", "রাজশাহী"},
		Latin:    []string{"rajshahi board", "rajshahi"},
		Phonetic: []string{"rajshai"},
		Synonyms: []string{"rajshahi education board"},
	},
	{
		ID:       "board_chittagong",
		Native:   []string{"চট্টগ্রাম বোর্ড", "চট্টগ্রাম"},
		Latin:    []string{"chittagong board", "chittagong", "chattogram"},
		Phonetic: []string{"chottogram"},
		Synonyms: []string{"ctg board"},
	},
	{
		ID:       "board_comilla",
		Native:   []string{"কুমিল্লা বোর্ড", "কুমিল্লা"},
		Latin:    []string{"comilla board", "comilla", "cumilla"},
		Phonetic: []string{"kumilla"},
		Synonyms: []string{"comilla education board"},
	},
	{
		ID:       "board_jessore",
		Native:   []string{"যশোর বোর্ড", "যশোর"},
		Latin:    []string{"jessore board", "jessore", "jashore"},
		Phonetic: []string{"joshor"},
		Synonyms: []string{"jessore education board"},
	},
	{
		ID:       "board_barisal",
		Native:   []string{"বরিশাল বোর্ড", "বরিশাল"},
		Latin:    []string{"barisal board", "barisal", "barishal"},
		Phonetic: []string{"borishal"},
		Synonyms: []string{"barisal education board"},
	},
	{
		ID:       "board_sylhet",
		Native:   []string{"সিলেট বোর্ড", "সিলেট"},
		Latin:    []string{"sylhet board", "sylhet"},
		Phonetic: []string{"silet"},
		Synonyms: []string{"sylhet education board"},
	},
	{
		ID:       "board_dinajpur",
		Native:   []string{"দিনাজপুর বোর্ড", "দিনাজপুর"},
		Latin:    []string{"dinajpur board", "dinajpur"},
		Phonetic: []string{"dinajpore"},
		Synonyms: []string{"dinajpur education board"},
	},
	{
		ID:       "board_mymensingh",
		Native:   []string{"ময়মনসিংহ বোর্ড", "ময়মনসিংহ"},
		Latin:    []string{"mymensingh board", "mymensingh"},
		Phonetic: []string{"moimonsingho", "maimansingh"},
		Synonyms: []string{"mymensingh education board"},
	},
	{
		ID:       "board_madrasah",
		Native:   []string{"মাদ্রাসা বোর্ড", "মাদ্রাসা"},
		Latin:    []string{"madrasah board", "madrasah", "madrasa"},
		Phonetic: []string{"madrasha"},
		Synonyms: []string{"madrasah education board"},
	},
	{
		ID:       "board_technical",
		Native:   []string{"কারিগরি বোর্ড", "কারিগরি"},
		Latin:    []string{"technical board", "technical education board"},
		Phonetic: []string{"karigori"},
		Synonyms: []string{"vocational"},
	},

	// Content kinds.
	{
		ID:       "mcq",
		Native:   []string{"বহুনির্বাচনি", "বহুনির্বাচনী", "এমসিকিউ"},
		Latin:    []string{"mcq", "multiple choice"},
		Phonetic: []string{"bohunirbachoni"},
		Synonyms: []string{"objective question", "quiz"},
	},
	{
		ID:       "board_question",
		Native:   []string{"বোর্ড প্রশ্ন", "বোর্ড পরীক্ষার প্রশ্ন"},
		Latin:    []string{"board question", "board exam"},
		Phonetic: []string{"board proshno"},
		Synonyms: []string{"previous year question", "question paper", "past paper"},
	},
	{
		ID:       "textbook",
		Native:   []string{"পাঠ্যবই", "পাঠ্য বই"},
		Latin:    []string{"textbook", "text book"},
		Phonetic: []string{"pathyoboi", "pattho boi"},
		Synonyms: []string{"nctb book", "nctb"},
	},
}
