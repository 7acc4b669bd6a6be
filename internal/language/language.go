package language

import (
	"sort"
	"strings"

	xlang "golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Auto requests language detection by the engine.
const Auto = "auto"

type entry struct {
	code2   string
	code3   string
	alt3    string
	display string
}

var languages = []entry{
	{"ar", "ara", "", "Arabic"},
	{"cs", "ces", "cze", "Czech"},
	{"da", "dan", "", "Danish"},
	{"de", "deu", "ger", "German"},
	{"el", "ell", "gre", "Greek"},
	{"en", "eng", "", "English"},
	{"es", "spa", "", "Spanish"},
	{"fi", "fin", "", "Finnish"},
	{"fr", "fra", "fre", "French"},
	{"he", "heb", "", "Hebrew"},
	{"hi", "hin", "", "Hindi"},
	{"hu", "hun", "", "Hungarian"},
	{"id", "ind", "", "Indonesian"},
	{"it", "ita", "", "Italian"},
	{"ja", "jpn", "", "Japanese"},
	{"ko", "kor", "", "Korean"},
	{"nl", "nld", "dut", "Dutch"},
	{"no", "nor", "", "Norwegian"},
	{"pl", "pol", "", "Polish"},
	{"pt", "por", "", "Portuguese"},
	{"ro", "ron", "rum", "Romanian"},
	{"ru", "rus", "", "Russian"},
	{"sv", "swe", "", "Swedish"},
	{"th", "tha", "", "Thai"},
	{"tr", "tur", "", "Turkish"},
	{"uk", "ukr", "", "Ukrainian"},
	{"vi", "vie", "", "Vietnamese"},
	{"zh", "zho", "chi", "Chinese"},
}

var index = func() map[string]*entry {
	m := make(map[string]*entry, len(languages)*4)
	for i := range languages {
		e := &languages[i]
		m[e.code2] = e
		m[e.code3] = e
		if e.alt3 != "" {
			m[e.alt3] = e
		}
		m[strings.ToLower(e.display)] = e
	}
	return m
}()

func clean(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

// IsAuto reports whether value asks for detection.
func IsAuto(value string) bool {
	v := clean(value)
	return v == "" || v == Auto
}

// ToISO2 converts a recognized code, English name or BCP 47 tag ("pt-BR",
// "en_US") to ISO 639-1. Unknown two-letter codes pass through; anything
// else yields "".
func ToISO2(value string) string {
	v := clean(value)
	if v == "" || v == Auto {
		return ""
	}
	if e, ok := index[v]; ok {
		return e.code2
	}
	if len(v) == 2 {
		return v
	}
	return baseOf(v)
}

func baseOf(v string) string {
	tag, err := xlang.Parse(v)
	if err != nil {
		return ""
	}
	base, conf := tag.Base()
	if conf == xlang.No {
		return ""
	}
	if code := base.String(); len(code) == 2 {
		return code
	}
	return ""
}

// Valid reports whether value is "auto", empty, or resolvable by ToISO2.
func Valid(value string) bool {
	return IsAuto(value) || ToISO2(value) != ""
}

// DisplayName returns a human-readable name, "Auto-detect" for detection, or
// the uppercased code when unknown.
func DisplayName(value string) string {
	if IsAuto(value) {
		return "Auto-detect"
	}
	if e, ok := index[clean(value)]; ok {
		return e.display
	}
	if code := ToISO2(value); code != "" {
		if e, ok := index[code]; ok {
			return e.display
		}
		if tag, err := xlang.Parse(code); err == nil {
			if name := display.English.Languages().Name(tag); name != "" {
				return name
			}
		}
	}
	return strings.ToUpper(strings.TrimSpace(value))
}

// Codes returns the known ISO 639-1 codes, sorted.
func Codes() []string {
	codes := make([]string, 0, len(languages))
	for _, e := range languages {
		codes = append(codes, e.code2)
	}
	sort.Strings(codes)
	return codes
}
