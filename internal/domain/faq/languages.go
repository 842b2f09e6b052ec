package faq

import (
	"fmt"
	"sort"
	"strings"
)

var languageNames = map[string]string{
	"af": "afrikaans",
	"ar": "arabic",
	"bg": "bulgarian",
	"bn": "bengali",
	"ca": "catalan",
	"cs": "czech",
	"da": "danish",
	"de": "german",
	"el": "greek",
	"en": "english",
	"es": "spanish",
	"et": "estonian",
	"fa": "persian",
	"fi": "finnish",
	"fr": "french",
	"gu": "gujarati",
	"he": "hebrew",
	"hi": "hindi",
	"hr": "croatian",
	"hu": "hungarian",
	"id": "indonesian",
	"it": "italian",
	"ja": "japanese",
	"kn": "kannada",
	"ko": "korean",
	"lt": "lithuanian",
	"lv": "latvian",
	"ml": "malayalam",
	"mr": "marathi",
	"ms": "malay",
	"nl": "dutch",
	"no": "norwegian",
	"pa": "punjabi",
	"pl": "polish",
	"pt": "portuguese",
	"ro": "romanian",
	"ru": "russian",
	"sk": "slovak",
	"sl": "slovenian",
	"sr": "serbian",
	"sv": "swedish",
	"sw": "swahili",
	"ta": "tamil",
	"te": "telugu",
	"th": "thai",
	"tr": "turkish",
	"uk": "ukrainian",
	"ur": "urdu",
	"vi": "vietnamese",
	"zh": "chinese",
}

// Languages is the immutable set of languages the service can serve.
type Languages struct {
	primary Language
	byCode  map[string]Language
	ordered []Language
}

// NewLanguages builds the supported set. An empty subset selects the whole table.
func NewLanguages(primary string, subset []string) (*Languages, error) {
	primary = canonicalCode(primary)
	codes := subset
	if len(codes) == 0 {
		codes = make([]string, 0, len(languageNames))
		for code := range languageNames {
			codes = append(codes, code)
		}
	}

	set := &Languages{byCode: make(map[string]Language, len(codes))}
	for _, raw := range codes {
		code := canonicalCode(raw)
		name, ok := languageNames[code]
		if !ok {
			return nil, fmt.Errorf("unknown language code %q", raw)
		}
		if _, dup := set.byCode[code]; dup {
			continue
		}
		lang := Language{Code: code, Name: capitalize(name)}
		set.byCode[code] = lang
		set.ordered = append(set.ordered, lang)
	}
	sort.Slice(set.ordered, func(i, j int) bool { return set.ordered[i].Code < set.ordered[j].Code })

	lang, ok := set.byCode[primary]
	if !ok {
		return nil, fmt.Errorf("primary language %q is not in the supported set", primary)
	}
	set.primary = lang
	return set, nil
}

// Primary returns the language entries are authored in.
func (l *Languages) Primary() Language {
	return l.primary
}

// IsSupported reports whether code is an exact supported code.
func (l *Languages) IsSupported(code string) bool {
	_, ok := l.byCode[code]
	return ok
}

// Lookup resolves a loosely formatted code ("FR", "pt_BR", "de-AT").
func (l *Languages) Lookup(raw string) (Language, bool) {
	code := canonicalCode(raw)
	if lang, ok := l.byCode[code]; ok {
		return lang, true
	}
	if base, _, found := strings.Cut(code, "-"); found {
		lang, ok := l.byCode[base]
		return lang, ok
	}
	return Language{}, false
}

// Normalize maps a request parameter to a supported language, falling back to primary.
func (l *Languages) Normalize(raw string) Language {
	if lang, ok := l.Lookup(raw); ok {
		return lang
	}
	return l.primary
}

// All returns the supported languages ordered by code.
func (l *Languages) All() []Language {
	out := make([]Language, len(l.ordered))
	copy(out, l.ordered)
	return out
}

func canonicalCode(raw string) string {
	code := strings.ToLower(strings.TrimSpace(raw))
	return strings.ReplaceAll(code, "_", "-")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
