// Package lang resolves stream language codes to human-readable names.
package lang

import (
	"strings"
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Undetermined is the ISO 639-2 code for an unknown language.
const Undetermined = "und"

// Lookup maps ISO 639-1/639-2 codes ("en", "eng", "pt-BR") to language
// names in a display language. Results are memoized.
type Lookup struct {
	namer display.Namer

	mu    sync.RWMutex
	cache map[string]string
}

// New creates a Lookup that names languages in the display language.
func New(displayIn language.Tag) *Lookup {
	return &Lookup{
		namer: display.Languages(displayIn),
		cache: make(map[string]string),
	}
}

// English is a Lookup naming languages in English.
func English() *Lookup {
	return New(language.English)
}

// Label returns the name for code, or false when the code is empty,
// undetermined, or unknown.
func (l *Lookup) Label(code string) (string, bool) {
	code = Normalize(code)
	if code == Undetermined {
		return "", false
	}

	l.mu.RLock()
	name, ok := l.cache[code]
	l.mu.RUnlock()
	if ok {
		return name, name != ""
	}

	name = l.resolve(code)

	l.mu.Lock()
	l.cache[code] = name
	l.mu.Unlock()

	return name, name != ""
}

func (l *Lookup) resolve(code string) string {
	tag, err := language.Parse(code)
	if err != nil {
		return ""
	}
	if base, conf := tag.Base(); conf == language.No || base.String() == Undetermined {
		return ""
	}
	return l.namer.Name(tag)
}

// Normalize lowercases and trims code, mapping empty codes to Undetermined.
func Normalize(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	code = strings.ReplaceAll(code, "_", "-")
	if code == "" {
		return Undetermined
	}
	return code
}
