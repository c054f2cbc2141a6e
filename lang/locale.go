package lang

import (
	"os"
	"strings"
	"sync"

	"golang.org/x/text/language"
)

// localeEnv lists the POSIX variables consulted for the process locale, in
// order of precedence.
var localeEnv = []string{"LC_ALL", "LC_NUMERIC", "LANG"}

// DefaultLocale returns the process locale, read once from the environment.
// It falls back to American English.
var DefaultLocale = sync.OnceValue(func() language.Tag {
	for _, key := range localeEnv {
		if tag, err := ParseLocale(os.Getenv(key)); err == nil {
			return tag
		}
	}

	return language.AmericanEnglish
})

// ParseLocale parses a BCP 47 tag or a POSIX locale name such as
// "de_DE.UTF-8". The POSIX "C" locale is rejected.
func ParseLocale(s string) (language.Tag, error) {
	if i := strings.IndexAny(s, ".@"); i >= 0 {
		s = s[:i]
	}

	s = strings.ReplaceAll(strings.TrimSpace(s), "_", "-")

	switch s {
	case "", "C", "POSIX":
		return language.Und, ErrInvalidLocale
	}

	tag, err := language.Parse(s)
	if err != nil {
		return language.Und, ErrInvalidLocale.Wrap(err)
	}

	return tag, nil
}

// Locale returns the formatting locale in effect for scope.
func Locale(scope *Scope) language.Tag { return localeOf(scope, scope.options()) }

// localeOf returns the locale bound to [LocaleName] in scope, or the
// configured fallback when the binding is absent or unusable.
func localeOf(scope *Scope, opts *options) language.Tag {
	v, ok := scope.Lookup(LocaleName)
	if !ok {
		return opts.fallbackLocale()
	}

	switch v.kind {
	case KindString:
		if tag, err := ParseLocale(v.data.(string)); err == nil {
			return tag
		}

	case KindExternal:
		if tag, ok := v.data.(language.Tag); ok {
			return tag
		}
	}

	return opts.fallbackLocale()
}
