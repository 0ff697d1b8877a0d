package locale

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"

	"github.com/zombor/palpa-deposit/internal/fault"
)

// Locale is one of the languages the deposit service answers in
type Locale int

const (
	FI Locale = iota
	SV
	EN
)

// Default is the locale the service uses when no locale cookie is set
const Default = FI

var names = [...]string{FI: "FI", SV: "SV", EN: "EN"}

var tags = [...]language.Tag{FI: language.Finnish, SV: language.Swedish, EN: language.English}

// All returns every supported locale in declaration order
func All() []Locale {
	return []Locale{FI, SV, EN}
}

// Valid reports whether l is one of the supported locales
func (l Locale) Valid() bool {
	return l >= FI && l <= EN
}

// String returns the canonical uppercase name, e.g. "SV"
func (l Locale) String() string {
	if !l.Valid() {
		return fmt.Sprintf("Locale(%d)", int(l))
	}
	return names[l]
}

// Tag returns the language tag matching l
func (l Locale) Tag() language.Tag {
	if !l.Valid() {
		return language.Und
	}
	return tags[l]
}

// Resolve turns a loosely typed locale argument into a Locale.
// Accepted inputs are a Locale, any integer kind holding an ordinal, or a
// case-insensitive locale name.
func Resolve(in any) (Locale, error) {
	switch v := in.(type) {
	case Locale:
		return fromOrdinal(int64(v))
	case string:
		return fromName(v)
	}

	if n, ok := asInt(in); ok {
		return fromOrdinal(n)
	}

	return 0, fault.New(fault.TypeMismatch, "Invalid locale argument type. Please use an int, str, or Locale.")
}

func fromOrdinal(n int64) (Locale, error) {
	for _, l := range All() {
		if int64(l) == n {
			return l, nil
		}
	}

	valid := make([]string, 0, len(names))
	for _, l := range All() {
		valid = append(valid, fmt.Sprintf("%d", int(l)))
	}
	return 0, fault.New(fault.InvalidArgument,
		fmt.Sprintf("Invalid locale argument (int). Please use a valid argument: [%s]", strings.Join(valid, ", ")))
}

func fromName(s string) (Locale, error) {
	for _, l := range All() {
		if strings.EqualFold(l.String(), s) {
			return l, nil
		}
	}

	valid := make([]string, 0, len(names))
	for _, l := range All() {
		valid = append(valid, "'"+l.String()+"'")
	}
	return 0, fault.New(fault.InvalidArgument,
		fmt.Sprintf("Invalid locale argument (str). Please use a valid argument: [%s]", strings.Join(valid, ", ")))
}

// asInt reports the value of any integer kind. Unsigned values that do not
// fit in an int64 are reported as -1 so they fail the ordinal check.
func asInt(in any) (int64, bool) {
	switch v := in.(type) {
	case int:
		return int64(v), true
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint:
		return clampUint(uint64(v)), true
	case uint8:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint64:
		return clampUint(v), true
	}
	return 0, false
}

func clampUint(v uint64) int64 {
	if v > 1<<63-1 {
		return -1
	}
	return int64(v)
}

var matcher = language.NewMatcher([]language.Tag{language.English, language.Finnish, language.Swedish})

// FromAcceptLanguage picks the best supported locale for an Accept-Language
// header value. Anything unparsable or unmatched yields EN.
func FromAcceptLanguage(header string) Locale {
	if strings.TrimSpace(header) == "" {
		return EN
	}

	prefs, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(prefs) == 0 {
		return EN
	}

	_, idx, confidence := matcher.Match(prefs...)
	if confidence == language.No {
		return EN
	}

	switch idx {
	case 1:
		return FI
	case 2:
		return SV
	default:
		return EN
	}
}
