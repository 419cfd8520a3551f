// Package plate normalizes license plates and detects their country of
// registration. It is a pure function library: no I/O, no configuration,
// safe for concurrent use.
package plate

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Rule matches one country-specific plate format against normalized input.
// Patterns are anchored and only ever see uppercase letters and digits.
type Rule struct {
	CountryCode string
	CountryName string
	Pattern     *regexp.Regexp
	Example     string
}

// rules is scanned in order; the first full match wins. Several countries
// share identical formats (FR/IT, PT/NL, GB older/PL), so the order below
// is load-bearing and must not be rearranged.
var rules = []Rule{
	// Great Britain (DVLA current format)
	{"GB", "Great Britain (DVLA)", regexp.MustCompile(`^[A-Z]{2}[0-9]{2}[A-Z]{3}$`), "AB12CDE"},
	// GB older styles
	{"GB", "Great Britain (Older)", regexp.MustCompile(`^[A-Z][0-9]{1,3}[A-Z]{3}$`), "A123BCD"},
	{"GB", "Great Britain (Older)", regexp.MustCompile(`^[A-Z]{3}[0-9]{1,3}[A-Z]$`), "ABC123D"},

	// Portugal. Listed before Ireland: the IE pattern also matches the old
	// digit-letter-digit Portuguese format (12AA34), and PT takes priority.
	{"PT", "Portugal", regexp.MustCompile(`^[A-Z]{2}[0-9]{2}[A-Z]{2}$`), "AA12BB"},
	{"PT", "Portugal", regexp.MustCompile(`^[0-9]{2}[A-Z]{2}[0-9]{2}$`), "12AA34"},

	// Ireland
	{"IE", "Ireland", regexp.MustCompile(`^[0-9]{2,3}[A-Z]{1,2}[0-9]{1,6}$`), "12D12345"},

	// Spain
	{"ES", "Spain", regexp.MustCompile(`^[0-9]{4}[A-Z]{3}$`), "1234ABC"},

	// France (2009+ format)
	{"FR", "France", regexp.MustCompile(`^[A-Z]{2}[0-9]{3}[A-Z]{2}$`), "AA123AA"},

	// Germany: city code (1-3), series letters (1-2), digits (1-4)
	{"DE", "Germany", regexp.MustCompile(`^[A-Z]{1,3}[A-Z]{1,2}[0-9]{1,4}$`), "BAB1234"},
	{"DE", "Germany", regexp.MustCompile(`^[A-Z]{1,3}[0-9]{1,4}$`), "B1234"},

	// Italy (same structure as France; FR wins on ties by table order)
	{"IT", "Italy", regexp.MustCompile(`^[A-Z]{2}[0-9]{3}[A-Z]{2}$`), "AB123CD"},

	// Netherlands
	{"NL", "Netherlands", regexp.MustCompile(`^[A-Z]{2}[0-9]{2}[A-Z]{2}$`), "AB12CD"},
	{"NL", "Netherlands", regexp.MustCompile(`^[0-9]{2}[A-Z]{3}[0-9]$`), "12ABC3"},
	{"NL", "Netherlands", regexp.MustCompile(`^[0-9][A-Z]{3}[0-9]{2}$`), "1ABC23"},

	// Belgium
	{"BE", "Belgium", regexp.MustCompile(`^[0-9][A-Z]{3}[0-9]{3}$`), "1ABC123"},
	{"BE", "Belgium", regexp.MustCompile(`^[A-Z]{3}[0-9]{3}$`), "ABC123"},

	// Switzerland
	{"CH", "Switzerland", regexp.MustCompile(`^[A-Z]{2}[0-9]{1,6}$`), "ZH123456"},

	// Austria
	{"AT", "Austria", regexp.MustCompile(`^[A-Z]{1,2}[0-9]{1,5}[A-Z]{1,2}$`), "W12345A"},

	// Sweden
	{"SE", "Sweden", regexp.MustCompile(`^[A-Z]{3}[0-9]{2}[A-Z0-9]$`), "ABC12D"},

	// Norway
	{"NO", "Norway", regexp.MustCompile(`^[A-Z]{2}[0-9]{5}$`), "AB12345"},

	// Denmark
	{"DK", "Denmark", regexp.MustCompile(`^[A-Z]{2}[0-9]{5}$`), "AB12345"},

	// Poland
	{"PL", "Poland", regexp.MustCompile(`^[A-Z]{2,3}[A-Z0-9]{4,5}$`), "WA12345"},
}

// supportedCodes lists every country the rule table covers.
var supportedCodes = []string{
	"GB", "IE", "PT", "ES", "FR", "DE", "IT", "NL",
	"BE", "CH", "AT", "SE", "NO", "DK", "PL",
}

// exampleList holds the deduplicated, sorted examples used in
// UnrecognizedFormat errors.
var exampleList = func() []string {
	seen := make(map[string]bool, len(rules))
	examples := make([]string, 0, len(rules))
	for _, r := range rules {
		if !seen[r.Example] {
			seen[r.Example] = true
			examples = append(examples, r.Example)
		}
	}
	sort.Strings(examples)
	return examples
}()

var separators = regexp.MustCompile(`[\s\-._]+`)

// Length bounds applied after normalization.
const (
	minPlateLen = 4
	maxPlateLen = 10
)

// Normalize converts a raw plate to canonical form: outer whitespace
// trimmed, uppercased, and every space, dash, dot and underscore removed.
// Any other character passes through unchanged.
func Normalize(raw string) string {
	normalized := strings.ToUpper(strings.TrimSpace(raw))
	return separators.ReplaceAllString(normalized, "")
}

// DetectCountry reports the country of the first rule whose pattern matches
// the normalized plate in full. ok is false when nothing matches or the
// normalized input is empty.
func DetectCountry(raw string) (code, name string, ok bool) {
	normalized := Normalize(raw)
	if normalized == "" {
		return "", "", false
	}
	for _, r := range rules {
		if r.Pattern.MatchString(normalized) {
			return r.CountryCode, r.CountryName, true
		}
	}
	return "", "", false
}

// ErrorKind classifies why a plate failed validation.
type ErrorKind string

const (
	ErrEmptyPlate         ErrorKind = "empty_plate"
	ErrTooShort           ErrorKind = "too_short"
	ErrTooLong            ErrorKind = "too_long"
	ErrUnrecognizedFormat ErrorKind = "unrecognized_format"
)

// ValidationError describes a rejected plate. For unrecognized formats it
// carries example plates and the supported country codes so callers can
// guide the user toward an accepted format.
type ValidationError struct {
	Kind           ErrorKind
	Message        string
	Examples       []string
	SupportedCodes []string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Result is a successfully validated plate. NormalizedPlate is the only
// form callers should persist (after hashing).
type Result struct {
	NormalizedPlate string
	CountryCode     string
	CountryName     string
}

// Validate normalizes a raw plate, enforces length bounds and detects the
// issuing country. Length bounds are checked before format detection, so an
// oversized plate reports TooLong even if no rule would have matched it.
// Validate never panics; every bad input maps to a *ValidationError.
func Validate(raw string) (Result, error) {
	normalized := Normalize(raw)

	if normalized == "" {
		return Result{}, &ValidationError{
			Kind:    ErrEmptyPlate,
			Message: "license plate cannot be empty",
		}
	}
	if len(normalized) < minPlateLen {
		return Result{}, &ValidationError{
			Kind:    ErrTooShort,
			Message: fmt.Sprintf("license plate is too short (minimum %d characters)", minPlateLen),
		}
	}
	if len(normalized) > maxPlateLen {
		return Result{}, &ValidationError{
			Kind:    ErrTooLong,
			Message: fmt.Sprintf("license plate is too long (maximum %d characters)", maxPlateLen),
		}
	}

	code, name, ok := DetectCountry(normalized)
	if !ok {
		return Result{}, &ValidationError{
			Kind: ErrUnrecognizedFormat,
			Message: fmt.Sprintf(
				"unrecognized license plate format, supported countries: %s, examples: %s",
				strings.Join(supportedCodes, ", "),
				strings.Join(exampleList, ", "),
			),
			Examples:       Examples(),
			SupportedCodes: SupportedCodes(),
		}
	}

	return Result{
		NormalizedPlate: normalized,
		CountryCode:     code,
		CountryName:     name,
	}, nil
}

// IsValid reports whether the plate passes Validate.
func IsValid(raw string) bool {
	_, err := Validate(raw)
	return err == nil
}

// NormalizedIfValid returns the canonical plate when valid.
func NormalizedIfValid(raw string) (string, bool) {
	result, err := Validate(raw)
	if err != nil {
		return "", false
	}
	return result.NormalizedPlate, true
}

// SupportedCodes returns the country codes covered by the rule table.
func SupportedCodes() []string {
	out := make([]string, len(supportedCodes))
	copy(out, supportedCodes)
	return out
}

// Examples returns one example plate per distinct rule format, sorted.
func Examples() []string {
	out := make([]string, len(exampleList))
	copy(out, exampleList)
	return out
}

// Rules returns a copy of the rule table, mostly for diagnostics.
func Rules() []Rule {
	out := make([]Rule, len(rules))
	copy(out, rules)
	return out
}
