// Package validation holds the field-error map shared by the quest validator,
// the event draft and merchandise checks, plus coercion helpers for loosely
// typed form input.
package validation

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

// Errors maps a field name to a human-readable message. An empty map means valid.
type Errors map[string]string

// Add records msg for field unless the field already has a message
func (e Errors) Add(field, msg string) {
	if _, ok := e[field]; !ok {
		e[field] = msg
	}
}

// Has reports whether field failed
func (e Errors) Has(field string) bool {
	_, ok := e[field]
	return ok
}

// Empty reports whether no field failed
func (e Errors) Empty() bool { return len(e) == 0 }

func (e Errors) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Err returns e as an error, or nil when e is empty
func (e Errors) Err() error {
	if e.Empty() {
		return nil
	}
	return e
}

// AsErrors extracts a field-error map from err
func AsErrors(err error) (Errors, bool) {
	var fe Errors
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

var errNotInteger = errors.New("not an integer")

// Blank reports whether v is absent: nil or a whitespace-only string
func Blank(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case *string:
		return t == nil || strings.TrimSpace(*t) == ""
	}
	return false
}

// Int coerces form input to an integer. Strings are parsed in base 10 and
// fractional numbers are rejected.
func Int(v any) (int, error) {
	switch t := v.(type) {
	case string:
		return strconv.Atoi(strings.TrimSpace(t))
	case float64:
		if t != math.Trunc(t) {
			return 0, errNotInteger
		}
	case float32:
		if float64(t) != math.Trunc(float64(t)) {
			return 0, errNotInteger
		}
	case bool:
		return 0, errNotInteger
	}
	return cast.ToIntE(v)
}

// PositiveInt applies the shared "required, numeric, > 0" rule to v. label is
// the human name used in messages. It returns the parsed value and an empty
// message on success.
func PositiveInt(v any, label string) (int, string) {
	if Blank(v) {
		return 0, label + " is required"
	}
	n, err := Int(v)
	if err != nil {
		return 0, label + " must be a number"
	}
	if n <= 0 {
		return 0, label + " must be greater than 0"
	}
	return n, ""
}
