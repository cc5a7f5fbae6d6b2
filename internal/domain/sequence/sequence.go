// Package sequence produces the human-readable external identifiers used
// across the back office. Identifiers are derived from what already exists in
// the store (a count or a numeric max), so allocation is optimistic: callers
// compute a candidate, attempt the insert, and recompute on a duplicate-key
// conflict.
package sequence

import (
	"strconv"
	"strings"
	"time"
	"unicode"
)

// orderDateLayout renders the day-month-year prefix of an order reference.
const orderDateLayout = "02012006"

// orderInfix separates the date prefix from the daily sequence number.
const orderInfix = "OR"

// OrderRefPrefix returns the date prefix shared by all orders created on the
// given day. The daily sequence restarts with every new prefix, so order
// references must never be parsed as a monotonic sequence across days.
func OrderRefPrefix(t time.Time) string {
	return t.Format(orderDateLayout) + orderInfix
}

// OrderRef builds an order reference from the creation time and the number of
// orders already carrying the same date prefix.
func OrderRef(t time.Time, existing int64) string {
	return OrderRefPrefix(t) + strconv.FormatInt(existing+1, 10)
}

// CustomerRefPrefix builds the natural-key prefix of a customer reference:
// two-letter state code, locality digits, and the display name with
// whitespace removed. All normalization of these free-text inputs happens
// here and nowhere else; references are not renormalized if the rules change.
func CustomerRefPrefix(state, pincode, town, name string) string {
	return normalizeState(state) + normalizeLocality(pincode, town) + normalizeName(name)
}

// CustomerRef appends a two-digit sequence number to the prefix, based on how
// many customers already share it.
func CustomerRef(state, pincode, town, name string, existing int64) string {
	n := existing + 1
	suffix := strconv.FormatInt(n, 10)
	if n < 10 {
		suffix = "0" + suffix
	}
	return CustomerRefPrefix(state, pincode, town, name) + suffix
}

// ProductRef returns the next product reference given the highest numeric
// reference currently in the catalog. Max-based allocation means references
// are never reused after a deletion.
func ProductRef(maxExisting int64) string {
	return strconv.FormatInt(maxExisting+1, 10)
}

func normalizeState(state string) string {
	s := strings.ToUpper(strings.TrimSpace(state))
	if s == "" {
		return "NA"
	}
	// Truncate by rune so multi-byte state names stay valid UTF-8.
	if r := []rune(s); len(r) > 2 {
		return string(r[:2])
	}
	return s
}

// normalizeLocality prefers the pincode, falls back to the town text, then to
// a six-zero placeholder.
func normalizeLocality(pincode, town string) string {
	if p := stripWhitespace(pincode); p != "" {
		return p
	}
	if t := stripWhitespace(town); t != "" {
		return t
	}
	return "000000"
}

func normalizeName(name string) string {
	n := stripWhitespace(name)
	if n == "" {
		return "Unknown"
	}
	return n
}

func stripWhitespace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
