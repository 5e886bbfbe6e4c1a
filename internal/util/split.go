package util

import (
	"strconv"
	"strings"
)

// SplitTake splits input on sep and returns the n-th token, or ""
// when the token does not exist. Mirrors the permissive positional
// splits used throughout the vendor rules: never an index error.
func SplitTake(input, sep string, n int) string {
	if n < 0 {
		return ""
	}
	parts := strings.Split(input, sep)
	if n >= len(parts) {
		return ""
	}
	return strings.TrimSpace(parts[n])
}

// SplitAnyTake splits on any of the runes in seps (regexp-free
// equivalent of pandas str.split(r'[-:]')) and returns the n-th token.
func SplitAnyTake(input, seps string, n int) string {
	parts := strings.FieldsFunc(input, func(r rune) bool {
		return strings.ContainsRune(seps, r)
	})
	if n < 0 || n >= len(parts) {
		return ""
	}
	return strings.TrimSpace(parts[n])
}

// ParsePrice parses a vendor price cell. Currency symbols and
// thousands separators appear in some raw feeds; a failed parse
// degrades to nil.
func ParsePrice(input string) *float64 {
	s := strings.TrimSpace(input)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

func StringPtr(v string) *string { return &v }

func FloatPtr(v float64) *float64 { return &v }
