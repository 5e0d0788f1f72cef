// Package phone turns user-supplied digit strings into dialable E.164-like
// numbers, using the account's verified caller IDs to recover missing
// country codes.
package phone

import (
	"regexp"
	"strings"
)

// Resolution records how a candidate became dialable.
type Resolution string

const (
	// ResolutionPassthrough: candidate arrived fully qualified (+ and >= 11 chars).
	ResolutionPassthrough Resolution = "passthrough"
	// ResolutionVerified: country prefix adopted from a verified number with
	// the same last 10 digits.
	ResolutionVerified Resolution = "verified-match"
	// ResolutionDefaulted: no verified suffix matched; +1 assumed.
	ResolutionDefaulted Resolution = "defaulted"
)

// Normalized is a dialable number plus how it was resolved.
type Normalized struct {
	Number     string     `json:"number"`
	Raw        string     `json:"raw"`
	Resolution Resolution `json:"resolution"`
}

// Dropped is a candidate excluded from dialing, with the reason kept for
// reporting.
type Dropped struct {
	Raw    string `json:"raw"`
	Reason string `json:"reason"`
}

var (
	splitRE    = regexp.MustCompile(`[,\n\r]+`)
	nonDialRE  = regexp.MustCompile(`[^\d+]+`)
	nonDigitRE = regexp.MustCompile(`\D`)
)

// ParseCandidates splits raw text sources (comma or newline separated) into
// an ordered, first-seen-deduplicated candidate list. Sources are merged in
// the order given. Pure whitespace tokens are dropped.
func ParseCandidates(sources ...string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, src := range sources {
		for _, tok := range splitRE.Split(src, -1) {
			tok = strings.TrimSpace(tok)
			if tok == "" {
				continue
			}
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			out = append(out, tok)
		}
	}
	return out
}

// clean keeps digits and, when the candidate starts with one, a single
// leading plus.
func clean(raw string) string {
	s := nonDialRE.ReplaceAllString(strings.TrimSpace(raw), "")
	if s == "" {
		return s
	}
	plus := strings.HasPrefix(s, "+")
	s = nonDigitRE.ReplaceAllString(s, "")
	if plus {
		s = "+" + s
	}
	return s
}

// NormalizeOne resolves a single candidate against the verified set.
//
// A candidate with a leading + and at least 11 characters is fully
// qualified and passes through unchanged. Anything else is treated as a
// bare subscriber number: its last 10 digits are matched against the last
// 10 digits of each verified number in order, and the first match donates
// its country prefix. Without a match the number defaults to +1. A short
// +-prefixed candidate is not fully qualified; it loses the + and runs the
// same suffix logic.
func NormalizeOne(raw string, verified []string) (Normalized, *Dropped) {
	s := clean(raw)
	if s == "" || s == "+" {
		return Normalized{}, &Dropped{Raw: raw, Reason: "no digits"}
	}

	if strings.HasPrefix(s, "+") && len(s) >= 11 {
		return Normalized{Number: s, Raw: raw, Resolution: ResolutionPassthrough}, nil
	}

	digits := strings.TrimPrefix(s, "+")
	if len(digits) < 10 {
		return Normalized{}, &Dropped{Raw: raw, Reason: "fewer than 10 digits"}
	}

	key := digits[len(digits)-10:]
	for _, v := range verified {
		vc := clean(v)
		vd := strings.TrimPrefix(vc, "+")
		if len(vd) < 10 {
			continue
		}
		if vd[len(vd)-10:] == key {
			// first match wins; verified order is provider-assigned
			return Normalized{
				Number:     vc[:len(vc)-10] + key,
				Raw:        raw,
				Resolution: ResolutionVerified,
			}, nil
		}
	}

	return Normalized{Number: "+1" + key, Raw: raw, Resolution: ResolutionDefaulted}, nil
}

// Normalize resolves every candidate, preserving input order. It is a pure
// function of (candidates, verified).
func Normalize(candidates, verified []string) ([]Normalized, []Dropped) {
	var kept []Normalized
	var dropped []Dropped
	for _, c := range candidates {
		n, d := NormalizeOne(c, verified)
		if d != nil {
			dropped = append(dropped, *d)
			continue
		}
		kept = append(kept, n)
	}
	return kept, dropped
}

// Numbers projects just the dialable strings, in order.
func Numbers(ns []Normalized) []string {
	out := make([]string, 0, len(ns))
	for _, n := range ns {
		out = append(out, n.Number)
	}
	return out
}
