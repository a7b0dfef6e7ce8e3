// Package completion provides completion providers for prompt sessions.
// A provider maps the text typed so far to a ranked list of candidates.
package completion

// Candidate pairs the full replacement value with the short label shown in
// the completion list.
type Candidate struct {
	Value string
	Label string
}

// Func is a completion provider. It is called with the full text typed so
// far and returns candidates in rank order. An empty result means "nothing
// to offer" and is never an error.
type Func func(text string) []Candidate

// Common returns the longest prefix shared by every candidate value, used to
// extend the typed text when completion is triggered.
func Common(cands []Candidate) string {
	if len(cands) == 0 {
		return ""
	}
	prefix := cands[0].Value
	for _, c := range cands[1:] {
		prefix = commonPrefix(prefix, c.Value)
		if prefix == "" {
			break
		}
	}
	return prefix
}

// commonPrefix compares rune-wise so the result never ends mid-sequence
// when values diverge inside a multi-byte rune.
func commonPrefix(a, b string) string {
	ar, br := []rune(a), []rune(b)
	max := len(ar)
	if len(br) < max {
		max = len(br)
	}
	i := 0
	for i < max && ar[i] == br[i] {
		i++
	}
	return string(ar[:i])
}
