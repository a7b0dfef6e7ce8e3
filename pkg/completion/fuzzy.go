package completion

import (
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Fuzzy returns a provider that ranks a fixed option set against the typed
// text, best matches first. Useful for command or search-term domains where
// prefix listing is too strict.
func Fuzzy(options []string) Func {
	return func(text string) []Candidate {
		if text == "" {
			out := make([]Candidate, len(options))
			for i, opt := range options {
				out[i] = Candidate{Value: opt, Label: opt}
			}
			return out
		}

		ranks := fuzzy.RankFindFold(text, options)
		sort.Sort(ranks)

		out := make([]Candidate, 0, len(ranks))
		for _, r := range ranks {
			out = append(out, Candidate{Value: r.Target, Label: r.Target})
		}
		return out
	}
}
