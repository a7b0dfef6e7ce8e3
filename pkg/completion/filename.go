package completion

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// AccountSource resolves local account names for "~name" expansion.
// Lookups that fail are expected absence: empty results, never errors.
type AccountSource interface {
	// Names returns all local account names.
	Names() []string

	// HomeDir resolves an account name to its home directory.
	HomeDir(name string) (string, bool)
}

// Filename returns the filename completion provider.
//
// Policy: a leading "~name" with no separator yet completes against account
// names; otherwise the text is treated as a path prefix and matching
// directory entries are listed, directories with a trailing separator.
func Filename(accounts AccountSource) Func {
	if accounts == nil {
		accounts = noAccounts{}
	}
	return func(text string) []Candidate {
		if rest, ok := strings.CutPrefix(text, "~"); ok && !strings.ContainsRune(rest, filepath.Separator) {
			return accountCandidates(accounts, rest)
		}
		return pathCandidates(accounts, text)
	}
}

func accountCandidates(accounts AccountSource, prefix string) []Candidate {
	var out []Candidate
	for _, name := range accounts.Names() {
		if strings.HasPrefix(name, prefix) {
			out = append(out, Candidate{
				Value: "~" + name + string(filepath.Separator),
				Label: "~" + name,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}

func pathCandidates(accounts AccountSource, text string) []Candidate {
	dir, base := filepath.Split(text)

	// The listed directory may need ~name expansion even though the typed
	// text keeps its "~" form.
	realDir := ExpandTilde(accounts, dir)
	if realDir == "" {
		realDir = "."
	}

	entries, err := os.ReadDir(realDir)
	if err != nil {
		return nil
	}

	var out []Candidate
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, base) {
			continue
		}
		if base == "" && strings.HasPrefix(name, ".") {
			continue
		}
		value := dir + name
		label := name
		if entry.IsDir() {
			value += string(filepath.Separator)
			label += string(filepath.Separator)
		}
		out = append(out, Candidate{Value: value, Label: label})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}

// ExpandTilde rewrites a leading "~" or "~name" to the account's home
// directory. Text without a tilde, or naming an unknown account, is returned
// unchanged.
func ExpandTilde(accounts AccountSource, path string) string {
	rest, ok := strings.CutPrefix(path, "~")
	if !ok {
		return path
	}
	sep := strings.IndexRune(rest, filepath.Separator)
	name := rest
	tail := ""
	if sep >= 0 {
		name = rest[:sep]
		tail = rest[sep:]
	}
	if name == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return home + tail
	}
	if accounts == nil {
		return path
	}
	home, found := accounts.HomeDir(name)
	if !found {
		return path
	}
	return home + tail
}

type noAccounts struct{}

func (noAccounts) Names() []string               { return nil }
func (noAccounts) HomeDir(string) (string, bool) { return "", false }
