package completion

import (
	"bufio"
	"os"
	"os/user"
	"strings"
	"sync"
)

// PasswdSource enumerates local accounts from /etc/passwd. The file is read
// once and cached; account churn during a session is not tracked.
type PasswdSource struct {
	once  sync.Once
	path  string
	names []string
	homes map[string]string
}

// NewPasswdSource returns an AccountSource backed by /etc/passwd.
func NewPasswdSource() *PasswdSource {
	return &PasswdSource{path: "/etc/passwd"}
}

// NewPasswdSourceFromFile reads accounts from an alternate passwd-format
// file, used in tests.
func NewPasswdSourceFromFile(path string) *PasswdSource {
	return &PasswdSource{path: path}
}

// Names returns all local account names.
func (p *PasswdSource) Names() []string {
	p.load()
	return p.names
}

// HomeDir resolves an account name to its home directory. Falls back to
// os/user lookup when the passwd file did not list the account.
func (p *PasswdSource) HomeDir(name string) (string, bool) {
	p.load()
	if home, ok := p.homes[name]; ok {
		return home, true
	}
	u, err := user.Lookup(name)
	if err != nil {
		return "", false
	}
	return u.HomeDir, true
}

func (p *PasswdSource) load() {
	p.once.Do(func() {
		p.homes = make(map[string]string)

		f, err := os.Open(p.path)
		if err != nil {
			return
		}
		defer f.Close()

		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			line := scanner.Text()
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			// name:passwd:uid:gid:gecos:home:shell
			fields := strings.Split(line, ":")
			if len(fields) < 6 {
				continue
			}
			name := fields[0]
			p.names = append(p.names, name)
			p.homes[name] = fields[5]
		}
	})
}

var _ AccountSource = (*PasswdSource)(nil)
