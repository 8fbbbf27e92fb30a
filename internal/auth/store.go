package auth

import (
	"crypto/subtle"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// credential is one entry of the static users file.
type credential struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// usersFile is the top-level shape of users.yaml.
type usersFile struct {
	Users []credential `yaml:"users"`
}

// Store holds the static credential list for /login. It is read once
// at startup and never reloaded.
type Store struct {
	users []credential
}

// LoadStore reads and parses the users file. A missing file yields an
// empty store (every login is rejected), not a startup failure.
func LoadStore(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Store{}, nil
		}
		return nil, fmt.Errorf("failed to read users file: %w", err)
	}

	var f usersFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse users file: %w", err)
	}

	return &Store{users: f.Users}, nil
}

// Verify reports whether the username/password pair matches a stored
// credential. Comparison is constant-time per entry.
func (s *Store) Verify(username, password string) bool {
	ok := false
	for _, u := range s.users {
		userMatch := subtle.ConstantTimeCompare([]byte(u.Username), []byte(username)) == 1
		passMatch := subtle.ConstantTimeCompare([]byte(u.Password), []byte(password)) == 1
		if userMatch && passMatch {
			ok = true
		}
	}
	return ok
}

// Count returns the number of loaded credentials.
func (s *Store) Count() int {
	return len(s.users)
}
