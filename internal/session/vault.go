package session

import (
	"errors"
	"sync"
)

// ErrNoCredentials is returned by Vault.Credentials before any password
// login succeeded in this process.
var ErrNoCredentials = errors.New("no stored credentials")

// Credentials is an email/password pair.
type Credentials struct {
	Email    string
	Password string
}

// Vault keeps the credentials of the last successful password login so a
// biometric unlock can reuse them. It lives only in memory.
type Vault struct {
	mu    sync.Mutex
	creds *Credentials
}

func (v *Vault) Remember(c Credentials) {
	v.mu.Lock()
	v.creds = &c
	v.mu.Unlock()
}

func (v *Vault) Credentials() (Credentials, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.creds == nil {
		return Credentials{}, ErrNoCredentials
	}
	return *v.creds, nil
}

func (v *Vault) Forget() {
	v.mu.Lock()
	v.creds = nil
	v.mu.Unlock()
}
