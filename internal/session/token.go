package session

import "sync"

// Token holds the one bearer token of the running session. The zero value
// holds no token.
type Token struct {
	mu    sync.RWMutex
	value string
}

func (t *Token) Get() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.value
}

func (t *Token) Set(value string) {
	t.mu.Lock()
	t.value = value
	t.mu.Unlock()
}
