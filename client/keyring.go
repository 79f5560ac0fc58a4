package client

import (
	"crypto/rsa"
	"sync"
	"time"

	"cipherchat/crypto"
	"cipherchat/errors"
)

// pendingRequest is the single wait handle shared by every send that is
// waiting on the same target's key. done is closed exactly once, when the
// request is released (key arrived or deadline hit).
type pendingRequest struct {
	done chan struct{}
}

// Keyring caches resolved public keys and coalesces concurrent fetches.
//
// Cached keys live for the whole process: there is no expiry and no
// refresh when the remote party re-logs-in with a new key pair, so a
// stale key can keep encrypting undetected. Known gap, kept as-is.
type Keyring struct {
	mu      sync.Mutex
	keys    map[string]*rsa.PublicKey
	pending map[string]*pendingRequest
	timeout time.Duration
}

func NewKeyring(timeout time.Duration) *Keyring {
	return &Keyring{
		keys:    make(map[string]*rsa.PublicKey),
		pending: make(map[string]*pendingRequest),
		timeout: timeout,
	}
}

// Key returns the cached key for target, if resolved before.
func (k *Keyring) Key(target string) (*rsa.PublicKey, bool) {
	k.mu.Lock()
	defer k.mu.Unlock()
	key, ok := k.keys[target]
	return key, ok
}

// Complete stores a key received from the relay and releases every send
// currently waiting on it. A key that fails to parse is reported and
// stored nowhere; waiters run into their deadline.
func (k *Keyring) Complete(username, pemStr string) error {
	pub, err := crypto.DecodePublicKey(pemStr)
	if err != nil {
		return err
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	k.keys[username] = pub
	if p, ok := k.pending[username]; ok {
		delete(k.pending, username)
		close(p.done)
	}
	return nil
}

// Resolve returns the target's public key, requesting it from the relay
// when it is not cached. request is invoked at most once per outstanding
// fetch: concurrent resolves for the same target share one pending
// request and are all released together by the response or the deadline.
// On deadline the pending entry is cleared, so a later retry issues a
// fresh request.
func (k *Keyring) Resolve(target string, request func() error) (*rsa.PublicKey, error) {
	k.mu.Lock()
	if key, ok := k.keys[target]; ok {
		k.mu.Unlock()
		return key, nil
	}
	p, inFlight := k.pending[target]
	if !inFlight {
		p = &pendingRequest{done: make(chan struct{})}
		k.pending[target] = p
	}
	k.mu.Unlock()

	if !inFlight {
		if err := request(); err != nil {
			k.release(target, p)
			return nil, err
		}
	}

	select {
	case <-p.done:
		if key, ok := k.Key(target); ok {
			return key, nil
		}
		// Released without a key: another waiter hit the deadline first.
		return nil, errors.ErrKeyFetchTimeout
	case <-time.After(k.timeout):
		k.release(target, p)
		if key, ok := k.Key(target); ok {
			// The response squeaked in between the timer firing and the
			// lock being taken.
			return key, nil
		}
		return nil, errors.ErrKeyFetchTimeout
	}
}

// release clears the pending entry and wakes all waiters, but only if it
// still owns the entry; Complete or a concurrent timeout may have beaten
// it there. Guarantees done is closed at most once.
func (k *Keyring) release(target string, p *pendingRequest) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.pending[target] == p {
		delete(k.pending, target)
		close(p.done)
	}
}
