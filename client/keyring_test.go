package client

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"cipherchat/crypto"
	"cipherchat/errors"

	"github.com/stretchr/testify/require"
)

func testPEM(t *testing.T) string {
	t.Helper()
	key, err := crypto.GenerateKeyPair()
	require.NoError(t, err)
	pem, err := crypto.EncodePublicKey(&key.PublicKey)
	require.NoError(t, err)
	return pem
}

func Test_Resolve_Uses_Cache(t *testing.T) {
	req := require.New(t)
	keyring := NewKeyring(time.Second)
	req.NoError(keyring.Complete("bob", testPEM(t)))

	var requests atomic.Int32
	key, err := keyring.Resolve("bob", func() error {
		requests.Add(1)
		return nil
	})
	req.NoError(err)
	req.NotNil(key)
	req.Zero(requests.Load())
}

func Test_Resolve_Times_Out_After_Deadline(t *testing.T) {
	req := require.New(t)
	keyring := NewKeyring(50 * time.Millisecond)

	var requests atomic.Int32
	start := time.Now()
	_, err := keyring.Resolve("bob", func() error {
		requests.Add(1)
		return nil
	})
	req.ErrorIs(err, errors.ErrKeyFetchTimeout)
	req.GreaterOrEqual(time.Since(start), 50*time.Millisecond)
	req.Equal(int32(1), requests.Load())
}

func Test_Concurrent_Resolves_Share_One_Request(t *testing.T) {
	req := require.New(t)
	keyring := NewKeyring(time.Second)
	pem := testPEM(t)

	var requests atomic.Int32
	started := make(chan struct{})
	go func() {
		close(started)
		time.Sleep(20 * time.Millisecond)
		_ = keyring.Complete("bob", pem)
	}()
	<-started

	var wg sync.WaitGroup
	failures := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := keyring.Resolve("bob", func() error {
				requests.Add(1)
				return nil
			})
			if err != nil {
				failures <- err
			}
		}()
	}
	wg.Wait()
	close(failures)

	for err := range failures {
		req.NoError(err)
	}
	// Every waiter shared the single outstanding request.
	req.Equal(int32(1), requests.Load())
}

func Test_Timeout_Clears_Pending_So_Retry_Requests_Again(t *testing.T) {
	req := require.New(t)
	keyring := NewKeyring(30 * time.Millisecond)

	var requests atomic.Int32
	request := func() error {
		requests.Add(1)
		return nil
	}

	_, err := keyring.Resolve("bob", request)
	req.ErrorIs(err, errors.ErrKeyFetchTimeout)

	_, err = keyring.Resolve("bob", request)
	req.ErrorIs(err, errors.ErrKeyFetchTimeout)
	req.Equal(int32(2), requests.Load())
}

func Test_Complete_Rejects_Garbage_Key(t *testing.T) {
	req := require.New(t)
	keyring := NewKeyring(time.Second)

	req.Error(keyring.Complete("bob", "not a key"))
	_, cached := keyring.Key("bob")
	req.False(cached)
}

func Test_Request_Error_Aborts_Resolve(t *testing.T) {
	req := require.New(t)
	keyring := NewKeyring(time.Second)

	_, err := keyring.Resolve("bob", func() error {
		return errors.ErrClosed
	})
	req.ErrorIs(err, errors.ErrClosed)
}

func Test_Cache_Never_Refreshes(t *testing.T) {
	req := require.New(t)
	keyring := NewKeyring(time.Second)

	first := testPEM(t)
	req.NoError(keyring.Complete("bob", first))
	firstKey, _ := keyring.Key("bob")

	// A later pub_key for the same user overwrites the cache entry, but
	// nothing ever invalidates it in between: sends during that window
	// use the stale key. Documented behavior.
	req.NoError(keyring.Complete("bob", testPEM(t)))
	secondKey, _ := keyring.Key("bob")
	req.False(firstKey.Equal(secondKey))
}
