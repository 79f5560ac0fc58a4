package crypto

import (
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// DefaultGroupKey is the static shared secret used for all group traffic,
// base64-encoded. Every participant holds the same key out-of-band; there
// is no per-group keying, so compromising this key (or any participant)
// exposes every group's traffic. That trade-off is part of the protocol
// contract, not an oversight to patch here.
const DefaultGroupKey = "Y2lwaGVyY2hhdC1zdGF0aWMtZ3JvdXAta2V5LTAwMDE="

// GroupCipher encrypts and decrypts group message bodies with the shared
// secret. The relay never holds one: it forwards group ciphertext opaquely.
type GroupCipher struct {
	key []byte
}

// NewGroupCipher builds a cipher from a base64 key. Pass DefaultGroupKey
// unless the deployment distributes its own secret via GROUP_KEY.
func NewGroupCipher(b64Key string) (*GroupCipher, error) {
	key, err := base64.StdEncoding.DecodeString(b64Key)
	if err != nil {
		return nil, fmt.Errorf("decode group key: %w", err)
	}
	if len(key) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("group key must be %d bytes, got %d", chacha20poly1305.KeySize, len(key))
	}
	return &GroupCipher{key: key}, nil
}

func (g *GroupCipher) Encrypt(plaintext string) (string, error) {
	return seal(g.key, []byte(plaintext))
}

func (g *GroupCipher) Decrypt(content string) (string, error) {
	plaintext, err := open(g.key, content)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}
