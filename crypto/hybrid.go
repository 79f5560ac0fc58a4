package crypto

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"fmt"

	"cipherchat/errors"

	"golang.org/x/crypto/chacha20poly1305"
)

// SessionKeySize is the size of the one-time symmetric key generated for
// each private message body.
const SessionKeySize = chacha20poly1305.KeySize

// NewSessionKey draws a fresh symmetric key. Each key encrypts exactly
// one message body and is discarded right after, which bounds the blast
// radius of any single key leaking.
func NewSessionKey() ([]byte, error) {
	key := make([]byte, SessionKeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate session key: %w", err)
	}
	return key, nil
}

// seal encrypts plaintext under key with ChaCha20-Poly1305 and returns a
// text-safe base64 token of nonce||ciphertext. The wire format carries
// message bodies as JSON strings, hence the encoding.
func seal(key, plaintext []byte) (string, error) {
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return "", fmt.Errorf("init aead: %w", err)
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}
	sealed := aead.Seal(nonce, nonce, plaintext, nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// open reverses seal. Every failure mode (bad encoding, truncated token,
// wrong key, tampered tag) collapses into ErrDecrypt: the receiver only
// needs to know the message is unreadable, not which step broke.
func open(key []byte, token string) ([]byte, error) {
	sealed, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrDecrypt, err)
	}
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrDecrypt, err)
	}
	if len(sealed) < aead.NonceSize() {
		return nil, fmt.Errorf("%w: token too short", errors.ErrDecrypt)
	}
	nonce, ciphertext := sealed[:aead.NonceSize()], sealed[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrDecrypt, err)
	}
	return plaintext, nil
}

// EncryptPrivate performs the hybrid scheme for one private message:
// a fresh session key encrypts the body, then the session key itself is
// wrapped under the recipient's RSA key with OAEP (SHA-256, MGF1). The
// wrapped key has a fixed size regardless of body length, so the slow
// asymmetric operation never touches bulk data.
func EncryptPrivate(recipient *rsa.PublicKey, plaintext string) (content, encryptedKey string, err error) {
	sessionKey, err := NewSessionKey()
	if err != nil {
		return "", "", err
	}
	content, err = seal(sessionKey, []byte(plaintext))
	if err != nil {
		return "", "", err
	}
	wrapped, err := rsa.EncryptOAEP(sha256.New(), rand.Reader, recipient, sessionKey, nil)
	if err != nil {
		return "", "", fmt.Errorf("wrap session key: %w", err)
	}
	return content, base64.StdEncoding.EncodeToString(wrapped), nil
}

// DecryptPrivate unwraps the session key with the receiver's private key
// and decrypts the body. Failures are ErrDecrypt and strictly local to
// the receiver; the sender is never informed which step failed.
func DecryptPrivate(priv *rsa.PrivateKey, content, encryptedKey string) (string, error) {
	if encryptedKey == "" {
		return "", fmt.Errorf("%w: missing encrypted key", errors.ErrDecrypt)
	}
	wrapped, err := base64.StdEncoding.DecodeString(encryptedKey)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errors.ErrDecrypt, err)
	}
	sessionKey, err := rsa.DecryptOAEP(sha256.New(), rand.Reader, priv, wrapped, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errors.ErrDecrypt, err)
	}
	plaintext, err := open(sessionKey, content)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}
