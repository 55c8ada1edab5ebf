// Package session implements the encrypted client-held session that keeps the
// server stateless. A Session is serialized to JSON, sealed with AES-256-GCM
// and handed to the client as an opaque cookie value; the server trusts only
// what it can decrypt and authenticate. Nothing in this package performs I/O.
package session

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
)

// Version is the current payload schema version written on encode. Decoding
// accepts the current version and, for payloads written before the field
// existed, version zero.
const Version = 1

// ErrDecode is returned for any blob that cannot be turned back into a
// Session: wrong key, truncation, tampering or malformed contents. Callers
// treat it identically to an absent session.
var ErrDecode = errors.New("session: decode failed")

// Session holds the authenticated provider state carried by the client. The
// tokens are opaque; they are only ever forwarded as bearer credentials.
type Session struct {
	Provider     string `json:"provider"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
	ProfileName  string `json:"profileName,omitempty"`
}

// payload is the encrypted plaintext shape. The version tag lives inside the
// ciphertext so it cannot be stripped or altered by the client.
type payload struct {
	Version int `json:"v,omitempty"`
	Session
}

// Codec encrypts and decrypts Sessions with a key derived from the configured
// server secret. A Codec is safe for concurrent use.
type Codec struct {
	aead cipher.AEAD
}

// NewCodec derives a 32 byte AES key from secret via SHA-256 so any secret
// length produces a valid key.
func NewCodec(secret string) (*Codec, error) {
	if secret == "" {
		return nil, errors.New("session: empty secret")
	}
	key := sha256.Sum256([]byte(secret))
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &Codec{aead: aead}, nil
}

// Encode seals s under a fresh random nonce and returns a URL-safe blob of
// nonce followed by ciphertext. Two encodings of the same session never
// produce the same output.
func (c *Codec) Encode(s Session) (string, error) {
	plain, err := json.Marshal(payload{Version: Version, Session: s})
	if err != nil {
		return "", err
	}
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	sealed := c.aead.Seal(nonce, nonce, plain, nil)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Decode reverses Encode. It fails closed: every malformed, tampered or
// foreign-key blob yields ErrDecode, never a partially populated session.
func (c *Codec) Decode(blob string) (Session, error) {
	data, err := base64.RawURLEncoding.DecodeString(blob)
	if err != nil {
		return Session{}, ErrDecode
	}
	if len(data) < c.aead.NonceSize() {
		return Session{}, ErrDecode
	}
	nonce, ciphertext := data[:c.aead.NonceSize()], data[c.aead.NonceSize():]
	plain, err := c.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return Session{}, ErrDecode
	}
	var p payload
	if err := json.Unmarshal(plain, &p); err != nil {
		return Session{}, ErrDecode
	}
	if p.Version > Version {
		return Session{}, ErrDecode
	}
	return p.Session, nil
}
