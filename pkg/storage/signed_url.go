package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Token validation failures.
var (
	ErrTokenMalformed = errors.New("invalid token format")
	ErrTokenSignature = errors.New("invalid token signature")
	ErrTokenExpired   = errors.New("token expired")
)

// SignedURLSigner issues short-lived download tokens bound to a storage key.
type SignedURLSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSignedURLSigner constructs a signer with the provided secret and TTL.
func NewSignedURLSigner(secret string, ttl time.Duration) *SignedURLSigner {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &SignedURLSigner{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Sign returns a token of the form key.expiry.signature.
func (s *SignedURLSigner) Sign(key string) (string, time.Time, error) {
	if key == "" {
		return "", time.Time{}, fmt.Errorf("key required")
	}
	if len(s.secret) == 0 {
		return "", time.Time{}, fmt.Errorf("signing secret missing")
	}
	expiresAt := s.now().Add(s.ttl).Truncate(time.Second)
	encodedKey := base64.RawURLEncoding.EncodeToString([]byte(key))
	exp := strconv.FormatInt(expiresAt.Unix(), 10)
	return strings.Join([]string{encodedKey, exp, s.mac(encodedKey, exp)}, "."), expiresAt, nil
}

// Verify checks the signature and expiry and returns the bound key.
func (s *SignedURLSigner) Verify(token string) (string, time.Time, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return "", time.Time{}, ErrTokenMalformed
	}
	encodedKey, exp, signature := parts[0], parts[1], parts[2]

	if !hmac.Equal([]byte(s.mac(encodedKey, exp)), []byte(signature)) {
		return "", time.Time{}, ErrTokenSignature
	}
	unix, err := strconv.ParseInt(exp, 10, 64)
	if err != nil {
		return "", time.Time{}, ErrTokenMalformed
	}
	expiresAt := time.Unix(unix, 0)
	if s.now().After(expiresAt) {
		return "", time.Time{}, ErrTokenExpired
	}
	rawKey, err := base64.RawURLEncoding.DecodeString(encodedKey)
	if err != nil {
		return "", time.Time{}, ErrTokenMalformed
	}
	return string(rawKey), expiresAt, nil
}

func (s *SignedURLSigner) mac(encodedKey, exp string) string {
	m := hmac.New(sha256.New, s.secret)
	_, _ = m.Write([]byte(encodedKey + "|" + exp))
	return hex.EncodeToString(m.Sum(nil))
}
