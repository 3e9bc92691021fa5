package oauth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidState is returned when a callback state fails verification.
var ErrInvalidState = errors.New("invalid oauth state")

// StateSigner issues and verifies the state parameter for the authorization
// redirect without any server-side session storage. A state is a random nonce
// and an expiry timestamp bound together by an HMAC over the signing secret.
type StateSigner struct {
	secret []byte
	ttl    time.Duration
}

// NewStateSigner creates a signer whose states expire after ttl.
func NewStateSigner(secret string, ttl time.Duration) *StateSigner {
	return &StateSigner{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// Sign produces a fresh state value for an authorization redirect.
func (s *StateSigner) Sign() (string, error) {
	nonce := make([]byte, 16)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generate state nonce: %w", err)
	}

	expiry := time.Now().Add(s.ttl).Unix()
	payload := hex.EncodeToString(nonce) + "." + strconv.FormatInt(expiry, 10)

	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(payload))
	sig := hex.EncodeToString(mac.Sum(nil))

	return base64.RawURLEncoding.EncodeToString([]byte(payload + "." + sig)), nil
}

// Verify checks a callback's state signature and expiry.
func (s *StateSigner) Verify(state string) error {
	raw, err := base64.RawURLEncoding.DecodeString(state)
	if err != nil {
		return ErrInvalidState
	}

	parts := strings.Split(string(raw), ".")
	if len(parts) != 3 {
		return ErrInvalidState
	}
	payload := parts[0] + "." + parts[1]

	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(payload))
	expected := hex.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(expected), []byte(parts[2])) {
		return ErrInvalidState
	}

	expiry, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || time.Now().Unix() > expiry {
		return ErrInvalidState
	}

	return nil
}
