package vo

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// ShareTokenBytes is the amount of randomness behind a share token
const ShareTokenBytes = 16

// ShareTokenLength is the hex-encoded length of a share token
const ShareTokenLength = ShareTokenBytes * 2

// ShareToken is the unguessable access token of a share link
type ShareToken struct {
	value string
}

var (
	ErrEmptyToken   = errors.New("share token cannot be empty")
	ErrInvalidToken = errors.New("invalid share token format")
)

// GenerateShareToken draws a fresh random token
func GenerateShareToken() (ShareToken, error) {
	buf := make([]byte, ShareTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return ShareToken{}, fmt.Errorf("failed to read random bytes: %w", err)
	}
	return ShareToken{value: hex.EncodeToString(buf)}, nil
}

// NewShareToken parses a token, accepting only lowercase hex of the fixed length.
func NewShareToken(token string) (ShareToken, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return ShareToken{}, ErrEmptyToken
	}
	if len(token) != ShareTokenLength {
		return ShareToken{}, ErrInvalidToken
	}
	for _, c := range token {
		if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'f') {
			return ShareToken{}, ErrInvalidToken
		}
	}
	return ShareToken{value: token}, nil
}

// String returns the string representation of the token.
func (st ShareToken) String() string {
	return st.value
}

// Masked returns a masked version of the token for logging.
// Shows first 4 and last 4 characters with asterisks in between.
func (st ShareToken) Masked() string {
	return MaskToken(st.value)
}

// MaskToken masks an arbitrary token string for logging
func MaskToken(token string) string {
	if len(token) <= 8 {
		return strings.Repeat("*", len(token))
	}
	return token[:4] + "****" + token[len(token)-4:]
}
