// Package initdata verifies the signed launch parameters a mini app passes to
// the backend in the "Authorization: tma <init data>" header.
package initdata

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	tgdata "github.com/telegram-mini-apps/init-data-golang"
)

const scheme = "tma "

var (
	ErrMissingHeader = errors.New("authorization header required")
	ErrBadScheme     = errors.New("invalid authorization format, expected 'tma <init_data>'")
	ErrMalformed     = errors.New("malformed init data")
	ErrSignature     = errors.New("init data signature mismatch")
	ErrExpired       = errors.New("init data expired")
)

// User is the launching user as described by the "user" field.
type User struct {
	ID        int64
	FirstName string
	LastName  string
	Username  string
}

// FromHeader extracts init data from an Authorization header value.
func FromHeader(header string) (string, error) {
	if header == "" {
		return "", ErrMissingHeader
	}
	if !strings.HasPrefix(header, scheme) {
		return "", ErrBadScheme
	}
	return header[len(scheme):], nil
}

// Verify checks the hash of raw against token and that auth_date lies within
// maxAge of now in either direction.
func Verify(raw, token string, maxAge time.Duration, now time.Time) (*User, error) {
	// Expiry is checked below against now and in both directions.
	if err := tgdata.Validate(raw, token, 0); err != nil {
		if errors.Is(err, tgdata.ErrSignInvalid) {
			return nil, ErrSignature
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	data, err := tgdata.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	authDate := data.AuthDate()
	if authDate.Unix() <= 0 {
		return nil, fmt.Errorf("%w: auth_date is missing", ErrMalformed)
	}
	age := now.Sub(authDate)
	if age < 0 {
		age = -age
	}
	if age > maxAge {
		return nil, ErrExpired
	}

	if data.User.ID == 0 {
		return nil, fmt.Errorf("%w: user id is missing", ErrMalformed)
	}
	return &User{
		ID:        data.User.ID,
		FirstName: data.User.FirstName,
		LastName:  data.User.LastName,
		Username:  data.User.Username,
	}, nil
}

// Sign returns the hex digest expected in the "hash" field for values.
func Sign(values url.Values, token string) string {
	pairs := make([]string, 0, len(values))
	for k, v := range values {
		if k == "hash" || len(v) == 0 {
			continue
		}
		pairs = append(pairs, k+"="+v[0])
	}
	sort.Strings(pairs)

	secret := hmac.New(sha256.New, []byte("WebAppData"))
	secret.Write([]byte(token))

	mac := hmac.New(sha256.New, secret.Sum(nil))
	mac.Write([]byte(strings.Join(pairs, "\n")))
	return hex.EncodeToString(mac.Sum(nil))
}
