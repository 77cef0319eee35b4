package user

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrInvalidUser indicates a user payload that cannot be used as a session.
var ErrInvalidUser = errors.New("invalid user payload")

// User is the authenticated account profile handed back by the login page.
type User struct {
	UID         string `json:"uid"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
	PhotoURL    string `json:"photoURL"`
}

// Decode parses a JSON user payload taken from a query parameter.
//
// The payload may arrive percent-encoded once more than the query string
// decoding already undid; it is unescaped only when it does not parse as is.
func Decode(raw string) (*User, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("%w: empty payload", ErrInvalidUser)
	}
	var u User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		unescaped, uerr := url.QueryUnescape(raw)
		if uerr != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidUser, uerr)
		}
		if err := json.Unmarshal([]byte(unescaped), &u); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidUser, err)
		}
	}
	if strings.TrimSpace(u.UID) == "" {
		return nil, fmt.Errorf("%w: missing uid", ErrInvalidUser)
	}
	return &u, nil
}

// Encode returns the URL-encoded JSON form accepted by Decode.
func Encode(u User) (string, error) {
	data, err := json.Marshal(u)
	if err != nil {
		return "", fmt.Errorf("encode user: %w", err)
	}
	return url.QueryEscape(string(data)), nil
}
