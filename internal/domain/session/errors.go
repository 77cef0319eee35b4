package session

import "errors"

// ErrCorruptSession indicates the stored session value cannot be decoded.
var ErrCorruptSession = errors.New("stored session is corrupt")
