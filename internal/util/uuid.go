package util

import (
	"encoding/base64"

	"github.com/google/uuid"
)

const shortUUIDLen = 22

// ShortUUID generates a short UUID with 22 symbols
func ShortUUID() string {
	u := uuid.New()
	return base64.RawURLEncoding.EncodeToString(u[:])
}

// IsShortUUID reports whether s was produced by ShortUUID
func IsShortUUID(s string) bool {
	if len(s) != shortUUIDLen {
		return false
	}
	raw, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return false
	}
	_, err = uuid.FromBytes(raw)
	return err == nil
}
