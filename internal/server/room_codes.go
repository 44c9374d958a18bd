package server

import (
	"errors"
	"math/rand"
	"strings"
)

// GenerateRoomCode returns a random 4-letter code. Uniqueness against
// the store is the caller's job (generate, check, retry).
func GenerateRoomCode() string {
	code := make([]byte, 4)
	for i := range code {
		code[i] = 'A' + byte(rand.Intn(26))
	}
	return string(code)
}

func ValidateRoomCode(code string) error {
	if len(code) != 4 {
		return errors.New("Room code must be exactly 4 characters")
	}

	code = strings.ToUpper(code)
	for _, ch := range code {
		if ch < 'A' || ch > 'Z' {
			return errors.New("Room code must contain only letters A-Z")
		}
	}

	return nil
}

func NormalizeRoomCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
