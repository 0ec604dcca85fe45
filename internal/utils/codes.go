package utils

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

const codeBytes = 6

// GenerateCode returns 6 random bytes as unpadded base64url, the format of activation and reset codes.
func GenerateCode() (string, error) {
	buf := make([]byte, codeBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
