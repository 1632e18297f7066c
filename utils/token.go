package utils

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/google/uuid"
)

func CreateToken() string {
	firstUUID, err := uuid.NewUUID()

	if err != nil {
		return ""
	}

	secondUUID, err := uuid.NewUUID()

	if err != nil {
		return ""
	}

	token := firstUUID.String() + secondUUID.String()

	return token
}

// RandomHex returns n random bytes hex-encoded (verification tokens).
func RandomHex(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return ""
	}
	return hex.EncodeToString(buf)
}
