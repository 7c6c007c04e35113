package utils

import "github.com/google/uuid"

// GenerateID returns a random (v4) UUID string.
func GenerateID() string {
	return uuid.NewString()
}
