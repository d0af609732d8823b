package utils

import (
	"github.com/google/uuid"
)

// GeneratePepper returns a random secret for deployments that did not
// configure one. Author pseudonyms derived from it stay stable only
// for the process lifetime, which is fine for development.
func GeneratePepper() string {
	return uuid.New().String() + "-" + uuid.New().String()
}
