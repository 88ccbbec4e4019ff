package utils

import (
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const stateAlphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ-_"

// GenerateState returns a URL-safe random nonce for an authorization attempt.
func GenerateState() (string, error) {
	return gonanoid.Generate(stateAlphabet, 32)
}
