package id

import "github.com/google/uuid"

// GenerateID creates a unique, time-ordered identifier (UUIDv7).
func GenerateID() string {
	v, err := uuid.NewV7()
	if err != nil {
		// NewV7 only fails when the random source does.
		panic("uuid: " + err.Error())
	}
	return v.String()
}

// Valid reports whether s looks like an identifier produced by GenerateID.
func Valid(s string) bool {
	return uuid.Validate(s) == nil
}
