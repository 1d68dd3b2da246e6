// Package gen provides utility functions for generating identifiers.
package gen

import (
	"github.com/google/uuid"
)

// JobID generates a fresh unique job identifier.
func JobID() string {
	return uuid.NewString()
}

// SessionID generates a fresh push-channel session identifier.
func SessionID() string {
	return uuid.NewString()
}
