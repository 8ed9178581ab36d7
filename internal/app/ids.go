package app

import "github.com/google/uuid"

// newID generates order and line ids. Global uniqueness is all that callers
// rely on.
func newID() string {
	return uuid.NewString()
}
