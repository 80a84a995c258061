package store

import (
	"fmt"

	"github.com/google/uuid"
)

// IDGenerator hands out compilation run ids.
type IDGenerator interface {
	NewID() (string, error)
}

// UUIDv7 generates time-ordered UUIDv7 run ids.
type UUIDv7 struct{}

// NewID implements IDGenerator.
func (UUIDv7) NewID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate run id: %w", err)
	}
	return id.String(), nil
}
