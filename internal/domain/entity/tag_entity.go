package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Tag is a label posts can be filed under. Names are unique and stored
// lowercase.
type Tag struct {
	ID        string
	Name      string `validate:"required,min=2,max=40"`
	CreatedAt time.Time
}

// NewTag builds a validated tag with a normalized name.
func NewTag(name string) (*Tag, error) {
	t := &Tag{
		ID:   uuid.NewString(),
		Name: strings.ToLower(strings.TrimSpace(name)),
	}
	if err := validateAggregated(t); err != nil {
		return nil, err
	}
	return t, nil
}
