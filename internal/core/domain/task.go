package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrTaskNotFound = errors.New("task not found")

// Task is a single to-do item owned by exactly one user. The Image blob is
// excluded from JSON responses and served through its own endpoint.
type Task struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	OwnerID     string    `json:"owner"`
	Image       []byte    `json:"-"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Normalize trims the description in place.
func (t *Task) Normalize() {
	t.Description = strings.TrimSpace(t.Description)
}

// Validate checks the persisted invariants of a task record.
func (t *Task) Validate() error {
	if t.Description == "" {
		return fmt.Errorf("%w: description is required", ErrValidation)
	}
	if t.OwnerID == "" {
		return fmt.Errorf("%w: owner is required", ErrValidation)
	}
	return nil
}
