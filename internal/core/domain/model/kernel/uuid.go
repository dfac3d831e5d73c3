package kernel

import (
	"fmt"

	"orderflow/internal/pkg/errs"

	"github.com/google/uuid"
)

// ErrUUIDIsNotConstructed is returned when validating a zero-value UUID.
var ErrUUIDIsNotConstructed = errs.NewValueIsRequiredError("UUID must be created via NewUUID or UUIDFromString")

// UUID wraps github.com/google/uuid so identifiers cannot be built from the nil value.
// It is used for event identity: each published envelope carries a fresh UUID that is
// unrelated to the order it describes.
type UUID struct {
	id uuid.UUID
}

// NewUUID generates a random (version 4) UUID.
func NewUUID() UUID {
	return UUID{id: uuid.New()}
}

// UUIDFromString parses any format accepted by uuid.Parse.
func UUIDFromString(s string) (UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return UUID{}, fmt.Errorf("invalid UUID format: %w", err)
	}
	parsed := UUID{id: id}
	if err = parsed.Validate(); err != nil {
		return UUID{}, err
	}
	return parsed, nil
}

func (u UUID) String() string {
	return u.id.String()
}

// IsEqual compares the raw bytes.
func (u UUID) IsEqual(other UUID) bool {
	return u.id == other.id
}

// Validate rejects the nil UUID.
func (u UUID) Validate() error {
	if u.id == uuid.Nil {
		return ErrUUIDIsNotConstructed
	}
	return nil
}

// MarshalText encodes the canonical hyphenated form.
func (u UUID) MarshalText() ([]byte, error) {
	return u.id.MarshalText()
}

// UnmarshalText accepts the same formats as UUIDFromString.
func (u *UUID) UnmarshalText(data []byte) error {
	parsed, err := UUIDFromString(string(data))
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}
