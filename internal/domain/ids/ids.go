// Package ids mints and validates the two identifier kinds the engine
// uses: ULIDs for server-assigned event IDs, UUIDs for registration and
// waitlist entry rows.
package ids

import (
	"crypto/rand"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

var ErrInvalidULID = errors.New("invalid ULID")

var ulidPattern = regexp.MustCompile(`(?i)^[0-9A-HJKMNP-TV-Z]{26}$`)

// entropy is shared so ULIDs minted within the same millisecond still
// sort in mint order.
var entropy = &ulid.LockedMonotonicReader{
	MonotonicReader: ulid.Monotonic(rand.Reader, 0),
}

// NewULID mints a server-assigned event identifier. Lexicographic order
// follows mint time.
func NewULID() (string, error) {
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// IsULID reports whether value parses as a ULID. Crockford Base32,
// case-insensitive.
func IsULID(value string) bool {
	return ulidPattern.MatchString(strings.TrimSpace(value))
}

func ValidateULID(value string) error {
	if !IsULID(value) {
		return ErrInvalidULID
	}
	return nil
}

// NewRecordID mints a UUIDv4 for registration and waitlist entry rows.
func NewRecordID() string {
	return uuid.NewString()
}
