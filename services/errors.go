package services

import (
	"errors"
	"strconv"

	"github.com/abroadwise/abroad-api/utils/query"
)

var (
	// ErrNotFound means the id was well-formed but no record matched
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate means a uniqueness constraint was violated
	ErrDuplicate = errors.New("duplicate record")
)

// ParseID validates the identifier format before any lookup is attempted.
// A malformed id is a client error, never a store round trip.
func ParseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, &query.BadRequestError{Message: "Invalid id format"}
	}
	return uint(id), nil
}
