package homie

import "errors"

// Domain errors for the homie package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, homie.ErrDuplicateID) {
//	    // caller must pick a different id
//	}
var (
	// ErrInvalidID is returned when an identifier violates the Homie
	// convention (empty, leading "-", or characters outside a-z 0-9 -).
	ErrInvalidID = errors.New("homie: invalid identifier")

	// ErrDuplicateID is returned when adding a node or property whose id
	// already exists within its parent.
	ErrDuplicateID = errors.New("homie: duplicate identifier")

	// ErrOutOfRange is returned when a numeric update falls outside the
	// property's configured range. Nothing is published.
	ErrOutOfRange = errors.New("homie: value out of range")

	// ErrUnknownEnumValue is returned when an enum wire string has no
	// mapping entry.
	ErrUnknownEnumValue = errors.New("homie: unknown enum value")

	// ErrInvalidPayload is returned when an inbound payload cannot be
	// parsed as the property's datatype.
	ErrInvalidPayload = errors.New("homie: invalid payload")

	// ErrInvalidRange is returned when a property is constructed with
	// min greater than max.
	ErrInvalidRange = errors.New("homie: invalid range")

	// ErrNoEnumValues is returned when an enum property is constructed
	// with an empty value set.
	ErrNoEnumValues = errors.New("homie: enum requires at least one value")
)
