package homie

import "fmt"

// ValidateID normalises and checks an identifier against the Homie
// convention. Identifiers are lowercased; only a-z, 0-9 and "-" are
// allowed, and the first character must not be "-".
//
// Returns:
//   - string: The lowercased identifier
//   - error: ErrInvalidID if the identifier violates the convention
func ValidateID(id string) (string, error) {
	if len(id) == 0 {
		return "", fmt.Errorf("%w: empty", ErrInvalidID)
	}

	b := []byte(id)
	if b[0] == '-' {
		return "", fmt.Errorf("%w: %q may not begin with '-'", ErrInvalidID, id)
	}

	for i, c := range b {
		switch {
		case c >= 'A' && c <= 'Z':
			b[i] = c + 'a' - 'A'
		case c >= 'a' && c <= 'z':
		case c >= '0' && c <= '9':
		case c == '-':
		default:
			return "", fmt.Errorf("%w: character %q in %q", ErrInvalidID, string(c), id)
		}
	}

	return string(b), nil
}
