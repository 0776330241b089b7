package relationship

import "errors"

var (
	ErrNameRequired       = errors.New("name is required")
	ErrNameTooLong        = errors.New("name is too long")
	ErrDescriptionTooLong = errors.New("description is too long")
	ErrInvalidColor       = errors.New("invalid color")

	ErrRelationshipNotFound = errors.New("relationship not found")
	ErrMembershipNotFound   = errors.New("membership not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrNotMember            = errors.New("not a member of relationship")
)

// IsValidation reports whether err is one of the metadata validation
// failures, so callers can map them to a 422 as a group.
func IsValidation(err error) bool {
	return errors.Is(err, ErrNameRequired) ||
		errors.Is(err, ErrNameTooLong) ||
		errors.Is(err, ErrDescriptionTooLong) ||
		errors.Is(err, ErrInvalidColor)
}
