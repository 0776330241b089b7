package relationship

import (
	"strings"
	"unicode/utf8"
)

const (
	maxNameLength        = 30
	maxDescriptionLength = 300
)

func ValidateName(name string) error {
	length := utf8.RuneCountInString(name)
	if length == 0 {
		return ErrNameRequired
	}
	if length > maxNameLength {
		return ErrNameTooLong
	}
	return nil
}

func ValidateDescription(description *string) error {
	if description == nil {
		return nil
	}
	if utf8.RuneCountInString(*description) > maxDescriptionLength {
		return ErrDescriptionTooLong
	}
	return nil
}

// ValidateColor accepts an absent color, or a value starting with '#' whose
// total length is exactly 4 ("#fff") or 7 ("#ffffff"). The remaining
// characters are not checked to be hex digits; clients have historically
// relied on that.
func ValidateColor(color *string) error {
	if color == nil {
		return nil
	}
	value := *color
	if !strings.HasPrefix(value, "#") {
		return ErrInvalidColor
	}
	if length := utf8.RuneCountInString(value); length != 4 && length != 7 {
		return ErrInvalidColor
	}
	return nil
}

// Validate checks name, then description, then color, stopping at the first
// failure. Callers see a single error per call.
func Validate(name string, description, color *string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if err := ValidateDescription(description); err != nil {
		return err
	}
	return ValidateColor(color)
}
