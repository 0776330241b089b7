package relationship

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateNameBoundaries(t *testing.T) {
	if err := ValidateName(strings.Repeat("a", 30)); err != nil {
		t.Fatalf("expected 30-char name accepted, got %v", err)
	}
	if err := ValidateName(strings.Repeat("a", 31)); !errors.Is(err, ErrNameTooLong) {
		t.Fatalf("expected ErrNameTooLong for 31 chars, got %v", err)
	}
	if err := ValidateName(""); !errors.Is(err, ErrNameRequired) {
		t.Fatalf("expected ErrNameRequired for empty name, got %v", err)
	}
}

func TestValidateNameCountsRunes(t *testing.T) {
	// 30 multi-byte characters are still 30 characters.
	if err := ValidateName(strings.Repeat("é", 30)); err != nil {
		t.Fatalf("expected 30 runes accepted, got %v", err)
	}
}

func TestValidateDescriptionBoundaries(t *testing.T) {
	if err := ValidateDescription(nil); err != nil {
		t.Fatalf("expected absent description accepted, got %v", err)
	}
	ok := strings.Repeat("d", 300)
	if err := ValidateDescription(&ok); err != nil {
		t.Fatalf("expected 300-char description accepted, got %v", err)
	}
	long := strings.Repeat("d", 301)
	if err := ValidateDescription(&long); !errors.Is(err, ErrDescriptionTooLong) {
		t.Fatalf("expected ErrDescriptionTooLong for 301 chars, got %v", err)
	}
}

func TestValidateColor(t *testing.T) {
	cases := []struct {
		value string
		valid bool
	}{
		{"#fff", true},
		{"#ffffff", true},
		{"#ABC123", true},
		{"fff", false},
		{"#ff", false},
		{"#fffff", false},
		{"#fffffff", false},
		// Only prefix and length are checked; non-hex digits pass.
		{"#zzz", true},
	}

	for _, tc := range cases {
		err := ValidateColor(&tc.value)
		if tc.valid && err != nil {
			t.Fatalf("expected %q accepted, got %v", tc.value, err)
		}
		if !tc.valid && !errors.Is(err, ErrInvalidColor) {
			t.Fatalf("expected ErrInvalidColor for %q, got %v", tc.value, err)
		}
	}
}

func TestValidateColorAbsent(t *testing.T) {
	if err := ValidateColor(nil); err != nil {
		t.Fatalf("expected absent color accepted, got %v", err)
	}
}

func TestValidateShortCircuits(t *testing.T) {
	badColor := "ffffff"
	err := Validate(strings.Repeat("a", 31), nil, &badColor)
	if !errors.Is(err, ErrNameTooLong) {
		t.Fatalf("expected name error reported first, got %v", err)
	}

	longDescription := strings.Repeat("d", 301)
	err = Validate("ok", &longDescription, &badColor)
	if !errors.Is(err, ErrDescriptionTooLong) {
		t.Fatalf("expected description error before color, got %v", err)
	}

	err = Validate("ok", nil, &badColor)
	if !errors.Is(err, ErrInvalidColor) {
		t.Fatalf("expected color error, got %v", err)
	}
}
