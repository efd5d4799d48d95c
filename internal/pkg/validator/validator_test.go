package validator

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestIsEmpty(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"", true},
		{"   ", true},
		{"abc", false},
		{" abc ", false},
	}
	for _, c := range cases {
		got := IsEmpty(c.input)
		if got != c.want {
			t.Errorf("IsEmpty(%q) = %v, want %v", c.input, got, c.want)
		}
	}
}

func TestIsValidUUID(t *testing.T) {
	valid := []string{
		"0188d0f2-7b8c-7b4a-8a2b-6b8b8b8b8b8b",
		"0188D0F2-7B8C-7B4A-8A2B-6B8B8B8B8B8B",
	}
	invalid := []string{
		"123e4567-e89b-12d3-a456-426614174000", // not v7
		"0188d0f27b8c7b4a8a2b6b8b8b8b8b8b",     // missing dashes
		"g188d0f2-7b8c-7b4a-8a2b-6b8b8b8b8b8b", // invalid hex
		"",
	}
	for _, id := range valid {
		if !IsValidUUID(id) {
			t.Errorf("IsValidUUID(%q) = false, want true", id)
		}
	}
	for _, id := range invalid {
		if IsValidUUID(id) {
			t.Errorf("IsValidUUID(%q) = true, want false", id)
		}
	}
}

func TestIsValidDate(t *testing.T) {
	if _, ok := IsValidDate("2024-06-03"); !ok {
		t.Error("IsValidDate(2024-06-03) = false, want true")
	}
	if _, ok := IsValidDate("06/03/2024"); ok {
		t.Error("IsValidDate(06/03/2024) = true, want false")
	}
}

func TestIsValidDateTime(t *testing.T) {
	valid := []string{"2024-01-15T10:30:00Z", "2024-01-15T10:30:00+08:00", "2024-01-15T10:30:00.123Z"}
	for _, v := range valid {
		if _, ok := IsValidDateTime(v); !ok {
			t.Errorf("IsValidDateTime(%q) = false, want true", v)
		}
	}
	if _, ok := IsValidDateTime("2024-01-15 10:30"); ok {
		t.Error("IsValidDateTime(2024-01-15 10:30) = true, want false")
	}
}

func TestIsPositive(t *testing.T) {
	pos := decimal.NewFromInt(3)
	zero := decimal.Zero
	neg := decimal.NewFromInt(-1)

	if !IsPositive(&pos) {
		t.Error("IsPositive(3) = false, want true")
	}
	if IsPositive(&zero) || IsPositive(&neg) || IsPositive(nil) {
		t.Error("IsPositive accepted a non-positive value")
	}
}

func TestValidationErrors(t *testing.T) {
	errs := ValidationErrors{
		{Field: "leave_type", Message: "is required"},
		{Field: "number_of_days", Message: "must be greater than 0"},
	}
	if got := errs.Error(); got != "leave_type: is required; number_of_days: must be greater than 0" {
		t.Errorf("Error() = %q", got)
	}
	m := errs.ToMap()
	if m["leave_type"] != "is required" || len(m) != 2 {
		t.Errorf("ToMap() = %v", m)
	}
}
