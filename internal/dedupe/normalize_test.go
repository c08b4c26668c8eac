package dedupe

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePhone_Permissive(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
		ok   bool
	}{
		{"plain 10 digits", "9876543210", "9876543210", true},
		{"country prefix", "+919876543210", "9876543210", true},
		{"spaces and hyphens", "+91 98765-43210", "9876543210", true},
		{"eleven digits accepted", "09876543210", "09876543210", true},
		{"landline leading digit accepted", "4412345678", "4412345678", true},
		{"too short", "987654321", "", false},
		{"letters", "98765abc10", "", false},
		{"empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NormalizePhone(tt.raw, "+91", Permissive)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizePhone_Strict(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
		ok   bool
	}{
		{"plain mobile", "9876543210", "9876543210", true},
		{"plus prefix", "+919876543210", "9876543210", true},
		{"bare country code", "919876543210", "9876543210", true},
		{"trunk zero", "09876543210", "9876543210", true},
		{"formatted", "(+91) 98765 43210", "9876543210", true},
		{"leading digit 6", "6012345678", "6012345678", true},
		{"invalid leading digit", "5876543210", "", false},
		{"eleven digits no trunk zero", "19876543210", "", false},
		{"too short", "987654321", "", false},
		{"empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NormalizePhone(tt.raw, "+91", Strict)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

// Normalization must induce an equivalence relation on raw values: any two
// spellings of the same number map to the same key, and a key re-normalizes
// to itself.
func TestNormalizePhone_EquivalenceAndIdempotence(t *testing.T) {
	spellings := []string{"9876543210", "+919876543210", "+91 98765 43210", "98765-43210"}

	for _, level := range []Strictness{Permissive, Strict} {
		first, ok := NormalizePhone(spellings[0], "+91", level)
		assert.True(t, ok)

		for _, raw := range spellings[1:] {
			got, ok := NormalizePhone(raw, "+91", level)
			assert.True(t, ok, "%s under %s", raw, level)
			assert.Equal(t, first, got, "%s under %s", raw, level)
		}

		again, ok := NormalizePhone(first, "+91", level)
		assert.True(t, ok)
		assert.Equal(t, first, again, "normalizing its own output must be stable")
	}
}

func TestNormalizeEmail(t *testing.T) {
	got, ok := NormalizeEmail("  Ravi.Kumar@Example.COM ")
	assert.True(t, ok)
	assert.Equal(t, "ravi.kumar@example.com", got)

	_, ok = NormalizeEmail("   ")
	assert.False(t, ok)

	_, ok = NormalizeEmail("")
	assert.False(t, ok)
}

func TestIsSystemEmail(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		{"12345@neetprep.com", true},
		{"987654@NEETPREP.COM", true},
		{"ravi@neetprep.com", false},
		{"12345a@neetprep.com", false},
		{"12345@gmail.com", false},
		{"@neetprep.com", false},
		{"", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, IsSystemEmail(tt.email, "neetprep.com"), tt.email)
	}
}
