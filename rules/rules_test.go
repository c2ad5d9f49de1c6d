package rules

import (
	"testing"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/stretchr/testify/assert"
)

func TestIsEgyptianPhone(t *testing.T) {
	tests := []struct {
		phone string
		want  bool
	}{
		{"01012345678", true},
		{"01112345678", true},
		{"01234567890", true},
		{"01512345678", true},
		{"010 1234 5678", true},
		{" 0151\t2345678 ", true},
		{"01312345678", false},
		{"01412345678", false},
		{"01,12345678", false},
		{"0101234567", false},
		{"010123456789", false},
		{"02012345678", false},
		{"0101234567a", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.phone, func(t *testing.T) {
			assert.Equal(t, tt.want, IsEgyptianPhone(tt.phone))
		})
	}
}

func TestNormalizePhone(t *testing.T) {
	assert.Equal(t, "01012345678", NormalizePhone(" 010 123\t45678\n"))
}

func TestIsEmailShape(t *testing.T) {
	assert.True(t, IsEmailShape("mona@example.com"))
	assert.True(t, IsEmailShape("a.b+c@mail.example.eg"))
	assert.False(t, IsEmailShape("mona@example"))
	assert.False(t, IsEmailShape("mona example@x.com"))
	assert.False(t, IsEmailShape("@example.com"))
	assert.False(t, IsEmailShape("mona"))
}

func TestRulesSkipEmptyValues(t *testing.T) {
	// Presence is validation.Required's job.
	assert.NoError(t, validation.Validate("", EgyptianPhone))
	assert.NoError(t, validation.Validate("", EmailShape))

	assert.Error(t, validation.Validate("01312345678", EgyptianPhone))
	assert.Error(t, validation.Validate("nope", EmailShape))
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  window seat please  ", "window seat please"},
		{`<b>VIP</b>`, "&lt;b&gt;VIP&lt;/b&gt;"},
		{`Tom\'s group`, "Tom&#39;s group"},
		{`back\\slash`, `back\slash`},
		{"fish & chips", "fish &amp; chips"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Sanitize(tt.in), tt.in)
	}
}
