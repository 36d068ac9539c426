package normalizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFold(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"diacritics", "Móstoles", "mostoles"},
		{"case and trim", "  Sant Boi De Llobregat ", "sant boi de llobregat"},
		{"enye", "A Coruña", "a coruna"},
		{"already folded", "madrid", "madrid"},
		{"empty", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Fold(tc.in))
		})
	}
}

func TestFoldDoesNotMutateStoredForm(t *testing.T) {
	original := "Cádiz"
	_ = Fold(original)
	assert.Equal(t, "Cádiz", original)
}

func TestStripDiacritics(t *testing.T) {
	assert.Equal(t, "Mostoles", StripDiacritics("Móstoles"))
	assert.Equal(t, "Llobregat", StripDiacritics("Llobregat"))
}

func TestCollapseSpaces(t *testing.T) {
	assert.Equal(t, "a b c", CollapseSpaces("  a \t b\n c "))
}
