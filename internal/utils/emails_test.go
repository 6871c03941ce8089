package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseEmailList(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"empty", "", nil},
		{"blanks only", " , ,", nil},
		{"trims and lowercases", " Bob@X.io ,carol@x.io", []string{"bob@x.io", "carol@x.io"}},
		{"drops duplicates", "a@x.io, A@x.io,b@x.io", []string{"a@x.io", "b@x.io"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseEmailList(tt.raw))
		})
	}
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "alice@example.com", NormalizeEmail("  Alice@Example.COM "))
}
