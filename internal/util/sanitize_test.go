package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasHiddenRunes(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{name: "plain ascii", input: "johndoe", want: false},
		{name: "accented letters", input: "josé_müller", want: false},
		{name: "zero width space", input: "john\u200Bdoe", want: true},
		{name: "bidi override", input: "john\u202Edoe", want: true},
		{name: "null byte", input: "john\x00", want: true},
		{name: "newline", input: "john\ndoe", want: true},
		{name: "bom prefix", input: "\uFEFFjohndoe", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HasHiddenRunes(tt.input))
		})
	}
}

func TestStripHiddenRunes(t *testing.T) {
	assert.Equal(t, "johndoe", StripHiddenRunes("jo\u200Bhn\u200Ddoe\x07"))
	assert.Equal(t, "John Doe", StripHiddenRunes("John Doe"))
}
