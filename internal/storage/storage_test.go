package storage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStoredName(t *testing.T) {
	tests := []struct {
		original string
		suffix   string
	}{
		{original: "photo.png", suffix: "-photo.png"},
		{original: "../../etc/passwd", suffix: "-passwd"},
		{original: `C:\Users\me\My Pic.jpg`, suffix: "-My_Pic.jpg"},
		{original: "", suffix: "-image"},
		{original: "...", suffix: "-image"},
	}

	for _, tt := range tests {
		got := StoredName(tt.original)
		assert.True(t, strings.HasSuffix(got, tt.suffix), "StoredName(%q) = %q", tt.original, got)
		assert.NoError(t, ValidateName(got))
	}

	assert.NotEqual(t, StoredName("a.png"), StoredName("a.png"))
}

func TestValidateName(t *testing.T) {
	for _, name := range []string{"", ".", "..", "a/b", `a\b`, ".hidden"} {
		assert.ErrorIs(t, ValidateName(name), ErrInvalidName, "name %q", name)
	}
	assert.NoError(t, ValidateName("ok.png"))
}
