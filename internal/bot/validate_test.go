package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidPhone(t *testing.T) {
	valid := []string{"010-1234-5678", "011-0000-9999"}
	for _, p := range valid {
		assert.True(t, ValidPhone(p), p)
	}

	invalid := []string{
		"",
		"01012345678",
		"010-12345-678",
		"010-1234-567",
		"010-1234-56789",
		"abc-defg-hijk",
		" 010-1234-5678",
		"010-1234-5678 ",
		"0101-234-5678",
	}
	for _, p := range invalid {
		assert.False(t, ValidPhone(p), p)
	}
}
