package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSafeFilename(t *testing.T) {
	tests := []struct {
		name  string
		parts []string
		want  string
	}{
		{"single body", []string{"earth"}, "earth"},
		{"pair", []string{"earth", "from", "sun"}, "earth-from-sun"},
		{"spaces collapse", []string{"halley's  comet"}, "halley_s_comet"},
		{"traversal", []string{"../../etc/passwd"}, "etc_passwd"},
		{"dots only", []string{".."}, "unknown"},
		{"empty", nil, "unknown"},
		{"unicode", []string{"mond", "erde"}, "mond-erde"},
		{"non ascii", []string{"τ ceti"}, "ceti"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SafeFilename(tt.parts...))
		})
	}
}

func TestSafeFilename_Length(t *testing.T) {
	got := SafeFilename(strings.Repeat("a", 500))
	assert.Len(t, got, maxFilenameLen)
}
