package lib

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaletteDisabledIsPlain(t *testing.T) {
	p := NewPalette(false, nil)
	assert.Equal(t, "finding", p.Paint(RoleConfirmed, "finding"))

	var zero Palette
	assert.Equal(t, "finding", zero.Paint(RoleConfirmed, "finding"))
}

func TestPaletteEnabledColours(t *testing.T) {
	p := NewPalette(true, map[string]string{RoleConfirmed: "magenta", RoleInfo: "not-a-colour"})

	painted := p.Paint(RoleConfirmed, "finding")
	assert.Contains(t, painted, "finding")
	assert.Contains(t, painted, "\x1b[")
	assert.Contains(t, painted, "35")

	// unknown colour names fall back to the role default
	assert.Contains(t, p.Paint(RoleInfo, "x"), "34")
	assert.Equal(t, "x", p.Paint("unknown-role", "x"))
}

func TestColorEnabled(t *testing.T) {
	assert.False(t, ColorEnabled(false, false, os.Stdout))
	assert.False(t, ColorEnabled(true, true, os.Stdout))
	assert.False(t, ColorEnabled(true, false, nil))

	t.Setenv("NO_COLOR", "1")
	assert.False(t, ColorEnabled(true, false, os.Stdout))
}
