package prefs

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preferences.json")

	p := LoadFrom(path)
	require.True(t, p.Bool(KeyShowBoxes, true))
	require.Equal(t, "", p.String(KeyLastFrame))

	p.SetBool(KeyShowBoxes, false)
	p.SetBool(KeyShowMasks, true)
	p.SetString(KeyLastFrame, "frames/000123.png")
	require.NoError(t, p.Save())

	q := LoadFrom(path)
	require.False(t, q.Bool(KeyShowBoxes, true))
	require.True(t, q.Bool(KeyShowMasks, false))
	require.Equal(t, "frames/000123.png", q.String(KeyLastFrame))
}

func TestFallbacks(t *testing.T) {
	p := LoadFrom(filepath.Join(t.TempDir(), "missing.json"))
	require.True(t, p.Bool("absent", true))
	require.False(t, p.Bool("absent", false))
	require.Equal(t, "", p.String("absent"))
}
