package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmdFlags(t *testing.T) {
	cmd := newRootCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--config", "zoom.yaml", "-v", "--width", "800"}))

	cfg, err := cmd.Flags().GetString("config")
	require.NoError(t, err)
	assert.Equal(t, "zoom.yaml", cfg)

	w, err := cmd.Flags().GetInt("width")
	require.NoError(t, err)
	assert.Equal(t, 800, w)

	h, err := cmd.Flags().GetInt("height")
	require.NoError(t, err)
	assert.Equal(t, 480, h)

	v, err := cmd.Flags().GetBool("verbose")
	require.NoError(t, err)
	assert.True(t, v)
}

func TestCheckerboard(t *testing.T) {
	board := checkerboard(4, 10)
	require.Equal(t, 16, board.NumChildren())
	last := board.ChildAt(15)
	assert.Equal(t, 30.0, last.X)
	assert.Equal(t, 30.0, last.Y)
	assert.Equal(t, 10.0, last.ScaleX)
}

func TestNewLogger(t *testing.T) {
	l, err := newLogger(true)
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(-1)) // debug
}

func TestRootCmdSilencesErrors(t *testing.T) {
	cmd := newRootCmd()
	assert.True(t, cmd.SilenceErrors, "errors are logged through zap in main")
	assert.True(t, cmd.SilenceUsage)
}
