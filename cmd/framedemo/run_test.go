package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &errOut
	app.ExitErrHandler = func(*cli.Context, error) {}
	err := app.Run(append([]string{"framedemo"}, args...))
	return out.String(), err
}

func TestRun_Flags(t *testing.T) {
	out, err := runApp(t, "run", "--frames", "5", "--fps", "0",
		"--window", "main=cull/draw", "-w", "overlay=-draw", "-w", "hud")
	require.NoError(t, err)

	assert.Contains(t, out, "Rendered 5 frames over 3 windows with 2 workers")
	assert.Contains(t, out, "pool app")
	assert.Contains(t, out, "worker draw")
}

func TestRun_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frames.yaml")
	yaml := "coordinator:\n  single_threaded: true\nwindows:\n  - name: main\n    threading_model: cull/draw\n    regions: 2\n"
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	out, err := runApp(t, "run", "-c", path, "-n", "2", "--fps", "0")
	require.NoError(t, err)
	assert.Contains(t, out, "Rendered 2 frames over 1 windows with 0 workers")
}

func TestRun_InvalidWindow(t *testing.T) {
	_, err := runApp(t, "run", "-n", "1", "-w", "=draw")
	assert.ErrorContains(t, err, "name is required")

	_, err = runApp(t, "run", "-n", "1", "-w", "a", "-w", "a")
	assert.ErrorContains(t, err, "duplicate name")
}

func TestParse(t *testing.T) {
	out, err := runApp(t, "parse", "--", "cull/draw", "-draw")
	require.NoError(t, err)
	assert.Contains(t, out, `"cull/draw": cull="cull" draw="draw" cull-sorting=true`)
	assert.Contains(t, out, `"-draw": cull="draw" draw="draw" cull-sorting=false`)
}

func TestParseWindowFlag(t *testing.T) {
	w, err := parseWindowFlag(" main = cull/draw ")
	require.NoError(t, err)
	assert.Equal(t, "main", w.Name)
	assert.Equal(t, "cull/draw", w.ThreadingModel)

	w, err = parseWindowFlag("hud")
	require.NoError(t, err)
	assert.Equal(t, "", w.ThreadingModel)
}
