package cli

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/qroute/pkg/device"
	qerrors "github.com/matzehuels/qroute/pkg/errors"
)

const farCX = "OPENQASM 2.0;\nqreg q[2];\ncx q[0],q[1];\n"

// execute runs the root command with a private cache directory.
func execute(t *testing.T, args ...string) error {
	t.Helper()
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	root := New(io.Discard, LogInfo).RootCommand()
	root.SetArgs(args)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	return root.Execute()
}

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestRouteCommand(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "far.qasm", farCX)

	err := execute(t, "route", input, "-d", "line-4", "--place", "q[0]=node[0]", "--place", "q[1]=node[3]", "-f", "qasm,json")
	require.NoError(t, err)

	qasm, err := os.ReadFile(filepath.Join(dir, "far.routed.qasm"))
	require.NoError(t, err)
	assert.Contains(t, string(qasm), "swap node[2],node[3];")
	assert.Contains(t, string(qasm), "bridge node[0],node[1],node[2];")

	_, err = os.Stat(filepath.Join(dir, "far.routed.json"))
	assert.NoError(t, err)
}

func TestRouteCommandSingleOutput(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "far.qasm", farCX)
	out := filepath.Join(dir, "out", "routed.qasm")

	require.NoError(t, execute(t, "route", input, "-d", "ring-4", "--no-cache", "-o", out))
	_, err := os.Stat(out)
	assert.NoError(t, err)
}

func TestRouteCommandErrors(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "far.qasm", farCX)
	badConfig := writeFile(t, dir, "bad.toml", "[router]\ndeph = 3\n")

	tests := []struct {
		name string
		args []string
		code qerrors.Code
	}{
		{"missing file", []string{"route", filepath.Join(dir, "nope.qasm"), "-d", "line-4"}, qerrors.ErrCodeFileNotFound},
		{"unknown device", []string{"route", input, "-d", "nowhere"}, qerrors.ErrCodeDeviceNotFound},
		{"bad placement", []string{"route", input, "-d", "line-4", "--place", "q[0]"}, qerrors.ErrCodeInvalidInput},
		{"bad format", []string{"route", input, "-d", "line-4", "-f", "gif"}, qerrors.ErrCodeInvalidFormat},
		{"bad config", []string{"--config", badConfig, "route", input, "-d", "line-4"}, qerrors.ErrCodeInvalidInput},
		{"stdout needs one format", []string{"route", input, "-d", "line-4", "-f", "qasm,dot", "-o", "-"}, qerrors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Equal(t, tt.code, qerrors.GetCode(err), err.Error())
		})
	}
}

func TestDeviceExportRoundTrip(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "ring.toml")

	require.NoError(t, execute(t, "device", "export", "ring-5", "-f", "toml", "-o", out))

	d, err := device.Load(out)
	require.NoError(t, err)
	topo, err := d.Topology()
	require.NoError(t, err)
	assert.Equal(t, 5, topo.NodeCount())
	assert.Equal(t, 5, topo.EdgeCount())

	err = execute(t, "device", "export", "ring-5", "-f", "yaml")
	assert.Equal(t, qerrors.ErrCodeInvalidFormat, qerrors.GetCode(err))
}

func TestTopologyReduce(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "small.json")

	require.NoError(t, execute(t, "topology", "reduce", "line-5", "-n", "2", "-o", out))

	d, err := device.Load(out)
	require.NoError(t, err)
	assert.Equal(t, "line-5-reduced", d.Name)
	topo, err := d.Topology()
	require.NoError(t, err)
	assert.Equal(t, 3, topo.NodeCount())
	diam, err := topo.Diameter()
	require.NoError(t, err)
	assert.Equal(t, 2, diam)
}

func TestTopologyInfo(t *testing.T) {
	assert.NoError(t, execute(t, "topology", "info", "grid-3x3"))
	assert.NoError(t, execute(t, "topo", "lines", "grid-3x3", "--lengths", "3,3"))
}

func TestRouteExamples(t *testing.T) {
	examples := filepath.Join("..", "..", "examples")
	circuit := filepath.Join(examples, "circuits", "ghz5.qasm")

	tests := []struct {
		name string
		args []string
	}{
		{"json device", []string{"-d", filepath.Join(examples, "devices", "tee.json")}},
		{"hcl device", []string{"-d", filepath.Join(examples, "devices", "ladder.hcl"), "--var", "rungs=3"}},
		{"preset", []string{"-d", "ring-5", "--no-cache"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := filepath.Join(t.TempDir(), "ghz5.qasm")
			args := append([]string{"--config", filepath.Join(examples, "qroute.toml"), "route", circuit, "-o", out, "-f", "qasm"}, tt.args...)
			require.NoError(t, execute(t, args...))

			routed, err := os.ReadFile(out)
			require.NoError(t, err)
			assert.Contains(t, string(routed), "measure node[")
		})
	}
}
