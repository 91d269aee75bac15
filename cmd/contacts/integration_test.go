package main_test

import (
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/jward/contacts/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func buildBinary(t *testing.T) string {
	t.Helper()
	binName := "contacts"
	if runtime.GOOS == "windows" {
		binName += ".exe"
	}
	bin := filepath.Join(t.TempDir(), binName)
	cmd := exec.Command("go", "build", "-o", bin, ".")
	cmd.Dir = filepath.Join(projectRoot(t), "cmd", "contacts")
	cmd.Env = append(os.Environ(), "CGO_ENABLED=1")
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "build failed: %s", string(out))
	return bin
}

// projectRoot walks up from this file's directory to the one holding go.mod.
func projectRoot(t *testing.T) string {
	t.Helper()
	_, filename, _, ok := runtime.Caller(0)
	require.True(t, ok, "runtime.Caller failed")
	dir := filepath.Dir(filename)
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		require.NotEqual(t, parent, dir, "go.mod not found")
		dir = parent
	}
}

type cli struct {
	bin  string
	dir  string
	home string
	db   string
	env  []string
}

func newCLI(t *testing.T) *cli {
	t.Helper()
	dir := t.TempDir()
	home := t.TempDir()
	return &cli{
		bin:  buildBinary(t),
		dir:  dir,
		home: home,
		db:   filepath.Join(dir, "data", "contacts.db"),
		env: append(os.Environ(),
			"HOME="+home,
			"XDG_CONFIG_HOME="+filepath.Join(home, ".config"),
		),
	}
}

// run executes the binary against the test database.
func (c *cli) run(t *testing.T, extraEnv []string, args ...string) (stdout string, err error) {
	t.Helper()
	cmd := exec.Command(c.bin, append([]string{"--db", c.db}, args...)...)
	cmd.Dir = c.dir
	cmd.Env = append(append([]string{}, c.env...), extraEnv...)
	out, err := cmd.Output()
	return string(out), err
}

// runJSON executes a command with --format json and decodes the envelope.
func (c *cli) runJSON(t *testing.T, args ...string) map[string]any {
	t.Helper()
	out, err := c.run(t, nil, append(args, "--format", "json")...)
	if err != nil && out == "" {
		t.Fatalf("command %v failed with no output: %v", args, err)
	}
	var result map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &result), "invalid JSON output: %s", out)
	return result
}

func TestCLI_Scenario(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	c := newCLI(t)

	res := c.runJSON(t, "add", "Ada", "1994-08-23")
	assert.Equal(t, "add", res["command"])
	person := res["results"].(map[string]any)
	assert.Equal(t, float64(1), person["id"])
	assert.Equal(t, float64(9000), person["epoch_day"])
	require.FileExists(t, c.db)

	res = c.runJSON(t, "add", "Bob", "1997-05-19")
	assert.Equal(t, float64(2), res["results"].(map[string]any)["id"])

	res = c.runJSON(t, "edit", "1", "--name", "Ada L.")
	assert.Equal(t, "Ada L.", res["results"].(map[string]any)["name"])
	assert.Equal(t, "1994-08-23", res["results"].(map[string]any)["birth"])

	res = c.runJSON(t, "rm", "2")
	assert.Equal(t, "Bob", res["results"].(map[string]any)["name"])

	res = c.runJSON(t, "list")
	assert.Equal(t, float64(1), res["total_count"])
	list := res["results"].([]any)
	require.Len(t, list, 1)
	assert.Equal(t, "Ada L.", list[0].(map[string]any)["name"])

	res = c.runJSON(t, "get", "2")
	assert.Equal(t, "get", res["command"])
	assert.Equal(t, "no person with id 2", res["error"])
	assert.Nil(t, res["results"])

	out, err := c.run(t, nil, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Ada L.")
	assert.Contains(t, out, "1 person")
}

func TestCLI_EmptyListIsArray(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	c := newCLI(t)

	res := c.runJSON(t, "list")
	assert.Equal(t, []any{}, res["results"])
	assert.Equal(t, float64(0), res["total_count"])
}

func TestCLI_PureGoDriver(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	c := newCLI(t)

	res := c.runJSON(t, "add", "Ada", "1994-08-23", "--driver", "sqlite")
	assert.Empty(t, res["error"])

	// Both drivers read the same file.
	res = c.runJSON(t, "list", "--driver", "sqlite3")
	assert.Equal(t, float64(1), res["total_count"])
}

func TestCLI_RejectsBadInput(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	c := newCLI(t)

	for _, args := range [][]string{
		{"add", "Ada", "23/08/1994"},
		{"add", "  ", "1994-08-23"},
		{"edit", "1"},
		{"get", "abc"},
		{"list", "--format", "xml"},
		{"list", "--driver", "postgres"},
	} {
		_, err := c.run(t, nil, args...)
		assert.Error(t, err, "args %v", args)
	}
}

func TestCLI_ConfigSources(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	c := newCLI(t)
	_, err := c.run(t, nil, "add", "Ada", "1994-08-23")
	require.NoError(t, err)

	// Environment.
	out, err := c.run(t, []string{"CONTACTS_FORMAT=json"}, "list")
	require.NoError(t, err)
	var res map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &res), out)

	// Config file, overridden by the flag.
	cfgPath := filepath.Join(c.dir, "custom.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("format: yaml\n"), 0o644))
	out, err = c.run(t, nil, "--config", cfgPath, "list")
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &doc), out)
	assert.Equal(t, "list", doc["command"])

	out, err = c.run(t, nil, "--config", cfgPath, "list", "--format", "text")
	require.NoError(t, err)
	assert.Contains(t, out, "ID  NAME")

	// config init writes the resolved values.
	initPath := filepath.Join(c.dir, "written.yaml")
	_, err = c.run(t, nil, "config", "init", "--path", initPath)
	require.NoError(t, err)
	data, err := os.ReadFile(initPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "db: "+c.db)

	_, err = c.run(t, nil, "config", "init", "--path", initPath)
	assert.Error(t, err, "existing file needs --force")
}

func TestCLI_UnsupportedSchemaVersion(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	c := newCLI(t)
	_, err := c.run(t, nil, "add", "Ada", "1994-08-23")
	require.NoError(t, err)

	s, err := store.NewStore(c.db)
	require.NoError(t, err)
	_, err = s.DB().Exec("PRAGMA user_version = 2")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	out, err := c.run(t, nil, "list", "--format", "json")
	var exitErr *exec.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 1, exitErr.ExitCode())

	var res map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &res), out)
	assert.Equal(t, "list", res["command"])
	assert.Contains(t, res["error"], "unsupported schema version")
}
