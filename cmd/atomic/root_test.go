package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const family = `
"alice" parent_of "bob".
"bob" parent_of "carol".
"carol" parent_of "dave".
"bob" parent_of "erin".

A grandparent_of C : A parent_of B, B parent_of C.
A ancestor_of C : A parent_of C.
A ancestor_of C : A parent_of B, B ancestor_of C.
`

// run executes the CLI with a config file that does not exist, so only the
// flags and defaults apply
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("ATOMIC_STORE", "")

	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append(args, "--config", filepath.Join(t.TempDir(), "none.yaml"), "--no-color"))
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "atomic", cmd.Name())
	assert.Contains(t, cmd.Long, "backtracking")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"repl", "query", "load", "stats"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, FormatBlocks, formatFlag.DefValue)

	configFlag := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, configFlag)
	assert.Equal(t, DefaultConfigFile, configFlag.DefValue)
}

func TestQueryCommand(t *testing.T) {
	path := writeFile(t, "family.atom", family)

	t.Run("Blocks", func(t *testing.T) {
		out, err := run(t, "", "query", "-e", `"bob" parent_of Y.`, path)
		require.NoError(t, err)
		assert.Contains(t, out, "Solution 0:\n    Y ~ \"carol\"\n")
		assert.Contains(t, out, "Solution 1:\n    Y ~ \"erin\"\n")
		assert.True(t, strings.HasSuffix(out, "\nOk.\n"), out)
	})

	t.Run("NoSolutions", func(t *testing.T) {
		out, err := run(t, "", "query", "-e", `"dave" parent_of Y`, path)
		require.NoError(t, err)
		assert.Equal(t, "\nNo.\n", out)
	})

	t.Run("Table", func(t *testing.T) {
		out, err := run(t, "", "query", "-e", `X grandparent_of Y`, path, "--format", "table")
		require.NoError(t, err)
		assert.Contains(t, out, `"alice"`)
		assert.Contains(t, out, "_3 rows_")
		assert.NotContains(t, out, "Solution 0:")
	})

	t.Run("MaxDepth", func(t *testing.T) {
		out, err := run(t, "", "query", "-e", `"alice" ancestor_of Y`, path, "--max-depth", "1")
		require.NoError(t, err)
		assert.Contains(t, out, `Y ~ "bob"`)
		assert.NotContains(t, out, `Y ~ "carol"`)
	})

	t.Run("InlineFactsAndQueries", func(t *testing.T) {
		out, err := run(t, "", "query", "-e", `1 n. 2 n. X n, X > 1.`)
		require.NoError(t, err)
		assert.Contains(t, out, "X ~ 2")
		assert.NotContains(t, out, "X ~ 1")
	})

	t.Run("Errors", func(t *testing.T) {
		_, err := run(t, "", "query")
		assert.Error(t, err)

		_, err = run(t, "", "query", "-e", `X parent_of (`)
		assert.Error(t, err)

		_, err = run(t, "", "query", "-e", `X y`, filepath.Join(t.TempDir(), "missing.atom"))
		assert.Error(t, err)

		_, err = run(t, "", "query", "-e", `X y`, "--format", "json")
		assert.ErrorContains(t, err, "invalid format")
	})
}

func TestLoadAndStatsWithStore(t *testing.T) {
	path := writeFile(t, "family.atom", family)
	store := filepath.Join(t.TempDir(), "store")

	out, err := run(t, "", "load", path, "--store", store)
	require.NoError(t, err)
	assert.Contains(t, out, "4 facts loaded")

	out, err = run(t, "", "stats", "--store", store)
	require.NoError(t, err)
	assert.Contains(t, out, "1 relations in knowledge base schema")
	assert.Contains(t, out, "4 facts loaded")
	assert.Contains(t, out, "2 rules loaded (3 clauses)")

	out, err = run(t, "", "query", "-e", `X grandparent_of "dave"`, "--store", store)
	require.NoError(t, err)
	assert.Contains(t, out, `X ~ "bob"`)

	_, err = run(t, "", "stats")
	assert.Error(t, err, "stats needs a store")
}
