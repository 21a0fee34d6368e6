package cli

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes the command tree with args against a fresh buffer pair.
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCommand(&RootOptions{Out: &out, Err: &errOut})
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func fileDSN(t *testing.T) string {
	t.Helper()
	return "file://" + filepath.Join(t.TempDir(), "queue")
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "syncqueue", cmd.Use)

	for _, name := range []string{"enqueue", "pending", "count", "clear", "drain", "watch", "serve", "deadletter"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}

	sub, _, err := cmd.Find([]string{"dlq", "list"})
	require.NoError(t, err)
	assert.Equal(t, "list", sub.Name())
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	for name, def := range map[string]string{
		"dsn":       "",
		"namespace": "",
		"queue":     "",
		"format":    "text",
		"verbose":   "false",
	} {
		f := cmd.PersistentFlags().Lookup(name)
		require.NotNil(t, f, name)
		assert.Equal(t, def, f.DefValue, name)
	}
	assert.Equal(t, "n", cmd.PersistentFlags().Lookup("namespace").Shorthand)
}

func TestInvalidFormat(t *testing.T) {
	_, _, err := run(t, "--dsn", "memory://", "--format", "xml", "count")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestSetup_FlagsOverrideEnv(t *testing.T) {
	t.Setenv("SYNCQUEUE_STORAGE_DSN", "memory://")
	t.Setenv("SYNCQUEUE_NAMESPACE", "from-env")
	t.Setenv("SYNCQUEUE_QUEUE_NAME", "env_queue")

	opts := &RootOptions{Out: &bytes.Buffer{}, Err: &bytes.Buffer{}}
	cmd := newRootCommand(opts)
	var seen *cobra.Command
	cmd.AddCommand(&cobra.Command{
		Use: "probe",
		RunE: func(c *cobra.Command, _ []string) error {
			seen = c
			return nil
		},
	})
	cmd.SetArgs([]string{"--namespace", "user-7", "probe"})
	require.NoError(t, cmd.Execute())
	require.NotNil(t, seen)

	cfg := opts.Config()
	assert.Equal(t, "memory://", cfg.StorageDSN)
	assert.Equal(t, "user-7", cfg.Namespace)
	assert.Equal(t, "env_queue", cfg.QueueName)
	assert.NotNil(t, opts.Logger())
}

func discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
