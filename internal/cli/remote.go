package cli

import (
	"github.com/spf13/cobra"

	"github.com/dmitrymomot/syncqueue/pkg/config"
	"github.com/dmitrymomot/syncqueue/pkg/remote"
)

// remoteFlags are shared by the commands that talk to a sync endpoint.
type remoteFlags struct {
	url    string
	secret string
}

func (f *remoteFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.url, "remote-url", "", "sync endpoint base URL (default $SYNCQUEUE_REMOTE_URL)")
	cmd.Flags().StringVar(&f.secret, "secret", "", "HMAC signing secret (default $SYNCQUEUE_REMOTE_SECRET)")
}

func (f *remoteFlags) config() (remote.Config, error) {
	var cfg remote.Config
	if err := config.ForceReload(&cfg); err != nil {
		return cfg, err
	}
	if f.url != "" {
		cfg.BaseURL = f.url
	}
	if f.secret != "" {
		cfg.Secret = f.secret
	}
	return cfg, nil
}

func (f *remoteFlags) executor(root *RootOptions) (*remote.Executor, error) {
	cfg, err := f.config()
	if err != nil {
		return nil, err
	}
	if cfg.BaseURL == "" {
		return nil, ErrRemoteRequired
	}
	return remote.NewExecutor(cfg, remote.WithLogger(root.Logger()))
}
