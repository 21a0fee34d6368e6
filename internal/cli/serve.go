package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/dmitrymomot/syncqueue/pkg/backends"
	"github.com/dmitrymomot/syncqueue/pkg/config"
	"github.com/dmitrymomot/syncqueue/pkg/httpserver"
	"github.com/dmitrymomot/syncqueue/pkg/logger"
	"github.com/dmitrymomot/syncqueue/pkg/mutation"
	"github.com/dmitrymomot/syncqueue/pkg/remote"
	"github.com/dmitrymomot/syncqueue/pkg/requestid"
	"github.com/dmitrymomot/syncqueue/pkg/storage"
)

func newServeCommand(root *RootOptions) *cobra.Command {
	var (
		addr        string
		secret      string
		journalSize int
		dedupeSize  int
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a sync endpoint that accepts replayed mutations",
		Long: `serve accepts signed mutations on POST /mutations and appends every applied
mutation to a journal kept in the configured storage under
<queue>-applied. It is a reference receiver for development and tests.
Probes live on /healthz and /readyz, metrics on /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := notifyContext(cmd.Context())
			defer stop()

			var httpCfg httpserver.Config
			if err := config.ForceReload(&httpCfg); err != nil {
				return err
			}
			if addr != "" {
				httpCfg.Addr = addr
			}
			if secret == "" {
				rf := remoteFlags{}
				rcfg, err := rf.config()
				if err != nil {
					return err
				}
				secret = rcfg.Secret
			}

			s, err := backends.Open(ctx, root.cfg.StorageDSN)
			if err != nil {
				return errors.Join(ErrOpenStorage, err)
			}
			defer s.Close()

			log := root.Logger()
			reg := prometheus.NewRegistry()
			j := newJournal(s, root.cfg.QueueName+"-applied", journalSize, reg, log)

			r := chi.NewRouter()
			r.Use(requestid.Middleware)
			r.Mount("/", remote.NewHandler(j,
				remote.WithSecret(secret),
				remote.WithDedupeSize(dedupeSize),
				remote.WithHandlerLogger(log),
			))
			r.Get("/healthz", httpserver.HealthCheckHandler(log, nil))
			r.Get("/readyz", httpserver.HealthCheckHandler(log, map[string]httpserver.Check{
				"storage": storageProbe(s, j.key),
			}))
			r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
			r.Get("/applied", func(w http.ResponseWriter, r *http.Request) {
				items, err := j.list(r.Context())
				if err != nil {
					http.Error(w, err.Error(), http.StatusInternalServerError)
					return
				}
				data, err := mutation.MarshalList(items)
				if err != nil {
					http.Error(w, err.Error(), http.StatusInternalServerError)
					return
				}
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write(data)
			})

			srv := httpserver.NewFromConfig(httpCfg,
				httpserver.WithLogger(log),
				httpserver.WithStartHook(func(bound string) {
					fmt.Fprintf(root.Err, "listening on %s\n", bound)
				}),
			)
			return srv.Run(ctx, r)
		},
	}
	f := cmd.Flags()
	f.StringVar(&addr, "addr", "", "listen address (default $SYNCQUEUE_HTTP_ADDR or :8080)")
	f.StringVar(&secret, "secret", "", "HMAC secret required on requests (default $SYNCQUEUE_REMOTE_SECRET)")
	f.IntVar(&journalSize, "journal-size", 1000, "applied mutations kept in the journal")
	f.IntVar(&dedupeSize, "dedupe-size", 1024, "recent idempotency keys remembered")
	return cmd
}

// journal is the applier behind serve. It keeps the most recent applied
// mutations as a JSON list under one storage key.
type journal struct {
	store storage.Storage
	key   string
	limit int
	log   *slog.Logger

	mu      sync.Mutex
	applied *prometheus.CounterVec
}

func newJournal(s storage.Storage, key string, limit int, reg prometheus.Registerer, log *slog.Logger) *journal {
	if limit <= 0 {
		limit = 1000
	}
	return &journal{
		store: s,
		key:   key,
		limit: limit,
		log:   log,
		applied: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "syncqueue_server_mutations_applied_total",
			Help: "Mutations accepted by the sync endpoint.",
		}, []string{"type"}),
	}
}

func (j *journal) Apply(ctx context.Context, m mutation.PendingMutation) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	items, err := j.readLocked(ctx)
	if err != nil {
		return err
	}
	items = append(items, m)
	if over := len(items) - j.limit; over > 0 {
		items = items[over:]
	}
	data, err := mutation.MarshalList(items)
	if err != nil {
		return errors.Join(remote.ErrPermanentFailure, err)
	}
	if err := j.store.SetItem(ctx, j.key, string(data)); err != nil {
		return err
	}
	j.applied.WithLabelValues(string(m.Type)).Inc()
	return nil
}

func (j *journal) list(ctx context.Context) ([]mutation.PendingMutation, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.readLocked(ctx)
}

func (j *journal) readLocked(ctx context.Context) ([]mutation.PendingMutation, error) {
	raw, err := j.store.GetItem(ctx, j.key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	items, err := mutation.UnmarshalList([]byte(raw))
	if err != nil {
		// Damaged journals are replaced on the next write.
		j.log.WarnContext(ctx, "discarding unreadable journal",
			logger.StorageKey(j.key), logger.Error(err))
		return nil, nil
	}
	return items, nil
}

// storageProbe reads one key; a missing key still proves the backend answers.
func storageProbe(s storage.Storage, key string) httpserver.Check {
	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if _, err := s.GetItem(ctx, key); err != nil && !errors.Is(err, storage.ErrNotFound) {
			return err
		}
		return nil
	}
}
