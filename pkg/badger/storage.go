package badger

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"os"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/dmitrymomot/syncqueue/pkg/storage"
)

// Storage keeps queue values in an embedded BadgerDB.
type Storage struct {
	db    *badger.DB
	owned bool
	log   *slog.Logger

	stop chan struct{}
	wg   sync.WaitGroup
	once sync.Once
}

// NewStorage wraps an open database. Close leaves db open.
func NewStorage(db *badger.DB) (*Storage, error) {
	if db == nil {
		return nil, ErrNilDB
	}
	return &Storage{db: db, log: slog.Default(), stop: make(chan struct{})}, nil
}

// Open opens the database described by cfg and starts value log GC when
// cfg.GCInterval is set on a persistent database.
func Open(cfg Config, log *slog.Logger) (*Storage, error) {
	if log == nil {
		log = slog.Default()
	}
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if cfg.Path == "" {
			return nil, ErrPathRequired
		}
		if err := os.MkdirAll(cfg.Path, 0o750); err != nil {
			return nil, errors.Join(ErrFailedToOpen, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.
		WithSyncWrites(cfg.SyncWrites).
		WithNumVersionsToKeep(1).
		WithLogger(&badgerLogger{log: log.With(slog.String("component", "badger"))})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Join(ErrFailedToOpen, err)
	}

	s := &Storage{db: db, owned: true, log: log, stop: make(chan struct{})}
	if !cfg.InMemory && cfg.GCInterval > 0 {
		ratio := cfg.GCDiscardRatio
		if ratio <= 0 || ratio >= 1 {
			ratio = 0.5
		}
		s.wg.Add(1)
		go s.gcLoop(cfg.GCInterval, ratio)
	}
	return s, nil
}

// OpenDSN builds a storage from badger://<dir> or badger://memory.
func OpenDSN(_ context.Context, dsn string) (storage.Storage, error) {
	u, err := url.Parse(dsn)
	if err != nil {
		return nil, errors.Join(storage.ErrInvalidDSN, err)
	}
	if u.Host == "memory" && (u.Path == "" || u.Path == "/") {
		return Open(InMemoryConfig(), nil)
	}
	path, err := storage.DSNPath(u, dsn)
	if err != nil {
		return nil, err
	}
	return Open(DefaultConfig(path), nil)
}

func (s *Storage) GetItem(_ context.Context, key string) (string, error) {
	if key == "" {
		return "", storage.ErrInvalidKey
	}
	var value []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", storage.ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return string(value), nil
}

func (s *Storage) SetItem(_ context.Context, key, value string) error {
	if key == "" {
		return storage.ErrInvalidKey
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), []byte(value))
	})
}

func (s *Storage) RemoveItem(_ context.Context, key string) error {
	if key == "" {
		return storage.ErrInvalidKey
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}

// DB returns the underlying database.
func (s *Storage) DB() *badger.DB {
	return s.db
}

// Close stops GC and closes the database if the storage opened it.
func (s *Storage) Close() error {
	s.once.Do(func() { close(s.stop) })
	s.wg.Wait()
	if !s.owned || s.db.IsClosed() {
		return nil
	}
	return s.db.Close()
}

func (s *Storage) gcLoop(interval time.Duration, ratio float64) {
	defer s.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			// Keep collecting while badger finds files worth rewriting.
			for {
				err := s.db.RunValueLogGC(ratio)
				if err == nil {
					continue
				}
				if !errors.Is(err, badger.ErrNoRewrite) {
					s.log.Warn("badger value log gc failed", slog.Any("error", err))
				}
				break
			}
		}
	}
}

var _ storage.Storage = (*Storage)(nil)
