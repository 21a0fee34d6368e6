package mongo

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/dmitrymomot/syncqueue/pkg/storage"
)

// document is the stored shape of one key.
type document struct {
	Key       string    `bson:"_id"`
	Value     string    `bson:"value"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// Storage keeps one document per key, with the key as _id.
type Storage struct {
	coll   *mongo.Collection
	client *mongo.Client // set when the storage owns the connection
}

// NewStorage wraps an existing collection. Close leaves the client connected.
func NewStorage(coll *mongo.Collection) (*Storage, error) {
	if coll == nil {
		return nil, ErrNilCollection
	}
	return &Storage{coll: coll}, nil
}

// Open connects with cfg and returns a storage that owns the client.
func Open(ctx context.Context, cfg Config) (*Storage, error) {
	client, err := New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	db := cfg.Database
	if db == "" {
		db = "syncqueue"
	}
	coll := cfg.Collection
	if coll == "" {
		coll = "syncqueue_kv"
	}
	return &Storage{coll: client.Database(db).Collection(coll), client: client}, nil
}

// OpenDSN builds a storage from a mongodb:// or mongodb+srv:// DSN.
// The database comes from the URL path; the collection query parameter
// overrides the default collection and is stripped before connecting.
func OpenDSN(ctx context.Context, dsn string) (storage.Storage, error) {
	u, err := url.Parse(dsn)
	if err != nil {
		return nil, errors.Join(ErrInvalidDSN, err)
	}
	cfg := DefaultConfig("")
	if db := strings.Trim(u.Path, "/"); db != "" {
		cfg.Database = db
	}
	q := u.Query()
	if c := q.Get("collection"); c != "" {
		cfg.Collection = c
		q.Del("collection")
	}
	u.RawQuery = q.Encode()
	cfg.ConnectionURL = u.String()
	cfg.RetryAttempts = 1
	return Open(ctx, cfg)
}

func (s *Storage) GetItem(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", storage.ErrInvalidKey
	}
	var doc document
	if err := s.coll.FindOne(ctx, bson.D{{Key: "_id", Value: key}}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", storage.ErrNotFound
		}
		return "", err
	}
	return doc.Value, nil
}

func (s *Storage) SetItem(ctx context.Context, key, value string) error {
	if key == "" {
		return storage.ErrInvalidKey
	}
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "value", Value: value},
		{Key: "updated_at", Value: time.Now().UTC()},
	}}}
	_, err := s.coll.UpdateOne(ctx, bson.D{{Key: "_id", Value: key}}, update, options.UpdateOne().SetUpsert(true))
	return err
}

func (s *Storage) RemoveItem(ctx context.Context, key string) error {
	if key == "" {
		return storage.ErrInvalidKey
	}
	_, err := s.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: key}})
	return err
}

// Collection returns the backing collection.
func (s *Storage) Collection() *mongo.Collection {
	return s.coll
}

func (s *Storage) Close() error {
	if s.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

var _ storage.Storage = (*Storage)(nil)
