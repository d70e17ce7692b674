package store

import (
	"context"
	"fmt"

	"github.com/postmood/postmood/pkg/config"
	"github.com/postmood/postmood/pkg/learning"
)

// ModelStore saves and loads one trained model.
//
// Load returns (nil, nil) when nothing has been stored, and (nil, err) with
// errors.Is(err, ErrInvalidRecord) when stored data cannot be used. Save
// never mutates the model and rejects an untrained one with
// learning.ErrNotTrained.
type ModelStore interface {
	Save(ctx context.Context, m *learning.NaiveBayes) error
	Load(ctx context.Context) (*learning.NaiveBayes, error)
	Close() error
}

// Deleter is implemented by stores that can remove the stored model
type Deleter interface {
	Delete(ctx context.Context) error
}

// Open creates the store selected by cfg.Backend
func Open(cfg config.StoreConfig) (ModelStore, error) {
	switch cfg.Backend {
	case config.BackendFile, "":
		return NewFileStore(cfg.File.Path), nil
	case config.BackendRedis:
		rs, err := NewRedisStore(&cfg.Redis)
		if err != nil {
			return nil, err
		}
		return rs, nil
	case config.BackendBadger:
		bs, err := NewBadgerStore(&cfg.Badger)
		if err != nil {
			return nil, err
		}
		return bs, nil
	default:
		return nil, fmt.Errorf("unknown store backend: %s", cfg.Backend)
	}
}

var (
	_ ModelStore = (*FileStore)(nil)
	_ ModelStore = (*RedisStore)(nil)
	_ ModelStore = (*BadgerStore)(nil)

	_ Deleter = (*FileStore)(nil)
	_ Deleter = (*RedisStore)(nil)
	_ Deleter = (*BadgerStore)(nil)
)
