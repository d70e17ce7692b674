package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/postmood/postmood/pkg/config"
	"github.com/postmood/postmood/pkg/learning"
	"github.com/postmood/postmood/pkg/logging"
)

const badgerKeyPrefix = "model:"

// BadgerStore keeps models in an embedded Badger database, one key per
// model name
type BadgerStore struct {
	db   *badger.DB
	name string
}

// NewBadgerStore opens the database described by cfg
func NewBadgerStore(cfg *config.BadgerStoreConfig) (*BadgerStore, error) {
	if cfg == nil {
		cfg = &config.DefaultConfig().Store.Badger
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(cfg.Dir)
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db for models: %w", err)
	}

	return NewBadgerStoreFromDB(db, cfg.Name), nil
}

// NewBadgerStoreFromDB wraps an open database; Close closes it
func NewBadgerStoreFromDB(db *badger.DB, name string) *BadgerStore {
	if name == "" {
		name = "default"
	}
	return &BadgerStore{db: db, name: name}
}

func (s *BadgerStore) key() []byte {
	return []byte(badgerKeyPrefix + s.name)
}

// Save stores the record under model:<name>
func (s *BadgerStore) Save(ctx context.Context, m *learning.NaiveBayes) error {
	data, err := Marshal(m)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(s.key(), data)
	})
	if err != nil {
		return fmt.Errorf("failed to save model to badger: %w", err)
	}

	logging.Info().Str("key", string(s.key())).Int("bytes", len(data)).Msg("model saved")
	return nil
}

// Load reads the record; a missing key is reported as (nil, nil)
func (s *BadgerStore) Load(ctx context.Context) (*learning.NaiveBayes, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(s.key())
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			data = append([]byte(nil), val...)
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		logging.Debug().Str("key", string(s.key())).Msg("no stored model")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: badger read failed: %v", ErrInvalidRecord, err)
	}

	m, err := Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("badger key %s: %w", s.key(), err)
	}
	return m, nil
}

// Delete removes the stored model
func (s *BadgerStore) Delete(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete(s.key()); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return nil
	})
}

// Close closes the database
func (s *BadgerStore) Close() error {
	return s.db.Close()
}
