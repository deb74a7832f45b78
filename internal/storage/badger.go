package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/benbeisheim/chess-backend/internal/model"
)

// Badger stores JSON game records under game:<id> keys.
type Badger struct {
	db *badger.DB
}

// OpenBadger opens the database in dir, or an in-memory database when dir is
// empty.
func OpenBadger(dir string) (*Badger, error) {
	opts := badger.DefaultOptions(dir)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &Badger{db: db}, nil
}

func (s *Badger) Save(ctx context.Context, rec model.GameRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(gameKey(rec.ID)), data)
	})
}

func (s *Badger) Load(ctx context.Context, id string) (model.GameRecord, error) {
	var rec model.GameRecord
	if err := ctx.Err(); err != nil {
		return rec, err
	}
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(gameKey(id)))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})
	return rec, err
}

func (s *Badger) List(ctx context.Context) ([]model.GameRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := []model.GameRecord{}
	prefix := []byte(gameKey(""))
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var rec model.GameRecord
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			})
			if err != nil {
				return err
			}
			out = append(out, rec)
		}
		return nil
	})
	return out, err
}

func (s *Badger) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(gameKey(id)))
	})
}

func (s *Badger) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
