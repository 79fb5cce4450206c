package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/use-overseer/Orquesta/internal/domain/model"
)

// Key layout for the badger backend.
const (
	weightsKey  = "model:weights"
	historyKey  = "model:history"
	tokenPrefix = "token:"
)

// Badger is the durable Store backed by an embedded badger database.
type Badger struct {
	db *badger.DB
}

var _ Store = (*Badger)(nil)

// NewBadger wraps an open badger database. The caller owns db and closes it.
func NewBadger(db *badger.DB) *Badger {
	return &Badger{db: db}
}

// Load reads the persisted snapshot. Missing keys mean a fresh store and
// yield empty state; payloads that fail to decode yield ErrCorrupt.
func (b *Badger) Load(_ context.Context) (model.WeightVector, []model.HistoryEntry, error) {
	weights := model.WeightVector{}
	var history []model.HistoryEntry

	err := b.db.View(func(txn *badger.Txn) error {
		if err := readJSON(txn, weightsKey, &weights); err != nil {
			return err
		}
		return readJSON(txn, historyKey, &history)
	})
	if err != nil {
		if errors.Is(err, ErrCorrupt) {
			return nil, nil, err
		}
		return nil, nil, fmt.Errorf("%w: load snapshot: %v", ErrUnavailable, err)
	}

	return weights, history, nil
}

// Save writes weights and history in a single transaction, so a crash
// mid-save leaves the previous snapshot intact.
func (b *Badger) Save(_ context.Context, weights model.WeightVector, history []model.HistoryEntry) error {
	weightsRaw, err := json.Marshal(weights)
	if err != nil {
		return fmt.Errorf("encode weights: %w", err)
	}
	if history == nil {
		history = []model.HistoryEntry{}
	}
	historyRaw, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}

	err = b.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(weightsKey), weightsRaw); err != nil {
			return err
		}
		return txn.Set([]byte(historyKey), historyRaw)
	})
	if err != nil {
		return fmt.Errorf("%w: save snapshot: %v", ErrUnavailable, err)
	}
	return nil
}

// PutToken stores or replaces a token record.
func (b *Badger) PutToken(_ context.Context, rec TokenRecord) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode token %s: %w", rec.ID, err)
	}

	err = b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(tokenPrefix+rec.ID), raw)
	})
	if err != nil {
		return fmt.Errorf("%w: put token: %v", ErrUnavailable, err)
	}
	return nil
}

// GetToken returns the record for id.
func (b *Badger) GetToken(_ context.Context, id string) (TokenRecord, error) {
	var rec TokenRecord

	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(tokenPrefix + id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("%w: get token: %v", ErrUnavailable, err)
		}
		return item.Value(func(val []byte) error {
			if err := json.Unmarshal(val, &rec); err != nil {
				return fmt.Errorf("%w: decode token %s: %v", ErrCorrupt, id, err)
			}
			return nil
		})
	})
	if err != nil {
		return TokenRecord{}, err
	}

	return rec, nil
}

// ListTokens returns all token records, oldest first.
func (b *Badger) ListTokens(_ context.Context) ([]TokenRecord, error) {
	var out []TokenRecord

	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(tokenPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var rec TokenRecord
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			})
			if err != nil {
				return fmt.Errorf("%w: decode token list: %v", ErrCorrupt, err)
			}
			out = append(out, rec)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrCorrupt) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: list tokens: %v", ErrUnavailable, err)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].RequestedAt.Equal(out[j].RequestedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].RequestedAt.Before(out[j].RequestedAt)
	})
	return out, nil
}

// DeleteToken removes the record for id.
func (b *Badger) DeleteToken(_ context.Context, id string) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete([]byte(tokenPrefix + id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	})
	if err != nil {
		return fmt.Errorf("%w: delete token: %v", ErrUnavailable, err)
	}
	return nil
}

// readJSON decodes the value at key into dst, leaving dst untouched when
// the key does not exist.
func readJSON(txn *badger.Txn, key string, dst any) error {
	item, err := txn.Get([]byte(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		if err := json.Unmarshal(val, dst); err != nil {
			return fmt.Errorf("%w: decode %s: %v", ErrCorrupt, key, err)
		}
		return nil
	})
}
