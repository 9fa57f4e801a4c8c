package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	badger "github.com/dgraph-io/badger/v4"
)

var keyPrefix = []byte("identity:")

// Badger is a durable Store backed by BadgerDB v4, records JSON-encoded.
//
// It can share a DB handle with the vector store or run on its own
// directory; the key prefix keeps the namespaces apart either way.
type Badger struct {
	db    *badger.DB
	owned bool
}

// NewBadger opens a badger-backed metadata store in dir. Pass inMemory
// for a disk-free store in tests.
func NewBadger(dir string, inMemory bool, log *slog.Logger) (*Badger, error) {
	if !inMemory && dir == "" {
		return nil, errors.New("metadata: dir is required for on-disk mode")
	}
	if log == nil {
		log = slog.Default()
	}
	opts := badger.DefaultOptions(dir).
		WithInMemory(inMemory).
		WithLogger(badgerSlog{log.With("component", "metadata")})
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("metadata: open badger: %w", err)
	}
	return &Badger{db: db, owned: true}, nil
}

// WrapBadger builds a metadata store over an existing badger handle.
// Close becomes a no-op; the handle's owner closes it.
func WrapBadger(db *badger.DB) *Badger {
	return &Badger{db: db}
}

func key(identity string) []byte {
	return append(append([]byte{}, keyPrefix...), identity...)
}

func (b *Badger) RecordExists(_ context.Context, identity string) (bool, error) {
	err := b.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(key(identity))
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("metadata: exists %q: %w", identity, err)
	}
	return true, nil
}

func (b *Badger) RecordCreate(_ context.Context, identity string, rec Record) error {
	val, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("metadata: encode record: %w", err)
	}
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key(identity), val)
	})
}

func (b *Badger) RecordGet(_ context.Context, identity string) (Record, error) {
	var rec Record
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key(identity))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("metadata: get %q: %w", identity, err)
	}
	return rec, nil
}

func (b *Badger) RecordDelete(_ context.Context, identity string) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key(identity))
	})
}

func (b *Badger) Close() error {
	if !b.owned {
		return nil
	}
	return b.db.Close()
}

// badgerSlog adapts slog to badger's Logger interface.
type badgerSlog struct {
	log *slog.Logger
}

func (l badgerSlog) Errorf(format string, args ...any) {
	l.log.Error(fmt.Sprintf(format, args...))
}

func (l badgerSlog) Warningf(format string, args ...any) {
	l.log.Warn(fmt.Sprintf(format, args...))
}

func (l badgerSlog) Infof(format string, args ...any) {
	l.log.Debug(fmt.Sprintf(format, args...))
}

func (l badgerSlog) Debugf(format string, args ...any) {
	l.log.Debug(fmt.Sprintf(format, args...))
}
