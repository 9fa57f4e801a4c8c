package vecstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/vmihailenco/msgpack/v5"
)

// keyPrefix namespaces voiceprint records inside the badger keyspace.
var keyPrefix = []byte("voiceprint:")

// Badger is a durable Store backed by BadgerDB v4. Records are encoded
// with msgpack. Badger transactions give per-identity atomicity: readers
// see either the old or the new record, never a partial write.
type Badger struct {
	db *badger.DB
}

// BadgerOptions configures the badger-backed store.
type BadgerOptions struct {
	// Dir is the directory for badger data files. Required unless
	// InMemory is set.
	Dir string

	// InMemory runs badger without disk persistence. Useful for tests
	// that want a real badger engine.
	InMemory bool

	// Log receives badger's internal messages. Nil means slog.Default().
	Log *slog.Logger
}

// NewBadger opens (creating if needed) a badger-backed voiceprint store.
func NewBadger(opts BadgerOptions) (*Badger, error) {
	if !opts.InMemory && opts.Dir == "" {
		return nil, errors.New("vecstore: BadgerOptions.Dir is required for on-disk mode")
	}
	if opts.Log == nil {
		opts.Log = slog.Default()
	}

	dbOpts := badger.DefaultOptions(opts.Dir).
		WithInMemory(opts.InMemory).
		WithLogger(slogBadger{opts.Log.With("component", "vecstore")})
	db, err := badger.Open(dbOpts)
	if err != nil {
		return nil, fmt.Errorf("vecstore: open badger: %w", err)
	}
	return &Badger{db: db}, nil
}

// DB exposes the underlying handle so other stores with disjoint key
// prefixes can share the same database.
func (b *Badger) DB() *badger.DB {
	return b.db
}

func key(identity string) []byte {
	return append(append([]byte{}, keyPrefix...), identity...)
}

func (b *Badger) Upsert(_ context.Context, identity string, vector []float32) error {
	rec := Record{
		Identity:  identity,
		Vector:    vector,
		UpdatedAt: time.Now().UTC(),
	}
	val, err := msgpack.Marshal(rec)
	if err != nil {
		return fmt.Errorf("vecstore: encode record: %w", err)
	}
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key(identity), val)
	})
}

func (b *Badger) Get(_ context.Context, identity string) ([]float32, error) {
	var rec Record
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key(identity))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return msgpack.Unmarshal(val, &rec)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("vecstore: get %q: %w", identity, err)
	}
	return rec.Vector, nil
}

func (b *Badger) Delete(_ context.Context, identity string) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key(identity))
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil
	}
	return err
}

func (b *Badger) Search(_ context.Context, query []float32, topK int) ([]Match, error) {
	if topK <= 0 {
		return nil, nil
	}

	var matches []Match
	err := b.db.View(func(txn *badger.Txn) error {
		iterOpts := badger.DefaultIteratorOptions
		iterOpts.Prefix = keyPrefix
		it := txn.NewIterator(iterOpts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var rec Record
			err := it.Item().Value(func(val []byte) error {
				return msgpack.Unmarshal(val, &rec)
			})
			if err != nil {
				return err
			}
			matches = append(matches, Match{
				Identity: rec.Identity,
				Distance: CosineDistance(query, rec.Vector),
			})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("vecstore: search: %w", err)
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Distance < matches[j].Distance
	})
	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

func (b *Badger) Len(_ context.Context) (int, error) {
	n := 0
	err := b.db.View(func(txn *badger.Txn) error {
		iterOpts := badger.DefaultIteratorOptions
		iterOpts.Prefix = keyPrefix
		iterOpts.PrefetchValues = false
		it := txn.NewIterator(iterOpts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			n++
		}
		return nil
	})
	return n, err
}

func (b *Badger) Close() error {
	return b.db.Close()
}

// slogBadger adapts slog to badger's Logger interface.
type slogBadger struct {
	log *slog.Logger
}

func (l slogBadger) Errorf(format string, args ...any) {
	l.log.Error(fmt.Sprintf(format, args...))
}

func (l slogBadger) Warningf(format string, args ...any) {
	l.log.Warn(fmt.Sprintf(format, args...))
}

func (l slogBadger) Infof(format string, args ...any) {
	l.log.Debug(fmt.Sprintf(format, args...))
}

func (l slogBadger) Debugf(format string, args ...any) {
	l.log.Debug(fmt.Sprintf(format, args...))
}
