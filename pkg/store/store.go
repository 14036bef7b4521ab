// Package store keeps replay reports in BadgerDB.
//
// Reports are encoded with msgpack and keyed by their run ID. Run IDs are
// UUIDv7, so List returns reports oldest first.
package store

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/reb0und/sringbuf/pkg/replay"
)

// ErrNotFound is returned when no report has the requested ID.
var ErrNotFound = errors.New("store: report not found")

const keyPrefix = "report:"

// Options configures a Store.
type Options struct {
	// Dir is the directory for BadgerDB data files.
	// Required unless InMemory is set.
	Dir string

	// InMemory keeps everything in memory. Used by tests.
	InMemory bool

	// Logger receives badger warnings and errors. If nil, uses slog.Default().
	Logger *slog.Logger
}

// Store is a report store backed by BadgerDB.
type Store struct {
	db *badger.DB
}

// Open opens or creates a store.
func Open(opts Options) (*Store, error) {
	if !opts.InMemory && opts.Dir == "" {
		return nil, errors.New("store: Options.Dir is required for on-disk mode")
	}
	dbOpts := badger.DefaultOptions(opts.Dir)
	if opts.InMemory {
		dbOpts = badger.DefaultOptions("").WithInMemory(true)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	dbOpts = dbOpts.WithLogger(badgerLogger{logger.With("component", "badger")})

	db, err := badger.Open(dbOpts)
	if err != nil {
		return nil, fmt.Errorf("store: open: %w", err)
	}
	return &Store{db: db}, nil
}

func key(id string) []byte {
	return []byte(keyPrefix + id)
}

// Put saves rep, replacing any report with the same ID.
func (s *Store) Put(_ context.Context, rep *replay.Report) error {
	if rep.ID == "" {
		return errors.New("store: report has no id")
	}
	data, err := msgpack.Marshal(rep)
	if err != nil {
		return fmt.Errorf("store: encode %s: %w", rep.ID, err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key(rep.ID), data)
	})
}

// Get loads the report with the given ID.
func (s *Store) Get(_ context.Context, id string) (*replay.Report, error) {
	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key(id))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return decode(id, data)
}

// Delete removes the report with the given ID.
func (s *Store) Delete(_ context.Context, id string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key(id)); err != nil {
			return err
		}
		return txn.Delete(key(id))
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return err
}

// List iterates over stored reports, oldest first. Iteration stops early
// with ctx's error if ctx is done.
func (s *Store) List(ctx context.Context) iter.Seq2[*replay.Report, error] {
	prefix := []byte(keyPrefix)

	return func(yield func(*replay.Report, error) bool) {
		err := s.db.View(func(txn *badger.Txn) error {
			opts := badger.DefaultIteratorOptions
			opts.Prefix = prefix
			it := txn.NewIterator(opts)
			defer it.Close()

			for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
				if err := ctx.Err(); err != nil {
					return err
				}
				if !yield(readItem(it.Item(), len(prefix))) {
					return nil
				}
			}
			return nil
		})
		if err != nil {
			yield(nil, err)
		}
	}
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func readItem(item *badger.Item, prefixLen int) (*replay.Report, error) {
	id := string(item.Key()[prefixLen:])
	data, err := item.ValueCopy(nil)
	if err != nil {
		return nil, fmt.Errorf("store: read %s: %w", id, err)
	}
	return decode(id, data)
}

func decode(id string, data []byte) (*replay.Report, error) {
	var rep replay.Report
	if err := msgpack.Unmarshal(data, &rep); err != nil {
		return nil, fmt.Errorf("store: decode %s: %w", id, err)
	}
	return &rep, nil
}

// badgerLogger forwards badger warnings and errors to slog. Info and debug
// chatter is dropped.
type badgerLogger struct {
	l *slog.Logger
}

func (b badgerLogger) Errorf(f string, v ...any) { b.l.Error(fmt.Sprintf(f, v...)) }
func (b badgerLogger) Warningf(f string, v ...any) {
	b.l.Warn(fmt.Sprintf(f, v...))
}
func (badgerLogger) Infof(string, ...any)  {}
func (badgerLogger) Debugf(string, ...any) {}
