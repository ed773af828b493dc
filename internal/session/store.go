// Letterdesk - Physical Letter Fulfillment Admin Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/letterdesk

package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/tomtom215/letterdesk/internal/models"
)

// StorageKey is the key the session is persisted under.
const StorageKey = "admin-auth"

// ErrNoSession is returned by Store.Load when nothing is persisted.
var ErrNoSession = errors.New("no persisted session")

// State is the persisted form of a session.
type State struct {
	Token         string        `json:"token"`
	Admin         *models.Admin `json:"admin,omitempty"`
	ExpiresAt     time.Time     `json:"expiresAt,omitempty"`
	EstablishedAt time.Time     `json:"establishedAt"`
}

// Store persists session state.
type Store interface {
	Load(ctx context.Context) (*State, error)
	Save(ctx context.Context, st *State) error
	Clear(ctx context.Context) error
	Close() error
}

// NopStore keeps nothing.
type NopStore struct{}

func (NopStore) Load(context.Context) (*State, error) { return nil, ErrNoSession }
func (NopStore) Save(context.Context, *State) error   { return nil }
func (NopStore) Clear(context.Context) error          { return nil }
func (NopStore) Close() error                         { return nil }

// BadgerStore persists the session in BadgerDB.
type BadgerStore struct {
	db     *badger.DB
	ownsDB bool
}

// OpenBadgerStore opens a BadgerDB at path. An empty path opens an
// in-memory database.
func OpenBadgerStore(path string) (*BadgerStore, error) {
	var opts badger.Options
	if path == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(path)
	}
	opts = opts.WithLogger(nil) // Suppress BadgerDB logs

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db for session: %w", err)
	}
	return &BadgerStore{db: db, ownsDB: true}, nil
}

// NewBadgerStore uses an already open database. Close does not close db.
func NewBadgerStore(db *badger.DB) *BadgerStore {
	return &BadgerStore{db: db}
}

// Load implements Store.
func (s *BadgerStore) Load(_ context.Context) (*State, error) {
	var st State
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(StorageKey))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNoSession
		}
		if err != nil {
			return fmt.Errorf("get session: %w", err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &st)
		})
	})
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// Save implements Store. The entry expires with the token when the token
// carries an expiry.
func (s *BadgerStore) Save(_ context.Context, st *State) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(StorageKey), data)
		if !st.ExpiresAt.IsZero() {
			if ttl := time.Until(st.ExpiresAt); ttl > 0 {
				e = e.WithTTL(ttl)
			}
		}
		return txn.SetEntry(e)
	})
}

// Clear implements Store.
func (s *BadgerStore) Clear(_ context.Context) error {
	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete([]byte(StorageKey)); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("delete session: %w", err)
		}
		return nil
	})
}

// Close implements Store.
func (s *BadgerStore) Close() error {
	if s.ownsDB {
		return s.db.Close()
	}
	return nil
}

var (
	_ Store = (*BadgerStore)(nil)
	_ Store = NopStore{}
)
