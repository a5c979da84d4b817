// Package tokens persists the session token between CLI runs.
//
// The token lives in the metadata table under common.TokenMetadataKey,
// next to the time it was written. Both rows change in one transaction.
package tokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/notekeeper/internal/clock"
	"github.com/dmitrijs2005/notekeeper/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/notekeeper/internal/common"
	"github.com/dmitrijs2005/notekeeper/internal/dbx"
)

const savedAtKey = common.TokenMetadataKey + "_saved_at"

// SQLiteStorage stores at most one token.
type SQLiteStorage struct {
	db    *sql.DB
	clock clock.Clock
}

func NewSQLiteStorage(db *sql.DB, clk clock.Clock) *SQLiteStorage {
	return &SQLiteStorage{db: db, clock: clk}
}

// Load returns the stored token, or "" when none is stored.
func (s *SQLiteStorage) Load(ctx context.Context) (string, error) {
	v, err := metadata.NewSQLiteRepository(s.db).Get(ctx, common.TokenMetadataKey)
	if errors.Is(err, common.ErrorNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("load token: %w", err)
	}
	return string(v), nil
}

// Save replaces the stored token. An empty token clears it.
func (s *SQLiteStorage) Save(ctx context.Context, token string) error {
	if token == "" {
		return s.Clear(ctx)
	}
	savedAt := s.clock.Now().UTC().Format(time.RFC3339Nano)
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Set(ctx, common.TokenMetadataKey, []byte(token)); err != nil {
			return err
		}
		return repo.Set(ctx, savedAtKey, []byte(savedAt))
	})
	if err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	return nil
}

// Clear removes the stored token. Clearing an empty storage is a no-op.
func (s *SQLiteStorage) Clear(ctx context.Context) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Delete(ctx, common.TokenMetadataKey); err != nil {
			return err
		}
		return repo.Delete(ctx, savedAtKey)
	})
	if err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	return nil
}

// SavedAt reports when the current token was written. ok is false when no
// token is stored.
func (s *SQLiteStorage) SavedAt(ctx context.Context) (t time.Time, ok bool, err error) {
	v, err := metadata.NewSQLiteRepository(s.db).Get(ctx, savedAtKey)
	if errors.Is(err, common.ErrorNotFound) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("load token timestamp: %w", err)
	}
	t, err = time.Parse(time.RFC3339Nano, string(v))
	if err != nil {
		return time.Time{}, false, fmt.Errorf("parse token timestamp: %w", err)
	}
	return t, true, nil
}

// Memory is an in-process storage for callers without a database.
type Memory struct {
	token string
}

func (m *Memory) Load(context.Context) (string, error) { return m.token, nil }

func (m *Memory) Save(_ context.Context, token string) error {
	m.token = token
	return nil
}

func (m *Memory) Clear(context.Context) error {
	m.token = ""
	return nil
}
