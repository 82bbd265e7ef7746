package storage

import (
	"context"

	"github.com/termlab/termlab/internal/shared/types"
)

// FileStore is the record-store surface for accounts and virtual
// filesystem entries. Lookups return (nil, nil) when no record exists;
// a non-nil error always means the store itself failed.
type FileStore interface {
	GetAccount(ctx context.Context, userID int64) (*types.Account, error)
	CreateAccount(ctx context.Context, userID int64, username, passwordHash string) (*types.Account, error)
	SetCurrentDir(ctx context.Context, userID int64, path string) error

	GetEntry(ctx context.Context, userID int64, path string) (*types.FileEntry, error)
	ListChildren(ctx context.Context, userID int64, parentPath string) ([]types.FileEntry, error)
	CreateEntry(ctx context.Context, userID int64, path string, isDir bool, content, permissions string) error
	UpdateContent(ctx context.Context, userID int64, path, content string) error
	UpdatePermissions(ctx context.Context, userID int64, path, permissions string) error

	// DeleteSubtree removes the entry at prefix and every entry whose
	// path starts with prefix.
	DeleteSubtree(ctx context.Context, userID int64, prefix string) error
}

// UserStore covers the user-level bookkeeping that outlives terminal
// sessions: lifetime usage accounting and the activity log.
type UserStore interface {
	AddUsageTime(ctx context.Context, userID int64, seconds int) error
	LogActivity(ctx context.Context, userID int64, kind, details string) error
}

// Store is the full backing-store surface.
type Store interface {
	FileStore
	UserStore
}
