package storage

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/termlab/termlab/internal/shared/types"
)

// Memory is an in-process Store used by tests and local runs. It mirrors
// the PostgREST implementation's semantics, including the prefix match
// in DeleteSubtree.
type Memory struct {
	mu       sync.RWMutex
	accounts map[int64]*types.Account
	entries  map[int64]map[string]*types.FileEntry
	usage    map[int64]int
	activity []ActivityRecord
}

// ActivityRecord is one activity-log row.
type ActivityRecord struct {
	UserID    int64
	Kind      string
	Details   string
	CreatedAt time.Time
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		accounts: make(map[int64]*types.Account),
		entries:  make(map[int64]map[string]*types.FileEntry),
		usage:    make(map[int64]int),
	}
}

var _ Store = (*Memory)(nil)

func (m *Memory) GetAccount(_ context.Context, userID int64) (*types.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	account, ok := m.accounts[userID]
	if !ok {
		return nil, nil
	}
	copied := *account
	return &copied, nil
}

func (m *Memory) CreateAccount(_ context.Context, userID int64, username, passwordHash string) (*types.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	home := "/home/" + username
	account := &types.Account{
		UserID:       userID,
		Username:     username,
		PasswordHash: passwordHash,
		HomeDir:      home,
		CurrentDir:   home,
		CreatedAt:    time.Now(),
	}
	m.accounts[userID] = account

	copied := *account
	return &copied, nil
}

func (m *Memory) SetCurrentDir(_ context.Context, userID int64, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if account, ok := m.accounts[userID]; ok {
		account.CurrentDir = path
	}
	return nil
}

func (m *Memory) GetEntry(_ context.Context, userID int64, path string) (*types.FileEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entry, ok := m.entries[userID][path]
	if !ok {
		return nil, nil
	}
	copied := *entry
	return &copied, nil
}

func (m *Memory) ListChildren(_ context.Context, userID int64, parentPath string) ([]types.FileEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var children []types.FileEntry
	for _, entry := range m.entries[userID] {
		if entry.ParentPath == parentPath {
			children = append(children, *entry)
		}
	}
	sort.Slice(children, func(i, j int) bool { return children[i].Name < children[j].Name })
	return children, nil
}

func (m *Memory) CreateEntry(_ context.Context, userID int64, path string, isDir bool, content, permissions string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.entries[userID] == nil {
		m.entries[userID] = make(map[string]*types.FileEntry)
	}

	now := time.Now()
	m.entries[userID][path] = &types.FileEntry{
		UserID:      userID,
		Path:        path,
		ParentPath:  parentPath(path),
		Name:        leafName(path),
		IsDirectory: isDir,
		Content:     content,
		Permissions: permissions,
		Size:        len(content),
		CreatedAt:   now,
		ModifiedAt:  now,
	}
	return nil
}

func (m *Memory) UpdateContent(_ context.Context, userID int64, path, content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if entry, ok := m.entries[userID][path]; ok {
		entry.Content = content
		entry.Size = len(content)
		entry.ModifiedAt = time.Now()
	}
	return nil
}

func (m *Memory) UpdatePermissions(_ context.Context, userID int64, path, permissions string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if entry, ok := m.entries[userID][path]; ok {
		entry.Permissions = permissions
		entry.ModifiedAt = time.Now()
	}
	return nil
}

func (m *Memory) DeleteSubtree(_ context.Context, userID int64, prefix string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for path := range m.entries[userID] {
		if strings.HasPrefix(path, prefix) {
			delete(m.entries[userID], path)
		}
	}
	return nil
}

func (m *Memory) AddUsageTime(_ context.Context, userID int64, seconds int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.usage[userID] += seconds
	return nil
}

func (m *Memory) LogActivity(_ context.Context, userID int64, kind, details string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.activity = append(m.activity, ActivityRecord{
		UserID:    userID,
		Kind:      kind,
		Details:   details,
		CreatedAt: time.Now(),
	})
	return nil
}

// UsageTime returns the accumulated usage counter for a user.
func (m *Memory) UsageTime(userID int64) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.usage[userID]
}

// Activity returns a copy of the activity log.
func (m *Memory) Activity() []ActivityRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]ActivityRecord, len(m.activity))
	copy(out, m.activity)
	return out
}

func parentPath(path string) string {
	idx := strings.LastIndex(path, "/")
	if idx <= 0 {
		return "/"
	}
	return path[:idx]
}

func leafName(path string) string {
	return path[strings.LastIndex(path, "/")+1:]
}
