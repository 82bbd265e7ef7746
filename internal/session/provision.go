package session

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/termlab/termlab/internal/shared/types"
	"github.com/termlab/termlab/internal/vfs"
)

// Provisioning rules: usernames are lowercase alphanumeric with at
// least three characters, passwords at least four. The credential is
// stored as a bcrypt hash, never as plaintext.
const (
	minUsernameLen = 3
	minPasswordLen = 4
)

var usernamePattern = regexp.MustCompile(`^[a-z0-9]+$`)

// SeedDirs are the subdirectories created under every new home
// directory.
var SeedDirs = []string{"Desktop", "Documents", "Downloads", "Pictures", "Projects"}

func (m *Manager) handleProvisioning(ctx context.Context, userID int64, text string) (types.Reply, error) {
	switch m.stage(userID) {
	case StageAwaitingUsername:
		return m.handleUsername(userID, text)
	case StageAwaitingPassword:
		return m.handlePassword(ctx, userID, text)
	default:
		return types.Reply{Handled: false}, nil
	}
}

func (m *Manager) handleUsername(userID int64, text string) (types.Reply, error) {
	username := strings.ToLower(strings.TrimSpace(text))

	if len(username) < minUsernameLen || !usernamePattern.MatchString(username) {
		return types.Reply{
			Handled: true,
			Output:  "Invalid username. Use 3+ alphanumeric characters.\nTry again:",
		}, nil
	}

	m.setStage(userID, StageAwaitingPassword, username)
	return types.Reply{
		Handled: true,
		Output:  fmt.Sprintf("Username: %s\n\nNow send me a password (min 4 characters):", username),
	}, nil
}

func (m *Manager) handlePassword(ctx context.Context, userID int64, text string) (types.Reply, error) {
	password := strings.TrimSpace(text)

	if len(password) < minPasswordLen {
		return types.Reply{
			Handled: true,
			Output:  "Password too short. Min 4 characters.\nTry again:",
		}, nil
	}

	username := m.pendingUsername(userID)

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return types.Reply{}, fmt.Errorf("hash password: %w", err)
	}

	account, err := m.store.CreateAccount(ctx, userID, username, string(hash))
	if err != nil {
		return types.Reply{}, fmt.Errorf("create account: %w", err)
	}

	if err := m.seedHome(ctx, userID, account.HomeDir); err != nil {
		return types.Reply{}, fmt.Errorf("seed home directory: %w", err)
	}

	m.startSession(userID, username)
	m.logActivity(ctx, userID, "terminal_created", "Created account: "+username)

	return types.Reply{
		Handled:  true,
		Username: username,
		Cwd:      account.HomeDir,
		Output: fmt.Sprintf("Terminal Account Created!\n\nUsername: %s\nHome: %s\n\n"+
			"Terminal mode is now ACTIVE.\nType commands to get started!\n\nTry: ls -la",
			username, account.HomeDir),
	}, nil
}

// seedHome creates the home directory and its default subdirectories.
// Provisioning is the one operation allowed to materialize a directory
// without pre-existing ancestors.
func (m *Manager) seedHome(ctx context.Context, userID int64, home string) error {
	paths := make([]string, 0, len(SeedDirs)+1)
	paths = append(paths, home)
	for _, dir := range SeedDirs {
		paths = append(paths, home+"/"+dir)
	}

	for _, path := range paths {
		if err := m.store.CreateEntry(ctx, userID, path, true, "", vfs.DefaultPermissions); err != nil {
			return err
		}
	}
	return nil
}
