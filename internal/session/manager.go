package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/termlab/termlab/internal/infrastructure/logging"
	"github.com/termlab/termlab/internal/infrastructure/monitoring"
	"github.com/termlab/termlab/internal/shared/id"
	"github.com/termlab/termlab/internal/shared/types"
	"github.com/termlab/termlab/internal/storage"
	"github.com/termlab/termlab/internal/vfs"
)

// Stage is a user's position in the terminal lifecycle. Account
// existence is durable store state; Stage tracks only the in-process
// part of the machine.
type Stage int

const (
	StageIdle Stage = iota // no session, no provisioning in flight
	StageAwaitingUsername
	StageAwaitingPassword
	StageActive
)

// Session is one active terminal session.
type Session struct {
	ID        id.SessionID `json:"id"`
	UserID    int64        `json:"user_id"`
	Username  string       `json:"username"`
	StartedAt time.Time    `json:"started_at"`
}

type userState struct {
	stage           Stage
	pendingUsername string
	session         *Session
}

// Manager drives the provisioning state machine and routes terminal
// input for active sessions to the command dispatcher.
type Manager struct {
	store   storage.Store
	logger  *logging.Logger
	metrics *monitoring.Metrics

	mu    sync.RWMutex
	users map[int64]*userState
}

// NewManager creates a session manager backed by the given store.
func NewManager(store storage.Store, logger *logging.Logger) *Manager {
	if logger == nil {
		logger = logging.NewDefault()
	}
	return &Manager{
		store:  store,
		logger: logger,
		users:  make(map[int64]*userState),
	}
}

// WithMetrics attaches a metrics collector.
func (m *Manager) WithMetrics(metrics *monitoring.Metrics) *Manager {
	m.metrics = metrics
	return m
}

// Enter is the terminal entry point. Without an account it starts the
// provisioning flow; with one it activates a session.
func (m *Manager) Enter(ctx context.Context, userID int64) (types.Reply, error) {
	account, err := m.store.GetAccount(ctx, userID)
	if err != nil {
		return types.Reply{}, fmt.Errorf("enter terminal: %w", err)
	}

	if account == nil {
		m.setStage(userID, StageAwaitingUsername, "")
		return types.Reply{
			Handled: true,
			Output: "Welcome to Linux Terminal!\n\n" +
				"You don't have a terminal account yet.\nLet's create one!\n\n" +
				"Send me a username (lowercase, no spaces):",
		}, nil
	}

	m.startSession(userID, account.Username)
	m.logActivity(ctx, userID, "terminal_start", "Started terminal session")

	return types.Reply{
		Handled:  true,
		Username: account.Username,
		Cwd:      account.CurrentDir,
		Output: fmt.Sprintf("Linux Terminal Active\n\nWelcome back, %s!\n\nYou're in: %s\n\n"+
			"Type any Linux command to get started.\n"+
			"Type 'help' to see available commands.\n"+
			"Type 'exit' to leave terminal mode.",
			account.Username, account.CurrentDir),
	}, nil
}

// Handle routes one line of input according to the user's stage.
// Outside of provisioning and an active session the input is not
// handled; that is not an error, the text falls through to other
// interpretation layers.
func (m *Manager) Handle(ctx context.Context, userID int64, text string) (types.Reply, error) {
	switch m.stage(userID) {
	case StageAwaitingUsername, StageAwaitingPassword:
		return m.handleProvisioning(ctx, userID, text)
	case StageActive:
		return m.handleCommand(ctx, userID, text)
	default:
		return types.Reply{Handled: false}, nil
	}
}

func (m *Manager) handleCommand(ctx context.Context, userID int64, text string) (types.Reply, error) {
	line := strings.TrimSpace(text)

	if strings.ToLower(line) == "exit" {
		return m.exit(ctx, userID)
	}

	account, err := m.store.GetAccount(ctx, userID)
	if err != nil {
		return types.Reply{}, fmt.Errorf("execute command: %w", err)
	}
	if account == nil {
		// Account vanished under an active session; drop the session.
		m.evict(userID)
		return types.Reply{Handled: false}, nil
	}

	shell := vfs.New(m.store, userID, account.Username)

	start := time.Now()
	result, err := shell.Execute(ctx, line, account.CurrentDir)
	if m.metrics != nil {
		m.metrics.ObserveCommand(commandLabel(line), time.Since(start), err)
	}
	if err != nil {
		return types.Reply{}, fmt.Errorf("execute command: %w", err)
	}

	reply := types.Reply{
		Handled:  true,
		Username: account.Username,
		Cwd:      result.Dir,
	}
	if result.Output == vfs.ClearSentinel {
		reply.Clear = true
	} else {
		reply.Output = result.Output
	}
	return reply, nil
}

func (m *Manager) exit(ctx context.Context, userID int64) (types.Reply, error) {
	session := m.evict(userID)
	if session == nil {
		return types.Reply{Handled: false}, nil
	}

	elapsed := int(time.Since(session.StartedAt).Seconds())
	if err := m.store.AddUsageTime(ctx, userID, elapsed); err != nil {
		return types.Reply{}, fmt.Errorf("end session: %w", err)
	}
	m.logActivity(ctx, userID, "terminal_end", fmt.Sprintf("Session duration: %ds", elapsed))

	return types.Reply{
		Handled:      true,
		SessionEnded: true,
		Username:     session.Username,
		Output:       fmt.Sprintf("Terminal session ended.\nSession time: %d minutes", elapsed/60),
	}, nil
}

// Sessions lists active sessions.
func (m *Manager) Sessions() []Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Session
	for _, state := range m.users {
		if state.session != nil {
			out = append(out, *state.session)
		}
	}
	return out
}

// Active reports whether a user has a running session.
func (m *Manager) Active(userID int64) bool {
	return m.stage(userID) == StageActive
}

func (m *Manager) stage(userID int64) Stage {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if state, ok := m.users[userID]; ok {
		return state.stage
	}
	return StageIdle
}

func (m *Manager) setStage(userID int64, stage Stage, pendingUsername string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	state, ok := m.users[userID]
	if !ok {
		state = &userState{}
		m.users[userID] = state
	}
	state.stage = stage
	state.pendingUsername = pendingUsername
}

func (m *Manager) pendingUsername(userID int64) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if state, ok := m.users[userID]; ok {
		return state.pendingUsername
	}
	return ""
}

func (m *Manager) startSession(userID int64, username string) *Session {
	session := &Session{
		ID:        id.NewSessionID(),
		UserID:    userID,
		Username:  username,
		StartedAt: time.Now(),
	}

	m.mu.Lock()
	state, ok := m.users[userID]
	if !ok {
		state = &userState{}
		m.users[userID] = state
	}
	state.stage = StageActive
	state.pendingUsername = ""
	state.session = session
	m.mu.Unlock()

	if m.metrics != nil {
		m.metrics.SessionStarted()
	}
	return session
}

// evict removes a user's session and returns it, or nil when none was
// active.
func (m *Manager) evict(userID int64) *Session {
	m.mu.Lock()
	state, ok := m.users[userID]
	var session *Session
	if ok {
		session = state.session
		delete(m.users, userID)
	}
	m.mu.Unlock()

	if session != nil && m.metrics != nil {
		m.metrics.SessionEnded()
	}
	return session
}

// logActivity records to the activity log. Failures are logged and
// swallowed; bookkeeping must not break the terminal.
func (m *Manager) logActivity(ctx context.Context, userID int64, kind, details string) {
	if err := m.store.LogActivity(ctx, userID, kind, details); err != nil {
		m.logger.Warn("activity log write failed",
			zap.Int64("user_id", userID),
			zap.String("kind", kind),
			zap.Error(err),
		)
	}
}

func commandLabel(line string) string {
	tokens := vfs.Tokenize(line)
	if len(tokens) == 0 {
		return "empty"
	}
	if _, ok := vfs.Lookup(tokens[0]); !ok {
		return "unknown"
	}
	return tokens[0]
}
