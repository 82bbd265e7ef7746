package vfs

import (
	"context"
	"fmt"
	"strings"

	"github.com/termlab/termlab/internal/shared/types"
)

// ClearSentinel is the reserved output value returned by clear. It is a
// control signal for the presentation layer and must never be rendered
// literally.
const ClearSentinel = "__CLEAR__"

// Store is the slice of the backing record store the shell needs. All
// operations are scoped to a single owning user; no command touches
// another user's entries.
type Store interface {
	SetCurrentDir(ctx context.Context, userID int64, path string) error
	GetEntry(ctx context.Context, userID int64, path string) (*types.FileEntry, error)
	ListChildren(ctx context.Context, userID int64, parentPath string) ([]types.FileEntry, error)
	CreateEntry(ctx context.Context, userID int64, path string, isDir bool, content, permissions string) error
	UpdateContent(ctx context.Context, userID int64, path, content string) error
	UpdatePermissions(ctx context.Context, userID int64, path, permissions string) error
	DeleteSubtree(ctx context.Context, userID int64, prefix string) error
}

// Result is the outcome of one command: the text to show and the
// (possibly unchanged) working directory. User errors arrive here as
// bash-style Output text.
type Result struct {
	Output string
	Dir    string
}

// Command enumerates the known command kinds. Dispatch is a closed
// switch over these values, so adding or removing a command is a
// compile-time-checked change.
type Command int

const (
	CmdPwd Command = iota
	CmdCd
	CmdLs
	CmdMkdir
	CmdTouch
	CmdCat
	CmdEcho
	CmdRm
	CmdCp
	CmdMv
	CmdChmod
	CmdWhoami
	CmdClear
	CmdHelp
)

var commandNames = map[string]Command{
	"pwd":    CmdPwd,
	"cd":     CmdCd,
	"ls":     CmdLs,
	"mkdir":  CmdMkdir,
	"touch":  CmdTouch,
	"cat":    CmdCat,
	"echo":   CmdEcho,
	"rm":     CmdRm,
	"cp":     CmdCp,
	"mv":     CmdMv,
	"chmod":  CmdChmod,
	"whoami": CmdWhoami,
	"clear":  CmdClear,
	"help":   CmdHelp,
}

// Lookup maps a command name to its kind.
func Lookup(name string) (Command, bool) {
	cmd, ok := commandNames[name]
	return cmd, ok
}

// Shell executes commands against one user's virtual filesystem.
type Shell struct {
	store    Store
	userID   int64
	username string
	home     string
}

// New creates a shell for the given account.
func New(store Store, userID int64, username string) *Shell {
	return &Shell{
		store:    store,
		userID:   userID,
		username: username,
		home:     "/home/" + username,
	}
}

// Home returns the account's home directory.
func (s *Shell) Home() string {
	return s.home
}

// Execute runs one command line against the current working directory
// and returns the output plus the new working directory. A non-nil
// error means the backing store failed; everything user-facing is
// Result.Output.
func (s *Shell) Execute(ctx context.Context, line, cwd string) (Result, error) {
	tokens := Tokenize(strings.TrimSpace(line))
	if len(tokens) == 0 {
		return Result{Dir: cwd}, nil
	}

	name := tokens[0]
	args := tokens[1:]

	cmd, ok := Lookup(name)
	if !ok {
		return Result{Output: fmt.Sprintf("bash: %s: command not found", name), Dir: cwd}, nil
	}

	switch cmd {
	case CmdPwd:
		return Result{Output: cwd, Dir: cwd}, nil
	case CmdCd:
		return s.cd(ctx, args, cwd)
	case CmdLs:
		return s.ls(ctx, args, cwd)
	case CmdMkdir:
		return s.mkdir(ctx, args, cwd)
	case CmdTouch:
		return s.touch(ctx, args, cwd)
	case CmdCat:
		return s.cat(ctx, args, cwd)
	case CmdEcho:
		return s.echo(ctx, args, cwd)
	case CmdRm:
		return s.rm(ctx, args, cwd)
	case CmdCp:
		return s.cp(ctx, args, cwd)
	case CmdMv:
		return s.mv(ctx, args, cwd)
	case CmdChmod:
		return s.chmod(ctx, args, cwd)
	case CmdWhoami:
		return Result{Output: s.username, Dir: cwd}, nil
	case CmdClear:
		return Result{Output: ClearSentinel, Dir: cwd}, nil
	case CmdHelp:
		return Result{Output: helpText, Dir: cwd}, nil
	}

	return Result{Output: fmt.Sprintf("bash: %s: command not found", name), Dir: cwd}, nil
}

const helpText = `Available commands:

Navigation:
  pwd          - Print current directory
  cd <dir>     - Change directory
  ls [-la]     - List files

File operations:
  touch <file> - Create empty file
  cat <file>   - Show file contents
  echo <text>  - Print text or redirect to file
  mkdir <dir>  - Create directory
  rm [-rf]     - Remove files/directories
  cp <s> <d>   - Copy file
  mv <s> <d>   - Move/rename file

Permissions:
  chmod <mode> <file> - Change permissions

Other:
  whoami       - Print username
  clear        - Clear screen
  help         - Show this help
  exit         - Exit terminal mode`
