package vfs

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/termlab/termlab/internal/shared/types"
)

func (s *Shell) cd(ctx context.Context, args []string, cwd string) (Result, error) {
	if len(args) == 0 {
		if err := s.store.SetCurrentDir(ctx, s.userID, s.home); err != nil {
			return Result{}, fmt.Errorf("cd: %w", err)
		}
		return Result{Dir: s.home}, nil
	}

	target := args[0]
	path := Resolve(target, cwd, s.home)

	entry, err := s.store.GetEntry(ctx, s.userID, path)
	if err != nil {
		return Result{}, fmt.Errorf("cd: %w", err)
	}
	if entry == nil {
		return Result{Output: fmt.Sprintf("bash: cd: %s: No such file or directory", target), Dir: cwd}, nil
	}
	if !entry.IsDirectory {
		return Result{Output: fmt.Sprintf("bash: cd: %s: Not a directory", target), Dir: cwd}, nil
	}

	if err := s.store.SetCurrentDir(ctx, s.userID, path); err != nil {
		return Result{}, fmt.Errorf("cd: %w", err)
	}
	return Result{Dir: path}, nil
}

func (s *Shell) ls(ctx context.Context, args []string, cwd string) (Result, error) {
	var long, all bool
	pathArg := ""
	for _, arg := range args {
		if strings.HasPrefix(arg, "-") {
			long = long || strings.Contains(arg, "l")
			all = all || strings.Contains(arg, "a")
			continue
		}
		if pathArg == "" {
			pathArg = arg
		}
	}

	target := cwd
	if pathArg != "" {
		target = Resolve(pathArg, cwd, s.home)
		entry, err := s.store.GetEntry(ctx, s.userID, target)
		if err != nil {
			return Result{}, fmt.Errorf("ls: %w", err)
		}
		if entry == nil {
			return Result{Output: fmt.Sprintf("ls: cannot access '%s': No such file or directory", pathArg), Dir: cwd}, nil
		}
	}

	entries, err := s.store.ListChildren(ctx, s.userID, target)
	if err != nil {
		return Result{}, fmt.Errorf("ls: %w", err)
	}

	if long {
		return Result{Output: s.formatLong(entries, all), Dir: cwd}, nil
	}

	var names []string
	for _, e := range entries {
		if !all && strings.HasPrefix(e.Name, ".") {
			continue
		}
		names = append(names, e.Name)
	}
	return Result{Output: strings.Join(names, "  "), Dir: cwd}, nil
}

func (s *Shell) formatLong(entries []types.FileEntry, all bool) string {
	var lines []string

	if all {
		now := time.Now().Format("Jan _2 15:04")
		lines = append(lines,
			fmt.Sprintf("drwxr-xr-x 2 %s %s %5d %s .", s.username, s.username, types.DirSize, now),
			fmt.Sprintf("drwxr-xr-x 2 %s %s %5d %s ..", s.username, s.username, types.DirSize, now),
		)
	}

	for _, e := range entries {
		if !all && strings.HasPrefix(e.Name, ".") {
			continue
		}
		size := e.Size
		if e.IsDirectory {
			size = types.DirSize
		}
		lines = append(lines, fmt.Sprintf("%s 1 %s %s %5d %s %s",
			FormatMode(e.Permissions, e.IsDirectory),
			s.username, s.username,
			size,
			e.ModifiedAt.Format("Jan _2 15:04"),
			e.Name,
		))
	}

	if len(lines) == 0 {
		return ""
	}
	return fmt.Sprintf("total %d\n%s", len(entries), strings.Join(lines, "\n"))
}

func (s *Shell) mkdir(ctx context.Context, args []string, cwd string) (Result, error) {
	parents := false
	var targets []string
	for _, arg := range args {
		if strings.HasPrefix(arg, "-") {
			parents = parents || strings.Contains(arg, "p")
			continue
		}
		targets = append(targets, arg)
	}
	if len(targets) == 0 {
		return Result{Output: "mkdir: missing operand", Dir: cwd}, nil
	}

	for _, target := range targets {
		path := Resolve(target, cwd, s.home)

		existing, err := s.store.GetEntry(ctx, s.userID, path)
		if err != nil {
			return Result{}, fmt.Errorf("mkdir: %w", err)
		}
		if existing != nil {
			if !parents {
				return Result{Output: fmt.Sprintf("mkdir: cannot create directory '%s': File exists", target), Dir: cwd}, nil
			}
			continue
		}

		if parents {
			// Create every missing ancestor, root to leaf.
			if err := s.createAncestors(ctx, path); err != nil {
				return Result{}, fmt.Errorf("mkdir: %w", err)
			}
			continue
		}

		parent, err := s.store.GetEntry(ctx, s.userID, ParentOf(path))
		if err != nil {
			return Result{}, fmt.Errorf("mkdir: %w", err)
		}
		if parent == nil {
			return Result{Output: fmt.Sprintf("mkdir: cannot create directory '%s': No such file or directory", target), Dir: cwd}, nil
		}
		if err := s.store.CreateEntry(ctx, s.userID, path, true, "", DefaultPermissions); err != nil {
			return Result{}, fmt.Errorf("mkdir: %w", err)
		}
	}

	return Result{Dir: cwd}, nil
}

func (s *Shell) createAncestors(ctx context.Context, path string) error {
	parts := strings.Split(strings.TrimPrefix(path, "/"), "/")
	prefix := ""
	for _, part := range parts {
		prefix += "/" + part
		existing, err := s.store.GetEntry(ctx, s.userID, prefix)
		if err != nil {
			return err
		}
		if existing != nil {
			continue
		}
		if err := s.store.CreateEntry(ctx, s.userID, prefix, true, "", DefaultPermissions); err != nil {
			return err
		}
	}
	return nil
}

func (s *Shell) touch(ctx context.Context, args []string, cwd string) (Result, error) {
	if len(args) == 0 {
		return Result{Output: "touch: missing file operand", Dir: cwd}, nil
	}

	for _, name := range args {
		path := Resolve(name, cwd, s.home)
		existing, err := s.store.GetEntry(ctx, s.userID, path)
		if err != nil {
			return Result{}, fmt.Errorf("touch: %w", err)
		}
		if existing != nil {
			continue
		}
		if err := s.store.CreateEntry(ctx, s.userID, path, false, "", DefaultPermissions); err != nil {
			return Result{}, fmt.Errorf("touch: %w", err)
		}
	}

	return Result{Dir: cwd}, nil
}

func (s *Shell) cat(ctx context.Context, args []string, cwd string) (Result, error) {
	if len(args) == 0 {
		return Result{Dir: cwd}, nil
	}

	var outputs []string
	for _, name := range args {
		path := Resolve(name, cwd, s.home)
		entry, err := s.store.GetEntry(ctx, s.userID, path)
		if err != nil {
			return Result{}, fmt.Errorf("cat: %w", err)
		}
		if entry == nil {
			return Result{Output: fmt.Sprintf("cat: %s: No such file or directory", name), Dir: cwd}, nil
		}
		if entry.IsDirectory {
			return Result{Output: fmt.Sprintf("cat: %s: Is a directory", name), Dir: cwd}, nil
		}
		outputs = append(outputs, entry.Content)
	}

	return Result{Output: strings.Join(outputs, "\n"), Dir: cwd}, nil
}

func (s *Shell) echo(ctx context.Context, args []string, cwd string) (Result, error) {
	redirect := -1
	for i, arg := range args {
		if arg == ">" || arg == ">>" {
			redirect = i
			break
		}
	}

	if redirect < 0 {
		return Result{Output: strings.Join(args, " "), Dir: cwd}, nil
	}
	if redirect == len(args)-1 {
		return Result{Output: "bash: syntax error near unexpected token `newline'", Dir: cwd}, nil
	}

	content := strings.Join(args[:redirect], " ")
	path := Resolve(args[redirect+1], cwd, s.home)
	appendMode := args[redirect] == ">>"

	existing, err := s.store.GetEntry(ctx, s.userID, path)
	if err != nil {
		return Result{}, fmt.Errorf("echo: %w", err)
	}

	switch {
	case existing == nil:
		if err := s.store.CreateEntry(ctx, s.userID, path, false, content, DefaultPermissions); err != nil {
			return Result{}, fmt.Errorf("echo: %w", err)
		}
	case appendMode:
		if err := s.store.UpdateContent(ctx, s.userID, path, existing.Content+"\n"+content); err != nil {
			return Result{}, fmt.Errorf("echo: %w", err)
		}
	default:
		if err := s.store.UpdateContent(ctx, s.userID, path, content); err != nil {
			return Result{}, fmt.Errorf("echo: %w", err)
		}
	}

	return Result{Dir: cwd}, nil
}

func (s *Shell) rm(ctx context.Context, args []string, cwd string) (Result, error) {
	var recursive, force bool
	var targets []string
	for _, arg := range args {
		if strings.HasPrefix(arg, "-") {
			recursive = recursive || strings.Contains(arg, "r")
			force = force || strings.Contains(arg, "f")
			continue
		}
		targets = append(targets, arg)
	}
	if len(targets) == 0 {
		return Result{Output: "rm: missing operand", Dir: cwd}, nil
	}

	for _, target := range targets {
		path := Resolve(target, cwd, s.home)

		entry, err := s.store.GetEntry(ctx, s.userID, path)
		if err != nil {
			return Result{}, fmt.Errorf("rm: %w", err)
		}
		if entry == nil {
			if force {
				continue
			}
			return Result{Output: fmt.Sprintf("rm: cannot remove '%s': No such file or directory", target), Dir: cwd}, nil
		}
		if entry.IsDirectory && !recursive {
			return Result{Output: fmt.Sprintf("rm: cannot remove '%s': Is a directory", target), Dir: cwd}, nil
		}

		if err := s.store.DeleteSubtree(ctx, s.userID, path); err != nil {
			return Result{}, fmt.Errorf("rm: %w", err)
		}
	}

	return Result{Dir: cwd}, nil
}

func (s *Shell) cp(ctx context.Context, args []string, cwd string) (Result, error) {
	if len(args) < 2 {
		return Result{Output: "cp: missing destination file operand", Dir: cwd}, nil
	}

	src := Resolve(args[0], cwd, s.home)
	dst := Resolve(args[1], cwd, s.home)

	entry, err := s.store.GetEntry(ctx, s.userID, src)
	if err != nil {
		return Result{}, fmt.Errorf("cp: %w", err)
	}
	if entry == nil {
		return Result{Output: fmt.Sprintf("cp: cannot stat '%s': No such file or directory", args[0]), Dir: cwd}, nil
	}
	if entry.IsDirectory {
		return Result{Output: "cp: -r not specified; omitting directory", Dir: cwd}, nil
	}

	if err := s.store.CreateEntry(ctx, s.userID, dst, false, entry.Content, entry.Permissions); err != nil {
		return Result{}, fmt.Errorf("cp: %w", err)
	}

	return Result{Dir: cwd}, nil
}

// mv is create-then-delete, not atomic: a store failure between the two
// steps leaves the file duplicated. Directories are refused rather than
// re-pathed.
func (s *Shell) mv(ctx context.Context, args []string, cwd string) (Result, error) {
	if len(args) < 2 {
		return Result{Output: "mv: missing destination file operand", Dir: cwd}, nil
	}

	src := Resolve(args[0], cwd, s.home)
	dst := Resolve(args[1], cwd, s.home)

	entry, err := s.store.GetEntry(ctx, s.userID, src)
	if err != nil {
		return Result{}, fmt.Errorf("mv: %w", err)
	}
	if entry == nil {
		return Result{Output: fmt.Sprintf("mv: cannot stat '%s': No such file or directory", args[0]), Dir: cwd}, nil
	}
	if entry.IsDirectory {
		return Result{Output: fmt.Sprintf("mv: cannot move '%s': Is a directory", args[0]), Dir: cwd}, nil
	}

	if err := s.store.CreateEntry(ctx, s.userID, dst, false, entry.Content, entry.Permissions); err != nil {
		return Result{}, fmt.Errorf("mv: %w", err)
	}
	if err := s.store.DeleteSubtree(ctx, s.userID, src); err != nil {
		return Result{}, fmt.Errorf("mv: %w", err)
	}

	return Result{Dir: cwd}, nil
}

func (s *Shell) chmod(ctx context.Context, args []string, cwd string) (Result, error) {
	if len(args) < 2 {
		return Result{Output: "chmod: missing operand", Dir: cwd}, nil
	}

	mode := args[0]
	if !ValidMode(mode) {
		return Result{Output: fmt.Sprintf("chmod: invalid mode: '%s'", mode), Dir: cwd}, nil
	}

	for _, target := range args[1:] {
		path := Resolve(target, cwd, s.home)

		entry, err := s.store.GetEntry(ctx, s.userID, path)
		if err != nil {
			return Result{}, fmt.Errorf("chmod: %w", err)
		}
		if entry == nil {
			return Result{Output: fmt.Sprintf("chmod: cannot access '%s': No such file or directory", target), Dir: cwd}, nil
		}

		if err := s.store.UpdatePermissions(ctx, s.userID, path, mode); err != nil {
			return Result{}, fmt.Errorf("chmod: %w", err)
		}
	}

	return Result{Dir: cwd}, nil
}
