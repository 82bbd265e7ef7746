package vfs

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/termlab/termlab/internal/storage"
)

const testUserID int64 = 42

func newTestShell(t *testing.T) (*Shell, *storage.Memory) {
	t.Helper()

	store := storage.NewMemory()
	ctx := context.Background()

	_, err := store.CreateAccount(ctx, testUserID, "alice", "hash")
	require.NoError(t, err)

	for _, path := range []string{"/home/alice", "/home/alice/Documents", "/home/alice/Projects"} {
		require.NoError(t, store.CreateEntry(ctx, testUserID, path, true, "", DefaultPermissions))
	}

	return New(store, testUserID, "alice"), store
}

func run(t *testing.T, shell *Shell, line, cwd string) Result {
	t.Helper()
	result, err := shell.Execute(context.Background(), line, cwd)
	require.NoError(t, err)
	return result
}

func TestExecuteEmptyLine(t *testing.T) {
	shell, _ := newTestShell(t)

	result := run(t, shell, "", "/home/alice")
	assert.Empty(t, result.Output)
	assert.Equal(t, "/home/alice", result.Dir)

	result = run(t, shell, "   ", "/home/alice")
	assert.Empty(t, result.Output)
}

func TestExecuteUnknownCommand(t *testing.T) {
	shell, _ := newTestShell(t)

	result := run(t, shell, "vim notes.txt", "/home/alice")
	assert.Equal(t, "bash: vim: command not found", result.Output)
	assert.Equal(t, "/home/alice", result.Dir)
}

func TestPwd(t *testing.T) {
	shell, _ := newTestShell(t)

	result := run(t, shell, "pwd", "/home/alice/Documents")
	assert.Equal(t, "/home/alice/Documents", result.Output)
	assert.Equal(t, "/home/alice/Documents", result.Dir)
}

func TestWhoami(t *testing.T) {
	shell, _ := newTestShell(t)

	result := run(t, shell, "whoami", "/home/alice")
	assert.Equal(t, "alice", result.Output)
}

func TestClear(t *testing.T) {
	shell, _ := newTestShell(t)

	result := run(t, shell, "clear", "/home/alice")
	assert.Equal(t, ClearSentinel, result.Output)
	assert.Equal(t, "/home/alice", result.Dir)
}

func TestHelpListsEveryCommand(t *testing.T) {
	shell, _ := newTestShell(t)

	result := run(t, shell, "help", "/home/alice")
	for name := range commandNames {
		assert.Contains(t, result.Output, name)
	}
	assert.Contains(t, result.Output, "exit")
}

func TestCdNoArgsGoesHome(t *testing.T) {
	shell, store := newTestShell(t)

	result := run(t, shell, "cd", "/home/alice/Documents")
	assert.Equal(t, "/home/alice", result.Dir)
	assert.Empty(t, result.Output)

	account, err := store.GetAccount(context.Background(), testUserID)
	require.NoError(t, err)
	assert.Equal(t, "/home/alice", account.CurrentDir)
}

func TestCdIntoDirectory(t *testing.T) {
	shell, store := newTestShell(t)

	result := run(t, shell, "cd Documents", "/home/alice")
	assert.Equal(t, "/home/alice/Documents", result.Dir)

	account, err := store.GetAccount(context.Background(), testUserID)
	require.NoError(t, err)
	assert.Equal(t, "/home/alice/Documents", account.CurrentDir)
}

func TestCdMissingTarget(t *testing.T) {
	shell, _ := newTestShell(t)

	result := run(t, shell, "cd nowhere", "/home/alice")
	assert.Equal(t, "bash: cd: nowhere: No such file or directory", result.Output)
	assert.Equal(t, "/home/alice", result.Dir)
}

func TestCdIntoFile(t *testing.T) {
	shell, _ := newTestShell(t)

	run(t, shell, "touch notes.txt", "/home/alice")
	result := run(t, shell, "cd notes.txt", "/home/alice")
	assert.Equal(t, "bash: cd: notes.txt: Not a directory", result.Output)
	assert.Equal(t, "/home/alice", result.Dir)
}

func TestCdParentPastRoot(t *testing.T) {
	shell, store := newTestShell(t)
	require.NoError(t, store.CreateEntry(context.Background(), testUserID, "/", true, "", DefaultPermissions))

	result := run(t, shell, "cd ../../../..", "/home/alice")
	assert.Equal(t, "/", result.Dir)
}

func TestLsShort(t *testing.T) {
	shell, _ := newTestShell(t)

	result := run(t, shell, "ls", "/home/alice")
	assert.Equal(t, "Documents  Projects", result.Output)
}

func TestLsHidesDotfiles(t *testing.T) {
	shell, _ := newTestShell(t)

	run(t, shell, "touch .bashrc", "/home/alice")
	result := run(t, shell, "ls", "/home/alice")
	assert.NotContains(t, result.Output, ".bashrc")

	result = run(t, shell, "ls -a", "/home/alice")
	assert.Contains(t, result.Output, ".bashrc")
}

func TestLsLong(t *testing.T) {
	shell, _ := newTestShell(t)

	run(t, shell, "echo hi > greet.txt", "/home/alice")
	result := run(t, shell, "ls -l", "/home/alice")

	lines := strings.Split(result.Output, "\n")
	require.True(t, strings.HasPrefix(lines[0], "total "))
	assert.Contains(t, result.Output, "drwxr-xr-x 1 alice alice")
	assert.Contains(t, result.Output, "-rwxr-xr-x 1 alice alice")
	assert.Contains(t, result.Output, "greet.txt")
}

func TestLsLongAllAddsDotRows(t *testing.T) {
	shell, _ := newTestShell(t)

	result := run(t, shell, "ls -la", "/home/alice")
	lines := strings.Split(result.Output, "\n")
	require.GreaterOrEqual(t, len(lines), 3)
	assert.True(t, strings.HasSuffix(lines[1], " ."))
	assert.True(t, strings.HasSuffix(lines[2], " .."))
}

func TestLsEmptyDirectory(t *testing.T) {
	shell, _ := newTestShell(t)

	result := run(t, shell, "ls Documents", "/home/alice")
	assert.Empty(t, result.Output)

	result = run(t, shell, "ls -l Documents", "/home/alice")
	assert.Empty(t, result.Output)
}

func TestLsMissingPath(t *testing.T) {
	shell, _ := newTestShell(t)

	result := run(t, shell, "ls /nope", "/home/alice")
	assert.Equal(t, "ls: cannot access '/nope': No such file or directory", result.Output)
}

func TestLsFilePathListsNoChildren(t *testing.T) {
	shell, _ := newTestShell(t)

	run(t, shell, "touch plain.txt", "/home/alice")
	result := run(t, shell, "ls plain.txt", "/home/alice")
	assert.Empty(t, result.Output)
}

func TestMkdir(t *testing.T) {
	shell, store := newTestShell(t)

	result := run(t, shell, "mkdir work", "/home/alice")
	assert.Empty(t, result.Output)

	entry, err := store.GetEntry(context.Background(), testUserID, "/home/alice/work")
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.True(t, entry.IsDirectory)
	assert.Equal(t, DefaultPermissions, entry.Permissions)
}

func TestMkdirExisting(t *testing.T) {
	shell, _ := newTestShell(t)

	result := run(t, shell, "mkdir Documents", "/home/alice")
	assert.Equal(t, "mkdir: cannot create directory 'Documents': File exists", result.Output)
}

func TestMkdirMissingParent(t *testing.T) {
	shell, _ := newTestShell(t)

	result := run(t, shell, "mkdir a/b/c", "/home/alice")
	assert.Equal(t, "mkdir: cannot create directory 'a/b/c': No such file or directory", result.Output)
}

func TestMkdirParents(t *testing.T) {
	shell, store := newTestShell(t)

	result := run(t, shell, "mkdir -p a/b/c", "/home/alice")
	assert.Empty(t, result.Output)

	ctx := context.Background()
	for _, path := range []string{"/home/alice/a", "/home/alice/a/b", "/home/alice/a/b/c"} {
		entry, err := store.GetEntry(ctx, testUserID, path)
		require.NoError(t, err)
		require.NotNil(t, entry, path)
		assert.True(t, entry.IsDirectory)
	}
}

func TestMkdirParentsExistingIsQuiet(t *testing.T) {
	shell, _ := newTestShell(t)

	result := run(t, shell, "mkdir -p Documents", "/home/alice")
	assert.Empty(t, result.Output)
}

func TestMkdirMissingOperand(t *testing.T) {
	shell, _ := newTestShell(t)

	result := run(t, shell, "mkdir", "/home/alice")
	assert.Equal(t, "mkdir: missing operand", result.Output)
}

func TestTouch(t *testing.T) {
	shell, store := newTestShell(t)

	result := run(t, shell, "touch a.txt b.txt", "/home/alice")
	assert.Empty(t, result.Output)

	ctx := context.Background()
	for _, path := range []string{"/home/alice/a.txt", "/home/alice/b.txt"} {
		entry, err := store.GetEntry(ctx, testUserID, path)
		require.NoError(t, err)
		require.NotNil(t, entry)
		assert.False(t, entry.IsDirectory)
		assert.Empty(t, entry.Content)
	}
}

func TestTouchExistingKeepsContent(t *testing.T) {
	shell, store := newTestShell(t)

	run(t, shell, "echo keep > a.txt", "/home/alice")
	run(t, shell, "touch a.txt", "/home/alice")

	entry, err := store.GetEntry(context.Background(), testUserID, "/home/alice/a.txt")
	require.NoError(t, err)
	assert.Equal(t, "keep", entry.Content)
}

func TestTouchMissingOperand(t *testing.T) {
	shell, _ := newTestShell(t)

	result := run(t, shell, "touch", "/home/alice")
	assert.Equal(t, "touch: missing file operand", result.Output)
}

func TestCat(t *testing.T) {
	shell, _ := newTestShell(t)

	run(t, shell, "echo hello world > a.txt", "/home/alice")
	result := run(t, shell, "cat a.txt", "/home/alice")
	assert.Equal(t, "hello world", result.Output)
}

func TestCatMultiple(t *testing.T) {
	shell, _ := newTestShell(t)

	run(t, shell, "echo one > a.txt", "/home/alice")
	run(t, shell, "echo two > b.txt", "/home/alice")
	result := run(t, shell, "cat a.txt b.txt", "/home/alice")
	assert.Equal(t, "one\ntwo", result.Output)
}

func TestCatMissing(t *testing.T) {
	shell, _ := newTestShell(t)

	result := run(t, shell, "cat nope.txt", "/home/alice")
	assert.Equal(t, "cat: nope.txt: No such file or directory", result.Output)
}

func TestCatDirectory(t *testing.T) {
	shell, _ := newTestShell(t)

	result := run(t, shell, "cat Documents", "/home/alice")
	assert.Equal(t, "cat: Documents: Is a directory", result.Output)
}

func TestEchoPlain(t *testing.T) {
	shell, _ := newTestShell(t)

	result := run(t, shell, "echo hello world", "/home/alice")
	assert.Equal(t, "hello world", result.Output)
}

func TestEchoQuoted(t *testing.T) {
	shell, _ := newTestShell(t)

	result := run(t, shell, `echo "hello   world"`, "/home/alice")
	assert.Equal(t, "hello   world", result.Output)
}

func TestEchoRedirectOverwrite(t *testing.T) {
	shell, store := newTestShell(t)

	run(t, shell, "echo first > a.txt", "/home/alice")
	run(t, shell, "echo second > a.txt", "/home/alice")

	entry, err := store.GetEntry(context.Background(), testUserID, "/home/alice/a.txt")
	require.NoError(t, err)
	assert.Equal(t, "second", entry.Content)
	assert.Equal(t, len("second"), entry.Size)
}

func TestEchoRedirectAppend(t *testing.T) {
	shell, store := newTestShell(t)

	run(t, shell, "echo first > a.txt", "/home/alice")
	run(t, shell, "echo second >> a.txt", "/home/alice")

	entry, err := store.GetEntry(context.Background(), testUserID, "/home/alice/a.txt")
	require.NoError(t, err)
	assert.Equal(t, "first\nsecond", entry.Content)
}

func TestEchoAppendCreates(t *testing.T) {
	shell, store := newTestShell(t)

	run(t, shell, "echo solo >> fresh.txt", "/home/alice")

	entry, err := store.GetEntry(context.Background(), testUserID, "/home/alice/fresh.txt")
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, "solo", entry.Content)
}

func TestEchoRedirectWithoutTarget(t *testing.T) {
	shell, _ := newTestShell(t)

	result := run(t, shell, "echo oops >", "/home/alice")
	assert.Equal(t, "bash: syntax error near unexpected token `newline'", result.Output)
}

func TestRmFile(t *testing.T) {
	shell, store := newTestShell(t)

	run(t, shell, "touch gone.txt", "/home/alice")
	result := run(t, shell, "rm gone.txt", "/home/alice")
	assert.Empty(t, result.Output)

	entry, err := store.GetEntry(context.Background(), testUserID, "/home/alice/gone.txt")
	require.NoError(t, err)
	assert.Nil(t, entry)
}

func TestRmDirectoryNeedsRecursive(t *testing.T) {
	shell, _ := newTestShell(t)

	result := run(t, shell, "rm Documents", "/home/alice")
	assert.Equal(t, "rm: cannot remove 'Documents': Is a directory", result.Output)
}

func TestRmRecursiveRemovesSubtree(t *testing.T) {
	shell, store := newTestShell(t)

	run(t, shell, "mkdir -p deep/nested", "/home/alice")
	run(t, shell, "touch deep/nested/leaf.txt", "/home/alice")
	result := run(t, shell, "rm -r deep", "/home/alice")
	assert.Empty(t, result.Output)

	ctx := context.Background()
	for _, path := range []string{"/home/alice/deep", "/home/alice/deep/nested", "/home/alice/deep/nested/leaf.txt"} {
		entry, err := store.GetEntry(ctx, testUserID, path)
		require.NoError(t, err)
		assert.Nil(t, entry, path)
	}
}

func TestRmMissing(t *testing.T) {
	shell, _ := newTestShell(t)

	result := run(t, shell, "rm nope.txt", "/home/alice")
	assert.Equal(t, "rm: cannot remove 'nope.txt': No such file or directory", result.Output)

	result = run(t, shell, "rm -f nope.txt", "/home/alice")
	assert.Empty(t, result.Output)
}

func TestRmMissingOperand(t *testing.T) {
	shell, _ := newTestShell(t)

	result := run(t, shell, "rm -rf", "/home/alice")
	assert.Equal(t, "rm: missing operand", result.Output)
}

func TestCp(t *testing.T) {
	shell, store := newTestShell(t)

	run(t, shell, "echo payload > src.txt", "/home/alice")
	run(t, shell, "chmod 600 src.txt", "/home/alice")
	result := run(t, shell, "cp src.txt dst.txt", "/home/alice")
	assert.Empty(t, result.Output)

	ctx := context.Background()
	src, err := store.GetEntry(ctx, testUserID, "/home/alice/src.txt")
	require.NoError(t, err)
	require.NotNil(t, src)

	dst, err := store.GetEntry(ctx, testUserID, "/home/alice/dst.txt")
	require.NoError(t, err)
	require.NotNil(t, dst)
	assert.Equal(t, "payload", dst.Content)
	assert.Equal(t, "600", dst.Permissions)
}

func TestCpMissingSource(t *testing.T) {
	shell, _ := newTestShell(t)

	result := run(t, shell, "cp nope.txt dst.txt", "/home/alice")
	assert.Equal(t, "cp: cannot stat 'nope.txt': No such file or directory", result.Output)
}

func TestCpDirectoryRefused(t *testing.T) {
	shell, _ := newTestShell(t)

	result := run(t, shell, "cp Documents elsewhere", "/home/alice")
	assert.Equal(t, "cp: -r not specified; omitting directory", result.Output)
}

func TestCpMissingDestination(t *testing.T) {
	shell, _ := newTestShell(t)

	result := run(t, shell, "cp lonely.txt", "/home/alice")
	assert.Equal(t, "cp: missing destination file operand", result.Output)
}

func TestMv(t *testing.T) {
	shell, store := newTestShell(t)

	run(t, shell, "echo payload > old.txt", "/home/alice")
	result := run(t, shell, "mv old.txt new.txt", "/home/alice")
	assert.Empty(t, result.Output)

	ctx := context.Background()
	old, err := store.GetEntry(ctx, testUserID, "/home/alice/old.txt")
	require.NoError(t, err)
	assert.Nil(t, old)

	entry, err := store.GetEntry(ctx, testUserID, "/home/alice/new.txt")
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, "payload", entry.Content)
}

func TestMvDirectoryRefused(t *testing.T) {
	shell, _ := newTestShell(t)

	result := run(t, shell, "mv Documents Archive", "/home/alice")
	assert.Equal(t, "mv: cannot move 'Documents': Is a directory", result.Output)
}

func TestMvMissingSource(t *testing.T) {
	shell, _ := newTestShell(t)

	result := run(t, shell, "mv nope.txt new.txt", "/home/alice")
	assert.Equal(t, "mv: cannot stat 'nope.txt': No such file or directory", result.Output)
}

func TestChmod(t *testing.T) {
	shell, store := newTestShell(t)

	run(t, shell, "touch script.sh", "/home/alice")
	result := run(t, shell, "chmod 750 script.sh", "/home/alice")
	assert.Empty(t, result.Output)

	entry, err := store.GetEntry(context.Background(), testUserID, "/home/alice/script.sh")
	require.NoError(t, err)
	assert.Equal(t, "750", entry.Permissions)
}

func TestChmodInvalidMode(t *testing.T) {
	shell, _ := newTestShell(t)

	for _, mode := range []string{"999", "75", "rwx"} {
		result := run(t, shell, fmt.Sprintf("chmod %s whatever", mode), "/home/alice")
		assert.Equal(t, fmt.Sprintf("chmod: invalid mode: '%s'", mode), result.Output)
	}
}

func TestChmodMissingTarget(t *testing.T) {
	shell, _ := newTestShell(t)

	result := run(t, shell, "chmod 644 nope.txt", "/home/alice")
	assert.Equal(t, "chmod: cannot access 'nope.txt': No such file or directory", result.Output)
}

func TestChmodMissingOperand(t *testing.T) {
	shell, _ := newTestShell(t)

	result := run(t, shell, "chmod 644", "/home/alice")
	assert.Equal(t, "chmod: missing operand", result.Output)
}

// TestShellScenario walks a filesystem session end to end the way an
// interactive user would.
func TestShellScenario(t *testing.T) {
	shell, _ := newTestShell(t)
	cwd := "/home/alice"

	step := func(line string) Result {
		result := run(t, shell, line, cwd)
		cwd = result.Dir
		return result
	}

	assert.Empty(t, step("mkdir projects").Output)
	assert.Empty(t, step("cd projects").Output)
	assert.Equal(t, "/home/alice/projects", cwd)

	assert.Empty(t, step(`echo "hello world" > readme.md`).Output)
	assert.Equal(t, "hello world", step("cat readme.md").Output)

	assert.Empty(t, step("cp readme.md backup.md").Output)
	assert.Equal(t, "backup.md  readme.md", step("ls").Output)

	assert.Empty(t, step("chmod 600 backup.md").Output)
	assert.Contains(t, step("ls -l").Output, "-rw-------")

	assert.Empty(t, step("rm backup.md").Output)
	assert.Equal(t, "readme.md", step("ls").Output)

	assert.Empty(t, step("cd ..").Output)
	assert.Equal(t, "/home/alice", cwd)
	assert.Equal(t, "/home/alice", step("pwd").Output)
}
