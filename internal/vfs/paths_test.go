package vfs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const (
	testCwd  = "/home/alice/docs"
	testHome = "/home/alice"
)

func TestResolveAbsolute(t *testing.T) {
	assert.Equal(t, "/etc/hosts", Resolve("/etc/hosts", testCwd, testHome))
	assert.Equal(t, "/", Resolve("/", testCwd, testHome))
}

func TestResolveHome(t *testing.T) {
	assert.Equal(t, "/home/alice", Resolve("~", testCwd, testHome))
	assert.Equal(t, "/home/alice/notes.txt", Resolve("~/notes.txt", testCwd, testHome))
}

func TestResolveRelative(t *testing.T) {
	assert.Equal(t, "/home/alice/docs/a.txt", Resolve("a.txt", testCwd, testHome))
	assert.Equal(t, "/home/alice/docs/sub/b", Resolve("sub/b", testCwd, testHome))
}

func TestResolveDotSegments(t *testing.T) {
	assert.Equal(t, "/home/alice", Resolve("..", testCwd, testHome))
	assert.Equal(t, "/home/alice/docs", Resolve(".", testCwd, testHome))
	assert.Equal(t, "/home/alice/other", Resolve("../other", testCwd, testHome))
	assert.Equal(t, "/home/alice/docs/a", Resolve("./sub/../a", testCwd, testHome))
}

func TestResolveRootFloor(t *testing.T) {
	// Ascending past root stays at root.
	assert.Equal(t, "/", Resolve("../../../../..", testCwd, testHome))
	assert.Equal(t, "/etc", Resolve("/../etc", testCwd, testHome))
}

func TestResolveIdempotent(t *testing.T) {
	inputs := []string{"/a/b/c", "a/b", "..", "~/x", "./y", "sub//z", "/"}
	for _, in := range inputs {
		once := Resolve(in, testCwd, testHome)
		again := Resolve(once, "/somewhere/else", testHome)
		assert.Equal(t, once, again, "input %q", in)
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "/a/b", Normalize("/a//b/"))
	assert.Equal(t, "/a", Normalize("/a/b/.."))
	assert.Equal(t, "/", Normalize("//"))
	assert.Equal(t, "/", Normalize("/.."))
	assert.Equal(t, "/a/b", Normalize("/./a/./b/."))
}

func TestParentOf(t *testing.T) {
	assert.Equal(t, "/home/alice", ParentOf("/home/alice/docs"))
	assert.Equal(t, "/", ParentOf("/home"))
	assert.Equal(t, "/", ParentOf("/"))
}

func TestBaseName(t *testing.T) {
	assert.Equal(t, "docs", BaseName("/home/alice/docs"))
	assert.Equal(t, "home", BaseName("/home"))
	assert.Equal(t, "/", BaseName("/"))
}
