package vfs

import "strings"

// Resolve converts a user-supplied path token into a normalized absolute
// path. Absolute tokens stand alone, a leading ~ expands to the home
// directory, and anything else is taken relative to cwd. The result is
// stable under re-resolution: Resolve(Resolve(p, cwd, home), x, home)
// returns the same path for any x.
func Resolve(path, cwd, home string) string {
	var joined string
	switch {
	case strings.HasPrefix(path, "/"):
		joined = path
	case strings.HasPrefix(path, "~"):
		joined = home + path[1:]
	default:
		joined = cwd + "/" + path
	}
	return Normalize(joined)
}

// Normalize collapses empty and "." segments and applies ".." by popping
// the previous segment. Ascending past root stays at root.
func Normalize(path string) string {
	var parts []string
	for _, part := range strings.Split(path, "/") {
		switch part {
		case "", ".":
			// skip
		case "..":
			if len(parts) > 0 {
				parts = parts[:len(parts)-1]
			}
		default:
			parts = append(parts, part)
		}
	}
	if len(parts) == 0 {
		return "/"
	}
	return "/" + strings.Join(parts, "/")
}

// ParentOf returns the containing directory of a normalized absolute
// path. The parent of root is root.
func ParentOf(path string) string {
	idx := strings.LastIndex(path, "/")
	if idx <= 0 {
		return "/"
	}
	return path[:idx]
}

// BaseName returns the leaf name of a normalized absolute path.
func BaseName(path string) string {
	if path == "/" {
		return "/"
	}
	return path[strings.LastIndex(path, "/")+1:]
}
