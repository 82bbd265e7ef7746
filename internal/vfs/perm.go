package vfs

// DefaultPermissions is applied to entries created without an explicit
// mode.
const DefaultPermissions = "755"

var permTriplets = map[byte]string{
	'7': "rwx",
	'6': "rw-",
	'5': "r-x",
	'4': "r--",
	'3': "-wx",
	'2': "-w-",
	'1': "--x",
	'0': "---",
}

// ValidMode reports whether mode is exactly three octal digits.
func ValidMode(mode string) bool {
	if len(mode) != 3 {
		return false
	}
	for i := 0; i < 3; i++ {
		if mode[i] < '0' || mode[i] > '7' {
			return false
		}
	}
	return true
}

// FormatMode renders a 3-digit octal permission string in the
// 10-character ls display form, e.g. "750" for a directory becomes
// "drwxr-x---". Short modes are left-padded with zeros; digits outside
// 0-7 render as "---".
func FormatMode(mode string, isDir bool) string {
	for len(mode) < 3 {
		mode = "0" + mode
	}
	if len(mode) > 3 {
		mode = mode[len(mode)-3:]
	}

	prefix := "-"
	if isDir {
		prefix = "d"
	}

	out := prefix
	for i := 0; i < 3; i++ {
		triplet, ok := permTriplets[mode[i]]
		if !ok {
			triplet = "---"
		}
		out += triplet
	}
	return out
}
