package types

import "time"

// Account is a user's terminal account. One per owning user; the current
// working directory is the only field mutated after creation.
type Account struct {
	UserID       int64     `json:"user_id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"password_hash"`
	HomeDir      string    `json:"home_dir"`
	CurrentDir   string    `json:"current_dir"`
	CreatedAt    time.Time `json:"created_at"`
}

// FileEntry is a single file or directory in a user's virtual filesystem.
// Identity is the (UserID, Path) pair; Path is always absolute and
// normalized.
type FileEntry struct {
	UserID      int64     `json:"user_id"`
	Path        string    `json:"path"`
	ParentPath  string    `json:"parent_path"`
	Name        string    `json:"name"`
	IsDirectory bool      `json:"is_directory"`
	Content     string    `json:"content"`
	Permissions string    `json:"permissions"`
	Size        int       `json:"size"`
	CreatedAt   time.Time `json:"created_at"`
	ModifiedAt  time.Time `json:"modified_at"`
}

// DirSize is the nominal size reported for directory entries.
const DirSize = 4096
