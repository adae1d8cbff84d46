package types

import (
	"io/fs"
)

// FS is the filesystem interface required for lnedit operations
type FS interface {
	// File operations
	Stat(name string) (fs.FileInfo, error)
	Lstat(name string) (fs.FileInfo, error)

	// Directory operations
	MkdirAll(path string, perm fs.FileMode) error
	ReadDir(name string) ([]fs.DirEntry, error)

	// Symlink operations
	Symlink(oldname, newname string) error
	Readlink(name string) (string, error)

	// Other operations
	Remove(name string) error
	Rename(oldpath, newpath string) error
	// Move renames, copying then removing the source across devices
	Move(src, dst string) error
}

// Confirmer asks the user a yes/no question. It is injected wherever a
// commit is gated on a human decision so the logic can run without a terminal.
type Confirmer func(prompt string) (bool, error)

// AlwaysConfirm is a Confirmer that approves everything
func AlwaysConfirm(string) (bool, error) { return true, nil }

// IsSymlink reports whether info describes a symbolic link
func IsSymlink(info fs.FileInfo) bool {
	return info != nil && info.Mode()&fs.ModeSymlink != 0
}
