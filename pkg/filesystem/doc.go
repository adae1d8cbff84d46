// Package filesystem provides filesystem implementations for lnedit.
//
// This package contains implementations of the types.FS interface: the
// standard OS filesystem and an afero-backed one that is used in tests to
// wrap the OS filesystem (for example read-only).
//
// Move falls back to copy and delete when a rename crosses devices; the
// copy walks the tree with afero on both implementations.
package filesystem
