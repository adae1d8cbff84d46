// Package types defines the core types and interfaces used throughout lnedit.
// This includes the FS interface every component mutates the filesystem
// through, and the plain data carried between the suggestion, replacement,
// swap and relocate steps.
package types
