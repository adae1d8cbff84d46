package paths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/arthur-debert/lnedit/pkg/errors"
	"github.com/arthur-debert/lnedit/pkg/types"
)

// Environment variable names
const (
	// EnvConfigDir overrides the XDG config directory for lnedit
	EnvConfigDir = "LNEDIT_CONFIG_DIR"

	// EnvPWD is the logical working directory maintained by the shell
	EnvPWD = "PWD"

	// EnvHome is the standard home directory variable
	EnvHome = "HOME"
)

const (
	// AppDirName is the directory name for lnedit-specific files
	AppDirName = "lnedit"

	// ConfigFileName is the name of the user configuration file
	ConfigFileName = "config.toml"

	// DefaultRootMarker is the conventional sentinel link used for
	// root-relative suggestions
	DefaultRootMarker = ".userroot"

	// maxLinkHops bounds symlink dereferencing, matching the usual ELOOP limit
	maxLinkHops = 40
)

// Resolver performs path arithmetic relative to an explicit working directory
type Resolver struct {
	fs      types.FS
	workDir string
}

// NewResolver creates a Resolver. workDir must be absolute; it is cleaned.
func NewResolver(fs types.FS, workDir string) (*Resolver, error) {
	if !filepath.IsAbs(workDir) {
		return nil, errors.Newf(errors.ErrInvalidInput, "working directory must be absolute: %q", workDir).
			WithDetail("workDir", workDir)
	}
	return &Resolver{fs: fs, workDir: filepath.Clean(workDir)}, nil
}

// WorkDir returns the working directory the resolver anchors relative paths on
func (r *Resolver) WorkDir() string {
	return r.workDir
}

// Absolute joins a relative path with the working directory and collapses
// . and .. segments. The path does not need to exist.
func (r *Resolver) Absolute(path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(r.workDir, path)
}

// RelativeFrom returns a lexical path r such that joining baseDir and r
// denotes target. Relative inputs are made absolute first.
func (r *Resolver) RelativeFrom(baseDir, target string) string {
	base := r.Absolute(baseDir)
	dst := r.Absolute(target)
	rel, err := filepath.Rel(base, dst)
	if err != nil {
		// Both sides are absolute and clean, so Rel cannot fail on POSIX
		return dst
	}
	return rel
}

// RootRelative expresses target relative to the location the root marker
// link resolves to, prefixed with the marker's own name. The marker must be
// a symlink; anything else yields ErrRootUnresolvable.
func (r *Resolver) RootRelative(target, rootMarker string) (string, error) {
	if rootMarker == "" {
		return "", errors.New(errors.ErrRootUnresolvable, "no root marker configured")
	}

	markerPath := r.Absolute(rootMarker)
	info, err := r.fs.Lstat(markerPath)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrRootUnresolvable, "root marker %s not found", markerPath).
			WithDetail("marker", markerPath)
	}
	if !types.IsSymlink(info) {
		return "", errors.Newf(errors.ErrRootUnresolvable, "root marker %s is not a symlink", markerPath).
			WithDetail("marker", markerPath)
	}

	root := r.Realpath(markerPath)
	return r.RootRelativeTo(target, filepath.Base(markerPath), root), nil
}

// RootRelativeTo builds the token-prefixed path of target relative to an
// already resolved root
func (r *Resolver) RootRelativeTo(target, token, root string) string {
	rel := r.RelativeFrom(root, target)
	if rel == "." {
		return token
	}
	// Not filepath.Join: a leading .. must survive next to the token
	return token + string(filepath.Separator) + rel
}

// Realpath resolves every symlink in path, like realpath(3), without
// requiring the result to exist. When a component is missing or a link
// cannot be read, dereferencing stops there and the rest of the path is
// appended lexically.
func (r *Resolver) Realpath(path string) string {
	resolved := string(filepath.Separator)
	rest := splitComponents(r.Absolute(path))
	hops := 0

	for len(rest) > 0 {
		name := rest[0]
		rest = rest[1:]

		switch name {
		case "", ".":
			continue
		case "..":
			resolved = filepath.Dir(resolved)
			continue
		}

		next := filepath.Join(resolved, name)
		info, err := r.fs.Lstat(next)
		if err != nil || !types.IsSymlink(info) || hops >= maxLinkHops {
			resolved = next
			continue
		}

		stored, err := r.fs.Readlink(next)
		if err != nil {
			resolved = next
			continue
		}
		hops++

		if filepath.IsAbs(stored) {
			resolved = string(filepath.Separator)
		}
		rest = append(splitComponents(stored), rest...)
	}

	return resolved
}

// LinkDir returns the physical directory containing link. Stored targets
// are interpreted relative to this directory.
func (r *Resolver) LinkDir(link string) string {
	return r.Realpath(filepath.Dir(r.Absolute(link)))
}

// ResolveStored returns the absolute location a stored target denotes when
// written into link, without dereferencing the target itself
func (r *Resolver) ResolveStored(link, stored string) string {
	if filepath.IsAbs(stored) {
		return filepath.Clean(stored)
	}
	return filepath.Join(r.LinkDir(link), stored)
}

// Exists reports whether stored, as seen from link, names an existing entry
func (r *Resolver) Exists(link, stored string) bool {
	_, err := r.fs.Stat(r.ResolveStored(link, stored))
	return err == nil
}

func splitComponents(path string) []string {
	return strings.Split(filepath.ToSlash(path), "/")
}

// CurrentWorkDir returns the logical working directory: $PWD when it names
// the same directory as the process working directory (so a path entered
// through a symlink is preserved), otherwise the physical one.
func CurrentWorkDir() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", errors.Wrap(err, errors.ErrFileAccess, "failed to get current directory")
	}

	pwd := os.Getenv(EnvPWD)
	if pwd == "" || !filepath.IsAbs(pwd) {
		return cwd, nil
	}

	pwdInfo, err := os.Stat(pwd)
	if err != nil {
		return cwd, nil
	}
	cwdInfo, err := os.Stat(cwd)
	if err != nil || !os.SameFile(pwdInfo, cwdInfo) {
		return cwd, nil
	}
	return filepath.Clean(pwd), nil
}

// ConfigFilePath returns the default user configuration file location
func ConfigFilePath() string {
	if dir := os.Getenv(EnvConfigDir); dir != "" {
		return filepath.Join(ExpandHome(dir), ConfigFileName)
	}
	return filepath.Join(xdg.ConfigHome, AppDirName, ConfigFileName)
}

// ExpandHome expands a leading ~ to the home directory
func ExpandHome(path string) string {
	if path == "" {
		return path
	}

	if path[0] == '~' {
		homeDir, err := GetHomeDirectory()
		if err != nil {
			return path
		}

		if len(path) == 1 {
			return homeDir
		}

		if path[1] == '/' || path[1] == filepath.Separator {
			return filepath.Join(homeDir, path[2:])
		}

		// ~something (not the user's home)
		return path
	}

	return path
}

// GetHomeDirectory returns the user's home directory with proper error handling
func GetHomeDirectory() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		if home := os.Getenv(EnvHome); home != "" {
			return home, nil
		}
		return "", errors.Wrapf(err, errors.ErrFileAccess, "failed to get home directory")
	}
	return homeDir, nil
}
