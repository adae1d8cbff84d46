// Package replace creates or replaces a symlink with a new stored target.
//
// Two strategies are available. ModeAtomic writes the new link under a
// temporary sibling name and renames it over the old one, so the link
// always resolves to either the old or the new target. ModeLegacy removes
// (or renames away) the old link first and then creates the new one; a
// failure in between leaves no link at all.
package replace

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/lnedit/pkg/errors"
	"github.com/arthur-debert/lnedit/pkg/logging"
	"github.com/arthur-debert/lnedit/pkg/paths"
	"github.com/arthur-debert/lnedit/pkg/types"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Mode selects the replacement strategy
type Mode int

const (
	// ModeAtomic replaces the link through a rename of a temporary sibling
	ModeAtomic Mode = iota
	// ModeLegacy removes the old link before creating the new one
	ModeLegacy
)

func (m Mode) String() string {
	switch m {
	case ModeAtomic:
		return "atomic"
	case ModeLegacy:
		return "legacy"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

const (
	// DefaultBackupSuffix is appended to the link name to form the backup name
	DefaultBackupSuffix = "~"

	// tempInfix separates the link name from the random part of a
	// temporary sibling: .<name>.lnedit-<uuid>
	tempInfix = ".lnedit-"
)

// Options configures a Replacer
type Options struct {
	Mode         Mode
	BackupSuffix string
}

// Replacer applies replacement plans to the filesystem
type Replacer struct {
	fs           types.FS
	resolver     *paths.Resolver
	mode         Mode
	backupSuffix string
	tempName     func() string
	logger       zerolog.Logger
}

// New creates a Replacer
func New(fs types.FS, resolver *paths.Resolver, opts Options) *Replacer {
	suffix := opts.BackupSuffix
	if suffix == "" {
		suffix = DefaultBackupSuffix
	}
	return &Replacer{
		fs:           fs,
		resolver:     resolver,
		mode:         opts.Mode,
		backupSuffix: suffix,
		tempName:     uuid.NewString,
		logger:       logging.GetLogger("replace"),
	}
}

// Mode returns the strategy in use
func (r *Replacer) Mode() Mode {
	return r.mode
}

// BackupPath returns where the backup of link is kept
func (r *Replacer) BackupPath(link string) string {
	return r.resolver.Absolute(link) + r.backupSuffix
}

// Result describes a completed replacement
type Result struct {
	// Link is the absolute location of the written link
	Link string
	// Target is the stored target, verbatim
	Target string
	// BackupPath is set when a backup was written
	BackupPath string
	// TargetMissing is set when the link was written dangling
	TargetMissing bool
	// RemovedOrigin is set when the original link was deleted after a rename
	RemovedOrigin string
}

// Validate checks a plan without touching the filesystem. The target is
// looked up from the new link's directory.
func (r *Replacer) Validate(plan *types.ReplacementPlan) error {
	if strings.TrimSpace(plan.NewLinkName) == "" {
		return errors.New(errors.ErrInvalidInput, "link name is empty").
			WithDetail("field", "name")
	}
	if strings.TrimSpace(plan.NewTarget) == "" {
		return errors.New(errors.ErrInvalidInput, "target value is empty").
			WithDetail("field", "target")
	}

	if !plan.AllowBroken && !r.resolver.Exists(plan.NewLinkName, plan.NewTarget) {
		return errors.Newf(errors.ErrTargetMissing, "%s doesn't appear to exist", plan.NewTarget).
			WithDetails(map[string]interface{}{
				"target":      plan.NewTarget,
				"link":        plan.NewLinkName,
				"allowBroken": plan.AllowBroken,
			})
	}
	return nil
}

// Replace validates and applies plan
func (r *Replacer) Replace(plan *types.ReplacementPlan) (*Result, error) {
	logger := r.logger.With().
		Str("link", plan.NewLinkName).
		Str("target", plan.NewTarget).
		Str("mode", r.mode.String()).
		Bool("backup", plan.SaveBackup).
		Logger()

	if err := r.Validate(plan); err != nil {
		logger.Debug().Err(err).Msg("Plan rejected")
		return nil, err
	}

	link := r.resolver.Absolute(plan.NewLinkName)
	exists, err := r.existingLink(link)
	if err != nil {
		return nil, err
	}

	result := &Result{Link: link, Target: plan.NewTarget}

	switch r.mode {
	case ModeLegacy:
		err = r.replaceLegacy(plan, link, exists, result)
	default:
		err = r.replaceAtomic(plan, link, exists, result)
	}
	if err != nil {
		logger.Error().Err(err).Msg("Replace failed")
		return nil, err
	}

	result.TargetMissing = !r.resolver.Exists(link, plan.NewTarget)
	logger.Info().Bool("dangling", result.TargetMissing).Msg("Link written")

	if plan.RemoveOrigin && plan.Renamed() {
		removed, err := r.removeOrigin(plan.OriginLink, link)
		if err != nil {
			return result, err
		}
		result.RemovedOrigin = removed
	}

	return result, nil
}

// existingLink reports whether a link is present at path. Any other kind
// of entry is refused.
func (r *Replacer) existingLink(path string) (bool, error) {
	info, err := r.fs.Lstat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errors.Wrapf(err, errors.ErrFileAccess, "cannot inspect %s", path).
			WithDetail("path", path)
	}
	if !types.IsSymlink(info) {
		return false, errors.Newf(errors.ErrSymlinkExists, "%s exists and is not a symlink", path).
			WithDetail("path", path)
	}
	return true, nil
}

// freeBackupSlot removes a previous backup. Directories are never removed.
func (r *Replacer) freeBackupSlot(backup string) error {
	info, err := r.fs.Lstat(backup)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrapf(err, errors.ErrBackup, "cannot inspect backup %s", backup).
			WithDetail("path", backup)
	}
	if info.IsDir() {
		return errors.Newf(errors.ErrBackup, "backup location %s is a directory", backup).
			WithDetail("path", backup)
	}
	if err := r.fs.Remove(backup); err != nil {
		return errors.Wrapf(err, errors.ErrBackup, "cannot remove old backup %s", backup).
			WithDetail("path", backup)
	}
	r.logger.Debug().Str("path", backup).Msg("Removed previous backup")
	return nil
}

// A requested backup always frees the backup slot first, even when there is
// no link to save.
func (r *Replacer) replaceLegacy(plan *types.ReplacementPlan, link string, exists bool, result *Result) error {
	if plan.SaveBackup {
		backup := link + r.backupSuffix
		if err := r.freeBackupSlot(backup); err != nil {
			return err
		}
		if exists {
			if err := r.fs.Rename(link, backup); err != nil {
				return errors.Wrapf(err, errors.ErrBackup, "cannot move %s to %s", link, backup).
					WithDetail("path", backup)
			}
			result.BackupPath = backup
		}
	} else if exists {
		if err := r.fs.Remove(link); err != nil {
			return errors.Wrapf(err, errors.ErrFileAccess, "cannot remove %s", link).
				WithDetail("path", link)
		}
	}

	if err := r.fs.Symlink(plan.NewTarget, link); err != nil {
		return errors.Wrapf(err, errors.ErrSymlinkCreate, "cannot create symlink %s", link).
			WithDetail("path", link)
	}
	return nil
}

func (r *Replacer) replaceAtomic(plan *types.ReplacementPlan, link string, exists bool, result *Result) error {
	if plan.SaveBackup {
		backup := link + r.backupSuffix
		if !exists {
			if err := r.freeBackupSlot(backup); err != nil {
				return err
			}
		} else {
			if err := r.copyLink(link, backup); err != nil {
				return err
			}
			result.BackupPath = backup
		}
	}

	tmp := filepath.Join(filepath.Dir(link), "."+filepath.Base(link)+tempInfix+r.tempName())
	if err := r.fs.Symlink(plan.NewTarget, tmp); err != nil {
		return errors.Wrapf(err, errors.ErrSymlinkCreate, "cannot create symlink %s", link).
			WithDetail("path", link)
	}

	if err := r.fs.Rename(tmp, link); err != nil {
		if rmErr := r.fs.Remove(tmp); rmErr != nil {
			r.logger.Warn().Err(rmErr).Str("path", tmp).Msg("Failed to clean up temporary link")
		}
		return errors.Wrapf(err, errors.ErrSymlinkCreate, "cannot move new symlink into place at %s", link).
			WithDetail("path", link)
	}
	return nil
}

// copyLink writes a link at dst with the same stored target as src
func (r *Replacer) copyLink(src, dst string) error {
	stored, err := r.fs.Readlink(src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrBackup, "cannot read %s", src).
			WithDetail("path", src)
	}
	if err := r.freeBackupSlot(dst); err != nil {
		return err
	}
	if err := r.fs.Symlink(stored, dst); err != nil {
		return errors.Wrapf(err, errors.ErrBackup, "cannot write backup %s", dst).
			WithDetail("path", dst)
	}
	return nil
}

// removeOrigin deletes the link the session started from, unless it is the
// link just written or no longer a link
func (r *Replacer) removeOrigin(origin, written string) (string, error) {
	path := r.resolver.Absolute(origin)
	if path == written {
		return "", nil
	}

	info, err := r.fs.Lstat(path)
	if err != nil || !types.IsSymlink(info) {
		r.logger.Warn().Str("path", path).Msg("Original link is gone or not a symlink, leaving it")
		return "", nil
	}
	if err := r.fs.Remove(path); err != nil {
		return "", errors.Wrapf(err, errors.ErrFileAccess, "cannot remove original link %s", path).
			WithDetail("path", path)
	}
	return path, nil
}

// Warning points at a leftover from an earlier interrupted run
type Warning struct {
	Path    string
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.Path, w.Message)
}

// Inspect looks for leftovers of interrupted replacements of link. Nothing
// is repaired.
func (r *Replacer) Inspect(link string) []Warning {
	path := r.resolver.Absolute(link)
	var warnings []Warning

	backup := path + r.backupSuffix
	if _, err := r.fs.Lstat(path); os.IsNotExist(err) {
		if _, err := r.fs.Lstat(backup); err == nil {
			warnings = append(warnings, Warning{
				Path:    backup,
				Message: "backup exists but the link is missing; an earlier replace may have been interrupted",
			})
		}
	}

	entries, err := r.fs.ReadDir(filepath.Dir(path))
	if err != nil {
		return warnings
	}
	prefix := "." + filepath.Base(path) + tempInfix
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), prefix) {
			warnings = append(warnings, Warning{
				Path:    filepath.Join(filepath.Dir(path), entry.Name()),
				Message: "stale temporary link from an interrupted replace",
			})
		}
	}
	return warnings
}
