// Package relocate moves an entry and leaves a symlink at its old place.
// Moving a symlink copies it instead: the new link denotes the same
// location and the original stays.
package relocate

import (
	"os"
	"path/filepath"

	"github.com/arthur-debert/lnedit/pkg/errors"
	"github.com/arthur-debert/lnedit/pkg/logging"
	"github.com/arthur-debert/lnedit/pkg/paths"
	"github.com/arthur-debert/lnedit/pkg/types"
	"github.com/rs/zerolog"
)

// Relocator performs moves
type Relocator struct {
	fs       types.FS
	resolver *paths.Resolver
	logger   zerolog.Logger
}

// New creates a Relocator
func New(fs types.FS, resolver *paths.Resolver) *Relocator {
	return &Relocator{
		fs:       fs,
		resolver: resolver,
		logger:   logging.GetLogger("relocate"),
	}
}

// Result describes a completed move
type Result struct {
	// Moved is false when the source was a link that got copied
	Moved bool
	// Link is the link that was created
	Link string
	// Target is the stored target of Link
	Target string
}

// Move applies plan. The destination must not exist.
func (r *Relocator) Move(plan *types.RelocatePlan) (*Result, error) {
	src := r.resolver.Absolute(plan.Source)
	dst := r.resolver.Absolute(plan.Destination)
	defer logging.LogOperationStart(r.logger, "relocate")()

	if _, err := r.fs.Lstat(dst); err == nil {
		return nil, errors.Newf(errors.ErrAlreadyExists, "%s already exists", dst).
			WithDetail("path", dst)
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "cannot inspect %s", dst).
			WithDetail("path", dst)
	}

	info, err := r.fs.Lstat(src)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrNotFound, "%s does not exist", src).
			WithDetail("path", src)
	}

	if types.IsSymlink(info) {
		return r.copyLink(src, dst)
	}
	return r.moveAndLink(src, dst, plan.Relative)
}

// copyLink writes a link at dst denoting what src denotes. A relative
// stored target is re-expressed from dst's directory.
func (r *Relocator) copyLink(src, dst string) (*Result, error) {
	stored, err := r.fs.Readlink(src)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "cannot read symlink %s", src).
			WithDetail("path", src)
	}

	target := stored
	if !filepath.IsAbs(stored) {
		target = r.resolver.RelativeFrom(r.resolver.LinkDir(dst), r.resolver.ResolveStored(src, stored))
	}

	if err := r.fs.Symlink(target, dst); err != nil {
		return nil, errors.Wrapf(err, errors.ErrSymlinkCreate, "cannot create symlink %s", dst).
			WithDetail("path", dst)
	}

	r.logger.Info().Str("src", src).Str("dst", dst).Str("target", target).Msg("Copied link")
	return &Result{Link: dst, Target: target}, nil
}

func (r *Relocator) moveAndLink(src, dst string, relative bool) (*Result, error) {
	target := dst
	if relative {
		physicalDst := filepath.Join(r.resolver.LinkDir(dst), filepath.Base(dst))
		target = r.resolver.RelativeFrom(r.resolver.LinkDir(src), physicalDst)
	}

	if err := r.fs.Move(src, dst); err != nil {
		return nil, errors.Wrapf(err, errors.ErrMove, "cannot move %s to %s", src, dst).
			WithDetails(map[string]interface{}{"src": src, "dst": dst})
	}

	if err := r.fs.Symlink(target, src); err != nil {
		return nil, errors.Wrapf(err, errors.ErrSymlinkCreate, "moved to %s but cannot link %s back", dst, src).
			WithDetail("path", src)
	}

	r.logger.Info().Str("src", src).Str("dst", dst).Str("target", target).Msg("Moved and linked back")
	return &Result{Moved: true, Link: src, Target: target}, nil
}
