// Package swap exchanges a real directory with a symlink location: the
// directory moves to where the link was and the old location becomes a
// link pointing at the new one.
package swap

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/arthur-debert/lnedit/pkg/errors"
	"github.com/arthur-debert/lnedit/pkg/logging"
	"github.com/arthur-debert/lnedit/pkg/paths"
	"github.com/arthur-debert/lnedit/pkg/types"
	"github.com/rs/zerolog"
)

// ConfirmPrompt is the question asked before a swap is committed
const ConfirmPrompt = "Go ahead with the swap?"

// Steps is a computed swap, ready to be shown or committed
type Steps struct {
	// Old is the real directory being moved
	Old string
	// New is where it moves to; whatever is there is removed first
	New string
	// SymTarget is the stored target of the link left at Old
	SymTarget string
}

// Lines renders the steps as a dry run
func (s *Steps) Lines() []string {
	return []string{
		fmt.Sprintf("remove %s", s.New),
		fmt.Sprintf("move %s to %s", s.Old, s.New),
		fmt.Sprintf("create link %s -> %s", s.Old, s.SymTarget),
	}
}

// Swapper computes and commits swaps
type Swapper struct {
	fs       types.FS
	resolver *paths.Resolver
	logger   zerolog.Logger
}

// New creates a Swapper
func New(fs types.FS, resolver *paths.Resolver) *Swapper {
	return &Swapper{
		fs:       fs,
		resolver: resolver,
		logger:   logging.GetLogger("swap"),
	}
}

// PlanFromLink derives a swap from a location reached through a symlink:
// the location becomes the real directory and the directory it currently
// resolves to becomes the link.
func (s *Swapper) PlanFromLink(location string, relative bool) (*types.SwapPlan, error) {
	newLocation := s.resolver.Absolute(location)
	oldLocation := s.resolver.Realpath(newLocation)
	if oldLocation == newLocation {
		return nil, errors.Newf(errors.ErrNotASymlink, "%s isn't reached through a symlink", location).
			WithDetail("path", location)
	}
	return &types.SwapPlan{
		OldLocation: oldLocation,
		NewLocation: newLocation,
		Relative:    relative,
	}, nil
}

// Plan computes the steps of plan without touching the filesystem
func (s *Swapper) Plan(plan *types.SwapPlan) (*Steps, error) {
	oldPath := s.resolver.Absolute(plan.OldLocation)
	newPath := s.resolver.Absolute(plan.NewLocation)

	if oldPath == newPath {
		return nil, errors.Newf(errors.ErrInvalidInput, "nothing to swap: both locations are %s", oldPath)
	}
	if _, err := s.fs.Lstat(oldPath); err != nil {
		return nil, errors.Wrapf(err, errors.ErrNotFound, "%s does not exist", oldPath).
			WithDetail("path", oldPath)
	}

	symTarget := newPath
	if plan.Relative {
		// Both ends physical, so the stored path survives links in either parent
		physicalNew := filepath.Join(s.resolver.LinkDir(newPath), filepath.Base(newPath))
		symTarget = s.resolver.RelativeFrom(s.resolver.LinkDir(oldPath), physicalNew)
	}

	return &Steps{Old: oldPath, New: newPath, SymTarget: symTarget}, nil
}

// Commit applies the steps. A link or file at New is removed; a real
// directory there is refused.
func (s *Swapper) Commit(steps *Steps) error {
	logger := s.logger.With().Str("old", steps.Old).Str("new", steps.New).Logger()
	defer logging.LogOperationStart(logger, "swap")()

	restore, err := s.clearDestination(steps.New)
	if err != nil {
		return err
	}

	if err := s.fs.Move(steps.Old, steps.New); err != nil {
		if restore != "" {
			if linkErr := s.fs.Symlink(restore, steps.New); linkErr != nil {
				logger.Error().Err(linkErr).Msg("Failed to restore removed link")
			}
		}
		return errors.Wrapf(err, errors.ErrSwap, "cannot move %s to %s", steps.Old, steps.New).
			WithDetails(map[string]interface{}{"old": steps.Old, "new": steps.New})
	}
	logger.Debug().Msg("Moved directory")

	if err := s.fs.Symlink(steps.SymTarget, steps.Old); err != nil {
		return errors.Wrapf(err, errors.ErrSymlinkCreate, "cannot link %s back to %s", steps.Old, steps.SymTarget).
			WithDetail("path", steps.Old)
	}

	logger.Info().Str("target", steps.SymTarget).Msg("Swap complete")
	return nil
}

// clearDestination removes the entry at path. When it was a link, its
// stored target is returned so the removal can be undone.
func (s *Swapper) clearDestination(path string) (string, error) {
	info, err := s.fs.Lstat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", errors.Wrapf(err, errors.ErrFileAccess, "cannot inspect %s", path).
			WithDetail("path", path)
	}
	if info.IsDir() {
		return "", errors.Newf(errors.ErrSwap, "%s is a real directory, refusing to remove it", path).
			WithDetail("path", path)
	}

	var stored string
	if types.IsSymlink(info) {
		if stored, err = s.fs.Readlink(path); err != nil {
			stored = ""
		}
	}

	if err := s.fs.Remove(path); err != nil {
		return "", errors.Wrapf(err, errors.ErrSwap, "cannot remove %s", path).
			WithDetail("path", path)
	}
	return stored, nil
}

// Run shows the dry run on out and commits, asking confirm first unless
// force is set. A declined prompt returns ErrCancelled.
func (s *Swapper) Run(plan *types.SwapPlan, force bool, confirm types.Confirmer, out io.Writer) (*Steps, error) {
	steps, err := s.Plan(plan)
	if err != nil {
		return nil, err
	}

	for _, line := range steps.Lines() {
		if _, err := fmt.Fprintln(out, line); err != nil {
			return steps, errors.Wrap(err, errors.ErrInternal, "failed to write plan")
		}
	}

	if !force {
		if confirm == nil {
			return steps, errors.New(errors.ErrInvalidInput, "swap needs confirmation but no prompt is available")
		}
		ok, err := confirm(ConfirmPrompt)
		if err != nil {
			return steps, err
		}
		if !ok {
			return steps, errors.New(errors.ErrCancelled, "swap cancelled, nothing changed")
		}
	}

	return steps, s.Commit(steps)
}
