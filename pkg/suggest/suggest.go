// Package suggest computes replacement targets for an existing symlink.
//
// For a link it offers three candidates that all denote the location the
// link currently resolves to:
//
//   - absolute: the fully dereferenced target
//   - link-relative: relative to the directory the (possibly renamed) link
//     will live in
//   - root-relative: relative to a root marker link, prefixed with the
//     marker's name (".userroot/...")
//
// Candidates are computed lexically on top of a non-strict realpath, so a
// dangling link still gets suggestions.
package suggest

import (
	"path/filepath"

	"github.com/arthur-debert/lnedit/pkg/errors"
	"github.com/arthur-debert/lnedit/pkg/fields"
	"github.com/arthur-debert/lnedit/pkg/logging"
	"github.com/arthur-debert/lnedit/pkg/paths"
	"github.com/arthur-debert/lnedit/pkg/types"
	"github.com/rs/zerolog"
)

// Options configures where root-relative suggestions are anchored
type Options struct {
	// RootMarker names the marker link, relative to the working directory.
	// Its base name is the prefix of root-relative suggestions.
	RootMarker string

	// RootPath, when set, is used as the root instead of resolving the
	// marker link
	RootPath string
}

// Engine produces candidate sets for links
type Engine struct {
	fs       types.FS
	resolver *paths.Resolver
	opts     Options
	logger   zerolog.Logger
}

// NewEngine creates a suggestion engine
func NewEngine(fs types.FS, resolver *paths.Resolver, opts Options) *Engine {
	if opts.RootMarker == "" {
		opts.RootMarker = paths.DefaultRootMarker
	}
	return &Engine{
		fs:       fs,
		resolver: resolver,
		opts:     opts,
		logger:   logging.GetLogger("suggest"),
	}
}

// Describe reads the stored target of link. Only one level is read; chains
// of links are not followed.
func (e *Engine) Describe(link string) (*types.SymlinkDescriptor, error) {
	abs := e.resolver.Absolute(link)

	info, err := e.fs.Lstat(abs)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrNotASymlink, "%s isn't a symlink", link).
			WithDetail("path", link)
	}
	if !types.IsSymlink(info) {
		return nil, errors.Newf(errors.ErrNotASymlink, "%s isn't a symlink", link).
			WithDetail("path", link)
	}

	stored, err := e.fs.Readlink(abs)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrNotASymlink, "cannot read symlink %s", link).
			WithDetail("path", link)
	}

	return &types.SymlinkDescriptor{Location: link, StoredTarget: stored}, nil
}

// Suggest computes the candidate set for link. newLink is where the link
// is going to be written; empty means it stays where it is.
func (e *Engine) Suggest(link, newLink string) (*types.CandidateSet, error) {
	desc, err := e.Describe(link)
	if err != nil {
		return nil, err
	}
	return e.candidates(desc, newLink), nil
}

func (e *Engine) candidates(desc *types.SymlinkDescriptor, newLink string) *types.CandidateSet {
	if newLink == "" {
		newLink = desc.Location
	}

	resolved := e.Resolve(desc)

	candidates := &types.CandidateSet{
		Absolute:     resolved,
		LinkRelative: e.resolver.RelativeFrom(e.resolver.LinkDir(newLink), resolved),
		RootRelative: e.rootRelative(resolved),
	}

	e.logger.Debug().
		Str("link", desc.Location).
		Str("stored", desc.StoredTarget).
		Str("newLink", newLink).
		Str("absolute", candidates.Absolute).
		Str("linkRelative", candidates.LinkRelative).
		Str("rootRelative", candidates.RootRelative).
		Msg("Computed suggestions")

	return candidates
}

// Resolve returns the fully dereferenced location of the link. A relative
// stored target is anchored on the link's own directory.
func (e *Engine) Resolve(desc *types.SymlinkDescriptor) string {
	first := e.resolver.ResolveStored(desc.Location, desc.StoredTarget)
	return e.resolver.Realpath(first)
}

func (e *Engine) rootRelative(resolved string) string {
	token := filepath.Base(filepath.Clean(e.opts.RootMarker))

	if e.opts.RootPath != "" {
		root := e.resolver.Realpath(paths.ExpandHome(e.opts.RootPath))
		return e.resolver.RootRelativeTo(resolved, token, root)
	}

	rel, err := e.resolver.RootRelative(resolved, e.opts.RootMarker)
	if err != nil {
		e.logger.Debug().Err(err).Str("marker", e.opts.RootMarker).Msg("No root-relative suggestion")
		return ""
	}
	return rel
}

// FieldOptions carries the session flags copied into a field set
type FieldOptions struct {
	AllowBroken bool
	SaveBackup  bool
	DeleteOrig  bool
}

// Fields builds the editor's field set for link
func (e *Engine) Fields(link string, opts FieldOptions) (*fields.Set, error) {
	desc, err := e.Describe(link)
	if err != nil {
		return nil, err
	}
	candidates := e.candidates(desc, "")

	return &fields.Set{
		OrigLink:           desc.Location,
		OrigReadlink:       candidates.Absolute,
		TargetRef:          desc.StoredTarget,
		SuggestionAbspath:  candidates.Absolute,
		SuggestionRelpath:  candidates.LinkRelative,
		SuggestionUserroot: candidates.RootRelative,
		AllowBroken:        opts.AllowBroken,
		SaveBackup:         opts.SaveBackup,
		DeleteOrig:         opts.DeleteOrig,
	}, nil
}
