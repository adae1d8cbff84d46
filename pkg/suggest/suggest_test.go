package suggest

import (
	"path/filepath"
	"testing"

	"github.com/arthur-debert/lnedit/pkg/errors"
	"github.com/arthur-debert/lnedit/pkg/filesystem"
	"github.com/arthur-debert/lnedit/pkg/paths"
	"github.com/arthur-debert/lnedit/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// layout builds:
//
//	root/userroot/tmp/2018/timeutil
//	root/work/.userroot -> root/userroot
//	root/work/links/
func layout(t *testing.T) (root, work string) {
	t.Helper()
	root = testutil.TempDir(t)
	testutil.CreateDir(t, root, "userroot/tmp/2018/timeutil")
	work = testutil.CreateDir(t, root, "work")
	testutil.CreateDir(t, work, "links")
	testutil.CreateSymlink(t, filepath.Join(root, "userroot"), filepath.Join(work, ".userroot"))
	return root, work
}

func newEngine(t *testing.T, work string, opts Options) *Engine {
	t.Helper()
	r, err := paths.NewResolver(filesystem.NewOS(), work)
	require.NoError(t, err)
	return NewEngine(filesystem.NewOS(), r, opts)
}

func TestDescribe(t *testing.T) {
	root, work := layout(t)
	e := newEngine(t, work, Options{})

	testutil.CreateSymlink(t, "../../userroot/tmp", filepath.Join(work, "links", "tmp"))

	desc, err := e.Describe("links/tmp")
	require.NoError(t, err)
	assert.Equal(t, "links/tmp", desc.Location)
	assert.Equal(t, "../../userroot/tmp", desc.StoredTarget)
	assert.True(t, desc.IsRelative())

	t.Run("regular file", func(t *testing.T) {
		testutil.CreateFile(t, work, "plain", "x")
		_, err := e.Describe("plain")
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrNotASymlink))
		assert.Equal(t, "plain", errors.DetailString(err, "path"))
	})

	t.Run("missing entry", func(t *testing.T) {
		_, err := e.Describe(filepath.Join(root, "nothing"))
		assert.True(t, errors.IsErrorCode(err, errors.ErrNotASymlink))
	})
}

func TestSuggest_AbsoluteAndRelativeStoredAgree(t *testing.T) {
	root, work := layout(t)
	e := newEngine(t, work, Options{})
	target := filepath.Join(root, "userroot", "tmp", "2018", "timeutil")

	testutil.CreateSymlink(t, target, filepath.Join(work, "links", "abs"))
	testutil.CreateSymlink(t, "../../userroot/tmp/2018/timeutil", filepath.Join(work, "links", "rel"))

	abs, err := e.Suggest("links/abs", "")
	require.NoError(t, err)
	rel, err := e.Suggest("links/rel", "")
	require.NoError(t, err)

	assert.Equal(t, target, abs.Absolute)
	assert.Equal(t, abs, rel)
	assert.Equal(t, "../../userroot/tmp/2018/timeutil", abs.LinkRelative)
	assert.Equal(t, ".userroot/tmp/2018/timeutil", abs.RootRelative)
}

func TestSuggest_RelativeStoredAnchorsOnLinkDir(t *testing.T) {
	root, work := layout(t)
	// The work dir is unrelated to the link's directory
	e := newEngine(t, filepath.Join(root, "userroot"), Options{RootMarker: filepath.Join(work, ".userroot")})

	testutil.CreateSymlink(t, "../../userroot/tmp", filepath.Join(work, "links", "tmp"))

	c, err := e.Suggest(filepath.Join(work, "links", "tmp"), "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "userroot", "tmp"), c.Absolute)
	assert.Equal(t, ".userroot/tmp", c.RootRelative)
}

func TestSuggest_NewLinkLocation(t *testing.T) {
	root, work := layout(t)
	e := newEngine(t, work, Options{})
	testutil.CreateSymlink(t, filepath.Join(root, "userroot", "tmp"), filepath.Join(work, "links", "tmp"))

	c, err := e.Suggest("links/tmp", "renamed")
	require.NoError(t, err)
	assert.Equal(t, "../userroot/tmp", c.LinkRelative)

	c, err = e.Suggest("links/tmp", "links/deeper/renamed")
	require.NoError(t, err)
	assert.Equal(t, "../../../userroot/tmp", c.LinkRelative)
}

func TestSuggest_DanglingLink(t *testing.T) {
	_, work := layout(t)
	e := newEngine(t, work, Options{})
	testutil.CreateSymlink(t, "../gone/away", filepath.Join(work, "links", "broken"))

	c, err := e.Suggest("links/broken", "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(work, "gone", "away"), c.Absolute)
	assert.Equal(t, "../gone/away", c.LinkRelative)
	assert.Equal(t, ".userroot/../work/gone/away", c.RootRelative)
}

func TestSuggest_RootUnresolvableLeavesEmpty(t *testing.T) {
	root, work := layout(t)
	e := newEngine(t, work, Options{RootMarker: ".missing-marker"})
	testutil.CreateSymlink(t, filepath.Join(root, "userroot"), filepath.Join(work, "links", "ur"))

	c, err := e.Suggest("links/ur", "")
	require.NoError(t, err)
	assert.Empty(t, c.RootRelative)
	assert.Len(t, c.Values(), 2)
}

func TestSuggest_RootPathOverride(t *testing.T) {
	root, work := layout(t)
	e := newEngine(t, work, Options{RootPath: filepath.Join(root, "userroot", "tmp"), RootMarker: "~top"})
	testutil.CreateSymlink(t, filepath.Join(root, "userroot", "tmp", "2018"), filepath.Join(work, "links", "y"))

	c, err := e.Suggest("links/y", "")
	require.NoError(t, err)
	assert.Equal(t, "~top/2018", c.RootRelative)
}

func TestSuggest_NotASymlink(t *testing.T) {
	_, work := layout(t)
	e := newEngine(t, work, Options{})

	_, err := e.Suggest("links", "")
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotASymlink))
}

func TestFields(t *testing.T) {
	root, work := layout(t)
	e := newEngine(t, work, Options{})
	testutil.CreateSymlink(t, ".userroot/tmp/2018/timeutil", filepath.Join(work, "18W28tmp"))

	set, err := e.Fields("18W28tmp", FieldOptions{SaveBackup: true})
	require.NoError(t, err)

	target := filepath.Join(root, "userroot", "tmp", "2018", "timeutil")
	assert.Equal(t, "18W28tmp", set.OrigLink)
	assert.Equal(t, ".userroot/tmp/2018/timeutil", set.TargetRef)
	assert.Equal(t, target, set.OrigReadlink)
	assert.Equal(t, target, set.SuggestionAbspath)
	assert.Equal(t, "../userroot/tmp/2018/timeutil", set.SuggestionRelpath)
	assert.Equal(t, ".userroot/tmp/2018/timeutil", set.SuggestionUserroot)
	assert.True(t, set.SaveBackup)
	assert.False(t, set.AllowBroken)
	assert.False(t, set.DeleteOrig)

	_, err = e.Fields("missing", FieldOptions{})
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotASymlink))
}
