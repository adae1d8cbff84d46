package swap

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/lnedit/pkg/errors"
	"github.com/arthur-debert/lnedit/pkg/filesystem"
	"github.com/arthur-debert/lnedit/pkg/paths"
	"github.com/arthur-debert/lnedit/pkg/testutil"
	"github.com/arthur-debert/lnedit/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSwapper(t *testing.T, fsys types.FS, dir string) *Swapper {
	t.Helper()
	r, err := paths.NewResolver(fsys, dir)
	require.NoError(t, err)
	return New(fsys, r)
}

// setup creates root/data/d1 (real, with a file) and root/home/d2 -> d1
func setup(t *testing.T) (root, d1, d2 string) {
	t.Helper()
	root = testutil.TempDir(t)
	d1 = testutil.CreateDir(t, root, "data/d1")
	testutil.CreateFile(t, d1, "notes.txt", "hello")
	testutil.CreateDir(t, root, "home")
	d2 = filepath.Join(root, "home", "d2")
	testutil.CreateSymlink(t, d1, d2)
	return root, d1, d2
}

func TestPlan(t *testing.T) {
	root, d1, d2 := setup(t)
	s := newSwapper(t, filesystem.NewOS(), root)

	t.Run("relative", func(t *testing.T) {
		steps, err := s.Plan(&types.SwapPlan{OldLocation: d1, NewLocation: d2, Relative: true})
		require.NoError(t, err)
		assert.Equal(t, "../home/d2", steps.SymTarget)
		assert.Equal(t, []string{
			"remove " + d2,
			"move " + d1 + " to " + d2,
			"create link " + d1 + " -> ../home/d2",
		}, steps.Lines())
	})

	t.Run("absolute", func(t *testing.T) {
		steps, err := s.Plan(&types.SwapPlan{OldLocation: "data/d1", NewLocation: "home/d2"})
		require.NoError(t, err)
		assert.Equal(t, d2, steps.SymTarget)
		assert.Equal(t, d1, steps.Old)
	})

	t.Run("same location", func(t *testing.T) {
		_, err := s.Plan(&types.SwapPlan{OldLocation: d1, NewLocation: "data/d1"})
		assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
	})

	t.Run("missing old", func(t *testing.T) {
		_, err := s.Plan(&types.SwapPlan{OldLocation: "data/none", NewLocation: d2})
		assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound))
	})

	// Nothing moved
	testutil.AssertSymlink(t, d2, d1)
	assert.True(t, testutil.DirExists(t, d1))
}

func TestRun_Forced(t *testing.T) {
	root, d1, d2 := setup(t)
	s := newSwapper(t, filesystem.NewOS(), root)

	var out bytes.Buffer
	confirm := func(string) (bool, error) {
		t.Fatal("forced swap must not prompt")
		return false, nil
	}
	_, err := s.Run(&types.SwapPlan{OldLocation: d1, NewLocation: d2, Relative: true}, true, confirm, &out)
	require.NoError(t, err)

	// d2 holds the former contents of d1
	assert.True(t, testutil.DirExists(t, d2))
	assert.False(t, testutil.SymlinkExists(t, d2))
	data, err := os.ReadFile(filepath.Join(d2, "notes.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	// d1 is a link whose stored target, resolved from its own directory, is d2
	stored := testutil.ReadSymlink(t, d1)
	assert.False(t, filepath.IsAbs(stored))
	assert.Equal(t, d2, filepath.Join(filepath.Dir(d1), stored))

	assert.Contains(t, out.String(), "move "+d1+" to "+d2)
}

func TestRun_SwapBackRestores(t *testing.T) {
	root, d1, d2 := setup(t)
	s := newSwapper(t, filesystem.NewOS(), root)
	var out bytes.Buffer

	_, err := s.Run(&types.SwapPlan{OldLocation: d1, NewLocation: d2, Relative: true}, true, nil, &out)
	require.NoError(t, err)
	_, err = s.Run(&types.SwapPlan{OldLocation: d2, NewLocation: d1, Relative: true}, true, nil, &out)
	require.NoError(t, err)

	assert.True(t, testutil.DirExists(t, d1))
	assert.False(t, testutil.SymlinkExists(t, d1))
	assert.True(t, testutil.SymlinkExists(t, d2))
	assert.Equal(t, d1, filepath.Join(filepath.Dir(d2), testutil.ReadSymlink(t, d2)))

	data, err := os.ReadFile(filepath.Join(d2, "notes.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestRun_Confirmation(t *testing.T) {
	t.Run("declined", func(t *testing.T) {
		root, d1, d2 := setup(t)
		s := newSwapper(t, filesystem.NewOS(), root)

		var asked string
		var out bytes.Buffer
		_, err := s.Run(&types.SwapPlan{OldLocation: d1, NewLocation: d2}, false, func(p string) (bool, error) {
			asked = p
			return false, nil
		}, &out)

		assert.True(t, errors.IsErrorCode(err, errors.ErrCancelled))
		assert.Equal(t, ConfirmPrompt, asked)
		assert.Len(t, bytes.Split(bytes.TrimSpace(out.Bytes()), []byte("\n")), 3)
		testutil.AssertSymlink(t, d2, d1)
	})

	t.Run("accepted", func(t *testing.T) {
		root, d1, d2 := setup(t)
		s := newSwapper(t, filesystem.NewOS(), root)

		_, err := s.Run(&types.SwapPlan{OldLocation: d1, NewLocation: d2}, false, types.AlwaysConfirm, &bytes.Buffer{})
		require.NoError(t, err)
		testutil.AssertSymlink(t, d1, d2)
	})

	t.Run("prompt error", func(t *testing.T) {
		root, d1, d2 := setup(t)
		s := newSwapper(t, filesystem.NewOS(), root)

		_, err := s.Run(&types.SwapPlan{OldLocation: d1, NewLocation: d2}, false, func(string) (bool, error) {
			return false, fmt.Errorf("stdin closed")
		}, &bytes.Buffer{})
		assert.EqualError(t, err, "stdin closed")
		testutil.AssertSymlink(t, d2, d1)
	})

	t.Run("no prompt available", func(t *testing.T) {
		root, d1, d2 := setup(t)
		s := newSwapper(t, filesystem.NewOS(), root)

		_, err := s.Run(&types.SwapPlan{OldLocation: d1, NewLocation: d2}, false, nil, &bytes.Buffer{})
		assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
		testutil.AssertSymlink(t, d2, d1)
	})
}

func TestCommit_RefusesRealDirectory(t *testing.T) {
	root := testutil.TempDir(t)
	d1 := testutil.CreateDir(t, root, "d1")
	d2 := testutil.CreateDir(t, root, "d2")
	s := newSwapper(t, filesystem.NewOS(), root)

	_, err := s.Run(&types.SwapPlan{OldLocation: d1, NewLocation: d2}, true, nil, &bytes.Buffer{})
	assert.True(t, errors.IsErrorCode(err, errors.ErrSwap))
	assert.True(t, testutil.DirExists(t, d1))
	assert.True(t, testutil.DirExists(t, d2))
}

func TestCommit_MissingDestinationIsFine(t *testing.T) {
	root := testutil.TempDir(t)
	d1 := testutil.CreateDir(t, root, "d1")
	s := newSwapper(t, filesystem.NewOS(), root)

	_, err := s.Run(&types.SwapPlan{OldLocation: "d1", NewLocation: "d2", Relative: true}, true, nil, &bytes.Buffer{})
	require.NoError(t, err)
	testutil.AssertSymlink(t, d1, "d2")
}

// failingMoveFS fails every move
type failingMoveFS struct {
	types.FS
}

func (f failingMoveFS) Move(src, dst string) error {
	return &os.LinkError{Op: "rename", Old: src, New: dst, Err: fmt.Errorf("injected failure")}
}

func TestCommit_MoveFailureRestoresLink(t *testing.T) {
	root, d1, d2 := setup(t)
	s := newSwapper(t, failingMoveFS{filesystem.NewOS()}, root)

	_, err := s.Run(&types.SwapPlan{OldLocation: d1, NewLocation: d2}, true, nil, &bytes.Buffer{})
	assert.True(t, errors.IsErrorCode(err, errors.ErrSwap))
	testutil.AssertSymlink(t, d2, d1)
	assert.True(t, testutil.DirExists(t, d1))
}

func TestCommit_AcrossDevices(t *testing.T) {
	root, d1, d2 := setup(t)
	testutil.CreateSymlink(t, "notes.txt", filepath.Join(d1, "alias"))
	s := newSwapper(t, filesystem.NewAferoFS(testutil.NewCrossDeviceFs()), root)

	_, err := s.Run(&types.SwapPlan{OldLocation: d1, NewLocation: d2}, true, nil, &bytes.Buffer{})
	require.NoError(t, err)

	testutil.AssertSymlink(t, d1, d2)
	assert.True(t, testutil.DirExists(t, d2))
	data, err := os.ReadFile(filepath.Join(d2, "notes.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
	testutil.AssertSymlink(t, filepath.Join(d2, "alias"), "notes.txt")
}

func TestPlanFromLink(t *testing.T) {
	root, d1, d2 := setup(t)
	s := newSwapper(t, filesystem.NewOS(), filepath.Join(root, "home"))

	plan, err := s.PlanFromLink("d2", true)
	require.NoError(t, err)
	assert.Equal(t, d1, plan.OldLocation)
	assert.Equal(t, d2, plan.NewLocation)
	assert.True(t, plan.Relative)

	// A path below the link resolves the same way
	plan, err = s.PlanFromLink(filepath.Join(d2, "sub"), false)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(d1, "sub"), plan.OldLocation)

	_, err = s.PlanFromLink(d1, true)
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotASymlink))
}
