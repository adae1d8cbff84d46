package relocate

import (
	"os"
	"path/filepath"
	"syscall"
	"testing"

	"github.com/arthur-debert/lnedit/pkg/errors"
	"github.com/arthur-debert/lnedit/pkg/filesystem"
	"github.com/arthur-debert/lnedit/pkg/paths"
	"github.com/arthur-debert/lnedit/pkg/testutil"
	"github.com/arthur-debert/lnedit/pkg/types"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRelocator(t *testing.T, dir string) *Relocator {
	t.Helper()
	r, err := paths.NewResolver(filesystem.NewOS(), dir)
	require.NoError(t, err)
	return New(filesystem.NewOS(), r)
}

func TestMove_FileLeavesLinkBehind(t *testing.T) {
	tests := []struct {
		name     string
		relative bool
		want     func(root string) string
	}{
		{"absolute", false, func(root string) string { return filepath.Join(root, "archive", "notes.txt") }},
		{"relative", true, func(string) string { return "../archive/notes.txt" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := testutil.TempDir(t)
			testutil.CreateDir(t, root, "archive")
			testutil.CreateDir(t, root, "work")
			src := testutil.CreateFile(t, filepath.Join(root, "work"), "notes.txt", "content")

			r := newRelocator(t, filepath.Join(root, "work"))
			res, err := r.Move(&types.RelocatePlan{Source: "notes.txt", Destination: "../archive/notes.txt", Relative: tt.relative})
			require.NoError(t, err)

			assert.True(t, res.Moved)
			assert.Equal(t, src, res.Link)
			testutil.AssertSymlink(t, src, tt.want(root))

			data, err := os.ReadFile(src)
			require.NoError(t, err)
			assert.Equal(t, "content", string(data))
			assert.False(t, testutil.SymlinkExists(t, filepath.Join(root, "archive", "notes.txt")))
		})
	}
}

func TestMove_DirectoryLeavesLinkBehind(t *testing.T) {
	root := testutil.TempDir(t)
	testutil.CreateDir(t, root, "proj")
	testutil.CreateFile(t, filepath.Join(root, "proj"), "README", "x")

	r := newRelocator(t, root)
	res, err := r.Move(&types.RelocatePlan{Source: "proj", Destination: "moved", Relative: true})
	require.NoError(t, err)

	testutil.AssertSymlink(t, filepath.Join(root, "proj"), "moved")
	assert.True(t, testutil.DirExists(t, filepath.Join(root, "moved")))
	assert.Equal(t, filepath.Join(root, "proj"), res.Link)
	assert.Equal(t, "moved", res.Target)
}

func TestMove_AcrossDevicesCopiesThenRemoves(t *testing.T) {
	root := testutil.TempDir(t)
	proj := testutil.CreateDir(t, root, "proj")
	testutil.CreateFile(t, proj, "README", "x")
	testutil.CreateDir(t, proj, "src")
	testutil.CreateFile(t, filepath.Join(proj, "src"), "main.go", "package main")
	testutil.CreateSymlink(t, "../README", filepath.Join(proj, "src", "README"))

	fsys := filesystem.NewAferoFS(testutil.NewCrossDeviceFs())
	resolver, err := paths.NewResolver(fsys, root)
	require.NoError(t, err)
	r := New(fsys, resolver)

	res, err := r.Move(&types.RelocatePlan{Source: "proj", Destination: "archive", Relative: true})
	require.NoError(t, err)
	assert.True(t, res.Moved)

	archive := filepath.Join(root, "archive")
	testutil.AssertSymlink(t, proj, "archive")
	assert.True(t, testutil.DirExists(t, archive))
	data, err := os.ReadFile(filepath.Join(archive, "src", "main.go"))
	require.NoError(t, err)
	assert.Equal(t, "package main", string(data))
	testutil.AssertSymlink(t, filepath.Join(archive, "src", "README"), "../README")
}

// noCreateFs crosses devices on rename and cannot create files
type noCreateFs struct {
	testutil.CrossDeviceFs
}

func (n noCreateFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	if flag&os.O_CREATE != 0 {
		return nil, &os.PathError{Op: "open", Path: name, Err: syscall.EACCES}
	}
	return n.CrossDeviceFs.OpenFile(name, flag, perm)
}

func TestMove_AcrossDevicesKeepsSourceOnFailure(t *testing.T) {
	root := testutil.TempDir(t)
	src := testutil.CreateFile(t, root, "notes.txt", "content")

	fsys := filesystem.NewAferoFS(noCreateFs{})
	resolver, err := paths.NewResolver(fsys, root)
	require.NoError(t, err)
	r := New(fsys, resolver)

	_, err = r.Move(&types.RelocatePlan{Source: "notes.txt", Destination: "moved.txt"})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrMove))

	data, err := os.ReadFile(src)
	require.NoError(t, err)
	assert.Equal(t, "content", string(data))
	testutil.AssertNoEntry(t, filepath.Join(root, "moved.txt"))
}

func TestMove_RelativeLinkIsReanchored(t *testing.T) {
	root := testutil.TempDir(t)
	testutil.CreateDir(t, root, "data/target")
	testutil.CreateDir(t, root, "a")
	testutil.CreateDir(t, root, "b/deeper")
	src := filepath.Join(root, "a", "link")
	testutil.CreateSymlink(t, "../data/target", src)

	r := newRelocator(t, root)
	res, err := r.Move(&types.RelocatePlan{Source: "a/link", Destination: "b/deeper/link"})
	require.NoError(t, err)

	dst := filepath.Join(root, "b", "deeper", "link")
	assert.False(t, res.Moved)
	assert.Equal(t, dst, res.Link)
	testutil.AssertSymlink(t, dst, "../../data/target")
	// Source untouched
	testutil.AssertSymlink(t, src, "../data/target")

	// Both resolve to the same place
	got, err := filepath.EvalSymlinks(dst)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "data", "target"), got)
}

func TestMove_AbsoluteLinkCopiedVerbatim(t *testing.T) {
	root := testutil.TempDir(t)
	target := testutil.CreateDir(t, root, "target")
	testutil.CreateDir(t, root, "sub")
	testutil.CreateSymlink(t, target, filepath.Join(root, "link"))

	r := newRelocator(t, root)
	_, err := r.Move(&types.RelocatePlan{Source: "link", Destination: "sub/link", Relative: true})
	require.NoError(t, err)
	testutil.AssertSymlink(t, filepath.Join(root, "sub", "link"), target)
}

func TestMove_Errors(t *testing.T) {
	root := testutil.TempDir(t)
	testutil.CreateFile(t, root, "src", "a")
	testutil.CreateFile(t, root, "dst", "b")
	r := newRelocator(t, root)

	_, err := r.Move(&types.RelocatePlan{Source: "src", Destination: "dst"})
	assert.True(t, errors.IsErrorCode(err, errors.ErrAlreadyExists))

	_, err = r.Move(&types.RelocatePlan{Source: "missing", Destination: "new"})
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound))

	_, err = r.Move(&types.RelocatePlan{Source: "src", Destination: "nodir/new"})
	assert.True(t, errors.IsErrorCode(err, errors.ErrMove))

	data, err := os.ReadFile(filepath.Join(root, "src"))
	require.NoError(t, err)
	assert.Equal(t, "a", string(data))
}
