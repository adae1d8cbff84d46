package filesystem

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"syscall"

	"github.com/spf13/afero"
)

// moveTree renames src to dst. When they live on different devices the
// tree is copied and src removed afterwards. Symlinks are copied as links,
// never followed.
func moveTree(afs afero.Fs, src, dst string) error {
	err := afs.Rename(src, dst)
	if err == nil || !stderrors.Is(err, syscall.EXDEV) {
		return err
	}

	if _, statErr := lstat(afs, dst); statErr == nil {
		return &os.LinkError{Op: "move", Old: src, New: dst, Err: os.ErrExist}
	}

	if err := copyTree(afs, src, dst); err != nil {
		if rmErr := afs.RemoveAll(dst); rmErr != nil {
			return fmt.Errorf("%w (partial copy left at %s: %v)", err, dst, rmErr)
		}
		return err
	}
	return afs.RemoveAll(src)
}

func copyTree(afs afero.Fs, src, dst string) error {
	return afero.Walk(afs, src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		switch {
		case info.Mode()&os.ModeSymlink != 0:
			return copySymlink(afs, path, target)
		case info.IsDir():
			return afs.MkdirAll(target, info.Mode().Perm()|0700)
		case info.Mode().IsRegular():
			return copyFile(afs, path, target, info)
		default:
			return &os.PathError{Op: "copy", Path: path, Err: fmt.Errorf("unsupported file type %s", info.Mode().Type())}
		}
	})
}

func copySymlink(afs afero.Fs, src, dst string) error {
	reader, ok := afs.(afero.LinkReader)
	if !ok {
		return &os.PathError{Op: "readlink", Path: src, Err: afero.ErrNoReadlink}
	}
	linker, ok := afs.(afero.Linker)
	if !ok {
		return &os.LinkError{Op: "symlink", Old: src, New: dst, Err: afero.ErrNoSymlink}
	}
	stored, err := reader.ReadlinkIfPossible(src)
	if err != nil {
		return err
	}
	return linker.SymlinkIfPossible(stored, dst)
}

func copyFile(afs afero.Fs, src, dst string, info os.FileInfo) error {
	in, err := afs.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := afs.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return afs.Chtimes(dst, info.ModTime(), info.ModTime())
}

func lstat(afs afero.Fs, name string) (os.FileInfo, error) {
	if lstater, ok := afs.(afero.Lstater); ok {
		info, _, err := lstater.LstatIfPossible(name)
		return info, err
	}
	return afs.Stat(name)
}
