package testutil

import (
	"os"
	"syscall"

	"github.com/spf13/afero"
)

// CrossDeviceFs is the OS filesystem with every rename failing as if the
// paths were on different devices
type CrossDeviceFs struct {
	afero.OsFs
}

// NewCrossDeviceFs returns a CrossDeviceFs
func NewCrossDeviceFs() afero.Fs {
	return CrossDeviceFs{}
}

func (CrossDeviceFs) Rename(oldname, newname string) error {
	return &os.LinkError{Op: "rename", Old: oldname, New: newname, Err: syscall.EXDEV}
}
