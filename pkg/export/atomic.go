package export

import (
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// WriteAtomic replaces path with data. The data goes to a temporary file in
// the same directory which is renamed over path once fully written, so
// readers see either the old file or the complete new one. On failure the
// temporary file is removed and path is left as it was.
func WriteAtomic(fs afero.Fs, path string, data []byte, perm os.FileMode) (err error) {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}

	tmp, err := afero.TempFile(fs, dir, "."+base+".tmp-*")
	if err != nil {
		return &IOError{Path: path, Op: "create", Err: err}
	}
	name := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = fs.Remove(name)
		}
	}()

	n, err := tmp.Write(data)
	if err == nil && n < len(data) {
		err = io.ErrShortWrite
	}
	if err != nil {
		return &IOError{Path: path, Op: "write", Err: err}
	}
	if err = tmp.Sync(); err != nil {
		return &IOError{Path: path, Op: "sync", Err: err}
	}
	if err = tmp.Close(); err != nil {
		return &IOError{Path: path, Op: "close", Err: err}
	}
	if err = fs.Chmod(name, perm); err != nil {
		return &IOError{Path: path, Op: "chmod", Err: err}
	}
	if err = fs.Rename(name, path); err != nil {
		return &IOError{Path: path, Op: "rename", Err: err}
	}
	return nil
}
