package ioutils

import "os"

// EnsureDir creates a directory and all parent directories if they don't exist.
//
// Directories are created with mode 0755 (rwxr-xr-x).
// If the directory already exists, no error is returned.
//
// Example:
//
//	err := EnsureDir("/music/Artist - Album")
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}

// WriteFile writes data to a file, creating it if necessary.
//
// The file is created with mode 0644. If the file already exists,
// it is truncated before writing.
func WriteFile(path string, data []byte) error {
	return os.WriteFile(path, data, 0644)
}

// IncompleteSuffix marks files still being written. A file carrying it
// is never a finished artifact and is safe to delete.
const IncompleteSuffix = ".incomplete"

// WriteFileAtomic writes data next to the final path and renames it into
// place, removing the staging file on failure.
func WriteFileAtomic(path string, data []byte) error {
	tmp := path + IncompleteSuffix
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}
