package storage

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// FileUsage is the on-disk size of one path.
type FileUsage struct {
	Path   string `json:"path"`
	Bytes  int64  `json:"bytes"`
	Exists bool   `json:"exists"`
}

// StatPaths reports the size of each path (directories are summed recursively)
// and the total. Missing paths are reported with Exists=false and contribute 0.
func StatPaths(paths ...string) ([]FileUsage, int64, error) {
	out := make([]FileUsage, 0, len(paths))
	var total int64
	for _, p := range paths {
		if p == "" {
			continue
		}
		u := FileUsage{Path: p}
		info, err := os.Stat(p)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, 0, err
		case info.IsDir():
			n, err := dirSize(p)
			if err != nil {
				return nil, 0, err
			}
			u.Bytes, u.Exists = n, true
		default:
			u.Bytes, u.Exists = info.Size(), true
		}
		total += u.Bytes
		out = append(out, u)
	}
	return out, total, nil
}

// DiskUsageBytes returns the total size in bytes of the given paths.
func DiskUsageBytes(paths ...string) (int64, error) {
	_, total, err := StatPaths(paths...)
	return total, err
}

func dirSize(dir string) (int64, error) {
	var total int64
	err := filepath.WalkDir(dir, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		total += info.Size()
		return nil
	})
	return total, err
}
