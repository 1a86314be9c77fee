package dataset

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// EnsureExtracted returns the path of csvName inside dataDir. When the CSV is
// absent and archiveName exists in dataDir, the archive is extracted into
// dataDir first. A missing archive is not an error; Load reports the missing CSV.
func EnsureExtracted(dataDir, archiveName, csvName string) (string, error) {
	csvPath := filepath.Join(dataDir, csvName)
	if archiveName == "" {
		return csvPath, nil
	}
	archivePath := filepath.Join(dataDir, archiveName)
	if !exists(archivePath) || exists(csvPath) {
		return csvPath, nil
	}
	if err := extractZip(archivePath, dataDir); err != nil {
		return "", err
	}
	return csvPath, nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func extractZip(archivePath, destDir string) error {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("open archive %s: %w", archivePath, err)
	}
	defer r.Close()

	root, err := filepath.Abs(destDir)
	if err != nil {
		return err
	}
	for _, f := range r.File {
		target := filepath.Join(root, filepath.FromSlash(f.Name))
		if target != root && !strings.HasPrefix(target, root+string(os.PathSeparator)) {
			return fmt.Errorf("archive entry %q escapes %s", f.Name, destDir)
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0755); err != nil {
				return err
			}
			continue
		}
		if err := extractFile(f, target); err != nil {
			return fmt.Errorf("extract %s: %w", f.Name, err)
		}
	}
	return nil
}

func extractFile(f *zip.File, target string) (err error) {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return err
	}
	src, err := f.Open()
	if err != nil {
		return err
	}
	defer src.Close()
	dst, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, dst.Close())
	}()
	_, err = io.Copy(dst, src)
	return err
}
