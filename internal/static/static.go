// Package static embeds the starter plans and copies them to the data
// directory.
package static

import (
	"embed"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/ayoisaiah/lift/internal/osutil"
)

const (
	filesDir = "files"
)

//go:embed files/*
var embeddedFiles embed.FS

// Install copies the embedded files into dir on the real filesystem.
func Install(dir string) error {
	return installTo(afero.NewOsFs(), dir)
}

// installTo copies every embedded file into dir. Existing files are left
// alone so user edits survive upgrades.
func installTo(fsys afero.Fs, dir string) error {
	return fs.WalkDir(
		embeddedFiles,
		filesDir,
		func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			if d.IsDir() {
				return nil
			}

			rel, err := filepath.Rel(filesDir, path)
			if err != nil {
				return err
			}

			destPath := filepath.Join(dir, rel)

			// Only write if file does not already exist
			if _, err := fsys.Stat(destPath); !os.IsNotExist(err) {
				return err
			}

			b, err := embeddedFiles.ReadFile(path)
			if err != nil {
				return err
			}

			if err := fsys.MkdirAll(filepath.Dir(destPath), osutil.DirPermission); err != nil {
				return err
			}

			return afero.WriteFile(fsys, destPath, b, osutil.FilePermission)
		},
	)
}

// Plans returns the names of the embedded plan files.
func Plans() ([]string, error) {
	entries, err := embeddedFiles.ReadDir(filesDir + "/plans")
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}

	return names, nil
}

// Open opens an embedded file by its path relative to the files directory.
func Open(name string) (fs.File, error) {
	return embeddedFiles.Open(filesDir + "/" + name)
}
