package store

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/afero"

	"github.com/ayoisaiah/lift/internal/osutil"
)

const fileExt = ".json"

// FileStore keeps one file per key under a directory. Writes go to a
// temporary file that is renamed into place so a reader never sees a partial
// value.
type FileStore struct {
	fs  afero.Fs
	dir string
}

// NewFileStore returns a FileStore rooted at dir. A nil fs means the OS
// filesystem.
func NewFileStore(fs afero.Fs, dir string) (*FileStore, error) {
	if fs == nil {
		fs = afero.NewOsFs()
	}

	if err := fs.MkdirAll(dir, osutil.DirPermission); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}

	return &FileStore{fs: fs, dir: dir}, nil
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, url.PathEscape(key)+fileExt)
}

func (s *FileStore) Get(
	ctx context.Context,
	key string,
) ([]byte, bool, error) {
	if err := checkKey("get", key); err != nil {
		return nil, false, err
	}

	if err := ctxErr(ctx, "get", key); err != nil {
		return nil, false, err
	}

	b, err := afero.ReadFile(s.fs, s.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}

	if err != nil {
		return nil, false, fileErr("get", key, err)
	}

	return b, true, nil
}

func (s *FileStore) Set(ctx context.Context, key string, value []byte) error {
	if err := checkKey("set", key); err != nil {
		return err
	}

	if err := ctxErr(ctx, "set", key); err != nil {
		return err
	}

	dst := s.path(key)
	tmp := dst + ".tmp"

	if err := afero.WriteFile(s.fs, tmp, value, osutil.FilePermission); err != nil {
		_ = s.fs.Remove(tmp)
		return fileErr("set", key, err)
	}

	return fileErr("set", key, s.fs.Rename(tmp, dst))
}

func (s *FileStore) Remove(ctx context.Context, key string) error {
	if err := checkKey("remove", key); err != nil {
		return err
	}

	if err := ctxErr(ctx, "remove", key); err != nil {
		return err
	}

	err := s.fs.Remove(s.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}

	return fileErr("remove", key, err)
}

func (s *FileStore) ListKeys(ctx context.Context) ([]string, error) {
	if err := ctxErr(ctx, "list", ""); err != nil {
		return nil, err
	}

	entries, err := afero.ReadDir(s.fs, s.dir)
	if err != nil {
		return nil, fileErr("list", "", err)
	}

	keys := make([]string, 0, len(entries))

	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, fileExt) {
			continue
		}

		key, err := url.PathUnescape(strings.TrimSuffix(name, fileExt))
		if err != nil {
			continue
		}

		keys = append(keys, key)
	}

	return keys, nil
}

func (s *FileStore) Close() error {
	return nil
}

func fileErr(op, key string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, syscall.ENOSPC) {
		return wrap(op, key, KindQuota, err)
	}

	return wrap(op, key, KindTransient, err)
}
