// Package localfs implements the Store interface on a local file system.
//
// Writes are atomic: objects are staged next to their target location,
// then renamed into place, so a partially written object is never
// visible under its final key.
package localfs

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/NOAA-EPIC/AQM-Eval/pkg/storage"
	"github.com/NOAA-EPIC/AQM-Eval/pkg/storage/status"
	"github.com/spf13/afero"
)

// New creates a new local file system backed storage model.
//
// When fs is nil, the store operates on the current working directory.
func New(fs afero.Fs) storage.Store {
	if fs == nil {
		fs = afero.NewBasePathFs(afero.NewOsFs(), ".")
	}
	return &localFS{
		fs: fs,
	}
}

type localFS struct {
	fs afero.Fs
}

func (l *localFS) Has(ctx context.Context, key string) (bool, error) {
	fi, err := l.fs.Stat(key)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return !fi.IsDir(), nil
}

func (l *localFS) Head(ctx context.Context, key string) (storage.ObjectInfo, error) {
	fi, err := l.fs.Stat(key)
	if err != nil {
		if os.IsNotExist(err) {
			return storage.ObjectInfo{}, status.ErrNotFound.Wrap(err)
		}
		return storage.ObjectInfo{}, err
	}
	if fi.IsDir() {
		return storage.ObjectInfo{}, status.ErrNotFound.Wrap(fmt.Errorf("%q is a directory", key))
	}
	return storage.ObjectInfo{Key: key, Size: fi.Size()}, nil
}

func (l *localFS) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	has, err := l.Has(ctx, key)
	if err != nil {
		return nil, err
	}
	if !has {
		return nil, status.ErrNotFound.Wrap(fmt.Errorf("no object at %q", key))
	}
	return l.fs.Open(key)
}

// Put stages the object in its target directory, then renames it into
// place. The staging file is removed on every failure path, so a failed
// transfer leaves neither the final key nor stray temporaries behind.
func (l *localFS) Put(ctx context.Context, key string, source io.Reader) error {
	dir := filepath.Dir(key)
	if dir != "" {
		if err := l.fs.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("ensuring directories for %q: %v", key, err)
		}
	}
	stage, err := afero.TempFile(l.fs, dir, "."+filepath.Base(key)+".tmp-")
	if err != nil {
		return fmt.Errorf("create staging file for %q: %v", key, err)
	}
	stageName := stage.Name()
	if _, err = io.Copy(stage, source); err != nil {
		_ = stage.Close()
		_ = l.fs.Remove(stageName)
		return fmt.Errorf("write staging file for %q: %v", key, err)
	}
	if err = stage.Close(); err != nil {
		_ = l.fs.Remove(stageName)
		return fmt.Errorf("close staging file for %q: %v", key, err)
	}
	if err = l.fs.Rename(stageName, key); err != nil {
		_ = l.fs.Remove(stageName)
		return fmt.Errorf("rename staging file into %q: %v", key, err)
	}
	return nil
}

// KeysPrefix walks the file system and returns a lexicographically
// sorted page of keys starting at token. Keys are slash separated and
// relative to the store root, like on an object store.
func (l *localFS) KeysPrefix(ctx context.Context, token, prefix string, count int) ([]storage.ObjectInfo, string, error) {
	if count <= 0 {
		count = storage.PageSize
	}
	var all []storage.ObjectInfo
	normalized := strings.TrimPrefix(prefix, "/")
	err := afero.Walk(l.fs, ".", func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info == nil || info.IsDir() {
			return nil
		}
		key := strings.TrimPrefix(filepath.ToSlash(path), "/")
		if !strings.HasPrefix(key, normalized) {
			return nil
		}
		all = append(all, storage.ObjectInfo{Key: key, Size: info.Size()})
		return nil
	})
	if err != nil {
		return nil, "", err
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Key < all[j].Key })

	start := 0
	if token != "" {
		start = sort.Search(len(all), func(i int) bool { return all[i].Key >= token })
	}
	if start >= len(all) {
		return nil, "", nil
	}
	end := start + count
	if end >= len(all) {
		return all[start:], "", nil
	}
	return all[start:end], all[end].Key, nil
}

func (l *localFS) String() string {
	const localfs = "localfs"
	switch fs := l.fs.(type) {
	case *afero.BasePathFs:
		pp, err := fs.RealPath("")
		if err != nil {
			return localfs
		}
		return localfs + "@" + pp
	default:
		return localfs
	}
}
