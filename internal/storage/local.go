package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"sort"

	"price-board/internal/fileutil"
)

// LocalService keeps images as plain files in one directory.
type LocalService struct {
	dir string
}

func NewLocalService(dir string) (*LocalService, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalService{dir: dir}, nil
}

func (s *LocalService) Put(ctx context.Context, name string, body io.Reader, opts PutOptions) (ObjectInfo, error) {
	if err := ValidateName(name); err != nil {
		return ObjectInfo{}, err
	}
	path := filepath.Join(s.dir, name)
	if _, err := fileutil.WriteReaderAtomic(path, body, 0o644); err != nil {
		return ObjectInfo{}, fmt.Errorf("store %s: %w", name, err)
	}
	return s.stat(name)
}

func (s *LocalService) List(ctx context.Context) ([]ObjectInfo, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list upload dir: %w", err)
	}

	objects := make([]ObjectInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || ValidateName(entry.Name()) != nil {
			continue
		}
		info, err := s.stat(entry.Name())
		if err != nil {
			if errors.Is(err, ErrObjectNotFound) {
				continue
			}
			return nil, err
		}
		objects = append(objects, info)
	}
	sort.Slice(objects, func(i, j int) bool { return objects[i].Name < objects[j].Name })
	return objects, nil
}

func (s *LocalService) Open(ctx context.Context, name string) (io.ReadCloser, ObjectInfo, error) {
	if err := ValidateName(name); err != nil {
		return nil, ObjectInfo{}, err
	}
	f, err := os.Open(filepath.Join(s.dir, name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ObjectInfo{}, ErrObjectNotFound
		}
		return nil, ObjectInfo{}, fmt.Errorf("open %s: %w", name, err)
	}
	fi, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, ObjectInfo{}, fmt.Errorf("stat %s: %w", name, err)
	}
	return f, infoFromFile(name, fi), nil
}

func (s *LocalService) Delete(ctx context.Context, name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrObjectNotFound
		}
		return fmt.Errorf("remove %s: %w", name, err)
	}
	return nil
}

func (s *LocalService) stat(name string) (ObjectInfo, error) {
	fi, err := os.Stat(filepath.Join(s.dir, name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ObjectInfo{}, ErrObjectNotFound
		}
		return ObjectInfo{}, fmt.Errorf("stat %s: %w", name, err)
	}
	return infoFromFile(name, fi), nil
}

func infoFromFile(name string, fi os.FileInfo) ObjectInfo {
	modified := fi.ModTime()
	contentType := mime.TypeByExtension(filepath.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return ObjectInfo{
		Name:         name,
		Size:         fi.Size(),
		ContentType:  contentType,
		LastModified: &modified,
	}
}

var _ Service = (*LocalService)(nil)
