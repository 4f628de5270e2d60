package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"price-board/internal/domain"
	"price-board/internal/fileutil"
	"price-board/internal/repository"
)

const priceFileExt = ".json"

// PriceRepository stores one JSON object per date ("2024-05-01.json")
// inside a directory. Readers share mu; writers hold it exclusively, so a
// reader never observes a half-applied ReplaceAll.
type PriceRepository struct {
	dir string
	mu  sync.RWMutex
}

func NewPriceRepository(dir string) *PriceRepository {
	return &PriceRepository{dir: dir}
}

var _ repository.PriceRepository = (*PriceRepository)(nil)

func (r *PriceRepository) Init(ctx context.Context) error {
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return repository.NewStorageError("mkdir", r.dir, err)
	}
	return nil
}

func (r *PriceRepository) List(ctx context.Context) ([]domain.PriceTable, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, repository.NewStorageError("list", r.dir, err)
	}

	var tables []domain.PriceTable
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), priceFileExt) {
			continue
		}
		date := strings.TrimSuffix(entry.Name(), priceFileExt)
		if _, err := domain.ParseDate(date); err != nil {
			continue
		}
		table, err := r.read(date)
		if err != nil {
			// removed behind our back, e.g. by hand
			if errors.Is(err, repository.ErrNotFound) {
				continue
			}
			return nil, err
		}
		tables = append(tables, *table)
	}

	sort.Slice(tables, func(i, j int) bool { return tables[i].Date < tables[j].Date })
	return tables, nil
}

func (r *PriceRepository) Get(ctx context.Context, date string) (*domain.PriceTable, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.read(date)
}

func (r *PriceRepository) Put(ctx context.Context, table domain.PriceTable) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.write(table)
}

// ReplaceAll swaps the whole price set. New tables are first written to a
// staging directory; an encode or write failure there leaves the current set
// untouched. Only then are the staged files renamed into place and stale
// dates removed. A rename failure in that last phase can leave a partial
// set behind, which is reported as a StorageError.
func (r *PriceRepository) ReplaceAll(ctx context.Context, tables []domain.PriceTable) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	staging, err := os.MkdirTemp(r.dir, ".staging-*")
	if err != nil {
		return repository.NewStorageError("stage", r.dir, err)
	}
	defer func() { _ = os.RemoveAll(staging) }()

	keep := make(map[string]struct{}, len(tables))
	for _, table := range tables {
		if err := writeTable(filepath.Join(staging, table.Date+priceFileExt), table); err != nil {
			return err
		}
		keep[table.Date] = struct{}{}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	for date := range keep {
		from := filepath.Join(staging, date+priceFileExt)
		if err := os.Rename(from, r.pathFor(date)); err != nil {
			return repository.NewStorageError("rename", r.pathFor(date), err)
		}
	}

	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return repository.NewStorageError("list", r.dir, err)
	}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, priceFileExt) {
			continue
		}
		date := strings.TrimSuffix(name, priceFileExt)
		if _, ok := keep[date]; ok {
			continue
		}
		if _, err := domain.ParseDate(date); err != nil {
			continue
		}
		path := filepath.Join(r.dir, name)
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return repository.NewStorageError("remove", path, err)
		}
	}
	return nil
}

func (r *PriceRepository) Delete(ctx context.Context, date string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	path := r.pathFor(date)
	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return repository.ErrNotFound
		}
		return repository.NewStorageError("remove", path, err)
	}
	return nil
}

func (r *PriceRepository) pathFor(date string) string {
	return filepath.Join(r.dir, date+priceFileExt)
}

func (r *PriceRepository) read(date string) (*domain.PriceTable, error) {
	path := r.pathFor(date)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, repository.ErrNotFound
		}
		return nil, repository.NewStorageError("read", path, err)
	}

	items := map[string]float64{}
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, repository.NewStorageError("decode", path, err)
	}
	return &domain.PriceTable{Date: date, Items: items}, nil
}

func (r *PriceRepository) write(table domain.PriceTable) error {
	return writeTable(r.pathFor(table.Date), table)
}

func writeTable(path string, table domain.PriceTable) error {
	items := table.Items
	if items == nil {
		items = map[string]float64{}
	}
	data, err := encodeIndented(items)
	if err != nil {
		return repository.NewStorageError("encode", path, err)
	}
	if err := fileutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return repository.NewStorageError("write", path, err)
	}
	return nil
}
