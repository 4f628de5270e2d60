package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"price-board/internal/domain"
	"price-board/internal/repository"
)

const createPricesTable = `
CREATE TABLE IF NOT EXISTS prices (
	date TEXT NOT NULL,
	item TEXT NOT NULL,
	price REAL NOT NULL,
	PRIMARY KEY (date, item)
);
`

// PriceRepository stores price tables as (date, item, price) rows. A date
// exists only while it has at least one item.
type PriceRepository struct {
	db *sql.DB
}

func NewPriceRepository(db *sql.DB) repository.PriceRepository {
	return &PriceRepository{db: db}
}

func (r *PriceRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createPricesTable); err != nil {
		return repository.NewStorageError("create prices table", "", err)
	}
	return nil
}

func (r *PriceRepository) List(ctx context.Context) ([]domain.PriceTable, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT date, item, price
FROM prices
ORDER BY date ASC, item ASC`)
	if err != nil {
		return nil, repository.NewStorageError("query prices", "", err)
	}
	defer rows.Close()

	var tables []domain.PriceTable
	for rows.Next() {
		var (
			date, item string
			price      float64
		)
		if err := rows.Scan(&date, &item, &price); err != nil {
			return nil, repository.NewStorageError("scan price", "", err)
		}
		if n := len(tables); n == 0 || tables[n-1].Date != date {
			tables = append(tables, domain.PriceTable{Date: date, Items: map[string]float64{}})
		}
		tables[len(tables)-1].Items[item] = price
	}
	if err := rows.Err(); err != nil {
		return nil, repository.NewStorageError("iterate prices", "", err)
	}
	return tables, nil
}

func (r *PriceRepository) Get(ctx context.Context, date string) (*domain.PriceTable, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT item, price
FROM prices
WHERE date = ?`, date)
	if err != nil {
		return nil, repository.NewStorageError("query prices", "", err)
	}
	defer rows.Close()

	table := &domain.PriceTable{Date: date, Items: map[string]float64{}}
	found := false
	for rows.Next() {
		var (
			item  string
			price float64
		)
		if err := rows.Scan(&item, &price); err != nil {
			return nil, repository.NewStorageError("scan price", "", err)
		}
		table.Items[item] = price
		found = true
	}
	if err := rows.Err(); err != nil {
		return nil, repository.NewStorageError("iterate prices", "", err)
	}
	if !found {
		return nil, repository.ErrNotFound
	}
	return table, nil
}

func (r *PriceRepository) Put(ctx context.Context, table domain.PriceTable) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM prices WHERE date = ?`, table.Date); err != nil {
			return fmt.Errorf("delete prices: %w", err)
		}
		return insertTable(ctx, tx, table)
	})
}

func (r *PriceRepository) ReplaceAll(ctx context.Context, tables []domain.PriceTable) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM prices`); err != nil {
			return fmt.Errorf("delete prices: %w", err)
		}
		for _, table := range tables {
			if err := insertTable(ctx, tx, table); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *PriceRepository) Delete(ctx context.Context, date string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM prices WHERE date = ?`, date)
	if err != nil {
		return repository.NewStorageError("delete prices", "", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return repository.NewStorageError("delete prices", "", err)
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *PriceRepository) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return repository.NewStorageError("begin tx", "", err)
	}
	defer tx.Rollback() // safe no-op on commit

	if err := fn(tx); err != nil {
		return repository.NewStorageError("write prices", "", err)
	}
	if err := tx.Commit(); err != nil {
		return repository.NewStorageError("commit tx", "", err)
	}
	return nil
}

func insertTable(ctx context.Context, tx *sql.Tx, table domain.PriceTable) error {
	for item, price := range table.Items {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO prices (date, item, price)
VALUES (?, ?, ?)`,
			table.Date,
			item,
			price,
		); err != nil {
			return fmt.Errorf("insert price: %w", err)
		}
	}
	return nil
}
