package postgres

import (
	"context"
	"database/sql"
	"errors"

	"docconvert/internal/model"
	"docconvert/internal/repository"
)

const conversionColumns = `id, input_name, output_name, format, engine, input_size, output_size, pages, status, error, duration_ms, created_at`

// ConversionPostgres is a PostgreSQL implementation of repository.ConversionRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type ConversionPostgres struct {
	db *sql.DB
}

// NewConversionPostgres creates a new ConversionPostgres repository.
func NewConversionPostgres(db *sql.DB) *ConversionPostgres {
	return &ConversionPostgres{db: db}
}

var _ repository.ConversionRepository = (*ConversionPostgres)(nil)

// IsNoRowsError reports whether err means the row does not exist.
func IsNoRowsError(err error) bool {
	return errors.Is(err, sql.ErrNoRows) || errors.Is(err, repository.ErrNotFound)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanConversion(s scanner) (*model.Conversion, error) {
	var c model.Conversion
	var status string
	if err := s.Scan(
		&c.ID,
		&c.InputName,
		&c.OutputName,
		&c.Format,
		&c.Engine,
		&c.InputSize,
		&c.OutputSize,
		&c.Pages,
		&status,
		&c.Error,
		&c.DurationMS,
		&c.CreatedAt,
	); err != nil {
		return nil, err
	}
	c.Status = model.Status(status)
	return &c, nil
}

// Create inserts a conversion row and returns the stored record.
func (r *ConversionPostgres) Create(ctx context.Context, c *model.Conversion) (*model.Conversion, error) {
	const q = `
		INSERT INTO conversions (` + conversionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING ` + conversionColumns
	row := r.db.QueryRowContext(ctx, q,
		c.ID,
		c.InputName,
		c.OutputName,
		c.Format,
		c.Engine,
		c.InputSize,
		c.OutputSize,
		c.Pages,
		string(c.Status),
		c.Error,
		c.DurationMS,
		c.CreatedAt,
	)
	return scanConversion(row)
}

// FindByID fetches a single conversion by its ID.
func (r *ConversionPostgres) FindByID(ctx context.Context, id string) (*model.Conversion, error) {
	const q = `SELECT ` + conversionColumns + ` FROM conversions WHERE id = $1`
	c, err := scanConversion(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if IsNoRowsError(err) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

// List returns conversions using LIMIT/OFFSET pagination and a total count.
func (r *ConversionPostgres) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Conversion], error) {
	const qCount = `SELECT COUNT(*) FROM conversions`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `SELECT ` + conversionColumns + ` FROM conversions
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2`
	rows, err := r.db.QueryContext(ctx, qList, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Conversion, 0)
	for rows.Next() {
		c, err := scanConversion(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.Conversion]{
		Items: items,
		Total: total,
	}, nil
}

func (r *ConversionPostgres) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
