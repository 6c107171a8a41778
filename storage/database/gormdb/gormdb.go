// Package gormdb implements the core repositories on PostgreSQL through GORM.
package gormdb

import (
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/trezcool/kozi/core"
)

// translateError maps persistence failures to the application taxonomy so
// raw driver errors never reach callers. Constraint violations surface as
// lib/pq errors on handles opened through database/sql and as pgx errors on
// handles opened through the pgx dialector; both are matched.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return core.ErrNotFound
	}

	var code string
	var pqErr *pq.Error
	var pgErr *pgconn.PgError
	switch {
	case errors.As(err, &pqErr):
		code = string(pqErr.Code)
	case errors.As(err, &pgErr):
		code = pgErr.Code
	}

	switch code {
	case "23505": // unique_violation
		return core.NewConflictError("a record with these unique values already exists")
	case "23503": // foreign_key_violation
		return core.NewReferentialError("a referenced record does not exist or is still in use")
	}
	return err
}

// applyFilter ANDs exact-match predicates for the filter keys present in
// cols; unknown keys are ignored. cols maps a filter key to its (already
// quoted where needed) column expression.
func applyFilter(q *gorm.DB, filter core.Filter, cols map[string]string) *gorm.DB {
	for key, val := range filter {
		if col, ok := cols[key]; ok {
			q = q.Where(fmt.Sprintf("%s = ?", col), val)
		}
	}
	return q
}

func applyOrdering(q *gorm.DB, ord []core.DBOrdering) *gorm.DB {
	for _, o := range ord {
		q = q.Order(o.String())
	}
	return q
}

func paginate(q *gorm.DB, p core.Pagination) *gorm.DB {
	return q.Offset(p.Offset).Limit(p.Limit)
}
