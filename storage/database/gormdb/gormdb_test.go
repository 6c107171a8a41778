package gormdb

import (
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/trezcool/kozi/core"
)

func Test_translateError(t *testing.T) {
	conflict := func(t *testing.T, got error) {
		t.Helper()
		if _, ok := got.(*core.ConflictError); !ok {
			t.Errorf("got %T (%v), want a ConflictError", got, got)
		}
	}
	referential := func(t *testing.T, got error) {
		t.Helper()
		if _, ok := got.(*core.ReferentialError); !ok {
			t.Errorf("got %T (%v), want a ReferentialError", got, got)
		}
	}

	tests := []struct {
		name  string
		err   error
		check func(t *testing.T, got error)
	}{
		{name: "nil passes through", err: nil, check: func(t *testing.T, got error) {
			if got != nil {
				t.Errorf("got %v, want nil", got)
			}
		}},
		{name: "record not found", err: gorm.ErrRecordNotFound, check: func(t *testing.T, got error) {
			if got != core.ErrNotFound {
				t.Errorf("got %v, want %v", got, core.ErrNotFound)
			}
		}},
		{name: "lib/pq unique violation", err: &pq.Error{Code: "23505"}, check: conflict},
		{name: "lib/pq foreign key violation", err: &pq.Error{Code: "23503"}, check: referential},
		{name: "wrapped lib/pq unique violation", err: errors.Wrap(&pq.Error{Code: "23505"}, "inserting tracker"), check: conflict},
		{name: "pgx unique violation", err: &pgconn.PgError{Code: "23505"}, check: conflict},
		{name: "pgx foreign key violation", err: &pgconn.PgError{Code: "23503"}, check: referential},
		{name: "other pg error passes through", err: &pq.Error{Code: "42P01"}, check: func(t *testing.T, got error) {
			if _, ok := got.(*pq.Error); !ok {
				t.Errorf("got %T, want the original *pq.Error", got)
			}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, translateError(tt.err))
		})
	}
}
