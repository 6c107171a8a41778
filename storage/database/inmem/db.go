// Package inmemdb provides map-backed repositories for tests. Semantics
// (not-found sentinels, role scoping inputs, pagination windows) mirror the
// PostgreSQL implementation.
package inmemdb

import (
	"fmt"
	"sync"

	"github.com/trezcool/kozi/core"
	"github.com/trezcool/kozi/core/academics"
	"github.com/trezcool/kozi/core/allocation"
	"github.com/trezcool/kozi/core/staff"
)

type DB struct {
	mu sync.RWMutex
	pk int

	managers     map[int]*staff.Manager
	facilitators map[int]*staff.Facilitator
	modules      map[int]*academics.Module
	classes      map[int]*academics.Class
	cohorts      map[int]*academics.Cohort
	students     map[int]*academics.Student
	modes        map[int]*academics.Mode
	offerings    map[int]*allocation.CourseOffering
	trackers     map[int]*allocation.ActivityTracker
}

func NewDB() *DB {
	return &DB{
		managers:     make(map[int]*staff.Manager),
		facilitators: make(map[int]*staff.Facilitator),
		modules:      make(map[int]*academics.Module),
		classes:      make(map[int]*academics.Class),
		cohorts:      make(map[int]*academics.Cohort),
		students:     make(map[int]*academics.Student),
		modes:        make(map[int]*academics.Mode),
		offerings:    make(map[int]*allocation.CourseOffering),
		trackers:     make(map[int]*allocation.ActivityTracker),
	}
}

// nextPK must be called with db.mu held for writing.
func (db *DB) nextPK() int {
	db.pk++
	return db.pk
}

// match compares a filter value (often a query-string literal) against a
// stored field value.
func match(want, got interface{}) bool {
	return fmt.Sprint(want) == fmt.Sprint(got)
}

func pageSlice[T any](s []T, p core.Pagination) []T {
	if p.Offset >= len(s) {
		return []T{}
	}
	end := p.Offset + p.Limit
	if end > len(s) {
		end = len(s)
	}
	return s[p.Offset:end]
}
