package core

import (
	"math"
	"strconv"
)

// Caller roles.
const (
	RoleManager     = "manager"
	RoleFacilitator = "facilitator"
)

// Caller identifies the authenticated user a query is scoped to.
type Caller struct {
	ID    int
	Email string
	Role  string
}

func (c Caller) IsManager() bool     { return c.Role == RoleManager }
func (c Caller) IsFacilitator() bool { return c.Role == RoleFacilitator }

// Filter is an exact-match predicate: field name -> required value.
type Filter map[string]interface{}

// FacilitatorIDField is the filter key a facilitator caller is pinned to on
// facilitator-owned resources.
const FacilitatorIDField = "facilitatorId"

// BuildWhereClause keeps only the allowed keys of rawQuery whose value is
// actually supplied. Empty string, nil and the literal string "undefined"
// count as "not supplied"; false and 0 are real values and are kept.
func BuildWhereClause(rawQuery map[string]interface{}, allowedFilters []string) Filter {
	where := make(Filter, len(allowedFilters))
	for _, field := range allowedFilters {
		val, ok := rawQuery[field]
		if !ok || isEmptyValue(val) {
			continue
		}
		where[field] = val
	}
	return where
}

func isEmptyValue(val interface{}) bool {
	if val == nil {
		return true
	}
	if s, ok := val.(string); ok {
		return s == "" || s == "undefined"
	}
	return false
}

// ScopeToCaller enforces row-level visibility on resources that carry a
// facilitatorId: a facilitator only ever sees their own rows, whatever the
// query string asked for. Managers keep the filter as supplied.
func ScopeToCaller(where Filter, caller Caller) Filter {
	if where == nil {
		where = make(Filter, 1)
	}
	if caller.IsFacilitator() {
		where[FacilitatorIDField] = caller.ID
	}
	return where
}

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// Pagination holds the LIMIT/OFFSET pair applied to a list query.
type Pagination struct {
	Page   int
	Limit  int
	Offset int
}

// Paginate clamps page and limit to their valid ranges and derives the offset.
func Paginate(page, limit int) Pagination {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return Pagination{
		Page:   page,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
}

// ParsePagination is Paginate over raw query-string values; malformed numbers
// fall back to the defaults, fractional input is truncated.
func ParsePagination(page, limit string) Pagination {
	return Paginate(atoiTrunc(page, DefaultPage), atoiTrunc(limit, DefaultLimit))
}

func atoiTrunc(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(f)
	}
	return def
}

// PaginationMeta is the `meta` block of paginated list responses.
type PaginationMeta struct {
	CurrentPage  int   `json:"currentPage"`
	TotalPages   int   `json:"totalPages"`
	TotalItems   int64 `json:"totalItems"`
	ItemsPerPage int   `json:"itemsPerPage"`
	HasNextPage  bool  `json:"hasNextPage"`
	HasPrevPage  bool  `json:"hasPrevPage"`
}

// NewPaginationMeta derives the pagination metadata for a total row count.
// count = 0 yields totalPages = 0 and both flags false; a page beyond
// totalPages yields hasNextPage = false.
func NewPaginationMeta(count int64, p Pagination) PaginationMeta {
	totalPages := int(math.Ceil(float64(count) / float64(p.Limit)))
	return PaginationMeta{
		CurrentPage:  p.Page,
		TotalPages:   totalPages,
		TotalItems:   count,
		ItemsPerPage: p.Limit,
		HasNextPage:  p.Page < totalPages,
		HasPrevPage:  p.Page > 1,
	}
}

// DBOrdering is a single ORDER BY term.
type DBOrdering struct {
	Field     string
	Ascending bool
}

func (ord DBOrdering) String() string {
	direction := "DESC"
	if ord.Ascending {
		direction = "ASC"
	}
	return ord.Field + " " + direction
}
