package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"k8s.io/apimachinery/pkg/util/validation/field"

	"github.com/renzon/robottelo/internal/store"
	srvErrors "github.com/renzon/robottelo/pkg/errors"
)

const (
	MaxNameLength  = 255
	DefaultPerPage = 20
)

// ListParams are the paging and search parameters every index endpoint accepts.
type ListParams struct {
	Search  string
	Order   string
	Page    int
	PerPage int
}

type ListResult[T any] struct {
	Items    []T
	Total    int
	Subtotal int
	Page     int
	PerPage  int
	Search   string
}

var (
	searchExpr = regexp.MustCompile(`^\s*(\w+)\s*(=|~)\s*(?:"([^"]*)"|(\S+))\s*$`)
	orderExpr  = regexp.MustCompile(`^\s*(\w+)(?:\s+(?i:(asc|desc)))?\s*$`)
)

// ParseSearch converts the supported subset of scoped search into list options:
// `name = "x"`, `name ~ x`, `label = x` and a bare term matching names.
func ParseSearch(search string) ([]store.ListOption, error) {
	search = strings.TrimSpace(search)
	if search == "" {
		return nil, nil
	}

	m := searchExpr.FindStringSubmatch(search)
	if m == nil {
		return []store.ListOption{store.ByNameLike(strings.Trim(search, `"`))}, nil
	}

	fieldName, op, value := m[1], m[2], m[3]
	if value == "" {
		value = m[4]
	}

	switch {
	case fieldName == "name" && op == "=":
		return []store.ListOption{store.ByName(value)}, nil
	case fieldName == "name" && op == "~":
		return []store.ListOption{store.ByNameLike(value)}, nil
	case fieldName == "label" && op == "=":
		return []store.ListOption{store.ByLabel(value)}, nil
	default:
		return nil, srvErrors.NewValidationError(fmt.Sprintf("search: unsupported expression %q", search))
	}
}

func parseOrder(order string) []store.SortParam {
	m := orderExpr.FindStringSubmatch(order)
	if m == nil {
		return nil
	}
	return []store.SortParam{{Field: m[1], Desc: strings.EqualFold(m[2], "desc")}}
}

type lister[T any] interface {
	List(ctx context.Context, opts ...store.ListOption) ([]T, error)
	Count(ctx context.Context, opts ...store.ListOption) (int, error)
}

// listPage runs a paged, searchable listing restricted to scope.
func listPage[T any](ctx context.Context, l lister[T], params ListParams, scope ...store.ListOption) (*ListResult[T], error) {
	searchOpts, err := ParseSearch(params.Search)
	if err != nil {
		return nil, err
	}

	total, err := l.Count(ctx, scope...)
	if err != nil {
		return nil, err
	}

	filter := append(append([]store.ListOption{}, scope...), searchOpts...)
	subtotal, err := l.Count(ctx, filter...)
	if err != nil {
		return nil, err
	}

	page, perPage := params.Page, params.PerPage
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}

	opts := append(filter,
		store.WithSort(parseOrder(params.Order)),
		store.WithLimit(uint64(perPage)),
		store.WithOffset(uint64((page-1)*perPage)),
	)
	items, err := l.List(ctx, opts...)
	if err != nil {
		return nil, err
	}

	return &ListResult[T]{
		Items:    items,
		Total:    total,
		Subtotal: subtotal,
		Page:     page,
		PerPage:  perPage,
		Search:   params.Search,
	}, nil
}

func toValidationError(errs field.ErrorList) error {
	if len(errs) == 0 {
		return nil
	}
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msgs = append(msgs, e.Error())
	}
	return srvErrors.NewValidationError(msgs...)
}

func validateName(path *field.Path, name string) field.ErrorList {
	var errs field.ErrorList
	switch {
	case strings.TrimSpace(name) == "":
		errs = append(errs, field.Required(path, "can't be blank"))
	case utf8.RuneCountInString(name) > MaxNameLength:
		errs = append(errs, field.TooLong(path, "", MaxNameLength))
	}
	return errs
}

func taken(path *field.Path, value string) *field.Error {
	return field.Invalid(path, value, "has already been taken")
}

// nameTaken reports whether another row in scope already uses name.
func nameTaken[T any](ctx context.Context, l lister[T], name string, scope ...store.ListOption) (bool, error) {
	n, err := l.Count(ctx, append(append([]store.ListOption{}, scope...), store.ByName(name))...)
	return n > 0, err
}
