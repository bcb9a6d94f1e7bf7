package listing

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	DefaultPageSize = 12
	MaxPageSize     = 100
)

type Sort string

const (
	SortPriceAsc  Sort = "price_asc"
	SortPriceDesc Sort = "price_desc"
	SortNewest    Sort = "newest"
)

func (s Sort) Valid() bool {
	switch s {
	case SortPriceAsc, SortPriceDesc, SortNewest:
		return true
	default:
		return false
	}
}

// Filter is the browse page's filter state. Zero values mean "not filtered".
type Filter struct {
	MinPrice      *decimal.Decimal
	MaxPrice      *decimal.Decimal
	Condition     Condition
	Categories    []string
	Manufacturers []string
	Series        []string
	Sort          Sort
	Page          int
	Size          int
}

func (f Filter) Validate() error {
	var errs []error
	if f.MinPrice != nil && f.MinPrice.IsNegative() {
		errs = append(errs, errors.New("minPrice must not be negative"))
	}
	if f.MaxPrice != nil && f.MaxPrice.IsNegative() {
		errs = append(errs, errors.New("maxPrice must not be negative"))
	}
	if f.MinPrice != nil && f.MaxPrice != nil && f.MinPrice.GreaterThan(*f.MaxPrice) {
		errs = append(errs, errors.New("minPrice must not exceed maxPrice"))
	}
	if f.Condition != "" && !f.Condition.Valid() {
		errs = append(errs, fmt.Errorf("unknown condition %q", f.Condition))
	}
	if f.Sort != "" && !f.Sort.Valid() {
		errs = append(errs, fmt.Errorf("unknown sort %q", f.Sort))
	}
	if f.Page < 0 {
		errs = append(errs, errors.New("page must be >= 1"))
	}
	if f.Size < 0 || f.Size > MaxPageSize {
		errs = append(errs, fmt.Errorf("size must be within 1..%d", MaxPageSize))
	}
	return errors.Join(errs...)
}

// Normalize fills in the paging defaults.
func (f Filter) Normalize(defaultSize int) Filter {
	if f.Page == 0 {
		f.Page = 1
	}
	if f.Size == 0 {
		f.Size = defaultSize
	}
	return f
}

// Values renders the filter as the listings endpoint's query parameters.
// Name filters are repeated keys, as the trade service binds them to lists.
func (f Filter) Values() url.Values {
	v := url.Values{}
	if f.MinPrice != nil {
		v.Set("minPrice", f.MinPrice.String())
	}
	if f.MaxPrice != nil {
		v.Set("maxPrice", f.MaxPrice.String())
	}
	if f.Condition != "" {
		v.Set("condition", string(f.Condition))
	}
	for _, c := range f.Categories {
		v.Add("categories", c)
	}
	for _, m := range f.Manufacturers {
		v.Add("manufacturers", m)
	}
	for _, s := range f.Series {
		v.Add("series", s)
	}
	if f.Sort != "" {
		v.Set("sort", string(f.Sort))
	}
	if f.Page > 0 {
		v.Set("page", strconv.Itoa(f.Page))
	}
	if f.Size > 0 {
		v.Set("size", strconv.Itoa(f.Size))
	}
	return v
}

// ParseFilter reads a filter from an inbound query string. It does not
// validate; call Validate on the result.
func ParseFilter(q url.Values) (Filter, error) {
	var f Filter

	if raw := strings.TrimSpace(q.Get("minPrice")); raw != "" {
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return Filter{}, fmt.Errorf("minPrice: %w", err)
		}
		f.MinPrice = &d
	}
	if raw := strings.TrimSpace(q.Get("maxPrice")); raw != "" {
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return Filter{}, fmt.Errorf("maxPrice: %w", err)
		}
		f.MaxPrice = &d
	}
	f.Condition = Condition(strings.ToUpper(strings.TrimSpace(q.Get("condition"))))
	f.Categories = nonEmpty(q["categories"])
	f.Manufacturers = nonEmpty(q["manufacturers"])
	f.Series = nonEmpty(q["series"])
	f.Sort = Sort(strings.TrimSpace(q.Get("sort")))

	var err error
	if f.Page, err = pagingParam(q.Get("page")); err != nil {
		return Filter{}, fmt.Errorf("page: %w", err)
	}
	if f.Size, err = pagingParam(q.Get("size")); err != nil {
		return Filter{}, fmt.Errorf("size: %w", err)
	}
	return f, nil
}

// ValidID reports whether id looks like a trade-service listing id.
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func nonEmpty(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// pagingParam returns 0 for an absent value, which Normalize replaces with
// the default. An explicit value must be at least 1.
func pagingParam(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if n < 1 {
		return 0, fmt.Errorf("must be >= 1, got %d", n)
	}
	return n, nil
}
