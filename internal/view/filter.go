package view

import (
	"fmt"
	"slices"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
)

// Criteria restricts the full dataset. Nil bounds and empty sets do not filter.
type Criteria struct {
	Start      *time.Time `json:"start,omitempty"`
	End        *time.Time `json:"end,omitempty"`
	Countries  []string   `json:"countries,omitempty" validate:"dive,required"`
	Categories []string   `json:"categories,omitempty" validate:"dive,required"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterStructValidation(func(sl validator.StructLevel) {
		c := sl.Current().Interface().(Criteria)
		if c.Start != nil && c.End != nil && c.End.Before(*c.Start) {
			sl.ReportError(c.End, "End", "End", "gtefield", "Start")
		}
	}, Criteria{})
	return v
}

func (c Criteria) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid criteria: %w", err)
	}
	return nil
}

// IsZero reports whether the criteria restrict nothing.
func (c Criteria) IsZero() bool {
	return c.Start == nil && c.End == nil && len(c.Countries) == 0 && len(c.Categories) == 0
}

// Filter returns the rows of v matching c. A null order date fails a bounded
// date range; a null country or category fails a non-empty set.
func Filter(v View, c Criteria) View {
	if c.IsZero() {
		return View{rows: v.rows, catalog: v.catalog}
	}

	countries := toSet(c.Countries)
	categories := toSet(c.Categories)

	out := make([]FactRow, 0, len(v.rows))
	for _, r := range v.rows {
		if c.Start != nil || c.End != nil {
			if r.OrderDate == nil {
				continue
			}
			if c.Start != nil && r.OrderDate.Before(*c.Start) {
				continue
			}
			if c.End != nil && r.OrderDate.After(*c.End) {
				continue
			}
		}
		if countries != nil && !inSet(countries, r.Country) {
			continue
		}
		if categories != nil && !inSet(categories, r.CategoryName) {
			continue
		}
		out = append(out, r)
	}
	return View{rows: out, catalog: v.catalog}
}

func toSet(values []string) map[string]struct{} {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

func inSet(set map[string]struct{}, v *string) bool {
	if v == nil {
		return false
	}
	_, ok := set[*v]
	return ok
}

// FilterOptions are the choices a presentation layer offers for Criteria.
type FilterOptions struct {
	Countries  []string   `json:"countries"`
	Categories []string   `json:"categories"`
	MinDate    *time.Time `json:"min_date"`
	MaxDate    *time.Time `json:"max_date"`
}

func Options(v View) FilterOptions {
	countries := map[string]struct{}{}
	categories := map[string]struct{}{}
	var opts FilterOptions
	for _, r := range v.rows {
		if r.Country != nil {
			countries[*r.Country] = struct{}{}
		}
		if r.CategoryName != nil {
			categories[*r.CategoryName] = struct{}{}
		}
		if r.OrderDate != nil {
			if opts.MinDate == nil || r.OrderDate.Before(*opts.MinDate) {
				opts.MinDate = r.OrderDate
			}
			if opts.MaxDate == nil || r.OrderDate.After(*opts.MaxDate) {
				opts.MaxDate = r.OrderDate
			}
		}
	}
	opts.Countries = sortedKeys(countries)
	opts.Categories = sortedKeys(categories)
	return opts
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

var dateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	time.RFC3339,
}

// ParseDate accepts the date forms the presentation layer sends.
func ParseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse date: %s", s)
}

// MaxDate is the latest non-null order date in v.
func MaxDate(v View) (time.Time, bool) {
	var latest time.Time
	found := false
	for _, r := range v.rows {
		if r.OrderDate != nil && (!found || r.OrderDate.After(latest)) {
			latest = *r.OrderDate
			found = true
		}
	}
	return latest, found
}

// Subset returns the rows whose customer id is in ids, keeping row order.
func Subset(v View, ids []string) View {
	set := toSet(ids)
	out := slices.DeleteFunc(slices.Clone(v.rows), func(r FactRow) bool {
		return !inSet(set, r.CustomerID)
	})
	return View{rows: out, catalog: v.catalog}
}
