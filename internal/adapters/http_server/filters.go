package httpserver

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"smart_places/internal/domain"
)

// Query keys shared with the browser's shareable search URLs.
const (
	keyQuery    = "q"
	keyCategory = "cat"
	keyMin      = "min"
	keyMax      = "max"
	keyPrefs    = "pref"
	keySort     = "sort"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		_, err := domain.ParseCategory(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("sortkey", func(fl validator.FieldLevel) bool {
		_, err := domain.ParseSortKey(fl.Field().String())
		return err == nil
	})
	return v
}

type filterParams struct {
	Query    string   `validate:"max=200"`
	Category string   `validate:"category"`
	Prefs    []string `validate:"max=20,dive,max=64"`
	Sort     string   `validate:"sortkey"`
}

// ParseFilters reads search state from a query string. Absent keys take the
// defaults; malformed values are rejected here, never by the ranking engine.
func ParseFilters(q url.Values) (domain.SearchFilters, error) {
	f := domain.DefaultFilters()

	p := filterParams{
		Query:    strings.TrimSpace(q.Get(keyQuery)),
		Category: string(f.Category),
		Sort:     string(f.SortBy),
	}
	if c := q.Get(keyCategory); c != "" {
		p.Category = c
	}
	if s := q.Get(keySort); s != "" {
		p.Sort = s
	}
	for _, raw := range q[keyPrefs] {
		for _, pref := range strings.Split(raw, ",") {
			if pref = strings.TrimSpace(pref); pref != "" {
				p.Prefs = append(p.Prefs, pref)
			}
		}
	}
	if err := validate.Struct(p); err != nil {
		return domain.SearchFilters{}, describe(err)
	}

	var err error
	if f.BudgetMin, err = budget(q, keyMin, f.BudgetMin); err != nil {
		return domain.SearchFilters{}, err
	}
	if f.BudgetMax, err = budget(q, keyMax, f.BudgetMax); err != nil {
		return domain.SearchFilters{}, err
	}

	f.Query = p.Query
	f.Category = domain.Category(p.Category)
	f.SortBy = domain.SortKey(p.Sort)
	f.Preferences = p.Prefs
	return f, nil
}

func budget(q url.Values, key string, def float64) (float64, error) {
	s := strings.TrimSpace(q.Get(key))
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%s must be a number", key)
	}
	return v, nil
}

var paramNames = map[string]string{
	"Query":    keyQuery,
	"Category": keyCategory,
	"Prefs":    keyPrefs,
	"Sort":     keySort,
}

// describe turns the first validation failure into a client-facing message.
func describe(err error) error {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	field, _, _ := strings.Cut(fe.StructField(), "[")
	name := paramNames[field]
	switch fe.Tag() {
	case "category", "sortkey":
		return fmt.Errorf("unknown %s %q", name, fe.Value())
	case "max":
		return fmt.Errorf("%s is too long", name)
	}
	return fmt.Errorf("invalid %s", name)
}

// FiltersQuery is the inverse of ParseFilters; default values are omitted.
func FiltersQuery(f domain.SearchFilters) url.Values {
	d := domain.DefaultFilters()
	q := url.Values{}
	if f.Query != "" {
		q.Set(keyQuery, f.Query)
	}
	if f.Category != "" && f.Category != d.Category {
		q.Set(keyCategory, string(f.Category))
	}
	if f.BudgetMin != d.BudgetMin {
		q.Set(keyMin, strconv.FormatFloat(f.BudgetMin, 'f', -1, 64))
	}
	if f.BudgetMax != d.BudgetMax {
		q.Set(keyMax, strconv.FormatFloat(f.BudgetMax, 'f', -1, 64))
	}
	if len(f.Preferences) > 0 {
		q.Set(keyPrefs, strings.Join(f.Preferences, ","))
	}
	if f.SortBy != "" && f.SortBy != d.SortBy {
		q.Set(keySort, string(f.SortBy))
	}
	return q
}
