// Package listview фильтрация и постраничный просмотр списка в памяти.
package listview

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// Field достаёт из строки значение для сравнения.
type Field[T any] func(T) string

// Schema поля строки, по которым разрешено фильтровать.
type Schema[T any] struct {
	// Search поля для поиска подстрокой без учёта регистра.
	Search []Field[T]
	// Fields поля точного совпадения (статус, критичность, цех...).
	Fields map[string]Field[T]
	// Date поле даты для диапазона From..To. nil, если диапазон не поддерживается.
	Date Field[T]
}

// Criteria набор условий. Пустое значение не фильтрует.
type Criteria struct {
	Search string            `json:"search,omitempty"`
	Equals map[string]string `json:"equals,omitempty"`
	From   string            `json:"from,omitempty"`
	To     string            `json:"to,omitempty"`
}

func (c Criteria) Empty() bool {
	if strings.TrimSpace(c.Search) != "" || c.From != "" || c.To != "" {
		return false
	}
	for _, v := range c.Equals {
		if v != "" {
			return false
		}
	}
	return true
}

// With копия условий с ещё одним точным совпадением.
func (c Criteria) With(field, value string) Criteria {
	eq := make(map[string]string, len(c.Equals)+1)
	for k, v := range c.Equals {
		eq[k] = v
	}
	eq[field] = value
	c.Equals = eq
	return c
}

// Check проверяет условия против схемы: известные поля и даты в формате YYYY-MM-DD.
func (s Schema[T]) Check(c Criteria) error {
	for k, v := range c.Equals {
		if v == "" {
			continue
		}
		if _, ok := s.Fields[k]; !ok {
			return fmt.Errorf("unknown filter field %q", k)
		}
	}
	for _, d := range []string{c.From, c.To} {
		if d == "" {
			continue
		}
		if s.Date == nil {
			return fmt.Errorf("date range is not supported for this list")
		}
		if _, err := time.Parse(dateLayout, d); err != nil {
			return fmt.Errorf("bad date %q, want YYYY-MM-DD", d)
		}
	}
	return nil
}

// Filter отбирает строки снимка, удовлетворяющие всем условиям сразу.
// Снимок не меняется; неизвестные поля условий не совпадают ни с чем.
func Filter[T any](rows []T, s Schema[T], c Criteria) []T {
	out := make([]T, 0, len(rows))
	q := strings.ToLower(strings.TrimSpace(c.Search))
	for _, row := range rows {
		if q != "" && !s.searchMatch(row, q) {
			continue
		}
		if !s.equalsMatch(row, c.Equals) {
			continue
		}
		if !s.dateMatch(row, c.From, c.To) {
			continue
		}
		out = append(out, row)
	}
	return out
}

func (s Schema[T]) searchMatch(row T, q string) bool {
	for _, f := range s.Search {
		if strings.Contains(strings.ToLower(f(row)), q) {
			return true
		}
	}
	return false
}

func (s Schema[T]) equalsMatch(row T, eq map[string]string) bool {
	for k, want := range eq {
		if want == "" {
			continue
		}
		f, ok := s.Fields[k]
		if !ok || f(row) != want {
			return false
		}
	}
	return true
}

// dateMatch границы включительные; строка без даты под диапазон не попадает.
func (s Schema[T]) dateMatch(row T, from, to string) bool {
	if from == "" && to == "" {
		return true
	}
	if s.Date == nil {
		return false
	}
	d := s.Date(row)
	if len(d) > len(dateLayout) {
		d = d[:len(dateLayout)]
	}
	if d == "" {
		return false
	}
	if from != "" && d < from {
		return false
	}
	if to != "" && d > to {
		return false
	}
	return true
}

// Distinct отсортированные непустые значения поля, для подсказок фильтра.
func Distinct[T any](rows []T, f Field[T]) []string {
	seen := map[string]struct{}{}
	for _, row := range rows {
		if v := f(row); v != "" {
			seen[v] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
