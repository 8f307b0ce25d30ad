// Package enum закрытые наборы строковых значений API с подписями для интерфейса.
package enum

import (
	"fmt"
	"strings"
)

type Entry[T ~string] struct {
	Value T
	Label string
}

// Set закрытый набор: неизвестное значение при разборе это ошибка, а не подпись по умолчанию.
type Set[T ~string] struct {
	kind    string
	entries []Entry[T]
	labels  map[T]string
}

func New[T ~string](kind string, entries ...Entry[T]) Set[T] {
	labels := make(map[T]string, len(entries))
	for _, e := range entries {
		labels[e.Value] = e.Label
	}
	return Set[T]{kind: kind, entries: entries, labels: labels}
}

func (s Set[T]) Kind() string { return s.kind }

func (s Set[T]) Label(v T) string { return s.labels[v] }

func (s Set[T]) Valid(v T) bool {
	_, ok := s.labels[v]
	return ok
}

func (s Set[T]) Parse(raw string) (T, error) {
	v := T(strings.TrimSpace(raw))
	if !s.Valid(v) {
		var zero T
		return zero, fmt.Errorf("unknown %s %q", s.kind, raw)
	}
	return v, nil
}

// Values значения в порядке объявления.
func (s Set[T]) Values() []T {
	out := make([]T, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e.Value)
	}
	return out
}

// Strings значения строками (для подсказок CLI и полей-справочников форм).
func (s Set[T]) Strings() []string {
	out := make([]string, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, string(e.Value))
	}
	return out
}

func (s Set[T]) Entries() []Entry[T] { return append([]Entry[T](nil), s.entries...) }

// Unmarshal общий код для UnmarshalText конкретных типов.
func (s Set[T]) Unmarshal(dst *T, b []byte) error {
	v, err := s.Parse(string(b))
	if err != nil {
		return err
	}
	*dst = v
	return nil
}
