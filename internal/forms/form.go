// Package forms формы создания и редактирования записей: поля, значения по умолчанию,
// проверка обязательных полей до обращения к серверу и сборка тела запроса.
package forms

import (
	"encoding/json"
	"fmt"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"
)

type Kind int

const (
	KindText Kind = iota
	KindNumber
	KindDate
	KindDateTime
	KindChoice
	KindRef
	KindJSON
	KindBool
)

// Field описание поля формы.
type Field struct {
	Name     string
	Label    string
	Kind     Kind
	Required bool
	Options  []string
	Default  string
	// ReadOnly поле показывается, но при создании не отправляется.
	ReadOnly bool
}

type Form struct {
	Title  string
	Fields []Field
}

// Values значения полей формы в виде строк, как их вводит пользователь.
type Values map[string]string

func (v Values) Get(name string) string { return strings.TrimSpace(v[name]) }

func (v Values) Clone() Values {
	out := make(Values, len(v))
	for k, x := range v {
		out[k] = x
	}
	return out
}

func (f Form) Field(name string) (Field, bool) {
	for _, fl := range f.Fields {
		if fl.Name == name {
			return fl, true
		}
	}
	return Field{}, false
}

// Defaults значения для новой записи.
func (f Form) Defaults() Values {
	v := make(Values, len(f.Fields))
	for _, fl := range f.Fields {
		v[fl.Name] = fl.Default
	}
	return v
}

// ValidationError ошибки заполнения формы. Запрос на сервер в этом случае не уходит.
type ValidationError struct {
	Missing []string
	Invalid map[string]string
}

func (e *ValidationError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "required fields are missing: "+strings.Join(e.Missing, ", "))
	}
	keys := make([]string, 0, len(e.Invalid))
	for k := range e.Invalid {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		parts = append(parts, k+": "+e.Invalid[k])
	}
	return strings.Join(parts, "; ")
}

func (e *ValidationError) empty() bool { return len(e.Missing) == 0 && len(e.Invalid) == 0 }

func (e *ValidationError) invalid(name, msg string) {
	if e.Invalid == nil {
		e.Invalid = map[string]string{}
	}
	e.Invalid[name] = msg
}

// Validate собирает все ошибки сразу: пропущенные обязательные поля и значения не того вида.
func (f Form) Validate(v Values) error {
	verr := &ValidationError{}
	for _, fl := range f.Fields {
		if fl.ReadOnly {
			continue
		}
		val := v.Get(fl.Name)
		if val == "" {
			if fl.Required {
				verr.Missing = append(verr.Missing, fl.Name)
			}
			continue
		}
		if msg := check(fl, val); msg != "" {
			verr.invalid(fl.Name, msg)
		}
	}
	if verr.empty() {
		return nil
	}
	return verr
}

func check(fl Field, val string) string {
	switch fl.Kind {
	case KindNumber:
		if _, err := strconv.ParseFloat(val, 64); err != nil {
			return "must be a number"
		}
	case KindRef:
		if n, err := strconv.ParseInt(val, 10, 64); err != nil || n <= 0 {
			return "must be a positive id"
		}
	case KindDate:
		if _, err := time.Parse(time.DateOnly, val); err != nil {
			return "must be a date YYYY-MM-DD"
		}
	case KindDateTime:
		if _, ok := parseDateTime(val); !ok {
			return "must be a date and time YYYY-MM-DDTHH:MM"
		}
	case KindChoice:
		if !slices.Contains(fl.Options, val) {
			return fmt.Sprintf("must be one of %s", strings.Join(fl.Options, ", "))
		}
	case KindBool:
		if _, err := strconv.ParseBool(val); err != nil {
			return "must be true or false"
		}
	case KindJSON:
		if !json.Valid([]byte(val)) {
			return "must be valid JSON"
		}
	}
	return ""
}

var dateTimeLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02T15:04", "2006-01-02 15:04"}

func parseDateTime(s string) (time.Time, bool) {
	for _, l := range dateTimeLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// text обрезанное значение, пустая строка уходит как есть.
func text(v Values, name string) *string {
	s := v.Get(name)
	return &s
}

// optional пустое значение уходит как null.
func optional(v Values, name string) *string {
	s := v.Get(name)
	if s == "" {
		return nil
	}
	return &s
}

func number(v Values, name string) *json.Number {
	s := v.Get(name)
	if s == "" {
		return nil
	}
	n := json.Number(s)
	return &n
}

// numberOr пустое число заменяется значением по умолчанию.
func numberOr(v Values, name, def string) *json.Number {
	if n := number(v, name); n != nil {
		return n
	}
	n := json.Number(def)
	return &n
}

func ref(v Values, name string) *int64 {
	s := v.Get(name)
	if s == "" {
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil
	}
	return &n
}

func boolean(v Values, name string) bool {
	b, _ := strconv.ParseBool(v.Get(name))
	return b
}

func refString(p *int64) string {
	if p == nil {
		return ""
	}
	return strconv.FormatInt(*p, 10)
}

func intString(p *int) string {
	if p == nil {
		return ""
	}
	return strconv.Itoa(*p)
}

// dateTimeInput серверное время в виде, пригодном для ввода (без секунд и зоны).
func dateTimeInput(s string) string {
	if s == "" {
		return ""
	}
	t, ok := parseDateTime(s)
	if !ok {
		return s
	}
	return t.Format("2006-01-02T15:04")
}
