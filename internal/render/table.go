// Package render вывод моделей представления: текстовые таблицы, карточки, CSV и Excel.
package render

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/Spok95/cmms-console/internal/listview"
)

// Table колонки выравниваются по ширине; пустые ячейки выводятся как "-".
type Table struct {
	Headers []string
	Rows    [][]string
}

func (t Table) Write(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, strings.Join(t.Headers, "\t")); err != nil {
		return err
	}
	for _, row := range t.Rows {
		cells := make([]string, len(row))
		for i, c := range row {
			cells[i] = cell(c)
		}
		if _, err := fmt.Fprintln(tw, strings.Join(cells, "\t")); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func cell(s string) string {
	s = strings.TrimSpace(strings.ReplaceAll(s, "\n", " "))
	s = strings.ReplaceAll(s, "\t", " ")
	if s == "" {
		return "-"
	}
	return s
}

// Footer строка навигации под таблицей: «1–50 из 125 · стр. 1/3 · [1] 2 3».
func Footer[T any](w io.Writer, v listview.View[T]) error {
	var b strings.Builder
	if v.Total == 0 {
		b.WriteString("Нет записей")
	} else {
		fmt.Fprintf(&b, "%d–%d из %d", v.Start, v.End, v.Total)
	}
	fmt.Fprintf(&b, " · стр. %d/%d ·", v.Page, v.TotalPages)
	if v.HasPrev {
		b.WriteString(" «")
	}
	for _, p := range v.Buttons {
		if p == v.Page {
			fmt.Fprintf(&b, " [%d]", p)
		} else {
			fmt.Fprintf(&b, " %d", p)
		}
	}
	if v.HasNext {
		b.WriteString(" »")
	}
	if v.All {
		b.WriteString(" · все")
	} else {
		fmt.Fprintf(&b, " · по %d", v.PageSize)
	}
	_, err := fmt.Fprintln(w, b.String())
	return err
}

// Card карточка записи: подпись и значение в две колонки.
type Card struct {
	Title  string
	Fields [][2]string
}

func (c Card) Write(w io.Writer) error {
	if c.Title != "" {
		if _, err := fmt.Fprintln(w, c.Title); err != nil {
			return err
		}
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, f := range c.Fields {
		if _, err := fmt.Fprintf(tw, "  %s:\t%s\n", f[0], cell(f[1])); err != nil {
			return err
		}
	}
	return tw.Flush()
}
