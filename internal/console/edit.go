package console

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/Spok95/cmms-console/internal/forms"
	"github.com/Spok95/cmms-console/internal/render"
)

// runForm create (без номера) и edit <id>: открыть форму, применить значения, сохранить.
// Без --set и --values печатает форму с текущими значениями и ничего не отправляет.
func runForm[E, I any](ctx context.Context, a *App, name string, edit bool,
	ctrl *forms.Controller[E, I], card func(E) render.Card, args []string) error {

	fs := a.flags(name)
	set := fs.StringArray("set", nil, "значение поля: поле=значение, можно несколько")
	valuesPath := fs.String("values", "", "JSON-файл {\"поле\": \"значение\"}")
	if err := a.parse(fs, args); err != nil {
		return err
	}

	var id int64
	if edit {
		var err error
		if id, err = a.idArg(fs, name+" <id> [--set поле=значение]"); err != nil {
			return err
		}
	} else if fs.NArg() != 0 {
		fmt.Fprintf(a.errOut, "Использование: cmms %s [--set поле=значение]\n", name)
		return ErrUsage
	}

	if err := ctrl.Open(ctx, id); err != nil {
		return err
	}

	values := forms.Values{}
	if *valuesPath != "" {
		raw, err := os.ReadFile(*valuesPath)
		if err != nil {
			return fmt.Errorf("read values: %w", err)
		}
		if err := json.Unmarshal(raw, &values); err != nil {
			return fmt.Errorf("decode values %s: %w", *valuesPath, err)
		}
	}
	fromFlags, err := setFields(*set)
	if err != nil {
		return err
	}
	for k, v := range fromFlags {
		values[k] = v
	}

	if len(values) == 0 {
		a.printForm(ctrl.Form(), ctrl.Values())
		return nil
	}
	if err := ctrl.SetAll(values); err != nil {
		return err
	}
	saved, err := ctrl.Submit(ctx)
	if err != nil {
		return err
	}
	if ctrl.Editing() {
		fmt.Fprintln(a.out, "Изменения сохранены")
	} else {
		fmt.Fprintln(a.out, "Запись создана")
	}
	return card(*saved).Write(a.out)
}
