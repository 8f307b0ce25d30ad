package console

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Spok95/cmms-console/internal/api"
	"github.com/Spok95/cmms-console/internal/forms"
	"github.com/Spok95/cmms-console/internal/infra/storage"
	"github.com/spf13/pflag"
)

func (a *App) flags(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(a.errOut)
	fs.SortFlags = false
	return fs
}

// parse ошибки флагов pflag уже напечатал вместе с подсказкой.
func (a *App) parse(fs *pflag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if !errors.Is(err, pflag.ErrHelp) {
			fmt.Fprintln(a.errOut, err)
		}
		return ErrUsage
	}
	return nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("bad id %q", s)
	}
	return id, nil
}

// parseIDs номера через пробел или запятую, повторы отбрасываются.
func parseIDs(args []string) ([]int64, error) {
	seen := map[int64]bool{}
	var ids []int64
	for _, arg := range args {
		for _, s := range strings.Split(arg, ",") {
			if strings.TrimSpace(s) == "" {
				continue
			}
			id, err := parseID(s)
			if err != nil {
				return nil, err
			}
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("no ids given")
	}
	return ids, nil
}

func number(s string) json.Number { return json.Number(strings.TrimSpace(s)) }

// idArg единственный позиционный аргумент-номер.
func (a *App) idArg(fs *pflag.FlagSet, usage string) (int64, error) {
	if fs.NArg() != 1 {
		fmt.Fprintf(a.errOut, "Использование: cmms %s\n", usage)
		return 0, ErrUsage
	}
	return parseID(fs.Arg(0))
}

// saveFile пишет файл в каталог и при upload дублирует его в S3.
func (a *App) saveFile(ctx context.Context, name, contentType string, data []byte, dir string, upload bool) error {
	if dir == "" {
		dir = "."
	}
	path := filepath.Join(dir, filepath.Base(name))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Fprintf(a.out, "Файл сохранён: %s (%d байт)\n", path, len(data))

	if !upload {
		return nil
	}
	up, err := storage.New(ctx, a.cfg.S3, a.log)
	if err != nil {
		return err
	}
	key, err := up.Put(ctx, filepath.Base(name), contentType, data)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Загружено в s3://%s/%s\n", a.cfg.S3.Bucket, key)
	return nil
}

func (a *App) saveDownload(ctx context.Context, f *api.File, dir string, upload bool) error {
	return a.saveFile(ctx, f.Name, f.ContentType, f.Data, dir, upload)
}

// readLine строка из stdin (пароль, подтверждение).
func (a *App) readLine(prompt string) (string, error) {
	fmt.Fprint(a.errOut, prompt)
	line, err := bufio.NewReader(a.in).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// confirm подтверждение опасного действия, --yes пропускает вопрос.
func (a *App) confirm(question string, yes bool) bool {
	if yes {
		return true
	}
	ans, err := a.readLine(question + " [y/N]: ")
	if err != nil {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(ans)) {
	case "y", "yes", "д", "да":
		return true
	}
	return false
}

// setFields значения формы из --set поле=значение.
func setFields(set []string) (forms.Values, error) {
	v := forms.Values{}
	for _, kv := range set {
		k, val, ok := strings.Cut(kv, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return nil, fmt.Errorf("bad --set %q, want field=value", kv)
		}
		v[strings.TrimSpace(k)] = val
	}
	return v, nil
}

// printForm поля формы с текущими значениями, для create/edit без --set.
func (a *App) printForm(f forms.Form, v forms.Values) {
	fmt.Fprintln(a.out, f.Title)
	for _, fl := range f.Fields {
		mark := " "
		if fl.Required {
			mark = "*"
		}
		line := fmt.Sprintf("%s %-22s %s = %q", mark, fl.Name, fl.Label, v[fl.Name])
		if len(fl.Options) > 0 {
			line += " (" + strings.Join(fl.Options, "|") + ")"
		}
		if fl.ReadOnly {
			line += " [только чтение]"
		}
		fmt.Fprintln(a.out, line)
	}
}

// Describe текст ошибки для оператора.
func Describe(err error) string {
	var verr *forms.ValidationError
	if errors.As(err, &verr) {
		return "Проверьте поля формы: " + verr.Error()
	}
	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		return fmt.Sprintf("Ошибка API (%d): %s", apiErr.Status, apiErr.Message)
	}
	return "Ошибка: " + err.Error()
}
