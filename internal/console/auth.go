package console

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/Spok95/cmms-console/internal/render"
)

func (a *App) cmdLogin(ctx context.Context, args []string) error {
	fs := a.flags("login")
	username := fs.StringP("username", "u", "", "логин")
	password := fs.String("password", "", "пароль (лучше через CMMS_PASSWORD или ввод)")
	if err := a.parse(fs, args); err != nil {
		return err
	}

	if *username == "" {
		v, err := a.readLine("Логин: ")
		if err != nil {
			return err
		}
		*username = v
	}
	if *password == "" {
		*password = os.Getenv("CMMS_PASSWORD")
	}
	if *password == "" {
		v, err := a.readLine("Пароль: ")
		if err != nil {
			return err
		}
		*password = v
	}

	p, err := a.users.Login(ctx, *username, *password)
	if err != nil {
		return err
	}
	role := p.RoleDisplay
	if role == "" {
		role = p.Role.Label()
	}
	fmt.Fprintf(a.out, "Вы вошли как %s (%s)\n", p.DisplayName(), role)
	return nil
}

func (a *App) cmdLogout(ctx context.Context, args []string) error {
	fs := a.flags("logout")
	if err := a.parse(fs, args); err != nil {
		return err
	}
	if err := a.users.Logout(ctx); err != nil {
		// локальная сессия уже очищена, сообщаем только о сбое на сервере
		a.log.Warn("logout", "err", err)
	}
	fmt.Fprintln(a.out, "Вы вышли из системы")
	return nil
}

func (a *App) cmdWhoami(ctx context.Context, args []string) error {
	fs := a.flags("whoami")
	remote := fs.Bool("remote", false, "спросить сервер (auth/me)")
	if err := a.parse(fs, args); err != nil {
		return err
	}
	if !a.sess.Authenticated() {
		fmt.Fprintf(a.out, "Вход не выполнен. Войдите: cmms login (страница входа: %s)\n", a.loginURL())
		return nil
	}

	p, ok := a.sess.Profile()
	if *remote {
		me, err := a.users.Me(ctx)
		if err != nil {
			return err
		}
		p, ok = *me, true
	}
	c := render.Card{Title: "Сессия"}
	if ok {
		c.Fields = append(c.Fields,
			[2]string{"Пользователь", p.DisplayName()},
			[2]string{"Логин", p.Username},
			[2]string{"Email", p.Email},
			[2]string{"Роль", p.Role.Label()},
		)
	}
	if exp, ok := a.sess.AccessExpiry(); ok {
		left := time.Until(exp).Round(time.Second)
		state := "действует ещё " + left.String()
		if left <= 0 {
			state = "истёк, будет обновлён при следующем запросе"
		}
		c.Fields = append(c.Fields, [2]string{"Токен", exp.In(a.cfg.Location()).Format("02.01.2006 15:04") + ", " + state})
	}
	return c.Write(a.out)
}

func (a *App) cmdUsers(ctx context.Context, args []string) error {
	fs := a.flags("users")
	role := fs.String("role", "", "роль")
	if err := a.parse(fs, args); err != nil {
		return err
	}
	q := url.Values{}
	if *role != "" {
		q.Set("role", *role)
	}
	list, err := a.users.List(ctx, q)
	if err != nil {
		return err
	}
	return render.UserTable(list).Write(a.out)
}

func (a *App) cmdAudit(ctx context.Context, args []string) error {
	fs := a.flags("users audit")
	page := fs.Int("page", 1, "страница журнала")
	entity := fs.String("entity", "", "тип записи (asset, workorder...)")
	if err := a.parse(fs, args); err != nil {
		return err
	}
	q := url.Values{"page": {strconv.Itoa(*page)}, "ordering": {"-created_at"}}
	if *entity != "" {
		q.Set("entity_type", *entity)
	}
	res, err := a.users.AuditLog(ctx, q)
	if err != nil {
		return err
	}
	t := render.Table{Headers: []string{"Время", "Пользователь", "Действие", "Объект"}}
	for _, e := range res.Results {
		t.Rows = append(t.Rows, []string{e.CreatedAt, e.ActorName, e.ActionDisplay, e.EntityType + " " + e.EntityRepr})
	}
	if err := t.Write(a.out); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Всего записей: %d\n", res.Count)
	return nil
}
