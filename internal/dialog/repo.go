package dialog

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/Spok95/cmms-console/internal/listview"
	"github.com/Spok95/cmms-console/internal/session"
)

const keyPrefix = "list:"

// Repo состояние списков в хранилище сессии. Выход из сессии очищает и его.
type Repo struct {
	store session.Store
}

func NewRepo(store session.Store) *Repo { return &Repo{store: store} }

func key(s Screen) string { return keyPrefix + string(s) }

func (r *Repo) Get(ctx context.Context, screen Screen) (*Item, error) {
	raw, err := r.store.Get(ctx, key(screen))
	if errors.Is(err, session.ErrNotFound) {
		return &Item{Screen: screen, List: defaultState()}, nil
	}
	if err != nil {
		return nil, err
	}
	var it Item
	if err := json.Unmarshal([]byte(raw), &it); err != nil {
		// битое состояние не мешает открыть список с начала
		return &Item{Screen: screen, List: defaultState()}, nil
	}
	it.Screen = screen
	return &it, nil
}

func (r *Repo) Set(ctx context.Context, screen Screen, st listview.State) error {
	raw, err := json.Marshal(Item{Screen: screen, List: st, UpdatedAt: time.Now().UTC()})
	if err != nil {
		return err
	}
	return r.store.Set(ctx, key(screen), string(raw))
}

func (r *Repo) Reset(ctx context.Context, screen Screen) error {
	return r.store.Delete(ctx, key(screen))
}

func defaultState() listview.State { return listview.State{Page: 1} }
