package forms

import (
	"context"
	"fmt"
)

// Gateway операции ресурса, которые нужны форме.
type Gateway[E, I any] interface {
	Get(ctx context.Context, id int64) (*E, error)
	Create(ctx context.Context, in I) (*E, error)
	Update(ctx context.Context, id int64, in I) (*E, error)
}

// Binding перевод между записью, значениями формы и телом запроса.
type Binding[E, I any] interface {
	Form() Form
	Values(e E) Values
	// Input собирает тело запроса; edit сообщает, что запись редактируется.
	Input(v Values, edit bool) (I, error)
}

// Controller панель создания и редактирования одной записи.
type Controller[E, I any] struct {
	gw     Gateway[E, I]
	bind   Binding[E, I]
	id     int64
	values Values
}

func NewController[E, I any](gw Gateway[E, I], bind Binding[E, I]) *Controller[E, I] {
	return &Controller[E, I]{gw: gw, bind: bind}
}

// Open id = 0 открывает пустую форму со значениями по умолчанию, иначе заполняет её из записи.
func (c *Controller[E, I]) Open(ctx context.Context, id int64) error {
	c.id = id
	if id == 0 {
		c.values = c.bind.Form().Defaults()
		return nil
	}
	e, err := c.gw.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("load record %d: %w", id, err)
	}
	c.values = c.bind.Values(*e)
	return nil
}

func (c *Controller[E, I]) Editing() bool { return c.id != 0 }
func (c *Controller[E, I]) ID() int64     { return c.id }
func (c *Controller[E, I]) Form() Form    { return c.bind.Form() }

// Values копия текущих значений.
func (c *Controller[E, I]) Values() Values { return c.values.Clone() }

// Set меняет значение поля. Поля только для чтения менять нельзя.
func (c *Controller[E, I]) Set(name, value string) error {
	if c.values == nil {
		return fmt.Errorf("form is not open")
	}
	fl, ok := c.bind.Form().Field(name)
	if !ok {
		return fmt.Errorf("unknown field %q", name)
	}
	if fl.ReadOnly {
		return fmt.Errorf("field %q is read-only", name)
	}
	c.values[name] = value
	return nil
}

// SetAll применяет набор значений, например из флагов командной строки.
func (c *Controller[E, I]) SetAll(v Values) error {
	for k, x := range v {
		if err := c.Set(k, x); err != nil {
			return err
		}
	}
	return nil
}

// Submit проверяет форму и сохраняет запись. При ошибке проверки сервер не вызывается.
func (c *Controller[E, I]) Submit(ctx context.Context) (*E, error) {
	if c.values == nil {
		return nil, fmt.Errorf("form is not open")
	}
	if err := c.bind.Form().Validate(c.values); err != nil {
		return nil, err
	}
	in, err := c.bind.Input(c.values, c.Editing())
	if err != nil {
		return nil, err
	}
	if c.Editing() {
		return c.gw.Update(ctx, c.id, in)
	}
	return c.gw.Create(ctx, in)
}
