package listview

import "fmt"

const (
	DefaultPageSize = 50
	// WindowSize сколько номеров страниц показывать в переключателе.
	WindowSize = 7
)

// Engine состояние списка: снимок с сервера, отфильтрованное представление и текущая страница.
type Engine[T any] struct {
	schema   Schema[T]
	snapshot []T
	view     []T
	criteria Criteria
	page     int
	pageSize int
	all      bool
}

func New[T any](schema Schema[T], pageSize int) *Engine[T] {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Engine[T]{schema: schema, page: 1, pageSize: pageSize, view: []T{}}
}

// Load заменяет снимок и заново применяет текущие условия.
func (e *Engine[T]) Load(rows []T) {
	e.snapshot = rows
	e.view = Filter(e.snapshot, e.schema, e.criteria)
	e.page = 1
}

// Apply фильтрует всегда исходный снимок, поэтому условия не накапливаются между вызовами.
func (e *Engine[T]) Apply(c Criteria) error {
	if err := e.schema.Check(c); err != nil {
		return err
	}
	e.criteria = c
	e.view = Filter(e.snapshot, e.schema, c)
	e.page = 1
	return nil
}

// Reset снимает все условия.
func (e *Engine[T]) Reset() {
	e.criteria = Criteria{}
	e.view = Filter(e.snapshot, e.schema, e.criteria)
	e.page = 1
}

func (e *Engine[T]) SetPageSize(n int) error {
	if n <= 0 {
		return fmt.Errorf("page size must be > 0")
	}
	e.pageSize = n
	e.all = false
	e.page = 1
	return nil
}

// ShowAll размер страницы равен числу отфильтрованных строк.
func (e *Engine[T]) ShowAll() {
	e.all = true
	e.page = 1
}

func (e *Engine[T]) Criteria() Criteria { return e.criteria }
func (e *Engine[T]) Page() int          { return e.page }
func (e *Engine[T]) Total() int         { return len(e.view) }
func (e *Engine[T]) Snapshot() []T      { return e.snapshot }

// Filtered всё отфильтрованное представление (для выгрузки).
func (e *Engine[T]) Filtered() []T { return e.view }

// PageSize действующий размер страницы.
func (e *Engine[T]) PageSize() int {
	if e.all {
		return len(e.view)
	}
	return e.pageSize
}

func (e *Engine[T]) TotalPages() int {
	size := e.PageSize()
	if len(e.view) == 0 || size == 0 {
		return 1
	}
	return (len(e.view) + size - 1) / size
}

// GoTo номер вне [1, TotalPages] ничего не меняет.
func (e *Engine[T]) GoTo(p int) bool {
	if p < 1 || p > e.TotalPages() {
		return false
	}
	e.page = p
	return true
}

func (e *Engine[T]) Next() bool  { return e.GoTo(e.page + 1) }
func (e *Engine[T]) Prev() bool  { return e.GoTo(e.page - 1) }
func (e *Engine[T]) First() bool { return e.GoTo(1) }
func (e *Engine[T]) Last() bool  { return e.GoTo(e.TotalPages()) }

// Distinct значения поля из полного снимка.
func (e *Engine[T]) Distinct(field string) ([]string, error) {
	f, ok := e.schema.Fields[field]
	if !ok {
		return nil, fmt.Errorf("unknown filter field %q", field)
	}
	return Distinct(e.snapshot, f), nil
}

// View модель текущей страницы для слоя отображения.
type View[T any] struct {
	Rows       []T
	Page       int
	PageSize   int
	TotalPages int
	Total      int
	// Start и End номера первой и последней строки страницы с 1; 0 для пустого списка.
	Start   int
	End     int
	Buttons []int
	HasPrev bool
	HasNext bool
	All     bool
}

func (e *Engine[T]) View() View[T] {
	total := len(e.view)
	size := e.PageSize()
	pages := e.TotalPages()
	v := View[T]{
		Page:       e.page,
		PageSize:   size,
		TotalPages: pages,
		Total:      total,
		Buttons:    Window(e.page, pages, WindowSize),
		HasPrev:    e.page > 1,
		HasNext:    e.page < pages,
		All:        e.all,
		Rows:       []T{},
	}
	if total == 0 {
		return v
	}
	lo := (e.page - 1) * size
	hi := min(lo+size, total)
	v.Rows = e.view[lo:hi]
	v.Start = lo + 1
	v.End = hi
	return v
}

// Window номера страниц вокруг текущей, не больше width, прижатые к границам.
func Window(current, total, width int) []int {
	if total < 1 || width < 1 {
		return nil
	}
	start := max(1, current-width/2)
	end := min(total, start+width-1)
	if end-start < width-1 {
		start = max(1, end-width+1)
	}
	out := make([]int, 0, end-start+1)
	for p := start; p <= end; p++ {
		out = append(out, p)
	}
	return out
}

// State сохраняемое между запусками состояние списка.
type State struct {
	Criteria Criteria `json:"criteria"`
	Page     int      `json:"page"`
	PageSize int      `json:"page_size"`
	All      bool     `json:"all,omitempty"`
}

func (e *Engine[T]) State() State {
	return State{Criteria: e.criteria, Page: e.page, PageSize: e.pageSize, All: e.all}
}

// Restore применяет сохранённое состояние к уже загруженному снимку.
// Страница, которой больше нет, остаётся первой.
func (e *Engine[T]) Restore(st State) error {
	if st.PageSize > 0 {
		e.pageSize = st.PageSize
	}
	e.all = st.All
	if err := e.Apply(st.Criteria); err != nil {
		return err
	}
	e.GoTo(st.Page)
	return nil
}
