// Package tui is the interactive terminal table browser. It drives a
// listview.View from the keyboard so search, sort and paging behave exactly
// as they do over HTTP.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/crucial707/mineops/internal/listview"
)

// Column is one table column. Field is the schema sort key toggled by the
// column's number key; empty means the column cannot be sorted.
type Column[T any] struct {
	Title string
	Field string
	Width int
	Value func(T) string
}

// Loader fetches the full record list the browser works over.
type Loader[T any] func(ctx context.Context) ([]T, error)

// Filter is a named exact-match filter the f key cycles through.
type Filter[T any] struct {
	Label string
	Match func(T) bool
}

// Filters derives the available filters from the loaded records.
type Filters[T any] func(items []T) []Filter[T]

// loadedMsg carries the generation of the fetch that produced it.
type loadedMsg[T any] struct {
	gen   uint64
	items []T
	err   error
}

const pageSizeStep = 5

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	infoStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	helpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// Browser is a bubbletea model over one record type.
type Browser[T any] struct {
	title   string
	view    *listview.View[T]
	columns []Column[T]
	load    Loader[T]

	filters Filters[T]
	// filter indexes the active entry of filters; -1 is none.
	filter int

	items   []T
	page    listview.Page[T]
	loading bool
	err     error
	// issued counts fetches started; applied is the newest one shown.
	issued  uint64
	applied uint64

	table     table.Model
	search    textinput.Model
	searching bool
}

func New[T any](title string, schema listview.Schema[T], columns []Column[T], load Loader[T]) *Browser[T] {
	ti := textinput.New()
	ti.Placeholder = "search"
	ti.Prompt = "/ "
	ti.CharLimit = 64

	b := &Browser[T]{
		title:   title,
		view:    listview.NewView(schema),
		columns: columns,
		load:    load,
		filter:  -1,
		loading: true,
		search:  ti,
		table: table.New(
			table.WithFocused(true),
			table.WithHeight(12),
		),
	}
	b.refresh()
	return b
}

// WithFilters enables the f key.
func (b *Browser[T]) WithFilters(f Filters[T]) *Browser[T] {
	b.filters = f
	return b
}

func (b *Browser[T]) Init() tea.Cmd { return b.fetch() }

func (b *Browser[T]) fetch() tea.Cmd {
	b.issued++
	gen, load := b.issued, b.load
	return func() tea.Msg {
		items, err := load(context.Background())
		return loadedMsg[T]{gen: gen, items: items, err: err}
	}
}

// nextFilter steps to the next named filter, wrapping back to none.
func (b *Browser[T]) nextFilter() {
	if b.filters == nil {
		return
	}
	set := b.filters(b.items)
	b.filter++
	if b.filter >= len(set) {
		b.filter = -1
		b.view.ClearMatch()
		return
	}
	f := set[b.filter]
	b.view.SetMatch(f.Label, f.Match)
}

func (b *Browser[T]) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg[T]:
		if msg.gen < b.applied {
			return b, nil
		}
		b.applied = msg.gen
		b.loading = msg.gen < b.issued
		// A failed reload keeps the rows already on screen.
		b.err = msg.err
		if msg.err == nil {
			b.items = msg.items
		}
		b.refresh()
		return b, nil

	case tea.WindowSizeMsg:
		if h := msg.Height - 8; h > 3 {
			b.table.SetHeight(h)
		}
		return b, nil

	case tea.KeyMsg:
		if b.searching {
			return b.updateSearch(msg)
		}
		switch key := msg.String(); key {
		case "q", "ctrl+c":
			return b, tea.Quit
		case "/":
			b.searching = true
			return b, b.search.Focus()
		case "right", "n":
			b.view.Next()
			b.refresh()
			return b, nil
		case "left", "p":
			b.view.Prev()
			b.refresh()
			return b, nil
		case "+":
			b.view.SetPageSize(b.view.Query().Size + pageSizeStep)
			b.refresh()
			return b, nil
		case "-":
			if size := b.view.Query().Size - pageSizeStep; size > 0 {
				b.view.SetPageSize(size)
				b.refresh()
			}
			return b, nil
		case "f":
			b.nextFilter()
			b.refresh()
			return b, nil
		case "c":
			b.search.SetValue("")
			b.filter = -1
			b.view.Clear()
			b.refresh()
			return b, nil
		case "r":
			b.loading = true
			return b, b.fetch()
		case "1", "2", "3", "4", "5", "6", "7", "8", "9":
			if i := int(key[0] - '1'); i < len(b.columns) && b.view.Toggle(b.columns[i].Field) {
				b.refresh()
			}
			return b, nil
		}
	}

	var cmd tea.Cmd
	b.table, cmd = b.table.Update(msg)
	return b, cmd
}

func (b *Browser[T]) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter, tea.KeyEsc:
		b.searching = false
		b.search.Blur()
		return b, nil
	case tea.KeyCtrlC:
		return b, tea.Quit
	}
	var cmd tea.Cmd
	b.search, cmd = b.search.Update(msg)
	if b.search.Value() != b.view.Query().Search {
		b.view.SetQuery(b.search.Value())
		b.refresh()
	}
	return b, cmd
}

// refresh reruns the pipeline and rebuilds the table rows.
func (b *Browser[T]) refresh() {
	b.page = b.view.Apply(b.items)
	q := b.view.Query()

	cols := make([]table.Column, len(b.columns))
	for i, c := range b.columns {
		title := fmt.Sprintf("%d %s", i+1, c.Title)
		if c.Field != "" && c.Field == q.SortField {
			if q.Dir == listview.Desc {
				title += " v"
			} else {
				title += " ^"
			}
		}
		cols[i] = table.Column{Title: title, Width: max(c.Width, len(title))}
	}

	rows := make([]table.Row, len(b.page.Items))
	for i, item := range b.page.Items {
		row := make(table.Row, len(b.columns))
		for j, c := range b.columns {
			row[j] = c.Value(item)
		}
		rows[i] = row
	}

	b.table.SetRows(nil)
	b.table.SetColumns(cols)
	b.table.SetRows(rows)
	b.table.SetCursor(0)
}

func (b *Browser[T]) View() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render(b.title))
	sb.WriteString("\n")

	if b.searching || b.search.Value() != "" {
		sb.WriteString(b.search.View())
		sb.WriteString("\n")
	}
	if label := b.view.MatchLabel(); label != "" {
		sb.WriteString(infoStyle.Render("filter: " + label))
		sb.WriteString("\n")
	}

	switch {
	case b.loading && len(b.items) == 0:
		sb.WriteString(infoStyle.Render("Loading..."))
		sb.WriteString("\n")
	case b.page.TotalItems == 0:
		sb.WriteString(infoStyle.Render("No items."))
		sb.WriteString("\n")
	default:
		sb.WriteString(b.table.View())
		sb.WriteString("\n")
	}

	sb.WriteString(infoStyle.Render(b.status()))
	sb.WriteString("\n")
	if b.err != nil {
		sb.WriteString(errStyle.Render("reload failed: " + b.err.Error()))
		sb.WriteString("\n")
	}
	sb.WriteString(helpStyle.Render("/ search  1-9 sort  n/p page  +/- size  f filter  c clear  r reload  q quit"))
	return sb.String()
}

func (b *Browser[T]) status() string {
	pages := max(b.page.TotalPages, 1)
	return fmt.Sprintf("page %d of %d  %d items  %d per page", b.page.Page, pages, b.page.TotalItems, b.page.PageSize)
}

// Page is the page currently on screen.
func (b *Browser[T]) Page() listview.Page[T] { return b.page }

// Run starts a full-screen program and blocks until the operator quits.
func Run[T any](b *Browser[T]) error {
	_, err := tea.NewProgram(b, tea.WithAltScreen()).Run()
	return err
}
