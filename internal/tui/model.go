// Package tui is the bubbletea front end for the FeastFox screens. The views
// package holds all state; the model here only mirrors it into widgets and
// turns key presses into view operations.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"feastfox/internal/views"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("208"))
	subtleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	mealStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)

const (
	appTitle    = "FeastFox - The clever dinner decider app!"
	tableHeight = 12
)

// changedMsg reports that some screen state moved.
type changedMsg struct{}

// waitForChange delivers the next coordinator change as a message.
func waitForChange(ctx context.Context, ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		select {
		case <-ch:
			return changedMsg{}
		case <-ctx.Done():
			return nil
		}
	}
}

type Model struct {
	ctx   context.Context
	coord *views.Coordinator
	mock  bool

	spinner spinner.Model
	table   table.Model
	inputs  []textinput.Model
	focus   int
	// formOpen tracks whether the inputs currently hold the open form.
	formOpen bool
	status   string
}

func New(ctx context.Context, coord *views.Coordinator, mock bool) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	tbl := table.New(
		table.WithColumns([]table.Column{
			{Title: "ID", Width: 20},
			{Title: "Meal", Width: 24},
			{Title: "Cuisine", Width: 14},
			{Title: "Reason", Width: 36},
		}),
		table.WithFocused(true),
		table.WithHeight(tableHeight),
	)

	inputs := make([]textinput.Model, len(formFields))
	for i, f := range formFields {
		ti := textinput.New()
		ti.Prompt = fmt.Sprintf("%-11s", f.label+":")
		ti.Placeholder = f.placeholder
		ti.CharLimit = 120
		inputs[i] = ti
	}

	m := Model{
		ctx:     ctx,
		coord:   coord,
		mock:    mock,
		spinner: sp,
		table:   tbl,
		inputs:  inputs,
	}
	return m.sync()
}

var formFields = []struct {
	field       views.Field
	label       string
	placeholder string
}{
	{views.FieldMeal, "Meal Name", "e.g. Beef Pho"},
	{views.FieldCuisine, "Cuisine", "e.g. Vietnamese"},
	{views.FieldReason, "Reason", "why it is a good pick"},
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, waitForChange(m.ctx, m.coord.Changes()))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case changedMsg:
		m = m.sync()
		return m, waitForChange(m.ctx, m.coord.Changes())

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.table.SetWidth(msg.Width)
		if h := msg.Height - 14; h > 4 {
			m.table.SetHeight(h)
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		m.status = ""
		var cmd tea.Cmd
		switch m.coord.Active() {
		case views.DecisionScreen:
			m, cmd = m.updateDecision(msg)
		case views.MealsScreen:
			m, cmd = m.updateMeals(msg)
		}
		return m.sync(), cmd
	}
	return m, nil
}

func (m Model) updateDecision(msg tea.KeyMsg) (Model, tea.Cmd) {
	v := m.coord.Decision()
	if v == nil {
		return m, nil
	}
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "n":
		if !v.NewSuggestion(m.ctx) {
			m.status = "still deciding"
		}
	case "e":
		v.EditMeals()
	}
	return m, nil
}

func (m Model) updateMeals(msg tea.KeyMsg) (Model, tea.Cmd) {
	v := m.coord.Meals()
	if v == nil {
		return m, nil
	}
	if m.formOpen {
		return m.updateForm(v, msg)
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "a":
		v.Add()
	case "e", "enter":
		if id, ok := m.selectedID(); ok {
			if err := v.EditByID(id); err != nil {
				m.status = err.Error()
			}
		}
	case "d", "x":
		if id, ok := m.selectedID(); ok {
			v.Delete(m.ctx, id)
		}
	case "r":
		v.Load(m.ctx)
	case "b", "esc":
		v.Back()
	default:
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) updateForm(v *views.MealsView, msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		v.Cancel()
		return m, nil
	case "tab", "down":
		cmd := m.focusInput((m.focus + 1) % len(m.inputs))
		return m, cmd
	case "shift+tab", "up":
		cmd := m.focusInput((m.focus + len(m.inputs) - 1) % len(m.inputs))
		return m, cmd
	case "enter":
		for i, f := range formFields {
			if err := v.SetField(f.field, strings.TrimSpace(m.inputs[i].Value())); err != nil {
				m.status = err.Error()
				return m, nil
			}
		}
		if !v.Submit(m.ctx) {
			m.status = "already saving"
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

// focusInput moves keyboard focus to input i.
func (m *Model) focusInput(i int) tea.Cmd {
	m.inputs[m.focus].Blur()
	m.focus = i
	return m.inputs[i].Focus()
}

func (m Model) selectedID() (string, bool) {
	row := m.table.SelectedRow()
	if len(row) == 0 {
		return "", false
	}
	return row[0], true
}

// sync copies view state into the widgets. It fills the inputs when a form
// opens and clears them when it closes; while open the inputs own the text.
func (m Model) sync() Model {
	v := m.coord.Meals()
	if v == nil {
		m.closeForm()
		return m
	}

	rows := v.Rows()
	tr := make([]table.Row, 0, len(rows))
	for _, r := range rows {
		tr = append(tr, table.Row{r.ID, r.Meal, r.Cuisine, r.Reason})
	}
	m.table.SetRows(tr)
	if n := len(tr); n > 0 && m.table.Cursor() >= n {
		m.table.SetCursor(n - 1)
	}

	st := v.State()
	switch {
	case st.FormOpen && !m.formOpen:
		values := []string{st.Form.Meal, st.Form.Cuisine, st.Form.Reason}
		for i := range m.inputs {
			m.inputs[i].SetValue(values[i])
			m.inputs[i].Blur()
		}
		m.focus = 0
		m.inputs[0].Focus()
		m.formOpen = true
	case !st.FormOpen && m.formOpen:
		m.closeForm()
	}
	return m
}

func (m *Model) closeForm() {
	if !m.formOpen {
		return
	}
	for i := range m.inputs {
		m.inputs[i].Reset()
		m.inputs[i].Blur()
	}
	m.focus = 0
	m.formOpen = false
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(appTitle))
	b.WriteString("\n")
	if m.mock {
		b.WriteString(subtleStyle.Render("[Mock Mode]"))
	} else {
		b.WriteString(subtleStyle.Render("[Connected to API]"))
	}
	b.WriteString("\n\n")

	switch m.coord.Active() {
	case views.DecisionScreen:
		if v := m.coord.Decision(); v != nil {
			m.viewDecision(&b, v.State())
		}
	case views.MealsScreen:
		if v := m.coord.Meals(); v != nil {
			m.viewMeals(&b, v.State())
		}
	}

	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(m.status))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) viewDecision(b *strings.Builder, st views.DecisionState) {
	b.WriteString("What's for dinner?\n")
	b.WriteString(subtleStyle.Render("Let FeastFox decide your next meal!"))
	b.WriteString("\n\n")

	switch {
	case st.Loading:
		fmt.Fprintf(b, "  %s Thinking...\n", m.spinner.View())
	case st.Err != nil:
		b.WriteString(errorStyle.Render("  Oops! Something went wrong."))
		fmt.Fprintf(b, "\n  %s\n", errorText(st.Err))
	case st.Decision != nil:
		fmt.Fprintf(b, "  %s\n", mealStyle.Render(st.Decision.Meal))
		fmt.Fprintf(b, "  %s\n", st.Decision.Cuisine)
		fmt.Fprintf(b, "  %s\n", subtleStyle.Render(st.Decision.Reason))
	}
	b.WriteString("\n")

	suggest := "n: get new suggestion"
	if st.Loading {
		suggest = "n: deciding..."
	}
	b.WriteString(helpStyle.Render(suggest + " • e: edit meals • q: quit"))
	b.WriteString("\n")
}

func (m Model) viewMeals(b *strings.Builder, st views.MealsState) {
	b.WriteString(titleStyle.Render("Manage Meals"))
	b.WriteString("\n\n")

	switch {
	case st.Loading && len(st.Meals) == 0:
		fmt.Fprintf(b, "%s Loading meals...\n", m.spinner.View())
	case st.LoadErr != nil:
		b.WriteString(errorStyle.Render("Could not load meals: " + errorText(st.LoadErr)))
		b.WriteString("\n")
	default:
		b.WriteString(m.table.View())
		b.WriteString("\n")
		if st.Loading {
			fmt.Fprintf(b, "%s refreshing...\n", m.spinner.View())
		}
	}

	if st.ActionError != nil {
		b.WriteString(errorStyle.Render("Delete failed: " + errorText(st.ActionError)))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if !st.FormOpen {
		b.WriteString(helpStyle.Render("a: add meal • e/enter: edit • d: delete • r: reload • b: home • q: quit"))
		b.WriteString("\n")
		return
	}

	title, action := "Add New Meal", "Create"
	if st.Editing != nil {
		title, action = "Edit Meal", "Update"
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")
	for _, in := range m.inputs {
		b.WriteString("  ")
		b.WriteString(in.View())
		b.WriteString("\n")
	}
	if st.Submitting {
		fmt.Fprintf(b, "  %s Saving...\n", m.spinner.View())
	}
	if st.FormError != nil {
		b.WriteString(errorStyle.Render(fmt.Sprintf("  %s failed: %s", action, errorText(st.FormError))))
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render("tab: next field • enter: " + strings.ToLower(action) + " • esc: cancel"))
	b.WriteString("\n")
}

func errorText(err error) string {
	if errors.Is(err, context.Canceled) {
		return "cancelled"
	}
	return err.Error()
}

// Run drives the screens until the user quits or ctx is done.
func Run(ctx context.Context, coord *views.Coordinator, mock bool, opts ...tea.ProgramOption) error {
	opts = append([]tea.ProgramOption{tea.WithContext(ctx), tea.WithAltScreen()}, opts...)
	_, err := tea.NewProgram(New(ctx, coord, mock), opts...).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
