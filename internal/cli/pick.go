package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/vburojevic/azsam/internal/domain"
	"github.com/vburojevic/azsam/internal/sampler"
)

// PickCmd interactively selects subscriptions and applies the sampling
// percentage to them
type PickCmd struct {
	Percentage int      `short:"p" default:"${config_percentage}" help:"Target sampling percentage (0-100)"`
	Tenant     []string `help:"Only offer subscriptions from these tenants by id or domain (repeatable)"`
	DryRun     bool     `short:"n" help:"Report intended changes without applying them"`
	Output     string   `short:"o" help:"Write the run's NDJSON events to this file"`
	RunLog     bool     `help:"Record the run's NDJSON events under the runs directory"`
}

// pickItem implements list.Item for the picker
type pickItem struct {
	sub     domain.Subscription
	checked bool
}

func (i pickItem) Title() string {
	box := "[ ]"
	if i.checked {
		box = "[x]"
	}
	return box + " " + i.sub.Name
}

func (i pickItem) Description() string { return i.sub.ID + " • " + i.sub.TenantDomain }
func (i pickItem) FilterValue() string { return i.sub.Name + " " + i.sub.ID }

// pickModel is the bubbletea model for the picker
type pickModel struct {
	list      list.Model
	confirmed bool
	quitting  bool
	canceled  bool
}

func (m pickModel) Init() tea.Cmd {
	return nil
}

func (m pickModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// While a filter is being typed every key belongs to the
		// filter input
		if m.list.SettingFilter() {
			break
		}
		switch msg.String() {
		case " ":
			if item, ok := m.list.SelectedItem().(pickItem); ok {
				item.checked = !item.checked
				return m, m.list.SetItem(m.list.GlobalIndex(), item)
			}
		case "a":
			return m, m.toggleAll()
		case "enter":
			m.confirmed = true
			m.quitting = true
			return m, tea.Quit
		case "q", "esc", "ctrl+c":
			m.canceled = true
			m.quitting = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.list.SetWidth(msg.Width)
		m.list.SetHeight(msg.Height - 2)
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// toggleAll checks every item, or unchecks every item when all are already
// checked
func (m *pickModel) toggleAll() tea.Cmd {
	items := m.list.Items()
	allChecked := len(items) > 0
	for _, it := range items {
		if item, ok := it.(pickItem); ok && !item.checked {
			allChecked = false
			break
		}
	}

	var cmds []tea.Cmd
	for i, it := range items {
		item, ok := it.(pickItem)
		if !ok {
			continue
		}
		item.checked = !allChecked
		cmds = append(cmds, m.list.SetItem(i, item))
	}
	return tea.Batch(cmds...)
}

func (m pickModel) View() string {
	if m.quitting {
		return ""
	}
	return m.list.View()
}

// selection returns the checked subscriptions, falling back to the item
// under the cursor when nothing was checked before enter
func (m pickModel) selection() []domain.Subscription {
	var subs []domain.Subscription
	for _, it := range m.list.Items() {
		if item, ok := it.(pickItem); ok && item.checked {
			subs = append(subs, item.sub)
		}
	}
	if len(subs) == 0 {
		if item, ok := m.list.SelectedItem().(pickItem); ok {
			subs = append(subs, item.sub)
		}
	}
	return subs
}

// Run executes the pick command
func (c *PickCmd) Run(globals *Globals) error {
	if c.Percentage < 0 || c.Percentage > 100 {
		return c.outputError(globals, "INVALID_PERCENTAGE",
			fmt.Sprintf("percentage must be between 0 and 100, got %d", c.Percentage))
	}

	// Require interactive terminal
	if !isatty.IsTerminal(os.Stdin.Fd()) && !isatty.IsCygwinTerminal(os.Stdin.Fd()) {
		return c.outputError(globals, "NOT_INTERACTIVE",
			"azsam pick requires an interactive terminal. "+
				"Use 'azsam apply --include' for scripting.")
	}

	ctx := context.Background()

	subs, err := discoverSorted(ctx, globals, c.Tenant)
	if err != nil {
		return runError(globals, err)
	}
	if len(subs) == 0 {
		return c.outputError(globals, "NO_SUBSCRIPTIONS", "no subscriptions to pick from")
	}

	items := make([]list.Item, 0, len(subs))
	for _, sub := range subs {
		items = append(items, pickItem{sub: sub})
	}

	selection, err := c.runPicker(items)
	if err != nil {
		return err
	}

	api, err := globals.management()
	if err != nil {
		return c.outputError(globals, "INVALID_AUTH_MODE", err.Error())
	}

	rep, cleanup, err := buildReporter(globals, c.Output, c.RunLog, "pick")
	if err != nil {
		return c.outputError(globals, "RUN_LOG_ERROR", err.Error())
	}
	defer cleanup()

	runner := sampler.NewRunner(api, rep, globals.Log)
	_, err = runner.RunTargets(ctx, selection, sampler.Params{
		Target: float64(c.Percentage),
		DryRun: c.DryRun,
	})
	if err != nil {
		return runError(globals, err)
	}
	return nil
}

func (c *PickCmd) runPicker(items []list.Item) ([]domain.Subscription, error) {
	// Configure list delegate with styles
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(lipgloss.Color("39")).
		Foreground(lipgloss.Color("39")).
		Padding(0, 0, 0, 1)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedTitle.Foreground(lipgloss.Color("241"))

	// Create list
	l := list.New(items, delegate, 0, 0)
	l.Title = "Select subscriptions"
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = lipgloss.NewStyle().
		Background(lipgloss.Color("39")).
		Foreground(lipgloss.Color("0")).
		Padding(0, 1)
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{
			key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle")),
			key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "toggle all")),
			key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "apply")),
		}
	}

	// Create and run the model
	m := pickModel{list: l}
	p := tea.NewProgram(m, tea.WithAltScreen())

	finalModel, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("picker error: %w", err)
	}

	result := finalModel.(pickModel)
	if result.canceled {
		return nil, errors.New("selection canceled")
	}

	return result.selection(), nil
}

func (c *PickCmd) outputError(globals *Globals, code, message string, hint ...string) error {
	return outputErrorCommon(globals, code, message, hint...)
}
