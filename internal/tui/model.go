// Package tui renders the menu in the terminal with bubbletea.
package tui

import (
	"context"
	"fmt"
	"strings"

	"menuboard/internal/loader"
	"menuboard/internal/menu"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Controller is the part of the load machine the terminal drives.
type Controller interface {
	Activate(ctx context.Context) bool
	Retry(ctx context.Context) bool
	Subscribe() (<-chan loader.State, func())
}

// Model defines the application state
type Model struct {
	ctrl        Controller
	updates     <-chan loader.State
	unsubscribe func()

	spinner  spinner.Model
	viewport viewport.Model
	ready    bool

	state loader.State
	view  menu.ViewModel
	title string
}

// stateMsg carries one machine transition into Update.
type stateMsg struct {
	state loader.State
}

// New subscribes to ctrl and returns the initial model.
func New(ctrl Controller) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	updates, unsubscribe := ctrl.Subscribe()
	return Model{
		ctrl:        ctrl,
		updates:     updates,
		unsubscribe: unsubscribe,
		spinner:     s,
		view:        menu.Loading(),
		title:       "Menu",
	}
}

// Init starts the first fetch cycle and begins listening for transitions.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, activate(m.ctrl), waitForState(m.updates))
}

func activate(ctrl Controller) tea.Cmd {
	return func() tea.Msg {
		ctrl.Activate(context.Background())
		return nil
	}
}

func retry(ctrl Controller) tea.Cmd {
	return func() tea.Msg {
		ctrl.Retry(context.Background())
		return nil
	}
}

func waitForState(updates <-chan loader.State) tea.Cmd {
	return func() tea.Msg {
		state, ok := <-updates
		if !ok {
			return nil
		}
		return stateMsg{state: state}
	}
}

// Update handles UI updates
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.unsubscribe()
			return m, tea.Quit
		case "r":
			if m.state.Phase == loader.PhaseError {
				return m, retry(m.ctrl)
			}
		}
	case tea.WindowSizeMsg:
		height := msg.Height - 4
		if !m.ready {
			m.viewport = viewport.New(msg.Width-4, height)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width - 4
			m.viewport.Height = height
		}
		m.viewport.SetContent(renderMenu(m.view))
		return m, nil
	case stateMsg:
		m.state = msg.state
		m.view = msg.state.ViewModel()
		m.title = restaurantName(m.view)
		if m.ready {
			m.viewport.SetContent(renderMenu(m.view))
			m.viewport.GotoTop()
		}
		return m, waitForState(m.updates)
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	if m.ready {
		m.viewport, cmd = m.viewport.Update(msg)
	}
	return m, cmd
}

// View renders the UI
func (m Model) View() string {
	header := titleStyle.Render(m.title) + "\n\n"

	switch m.view.Status {
	case menu.StatusError:
		body := errorStyle.Render(m.view.Message) + "\n\n"
		body += "Press 'r' to try again, 'q' to quit\n"
		return docStyle.Render(header + body)
	case menu.StatusReady:
		if !m.ready {
			return docStyle.Render(header + renderMenu(m.view))
		}
		footer := mutedStyle.Render(fmt.Sprintf("%d items · ↑/↓ to scroll · q to quit", m.view.ItemCount()))
		return docStyle.Render(header + m.viewport.View() + "\n" + footer)
	default:
		return docStyle.Render(header + m.spinner.View() + " Loading menu...\n")
	}
}

func restaurantName(vm menu.ViewModel) string {
	var info struct {
		Name string `json:"name"`
	}
	if vm.Info.IsZero() || vm.Info.Decode(&info) != nil || info.Name == "" {
		return "Menu"
	}
	return info.Name
}

// renderMenu lays out every section as plain styled text.
func renderMenu(vm menu.ViewModel) string {
	if vm.Status != menu.StatusReady {
		return ""
	}
	if len(vm.Sections) == 0 {
		return mutedStyle.Render("No menu items available.")
	}

	var b strings.Builder
	for _, section := range vm.Sections {
		b.WriteString(sectionStyle.Render(section.Label))
		b.WriteString("\n")
		for _, item := range section.Items {
			b.WriteString(renderItem(item))
		}
	}
	return b.String()
}

func renderItem(item menu.ItemView) string {
	var b strings.Builder

	b.WriteString("  " + item.Name)
	if item.SpiceMarker != "" {
		b.WriteString(" " + item.SpiceMarker)
	}
	b.WriteString("  " + priceStyle.Render(item.PriceLabel))
	if item.AvailabilityBadge != "" {
		b.WriteString("  " + badgeStyle.Render(item.AvailabilityBadge))
	}
	b.WriteString("\n")

	if item.Description != "" {
		b.WriteString("    " + mutedStyle.Render(item.Description) + "\n")
	}

	details := item.PrepTimeLabel
	if len(item.IngredientsShown) > 0 {
		details += " · " + strings.Join(item.IngredientsShown, ", ")
	}
	if item.MoreLabel != "" {
		details += " " + item.MoreLabel
	}
	b.WriteString("    " + mutedStyle.Render(details) + "\n")

	return b.String()
}
