// Package ui renders the session controller's state in the terminal and
// turns key presses into controller intents. It owns no session state.
package ui

import (
	"github.com/iksnae/openup-cli/internal"
	"github.com/iksnae/openup-cli/internal/session"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type profileField int

const (
	fieldName profileField = iota
	fieldContext
)

// Model is the bubbletea model wrapping a session.Controller
type Model struct {
	ctrl    *session.Controller
	bootCmd tea.Cmd

	draft   textarea.Model
	name    textinput.Model
	context textarea.Model
	focus   profileField
	spinner spinner.Model

	width    int
	quitting bool
}

// New builds the model. bootCmd is the command returned by Controller.Boot.
func New(ctrl *session.Controller, bootCmd tea.Cmd) Model {
	draft := textarea.New()
	draft.Placeholder = "Type your thoughts here..."
	draft.ShowLineNumbers = false
	draft.SetHeight(6)
	draft.SetWidth(72)

	name := textinput.New()
	name.Placeholder = "e.g. Alex Chen"
	name.CharLimit = 80

	ctx := textarea.New()
	ctx.ShowLineNumbers = false
	ctx.SetHeight(4)
	ctx.SetWidth(72)

	m := Model{
		ctrl:    ctrl,
		bootCmd: bootCmd,
		draft:   draft,
		name:    name,
		context: ctx,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
	m.syncFocus()
	return m
}

// Init starts the boot sequence, the spinner and the cursor blink
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.bootCmd, m.spinner.Tick, textarea.Blink)
}

// Update routes results to the controller and key presses to intents
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	if cmd := m.ctrl.Update(msg); cmd != nil {
		cmds = append(cmds, cmd)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		if w := msg.Width - 4; w > 20 {
			m.draft.SetWidth(w)
			m.context.SetWidth(w)
		}
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
		var cmd tea.Cmd
		m, cmd = m.handleKey(msg)
		cmds = append(cmds, cmd)
	default:
		// cursor blinks and other widget-internal messages
		var cmd tea.Cmd
		m, cmd = m.updateFocused(msg)
		cmds = append(cmds, cmd)
	}

	// The controller clears the draft after a successful submission
	if draft := m.ctrl.State().Draft; draft != m.draft.Value() {
		m.draft.SetValue(draft)
	}
	m.syncFocus()
	return m, tea.Batch(cmds...)
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch m.ctrl.View() {
	case session.ViewWelcome:
		return m.handleWelcomeKey(msg)
	case session.ViewOnboarding:
		return m.handleOnboardingKey(msg)
	default:
		return m.handleDashboardKey(msg)
	}
}

func (m Model) handleWelcomeKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter", " ":
		m.ctrl.Start()
		m.name.SetValue("")
		m.context.SetValue("")
		m.focus = fieldName
	case "q":
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) handleOnboardingKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	ob := m.ctrl.Onboarding()
	if ob == nil {
		return m, nil
	}

	if ob.Step() == session.StepRoleSelect {
		switch msg.String() {
		case "1", "e":
			_ = ob.SelectRole(internal.RoleMentee)
		case "2", "o":
			_ = ob.SelectRole(internal.RoleMentor)
		}
		m.context.Placeholder = ob.ContextPlaceholder()
		return m, nil
	}

	switch msg.String() {
	case "esc":
		ob.Back()
		return m, nil
	case "tab", "shift+tab":
		if m.focus == fieldName {
			m.focus = fieldContext
		} else {
			m.focus = fieldName
		}
		return m, nil
	case "ctrl+s":
		cmd, err := m.ctrl.CompleteOnboarding()
		if err != nil {
			// the complete control is disabled until the form is valid
			internal.LogDebug("Onboarding not complete: %v", err)
			return m, nil
		}
		return m, cmd
	case "enter":
		if m.focus == fieldName {
			m.focus = fieldContext
			return m, nil
		}
	}

	var cmd tea.Cmd
	if m.focus == fieldName {
		m.name, cmd = m.name.Update(msg)
		ob.SetName(m.name.Value())
	} else {
		m.context, cmd = m.context.Update(msg)
		ob.SetContext(m.context.Value())
	}
	return m, cmd
}

func (m Model) handleDashboardKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "tab":
		m.ctrl.ToggleMode()
		return m, nil
	case "ctrl+s":
		return m, m.ctrl.Submit()
	case "ctrl+l":
		m.ctrl.Logout()
		m.draft.SetValue("")
		return m, nil
	case "ctrl+r":
		return m, m.ctrl.RefreshGraph()
	}

	if m.ctrl.View() != session.ViewDashboardInput {
		return m, nil
	}
	var cmd tea.Cmd
	m.draft, cmd = m.draft.Update(msg)
	m.ctrl.SetDraft(m.draft.Value())
	return m, cmd
}

// updateFocused hands msg to whichever input widget currently has focus
func (m Model) updateFocused(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.ctrl.View() {
	case session.ViewOnboarding:
		if ob := m.ctrl.Onboarding(); ob == nil || ob.Step() != session.StepProfileEntry {
			return m, nil
		}
		if m.focus == fieldName {
			m.name, cmd = m.name.Update(msg)
		} else {
			m.context, cmd = m.context.Update(msg)
		}
	case session.ViewDashboardInput:
		m.draft, cmd = m.draft.Update(msg)
	}
	return m, cmd
}

// syncFocus keeps exactly one widget focused for the current view
func (m *Model) syncFocus() {
	m.draft.Blur()
	m.name.Blur()
	m.context.Blur()

	switch m.ctrl.View() {
	case session.ViewOnboarding:
		if ob := m.ctrl.Onboarding(); ob != nil && ob.Step() == session.StepProfileEntry {
			if m.focus == fieldName {
				m.name.Focus()
			} else {
				m.context.Focus()
			}
		}
	case session.ViewDashboardInput:
		m.draft.Focus()
	}
}
