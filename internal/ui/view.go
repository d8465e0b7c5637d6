package ui

import (
	"fmt"
	"strings"

	"github.com/iksnae/openup-cli/internal"
	"github.com/iksnae/openup-cli/internal/session"

	"github.com/charmbracelet/lipgloss"
)

// View renders the screen for the controller's current view state
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	switch m.ctrl.View() {
	case session.ViewWelcome:
		return m.viewWelcome()
	case session.ViewOnboarding:
		return m.viewOnboarding()
	default:
		return m.viewDashboard()
	}
}

func (m Model) viewWelcome() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("OpenUp.AI"))
	b.WriteString("\n\n")
	b.WriteString("Find the right mentor, or the right mentee, from how you actually talk about your work.\n")
	b.WriteString(subtleStyle.Render("Share sessions, build your digital twin, get ranked matches."))
	b.WriteString("\n\n")
	b.WriteString(accentStyle.Render("enter") + " get started  " + subtleStyle.Render("q quit"))
	b.WriteString("\n")
	return b.String()
}

func (m Model) viewOnboarding() string {
	ob := m.ctrl.Onboarding()
	if ob == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(renderProgress(ob))
	b.WriteString("\n\n")

	if ob.Step() == session.StepRoleSelect {
		b.WriteString(titleStyle.Render("Choose your path"))
		b.WriteString("\n")
		b.WriteString(subtleStyle.Render("How would you like to participate in OpenUp.AI?"))
		b.WriteString("\n\n")
		mentee := cardStyle.Render(accentStyle.Render("1  I'm a Mentee") + "\n" +
			subtleStyle.Render("Looking for guidance, career advice, and skill development."))
		mentor := cardStyle.Render(accentStyle.Render("2  I'm a Mentor") + "\n" +
			subtleStyle.Render("Ready to share experience, provide insights, and help others grow."))
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, mentee, " ", mentor))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(titleStyle.Render("Tell us about yourself"))
	b.WriteString("\n")
	b.WriteString(subtleStyle.Render("Help us build your digital twin."))
	b.WriteString("\n\n")
	b.WriteString("Display Name\n")
	b.WriteString(m.name.View())
	b.WriteString("\n\n")
	b.WriteString(ob.ContextPrompt() + "\n")
	b.WriteString(m.context.View())
	b.WriteString("\n\n")

	complete := "ctrl+s complete setup"
	if ob.CanComplete() {
		complete = accentStyle.Render(complete)
	} else {
		complete = disabledStyle.Render(complete)
	}
	b.WriteString(subtleStyle.Render("esc back  tab switch field  ") + complete)
	b.WriteString("\n")
	return b.String()
}

func renderProgress(ob *session.Onboarding) string {
	const width = 40
	filled := int(ob.Progress() * width)
	bar := accentStyle.Render(strings.Repeat("━", filled)) + subtleStyle.Render(strings.Repeat("─", width-filled))

	labels := make([]string, 0, 2)
	for _, step := range []session.OnboardingStep{session.StepRoleSelect, session.StepProfileEntry} {
		if ob.Step() >= step {
			labels = append(labels, accentStyle.Render(step.Label()))
		} else {
			labels = append(labels, subtleStyle.Render(step.Label()))
		}
	}
	return strings.Join(labels, "  ") + "\n" + bar
}

func (m Model) viewDashboard() string {
	st := m.ctrl.State()
	var b strings.Builder

	b.WriteString(m.renderHeader(st))
	b.WriteString("\n\n")

	if st.Status != "" {
		b.WriteString(statusStyle.Render(st.Status))
		b.WriteString("\n\n")
	}

	if st.View == session.ViewDashboardGraph {
		b.WriteString(renderGraph(st))
	} else {
		b.WriteString(m.renderInput(st))
	}

	b.WriteString("\n")
	b.WriteString(subtleStyle.Render("tab switch view  ctrl+s submit  ctrl+r refresh graph  ctrl+l logout  ctrl+c quit"))
	b.WriteString("\n")
	return b.String()
}

func (m Model) renderHeader(st session.State) string {
	input, graph := tabStyle, tabStyle
	if st.View == session.ViewDashboardInput {
		input = activeTabStyle
	} else {
		graph = activeTabStyle
	}
	tabs := input.Render("New Session") + " " + graph.Render("Network")

	who := ""
	if st.Identity != nil {
		who = fmt.Sprintf("%s (%s)", st.Identity.Name, st.Identity.Role)
	}
	return titleStyle.Render("OpenUp.AI") + "  " + tabs + "  " + subtleStyle.Render(who)
}

func (m Model) renderInput(st session.State) string {
	var b strings.Builder
	b.WriteString(accentStyle.Render("+ New Session"))
	b.WriteString("\n")
	if st.Identity.IsMentee() {
		b.WriteString(subtleStyle.Render("Share your current challenges or goals to update your digital twin."))
	} else {
		b.WriteString(subtleStyle.Render("Share your recent experiences or expertise to update your digital twin."))
	}
	b.WriteString("\n\n")
	b.WriteString(m.draft.View())
	b.WriteString("\n")

	switch {
	case st.Submitting:
		b.WriteString(m.spinner.View() + " Syncing to digital twin...")
	case m.ctrl.CanSubmit():
		b.WriteString(accentStyle.Render("ctrl+s Sync to Digital Twin"))
	default:
		b.WriteString(disabledStyle.Render("ctrl+s Sync to Digital Twin"))
	}
	b.WriteString("\n")

	if len(st.Matches) > 0 {
		b.WriteString("\n")
		b.WriteString(titleStyle.Render("Recommended Mentors"))
		b.WriteString(subtleStyle.Render("  updated " + internal.HumanizeAge(st.MatchesUpdatedAt)))
		b.WriteString("\n")
		cards := make([]string, 0, len(st.Matches))
		for _, match := range st.Matches {
			cards = append(cards, renderMatch(match))
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cards...))
		b.WriteString("\n")
	}
	return b.String()
}

func renderMatch(match internal.MatchResult) string {
	head := initialsStyle.Render(match.Initials()) + "  " + scoreStyle.Render(match.Percent()+" Match")
	return cardStyle.Render(head + "\n" + titleStyle.Render(match.MentorID) + "\n" + subtleStyle.Render(match.Rationale))
}

func renderGraph(st session.State) string {
	var b strings.Builder
	b.WriteString(accentStyle.Render("Network Statistics"))
	b.WriteString("\n")
	if st.Graph == nil {
		b.WriteString(subtleStyle.Render("Loading knowledge graph data..."))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(statNumberStyle.Render(fmt.Sprintf("%d", st.Graph.UserCount())))
	b.WriteString(" " + subtleStyle.Render("TOTAL USERS"))
	b.WriteString(subtleStyle.Render("  refreshed " + internal.HumanizeAge(st.GraphUpdatedAt)))
	b.WriteString("\n\n")
	b.WriteString(accentStyle.Render("Raw Graph Data"))
	b.WriteString("\n")
	b.WriteString(rawGraphStyle.Render(truncateLines(st.Graph.JSON(), 30)))
	b.WriteString("\n")
	return b.String()
}

func truncateLines(s string, max int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= max {
		return s
	}
	return strings.Join(lines[:max], "\n") + fmt.Sprintf("\n... %d more lines", len(lines)-max)
}
