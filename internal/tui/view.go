package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/imkarma/trophy/internal/recurrence"
	"github.com/imkarma/trophy/internal/tracker"
)

// --- Color palette ---
var (
	clrSubtle    = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#666666"}
	clrHighlight = lipgloss.AdaptiveColor{Light: "#0F766E", Dark: "#2DD4BF"}
	clrGreen     = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}
	clrYellow    = lipgloss.AdaptiveColor{Light: "#B45309", Dark: "#F59E0B"}
	clrRed       = lipgloss.AdaptiveColor{Light: "#B91C1C", Dark: "#F87171"}
	clrCyan      = lipgloss.AdaptiveColor{Light: "#0E7490", Dark: "#22D3EE"}
	clrDim       = lipgloss.AdaptiveColor{Light: "#999999", Dark: "#555555"}
)

// --- Styles ---
var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(clrHighlight)
	dimStyle   = lipgloss.NewStyle().Foreground(clrDim)
	boldStyle  = lipgloss.NewStyle().Bold(true)
	idStyle    = lipgloss.NewStyle().Foreground(clrCyan)
	doneStyle  = lipgloss.NewStyle().Foreground(clrGreen)
	readyStyle = lipgloss.NewStyle().Foreground(clrYellow)

	goalCardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(clrSubtle).
			Padding(0, 1).
			Height(6)

	goalCardSelectedStyle = goalCardStyle.
				BorderForeground(clrHighlight).
				Bold(true)

	goalCardReadyStyle = goalCardStyle.BorderForeground(clrYellow)
	goalCardDoneStyle  = goalCardStyle.BorderForeground(clrGreen)

	popupStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(clrHighlight).
			Padding(1, 2).
			Width(60)

	statusStyle = lipgloss.NewStyle().Foreground(clrGreen).Bold(true)
	errorStyle  = lipgloss.NewStyle().Foreground(clrRed).Bold(true)

	footerKeyStyle  = lipgloss.NewStyle().Bold(true).Foreground(clrHighlight)
	footerDescStyle = lipgloss.NewStyle().Foreground(clrSubtle)
)

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.screen {
	case screenGrid:
		content = m.viewGrid()
	case screenGoal:
		content = m.viewGoal()
	}

	if m.popup != popupNone {
		content = m.overlayPopup(content)
	}
	return content
}

// ════════════════════════════════════════════════
// GRID VIEW: goal cards
// ════════════════════════════════════════════════

func (m Model) viewGrid() string {
	var b strings.Builder

	header := titleStyle.Render("trophy") + dimStyle.Render(fmt.Sprintf(" — %d goals • %s", len(m.cards), m.tracker.Today()))
	b.WriteString(m.headerLine(header) + "\n\n")

	if len(m.cards) == 0 {
		b.WriteString(dimStyle.Render("  No goals yet. Press ") +
			footerKeyStyle.Render("n") +
			dimStyle.Render(" to create one.\n"))
		b.WriteString(m.statusLine())
		return b.String()
	}

	cols := max(m.gridCols, 1)
	cardWidth := 42
	if m.width > 0 {
		cardWidth = min(max((m.width-(cols+1))/cols, 30), 50)
	}

	for i := 0; i < len(m.cards); i += cols {
		var rowCards []string
		for j := 0; j < cols && i+j < len(m.cards); j++ {
			idx := i + j
			rowCards = append(rowCards, m.renderGoalCard(&m.cards[idx], idx == m.cursor, cardWidth))
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, rowCards...))
		b.WriteString("\n")
	}

	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(renderFooter([]footerKey{
		{"↑↓←→", "navigate"},
		{"enter", "open goal"},
		{"n", "new goal"},
		{"c", "complete"},
		{"R", "refresh"},
		{"q", "quit"},
	}))
	return b.String()
}

func (m Model) renderGoalCard(c *tracker.GoalCard, selected bool, width int) string {
	var content strings.Builder

	id := idStyle.Render(fmt.Sprintf("G#%d", c.ID))
	state := dimStyle.Render("active")
	switch {
	case c.IsCompleted:
		state = doneStyle.Render("🏆 on the shelf")
	case c.FullyDone:
		state = readyStyle.Render("✓ ready to complete")
	}
	content.WriteString(id + "  " + state + "\n")
	content.WriteString(boldStyle.Render(truncate(c.Title, width-6)) + "\n")
	if c.Description != "" {
		content.WriteString(dimStyle.Render(truncate(c.Description, width-6)) + "\n")
	} else {
		content.WriteString(dimStyle.Render("No description") + "\n")
	}
	content.WriteString(renderBar(c.Summary.Done, c.Summary.Total, width-12) +
		fmt.Sprintf(" %3d%%", c.Summary.Pct) + "\n")
	content.WriteString(dimStyle.Render(fmt.Sprintf("Accomplishments: %d/%d", c.Completed, c.Accomplishments)))

	style := goalCardStyle
	switch {
	case selected:
		style = goalCardSelectedStyle
	case c.IsCompleted:
		style = goalCardDoneStyle
	case c.FullyDone:
		style = goalCardReadyStyle
	}
	return style.Width(width).Render(content.String())
}

// ════════════════════════════════════════════════
// GOAL VIEW: accomplishments and tasks
// ════════════════════════════════════════════════

func (m Model) viewGoal() string {
	if m.board == nil {
		return dimStyle.Render("  Loading...")
	}
	var b strings.Builder
	g := m.board

	header := titleStyle.Render(fmt.Sprintf("G#%d %s", g.ID, g.Title))
	b.WriteString(m.headerLine(header+"  "+dimStyle.Render("esc back")) + "\n")
	if g.Description != "" {
		b.WriteString("  " + dimStyle.Render(g.Description) + "\n")
	}
	b.WriteString("\n  " + renderBar(g.Summary.Done, g.Summary.Total, 40) +
		fmt.Sprintf(" %d/%d (%d%%)", g.Summary.Done, g.Summary.Total, g.Summary.Pct))
	switch {
	case g.IsCompleted:
		b.WriteString("  " + doneStyle.Render("🏆 on the shelf"))
	case g.FullyDone:
		b.WriteString("  " + readyStyle.Render("✓ press C to complete"))
	}
	b.WriteString("\n\n")

	if len(m.rows) == 0 {
		b.WriteString(dimStyle.Render("  No accomplishments yet. Press ") +
			footerKeyStyle.Render("a") + dimStyle.Render(" to add one.\n"))
	}
	for i, r := range m.rows {
		b.WriteString(m.renderRow(r, i == m.rowCursor) + "\n")
	}

	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(renderFooter([]footerKey{
		{"↑↓", "select"},
		{"space", "check off"},
		{"c", "complete acc"},
		{"C", "complete goal"},
		{"a", "new acc"},
		{"t", "new task"},
		{"esc", "back"},
	}))
	return b.String()
}

func (m Model) renderRow(r row, selected bool) string {
	cursor := "  "
	if selected {
		cursor = lipgloss.NewStyle().Foreground(clrHighlight).Render("▸ ")
	}

	if r.task == nil {
		a := r.acc
		state := dimStyle.Render("active")
		switch {
		case a.IsCompleted:
			state = doneStyle.Render("done")
		case a.FullyDone:
			state = readyStyle.Render("ready")
		}
		return fmt.Sprintf("%s%s %s [%s] %s", cursor, idStyle.Render(fmt.Sprintf("A#%d", a.ID)),
			boldStyle.Render(truncate(a.Title, 40)), state,
			dimStyle.Render(fmt.Sprintf("%d/%d", a.CompletionSummary.Done, a.CompletionSummary.Total)))
	}

	t := r.task
	var box string
	switch {
	case t.Progress.Complete:
		box = doneStyle.Render("[✓]")
	case t.CanCompleteNow:
		box = "[ ]"
	default:
		box = dimStyle.Render("[·]")
	}
	return fmt.Sprintf("%s    %s %s %-36s %s %s", cursor, box, idStyle.Render(fmt.Sprintf("#%d", t.ID)),
		truncate(t.Title, 36), renderBar(t.Progress.Done, t.Progress.Total, 12),
		dimStyle.Render(fmt.Sprintf("%d/%d %s", t.Progress.Done, t.Progress.Total, ruleText(t.Task.RepeatType, t.TargetCount))))
}

func ruleText(kind recurrence.Kind, target int) string {
	switch kind {
	case recurrence.KindDaily:
		return "daily"
	case recurrence.KindWeekly:
		return fmt.Sprintf("%dx weekly", max(target, 1))
	case recurrence.KindAmount:
		return "amount"
	}
	return "once"
}

// ════════════════════════════════════════════════
// POPUPS
// ════════════════════════════════════════════════

func (m Model) overlayPopup(bg string) string {
	var b strings.Builder

	switch m.popup {
	case popupConfirmGoal:
		b.WriteString(boldStyle.Foreground(clrGreen).Render("Complete Goal") + "\n\n")
		b.WriteString("Put this goal on the shelf?\nEvery accomplishment must be done.\n\n")
		b.WriteString(footerKeyStyle.Render("y") + footerDescStyle.Render(" confirm  ") +
			footerKeyStyle.Render("n") + footerDescStyle.Render(" cancel"))
	default:
		title, second := "Create Goal", "Description:"
		switch m.popup {
		case popupCreateAcc:
			title = "Create Accomplishment"
		case popupCreateTask:
			title, second = "Create Task", "Repeat:"
		}
		b.WriteString(boldStyle.Foreground(clrHighlight).Render(title) + "\n\n")
		b.WriteString("Title:\n" + m.textInput.View() + "\n\n")
		b.WriteString(second + "\n" + m.textInput2.View() + "\n\n")
		b.WriteString(footerDescStyle.Render("enter create • tab switch • esc cancel"))
	}

	popup := m.popupBoxStyle().Render(b.String())
	if m.width > 0 && m.height > 0 {
		return lipgloss.Place(m.width, m.height,
			lipgloss.Center, lipgloss.Center,
			popup,
			lipgloss.WithWhitespaceChars(" "),
		)
	}
	return bg + "\n" + popup
}

func (m Model) popupBoxStyle() lipgloss.Style {
	w := 60
	if m.width > 0 {
		w = min(max(m.width-12, 42), 84)
	}
	return popupStyle.Width(w)
}

// ════════════════════════════════════════════════
// SHARED HELPERS
// ════════════════════════════════════════════════

type footerKey struct{ key, desc string }

func renderFooter(keys []footerKey) string {
	var parts []string
	for _, k := range keys {
		parts = append(parts, footerKeyStyle.Render(k.key)+" "+footerDescStyle.Render(k.desc))
	}
	return "  " + strings.Join(parts, "  ")
}

func (m Model) headerLine(left string) string {
	right := footerKeyStyle.Render("q") + footerDescStyle.Render(" quit")
	if m.width > 0 {
		if pad := m.width - lipgloss.Width(left) - lipgloss.Width(right); pad > 0 {
			return left + strings.Repeat(" ", pad) + right
		}
	}
	return left
}

func (m Model) statusLine() string {
	if m.statusMsg == "" {
		return ""
	}
	lower := strings.ToLower(m.statusMsg)
	if strings.HasPrefix(lower, "failed") || strings.HasPrefix(lower, "error") {
		return "\n" + errorStyle.Render("  "+m.statusMsg)
	}
	return "\n" + statusStyle.Render("  "+m.statusMsg)
}

// renderBar draws done/total as a bar of the given width.
func renderBar(done, total, width int) string {
	width = max(width, 4)
	filled := 0
	if total > 0 {
		filled = min(max(done*width/total, 0), width)
	}
	style := lipgloss.NewStyle().Foreground(clrCyan)
	if total > 0 && done >= total {
		style = doneStyle
	}
	return style.Render(strings.Repeat("█", filled)) + dimStyle.Render(strings.Repeat("░", width-filled))
}

func truncate(s string, n int) string {
	if n <= 3 {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
