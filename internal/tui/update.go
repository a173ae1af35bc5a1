package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/imkarma/trophy/internal/recurrence"
	"github.com/imkarma/trophy/internal/tracker"
)

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// If popup is active, handle popup keys first.
		if m.popup != popupNone {
			return m.handlePopupKey(msg)
		}
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.gridCols = min(max(m.width/46, 1), 4)
		return m, nil

	case goalsLoadedMsg:
		m.refreshing = false
		if msg.err != nil {
			m.setStatus("Failed to load goals: " + msg.err.Error())
			return m, nil
		}
		m.cards = msg.cards
		m.clampGridCursor()
		return m, nil

	case boardLoadedMsg:
		m.refreshing = false
		if msg.err != nil {
			m.setStatus("Failed to load goal: " + msg.err.Error())
			if errors.Is(msg.err, tracker.ErrNotFound) {
				m.screen = screenGrid
				m.board = nil
				return m, m.loadGoals()
			}
			return m, nil
		}
		if m.screen == screenGoal && msg.board.ID == m.goalID {
			m.setBoard(msg.board)
		}
		return m, nil

	case actionDoneMsg:
		if msg.err != nil {
			m.setStatus("Error: " + describe(msg.err))
		} else {
			m.setStatus(msg.status)
		}
		return m, m.reload()

	case tickMsg:
		cmds := []tea.Cmd{tickCmd()}
		if m.statusMsg != "" && time.Since(m.statusTime) > refreshEvery {
			m.statusMsg = ""
		}
		// Refresh data if not already loading.
		if !m.refreshing && m.popup == popupNone {
			m.refreshing = true
			cmds = append(cmds, m.reload())
		}
		return m, tea.Batch(cmds...)
	}

	return m, nil
}

// describe turns refusals into short status lines.
func describe(err error) string {
	switch {
	case errors.Is(err, recurrence.ErrDuplicatePeriodCompletion):
		return "you've already completed this for now"
	case errors.Is(err, recurrence.ErrQuotaExceeded):
		return "task already complete"
	}
	return err.Error()
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		if m.screen == screenGrid || msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
		return m.goBack()

	case "esc", "backspace":
		return m.goBack()
	}

	switch m.screen {
	case screenGrid:
		return m.handleGridKey(msg)
	case screenGoal:
		return m.handleGoalKey(msg)
	}
	return m, nil
}

func (m Model) goBack() (tea.Model, tea.Cmd) {
	if m.screen == screenGoal {
		m.screen = screenGrid
		m.board = nil
		m.rows = nil
		return m, m.loadGoals()
	}
	return m, nil
}

// --- Grid screen keys ---

func (m Model) handleGridKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		m.cursor += m.gridCols
		m.clampGridCursor()
	case "k", "up":
		m.cursor -= m.gridCols
		m.clampGridCursor()
	case "h", "left":
		m.cursor--
		m.clampGridCursor()
	case "l", "right":
		m.cursor++
		m.clampGridCursor()

	// Drill down into a goal.
	case "enter", " ":
		if c := m.selectedCard(); c != nil {
			m.screen = screenGoal
			m.goalID = c.ID
			m.rowCursor = 0
			return m, m.loadBoard(c.ID)
		}

	case "n", "ctrl+n":
		return m.openPopup(popupCreateGoal, "Goal title...", "Description (optional)...")

	case "c":
		if c := m.selectedCard(); c != nil {
			return m.confirmGoal(c.ID, c.IsCompleted)
		}

	case "R":
		return m, m.loadGoals()
	}
	return m, nil
}

// --- Goal screen keys ---

func (m Model) handleGoalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.board == nil {
		return m, nil
	}

	switch msg.String() {
	case "j", "down":
		m.rowCursor++
		m.clampRowCursor()
	case "k", "up":
		m.rowCursor--
		m.clampRowCursor()

	// Check off the selected task.
	case " ", "x", "enter":
		if r := m.selectedRow(); r != nil && r.task != nil {
			return m, m.doCheck(r.task.ID)
		}

	// Complete the selected accomplishment.
	case "c":
		if r := m.selectedRow(); r != nil {
			if r.acc.IsCompleted {
				m.setStatus("Accomplishment already completed")
				return m, nil
			}
			return m, m.doCompleteAcc(r.acc.ID)
		}

	// Complete the goal.
	case "C":
		return m.confirmGoal(m.board.ID, m.board.IsCompleted)

	case "a":
		return m.openPopup(popupCreateAcc, "Accomplishment title...", "Description (optional)...")

	case "t":
		r := m.selectedRow()
		if r == nil {
			m.setStatus("Add an accomplishment first (a)")
			return m, nil
		}
		if r.acc.IsCompleted {
			m.setStatus("Accomplishment is completed and locked")
			return m, nil
		}
		m.popupAccID = r.acc.ID
		return m.openPopup(popupCreateTask, "Task title...", repeatHelp)

	case "R":
		return m, m.loadBoard(m.goalID)
	}
	return m, nil
}

func (m Model) openPopup(p popup, placeholder, placeholder2 string) (tea.Model, tea.Cmd) {
	m.popup = p
	m.textInput.Reset()
	m.textInput.Placeholder = placeholder
	m.textInput.Focus()
	m.textInput2.Reset()
	m.textInput2.Placeholder = placeholder2
	m.textInput2.Blur()
	m.inputFocused = 0
	return m, textinput.Blink
}

func (m Model) confirmGoal(id int64, completed bool) (tea.Model, tea.Cmd) {
	if completed {
		m.setStatus("Goal is already on the shelf")
		return m, nil
	}
	m.popupGoalID = id
	m.popup = popupConfirmGoal
	return m, nil
}

// --- Popup keys ---

func (m Model) handlePopupKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.popup == popupConfirmGoal {
		switch msg.String() {
		case "y", "enter":
			m.popup = popupNone
			return m, m.doCompleteGoal(m.popupGoalID)
		case "n", "esc":
			m.popup = popupNone
		}
		return m, nil
	}

	switch msg.String() {
	case "esc":
		m.popup = popupNone
		return m, nil
	case "tab", "shift+tab":
		if m.inputFocused == 0 {
			m.textInput.Blur()
			m.textInput2.Focus()
			m.inputFocused = 1
		} else {
			m.textInput2.Blur()
			m.textInput.Focus()
			m.inputFocused = 0
		}
		return m, textinput.Blink
	case "enter":
		return m.submitPopup()
	}

	// Forward to the active text input.
	var cmd tea.Cmd
	if m.inputFocused == 0 {
		m.textInput, cmd = m.textInput.Update(msg)
	} else {
		m.textInput2, cmd = m.textInput2.Update(msg)
	}
	return m, cmd
}

func (m Model) submitPopup() (tea.Model, tea.Cmd) {
	title := strings.TrimSpace(m.textInput.Value())
	if title == "" {
		m.setStatus("Title cannot be empty")
		return m, nil
	}
	second := strings.TrimSpace(m.textInput2.Value())

	var cmd tea.Cmd
	switch m.popup {
	case popupCreateGoal:
		cmd = m.doCreateGoal(title, second)
	case popupCreateAcc:
		cmd = m.doCreateAcc(m.goalID, title, second)
	case popupCreateTask:
		in, err := parseRepeat(second)
		if err != nil {
			m.setStatus("Error: " + err.Error())
			return m, nil
		}
		in.Title = title
		cmd = m.doCreateTask(m.popupAccID, in)
	}
	m.popup = popupNone
	return m, cmd
}

// --- Actions ---

func (m Model) doCheck(taskID int64) tea.Cmd {
	return func() tea.Msg {
		res, err := m.tracker.CheckTask(context.Background(), m.user, taskID)
		if err != nil {
			return actionDoneMsg{err: err}
		}
		status := fmt.Sprintf("Checked #%d (%d/%d)", taskID, res.Progress.Done, res.Progress.Total)
		switch {
		case res.AccomplishmentCompleted:
			status = fmt.Sprintf("Task #%d complete! Accomplishment done", taskID)
		case res.Progress.Complete:
			status = fmt.Sprintf("Task #%d complete!", taskID)
		}
		return actionDoneMsg{status: status}
	}
}

func (m Model) doCompleteAcc(id int64) tea.Cmd {
	return func() tea.Msg {
		a, err := m.tracker.CompleteAccomplishment(context.Background(), m.user, id)
		if err != nil {
			return actionDoneMsg{err: err}
		}
		return actionDoneMsg{status: "Completed " + a.Title}
	}
}

func (m Model) doCompleteGoal(id int64) tea.Cmd {
	return func() tea.Msg {
		g, err := m.tracker.CompleteGoal(context.Background(), m.user, id)
		if err != nil {
			return actionDoneMsg{err: err}
		}
		return actionDoneMsg{status: "🏆 " + g.Title + " is on the shelf"}
	}
}

func (m Model) doCreateGoal(title, desc string) tea.Cmd {
	return func() tea.Msg {
		g, err := m.tracker.CreateGoal(context.Background(), m.user, title, desc)
		if err != nil {
			return actionDoneMsg{err: err}
		}
		return actionDoneMsg{status: fmt.Sprintf("Created goal #%d: %s", g.ID, g.Title)}
	}
}

func (m Model) doCreateAcc(goalID int64, title, desc string) tea.Cmd {
	return func() tea.Msg {
		a, err := m.tracker.CreateAccomplishment(context.Background(), m.user, goalID, title, desc)
		if err != nil {
			return actionDoneMsg{err: err}
		}
		return actionDoneMsg{status: fmt.Sprintf("Created accomplishment #%d: %s", a.ID, a.Title)}
	}
}

func (m Model) doCreateTask(accID int64, in tracker.TaskInput) tea.Cmd {
	return func() tea.Msg {
		t, err := m.tracker.CreateTask(context.Background(), m.user, accID, in)
		if err != nil {
			return actionDoneMsg{err: err}
		}
		return actionDoneMsg{status: fmt.Sprintf("Created task #%d: %s", t.ID, t.Title)}
	}
}
