package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/imkarma/trophy/internal/tracker"
)

// screen represents which page the TUI is on.
type screen int

const (
	screenGrid screen = iota // goal cards (main)
	screenGoal               // one goal's accomplishments and tasks
)

// popup is a modal drawn over the current screen.
type popup int

const (
	popupNone popup = iota
	popupCreateGoal
	popupCreateAcc
	popupCreateTask
	popupConfirmGoal
)

const refreshEvery = 5 * time.Second

// row is one selectable line of the goal screen: an accomplishment header
// or one of its tasks.
type row struct {
	acc  *tracker.AccomplishmentView
	task *tracker.TaskView
}

// Model is the top-level bubbletea model.
type Model struct {
	tracker *tracker.Service
	user    string
	width   int
	height  int

	screen screen
	popup  popup

	// Grid state.
	cards    []tracker.GoalCard
	cursor   int
	gridCols int

	// Goal screen state.
	goalID    int64
	board     *tracker.Board
	rows      []row
	rowCursor int

	// Popup inputs.
	textInput    textinput.Model
	textInput2   textinput.Model
	inputFocused int
	popupAccID   int64
	popupGoalID  int64

	statusMsg  string
	statusTime time.Time
	refreshing bool
	quitting   bool
}

// New creates a TUI acting as username.
func New(tr *tracker.Service, username string) Model {
	ti := textinput.New()
	ti.CharLimit = 120
	ti.Width = 50

	ti2 := textinput.New()
	ti2.CharLimit = 200
	ti2.Width = 50

	return Model{
		tracker:    tr,
		user:       username,
		screen:     screenGrid,
		gridCols:   2,
		textInput:  ti,
		textInput2: ti2,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadGoals(), tickCmd())
}

type goalsLoadedMsg struct {
	cards []tracker.GoalCard
	err   error
}

type boardLoadedMsg struct {
	board *tracker.Board
	err   error
}

// actionDoneMsg reports a write. The current screen reloads afterwards.
type actionDoneMsg struct {
	status string
	err    error
}

type tickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(refreshEvery, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) loadGoals() tea.Cmd {
	return func() tea.Msg {
		cards, err := m.tracker.Overview(context.Background(), m.user)
		return goalsLoadedMsg{cards: cards, err: err}
	}
}

func (m Model) loadBoard(goalID int64) tea.Cmd {
	return func() tea.Msg {
		b, err := m.tracker.GoalBoard(context.Background(), m.user, goalID, m.tracker.Today())
		return boardLoadedMsg{board: b, err: err}
	}
}

// reload refreshes whatever the current screen shows.
func (m Model) reload() tea.Cmd {
	if m.screen == screenGoal {
		return m.loadBoard(m.goalID)
	}
	return m.loadGoals()
}

func (m *Model) setStatus(s string) {
	m.statusMsg = s
	m.statusTime = time.Now()
}

func (m *Model) setBoard(b *tracker.Board) {
	m.board = b
	m.rows = nil
	accs := b.AllAccomplishments()
	for i := range accs {
		acc := &accs[i]
		m.rows = append(m.rows, row{acc: acc})
		for j := range acc.Tasks {
			m.rows = append(m.rows, row{acc: acc, task: &acc.Tasks[j]})
		}
	}
	m.clampRowCursor()
}

func (m *Model) clampGridCursor() {
	if m.cursor >= len(m.cards) {
		m.cursor = len(m.cards) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) clampRowCursor() {
	if m.rowCursor >= len(m.rows) {
		m.rowCursor = len(m.rows) - 1
	}
	if m.rowCursor < 0 {
		m.rowCursor = 0
	}
}

func (m Model) selectedCard() *tracker.GoalCard {
	if m.cursor < len(m.cards) {
		return &m.cards[m.cursor]
	}
	return nil
}

func (m Model) selectedRow() *row {
	if m.rowCursor < len(m.rows) {
		return &m.rows[m.rowCursor]
	}
	return nil
}
