// Package tui renders live arena progress in the terminal.
package tui

import (
	"fmt"
	"math"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"gauntlet/internal/arena"
	"gauntlet/internal/domain"
)

// Update carries one finished trial from the collector to the view.
type Update struct {
	Game     int
	Result   string
	Reason   domain.Reason
	Moves    int
	Counters arena.Counters
}

// Sink feeds trial summaries to the model. Sends never block: when the
// display lags, a recent-game line is dropped while the counters on the
// next update stay exact.
type Sink struct {
	updates chan<- Update
}

func NewSink(updates chan<- Update) *Sink {
	return &Sink{updates: updates}
}

func (s *Sink) HandleResult(out *domain.Outcome, c arena.Counters) {
	var result = "error"
	if out.Err == nil {
		result = out.Result().String()
	}
	var u = Update{
		Game:     out.GameNumber,
		Result:   result,
		Reason:   out.Reason,
		Moves:    len(out.Moves),
		Counters: c,
	}
	select {
	case s.updates <- u:
	default:
	}
}

const recentLines = 10

// Model is the bubbletea view of a running match. Closing the update
// channel ends the program once the drained state is on screen.
type Model struct {
	total    int
	counters arena.Counters
	recent   []string
	start    time.Time
	updates  <-chan Update
	done     bool
}

func New(total int, updates <-chan Update) Model {
	return Model{total: total, updates: updates, start: time.Now()}
}

type TickMsg time.Time

type doneMsg struct{}

func tickCmd() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func waitForUpdate(updates <-chan Update) tea.Cmd {
	return func() tea.Msg {
		u, ok := <-updates
		if !ok {
			return doneMsg{}
		}
		return u
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(waitForUpdate(m.updates), tickCmd())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}
	case TickMsg:
		return m, tickCmd()
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case Update:
		m.counters = msg.Counters
		var line = fmt.Sprintf("game %d: %s (%s, %d plies)", msg.Game, msg.Result, msg.Reason, msg.Moves)
		m.recent = append([]string{line}, m.recent...)
		if len(m.recent) > recentLines {
			m.recent = m.recent[:recentLines]
		}
		return m, waitForUpdate(m.updates)
	}
	return m, nil
}

func (m Model) View() string {
	var c = m.counters
	var stat = c.Stat()
	var duration = time.Since(m.start)
	var rate float64
	if duration.Seconds() >= 1 {
		rate = float64(c.Games()+c.Errors) / duration.Seconds()
	}
	var elo = "n/a"
	if !math.IsInf(stat.EloDifference, 0) && !math.IsNaN(stat.EloDifference) {
		elo = fmt.Sprintf("%+.1f", stat.EloDifference)
	}

	var s = fmt.Sprintf("Games:    %d/%d\n", c.Games()+c.Errors, m.total)
	s += fmt.Sprintf("Score:    +%d -%d =%d", c.Wins, c.Losses, c.Draws)
	if c.Errors > 0 {
		s += fmt.Sprintf(" !%d", c.Errors)
	}
	s += "\n"
	s += fmt.Sprintf("Elo:      %s (LOS %.1f%%)\n", elo, stat.LOS*100)
	s += fmt.Sprintf("Duration: %s\n", duration.Round(time.Second))
	s += fmt.Sprintf("Games/s:  %.2f\n\n", rate)
	s += "Recent:\n"
	for _, g := range m.recent {
		s += g + "\n"
	}
	if m.done {
		s += "\nMatch complete.\n"
	} else {
		s += "\nPress q to quit.\n"
	}
	return s
}
