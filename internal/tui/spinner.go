// Package tui shows progress for a CLI analysis run.
package tui

import (
	"context"
	"errors"
	"fmt"

	"stx-trader/internal/domain"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var ErrCancelled = errors.New("analysis cancelled")

type RunFunc func(ctx context.Context) (*domain.Report, error)

type doneMsg struct {
	report *domain.Report
	err    error
}

var spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#7C3AED"))

// Model spins while run executes and quits once it returns.
type Model struct {
	spinner spinner.Model
	address string
	ctx     context.Context
	cancel  context.CancelFunc
	run     RunFunc

	report *domain.Report
	err    error
	done   bool
}

func NewModel(ctx context.Context, address string, run RunFunc) Model {
	ctx, cancel := context.WithCancel(ctx)
	return Model{
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(spinnerStyle)),
		address: address,
		ctx:     ctx,
		cancel:  cancel,
		run:     run,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.start)
}

func (m Model) start() tea.Msg {
	report, err := m.run(m.ctx)
	return doneMsg{report: report, err: err}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			m.cancel()
			m.err = ErrCancelled
			m.done = true
			return m, tea.Quit
		}
	case doneMsg:
		m.cancel()
		m.report, m.err, m.done = msg.report, msg.err, true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) View() string {
	if m.done {
		return ""
	}
	return fmt.Sprintf("%s Analyzing %s...\n", m.spinner.View(), m.address)
}

func (m Model) Result() (*domain.Report, error) {
	return m.report, m.err
}

// Run drives the spinner until run finishes or the user quits.
func Run(ctx context.Context, address string, run RunFunc, opts ...tea.ProgramOption) (*domain.Report, error) {
	final, err := tea.NewProgram(NewModel(ctx, address, run), opts...).Run()
	if err != nil {
		return nil, fmt.Errorf("spinner: %w", err)
	}
	return final.(Model).Result()
}
