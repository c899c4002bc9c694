package status

import (
	"errors"
	"io"
	"time"

	"github.com/bnema/internode-usage-cli/internal/application"
	tea "github.com/charmbracelet/bubbletea"
)

var ErrUnexpectedRenderModel = errors.New("unexpected final bubbletea model type")

// serviceMsg asks the model to lay out the service at index.
type serviceMsg struct{ index int }

type model struct {
	statuses []application.ServiceStatus
	opts     RenderOptions
	styles   styles
	sections []string
	alerts   int
	done     bool
}

func newModel(statuses []application.ServiceStatus, opts RenderOptions) model {
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}

	return model{
		statuses: statuses,
		opts:     opts,
		styles:   newStyles(),
		sections: make([]string, 0, len(statuses)),
	}
}

func (m model) Init() tea.Cmd {
	if len(m.statuses) == 0 {
		return tea.Quit
	}
	return nextService(0)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case serviceMsg:
		status := m.statuses[msg.index]
		m.sections = append(m.sections, renderService(status, m.opts, m.styles))
		if status.OverThreshold(m.opts.AlertAt) {
			m.alerts++
		}

		if msg.index+1 < len(m.statuses) {
			return m, nextService(msg.index + 1)
		}
		m.done = true
		return m, tea.Quit
	default:
		return m, nil
	}
}

func (m model) View() string {
	if !m.done && len(m.statuses) > 0 {
		return ""
	}
	return renderView(len(m.statuses), m.sections, m.alerts, m.opts, m.styles)
}

func nextService(index int) tea.Cmd {
	return func() tea.Msg {
		return serviceMsg{index: index}
	}
}

// Render lays out every service through a headless bubbletea program and
// returns the final frame.
func Render(statuses []application.ServiceStatus, opts RenderOptions) (string, error) {
	p := tea.NewProgram(
		newModel(statuses, opts),
		tea.WithInput(nil),
		tea.WithOutput(io.Discard),
	)

	finalModel, err := p.Run()
	if err != nil {
		return "", err
	}

	rendered, ok := finalModel.(model)
	if !ok {
		return "", ErrUnexpectedRenderModel
	}

	return rendered.View(), nil
}
