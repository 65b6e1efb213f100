package cli

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/davidmanzanoai/install-new/internal/model"
)

var (
	promptStyle = lipgloss.NewStyle().Bold(true)
	hintStyle   = lipgloss.NewStyle().Faint(true)
)

// confirmModel is a minimal y/n prompt.
type confirmModel struct {
	question string
	answered bool
	accepted bool
}

// Init implements tea.Model.
func (m confirmModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "y", "Y":
			m.answered = true
			m.accepted = true
			return m, tea.Quit
		case "n", "N", "esc", "ctrl+c", "q":
			m.answered = true
			m.accepted = false
			return m, tea.Quit
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m confirmModel) View() string {
	if m.answered {
		answer := "no"
		if m.accepted {
			answer = "yes"
		}
		return fmt.Sprintf("%s %s\n", promptStyle.Render(m.question), answer)
	}
	return fmt.Sprintf("%s %s ", promptStyle.Render(m.question), hintStyle.Render("[y/N]"))
}

// Confirm asks a yes/no question on the terminal. assumeYes short-circuits
// to true (the --yes flag). In quiet mode or without a terminal the prompt
// cannot be shown and the answer defaults to no; destructive commands need
// an explicit --yes in scripts.
func Confirm(question string, assumeYes bool) (bool, error) {
	if assumeYes {
		return true, nil
	}

	if quiet || !term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Fprintln(os.Stderr, "confirmation required; re-run with --yes to proceed")
		return false, nil
	}

	p := tea.NewProgram(confirmModel{question: question}, tea.WithOutput(os.Stderr))
	final, err := p.Run()
	if err != nil {
		return false, model.WrapCLIError("prompt failed", err)
	}

	m, ok := final.(confirmModel)
	return ok && m.accepted, nil
}
