package download

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
)

// percentMsg carries a progress update into the bubbletea program.
type percentMsg float64

// finishMsg tells the program to render its final frame and exit.
type finishMsg struct{}

// barModel renders a single download as a label plus a progress bar.
// Downloads without a known Content-Length render an indeterminate label.
type barModel struct {
	label   string
	bar     progress.Model
	percent float64
	unknown bool
	done    bool
}

// Init implements tea.Model.
func (m barModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m barModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case percentMsg:
		p := float64(msg)
		if p < 0 {
			m.unknown = true
		} else {
			m.unknown = false
			m.percent = p
		}
		return m, nil

	case finishMsg:
		m.percent = 1.0
		m.done = true
		return m, tea.Quit

	case tea.WindowSizeMsg:
		// Leave room for the label and percentage.
		width := msg.Width - len(m.label) - 12
		if width > 10 {
			m.bar.Width = width
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m barModel) View() string {
	if m.unknown && !m.done {
		return fmt.Sprintf("  %s … downloading\n", m.label)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "  %s %s %3.0f%%", m.label, m.bar.ViewAs(m.percent), m.percent*100)
	if m.done {
		b.WriteString(" done")
	}
	b.WriteString("\n")
	return b.String()
}

// ProgressBar drives a terminal progress bar for one download. The bar
// renders on stderr so stdout stays reserved for command output.
type ProgressBar struct {
	program *tea.Program
	done    chan struct{}
}

// StartProgressBar launches the progress program for a labeled download.
// Call Progress() to obtain the callback to hand to the Downloader, and
// Finish() once the download returns.
func StartProgressBar(label string) *ProgressBar {
	m := barModel{
		label: label,
		bar:   progress.New(progress.WithDefaultGradient()),
	}

	p := tea.NewProgram(m,
		tea.WithOutput(os.Stderr),
		tea.WithoutSignalHandler(),
	)

	b := &ProgressBar{program: p, done: make(chan struct{})}
	go func() {
		defer close(b.done)
		_, _ = p.Run()
	}()
	return b
}

// Progress returns the ProgressFunc that feeds the bar.
func (b *ProgressBar) Progress() ProgressFunc {
	return func(downloaded, total int64) {
		if total <= 0 {
			b.program.Send(percentMsg(-1))
			return
		}
		b.program.Send(percentMsg(float64(downloaded) / float64(total)))
	}
}

// Finish completes the bar and waits for the program to exit.
func (b *ProgressBar) Finish() {
	b.program.Send(finishMsg{})
	<-b.done
}
