package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"pdfqa/internal/vectorstore"
)

// Answerer is the TUI-facing subset of the QA agent.
type Answerer interface {
	Answer(ctx context.Context, question string, store vectorstore.Storage) (string, error)
}

type turn struct {
	question string
	answer   string
}

// answerMsg carries the result of an asynchronous Answer call.
type answerMsg struct {
	question string
	answer   string
	err      error
}

// Model is the Bubble Tea model for asking questions about one document.
type Model struct {
	agent    Answerer
	store    vectorstore.Storage
	title    string
	summary  string
	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	turns    []turn
	status   string
	busy     bool
	ready    bool
}

// New creates a TUI model for the document indexed in store.
func New(agent Answerer, store vectorstore.Storage, title, summary string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask a question and press Enter (exit to quit)"
	ti.Focus()
	ti.CharLimit = 0
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return Model{
		agent:    agent,
		store:    store,
		title:    title,
		summary:  summary,
		input:    ti,
		viewport: viewport.New(0, 0),
		spinner:  sp,
		status:   "Loaded. Ask anything about the document.",
	}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key, window and answer events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, ah := answerBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 2 + 1 + qh + 1 // header + summary, status, spacer
		m.viewport.Width = max(20, msg.Width-2)
		m.viewport.Height = max(3, msg.Height-reserved-ah)
		m.viewport.SetContent(m.renderTranscript())
		return m, nil
	case answerMsg:
		m.busy = false
		if msg.err != nil {
			m.status = "Error: " + msg.err.Error()
			return m, nil
		}
		m.turns = append(m.turns, turn{question: msg.question, answer: msg.answer})
		m.status = "Ready."
		m.viewport.SetContent(m.renderTranscript())
		m.viewport.GotoBottom()
		return m, nil
	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			q := strings.TrimSpace(m.input.Value())
			if q == "" || m.busy {
				return m, nil
			}
			if isQuit(q) {
				return m, tea.Quit
			}
			m.input.SetValue("")
			m.busy = true
			m.status = "Thinking..."
			return m, tea.Batch(m.spinner.Tick, m.ask(q))
		case "pgdown", "pgup":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) ask(question string) tea.Cmd {
	agent, store := m.agent, m.store
	return func() tea.Msg {
		answer, err := agent.Answer(context.Background(), question, store)
		return answerMsg{question: question, answer: answer, err: err}
	}
}

// View renders the header, transcript, input and status line.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("PDF Q&A: " + m.title)
	summary := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(m.summary)
	transcript := answerBoxStyle.Render(m.viewport.View())
	input := queryBoxStyle.Render(m.input.View())
	status := statusStyle.Render(m.status)
	if m.busy {
		status = m.spinner.View() + " " + status
	}
	return header + "\n" + summary + "\n" + transcript + "\n" + input + "\n" + status
}

func (m Model) renderTranscript() string {
	if len(m.turns) == 0 {
		return "No questions yet."
	}
	wrap := lipgloss.NewStyle().Width(max(10, m.viewport.Width-2))
	parts := make([]string, 0, len(m.turns))
	for _, t := range m.turns {
		parts = append(parts,
			youStyle.Render("You: ")+t.question+"\n"+
				aiStyle.Render("AI: ")+"\n"+wrap.Render(t.answer))
	}
	return strings.Join(parts, "\n\n")
}

func isQuit(s string) bool {
	s = strings.ToLower(s)
	return s == "exit" || s == "quit"
}

var (
	answerBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	youStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	aiStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
)
