package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/noah-isme/codemission/internal/models"
)

// UploadProgressMsg carries the upload percentage.
type UploadProgressMsg int

// UploadDoneMsg ends the upload. Message is the user-facing error text and is empty on success.
type UploadDoneMsg struct {
	Result  *models.AnalysisResult
	Message string
}

// UploadModel shows a progress bar while an archive uploads.
type UploadModel struct {
	fileName string
	bar      progress.Model
	percent  int
	done     bool
	canceled bool
	result   *models.AnalysisResult
	message  string
}

// NewUploadModel builds the model for fileName.
func NewUploadModel(fileName string) UploadModel {
	return UploadModel{
		fileName: fileName,
		bar:      progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
	}
}

func (m UploadModel) Init() tea.Cmd {
	return nil
}

func (m UploadModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.canceled = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.bar.Width = min(msg.Width-4, 60)
	case UploadProgressMsg:
		if int(msg) > m.percent {
			m.percent = min(int(msg), 100)
		}
	case UploadDoneMsg:
		m.done = true
		m.result = msg.Result
		m.message = msg.Message
		if msg.Message != "" {
			m.percent = 0
		} else {
			m.percent = 100
		}
		return m, tea.Quit
	}
	return m, nil
}

func (m UploadModel) View() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Uploading %s\n", Clean(m.fileName))
	b.WriteString(m.bar.ViewAs(float64(m.percent) / 100))
	b.WriteString("\n")

	switch {
	case m.canceled:
		b.WriteString(ErrorBanner("Upload canceled."))
	case m.done && m.message != "":
		b.WriteString(ErrorBanner(m.message))
	case m.done:
		b.WriteString(SuccessBanner("Analysis completed."))
	default:
		b.WriteString(mutedStyle.Render("Press ctrl+c to cancel."))
	}
	b.WriteString("\n")
	return b.String()
}

// Percent is the last shown percentage.
func (m UploadModel) Percent() int { return m.percent }

// Canceled reports whether the user interrupted the upload.
func (m UploadModel) Canceled() bool { return m.canceled }

// Result is the analysis returned by a successful upload.
func (m UploadModel) Result() *models.AnalysisResult { return m.result }
