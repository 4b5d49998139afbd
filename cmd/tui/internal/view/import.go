package view

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/bursar/internal/fee"
	"github.com/MrJamesThe3rd/bursar/internal/importer"
)

const importTimeout = 2 * time.Minute

type importState int

const (
	importStateFilePick importState = iota
	importStateImporting
	importStateResult
)

type ImportModel struct {
	CommonModel
	feeService    *fee.Service
	importService *importer.Service

	state      importState
	filePicker filepicker.Model

	status  string
	rowErrs []fee.RowError
	err     error
}

func NewImportModel(feeSvc *fee.Service, impSvc *importer.Service) ImportModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.AllowedTypes = []string{".csv"}
	fp.ShowHidden = false
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.SetHeight(15)

	return ImportModel{
		feeService:    feeSvc,
		importService: impSvc,
		filePicker:    fp,
	}
}

func (m ImportModel) Title() string     { return "Import Fee Assignments" }
func (m ImportModel) ShortHelp() string { return "Esc: back | Enter: select" }

func (m ImportModel) Init() tea.Cmd {
	return m.filePicker.Init()
}

func (m ImportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m.handleEsc()
		}

	case importResultMsg:
		m.state = importStateResult
		m.err = msg.err

		var importErr *fee.ImportError
		switch {
		case errors.As(msg.err, &importErr):
			m.rowErrs = importErr.Rows
			m.status = "Nothing imported; fix these lines and retry:"
		case msg.err != nil:
			m.status = fmt.Sprintf("Error: %v", msg.err)
		default:
			m.status = fmt.Sprintf("Imported %d fee records.", msg.count)
		}

		return m, nil
	}

	if m.state != importStateFilePick {
		return m, nil
	}

	var cmd tea.Cmd
	m.filePicker, cmd = m.filePicker.Update(msg)

	if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
		m.state = importStateImporting
		m.status = fmt.Sprintf("Importing from %s...", path)

		return m, m.importCmd(path)
	}

	return m, cmd
}

func (m ImportModel) handleEsc() (tea.Model, tea.Cmd) {
	if m.state == importStateResult {
		m.state = importStateFilePick
		m.err = nil
		m.rowErrs = nil
		m.status = ""

		return m, m.filePicker.Init()
	}

	return m, Back
}

func (m ImportModel) View() string {
	switch m.state {
	case importStateFilePick:
		return lipgloss.NewStyle().Padding(1).Render(
			fmt.Sprintf("Select a fee CSV to import:\n\n%s", m.filePicker.View()),
		)
	case importStateImporting:
		return lipgloss.NewStyle().Padding(2).Render(m.status)
	case importStateResult:
		return m.viewResult()
	}

	return ""
}

func (m ImportModel) viewResult() string {
	style := lipgloss.NewStyle().Padding(2)

	if m.err == nil {
		return style.Render(
			lipgloss.NewStyle().Foreground(lipgloss.Color("46")).Render(m.status) +
				"\n\n(Esc to go back)",
		)
	}

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render(m.status))

	for _, re := range m.rowErrs {
		fmt.Fprintf(&b, "\n  line %d: %s", re.Line, re.Message)
	}

	return style.Render(b.String() + "\n\n(Esc to go back)")
}

// Messages

type importResultMsg struct {
	count int
	err   error
}

func (m ImportModel) importCmd(path string) tea.Cmd {
	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return importResultMsg{err: err}
		}
		defer f.Close()

		rows, err := m.importService.Import(importer.FormatCSV, f)
		if err != nil {
			return importResultMsg{err: err}
		}

		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		recs, err := m.feeService.ImportBatch(ctx, rows)
		if err != nil {
			return importResultMsg{err: err}
		}

		return importResultMsg{count: len(recs)}
	}
}
