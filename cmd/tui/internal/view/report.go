package view

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/bursar/internal/export"
	"github.com/MrJamesThe3rd/bursar/internal/fee"
)

type reportState int

const (
	reportStateWindow reportState = iota
	reportStateLoading
	reportStateTable
	reportStatePath
	reportStateExporting
)

type ReportModel struct {
	CommonModel
	feeService    *fee.Service
	exportService *export.Service

	state        reportState
	err          error
	windowPicker WindowPicker

	filter fee.ReportFilter
	label  string
	report *fee.Report
	table  table.Model

	form    *huh.Form
	path    string
	spinner spinner.Model
	status  string
}

func NewReportModel(feeSvc *fee.Service, exportSvc *export.Service) ReportModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "Date", Width: 12},
			{Title: "Student", Width: 36},
			{Title: "Type", Width: 13},
			{Title: "Mode", Width: 13},
			{Title: "Collected By", Width: 14},
			{Title: "Amount", Width: 12},
		}),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	return ReportModel{
		feeService:    feeSvc,
		exportService: exportSvc,
		state:         reportStateWindow,
		windowPicker:  NewWindowPicker(WindowToday),
		table:         t,
		path:          "./exports",
		spinner:       s,
	}
}

func (m ReportModel) Title() string { return "Collection Report" }

func (m ReportModel) ShortHelp() string {
	switch m.state {
	case reportStateTable:
		return "Esc: window | x: export CSV"
	case reportStateExporting, reportStateLoading:
		return "Working..."
	}
	return "Esc: back | Enter: confirm"
}

func (m ReportModel) Init() tea.Cmd {
	return nil
}

func (m ReportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case WindowSelectedMsg:
		m.label = msg.Label
		m.filter = fee.ReportFilter{}
		if !msg.All {
			start, end := msg.Start, msg.End
			m.filter.Start = &start
			m.filter.End = &end
		}
		m.state = reportStateLoading
		return m, tea.Batch(m.spinner.Tick, m.loadReportCmd())

	case reportLoadedMsg:
		m.state = reportStateTable
		m.err = msg.err
		m.report = msg.report
		m.refreshTable()
		return m, nil

	case exportDoneMsg:
		m.state = reportStateTable
		if msg.err != nil {
			m.status = fmt.Sprintf("Export failed: %v", msg.err)
		} else {
			m.status = fmt.Sprintf("Exported %d payments to %s", msg.count, msg.file)
		}
		return m, nil
	}

	switch m.state {
	case reportStateWindow:
		return m.updateWindow(msg)
	case reportStateTable:
		return m.updateTable(msg)
	case reportStatePath:
		return m.updatePath(msg)
	case reportStateLoading, reportStateExporting:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m ReportModel) updateWindow(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc && m.windowPicker.IsSelecting() {
			return m, Back
		}
	}

	var cmd tea.Cmd
	m.windowPicker, cmd = m.windowPicker.Update(msg)
	return m, cmd
}

func (m ReportModel) updateTable(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			m.state = reportStateWindow
			m.status = ""
			m.windowPicker.Reset()
			return m, nil
		case "x":
			if m.report == nil {
				return m, nil
			}
			m.form = m.buildPathForm()
			m.state = reportStatePath
			return m, m.form.Init()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m ReportModel) updatePath(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			m.state = reportStateTable
			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.state = reportStateExporting
	return m, tea.Batch(m.spinner.Tick, m.exportCmd(m.path))
}

func (m ReportModel) buildPathForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("path").
				Title("Output Directory").
				Description("Directory will be created if it doesn't exist").
				Placeholder("./exports").
				Value(&m.path),
		),
	).WithWidth(50).WithShowHelp(false)
}

func (m *ReportModel) refreshTable() {
	if m.report == nil {
		m.table.SetRows(nil)
		return
	}

	rows := make([]table.Row, 0, len(m.report.Payments))
	for _, p := range m.report.Payments {
		rows = append(rows, table.Row{
			FormatDate(p.PaidAt),
			p.StudentID.String(),
			string(p.FeeType),
			string(p.Mode),
			p.CollectedBy,
			FormatAmount(p.Amount),
		})
	}
	m.table.SetRows(rows)
}

func (m ReportModel) View() string {
	switch m.state {
	case reportStateWindow:
		return lipgloss.NewStyle().Padding(1).Render(m.windowPicker.View())
	case reportStateLoading:
		return lipgloss.NewStyle().Padding(1).Render(m.spinner.View() + " Loading payments...")
	case reportStateExporting:
		return lipgloss.NewStyle().Padding(1).Render(m.spinner.View() + " Writing CSV...")
	case reportStatePath:
		return lipgloss.NewStyle().Padding(1).Render(m.form.View())
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(1).Render(
			lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render(fmt.Sprintf("Error: %v", m.err)),
		)
	}

	header := fmt.Sprintf("%s | %s payments | Total %s",
		activeStyle(m.label),
		activeStyle(fmt.Sprint(m.report.Count)),
		activeStyle(FormatAmount(m.report.TotalCollection)),
	)

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240")).
			Render(m.table.View()),
	)

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

// Messages

type reportLoadedMsg struct {
	report *fee.Report
	err    error
}

func (m ReportModel) loadReportCmd() tea.Cmd {
	filter := m.filter

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		report, err := m.feeService.CollectionReport(ctx, filter)
		return reportLoadedMsg{report: report, err: err}
	}
}

type exportDoneMsg struct {
	file  string
	count int
	err   error
}

const exportTimeout = 2 * time.Minute

func (m ReportModel) exportCmd(dir string) tea.Cmd {
	filter := m.filter

	return func() tea.Msg {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return exportDoneMsg{err: fmt.Errorf("creating output directory: %w", err)}
		}

		name := filepath.Join(dir, export.Filename(filter, time.Now()))

		f, err := os.Create(name)
		if err != nil {
			return exportDoneMsg{err: fmt.Errorf("creating export file: %w", err)}
		}
		defer f.Close()

		ctx, cancel := context.WithTimeout(context.Background(), exportTimeout)
		defer cancel()

		report, err := m.exportService.WriteCollectionCSV(ctx, f, filter)
		if err != nil {
			return exportDoneMsg{err: err}
		}

		return exportDoneMsg{file: name, count: report.Count}
	}
}
