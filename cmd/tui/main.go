package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/bursar/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/bursar/internal/config"
	"github.com/MrJamesThe3rd/bursar/internal/events"
	"github.com/MrJamesThe3rd/bursar/internal/export"
	"github.com/MrJamesThe3rd/bursar/internal/fee"
	"github.com/MrJamesThe3rd/bursar/internal/importer"
	"github.com/MrJamesThe3rd/bursar/internal/logging"
	"github.com/MrJamesThe3rd/bursar/internal/storage"
	"github.com/MrJamesThe3rd/bursar/internal/student"
)

const logFile = "bursar-desk.log"

type model struct {
	feeService     *fee.Service
	studentService *student.Service
	importService  *importer.Service
	exportService  *export.Service
	collectorID    string

	currentView View

	feesView    view.FeesModel
	reportView  view.ReportModel
	studentView view.StudentModel
	importView  view.ImportModel
}

type View int

const (
	ViewMenu    View = 0
	ViewFees    View = 1
	ViewReport  View = 2
	ViewStudent View = 3
	ViewImport  View = 4
)

// eventSink defers the publisher choice until the fee service exists.
type eventSink struct {
	fee.Publisher
}

func newModel(cfg *config.Config, stores *storage.Stores) (model, func()) {
	studentSvc := student.NewService(stores.Students)

	sink := &eventSink{}
	feeSvc := fee.NewService(stores.Fees, studentSvc, sink)
	cleanup := func() {}

	if cfg.QueueEnabled() {
		client := asynq.NewClient(asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		sink.Publisher = events.NewAsynqPublisher(client, cfg.Worker.MaxRetry)
		cleanup = func() { _ = client.Close() }
	} else {
		// No receipts from the desk without a worker.
		sink.Publisher = events.NewInlinePublisher(events.NewHandler(feeSvc, studentSvc, nil))
	}

	impSvc := importer.NewService()
	expSvc := export.NewService(feeSvc, studentSvc)

	return model{
		feeService:     feeSvc,
		studentService: studentSvc,
		importService:  impSvc,
		exportService:  expSvc,
		collectorID:    cfg.Desk.CollectorID,
		currentView:    ViewMenu,
	}, cleanup
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.currentView == ViewMenu {
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewFees
				m.feesView = view.NewFeesModel(m.feeService, m.collectorID)

				return m, m.feesView.Init()
			case "2":
				m.currentView = ViewReport
				m.reportView = view.NewReportModel(m.feeService, m.exportService)

				return m, m.reportView.Init()
			case "3":
				m.currentView = ViewStudent
				m.studentView = view.NewStudentModel(m.feeService, m.studentService)

				return m, m.studentView.Init()
			case "4":
				m.currentView = ViewImport
				m.importView = view.NewImportModel(m.feeService, m.importService)

				return m, m.importView.Init()
			}
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewFees:
		var newModel tea.Model
		newModel, cmd = m.feesView.Update(msg)
		m.feesView = newModel.(view.FeesModel)
	case ViewReport:
		var newModel tea.Model
		newModel, cmd = m.reportView.Update(msg)
		m.reportView = newModel.(view.ReportModel)
	case ViewStudent:
		var newModel tea.Model
		newModel, cmd = m.studentView.Update(msg)
		m.studentView = newModel.(view.StudentModel)
	case ViewImport:
		var newModel tea.Model
		newModel, cmd = m.importView.Update(msg)
		m.importView = newModel.(view.ImportModel)
	}

	return m, cmd
}

func (m model) View() string {
	var current view.View

	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			"Bursar Collector Desk\n\n" +
				"1. Fee Records\n" +
				"2. Collection Report\n" +
				"3. Student Summary\n" +
				"4. Import Fee Assignments\n\n" +
				"q. Quit",
		)
	case ViewFees:
		current = m.feesView
	case ViewReport:
		current = m.reportView
	case ViewStudent:
		current = m.studentView
	case ViewImport:
		current = m.importView
	default:
		return "Unknown View"
	}

	title := lipgloss.NewStyle().Bold(true).PaddingLeft(1).Render(current.Title())
	help := lipgloss.NewStyle().Faint(true).PaddingLeft(1).Render(current.ShortHelp())

	return lipgloss.JoinVertical(lipgloss.Left, title, current.View(), help)
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// The terminal belongs to bubbletea, so logs go to a file.
	logger, err := logging.NewFile(logFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open log file: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	zap.ReplaceGlobals(logger)

	stores, err := storage.Open(context.Background(), cfg)
	if err != nil {
		logger.Error("failed to open storage", zap.Error(err))
		fmt.Fprintf(os.Stderr, "failed to open storage: %v\n", err)
		os.Exit(1)
	}
	defer stores.Close(context.Background())

	m, cleanup := newModel(cfg, stores)
	defer cleanup()

	p := tea.NewProgram(m)
	if _, err := p.Run(); err != nil {
		logger.Error("failed to run TUI", zap.Error(err))
		os.Exit(1)
	}
}
