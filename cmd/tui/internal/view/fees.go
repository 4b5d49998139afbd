package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/bursar/internal/fee"
	"github.com/MrJamesThe3rd/bursar/internal/money"
)

type feesState int

const (
	feesStateBrowse feesState = iota
	feesStateCollect
)

var statusFilters = []struct {
	label    string
	statuses []fee.Status
	due      bool
}{
	{label: "All"},
	{label: "Pending", statuses: []fee.Status{fee.StatusPending}},
	{label: "Partial", statuses: []fee.Status{fee.StatusPartial}},
	{label: "Paid", statuses: []fee.Status{fee.StatusPaid}},
	{label: "Due", due: true},
}

type FeesModel struct {
	CommonModel
	feeService  *fee.Service
	collectorID string

	state feesState
	table table.Model
	recs  []*fee.Record
	form  *huh.Form

	statusFilterIdx int

	loading bool
	err     error
	status  string

	// Form bindings
	formAmount  string
	formMode    fee.PaymentMode
	formTxID    string
	formRemarks string
}

func NewFeesModel(feeSvc *fee.Service, collectorID string) FeesModel {
	columns := []table.Column{
		{Title: "Due Date", Width: 12},
		{Title: "Student", Width: 36},
		{Title: "Type", Width: 13},
		{Title: "Year", Width: 10},
		{Title: "Total", Width: 12},
		{Title: "Paid", Width: 12},
		{Title: "Due", Width: 12},
		{Title: "Status", Width: 8},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return FeesModel{
		feeService:  feeSvc,
		collectorID: collectorID,
		table:       t,
		loading:     true,
	}
}

func (m FeesModel) Title() string { return "Fee Records" }
func (m FeesModel) ShortHelp() string {
	if m.state == feesStateCollect {
		return "Navigate form | Esc: cancel"
	}
	return "Esc: back | p: collect payment | s: status filter | r: refresh"
}

func (m FeesModel) Init() tea.Cmd {
	return m.loadFeesCmd()
}

func (m FeesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadFeesMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.recs = msg.recs
		m.refreshTable()
		return m, nil

	case collectMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Payment failed: %v", msg.err)
		} else {
			m.status = fmt.Sprintf("Collected %s, now %s (due %s)",
				FormatAmount(msg.amount), msg.rec.Status(), FormatAmount(msg.rec.Due()))
		}
		m.state = feesStateBrowse
		m.form = nil
		m.table.Focus()
		return m, m.loadFeesCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil
	}

	switch m.state {
	case feesStateBrowse:
		return m.updateBrowse(msg)
	case feesStateCollect:
		return m.updateCollect(msg)
	}

	return m, nil
}

func (m FeesModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadFeesCmd()
		case "p":
			return m.enterCollectMode()
		case "s":
			m.statusFilterIdx = (m.statusFilterIdx + 1) % len(statusFilters)
			return m, m.loadFeesCmd()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m FeesModel) selected() *fee.Record {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.recs) {
		return nil
	}

	return m.recs[idx]
}

func (m FeesModel) enterCollectMode() (tea.Model, tea.Cmd) {
	rec := m.selected()
	if rec == nil {
		return m, nil
	}

	if rec.Due() <= 0 {
		m.status = "Nothing due on this record."
		return m, nil
	}

	m.formAmount = FormatAmount(rec.Due())
	m.formMode = fee.PaymentModeCash
	m.formTxID = ""
	m.formRemarks = ""

	modes := make([]huh.Option[fee.PaymentMode], 0, len(fee.PaymentModes))
	for _, pm := range fee.PaymentModes {
		modes = append(modes, huh.NewOption(string(pm), pm))
	}

	due := rec.Due()

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("amount").
				Title("Amount").
				Value(&m.formAmount).
				Validate(func(s string) error {
					a, err := money.Parse(s)
					if err != nil {
						return fmt.Errorf("not an amount")
					}
					if a <= 0 {
						return fmt.Errorf("amount must be greater than 0")
					}
					if a > due {
						return fmt.Errorf("exceeds due amount %s", FormatAmount(due))
					}
					return nil
				}),

			huh.NewSelect[fee.PaymentMode]().
				Key("mode").
				Title("Payment Mode").
				Options(modes...).
				Value(&m.formMode),

			huh.NewInput().
				Key("transaction_id").
				Title("Transaction ID").
				Placeholder("optional").
				Value(&m.formTxID),

			huh.NewInput().
				Key("remarks").
				Title("Remarks").
				Value(&m.formRemarks),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = feesStateCollect
	m.table.Blur()
	return m, m.form.Init()
}

func (m FeesModel) updateCollect(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			m.state = feesStateBrowse
			m.form = nil
			m.table.Focus()
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

	return m, m.collectCmd()
}

func (m FeesModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading fee records...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	header := fmt.Sprintf("Filter: [s] Status: %s | Collector: %s",
		activeStyle(statusFilters[m.statusFilterIdx].label),
		activeStyle(m.collectorID),
	)

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		tableView,
	)

	if m.state == feesStateCollect && m.form != nil {
		info := ""
		if rec := m.selected(); rec != nil {
			info = fmt.Sprintf("%s %s\nPaid %s of %s",
				rec.FeeType, rec.AcademicYear, FormatAmount(rec.PaidAmount), FormatAmount(rec.TotalAmount))
		}

		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(48).
			Render(fmt.Sprintf("Collect Payment\n\n%s\n\n%s", info, m.form.View()))

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func activeStyle(s string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Render(s)
}

func (m *FeesModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.recs))
	for _, rec := range m.recs {
		rows = append(rows, table.Row{
			FormatDate(rec.DueDate),
			rec.StudentID.String(),
			string(rec.FeeType),
			rec.AcademicYear,
			FormatAmount(rec.TotalAmount),
			FormatAmount(rec.PaidAmount),
			FormatAmount(rec.Due()),
			string(rec.Status()),
		})
	}
	m.table.SetRows(rows)
}

// Messages

type loadFeesMsg struct {
	recs []*fee.Record
	err  error
}

func (m FeesModel) loadFeesCmd() tea.Cmd {
	f := statusFilters[m.statusFilterIdx]

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if f.due {
			recs, err := m.feeService.DueList(ctx)
			return loadFeesMsg{recs: recs, err: err}
		}

		recs, err := m.feeService.List(ctx, fee.ListFilter{Statuses: f.statuses})
		return loadFeesMsg{recs: recs, err: err}
	}
}

type collectMsg struct {
	rec    *fee.Record
	amount money.Amount
	err    error
}

func (m FeesModel) collectCmd() tea.Cmd {
	rec := m.selected()
	if rec == nil {
		return nil
	}

	params := fee.PaymentParams{
		RecordID:      rec.ID,
		Mode:          m.formMode,
		TransactionID: strings.TrimSpace(m.formTxID),
		Remarks:       strings.TrimSpace(m.formRemarks),
		CollectedBy:   m.collectorID,
	}
	amount := m.formAmount

	return func() tea.Msg {
		a, err := money.Parse(amount)
		if err != nil {
			return collectMsg{err: err}
		}

		params.Amount = a

		ctx, cancel := DbCtx()
		defer cancel()

		updated, err := m.feeService.CollectPayment(ctx, params)
		return collectMsg{rec: updated, amount: a, err: err}
	}
}
