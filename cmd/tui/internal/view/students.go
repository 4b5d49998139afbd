package view

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/bursar/internal/fee"
	"github.com/MrJamesThe3rd/bursar/internal/student"
)

type StudentModel struct {
	CommonModel
	feeService     *fee.Service
	studentService *student.Service

	refInput textinput.Model

	student *student.Student
	summary *fee.Summary

	loading bool
	status  string
}

func NewStudentModel(feeSvc *fee.Service, studentSvc *student.Service) StudentModel {
	ti := textinput.New()
	ti.Placeholder = "student id or roll number"
	ti.Width = 40
	ti.Focus()

	return StudentModel{
		feeService:     feeSvc,
		studentService: studentSvc,
		refInput:       ti,
	}
}

func (m StudentModel) Title() string     { return "Student Summary" }
func (m StudentModel) ShortHelp() string { return "Enter: look up | Esc: back" }

func (m StudentModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m StudentModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "enter":
			ref := strings.TrimSpace(m.refInput.Value())
			if ref == "" {
				return m, nil
			}
			m.loading = true
			m.status = ""
			return m, m.lookupCmd(ref)
		}

	case lookupMsg:
		m.loading = false
		if msg.err != nil {
			m.student = nil
			m.summary = nil
			if errors.Is(msg.err, student.ErrNotFound) {
				m.status = "No student found."
			} else {
				m.status = fmt.Sprintf("Error: %v", msg.err)
			}
			return m, nil
		}

		m.student = msg.student
		m.summary = msg.summary
		return m, nil
	}

	m.refInput, cmd = m.refInput.Update(msg)

	return m, cmd
}

func (m StudentModel) View() string {
	s := fmt.Sprintf("Look up student:\n%s\n\n", m.refInput.View())

	switch {
	case m.loading:
		s += "Loading..."
	case m.status != "":
		s += m.status
	case m.student != nil:
		s += m.viewSummary()
	}

	return lipgloss.NewStyle().Padding(2).Render(s + "\n\n(Esc to back)")
}

func (m StudentModel) viewSummary() string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s (%s)  %s sem %d  fee status: %s\n\n",
		m.student.Name, m.student.RollNumber, m.student.Course, m.student.Semester,
		activeStyle(string(m.summary.Status())))

	if len(m.summary.Records) == 0 {
		b.WriteString("No fee records.\n")
	}

	for _, rec := range m.summary.Records {
		fmt.Fprintf(&b, "%-13s %-10s total %12s  paid %12s  due %12s  [%s]\n",
			rec.FeeType, rec.AcademicYear,
			FormatAmount(rec.TotalAmount), FormatAmount(rec.PaidAmount), FormatAmount(rec.Due()),
			rec.Status())
	}

	fmt.Fprintf(&b, "\nTotal %s | Paid %s | Due %s",
		FormatAmount(m.summary.TotalFees), FormatAmount(m.summary.TotalPaid), FormatAmount(m.summary.TotalDue))

	return b.String()
}

type lookupMsg struct {
	student *student.Student
	summary *fee.Summary
	err     error
}

func (m StudentModel) lookupCmd(ref string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		st, err := m.studentService.Resolve(ctx, ref)
		if err != nil {
			return lookupMsg{err: err}
		}

		sum, err := m.feeService.StudentSummary(ctx, st.ID)
		if err != nil {
			return lookupMsg{err: err}
		}

		return lookupMsg{student: st, summary: sum}
	}
}
