package view

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Academic years run June to May and are labelled "2025-2026".
const academicYearStart = time.June

// Window is a collection period the desk reports on.
type Window int

const (
	WindowToday Window = iota
	WindowThisMonth
	WindowAcademicYear
	WindowPreviousAcademicYear
	WindowAll
	WindowCustom
)

var windows = []Window{
	WindowToday, WindowThisMonth, WindowAcademicYear, WindowPreviousAcademicYear, WindowAll, WindowCustom,
}

func (w Window) String() string {
	switch w {
	case WindowToday:
		return "Today's Collection"
	case WindowThisMonth:
		return "This Month"
	case WindowAcademicYear:
		return "Current Academic Year"
	case WindowPreviousAcademicYear:
		return "Previous Academic Year"
	case WindowAll:
		return "All Time"
	case WindowCustom:
		return "Custom Range or Academic Year"
	}

	return "Unknown"
}

// AcademicYearOf returns the label of the academic year containing t.
func AcademicYearOf(t time.Time) string {
	first := t.Year()
	if t.Month() < academicYearStart {
		first--
	}

	return fmt.Sprintf("%d-%d", first, first+1)
}

var errAcademicYear = errors.New("academic year must look like 2025-2026")

// academicYearRange returns the whole days covered by a "2025-2026" label.
func academicYearRange(label string) (time.Time, time.Time, error) {
	from, to, ok := strings.Cut(strings.TrimSpace(label), "-")
	if !ok {
		return time.Time{}, time.Time{}, errAcademicYear
	}

	first, err := strconv.Atoi(from)
	if err != nil || len(from) != 4 {
		return time.Time{}, time.Time{}, errAcademicYear
	}

	second, err := strconv.Atoi(to)
	if err != nil || second != first+1 {
		return time.Time{}, time.Time{}, errAcademicYear
	}

	start := time.Date(first, academicYearStart, 1, 0, 0, 0, 0, time.UTC)

	return start, start.AddDate(1, 0, -1), nil
}

// windowRange resolves a preset to its first and last day and a header label.
func windowRange(w Window, now time.Time) (time.Time, time.Time, string) {
	switch w {
	case WindowToday:
		return now, now, "Today " + FormatDate(now)
	case WindowThisMonth:
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return start, now, now.Format("January 2006")
	case WindowAcademicYear, WindowPreviousAcademicYear:
		label := AcademicYearOf(now)
		if w == WindowPreviousAcademicYear {
			label = AcademicYearOf(now.AddDate(-1, 0, 0))
		}

		start, end, _ := academicYearRange(label)

		return start, end, "Academic Year " + label
	}

	return time.Time{}, time.Time{}, ""
}

// normalizeDateRange widens the range to whole UTC days, end included.
func normalizeDateRange(start, end time.Time) (time.Time, time.Time) {
	return time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC),
		time.Date(end.Year(), end.Month(), end.Day(), 23, 59, 59, 999999999, time.UTC)
}

// WindowSelectedMsg carries the chosen collection window. Start and End are
// zero when All is set.
type WindowSelectedMsg struct {
	Start time.Time
	End   time.Time
	All   bool
	Label string
}

func selected(start, end time.Time, label string) tea.Cmd {
	start, end = normalizeDateRange(start, end)

	return func() tea.Msg {
		return WindowSelectedMsg{Start: start, End: end, Label: label}
	}
}

// WindowPicker lists the collection windows and takes a custom range, either
// two dates or one academic year label.
type WindowPicker struct {
	now     func() time.Time
	cursor  int
	custom  bool
	fromIn  textinput.Model
	toIn    textinput.Model
	focusTo bool
	err     error
	initial Window
}

func NewWindowPicker(initial Window) WindowPicker {
	from := textinput.New()
	from.Placeholder = "YYYY-MM-DD or 2025-2026"
	from.CharLimit = 10
	from.Width = 24
	from.Prompt = "From: "

	to := textinput.New()
	to.Placeholder = "YYYY-MM-DD"
	to.CharLimit = 10
	to.Width = 12
	to.Prompt = "To:   "

	return WindowPicker{
		now:     time.Now,
		cursor:  int(initial),
		fromIn:  from,
		toIn:    to,
		initial: initial,
	}
}

func (m WindowPicker) Init() tea.Cmd {
	return nil
}

func (m WindowPicker) Update(msg tea.Msg) (WindowPicker, tea.Cmd) {
	key, isKey := msg.(tea.KeyMsg)

	switch {
	case isKey && !m.custom:
		return m.updateList(key)
	case isKey:
		return m.updateCustom(key)
	case m.custom:
		return m.updateInputs(msg)
	}

	return m, nil
}

func (m WindowPicker) updateList(key tea.KeyMsg) (WindowPicker, tea.Cmd) {
	switch key.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(windows)-1 {
			m.cursor++
		}
	case "enter":
		w := windows[m.cursor]

		switch w {
		case WindowCustom:
			m.custom = true
			m.focusTo = false
			m.fromIn.Focus()

			return m, textinput.Blink
		case WindowAll:
			return m, func() tea.Msg { return WindowSelectedMsg{All: true, Label: "All time"} }
		}

		start, end, label := windowRange(w, m.now())

		return m, selected(start, end, label)
	}

	return m, nil
}

func (m WindowPicker) updateCustom(key tea.KeyMsg) (WindowPicker, tea.Cmd) {
	switch key.String() {
	case "tab", "shift+tab":
		m.focusTo = !m.focusTo
		m.fromIn.Blur()
		m.toIn.Blur()

		if m.focusTo {
			m.toIn.Focus()
		} else {
			m.fromIn.Focus()
		}

		return m, textinput.Blink
	case "esc":
		m.custom = false
		m.err = nil

		return m, nil
	case "enter":
		return m.submitCustom()
	}

	return m.updateInputs(key)
}

func (m WindowPicker) submitCustom() (WindowPicker, tea.Cmd) {
	from := strings.TrimSpace(m.fromIn.Value())
	to := strings.TrimSpace(m.toIn.Value())

	// A lone academic year label stands for its whole June-May span.
	if to == "" && strings.Count(from, "-") == 1 {
		start, end, err := academicYearRange(from)
		if err != nil {
			m.err = err
			return m, nil
		}

		m.err = nil

		return m, selected(start, end, "Academic Year "+from)
	}

	start, err := time.Parse(time.DateOnly, from)
	if err != nil {
		m.err = errors.New("invalid start date (YYYY-MM-DD)")
		return m, nil
	}

	end, err := time.Parse(time.DateOnly, to)
	if err != nil {
		m.err = errors.New("invalid end date (YYYY-MM-DD)")
		return m, nil
	}

	if end.Before(start) {
		m.err = errors.New("end date is before start date")
		return m, nil
	}

	m.err = nil

	return m, selected(start, end, from+" to "+to)
}

func (m WindowPicker) updateInputs(msg tea.Msg) (WindowPicker, tea.Cmd) {
	var fromCmd, toCmd tea.Cmd

	m.fromIn, fromCmd = m.fromIn.Update(msg)
	m.toIn, toCmd = m.toIn.Update(msg)

	return m, tea.Batch(fromCmd, toCmd)
}

func (m WindowPicker) View() string {
	errStr := ""
	if m.err != nil {
		errStr = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render("\n\nError: " + m.err.Error())
	}

	if m.custom {
		return fmt.Sprintf(
			"Collection window:\n\n%s\n%s\n\nLeave To empty to report a whole academic year.\n(Enter to confirm, Tab to switch, Esc to back)%s",
			m.fromIn.View(), m.toIn.View(), errStr,
		)
	}

	var b strings.Builder

	b.WriteString("Collection window:\n\n")

	for i, w := range windows {
		cursor := " "
		if i == m.cursor {
			cursor = ">"
		}

		fmt.Fprintf(&b, "%s %s\n", cursor, w)
	}

	b.WriteString("\n(Enter to select, Esc to back)")

	return b.String() + errStr
}

// IsSelecting reports whether the preset list, not the custom form, is showing.
func (m WindowPicker) IsSelecting() bool {
	return !m.custom
}

func (m *WindowPicker) Reset() {
	m.custom = false
	m.cursor = int(m.initial)
	m.err = nil
	m.fromIn.SetValue("")
	m.toIn.SetValue("")
}
