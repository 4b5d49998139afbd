package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/MrJamesThe3rd/bursar/internal/money"
)

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// sender is the part of *gomail.Dialer the mailer uses.
type sender interface {
	DialAndSend(m ...*gomail.Message) error
}

type Mailer struct {
	dialer    sender
	from      string
	formatter *money.Formatter
}

func NewMailer(cfg SMTPConfig, formatter *money.Formatter) *Mailer {
	return &Mailer{
		dialer:    gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:      cfg.From,
		formatter: formatter,
	}
}

// Receipt is the content of a payment acknowledgement.
type Receipt struct {
	StudentName   string
	RollNumber    string
	FeeType       string
	AcademicYear  string
	Amount        money.Amount
	PaidAmount    money.Amount
	DueAmount     money.Amount
	Status        string
	Mode          string
	TransactionID string
	PaidAt        time.Time
}

func (m *Mailer) Subject(r Receipt) string {
	return fmt.Sprintf("Payment received: %s fee %s", r.FeeType, r.AcademicYear)
}

func (m *Mailer) Body(r Receipt) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Dear %s,\n\n", r.StudentName)
	fmt.Fprintf(&b, "We received your payment of %s towards the %s fee for %s.\n\n",
		m.formatter.Format(r.Amount), r.FeeType, r.AcademicYear)
	fmt.Fprintf(&b, "Roll number:    %s\n", r.RollNumber)
	fmt.Fprintf(&b, "Payment date:   %s\n", r.PaidAt.Format("02 Jan 2006 15:04"))
	fmt.Fprintf(&b, "Payment mode:   %s\n", r.Mode)

	if r.TransactionID != "" {
		fmt.Fprintf(&b, "Transaction:    %s\n", r.TransactionID)
	}

	fmt.Fprintf(&b, "Paid to date:   %s\n", m.formatter.Format(r.PaidAmount))
	fmt.Fprintf(&b, "Outstanding:    %s\n", m.formatter.Format(r.DueAmount))
	fmt.Fprintf(&b, "Status:         %s\n", r.Status)

	return b.String()
}

// SendReceipt mails r to the given address. gomail has no context support, so
// ctx is only checked before dialing.
func (m *Mailer) SendReceipt(ctx context.Context, to string, r Receipt) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", m.Subject(r))
	msg.SetBody("text/plain", m.Body(r))

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("sending receipt to %s: %w", to, err)
	}

	return nil
}
