package service

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"html/template"
	"strings"

	"rental-booking-backend/internal/domain"
	"rental-booking-backend/internal/logger"
	"rental-booking-backend/internal/pricing"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"gopkg.in/gomail.v2"
)

// Message is one outbound email with plain text and HTML bodies.
type Message struct {
	To      string
	ToName  string
	Subject string
	Text    string
	HTML    string
}

// MailSender delivers a Message through one provider.
type MailSender interface {
	Send(ctx context.Context, msg Message) error
}

type smtpSender struct {
	dialer   *gomail.Dialer
	from     string
	fromName string
}

func NewSMTPSender(host string, port int, username, password, from, fromName string) MailSender {
	d := gomail.NewDialer(host, port, username, password)
	d.TLSConfig = &tls.Config{ServerName: host}
	return &smtpSender{dialer: d, from: from, fromName: fromName}
}

func (s *smtpSender) Send(ctx context.Context, msg Message) error {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.from, s.fromName)
	m.SetAddressHeader("To", msg.To, msg.ToName)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Text)
	if msg.HTML != "" {
		m.AddAlternative("text/html", msg.HTML)
	}

	logger.ExternalServiceCall("smtp", "DialAndSend", "to", msg.To, "subject", msg.Subject)
	err := s.dialer.DialAndSend(m)
	logger.ExternalServiceResult("smtp", "DialAndSend", err, "to", msg.To)
	if err != nil {
		return fmt.Errorf("failed to send email via gomail: %w", err)
	}
	return nil
}

type sendGridSender struct {
	client   *sendgrid.Client
	from     string
	fromName string
}

func NewSendGridSender(apiKey, from, fromName string) MailSender {
	return &sendGridSender{client: sendgrid.NewSendClient(apiKey), from: from, fromName: fromName}
}

func (s *sendGridSender) Send(ctx context.Context, msg Message) error {
	message := mail.NewSingleEmail(
		mail.NewEmail(s.fromName, s.from),
		msg.Subject,
		mail.NewEmail(msg.ToName, msg.To),
		msg.Text,
		msg.HTML,
	)

	logger.ExternalServiceCall("sendgrid", "Send", "to", msg.To, "subject", msg.Subject)
	response, err := s.client.SendWithContext(ctx, message)
	if err == nil && response.StatusCode >= 400 {
		err = fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
	}
	logger.ExternalServiceResult("sendgrid", "Send", err, "to", msg.To)
	if err != nil {
		return fmt.Errorf("failed to send email via sendgrid: %w", err)
	}
	return nil
}

type logSender struct{}

// NewLogSender writes emails to the application log instead of sending them.
func NewLogSender() MailSender {
	return logSender{}
}

func (logSender) Send(ctx context.Context, msg Message) error {
	logger.Info("Email not sent, log provider configured", "to", msg.To, "subject", msg.Subject, "body", msg.Text)
	return nil
}

// EmailKind selects which booking email is built.
type EmailKind string

const (
	EmailBookingConfirmed EmailKind = "booking_confirmed"
	EmailPickupReminder   EmailKind = "pickup_reminder"
	EmailBalanceReminder  EmailKind = "balance_reminder"
)

type emailNotifier struct {
	sender MailSender
}

func NewEmailNotifier(sender MailSender) Notifier {
	return &emailNotifier{sender: sender}
}

func (n *emailNotifier) BookingConfirmed(ctx context.Context, b domain.BookingSnapshot) error {
	return n.send(ctx, EmailBookingConfirmed, b)
}

func (n *emailNotifier) PickupReminder(ctx context.Context, b domain.BookingSnapshot) error {
	return n.send(ctx, EmailPickupReminder, b)
}

func (n *emailNotifier) BalanceReminder(ctx context.Context, b domain.BookingSnapshot) error {
	return n.send(ctx, EmailBalanceReminder, b)
}

func (n *emailNotifier) send(ctx context.Context, kind EmailKind, b domain.BookingSnapshot) error {
	if b.Customer.Email == "" {
		return domain.Validation("booking %s has no customer email", b.BookingNumber)
	}
	msg, err := BuildBookingEmail(kind, b)
	if err != nil {
		return err
	}
	return n.sender.Send(ctx, msg)
}

var emailSubjects = map[EmailKind]string{
	EmailBookingConfirmed: "Your booking %s is registered",
	EmailPickupReminder:   "Reminder: pickup tomorrow for booking %s",
	EmailBalanceReminder:  "Outstanding balance for booking %s",
}

var emailIntros = map[EmailKind]string{
	EmailBookingConfirmed: "Thank you for your booking. Here is your summary.",
	EmailPickupReminder:   "This is a reminder that your rental starts tomorrow.",
	EmailBalanceReminder:  "Your rental is coming up and part of the price is still pending.",
}

var bookingEmailHTML = template.Must(template.New("booking").Parse(`<html>
<body>
<p>Hello {{.Name}},</p>
<p>{{.Intro}}</p>
<table>
<tr><td>Booking</td><td><strong>{{.Number}}</strong></td></tr>
<tr><td>Vehicle</td><td>{{.Vehicle}}</td></tr>
<tr><td>Pickup</td><td>{{.Pickup}}</td></tr>
<tr><td>Dropoff</td><td>{{.Dropoff}}</td></tr>
<tr><td>Days</td><td>{{.Days}}</td></tr>
{{range .Lines}}<tr><td>{{.Label}}</td><td>{{.Amount}}</td></tr>
{{end}}<tr><td><strong>Total</strong></td><td><strong>{{.Total}}</strong></td></tr>
<tr><td>Paid</td><td>{{.Paid}}</td></tr>
<tr><td>Balance</td><td>{{.Balance}}</td></tr>
</table>
</body>
</html>`))

type emailLine struct {
	Label  string
	Amount string
}

type bookingEmailData struct {
	Name    string
	Intro   string
	Number  string
	Vehicle string
	Pickup  string
	Dropoff string
	Days    int
	Lines   []emailLine
	Total   string
	Paid    string
	Balance string
}

// BuildBookingEmail renders the email of the given kind for a booking.
func BuildBookingEmail(kind EmailKind, b domain.BookingSnapshot) (Message, error) {
	subject, ok := emailSubjects[kind]
	if !ok {
		return Message{}, fmt.Errorf("unknown email kind %q", kind)
	}

	data := bookingEmailData{
		Name:    b.Customer.Name,
		Intro:   emailIntros[kind],
		Number:  b.BookingNumber,
		Vehicle: b.VehicleName,
		Pickup:  stop(b.PickupDate.Format(domain.DateLayout), b.PickupTime, b.PickupLocation),
		Dropoff: stop(b.DropoffDate.Format(domain.DateLayout), b.DropoffTime, b.DropoffLocation),
		Days:    b.Days,
		Total:   pricing.FormatCents(b.TotalCents),
		Paid:    pricing.FormatCents(b.AmountPaidCents),
		Balance: pricing.FormatCents(b.BalanceCents),
	}
	data.Lines = append(data.Lines, emailLine{Label: "Base price", Amount: pricing.FormatCents(b.BasePriceCents)})
	for _, e := range b.Extras {
		data.Lines = append(data.Lines, emailLine{
			Label:  fmt.Sprintf("%s x%d", e.ExtraName, e.Quantity),
			Amount: pricing.FormatCents(e.TotalPriceCents),
		})
	}
	if b.DiscountCents > 0 {
		data.Lines = append(data.Lines, emailLine{
			Label:  fmt.Sprintf("Discount (%s)", b.CouponCode),
			Amount: "-" + pricing.FormatCents(b.DiscountCents),
		})
	}

	var text strings.Builder
	fmt.Fprintf(&text, "Hello %s,\n\n%s\n\n", data.Name, data.Intro)
	fmt.Fprintf(&text, "Booking: %s\nVehicle: %s\nPickup: %s\nDropoff: %s\nDays: %d\n\n", data.Number, data.Vehicle, data.Pickup, data.Dropoff, data.Days)
	for _, l := range data.Lines {
		fmt.Fprintf(&text, "%s: %s\n", l.Label, l.Amount)
	}
	fmt.Fprintf(&text, "Total: %s\nPaid: %s\nBalance: %s\n", data.Total, data.Paid, data.Balance)

	var html bytes.Buffer
	if err := bookingEmailHTML.Execute(&html, data); err != nil {
		return Message{}, fmt.Errorf("failed to render booking email: %w", err)
	}

	return Message{
		To:      b.Customer.Email,
		ToName:  b.Customer.Name,
		Subject: fmt.Sprintf(subject, b.BookingNumber),
		Text:    text.String(),
		HTML:    html.String(),
	}, nil
}

func stop(date, hhmm, location string) string {
	s := date + " " + hhmm
	if location != "" {
		s += ", " + location
	}
	return s
}
