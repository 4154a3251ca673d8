package services

import (
	"fmt"
	"log"
	"sync"

	"gopkg.in/gomail.v2"

	"github.com/mindhaven/mindhaven-backend/internal/models"
)

// Mailer sends transactional email over SMTP. Delivery is best effort:
// failures are logged and never surfaced to the request path.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
}

var (
	mailer   *Mailer
	mailerMu sync.RWMutex
)

// InitMailer configures the global mailer. An empty host disables email
// entirely, which is the expected state in local development.
func InitMailer(host string, port int, username, password, from string) {
	mailerMu.Lock()
	defer mailerMu.Unlock()

	if host == "" {
		mailer = nil
		log.Println("⚠️ SMTP not configured, email notifications disabled")
		return
	}

	mailer = &Mailer{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
	log.Println("✅ Email notifications enabled")
}

func getMailer() *Mailer {
	mailerMu.RLock()
	defer mailerMu.RUnlock()
	return mailer
}

func (m *Mailer) send(to, subject, body string) {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		log.Printf("Failed to send email to %s: %v", to, err)
	}
}

func appointmentWhen(appt *models.Appointment) string {
	return fmt.Sprintf("%s (%s) from %s to %s",
		appt.Date.Format("2006-01-02"),
		models.WeekdayName(models.ISOWeekday(appt.Date)),
		appt.Start.String(),
		appt.End.String(),
	)
}

// NotifyAppointmentCreated emails both parties about a new booking.
// Runs in the background so booking latency never depends on SMTP.
func NotifyAppointmentCreated(appt *models.Appointment, client, therapist *models.User) {
	m := getMailer()
	if m == nil {
		return
	}

	when := appointmentWhen(appt)
	go func() {
		m.send(client.Email,
			"Appointment requested",
			fmt.Sprintf("Hi %s,\n\nYour appointment with %s has been requested for %s.\nYou will be notified once the therapist confirms it.\n\nMindHaven",
				client.Username, therapist.Username, when))
		m.send(therapist.Email,
			"New appointment request",
			fmt.Sprintf("Hi %s,\n\n%s has requested an appointment for %s.\nPlease confirm or decline it from your dashboard.\n\nMindHaven",
				therapist.Username, client.Username, when))
	}()
}

// NotifyAppointmentCancelled emails both parties when a booking is cancelled.
func NotifyAppointmentCancelled(appt *models.Appointment, client, therapist *models.User) {
	m := getMailer()
	if m == nil {
		return
	}

	when := appointmentWhen(appt)
	go func() {
		m.send(client.Email,
			"Appointment cancelled",
			fmt.Sprintf("Hi %s,\n\nYour appointment with %s on %s has been cancelled.\n\nMindHaven",
				client.Username, therapist.Username, when))
		m.send(therapist.Email,
			"Appointment cancelled",
			fmt.Sprintf("Hi %s,\n\nThe appointment with %s on %s has been cancelled.\n\nMindHaven",
				therapist.Username, client.Username, when))
	}()
}
