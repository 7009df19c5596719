package cronjobs

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"prescripto_back_end_go/scheduling"

	"github.com/go-co-op/gocron"
	"github.com/go-gomail/gomail"
	"github.com/jackc/pgx/v4/pgxpool"
)

// AppointmentReminder mails patients ahead of their upcoming
// appointments.
type AppointmentReminder struct {
	Pool *pgxpool.Pool
}

func NewAppointmentReminder(pool *pgxpool.Pool) *AppointmentReminder {
	return &AppointmentReminder{Pool: pool}
}

// StartReminderCron runs the reminder check every 15 minutes.
func (ar *AppointmentReminder) StartReminderCron() *gocron.Scheduler {
	scheduler := gocron.NewScheduler(time.Local)

	scheduler.Every(15).Minutes().Do(func() {
		if err := ar.SendAppointmentReminders(); err != nil {
			log.Printf("Error sending appointment reminders: %v", err)
		}
	})

	scheduler.StartAsync()
	log.Println("Appointment reminder cron job started")

	return scheduler
}

type reminderCandidate struct {
	appointmentID string
	slotDate      string
	slotTime      string
	patientEmail  string
	patientName   string
	doctorName    string
}

// SendAppointmentReminders mails every patient whose live appointment
// starts between 2h and 3h30m from now and has not been reminded yet.
// Without SMTP configuration the sweep is a no-op.
func (ar *AppointmentReminder) SendAppointmentReminders() error {
	host := os.Getenv("SMTP_HOST")
	if host == "" {
		return nil
	}

	rows, err := ar.Pool.Query(context.Background(),
		`SELECT a.appointment_id, a.slot_date, a.slot_time, u.email, u.name, d.name
		 FROM appointments a
		 JOIN users u ON a.user_id = u.user_id
		 JOIN doctors d ON a.doctor_id = d.doctor_id
		 WHERE NOT a.cancelled AND NOT a.is_completed AND NOT a.reminder_sent`)
	if err != nil {
		return fmt.Errorf("failed to query upcoming appointments: %w", err)
	}
	defer rows.Close()

	var candidates []reminderCandidate
	for rows.Next() {
		var cand reminderCandidate
		if err := rows.Scan(&cand.appointmentID, &cand.slotDate, &cand.slotTime,
			&cand.patientEmail, &cand.patientName, &cand.doctorName); err != nil {
			return err
		}
		candidates = append(candidates, cand)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	now := time.Now()
	startWindow := now.Add(2 * time.Hour)
	endWindow := now.Add(3*time.Hour + 30*time.Minute)

	for _, cand := range candidates {
		start, err := scheduling.ParseSlotStart(cand.slotDate, cand.slotTime, now.Location())
		if err != nil {
			log.Printf("Failed to parse slot for appointment %s: %v", cand.appointmentID, err)
			continue
		}
		if start.Before(startWindow) || start.After(endWindow) {
			continue
		}

		if err := ar.sendReminder(cand, start); err != nil {
			log.Printf("Failed to send reminder for appointment %s: %v", cand.appointmentID, err)
			continue
		}

		if _, err := ar.Pool.Exec(context.Background(),
			"UPDATE appointments SET reminder_sent = TRUE WHERE appointment_id = $1",
			cand.appointmentID); err != nil {
			log.Printf("Failed to mark reminder sent for appointment %s: %v", cand.appointmentID, err)
		}
	}
	return nil
}

func (ar *AppointmentReminder) sendReminder(cand reminderCandidate, start time.Time) error {
	port, err := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if err != nil {
		port = 587
	}

	m := gomail.NewMessage()
	m.SetHeader("From", os.Getenv("SMTP_FROM"))
	m.SetHeader("To", cand.patientEmail)
	m.SetHeader("Subject", "Appointment reminder")
	m.SetBody("text/plain", fmt.Sprintf(
		"Hello %s,\n\nThis is a reminder of your appointment with %s today at %s.\n\nSee you soon.",
		cand.patientName, cand.doctorName, start.Format("3:04 PM")))

	d := gomail.NewDialer(os.Getenv("SMTP_HOST"), port, os.Getenv("SMTP_USER"), os.Getenv("SMTP_PASSWORD"))
	return d.DialAndSend(m)
}
