package services

import (
	"context"
	"time"

	"prescripto_back_end_go/models"
	"prescripto_back_end_go/scheduling"

	"github.com/jackc/pgx/v4/pgxpool"
)

const appointmentSelect = `
	SELECT
		a.appointment_id, a.doctor_id, a.user_id, a.slot_date, a.slot_time,
		a.amount, a.cancelled, a.is_completed, a.payment, a.created_at,
		d.name, d.speciality, d.image, d.fees, d.address_line1, d.address_line2,
		u.name, u.image, u.dob
	FROM appointments a
	JOIN doctors d ON a.doctor_id = d.doctor_id
	JOIN users u ON a.user_id = u.user_id
`

// queryAppointments runs appointmentSelect with an optional WHERE clause
// and tags each row's derived expired status. Rows come back in
// insertion order.
func queryAppointments(ctx context.Context, pool *pgxpool.Pool, where string, args ...interface{}) ([]models.Appointment, error) {
	query := appointmentSelect
	if where != "" {
		query += " WHERE " + where
	}
	query += " ORDER BY a.seq"

	rows, err := pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	now := time.Now()
	var appointments []models.Appointment
	for rows.Next() {
		var a models.Appointment
		var doc models.DocData
		var user models.UserData
		err := rows.Scan(
			&a.AppointmentID, &a.DocID, &a.UserID, &a.SlotDate, &a.SlotTime,
			&a.Amount, &a.Cancelled, &a.IsCompleted, &a.Payment, &a.CreatedAt,
			&doc.Name, &doc.Speciality, &doc.Image, &doc.Fees, &doc.Address.Line1, &doc.Address.Line2,
			&user.Name, &user.Image, &user.Dob,
		)
		if err != nil {
			return nil, err
		}
		a.Expired = scheduling.IsExpired(a.SlotDate, a.SlotTime, now)
		a.DocData = &doc
		a.UserData = &user
		appointments = append(appointments, a)
	}
	return appointments, rows.Err()
}

func getAppointment(ctx context.Context, pool *pgxpool.Pool, appointmentId string) (models.Appointment, error) {
	var a models.Appointment
	err := pool.QueryRow(ctx,
		`SELECT appointment_id, doctor_id, user_id, slot_date, slot_time,
		        amount, cancelled, is_completed, payment, created_at
		 FROM appointments WHERE appointment_id = $1`, appointmentId).Scan(
		&a.AppointmentID, &a.DocID, &a.UserID, &a.SlotDate, &a.SlotTime,
		&a.Amount, &a.Cancelled, &a.IsCompleted, &a.Payment, &a.CreatedAt,
	)
	if err != nil {
		return a, err
	}
	a.Expired = scheduling.IsExpired(a.SlotDate, a.SlotTime, time.Now())
	return a, nil
}

// slotsBookedFor reassembles the per-doctor slots_booked map from the
// booked_slots table, keyed day_month_year.
func slotsBookedFor(ctx context.Context, pool *pgxpool.Pool, doctorId string) (map[string][]string, error) {
	rows, err := pool.Query(ctx,
		"SELECT slot_date, slot_time FROM booked_slots WHERE doctor_id = $1", doctorId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	booked := make(map[string][]string)
	for rows.Next() {
		var date, label string
		if err := rows.Scan(&date, &label); err != nil {
			return nil, err
		}
		booked[date] = append(booked[date], label)
	}
	return booked, rows.Err()
}
