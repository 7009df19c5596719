package services

import "prescripto_back_end_go/models"

// Dashboard aggregates are computed over the full appointment history of
// a doctor (or of the whole platform for the admin panel). Appointments
// arrive in insertion order.

func ComputeEarnings(appointments []models.Appointment) int {
	earnings := 0
	for _, a := range appointments {
		if a.IsCompleted || a.Payment {
			earnings += a.Amount
		}
	}
	return earnings
}

func CountDistinctPatients(appointments []models.Appointment) int {
	seen := make(map[string]struct{})
	for _, a := range appointments {
		seen[a.UserID] = struct{}{}
	}
	return len(seen)
}

// LatestAppointments returns the n most recently created appointments,
// newest first. Reverse insertion order, not slot-time order.
func LatestAppointments(appointments []models.Appointment, n int) []models.Appointment {
	latest := make([]models.Appointment, 0, n)
	for i := len(appointments) - 1; i >= 0 && len(latest) < n; i-- {
		latest = append(latest, appointments[i])
	}
	return latest
}

func BuildDoctorDashboard(appointments []models.Appointment) models.DoctorDashboard {
	return models.DoctorDashboard{
		Earnings:           ComputeEarnings(appointments),
		Appointments:       len(appointments),
		Patients:           CountDistinctPatients(appointments),
		LatestAppointments: LatestAppointments(appointments, 5),
	}
}
