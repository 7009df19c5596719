package models

import "time"

// DocData and UserData are the denormalized snapshots listings embed so
// the panels can render an appointment row without extra lookups.
type DocData struct {
	Name       string  `json:"name"`
	Speciality string  `json:"speciality"`
	Image      string  `json:"image"`
	Fees       int     `json:"fees"`
	Address    Address `json:"address"`
}

type UserData struct {
	Name  string `json:"name"`
	Image string `json:"image"`
	Dob   string `json:"dob"`
}

type Appointment struct {
	AppointmentID string `json:"appointmentId"`
	DocID         string `json:"docId"`
	UserID        string `json:"userId"`
	SlotDate      string `json:"slotDate"`
	SlotTime      string `json:"slotTime"`
	Amount        int    `json:"amount"`
	Cancelled     bool   `json:"cancelled"`
	IsCompleted   bool   `json:"isCompleted"`
	Payment       bool   `json:"payment"`

	// Derived on read, never stored: now is past slot start + 30 min.
	Expired bool `json:"expired"`

	DocData   *DocData  `json:"docData,omitempty"`
	UserData  *UserData `json:"userData,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type BookAppointmentRequest struct {
	DocID    string `json:"docId" binding:"required"`
	SlotDate string `json:"slotDate" binding:"required"`
	SlotTime string `json:"slotTime" binding:"required"`
}

type AppointmentActionRequest struct {
	AppointmentID string `json:"appointmentId" binding:"required"`
}

type ChangeAvailabilityRequest struct {
	DocID string `json:"docId" binding:"required"`
}

type DoctorDashboard struct {
	Earnings           int           `json:"earnings"`
	Appointments       int           `json:"appointments"`
	Patients           int           `json:"patients"`
	LatestAppointments []Appointment `json:"latestAppointments"`
}

type AdminDashboard struct {
	Doctors            int           `json:"doctors"`
	Appointments       int           `json:"appointments"`
	Patients           int           `json:"patients"`
	LatestAppointments []Appointment `json:"latestAppointments"`
}
