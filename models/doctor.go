package models

type Address struct {
	Line1 string `json:"line1"`
	Line2 string `json:"line2"`
}

type Doctor struct {
	DoctorID   string  `json:"docId"`
	Name       string  `json:"name"`
	Email      string  `json:"email,omitempty"`
	Image      string  `json:"image"`
	Speciality string  `json:"speciality"`
	Degree     string  `json:"degree"`
	Experience string  `json:"experience"`
	About      string  `json:"about"`
	Fees       int     `json:"fees"`
	Available  bool    `json:"available"`
	Address    Address `json:"address"`

	// Mapping from date key (day_month_year) to the time labels already
	// reserved on that day. Entries are never removed once booked.
	SlotsBooked map[string][]string `json:"slots_booked"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UpdateDoctorProfileRequest struct {
	Fees      int     `json:"fees"`
	Address   Address `json:"address"`
	Available bool    `json:"available"`
}

type ChangeDoctorPasswordRequest struct {
	DocID       string `json:"docId" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=8"`
}
