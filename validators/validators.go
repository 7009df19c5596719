package validators

import (
	"regexp"

	"prescripto_back_end_go/models"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ProfileComplete reports whether a patient has filled in the fields
// booking requires: phone, gender, dob and the first address line.
// Fresh accounts carry placeholder values for all four.
func ProfileComplete(u models.User) bool {
	if u.Phone == "" || u.Phone == "000000000" {
		return false
	}
	if u.Gender == "" || u.Gender == "Not Selected" {
		return false
	}
	if u.Dob == "" || u.Dob == "Not Selected" {
		return false
	}
	return u.Address.Line1 != ""
}
