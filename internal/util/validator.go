package util

import (
	"fmt"
	"regexp"
)

var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ValidateEmail checks the address has a plausible mailbox@domain shape.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email is empty")
	}
	if len(email) > 128 {
		return fmt.Errorf("email too long, max 128 characters")
	}
	if !emailRe.MatchString(email) {
		return fmt.Errorf("invalid email format")
	}
	return nil
}

// ValidateRating checks a review rating is within 1-5.
func ValidateRating(rating int) error {
	if rating < 1 || rating > 5 {
		return fmt.Errorf("rating must be between 1 and 5, got %d", rating)
	}
	return nil
}

// ValidateProficiency checks a skill proficiency is within 1-5.
func ValidateProficiency(level int) error {
	if level < 1 || level > 5 {
		return fmt.Errorf("proficiency must be between 1 and 5, got %d", level)
	}
	return nil
}

// ValidateDuration checks an exchange duration is positive and at most a day.
func ValidateDuration(hours float64) error {
	if hours <= 0 {
		return fmt.Errorf("duration must be positive, got %f", hours)
	}
	if hours > 24 {
		return fmt.Errorf("duration too long, max 24 hours")
	}
	return nil
}
