package member

import (
	"errors"
	"strings"
	"time"
)

// DateLayout is the civil date format used for join dates, birth dates,
// and baptism dates. Dates are stored as-is; no timezone applies.
const DateLayout = "2006-01-02"

// Membership statuses.
const (
	StatusActive      = "Active"
	StatusInactive    = "Inactive"
	StatusTransferred = "Transferred"
	StatusDeceased    = "Deceased"
)

// ValidStatuses is the closed set of membership statuses.
var ValidStatuses = []string{StatusActive, StatusInactive, StatusTransferred, StatusDeceased}

// ValidGenders is the accepted set of gender values. Empty is allowed.
var ValidGenders = []string{"Male", "Female", "Other"}

// Member is a church membership record.
type Member struct {
	ID                     int64     `json:"id"`
	Name                   string    `json:"name"`
	MobileNo               string    `json:"mobile_no,omitempty"`
	EmailAddress           string    `json:"email_address,omitempty"`
	PhysicalAddress        string    `json:"physical_address,omitempty"`
	JoinDate               string    `json:"join_date"`
	DateOfBirth            string    `json:"date_of_birth"`
	Gender                 string    `json:"gender,omitempty"`
	MembershipStatus       string    `json:"membership_status"`
	Baptized               bool      `json:"baptized"`
	BaptismDate            string    `json:"baptism_date,omitempty"`
	EmergencyContactName   string    `json:"emergency_contact_name,omitempty"`
	EmergencyContactNumber string    `json:"emergency_contact_number,omitempty"`
	Notes                  string    `json:"notes,omitempty"`
	CreatedAt              time.Time `json:"created_at"`
	UpdatedAt              time.Time `json:"updated_at"`
}

// Age returns the member's age in whole years at the given moment, or
// -1 if the birth date is unparseable.
func (m *Member) Age(now time.Time) int {
	dob, err := time.Parse(DateLayout, m.DateOfBirth)
	if err != nil {
		return -1
	}
	years := now.Year() - dob.Year()
	if now.YearDay() < dob.YearDay() {
		years--
	}
	return years
}

// Validate checks a record's fields before persistence.
func (m *Member) Validate() error {
	if len(strings.TrimSpace(m.Name)) < 2 {
		return ErrNameRequired
	}
	today := time.Now().UTC()
	join, err := time.Parse(DateLayout, m.JoinDate)
	if err != nil {
		return ErrInvalidDate
	}
	dob, err := time.Parse(DateLayout, m.DateOfBirth)
	if err != nil {
		return ErrInvalidDate
	}
	if join.After(today) || dob.After(today) {
		return ErrFutureDate
	}
	if m.BaptismDate != "" {
		if _, err := time.Parse(DateLayout, m.BaptismDate); err != nil {
			return ErrInvalidDate
		}
	}
	if m.EmailAddress != "" && !strings.Contains(m.EmailAddress, "@") {
		return ErrInvalidEmail
	}
	if m.MembershipStatus != "" && !contains(ValidStatuses, m.MembershipStatus) {
		return ErrInvalidStatus
	}
	if m.Gender != "" && !contains(ValidGenders, m.Gender) {
		return ErrInvalidGender
	}
	return nil
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

// Statistics summarises the membership roll.
type Statistics struct {
	Total        int            `json:"total"`
	Active       int            `json:"active"`
	Baptized     int            `json:"baptized"`
	ByStatus     map[string]int `json:"by_status"`
	ByGender     map[string]int `json:"by_gender"`
	NewThisMonth int            `json:"new_this_month"`
	NewThisYear  int            `json:"new_this_year"`
}

// Birthday pairs a member with their next birthday date.
type Birthday struct {
	Member   Member    `json:"member"`
	Date     time.Time `json:"date"`
	TurnsAge int       `json:"turns_age"`
}

// Sentinel errors for member operations.
var (
	ErrMemberNotFound = errors.New("member not found")
	ErrNameRequired   = errors.New("member name must be at least 2 characters")
	ErrInvalidDate    = errors.New("date must be in YYYY-MM-DD format")
	ErrFutureDate     = errors.New("date cannot be in the future")
	ErrInvalidEmail   = errors.New("valid email address is required")
	ErrInvalidStatus  = errors.New("invalid membership status")
	ErrInvalidGender  = errors.New("invalid gender value")
)
