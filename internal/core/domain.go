package core

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

type (
	Role string

	Date struct {
		time.Time
	}

	// TimeEntry is a single logged work interval. Hours is derived from the
	// start and end times and must agree with them; entries that do not are
	// rejected at creation.
	TimeEntry struct {
		ID          string
		UserID      string
		Date        Date
		StartTime   string // wall clock, "HH:MM"
		EndTime     string // wall clock, "HH:MM"
		Category    string
		Subcategory string
		Description string
		Hours       float64
		CreatedAt   time.Time
	}

	User struct {
		ID           string
		Email        string
		Name         string
		Role         Role
		PasswordHash string
		CreatedAt    time.Time
	}

	// Viewer identifies who is looking at the data. It is passed explicitly
	// into every call that needs an identity; there is no ambient session.
	Viewer struct {
		UserID     string
		Privileged bool
	}
)

var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidDate      = errors.New("invalid date")
	ErrEmptyUserID      = errors.New("empty user id")
	ErrEmptyDescription = errors.New("empty description")
	ErrInvalidClockTime = errors.New("invalid clock time")
	ErrEndNotAfterStart = errors.New("end time must be after start time")
	ErrHoursMismatch    = errors.New("hours do not match start and end times")
	ErrEmptyEmail       = errors.New("empty email")
	ErrInvalidEmail     = errors.New("invalid email")
	ErrEmptyName        = errors.New("empty name")
	ErrInvalidRole      = errors.New("invalid role")
	ErrEmailTaken       = errors.New("email already registered")
)

// hoursEpsilon bounds the drift tolerated between the stored Hours value
// and the value recomputed from start/end times.
const hoursEpsilon = 1e-6

func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleUser
}

// Privileged reports whether the role grants visibility over all users' entries.
func (r Role) Privileged() bool {
	return r == RoleAdmin
}

// NewDate creates a new Date from year, month, day at UTC midnight.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to day granularity in UTC.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// ParseDate parses an ISO "2006-01-02" date string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	return d.Format("2006-01-02")
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// MarshalJSON encodes the date as "2006-01-02".
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON decodes a "2006-01-02" string.
func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ParseClock parses a "HH:MM" wall-clock string into minutes since midnight.
func ParseClock(s string) (int, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClockTime, s)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// HoursBetween computes the duration in hours between two wall-clock times.
// The end time must be strictly after the start time.
func HoursBetween(start, end string) (float64, error) {
	s, err := ParseClock(start)
	if err != nil {
		return 0, err
	}
	e, err := ParseClock(end)
	if err != nil {
		return 0, err
	}
	if e <= s {
		return 0, ErrEndNotAfterStart
	}
	return float64(e-s) / 60, nil
}

func (e TimeEntry) Validate() error {
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(e.UserID) == "" {
		return ErrEmptyUserID
	}
	if len(strings.TrimSpace(e.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(e.Description) > 500 {
		return errors.New("description too long (max 500 characters)")
	}
	hours, err := HoursBetween(e.StartTime, e.EndTime)
	if err != nil {
		return err
	}
	if math.Abs(hours-e.Hours) > hoursEpsilon {
		return ErrHoursMismatch
	}
	return nil
}

func (u User) Validate() error {
	if strings.TrimSpace(u.Email) == "" {
		return ErrEmptyEmail
	}
	if !strings.Contains(u.Email, "@") {
		return ErrInvalidEmail
	}
	if strings.TrimSpace(u.Name) == "" {
		return ErrEmptyName
	}
	if !u.Role.IsValid() {
		return ErrInvalidRole
	}
	return nil
}

// Viewer derives the viewer context for this user.
func (u User) Viewer() Viewer {
	return Viewer{UserID: u.ID, Privileged: u.Role.Privileged()}
}
