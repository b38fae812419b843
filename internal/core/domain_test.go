package core

import (
	"errors"
	"testing"
	"time"
)

func validEntry() TimeEntry {
	return TimeEntry{
		ID:          "e1",
		UserID:      "u1",
		Date:        NewDate(2024, 1, 15),
		StartTime:   "09:00",
		EndTime:     "17:30",
		Category:    "Development",
		Subcategory: "Backend",
		Description: "API work",
		Hours:       8.5,
		CreatedAt:   time.Now(),
	}
}

func TestHoursBetween(t *testing.T) {
	tests := []struct {
		name    string
		start   string
		end     string
		want    float64
		wantErr error
	}{
		{name: "full day", start: "09:00", end: "17:30", want: 8.5},
		{name: "one minute", start: "09:00", end: "09:01", want: 1.0 / 60},
		{name: "end equals start", start: "09:00", end: "09:00", wantErr: ErrEndNotAfterStart},
		{name: "end before start", start: "17:00", end: "09:00", wantErr: ErrEndNotAfterStart},
		{name: "bad start", start: "9 am", end: "17:00", wantErr: ErrInvalidClockTime},
		{name: "bad end", start: "09:00", end: "25:99", wantErr: ErrInvalidClockTime},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := HoursBetween(tt.start, tt.end)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("HoursBetween() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("HoursBetween() unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("HoursBetween() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTimeEntryValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*TimeEntry)
		wantErr error
	}{
		{name: "valid", mutate: func(*TimeEntry) {}},
		{name: "zero date", mutate: func(e *TimeEntry) { e.Date = Date{} }, wantErr: ErrInvalidDate},
		{name: "missing user", mutate: func(e *TimeEntry) { e.UserID = " " }, wantErr: ErrEmptyUserID},
		{name: "blank description", mutate: func(e *TimeEntry) { e.Description = "   " }, wantErr: ErrEmptyDescription},
		{name: "end not after start", mutate: func(e *TimeEntry) { e.EndTime = "08:00" }, wantErr: ErrEndNotAfterStart},
		{name: "hours drifted", mutate: func(e *TimeEntry) { e.Hours = 7.5 }, wantErr: ErrHoursMismatch},
		{name: "unparseable start", mutate: func(e *TimeEntry) { e.StartTime = "soon" }, wantErr: ErrInvalidClockTime},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := validEntry()
			tt.mutate(&e)
			err := e.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestUserValidate(t *testing.T) {
	base := User{ID: "u1", Email: "a@example.com", Name: "Alice", Role: RoleUser}

	tests := []struct {
		name    string
		mutate  func(*User)
		wantErr error
	}{
		{name: "valid user", mutate: func(*User) {}},
		{name: "valid admin", mutate: func(u *User) { u.Role = RoleAdmin }},
		{name: "empty email", mutate: func(u *User) { u.Email = "" }, wantErr: ErrEmptyEmail},
		{name: "email without at", mutate: func(u *User) { u.Email = "alice" }, wantErr: ErrInvalidEmail},
		{name: "empty name", mutate: func(u *User) { u.Name = "" }, wantErr: ErrEmptyName},
		{name: "bogus role", mutate: func(u *User) { u.Role = "root" }, wantErr: ErrInvalidRole},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := base
			tt.mutate(&u)
			err := u.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestUserViewer(t *testing.T) {
	admin := User{ID: "a1", Role: RoleAdmin}
	if v := admin.Viewer(); !v.Privileged || v.UserID != "a1" {
		t.Errorf("admin viewer = %+v, want privileged a1", v)
	}
	regular := User{ID: "u1", Role: RoleUser}
	if v := regular.Viewer(); v.Privileged {
		t.Errorf("regular viewer should not be privileged")
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-01-17")
	if err != nil {
		t.Fatalf("ParseDate() error: %v", err)
	}
	if d.String() != "2024-01-17" {
		t.Errorf("ParseDate() = %s, want 2024-01-17", d)
	}

	if _, err := ParseDate("17/01/2024"); !errors.Is(err, ErrInvalidDate) {
		t.Errorf("ParseDate() error = %v, want ErrInvalidDate", err)
	}
}
