package models

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

var (
	// ErrSessionNotFound is returned when a session token cannot be located
	// or has expired.
	ErrSessionNotFound = errors.New("session not found")
	// ErrTaskNotFound is returned when a sheet/category/task index triple is
	// out of range for the session's tree.
	ErrTaskNotFound = errors.New("task not found")
	// ErrCommentTask indicates an attempt to record a status on the
	// free-text comment carrier.
	ErrCommentTask = errors.New("comment tasks carry no status")
	// ErrInvalidInitials indicates the operator initials failed validation.
	ErrInvalidInitials = errors.New("initials must be 2 or 3 letters")
	// ErrInvalidDate indicates the selected day/period/year is not a real
	// calendar date.
	ErrInvalidDate = errors.New("selected date is invalid")
	// ErrInvalidStatus indicates an unrecognised status label.
	ErrInvalidStatus = errors.New("status must be OK or NOT_OK")
)

var periodIndex = map[string]time.Month{
	"JAN": time.January, "FEB": time.February, "MAR": time.March,
	"APR": time.April, "MAY": time.May, "JUN": time.June,
	"JUL": time.July, "AUG": time.August, "SEP": time.September,
	"OCT": time.October, "NOV": time.November, "DEC": time.December,
}

// KnownPeriod reports whether label is a recognised three-letter period
// code (upper-cased month abbreviation).
func KnownPeriod(label string) bool {
	_, ok := periodIndex[strings.ToUpper(label)]
	return ok
}

// Details holds the per-session operator selection collected before the
// first task is shown.
type Details struct {
	Initials string `json:"initials"`
	Day      int    `json:"day"`
	Period   string `json:"period"`
	Year     int    `json:"year"`
}

// Validate normalises and checks the operator selection. Year accepts
// either a four-digit or a two-digit value; it is reduced to two digits.
func (d *Details) Validate() error {
	d.Initials = strings.ToUpper(strings.TrimSpace(d.Initials))
	if len(d.Initials) < 2 || len(d.Initials) > 3 {
		return ErrInvalidInitials
	}
	for _, r := range d.Initials {
		if r < 'A' || r > 'Z' {
			return ErrInvalidInitials
		}
	}
	d.Period = strings.ToUpper(strings.TrimSpace(d.Period))
	month, ok := periodIndex[d.Period]
	if !ok {
		return ErrInvalidDate
	}
	if d.Year < 0 {
		return ErrInvalidDate
	}
	fullYear := d.Year
	if fullYear < 100 {
		fullYear += 2000
	}
	probe := time.Date(fullYear, month, d.Day, 0, 0, 0, 0, time.UTC)
	if probe.Day() != d.Day || probe.Month() != month {
		return ErrInvalidDate
	}
	d.Year = fullYear % 100
	return nil
}

// Stamp renders the author/date string written into a task's first slot:
// initials, day, period and two-digit year, all upper case except the day.
func (d Details) Stamp() string {
	return fmt.Sprintf("%s %d %s %02d", d.Initials, d.Day, d.Period, d.Year)
}

// Session binds an extracted tree to its source workbook and interchange
// snapshot for the lifetime of one checklist walk-through.
type Session struct {
	Token        string    `json:"token"`
	WorkbookPath string    `json:"workbook_path"`
	SnapshotPath string    `json:"snapshot_path"`
	Details      Details   `json:"details"`
	Sheets       []Sheet   `json:"sheets"`
	CreatedAt    time.Time `json:"created_at"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Store tracks active checklist sessions in memory. Structure is frozen at
// creation; only slot values may change afterwards.
type Store struct {
	mu       sync.RWMutex
	ttl      time.Duration
	sessions map[string]*Session
}

// NewStore constructs a session store with the provided TTL.
func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 4 * time.Hour
	}
	return &Store{ttl: ttl, sessions: make(map[string]*Session)}
}

// Create registers a new session for an extracted tree.
func (s *Store) Create(workbookPath, snapshotPath string, sheets []Sheet, details Details) (*Session, error) {
	token, err := randomToken()
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	session := &Session{
		Token:        token,
		WorkbookPath: workbookPath,
		SnapshotPath: snapshotPath,
		Details:      details,
		Sheets:       sheets,
		CreatedAt:    now,
		ExpiresAt:    now.Add(s.ttl),
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[token] = session
	return session, nil
}

// Get looks up a token and returns the session if still valid.
func (s *Store) Get(token string) (*Session, bool) {
	s.mu.RLock()
	session, ok := s.sessions[token]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if time.Now().After(session.ExpiresAt) {
		s.Remove(token)
		return nil, false
	}
	return session, true
}

// Remove drops a session from the store.
func (s *Store) Remove(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
}

// FillTask records a status for one task, mutating its input slots only.
// The first unfilled slot receives the author stamp and the next the
// status label.
func (s *Store) FillTask(token string, sheet, category, task int, status string) error {
	status = strings.ToUpper(strings.TrimSpace(status))
	if status != StatusOK && status != StatusNotOK {
		return ErrInvalidStatus
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[token]
	if !ok || time.Now().After(session.ExpiresAt) {
		return ErrSessionNotFound
	}
	target, err := taskAt(session.Sheets, sheet, category, task)
	if err != nil {
		return err
	}
	if target.IsComment() {
		return ErrCommentTask
	}
	target.Fill(session.Details.Stamp(), status)
	return nil
}

// Progress returns the number of statused tasks and the session total,
// both excluding comment-marker tasks.
func (s *Store) Progress(token string) (int, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[token]
	if !ok || time.Now().After(session.ExpiresAt) {
		return 0, 0, ErrSessionNotFound
	}
	return CountFilled(session.Sheets), CountTasks(session.Sheets), nil
}

func taskAt(sheets []Sheet, sheet, category, task int) (*Task, error) {
	if sheet < 0 || sheet >= len(sheets) {
		return nil, ErrTaskNotFound
	}
	categories := sheets[sheet].Categories
	if category < 0 || category >= len(categories) {
		return nil, ErrTaskNotFound
	}
	tasks := categories[category].Tasks
	if task < 0 || task >= len(tasks) {
		return nil, ErrTaskNotFound
	}
	return &tasks[task], nil
}

func randomToken() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
