// Package downloads simulates downloads: jobs are persisted and advanced by
// per-job timers until they reach 100%, without transferring any data.
package downloads

import (
	"errors"
	"time"
)

var (
	// ErrNotFound is returned for ids that have no job
	ErrNotFound = errors.New("download not found")
	// ErrInvalidTransition is returned when a status change is not allowed
	ErrInvalidTransition = errors.New("invalid download status transition")
)

// Status is the state of a download job
type Status string

const (
	StatusDownloading Status = "downloading"
	StatusCompleted   Status = "completed"
	StatusError       Status = "error"
	StatusPaused      Status = "paused"
)

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// validTransitions lists the statuses each status may move to
var validTransitions = map[Status][]Status{
	StatusDownloading: {StatusCompleted, StatusPaused, StatusError},
	StatusPaused:      {StatusDownloading},
	StatusError:       {StatusDownloading},
	StatusCompleted:   {}, // terminal
}

// CanTransitionTo reports whether moving from s to target is allowed
func (s Status) CanTransitionTo(target Status) bool {
	for _, v := range validTransitions[s] {
		if v == target {
			return true
		}
	}
	return false
}

// IsActive reports whether the job is being advanced
func (s Status) IsActive() bool {
	return s == StatusDownloading
}

// IsTerminal reports whether the job can no longer change
func (s Status) IsTerminal() bool {
	return s == StatusCompleted
}

// Request asks for a new download
type Request struct {
	ID        string // content id
	Title     string
	Thumbnail string
	Size      string // display only
	Quality   string
	MediaURL  string
}

// Job is a tracked download
type Job struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Thumbnail   string     `json:"thumbnail"`
	Size        string     `json:"size"`
	Quality     string     `json:"quality"`
	MediaURL    string     `json:"mediaUrl,omitempty"`
	Status      Status     `json:"status"`
	Progress    int        `json:"progress"` // 0-100
	AddedAt     time.Time  `json:"addedAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// Stats summarises a snapshot for the downloads header
type Stats struct {
	Total     int
	Active    int
	Completed int
	Paused    int
}

// Summarize counts jobs by status
func Summarize(jobs []Job) Stats {
	st := Stats{Total: len(jobs)}
	for _, j := range jobs {
		switch j.Status {
		case StatusDownloading:
			st.Active++
		case StatusCompleted:
			st.Completed++
		case StatusPaused:
			st.Paused++
		}
	}
	return st
}
