package rostercheck

import "time"

// Config holds configuration for a roster check run.
type Config struct {
	BaseURL  string        // Base URL of the service
	Activity string        // Activity whose roster is exercised
	Students int           // Number of generated students
	Workers  int           // Number of concurrent workers
	Timeout  time.Duration // HTTP request timeout
	Domain   string        // Email domain for generated students
	Keep     bool          // Leave generated students signed up
	Verbose  bool          // Enable verbose logging
}

// Activity is one entry of the GET /activities response.
type Activity struct {
	Description     string   `json:"description"`
	Schedule        string   `json:"schedule"`
	MaxParticipants int      `json:"max_participants"`
	Participants    []string `json:"participants"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Detail string `json:"detail"`
	Code   string `json:"code"`
}

// Stats holds run statistics.
type Stats struct {
	Students       int
	Signups        int
	Duplicates     int
	Full           int
	Unregistered   int
	Failed         int
	BaselineRoster int
	StartTime      time.Time
	EndTime        time.Time
	Duration       time.Duration
}
