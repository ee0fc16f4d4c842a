/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: interfaces.go
Description: Shared interfaces for the Akaylee Repairer. Defines the core types
used across all packages to break import cycles and enable proper modular design.
*/

package interfaces

import (
	"time"
)

// Verdict classifies the outcome of a single oracle call
type Verdict int

const (
	VerdictOK Verdict = iota
	VerdictErr
	VerdictIncomplete
)

// String returns a human-readable verdict name
func (v Verdict) String() string {
	switch v {
	case VerdictOK:
		return "ok"
	case VerdictErr:
		return "err"
	case VerdictIncomplete:
		return "incomplete"
	default:
		return "unknown"
	}
}

// OracleStats holds the cumulative call counters of an oracle
type OracleStats struct {
	Calls      int64 `json:"calls"`
	Accepted   int64 `json:"accepted"`
	Rejected   int64 `json:"rejected"`
	Incomplete int64 `json:"incomplete"`
}

// Oracle is the black-box validator abstraction shared by the repairer
// and the learner. Ask never panics; every internal failure is reported
// as VerdictErr.
type Oracle interface {
	Ask(candidate []byte) Verdict
	Stats() OracleStats
	Close() error
}

// CallResult represents one completed validator invocation
type CallResult struct {
	ID       string
	ExitCode int
	Signal   int
	Duration time.Duration
	Verdict  Verdict
}

// Input delivery modes for the process oracle
const (
	InputModeFile  = "file"
	InputModeStdin = "stdin"
)

// RepairConfig represents the configuration for a repair session
type RepairConfig struct {
	ValidatorPath  string
	ServerCategory string // non-empty selects the persistent server oracle
	InputMode      string
	MaxEdits       int
	MaxCharEdits   int
	Timeout        time.Duration
	OracleMax      int64
	Alphabet       string // empty means the default printable set
	AllowAppend    bool
	OutputFile     string
	MetricsFile    string
	ReportDir      string
	LogLevel       string
	JSONLogs       bool
}

// RepairReport is the session summary persisted after each repair run
type RepairReport struct {
	SessionID  string        `json:"session_id"`
	Validator  string        `json:"validator"`
	Mode       string        `json:"mode"`
	InputSize  int           `json:"input_size"`
	Repaired   bool          `json:"repaired"`
	Candidate  string        `json:"candidate,omitempty"`
	EditCount  int           `json:"edit_count"`
	Stats      OracleStats   `json:"oracle_stats"`
	Duration   time.Duration `json:"duration"`
	FinishedAt time.Time     `json:"finished_at"`
}
