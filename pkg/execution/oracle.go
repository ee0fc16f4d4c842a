/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: oracle.go
Description: Process oracle for the Akaylee Repairer. Spawns the external
validator once per candidate, delivers the bytes via a temporary file or
standard input, enforces a wall-clock timeout with a hard kill, and maps exit
codes to verdicts. Maintains the session call counters and the global call cap.
*/

package execution

import (
	"bytes"
	"os"
	"os/exec"
	"syscall"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/google/uuid"

	"github.com/kleascm/akaylee-repairer/pkg/interfaces"
	"github.com/kleascm/akaylee-repairer/pkg/logging"
)

// Process-wide oracle counters, exposable as Prometheus text
var (
	oracleCallsTotal      = metrics.NewCounter("repair_oracle_calls_total")
	oracleOKTotal         = metrics.NewCounter("repair_oracle_ok_total")
	oracleRejectedTotal   = metrics.NewCounter("repair_oracle_rejected_total")
	oracleIncompleteTotal = metrics.NewCounter("repair_oracle_incomplete_total")
)

// Validator exit codes understood by the driver
const (
	exitAccepted   = 0
	exitRejected   = 1
	exitIncomplete = 255
)

// ProcessOracle implements interfaces.Oracle by running the validator
// program once per candidate.
type ProcessOracle struct {
	config *interfaces.RepairConfig
	logger *logging.Logger
	stats  interfaces.OracleStats
}

// NewProcessOracle creates a process oracle for the configured validator
func NewProcessOracle(config *interfaces.RepairConfig, logger *logging.Logger) *ProcessOracle {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &ProcessOracle{config: config, logger: logger}
}

// Ask submits one candidate to the validator. The total counter is bumped
// before the child is spawned so the call cap holds across spawn failures.
// Once the cap is reached every call reports VerdictErr without spawning.
func (o *ProcessOracle) Ask(candidate []byte) interfaces.Verdict {
	if o.stats.Calls >= o.config.OracleMax {
		return interfaces.VerdictErr
	}
	o.stats.Calls++
	oracleCallsTotal.Inc()

	res := o.run(candidate)
	o.count(res.Verdict)

	o.logger.LogOracleCall(res.ID, res.Verdict.String(), res.Duration, map[string]interface{}{
		"n":         o.stats.Calls,
		"exit_code": res.ExitCode,
		"candidate": logging.EscapePreview(candidate),
	})

	return res.Verdict
}

// Stats returns a snapshot of the call counters
func (o *ProcessOracle) Stats() interfaces.OracleStats {
	return o.stats
}

// Close releases the oracle; the process oracle holds nothing between calls
func (o *ProcessOracle) Close() error {
	return nil
}

func (o *ProcessOracle) count(v interfaces.Verdict) {
	switch v {
	case interfaces.VerdictOK:
		o.stats.Accepted++
		oracleOKTotal.Inc()
	case interfaces.VerdictIncomplete:
		o.stats.Incomplete++
		oracleIncompleteTotal.Inc()
	default:
		o.stats.Rejected++
		oracleRejectedTotal.Inc()
	}
}

// run performs one validator invocation. Every failure path collapses to
// VerdictErr; nothing escapes the driver boundary.
func (o *ProcessOracle) run(candidate []byte) interfaces.CallResult {
	res := interfaces.CallResult{
		ID:       uuid.New().String()[:8],
		ExitCode: -1,
		Verdict:  interfaces.VerdictErr,
	}

	var cmd *exec.Cmd
	if o.config.InputMode == interfaces.InputModeStdin {
		cmd = exec.Command(o.config.ValidatorPath)
		cmd.Stdin = bytes.NewReader(candidate)
	} else {
		tmp, err := os.CreateTemp("", "repair-*")
		if err != nil {
			return res
		}
		name := tmp.Name()
		// The temp file must disappear on every exit path, timeout included
		defer os.Remove(name)
		if _, err := tmp.Write(candidate); err != nil {
			tmp.Close()
			return res
		}
		if err := tmp.Close(); err != nil {
			return res
		}
		cmd = exec.Command(o.config.ValidatorPath, name)
	}

	// Child stdout/stderr are discarded: with nil descriptors os/exec
	// connects them to the null device.
	start := time.Now()
	if err := cmd.Start(); err != nil {
		res.Duration = time.Since(start)
		return res
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case <-done:
		res.Duration = time.Since(start)
		res.Verdict, res.ExitCode, res.Signal = classify(cmd.ProcessState)

	case <-time.After(o.config.Timeout):
		cmd.Process.Kill()
		<-done // reap unconditionally
		res.Duration = time.Since(start)
	}
	return res
}

// classify maps the child's wait status to a verdict:
// exit 0 accepted, 1 rejected, 255 parsed-up-to-truncation, anything else
// (including death by signal) an error.
func classify(state *os.ProcessState) (interfaces.Verdict, int, int) {
	if state == nil {
		return interfaces.VerdictErr, -1, 0
	}
	if ws, ok := state.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return interfaces.VerdictErr, -1, int(ws.Signal())
	}
	code := state.ExitCode()
	switch code {
	case exitAccepted:
		return interfaces.VerdictOK, code, 0
	case exitIncomplete:
		return interfaces.VerdictIncomplete, code, 0
	default:
		return interfaces.VerdictErr, code, 0
	}
}
