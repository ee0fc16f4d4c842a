/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: server.go
Description: Persistent server oracle for the Akaylee Repairer. Keeps one
long-lived validator child alive for the whole repair and exchanges candidates
over its pipes with a line protocol: DATA <n> followed by the raw bytes, reply
OK or REJECT, QUIT at shutdown.
*/

package execution

import (
	"bufio"
	"fmt"
	"io"
	"os/exec"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/kleascm/akaylee-repairer/pkg/interfaces"
	"github.com/kleascm/akaylee-repairer/pkg/logging"
)

// ServerOracle implements interfaces.Oracle against a validator server
// process that stays alive for the life of the repair.
type ServerOracle struct {
	config *interfaces.RepairConfig
	logger *logging.Logger
	stats  interfaces.OracleStats

	cmd     *exec.Cmd
	stdin   io.WriteCloser
	replies chan string
	closed  bool
}

// NewServerOracle spawns the validator server child. The category from the
// re2-server:<Category> spec is passed as the child's first argument.
func NewServerOracle(config *interfaces.RepairConfig, logger *logging.Logger) (*ServerOracle, error) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	// A dying child must not take the repairer down with it
	signal.Ignore(syscall.SIGPIPE)

	cmd := exec.Command(config.ValidatorPath, config.ServerCategory)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start validator server: %w", err)
	}

	o := &ServerOracle{
		config:  config,
		logger:  logger,
		cmd:     cmd,
		stdin:   stdin,
		replies: make(chan string),
	}

	// Single reader goroutine; closes the channel when the child's stdout ends
	go func() {
		defer close(o.replies)
		r := bufio.NewReader(stdout)
		for {
			line, err := r.ReadString('\n')
			if err != nil {
				return
			}
			o.replies <- strings.TrimRight(line, "\n")
		}
	}()

	logger.GetLogger().WithFields(logrus.Fields{
		"validator": config.ValidatorPath,
		"category":  config.ServerCategory,
		"pid":       cmd.Process.Pid,
	}).Info("Validator server started")

	return o, nil
}

// Ask sends one candidate over the pipe and waits for the reply line,
// subject to the per-call timeout. I/O failures and timeouts collapse to
// VerdictErr, matching the process oracle.
func (o *ServerOracle) Ask(candidate []byte) interfaces.Verdict {
	if o.stats.Calls >= o.config.OracleMax || o.closed {
		return interfaces.VerdictErr
	}
	o.stats.Calls++
	oracleCallsTotal.Inc()

	v := o.exchange(candidate)
	o.count(v)
	return v
}

func (o *ServerOracle) exchange(candidate []byte) interfaces.Verdict {
	start := time.Now()

	if _, err := fmt.Fprintf(o.stdin, "DATA %d\n", len(candidate)); err != nil {
		return interfaces.VerdictErr
	}
	if _, err := o.stdin.Write(candidate); err != nil {
		return interfaces.VerdictErr
	}
	if _, err := io.WriteString(o.stdin, "\n"); err != nil {
		return interfaces.VerdictErr
	}

	select {
	case reply, ok := <-o.replies:
		if !ok {
			return interfaces.VerdictErr
		}
		verdict := interfaces.VerdictErr
		if reply == "OK" {
			verdict = interfaces.VerdictOK
		}
		o.logger.LogOracleCall("server", verdict.String(), time.Since(start), map[string]interface{}{
			"n":         o.stats.Calls,
			"reply":     reply,
			"candidate": logging.EscapePreview(candidate),
		})
		return verdict

	case <-time.After(o.config.Timeout):
		// A stuck server cannot be trusted for further calls
		o.kill()
		return interfaces.VerdictErr
	}
}

func (o *ServerOracle) count(v interfaces.Verdict) {
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

// Stats returns a snapshot of the call counters
func (o *ServerOracle) Stats() interfaces.OracleStats {
	return o.stats
}

// Close sends QUIT and reaps the child. Safe to call more than once.
func (o *ServerOracle) Close() error {
	if o.closed {
		return nil
	}
	o.closed = true

	io.WriteString(o.stdin, "QUIT\n")
	o.stdin.Close()

	done := make(chan error, 1)
	go func() { done <- o.cmd.Wait() }()
	select {
	case err := <-done:
		return err
	case <-time.After(o.config.Timeout):
		o.cmd.Process.Kill()
		return <-done
	}
}

func (o *ServerOracle) kill() {
	if o.closed {
		return
	}
	o.closed = true
	o.stdin.Close()
	o.cmd.Process.Kill()
	o.cmd.Wait()
}
