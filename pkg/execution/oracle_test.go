/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: oracle_test.go
Description: Tests for the process oracle and the persistent server oracle.
Uses small shell-script validators to cover exit-code mapping, file and stdin
delivery, timeouts, counters, the call cap, and the server line protocol.
*/

package execution_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kleascm/akaylee-repairer/pkg/execution"
	"github.com/kleascm/akaylee-repairer/pkg/interfaces"
)

// writeScript writes an executable shell script into the test directory
func writeScript(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0755))
	return path
}

func oracleConfig(validator string) *interfaces.RepairConfig {
	return &interfaces.RepairConfig{
		ValidatorPath: validator,
		InputMode:     interfaces.InputModeFile,
		Timeout:       5 * time.Second,
		OracleMax:     1000,
	}
}

// TestExitCodeMapping tests the exit-code to verdict table
func TestExitCodeMapping(t *testing.T) {
	cases := []struct {
		name    string
		body    string
		verdict interfaces.Verdict
	}{
		{"accepted", "exit 0", interfaces.VerdictOK},
		{"rejected", "exit 1", interfaces.VerdictErr},
		{"incomplete", "exit 255", interfaces.VerdictIncomplete},
		{"other", "exit 7", interfaces.VerdictErr},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			oracle := execution.NewProcessOracle(oracleConfig(writeScript(t, "validator.sh", tc.body)), nil)
			assert.Equal(t, tc.verdict, oracle.Ask([]byte("x")))
		})
	}
}

// TestFileDelivery tests that the candidate reaches the validator as a file
func TestFileDelivery(t *testing.T) {
	script := writeScript(t, "validator.sh", `grep -q hello "$1"`)
	oracle := execution.NewProcessOracle(oracleConfig(script), nil)

	assert.Equal(t, interfaces.VerdictOK, oracle.Ask([]byte("hello world")))
	assert.Equal(t, interfaces.VerdictErr, oracle.Ask([]byte("goodbye")))
}

// TestStdinDelivery tests the stdin input mode
func TestStdinDelivery(t *testing.T) {
	script := writeScript(t, "validator.sh", "grep -q hello")
	config := oracleConfig(script)
	config.InputMode = interfaces.InputModeStdin
	oracle := execution.NewProcessOracle(config, nil)

	assert.Equal(t, interfaces.VerdictOK, oracle.Ask([]byte("hello world")))
	assert.Equal(t, interfaces.VerdictErr, oracle.Ask([]byte("goodbye")))
}

// TestTimeout tests that a hanging validator is killed within the budget
func TestTimeout(t *testing.T) {
	script := writeScript(t, "validator.sh", "sleep 30")
	config := oracleConfig(script)
	config.Timeout = 100 * time.Millisecond
	oracle := execution.NewProcessOracle(config, nil)

	start := time.Now()
	verdict := oracle.Ask([]byte("x"))
	elapsed := time.Since(start)

	assert.Equal(t, interfaces.VerdictErr, verdict)
	assert.Less(t, elapsed, 2*time.Second)
}

// TestSpawnFailure tests that a missing validator is demoted to a rejection
func TestSpawnFailure(t *testing.T) {
	config := oracleConfig(filepath.Join(t.TempDir(), "missing"))
	oracle := execution.NewProcessOracle(config, nil)

	assert.Equal(t, interfaces.VerdictErr, oracle.Ask([]byte("x")))
	assert.Equal(t, int64(1), oracle.Stats().Calls)
	assert.Equal(t, int64(1), oracle.Stats().Rejected)
}

// TestCounters tests cumulative counter bookkeeping
func TestCounters(t *testing.T) {
	script := writeScript(t, "validator.sh", `grep -q hello "$1"`)
	oracle := execution.NewProcessOracle(oracleConfig(script), nil)

	oracle.Ask([]byte("hello"))
	oracle.Ask([]byte("nope"))
	oracle.Ask([]byte("hello again"))

	stats := oracle.Stats()
	assert.Equal(t, int64(3), stats.Calls)
	assert.Equal(t, int64(2), stats.Accepted)
	assert.Equal(t, int64(1), stats.Rejected)
	assert.Equal(t, int64(0), stats.Incomplete)
}

// TestCallCap tests that the oracle stops spawning at the cap
func TestCallCap(t *testing.T) {
	script := writeScript(t, "validator.sh", "exit 0")
	config := oracleConfig(script)
	config.OracleMax = 3
	oracle := execution.NewProcessOracle(config, nil)

	for i := 0; i < 3; i++ {
		assert.Equal(t, interfaces.VerdictOK, oracle.Ask([]byte{byte('a' + i)}))
	}
	// Beyond the cap every call reports an error without spawning
	assert.Equal(t, interfaces.VerdictErr, oracle.Ask([]byte("d")))
	assert.Equal(t, interfaces.VerdictErr, oracle.Ask([]byte("e")))
	assert.Equal(t, int64(3), oracle.Stats().Calls)
}

// serverScript implements the DATA/OK/REJECT/QUIT line protocol, accepting
// only the payload "hello"
const serverScript = `while read cmd n; do
  if [ "$cmd" = "QUIT" ]; then exit 0; fi
  payload=$(dd bs=1 count="$n" 2>/dev/null)
  read rest
  if [ "$payload" = "hello" ]; then echo OK; else echo REJECT; fi
done
`

// TestServerOracle tests the persistent server protocol end to end
func TestServerOracle(t *testing.T) {
	script := writeScript(t, "server.sh", serverScript)
	config := oracleConfig(script)

	oracle, err := execution.NewServerOracle(config, nil)
	require.NoError(t, err)

	assert.Equal(t, interfaces.VerdictOK, oracle.Ask([]byte("hello")))
	assert.Equal(t, interfaces.VerdictErr, oracle.Ask([]byte("bye")))
	assert.Equal(t, interfaces.VerdictOK, oracle.Ask([]byte("hello")))

	stats := oracle.Stats()
	assert.Equal(t, int64(3), stats.Calls)
	assert.Equal(t, int64(2), stats.Accepted)
	assert.Equal(t, int64(1), stats.Rejected)

	assert.NoError(t, oracle.Close())
}

// TestServerOracleCap tests the call cap in server mode
func TestServerOracleCap(t *testing.T) {
	script := writeScript(t, "server.sh", serverScript)
	config := oracleConfig(script)
	config.OracleMax = 1

	oracle, err := execution.NewServerOracle(config, nil)
	require.NoError(t, err)
	defer oracle.Close()

	assert.Equal(t, interfaces.VerdictOK, oracle.Ask([]byte("hello")))
	assert.Equal(t, interfaces.VerdictErr, oracle.Ask([]byte("hello")))
	assert.Equal(t, int64(1), oracle.Stats().Calls)
}
