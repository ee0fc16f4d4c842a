/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: engine_test.go
Description: Tests for the edit-search engine with an in-process oracle.
Covers the zero-edit probe, single-edit repairs (insert, delete, substitute),
pruning under the character-edit budget, cache soundness, determinism, and
clean give-up.
*/

package core_test

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kleascm/akaylee-repairer/pkg/core"
	"github.com/kleascm/akaylee-repairer/pkg/interfaces"
)

// funcOracle answers from a verdict function and counts every submission
type funcOracle struct {
	verdict func([]byte) interfaces.Verdict
	calls   map[string]int
	stats   interfaces.OracleStats
	max     int64
}

func newFuncOracle(verdict func([]byte) interfaces.Verdict) *funcOracle {
	return &funcOracle{verdict: verdict, calls: make(map[string]int)}
}

func (o *funcOracle) Ask(candidate []byte) interfaces.Verdict {
	if o.max > 0 && o.stats.Calls >= o.max {
		return interfaces.VerdictErr
	}
	o.stats.Calls++
	o.calls[string(candidate)]++

	v := o.verdict(candidate)
	switch v {
	case interfaces.VerdictOK:
		o.stats.Accepted++
	case interfaces.VerdictIncomplete:
		o.stats.Incomplete++
	default:
		o.stats.Rejected++
	}
	return v
}

func (o *funcOracle) Stats() interfaces.OracleStats { return o.stats }
func (o *funcOracle) Close() error                  { return nil }

var datePattern = regexp.MustCompile(`^[0-9]{4}-[0-9]{2}-[0-9]{2}$`)

func dateVerdict(candidate []byte) interfaces.Verdict {
	if datePattern.Match(candidate) {
		return interfaces.VerdictOK
	}
	return interfaces.VerdictErr
}

// dateConfig keeps the alphabet small so searches stay fast
func dateConfig(maxEdits, maxCharEdits int) *interfaces.RepairConfig {
	return &interfaces.RepairConfig{
		MaxEdits:     maxEdits,
		MaxCharEdits: maxCharEdits,
		Alphabet:     "-0123456789",
		AllowAppend:  true,
		OracleMax:    1_000_000,
	}
}

// TestZeroEditProbe tests that an already-accepted input needs no edits
func TestZeroEditProbe(t *testing.T) {
	oracle := newFuncOracle(dateVerdict)
	engine := core.NewEngine(dateConfig(2, 1), oracle, nil)

	result, err := engine.Repair([]byte("2024-01-15"))
	require.NoError(t, err)
	assert.Equal(t, "2024-01-15", string(result.Candidate))
	assert.Equal(t, 0, result.EditCount)
	assert.Equal(t, int64(1), oracle.Stats().Calls)
}

// TestSingleInsertRepair tests repairing a missing separator
func TestSingleInsertRepair(t *testing.T) {
	oracle := newFuncOracle(dateVerdict)
	engine := core.NewEngine(dateConfig(2, 1), oracle, nil)

	result, err := engine.Repair([]byte("2024-0115"))
	require.NoError(t, err)
	assert.Equal(t, "2024-01-15", string(result.Candidate))
	assert.Equal(t, 1, result.EditCount)
}

// TestSingleDeleteRepair tests repairing a doubled separator
func TestSingleDeleteRepair(t *testing.T) {
	oracle := newFuncOracle(dateVerdict)
	engine := core.NewEngine(dateConfig(2, 1), oracle, nil)

	result, err := engine.Repair([]byte("2024--01-15"))
	require.NoError(t, err)
	assert.Equal(t, "2024-01-15", string(result.Candidate))
	assert.Equal(t, 1, result.EditCount)
}

// TestSingleSubstituteRepair tests repairing a corrupt digit
func TestSingleSubstituteRepair(t *testing.T) {
	oracle := newFuncOracle(dateVerdict)
	engine := core.NewEngine(dateConfig(2, 1), oracle, nil)

	result, err := engine.Repair([]byte("2024-01-1X"))
	require.NoError(t, err)
	assert.Equal(t, 1, result.EditCount)
	assert.Regexp(t, datePattern, string(result.Candidate))
	// '0' is the first digit in alphabet order
	assert.Equal(t, "2024-01-10", string(result.Candidate))
}

// TestAppendRepair tests repairing a truncated input by appending
func TestAppendRepair(t *testing.T) {
	// Accept only the appended form so an insert-before cannot satisfy it
	oracle := newFuncOracle(func(candidate []byte) interfaces.Verdict {
		if string(candidate) == "2024-01-15" {
			return interfaces.VerdictOK
		}
		return interfaces.VerdictErr
	})
	engine := core.NewEngine(dateConfig(1, 1), oracle, nil)

	result, err := engine.Repair([]byte("2024-01-1"))
	require.NoError(t, err)
	assert.Equal(t, 1, result.EditCount)
	assert.Regexp(t, datePattern, string(result.Candidate))
	assert.Equal(t, "2024-01-15", string(result.Candidate))
}

// TestPruningRespected tests that two char-needing edits are pruned away
func TestPruningRespected(t *testing.T) {
	oracle := newFuncOracle(dateVerdict)
	engine := core.NewEngine(dateConfig(2, 1), oracle, nil)

	// Needs two insertions of '-': unreachable with MaxCharEdits=1
	_, err := engine.Repair([]byte("20240115"))
	assert.ErrorIs(t, err, core.ErrNoRepair)
}

// TestTwoCharEditRepair tests the same input with a relaxed char budget
func TestTwoCharEditRepair(t *testing.T) {
	oracle := newFuncOracle(dateVerdict)
	engine := core.NewEngine(dateConfig(2, 2), oracle, nil)

	result, err := engine.Repair([]byte("20240115"))
	require.NoError(t, err)
	assert.Equal(t, "2024-01-15", string(result.Candidate))
	assert.Equal(t, 2, result.EditCount)
}

// TestCacheSoundness tests that no candidate is submitted twice
func TestCacheSoundness(t *testing.T) {
	oracle := newFuncOracle(dateVerdict)
	engine := core.NewEngine(dateConfig(2, 1), oracle, nil)

	_, err := engine.Repair([]byte("20240115"))
	assert.ErrorIs(t, err, core.ErrNoRepair)

	for candidate, n := range oracle.calls {
		assert.LessOrEqual(t, n, 1, "candidate submitted twice: %q", candidate)
	}
}

// TestDeterminism tests that repeated runs return the same candidate
func TestDeterminism(t *testing.T) {
	first, err := core.NewEngine(dateConfig(2, 1), newFuncOracle(dateVerdict), nil).
		Repair([]byte("2024-01-1X"))
	require.NoError(t, err)

	second, err := core.NewEngine(dateConfig(2, 1), newFuncOracle(dateVerdict), nil).
		Repair([]byte("2024-01-1X"))
	require.NoError(t, err)

	assert.Equal(t, string(first.Candidate), string(second.Candidate))
}

// TestBudgetWindsDown tests that a capped oracle ends the search cleanly
func TestBudgetWindsDown(t *testing.T) {
	oracle := newFuncOracle(dateVerdict)
	oracle.max = 5
	engine := core.NewEngine(dateConfig(3, 1), oracle, nil)

	_, err := engine.Repair([]byte("20240115"))
	assert.ErrorIs(t, err, core.ErrNoRepair)
	assert.LessOrEqual(t, oracle.Stats().Calls, int64(5))
}

// TestRestrictedAlphabet tests that edit characters stay inside the alphabet
func TestRestrictedAlphabet(t *testing.T) {
	config := dateConfig(1, 1)
	config.Alphabet = "9"
	oracle := newFuncOracle(dateVerdict)
	engine := core.NewEngine(config, oracle, nil)

	result, err := engine.Repair([]byte("2024-01-1X"))
	require.NoError(t, err)
	assert.Equal(t, "2024-01-19", string(result.Candidate))
}
