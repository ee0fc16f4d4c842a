/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: lstar_test.go
Description: Tests for the L* learner. Covers the observation table loop on a
small regular language, hypothesis correctness against labeled examples,
row-signature state extraction, DOT and right-linear JSON export, the dataset
oracle, and validator-oracle memoization.
*/

package learner_test

import (
	"encoding/json"
	"strings"
	"testing"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kleascm/akaylee-repairer/pkg/interfaces"
	"github.com/kleascm/akaylee-repairer/pkg/learner"
)

// evenOracle targets the language of even-length strings over {a, b}
type evenOracle struct {
	positives []string
	negatives []string
}

func newEvenOracle() *evenOracle {
	return &evenOracle{
		positives: []string{"", "aa", "ab", "ba", "bb", "abab"},
		negatives: []string{"a", "b", "aba", "bab"},
	}
}

func (o *evenOracle) IsMember(q string) bool {
	return len(q)%2 == 0
}

func (o *evenOracle) IsEquivalent(dfa *learner.DFA, _ []byte) (bool, string) {
	for _, p := range o.positives {
		if !dfa.Accepts(p) {
			return false, p
		}
	}
	for _, n := range o.negatives {
		if dfa.Accepts(n) {
			return false, n
		}
	}
	return true, ""
}

// TestLearnEvenLength tests the full L* loop on even-length strings
func TestLearnEvenLength(t *testing.T) {
	oracle := newEvenOracle()
	table := learner.NewObservationTable([]byte{'a', 'b'})

	dfa := learner.Learn(table, oracle, nil)

	for _, p := range oracle.positives {
		assert.True(t, dfa.Accepts(p), "should accept %q", p)
	}
	for _, n := range oracle.negatives {
		assert.False(t, dfa.Accepts(n), "should reject %q", n)
	}

	// Even-length needs exactly two states
	assert.Equal(t, 2, dfa.StateCount())

	// The table is closed and consistent at termination
	closed, _ := table.Closed()
	consistent, _ := table.Consistent()
	assert.True(t, closed)
	assert.True(t, consistent)
}

// TestLearnWithSeeds tests that seeding with positives still converges
func TestLearnWithSeeds(t *testing.T) {
	oracle := newEvenOracle()
	table := learner.NewObservationTable([]byte{'a', 'b'})

	dfa := learner.Learn(table, oracle, []string{"abab", "ba"})

	assert.True(t, dfa.Accepts("abab"))
	assert.False(t, dfa.Accepts("aba"))
	assert.Equal(t, 2, dfa.StateCount())
}

// TestDOTExport tests the Graphviz output shape
func TestDOTExport(t *testing.T) {
	dfa := learner.Learn(learner.NewObservationTable([]byte{'a', 'b'}), newEvenOracle(), nil)

	dot := dfa.ToDOT()
	assert.True(t, strings.HasPrefix(dot, "digraph DFA {"))
	assert.Contains(t, dot, "doublecircle")
	assert.Contains(t, dot, "__start")
	assert.Contains(t, dot, "rankdir=LR")
}

// TestRightLinearJSONExport tests the emitted grammar document
func TestRightLinearJSONExport(t *testing.T) {
	alphabet := []byte{'a', 'b'}
	dfa := learner.Learn(learner.NewObservationTable(alphabet), newEvenOracle(), nil)

	data, err := dfa.ToRightLinearJSON(alphabet)
	require.NoError(t, err)

	var doc struct {
		StartSym string                `json:"start_sym"`
		Alphabet []string              `json:"alphabet"`
		Grammar  map[string][][]string `json:"grammar"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))

	assert.NotEmpty(t, doc.StartSym)
	assert.Equal(t, []string{"a", "b"}, doc.Alphabet)
	assert.Len(t, doc.Grammar, 2)

	// The accepting start state carries an epsilon alternative
	foundEpsilon := false
	for _, alts := range doc.Grammar[doc.StartSym] {
		if len(alts) == 0 {
			foundEpsilon = true
		}
	}
	assert.True(t, foundEpsilon)
}

// TestDatasetOracle tests membership answers from labeled sets
func TestDatasetOracle(t *testing.T) {
	pos := mapset.NewThreadUnsafeSet("ab", "")
	neg := mapset.NewThreadUnsafeSet("a")
	oracle := learner.NewDatasetOracle(pos, neg, true)

	assert.True(t, oracle.IsMember("ab"))
	assert.True(t, oracle.IsMember(""))
	assert.False(t, oracle.IsMember("a"))
	// Unknown strings default to negative
	assert.False(t, oracle.IsMember("zzz"))

	// A hypothesis rejecting everything yields a positive counterexample
	empty := learner.NewDFA()
	empty.SetStart("<0>")
	empty.AddState("<0>", false)
	eq, counterexample := oracle.IsEquivalent(empty, nil)
	assert.False(t, eq)
	assert.True(t, pos.Contains(counterexample))
}

// TestInferAlphabet tests byte collection and ordering
func TestInferAlphabet(t *testing.T) {
	pos := mapset.NewThreadUnsafeSet("ba")
	neg := mapset.NewThreadUnsafeSet("c")
	assert.Equal(t, []byte{'a', 'b', 'c'}, learner.InferAlphabet(pos, neg))

	// Empty datasets fall back to {a, b}
	empty := mapset.NewThreadUnsafeSet[string]()
	assert.Equal(t, []byte{'a', 'b'}, learner.InferAlphabet(empty, empty))
}

// countingOracle counts Ask invocations for memoization checks
type countingOracle struct {
	calls int
	stats interfaces.OracleStats
}

func (o *countingOracle) Ask(candidate []byte) interfaces.Verdict {
	o.calls++
	o.stats.Calls++
	if len(candidate)%2 == 0 {
		o.stats.Accepted++
		return interfaces.VerdictOK
	}
	o.stats.Rejected++
	return interfaces.VerdictErr
}

func (o *countingOracle) Stats() interfaces.OracleStats { return o.stats }
func (o *countingOracle) Close() error                  { return nil }

// TestValidatorOracleMemoization tests that repeated queries cost one call
func TestValidatorOracleMemoization(t *testing.T) {
	proc := &countingOracle{}
	pos := mapset.NewThreadUnsafeSet("aa")
	neg := mapset.NewThreadUnsafeSet("a")
	oracle := learner.NewValidatorOracle(proc, pos, neg)

	assert.True(t, oracle.IsMember("aa"))
	assert.True(t, oracle.IsMember("aa"))
	assert.False(t, oracle.IsMember("a"))
	assert.False(t, oracle.IsMember("a"))

	assert.Equal(t, 2, proc.calls)
}
