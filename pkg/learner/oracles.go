/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: oracles.go
Description: Membership/equivalence oracles for the Akaylee Repairer's L*
learner. The dataset oracle answers from labeled example sets; the validator
oracle runs the external validator for membership and sweeps the labeled sets
for equivalence.
*/

package learner

import (
	"bufio"
	"fmt"
	"os"
	"sort"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/kleascm/akaylee-repairer/pkg/interfaces"
)

// ReadExamples loads one example per line from a file. A truly empty line
// denotes the empty string, so blank lines are kept.
func ReadExamples(path string) (mapset.Set[string], error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open examples file: %w", err)
	}
	defer f.Close()

	out := mapset.NewThreadUnsafeSet[string]()
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		out.Add(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read examples file: %w", err)
	}
	return out, nil
}

// InferAlphabet collects the distinct bytes of both example sets in
// ascending order. Falls back to {a, b} when both sets are empty.
func InferAlphabet(positives, negatives mapset.Set[string]) []byte {
	alpha := mapset.NewThreadUnsafeSet[byte]()
	add := func(s string) {
		for i := 0; i < len(s); i++ {
			alpha.Add(s[i])
		}
	}
	positives.Each(func(s string) bool { add(s); return false })
	negatives.Each(func(s string) bool { add(s); return false })

	if alpha.Cardinality() == 0 {
		return []byte{'a', 'b'}
	}
	out := alpha.ToSlice()
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// sweepExamples checks the hypothesis against every labeled example and
// returns the first misclassified one as a counterexample.
func sweepExamples(dfa *DFA, positives, negatives mapset.Set[string], checkNegatives bool) (bool, string) {
	var counterexample string
	found := false

	positives.Each(func(p string) bool {
		if !dfa.Accepts(p) {
			counterexample = p
			found = true
			return true
		}
		return false
	})
	if found {
		return false, counterexample
	}

	if checkNegatives {
		negatives.Each(func(n string) bool {
			if dfa.Accepts(n) {
				counterexample = n
				found = true
				return true
			}
			return false
		})
		if found {
			return false, counterexample
		}
	}
	return true, ""
}

// DatasetOracle answers membership from labeled example sets. Unknown
// strings default to negative unless configured otherwise.
type DatasetOracle struct {
	positives       mapset.Set[string]
	negatives       mapset.Set[string]
	defaultNegative bool
}

// NewDatasetOracle creates a dataset-backed oracle
func NewDatasetOracle(positives, negatives mapset.Set[string], defaultNegative bool) *DatasetOracle {
	return &DatasetOracle{
		positives:       positives,
		negatives:       negatives,
		defaultNegative: defaultNegative,
	}
}

// DatasetOracleFromFiles loads both example files and builds the oracle
func DatasetOracleFromFiles(positivesPath, negativesPath string, defaultNegative bool) (*DatasetOracle, error) {
	pos, err := ReadExamples(positivesPath)
	if err != nil {
		return nil, err
	}
	neg, err := ReadExamples(negativesPath)
	if err != nil {
		return nil, err
	}
	return NewDatasetOracle(pos, neg, defaultNegative), nil
}

// Positives returns the positive example set
func (o *DatasetOracle) Positives() mapset.Set[string] { return o.positives }

// Negatives returns the negative example set
func (o *DatasetOracle) Negatives() mapset.Set[string] { return o.negatives }

// IsMember answers from the labeled sets
func (o *DatasetOracle) IsMember(q string) bool {
	if o.positives.Contains(q) {
		return true
	}
	if o.negatives.Contains(q) {
		return false
	}
	return !o.defaultNegative
}

// IsEquivalent sweeps the labeled sets for a counterexample
func (o *DatasetOracle) IsEquivalent(dfa *DFA, _ []byte) (bool, string) {
	return sweepExamples(dfa, o.positives, o.negatives, true)
}

// ValidatorOracle answers membership by running the external validator and
// equivalence by sweeping the labeled sets. Membership verdicts are memoized
// so repeated table queries cost one validator run each.
type ValidatorOracle struct {
	oracle    interfaces.Oracle
	positives mapset.Set[string]
	negatives mapset.Set[string]
	memo      map[string]bool
}

// NewValidatorOracle wraps a process oracle for L* membership queries
func NewValidatorOracle(oracle interfaces.Oracle, positives, negatives mapset.Set[string]) *ValidatorOracle {
	return &ValidatorOracle{
		oracle:    oracle,
		positives: positives,
		negatives: negatives,
		memo:      make(map[string]bool),
	}
}

// IsMember runs the validator on the query string, memoized
func (o *ValidatorOracle) IsMember(q string) bool {
	if ok, hit := o.memo[q]; hit {
		return ok
	}
	ok := o.oracle.Ask([]byte(q)) == interfaces.VerdictOK
	o.memo[q] = ok
	return ok
}

// IsEquivalent sweeps the labeled sets for a counterexample
func (o *ValidatorOracle) IsEquivalent(dfa *DFA, _ []byte) (bool, string) {
	return sweepExamples(dfa, o.positives, o.negatives, true)
}
