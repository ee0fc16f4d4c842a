/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: lstar.go
Description: L* learning loop for the Akaylee Repairer. Drives the observation
table to closedness and consistency, builds hypothesis automata, and refines
them with counterexample prefixes until the oracle reports equivalence.
*/

package learner

// Oracle answers membership and (approximate) equivalence queries for L*
type Oracle interface {
	// IsMember reports whether the query string is in the target language
	IsMember(q string) bool
	// IsEquivalent checks the hypothesis against the target. When not
	// equivalent it returns a counterexample string.
	IsEquivalent(dfa *DFA, alphabet []byte) (bool, string)
}

// Learn runs L* over the table and oracle and returns the learned DFA.
// Optional seeds are added as access strings (all of their prefixes) after
// initialization, biasing the table with known positives first.
func Learn(t *ObservationTable, oracle Oracle, seeds []string) *DFA {
	t.InitTable(oracle)
	for _, s := range seeds {
		for i := 1; i <= len(s); i++ {
			t.AddPrefix(s[:i], oracle)
		}
	}

	for {
		// Drive the table to closedness and consistency
		for {
			isClosed, offending := t.Closed()
			isConsistent, suffix := t.Consistent()
			if isClosed && isConsistent {
				break
			}
			if !isClosed {
				t.AddPrefix(offending, oracle)
				continue
			}
			t.AddSuffix(suffix, oracle)
		}

		dfa := t.ToDFA()

		eq, counterexample := oracle.IsEquivalent(dfa, t.Alphabet())
		if eq {
			return dfa
		}

		// Refine with every prefix of the counterexample
		for i := 1; i <= len(counterexample); i++ {
			t.AddPrefix(counterexample[:i], oracle)
		}
	}
}
