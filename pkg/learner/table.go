/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: table.go
Description: Observation table for Angluin's L* algorithm in the Akaylee
Repairer. Tracks membership of prefix·suffix products, maintains closedness
and consistency, and extracts the hypothesis DFA from row signatures.
*/

package learner

import (
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
)

// ObservationTable holds (P, S, T) over an alphabet. P is the prefix set,
// S the suffix set, T the membership table. Row signatures over S identify
// hypothesis states.
type ObservationTable struct {
	prefixes []string
	suffixes []string
	alphabet []byte
	table    map[string]map[string]bool
}

// NewObservationTable creates a table seeded with the empty prefix and the
// empty suffix.
func NewObservationTable(alphabet []byte) *ObservationTable {
	return &ObservationTable{
		prefixes: []string{""},
		suffixes: []string{""},
		alphabet: alphabet,
		table:    make(map[string]map[string]bool),
	}
}

// Prefixes returns P
func (t *ObservationTable) Prefixes() []string {
	return t.prefixes
}

// Suffixes returns S
func (t *ObservationTable) Suffixes() []string {
	return t.suffixes
}

// Alphabet returns the symbol set
func (t *ObservationTable) Alphabet() []byte {
	return t.alphabet
}

// InitTable performs the epsilon query and fills the initial table
func (t *ObservationTable) InitTable(oracle Oracle) {
	t.UpdateTable(oracle)
}

// UpdateTable fills cells for all p in (P ∪ P·A) and all s in S, issuing
// membership queries for cells not yet known.
func (t *ObservationTable) UpdateTable(oracle Oracle) {
	seen := mapset.NewThreadUnsafeSet[string]()
	rows := make([]string, 0, len(t.prefixes)*(1+len(t.alphabet)))
	for _, p := range t.prefixes {
		if seen.Add(p) {
			rows = append(rows, p)
		}
	}
	for _, p := range t.prefixes {
		for _, a := range t.alphabet {
			r := p + string(a)
			if seen.Add(r) {
				rows = append(rows, r)
			}
		}
	}

	for _, p := range rows {
		row := t.table[p]
		if row == nil {
			row = make(map[string]bool)
			t.table[p] = row
		}
		for _, s := range t.suffixes {
			if _, ok := row[s]; ok {
				continue
			}
			row[s] = oracle.IsMember(p + s)
		}
	}
}

// Closed checks that every row of P·A appears as the row of some p in P.
// Returns the offending prefix when not closed.
func (t *ObservationTable) Closed() (bool, string) {
	inP := mapset.NewThreadUnsafeSet[string]()
	for _, p := range t.prefixes {
		inP.Add(t.signature(p))
	}

	for _, p := range t.prefixes {
		for _, a := range t.alphabet {
			ext := p + string(a)
			if !inP.Contains(t.signature(ext)) {
				return false, ext
			}
		}
	}
	return true, ""
}

// Consistent checks that equal rows stay equal after every symbol. When
// inconsistent it returns the distinguishing suffix a·s to add to S.
func (t *ObservationTable) Consistent() (bool, string) {
	for i := 0; i < len(t.prefixes); i++ {
		for j := i + 1; j < len(t.prefixes); j++ {
			p1, p2 := t.prefixes[i], t.prefixes[j]
			if t.signature(p1) != t.signature(p2) {
				continue
			}
			for _, a := range t.alphabet {
				for _, s := range t.suffixes {
					v1 := t.cell(p1+string(a), s)
					v2 := t.cell(p2+string(a), s)
					if v1 != v2 {
						return false, string(a) + s
					}
				}
			}
		}
	}
	return true, ""
}

// AddPrefix extends P with a new access string and updates the table
func (t *ObservationTable) AddPrefix(p string, oracle Oracle) {
	for _, existing := range t.prefixes {
		if existing == p {
			return
		}
	}
	t.prefixes = append(t.prefixes, p)
	t.UpdateTable(oracle)
}

// AddSuffix extends S with a new distinguishing suffix and updates the table
func (t *ObservationTable) AddSuffix(s string, oracle Oracle) {
	for _, existing := range t.suffixes {
		if existing == s {
			return
		}
	}
	t.suffixes = append(t.suffixes, s)
	t.UpdateTable(oracle)
}

// ToDFA extracts the hypothesis DFA. Distinct row signatures over P become
// states; a state is accepting when its representative row holds for the
// empty suffix.
func (t *ObservationTable) ToDFA() *DFA {
	// State id -> representative prefix, first occurrence wins
	rep := make(map[string]string)
	order := make([]string, 0, len(t.prefixes))
	for _, p := range t.prefixes {
		sid := t.signature(p)
		if _, ok := rep[sid]; !ok {
			rep[sid] = p
			order = append(order, sid)
		}
	}

	dfa := NewDFA()
	dfa.SetStart(t.signature(""))

	for _, sid := range order {
		p := rep[sid]
		dfa.AddState(sid, t.cell(p, ""))
	}
	for _, sid := range order {
		p := rep[sid]
		for _, a := range t.alphabet {
			dfa.AddTransition(sid, a, t.signature(p+string(a)))
		}
	}
	return dfa
}

// cell returns T[p][s], defaulting to false for unknown cells
func (t *ObservationTable) cell(p, s string) bool {
	row, ok := t.table[p]
	if !ok {
		return false
	}
	return row[s]
}

// signature is the 0/1 membership pattern of row p across S, e.g. "<0101>"
func (t *ObservationTable) signature(p string) string {
	var id strings.Builder
	id.Grow(len(t.suffixes) + 2)
	id.WriteByte('<')
	for _, s := range t.suffixes {
		if t.cell(p, s) {
			id.WriteByte('1')
		} else {
			id.WriteByte('0')
		}
	}
	id.WriteByte('>')
	return id.String()
}
