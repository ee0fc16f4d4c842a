/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: dfa.go
Description: DFA representation for the Akaylee Repairer's L* learner. States
are observation-table row signatures. Supports word acceptance, Graphviz DOT
export, and right-linear grammar JSON export.
*/

package learner

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
)

// DFA is a deterministic automaton built from an observation table.
// State identifiers are row signatures like "<0101>".
type DFA struct {
	start     string
	states    mapset.Set[string]
	accepting mapset.Set[string]
	delta     map[string]map[byte]string
}

// NewDFA creates an empty DFA
func NewDFA() *DFA {
	return &DFA{
		states:    mapset.NewThreadUnsafeSet[string](),
		accepting: mapset.NewThreadUnsafeSet[string](),
		delta:     make(map[string]map[byte]string),
	}
}

// SetStart sets the start state
func (d *DFA) SetStart(s string) {
	d.start = s
	d.states.Add(s)
}

// AddState adds a state, marking it accepting when requested
func (d *DFA) AddState(s string, accepting bool) {
	d.states.Add(s)
	if accepting {
		d.accepting.Add(s)
	}
}

// AddTransition adds the transition from --a--> to
func (d *DFA) AddTransition(from string, a byte, to string) {
	d.states.Add(from)
	d.states.Add(to)
	if d.delta[from] == nil {
		d.delta[from] = make(map[byte]string)
	}
	d.delta[from][a] = to
}

// Start returns the start state
func (d *DFA) Start() string {
	return d.start
}

// StateCount returns the number of states
func (d *DFA) StateCount() int {
	return d.states.Cardinality()
}

// IsAccepting reports whether the state is accepting
func (d *DFA) IsAccepting(s string) bool {
	return d.accepting.Contains(s)
}

// Accepts runs the DFA on a word. Missing transitions reject.
func (d *DFA) Accepts(word string) bool {
	if d.start == "" {
		return false
	}
	cur := d.start
	for i := 0; i < len(word); i++ {
		next, ok := d.delta[cur][word[i]]
		if !ok {
			return false
		}
		cur = next
	}
	return d.accepting.Contains(cur)
}

// sortedStates returns all states in lexicographic order for stable exports
func (d *DFA) sortedStates() []string {
	out := d.states.ToSlice()
	sort.Strings(out)
	return out
}

// ToDOT exports the automaton in Graphviz DOT format
func (d *DFA) ToDOT() string {
	var b strings.Builder
	b.WriteString("digraph DFA {\n")
	b.WriteString("  rankdir=LR;\n")
	b.WriteString("  node [shape=circle];\n")
	b.WriteString("  __start [shape=point];\n")
	if d.start != "" {
		fmt.Fprintf(&b, "  __start -> %q;\n", d.start)
	}

	for _, s := range d.sortedStates() {
		shape := "circle"
		if d.accepting.Contains(s) {
			shape = "doublecircle"
		}
		fmt.Fprintf(&b, "  %q [shape=%s];\n", s, shape)
	}

	for _, from := range d.sortedStates() {
		row := d.delta[from]
		syms := make([]int, 0, len(row))
		for a := range row {
			syms = append(syms, int(a))
		}
		sort.Ints(syms)
		for _, a := range syms {
			fmt.Fprintf(&b, "  %q -> %q [label=%q];\n", from, row[byte(a)], escapeLabel(byte(a)))
		}
	}

	b.WriteString("}\n")
	return b.String()
}

func escapeLabel(c byte) string {
	switch c {
	case '\n':
		return `\n`
	case '\t':
		return `\t`
	default:
		return string(c)
	}
}

// rightLinearGrammar mirrors the emitted JSON shape: each state maps to a
// list of alternatives, where an alternative is [symbol, next_state] or the
// empty list for epsilon at accepting states.
type rightLinearGrammar struct {
	StartSym string                `json:"start_sym"`
	Alphabet []string              `json:"alphabet"`
	Grammar  map[string][][]string `json:"grammar"`
}

// ToRightLinearJSON exports the automaton as a right-linear grammar JSON
// document over the given alphabet.
func (d *DFA) ToRightLinearJSON(alphabet []byte) ([]byte, error) {
	g := rightLinearGrammar{
		StartSym: d.start,
		Alphabet: make([]string, 0, len(alphabet)),
		Grammar:  make(map[string][][]string),
	}
	for _, a := range alphabet {
		g.Alphabet = append(g.Alphabet, string(a))
	}

	for _, s := range d.sortedStates() {
		alts := make([][]string, 0)
		row := d.delta[s]
		syms := make([]int, 0, len(row))
		for a := range row {
			syms = append(syms, int(a))
		}
		sort.Ints(syms)
		for _, a := range syms {
			alts = append(alts, []string{string(byte(a)), row[byte(a)]})
		}
		if d.accepting.Contains(s) {
			alts = append(alts, []string{})
		}
		g.Grammar[s] = alts
	}

	return json.MarshalIndent(g, "", "  ")
}
