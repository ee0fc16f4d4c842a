/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: grammar.go
Description: Grammar model for the Akaylee Repairer. Builds the per-character
base grammar from a raw input string and derives the covering grammar that
encodes every single-character edit (insert, delete, substitute) as an
alternative production.
*/

package grammar

import (
	"fmt"
)

// StartSymbol is the root nonterminal of every grammar built here.
const StartSymbol = "<start>"

// SymbolKind discriminates the reserved symbol families of a covering grammar
type SymbolKind int

const (
	SymbolNonterminal SymbolKind = iota
	SymbolTerminal
	SymbolEnd           // end sentinel, generates the empty string
	SymbolInsertAny     // insertion wildcard, consumes one char from its edit
	SymbolDelete        // deletion marker, generates the empty string
	SymbolSubstituteAny // substitution wildcard, consumes one char from its edit
)

// Symbol is one token in a production. Name is set for nonterminals, Byte for
// terminals, Tag for position-keyed edit markers.
type Symbol struct {
	Kind SymbolKind
	Name string
	Byte byte
	Tag  int
}

// Nonterminal returns a nonterminal symbol with the given name
func Nonterminal(name string) Symbol { return Symbol{Kind: SymbolNonterminal, Name: name} }

// Terminal returns a terminal symbol for a single input byte
func Terminal(b byte) Symbol { return Symbol{Kind: SymbolTerminal, Byte: b} }

// End returns the end sentinel symbol
func End() Symbol { return Symbol{Kind: SymbolEnd} }

// InsertAny returns the insertion wildcard symbol
func InsertAny() Symbol { return Symbol{Kind: SymbolInsertAny} }

// Delete returns a deletion marker keyed to a character slot
func Delete(tag int) Symbol { return Symbol{Kind: SymbolDelete, Tag: tag} }

// SubstituteAny returns a substitution wildcard keyed to a character slot
func SubstituteAny(tag int) Symbol { return Symbol{Kind: SymbolSubstituteAny, Tag: tag} }

// Production is one ordered right-hand side
type Production []Symbol

// Grammar is an ordered mapping from nonterminal name to alternatives.
// Order is significant twice over: nonterminals iterate in insertion order so
// edit collection is deterministic, and the first alternative of each
// nonterminal is the identity/match branch.
type Grammar struct {
	start string
	order []string
	rules map[string][]Production
}

// New creates an empty grammar rooted at the given start symbol
func New(start string) *Grammar {
	return &Grammar{
		start: start,
		rules: make(map[string][]Production),
	}
}

// Add appends one alternative production for the given nonterminal
func (g *Grammar) Add(lhs string, rhs Production) {
	if _, ok := g.rules[lhs]; !ok {
		g.order = append(g.order, lhs)
	}
	g.rules[lhs] = append(g.rules[lhs], rhs)
}

// Has reports whether the grammar defines the given nonterminal
func (g *Grammar) Has(lhs string) bool {
	_, ok := g.rules[lhs]
	return ok
}

// Productions returns the alternatives of a nonterminal in definition order
func (g *Grammar) Productions(lhs string) []Production {
	return g.rules[lhs]
}

// Nonterminals returns all nonterminal names in insertion order
func (g *Grammar) Nonterminals() []string {
	return g.order
}

// Start returns the start symbol name
func (g *Grammar) Start() string {
	return g.start
}

// slotName names the nonterminal of the k-th character slot
func slotName(k int) string {
	return fmt.Sprintf("<c%d>", k)
}

// FromString builds the base grammar over the raw input:
//
//	<start> → <c0> <c1> … <cN>
//	<cK>    → input[K]          for K in [0, len)
//	<cN>    → end sentinel
//
// The base grammar derives exactly the input string and nothing else.
func FromString(input []byte) *Grammar {
	g := New(StartSymbol)
	startRHS := make(Production, 0, len(input)+1)

	for k, b := range input {
		nt := slotName(k)
		startRHS = append(startRHS, Nonterminal(nt))
		g.Add(nt, Production{Terminal(b)})
	}

	// Sentinel slot marks logical end of input
	end := slotName(len(input))
	g.Add(end, Production{End()})
	startRHS = append(startRHS, Nonterminal(end))

	g.Add(StartSymbol, startRHS)
	return g
}

// Covering derives the covering grammar. Every single-terminal rule
// <cK> → t expands to four alternatives in canonical order:
//
//	<cK> → t                (match)
//	<cK> → DEL[K]           (delete)
//	<cK> → INS t            (insert-before)
//	<cK> → SUB[K]           (substitute)
//
// The sentinel rule is kept; when allowAppend is set it additionally gains an
// INS alternative so repairs may append at end of input. Structural rules
// (the <start> sequence) are copied verbatim. Position tags are unique per
// slot so each character can be edited independently.
func (g *Grammar) Covering(allowAppend bool) *Grammar {
	cg := New(g.start)
	tag := 0

	for _, lhs := range g.order {
		for _, rhs := range g.rules[lhs] {
			switch {
			case len(rhs) == 1 && rhs[0].Kind == SymbolTerminal:
				t := rhs[0]
				cg.Add(lhs, Production{t})
				cg.Add(lhs, Production{Delete(tag)})
				cg.Add(lhs, Production{InsertAny(), t})
				cg.Add(lhs, Production{SubstituteAny(tag)})
				tag++
			case len(rhs) == 1 && rhs[0].Kind == SymbolEnd:
				cg.Add(lhs, Production{End()})
				if allowAppend {
					cg.Add(lhs, Production{InsertAny()})
				}
			default:
				// Structural rule, copy as-is
				cp := make(Production, len(rhs))
				copy(cp, rhs)
				cg.Add(lhs, cp)
			}
		}
	}
	return cg
}
