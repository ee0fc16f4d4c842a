/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: generate.go
Description: Candidate generation for the Akaylee Repairer. Walks the covering
grammar with a vector of edit applications and materializes the variant string
that results from applying every selected edit exactly once.
*/

package grammar

import (
	"bytes"
)

// EditKind classifies an edit-carrying production
type EditKind int

const (
	EditInsert EditKind = iota
	EditDelete
	EditSubstitute
)

// String returns the edit family name
func (k EditKind) String() string {
	switch k {
	case EditInsert:
		return "insert"
	case EditDelete:
		return "delete"
	case EditSubstitute:
		return "substitute"
	default:
		return "unknown"
	}
}

// Edit is one non-identity alternative of the covering grammar: the target
// nonterminal plus the chosen right-hand side.
type Edit struct {
	LHS  string
	RHS  Production
	Kind EditKind
}

// NeedsChar reports whether applying this edit consumes a character
func (e Edit) NeedsChar() bool {
	return e.Kind == EditInsert || e.Kind == EditSubstitute
}

// Tag returns the position tag of the edit's marker symbol. Insertion edits
// carry no tagged marker and report -1, whether they precede a slot terminal
// or sit at end of input.
func (e Edit) Tag() int {
	for _, s := range e.RHS {
		if s.Kind == SymbolDelete || s.Kind == SymbolSubstituteAny {
			return s.Tag
		}
	}
	return -1
}

// EditApp tracks the consumption of one edit during a single derivation.
// Records are built fresh per candidate and discarded afterwards.
type EditApp struct {
	Edit      *Edit
	Applied   bool
	NeedsChar bool
	Char      byte
	CharUsed  bool
}

// classify identifies an edit-carrying production; ok is false for the match
// branch, the sentinel epsilon and structural rules.
func classify(rhs Production) (EditKind, bool) {
	if len(rhs) > 0 && rhs[0].Kind == SymbolInsertAny {
		return EditInsert, true
	}
	if len(rhs) == 1 && rhs[0].Kind == SymbolDelete {
		return EditDelete, true
	}
	if len(rhs) == 1 && rhs[0].Kind == SymbolSubstituteAny {
		return EditSubstitute, true
	}
	return 0, false
}

// CollectEdits gathers every edit-carrying production of the covering grammar
// in a stable order: all insertions, then all deletions, then all
// substitutions, each family in grammar definition order. The index of an
// edit in the returned slice is its identity for the search.
func CollectEdits(cov *Grammar) []Edit {
	var ins, del, sub []Edit
	for _, lhs := range cov.Nonterminals() {
		for _, rhs := range cov.Productions(lhs) {
			kind, ok := classify(rhs)
			if !ok {
				continue
			}
			e := Edit{LHS: lhs, RHS: rhs, Kind: kind}
			switch kind {
			case EditInsert:
				ins = append(ins, e)
			case EditDelete:
				del = append(del, e)
			case EditSubstitute:
				sub = append(sub, e)
			}
		}
	}
	out := make([]Edit, 0, len(ins)+len(del)+len(sub))
	out = append(out, ins...)
	out = append(out, del...)
	out = append(out, sub...)
	return out
}

// Generate materializes a candidate string from the covering grammar under
// the given edit applications. Deterministic for a fixed (grammar, apps)
// pair. Callers must check AllApplied afterwards; a derivation that leaves a
// selected edit unused is invalid.
func Generate(cov *Grammar, apps []EditApp) []byte {
	var buf bytes.Buffer
	genSymbol(Nonterminal(cov.Start()), cov, apps, -1, &buf)
	return buf.Bytes()
}

// AllApplied reports whether every selected edit was consumed by the
// derivation.
func AllApplied(apps []EditApp) bool {
	for i := range apps {
		if !apps[i].Applied {
			return false
		}
	}
	return true
}

// genSymbol emits the expansion of one symbol. active is the index of the
// edit whose subtree is being expanded, or -1 outside any edit. Wildcards are
// inert outside an active edit subtree, and nested edit activation is
// forbidden: inside an active subtree nonterminals always take their first
// (match) alternative.
func genSymbol(s Symbol, cov *Grammar, apps []EditApp, active int, buf *bytes.Buffer) {
	switch s.Kind {
	case SymbolEnd, SymbolDelete:
		return

	case SymbolInsertAny, SymbolSubstituteAny:
		if active >= 0 {
			a := &apps[active]
			if a.Char != 0 && !a.CharUsed {
				a.CharUsed = true
				buf.WriteByte(a.Char)
			}
		}
		return

	case SymbolTerminal:
		buf.WriteByte(s.Byte)
		return

	case SymbolNonterminal:
		if !cov.Has(s.Name) {
			return
		}
		if active == -1 {
			for i := range apps {
				if apps[i].Applied || apps[i].Edit.LHS != s.Name {
					continue
				}
				apps[i].Applied = true
				for _, t := range apps[i].Edit.RHS {
					genSymbol(t, cov, apps, i, buf)
				}
				return
			}
		}
		first := cov.Productions(s.Name)[0]
		for _, t := range first {
			genSymbol(t, cov, apps, active, buf)
		}
	}
}
