/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: engine.go
Description: Edit-search engine for the Akaylee Repairer. Enumerates multi-edit
selections over the covering grammar in increasing edit count, prunes
character-hungry combinations, generates candidates and submits them to the
cached oracle until one is accepted or the budget is exhausted.
*/

package core

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/kleascm/akaylee-repairer/pkg/grammar"
	"github.com/kleascm/akaylee-repairer/pkg/interfaces"
	"github.com/kleascm/akaylee-repairer/pkg/logging"
)

// ErrNoRepair is returned when the search exhausts the edit budget without
// finding an accepted candidate.
var ErrNoRepair = errors.New("no repair found within edit budget")

// Result describes a finished repair search
type Result struct {
	SessionID string
	Candidate []byte
	EditCount int
	Duration  time.Duration
}

// Engine implements the covering-grammar edit search
type Engine struct {
	config  *interfaces.RepairConfig
	oracle  interfaces.Oracle
	cache   *QueryCache
	charset *Charset
	logger  *logging.Logger

	sessionID string
}

// NewEngine creates a repair engine for one input
func NewEngine(config *interfaces.RepairConfig, oracle interfaces.Oracle, logger *logging.Logger) *Engine {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	cs := NewCharset()
	if config.Alphabet != "" {
		cs.SetAllowed(config.Alphabet)
	}
	return &Engine{
		config:    config,
		oracle:    oracle,
		cache:     NewQueryCache(),
		charset:   cs,
		logger:    logger,
		sessionID: uuid.New().String(),
	}
}

// SessionID returns the unique identifier of this repair session
func (e *Engine) SessionID() string {
	return e.sessionID
}

// ask submits a candidate through the query cache. A cache hit is treated as
// a rejection without calling the oracle.
func (e *Engine) ask(candidate []byte) interfaces.Verdict {
	if !e.cache.Remember(candidate) {
		return interfaces.VerdictErr
	}
	return e.oracle.Ask(candidate)
}

// Repair searches for the closest accepted variant of the input. It returns
// the first candidate the oracle accepts, trying edit counts 1..MaxEdits in
// order so the smallest-edit-count repair wins. ErrNoRepair is returned when
// the budget is exhausted.
func (e *Engine) Repair(input []byte) (*Result, error) {
	start := time.Now()

	e.logger.GetLogger().WithFields(logrus.Fields{
		"session":        e.sessionID,
		"input_size":     len(input),
		"max_edits":      e.config.MaxEdits,
		"max_char_edits": e.config.MaxCharEdits,
		"alphabet_size":  e.charset.Len(),
	}).Info("Repair session started")

	// Zero-edit probe: the input may already be accepted
	if e.ask(input) == interfaces.VerdictOK {
		e.logger.LogRepairOutcome(e.sessionID, true, 0, nil)
		return &Result{
			SessionID: e.sessionID,
			Candidate: input,
			EditCount: 0,
			Duration:  time.Since(start),
		}, nil
	}

	base := grammar.FromString(input)
	cov := base.Covering(e.config.AllowAppend)
	edits := grammar.CollectEdits(cov)
	alphabet := e.charset.Bytes()

	e.logger.GetLogger().WithFields(logrus.Fields{
		"session":      e.sessionID,
		"edit_count":   len(edits),
		"allow_append": e.config.AllowAppend,
	}).Debug("Covering grammar built")

	for k := 1; k <= e.config.MaxEdits; k++ {
		e.logger.GetLogger().WithFields(logrus.Fields{
			"session": e.sessionID,
			"k":       k,
			"calls":   e.oracle.Stats().Calls,
		}).Debug("Searching edit combinations")

		sel := make([]int, k)
		if cand := e.searchCombinations(cov, edits, alphabet, sel, 0, 0); cand != nil {
			e.logger.LogRepairOutcome(e.sessionID, true, k, nil)
			return &Result{
				SessionID: e.sessionID,
				Candidate: cand,
				EditCount: k,
				Duration:  time.Since(start),
			}, nil
		}
	}

	e.logger.LogRepairOutcome(e.sessionID, false, e.config.MaxEdits, nil)
	return nil, ErrNoRepair
}

// searchCombinations enumerates k-subsets of edit indices in lexicographic
// order, filling sel[idx:]. It returns the accepted candidate or nil.
func (e *Engine) searchCombinations(cov *grammar.Grammar, edits []grammar.Edit, alphabet []byte, sel []int, idx, from int) []byte {
	if idx == len(sel) {
		// Prune: bound the number of character-consuming edits per
		// combination; this caps the char search at |Σ|^MaxCharEdits.
		need := 0
		for _, i := range sel {
			if edits[i].NeedsChar() {
				need++
			}
		}
		if need > e.config.MaxCharEdits {
			return nil
		}
		return e.assignChars(cov, edits, alphabet, sel, need, nil)
	}

	for i := from; i < len(edits); i++ {
		sel[idx] = i
		if cand := e.searchCombinations(cov, edits, alphabet, sel, idx+1, i+1); cand != nil {
			return cand
		}
	}
	return nil
}

// assignChars enumerates character assignments for the char-consuming edits
// of the selection, in alphabet order.
func (e *Engine) assignChars(cov *grammar.Grammar, edits []grammar.Edit, alphabet []byte, sel []int, need int, chars []byte) []byte {
	if len(chars) == need {
		return e.buildAndTest(cov, edits, sel, chars)
	}
	for _, c := range alphabet {
		if cand := e.assignChars(cov, edits, alphabet, sel, need, append(chars, c)); cand != nil {
			return cand
		}
	}
	return nil
}

// buildAndTest materializes one candidate from a selection plus character
// assignment and submits it. Derivations that leave an edit unapplied are
// discarded without an oracle call.
func (e *Engine) buildAndTest(cov *grammar.Grammar, edits []grammar.Edit, sel []int, chars []byte) []byte {
	apps := make([]grammar.EditApp, 0, len(sel))
	ci := 0
	for _, idx := range sel {
		a := grammar.EditApp{Edit: &edits[idx], NeedsChar: edits[idx].NeedsChar()}
		if a.NeedsChar {
			a.Char = chars[ci]
			ci++
		}
		apps = append(apps, a)
	}

	cand := grammar.Generate(cov, apps)
	if !grammar.AllApplied(apps) {
		return nil
	}

	if e.ask(cand) == interfaces.VerdictOK {
		e.logger.LogCandidate(len(sel), logging.EscapePreview(cand), map[string]interface{}{
			"session": e.sessionID,
		})
		e.logger.GetLogger().WithFields(logrus.Fields{
			"session":   e.sessionID,
			"edits":     len(sel),
			"candidate": string(cand),
		}).Info("Repair found")
		return cand
	}
	return nil
}
