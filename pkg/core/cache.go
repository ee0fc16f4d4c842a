/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: cache.go
Description: Oracle query cache for the Akaylee Repairer. Deduplicates
candidate strings before they reach the validator so each candidate costs at
most one oracle call.
*/

package core

import (
	mapset "github.com/deckarep/golang-set/v2"
)

// QueryCache remembers every candidate already submitted to the oracle.
// A repeated candidate is known non-accepting: had it been accepted, the
// search would already have terminated.
type QueryCache struct {
	seen mapset.Set[string]
}

// NewQueryCache creates an empty cache
func NewQueryCache() *QueryCache {
	return &QueryCache{seen: mapset.NewThreadUnsafeSet[string]()}
}

// Remember records the candidate and reports whether it was new.
// false means the candidate was already submitted.
func (c *QueryCache) Remember(candidate []byte) bool {
	return c.seen.Add(string(candidate))
}

// Size returns the number of distinct candidates seen so far
func (c *QueryCache) Size() int {
	return c.seen.Cardinality()
}
