/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: charset.go
Description: Candidate alphabet for the Akaylee Repairer. Supplies the
characters tried for insertion and substitution edits, with deterministic
iteration order and optional restriction to a domain-specific subset.
*/

package core

import (
	"sort"

	mapset "github.com/deckarep/golang-set/v2"
)

// Charset is the alphabet enumerated for character-consuming edits.
// The default covers printable ASCII 0x21..0x7E plus newline and tab.
type Charset struct {
	set mapset.Set[byte]
}

// NewCharset creates a charset with the default alphabet
func NewCharset() *Charset {
	c := &Charset{set: mapset.NewThreadUnsafeSet[byte]()}
	c.Reset()
	return c
}

// Reset restores the default alphabet
func (c *Charset) Reset() {
	c.set.Clear()
	for b := byte(0x21); b <= 0x7E; b++ {
		c.set.Add(b)
	}
	c.set.Add('\n')
	c.set.Add('\t')
}

// SetAllowed restricts the alphabet to the bytes of the given string.
// Duplicates collapse; an empty string leaves the charset empty.
func (c *Charset) SetAllowed(chars string) {
	c.set.Clear()
	for i := 0; i < len(chars); i++ {
		c.set.Add(chars[i])
	}
}

// Len returns the number of distinct characters
func (c *Charset) Len() int {
	return c.set.Cardinality()
}

// Bytes returns the alphabet in ascending byte order. Iterating the slice
// keeps the search deterministic across runs.
func (c *Charset) Bytes() []byte {
	out := c.set.ToSlice()
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
