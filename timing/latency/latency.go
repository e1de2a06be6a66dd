// Package latency provides the immutable wait-state tables hazard rules are
// defined by.
//
// A Table maps a latency class (the pass count of an MFMA, or 0 for
// single-issue instructions) to a number of required wait states. Tables are
// built once at package initialization and never mutated, so they can be
// shared by every compilation without synchronization.
package latency

import (
	"fmt"
	"sort"
	"strings"
)

// Table maps latency classes to wait-state counts.
type Table struct {
	entries map[int]int
	max     int
}

// NewTable creates a table from class -> wait states. The map is copied.
// Negative wait-state counts are a programming error.
func NewTable(entries map[int]int) Table {
	t := Table{entries: make(map[int]int, len(entries))}
	for class, nops := range entries {
		if nops < 0 {
			panic(fmt.Sprintf("latency: negative wait states %d for class %d", nops, class))
		}
		t.entries[class] = nops
		if nops > t.max {
			t.max = nops
		}
	}
	return t
}

// Uniform creates a table with a single entry for single-issue instructions.
func Uniform(nops int) Table {
	return NewTable(map[int]int{0: nops})
}

// Linear creates a table where each pass count requires passes+offset wait
// states.
func Linear(offset int, passes ...int) Table {
	entries := make(map[int]int, len(passes))
	for _, p := range passes {
		entries[p] = p + offset
	}
	return NewTable(entries)
}

// Lookup returns the wait states for a latency class.
func (t Table) Lookup(class int) (int, bool) {
	nops, ok := t.entries[class]
	return nops, ok
}

// Max returns the largest wait-state count in the table.
func (t Table) Max() int {
	return t.max
}

// Len returns the number of classes in the table.
func (t Table) Len() int {
	return len(t.entries)
}

// Classes returns the defined latency classes in ascending order.
func (t Table) Classes() []int {
	classes := make([]int, 0, len(t.entries))
	for c := range t.entries {
		classes = append(classes, c)
	}
	sort.Ints(classes)
	return classes
}

// Bounded returns true if no entry of t exceeds the entry of the same class
// in bound. Classes missing from bound are reported as unbounded.
func (t Table) Bounded(bound Table) bool {
	for class, nops := range t.entries {
		limit, ok := bound.entries[class]
		if !ok || nops > limit {
			return false
		}
	}
	return true
}

// String formats the table as "2p:4 8p:10 16p:18".
func (t Table) String() string {
	parts := make([]string, 0, len(t.entries))
	for _, c := range t.Classes() {
		if c == 0 {
			parts = append(parts, fmt.Sprintf("%d", t.entries[c]))
			continue
		}
		parts = append(parts, fmt.Sprintf("%dp:%d", c, t.entries[c]))
	}
	return strings.Join(parts, " ")
}
