package diag

import (
	"cmp"
	"slices"
)

// Bag collects diagnostics for one file, optionally capped.
type Bag struct {
	items []Diagnostic
	max   int
}

// NewBag creates a bag holding at most limit diagnostics; limit <= 0 means no limit.
func NewBag(limit int) *Bag {
	capacity := limit
	if capacity <= 0 || capacity > 64 {
		capacity = 16
	}
	return &Bag{items: make([]Diagnostic, 0, capacity), max: limit}
}

// Add appends d unless the bag is full and reports whether it was kept.
func (b *Bag) Add(d Diagnostic) bool {
	if b.full() {
		return false
	}
	b.items = append(b.items, d)
	return true
}

func (b *Bag) full() bool { return b.max > 0 && len(b.items) >= b.max }

func (b *Bag) any(sev Severity) bool {
	return slices.ContainsFunc(b.items, func(d Diagnostic) bool { return d.Severity >= sev })
}

// HasErrors reports whether any diagnostic is an error.
func (b *Bag) HasErrors() bool { return b.any(SevError) }

// HasWarnings reports whether any diagnostic is at least a warning.
func (b *Bag) HasWarnings() bool { return b.any(SevWarning) }

func (b *Bag) Len() int { return len(b.items) }

// Items returns the backing slice; callers must not modify it.
func (b *Bag) Items() []Diagnostic { return b.items }

// Merge appends everything from other, raising the cap so nothing is lost.
func (b *Bag) Merge(other *Bag) {
	if other == nil {
		return
	}
	if b.max > 0 {
		b.max = max(b.max, len(b.items)+len(other.items))
	}
	b.items = append(b.items, other.items...)
}

// Sort orders by position, then errors before warnings, then by code.
// Diagnostics that compare equal keep their report order.
func (b *Bag) Sort() {
	slices.SortStableFunc(b.items, func(x, y Diagnostic) int {
		return cmp.Or(
			cmp.Compare(x.Primary.File, y.Primary.File),
			cmp.Compare(x.Primary.Start, y.Primary.Start),
			cmp.Compare(x.Primary.End, y.Primary.End),
			cmp.Compare(y.Severity, x.Severity),
			cmp.Compare(x.Code, y.Code),
		)
	})
}

// Filter keeps only diagnostics for which keep returns true.
func (b *Bag) Filter(keep func(Diagnostic) bool) {
	b.items = slices.DeleteFunc(b.items, func(d Diagnostic) bool { return !keep(d) })
}

// Transform rewrites every diagnostic in place, e.g. to promote warnings.
func (b *Bag) Transform(f func(Diagnostic) Diagnostic) {
	for i, d := range b.items {
		b.items[i] = f(d)
	}
}
