package driver

import (
	"tensa/internal/diag"
	"tensa/internal/observ"
	"tensa/internal/source"
)

// appendTimingDiagnostic attaches the timer report to bag even when the bag
// is already full.
func appendTimingDiagnostic(bag *diag.Bag, timer *observ.Timer, file *source.File) {
	if bag == nil || timer == nil {
		return
	}
	entry := timer.Diagnostic(source.Span{File: file.ID})
	entry.Message += " - " + file.Path
	if bag.Add(entry) {
		return
	}
	overflow := diag.NewBag(len(bag.Items()) + 1)
	overflow.Add(entry)
	bag.Merge(overflow)
}
