package diagfmt

import (
	"fmt"
	"io"

	"tensa/internal/diag"
	"tensa/internal/source"
)

// Short prints one line per diagnostic: SEV CODE path:line:col message.
func Short(w io.Writer, bag *diag.Bag, fs *source.FileSet, mode PathMode, includeNotes bool) error {
	out := diag.Lines(bag.Items(), fs, includeNotes, mode.String())
	if out == "" {
		return nil
	}
	_, err := fmt.Fprintln(w, out)
	return err
}
