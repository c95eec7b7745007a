// Package display renders query results as a fixed-width console table.
package display

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/couchcryptid/felt-quakes/internal/domain"
	"github.com/mattn/go-runewidth"
)

// Column widths in display cells.
var widths = [...]int{25, 32, 10, 17}

// RenderTable writes a header and one row per event. referenceName labels the
// distance column, e.g. "LA" gives "Distance from LA".
func RenderTable(w io.Writer, events []domain.Event, referenceName string) error {
	bw := bufio.NewWriter(w)

	if err := writeRow(bw, "Time", "Place", "Magnitude", "Distance from "+referenceName); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, e := range events {
		if err := writeRow(bw, e.Time, e.Place, e.Magnitude, strconv.Itoa(e.Distance)); err != nil {
			return fmt.Errorf("write row %s: %w", e.Time, err)
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flush table: %w", err)
	}
	return nil
}

func writeRow(w io.Writer, cells ...string) error {
	var sb strings.Builder
	for i, cell := range cells {
		if i > 0 {
			sb.WriteString(" ")
		}
		// Pad by display width so wide place names stay aligned.
		sb.WriteString(runewidth.FillRight(cell, widths[i]))
	}
	line := strings.TrimRight(sb.String(), " ") + "\n"
	_, err := io.WriteString(w, line)
	return err
}
