package main

import (
	"encoding/json"
	"fmt"
	"io"

	"penumbra/internal/core"

	"github.com/olekukonko/tablewriter"
)

// writeJSON encodes v indented, the way every --json output is written
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding json: %w", err)
	}
	return nil
}

// newTable returns a borderless table with the given header
func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	return table
}

// truncate shortens s to max runes, marking the cut with "..."
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// describePasses reports which halves of the resolution an edit reran
func describePasses(p core.Passes) string {
	switch {
	case p.Files && p.Meta:
		return "recomputed files and manipulations"
	case p.Files:
		return "recomputed files"
	case p.Meta:
		return "recomputed manipulations"
	default:
		return "no recomputation needed"
	}
}
