package tui

import "strings"

// visibleRange is the slice of n rows to draw so that cursor stays on a
// screen of the given height.
func visibleRange(cursor, n, height int) (start, end int) {
	if height < 1 {
		height = 10
	}
	if cursor >= height {
		start = cursor - height + 1
	}
	return start, min(start+height, n)
}

// renderRows writes rows[start:end] under header, marking the cursor row.
func renderRows(b *strings.Builder, header string, rows []string, cursor, height int) {
	b.WriteString(headerStyle.Render("  "+header) + "\n")
	start, end := visibleRange(cursor, len(rows), height)
	for i := start; i < end; i++ {
		if i == cursor {
			b.WriteString(selectedStyle.Render("> "+rows[i]) + "\n")
			continue
		}
		b.WriteString("  " + rows[i] + "\n")
	}
}

// renderFields writes label/value pairs, one per line.
func renderFields(b *strings.Builder, fields [][2]string) {
	for _, f := range fields {
		b.WriteString(labelStyle.Render(f[0]+":") + " " + f[1] + "\n")
	}
}
