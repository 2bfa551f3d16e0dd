package main

import (
	"strings"
	"unicode"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// renderTable draws a rounded table. Columns whose cells all read as numbers
// or byte sizes are right aligned; everything else stays left aligned.
func renderTable(headers []string, rows [][]string) string {
	if len(headers) == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(toRow(headers, len(headers)))
	for _, row := range rows {
		tw.AppendRow(toRow(row, len(headers)))
	}

	configs := make([]table.ColumnConfig, len(headers))
	for i := range headers {
		align := text.AlignLeft
		if numericColumn(rows, i) {
			align = text.AlignRight
		}
		configs[i] = table.ColumnConfig{Number: i + 1, Align: align, AlignHeader: text.AlignLeft}
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}

// toRow pads or truncates cells to width columns.
func toRow(cells []string, width int) table.Row {
	r := make(table.Row, width)
	for i := range r {
		if i < len(cells) {
			r[i] = cells[i]
		} else {
			r[i] = ""
		}
	}
	return r
}

func numericColumn(rows [][]string, col int) bool {
	seen := false
	for _, row := range rows {
		if col >= len(row) || row[col] == "" {
			continue
		}
		if !numericCell(row[col]) {
			return false
		}
		seen = true
	}
	return seen
}

// numericCell accepts values such as "12", "-0.5", "0.096s" and "1.2 kB".
func numericCell(s string) bool {
	s = strings.TrimPrefix(s, "-")
	if s == "" || !unicode.IsDigit(rune(s[0])) {
		return false
	}
	value, unit, _ := strings.Cut(s, " ")
	value = strings.TrimRightFunc(value, unicode.IsLetter)
	for _, r := range value {
		if !unicode.IsDigit(r) && r != '.' {
			return false
		}
	}
	for _, r := range unit {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
