package main

import (
	"strings"
	"testing"
)

func TestNumericCell(t *testing.T) {
	for _, s := range []string{"12", "-0.5", "0.096s", "1.2 kB", "40 B"} {
		if !numericCell(s) {
			t.Errorf("%q should read as a number", s)
		}
	}
	for _, s := range []string{"", "train/masks.npy", "(2, 3)", "<f4", "true", "1.2 k B", "none"} {
		if numericCell(s) {
			t.Errorf("%q should not read as a number", s)
		}
	}
}

func TestRenderTableAlignsNumericColumns(t *testing.T) {
	out := renderTable([]string{"Name", "Size"}, [][]string{
		{"a", "5 B"},
		{"longer", "1.2 kB"},
		{"c"},
	})
	lines := strings.Split(out, "\n")
	var rowA string
	for _, line := range lines {
		if strings.Contains(line, " a ") {
			rowA = line
		}
	}
	if rowA == "" {
		t.Fatalf("row a missing:\n%s", out)
	}
	// right aligned: the size sits against the closing border
	if !strings.Contains(rowA, "    5 B │") {
		t.Fatalf("size column should be right aligned:\n%s", out)
	}
	if !strings.Contains(rowA, "│ a      │") {
		t.Fatalf("name column should be left aligned:\n%s", out)
	}
	if renderTable(nil, nil) != "" {
		t.Fatal("no headers should render nothing")
	}
}

func TestNumericColumnIgnoresBlanks(t *testing.T) {
	rows := [][]string{{"x", ""}, {"y", "3"}}
	if !numericColumn(rows, 1) {
		t.Fatal("blank cells should not break a numeric column")
	}
	if numericColumn([][]string{{"x", ""}}, 1) {
		t.Fatal("an all blank column stays left aligned")
	}
}
