package raster

import (
	"slices"
	"testing"
)

func TestRenderArgs(t *testing.T) {
	args := renderArgs("/tmp/bill.pdf", 1, 300, "/tmp/out.png")

	want := []string{
		"-density", "300",
		"/tmp/bill.pdf[0]",
		"-background", "white",
		"-alpha", "remove",
		"/tmp/out.png",
	}
	if !slices.Equal(args, want) {
		t.Fatalf("args = %v, want %v", args, want)
	}
}

func TestRenderArgsZeroBasedSelector(t *testing.T) {
	args := renderArgs("bill.pdf", 3, 150, "out.png")

	if !slices.Contains(args, "bill.pdf[2]") {
		t.Fatalf("args = %v, want zero-based selector bill.pdf[2]", args)
	}
	if !slices.Contains(args, "150") {
		t.Fatalf("args = %v, want density 150", args)
	}
}

func TestPageCountMissingFile(t *testing.T) {
	if _, err := PageCount("/nonexistent/bill.pdf"); err == nil {
		t.Fatal("expected error for missing file")
	}
}
