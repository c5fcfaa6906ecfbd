package mapio

import (
	"bytes"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestReadGridTransposes(t *testing.T) {
	in := "0,1,2\n3,4,0\n"
	grid, err := ReadGrid(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadGrid failed: %v", err)
	}

	want := [][]int{{0, 3}, {1, 4}, {2, 0}}
	if !reflect.DeepEqual(grid, want) {
		t.Errorf("grid = %v, want %v", grid, want)
	}
}

func TestReadGridErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"ragged", "1,2,3\n4,5\n"},
		{"not a number", "1,x\n2,3\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadGrid(strings.NewReader(tt.in)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestReadGridToleratesSpacesAndComments(t *testing.T) {
	in := "# generated\n1, 2\n 3 ,4\n"
	grid, err := ReadGrid(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadGrid failed: %v", err)
	}
	if grid[0][1] != 3 || grid[1][1] != 4 {
		t.Errorf("unexpected grid %v", grid)
	}
}

func TestWriteGridRoundTrip(t *testing.T) {
	grid := [][]int{{4, 0, 1}, {2, 3, 0}}

	var buf bytes.Buffer
	if err := WriteGrid(&buf, grid); err != nil {
		t.Fatalf("WriteGrid failed: %v", err)
	}
	if got := buf.String(); got != "4,2\n0,3\n1,0\n" {
		t.Errorf("unexpected csv %q", got)
	}

	back, err := ReadGrid(&buf)
	if err != nil {
		t.Fatalf("ReadGrid failed: %v", err)
	}
	if !reflect.DeepEqual(back, grid) {
		t.Errorf("round trip = %v, want %v", back, grid)
	}
}

func TestBarrierFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "river.csv")

	mask := [][]bool{{false, true}, {true, false}, {false, false}}
	if err := SaveBarrierCSV(path, mask); err != nil {
		t.Fatalf("SaveBarrierCSV failed: %v", err)
	}
	got, err := LoadBarrierCSV(path)
	if err != nil {
		t.Fatalf("LoadBarrierCSV failed: %v", err)
	}
	if !reflect.DeepEqual(got, mask) {
		t.Errorf("mask = %v, want %v", got, mask)
	}
}

func TestVegetationFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "veg.csv")

	grid := [][]int{{0, 4}, {9, 1}}
	if err := SaveVegetationCSV(path, grid); err != nil {
		t.Fatalf("SaveVegetationCSV failed: %v", err)
	}
	got, err := LoadVegetationCSV(path)
	if err != nil {
		t.Fatalf("LoadVegetationCSV failed: %v", err)
	}
	if !reflect.DeepEqual(got, grid) {
		t.Errorf("grid = %v, want %v", got, grid)
	}

	if _, err := LoadVegetationCSV(filepath.Join(dir, "missing.csv")); err == nil {
		t.Error("expected error for missing file")
	}
}
