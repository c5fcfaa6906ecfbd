// Package mapio reads and writes the vegetation and barrier map files.
//
// A map file is a headerless CSV of integers with one row per y and one
// column per x. Grids in memory are indexed [x][y].
package mapio

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ReadGrid parses a map CSV into an [x][y] grid.
func ReadGrid(r io.Reader) ([][]int, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.Comment = '#'

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading map csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("map csv is empty")
	}

	width, height := len(rows[0]), len(rows)
	grid := make([][]int, width)
	for x := range grid {
		grid[x] = make([]int, height)
	}
	for y, row := range rows {
		// csv.Reader already rejects rows with a different field count
		for x, field := range row {
			v, err := strconv.Atoi(strings.TrimSpace(field))
			if err != nil {
				return nil, fmt.Errorf("map csv row %d column %d: %w", y+1, x+1, err)
			}
			grid[x][y] = v
		}
	}
	return grid, nil
}

// WriteGrid writes an [x][y] grid as a map CSV.
func WriteGrid(w io.Writer, grid [][]int) error {
	cw := csv.NewWriter(w)
	width := len(grid)
	height := 0
	if width > 0 {
		height = len(grid[0])
	}

	row := make([]string, width)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			row[x] = strconv.Itoa(grid[x][y])
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing map csv: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// LoadVegetationCSV loads a vegetation map. Values are passed through
// unchanged; the environment clamps them.
func LoadVegetationCSV(path string) ([][]int, error) {
	return loadGrid(path)
}

// LoadBarrierCSV loads a barrier map. Any non-zero cell is a barrier.
func LoadBarrierCSV(path string) ([][]bool, error) {
	grid, err := loadGrid(path)
	if err != nil {
		return nil, err
	}
	mask := make([][]bool, len(grid))
	for x, col := range grid {
		mask[x] = make([]bool, len(col))
		for y, v := range col {
			mask[x][y] = v != 0
		}
	}
	return mask, nil
}

// SaveVegetationCSV writes a vegetation grid to path.
func SaveVegetationCSV(path string, grid [][]int) error {
	return saveGrid(path, grid)
}

// SaveBarrierCSV writes a barrier mask to path as 0/1 cells.
func SaveBarrierCSV(path string, mask [][]bool) error {
	grid := make([][]int, len(mask))
	for x, col := range mask {
		grid[x] = make([]int, len(col))
		for y, b := range col {
			if b {
				grid[x][y] = 1
			}
		}
	}
	return saveGrid(path, grid)
}

func loadGrid(path string) ([][]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening map file: %w", err)
	}
	defer f.Close()

	grid, err := ReadGrid(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return grid, nil
}

func saveGrid(path string, grid [][]int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating map file: %w", err)
	}
	if err := WriteGrid(f, grid); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
