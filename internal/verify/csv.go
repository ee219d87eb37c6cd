package verify

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
)

// ReadCSVRows loads and parses an exported CSV artifact. The application
// emits a header row followed by one row per movement.
func ReadCSVRows(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV artifact %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1 // header and data widths may differ across app versions
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV artifact %s: %w", path, err)
	}
	return rows, nil
}

// CSVContains asserts some row of the artifact carries the fragment.
func CSVContains(path, fragment string) error {
	rows, err := ReadCSVRows(path)
	if err != nil {
		return err
	}
	if !csvHasFragment(rows, fragment) {
		return &AssertionError{
			What:     "CSV content",
			Expected: "a row containing " + fragment,
			Actual:   fmt.Sprintf("%d rows without it", len(rows)),
		}
	}
	return nil
}

// CSVLacks asserts no row of the artifact carries the fragment.
func CSVLacks(path, fragment string) error {
	rows, err := ReadCSVRows(path)
	if err != nil {
		return err
	}
	if csvHasFragment(rows, fragment) {
		return &AssertionError{
			What:     "CSV content",
			Expected: "no row containing " + fragment,
			Actual:   "fragment present",
		}
	}
	return nil
}

func csvHasFragment(rows [][]string, fragment string) bool {
	for _, row := range rows {
		for _, field := range row {
			if strings.Contains(field, fragment) {
				return true
			}
		}
	}
	return false
}
