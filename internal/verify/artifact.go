package verify

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/ternarybob/probatio/internal/await"
)

// partialSuffix marks an in-progress Chrome download. A download is
// complete when the expected file exists and no partial file remains.
const partialSuffix = ".crdownload"

// WaitForDownload polls dir until filename exists with no in-progress
// sibling, then asserts it is non-empty. Completion is detected by file
// state, never by a timer.
func WaitForDownload(ctx context.Context, dir, filename string, timeout time.Duration) (string, error) {
	path := filepath.Join(dir, filename)
	err := await.Until(ctx, fmt.Sprintf("download of %s", filename), timeout, func(context.Context) (bool, error) {
		if _, err := os.Stat(path); err != nil {
			return false, nil
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			return false, err
		}
		for _, e := range entries {
			if strings.HasSuffix(e.Name(), partialSuffix) {
				return false, nil
			}
		}
		return true, nil
	})
	if err != nil {
		return "", err
	}
	if err := FileNonEmpty(path); err != nil {
		return "", err
	}
	return path, nil
}

// FileNonEmpty asserts path exists and has non-zero size.
func FileNonEmpty(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("artifact %s not found: %w", path, err)
	}
	if info.Size() == 0 {
		return &AssertionError{What: "artifact size", Expected: "non-empty file", Actual: path + " is empty"}
	}
	return nil
}

// ValidPDF asserts the artifact is structurally a PDF document. Content is
// opaque to the harness; only well-formedness is checked.
func ValidPDF(path string) error {
	if err := api.ValidateFile(path, nil); err != nil {
		return fmt.Errorf("artifact %s is not a valid PDF: %w", path, err)
	}
	return nil
}

// PDFReportName builds the application's date-stamped report filename
// using the harness's own clock.
func PDFReportName(now time.Time) string {
	return fmt.Sprintf("Relatorio-MinhasEconomias-%s.pdf", now.Format("2006-01-02"))
}

// CSVExportName is the application's fixed CSV artifact name.
const CSVExportName = "movimentacoes.csv"
