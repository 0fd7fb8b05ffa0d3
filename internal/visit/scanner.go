package visit

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
)

// dateToken matches capture directory names: exactly eight digits.
var dateToken = regexp.MustCompile(`^\d{8}$`)

// Scan walks root for PlotID/YYYYMMDD capture directories and returns one
// Visit per valid date directory, in the filesystem's enumeration order.
// Eight-digit names that are not real calendar dates are skipped with a
// warning; everything else that doesn't match is skipped silently. A root
// with no valid entries yields an empty slice, not an error.
func Scan(root string) ([]Visit, error) {
	plots, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("reading survey root %s: %w", root, err)
	}

	var visits []Visit
	for _, plotDir := range plots {
		if !plotDir.IsDir() {
			continue
		}
		plotID := plotDir.Name()
		plotPath := filepath.Join(root, plotID)

		dates, err := os.ReadDir(plotPath)
		if err != nil {
			slog.Warn("skipping unreadable plot directory", "path", plotPath, "error", err)
			continue
		}

		for _, dateDir := range dates {
			if !dateDir.IsDir() || !dateToken.MatchString(dateDir.Name()) {
				continue
			}
			date, err := parseCompactDate(dateDir.Name())
			if err != nil {
				slog.Warn("could not parse date directory", "name", dateDir.Name(), "plot", plotID)
				continue
			}
			visits = append(visits, Visit{
				PlotID:    plotID,
				VisitDate: date,
				FullPath:  filepath.Join(plotPath, dateDir.Name()),
			})
		}
	}

	return visits, nil
}
