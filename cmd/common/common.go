// Package common contains shared functionality for command handlers
package common

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"fjacquet/paycycle/internal/dateutils"
)

// ParseToday returns the date given by a --today flag, or the current date
// when the flag is empty.
func ParseToday(raw string, now time.Time) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return dateutils.Today(now), nil
	}
	t, err := dateutils.ParseISODate(raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --today %q: expected YYYY-MM-DD", raw)
	}
	return t, nil
}

// ParseMonth returns the month given by a --month flag, or the current month.
func ParseMonth(raw string, now time.Time) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return dateutils.StartOfMonth(dateutils.Today(now)), nil
	}
	t, err := dateutils.ParseMonth(raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --month %q: expected YYYY-MM", raw)
	}
	return t, nil
}

// WriteOutput writes data to path, or to w when path is empty.
func WriteOutput(w io.Writer, path string, data []byte) error {
	if path == "" {
		_, err := w.Write(data)
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
