package common

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"fjacquet/paycycle/internal/dateutils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 3, 15, 22, 10, 0, 0, time.UTC)

func TestParseToday(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    time.Time
		wantErr bool
	}{
		{"empty uses clock", "", dateutils.Date(2024, 3, 15), false},
		{"explicit", "2024-02-29", dateutils.Date(2024, 2, 29), false},
		{"padded", " 2024-01-01 ", dateutils.Date(2024, 1, 1), false},
		{"wrong layout", "15/03/2024", time.Time{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseToday(tt.raw, now)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseMonth(t *testing.T) {
	got, err := ParseMonth("", now)
	require.NoError(t, err)
	assert.Equal(t, dateutils.Date(2024, 3, 1), got)

	got, err = ParseMonth("2023-12", now)
	require.NoError(t, err)
	assert.Equal(t, dateutils.Date(2023, 12, 1), got)

	_, err = ParseMonth("December", now)
	assert.Error(t, err)
}

func TestWriteOutput(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteOutput(&buf, "", []byte("hello")))
	assert.Equal(t, "hello", buf.String())

	path := filepath.Join(t.TempDir(), "nested", "out.json")
	require.NoError(t, WriteOutput(&buf, path, []byte("{}")))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))
}
