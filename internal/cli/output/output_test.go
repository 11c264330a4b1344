package output

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zfogg/citysearch/internal/cli/config"
)

func capture(t *testing.T, format string) *bytes.Buffer {
	t.Helper()
	require.NoError(t, config.Init(filepath.Join(t.TempDir(), "config.toml")))
	config.Set("output.format", format)

	color.NoColor = true
	var buf bytes.Buffer
	prev := Writer
	Writer = &buf
	t.Cleanup(func() { Writer = prev })
	return &buf
}

func TestValidateOutputFormat(t *testing.T) {
	tests := []struct {
		format  string
		isValid bool
	}{
		{"json", true},
		{"text", true},
		{"table", true},
		{"yaml", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.isValid, ValidateOutputFormat(tt.format), tt.format)
	}
}

func TestPrintTable_Text(t *testing.T) {
	buf := capture(t, "table")

	require.NoError(t, PrintTable(
		[]string{"NAME", "STATE"},
		[][]string{{"Seattle", "Washington"}, {"Seaside", "Oregon"}},
		nil,
	))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "NAME"))
	assert.Contains(t, lines[1], "Seattle")
	assert.Contains(t, lines[2], "Oregon")
}

func TestPrintTable_JSONPrintsRaw(t *testing.T) {
	buf := capture(t, "json")

	raw := map[string]interface{}{"total": 2}
	require.NoError(t, PrintTable([]string{"NAME"}, [][]string{{"Seattle"}}, raw))

	assert.JSONEq(t, `{"total":2}`, buf.String())
}

func TestPrintRecord_KeepsOrder(t *testing.T) {
	buf := capture(t, "text")

	require.NoError(t, PrintRecord("Index", []string{"indexed", "count"}, map[string]interface{}{
		"count":   6,
		"indexed": true,
	}))

	out := buf.String()
	assert.Less(t, strings.Index(out, "indexed"), strings.Index(out, "count"))
}

func TestFitLastColumn(t *testing.T) {
	rows := [][]string{{"Seattle", strings.Repeat("x", 100)}}
	fitted := fitLastColumn([]string{"NAME", "DESCRIPTION"}, rows, 40)

	assert.Equal(t, 40-len("Seattle")-2, len(fitted[0][1]))
	assert.True(t, strings.HasSuffix(fitted[0][1], "..."))
	assert.Len(t, rows[0][1], 100, "input rows untouched")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "abcd...", Truncate("abcdefghij", 7))
	assert.Equal(t, "ab", Truncate("abcdef", 2))
	assert.Equal(t, "Zü...", Truncate("Zürich-Altstetten", 5))
}
