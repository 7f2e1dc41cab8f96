package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Format
		wantErr bool
	}{
		{name: "table", input: "table", want: FormatTable},
		{name: "empty defaults to table", input: "", want: FormatTable},
		{name: "json", input: "json", want: FormatJSON},
		{name: "JSON uppercase", input: "JSON", want: FormatJSON},
		{name: "yaml", input: "yaml", want: FormatYAML},
		{name: "yml alias", input: "yml", want: FormatYAML},
		{name: "whitespace trimmed", input: "  table  ", want: FormatTable},
		{name: "image formats are not output formats", input: "png", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPrinter_Print(t *testing.T) {
	table := NewTableData("Key", "Name")
	table.AddRow("web_data", "Set 1 (Tangrams)")

	t.Run("table", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewPrinter(&buf, FormatTable, false).Print(table))
		assert.Contains(t, buf.String(), "KEY")
		assert.Contains(t, buf.String(), "Set 1 (Tangrams)")
	})

	t.Run("table falls back to json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewPrinter(&buf, FormatTable, false).Print(map[string]int{"total_shapes": 5}))
		assert.Contains(t, buf.String(), `"total_shapes": 5`)
	})

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewPrinter(&buf, FormatYAML, false).Print(map[string]int{"total_shapes": 5}))
		assert.Equal(t, "total_shapes: 5\n", buf.String())
	})

	t.Run("unknown", func(t *testing.T) {
		assert.Error(t, NewPrinter(&bytes.Buffer{}, Format("xml"), false).Print(1))
	})
}

func TestPrinter_Status(t *testing.T) {
	t.Setenv("NO_COLOR", "")

	var buf bytes.Buffer
	p := NewPrinter(&buf, FormatTable, true)
	p.Status("warning", "Warning: ID #4 not found in chunk 2.")
	assert.Equal(t, "\033[33mWarning: ID #4 not found in chunk 2.\033[0m\n", buf.String())

	buf.Reset()
	p.Status("unknown", "plain")
	assert.Equal(t, "plain\n", buf.String())
}

func TestPrinter_NoColor(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, FormatTable, false)
	p.Success("done")
	p.Error("failed")
	assert.Equal(t, "done\nfailed\n", buf.String())

	t.Setenv("NO_COLOR", "1")
	assert.False(t, NewPrinter(&buf, FormatTable, true).ColorEnabled())
}

func TestDefaultPrinter(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	printer := DefaultPrinter()
	assert.Equal(t, FormatTable, printer.Format())
	assert.True(t, printer.ColorEnabled())
}
