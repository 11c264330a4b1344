package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"unicode/utf8"

	"github.com/fatih/color"
	jsoniter "github.com/json-iterator/go"
	"github.com/zfogg/citysearch/internal/cli/config"
	"golang.org/x/term"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatJSON  OutputFormat = "json"
	FormatTable OutputFormat = "table"
	FormatText  OutputFormat = "text"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Writer is where results go; tests swap it
var Writer io.Writer = color.Output

// GetOutputFormat returns the configured output format
func GetOutputFormat() OutputFormat {
	switch config.GetString("output.format") {
	case "json":
		return FormatJSON
	case "table":
		return FormatTable
	default:
		return FormatText
	}
}

// ValidateOutputFormat checks if format is valid
func ValidateOutputFormat(format string) bool {
	return format == "json" || format == "table" || format == "text"
}

// Print outputs data as pretty JSON, with a heading in text mode
func Print(title string, data interface{}) error {
	if GetOutputFormat() != FormatJSON && title != "" {
		color.New(color.Bold).Fprintf(Writer, "%s:\n", title)
	}
	s, err := FormatAsPrettyJSON(data)
	if err != nil {
		return err
	}
	fmt.Fprintln(Writer, s)
	return nil
}

// PrintTable prints rows under headers. In json mode raw is printed instead,
// so scripts see the full response.
func PrintTable(headers []string, rows [][]string, raw interface{}) error {
	if GetOutputFormat() == FormatJSON {
		return Print("", raw)
	}
	printTable(headers, rows, terminalWidth())
	return nil
}

// PrintRecord prints key/value pairs in the given order
func PrintRecord(title string, keys []string, record map[string]interface{}) error {
	if GetOutputFormat() == FormatJSON {
		return Print("", record)
	}
	if title != "" {
		color.New(color.Bold).Fprintf(Writer, "%s\n", title)
	}
	bold := color.New(color.Bold)
	for _, k := range keys {
		v, ok := record[k]
		if !ok {
			continue
		}
		bold.Fprint(Writer, "  "+k+": ")
		fmt.Fprintf(Writer, "%v\n", v)
	}
	return nil
}

// PrintSuccess prints a success message
func PrintSuccess(msg string, args ...interface{}) {
	color.New(color.FgGreen).Fprintf(Writer, msg+"\n", args...)
}

// PrintError prints an error message
func PrintError(msg string, args ...interface{}) {
	color.New(color.FgRed).Fprintf(Writer, "Error: "+msg+"\n", args...)
}

// PrintInfo prints an info message
func PrintInfo(msg string, args ...interface{}) {
	color.New(color.FgCyan).Fprintf(Writer, msg+"\n", args...)
}

// PrintWarning prints a warning message
func PrintWarning(msg string, args ...interface{}) {
	color.New(color.FgYellow).Fprintf(Writer, "Warning: "+msg+"\n", args...)
}

// terminalWidth returns the stdout width, or 0 when stdout is not a terminal
func terminalWidth() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return 0
	}
	w, _, err := term.GetSize(fd)
	if err != nil {
		return 0
	}
	return w
}

// printTable truncates the last column so rows fit in width. Zero width
// disables truncation.
func printTable(headers []string, rows [][]string, width int) {
	if width > 0 && len(headers) > 0 {
		rows = fitLastColumn(headers, rows, width)
	}

	w := tabwriter.NewWriter(Writer, 0, 0, 2, ' ', 0)
	bold := color.New(color.Bold)

	for i, h := range headers {
		bold.Fprint(w, h)
		if i < len(headers)-1 {
			fmt.Fprint(w, "\t")
		}
	}
	fmt.Fprintln(w)

	for _, row := range rows {
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	_ = w.Flush()
}

func fitLastColumn(headers []string, rows [][]string, width int) [][]string {
	last := len(headers) - 1
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = utf8.RuneCountInString(h)
	}
	for _, row := range rows {
		for i := 0; i < last && i < len(row); i++ {
			if n := utf8.RuneCountInString(row[i]); n > widths[i] {
				widths[i] = n
			}
		}
	}

	used := 0
	for i := 0; i < last; i++ {
		used += widths[i] + 2
	}
	room := width - used
	if room < 10 {
		return rows
	}

	out := make([][]string, len(rows))
	for i, row := range rows {
		out[i] = row
		if len(row) > last {
			cp := append([]string(nil), row...)
			cp[last] = Truncate(cp[last], room)
			out[i] = cp
		}
	}
	return out
}

// Truncate shortens s to at most n runes, ending in "..."
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	if n <= 3 {
		return string([]rune(s)[:n])
	}
	return string([]rune(s)[:n-3]) + "..."
}

// FormatAsPrettyJSON converts data to indented JSON
func FormatAsPrettyJSON(data interface{}) (string, error) {
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}
