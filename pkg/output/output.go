package output

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fatih/color"
	json "github.com/json-iterator/go"
	"gopkg.in/yaml.v3"

	"github.com/blogdeck/blogdeck/cli/pkg/config"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatJSON  OutputFormat = "json"
	FormatTable OutputFormat = "table"
	FormatText  OutputFormat = "text"
	FormatYAML  OutputFormat = "yaml"
)

// Formats lists every accepted output format
var Formats = []OutputFormat{FormatText, FormatTable, FormatJSON, FormatYAML}

var out io.Writer = color.Output

// SetOutput redirects everything printed by this package and returns a
// function that restores the previous writer.
func SetOutput(w io.Writer) (restore func()) {
	prev := out
	out = w
	return func() { out = prev }
}

// Writer returns the current destination
func Writer() io.Writer {
	return out
}

// GetOutputFormat returns the configured output format
func GetOutputFormat() OutputFormat {
	format := OutputFormat(config.GetString("output.format"))
	if ValidateOutputFormat(string(format)) {
		return format
	}
	return FormatText
}

// ValidateOutputFormat checks if format is valid
func ValidateOutputFormat(format string) bool {
	for _, f := range Formats {
		if string(f) == format {
			return true
		}
	}
	return false
}

// Field is one labelled value of a record. Records keep field order.
type Field struct {
	Key   string
	Value interface{}
}

// Print outputs data in the configured format with optional title
func Print(title string, data interface{}) error {
	switch GetOutputFormat() {
	case FormatJSON:
		return printJSON(data)
	case FormatYAML:
		return printYAML(data)
	default:
		if title != "" {
			fmt.Fprintf(out, "%s:\n", title)
		}
		return printJSON(data)
	}
}

// PrintList outputs a list. Structured formats encode items; text and table
// print rows under headers.
func PrintList(title string, items interface{}, headers []string, rows [][]string) error {
	switch GetOutputFormat() {
	case FormatJSON:
		return printJSON(items)
	case FormatYAML:
		return printYAML(items)
	default:
		if title != "" {
			color.New(color.Bold).Fprintln(out, title)
		}
		if len(rows) == 0 {
			fmt.Fprintln(out, "  (none)")
			return nil
		}
		printTable(headers, rows)
		return nil
	}
}

// PrintRecord outputs a single record in the configured format
func PrintRecord(title string, fields []Field) error {
	switch GetOutputFormat() {
	case FormatJSON:
		return printJSON(fieldMap(fields))
	case FormatYAML:
		return printYAML(fieldMap(fields))
	case FormatTable:
		rows := make([][]string, 0, len(fields))
		for _, f := range fields {
			rows = append(rows, []string{f.Key, fmt.Sprintf("%v", f.Value)})
		}
		printTable([]string{"Field", "Value"}, rows)
		return nil
	default:
		if title != "" {
			color.New(color.Bold).Fprintln(out, title)
		}
		bold := color.New(color.Bold)
		for _, f := range fields {
			bold.Fprint(out, f.Key+": ")
			fmt.Fprintf(out, "%v\n", f.Value)
		}
		return nil
	}
}

// IsStructured reports whether the configured format is machine readable
func IsStructured() bool {
	f := GetOutputFormat()
	return f == FormatJSON || f == FormatYAML
}

// PrintSuccess prints a success message
func PrintSuccess(msg string, args ...interface{}) {
	color.New(color.FgGreen).Fprintf(out, msg+"\n", args...)
}

// PrintError prints an error message
func PrintError(msg string, args ...interface{}) {
	color.New(color.FgRed).Fprintf(out, "Error: "+msg+"\n", args...)
}

// PrintInfo prints an info message
func PrintInfo(msg string, args ...interface{}) {
	color.New(color.FgCyan).Fprintf(out, msg+"\n", args...)
}

// PrintWarning prints a warning message
func PrintWarning(msg string, args ...interface{}) {
	color.New(color.FgYellow).Fprintf(out, "Warning: "+msg+"\n", args...)
}

// Helper functions

func fieldMap(fields []Field) map[string]interface{} {
	m := make(map[string]interface{}, len(fields))
	for _, f := range fields {
		m[f.Key] = f.Value
	}
	return m
}

func printJSON(data interface{}) error {
	s, err := FormatAsPrettyJSON(data)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, s)
	return nil
}

func printYAML(data interface{}) error {
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(data); err != nil {
		return err
	}
	return enc.Close()
}

func printTable(headers []string, rows [][]string) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	bold := color.New(color.Bold)

	for i, h := range headers {
		bold.Fprint(w, h)
		if i < len(headers)-1 {
			fmt.Fprint(w, "\t")
		}
	}
	fmt.Fprintln(w)

	for _, row := range rows {
		for i, cell := range row {
			fmt.Fprint(w, cell)
			if i < len(row)-1 {
				fmt.Fprint(w, "\t")
			}
		}
		fmt.Fprintln(w)
	}

	w.Flush()
}

// FormatAsJSON converts data to JSON string (convenience function)
func FormatAsJSON(data interface{}) (string, error) {
	jsonData, err := json.ConfigCompatibleWithStandardLibrary.Marshal(data)
	if err != nil {
		return "", err
	}
	return string(jsonData), nil
}

// FormatAsPrettyJSON converts data to pretty JSON string (convenience function)
func FormatAsPrettyJSON(data interface{}) (string, error) {
	jsonData, err := json.ConfigCompatibleWithStandardLibrary.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData), nil
}
