package api

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Format selects how CLI commands print API responses.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

var (
	outputFormat           = FormatYAML
	stdout       io.Writer = os.Stdout
)

// SetOutputFormat sets the format used by Output. It is driven by the root
// command's --output flag.
func SetOutputFormat(format string) error {
	switch f := Format(format); f {
	case FormatYAML, FormatJSON:
		outputFormat = f
		return nil
	default:
		return fmt.Errorf("unknown output format %q (want yaml or json)", format)
	}
}

// Output prints data to stdout in the selected format.
func Output(data any) error {
	return Write(stdout, outputFormat, data)
}

// Write encodes data to w in the given format.
func Write(w io.Writer, format Format, data any) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(data); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
