package inspector

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format selects how reports are written.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts "text", "json" or "yaml" in any case. An empty string
// selects text.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatText, nil
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported output format %q: must be text, json or yaml", s)
	}
}

type textWriter interface {
	writeText(w io.Writer) error
}

// Render writes report to w in the requested format.
func Render(w io.Writer, report textWriter, format Format) error {
	switch format {
	case FormatText, "":
		return report.writeText(w)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}

func (r *SessionReport) writeText(w io.Writer) error {
	var b strings.Builder
	b.WriteString("Inputs:\n")
	for _, d := range r.Inputs {
		writeDescriptor(&b, d)
	}
	b.WriteString("\nOutputs:\n")
	for _, d := range r.Outputs {
		writeDescriptor(&b, d)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeDescriptor(b *strings.Builder, d TensorDescriptor) {
	fmt.Fprintf(b, "  Name: %s, Shape: %s, Type: %s\n", d.Name, d.Shape, d.Type)
}

func (r *GraphReport) writeText(w io.Writer) error {
	_, err := fmt.Fprintf(w, "Model Info:\nOpset: %d\nInputs: %s\nOutputs: %s\n",
		r.Opset, nameList(r.Inputs), nameList(r.Outputs))
	return err
}

func nameList(names []string) string {
	return "[" + strings.Join(names, ", ") + "]"
}
