package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/Prakkie91/jobo-go/jobo"
)

// WriteSession writes the state of an auto-apply session. CSV output lists the form fields.
func (p *Printer) WriteSession(s *jobo.AutoApplySessionResponse) error {
	switch p.format {
	case FormatJSON:
		enc := json.NewEncoder(p.w)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	case FormatCSV:
		return p.writeFieldsCSV(s.Fields)
	default:
		return p.writeSessionTable(s)
	}
}

func (p *Printer) writeSessionTable(s *jobo.AutoApplySessionResponse) error {
	var sb strings.Builder

	provider := s.ProviderDisplayName
	if provider == "" {
		provider = s.ProviderID
	}

	fmt.Fprintf(&sb, "Session:  %s\n", p.bold(s.SessionID))
	fmt.Fprintf(&sb, "Provider: %s\n", orDash(provider))
	status := orDash(s.Status)
	switch {
	case s.IsTerminal && s.Success:
		status = p.colored(status, "2")
	case s.IsTerminal || s.HasErrors():
		status = p.colored(status, "1")
	}
	fmt.Fprintf(&sb, "Status:   %s (success: %s, terminal: %s)\n", status, boolString(s.Success), boolString(s.IsTerminal))

	if s.HasErrors() {
		fmt.Fprintf(&sb, "\nValidation errors (%d):\n", len(s.ValidationErrors))
		for i, ve := range s.ValidationErrors {
			prefix := "├"
			if i == len(s.ValidationErrors)-1 {
				prefix = "╰"
			}
			field := ve.FieldID
			if field == "" {
				field = "form"
			}
			fmt.Fprintf(&sb, "%s── %s: %s\n", prefix, field, p.colored(ve.Message, "1"))
		}
	}

	if _, err := fmt.Fprint(p.w, sb.String()); err != nil {
		return err
	}

	if len(s.Fields) == 0 {
		return nil
	}

	fmt.Fprintf(p.w, "\nFields (%d, %d required):\n\n", len(s.Fields), len(s.RequiredFields()))
	tw := tabwriter.NewWriter(p.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTYPE\tREQUIRED\tLABEL\tOPTIONS")
	for _, f := range s.Fields {
		required := boolString(f.IsRequired)
		if f.IsRequired {
			required = p.bold(required)
		}
		fmt.Fprintln(tw, strings.Join([]string{
			f.ID,
			orDash(f.Type),
			required,
			orDash(truncate(f.Label, 50)),
			orDash(truncate(optionValues(f.Options), 40)),
		}, "\t"))
	}
	return tw.Flush()
}

func (p *Printer) writeFieldsCSV(fields []jobo.FormFieldInfo) error {
	w := csv.NewWriter(p.w)
	if err := w.Write([]string{"id", "type", "label", "required", "options"}); err != nil {
		return err
	}
	for _, f := range fields {
		if err := w.Write([]string{f.ID, f.Type, f.Label, strconv.FormatBool(f.IsRequired), optionValues(f.Options)}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func optionValues(options []jobo.FieldOption) string {
	values := make([]string, 0, len(options))
	for _, o := range options {
		values = append(values, o.Value)
	}
	return strings.Join(values, "|")
}
