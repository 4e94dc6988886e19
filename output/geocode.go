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

// WriteGeocode writes geocode results, one row per resolved location
func (p *Printer) WriteGeocode(results []jobo.GeocodeResultItem) error {
	switch p.format {
	case FormatJSON:
		enc := json.NewEncoder(p.w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	case FormatCSV:
		return p.writeGeocodeCSV(results)
	default:
		return p.writeGeocodeTable(results)
	}
}

func (p *Printer) writeGeocodeCSV(results []jobo.GeocodeResultItem) error {
	w := csv.NewWriter(p.w)
	if err := w.Write([]string{"input", "succeeded", "method", "display_name", "city", "region", "country", "latitude", "longitude", "error"}); err != nil {
		return err
	}
	for _, r := range results {
		if len(r.Locations) == 0 {
			if err := w.Write([]string{r.Input, strconv.FormatBool(r.Succeeded), r.Method, "", "", "", "", "", "", r.Error}); err != nil {
				return err
			}
			continue
		}
		for _, loc := range r.Locations {
			row := []string{
				r.Input,
				strconv.FormatBool(r.Succeeded),
				r.Method,
				loc.DisplayName,
				loc.City,
				loc.Region,
				loc.Country,
				coordinate(loc.Latitude),
				coordinate(loc.Longitude),
				r.Error,
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}
	w.Flush()
	return w.Error()
}

func (p *Printer) writeGeocodeTable(results []jobo.GeocodeResultItem) error {
	if len(results) == 0 {
		_, err := fmt.Fprintln(p.w, "No locations given")
		return err
	}

	tw := tabwriter.NewWriter(p.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "INPUT\tLOCATION\tCITY\tREGION\tCOUNTRY\tMETHOD")
	for _, r := range results {
		if !r.Succeeded || len(r.Locations) == 0 {
			reason := r.Error
			if reason == "" {
				reason = "not found"
			}
			fmt.Fprintf(tw, "%s\t%s\t-\t-\t-\t%s\n", p.bold(r.Input), p.colored(reason, "1"), orDash(r.Method))
			continue
		}
		for i, loc := range r.Locations {
			input := p.bold(r.Input)
			if i > 0 {
				input = ""
			}
			fmt.Fprintln(tw, strings.Join([]string{
				input,
				orDash(loc.DisplayName),
				orDash(loc.City),
				orDash(loc.Region),
				orDash(loc.Country),
				orDash(r.Method),
			}, "\t"))
		}
	}
	return tw.Flush()
}

func coordinate(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
