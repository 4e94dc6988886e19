package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Prakkie91/jobo-go/filter"
	"github.com/Prakkie91/jobo-go/jobo"
)

// parseLocationFilter parses "country[:region[:city]]", e.g. "US:CA:San Francisco" or "DE::Berlin"
func parseLocationFilter(s string) (jobo.LocationFilter, error) {
	parts := strings.SplitN(s, ":", 3)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	loc := jobo.LocationFilter{Country: parts[0]}
	if len(parts) > 1 {
		loc.Region = parts[1]
	}
	if len(parts) > 2 {
		loc.City = parts[2]
	}
	if loc == (jobo.LocationFilter{}) {
		return loc, fmt.Errorf("invalid location %q: expected country[:region[:city]]", s)
	}
	return loc, nil
}

// parseTimestamp accepts an RFC 3339 time, a date (2006-01-02) or an age
// relative to now such as 36h or 7d.
func parseTimestamp(s string, now time.Time) (jobo.Timestamp, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return jobo.Timestamp{}, nil
	}

	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return jobo.At(t), nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return jobo.At(t), nil
	}
	if days, ok := strings.CutSuffix(s, "d"); ok {
		if n, err := strconv.Atoi(days); err == nil && n >= 0 {
			return jobo.At(now.AddDate(0, 0, -n)), nil
		}
	}
	if d, err := time.ParseDuration(s); err == nil && d >= 0 {
		return jobo.At(now.Add(-d)), nil
	}

	return jobo.Timestamp{}, fmt.Errorf("invalid time %q: use RFC 3339, YYYY-MM-DD or an age like 24h or 7d", s)
}

// remoteFlag returns nil unless --remote was given explicitly, so --remote=false can exclude remote jobs
func remoteFlag(cmd *cobra.Command, value bool) *bool {
	if !cmd.Flags().Changed("remote") {
		return nil
	}
	return jobo.Bool(value)
}

// filterFlags are the client-side filtering flags shared by streaming commands
type filterFlags struct {
	where   string
	presets []string
	limit   int
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.where, "where", "w", "", `filter expression evaluated per job, e.g. 'IsRemote and MinSalary >= 80000'`)
	cmd.Flags().StringSliceVarP(&f.presets, "preset", "p", nil, "named filter presets from config (repeatable)")
	cmd.Flags().IntVar(&f.limit, "limit", 0, "stop after this many jobs (0 = no limit)")
}

func (f *filterFlags) resolve(manager *filter.Manager) (filter.CompiledFilter, error) {
	compiled, err := manager.Resolve(f.presets, f.where)
	if err != nil {
		return nil, fmt.Errorf("invalid filter: %w", err)
	}
	return compiled, nil
}
