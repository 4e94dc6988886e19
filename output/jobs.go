package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/Prakkie91/jobo-go/jobo"
)

// JobWriter streams jobs. Close must be called to flush buffered output.
type JobWriter interface {
	Write(job jobo.Job) error
	Close() error
}

// Jobs returns a streaming writer for jobs. JSON output is one object per line.
func (p *Printer) Jobs() JobWriter {
	switch p.format {
	case FormatJSON:
		enc := json.NewEncoder(p.w)
		return &jsonJobWriter{enc: enc}
	case FormatCSV:
		return &csvJobWriter{w: csv.NewWriter(p.w)}
	default:
		return &tableJobWriter{p: p, tw: tabwriter.NewWriter(p.w, 0, 4, 2, ' ', 0)}
	}
}

// WriteJobs writes a complete slice of jobs
func (p *Printer) WriteJobs(jobs []jobo.Job) error {
	jw := p.Jobs()
	for _, job := range jobs {
		if err := jw.Write(job); err != nil {
			return err
		}
	}
	return jw.Close()
}

type jsonJobWriter struct {
	enc *json.Encoder
}

func (j *jsonJobWriter) Write(job jobo.Job) error {
	return j.enc.Encode(job)
}

func (j *jsonJobWriter) Close() error {
	return nil
}

var jobCSVHeader = []string{
	"id",
	"title",
	"company",
	"location",
	"remote",
	"source",
	"employment_type",
	"workplace_type",
	"salary_min",
	"salary_max",
	"currency",
	"period",
	"posted",
	"listing_url",
	"apply_url",
}

type csvJobWriter struct {
	w           *csv.Writer
	wroteHeader bool
}

func (c *csvJobWriter) Write(job jobo.Job) error {
	if !c.wroteHeader {
		if err := c.w.Write(jobCSVHeader); err != nil {
			return err
		}
		c.wroteHeader = true
	}
	return c.w.Write(jobCSVRow(job))
}

func (c *csvJobWriter) Close() error {
	if !c.wroteHeader {
		if err := c.w.Write(jobCSVHeader); err != nil {
			return err
		}
	}
	c.w.Flush()
	return c.w.Error()
}

func jobCSVRow(job jobo.Job) []string {
	var minSalary, maxSalary, currency, period string
	if comp := job.Compensation; comp != nil {
		if comp.Min != nil {
			minSalary = strconv.FormatFloat(*comp.Min, 'f', -1, 64)
		}
		if comp.Max != nil {
			maxSalary = strconv.FormatFloat(*comp.Max, 'f', -1, 64)
		}
		currency = comp.Currency
		period = comp.Period
	}

	locations := make([]string, 0, len(job.Locations))
	for _, loc := range job.Locations {
		if s := loc.String(); s != "" {
			locations = append(locations, s)
		}
	}

	return []string{
		job.ID,
		job.Title,
		job.Company.Name,
		strings.Join(locations, "; "),
		strconv.FormatBool(job.IsRemote),
		job.Source,
		job.EmploymentType,
		job.WorkplaceType,
		minSalary,
		maxSalary,
		currency,
		period,
		postedDate(job, time.RFC3339),
		job.ListingURL,
		job.ApplyURL,
	}
}

type tableJobWriter struct {
	p           *Printer
	tw          *tabwriter.Writer
	wroteHeader bool
	count       int
}

func (t *tableJobWriter) Write(job jobo.Job) error {
	if !t.wroteHeader {
		if err := t.header(); err != nil {
			return err
		}
	}
	t.count++

	row := []string{
		t.p.bold(truncate(job.Title, 50)),
		orDash(truncate(job.Company.Name, 30)),
		orDash(truncate(job.PrimaryLocation(), 30)),
		orDash(job.Compensation.Range()),
		orDash(postedDate(job, time.DateOnly)),
		t.p.faint(orDash(job.Source)),
		t.p.link(job.ListingURL),
	}
	_, err := fmt.Fprintln(t.tw, strings.Join(row, "\t"))
	return err
}

func (t *tableJobWriter) header() error {
	t.wroteHeader = true
	_, err := fmt.Fprintln(t.tw, "TITLE\tCOMPANY\tLOCATION\tSALARY\tPOSTED\tSOURCE\tURL")
	return err
}

func (t *tableJobWriter) Close() error {
	if t.count == 0 {
		_, err := fmt.Fprintln(t.p.w, "No jobs found")
		return err
	}
	return t.tw.Flush()
}

func postedDate(job jobo.Job, layout string) string {
	switch {
	case job.DatePosted != nil && !job.DatePosted.IsZero():
		return job.DatePosted.UTC().Format(layout)
	case !job.CreatedAt.IsZero():
		return job.CreatedAt.UTC().Format(layout)
	default:
		return ""
	}
}
