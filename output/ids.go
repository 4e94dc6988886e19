package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
)

// IDWriter streams job IDs
type IDWriter interface {
	Write(id string) error
	Close() error
}

// IDs returns a streaming writer for job IDs. Table output is one ID per line.
func (p *Printer) IDs() IDWriter {
	switch p.format {
	case FormatJSON:
		return &jsonIDWriter{enc: json.NewEncoder(p.w)}
	case FormatCSV:
		return &csvIDWriter{w: csv.NewWriter(p.w)}
	default:
		return &plainIDWriter{p: p}
	}
}

type plainIDWriter struct {
	p *Printer
}

func (w *plainIDWriter) Write(id string) error {
	_, err := fmt.Fprintln(w.p.w, id)
	return err
}

func (w *plainIDWriter) Close() error {
	return nil
}

type jsonIDWriter struct {
	enc *json.Encoder
}

func (w *jsonIDWriter) Write(id string) error {
	return w.enc.Encode(id)
}

func (w *jsonIDWriter) Close() error {
	return nil
}

type csvIDWriter struct {
	w           *csv.Writer
	wroteHeader bool
}

func (w *csvIDWriter) Write(id string) error {
	if err := w.ensureHeader(); err != nil {
		return err
	}
	return w.w.Write([]string{id})
}

func (w *csvIDWriter) ensureHeader() error {
	if w.wroteHeader {
		return nil
	}
	w.wroteHeader = true
	return w.w.Write([]string{"job_id"})
}

func (w *csvIDWriter) Close() error {
	if err := w.ensureHeader(); err != nil {
		return err
	}
	w.w.Flush()
	return w.w.Error()
}
