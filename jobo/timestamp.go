package jobo

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// isoLayout matches the UTC millisecond form the API expects, e.g. 2024-05-01T12:00:00.000Z
const isoLayout = "2006-01-02T15:04:05.000Z07:00"

// Timestamp is a request-side instant given either as a time.Time or as a
// preformatted ISO-8601 string. The zero value means "not set".
type Timestamp struct {
	t   time.Time
	raw string
}

// At returns a Timestamp for t.
func At(t time.Time) Timestamp {
	return Timestamp{t: t}
}

// ISO returns a Timestamp for a preformatted ISO-8601 string. Strings that parse
// as RFC 3339 are normalized so they encode the same as At for the same instant;
// anything else is sent to the API verbatim.
func ISO(value string) Timestamp {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return Timestamp{t: t}
	}
	return Timestamp{raw: value}
}

// IsZero reports whether the timestamp is unset.
func (ts Timestamp) IsZero() bool {
	return ts.t.IsZero() && ts.raw == ""
}

// String returns the ISO-8601 representation sent to the API.
func (ts Timestamp) String() string {
	if ts.raw != "" {
		return ts.raw
	}
	if ts.t.IsZero() {
		return ""
	}
	return ts.t.UTC().Format(isoLayout)
}

// Time accepts the datetime forms returned by the API, with or without a zone
// offset. Values without an offset are taken as UTC.
type Time struct {
	time.Time
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// UnmarshalJSON implements json.Unmarshaler
func (t *Time) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		t.Time = time.Time{}
		return nil
	}

	var value string
	if err := json.Unmarshal(data, &value); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	if value == "" {
		t.Time = time.Time{}
		return nil
	}

	for _, layout := range timeLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("unrecognized timestamp %q", value)
}

// MarshalJSON implements json.Marshaler
func (t Time) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Time.Format(time.RFC3339Nano))
}
