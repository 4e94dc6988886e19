package jobo

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// Bool returns a pointer to v, for optional boolean filters.
func Bool(v bool) *bool {
	return &v
}

// JobCompany is the company associated with a job listing
type JobCompany struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// JobLocation is a geographic location of a job
type JobLocation struct {
	Location  string   `json:"location,omitempty"`
	City      string   `json:"city,omitempty"`
	State     string   `json:"state,omitempty"`
	Country   string   `json:"country,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// String returns the most descriptive label available for the location
func (l JobLocation) String() string {
	if l.Location != "" {
		return l.Location
	}
	parts := make([]string, 0, 3)
	for _, p := range []string{l.City, l.State, l.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// JobCompensation holds salary details for a job
type JobCompensation struct {
	Min         *float64 `json:"min,omitempty"`
	Max         *float64 `json:"max,omitempty"`
	Currency    string   `json:"currency,omitempty"`
	Period      string   `json:"period,omitempty"`
	RawText     string   `json:"raw_text,omitempty"`
	IsEstimated bool     `json:"is_estimated"`
}

// Range formats the compensation as "min-max currency/period", falling back to the raw text
func (c *JobCompensation) Range() string {
	if c == nil {
		return ""
	}
	var amount string
	switch {
	case c.Min != nil && c.Max != nil:
		amount = fmt.Sprintf("%.0f-%.0f", *c.Min, *c.Max)
	case c.Min != nil:
		amount = fmt.Sprintf("%.0f+", *c.Min)
	case c.Max != nil:
		amount = fmt.Sprintf("up to %.0f", *c.Max)
	default:
		return c.RawText
	}
	if c.Currency != "" {
		amount += " " + c.Currency
	}
	if c.Period != "" {
		amount += "/" + strings.ToLower(c.Period)
	}
	if c.IsEstimated {
		amount += " (est.)"
	}
	return amount
}

// Job is a job listing returned by the API
type Job struct {
	ID              string           `json:"id"`
	Title           string           `json:"title"`
	Company         JobCompany       `json:"company"`
	Description     string           `json:"description"`
	ListingURL      string           `json:"listing_url"`
	ApplyURL        string           `json:"apply_url"`
	Locations       []JobLocation    `json:"locations"`
	Compensation    *JobCompensation `json:"compensation,omitempty"`
	EmploymentType  string           `json:"employment_type,omitempty"`
	WorkplaceType   string           `json:"workplace_type,omitempty"`
	ExperienceLevel string           `json:"experience_level,omitempty"`
	Source          string           `json:"source"`
	SourceID        string           `json:"source_id"`
	CreatedAt       Time             `json:"created_at"`
	UpdatedAt       Time             `json:"updated_at"`
	DatePosted      *Time            `json:"date_posted,omitempty"`
	ValidThrough    *Time            `json:"valid_through,omitempty"`
	IsRemote        bool             `json:"is_remote"`
}

// PrimaryLocation returns the first location label, or "Remote"/"" when there is none
func (j *Job) PrimaryLocation() string {
	for _, loc := range j.Locations {
		if s := loc.String(); s != "" {
			return s
		}
	}
	if j.IsRemote {
		return "Remote"
	}
	return ""
}

// LocationFilter narrows feed queries to a country, region and/or city
type LocationFilter struct {
	Country string `json:"country,omitempty"`
	Region  string `json:"region,omitempty"`
	City    string `json:"city,omitempty"`
}

// JobFeedRequest is the request body for POST /api/feed/jobs
type JobFeedRequest struct {
	Locations   []LocationFilter `json:"locations,omitempty"`
	Sources     []string         `json:"sources,omitempty"`
	IsRemote    *bool            `json:"is_remote,omitempty"`
	PostedAfter string           `json:"posted_after,omitempty"`
	Cursor      string           `json:"cursor,omitempty"`
	BatchSize   int              `json:"batch_size"`
}

// JobFeedResponse is one batch of the job feed
type JobFeedResponse struct {
	Jobs       []Job  `json:"jobs"`
	NextCursor string `json:"next_cursor,omitempty"`
	HasMore    bool   `json:"has_more"`
}

// ExpiredJobIDsResponse is one batch of expired job IDs
type ExpiredJobIDsResponse struct {
	JobIDs     []string `json:"job_ids"`
	NextCursor string   `json:"next_cursor,omitempty"`
	HasMore    bool     `json:"has_more"`
}

// JobSearchRequest is the request body for POST /api/jobs/search
type JobSearchRequest struct {
	Queries     []string `json:"queries,omitempty"`
	Locations   []string `json:"locations,omitempty"`
	Sources     []string `json:"sources,omitempty"`
	IsRemote    *bool    `json:"is_remote,omitempty"`
	PostedAfter string   `json:"posted_after,omitempty"`
	Page        int      `json:"page"`
	PageSize    int      `json:"page_size"`
}

// JobSearchResponse is one page of search results
type JobSearchResponse struct {
	Jobs       []Job `json:"jobs"`
	Total      int   `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

// HasMorePages checks if there are more pages to fetch
func (r *JobSearchResponse) HasMorePages() bool {
	return r.Page < r.TotalPages
}

// GeocodedLocation is one structured location resolved from a free-form string
type GeocodedLocation struct {
	DisplayName string   `json:"display_name"`
	City        string   `json:"city,omitempty"`
	Region      string   `json:"region,omitempty"`
	Country     string   `json:"country,omitempty"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
}

// GeocodeResultItem is the outcome of geocoding a single input string
type GeocodeResultItem struct {
	Input     string             `json:"input"`
	Succeeded bool               `json:"succeeded"`
	Locations []GeocodedLocation `json:"locations"`
	Method    string             `json:"method,omitempty"`
	Error     string             `json:"error,omitempty"`
}

// FieldOption is one selectable choice of a form field
type FieldOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// FieldValidations lists constraints the provider enforces on a field
type FieldValidations struct {
	MinLength        *int     `json:"min_length,omitempty"`
	MaxLength        *int     `json:"max_length,omitempty"`
	Pattern          string   `json:"pattern,omitempty"`
	MinValue         *float64 `json:"min_value,omitempty"`
	MaxValue         *float64 `json:"max_value,omitempty"`
	AllowedFileTypes []string `json:"allowed_file_types,omitempty"`
	MaxFileSize      *int64   `json:"max_file_size,omitempty"`
}

// FormFieldInfo describes one field of an application form
type FormFieldInfo struct {
	ID          string            `json:"id"`
	Type        string            `json:"type"`
	Label       string            `json:"label"`
	IsRequired  bool              `json:"is_required"`
	Options     []FieldOption     `json:"options,omitempty"`
	Validations *FieldValidations `json:"validations,omitempty"`
}

// FieldError is a provider-side rejection of an answer
type FieldError struct {
	FieldID string `json:"field_id,omitempty"`
	Message string `json:"message"`
}

// AutoApplySessionResponse is the state of an auto-apply session
type AutoApplySessionResponse struct {
	SessionID           string          `json:"session_id"`
	ProviderID          string          `json:"provider_id,omitempty"`
	ProviderDisplayName string          `json:"provider_display_name,omitempty"`
	Success             bool            `json:"success"`
	Status              string          `json:"status"`
	IsTerminal          bool            `json:"is_terminal"`
	ValidationErrors    []FieldError    `json:"validation_errors,omitempty"`
	Fields              []FormFieldInfo `json:"fields,omitempty"`
}

// RequiredFields returns the fields that must be answered
func (s *AutoApplySessionResponse) RequiredFields() []FormFieldInfo {
	var required []FormFieldInfo
	for _, f := range s.Fields {
		if f.IsRequired {
			required = append(required, f)
		}
	}
	return required
}

// HasErrors checks if the provider rejected any answers
func (s *AutoApplySessionResponse) HasErrors() bool {
	return len(s.ValidationErrors) > 0
}

// FieldAnswerFile is a file attachment; Data holds the base64-encoded content
type FieldAnswerFile struct {
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	Data        string `json:"data"`
}

// NewFileAttachment base64-encodes content into a FieldAnswerFile
func NewFileAttachment(fileName, contentType string, content []byte) FieldAnswerFile {
	return FieldAnswerFile{
		FileName:    fileName,
		ContentType: contentType,
		Data:        base64.StdEncoding.EncodeToString(content),
	}
}

// FieldAnswer answers one form field with a scalar value, a list of values or files
type FieldAnswer struct {
	FieldID string            `json:"field_id"`
	Value   any               `json:"value,omitempty"`
	Values  []string          `json:"values,omitempty"`
	Files   []FieldAnswerFile `json:"files,omitempty"`
}

// TextAnswer answers a field with a single value
func TextAnswer(fieldID, value string) FieldAnswer {
	return FieldAnswer{FieldID: fieldID, Value: value}
}

// BoolAnswer answers a checkbox-style field
func BoolAnswer(fieldID string, value bool) FieldAnswer {
	return FieldAnswer{FieldID: fieldID, Value: value}
}

// MultiAnswer answers a multi-select field
func MultiAnswer(fieldID string, values ...string) FieldAnswer {
	return FieldAnswer{FieldID: fieldID, Values: values}
}

// FileAnswer answers a file upload field
func FileAnswer(fieldID string, files ...FieldAnswerFile) FieldAnswer {
	return FieldAnswer{FieldID: fieldID, Files: files}
}

// StartAutoApplySessionRequest is the request body for POST /api/auto-apply/start
type StartAutoApplySessionRequest struct {
	ApplyURL string `json:"apply_url"`
}

// SetAutoApplyAnswersRequest is the request body for POST /api/auto-apply/set-answers
type SetAutoApplyAnswersRequest struct {
	SessionID string        `json:"session_id"`
	Answers   []FieldAnswer `json:"answers"`
}
