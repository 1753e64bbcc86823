package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Resume is the persisted analysis of one uploaded resume.
type Resume struct {
	ID                     uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"_id"`
	OriginalFilename       string         `gorm:"type:text" json:"original_filename"`
	Analysis               AnalysisResult `gorm:"type:jsonb;serializer:json" json:"analysis"`
	JobDescriptionProvided bool           `gorm:"not null;default:false" json:"job_description_provided"`
	UploadTimestamp        time.Time      `gorm:"type:timestamptz;index" json:"upload_timestamp"`
}

func (Resume) TableName() string {
	return "resumes"
}

// ToRecord converts the entity into its wire shape.
func (r *Resume) ToRecord() ResumeRecord {
	return ResumeRecord{
		ID:                     r.ID.String(),
		OriginalFilename:       r.OriginalFilename,
		UploadTimestamp:        TimestampText(r.UploadTimestamp.UTC().Format(time.RFC3339Nano)),
		JobDescriptionProvided: r.JobDescriptionProvided,
		Analysis:               r.Analysis,
	}
}

// ResumeRecord is one history entry as served by GET /resumes and POST /upload.
type ResumeRecord struct {
	ID                     string         `json:"_id"`
	OriginalFilename       string         `json:"original_filename"`
	UploadTimestamp        Timestamp      `json:"upload_timestamp"`
	JobDescriptionProvided bool           `json:"job_description_provided"`
	Analysis               AnalysisResult `json:"analysis"`
}

// UnmarshalJSON never fails on a well-formed value, so one malformed record in a
// history answer cannot hide the others. Missing or odd fields decode as zero values
// and render as placeholders.
func (r *ResumeRecord) UnmarshalJSON(data []byte) error {
	*r = ResumeRecord{}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil
	}

	r.ID = textOrEmpty(fields["_id"])
	r.OriginalFilename = textOrEmpty(fields["original_filename"])
	r.JobDescriptionProvided = truthy(fields["job_description_provided"])

	if raw, ok := fields["upload_timestamp"]; ok {
		if err := r.UploadTimestamp.UnmarshalJSON(raw); err != nil {
			return err
		}
	}
	if raw, ok := fields["analysis"]; ok {
		if err := r.Analysis.UnmarshalJSON(raw); err != nil {
			return err
		}
	}

	return nil
}

// Timestamp keeps the upload time as the server sent it. A JSON string is kept
// verbatim in Text; a JSON number is read as epoch milliseconds.
type Timestamp struct {
	Text   string
	Millis *float64
}

// TimestampText wraps a string timestamp.
func TimestampText(s string) Timestamp {
	return Timestamp{Text: s}
}

// IsZero reports whether no timestamp was sent.
func (t Timestamp) IsZero() bool {
	return t.Millis == nil && t.Text == ""
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	switch {
	case t.Millis != nil:
		return json.Marshal(*t.Millis)
	case t.Text == "":
		return []byte("null"), nil
	}
	return json.Marshal(t.Text)
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	*t = Timestamp{}

	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || string(data) == "null":
		return nil
	case data[0] == '"':
		return json.Unmarshal(data, &t.Text)
	}

	if ms, err := strconv.ParseFloat(string(data), 64); err == nil {
		t.Millis = &ms
		return nil
	}
	t.Text = string(data)
	return nil
}

// ErrorResponse is the JSON body of every non-2xx backend answer.
type ErrorResponse struct {
	Error string `json:"error"`
}
