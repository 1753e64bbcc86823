package models

import (
	"bytes"
	"encoding/json"
)

// AnalysisResult is the structured extraction the backend produces for one resume.
// Every field is optional; pointer fields distinguish "absent" from a zero value.
type AnalysisResult struct {
	MatchScore        *float64        `json:"match_score"`
	MatchScoreDetails json.RawMessage `json:"match_score_details,omitempty"`
	ExtractedName     *string         `json:"extracted_name"`
	ExtractedEmail    *string         `json:"extracted_email"`
	ExtractedPhone    *string         `json:"extracted_phone"`
	Skills            StringList      `json:"skills"`
	ExperienceSummary *string         `json:"experience_summary"`
	EducationSummary  *string         `json:"education_summary"`
	MatchingKeywords  StringList      `json:"matching_keywords"`
	LLMError          *string         `json:"llm_error"`
}

// UnmarshalJSON decodes field by field so one odd value never discards the rest.
// Scores may arrive as numeric strings, text fields as lists, and a value that is
// not an object decodes as an empty analysis.
func (a *AnalysisResult) UnmarshalJSON(data []byte) error {
	*a = AnalysisResult{}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil
	}

	a.MatchScore = looseNumber(fields["match_score"])
	if raw, ok := fields["match_score_details"]; ok {
		a.MatchScoreDetails = append(json.RawMessage(nil), bytes.TrimSpace(raw)...)
	}
	a.ExtractedName = looseText(fields["extracted_name"])
	a.ExtractedEmail = looseText(fields["extracted_email"])
	a.ExtractedPhone = looseText(fields["extracted_phone"])
	a.ExperienceSummary = looseText(fields["experience_summary"])
	a.EducationSummary = looseText(fields["education_summary"])
	a.LLMError = looseText(fields["llm_error"])

	if raw, ok := fields["skills"]; ok {
		if err := a.Skills.UnmarshalJSON(raw); err != nil {
			return err
		}
	}
	if raw, ok := fields["matching_keywords"]; ok {
		if err := a.MatchingKeywords.UnmarshalJSON(raw); err != nil {
			return err
		}
	}

	return nil
}

// HasScoreDetails reports whether match_score_details carries a truthy value.
func (a AnalysisResult) HasScoreDetails() bool {
	return truthy(a.MatchScoreDetails)
}

// Failure returns the partial-failure message, if any.
func (a AnalysisResult) Failure() (string, bool) {
	return Text(a.LLMError)
}

// Text returns the pointed-to string when it is present and non-empty.
func Text(s *string) (string, bool) {
	if s == nil || *s == "" {
		return "", false
	}
	return *s, true
}

// StringOr returns the pointed-to string or fallback when absent or empty.
func StringOr(s *string, fallback string) string {
	if v, ok := Text(s); ok {
		return v
	}
	return fallback
}

// StringList decodes a JSON array into strings. null stays nil and other non-array
// values decode as an empty list; non-string elements are kept in their JSON text
// form.
type StringList []string

func (l *StringList) UnmarshalJSON(data []byte) error {
	if string(bytes.TrimSpace(data)) == "null" {
		*l = nil
		return nil
	}

	var items []any
	if err := json.Unmarshal(data, &items); err != nil {
		*l = StringList{}
		return nil
	}

	out := make(StringList, 0, len(items))
	for _, item := range items {
		switch v := item.(type) {
		case string:
			out = append(out, v)
		case nil:
			out = append(out, "null")
		default:
			b, err := json.Marshal(v)
			if err != nil {
				continue
			}
			out = append(out, string(b))
		}
	}
	*l = out
	return nil
}

// MarshalJSON writes nil as null and an empty list as [].
func (l StringList) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("null"), nil
	}
	return json.Marshal([]string(l))
}
