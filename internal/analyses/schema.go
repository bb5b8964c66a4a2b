package analyses

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// resultPayload is the JSON document a provider is asked to return:
//
//	{
//	  "personalDetails": {"name", "email", "phone", "linkedin?", "portfolio?"},
//	  "summary": "string",
//	  "workExperience": [{"company", "position", "duration", "description"}],
//	  "education": [{"institution", "degree", "field", "year", "gpa?"}],
//	  "projects": [{"name", "description", "technologies": [], "duration?"}],
//	  "certifications": [{"name", "issuer", "date"}],
//	  "skills": {"technical": [], "soft": []},
//	  "aiFeedback": {"rating": 0-10, "summary", "improvementAreas": [], "suggestedSkills": []}
//	}
type resultPayload struct {
	PersonalDetails PersonalDetails  `json:"personalDetails"`
	Summary         string           `json:"summary"`
	WorkExperience  []WorkExperience `json:"workExperience"`
	Education       []Education      `json:"education"`
	Projects        []Project        `json:"projects"`
	Certifications  []Certification  `json:"certifications"`
	Skills          Skills           `json:"skills"`
	AIFeedback      *AIFeedback      `json:"aiFeedback"`
}

// DecodeResult turns provider output into record content. FileName, UploadDate
// and ID are left for the caller to stamp.
func DecodeResult(raw []byte) (Record, error) {
	cleaned := cleanJSON(raw)
	if len(cleaned) == 0 {
		return Record{}, errors.New("empty provider output")
	}

	var payload resultPayload
	dec := json.NewDecoder(bytes.NewReader(cleaned))
	if err := dec.Decode(&payload); err != nil {
		return Record{}, fmt.Errorf("decode provider output: %w", err)
	}
	if payload.AIFeedback == nil {
		return Record{}, errors.New("provider output missing aiFeedback")
	}

	rec := Record{
		PersonalDetails: payload.PersonalDetails,
		Summary:         strings.TrimSpace(payload.Summary),
		WorkExperience:  payload.WorkExperience,
		Education:       payload.Education,
		Projects:        payload.Projects,
		Certifications:  payload.Certifications,
		Skills:          payload.Skills,
		AIFeedback:      *payload.AIFeedback,
	}
	return rec.Normalize(), nil
}

// cleanJSON strips a markdown code fence some models wrap around JSON output.
func cleanJSON(raw []byte) []byte {
	s := strings.TrimSpace(string(raw))
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	if start := strings.Index(s, "{"); start > 0 {
		s = s[start:]
	}
	if end := strings.LastIndex(s, "}"); end >= 0 && end < len(s)-1 {
		s = s[:end+1]
	}
	return []byte(strings.TrimSpace(s))
}
