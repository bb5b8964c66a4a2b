package analyses

import (
	"slices"
	"time"
)

// Record is the structured result of analyzing one resume.
type Record struct {
	ID              string           `json:"id"`
	FileName        string           `json:"fileName"`
	UploadDate      time.Time        `json:"uploadDate"`
	PersonalDetails PersonalDetails  `json:"personalDetails"`
	Summary         string           `json:"summary"`
	WorkExperience  []WorkExperience `json:"workExperience"`
	Education       []Education      `json:"education"`
	Projects        []Project        `json:"projects"`
	Certifications  []Certification  `json:"certifications"`
	Skills          Skills           `json:"skills"`
	AIFeedback      AIFeedback       `json:"aiFeedback"`
	SourceKey       string           `json:"sourceKey,omitempty"`
}

type PersonalDetails struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	LinkedIn  string `json:"linkedin,omitempty"`
	Portfolio string `json:"portfolio,omitempty"`
}

type WorkExperience struct {
	Company     string `json:"company"`
	Position    string `json:"position"`
	Duration    string `json:"duration"`
	Description string `json:"description"`
}

type Education struct {
	Institution string `json:"institution"`
	Degree      string `json:"degree"`
	Field       string `json:"field"`
	Year        string `json:"year"`
	GPA         string `json:"gpa,omitempty"`
}

type Project struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Technologies []string `json:"technologies"`
	Duration     string   `json:"duration,omitempty"`
}

type Certification struct {
	Name   string `json:"name"`
	Issuer string `json:"issuer"`
	Date   string `json:"date"`
}

type Skills struct {
	Technical []string `json:"technical"`
	Soft      []string `json:"soft"`
}

// AIFeedback holds the provider's overall assessment. Rating is observed in 0-10
// but not enforced.
type AIFeedback struct {
	Rating           float64  `json:"rating"`
	Summary          string   `json:"summary"`
	ImprovementAreas []string `json:"improvementAreas"`
	SuggestedSkills  []string `json:"suggestedSkills"`
}

const (
	BandStrong   = "strong"
	BandModerate = "moderate"
	BandWeak     = "weak"
)

// RatingBand buckets a rating for display only.
func RatingBand(rating float64) string {
	switch {
	case rating >= 8:
		return BandStrong
	case rating >= 6:
		return BandModerate
	default:
		return BandWeak
	}
}

// Normalize replaces nil lists with empty ones so stored and returned records
// serialize identically.
func (r Record) Normalize() Record {
	if r.WorkExperience == nil {
		r.WorkExperience = []WorkExperience{}
	}
	if r.Education == nil {
		r.Education = []Education{}
	}
	projects := make([]Project, len(r.Projects))
	copy(projects, r.Projects)
	for i := range projects {
		if projects[i].Technologies == nil {
			projects[i].Technologies = []string{}
		}
	}
	r.Projects = projects
	if r.Certifications == nil {
		r.Certifications = []Certification{}
	}
	if r.Skills.Technical == nil {
		r.Skills.Technical = []string{}
	}
	if r.Skills.Soft == nil {
		r.Skills.Soft = []string{}
	}
	if r.AIFeedback.ImprovementAreas == nil {
		r.AIFeedback.ImprovementAreas = []string{}
	}
	if r.AIFeedback.SuggestedSkills == nil {
		r.AIFeedback.SuggestedSkills = []string{}
	}
	return r
}

// Clone returns a deep copy that shares no slices with r.
func (r Record) Clone() Record {
	r.WorkExperience = slices.Clone(r.WorkExperience)
	r.Education = slices.Clone(r.Education)
	projects := slices.Clone(r.Projects)
	for i := range projects {
		projects[i].Technologies = slices.Clone(projects[i].Technologies)
	}
	r.Projects = projects
	r.Certifications = slices.Clone(r.Certifications)
	r.Skills.Technical = slices.Clone(r.Skills.Technical)
	r.Skills.Soft = slices.Clone(r.Skills.Soft)
	r.AIFeedback.ImprovementAreas = slices.Clone(r.AIFeedback.ImprovementAreas)
	r.AIFeedback.SuggestedSkills = slices.Clone(r.AIFeedback.SuggestedSkills)
	return r
}

// Upload is the raw input handed to a Provider.
type Upload struct {
	FileName    string
	ContentType string
	SizeBytes   int64
	Data        []byte
}
