package analyses

import (
	"context"
	"time"
)

// MockProvider returns a fixed sample record regardless of the uploaded bytes.
// Delay simulates processing time and is cut short by ctx.
type MockProvider struct {
	Delay time.Duration
}

// Analyze implements Provider.
func (p MockProvider) Analyze(ctx context.Context, upload Upload) (Record, error) {
	if p.Delay > 0 {
		timer := time.NewTimer(p.Delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return Record{}, classifyLLMError(ctx.Err())
		}
	}
	if err := ctx.Err(); err != nil {
		return Record{}, classifyLLMError(err)
	}
	return sampleAnalysis(), nil
}

func sampleAnalysis() Record {
	return Record{
		PersonalDetails: PersonalDetails{
			Name:      "John Smith",
			Email:     "john.smith@example.com",
			Phone:     "+1-555-0123",
			LinkedIn:  "https://linkedin.com/in/johnsmith",
			Portfolio: "https://johnsmith.dev",
		},
		Summary: "Experienced software developer with 5+ years in full-stack web development, specializing in React, Node.js, and cloud technologies. Passionate about creating scalable solutions and mentoring junior developers.",
		WorkExperience: []WorkExperience{
			{
				Company:     "Tech Solutions Inc.",
				Position:    "Senior Software Developer",
				Duration:    "2021 - Present",
				Description: "Led development of microservices architecture serving 100k+ users. Built React applications and Node.js APIs. Mentored 3 junior developers.",
			},
			{
				Company:     "StartupCorp",
				Position:    "Full Stack Developer",
				Duration:    "2019 - 2021",
				Description: "Developed MVP from scratch using React and Express. Implemented authentication, payment processing, and real-time features.",
			},
		},
		Education: []Education{
			{
				Institution: "University of Technology",
				Degree:      "Bachelor of Science",
				Field:       "Computer Science",
				Year:        "2019",
				GPA:         "3.8",
			},
		},
		Projects: []Project{
			{
				Name:         "E-commerce Platform",
				Description:  "Built a full-stack e-commerce solution with React, Node.js, and PostgreSQL",
				Technologies: []string{"React", "Node.js", "PostgreSQL", "Stripe"},
				Duration:     "3 months",
			},
			{
				Name:         "Task Management App",
				Description:  "Collaborative task management tool with real-time updates",
				Technologies: []string{"React", "Socket.io", "MongoDB", "Express"},
				Duration:     "2 months",
			},
		},
		Certifications: []Certification{
			{Name: "AWS Certified Developer", Issuer: "Amazon Web Services", Date: "2023"},
			{Name: "React Professional Certification", Issuer: "Meta", Date: "2022"},
		},
		Skills: Skills{
			Technical: []string{"JavaScript", "TypeScript", "React", "Node.js", "PostgreSQL", "MongoDB", "AWS", "Docker", "Git"},
			Soft:      []string{"Leadership", "Problem Solving", "Communication", "Team Collaboration", "Project Management"},
		},
		AIFeedback: AIFeedback{
			Rating:  8.5,
			Summary: "Strong technical background with good project diversity. Resume shows clear progression and leadership experience.",
			ImprovementAreas: []string{
				"Add quantifiable achievements and metrics",
				"Include more specific technical accomplishments",
				"Consider adding volunteer work or open source contributions",
				"Expand on leadership and mentoring experiences",
			},
			SuggestedSkills: []string{
				"Kubernetes for container orchestration",
				"GraphQL for API development",
				"Python for data analysis",
				"DevOps practices and CI/CD",
				"Machine Learning fundamentals",
			},
		},
	}
}

var _ Provider = MockProvider{}
