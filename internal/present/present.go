// Package present renders analysis records for a terminal.
package present

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"resume-review/internal/analyses"
)

const dateLayout = "2006-01-02 15:04"

// HistoryUnavailable is shown instead of a table when history cannot be read.
const HistoryUnavailable = "History unavailable. Please try again."

// RenderHistory writes one row per record, newest first as given.
func RenderHistory(w io.Writer, recs []analyses.RecordView) error {
	if len(recs) == 0 {
		_, err := fmt.Fprintln(w, "No resumes analyzed yet.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tFILE\tNAME\tRATING\tBAND\tID")
	for _, rec := range recs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			rec.UploadDate.Local().Format(dateLayout),
			rec.FileName,
			orDash(rec.PersonalDetails.Name),
			Rating(rec.AIFeedback.Rating),
			rec.RatingBand,
			rec.ID,
		)
	}
	return tw.Flush()
}

// HistoryLabel is the one-line summary used by the interactive selector.
func HistoryLabel(rec analyses.RecordView) string {
	return fmt.Sprintf("%s  %s  %s (%s)",
		rec.UploadDate.Local().Format(dateLayout),
		rec.FileName,
		Rating(rec.AIFeedback.Rating),
		rec.RatingBand,
	)
}

// Rating formats a 0-10 rating.
func Rating(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64) + "/10"
}

// RenderRecord writes every section of one record.
func RenderRecord(w io.Writer, rec analyses.RecordView) error {
	var b strings.Builder
	pd := rec.PersonalDetails

	fmt.Fprintf(&b, "%s\n", orDash(pd.Name))
	fmt.Fprintf(&b, "%s  |  %s\n", orDash(pd.Email), orDash(pd.Phone))
	if pd.LinkedIn != "" {
		fmt.Fprintf(&b, "LinkedIn: %s\n", pd.LinkedIn)
	}
	if pd.Portfolio != "" {
		fmt.Fprintf(&b, "Portfolio: %s\n", pd.Portfolio)
	}
	fmt.Fprintf(&b, "File: %s  Uploaded: %s  ID: %s\n",
		rec.FileName, rec.UploadDate.Local().Format(dateLayout), rec.ID)

	section(&b, "AI Feedback")
	fmt.Fprintf(&b, "Rating: %s (%s)\n", Rating(rec.AIFeedback.Rating), rec.RatingBand)
	if rec.AIFeedback.Summary != "" {
		fmt.Fprintf(&b, "%s\n", rec.AIFeedback.Summary)
	}
	bullets(&b, "Improvement areas", rec.AIFeedback.ImprovementAreas)
	bullets(&b, "Suggested skills", rec.AIFeedback.SuggestedSkills)

	if rec.Summary != "" {
		section(&b, "Summary")
		fmt.Fprintf(&b, "%s\n", rec.Summary)
	}

	if len(rec.WorkExperience) > 0 {
		section(&b, "Work Experience")
		for _, job := range rec.WorkExperience {
			fmt.Fprintf(&b, "%s, %s (%s)\n", job.Position, job.Company, job.Duration)
			if job.Description != "" {
				fmt.Fprintf(&b, "  %s\n", job.Description)
			}
		}
	}

	if len(rec.Education) > 0 {
		section(&b, "Education")
		for _, ed := range rec.Education {
			line := fmt.Sprintf("%s in %s, %s (%s)", ed.Degree, ed.Field, ed.Institution, ed.Year)
			if ed.GPA != "" {
				line += " GPA " + ed.GPA
			}
			fmt.Fprintf(&b, "%s\n", line)
		}
	}

	if len(rec.Projects) > 0 {
		section(&b, "Projects")
		for _, p := range rec.Projects {
			fmt.Fprintf(&b, "%s", p.Name)
			if p.Duration != "" {
				fmt.Fprintf(&b, " (%s)", p.Duration)
			}
			fmt.Fprintf(&b, "\n")
			if p.Description != "" {
				fmt.Fprintf(&b, "  %s\n", p.Description)
			}
			if len(p.Technologies) > 0 {
				fmt.Fprintf(&b, "  Tech: %s\n", strings.Join(p.Technologies, ", "))
			}
		}
	}

	if len(rec.Certifications) > 0 {
		section(&b, "Certifications")
		for _, c := range rec.Certifications {
			fmt.Fprintf(&b, "%s, %s (%s)\n", c.Name, c.Issuer, c.Date)
		}
	}

	if len(rec.Skills.Technical) > 0 || len(rec.Skills.Soft) > 0 {
		section(&b, "Skills")
		if len(rec.Skills.Technical) > 0 {
			fmt.Fprintf(&b, "Technical: %s\n", strings.Join(rec.Skills.Technical, ", "))
		}
		if len(rec.Skills.Soft) > 0 {
			fmt.Fprintf(&b, "Soft: %s\n", strings.Join(rec.Skills.Soft, ", "))
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func section(b *strings.Builder, title string) {
	fmt.Fprintf(b, "\n== %s ==\n", title)
}

func bullets(b *strings.Builder, label string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "%s:\n", label)
	for _, item := range items {
		fmt.Fprintf(b, "  - %s\n", item)
	}
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
