package analyses

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const selectColumns = `
SELECT id, file_name, upload_date, personal_details, summary, work_experience,
       education, projects, certifications, skills, ai_feedback, source_key
FROM resume_analyses`

// row mirrors the resume_analyses table. Nested objects are stored as JSONB.
type row struct {
	ID              string
	FileName        string
	UploadDate      time.Time
	PersonalDetails []byte
	Summary         string
	WorkExperience  []byte
	Education       []byte
	Projects        []byte
	Certifications  []byte
	Skills          []byte
	AIFeedback      []byte
	SourceKey       sql.NullString
}

// Create inserts a new record; the database assigns the id.
func (r *PGRepo) Create(ctx context.Context, rec Record) (Record, error) {
	const query = `
INSERT INTO resume_analyses (
	file_name, upload_date, personal_details, summary, work_experience,
	education, projects, certifications, skills, ai_feedback, source_key
)
VALUES ($1, $2, $3::jsonb, $4, $5::jsonb, $6::jsonb, $7::jsonb, $8::jsonb, $9::jsonb, $10::jsonb, $11)
RETURNING id, upload_date`

	rec = rec.Normalize()
	in, err := toRow(rec)
	if err != nil {
		return Record{}, &StoreError{Op: opCreate, Err: err}
	}

	var (
		id         string
		uploadDate time.Time
	)
	err = r.DB.QueryRowContext(ctx, query,
		in.FileName,
		in.UploadDate,
		string(in.PersonalDetails),
		in.Summary,
		string(in.WorkExperience),
		string(in.Education),
		string(in.Projects),
		string(in.Certifications),
		string(in.Skills),
		string(in.AIFeedback),
		in.SourceKey,
	).Scan(&id, &uploadDate)
	if err != nil {
		return Record{}, &StoreError{Op: opCreate, Err: err}
	}

	rec.ID = id
	rec.UploadDate = uploadDate.UTC()
	return rec, nil
}

// List returns all records ordered newest upload first.
func (r *PGRepo) List(ctx context.Context) ([]Record, error) {
	query := selectColumns + `
ORDER BY upload_date DESC, created_at DESC`

	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, &StoreError{Op: opList, Err: err}
	}
	defer rows.Close()

	out := []Record{}
	for rows.Next() {
		var rw row
		if err := scanRow(rows, &rw); err != nil {
			return nil, &StoreError{Op: opList, Err: err}
		}
		rec, err := fromRow(rw)
		if err != nil {
			return nil, &StoreError{Op: opList, Err: err}
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, &StoreError{Op: opList, Err: err}
	}
	return out, nil
}

// GetByID returns one record. Ids that are not UUIDs cannot exist.
func (r *PGRepo) GetByID(ctx context.Context, id string) (Record, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Record{}, ErrNotFound
	}
	query := selectColumns + `
WHERE id = $1
LIMIT 1`

	var rw row
	if err := scanRow(r.DB.QueryRowContext(ctx, query, id), &rw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, &StoreError{Op: opGet, Err: err}
	}
	rec, err := fromRow(rw)
	if err != nil {
		return Record{}, &StoreError{Op: opGet, Err: err}
	}
	return rec, nil
}

var _ Repo = (*PGRepo)(nil)

type scanner interface {
	Scan(dest ...any) error
}

func scanRow(s scanner, rw *row) error {
	return s.Scan(
		&rw.ID,
		&rw.FileName,
		&rw.UploadDate,
		&rw.PersonalDetails,
		&rw.Summary,
		&rw.WorkExperience,
		&rw.Education,
		&rw.Projects,
		&rw.Certifications,
		&rw.Skills,
		&rw.AIFeedback,
		&rw.SourceKey,
	)
}

func toRow(rec Record) (row, error) {
	out := row{
		ID:         rec.ID,
		FileName:   rec.FileName,
		UploadDate: rec.UploadDate,
		Summary:    rec.Summary,
		SourceKey:  sql.NullString{String: rec.SourceKey, Valid: rec.SourceKey != ""},
	}
	var err error
	if out.PersonalDetails, err = marshalColumn("personal_details", rec.PersonalDetails); err != nil {
		return row{}, err
	}
	if out.WorkExperience, err = marshalColumn("work_experience", rec.WorkExperience); err != nil {
		return row{}, err
	}
	if out.Education, err = marshalColumn("education", rec.Education); err != nil {
		return row{}, err
	}
	if out.Projects, err = marshalColumn("projects", rec.Projects); err != nil {
		return row{}, err
	}
	if out.Certifications, err = marshalColumn("certifications", rec.Certifications); err != nil {
		return row{}, err
	}
	if out.Skills, err = marshalColumn("skills", rec.Skills); err != nil {
		return row{}, err
	}
	if out.AIFeedback, err = marshalColumn("ai_feedback", rec.AIFeedback); err != nil {
		return row{}, err
	}
	return out, nil
}

func fromRow(rw row) (Record, error) {
	rec := Record{
		ID:         rw.ID,
		FileName:   rw.FileName,
		UploadDate: rw.UploadDate.UTC(),
		Summary:    rw.Summary,
	}
	if rw.SourceKey.Valid {
		rec.SourceKey = rw.SourceKey.String
	}
	columns := []struct {
		name string
		raw  []byte
		dst  any
	}{
		{"personal_details", rw.PersonalDetails, &rec.PersonalDetails},
		{"work_experience", rw.WorkExperience, &rec.WorkExperience},
		{"education", rw.Education, &rec.Education},
		{"projects", rw.Projects, &rec.Projects},
		{"certifications", rw.Certifications, &rec.Certifications},
		{"skills", rw.Skills, &rec.Skills},
		{"ai_feedback", rw.AIFeedback, &rec.AIFeedback},
	}
	for _, col := range columns {
		if len(col.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(col.raw, col.dst); err != nil {
			return Record{}, fmt.Errorf("decode %s for %s: %w", col.name, rw.ID, err)
		}
	}
	return rec.Normalize(), nil
}

func marshalColumn(name string, value any) ([]byte, error) {
	payload, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", name, err)
	}
	return payload, nil
}
