package repository

import (
	"context"      // context carries deadlines into every query
	"database/sql" // sql provides generic database operations and drivers
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/siddu-catalog/internal/model"
)

// MovieRepo is the MySQL implementation of MovieStore.  Scalar fields map
// to columns; list-valued fields are stored as JSON documents.
type MovieRepo struct {
	db  *sql.DB
	now func() time.Time
}

// NewMovieRepo constructs a MovieRepo with the provided DB handle.
func NewMovieRepo(db *sql.DB) *MovieRepo {
	return &MovieRepo{db: db, now: func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) }}
}

const movieColumns = `id, title, original_title, synopsis, tagline, poster, backdrop, trailer_url,
	release_date, runtime, status, siddu_score, certification, budget, box_office, imported_from,
	genres, languages, keywords, production_companies, countries_of_origin, gallery_images,
	cast_members, crew, awards, streaming_links, release_dates, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMovie(rs rowScanner) (model.Movie, error) {
	var (
		m                 model.Movie
		status            string
		budget, boxOffice sql.NullFloat64
		docs              [11][]byte
	)
	err := rs.Scan(&m.ID, &m.Title, &m.OriginalTitle, &m.Synopsis, &m.Tagline, &m.Poster, &m.Backdrop, &m.TrailerURL,
		&m.ReleaseDate, &m.Runtime, &status, &m.SidduScore, &m.Certification, &budget, &boxOffice, &m.ImportedFrom,
		&docs[0], &docs[1], &docs[2], &docs[3], &docs[4], &docs[5],
		&docs[6], &docs[7], &docs[8], &docs[9], &docs[10], &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return model.Movie{}, err
	}
	m.Status = model.Status(status)
	if budget.Valid {
		v := budget.Float64
		m.Budget = &v
	}
	if boxOffice.Valid {
		v := boxOffice.Float64
		m.BoxOffice = &v
	}
	targets := []any{&m.Genres, &m.Languages, &m.Keywords, &m.ProductionCompanies, &m.CountriesOfOrigin,
		&m.GalleryImages, &m.Cast, &m.Crew, &m.Awards, &m.StreamingLinks, &m.ReleaseDates}
	for i, raw := range docs {
		if len(raw) == 0 {
			continue
		}
		if err := json.Unmarshal(raw, targets[i]); err != nil {
			return model.Movie{}, fmt.Errorf("decode movie %s list column %d: %w", m.ID, i, err)
		}
	}
	m.NormalizeLists()
	return m, nil
}

// movieArgs returns the column values for m in movieColumns order.
func movieArgs(m model.Movie) ([]any, error) {
	m.NormalizeLists()
	lists := []any{m.Genres, m.Languages, m.Keywords, m.ProductionCompanies, m.CountriesOfOrigin,
		m.GalleryImages, m.Cast, m.Crew, m.Awards, m.StreamingLinks, m.ReleaseDates}
	args := []any{m.ID, m.Title, m.OriginalTitle, m.Synopsis, m.Tagline, m.Poster, m.Backdrop, m.TrailerURL,
		m.ReleaseDate, m.Runtime, string(m.Status), m.SidduScore, m.Certification, nullFloat(m.Budget), nullFloat(m.BoxOffice), m.ImportedFrom}
	for _, l := range lists {
		b, err := json.Marshal(l)
		if err != nil {
			return nil, fmt.Errorf("encode movie %s: %w", m.ID, err)
		}
		args = append(args, b)
	}
	return append(args, m.CreatedAt, m.UpdatedAt), nil
}

func nullFloat(p *float64) sql.NullFloat64 {
	if p == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *p, Valid: true}
}

// List returns all movies ordered by creation time then id.
func (r *MovieRepo) List(ctx context.Context) ([]model.Movie, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+movieColumns+` FROM movies ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Movie{}
	for rows.Next() {
		m, err := scanMovie(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByID fetches a movie by id.  It returns ErrMovieNotFound if no row is found.
func (r *MovieRepo) GetByID(ctx context.Context, id string) (*model.Movie, error) {
	m, err := scanMovie(r.db.QueryRowContext(ctx, `SELECT `+movieColumns+` FROM movies WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMovieNotFound
		}
		return nil, err
	}
	return &m, nil
}

// Add inserts a single movie built from draft.
func (r *MovieRepo) Add(ctx context.Context, draft model.Movie) (*model.Movie, error) {
	out, err := r.AddAll(ctx, []model.Movie{draft})
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

// AddAll inserts every draft inside one transaction.
func (r *MovieRepo) AddAll(ctx context.Context, drafts []model.Movie) (out []model.Movie, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	const q = `INSERT INTO movies (` + movieColumns + `)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`
	now := r.now()
	out = make([]model.Movie, 0, len(drafts))
	for _, d := range drafts {
		m := d.Clone()
		ApplyDefaults(&m, now)
		m.ID = NewMovieID()
		m.CreatedAt = now
		m.UpdatedAt = now
		args, aerr := movieArgs(m)
		if aerr != nil {
			return nil, aerr
		}
		if _, err = tx.ExecContext(ctx, q, args...); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

// Update replaces every mutable column of the movie with the same id.  The
// stored created_at is preserved and updated_at refreshed.
func (r *MovieRepo) Update(ctx context.Context, m model.Movie) (updated *model.Movie, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	var createdAt time.Time
	if err = tx.QueryRowContext(ctx, `SELECT created_at FROM movies WHERE id = ? FOR UPDATE`, m.ID).Scan(&createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = ErrMovieNotFound
		}
		return nil, err
	}
	next := m.Clone()
	next.CreatedAt = createdAt
	next.UpdatedAt = r.now()
	if next.UpdatedAt.Before(createdAt) {
		next.UpdatedAt = createdAt
	}
	args, err := movieArgs(next)
	if err != nil {
		return nil, err
	}
	// args[0] is the id; move it to the WHERE clause and drop created_at.
	set := append(append([]any{}, args[1:len(args)-2]...), next.UpdatedAt, next.ID)
	const q = `UPDATE movies SET title = ?, original_title = ?, synopsis = ?, tagline = ?, poster = ?, backdrop = ?,
		trailer_url = ?, release_date = ?, runtime = ?, status = ?, siddu_score = ?, certification = ?, budget = ?,
		box_office = ?, imported_from = ?, genres = ?, languages = ?, keywords = ?, production_companies = ?,
		countries_of_origin = ?, gallery_images = ?, cast_members = ?, crew = ?, awards = ?, streaming_links = ?,
		release_dates = ?, updated_at = ?
		WHERE id = ?`
	if _, err = tx.ExecContext(ctx, q, set...); err != nil {
		return nil, err
	}
	next.NormalizeLists()
	return &next, nil
}

// Remove deletes a movie.  A missing row is not an error.
func (r *MovieRepo) Remove(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM movies WHERE id = ?`, id)
	return err
}
