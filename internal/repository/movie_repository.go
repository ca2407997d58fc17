package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"github.com/quickshow/movie-ticket-booking/internal/model"
)

// MovieRepo persists cached catalog records.  Movies are written once,
// the first time an admin schedules a show for them, and never refreshed.
// Genres and casts are stored as JSON columns and unmarshalled into the
// model types on read.
type MovieRepo struct {
	db *sql.DB
}

// NewMovieRepo constructs a MovieRepo with the given DB handle.
func NewMovieRepo(db *sql.DB) *MovieRepo { return &MovieRepo{db: db} }

const movieColumns = `id, title, overview, poster_path, backdrop_path, genres, casts,
       release_date, original_language, tagline, vote_average, runtime`

// GetByID retrieves a cached movie.  It returns ErrMovieNotFound when the
// movie has not been materialized yet.
func (r *MovieRepo) GetByID(ctx context.Context, id string) (*model.Movie, error) {
	const q = `SELECT ` + movieColumns + ` FROM movies WHERE id = ?`
	m, err := scanMovie(r.db.QueryRowContext(ctx, q, id))
	if err == sql.ErrNoRows {
		return nil, ErrMovieNotFound
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Create inserts a movie record.  Inserting an already-cached movie is
// treated as success so concurrent admins scheduling the same movie do
// not fail.
func (r *MovieRepo) Create(ctx context.Context, m *model.Movie) error {
	genres, err := json.Marshal(m.Genres)
	if err != nil {
		return err
	}
	casts, err := json.Marshal(m.Casts)
	if err != nil {
		return err
	}
	const q = `INSERT INTO movies (` + movieColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, q,
		m.ID, m.Title, m.Overview, m.PosterPath, m.BackdropPath, genres, casts,
		m.ReleaseDate, m.OriginalLanguage, m.Tagline, m.VoteAverage, m.Runtime,
	)
	if isDuplicateKey(err) {
		return nil
	}
	return err
}

// ListByIDs returns the cached movies for the given IDs.  Missing IDs are
// silently skipped; the result order follows the input order.
func (r *MovieRepo) ListByIDs(ctx context.Context, ids []string) ([]model.Movie, error) {
	if len(ids) == 0 {
		return []model.Movie{}, nil
	}
	placeholders := make([]string, len(ids))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}
	q := `SELECT ` + movieColumns + ` FROM movies WHERE id IN (` + strings.Join(placeholders, ",") + `)`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	byID := make(map[string]model.Movie, len(ids))
	for rows.Next() {
		m, err := scanMovie(rows)
		if err != nil {
			return nil, err
		}
		byID[m.ID] = *m
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	out := make([]model.Movie, 0, len(byID))
	for _, id := range ids {
		if m, ok := byID[id]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMovie(row rowScanner) (*model.Movie, error) {
	var (
		m             model.Movie
		overview      sql.NullString
		poster        sql.NullString
		backdrop      sql.NullString
		genres, casts []byte
		release       sql.NullString
		lang          sql.NullString
		tagline       sql.NullString
	)
	if err := row.Scan(
		&m.ID, &m.Title, &overview, &poster, &backdrop, &genres, &casts,
		&release, &lang, &tagline, &m.VoteAverage, &m.Runtime,
	); err != nil {
		return nil, err
	}
	m.Overview = overview.String
	m.PosterPath = poster.String
	m.BackdropPath = backdrop.String
	m.ReleaseDate = release.String
	m.OriginalLanguage = lang.String
	m.Tagline = tagline.String
	m.Genres = []model.Genre{}
	m.Casts = []model.CastMember{}
	if len(genres) > 0 {
		if err := json.Unmarshal(genres, &m.Genres); err != nil {
			return nil, err
		}
	}
	if len(casts) > 0 {
		if err := json.Unmarshal(casts, &m.Casts); err != nil {
			return nil, err
		}
	}
	return &m, nil
}
