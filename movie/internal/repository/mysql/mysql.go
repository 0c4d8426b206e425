package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"github.com/exmosaul/queteparece/movie/internal/repository"
	"github.com/exmosaul/queteparece/movie/pkg/model"
)

const txAttempts = 3

// Repository defines a MySQL-based movie repository. Movies and reviews are
// JSON documents; rating samples are rows keyed by (movie_id, uid).
type Repository struct {
	db *sql.DB
}

// New creates a new MySQL-based repository.
func New(dsn string) (*Repository, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	return &Repository{db: db}, nil
}

// GetMovie retrieves a movie document by id.
func (r *Repository) GetMovie(ctx context.Context, id string) (*model.Movie, error) {
	var doc []byte
	row := r.db.QueryRowContext(ctx, "SELECT doc FROM movies WHERE id = ?", id)
	if err := row.Scan(&doc); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	var m model.Movie
	if err := json.Unmarshal(doc, &m); err != nil {
		return nil, fmt.Errorf("corrupt movie document: %w", err)
	}
	return &m, nil
}

// PutMovie stores a movie document under its id, overwriting any existing one.
func (r *Repository) PutMovie(ctx context.Context, movie *model.Movie) error {
	doc, err := json.Marshal(movie)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		"INSERT INTO movies (id, doc) VALUES (?, ?) ON DUPLICATE KEY UPDATE doc = VALUES(doc)",
		movie.ID, doc)
	return err
}

// SetAggregate writes the recomputed rating aggregate onto the movie
// document. Last writer wins, as accepted for aggregate recomputation.
func (r *Repository) SetAggregate(ctx context.Context, movieID string, rating float64, count int) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE movies SET doc = JSON_SET(doc, '$.rating', ?, '$.ratingCount', ?) WHERE id = ?",
		rating, count, movieID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return repository.ErrNotFound
	}
	return err
}

// CreateReview stores a new review under the movie.
func (r *Repository) CreateReview(ctx context.Context, movieID string, review *model.Review) error {
	if _, err := r.GetMovie(ctx, movieID); err != nil {
		return err
	}
	doc, err := json.Marshal(review)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		"INSERT INTO movie_reviews (movie_id, review_id, doc) VALUES (?, ?, ?)",
		movieID, review.ID, doc)
	return err
}

// GetReview retrieves one review of a movie.
func (r *Repository) GetReview(ctx context.Context, movieID, reviewID string) (*model.Review, error) {
	var doc []byte
	row := r.db.QueryRowContext(ctx,
		"SELECT doc FROM movie_reviews WHERE movie_id = ? AND review_id = ?", movieID, reviewID)
	if err := row.Scan(&doc); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return decodeReview(doc)
}

// ListReviews returns the movie's reviews ordered by id.
func (r *Repository) ListReviews(ctx context.Context, movieID string) ([]model.Review, error) {
	if _, err := r.GetMovie(ctx, movieID); err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx,
		"SELECT doc FROM movie_reviews WHERE movie_id = ? ORDER BY review_id", movieID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []model.Review
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		rev, err := decodeReview(doc)
		if err != nil {
			return nil, err
		}
		res = append(res, *rev)
	}
	return res, rows.Err()
}

// UpdateReview applies fn to the review document inside a transaction,
// retrying on lock conflicts before surfacing repository.ErrConflict.
func (r *Repository) UpdateReview(ctx context.Context, movieID, reviewID string, fn func(*model.Review) error) error {
	var err error
	for attempt := 0; attempt < txAttempts; attempt++ {
		err = r.updateReviewTx(ctx, movieID, reviewID, fn)
		if !isLockConflict(err) {
			return err
		}
	}
	return fmt.Errorf("review update lost to concurrent voters: %w", repository.ErrConflict)
}

func (r *Repository) updateReviewTx(ctx context.Context, movieID, reviewID string, fn func(*model.Review) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var doc []byte
	row := tx.QueryRowContext(ctx,
		"SELECT doc FROM movie_reviews WHERE movie_id = ? AND review_id = ? FOR UPDATE", movieID, reviewID)
	if err := row.Scan(&doc); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return repository.ErrNotFound
		}
		return err
	}
	rev, err := decodeReview(doc)
	if err != nil {
		return err
	}
	if err := fn(rev); err != nil {
		return err
	}
	doc, err = json.Marshal(rev)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE movie_reviews SET doc = ? WHERE movie_id = ? AND review_id = ?", doc, movieID, reviewID); err != nil {
		return err
	}
	return tx.Commit()
}

// DeleteReview removes a review of a movie. Idempotent.
func (r *Repository) DeleteReview(ctx context.Context, movieID, reviewID string) error {
	_, err := r.db.ExecContext(ctx,
		"DELETE FROM movie_reviews WHERE movie_id = ? AND review_id = ?", movieID, reviewID)
	return err
}

// PutRating stores the user's rating sample for a movie, overwriting any
// previous sample by the same user.
func (r *Repository) PutRating(ctx context.Context, movieID string, sample *model.RatingSample) error {
	if _, err := r.GetMovie(ctx, movieID); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO movie_ratings (movie_id, uid, rating, ts) VALUES (?, ?, ?, ?) "+
			"ON DUPLICATE KEY UPDATE rating = VALUES(rating), ts = VALUES(ts)",
		movieID, sample.UserID, sample.Rating, sample.Timestamp)
	return err
}

// GetRating retrieves the user's rating sample for a movie.
func (r *Repository) GetRating(ctx context.Context, movieID, userID string) (*model.RatingSample, error) {
	var s model.RatingSample
	row := r.db.QueryRowContext(ctx,
		"SELECT uid, rating, ts FROM movie_ratings WHERE movie_id = ? AND uid = ?", movieID, userID)
	if err := row.Scan(&s.UserID, &s.Rating, &s.Timestamp); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// ListRatings returns all rating samples for a movie.
func (r *Repository) ListRatings(ctx context.Context, movieID string) ([]model.RatingSample, error) {
	if _, err := r.GetMovie(ctx, movieID); err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx,
		"SELECT uid, rating, ts FROM movie_ratings WHERE movie_id = ?", movieID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []model.RatingSample
	for rows.Next() {
		var s model.RatingSample
		if err := rows.Scan(&s.UserID, &s.Rating, &s.Timestamp); err != nil {
			return nil, err
		}
		res = append(res, s)
	}
	return res, rows.Err()
}

// DeleteRating removes the user's rating sample for a movie. Idempotent.
func (r *Repository) DeleteRating(ctx context.Context, movieID, userID string) error {
	_, err := r.db.ExecContext(ctx,
		"DELETE FROM movie_ratings WHERE movie_id = ? AND uid = ?", movieID, userID)
	return err
}

func decodeReview(doc []byte) (*model.Review, error) {
	var rev model.Review
	if err := json.Unmarshal(doc, &rev); err != nil {
		return nil, fmt.Errorf("corrupt review document: %w", err)
	}
	return &rev, nil
}

// isLockConflict reports whether err is a MySQL deadlock (1213) or lock wait
// timeout (1205).
func isLockConflict(err error) bool {
	var mysqlErr *mysql.MySQLError
	if !errors.As(err, &mysqlErr) {
		return false
	}
	return mysqlErr.Number == 1213 || mysqlErr.Number == 1205
}
