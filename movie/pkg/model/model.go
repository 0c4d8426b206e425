package model

import "github.com/exmosaul/queteparece/pkg/locale"

// Movie is a stored catalog document. Title and description are per-locale
// maps (legacy documents carry plain strings, handled by locale.Text).
// Rating and RatingCount are the denormalized aggregate over the movie's
// rating samples.
type Movie struct {
	ID          string      `json:"id"`
	Title       locale.Text `json:"title"`
	Description locale.Text `json:"description"`
	ImageURL    string      `json:"imageUrl"`
	Category    string      `json:"category"`
	IsFeatured  bool        `json:"isFeatured"`
	Genres      []string    `json:"genres"`
	Type        string      `json:"type"`
	Actors      []string    `json:"actors"`
	Rating      float64     `json:"rating"`
	RatingCount int         `json:"ratingCount"`
	Platforms   []string    `json:"platforms"`
	Trailer     string      `json:"trailer"`
}

// Clone returns a deep copy of the movie.
func (m *Movie) Clone() *Movie {
	c := *m
	c.Genres = append([]string(nil), m.Genres...)
	c.Actors = append([]string(nil), m.Actors...)
	c.Platforms = append([]string(nil), m.Platforms...)
	return &c
}

// MovieDetails is the read view of a movie for one locale: localized text
// resolved to single strings, aggregate rating alongside.
type MovieDetails struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	ImageURL    string   `json:"imageUrl"`
	Genres      []string `json:"genres"`
	Type        string   `json:"type"`
	Rating      float64  `json:"rating"`
	RatingCount int      `json:"ratingCount"`
	Trailer     string   `json:"trailer"`
}

// Review is a stored review document. Likes and Dislikes are denormalized
// copies of the voter set cardinalities and are rewritten together with the
// sets in every vote transaction.
type Review struct {
	ID         string   `json:"id"`
	UserID     string   `json:"userId"`
	Username   string   `json:"username"`
	UserPhoto  string   `json:"userPhoto,omitempty"`
	MovieID    string   `json:"movieId"`
	Text       string   `json:"text"`
	Likes      int      `json:"likes"`
	Dislikes   int      `json:"dislikes"`
	LikedBy    []string `json:"likedBy"`
	DislikedBy []string `json:"dislikedBy"`
}

// Clone returns a deep copy of the review.
func (r *Review) Clone() *Review {
	c := *r
	c.LikedBy = append([]string(nil), r.LikedBy...)
	c.DislikedBy = append([]string(nil), r.DislikedBy...)
	return &c
}

// RatingSample is one user's rating of a movie, stored per (movie, user).
type RatingSample struct {
	UserID    string `json:"userId"`
	Rating    int    `json:"rating"`
	Timestamp int64  `json:"timestamp"`
}

// RatingEvent is a rating change flowing through the ratings topic.
type RatingEvent struct {
	MovieID    string          `json:"movieId"`
	UserID     string          `json:"userId"`
	Rating     int             `json:"rating"`
	ProviderID string          `json:"providerId"`
	EventType  RatingEventType `json:"eventType"`
}

// RatingEventType defines the type of a rating event.
type RatingEventType string

const (
	RatingEventTypePut    = RatingEventType("put")
	RatingEventTypeDelete = RatingEventType("delete")
)
