package mysql

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/goccy/go-json"

	"smart_places/internal/domain"
)

//go:embed migrations/*.sql
var migrations embed.FS

func valStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func valBool(p *bool) any {
	if p == nil {
		return nil
	}
	return *p
}

func valF64(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}

// valJSON encodes a keyword list; nil stays SQL NULL.
// valPos stores unset (negative) positions as NULL.
func valPos(p int) any {
	if p < 0 {
		return nil
	}
	return p
}

func valJSON(ks []string) any {
	if ks == nil {
		return nil
	}
	b, err := json.Marshal(ks)
	if err != nil {
		return nil
	}
	return string(b)
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

// Migrate applies the embedded schema files in name order. Statements are
// idempotent, so it is safe on every start.
func Migrate(ctx context.Context, db *sql.DB) error {
	files, err := fs.Glob(migrations, "migrations/*.sql")
	if err != nil {
		return err
	}
	sort.Strings(files)
	for _, f := range files {
		b, err := migrations.ReadFile(f)
		if err != nil {
			return err
		}
		for _, stmt := range strings.Split(string(b), ";") {
			if strings.TrimSpace(stmt) == "" {
				continue
			}
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("migrate %s: %w", f, err)
			}
		}
	}
	return nil
}

func (r *Repo) UpsertVenue(ctx context.Context, v domain.Venue) error {
	kw := valJSON(v.Keywords)
	if kw == nil {
		kw = "[]"
	}
	_, err := r.db.ExecContext(ctx, upsertVenueSQL,
		v.ID,
		v.Name,
		valStr(v.LocalName),
		string(v.Category),
		valStr(v.Cuisine),
		valStr(v.Address),
		valStr(string(v.PriceTier)),
		v.AveragePrice,
		v.Rating,
		v.ReviewCount,
		v.SentimentScore,
		valStr(v.ImageURL),
		v.Coords.Lat,
		v.Coords.Lng,
		valStr(v.Insight),
		kw,
		valBool(v.OpenNow),
		valF64(v.Distance),
		valPos(v.Position),
	)
	return err
}

func (r *Repo) DeleteVenue(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, deleteVenueSQL, id)
	return err
}

// UpsertReviews replaces the stored reviews of a venue with rs.
func (r *Repo) UpsertReviews(ctx context.Context, venueID string, rs []domain.Review) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, deleteReviewsSQL, venueID); err != nil {
		return err
	}
	if len(rs) > 0 {
		values := make([]string, 0, len(rs))
		args := make([]any, 0, len(rs)*8)
		for _, rv := range rs {
			values = append(values, "(?,?,?,?,?,?,?,?)")
			args = append(args,
				venueID,
				rv.ID,
				valStr(rv.Author),
				rv.Rating,
				valStr(rv.Text),
				valStr(rv.Date),
				string(rv.Sentiment),
				valJSON(rv.Keywords),
			)
		}
		if _, err := tx.ExecContext(ctx, insertReviewsPrefix+strings.Join(values, ","), args...); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *Repo) LogMiss(ctx context.Context, id string, status int, reason string) error {
	if len(reason) > 512 {
		reason = reason[:512]
	}
	_, err := r.db.ExecContext(ctx, insertMissSQL, id, status, reason)
	return err
}

func (r *Repo) GetVenue(ctx context.Context, id string) (domain.Venue, error) {
	v, err := scanVenue(r.db.QueryRowContext(ctx, getVenueSQL, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Venue{}, domain.ErrNotFound
		}
		return domain.Venue{}, err
	}

	rows, err := r.db.QueryContext(ctx, venueReviewsSQL, id)
	if err != nil {
		return domain.Venue{}, err
	}
	defer rows.Close()
	v.Reviews = []domain.Review{}
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return domain.Venue{}, err
		}
		v.Reviews = append(v.Reviews, rv)
	}
	return v, rows.Err()
}

func (r *Repo) ListVenues(ctx context.Context) ([]domain.Venue, error) {
	reviews, err := r.reviewsByVenue(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, listVenuesSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Venue
	for rows.Next() {
		v, err := scanVenue(rows)
		if err != nil {
			return nil, err
		}
		v.Reviews = reviews[v.ID]
		if v.Reviews == nil {
			v.Reviews = []domain.Review{}
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *Repo) reviewsByVenue(ctx context.Context) (map[string][]domain.Review, error) {
	rows, err := r.db.QueryContext(ctx, listReviewsSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string][]domain.Review)
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		out[rv.VenueID] = append(out[rv.VenueID], rv)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanVenue(s scanner) (domain.Venue, error) {
	var (
		v                                               domain.Venue
		category                                        string
		localName, cuisine, address, tier, img, insight sql.NullString
		keywords                                        []byte
		openNow                                         sql.NullBool
		distance                                        sql.NullFloat64
	)
	if err := s.Scan(
		&v.ID, &v.Name, &localName, &category, &cuisine, &address, &tier,
		&v.AveragePrice, &v.Rating, &v.ReviewCount, &v.SentimentScore,
		&img, &v.Coords.Lat, &v.Coords.Lng, &insight, &keywords, &openNow, &distance,
	); err != nil {
		return domain.Venue{}, err
	}

	v.Category = domain.Category(category)
	v.LocalName = localName.String
	v.Cuisine = cuisine.String
	v.Address = address.String
	v.PriceTier = domain.PriceTier(tier.String)
	v.ImageURL = img.String
	v.Insight = insight.String
	v.Keywords = []string{}
	if len(keywords) > 0 {
		if err := json.Unmarshal(keywords, &v.Keywords); err != nil {
			return domain.Venue{}, fmt.Errorf("venue %s keywords: %w", v.ID, err)
		}
	}
	if openNow.Valid {
		b := openNow.Bool
		v.OpenNow = &b
	}
	if distance.Valid {
		d := distance.Float64
		v.Distance = &d
	}
	return v, nil
}

func scanReview(s scanner) (domain.Review, error) {
	var (
		rv                 domain.Review
		author, text, date sql.NullString
		sentiment          string
		keywords           []byte
	)
	if err := s.Scan(&rv.VenueID, &rv.ID, &author, &rv.Rating, &text, &date, &sentiment, &keywords); err != nil {
		return domain.Review{}, err
	}
	rv.Author = author.String
	rv.Text = text.String
	rv.Date = date.String
	rv.Sentiment = domain.Sentiment(sentiment)
	if len(keywords) > 0 {
		if err := json.Unmarshal(keywords, &rv.Keywords); err != nil {
			return domain.Review{}, fmt.Errorf("review %s keywords: %w", rv.ID, err)
		}
	}
	return rv, nil
}
