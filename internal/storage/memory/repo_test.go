package memory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smart_places/internal/domain"
	"smart_places/internal/storage/memory"
)

func TestRepo_UpsertAndRead(t *testing.T) {
	ctx := context.Background()
	r := memory.New()

	require.NoError(t, r.UpsertVenue(ctx, domain.Venue{ID: "b", Name: "B", Keywords: []string{"x"}}))
	require.NoError(t, r.UpsertVenue(ctx, domain.Venue{ID: "a", Name: "A"}))
	require.NoError(t, r.UpsertReviews(ctx, "b", []domain.Review{{ID: "r1", Sentiment: domain.SentimentPositive}}))

	// re-upsert keeps the original position
	require.NoError(t, r.UpsertVenue(ctx, domain.Venue{ID: "b", Name: "B2"}))

	vs, err := r.ListVenues(ctx)
	require.NoError(t, err)
	require.Len(t, vs, 2)
	assert.Equal(t, "b", vs[0].ID)
	assert.Equal(t, "B2", vs[0].Name)
	assert.Equal(t, "a", vs[1].ID)
	assert.NotNil(t, vs[1].Keywords)
	assert.Empty(t, vs[1].Reviews)

	v, err := r.GetVenue(ctx, "b")
	require.NoError(t, err)
	require.Len(t, v.Reviews, 1)
	assert.Equal(t, "b", v.Reviews[0].VenueID)
}

func TestRepo_ReviewsReplaced(t *testing.T) {
	ctx := context.Background()
	r := memory.New()
	require.NoError(t, r.UpsertVenue(ctx, domain.Venue{ID: "v"}))
	require.NoError(t, r.UpsertReviews(ctx, "v", []domain.Review{{ID: "1"}, {ID: "2"}}))
	require.NoError(t, r.UpsertReviews(ctx, "v", []domain.Review{{ID: "3"}}))

	v, _ := r.GetVenue(ctx, "v")
	require.Len(t, v.Reviews, 1)
	assert.Equal(t, "3", v.Reviews[0].ID)
}

func TestRepo_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	r := memory.New()
	require.NoError(t, r.UpsertVenue(ctx, domain.Venue{ID: "v", Keywords: []string{"quiet"}}))

	v, _ := r.GetVenue(ctx, "v")
	v.Keywords[0] = "loud"

	again, _ := r.GetVenue(ctx, "v")
	assert.Equal(t, "quiet", again.Keywords[0])
}

func TestRepo_NotFoundAndMisses(t *testing.T) {
	ctx := context.Background()
	r := memory.New()

	_, err := r.GetVenue(ctx, "nope")
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	require.NoError(t, r.LogMiss(ctx, "nope", 404, "not found"))
	require.NoError(t, r.LogMiss(ctx, "nope", 403, "forbidden"))
	m := r.Misses()
	require.Len(t, m, 1)
	assert.Equal(t, 403, m["nope"].Status)
}

func TestRepo_ListsByPosition(t *testing.T) {
	ctx := context.Background()
	r := memory.New()

	// inserted out of order, as concurrent ingestion does
	require.NoError(t, r.UpsertVenue(ctx, domain.Venue{ID: "c", Position: 2}))
	require.NoError(t, r.UpsertVenue(ctx, domain.Venue{ID: "a", Position: 0}))
	require.NoError(t, r.UpsertVenue(ctx, domain.Venue{ID: "x", Position: -1}))
	require.NoError(t, r.UpsertVenue(ctx, domain.Venue{ID: "b", Position: 1}))

	// a negative position keeps the stored one
	require.NoError(t, r.UpsertVenue(ctx, domain.Venue{ID: "a", Name: "A", Position: -1}))

	vs, err := r.ListVenues(ctx)
	require.NoError(t, err)
	var ids []string
	for _, v := range vs {
		ids = append(ids, v.ID)
	}
	assert.Equal(t, []string{"a", "b", "c", "x"}, ids)
	assert.Equal(t, "A", vs[0].Name)
}

func TestRepo_DeleteVenue(t *testing.T) {
	ctx := context.Background()
	r := memory.New()
	require.NoError(t, r.UpsertVenue(ctx, domain.Venue{ID: "v"}))
	require.NoError(t, r.UpsertReviews(ctx, "v", []domain.Review{{ID: "1"}}))

	require.NoError(t, r.DeleteVenue(ctx, "v"))
	require.NoError(t, r.DeleteVenue(ctx, "v"))

	_, err := r.GetVenue(ctx, "v")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	vs, _ := r.ListVenues(ctx)
	assert.Empty(t, vs)

	// a re-ingested venue starts without the old reviews
	require.NoError(t, r.UpsertVenue(ctx, domain.Venue{ID: "v"}))
	v, _ := r.GetVenue(ctx, "v")
	assert.Empty(t, v.Reviews)
}
