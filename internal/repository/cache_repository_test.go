package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	appErrors "github.com/noah-isme/course-eligibility-api/pkg/errors"
)

func TestCacheRepositoryWithoutClient(t *testing.T) {
	repo := NewCacheRepository(nil, nil)
	ctx := context.Background()

	var dest map[string]interface{}
	assert.ErrorIs(t, repo.Get(ctx, "eligibility:course:c1:training:report", &dest), appErrors.ErrCacheMiss)
	assert.NoError(t, repo.Set(ctx, "eligibility:course:c1:training:report", map[string]int{"total": 1}, time.Minute))
	assert.NoError(t, repo.DeleteByPattern(ctx, "eligibility:course:c1:*"))
	assert.NoError(t, repo.Close())
}

func TestCacheEntryRoundTrip(t *testing.T) {
	at := time.Date(2026, time.October, 14, 12, 0, 0, 0, time.UTC)
	raw, err := encodeEntry(map[string]interface{}{"course_id": "c1", "analysable": true}, at)
	assert.NoError(t, err)

	entry, err := decodeEntry(raw)
	assert.NoError(t, err)
	assert.Equal(t, cacheSchemaVersion, entry.Version)
	assert.True(t, at.Equal(entry.StoredAt))
	assert.JSONEq(t, `{"course_id":"c1","analysable":true}`, string(entry.Data))
}

func TestDecodeEntryRejectsStaleOrBrokenPayloads(t *testing.T) {
	_, err := decodeEntry([]byte(`{"v":1,"data":{"course_id":"c1"}}`))
	assert.ErrorContains(t, err, "schema version")

	_, err = decodeEntry([]byte(`{"course_id":"c1"}`))
	assert.Error(t, err)

	_, err = decodeEntry([]byte(`{"v":2}`))
	assert.ErrorContains(t, err, "no data")

	_, err = decodeEntry([]byte(`not json`))
	assert.Error(t, err)
}
