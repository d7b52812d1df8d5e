package accessors

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seamorm/seam/schema"
)

// valString normalizes driver values that may scan as string or []byte.
func valString(v any) string {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return fmt.Sprint(v)
}

func setupSqliteDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	queries := []string{
		`CREATE TABLE cd (cdid TEXT PRIMARY KEY, artist TEXT, title TEXT)`,
		`CREATE TABLE track (trackid TEXT PRIMARY KEY, title TEXT)`,
		`CREATE TABLE cd_track_join (cdid TEXT, trackid TEXT, PRIMARY KEY (cdid, trackid))`,
	}
	for _, q := range queries {
		_, err := db.Exec(q)
		require.NoError(t, err)
	}
	return db
}

func TestAccessorsAgainstSqlite(t *testing.T) {
	db := setupSqliteDB(t)
	registry, resolver := setupCatalog(t)

	cd, _ := registry.Get("Cd")

	helper := NewHelper(db, resolver, nil)
	registry.SetTraverser(helper)

	ziggy := uuid.NewString()
	hunky := uuid.NewString()
	_, err := db.Exec(`INSERT INTO cd (cdid, artist, title) VALUES (?, ?, ?)`, ziggy, "David Bowie", "Ziggy Stardust")
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO cd (cdid, artist, title) VALUES (?, ?, ?)`, hunky, "David Bowie", "Hunky Dory")
	require.NoError(t, err)

	trackIDs := make([]string, 0, 3)
	for i, title := range []string{"Five Years", "Soul Love", "Moonage Daydream"} {
		id := uuid.NewString()
		trackIDs = append(trackIDs, id)
		_, err := db.Exec(`INSERT INTO track (trackid, title) VALUES (?, ?)`, id, title)
		require.NoError(t, err, "track %d", i)
		_, err = db.Exec(`INSERT INTO cd_track_join (cdid, trackid) VALUES (?, ?)`, ziggy, id)
		require.NoError(t, err)
	}

	ctx := context.Background()
	record := schema.Record{"cdid": ziggy}

	t.Run("related count", func(t *testing.T) {
		count, err := helper.RelatedCount(ctx, cd, record, "cd_tracks")
		require.NoError(t, err)
		assert.Equal(t, 3, count)

		empty, err := helper.RelatedCount(ctx, cd, schema.Record{"cdid": hunky}, "cd_tracks")
		require.NoError(t, err)
		assert.Equal(t, 0, empty)
	})

	t.Run("related pages", func(t *testing.T) {
		pages, err := helper.RelatedPages(ctx, cd, record, "cd_tracks", "2")
		require.NoError(t, err)
		assert.Equal(t, 2, pages)
	})

	t.Run("many-to-many traversal", func(t *testing.T) {
		got, err := cd.Invoke(ctx, "tracks", record)
		require.NoError(t, err)

		records, ok := got.([]schema.Record)
		require.True(t, ok)
		require.Len(t, records, 3)

		seen := make(map[string]bool)
		for _, r := range records {
			seen[valString(r["trackid"])] = true
		}
		for _, id := range trackIDs {
			assert.True(t, seen[id], "expected track %s in traversal", id)
		}
	})
}
