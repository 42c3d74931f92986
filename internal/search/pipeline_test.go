package search_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/pathshala/pathshala/internal/config"
	"github.com/pathshala/pathshala/internal/importer"
	"github.com/pathshala/pathshala/internal/models"
	"github.com/pathshala/pathshala/internal/search"
	"github.com/pathshala/pathshala/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const physicsBundle = `
questions:
  - id: q-force
    question: বল কাকে বলে?
    options: [ধাক্কা বা টান, শক্তি, কাজ, ক্ষমতা]
    answer: ধাক্কা বা টান
    subject: পদার্থবিজ্ঞান
    board: Dhaka
    year: 2023
papers:
  - id: p-dhaka-2023
    title: Physics 1st Paper Dhaka Board 2023
    subject: Physics
    board: Dhaka
    exam_type: HSC
    year: 2023
`

const algebraNote = `Quadratic equations have at most two real roots.
Use the discriminant to tell how many.`

// writeCorpus lays out a small content tree the way an instructor would drop it
// into a watched directory.
func writeCorpus(t *testing.T) (root, bundle string) {
	t.Helper()
	root = t.TempDir()
	bundle = filepath.Join(root, "hsc", "physics.yaml")
	note := filepath.Join(root, "hsc", "math", "algebra_basics.md")
	require.NoError(t, os.MkdirAll(filepath.Dir(note), 0755))
	require.NoError(t, os.WriteFile(bundle, []byte(physicsBundle), 0644))
	require.NoError(t, os.WriteFile(note, []byte(algebraNote), 0644))
	return root, bundle
}

func TestPipeline_ImportThenSearch(t *testing.T) {
	for _, driver := range []string{config.DriverSQLite, config.DriverBleve} {
		t.Run(driver, func(t *testing.T) {
			dir := t.TempDir()
			cfg := &config.Config{Storage: config.StorageConfig{
				Driver:         driver,
				DatabasePath:   filepath.Join(dir, "content.db"),
				BleveIndexPath: filepath.Join(dir, "content.bleve"),
			}}
			config.ApplyDefaults(cfg)
			ctx := context.Background()

			store, err := storage.Open(ctx, cfg.Storage)
			require.NoError(t, err)
			defer store.Close()

			root, bundle := writeCorpus(t)
			im := importer.New(store, cfg.Importer, nil, nil)
			res, err := im.ImportDirectory(ctx, root, true)
			require.NoError(t, err)
			assert.Equal(t, 2, res.Files)
			assert.Equal(t, 3, res.Records)

			engine := search.NewEngine(nil, store, &cfg.Search, nil, nil)

			// A phonetic spelling reaches both the Bangla and the English records.
			resp, err := engine.Search(ctx, &models.SearchQuery{Query: "podartho"})
			require.NoError(t, err)
			assert.Equal(t, 2, resp.Total)
			ids := map[string]bool{}
			for _, r := range resp.Results {
				ids[r.Record.Meta().ID] = true
			}
			assert.True(t, ids["q-force"], "bangla question missing: %v", ids)
			assert.True(t, ids["p-dhaka-2023"], "english paper missing: %v", ids)

			// Plain text files become notes whose subject is their directory.
			resp, err = engine.Search(ctx, &models.SearchQuery{Query: "gonit", Categories: []models.Category{models.CategoryNote}})
			require.NoError(t, err)
			require.Len(t, resp.Results, 1)
			note := resp.Results[0].Record.(*models.Note)
			assert.Equal(t, "algebra basics", note.Title)
			assert.Equal(t, "math", note.Subject)

			// Removing the source file removes its records from search.
			n, err := im.RemoveFile(ctx, bundle)
			require.NoError(t, err)
			assert.EqualValues(t, 2, n)
			resp, err = engine.Search(ctx, &models.SearchQuery{Query: "podartho"})
			require.NoError(t, err)
			assert.Zero(t, resp.Total)
		})
	}
}
