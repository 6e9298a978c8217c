package fs_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fwojciec/harvest"
	"github.com/fwojciec/harvest/fs"
)

func record(name, url string) *harvest.Record {
	r := &harvest.Record{}
	if name != "" {
		r.Fields = append(r.Fields, harvest.Field{Name: harvest.FieldName, Value: name, Confidence: 1})
	}
	if url != "" {
		r.Fields = append(r.Fields, harvest.Field{Name: harvest.FieldURL, Value: url, Confidence: 1})
	}
	return r
}

func TestRecordPath(t *testing.T) {
	t.Parallel()

	t.Run("uses the URL path", func(t *testing.T) {
		t.Parallel()
		r := record("Oak Shelf", "https://shop.test/products/oak-shelf")
		assert.Equal(t, "products/oak-shelf.md", fs.RecordPath(r))
	})

	t.Run("slugifies the name without a URL", func(t *testing.T) {
		t.Parallel()
		r := record("Oak Shelf, 80cm", "")
		assert.Equal(t, "oak-shelf-80cm.md", fs.RecordPath(r))
	})

	t.Run("root URL falls back to the name", func(t *testing.T) {
		t.Parallel()
		r := record("Oak Shelf", "https://shop.test/")
		assert.Equal(t, "oak-shelf.md", fs.RecordPath(r))
	})

	t.Run("empty record gets a default path", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "record.md", fs.RecordPath(&harvest.Record{}))
	})
}

func TestFormatRecord(t *testing.T) {
	t.Parallel()

	r := record("Oak Shelf", "https://shop.test/products/oak-shelf")
	r.Fields = append(r.Fields,
		harvest.Field{Name: harvest.FieldPrice, Value: "949 zł", Confidence: 1},
		harvest.Field{Name: harvest.FieldDescription, Value: "A solid oak wall shelf.", Confidence: 1},
	)

	out := fs.FormatRecord(r)
	assert.Contains(t, out, "name: Oak Shelf\n")
	assert.Contains(t, out, "price: 949 zł\n")
	assert.Contains(t, out, "url: https://shop.test/products/oak-shelf\n")
	assert.Contains(t, out, "harvested: ")
	assert.Contains(t, out, "\n---\n\nA solid oak wall shelf.\n")
	assert.NotContains(t, out, "description:")
}

func TestExporter(t *testing.T) {
	t.Parallel()

	t.Run("commit moves the export into place", func(t *testing.T) {
		t.Parallel()
		base := t.TempDir()
		exporter := fs.NewExporter(base, "records")

		require.NoError(t, exporter.Save(record("Oak Shelf", "https://shop.test/products/oak-shelf")))
		require.NoError(t, exporter.Commit())

		content, err := os.ReadFile(filepath.Join(base, "records", "products", "oak-shelf.md"))
		require.NoError(t, err)
		assert.Contains(t, string(content), "name: Oak Shelf")

		_, err = os.Stat(filepath.Join(base, "records.tmp"))
		assert.True(t, os.IsNotExist(err), "temp dir should be gone after commit")
	})

	t.Run("commit replaces a previous export", func(t *testing.T) {
		t.Parallel()
		base := t.TempDir()

		first := fs.NewExporter(base, "records")
		require.NoError(t, first.Save(record("Old Product", "https://shop.test/products/old")))
		require.NoError(t, first.Commit())

		second := fs.NewExporter(base, "records")
		require.NoError(t, second.Save(record("New Product", "https://shop.test/products/new")))
		require.NoError(t, second.Commit())

		_, err := os.Stat(filepath.Join(base, "records", "products", "old.md"))
		assert.True(t, os.IsNotExist(err), "previous export should be replaced")
		_, err = os.Stat(filepath.Join(base, "records", "products", "new.md"))
		assert.NoError(t, err)
	})

	t.Run("abort leaves the previous export untouched", func(t *testing.T) {
		t.Parallel()
		base := t.TempDir()

		first := fs.NewExporter(base, "records")
		require.NoError(t, first.Save(record("Kept", "https://shop.test/products/kept")))
		require.NoError(t, first.Commit())

		second := fs.NewExporter(base, "records")
		require.NoError(t, second.Save(record("Discarded", "https://shop.test/products/discarded")))
		require.NoError(t, second.Abort())

		_, err := os.Stat(filepath.Join(base, "records", "products", "kept.md"))
		assert.NoError(t, err)
		_, err = os.Stat(filepath.Join(base, "records.tmp"))
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("colliding paths get numeric suffixes", func(t *testing.T) {
		t.Parallel()
		base := t.TempDir()
		exporter := fs.NewExporter(base, "records")

		require.NoError(t, exporter.Save(record("Mug", "")))
		require.NoError(t, exporter.Save(record("Mug", "")))
		require.NoError(t, exporter.Commit())

		_, err := os.Stat(filepath.Join(base, "records", "mug.md"))
		assert.NoError(t, err)
		_, err = os.Stat(filepath.Join(base, "records", "mug-2.md"))
		assert.NoError(t, err)
	})
}
