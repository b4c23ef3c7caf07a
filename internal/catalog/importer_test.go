package catalog

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/example/vocabot/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeStore records the pairs handed to BulkImport
type fakeStore struct {
	pairs     []models.WordPair
	duplicate int
	err       error
}

func (s *fakeStore) BulkImport(_ context.Context, pairs []models.WordPair) (int, int, error) {
	if s.err != nil {
		return 0, 0, s.err
	}
	s.pairs = pairs
	return len(pairs) - s.duplicate, s.duplicate, nil
}

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestImporter_ImportFile_PipeText(t *testing.T) {
	content := "cat|кот\n\nbad-line\ndog|пёс|2\n"
	path := writeTempFile(t, "words.txt", content)

	store := &fakeStore{}
	importer := NewImporter(store, zap.NewNop())

	report, err := importer.ImportFile(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, 4, report.TotalLines)
	assert.Equal(t, 2, report.Inserted)
	assert.Equal(t, 0, report.Duplicate)
	assert.Equal(t, 1, report.Malformed, "single-field line is malformed, blank line is only skipped")

	require.Len(t, store.pairs, 2)
	assert.Equal(t, models.WordPair{Original: "cat", Translation: "кот"}, store.pairs[0])
	// The trailing counter field is tolerated and ignored.
	assert.Equal(t, models.WordPair{Original: "dog", Translation: "пёс"}, store.pairs[1])
}

func TestImporter_ImportFile_ValidationRules(t *testing.T) {
	tests := []struct {
		name      string
		line      string
		malformed bool
	}{
		{name: "plain pair", line: "cat|кот"},
		{name: "spaces and apostrophes", line: "it's fine|всё хорошо"},
		{name: "empty original", line: "|кот", malformed: true},
		{name: "empty translation", line: "cat|", malformed: true},
		{name: "digits rejected", line: "cat3|кот", malformed: true},
		{name: "too many fields", line: "a|b|c|d", malformed: true},
		{name: "overlong field", line: strings.Repeat("a", maxFieldLength+1) + "|кот", malformed: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTempFile(t, "words.txt", tt.line+"\n")
			store := &fakeStore{}
			importer := NewImporter(store, zap.NewNop())

			report, err := importer.ImportFile(context.Background(), path)
			require.NoError(t, err)

			if tt.malformed {
				assert.Equal(t, 1, report.Malformed)
				assert.Empty(t, store.pairs)
			} else {
				assert.Equal(t, 0, report.Malformed)
				assert.Len(t, store.pairs, 1)
			}
		})
	}
}

func TestImporter_ImportFile_CSV(t *testing.T) {
	content := "cat,кот\ndog,пёс,2\nonlyfield\n"
	path := writeTempFile(t, "words.csv", content)

	store := &fakeStore{}
	importer := NewImporter(store, zap.NewNop())

	report, err := importer.ImportFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 3, report.TotalLines)
	assert.Equal(t, 2, report.Inserted)
	assert.Equal(t, 1, report.Malformed)
}

func TestImporter_ImportFile_MissingFile(t *testing.T) {
	store := &fakeStore{}
	importer := NewImporter(store, zap.NewNop())

	_, err := importer.ImportFile(context.Background(), filepath.Join(t.TempDir(), "absent.txt"))
	assert.Error(t, err)
}

func TestImporter_ImportFile_ReportsDuplicates(t *testing.T) {
	path := writeTempFile(t, "words.txt", "cat|кот\ndog|пёс\n")

	store := &fakeStore{duplicate: 1}
	importer := NewImporter(store, zap.NewNop())

	report, err := importer.ImportFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Inserted)
	assert.Equal(t, 1, report.Duplicate)
}
