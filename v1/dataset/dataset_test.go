package dataset

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGetter struct {
	objects map[string][]byte
}

func (f fakeGetter) GetObject(_ context.Context, key string) ([]byte, error) {
	data, ok := f.objects[key]
	if !ok {
		return nil, errors.New("not found")
	}
	return data, nil
}

func TestParse(t *testing.T) {
	docs, err := Parse([]byte(`[
		{"title": "a", "text": "first"},
		{"text": "untitled"},
		{"title": "empty"},
		{"title": "b", "text": "second", "extra": 1}
	]`))
	require.NoError(t, err)
	assert.Equal(t, []Document{
		{Title: "a", Text: "first"},
		{Title: "", Text: "untitled"},
		{Title: "b", Text: "second"},
	}, docs)
}

func TestParseErrors(t *testing.T) {
	_, err := Parse([]byte(`{"title": "not an array"}`))
	assert.Error(t, err)

	_, err = Parse([]byte(`[]`))
	assert.ErrorIs(t, err, ErrNoDocuments)
}

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docs.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"title":"t","text":"x"}]`), 0o600))

	docs, err := FileSource{Path: path}.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []Document{{Title: "t", Text: "x"}}, docs)

	_, err = FileSource{Path: filepath.Join(t.TempDir(), "missing.json")}.Load(context.Background())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestNewSource(t *testing.T) {
	getter := fakeGetter{objects: map[string][]byte{"k.json": []byte(`[{"title":"o","text":"obj"}]`)}}

	assert.IsType(t, BuiltinSource{}, NewSource(Config{}, nil))
	assert.IsType(t, FileSource{}, NewSource(Config{Path: "a.json"}, nil))
	assert.IsType(t, FileSource{}, NewSource(Config{Path: "a.json", ObjectKey: "k.json"}, nil))

	src := NewSource(Config{Path: "a.json", ObjectKey: "k.json"}, getter)
	docs, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "obj", docs[0].Text)
}

func TestBuiltin(t *testing.T) {
	docs, err := BuiltinSource{}.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 3)

	titles := []string{docs[0].Title, docs[1].Title, docs[2].Title}
	assert.Equal(t, []string{"computer science", "data science", "urban planning"}, titles)
	for _, d := range docs {
		assert.NotEmpty(t, d.Text)
	}
}
