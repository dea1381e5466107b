package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yang0369/rag/v1/vectordb"
)

func TestDecode(t *testing.T) {
	rec, err := Decode([]byte(`{"partition":"vdb","title":"urban planning","text":"zoning"}`))
	require.NoError(t, err)
	assert.Equal(t, Record{Partition: "vdb", Title: "urban planning", Text: "zoning"}, rec)
}

func TestDecodeRejectsEmptyText(t *testing.T) {
	_, err := Decode([]byte(`{"partition":"vdb","title":"x"}`))
	assert.ErrorIs(t, err, ErrEmptyText)
}

func TestDecodeMalformed(t *testing.T) {
	_, err := Decode([]byte(`{not json`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ingest: decode record")
}

func TestEncodeOmitsEmptyID(t *testing.T) {
	body, err := Encode(Record{Partition: "vdb", Title: "t", Text: "x"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"partition":"vdb","title":"t","text":"x"}`, string(body))

	body, err = Encode(Record{ID: "42", Text: "x"})
	require.NoError(t, err)
	assert.Contains(t, string(body), `"id":"42"`)
}

func TestDecodeValidatesID(t *testing.T) {
	rec, err := Decode([]byte(`{"id":"42","partition":"vdb","text":"hello"}`))
	require.NoError(t, err)
	assert.Equal(t, "42", rec.ID)

	_, err = Decode([]byte(`{"id":"6ba7b810-9dad-11d1-80b4-00c04fd430c8","text":"hello"}`))
	require.NoError(t, err)

	for _, id := range []string{"not-a-uuid", "007", "-3"} {
		_, err = Decode([]byte(`{"id":"` + id + `","partition":"vdb","text":"hello"}`))
		assert.ErrorIs(t, err, vectordb.ErrInvalidID, id)
	}
}
