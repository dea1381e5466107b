package vectordb

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMetric(t *testing.T) {
	cases := map[string]Metric{
		"COSINE":    MetricCosine,
		"cosine":    MetricCosine,
		"IP":        MetricDot,
		"dot":       MetricDot,
		"L2":        MetricEuclid,
		"euclid":    MetricEuclid,
		"manhattan": MetricManhattan,
	}
	for in, want := range cases {
		got, err := ParseMetric(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseMetric("HAMMING")
	assert.True(t, errors.Is(err, ErrUnknownMetric))
}

func TestHigherIsBetter(t *testing.T) {
	assert.True(t, MetricCosine.HigherIsBetter())
	assert.True(t, MetricDot.HigherIsBetter())
	assert.False(t, MetricEuclid.HigherIsBetter())
	assert.False(t, MetricManhattan.HigherIsBetter())
}

func TestParseIndexType(t *testing.T) {
	got, err := ParseIndexType("hnsw")
	require.NoError(t, err)
	assert.Equal(t, IndexHNSW, got)

	got, err = ParseIndexType("FLAT")
	require.NoError(t, err)
	assert.Equal(t, IndexFlat, got)

	_, err = ParseIndexType("IVF_FLAT")
	assert.ErrorIs(t, err, ErrUnknownIndexType)
}

func TestScoreRange(t *testing.T) {
	r := ScoreRange{Lower: 0.5, Upper: 0.999}
	require.NoError(t, r.Validate())

	assert.True(t, r.Contains(0.5))
	assert.True(t, r.Contains(0.999))
	assert.True(t, r.Contains(0.7))
	assert.False(t, r.Contains(0.49))
	assert.False(t, r.Contains(1.0))

	assert.ErrorIs(t, ScoreRange{Lower: 0.9, Upper: 0.1}.Validate(), ErrInvalidScoreRange)
}

func TestCollectionConfigValidate(t *testing.T) {
	valid := CollectionConfig{Name: "test", VectorSize: 1024, Metric: MetricCosine, IndexType: IndexHNSW}
	require.NoError(t, valid.Validate())

	noName := valid
	noName.Name = ""
	assert.ErrorIs(t, noName.Validate(), ErrEmptyCollectionName)

	noSize := valid
	noSize.VectorSize = 0
	assert.ErrorIs(t, noSize.Validate(), ErrDimensionMismatch)

	badMetric := valid
	badMetric.Metric = "JACCARD"
	assert.ErrorIs(t, badMetric.Validate(), ErrUnknownMetric)

	badIndex := valid
	badIndex.IndexType = "IVF_FLAT"
	assert.ErrorIs(t, badIndex.Validate(), ErrUnknownIndexType)
}

func TestNewFilterSetAccumulatesClauses(t *testing.T) {
	fs := NewFilterSet(
		Must(NewMatch("title", "Urban Planning")),
		Must(NewText("text", "spatial")),
		MustNot(NewIsEmpty("text")),
	)

	require.NotNil(t, fs.Must)
	assert.Len(t, fs.Must.Conditions, 2)
	require.NotNil(t, fs.MustNot)
	assert.Len(t, fs.MustNot.Conditions, 1)
	assert.Nil(t, fs.Should)
	assert.False(t, fs.IsEmpty())
}

func TestFilterSetIsEmpty(t *testing.T) {
	var nilSet *FilterSet
	assert.True(t, nilSet.IsEmpty())
	assert.True(t, NewFilterSet().IsEmpty())
	assert.True(t, (&FilterSet{Must: &ConditionSet{}}).IsEmpty())
}

func TestPartitionFilter(t *testing.T) {
	assert.Nil(t, PartitionFilter())

	single, ok := PartitionFilter("vdb").(*MatchCondition)
	require.True(t, ok)
	assert.Equal(t, PartitionField, single.Field)
	assert.Equal(t, "vdb", single.Value)

	many, ok := PartitionFilter("vdb", DefaultPartition).(*MatchAnyCondition)
	require.True(t, ok)
	assert.Equal(t, []any{"vdb", DefaultPartition}, many.Values)
}

func TestValidateID(t *testing.T) {
	for _, id := range []string{"0", "7", "18446744073709551615", "6ba7b810-9dad-11d1-80b4-00c04fd430c8"} {
		assert.NoError(t, ValidateID(id), id)
	}
	for _, id := range []string{"", "007", "-1", "+7", "18446744073709551616", "not-a-uuid"} {
		assert.ErrorIs(t, ValidateID(id), ErrInvalidID, id)
	}
}
