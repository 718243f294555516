package services

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KmSasikumar/EcommProductRecommender2/pkg/models"
)

func TestParseWeightedCSV_SkipsHeader(t *testing.T) {
	input := "user_id,item_id,interaction_score\nu1,i1,1.0\nu2,i2,2.5\n"
	rows, err := ParseWeightedCSV(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, []models.WeightedInteraction{
		{UserID: "u1", ItemID: "i1", Weight: 1.0},
		{UserID: "u2", ItemID: "i2", Weight: 2.5},
	}, rows)
}

func TestParseWeightedCSV_NoHeader(t *testing.T) {
	rows, err := ParseWeightedCSV(strings.NewReader("u1,i1,1.0\n"))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "u1", rows[0].UserID)
}

func TestParseWeightedCSV_BadWeight(t *testing.T) {
	input := "u1,i1,1.0\nu2,i2,heavy\n"
	_, err := ParseWeightedCSV(strings.NewReader(input))
	assert.ErrorContains(t, err, "invalid interaction score")
}

func TestParseWeightedCSV_WrongColumnCount(t *testing.T) {
	_, err := ParseWeightedCSV(strings.NewReader("u1,i1\n"))
	assert.Error(t, err)
}

func TestBaselineLoader_MissingFile(t *testing.T) {
	loader := NewBaselineLoader(filepath.Join(t.TempDir(), "nope.csv"), testLogger())
	assert.Nil(t, loader.Load())
}

func TestBaselineLoader_LoadsRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "baseline.csv")
	csv := "user_id,item_id,interaction_score\nu1,i1,2.5\n"
	require.NoError(t, os.WriteFile(path, []byte(csv), 0o644))

	loader := NewBaselineLoader(path, testLogger())
	rows := loader.Load()
	require.Len(t, rows, 1)
	assert.Equal(t, 2.5, rows[0].Weight)
}

func TestBaselineLoader_UnparseableFileIsIgnored(t *testing.T) {
	path := filepath.Join(t.TempDir(), "baseline.csv")
	require.NoError(t, os.WriteFile(path, []byte("u1,i1\nu2\n"), 0o644))

	loader := NewBaselineLoader(path, testLogger())
	assert.Nil(t, loader.Load())
}
