package data

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "samples.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestSaveAndGetSamples(t *testing.T) {
	db := setupTestDB(t)

	probs := []float64{0.1, 0.5, 0.9}
	labels := []int{0, 1, 1}

	n, err := SaveSamples(db, "b1", probs, labels)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	gotProbs, gotLabels, err := GetSamples(db, "b1")
	require.NoError(t, err)
	assert.Equal(t, probs, gotProbs)
	assert.Equal(t, labels, gotLabels)
}

func TestSaveSamples_ReplacesBatch(t *testing.T) {
	db := setupTestDB(t)

	_, err := SaveSamples(db, "b1", []float64{0.1, 0.2, 0.3}, []int{0, 0, 0})
	require.NoError(t, err)

	_, err = SaveSamples(db, "b1", []float64{0.7}, []int{1})
	require.NoError(t, err)

	probs, labels, err := GetSamples(db, "b1")
	require.NoError(t, err)
	assert.Equal(t, []float64{0.7}, probs)
	assert.Equal(t, []int{1}, labels)
}

func TestSaveSamples_Validation(t *testing.T) {
	db := setupTestDB(t)

	_, err := SaveSamples(nil, "b1", []float64{0.1}, []int{0})
	assert.ErrorIs(t, err, errDBNotInitialized)

	_, err = SaveSamples(db, "", []float64{0.1}, []int{0})
	assert.Error(t, err)

	_, err = SaveSamples(db, "b1", []float64{0.1, 0.2}, []int{0})
	assert.Error(t, err)
}

func TestGetSamples_NotFound(t *testing.T) {
	db := setupTestDB(t)

	_, _, err := GetSamples(db, "nope")
	assert.Error(t, err)
}

func TestListBatches(t *testing.T) {
	db := setupTestDB(t)

	_, err := SaveSamples(db, "a", []float64{0.1, 0.2}, []int{0, 1})
	require.NoError(t, err)
	_, err = SaveSamples(db, "b", []float64{0.5}, []int{1})
	require.NoError(t, err)

	batches, err := ListBatches(db)
	require.NoError(t, err)
	require.Len(t, batches, 2)
	assert.Equal(t, "a", batches[0].Batch)
	assert.Equal(t, 2, batches[0].Samples)
	assert.Equal(t, 1, batches[0].Positives)
	assert.Equal(t, "b", batches[1].Batch)
}

func TestReadSampleCSV(t *testing.T) {
	path := writeTestCSV(t, "prob,label\n0.12,0\n0.87,1\n0.5,0\n")

	probs, labels, err := ReadSampleCSV(path)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.12, 0.87, 0.5}, probs)
	assert.Equal(t, []int{0, 1, 0}, labels)
}

func TestReadSampleCSV_NoHeader(t *testing.T) {
	path := writeTestCSV(t, "0.12,0\n0.87,1\n")

	probs, labels, err := ReadSampleCSV(path)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.12, 0.87}, probs)
	assert.Equal(t, []int{0, 1}, labels)
}

func TestReadSampleCSV_Invalid(t *testing.T) {
	for name, content := range map[string]string{
		"bad label":       "0.1,x\n",
		"bad prob":        "0.1,0\noops,1\n",
		"prob out of run": "1.5,0\n",
		"label not flag":  "0.1,2\n",
		"empty":           "",
		"header only":     "prob,label\n",
	} {
		path := writeTestCSV(t, content)
		_, _, err := ReadSampleCSV(path)
		assert.Error(t, err, name)
	}
}

func TestReadSampleCSV_MissingFile(t *testing.T) {
	_, _, err := ReadSampleCSV(filepath.Join(t.TempDir(), "nope.csv"))
	assert.Error(t, err)

	_, _, err = ReadSampleCSV("")
	assert.Error(t, err)
}

func TestReadProbCSV(t *testing.T) {
	path := writeTestCSV(t, "prob\n0.25\n0.75\n")

	probs, err := ReadProbCSV(path)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.25, 0.75}, probs)
}

func TestReadProbCSV_NoHeader(t *testing.T) {
	path := writeTestCSV(t, "0.25\n0.75\n")

	probs, err := ReadProbCSV(path)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.25, 0.75}, probs)
}
