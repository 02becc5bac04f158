package data

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

const (
	insertSampleSQL = `INSERT INTO sample (batch, pos, prob, label)
		VALUES (?, ?, ?, ?)
	`

	deleteSamplesSQL = `DELETE FROM sample WHERE batch = ?`

	selectSamplesSQL = `SELECT prob, label FROM sample
		WHERE batch = ?
		ORDER BY pos
	`

	selectBatchesSQL = `SELECT batch, COUNT(*) AS samples,
			SUM(label) AS positives
		FROM sample
		GROUP BY batch
		ORDER BY batch
	`
)

// BatchInfo summarizes one stored sample batch.
type BatchInfo struct {
	Batch     string `json:"batch" yaml:"batch" db:"batch"`
	Samples   int    `json:"samples" yaml:"samples" db:"samples"`
	Positives int    `json:"positives" yaml:"positives" db:"positives"`
}

// SaveSamples replaces the named batch with the given probabilities and
// labels. Returns the number of samples stored.
func SaveSamples(db *sqlx.DB, batch string, probs []float64, labels []int) (int, error) {
	if db == nil {
		return 0, errDBNotInitialized
	}
	if batch == "" {
		return 0, errors.New("batch name required")
	}
	if len(probs) != len(labels) {
		return 0, errors.Errorf("probs (%d) and labels (%d) must have equal length", len(probs), len(labels))
	}

	tx, err := db.Beginx()
	if err != nil {
		return 0, errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	if _, err = tx.Exec(db.Rebind(deleteSamplesSQL), batch); err != nil {
		return 0, errors.Wrapf(err, "failed to clear batch: %s", batch)
	}

	stmt, err := tx.Preparex(db.Rebind(insertSampleSQL))
	if err != nil {
		return 0, errors.Wrap(err, "failed to prepare sample insert")
	}
	defer stmt.Close()

	for i := range probs {
		if _, err = stmt.Exec(batch, i, probs[i], labels[i]); err != nil {
			return 0, errors.Wrapf(err, "failed to insert sample %d", i)
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, errors.Wrap(err, "failed to commit samples")
	}

	return len(probs), nil
}

// GetSamples loads a batch in insertion order.
func GetSamples(db *sqlx.DB, batch string) ([]float64, []int, error) {
	if db == nil {
		return nil, nil, errDBNotInitialized
	}

	rows, err := db.Query(db.Rebind(selectSamplesSQL), batch)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "failed to query batch: %s", batch)
	}
	defer rows.Close()

	var probs []float64
	var labels []int
	for rows.Next() {
		var p float64
		var l int
		if err := rows.Scan(&p, &l); err != nil {
			return nil, nil, errors.Wrap(err, "failed to scan sample")
		}
		probs = append(probs, p)
		labels = append(labels, l)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, errors.Wrap(err, "failed to read samples")
	}
	if len(probs) == 0 {
		return nil, nil, errors.Errorf("batch not found: %s", batch)
	}

	return probs, labels, nil
}

// ListBatches lists stored batches with sample counts.
func ListBatches(db *sqlx.DB) ([]*BatchInfo, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}

	list := make([]*BatchInfo, 0)
	if err := db.Select(&list, selectBatchesSQL); err != nil {
		return nil, errors.Wrap(err, "failed to list batches")
	}
	return list, nil
}

// ReadSampleCSV reads probability/label pairs from a CSV file with two
// columns (prob, label). A single header row is tolerated.
func ReadSampleCSV(path string) ([]float64, []int, error) {
	if path == "" {
		return nil, nil, errors.New("path not set")
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "error opening file: %s", path)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 2
	r.TrimLeadingSpace = true

	var probs []float64
	var labels []int
	line := 0
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, errors.Wrapf(err, "error reading file: %s", path)
		}
		line++

		p, perr := strconv.ParseFloat(rec[0], 64)
		if perr != nil {
			if line == 1 {
				continue // header
			}
			return nil, nil, errors.Errorf("line %d: invalid probability: %s", line, rec[0])
		}
		l, lerr := strconv.Atoi(rec[1])
		if lerr != nil {
			return nil, nil, errors.Errorf("line %d: invalid label: %s", line, rec[1])
		}
		if p < 0 || p >= 1 {
			return nil, nil, errors.Errorf("line %d: probability out of [0,1): %f", line, p)
		}
		if l != 0 && l != 1 {
			return nil, nil, errors.Errorf("line %d: label must be 0 or 1: %d", line, l)
		}

		probs = append(probs, p)
		labels = append(labels, l)
	}

	if len(probs) == 0 {
		return nil, nil, errors.Errorf("no samples in file: %s", path)
	}

	return probs, labels, nil
}

// ReadProbCSV reads a single probability column, for scoring input.
// A single header row is tolerated.
func ReadProbCSV(path string) ([]float64, error) {
	if path == "" {
		return nil, errors.New("path not set")
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "error opening file: %s", path)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 1
	r.TrimLeadingSpace = true

	var probs []float64
	line := 0
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "error reading file: %s", path)
		}
		line++

		p, perr := strconv.ParseFloat(rec[0], 64)
		if perr != nil {
			if line == 1 {
				continue
			}
			return nil, errors.Errorf("line %d: invalid probability: %s", line, rec[0])
		}
		probs = append(probs, p)
	}

	if len(probs) == 0 {
		return nil, errors.Errorf("no probabilities in file: %s", path)
	}

	return probs, nil
}
