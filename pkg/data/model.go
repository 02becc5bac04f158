package data

import (
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/croswell/sctl/pkg/scorecard"
)

const (
	insertModelSQL = `INSERT INTO model
			(name, created_at, n_bins, standard_score, standard_odds, pdo, bad_flag)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	insertModelBinSQL = `INSERT INTO model_bin
			(model, bin_index, prob_l, prob_r, mean_prob, hits, good_hits,
			 bad_hits, odds, odds_defined, adjusted_odds, score)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	insertModelSegmentSQL = `INSERT INTO model_segment
			(model, seg_index, prob_l, prob_r, slope, intercept)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	selectModelSQL = `SELECT n_bins, standard_score, standard_odds, pdo, bad_flag
		FROM model
		WHERE name = ?
	`

	selectModelBinsSQL = `SELECT bin_index, prob_l, prob_r, mean_prob, hits,
			good_hits, bad_hits, odds, odds_defined, adjusted_odds, score
		FROM model_bin
		WHERE model = ?
		ORDER BY bin_index
	`

	selectModelSegmentsSQL = `SELECT seg_index, prob_l, prob_r, slope, intercept
		FROM model_segment
		WHERE model = ?
		ORDER BY seg_index
	`

	selectModelsSQL = `SELECT m.name, m.created_at, m.n_bins, m.pdo,
			COALESCE(SUM(b.hits), 0) AS samples
		FROM model m
		LEFT JOIN model_bin b ON b.model = m.name
		GROUP BY m.name, m.created_at, m.n_bins, m.pdo
		ORDER BY m.name
	`

	deleteModelSQL        = `DELETE FROM model WHERE name = ?`
	deleteModelBinSQL     = `DELETE FROM model_bin WHERE model = ?`
	deleteModelSegmentSQL = `DELETE FROM model_segment WHERE model = ?`
)

// ModelInfo summarizes one stored model.
type ModelInfo struct {
	Name    string `json:"name" yaml:"name" db:"name"`
	Created string `json:"created_at" yaml:"created_at" db:"created_at"`
	NBins   int    `json:"n_bins" yaml:"n_bins" db:"n_bins"`
	PDO     int    `json:"pdo" yaml:"pdo" db:"pdo"`
	Samples int    `json:"samples" yaml:"samples" db:"samples"`
}

// SaveModel stores a fitted model under the given name, replacing any
// previous model of that name.
func SaveModel(db *sqlx.DB, name string, m *scorecard.Model) error {
	if db == nil {
		return errDBNotInitialized
	}
	if name == "" {
		return errors.New("model name required")
	}
	if m == nil || len(m.Segments) == 0 {
		return errors.New("model not fitted")
	}

	tx, err := db.Beginx()
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	for _, q := range []string{deleteModelSegmentSQL, deleteModelBinSQL, deleteModelSQL} {
		if _, err = tx.Exec(db.Rebind(q), name); err != nil {
			return errors.Wrapf(err, "failed to replace model: %s", name)
		}
	}

	cfg := m.Config
	created := time.Now().UTC().Format(time.RFC3339)
	_, err = tx.Exec(db.Rebind(insertModelSQL),
		name, created, cfg.NBins, cfg.StandardScore, cfg.StandardOdds, cfg.PDO, cfg.BadFlag)
	if err != nil {
		return errors.Wrapf(err, "failed to insert model: %s", name)
	}

	binStmt, err := tx.Preparex(db.Rebind(insertModelBinSQL))
	if err != nil {
		return errors.Wrap(err, "failed to prepare bin insert")
	}
	defer binStmt.Close()

	for _, b := range m.Bins {
		_, err = binStmt.Exec(name, b.Index, b.ProbL, b.ProbR, b.MeanProb,
			b.Hits, b.GoodHits, b.BadHits, b.OddsValue, b.OddsDefined,
			b.AdjustedOdds, b.Score)
		if err != nil {
			return errors.Wrapf(err, "failed to insert bin %d", b.Index)
		}
	}

	segStmt, err := tx.Preparex(db.Rebind(insertModelSegmentSQL))
	if err != nil {
		return errors.Wrap(err, "failed to prepare segment insert")
	}
	defer segStmt.Close()

	for _, s := range m.Segments {
		_, err = segStmt.Exec(name, s.Index, s.ProbL, s.ProbR, s.Slope, s.Intercept)
		if err != nil {
			return errors.Wrapf(err, "failed to insert segment %d", s.Index)
		}
	}

	return errors.Wrap(tx.Commit(), "failed to commit model")
}

// GetModel loads a stored model by name.
func GetModel(db *sqlx.DB, name string) (*scorecard.Model, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}

	var cfg scorecard.Config
	if err := db.Get(&cfg, db.Rebind(selectModelSQL), name); err != nil {
		return nil, errors.Wrapf(err, "model not found: %s", name)
	}

	var bins []scorecard.Bin
	if err := db.Select(&bins, db.Rebind(selectModelBinsSQL), name); err != nil {
		return nil, errors.Wrapf(err, "failed to load bins for model: %s", name)
	}

	var segments []scorecard.Segment
	if err := db.Select(&segments, db.Rebind(selectModelSegmentsSQL), name); err != nil {
		return nil, errors.Wrapf(err, "failed to load segments for model: %s", name)
	}

	if len(bins) != cfg.NBins || len(segments) != cfg.NBins+1 {
		return nil, errors.Errorf("model %s is incomplete: %d bins, %d segments", name, len(bins), len(segments))
	}

	return &scorecard.Model{Config: cfg, Bins: bins, Segments: segments}, nil
}

// ListModels lists stored models with fit sample counts.
func ListModels(db *sqlx.DB) ([]*ModelInfo, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}

	list := make([]*ModelInfo, 0)
	if err := db.Select(&list, selectModelsSQL); err != nil {
		return nil, errors.Wrap(err, "failed to list models")
	}
	return list, nil
}

// DeleteModel removes a stored model and its bins and segments.
func DeleteModel(db *sqlx.DB, name string) error {
	if db == nil {
		return errDBNotInitialized
	}

	tx, err := db.Beginx()
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	for _, q := range []string{deleteModelSegmentSQL, deleteModelBinSQL, deleteModelSQL} {
		if _, err = tx.Exec(db.Rebind(q), name); err != nil {
			return errors.Wrapf(err, "failed to delete model: %s", name)
		}
	}

	return errors.Wrap(tx.Commit(), "failed to commit delete")
}
