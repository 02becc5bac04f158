package data

import (
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

const (
	insertScoreSQL = `INSERT INTO score (model, run, pos, prob, score, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	deleteRunSQL = `DELETE FROM score WHERE model = ? AND run = ?`

	selectScoreStatsSQL = `SELECT
			COUNT(DISTINCT run) AS runs,
			COUNT(*) AS scored,
			COALESCE(MIN(score), 0) AS min_score,
			COALESCE(MAX(score), 0) AS max_score,
			COALESCE(AVG(score), 0) AS mean_score
		FROM score
		WHERE model = ?
	`

	selectRunScoresSQL = `SELECT prob, score FROM score
		WHERE model = ? AND run = ?
		ORDER BY pos
	`
)

// ScoreStats aggregates the persisted score runs of one model.
type ScoreStats struct {
	Model string  `json:"model" yaml:"model" db:"-"`
	Runs  int     `json:"runs" yaml:"runs" db:"runs"`
	Count int     `json:"scored" yaml:"scored" db:"scored"`
	Min   int     `json:"min_score" yaml:"min_score" db:"min_score"`
	Max   int     `json:"max_score" yaml:"max_score" db:"max_score"`
	Mean  float64 `json:"mean_score" yaml:"mean_score" db:"mean_score"`
}

// ScoredProb is one persisted probability/score pair.
type ScoredProb struct {
	Prob  float64 `json:"prob" yaml:"prob" db:"prob"`
	Score int     `json:"score" yaml:"score" db:"score"`
}

// SaveScores records one scoring run, replacing a previous run of the
// same name. Returns the number of rows stored.
func SaveScores(db *sqlx.DB, model, run string, probs []float64, scores []int) (int, error) {
	if db == nil {
		return 0, errDBNotInitialized
	}
	if model == "" || run == "" {
		return 0, errors.New("model and run names required")
	}
	if len(probs) != len(scores) {
		return 0, errors.Errorf("probs (%d) and scores (%d) must have equal length", len(probs), len(scores))
	}

	tx, err := db.Beginx()
	if err != nil {
		return 0, errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	if _, err = tx.Exec(db.Rebind(deleteRunSQL), model, run); err != nil {
		return 0, errors.Wrapf(err, "failed to clear run: %s", run)
	}

	stmt, err := tx.Preparex(db.Rebind(insertScoreSQL))
	if err != nil {
		return 0, errors.Wrap(err, "failed to prepare score insert")
	}
	defer stmt.Close()

	created := time.Now().UTC().Format(time.RFC3339)
	for i := range probs {
		if _, err = stmt.Exec(model, run, i, probs[i], scores[i], created); err != nil {
			return 0, errors.Wrapf(err, "failed to insert score %d", i)
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, errors.Wrap(err, "failed to commit scores")
	}

	return len(probs), nil
}

// GetScoreStats aggregates all persisted runs of a model.
func GetScoreStats(db *sqlx.DB, model string) (*ScoreStats, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}

	var stats ScoreStats
	if err := db.Get(&stats, db.Rebind(selectScoreStatsSQL), model); err != nil {
		return nil, errors.Wrapf(err, "failed to read score stats for model: %s", model)
	}
	stats.Model = model
	return &stats, nil
}

// GetRunScores loads one persisted run in scoring order.
func GetRunScores(db *sqlx.DB, model, run string) ([]*ScoredProb, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}

	list := make([]*ScoredProb, 0)
	if err := db.Select(&list, db.Rebind(selectRunScoresSQL), model, run); err != nil {
		return nil, errors.Wrapf(err, "failed to load run: %s", run)
	}
	return list, nil
}
