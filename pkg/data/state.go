package data

import "github.com/jmoiron/sqlx"

var stateQueries = map[string]string{
	"samples":  "SELECT COUNT(*) FROM sample",
	"batches":  "SELECT COUNT(DISTINCT batch) FROM sample",
	"models":   "SELECT COUNT(*) FROM model",
	"bins":     "SELECT COUNT(*) FROM model_bin",
	"segments": "SELECT COUNT(*) FROM model_segment",
	"scores":   "SELECT COUNT(*) FROM score",
	"runs":     "SELECT COUNT(DISTINCT run) FROM score",
}

// GetDataState returns row counts for each logical table.
func GetDataState(db *sqlx.DB) (map[string]int64, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}

	state := make(map[string]int64, len(stateQueries))
	for k, q := range stateQueries {
		var count int64
		if err := db.Get(&count, q); err != nil {
			return nil, err
		}
		state[k] = count
	}
	return state, nil
}
