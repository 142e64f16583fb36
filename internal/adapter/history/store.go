package history

import (
	"database/sql"
	"time"

	"github.com/berfenger/ld2450ble2mqtt/internal/core/domain"

	_ "modernc.org/sqlite"
)

const DefaultLimit = 100

type Store struct {
	*sql.DB
}

// NewStore opens (or creates) the readings database at path. ":memory:"
// keeps everything in memory.
func NewStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// sqlite allows one writer; a single connection also keeps ":memory:" shared
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS readings (
			reading_id INTEGER PRIMARY KEY AUTOINCREMENT,
			unique_id TEXT NOT NULL,
			sensor_key TEXT NOT NULL,
			value INTEGER NOT NULL,
			available INTEGER NOT NULL,
			ts_millis INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS readings_unique_id_ts ON readings (unique_id, ts_millis);
	`)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db}, nil
}

func (s *Store) Record(reading domain.HistoryReading) error {
	_, err := s.Exec("INSERT INTO readings (unique_id, sensor_key, value, available, ts_millis) VALUES (?, ?, ?, ?, ?)",
		reading.UniqueId, string(reading.Key), reading.Value, reading.Available, reading.Timestamp.UnixMilli())
	return err
}

// Prune deletes readings older than before and returns how many were removed.
func (s *Store) Prune(before time.Time) (int64, error) {
	res, err := s.Exec("DELETE FROM readings WHERE ts_millis < ?", before.UnixMilli())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Readings returns the latest readings of an entity, newest first.
func (s *Store) Readings(uniqueId string, limit int) ([]domain.HistoryReading, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	rows, err := s.Query(`SELECT unique_id, sensor_key, value, available, ts_millis FROM readings
		WHERE unique_id = ? ORDER BY ts_millis DESC, reading_id DESC LIMIT ?`, uniqueId, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	readings := []domain.HistoryReading{}
	for rows.Next() {
		var r domain.HistoryReading
		var key string
		var millis int64
		if err := rows.Scan(&r.UniqueId, &key, &r.Value, &r.Available, &millis); err != nil {
			return nil, err
		}
		r.Key = domain.SensorKey(key)
		r.Timestamp = time.UnixMilli(millis)
		readings = append(readings, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return readings, nil
}
