package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/bashkirian/haulstats/pkg/models"
)

// SQLiteStorage хранит отчёты в SQLite, сам отчёт лежит в колонке JSON
type SQLiteStorage struct {
	db *sql.DB
}

func NewSQLiteStorage(dsn string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// у in-memory базы каждое соединение своё
	if dsn == ":memory:" || strings.Contains(dsn, "mode=memory") {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	s := &SQLiteStorage{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

func (s *SQLiteStorage) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS reports (
			report_id TEXT PRIMARY KEY,
			source TEXT NOT NULL,
			simulation_duration REAL NOT NULL,
			truck_count INTEGER NOT NULL,
			station_count INTEGER NOT NULL,
			created_at INTEGER NOT NULL,
			payload TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_reports_created ON reports(created_at)`,
	}
	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStorage) SaveReport(ctx context.Context, report *models.Report) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO reports (report_id, source, simulation_duration, truck_count, station_count, created_at, payload)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		report.ID, report.Source, report.SimulationDuration, len(report.Trucks), len(report.Stations),
		report.CreatedAt.UnixNano(), string(payload))
	if err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) GetReport(ctx context.Context, id string) (*models.Report, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM reports WHERE report_id = ?`, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query report: %w", err)
	}

	var report models.Report
	if err := json.Unmarshal([]byte(payload), &report); err != nil {
		return nil, fmt.Errorf("decode report %s: %w", id, err)
	}
	return &report, nil
}

func (s *SQLiteStorage) ListReports(ctx context.Context) ([]models.ReportHeader, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT report_id, source, simulation_duration, truck_count, station_count, created_at
		 FROM reports ORDER BY created_at DESC, report_id ASC`)
	if err != nil {
		return nil, fmt.Errorf("query reports: %w", err)
	}
	defer rows.Close()

	result := make([]models.ReportHeader, 0)
	for rows.Next() {
		var (
			h         models.ReportHeader
			createdAt int64
		)
		if err := rows.Scan(&h.ID, &h.Source, &h.SimulationDuration, &h.TruckCount, &h.StationCount, &createdAt); err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		h.CreatedAt = time.Unix(0, createdAt).UTC()
		result = append(result, h)
	}
	return result, rows.Err()
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
