package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/viberehab/backend/internal/models"
)

// nilIfEmpty returns nil if s is empty, otherwise returns s.
// Used for nullable database columns.
func nilIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// marshalSchedule encodes schedule slots for the nullable schedule_json column.
func marshalSchedule(slots []models.ScheduleSlot) (interface{}, error) {
	if len(slots) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(slots)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schedule: %w", err)
	}
	return string(data), nil
}

// scanGeneration scans a GenerationRecord from a single sql.Row.
func scanGeneration(row *sql.Row) (models.GenerationRecord, error) {
	var rec models.GenerationRecord
	var recType string
	var body, scheduleJSON sql.NullString
	err := row.Scan(&rec.ID, &recType, &body, &scheduleJSON, &rec.WordCount, &rec.TaskCount, &rec.CreatedAt)
	if err != nil {
		return rec, err
	}
	rec.Type = models.GenerationType(recType)
	rec.Text = body.String
	if scheduleJSON.Valid {
		if err := json.Unmarshal([]byte(scheduleJSON.String), &rec.Schedule); err != nil {
			return rec, fmt.Errorf("failed to unmarshal schedule for %s: %w", rec.ID, err)
		}
	}
	return rec, nil
}

// collectGenerations scans all GenerationRecords from sql.Rows.
func collectGenerations(rows *sql.Rows) ([]models.GenerationRecord, error) {
	var records []models.GenerationRecord
	for rows.Next() {
		var rec models.GenerationRecord
		var recType string
		var body, scheduleJSON sql.NullString
		if err := rows.Scan(&rec.ID, &recType, &body, &scheduleJSON, &rec.WordCount, &rec.TaskCount, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan generation row: %w", err)
		}
		rec.Type = models.GenerationType(recType)
		rec.Text = body.String
		if scheduleJSON.Valid {
			if err := json.Unmarshal([]byte(scheduleJSON.String), &rec.Schedule); err != nil {
				return nil, fmt.Errorf("failed to unmarshal schedule for %s: %w", rec.ID, err)
			}
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate generation rows: %w", err)
	}
	return records, nil
}
