// Package plantstore persists plant metadata, buffered raw readings and
// not-yet-uploaded analysis summaries to the local file system (SQLite).
package plantstore

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/phall2020-ui/inverter-data-juggle/telemetry"
)

type Store struct {
	db *gorm.DB
}

func New(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// Migrate the schema
	err = db.AutoMigrate(&Plant{}, &StoredReading{}, &StoredSummary{})
	if err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	return &Store{db: db}, nil
}

// SavePlant inserts or updates a registry entry.
func (s *Store) SavePlant(alias, plantUID string, inverterIDs []string, weatherID string, dcSizeKW float64) error {
	encoded, err := json.Marshal(inverterIDs)
	if err != nil {
		return fmt.Errorf("encode inverter ids: %w", err)
	}
	plant := Plant{
		Alias:       alias,
		PlantUID:    plantUID,
		InverterIDs: string(encoded),
		WeatherID:   weatherID,
		DCSizeKW:    dcSizeKW,
	}
	result := s.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&plant)
	return result.Error
}

// LoadPlant returns the registry entry for the given alias, or nil when the
// alias is unknown.
func (s *Store) LoadPlant(alias string) (*Plant, error) {
	var plant Plant
	result := s.db.Where("alias = ?", alias).Limit(1).Find(&plant)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return &plant, nil
}

// Plants lists every registered plant, ordered by alias.
func (s *Store) Plants() ([]Plant, error) {
	var plants []Plant
	result := s.db.Order("alias asc").Find(&plants)
	return plants, result.Error
}

// AddReadings buffers raw readings for the given plant. Existing rows with the
// same (plant, device, timestamp) key are overwritten, so re-imports are safe.
func (s *Store) AddReadings(plantUID string, readings []telemetry.Reading) error {
	if len(readings) == 0 {
		return nil
	}

	stored := make([]StoredReading, 0, len(readings))
	for _, r := range readings {
		stored = append(stored, StoredReading{
			PlantUID: plantUID,
			DeviceID: r.DeviceID,
			Time:     r.Time,
			POA:      sanitiseForStorage(r.POA),
			Power:    sanitiseForStorage(r.Power),
		})
	}
	result := s.db.Clauses(clause.OnConflict{UpdateAll: true}).CreateInBatches(stored, 500)
	return result.Error
}

// GetReadings returns the buffered readings for one plant and device over
// [start, end], ordered by time. Missing measurements are stored as zero,
// which the analysis engines already filter out via their irradiance and
// power thresholds.
func (s *Store) GetReadings(plantUID, deviceID string, start, end time.Time) ([]telemetry.Reading, error) {
	var stored []StoredReading
	result := s.db.
		Where("plant_uid = ? AND device_id = ? AND time >= ? AND time <= ?", plantUID, deviceID, start, end).
		Order("time asc").
		Find(&stored)
	if result.Error != nil {
		return nil, result.Error
	}

	readings := make([]telemetry.Reading, 0, len(stored))
	for _, row := range stored {
		reading := telemetry.NewReading(row.Time, row.DeviceID)
		reading.POA = row.POA
		reading.Power = row.Power
		readings = append(readings, reading)
	}
	return readings, nil
}

// AddSummary buffers an analysis summary for upload.
func (s *Store) AddSummary(summary StoredSummary) error {
	result := s.db.Create(&summary)
	return result.Error
}

// GetSummaries returns up to `limit` buffered summaries. With fresh=true only
// summaries that have never failed an upload are returned, otherwise only ones
// that have.
func (s *Store) GetSummaries(limit int, fresh bool) ([]StoredSummary, error) {
	var summaries []StoredSummary

	query := s.db.Limit(limit).Order("upload_attempt_count asc, time desc")
	if fresh {
		query = query.Where("upload_attempt_count = ?", 0)
	} else {
		query = query.Where("upload_attempt_count > ?", 0)
	}
	result := query.Find(&summaries)
	if result.Error != nil {
		return nil, result.Error
	}
	return summaries, nil
}

// IncrementUploadAttemptCount bumps the attempt counter on the given
// summaries, leaving them in the database for another time.
func (s *Store) IncrementUploadAttemptCount(summaries []StoredSummary) error {
	ids := summaryIDs(summaries)
	result := s.db.Model(&StoredSummary{}).
		Where("id IN ?", ids).
		UpdateColumn("upload_attempt_count", gorm.Expr("upload_attempt_count + ?", 1))
	return result.Error
}

// DeleteSummaries removes summaries that have been uploaded.
func (s *Store) DeleteSummaries(summaries []StoredSummary) error {
	result := s.db.Delete(&StoredSummary{}, "id IN ?", summaryIDs(summaries))
	return result.Error
}

func summaryIDs(summaries []StoredSummary) []string {
	ids := make([]string, 0, len(summaries))
	for _, summary := range summaries {
		ids = append(ids, summary.ID.String())
	}
	return ids
}

// sanitiseForStorage maps NaN measurements to zero for storage; SQLite
// round-trips NaN poorly across drivers.
func sanitiseForStorage(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}
