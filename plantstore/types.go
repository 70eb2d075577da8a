package plantstore

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Plant is the registry entry for one PV site.
type Plant struct {
	Alias       string `gorm:"primaryKey"`
	PlantUID    string
	InverterIDs string // JSON array of EMIG IDs
	WeatherID   string
	DCSizeKW    float64
}

// Inverters decodes the stored inverter ID list.
func (p Plant) Inverters() ([]string, error) {
	var ids []string
	if p.InverterIDs == "" {
		return nil, nil
	}
	err := json.Unmarshal([]byte(p.InverterIDs), &ids)
	return ids, err
}

// StoredReading is a raw half-hourly reading buffered to the local SQLite
// database, keyed by (plant, device, timestamp) so that re-imports are
// idempotent.
type StoredReading struct {
	PlantUID string    `gorm:"primaryKey"`
	DeviceID string    `gorm:"primaryKey"`
	Time     time.Time `gorm:"primaryKey"`
	POA      float64
	Power    float64
}

// StoredSummary is an analysis summary persisted locally until it has been
// uploaded, with a count of upload attempts.
type StoredSummary struct {
	ID                 uuid.UUID `gorm:"primaryKey"`
	Time               time.Time
	PlantUID           string
	Kind               string // "fouling" or "shading"
	Payload            string // JSON document of the summary
	UploadAttemptCount uint
}
