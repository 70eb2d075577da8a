package dataplatform

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/phall2020-ui/inverter-data-juggle/fouling"
	"github.com/phall2020-ui/inverter-data-juggle/plantstore"
	"github.com/phall2020-ui/inverter-data-juggle/shading"
)

// supabaseSummary holds the json encoding schema for an analysis summary in supabase.
type supabaseSummary struct {
	ID       uuid.UUID       `json:"id"`
	Time     time.Time       `json:"time"`
	PlantUID string          `json:"plant_uid"`
	Kind     string          `json:"kind"`
	Payload  json.RawMessage `json:"payload"`
}

// foulingPayload is the json document stored for one fouling analysis run.
// NaN is not representable in json, so undefined metrics are encoded as null.
type foulingPayload struct {
	DeviceID            string   `json:"device_id"`
	FoulingIndex        *float64 `json:"fouling_index"`
	FoulingLevel        string   `json:"fouling_level"`
	EnergyLossKWhPerDay *float64 `json:"energy_loss_kwh_per_day"`
	CleaningEvents      int      `json:"cleaning_events"`
}

// shadingPayload is the json document stored for one shading analysis run,
// one entry per inverter.
type shadingPayload struct {
	Devices []shadingDevicePayload `json:"devices"`
}

type shadingDevicePayload struct {
	DeviceID       string   `json:"device_id"`
	MedianRatio    *float64 `json:"median_ratio"`
	Classification string   `json:"classification"`
}

// NewFoulingSummary packages one inverter's fouling result into a storable summary.
func NewFoulingSummary(plantUID, deviceID string, at time.Time, result fouling.Result) (plantstore.StoredSummary, error) {
	payload := foulingPayload{
		DeviceID:            deviceID,
		FoulingIndex:        nullableFloat(result.FoulingIndex),
		FoulingLevel:        string(result.FoulingLevel),
		EnergyLossKWhPerDay: nullableFloat(result.EnergyLossKWhPerDay),
		CleaningEvents:      result.CleaningEventsDetected,
	}
	return newSummary(plantUID, at, "fouling", payload)
}

// NewShadingSummary packages a shading result into a storable summary.
func NewShadingSummary(plantUID string, at time.Time, result shading.Result) (plantstore.StoredSummary, error) {
	payload := shadingPayload{}
	for _, s := range result.Summary {
		payload.Devices = append(payload.Devices, shadingDevicePayload{
			DeviceID:       s.DeviceID,
			MedianRatio:    nullableFloat(s.MedianRatio),
			Classification: string(s.Classification),
		})
	}
	return newSummary(plantUID, at, "shading", payload)
}

func newSummary(plantUID string, at time.Time, kind string, payload any) (plantstore.StoredSummary, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return plantstore.StoredSummary{}, fmt.Errorf("encode %s payload: %w", kind, err)
	}
	return plantstore.StoredSummary{
		ID:       uuid.New(),
		Time:     at,
		PlantUID: plantUID,
		Kind:     kind,
		Payload:  string(encoded),
	}, nil
}

func convertSummaries(summaries []plantstore.StoredSummary) []supabaseSummary {
	var rows []supabaseSummary
	for _, summary := range summaries {
		rows = append(rows, supabaseSummary{
			ID:       summary.ID,
			Time:     summary.Time,
			PlantUID: summary.PlantUID,
			Kind:     summary.Kind,
			Payload:  json.RawMessage(summary.Payload),
		})
	}
	return rows
}

func nullableFloat(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}
