// Package dataplatform handles the upload of analysis summaries to Supabase.
package dataplatform

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/phall2020-ui/inverter-data-juggle/plantstore"

	supa "github.com/nedpals/supabase-go"
)

// summariesTable is the Supabase table that receives analysis summaries.
const summariesTable = "analysis_summaries"

// DataPlatform streams fouling and shading summaries to Supabase.
// Put new summaries onto the Summaries channel, they will be buffered on disk
// in a SQLite database before being uploaded.
type DataPlatform struct {
	Summaries chan plantstore.StoredSummary

	store          *plantstore.Store
	supaClient     *supa.Client
	uploadInterval time.Duration
}

func New(supabaseURL, supabaseKey, schema string, uploadInterval time.Duration, store *plantstore.Store) (*DataPlatform, error) {

	supaClient := supa.CreateClient(supabaseURL, supabaseKey)

	supaClient.DB.AddHeader("Accept-Profile", schema)
	supaClient.DB.AddHeader("Content-Profile", schema)

	return &DataPlatform{
		Summaries:      make(chan plantstore.StoredSummary, 25), // a small buffer to allow SQLite to catch up in case the disk is slow
		store:          store,
		supaClient:     supaClient,
		uploadInterval: uploadInterval,
	}, nil
}

// Run loops forever waiting for summaries, when they are available they are
// persisted and periodically uploaded.
func (d *DataPlatform) Run(ctx context.Context) {

	uploadTicker := time.NewTicker(d.uploadInterval)
	defer uploadTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case summary := <-d.Summaries:
			err := d.store.AddSummary(summary)
			if err != nil {
				slog.Error("failed to persist summary", "error", err)
			}
			slog.Debug("Stored summary", "kind", summary.Kind, "plant", summary.PlantUID)

		case <-uploadTicker.C:
			d.attemptUpload()
		}
	}
}

// attemptUpload attempts to upload buffered summaries from the store into Supabase.
func (d *DataPlatform) attemptUpload() {

	// uploadChunkLimit defines how many summaries we can upload in one supabase HTTP request
	uploadChunkLimit := 100

	// first attempt to upload any new summaries that have not been seen before
	freshSummaries, err := d.store.GetSummaries(uploadChunkLimit, true)
	if err != nil {
		slog.Error("failed to query fresh summaries", "error", err)
	} else if len(freshSummaries) > 0 {
		err = d.handleSummaries(freshSummaries)
		if err != nil {
			slog.Error("failed to handle fresh summaries", "error", err)
		}
	}

	// then attempt to upload any old summaries that have already failed an upload at least once
	oldSummaries, err := d.store.GetSummaries(uploadChunkLimit, false)
	if err != nil {
		slog.Error("failed to query old summaries", "error", err)
	} else if len(oldSummaries) > 0 {
		err = d.handleSummaries(oldSummaries)
		if err != nil {
			slog.Error("failed to handle old summaries", "error", err)
		}
	}
}

// handleSummaries attempts to upload the given summaries. If successful, it deletes them from the
// database, if unsuccessful, it increments the 'upload attempt count' column and leaves them in the
// database for another time.
func (d *DataPlatform) handleSummaries(summaries []plantstore.StoredSummary) error {

	rows := convertSummaries(summaries)
	uploadErr := d.supaClient.DB.From(summariesTable).Insert(rows).Execute(nil)
	if uploadErr != nil {
		uploadErr := fmt.Errorf("upload failed: %w", uploadErr)
		errInc := d.store.IncrementUploadAttemptCount(summaries)
		if errInc != nil {
			return fmt.Errorf("%w: increment upload attempt count: %w", uploadErr, errInc)
		}
		return uploadErr
	}

	deleteErr := d.store.DeleteSummaries(summaries)
	if deleteErr != nil {
		return fmt.Errorf("delete summaries: %w", deleteErr)
	}

	slog.Info("Uploaded summaries", "db_table", summariesTable, "db_records", len(summaries))

	return nil
}
