package juggle

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestPlantDevices(t *testing.T) {

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/plant/ERS:00001" {
			t.Errorf("Got path %q, expected /plant/ERS:00001", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "token secret" {
			t.Errorf("Got authorization %q, expected token auth", auth)
		}
		w.Write([]byte(`{"plantUid":"ERS:00001","meters":[
			{"emigId":"INV1","type":"INVERTER"},
			{"emigId":"WETH1","type":"WEATHER"},
			{"emigId":"INV2","type":"INVERTER"}
		]}`))
	}))
	defer server.Close()

	client := New(http.Client{}, server.URL, "secret")

	inverters, err := client.Inverters(context.Background(), "ERS:00001")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(inverters) != 2 || inverters[0] != "INV1" || inverters[1] != "INV2" {
		t.Errorf("Got %v, expected [INV1 INV2]", inverters)
	}
}

func TestReadingsChunking(t *testing.T) {

	var requests []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests = append(requests, r.URL.Query().Get("start")+"-"+r.URL.Query().Get("end"))
		w.Write([]byte(`{"readings":[{"timestamp":"2025-01-01T00:00:00Z","emigId":"INV1","activePower":5}]}`))
	}))
	defer server.Close()

	client := New(http.Client{}, server.URL, "secret")

	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 200) // forces two chunks under the 104-day cap

	readings, err := client.Readings(context.Background(), "INV1", start, end, 30*time.Minute)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(requests) != 2 {
		t.Fatalf("Got %d requests, expected the range to be split into 2 chunks: %v", len(requests), requests)
	}
	if len(readings) != 2 {
		t.Errorf("Got %d readings, expected the chunks to be concatenated", len(readings))
	}
}

func TestReadingsErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	client := New(http.Client{}, server.URL, "bad-key")
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	_, err := client.Readings(context.Background(), "INV1", start, start.AddDate(0, 0, 1), 30*time.Minute)
	if err == nil {
		t.Errorf("Expected an error for a non-200 response")
	}
}
