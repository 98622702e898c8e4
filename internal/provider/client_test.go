package provider

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestListRecords_Success(t *testing.T) {
	var gotPath, gotAuth, gotLimit string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotLimit = r.URL.Query().Get("limit")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"title": "Maison T3", "price": 850000},
			{"title": "Terrain 500m2", "prix": "1200000"}
		]`))
	}))
	defer server.Close()

	client := NewClient(server.Client(), newTestLogger(), server.URL, "api-token-xyz", 1000)

	records, err := client.ListRecords(context.Background(), "ds-001", 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0]["title"] != "Maison T3" {
		t.Errorf("unexpected first record: %v", records[0])
	}
	if gotPath != "/v2/datasets/ds-001/items" {
		t.Errorf("unexpected request path: %s", gotPath)
	}
	if gotAuth != "Bearer api-token-xyz" {
		t.Errorf("unexpected authorization header: %s", gotAuth)
	}
	if gotLimit != "50" {
		t.Errorf("unexpected limit parameter: %s", gotLimit)
	}
}

func TestListRecords_DefaultLimit(t *testing.T) {
	var gotLimit string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotLimit = r.URL.Query().Get("limit")
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := NewClient(server.Client(), newTestLogger(), server.URL, "tok", 1000)

	records, err := client.ListRecords(context.Background(), "ds-001", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected empty result, got %d records", len(records))
	}
	if gotLimit != "1000" {
		t.Errorf("expected default limit 1000, got %s", gotLimit)
	}
}

func TestListRecords_EmptyDatasetID(t *testing.T) {
	client := NewClient(http.DefaultClient, newTestLogger(), "http://example.test", "tok", 1000)

	if _, err := client.ListRecords(context.Background(), "", 10); err == nil {
		t.Error("expected error for empty dataset id")
	}
}

func TestListRecords_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.Client(), newTestLogger(), server.URL, "tok", 1000)

	if _, err := client.ListRecords(context.Background(), "ds-001", 10); err == nil {
		t.Error("expected error for 500 response")
	}
}

func TestListRecords_InvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{not json`))
	}))
	defer server.Close()

	client := NewClient(server.Client(), newTestLogger(), server.URL, "tok", 1000)

	if _, err := client.ListRecords(context.Background(), "ds-001", 10); err == nil {
		t.Error("expected error for malformed JSON")
	}
}

func TestDeleteDataset(t *testing.T) {
	var gotMethod, gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := NewClient(server.Client(), newTestLogger(), server.URL, "tok", 1000)

	if err := client.DeleteDataset(context.Background(), "ds-001"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotMethod != http.MethodDelete {
		t.Errorf("expected DELETE, got %s", gotMethod)
	}
	if gotPath != "/v2/datasets/ds-001" {
		t.Errorf("unexpected request path: %s", gotPath)
	}
}

func TestDeleteDataset_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	client := NewClient(server.Client(), newTestLogger(), server.URL, "tok", 1000)

	if err := client.DeleteDataset(context.Background(), "ds-001"); err == nil {
		t.Error("expected error for 403 response")
	}
}
