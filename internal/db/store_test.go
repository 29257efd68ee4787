package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRecordAndListFetches(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id1, err := store.RecordFetch(ctx, "https://one", 10)
	if err != nil {
		t.Fatalf("RecordFetch() error = %v", err)
	}
	id2, err := store.RecordFetch(ctx, "https://two", 20)
	if err != nil {
		t.Fatalf("RecordFetch() error = %v", err)
	}
	if id1 == id2 {
		t.Errorf("fetch IDs not unique: %d", id1)
	}

	fetches, err := store.ListRecentFetches(ctx, 10)
	if err != nil {
		t.Fatalf("ListRecentFetches() error = %v", err)
	}
	if len(fetches) != 2 {
		t.Fatalf("got %d fetches, want 2", len(fetches))
	}
	// Newest first
	if fetches[0].APIURL != "https://two" {
		t.Errorf("fetches[0].APIURL = %q, want https://two", fetches[0].APIURL)
	}
	if fetches[0].EventCount != 20 {
		t.Errorf("EventCount = %d, want 20", fetches[0].EventCount)
	}
	if fetches[0].FetchedAt.IsZero() {
		t.Error("FetchedAt is zero")
	}
}

func TestInsertAndListEvents(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	fetchID, err := store.RecordFetch(ctx, "https://api", 2)
	if err != nil {
		t.Fatalf("RecordFetch() error = %v", err)
	}

	older := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	newer := older.Add(time.Minute)

	recs := []*EventRecord{
		{
			FetchID:    fetchID,
			MessageID:  "old",
			State:      "FAILED",
			URL:        "https://hook/1",
			QueueName:  "orders",
			Method:     "POST",
			MaxRetries: 3,
			Header:     map[string][]string{"Content-Type": {"application/json"}},
			Body:       "eyJhIjoxfQ==",
			EventTime:  older,
		},
		{
			FetchID:   fetchID,
			MessageID: "new",
			State:     "ACTIVE",
			URL:       "https://hook/2",
			EventTime: newer,
		},
	}
	for _, rec := range recs {
		if _, err := store.InsertEvent(ctx, rec); err != nil {
			t.Fatalf("InsertEvent() error = %v", err)
		}
	}

	events, err := store.ListEventsByFetch(ctx, fetchID, 100, 0)
	if err != nil {
		t.Fatalf("ListEventsByFetch() error = %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}

	// Newest first
	if events[0].MessageID != "new" {
		t.Errorf("events[0].MessageID = %q, want new", events[0].MessageID)
	}

	full := events[1]
	if full.QueueName.String != "orders" || !full.QueueName.Valid {
		t.Errorf("QueueName = %+v, want orders", full.QueueName)
	}
	if full.MaxRetries.Int64 != 3 {
		t.Errorf("MaxRetries = %d, want 3", full.MaxRetries.Int64)
	}
	if !full.Headers.Valid {
		t.Error("Headers not persisted")
	}
	if full.Body.String != "eyJhIjoxfQ==" {
		t.Errorf("Body = %q", full.Body.String)
	}

	// Sparse row keeps optionals NULL
	sparse := events[0]
	if sparse.QueueName.Valid || sparse.Method.Valid || sparse.MaxRetries.Valid {
		t.Error("optional fields should be NULL when unset")
	}
}

func TestListEventsByFetchLimitOffset(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	fetchID, _ := store.RecordFetch(ctx, "https://api", 5)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		_, err := store.InsertEvent(ctx, &EventRecord{
			FetchID:   fetchID,
			MessageID: string(rune('a' + i)),
			State:     "ACTIVE",
			URL:       "https://hook",
			EventTime: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("InsertEvent() error = %v", err)
		}
	}

	page, err := store.ListEventsByFetch(ctx, fetchID, 2, 1)
	if err != nil {
		t.Fatalf("ListEventsByFetch() error = %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("got %d events, want 2", len(page))
	}
	// Descending order, skipping the newest ("e")
	if page[0].MessageID != "d" || page[1].MessageID != "c" {
		t.Errorf("page = [%q, %q], want [d, c]", page[0].MessageID, page[1].MessageID)
	}
}

func TestDeleteFetchCascades(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	fetchID, _ := store.RecordFetch(ctx, "https://api", 1)
	_, err := store.InsertEvent(ctx, &EventRecord{
		FetchID:   fetchID,
		MessageID: "m",
		State:     "ACTIVE",
		URL:       "https://hook",
		EventTime: time.Now(),
	})
	if err != nil {
		t.Fatalf("InsertEvent() error = %v", err)
	}

	if err := store.DeleteFetch(ctx, fetchID); err != nil {
		t.Fatalf("DeleteFetch() error = %v", err)
	}

	fetches, err := store.ListRecentFetches(ctx, 10)
	if err != nil {
		t.Fatalf("ListRecentFetches() error = %v", err)
	}
	if len(fetches) != 0 {
		t.Errorf("got %d fetches after delete, want 0", len(fetches))
	}

	events, err := store.ListEventsByFetch(ctx, fetchID, 10, 0)
	if err != nil {
		t.Fatalf("ListEventsByFetch() error = %v", err)
	}
	if len(events) != 0 {
		t.Errorf("got %d events after cascade delete, want 0", len(events))
	}
}
