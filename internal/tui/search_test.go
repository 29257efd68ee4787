package tui

import (
	"testing"

	"github.com/epalmerini/queuescope/internal/api"
)

func TestParseSearchQuery(t *testing.T) {
	tests := []struct {
		expr      string
		wantField string
		wantQuery string
	}{
		{"plain text", "", "plain text"},
		{"state:active", "state", "active"},
		{"queue:orders", "queue", "orders"},
		{"url:stripe.com", "url", "stripe.com"},
		{"id:01H8", "id", "01H8"},
		{"body:alice", "body", "alice"},
		{"re:^orders\\.", "re", "^orders\\."},
		{"unknown:prefix", "", "unknown:prefix"},
		{"", "", ""},
	}

	for _, tt := range tests {
		field, query := parseSearchQuery(tt.expr)
		if field != tt.wantField || query != tt.wantQuery {
			t.Errorf("parseSearchQuery(%q) = (%q, %q), want (%q, %q)",
				tt.expr, field, query, tt.wantField, tt.wantQuery)
		}
	}
}

func TestMatchesSearchFields(t *testing.T) {
	ev := api.Event{
		MessageID: "01H8XYZ",
		State:     "ACTIVE",
		URL:       "https://hooks.stripe.com/endpoint",
		QueueName: "billing.invoice_paid",
		Body:      "eyJjdXN0b21lciI6ImFsaWNlIn0=", // {"customer":"alice"}
	}

	tests := []struct {
		name  string
		field string
		query string
		want  bool
	}{
		{"state match", "state", "active", true},
		{"state no match", "state", "failed", false},
		{"queue match", "queue", "invoice", true},
		{"url match", "url", "stripe", true},
		{"id match", "id", "01h8", true},
		{"body match decoded", "body", "alice", true},
		{"body no match", "body", "bob", false},
		{"unrestricted matches url", "", "stripe", true},
		{"unrestricted matches body", "", "alice", true},
		{"unrestricted no match", "", "zzz", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := matchesSearch(ev, tt.field, tt.query, nil); got != tt.want {
				t.Errorf("matchesSearch(field=%q, query=%q) = %v, want %v",
					tt.field, tt.query, got, tt.want)
			}
		})
	}
}

func TestMatchesSearchRegex(t *testing.T) {
	ev := api.Event{
		MessageID: "m1",
		QueueName: "orders.created",
		URL:       "https://example.com",
	}

	re, err := compileSearchRegex("^orders\\.")
	if err != nil {
		t.Fatal(err)
	}
	if !matchesSearch(ev, "re", "", re) {
		t.Error("regex should match queue name")
	}

	re2, _ := compileSearchRegex("^billing\\.")
	if matchesSearch(ev, "re", "", re2) {
		t.Error("regex should not match")
	}

	if matchesSearch(ev, "re", "", nil) {
		t.Error("nil regex must never match")
	}
}

func TestCompileSearchRegexCaseInsensitive(t *testing.T) {
	re, err := compileSearchRegex("ORDERS")
	if err != nil {
		t.Fatal(err)
	}
	if !re.MatchString("queue.orders.created") {
		t.Error("compiled regex should be case-insensitive")
	}
}

func TestBodyContainsUndecodableBody(t *testing.T) {
	// Non-base64 bodies match as their raw string
	ev := api.Event{Body: "plain text payload"}
	if !bodyContains(ev, "plain text") {
		t.Error("raw body should be searchable")
	}
	if bodyContains(api.Event{}, "anything") {
		t.Error("empty body never matches")
	}
}
