package tui

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/epalmerini/queuescope/internal/api"
	"github.com/epalmerini/queuescope/internal/payload"
)

// Search queries support optional field prefixes:
//
//	state:active   match delivery state only
//	queue:orders   match queue name only
//	url:stripe     match destination URL only
//	id:01H8        match message ID only
//	body:alice     match decoded payload only
//	re:^orders\.   regex over queue name, URL and message ID
//
// Without a prefix the query matches any of those fields.

// parseSearchQuery splits an expression into field prefix and query text.
// An unknown prefix is treated as part of a plain query.
func parseSearchQuery(expr string) (field, query string) {
	before, after, found := strings.Cut(expr, ":")
	if !found {
		return "", expr
	}
	switch before {
	case "state", "queue", "url", "id", "body", "re":
		return before, after
	}
	return "", expr
}

// compileSearchRegex compiles a case-insensitive regex for re: queries.
func compileSearchRegex(query string) (*regexp.Regexp, error) {
	return regexp.Compile("(?i)" + query)
}

// matchesSearch reports whether ev matches a parsed query. query must
// already be lowercased unless field is "re", in which case re is used.
func matchesSearch(ev api.Event, field, query string, re *regexp.Regexp) bool {
	switch field {
	case "state":
		return strings.Contains(normalizeState(ev.State), query)
	case "queue":
		return strings.Contains(strings.ToLower(ev.QueueName), query)
	case "url":
		return strings.Contains(strings.ToLower(ev.URL), query)
	case "id":
		return strings.Contains(strings.ToLower(ev.MessageID), query)
	case "body":
		return bodyContains(ev, query)
	case "re":
		if re == nil {
			return false
		}
		return re.MatchString(ev.QueueName) || re.MatchString(ev.URL) || re.MatchString(ev.MessageID)
	}

	// No field restriction: match anywhere
	if strings.Contains(normalizeState(ev.State), query) ||
		strings.Contains(strings.ToLower(ev.QueueName), query) ||
		strings.Contains(strings.ToLower(ev.URL), query) ||
		strings.Contains(strings.ToLower(ev.MessageID), query) {
		return true
	}
	return bodyContains(ev, query)
}

// bodyContains matches against the decoded payload. Undecodable bodies are
// matched as their raw encoded string, consistent with what the detail pane
// shows.
func bodyContains(ev api.Event, query string) bool {
	if ev.Body == "" {
		return false
	}
	decoded := payload.Decode(ev.Body)
	if s, ok := decoded.(string); ok {
		return strings.Contains(strings.ToLower(s), query)
	}
	data, err := json.Marshal(decoded)
	if err != nil {
		return false
	}
	return strings.Contains(strings.ToLower(string(data)), query)
}
