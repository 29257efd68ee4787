// Package payload decodes base64-encoded JSON event bodies for display.
package payload

import (
	"encoding/base64"
	"encoding/json"
)

// Decode attempts to base64-decode body and JSON-parse the result.
// If either step fails, the original string is returned unchanged:
// decoding is best-effort and purely for display.
func Decode(body string) any {
	raw, err := base64.StdEncoding.DecodeString(body)
	if err != nil {
		return body
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return body
	}
	return v
}

// Raw returns the decoded bytes of a base64 body, or nil if it is not
// valid base64. Used by the raw (hex) detail view and the proto fallback.
func Raw(body string) []byte {
	raw, err := base64.StdEncoding.DecodeString(body)
	if err != nil {
		return nil
	}
	return raw
}
