package proto

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/jhump/protoreflect/desc"
	"github.com/jhump/protoreflect/desc/protoparse"
	"github.com/jhump/protoreflect/dynamic"
)

// Decoder resolves protobuf payloads using message types parsed from a
// directory of .proto files. The dashboard cannot know a payload's type in
// advance, so decoding tries every known type and prefers the one whose
// name matches a hint derived from the event's queue name.
type Decoder struct {
	messageTypes map[string]*desc.MessageDescriptor
	allMessages  []*desc.MessageDescriptor
	loadNotes    []string
}

// NewDecoder creates a decoder from a directory of .proto files.
func NewDecoder(protoPath string) (*Decoder, error) {
	var protoFiles []string
	err := filepath.Walk(protoPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && strings.HasSuffix(path, ".proto") {
			relPath, err := filepath.Rel(protoPath, path)
			if err != nil {
				relPath = path
			}
			protoFiles = append(protoFiles, relPath)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk proto path: %w", err)
	}

	if len(protoFiles) == 0 {
		return nil, fmt.Errorf("no .proto files found in %s", protoPath)
	}

	parser := protoparse.Parser{
		ImportPaths:           []string{protoPath},
		IncludeSourceCodeInfo: true,
	}

	d := &Decoder{
		messageTypes: make(map[string]*desc.MessageDescriptor),
	}
	d.loadNotes = append(d.loadNotes, fmt.Sprintf("Found %d proto files", len(protoFiles)))

	// Parse what we can; a broken file shouldn't take down the rest.
	for _, pf := range protoFiles {
		fds, err := parser.ParseFiles(pf)
		if err != nil {
			d.loadNotes = append(d.loadNotes, fmt.Sprintf("%s: %v", pf, err))
			continue
		}
		for _, fd := range fds {
			for _, md := range fd.GetMessageTypes() {
				d.messageTypes[md.GetName()] = md
				d.messageTypes[md.GetFullyQualifiedName()] = md
				d.allMessages = append(d.allMessages, md)
			}
		}
	}

	return d, nil
}

// LoadNotes returns human-readable notes collected while loading proto files.
func (d *Decoder) LoadNotes() []string {
	return d.loadNotes
}

// Decode attempts to decode protobuf bytes using any known message type.
func (d *Decoder) Decode(data []byte) (map[string]any, error) {
	return d.DecodeWithQueueHint(data, "")
}

// DecodeWithQueueHint decodes using the event's queue name to pick the most
// likely message type. Every known type is tried; types are scored by how
// many fields unmarshal, with a strong boost for a name matching the hint.
func (d *Decoder) DecodeWithQueueHint(data []byte, queueName string) (map[string]any, error) {
	if d == nil || len(d.allMessages) == 0 {
		return nil, fmt.Errorf("no message types loaded")
	}

	typeHint := queueNameToTypeHint(queueName)

	var bestMatch *dynamic.Message
	var bestMatchName string
	bestScore := 0

	for _, md := range d.allMessages {
		msg := dynamic.NewMessage(md)
		if err := msg.Unmarshal(data); err != nil {
			continue
		}

		score := countPopulatedFields(msg)

		name := md.GetName()
		if typeHint != "" && strings.EqualFold(name, typeHint) {
			score += 1000
		}

		if score > bestScore {
			bestScore = score
			bestMatch = msg
			bestMatchName = name
		}
	}

	if bestMatch == nil {
		return nil, fmt.Errorf("could not decode with any known message type")
	}

	result := messageToMap(bestMatch)
	result["__type"] = bestMatchName
	return result, nil
}

// DecodeAs decodes using a specific message type name.
func (d *Decoder) DecodeAs(data []byte, typeName string) (map[string]any, error) {
	md, ok := d.messageTypes[typeName]
	if !ok {
		return nil, fmt.Errorf("unknown message type: %s", typeName)
	}

	msg := dynamic.NewMessage(md)
	if err := msg.Unmarshal(data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal: %w", err)
	}

	result := messageToMap(msg)
	result["__type"] = typeName
	return result, nil
}

// ListTypes returns all known message type names.
func (d *Decoder) ListTypes() []string {
	var types []string
	for name := range d.messageTypes {
		types = append(types, name)
	}
	return types
}

// queueNameToTypeHint converts a queue name's last segment to a message
// type name, e.g. "billing.invoice_paid" -> "InvoicePaid".
func queueNameToTypeHint(queueName string) string {
	parts := strings.Split(queueName, ".")
	last := parts[len(parts)-1]
	if last == "" {
		return ""
	}
	return pascalCase(last)
}

func pascalCase(s string) string {
	var sb strings.Builder
	upper := true
	for _, r := range s {
		switch {
		case r == '_' || r == '-' || r == ' ':
			upper = true
		case upper:
			sb.WriteRune(unicode.ToUpper(r))
			upper = false
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

func countPopulatedFields(msg *dynamic.Message) int {
	count := 0
	for _, fd := range msg.GetKnownFields() {
		if msg.HasField(fd) {
			count++
		}
	}
	return count
}

func messageToMap(msg *dynamic.Message) map[string]any {
	result := make(map[string]any)
	for _, fd := range msg.GetKnownFields() {
		if !msg.HasField(fd) {
			continue
		}
		result[fd.GetName()] = convertValue(msg.GetField(fd))
	}
	return result
}

func convertValue(val any) any {
	switch v := val.(type) {
	case *dynamic.Message:
		return messageToMap(v)
	case []byte:
		if printableASCII(v) {
			return string(v)
		}
		return fmt.Sprintf("0x%x", v)
	case []any:
		result := make([]any, len(v))
		for i, item := range v {
			result[i] = convertValue(item)
		}
		return result
	default:
		return v
	}
}

func printableASCII(data []byte) bool {
	for _, b := range data {
		if b < 32 && b != '\n' && b != '\r' && b != '\t' {
			return false
		}
	}
	return true
}
