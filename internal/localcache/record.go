package localcache

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Identified is anything the reconciler can key by id.
type Identified interface {
	Identity() string
}

// Record is one cached entity. Fields holds every attribute except the id, in whatever
// shape the writer produced: drafts snapshot their own shape, the remote returns its own.
type Record struct {
	ID     string
	Fields map[string]any
}

// NewRecord copies fields so later writes by the caller do not leak into the record.
func NewRecord(id string, fields map[string]any) Record {
	copied := make(map[string]any, len(fields))
	for k, v := range fields {
		if k == "id" {
			continue
		}
		copied[k] = v
	}
	return Record{ID: id, Fields: copied}
}

func (r Record) Identity() string {
	return r.ID
}

// String returns a field rendered as a string, or "" when absent.
func (r Record) String(field string) string {
	v, ok := r.Fields[field]
	if !ok || v == nil {
		return ""
	}
	switch typed := v.(type) {
	case string:
		return typed
	case json.Number:
		return typed.String()
	default:
		return fmt.Sprint(typed)
	}
}

// MarshalJSON flattens the record into a single object. Numeric ids are written as
// JSON numbers so timestamp ids round-trip the way they were first stored.
func (r Record) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Fields)+1)
	for k, v := range r.Fields {
		out[k] = v
	}
	if isCanonicalInt(r.ID) {
		out["id"] = json.Number(r.ID)
	} else if r.ID != "" {
		out["id"] = r.ID
	}
	return json.Marshal(out)
}

// UnmarshalJSON accepts ids given as JSON numbers or strings.
func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	if raw == nil {
		return fmt.Errorf("record must be a JSON object")
	}

	var id string
	switch v := raw["id"].(type) {
	case nil:
	case json.Number:
		id = v.String()
	case string:
		id = v
	default:
		return fmt.Errorf("record id has unsupported type %T", v)
	}
	delete(raw, "id")

	r.ID = id
	r.Fields = raw
	return nil
}

func isCanonicalInt(value string) bool {
	n, err := strconv.ParseInt(value, 10, 64)
	return err == nil && strconv.FormatInt(n, 10) == value
}

// Merge returns remote in order followed by every local entry whose id is not among
// the remote ids, in local order.
func Merge[T Identified](remote, local []T) []T {
	seen := make(map[string]struct{}, len(remote))
	merged := make([]T, 0, len(remote)+len(local))
	for _, item := range remote {
		seen[item.Identity()] = struct{}{}
		merged = append(merged, item)
	}
	for _, item := range local {
		if _, dup := seen[item.Identity()]; dup {
			continue
		}
		merged = append(merged, item)
	}
	return merged
}

// RemoveByID drops every entry with the given id, keeping the order of the rest.
func RemoveByID[T Identified](items []T, id string) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if item.Identity() == id {
			continue
		}
		out = append(out, item)
	}
	return out
}

// DecodeList parses a persisted sequence.
func DecodeList(data []byte) ([]Record, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []Record{}, nil
	}
	var records []Record
	if err := json.Unmarshal(trimmed, &records); err != nil {
		return nil, err
	}
	if records == nil {
		records = []Record{}
	}
	return records, nil
}

// EncodeList serializes a sequence; nil encodes as an empty array.
func EncodeList(records []Record) ([]byte, error) {
	if records == nil {
		records = []Record{}
	}
	return json.Marshal(records)
}
