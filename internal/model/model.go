package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Status is a student's attendance state.
type Status string

const (
	Present Status = "Present"
	Absent  Status = "Absent"
)

// Opposite returns the status a toggle sends. Anything other than Present flips to Present.
func (s Status) Opposite() Status {
	if s == Present {
		return Absent
	}
	return Present
}

// Student is a participant record owned by the roster service.
type Student struct {
	ID        string   `json:"_id"`
	StudentNo string   `json:"studentNo"`
	Name      string   `json:"name"`
	RegNo     string   `json:"regNo"`
	TeamNo    string   `json:"teamNo"`
	TeamName  string   `json:"teamName"`
	Events    []string `json:"events"`
	Status    Status   `json:"status"`
}

// Member is the snapshot of a student embedded in a team.
type Member struct {
	StudentNo string `json:"studentNo"`
	Name      string `json:"name"`
	RegNo     string `json:"regNo"`
	Status    Status `json:"status"`
}

// Team is read-only here.
type Team struct {
	ID          string   `json:"_id"`
	TeamNo      string   `json:"teamNo"`
	TeamName    string   `json:"teamName"`
	CollegeName string   `json:"collegeName"`
	Dept        string   `json:"dept"`
	Members     []Member `json:"members"`
	Event       EventSet `json:"event"`
}

// EventSet is the team's event mapping. Values are kept opaque and only the
// keys are exposed, in the order the service sent them.
type EventSet struct {
	keys   []string
	values map[string]json.RawMessage
}

// Keys returns the event names in wire order.
func (e EventSet) Keys() []string {
	out := make([]string, len(e.keys))
	copy(out, e.keys)
	return out
}

// Len is the number of events.
func (e EventSet) Len() int { return len(e.keys) }

// Raw returns the undecoded value stored under name.
func (e EventSet) Raw(name string) (json.RawMessage, bool) {
	v, ok := e.values[name]
	return v, ok
}

// UnmarshalJSON accepts a JSON object (or null) and records its keys in order.
func (e *EventSet) UnmarshalJSON(data []byte) error {
	*e = EventSet{}
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("event: expected object, got %v", tok)
	}

	e.values = make(map[string]json.RawMessage)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return errors.New("event: non-string key")
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("event %q: %w", key, err)
		}
		if _, dup := e.values[key]; !dup {
			e.keys = append(e.keys, key)
		}
		e.values[key] = raw
	}
	_, err = dec.Token()
	return err
}

// MarshalJSON writes the mapping back in key order.
func (e EventSet) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range e.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		v := e.values[k]
		if len(v) == 0 {
			v = json.RawMessage("null")
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
