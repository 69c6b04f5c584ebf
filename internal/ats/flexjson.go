package ats

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// flexString decodes a JSON string or number.
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*s = flexString(str)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*s = flexString(n.String())
	return nil
}

// flexLocation decodes a location given as a string, an object with a name,
// or a list of either. Lists are joined with ", ".
type flexLocation string

type namedLocation struct {
	Name     string `json:"name"`
	Location string `json:"location"`
}

func (l *flexLocation) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*l = flexLocation(s)
	case '{':
		var n namedLocation
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		*l = flexLocation(firstNonEmpty(n.Name, n.Location))
	case '[':
		var items []flexLocation
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		parts := make([]string, 0, len(items))
		for _, item := range items {
			if item != "" {
				parts = append(parts, string(item))
			}
		}
		*l = flexLocation(strings.Join(parts, ", "))
	}
	return nil
}

// flexTime decodes an RFC 3339 string or a Unix epoch in milliseconds and
// normalizes it to RFC 3339 UTC. Unparseable strings are kept verbatim.
type flexTime string

func (t *flexTime) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if parsed, err := time.Parse(time.RFC3339Nano, s); err == nil {
			s = parsed.UTC().Format(time.RFC3339)
		}
		*t = flexTime(s)
		return nil
	}
	var ms int64
	if err := json.Unmarshal(data, &ms); err != nil {
		return err
	}
	*t = flexTime(time.UnixMilli(ms).UTC().Format(time.RFC3339))
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
