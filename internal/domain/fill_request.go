package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Pair is one ordered key/value entry of a fill payload.
type Pair struct {
	Key   string
	Value string
}

// Pairs keeps payload entries in the order they were written. It decodes from
// either a JSON object or an array of objects.
type Pairs []Pair

// UnmarshalJSON implements json.Unmarshaler.
func (p *Pairs) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	var out Pairs
	switch tok {
	case nil:
		*p = nil
		return nil
	case json.Delim('{'):
		if out, err = readObjectPairs(dec, out); err != nil {
			return err
		}
	case json.Delim('['):
		for dec.More() {
			t, err := dec.Token()
			if err != nil {
				return err
			}
			if t != json.Delim('{') {
				return fmt.Errorf("pairs: array items must be objects, got %v", t)
			}
			if out, err = readObjectPairs(dec, out); err != nil {
				return err
			}
		}
		if _, err := dec.Token(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("pairs: expected object or array, got %v", tok)
	}
	*p = out
	return nil
}

// readObjectPairs consumes an object whose opening brace was already read.
func readObjectPairs(dec *json.Decoder, out Pairs) (Pairs, error) {
	for dec.More() {
		kt, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := kt.(string)
		if !ok {
			return nil, fmt.Errorf("pairs: unexpected key %v", kt)
		}
		vt, err := dec.Token()
		if err != nil {
			return nil, err
		}
		val, err := scalarString(vt)
		if err != nil {
			return nil, fmt.Errorf("pairs: key %q: %w", key, err)
		}
		out = append(out, Pair{Key: key, Value: val})
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return out, nil
}

func scalarString(tok json.Token) (string, error) {
	switch v := tok.(type) {
	case string:
		return v, nil
	case json.Number:
		return v.String(), nil
	case bool:
		return strconv.FormatBool(v), nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("value must be a scalar, got %v", v)
	}
}

// MarshalJSON writes the pairs as a single object in order.
func (p Pairs) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, kv := range p {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, _ := json.Marshal(kv.Key)
		v, _ := json.Marshal(kv.Value)
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// TableFill is the data for one named table of the template.
type TableFill struct {
	TableName string  `json:"table_name"`
	Rows      []Pairs `json:"content"`
	Footer    Pairs   `json:"footer,omitempty"`
}

// UnmarshalJSON accepts "name" for "table_name" and "rows" for "content".
func (t *TableFill) UnmarshalJSON(data []byte) error {
	var raw struct {
		TableName string  `json:"table_name"`
		Name      string  `json:"name"`
		Content   []Pairs `json:"content"`
		Rows      []Pairs `json:"rows"`
		Footer    Pairs   `json:"footer"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	t.TableName = raw.TableName
	if t.TableName == "" {
		t.TableName = raw.Name
	}
	t.Rows = raw.Content
	if t.Rows == nil {
		t.Rows = raw.Rows
	}
	t.Footer = raw.Footer
	return nil
}

// FillRequest is everything a job writes into one template.
type FillRequest struct {
	Placeholders Pairs             `json:"writer_placeholders"`
	Variables    Pairs             `json:"writer_variables"`
	Images       map[string]string `json:"writer_images"`
	Tables       []TableFill       `json:"writer_tables"`
}

// ParseFillRequest decodes a report_data payload.
func ParseFillRequest(raw []byte) (*FillRequest, error) {
	var req FillRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, &ValidationError{Details: []string{err.Error()}}
	}
	return &req, nil
}
