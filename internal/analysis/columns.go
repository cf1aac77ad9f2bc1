package analysis

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Columns is a map keyed by column name that remembers dataset column order
// and keeps it when encoded as a JSON object.
type Columns[V any] struct {
	names []string
	vals  map[string]V
}

// Set stores v under name, appending name on first use.
func (c *Columns[V]) Set(name string, v V) {
	if c.vals == nil {
		c.vals = make(map[string]V)
	}
	if _, ok := c.vals[name]; !ok {
		c.names = append(c.names, name)
	}
	c.vals[name] = v
}

// Get returns the value stored under name.
func (c Columns[V]) Get(name string) (V, bool) {
	v, ok := c.vals[name]
	return v, ok
}

// Names returns the keys in insertion order.
func (c Columns[V]) Names() []string { return append([]string(nil), c.names...) }

// Len returns the number of keys.
func (c Columns[V]) Len() int { return len(c.names) }

func (c Columns[V]) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range c.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := marshalNoEscape(name)
		if err != nil {
			return nil, err
		}
		v, err := marshalNoEscape(c.vals[name])
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", name, err)
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (c *Columns[V]) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("expected object, got %v", tok)
	}
	*c = Columns[V]{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		var v V
		if err := dec.Decode(&v); err != nil {
			return err
		}
		c.Set(tok.(string), v)
	}
	_, err = dec.Token()
	return err
}

// marshalNoEscape encodes v without HTML escaping so column names such as
// "<NA>" stay readable.
func marshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
