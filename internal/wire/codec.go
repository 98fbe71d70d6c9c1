package wire

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ErrDecode wraps every failure to decode device-supplied content
// (bad base64, bad JSON, value shapes the SWAN wire format does not
// allow). Callers must treat it as a protocol violation.
var ErrDecode = errors.New("wire: undecodable content")

// ErrEmptyConfig is returned by Encode for a configuration with no
// fields; the device-side parser cannot handle an empty object.
var ErrEmptyConfig = errors.New("wire: empty configuration")

// Field is one key/value pair of a SWAN configuration. Value is either
// string or int64; the wire format knows no other scalar types.
type Field struct {
	Key   string
	Value any
}

// Config is a flat SWAN configuration. Field order is preserved: the
// device parses its config sequentially, so Encode must emit keys in
// exactly the order they were set.
type Config struct {
	fields []Field
	index  map[string]int
}

func NewConfig() *Config {
	return &Config{index: make(map[string]int)}
}

// SetString sets a string value, keeping the key's original position
// if it already exists.
func (c *Config) SetString(key, value string) { c.set(key, value) }

// SetInt sets an integer value, keeping the key's original position if
// it already exists.
func (c *Config) SetInt(key string, value int64) { c.set(key, value) }

func (c *Config) set(key string, value any) {
	if i, ok := c.index[key]; ok {
		c.fields[i].Value = value
		return
	}
	c.index[key] = len(c.fields)
	c.fields = append(c.fields, Field{Key: key, Value: value})
}

// Get returns the value for key (string or int64).
func (c *Config) Get(key string) (any, bool) {
	i, ok := c.index[key]
	if !ok {
		return nil, false
	}
	return c.fields[i].Value, true
}

func (c *Config) Len() int { return len(c.fields) }

// Fields returns the pairs in insertion order. The returned slice is
// shared; callers must not mutate it.
func (c *Config) Fields() []Field { return c.fields }

// Encode serializes the configuration in the framing the SWAN parser
// expects: numbers unquoted, strings double-quoted without escaping,
// keys in insertion order. Not general JSON serialization.
func (c *Config) Encode() (string, error) {
	if c.Len() == 0 {
		return "", ErrEmptyConfig
	}
	return c.encode(), nil
}

func (c *Config) encode() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, f := range c.fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(f.Key)
		b.WriteString(`":`)
		switch v := f.Value.(type) {
		case int64:
			b.WriteString(strconv.FormatInt(v, 10))
		case string:
			b.WriteByte('"')
			b.WriteString(v)
			b.WriteByte('"')
		}
	}
	b.WriteByte('}')
	return b.String()
}

// MarshalJSON emits a properly escaped JSON object, keys in insertion
// order; used when a config is persisted as a document column. Unlike
// Encode it escapes string values and allows the empty object, so any
// value DecodeContent accepted survives storage.
func (c *Config) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte('{')
	for i, f := range c.fields {
		if i > 0 {
			b.WriteByte(',')
		}
		k, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		b.Write(k)
		b.WriteByte(':')
		switch v := f.Value.(type) {
		case int64:
			b.WriteString(strconv.FormatInt(v, 10))
		case string:
			s, err := json.Marshal(v)
			if err != nil {
				return nil, err
			}
			b.Write(s)
		}
	}
	b.WriteByte('}')
	return b.Bytes(), nil
}

// UnmarshalJSON parses a flat JSON object preserving key order.
func (c *Config) UnmarshalJSON(data []byte) error {
	parsed, err := parseFlat(data)
	if err != nil {
		return err
	}
	*c = *parsed
	return nil
}

// DecodeContent decodes a device response payload: a base64-encoded
// UTF-8 JSON object of strings and integers.
func DecodeContent(content string) (*Config, error) {
	raw, err := base64.StdEncoding.DecodeString(content)
	if err != nil {
		return nil, fmt.Errorf("%w: base64: %v", ErrDecode, err)
	}
	cfg, err := parseFlat(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return cfg, nil
}

// ParseConfig parses a flat JSON object (for example a stored config
// column) into a Config, key order preserved.
func ParseConfig(data []byte) (*Config, error) {
	return parseFlat(data)
}

// parseFlat walks the JSON token stream so that key order survives;
// encoding/json maps would randomize it.
func parseFlat(data []byte) (*Config, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("json: %v", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("json: expected object, got %v", tok)
	}

	cfg := NewConfig()
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("json: %v", err)
		}
		key := keyTok.(string)

		valTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("json: %v", err)
		}
		switch v := valTok.(type) {
		case string:
			cfg.SetString(key, v)
		case json.Number:
			n, err := strconv.ParseInt(v.String(), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("non-integer value for %q: %s", key, v)
			}
			cfg.SetInt(key, n)
		case json.Delim:
			return nil, fmt.Errorf("nested value for %q", key)
		default:
			return nil, fmt.Errorf("unsupported value for %q: %v", key, v)
		}
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("json: %v", err)
	}
	if tok, err := dec.Token(); err != io.EOF {
		if err != nil {
			return nil, fmt.Errorf("json: %v", err)
		}
		return nil, fmt.Errorf("trailing data after object: %v", tok)
	}
	return cfg, nil
}
