package wire

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"testing"
)

func TestEncodeExactFraming(t *testing.T) {
	c := NewConfig()
	c.SetString("device_tag", "X")
	c.SetInt("collect_mode", 8)

	got, err := c.Encode()
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	want := `{"device_tag":"X","collect_mode":8}`
	if got != want {
		t.Errorf("Encode() = %s, want %s", got, want)
	}
}

func TestEncodeKeyOrder(t *testing.T) {
	c := NewConfig()
	c.SetInt("zz", 1)
	c.SetString("aa", "v")
	c.SetInt("mm", -3)
	// overwriting keeps the original position
	c.SetInt("zz", 2)

	got, err := c.Encode()
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	want := `{"zz":2,"aa":"v","mm":-3}`
	if got != want {
		t.Errorf("Encode() = %s, want %s", got, want)
	}
}

func TestEncodeEmpty(t *testing.T) {
	if _, err := NewConfig().Encode(); !errors.Is(err, ErrEmptyConfig) {
		t.Errorf("Encode() on empty config: err = %v, want ErrEmptyConfig", err)
	}
}

func TestEncodeIsValidJSON(t *testing.T) {
	c := NewConfig()
	c.SetString("upload_server", "weptech-iot.de/swan2")
	c.SetInt("collect_mode", 8)
	c.SetInt("collect_rssi_min", -108)

	out, err := c.Encode()
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(out), &m); err != nil {
		t.Fatalf("Encode() output is not valid JSON: %v", err)
	}
	if m["upload_server"] != "weptech-iot.de/swan2" {
		t.Errorf("upload_server = %v", m["upload_server"])
	}
	if m["collect_mode"] != float64(8) {
		t.Errorf("collect_mode = %v", m["collect_mode"])
	}
}

func TestDecodeContentRoundTrip(t *testing.T) {
	in := `{"device_tag":"tag-1","collect_mode":8,"nb1_bands":"3,8,20","collect_rssi_min":-108}`
	cfg, err := DecodeContent(base64.StdEncoding.EncodeToString([]byte(in)))
	if err != nil {
		t.Fatalf("DecodeContent() error = %v", err)
	}
	out, err := cfg.Encode()
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if out != in {
		t.Errorf("round trip = %s, want %s", out, in)
	}
}

func TestDecodeContentEmptyObject(t *testing.T) {
	cfg, err := DecodeContent(base64.StdEncoding.EncodeToString([]byte("{}")))
	if err != nil {
		t.Fatalf("DecodeContent() error = %v", err)
	}
	if cfg.Len() != 0 {
		t.Errorf("Len() = %d, want 0", cfg.Len())
	}
}

func TestDecodeContentErrors(t *testing.T) {
	b64 := func(s string) string { return base64.StdEncoding.EncodeToString([]byte(s)) }
	tests := []struct {
		name    string
		content string
	}{
		{"bad base64", "!!not-base64!!"},
		{"bad json", b64(`{"a":`)},
		{"not an object", b64(`[1,2]`)},
		{"nested object", b64(`{"a":{"b":1}}`)},
		{"nested array", b64(`{"a":[1]}`)},
		{"float value", b64(`{"a":1.5}`)},
		{"bool value", b64(`{"a":true}`)},
		{"null value", b64(`{"a":null}`)},
		{"trailing garbage", b64(`{"a":1}junk`)},
		{"second object", b64(`{"a":1}{"b":2}`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeContent(tt.content); !errors.Is(err, ErrDecode) {
				t.Errorf("DecodeContent(%q) err = %v, want ErrDecode", tt.content, err)
			}
		})
	}
}

func TestConfigJSONMarshalling(t *testing.T) {
	c := NewConfig()
	c.SetString("device_tag", "X")
	c.SetInt("collect_mode", 8)

	raw, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	var back Config
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if back.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", back.Len())
	}
	if v, _ := back.Get("collect_mode"); v != int64(8) {
		t.Errorf("collect_mode = %v (%T), want int64 8", v, v)
	}
	if v, _ := back.Get("device_tag"); v != "X" {
		t.Errorf("device_tag = %v", v)
	}
}

func TestConfigJSONMarshallingEscapedValues(t *testing.T) {
	b64 := func(s string) string { return base64.StdEncoding.EncodeToString([]byte(s)) }
	// values a device may legally report: quotes, backslashes, newlines
	c, err := DecodeContent(b64(`{"device_tag":"a\"b","sync_rx_meter":"back\\slash","note":"line1\nline2"}`))
	if err != nil {
		t.Fatalf("DecodeContent() error = %v", err)
	}

	raw, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	var back Config
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if v, _ := back.Get("device_tag"); v != `a"b` {
		t.Errorf("device_tag = %q", v)
	}
	if v, _ := back.Get("sync_rx_meter"); v != `back\slash` {
		t.Errorf("sync_rx_meter = %q", v)
	}
	if v, _ := back.Get("note"); v != "line1\nline2" {
		t.Errorf("note = %q", v)
	}
}

func TestFactoryDefaults(t *testing.T) {
	c := FactoryDefaults("123111111113")
	if v, _ := c.Get("imei"); v != "123111111113" {
		t.Errorf("imei = %v", v)
	}
	if v, _ := c.Get("upload_server"); v != "weptech-iot.de/swan2" {
		t.Errorf("upload_server = %v", v)
	}
	if v, _ := c.Get("upload_format_spec_1"); v != int64(4294967295) {
		t.Errorf("upload_format_spec_1 = %v", v)
	}
	// first fields must stay in dump order
	fields := c.Fields()
	if fields[0].Key != "imei" || fields[1].Key != "device_tag" {
		t.Errorf("field order starts %s,%s", fields[0].Key, fields[1].Key)
	}
}
