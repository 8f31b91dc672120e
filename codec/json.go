package codec

import "encoding/json"

// JSON is the standard-library JSON codec.
//
// Sidecar files produced with it are indented by the metadata store, not
// here; the codec itself emits compact JSON.
type JSON struct{}

// Marshal encodes the value to JSON.
func (JSON) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

// Unmarshal decodes the JSON data into v.
func (JSON) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

// Name returns the unique name of the codec ("json").
func (JSON) Name() string { return "json" }

// Default is the codec used when none is configured.
//
// Sidecar JSON is tiny relative to chunk payloads, so the choice is about
// consistency, not speed; both built-ins produce identical bytes for the
// sidecar types.
var Default Codec = GoJSON{}
