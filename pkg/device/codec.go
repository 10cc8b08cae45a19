package device

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/BurntSushi/toml"
)

// ReadJSON decodes a device in architecture form:
//
//	{
//	  "nodes": ["node[0]", "node[1]", "node[2]"],
//	  "links": [
//	    {"link": ["node[0]", "node[1]"], "weight": 1},
//	    {"link": ["node[1]", "node[2]"], "weight": 1}
//	  ]
//	}
//
// Nodes are written as register[index]; a bare index "n" means node[n].
// Unknown fields are rejected.
func ReadJSON(r io.Reader) (*Device, error) {
	var d Device
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&d); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return &d, nil
}

// WriteJSON encodes d in the form accepted by [ReadJSON].
func WriteJSON(d *Device, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ReadTOML decodes a device from TOML:
//
//	name = "tee"
//	nodes = ["node[0]", "node[1]", "node[2]", "node[3]"]
//
//	[[links]]
//	link = ["node[0]", "node[1]"]
//	weight = 1
//
//	[generator]
//	kind = "line"
//	size = 3
//
// Undecoded keys are reported as errors.
func ReadTOML(r io.Reader) (*Device, error) {
	var d Device
	md, err := toml.NewDecoder(r).Decode(&d)
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("decode: unknown keys %v", undecoded)
	}
	return &d, nil
}

// WriteTOML encodes d in the form accepted by [ReadTOML].
func WriteTOML(d *Device, w io.Writer) error {
	if err := toml.NewEncoder(w).Encode(d); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}
