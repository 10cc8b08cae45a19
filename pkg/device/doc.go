// Package device describes quantum devices as named coupling maps and loads
// them from files.
//
// A [Device] is either generated (a line, ring, square grid or fully
// connected graph) or listed explicitly as nodes and weighted links, or
// both. [Device.Topology] builds the graph the router works on.
//
// # Files
//
// [Load] picks a decoder by extension:
//
//   - .json  the architecture format: "nodes" and "links" with "weight"
//   - .toml  the same fields in TOML, see [ReadTOML]
//   - .hcl   a device block with variables, see [ParseHCL]
//
// # Presets
//
// Names such as line-5, ring-8, grid-3x3 and grid-4x4x2 resolve to
// generated devices without a file. [Resolve] tries presets first.
package device
