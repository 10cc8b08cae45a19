// Package qubit defines the identifiers shared by circuits, devices and the
// router.
//
// A single value type, [ID], names both logical qubits as they appear in a
// program (q[3]) and physical qubits on a device (node[3]). Whether an ID is
// physical is decided by the device it is looked up in, not by the ID itself,
// which lets a circuit wire be renamed from a logical qubit to a physical node
// in place.
package qubit

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

const (
	// DefaultLogical is the register used for logical qubits when none is named.
	DefaultLogical = "q"

	// DefaultPhysical is the register used for device nodes when none is named.
	DefaultPhysical = "node"
)

// ErrInvalidID is returned by [Parse] for malformed identifiers.
var ErrInvalidID = errors.New("qubit: invalid identifier")

// ID identifies a qubit by register name and index.
type ID struct {
	Register string
	Index    int
}

// Q returns the logical qubit q[i].
func Q(i int) ID { return ID{Register: DefaultLogical, Index: i} }

// Node returns the physical node node[i].
func Node(i int) ID { return ID{Register: DefaultPhysical, Index: i} }

// Nodes returns node[0] .. node[n-1].
func Nodes(n int) []ID {
	out := make([]ID, n)
	for i := range out {
		out[i] = Node(i)
	}
	return out
}

// String renders the identifier as register[index].
func (id ID) String() string {
	return id.Register + "[" + strconv.Itoa(id.Index) + "]"
}

// IsZero reports whether id is the zero value.
func (id ID) IsZero() bool {
	return id.Register == "" && id.Index == 0
}

// Compare orders identifiers by register name, then index.
func Compare(a, b ID) int {
	if c := strings.Compare(a.Register, b.Register); c != 0 {
		return c
	}
	return cmp.Compare(a.Index, b.Index)
}

// Less reports whether id sorts before other.
func (id ID) Less(other ID) bool { return Compare(id, other) < 0 }

// Sort sorts ids in place using [Compare].
func Sort(ids []ID) { slices.SortFunc(ids, Compare) }

// Sorted returns the keys of set in ascending order.
func Sorted[V any](set map[ID]V) []ID {
	out := make([]ID, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	Sort(out)
	return out
}

// Parse reads an identifier in register[index] form. A bare integer is
// interpreted as an index into [DefaultPhysical].
func Parse(s string) (ID, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 {
			return ID{}, fmt.Errorf("%w: %q", ErrInvalidID, s)
		}
		return Node(n), nil
	}
	open := strings.IndexByte(s, '[')
	if open <= 0 || !strings.HasSuffix(s, "]") {
		return ID{}, fmt.Errorf("%w: %q", ErrInvalidID, s)
	}
	idx, err := strconv.Atoi(s[open+1 : len(s)-1])
	if err != nil || idx < 0 {
		return ID{}, fmt.Errorf("%w: %q", ErrInvalidID, s)
	}
	return ID{Register: s[:open], Index: idx}, nil
}

// MarshalText implements encoding.TextMarshaler so IDs can be used as JSON
// object keys.
func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *ID) UnmarshalText(b []byte) error {
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
