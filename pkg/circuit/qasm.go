package circuit

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/matzehuels/qroute/pkg/qubit"
)

// ErrSyntax is returned for QASM statements that cannot be parsed.
var ErrSyntax = errors.New("circuit: qasm syntax error")

// Pre-compiled regexps for QASM parsing.
var (
	gateDefRegex = regexp.MustCompile(`(?s)\bgate\s+\w+[^{]*\{[^}]*\}`)
	commentRegex = regexp.MustCompile(`//[^\n]*`)
	qregRegex    = regexp.MustCompile(`^qreg\s+(\w+)\s*\[\s*(\d+)\s*\]$`)
	cregRegex    = regexp.MustCompile(`^creg\s+(\w+)\s*\[\s*(\d+)\s*\]$`)
	measureRegex = regexp.MustCompile(`^measure\s+(.+?)\s*->\s*(.+)$`)
	ifRegex      = regexp.MustCompile(`^if\s*\(\s*(\w+)(?:\s*\[\s*(\d+)\s*\])?\s*==\s*(\d+)\s*\)\s*(.+)$`)
	nameRegex    = regexp.MustCompile(`^([A-Za-z_]\w*)`)
	argRegex     = regexp.MustCompile(`^(\w+)(?:\s*\[\s*(\d+)\s*\])?$`)
)

// bridgeDefinition implements bridge a,b,c as a CX from a to c through b.
const bridgeDefinition = "gate bridge a,b,c { cx a,b; cx b,c; cx a,b; cx b,c; }"

// ParseQASM reads an OpenQASM 2.0 program. Gate definitions, opaque
// declarations and include directives are skipped; every other statement
// becomes an operation. Whole-register arguments are broadcast.
func ParseQASM(src string) (*Circuit, error) {
	src = commentRegex.ReplaceAllString(src, "")
	src = gateDefRegex.ReplaceAllStringFunc(src, func(def string) string {
		return ";" + strings.Repeat("\n", strings.Count(def, "\n"))
	})

	c := &Circuit{}
	line := 1
	for _, raw := range strings.Split(src, ";") {
		stmt := strings.TrimSpace(raw)
		at := line + strings.Count(raw[:len(raw)-len(strings.TrimLeft(raw, " \t\r\n"))], "\n")
		line += strings.Count(raw, "\n")
		if stmt == "" {
			continue
		}
		if err := c.parseStatement(stmt); err != nil {
			return nil, fmt.Errorf("line %d: %w", at, err)
		}
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Circuit) parseStatement(stmt string) error {
	switch {
	case strings.HasPrefix(stmt, "OPENQASM"),
		strings.HasPrefix(stmt, "include"),
		strings.HasPrefix(stmt, "opaque"):
		return nil
	}
	if m := qregRegex.FindStringSubmatch(stmt); m != nil {
		n, _ := strconv.Atoi(m[2])
		c.QRegs = append(c.QRegs, Register{Name: m[1], Size: n})
		return nil
	}
	if m := cregRegex.FindStringSubmatch(stmt); m != nil {
		n, _ := strconv.Atoi(m[2])
		c.CRegs = append(c.CRegs, Register{Name: m[1], Size: n})
		return nil
	}

	var cond *Condition
	if m := ifRegex.FindStringSubmatch(stmt); m != nil {
		v, _ := strconv.Atoi(m[3])
		cond = &Condition{Register: m[1], Value: v}
		if m[2] != "" {
			cond.Bit = true
			cond.Index, _ = strconv.Atoi(m[2])
		}
		stmt = m[4]
	}

	if m := measureRegex.FindStringSubmatch(stmt); m != nil {
		qs, err := c.resolve(m[1], c.QRegs)
		if err != nil {
			return err
		}
		bs, err := c.resolve(m[2], c.CRegs)
		if err != nil {
			return err
		}
		if len(qs) != len(bs) {
			return fmt.Errorf("%w: measure size mismatch in %q", ErrSyntax, stmt)
		}
		for i := range qs {
			c.Append(Op{Gate: GateMeasure, Qubits: []qubit.ID{qs[i]}, Bits: []qubit.ID{bs[i]}, Condition: cond})
		}
		return nil
	}

	name, params, rest, err := splitGate(stmt)
	if err != nil {
		return err
	}
	var groups [][]qubit.ID
	width := 1
	for _, arg := range strings.Split(rest, ",") {
		ids, err := c.resolve(arg, c.QRegs)
		if err != nil {
			return err
		}
		groups = append(groups, ids)
		width = max(width, len(ids))
	}

	// Barriers take whole registers as a single operation.
	if name == GateBarrier {
		var all []qubit.ID
		for _, g := range groups {
			all = append(all, g...)
		}
		c.Append(Op{Gate: name, Qubits: all, Condition: cond})
		return nil
	}

	for i := range width {
		op := Op{Gate: name, Params: params, Condition: cond}
		for _, g := range groups {
			switch len(g) {
			case 1:
				op.Qubits = append(op.Qubits, g[0])
			case width:
				op.Qubits = append(op.Qubits, g[i])
			default:
				return fmt.Errorf("%w: register size mismatch in %q", ErrSyntax, stmt)
			}
		}
		c.Append(op.Clone())
	}
	return nil
}

// splitGate splits "name(params) args" into its parts. Parameters may
// contain nested parentheses.
func splitGate(stmt string) (name string, params []string, rest string, err error) {
	m := nameRegex.FindStringSubmatch(stmt)
	if m == nil {
		return "", nil, "", fmt.Errorf("%w: %q", ErrSyntax, stmt)
	}
	name = strings.ToLower(m[1])
	rest = strings.TrimSpace(stmt[len(m[1]):])
	if strings.HasPrefix(rest, "(") {
		depth, end := 0, -1
		for i, r := range rest {
			switch r {
			case '(':
				depth++
			case ')':
				depth--
				if depth == 0 {
					end = i
				}
			}
			if end >= 0 {
				break
			}
		}
		if end < 0 {
			return "", nil, "", fmt.Errorf("%w: unbalanced parentheses in %q", ErrSyntax, stmt)
		}
		params = splitParams(rest[1:end])
		rest = strings.TrimSpace(rest[end+1:])
	}
	if rest == "" {
		return "", nil, "", fmt.Errorf("%w: missing arguments in %q", ErrSyntax, stmt)
	}
	return name, params, rest, nil
}

// splitParams splits a parameter list on top-level commas.
func splitParams(s string) []string {
	var out []string
	depth, start := 0, 0
	for i, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				out = append(out, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	if tail := strings.TrimSpace(s[start:]); tail != "" || len(out) > 0 {
		out = append(out, tail)
	}
	return out
}

// resolve expands reg[i] or a whole register name against regs.
func (c *Circuit) resolve(arg string, regs []Register) ([]qubit.ID, error) {
	arg = strings.TrimSpace(arg)
	m := argRegex.FindStringSubmatch(arg)
	if m == nil {
		return nil, fmt.Errorf("%w: bad argument %q", ErrSyntax, arg)
	}
	var reg *Register
	for i := range regs {
		if regs[i].Name == m[1] {
			reg = &regs[i]
			break
		}
	}
	if reg == nil {
		return nil, fmt.Errorf("%w: register %q", ErrUndeclared, m[1])
	}
	if m[2] != "" {
		idx, _ := strconv.Atoi(m[2])
		if idx >= reg.Size {
			return nil, fmt.Errorf("%w: %s out of range", ErrUndeclared, arg)
		}
		return []qubit.ID{{Register: reg.Name, Index: idx}}, nil
	}
	out := make([]qubit.ID, reg.Size)
	for i := range out {
		out[i] = qubit.ID{Register: reg.Name, Index: i}
	}
	return out, nil
}

// WriteQASM writes the circuit as an OpenQASM 2.0 program. A bridge gate
// definition is emitted when the circuit uses one.
func (c *Circuit) WriteQASM(w io.Writer) error {
	var sb strings.Builder
	sb.WriteString("OPENQASM 2.0;\n")
	sb.WriteString("include \"qelib1.inc\";\n")
	if c.GateCounts()[GateBridge] > 0 {
		sb.WriteString(bridgeDefinition + "\n")
	}
	sb.WriteByte('\n')
	for _, r := range c.QRegs {
		fmt.Fprintf(&sb, "qreg %s[%d];\n", r.Name, r.Size)
	}
	for _, r := range c.CRegs {
		fmt.Fprintf(&sb, "creg %s[%d];\n", r.Name, r.Size)
	}
	if len(c.Ops) > 0 {
		sb.WriteByte('\n')
	}
	for _, op := range c.Ops {
		sb.WriteString(op.String())
		sb.WriteByte('\n')
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// QASM returns the circuit as an OpenQASM 2.0 program.
func (c *Circuit) QASM() string {
	var sb strings.Builder
	_ = c.WriteQASM(&sb)
	return sb.String()
}
