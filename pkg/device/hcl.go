package device

import (
	"fmt"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/matzehuels/qroute/pkg/qubit"
)

// hclVariables is the first decoding pass: variable blocks only.
type hclVariables struct {
	Variables []*hclVariable `hcl:"variable,block"`
	Remain    hcl.Body       `hcl:",remain"`
}

type hclVariable struct {
	Name    string     `hcl:"name,label"`
	Default *cty.Value `hcl:"default,optional"`
}

type hclFile struct {
	Device *hclDevice `hcl:"device,block"`
}

type hclDevice struct {
	Name        string        `hcl:"name,label"`
	Description string        `hcl:"description,optional"`
	Directed    bool          `hcl:"directed,optional"`
	Generator   *hclGenerator `hcl:"generator,block"`
	Nodes       []string      `hcl:"nodes,optional"`
	Links       []*hclLink    `hcl:"link,block"`
}

type hclGenerator struct {
	Kind   string `hcl:"kind,label"`
	Size   int    `hcl:"size,optional"`
	Rows   int    `hcl:"rows,optional"`
	Cols   int    `hcl:"cols,optional"`
	Layers int    `hcl:"layers,optional"`
}

type hclLink struct {
	Nodes  []string `hcl:"nodes"`
	Weight int      `hcl:"weight,optional"`
}

// ParseHCL decodes a device written in HCL:
//
//	variable "size" {
//	  default = 5
//	}
//
//	device "ring5" {
//	  description = "five-qubit ring"
//	  generator "ring" {
//	    size = var.size
//	  }
//	  link {
//	    nodes = ["node[0]", "node[2]"]
//	  }
//	}
//
// Variables are referenced as var.<name>. Values in vars override the
// defaults declared in the file; a variable without a default must be
// supplied.
func ParseHCL(src []byte, filename string, vars map[string]cty.Value) (*Device, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parse %s: %w", filename, diags)
	}

	var head hclVariables
	if diags := gohcl.DecodeBody(file.Body, nil, &head); diags.HasErrors() {
		return nil, fmt.Errorf("decode %s: %w", filename, diags)
	}
	values, err := resolveVariables(head.Variables, vars)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", filename, err)
	}
	ctx := &hcl.EvalContext{
		Variables: map[string]cty.Value{"var": cty.ObjectVal(values)},
	}

	var body hclFile
	if diags := gohcl.DecodeBody(head.Remain, ctx, &body); diags.HasErrors() {
		return nil, fmt.Errorf("decode %s: %w", filename, diags)
	}
	if body.Device == nil {
		return nil, fmt.Errorf("decode %s: missing device block", filename)
	}
	return body.Device.device()
}

func resolveVariables(decls []*hclVariable, overrides map[string]cty.Value) (map[string]cty.Value, error) {
	values := make(map[string]cty.Value, len(decls))
	for _, v := range decls {
		if _, dup := values[v.Name]; dup {
			return nil, fmt.Errorf("variable %q declared twice", v.Name)
		}
		override, ok := overrides[v.Name]
		switch {
		case ok:
			values[v.Name] = override
		case v.Default != nil && !v.Default.IsNull():
			values[v.Name] = *v.Default
		default:
			return nil, fmt.Errorf("variable %q has no value", v.Name)
		}
	}
	var unknown []string
	for name := range overrides {
		if _, ok := values[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, fmt.Errorf("undeclared variables %v", unknown)
	}
	return values, nil
}

func (h *hclDevice) device() (*Device, error) {
	d := &Device{Name: h.Name, Description: h.Description, Directed: h.Directed}
	if h.Generator != nil {
		d.Generator = &Generator{
			Kind:   h.Generator.Kind,
			Size:   h.Generator.Size,
			Rows:   h.Generator.Rows,
			Cols:   h.Generator.Cols,
			Layers: h.Generator.Layers,
		}
	}
	for _, s := range h.Nodes {
		n, err := qubit.Parse(s)
		if err != nil {
			return nil, err
		}
		d.Nodes = append(d.Nodes, n)
	}
	for i, l := range h.Links {
		link := Link{Weight: l.Weight}
		for _, s := range l.Nodes {
			n, err := qubit.Parse(s)
			if err != nil {
				return nil, fmt.Errorf("link %d: %w", i, err)
			}
			link.Link = append(link.Link, n)
		}
		d.Links = append(d.Links, link)
	}
	return d, nil
}
