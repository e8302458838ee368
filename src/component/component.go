// Package component adapts plain dataset-generation functions into
// pipeline components: units of work with a declared container
// execution environment and a typed input/output signature, invocable
// by an orchestrator.
package component

import (
	"context"

	"github.com/pingcap/errors"
	"github.com/pingcap/tidb/br/pkg/storage"
)

// Environment declares the containerized execution environment a
// component step runs in: a base image plus extra packages installed
// at step start.
type Environment struct {
	BaseImage         string
	PackagesToInstall []string
}

// ParameterType is the declared type of a component input parameter.
type ParameterType int

const (
	Integer ParameterType = iota
	Double
	String
)

func (t ParameterType) String() string {
	switch t {
	case Integer:
		return "integer"
	case Double:
		return "double"
	case String:
		return "string"
	default:
		return "unknown"
	}
}

// Parameter declares one named, typed input.
type Parameter struct {
	Name string
	Type ParameterType
}

// OutputSpec declares one named output artifact. The orchestrator
// assigns the artifact's location before invocation.
type OutputSpec struct {
	Name string
}

// Component pairs an execution function with the metadata an
// orchestrator needs to schedule it: a name, an execution environment
// and the input/output signature.
type Component struct {
	Name        string
	Environment Environment
	Inputs      []Parameter
	Outputs     []OutputSpec
	Execute     func(ctx context.Context, inv *Invocation) error
}

// Dataset is an output artifact handle. URI is the orchestrator-assigned
// location the component must write its result to.
type Dataset struct {
	Name string
	URI  string

	rel   string
	store storage.ExternalStorage
}

// NewDataset binds an artifact handle to a location inside a store.
// rel is the path relative to the store root, uri the resolved
// location reported to callers.
func NewDataset(store storage.ExternalStorage, name, rel, uri string) *Dataset {
	return &Dataset{
		Name:  name,
		URI:   uri,
		rel:   rel,
		store: store,
	}
}

// Path returns the artifact's assigned location.
func (d *Dataset) Path() string {
	return d.URI
}

// Create opens a writer at the artifact's assigned location. The caller
// owns closing it.
func (d *Dataset) Create(ctx context.Context) (storage.ExternalFileWriter, error) {
	w, err := d.store.Create(ctx, d.rel, &storage.WriterOption{
		Concurrency: 8,
	})
	if err != nil {
		return nil, errors.Trace(err)
	}
	return w, nil
}

// Invocation is one runtime binding of a component: input parameter
// values plus located output artifacts.
type Invocation struct {
	params  map[string]any
	outputs map[string]*Dataset
}

// Int returns the named integer parameter.
func (inv *Invocation) Int(name string) (int, error) {
	v, ok := inv.params[name]
	if !ok {
		return 0, errors.Errorf("parameter %q is not bound", name)
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	default:
		return 0, errors.Errorf("parameter %q is not an integer: %T", name, v)
	}
}

// String returns the named string parameter.
func (inv *Invocation) String(name string) (string, error) {
	v, ok := inv.params[name]
	if !ok {
		return "", errors.Errorf("parameter %q is not bound", name)
	}
	s, ok := v.(string)
	if !ok {
		return "", errors.Errorf("parameter %q is not a string: %T", name, v)
	}
	return s, nil
}

// Float returns the named double parameter.
func (inv *Invocation) Float(name string) (float64, error) {
	v, ok := inv.params[name]
	if !ok {
		return 0, errors.Errorf("parameter %q is not bound", name)
	}
	f, ok := v.(float64)
	if !ok {
		return 0, errors.Errorf("parameter %q is not a double: %T", name, v)
	}
	return f, nil
}

// Output returns the named output artifact handle.
func (inv *Invocation) Output(name string) (*Dataset, error) {
	out, ok := inv.outputs[name]
	if !ok {
		return nil, errors.Errorf("output %q is not bound", name)
	}
	return out, nil
}

func checkParamType(p Parameter, v any) error {
	switch p.Type {
	case Integer:
		switch v.(type) {
		case int, int64:
			return nil
		}
	case Double:
		if _, ok := v.(float64); ok {
			return nil
		}
	case String:
		if _, ok := v.(string); ok {
			return nil
		}
	}
	return errors.Errorf("parameter %q must be %s, got %T", p.Name, p.Type, v)
}

// Bind validates params and outputs against the component's declared
// signature and returns the invocation. Values are checked for
// presence and type only; ranges are the execution function's problem.
func (c *Component) Bind(params map[string]any, outputs map[string]*Dataset) (*Invocation, error) {
	for _, p := range c.Inputs {
		v, ok := params[p.Name]
		if !ok {
			return nil, errors.Errorf("component %s: missing parameter %q", c.Name, p.Name)
		}
		if err := checkParamType(p, v); err != nil {
			return nil, errors.Annotatef(err, "component %s", c.Name)
		}
	}
	for name := range params {
		if !c.declaresInput(name) {
			return nil, errors.Errorf("component %s: unknown parameter %q", c.Name, name)
		}
	}

	for _, o := range c.Outputs {
		if _, ok := outputs[o.Name]; !ok {
			return nil, errors.Errorf("component %s: output %q has no assigned location", c.Name, o.Name)
		}
	}

	return &Invocation{params: params, outputs: outputs}, nil
}

func (c *Component) declaresInput(name string) bool {
	for _, p := range c.Inputs {
		if p.Name == name {
			return true
		}
	}
	return false
}
