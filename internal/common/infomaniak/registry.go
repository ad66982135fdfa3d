package infomaniak

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	stderrors "infomaniak-workers/internal/common/errors"
)

var placeholderPattern = regexp.MustCompile(`\{([^{}]+)\}`)

// Registry maps (resource, operation) to an OperationDefinition for one node.
// It is read-only after construction and safe for concurrent use.
type Registry struct {
	node       string
	operations map[string]map[string]*OperationDefinition
	warnings   []string
	count      int
}

// NewRegistry validates and indexes defs. Structural problems are errors;
// operations of one resource sharing a display label are reported by Warnings.
func NewRegistry(node string, defs []OperationDefinition) (*Registry, error) {
	r := &Registry{
		node:       node,
		operations: make(map[string]map[string]*OperationDefinition),
	}

	labels := make(map[string]map[string][]string)
	var problems []string

	for i := range defs {
		def := defs[i]
		if err := validateDefinition(&def); err != nil {
			problems = append(problems, err.Error())
			continue
		}

		ops, ok := r.operations[def.Resource]
		if !ok {
			ops = make(map[string]*OperationDefinition)
			r.operations[def.Resource] = ops
			labels[def.Resource] = make(map[string][]string)
		}
		if _, dup := ops[def.Key]; dup {
			problems = append(problems, fmt.Sprintf("%s: duplicate operation key", def.ID()))
			continue
		}
		ops[def.Key] = &def
		r.count++

		label := def.Label()
		labels[def.Resource][label] = append(labels[def.Resource][label], def.Key)
	}

	if len(problems) > 0 {
		return nil, stderrors.NewInvalidOperationConfigError(
			fmt.Sprintf("node %s: %s", node, strings.Join(problems, "; ")))
	}

	for _, resource := range sortedKeys(labels) {
		byLabel := labels[resource]
		for _, label := range sortedKeys(byLabel) {
			if keys := byLabel[label]; len(keys) > 1 {
				sort.Strings(keys)
				r.warnings = append(r.warnings, fmt.Sprintf(
					"%s: resource %q has %d operations labelled %q (%s)",
					node, resource, len(keys), label, strings.Join(keys, ", ")))
			}
		}
	}

	return r, nil
}

// MustNewRegistry panics on invalid definitions. For static tables built at start-up.
func MustNewRegistry(node string, defs []OperationDefinition) *Registry {
	r, err := NewRegistry(node, defs)
	if err != nil {
		panic(err)
	}
	return r
}

func validateDefinition(def *OperationDefinition) error {
	if def.Resource == "" || def.Key == "" {
		return fmt.Errorf("definition %q/%q: resource and operation are required", def.Resource, def.Key)
	}
	method, err := ParseMethod(string(def.Method))
	if err != nil {
		return fmt.Errorf("%s: %w", def.ID(), err)
	}
	def.Method = method
	if !strings.HasPrefix(def.Path, "/") {
		return fmt.Errorf("%s: path %q must start with /", def.ID(), def.Path)
	}
	if def.Pagination < PaginationNone || def.Pagination > PaginationPagePerPage {
		return fmt.Errorf("%s: invalid pagination mode %d", def.ID(), def.Pagination)
	}

	bound := make(map[string]bool, len(def.PathParams))
	for _, p := range def.PathParams {
		if bound[p.Name] {
			return fmt.Errorf("%s: placeholder {%s} bound twice", def.ID(), p.Name)
		}
		if p.Field == "" {
			return fmt.Errorf("%s: placeholder {%s} has no input field", def.ID(), p.Name)
		}
		bound[p.Name] = true
	}

	seen := make(map[string]bool)
	for _, name := range Placeholders(def.Path) {
		if !bound[name] {
			return fmt.Errorf("%s: placeholder {%s} has no path parameter", def.ID(), name)
		}
		seen[name] = true
	}
	for name := range bound {
		if !seen[name] {
			return fmt.Errorf("%s: path parameter %q does not appear in %s", def.ID(), name, def.Path)
		}
	}
	return nil
}

// Placeholders returns the {name} placeholders of a path template in order.
func Placeholders(path string) []string {
	matches := placeholderPattern.FindAllStringSubmatch(path, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m[1])
	}
	return out
}

// Lookup is case-sensitive on both keys.
func (r *Registry) Lookup(resource, operation string) (*OperationDefinition, error) {
	if def, ok := r.operations[resource][operation]; ok {
		return def, nil
	}
	return nil, stderrors.NewOperationNotFoundError(r.node, resource, operation)
}

func (r *Registry) Node() string { return r.node }

func (r *Registry) Len() int { return r.count }

// Warnings lists duplicate display labels found at construction.
func (r *Registry) Warnings() []string {
	return append([]string(nil), r.warnings...)
}

func (r *Registry) Resources() []string {
	return sortedKeys(r.operations)
}

func (r *Registry) Operations(resource string) []string {
	return sortedKeys(r.operations[resource])
}

// Definitions returns copies of every definition ordered by resource then key.
func (r *Registry) Definitions() []OperationDefinition {
	out := make([]OperationDefinition, 0, r.count)
	for _, resource := range r.Resources() {
		for _, key := range r.Operations(resource) {
			out = append(out, *r.operations[resource][key])
		}
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
