package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"infomaniak-workers/internal/common/infomaniak"
)

const CatalogVersion = "1"

func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cat Catalog
	if err := json.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("failed to parse catalog %s: %w", path, err)
	}
	return &cat, nil
}

// SaveCatalog writes the catalog as indented JSON and stamps LastUpdated.
func SaveCatalog(path string, cat *Catalog) error {
	if cat.Version == "" {
		cat.Version = CatalogVersion
	}
	cat.LastUpdated = time.Now().UTC().Format(time.RFC3339)

	data, err := json.MarshalIndent(cat, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// FromRegistry exports a compiled registry, grouped by resource.
func FromRegistry(taskType string, reg *infomaniak.Registry) Node {
	node := Node{
		Name:     reg.Node(),
		TaskType: taskType,
		Warnings: reg.Warnings(),
	}
	for _, resource := range reg.Resources() {
		res := Resource{Name: resource}
		for _, key := range reg.Operations(resource) {
			def, _ := reg.Lookup(resource, key)
			res.Operations = append(res.Operations, *def)
		}
		node.Resources = append(node.Resources, res)
	}
	return node
}

// Definitions flattens the node. The enclosing resource name always wins over
// the one stored on the operation.
func (n *Node) Definitions() []infomaniak.OperationDefinition {
	var out []infomaniak.OperationDefinition
	for _, res := range n.Resources {
		for _, def := range res.Operations {
			def.Resource = res.Name
			out = append(out, def)
		}
	}
	return out
}

// Compile builds a registry from the node, applying the same checks as the
// built-in tables.
func (n *Node) Compile() (*infomaniak.Registry, error) {
	return infomaniak.NewRegistry(n.Name, n.Definitions())
}

func (c *Catalog) Node(name string) (*Node, bool) {
	for i := range c.Nodes {
		if c.Nodes[i].Name == name {
			return &c.Nodes[i], true
		}
	}
	return nil, false
}
