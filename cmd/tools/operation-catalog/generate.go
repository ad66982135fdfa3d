package main

import (
	"bytes"
	"fmt"
	"go/format"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/template"

	"github.com/spf13/cobra"

	"infomaniak-workers/internal/common/infomaniak"
	"infomaniak-workers/pkg/registry"
)

// nodeData holds data for templates
type nodeData struct {
	Name        string
	PackageName string
	TaskType    string
	Definitions []infomaniak.OperationDefinition
}

const operationsTemplate = `// Code generated by operation-catalog generate. DO NOT EDIT.

package {{ .PackageName }}

import (
	"infomaniak-workers/internal/common/infomaniak"
)

// Definitions returns the {{ .Name }} operation table.
func Definitions() []infomaniak.OperationDefinition {
	return []infomaniak.OperationDefinition{
{{- range .Definitions }}
		{
			Resource: {{ quote .Resource }},
			Key: {{ quote .Key }},
{{- if .DisplayName }}
			DisplayName: {{ quote .DisplayName }},
{{- end }}
{{- if .Description }}
			Description: {{ quote .Description }},
{{- end }}
			Method: {{ methodConst .Method }},
			Path: {{ quote .Path }},
{{- if .Pagination }}
			Pagination: {{ paginationConst .Pagination }},
{{- end }}
{{- with .PathParams }}
			PathParams: {{ bindings . }},
{{- end }}
{{- with .QueryParams }}
			QueryParams: {{ bindings . }},
{{- end }}
{{- with .BodyFields }}
			BodyFields: {{ bindings . }},
{{- end }}
{{- if .OptionalQueryCollection }}
			OptionalQueryCollection: {{ quote .OptionalQueryCollection }},
{{- end }}
{{- if .OptionalBodyCollection }}
			OptionalBodyCollection: {{ quote .OptionalBodyCollection }},
{{- end }}
{{- if .BodyField }}
			BodyField: {{ quote .BodyField }},
{{- end }}
		},
{{- end }}
	}
}

func NewRegistry() (*infomaniak.Registry, error) {
	return infomaniak.NewRegistry(NodeName, Definitions())
}
`

const nodeHandlerTemplate = `// Package {{ .PackageName }} is the {{ .Name }} node.
package {{ .PackageName }}

import (
	"fmt"

	"infomaniak-workers/internal/common/nodeworker"
)

const (
	TaskType = {{ quote .TaskType }}
	NodeName = {{ quote .Name }}
)

func NewHandler(opts nodeworker.HandlerOptions) (*nodeworker.Handler, error) {
	registry, err := NewRegistry()
	if err != nil {
		return nil, fmt.Errorf("failed to build %s registry: %w", NodeName, err)
	}
	return nodeworker.NewHandler(nodeworker.Node{
		Name:     NodeName,
		TaskType: TaskType,
		Registry: registry,
	}, opts)
}
`

var templateFuncs = template.FuncMap{
	"quote": strconv.Quote,
	"methodConst": func(m infomaniak.Method) string {
		return "infomaniak.Method" + upperFirst(strings.ToLower(string(m)))
	},
	"paginationConst": func(p infomaniak.PaginationMode) string {
		switch p {
		case infomaniak.PaginationLimitSkip:
			return "infomaniak.PaginationLimitSkip"
		case infomaniak.PaginationPagePerPage:
			return "infomaniak.PaginationPagePerPage"
		default:
			return "infomaniak.PaginationNone"
		}
	},
	"bindings": func(bs []infomaniak.ParamBinding) string {
		parts := make([]string, len(bs))
		for i, b := range bs {
			parts[i] = fmt.Sprintf("infomaniak.Bind(%q, %q)", b.Name, b.Field)
		}
		return "[]infomaniak.ParamBinding{" + strings.Join(parts, ", ") + "}"
	},
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// renderNode returns the formatted source files of a node package.
func renderNode(n *registry.Node) (map[string][]byte, error) {
	if _, err := n.Compile(); err != nil {
		return nil, err
	}

	data := nodeData{
		Name:        n.Name,
		PackageName: strings.ReplaceAll(n.Name, "-", ""),
		TaskType:    n.TaskType,
		Definitions: n.Definitions(),
	}

	files := map[string]string{
		"operations.go": operationsTemplate,
		"handler.go":    nodeHandlerTemplate,
	}

	out := make(map[string][]byte, len(files))
	for filename, tmplStr := range files {
		tmpl, err := template.New(filename).Funcs(templateFuncs).Parse(tmplStr)
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", filename, err)
		}

		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, data); err != nil {
			return nil, fmt.Errorf("executing template %s: %w", filename, err)
		}
		src, err := format.Source(buf.Bytes())
		if err != nil {
			return nil, fmt.Errorf("formatting %s: %w", filename, err)
		}
		out[filename] = src
	}
	return out, nil
}

func generateCmd() *cobra.Command {
	var catalogPath, node, outDir string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a node worker package from a catalog node",
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := registry.LoadCatalog(catalogPath)
			if err != nil {
				return err
			}
			n, ok := cat.Node(node)
			if !ok {
				return fmt.Errorf("node %q not found in %s", node, catalogPath)
			}

			files, err := renderNode(n)
			if err != nil {
				return err
			}

			dir := filepath.Join(outDir, n.Name)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("creating directory: %w", err)
			}
			for _, filename := range []string{"handler.go", "operations.go"} {
				path := filepath.Join(dir, filename)
				if err := os.WriteFile(path, files[filename], 0o644); err != nil {
					return fmt.Errorf("writing %s: %w", path, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Generated %s\n", path)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Register %s in internal/workers/infomaniak/nodes to start it\n", n.TaskType)
			return nil
		},
	}

	cmd.Flags().StringVar(&catalogPath, "catalog", "catalog.json", "catalog file")
	cmd.Flags().StringVar(&node, "node", "", "node to generate")
	cmd.Flags().StringVarP(&outDir, "out", "o", "internal/workers/infomaniak", "parent directory of the node package")
	_ = cmd.MarkFlagRequired("node")
	return cmd
}
