package registry

import (
	"fmt"
	"strings"

	"github.com/pb33f/libopenapi"
	"github.com/pb33f/libopenapi/datamodel/high/base"
	v3 "github.com/pb33f/libopenapi/datamodel/high/v3"

	"infomaniak-workers/internal/common/infomaniak"
)

const (
	defaultResource = "Default"
	queryCollection = "queryParameters"
	bodyCollection  = "bodyParameters"
	rawBodyField    = "body"
)

// ImportOpenAPI derives a node's operations from an OpenAPI 3 document. The
// first tag of an operation is its resource and its summary the operation key.
// Required parameters become bindings, optional ones go to the query and body
// collections, and list endpoints get a pagination mode from their paging
// parameters.
func ImportOpenAPI(data []byte, nodeName, taskType string) (*Node, error) {
	doc, err := libopenapi.NewDocument(data)
	if err != nil {
		return nil, fmt.Errorf("parsing OpenAPI document: %w", err)
	}
	if version := doc.GetVersion(); !strings.HasPrefix(version, "3.") {
		return nil, fmt.Errorf("unsupported OpenAPI version: %s (only 3.x supported)", version)
	}
	model, err := doc.BuildV3Model()
	if err != nil {
		return nil, fmt.Errorf("building OpenAPI model: %w", err)
	}

	node := &Node{Name: nodeName, TaskType: taskType}
	index := make(map[string]int)
	used := make(map[string]map[string]bool)

	if model.Model.Paths == nil {
		return node, nil
	}

	for path, item := range model.Model.Paths.PathItems.FromOldest() {
		for _, m := range []struct {
			method infomaniak.Method
			op     *v3.Operation
		}{
			{infomaniak.MethodGet, item.Get},
			{infomaniak.MethodPost, item.Post},
			{infomaniak.MethodPut, item.Put},
			{infomaniak.MethodPatch, item.Patch},
			{infomaniak.MethodDelete, item.Delete},
		} {
			if m.op == nil {
				continue
			}
			def := convertOperation(path, m.method, m.op, item.Parameters)

			// keys must be unique per resource; later duplicates get the first free (n) suffix
			if used[def.Resource] == nil {
				used[def.Resource] = make(map[string]bool)
			}
			if used[def.Resource][def.Key] {
				base := def.Key
				n := 2
				for used[def.Resource][fmt.Sprintf("%s (%d)", base, n)] {
					n++
				}
				def.DisplayName = base
				def.Key = fmt.Sprintf("%s (%d)", base, n)
			}
			used[def.Resource][def.Key] = true

			i, ok := index[def.Resource]
			if !ok {
				i = len(node.Resources)
				index[def.Resource] = i
				node.Resources = append(node.Resources, Resource{Name: def.Resource})
			}
			node.Resources[i].Operations = append(node.Resources[i].Operations, def)
		}
	}
	return node, nil
}

func convertOperation(path string, method infomaniak.Method, op *v3.Operation, shared []*v3.Parameter) infomaniak.OperationDefinition {
	def := infomaniak.OperationDefinition{
		Resource:    defaultResource,
		Key:         operationKey(path, method, op),
		Description: firstLine(op.Description),
		Method:      method,
		Path:        path,
	}
	if len(op.Tags) > 0 {
		def.Resource = op.Tags[0]
	}

	for _, name := range infomaniak.Placeholders(path) {
		def.PathParams = append(def.PathParams, infomaniak.Bind(name, "path_"+name))
	}

	queryNames := make(map[string]bool)
	for _, p := range append(append([]*v3.Parameter{}, shared...), op.Parameters...) {
		if p == nil || !strings.EqualFold(p.In, "query") {
			continue
		}
		queryNames[p.Name] = true
		if p.Required != nil && *p.Required {
			def.QueryParams = append(def.QueryParams, infomaniak.Bind(p.Name, "query_"+p.Name))
		} else {
			def.OptionalQueryCollection = queryCollection
		}
	}

	if method == infomaniak.MethodGet {
		switch {
		case queryNames["limit"] && queryNames["skip"]:
			def.Pagination = infomaniak.PaginationLimitSkip
		case queryNames["page"] && queryNames["per_page"]:
			def.Pagination = infomaniak.PaginationPagePerPage
		}
	}

	if op.RequestBody != nil {
		applyRequestBody(&def, op.RequestBody)
	}
	return def
}

// applyRequestBody binds required top-level properties of an object body. A
// body without properties is taken whole from the "body" entry.
func applyRequestBody(def *infomaniak.OperationDefinition, rb *v3.RequestBody) {
	schema := bodySchema(rb)
	if schema == nil || schema.Properties == nil || schema.Properties.Len() == 0 {
		def.BodyField = rawBodyField
		return
	}

	required := make(map[string]bool, len(schema.Required))
	for _, name := range schema.Required {
		required[name] = true
	}
	for name := range schema.Properties.FromOldest() {
		if required[name] {
			def.BodyFields = append(def.BodyFields, infomaniak.Bind(name, "body_"+name))
		} else {
			def.OptionalBodyCollection = bodyCollection
		}
	}
}

func bodySchema(rb *v3.RequestBody) *base.Schema {
	if rb.Content == nil {
		return nil
	}
	var proxy *base.SchemaProxy
	for mediaType, content := range rb.Content.FromOldest() {
		if content.Schema == nil {
			continue
		}
		if proxy == nil || strings.HasPrefix(mediaType, "application/json") {
			proxy = content.Schema
		}
	}
	if proxy == nil {
		return nil
	}
	return proxy.Schema()
}

func operationKey(path string, method infomaniak.Method, op *v3.Operation) string {
	switch {
	case strings.TrimSpace(op.Summary) != "":
		return strings.TrimSpace(op.Summary)
	case op.OperationId != "":
		return op.OperationId
	default:
		return string(method) + " " + path
	}
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}
