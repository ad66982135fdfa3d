// Package infomaniak turns declarative operation tables into Infomaniak API calls.
//
// A node (AI Tools, Core Resources, Meeting, Public Cloud) is a Registry of
// OperationDefinitions keyed by resource and operation name. The Executor looks an
// operation up, resolves it against a ParameterBag and dispatches it to a Transport,
// paging where the endpoint supports it, and flattens the response into records.
package infomaniak

import (
	"fmt"
	"strings"
)

// Method is the HTTP verb of an operation.
type Method string

const (
	MethodGet    Method = "GET"
	MethodPost   Method = "POST"
	MethodPatch  Method = "PATCH"
	MethodPut    Method = "PUT"
	MethodDelete Method = "DELETE"
)

// Idempotent reports whether repeating the request leaves the server unchanged.
func (m Method) Idempotent() bool {
	return m != MethodPost && m != MethodPatch
}

// ParseMethod accepts any case.
func ParseMethod(s string) (Method, error) {
	switch m := Method(strings.ToUpper(s)); m {
	case MethodGet, MethodPost, MethodPatch, MethodPut, MethodDelete:
		return m, nil
	default:
		return "", fmt.Errorf("unsupported method %q", s)
	}
}

// PaginationMode is the paging convention a GET endpoint implements.
type PaginationMode int

const (
	PaginationNone PaginationMode = iota
	PaginationLimitSkip
	PaginationPagePerPage
)

func (p PaginationMode) String() string {
	switch p {
	case PaginationNone:
		return "none"
	case PaginationLimitSkip:
		return "limit-skip"
	case PaginationPagePerPage:
		return "page-per-page"
	default:
		return fmt.Sprintf("PaginationMode(%d)", int(p))
	}
}

// ParsePaginationMode is the inverse of String. An empty string means none.
func ParsePaginationMode(s string) (PaginationMode, error) {
	switch s {
	case "", "none":
		return PaginationNone, nil
	case "limit-skip":
		return PaginationLimitSkip, nil
	case "page-per-page":
		return PaginationPagePerPage, nil
	default:
		return PaginationNone, fmt.Errorf("unknown pagination mode %q", s)
	}
}

func (p PaginationMode) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *PaginationMode) UnmarshalText(b []byte) error {
	mode, err := ParsePaginationMode(string(b))
	if err != nil {
		return err
	}
	*p = mode
	return nil
}

// ParamBinding maps a request key (placeholder, query key or body key) to the
// ParameterBag key that supplies its value.
type ParamBinding struct {
	Name  string `json:"name"`
	Field string `json:"field"`
}

// Bind is shorthand for ParamBinding{Name: name, Field: field}.
func Bind(name, field string) ParamBinding {
	return ParamBinding{Name: name, Field: field}
}

// OperationDefinition describes how to build one HTTP request. Definitions are
// built once when a node registry is constructed and never mutated afterwards.
type OperationDefinition struct {
	Resource    string         `json:"resource"`
	Key         string         `json:"operation"`
	DisplayName string         `json:"displayName,omitempty"`
	Description string         `json:"description,omitempty"`
	Method      Method         `json:"method"`
	Path        string         `json:"path"`
	Pagination  PaginationMode `json:"pagination"`

	PathParams  []ParamBinding `json:"pathParams,omitempty"`
	QueryParams []ParamBinding `json:"queryParams,omitempty"`
	BodyFields  []ParamBinding `json:"bodyFields,omitempty"`

	// OptionalQueryCollection names a bag entry holding query_-prefixed extras.
	OptionalQueryCollection string `json:"optionalQueryCollection,omitempty"`
	// OptionalBodyCollection names a bag entry holding body_-prefixed extras.
	OptionalBodyCollection string `json:"optionalBodyCollection,omitempty"`
	// BodyField names a bag entry whose value is sent as the whole body.
	BodyField string `json:"bodyField,omitempty"`
}

// Label is the human-facing name, falling back to the key.
func (d *OperationDefinition) Label() string {
	if d.DisplayName != "" {
		return d.DisplayName
	}
	return d.Key
}

// ID is "resource/operation", used in logs, metrics and error details.
func (d *OperationDefinition) ID() string {
	return d.Resource + "/" + d.Key
}

// ResolvedRequest is a fully substituted request, ready for a Transport.
type ResolvedRequest struct {
	Method Method
	Path   string
	Query  map[string]interface{}
	Body   interface{}
}
