package infomaniak

import (
	"net/url"
	"strings"

	stderrors "infomaniak-workers/internal/common/errors"
)

// Resolve builds the concrete request for def from bag. It fails only when a path
// placeholder has no value; required query and body fields are passed through as
// the bag provides them and left for the API to validate.
func Resolve(def *OperationDefinition, bag ParameterBag) (*ResolvedRequest, error) {
	path := def.Path
	for _, p := range def.PathParams {
		v := bag[p.Field]
		if isBlank(v) {
			return nil, stderrors.NewMissingPathParameterError(p.Name, p.Field)
		}
		path = strings.ReplaceAll(path, "{"+p.Name+"}", url.PathEscape(formatScalar(v)))
	}

	query := make(map[string]interface{}, len(def.QueryParams))
	for _, q := range def.QueryParams {
		query[q.Name] = bag[q.Field]
	}
	if def.OptionalQueryCollection != "" {
		extra := bag.Map(def.OptionalQueryCollection)
		for _, k := range sortedKeys(extra) {
			query[strings.TrimPrefix(k, queryPrefix)] = extra[k]
		}
	}

	return &ResolvedRequest{
		Method: def.Method,
		Path:   path,
		Query:  query,
		Body:   resolveBody(def, bag),
	}, nil
}

func resolveBody(def *OperationDefinition, bag ParameterBag) interface{} {
	if def.BodyField != "" {
		return bag[def.BodyField]
	}

	body := make(map[string]interface{}, len(def.BodyFields))
	for _, f := range def.BodyFields {
		if v, ok := bag[f.Field]; ok {
			body[f.Name] = v
		}
	}
	if def.OptionalBodyCollection != "" {
		extra := bag.Map(def.OptionalBodyCollection)
		for _, k := range sortedKeys(extra) {
			body[strings.TrimPrefix(k, bodyPrefix)] = extra[k]
		}
	}
	return body
}
