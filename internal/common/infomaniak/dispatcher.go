package infomaniak

import "context"

// Options are the per-record caller preferences.
type Options struct {
	ReturnAll          bool
	Limit              int
	ReturnFullResponse bool
	Authentication     string
}

// DefaultLimit applies when a single-page request carries no usable limit.
const DefaultLimit = 50

// OptionsFromBag reads returnAll, limit, returnFullResponse and authentication
// from the bag, falling back to defaults for keys that are absent.
func OptionsFromBag(bag ParameterBag, defaults Options) Options {
	opts := defaults
	opts.ReturnAll = bag.Bool(KeyReturnAll, defaults.ReturnAll)
	opts.Limit = bag.Int(KeyLimit, defaults.Limit)
	opts.ReturnFullResponse = bag.Bool(KeyReturnFullResponse, defaults.ReturnFullResponse)
	opts.Authentication = bag.String(KeyAuthentication, defaults.Authentication)
	return opts
}

// Dispatch chooses between one request and a paginated listing, then flattens the
// result into records. Pagination applies to GET only; every other method is sent
// once as resolved.
func Dispatch(ctx context.Context, tr Transport, def *OperationDefinition, req *ResolvedRequest, opts Options) ([]interface{}, error) {
	if req.Query == nil {
		req.Query = map[string]interface{}{}
	}

	if req.Method == MethodGet {
		limit := opts.Limit
		if limit <= 0 {
			limit = DefaultLimit
		}

		switch def.Pagination {
		case PaginationLimitSkip:
			if opts.ReturnAll {
				return tr.RequestAllItems(ctx, req.Method, req.Path, req.Body, req.Query)
			}
			req.Query["limit"] = limit
			setDefault(req.Query, "skip", 0)

		case PaginationPagePerPage:
			if opts.ReturnAll {
				return tr.RequestAllPages(ctx, req.Method, req.Path, req.Body, req.Query)
			}
			req.Query["per_page"] = limit
			setDefault(req.Query, "page", 1)
		}
	}

	resp, err := tr.Request(ctx, req.Method, req.Path, req.Body, req.Query)
	if err != nil {
		return nil, err
	}
	return NormalizeResponse(resp, opts.ReturnFullResponse), nil
}

// setDefault fills key when it is absent or null.
func setDefault(m map[string]interface{}, key string, v interface{}) {
	if cur, ok := m[key]; !ok || cur == nil {
		m[key] = v
	}
}
