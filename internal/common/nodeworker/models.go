package nodeworker

import (
	"infomaniak-workers/internal/common/infomaniak"
	"infomaniak-workers/internal/common/logger"
)

// Input is the decoded job payload. Either Parameters or Records is set; the
// job-level options are the defaults each record may override.
type Input struct {
	Resource           string                    `json:"resource"`
	Operation          string                    `json:"operation"`
	Authentication     string                    `json:"authentication,omitempty"`
	Parameters         infomaniak.ParameterBag   `json:"parameters,omitempty"`
	Records            []infomaniak.ParameterBag `json:"records,omitempty"`
	ReturnAll          *bool                     `json:"returnAll,omitempty"`
	Limit              *int                      `json:"limit,omitempty"`
	ReturnFullResponse *bool                     `json:"returnFullResponse,omitempty"`
	CorrelationID      string                    `json:"correlationId,omitempty"`
}

// Options resolves the job-level options over the worker defaults.
func (in *Input) Options(cfg *Config) infomaniak.Options {
	opts := infomaniak.Options{
		Limit:          cfg.DefaultLimit,
		Authentication: cfg.DefaultAuthentication,
	}
	if in.ReturnAll != nil {
		opts.ReturnAll = *in.ReturnAll
	}
	if in.Limit != nil {
		opts.Limit = *in.Limit
	}
	if in.ReturnFullResponse != nil {
		opts.ReturnFullResponse = *in.ReturnFullResponse
	}
	if in.Authentication != "" {
		opts.Authentication = in.Authentication
	}
	return opts
}

// Invocations expands the input into one invocation per record.
func (in *Input) Invocations(cfg *Config) []infomaniak.Invocation {
	defaults := in.Options(cfg)

	bags := in.Records
	if len(bags) == 0 {
		bag := in.Parameters
		if bag == nil {
			bag = infomaniak.ParameterBag{}
		}
		bags = []infomaniak.ParameterBag{bag}
	}

	out := make([]infomaniak.Invocation, len(bags))
	for i, bag := range bags {
		out[i] = infomaniak.Invocation{
			Resource:   in.Resource,
			Operation:  in.Operation,
			Parameters: bag,
			Options:    infomaniak.OptionsFromBag(bag, defaults),
		}
	}
	return out
}

type Output struct {
	Items       []interface{} `json:"items"`
	ItemCount   int           `json:"itemCount"`
	RecordCount int           `json:"recordCount"`
	Node        string        `json:"node"`
	Resource    string        `json:"resource"`
	Operation   string        `json:"operation"`
}

// Variables are the process variables set on job completion.
func (o *Output) Variables() map[string]interface{} {
	items := o.Items
	if items == nil {
		items = []interface{}{}
	}
	return map[string]interface{}{
		"items":       items,
		"itemCount":   o.ItemCount,
		"recordCount": o.RecordCount,
		"node":        o.Node,
		"resource":    o.Resource,
		"operation":   o.Operation,
	}
}

type ServiceDependencies struct {
	Logger     logger.Logger
	Executor   *infomaniak.Executor
	Transports infomaniak.TransportSource
}
