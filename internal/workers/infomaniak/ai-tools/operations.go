package aitools

import (
	"infomaniak-workers/internal/common/infomaniak"
)

const (
	queryCollection = "queryParameters"
	bodyCollection  = "bodyParameters"
	rawBody         = "body"
)

var (
	bind      = infomaniak.Bind
	productID = []infomaniak.ParamBinding{bind("product_id", "path_product_id")}
)

// Definitions returns the AI Tools operation table. Inference endpoints follow
// the OpenAI-compatible layout under /1/ai/{product_id}/openai.
func Definitions() []infomaniak.OperationDefinition {
	return []infomaniak.OperationDefinition{
		// Products
		{
			Resource:    "Products",
			Key:         "List LLM Products",
			Description: "List the AI Tools products of the current account",
			Method:      infomaniak.MethodGet,
			Path:        "/1/ai",
		},
		{
			Resource:                "Products",
			Key:                     "Display Consumption",
			Description:             "Token consumption of a product",
			Method:                  infomaniak.MethodGet,
			Path:                    "/1/ai/{product_id}/consumption",
			PathParams:              productID,
			OptionalQueryCollection: queryCollection,
		},

		// Models
		{
			Resource:    "Models",
			Key:         "List Models",
			Description: "List the models available to AI Tools products",
			Method:      infomaniak.MethodGet,
			Path:        "/1/ai/models",
		},
		{
			Resource:   "Models",
			Key:        "List Product Models",
			Method:     infomaniak.MethodGet,
			Path:       "/1/ai/{product_id}/openai/models",
			PathParams: productID,
		},

		// Chat
		{
			Resource:    "Chat",
			Key:         "Create A Chat Completion",
			Description: "Send a conversation to a model and return its reply",
			Method:      infomaniak.MethodPost,
			Path:        "/1/ai/{product_id}/openai/chat/completions",
			PathParams:  productID,
			BodyFields: []infomaniak.ParamBinding{
				bind("model", "body_model"),
				bind("messages", "body_messages"),
			},
			OptionalBodyCollection: bodyCollection,
		},
		{
			Resource:    "Chat",
			Key:         "Create A Chat Completion (2)",
			DisplayName: "Create A Chat Completion",
			Description: "Send a prepared OpenAI request body as is",
			Method:      infomaniak.MethodPost,
			Path:        "/1/ai/{product_id}/openai/chat/completions",
			PathParams:  productID,
			BodyField:   rawBody,
		},

		// Embeddings
		{
			Resource:   "Embeddings",
			Key:        "Create Embeddings",
			Method:     infomaniak.MethodPost,
			Path:       "/1/ai/{product_id}/openai/v1/embeddings",
			PathParams: productID,
			BodyFields: []infomaniak.ParamBinding{
				bind("model", "body_model"),
				bind("input", "body_input"),
			},
			OptionalBodyCollection: bodyCollection,
		},

		// Reranking
		{
			Resource:   "Rerank",
			Key:        "Rerank Documents",
			Method:     infomaniak.MethodPost,
			Path:       "/1/ai/{product_id}/rerank",
			PathParams: productID,
			BodyFields: []infomaniak.ParamBinding{
				bind("model", "body_model"),
				bind("query", "body_query"),
				bind("documents", "body_documents"),
			},
			OptionalBodyCollection: bodyCollection,
		},

		// Images
		{
			Resource:   "Images",
			Key:        "Generate An Image",
			Method:     infomaniak.MethodPost,
			Path:       "/1/ai/{product_id}/openai/images/generations",
			PathParams: productID,
			BodyFields: []infomaniak.ParamBinding{
				bind("model", "body_model"),
				bind("prompt", "body_prompt"),
			},
			OptionalBodyCollection: bodyCollection,
		},

		// Audio transcription runs as a batch; the result is fetched separately.
		{
			Resource:    "Audio",
			Key:         "Create A Transcription",
			Description: "Queue an audio file for transcription",
			Method:      infomaniak.MethodPost,
			Path:        "/1/ai/{product_id}/openai/audio/transcriptions",
			PathParams:  productID,
			BodyFields: []infomaniak.ParamBinding{
				bind("model", "body_model"),
				bind("file", "body_file"),
			},
			OptionalBodyCollection: bodyCollection,
		},
		{
			Resource:    "Audio",
			Key:         "Create A Translation",
			Description: "Queue an audio file for translation to English",
			Method:      infomaniak.MethodPost,
			Path:        "/1/ai/{product_id}/openai/audio/translations",
			PathParams:  productID,
			BodyFields: []infomaniak.ParamBinding{
				bind("model", "body_model"),
				bind("file", "body_file"),
			},
			OptionalBodyCollection: bodyCollection,
		},

		// Batch results
		{
			Resource: "Results",
			Key:      "Display A Batch Result",
			Method:   infomaniak.MethodGet,
			Path:     "/1/ai/{product_id}/results/{batch_id}",
			PathParams: []infomaniak.ParamBinding{
				bind("product_id", "path_product_id"),
				bind("batch_id", "path_batch_id"),
			},
		},
		{
			Resource: "Results",
			Key:      "Download A Batch Result",
			Method:   infomaniak.MethodGet,
			Path:     "/1/ai/{product_id}/results/{batch_id}/download",
			PathParams: []infomaniak.ParamBinding{
				bind("product_id", "path_product_id"),
				bind("batch_id", "path_batch_id"),
			},
		},
	}
}

func NewRegistry() (*infomaniak.Registry, error) {
	return infomaniak.NewRegistry(NodeName, Definitions())
}
