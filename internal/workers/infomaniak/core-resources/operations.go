package coreresources

import (
	"infomaniak-workers/internal/common/infomaniak"
)

const (
	queryCollection = "queryParameters"
	bodyCollection  = "bodyParameters"
)

var bind = infomaniak.Bind

// Definitions returns the Core Resources operation table.
func Definitions() []infomaniak.OperationDefinition {
	return []infomaniak.OperationDefinition{
		// Actions
		{
			Resource:                "Actions",
			Key:                     "List Available Actions",
			DisplayName:             "List Available Actions",
			Description:             "List the actions that can be logged for the current user",
			Method:                  infomaniak.MethodGet,
			Path:                    "/1/actions",
			Pagination:              infomaniak.PaginationLimitSkip,
			OptionalQueryCollection: queryCollection,
		},
		{
			Resource:                "Actions",
			Key:                     "List Available Actions (2)",
			DisplayName:             "List Available Actions",
			Description:             "List the actions available through the v2 API",
			Method:                  infomaniak.MethodGet,
			Path:                    "/2/actions",
			Pagination:              infomaniak.PaginationPagePerPage,
			OptionalQueryCollection: queryCollection,
		},
		{
			Resource:   "Actions",
			Key:        "Display An Action",
			Method:     infomaniak.MethodGet,
			Path:       "/1/actions/{action_id}",
			PathParams: []infomaniak.ParamBinding{bind("action_id", "path_action_id")},
		},

		// Accounts
		{
			Resource:                "Accounts",
			Key:                     "List Accounts",
			Description:             "List the accounts the user belongs to",
			Method:                  infomaniak.MethodGet,
			Path:                    "/1/accounts",
			Pagination:              infomaniak.PaginationPagePerPage,
			OptionalQueryCollection: queryCollection,
		},
		{
			Resource:                "Accounts",
			Key:                     "Display An Account",
			Method:                  infomaniak.MethodGet,
			Path:                    "/1/accounts/{account_id}",
			PathParams:              []infomaniak.ParamBinding{bind("account_id", "path_account_id")},
			OptionalQueryCollection: queryCollection,
		},
		{
			Resource:                "Accounts",
			Key:                     "List Account Products",
			Method:                  infomaniak.MethodGet,
			Path:                    "/1/accounts/{account_id}/products",
			Pagination:              infomaniak.PaginationPagePerPage,
			PathParams:              []infomaniak.ParamBinding{bind("account_id", "path_account_id")},
			OptionalQueryCollection: queryCollection,
		},
		{
			Resource:                "Accounts",
			Key:                     "List Account Teams",
			Method:                  infomaniak.MethodGet,
			Path:                    "/1/accounts/{account_id}/teams",
			Pagination:              infomaniak.PaginationPagePerPage,
			PathParams:              []infomaniak.ParamBinding{bind("account_id", "path_account_id")},
			OptionalQueryCollection: queryCollection,
		},
		{
			Resource:                "Accounts",
			Key:                     "List Account Users",
			Method:                  infomaniak.MethodGet,
			Path:                    "/1/accounts/{account_id}/users",
			Pagination:              infomaniak.PaginationPagePerPage,
			PathParams:              []infomaniak.ParamBinding{bind("account_id", "path_account_id")},
			OptionalQueryCollection: queryCollection,
		},

		// Profile
		{
			Resource:                "Profile",
			Key:                     "Display Profile",
			Method:                  infomaniak.MethodGet,
			Path:                    "/2/profile",
			OptionalQueryCollection: queryCollection,
		},
		{
			Resource:               "Profile",
			Key:                    "Update Profile",
			Method:                 infomaniak.MethodPatch,
			Path:                   "/2/profile",
			OptionalBodyCollection: bodyCollection,
		},
		{
			Resource:   "Profile",
			Key:        "Upload Avatar",
			Method:     infomaniak.MethodPost,
			Path:       "/2/profile/avatar",
			BodyFields: []infomaniak.ParamBinding{bind("avatar", "body_avatar")},
		},
		{
			Resource: "Profile",
			Key:      "Delete Avatar",
			Method:   infomaniak.MethodDelete,
			Path:     "/2/profile/avatar",
		},
		{
			Resource:   "Profile",
			Key:        "List Emails",
			Method:     infomaniak.MethodGet,
			Path:       "/2/profile/emails",
			Pagination: infomaniak.PaginationLimitSkip,
		},
		{
			Resource: "Profile",
			Key:      "Display An Email",
			Method:   infomaniak.MethodGet,
			Path:     "/2/profile/emails/{email_type}/{email_id}",
			PathParams: []infomaniak.ParamBinding{
				bind("email_type", "path_email_type"),
				bind("email_id", "path_email_id"),
			},
		},
		{
			Resource: "Profile",
			Key:      "Delete An Email",
			Method:   infomaniak.MethodDelete,
			Path:     "/2/profile/emails/{email_type}/{email_id}",
			PathParams: []infomaniak.ParamBinding{
				bind("email_type", "path_email_type"),
				bind("email_id", "path_email_id"),
			},
		},
		{
			Resource:   "Profile",
			Key:        "List Phones",
			Method:     infomaniak.MethodGet,
			Path:       "/2/profile/phones",
			Pagination: infomaniak.PaginationLimitSkip,
		},
		{
			Resource:   "Profile",
			Key:        "Delete A Phone",
			Method:     infomaniak.MethodDelete,
			Path:       "/2/profile/phones/{phone_id}",
			PathParams: []infomaniak.ParamBinding{bind("phone_id", "path_phone_id")},
		},
		{
			Resource:   "Profile",
			Key:        "List Application Passwords",
			Method:     infomaniak.MethodGet,
			Path:       "/2/profile/applications/passwords",
			Pagination: infomaniak.PaginationPagePerPage,
		},
		{
			Resource:   "Profile",
			Key:        "Create An Application Password",
			Method:     infomaniak.MethodPost,
			Path:       "/2/profile/applications/passwords",
			BodyFields: []infomaniak.ParamBinding{bind("name", "body_name")},
		},
		{
			Resource:   "Profile",
			Key:        "Display An Application Password",
			Method:     infomaniak.MethodGet,
			Path:       "/2/profile/applications/passwords/{password_id}",
			PathParams: []infomaniak.ParamBinding{bind("password_id", "path_password_id")},
		},

		// Countries
		{
			Resource:                "Countries",
			Key:                     "List Countries",
			Description:             "List countries known to the Infomaniak API",
			Method:                  infomaniak.MethodGet,
			Path:                    "/1/countries",
			Pagination:              infomaniak.PaginationLimitSkip,
			OptionalQueryCollection: queryCollection,
		},
		{
			Resource:   "Countries",
			Key:        "Display A Country",
			Method:     infomaniak.MethodGet,
			Path:       "/1/countries/{country_id}",
			PathParams: []infomaniak.ParamBinding{bind("country_id", "path_country_id")},
		},

		// Languages
		{
			Resource:                "Languages",
			Key:                     "List Languages",
			Method:                  infomaniak.MethodGet,
			Path:                    "/1/languages",
			Pagination:              infomaniak.PaginationLimitSkip,
			OptionalQueryCollection: queryCollection,
		},
		{
			Resource:   "Languages",
			Key:        "Display A Language",
			Method:     infomaniak.MethodGet,
			Path:       "/1/languages/{language_id}",
			PathParams: []infomaniak.ParamBinding{bind("language_id", "path_language_id")},
		},

		// Timezones
		{
			Resource:                "Timezones",
			Key:                     "List Timezones",
			Method:                  infomaniak.MethodGet,
			Path:                    "/1/timezones",
			Pagination:              infomaniak.PaginationLimitSkip,
			OptionalQueryCollection: queryCollection,
		},
		{
			Resource:   "Timezones",
			Key:        "Display A Timezone",
			Method:     infomaniak.MethodGet,
			Path:       "/1/timezones/{timezone_id}",
			PathParams: []infomaniak.ParamBinding{bind("timezone_id", "path_timezone_id")},
		},

		// Products
		{
			Resource:                "Products",
			Key:                     "List Products",
			Method:                  infomaniak.MethodGet,
			Path:                    "/1/products",
			Pagination:              infomaniak.PaginationPagePerPage,
			QueryParams:             []infomaniak.ParamBinding{bind("account_id", "query_account_id")},
			OptionalQueryCollection: queryCollection,
		},

		// Async tasks
		{
			Resource:   "Tasks",
			Key:        "Display A Task",
			Method:     infomaniak.MethodGet,
			Path:       "/1/async/tasks/{task_uuid}",
			PathParams: []infomaniak.ParamBinding{bind("task_uuid", "path_task_uuid")},
		},

		// Events
		{
			Resource:                "Events",
			Key:                     "List Events",
			Description:             "List Infomaniak service events and maintenance windows",
			Method:                  infomaniak.MethodGet,
			Path:                    "/2/events",
			Pagination:              infomaniak.PaginationLimitSkip,
			OptionalQueryCollection: queryCollection,
		},
		{
			Resource:                "Events",
			Key:                     "Display An Event",
			Method:                  infomaniak.MethodGet,
			Path:                    "/2/events/{event_id}",
			PathParams:              []infomaniak.ParamBinding{bind("event_id", "path_event_id")},
			OptionalQueryCollection: queryCollection,
		},
	}
}

// NewRegistry compiles the Core Resources table.
func NewRegistry() (*infomaniak.Registry, error) {
	return infomaniak.NewRegistry(NodeName, Definitions())
}
