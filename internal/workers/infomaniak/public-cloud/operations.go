package publiccloud

import (
	"infomaniak-workers/internal/common/infomaniak"
)

const (
	queryCollection = "queryParameters"
	bodyCollection  = "bodyParameters"

	cloudPath   = "/1/public_clouds/{public_cloud_id}"
	projectPath = cloudPath + "/projects/{public_cloud_project_id}"
	kaasPath    = projectPath + "/kaas/{kaas_id}"
	dbaasPath   = projectPath + "/dbaas/{dbaas_id}"
)

var bind = infomaniak.Bind

// scope binds the placeholders of a nested path: the cloud, then the project,
// then any resource ids in order.
func scope(names ...string) []infomaniak.ParamBinding {
	out := make([]infomaniak.ParamBinding, len(names))
	for i, name := range names {
		out[i] = bind(name, "path_"+name)
	}
	return out
}

var (
	cloud   = scope("public_cloud_id")
	project = scope("public_cloud_id", "public_cloud_project_id")
)

// Definitions returns the Public Cloud operation table.
func Definitions() []infomaniak.OperationDefinition {
	return []infomaniak.OperationDefinition{
		// Public clouds
		{
			Resource:                "Public Clouds",
			Key:                     "List Public Clouds",
			Method:                  infomaniak.MethodGet,
			Path:                    "/1/public_clouds",
			Pagination:              infomaniak.PaginationPagePerPage,
			QueryParams:             []infomaniak.ParamBinding{bind("account_id", "query_account_id")},
			OptionalQueryCollection: queryCollection,
		},
		{
			Resource:                "Public Clouds",
			Key:                     "Display A Public Cloud",
			Method:                  infomaniak.MethodGet,
			Path:                    cloudPath,
			PathParams:              cloud,
			OptionalQueryCollection: queryCollection,
		},

		// Projects
		{
			Resource:                "Projects",
			Key:                     "List Projects",
			Method:                  infomaniak.MethodGet,
			Path:                    cloudPath + "/projects",
			Pagination:              infomaniak.PaginationPagePerPage,
			PathParams:              cloud,
			OptionalQueryCollection: queryCollection,
		},
		{
			Resource:   "Projects",
			Key:        "Create A Project",
			Method:     infomaniak.MethodPost,
			Path:       cloudPath + "/projects",
			PathParams: cloud,
			BodyFields: []infomaniak.ParamBinding{
				bind("name", "body_name"),
				bind("user_description", "body_user_description"),
				bind("user_password", "body_user_password"),
			},
			OptionalBodyCollection: bodyCollection,
		},
		{
			Resource:   "Projects",
			Key:        "Display A Project",
			Method:     infomaniak.MethodGet,
			Path:       projectPath,
			PathParams: project,
		},
		{
			Resource:               "Projects",
			Key:                    "Update A Project",
			Method:                 infomaniak.MethodPatch,
			Path:                   projectPath,
			PathParams:             project,
			OptionalBodyCollection: bodyCollection,
		},
		{
			Resource:   "Projects",
			Key:        "Delete A Project",
			Method:     infomaniak.MethodDelete,
			Path:       projectPath,
			PathParams: project,
		},

		// Users
		{
			Resource:   "Users",
			Key:        "List Users",
			Method:     infomaniak.MethodGet,
			Path:       projectPath + "/users",
			Pagination: infomaniak.PaginationPagePerPage,
			PathParams: project,
		},
		{
			Resource:   "Users",
			Key:        "Create A User",
			Method:     infomaniak.MethodPost,
			Path:       projectPath + "/users",
			PathParams: project,
			BodyFields: []infomaniak.ParamBinding{
				bind("password", "body_password"),
				bind("description", "body_description"),
			},
		},
		{
			Resource:   "Users",
			Key:        "Delete A User",
			Method:     infomaniak.MethodDelete,
			Path:       projectPath + "/users/{user_id}",
			PathParams: scope("public_cloud_id", "public_cloud_project_id", "user_id"),
		},

		// Kubernetes service
		{
			Resource:   "KaaS",
			Key:        "List Clusters",
			Method:     infomaniak.MethodGet,
			Path:       projectPath + "/kaas",
			Pagination: infomaniak.PaginationPagePerPage,
			PathParams: project,
		},
		{
			Resource:    "KaaS",
			Key:         "Create A Cluster",
			Description: "Create a managed Kubernetes cluster in a project",
			Method:      infomaniak.MethodPost,
			Path:        projectPath + "/kaas",
			PathParams:  project,
			BodyFields: []infomaniak.ParamBinding{
				bind("name", "body_name"),
				bind("pack_id", "body_pack_id"),
				bind("region", "body_region"),
				bind("kubernetes_version", "body_kubernetes_version"),
			},
			OptionalBodyCollection: bodyCollection,
		},
		{
			Resource:   "KaaS",
			Key:        "Display A Cluster",
			Method:     infomaniak.MethodGet,
			Path:       kaasPath,
			PathParams: scope("public_cloud_id", "public_cloud_project_id", "kaas_id"),
		},
		{
			Resource:               "KaaS",
			Key:                    "Update A Cluster",
			Method:                 infomaniak.MethodPatch,
			Path:                   kaasPath,
			PathParams:             scope("public_cloud_id", "public_cloud_project_id", "kaas_id"),
			OptionalBodyCollection: bodyCollection,
		},
		{
			Resource:   "KaaS",
			Key:        "Delete A Cluster",
			Method:     infomaniak.MethodDelete,
			Path:       kaasPath,
			PathParams: scope("public_cloud_id", "public_cloud_project_id", "kaas_id"),
		},
		{
			Resource:   "KaaS",
			Key:        "Download Kubeconfig",
			Method:     infomaniak.MethodGet,
			Path:       kaasPath + "/kube_config",
			PathParams: scope("public_cloud_id", "public_cloud_project_id", "kaas_id"),
		},
		{
			Resource:   "KaaS",
			Key:        "List Instance Pools",
			Method:     infomaniak.MethodGet,
			Path:       kaasPath + "/instance_pools",
			Pagination: infomaniak.PaginationPagePerPage,
			PathParams: scope("public_cloud_id", "public_cloud_project_id", "kaas_id"),
		},
		{
			Resource:   "KaaS",
			Key:        "Create An Instance Pool",
			Method:     infomaniak.MethodPost,
			Path:       kaasPath + "/instance_pools",
			PathParams: scope("public_cloud_id", "public_cloud_project_id", "kaas_id"),
			BodyFields: []infomaniak.ParamBinding{
				bind("name", "body_name"),
				bind("flavor_name", "body_flavor_name"),
				bind("availability_zone", "body_availability_zone"),
				bind("minimum_instances", "body_minimum_instances"),
				bind("maximum_instances", "body_maximum_instances"),
			},
			OptionalBodyCollection: bodyCollection,
		},
		{
			Resource: "KaaS",
			Key:      "Delete An Instance Pool",
			Method:   infomaniak.MethodDelete,
			Path:     kaasPath + "/instance_pools/{instance_pool_id}",
			PathParams: scope("public_cloud_id", "public_cloud_project_id", "kaas_id",
				"instance_pool_id"),
		},
		{
			Resource:                "KaaS",
			Key:                     "List Packs",
			Method:                  infomaniak.MethodGet,
			Path:                    "/1/public_clouds/kaas/packs",
			OptionalQueryCollection: queryCollection,
		},
		{
			Resource: "KaaS",
			Key:      "List Regions",
			Method:   infomaniak.MethodGet,
			Path:     "/1/public_clouds/kaas/regions",
		},
		{
			Resource: "KaaS",
			Key:      "List Versions",
			Method:   infomaniak.MethodGet,
			Path:     "/1/public_clouds/kaas/versions",
		},

		// Database service
		{
			Resource:   "DBaaS",
			Key:        "List Databases",
			Method:     infomaniak.MethodGet,
			Path:       projectPath + "/dbaas",
			Pagination: infomaniak.PaginationPagePerPage,
			PathParams: project,
		},
		{
			Resource:   "DBaaS",
			Key:        "Create A Database",
			Method:     infomaniak.MethodPost,
			Path:       projectPath + "/dbaas",
			PathParams: project,
			BodyFields: []infomaniak.ParamBinding{
				bind("name", "body_name"),
				bind("type", "body_type"),
				bind("version", "body_version"),
				bind("pack_id", "body_pack_id"),
				bind("region", "body_region"),
			},
			OptionalBodyCollection: bodyCollection,
		},
		{
			Resource:   "DBaaS",
			Key:        "Display A Database",
			Method:     infomaniak.MethodGet,
			Path:       dbaasPath,
			PathParams: scope("public_cloud_id", "public_cloud_project_id", "dbaas_id"),
		},
		{
			Resource:   "DBaaS",
			Key:        "Delete A Database",
			Method:     infomaniak.MethodDelete,
			Path:       dbaasPath,
			PathParams: scope("public_cloud_id", "public_cloud_project_id", "dbaas_id"),
		},
		{
			Resource:   "DBaaS",
			Key:        "List Database Packs",
			Method:     infomaniak.MethodGet,
			Path:       "/1/public_clouds/dbaas/packs",
			Pagination: infomaniak.PaginationLimitSkip,
		},
	}
}

func NewRegistry() (*infomaniak.Registry, error) {
	return infomaniak.NewRegistry(NodeName, Definitions())
}
