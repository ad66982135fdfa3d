package meeting

import (
	"infomaniak-workers/internal/common/infomaniak"
)

const (
	queryCollection = "queryParameters"
	bodyCollection  = "bodyParameters"
)

var bind = infomaniak.Bind

func calendarEvent() []infomaniak.ParamBinding {
	return []infomaniak.ParamBinding{
		bind("calendar_id", "path_calendar_id"),
		bind("event_id", "path_event_id"),
	}
}

// Definitions returns the Meeting operation table: kMeet rooms and the
// calendar events they are attached to.
func Definitions() []infomaniak.OperationDefinition {
	return []infomaniak.OperationDefinition{
		// Rooms
		{
			Resource:    "Rooms",
			Key:         "Create A Room",
			Description: "Plan a kMeet conference and its calendar event",
			Method:      infomaniak.MethodPost,
			Path:        "/1/kmeet/rooms",
			BodyFields: []infomaniak.ParamBinding{
				bind("calendar_id", "body_calendar_id"),
				bind("starting_at", "body_starting_at"),
				bind("ending_at", "body_ending_at"),
				bind("timezone", "body_timezone"),
				bind("title", "body_title"),
			},
			OptionalBodyCollection: bodyCollection,
		},
		{
			Resource:   "Rooms",
			Key:        "Display Room Settings",
			Method:     infomaniak.MethodGet,
			Path:       "/1/kmeet/rooms/{room_id}/settings",
			PathParams: []infomaniak.ParamBinding{bind("room_id", "path_room_id")},
		},
		{
			Resource:               "Rooms",
			Key:                    "Update Room Settings",
			Method:                 infomaniak.MethodPatch,
			Path:                   "/1/kmeet/rooms/{room_id}/settings",
			PathParams:             []infomaniak.ParamBinding{bind("room_id", "path_room_id")},
			OptionalBodyCollection: bodyCollection,
		},

		// Calendars
		{
			Resource:                "Calendars",
			Key:                     "List Calendars",
			Method:                  infomaniak.MethodGet,
			Path:                    "/1/calendar/pim/calendar",
			Pagination:              infomaniak.PaginationPagePerPage,
			OptionalQueryCollection: queryCollection,
		},

		// Events
		{
			Resource:    "Events",
			Key:         "List Events",
			Description: "Events of one calendar between two dates",
			Method:      infomaniak.MethodGet,
			Path:        "/1/calendar/pim/event",
			QueryParams: []infomaniak.ParamBinding{
				bind("calendar_id", "query_calendar_id"),
				bind("from", "query_from"),
				bind("to", "query_to"),
			},
			OptionalQueryCollection: queryCollection,
		},
		{
			Resource:   "Events",
			Key:        "Create An Event",
			Method:     infomaniak.MethodPost,
			Path:       "/1/calendar/pim/calendar/{calendar_id}/event",
			PathParams: []infomaniak.ParamBinding{bind("calendar_id", "path_calendar_id")},
			BodyFields: []infomaniak.ParamBinding{
				bind("title", "body_title"),
				bind("start", "body_start"),
				bind("end", "body_end"),
			},
			OptionalBodyCollection: bodyCollection,
		},
		{
			Resource:                "Events",
			Key:                     "Display An Event",
			Method:                  infomaniak.MethodGet,
			Path:                    "/1/calendar/pim/calendar/{calendar_id}/event/{event_id}",
			PathParams:              calendarEvent(),
			OptionalQueryCollection: queryCollection,
		},
		{
			Resource:               "Events",
			Key:                    "Update An Event",
			Method:                 infomaniak.MethodPatch,
			Path:                   "/1/calendar/pim/calendar/{calendar_id}/event/{event_id}",
			PathParams:             calendarEvent(),
			OptionalBodyCollection: bodyCollection,
		},
		{
			Resource:   "Events",
			Key:        "Delete An Event",
			Method:     infomaniak.MethodDelete,
			Path:       "/1/calendar/pim/calendar/{calendar_id}/event/{event_id}",
			PathParams: calendarEvent(),
		},
	}
}

func NewRegistry() (*infomaniak.Registry, error) {
	return infomaniak.NewRegistry(NodeName, Definitions())
}
