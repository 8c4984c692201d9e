package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Teaching Load API",
        "description": "Books weekly class slots and detects instructor, room and section conflicts.",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Bookings", "description": "Conflict-checked schedule bookings"},
        {"name": "Directory", "description": "Instructor, course, program and room lookups"},
        {"name": "Timetables", "description": "Room timetables and instructor load"}
    ],
    "paths": {
        "/bookings": {
            "post": {
                "tags": ["Bookings"],
                "summary": "Commit a booking",
                "description": "Validates the booking, rejects it when any interval collides with a committed entry, otherwise stores the header and all entries atomically.",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateBookingRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Schedule conflict", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "429": {"description": "Rate limited", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/bookings/check": {
            "post": {
                "tags": ["Bookings"],
                "summary": "Preview conflicts without committing",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateBookingRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ConflictCheckResponse"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/bookings/{id}": {
            "get": {
                "tags": ["Bookings"],
                "summary": "Get a committed booking",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/instructors": {
            "get": {
                "tags": ["Directory"],
                "summary": "Search instructors",
                "parameters": [
                    {"name": "q", "in": "query", "type": "string"},
                    {"name": "filter", "in": "query", "type": "string", "enum": ["ALL", "REGULAR", "COS"]}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Unknown filter", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/instructors/{id}": {
            "get": {
                "tags": ["Directory"],
                "summary": "Get an instructor",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}
            }
        },
        "/instructors/load": {
            "get": {
                "tags": ["Timetables"],
                "summary": "Weekly teaching load of an instructor",
                "parameters": [
                    {"name": "name", "in": "query", "required": true, "type": "string"},
                    {"name": "semester", "in": "query", "type": "string"}
                ],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Missing name"}}
            }
        },
        "/courses": {
            "get": {
                "tags": ["Directory"],
                "summary": "Search courses by code or name",
                "parameters": [{"name": "q", "in": "query", "type": "string"}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/courses/{id}": {
            "get": {
                "tags": ["Directory"],
                "summary": "Get a course",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}
            }
        },
        "/programs": {
            "get": {
                "tags": ["Directory"],
                "summary": "Search programs",
                "parameters": [{"name": "q", "in": "query", "type": "string"}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/programs/{id}": {
            "get": {
                "tags": ["Directory"],
                "summary": "Get a program",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}
            }
        },
        "/rooms": {
            "get": {
                "tags": ["Directory"],
                "summary": "Search rooms, at most ten results",
                "parameters": [
                    {"name": "q", "in": "query", "type": "string"},
                    {"name": "building", "in": "query", "type": "string"},
                    {"name": "campus", "in": "query", "type": "string"}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/rooms/{id}": {
            "get": {
                "tags": ["Directory"],
                "summary": "Get a room",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}
            }
        },
        "/timetables/options": {
            "get": {
                "tags": ["Timetables"],
                "summary": "Rooms and semesters available for timetable views",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/timetables/rooms": {
            "get": {
                "tags": ["Timetables"],
                "summary": "Timetable of one room",
                "parameters": [
                    {"name": "room", "in": "query", "required": true, "type": "string"},
                    {"name": "semester", "in": "query", "type": "string"}
                ],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Missing room"}}
            }
        },
        "/timetables/rooms/export": {
            "get": {
                "tags": ["Timetables"],
                "summary": "Download a room timetable",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "room", "in": "query", "required": true, "type": "string"},
                    {"name": "semester", "in": "query", "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {"200": {"description": "File"}, "400": {"description": "Unsupported format"}}
            }
        }
    },
    "definitions": {
        "IntervalPayload": {
            "type": "object",
            "properties": {
                "day": {"type": "string", "enum": ["Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"]},
                "start_time": {"type": "string", "example": "08:00"},
                "end_time": {"type": "string", "example": "09:30"}
            }
        },
        "CreateBookingRequest": {
            "type": "object",
            "required": ["instructor_name", "course_code", "credit_hours", "year_level", "schedules"],
            "properties": {
                "instructor_name": {"type": "string"},
                "course_code": {"type": "string"},
                "course_name": {"type": "string"},
                "credit_hours": {"type": "integer"},
                "semester": {"type": "string"},
                "program_name": {"type": "string"},
                "program_code": {"type": "string"},
                "year_level": {"type": "string"},
                "section": {"type": "string"},
                "shift": {"type": "string"},
                "room_number": {"type": "string"},
                "room_type": {"type": "string"},
                "building_name": {"type": "string"},
                "campus_name": {"type": "string"},
                "bachelor_degree": {"type": "string"},
                "master_degree": {"type": "string"},
                "schedules": {"type": "array", "items": {"$ref": "#/definitions/IntervalPayload"}}
            }
        },
        "ScheduleConflict": {
            "type": "object",
            "properties": {
                "schedule_id": {"type": "string"},
                "entry_id": {"type": "string"},
                "instructor_name": {"type": "string"},
                "course_code": {"type": "string"},
                "room_number": {"type": "string"},
                "day": {"type": "string"},
                "start_time": {"type": "string"},
                "end_time": {"type": "string"},
                "conflict_field": {"type": "string", "enum": ["instructor_name", "room_number", "program_section_year_shift"]},
                "conflict_message": {"type": "string"}
            }
        },
        "ConflictCheckResponse": {
            "type": "object",
            "properties": {
                "has_conflicts": {"type": "boolean"},
                "conflicts": {"type": "array", "items": {"$ref": "#/definitions/ScheduleConflict"}}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"},
                "details": {"type": "object"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
