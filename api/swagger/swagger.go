package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Course Eligibility API",
        "description": "Decides whether courses and their enrolments can feed course completion analytics",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "security": [{"BearerAuth": []}],
    "tags": [
        {"name": "Eligibility", "description": "Course and enrolment sample gates"},
        {"name": "Observability", "description": "Health and metrics"}
    ],
    "paths": {
        "/courses/{id}/analysable": {
            "get": {
                "tags": ["Eligibility"],
                "summary": "Check whether a course can be analysed",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "mode", "in": "query", "type": "string", "enum": ["training", "prediction"]},
                    {"name": "lang", "in": "query", "type": "string", "enum": ["en", "id"]}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/AnalysableEnvelope"}},
                    "400": {"description": "Invalid mode", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Course not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/courses/{id}/samples": {
            "get": {
                "tags": ["Eligibility"],
                "summary": "Course verdict with per-enrolment sample validity",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "mode", "in": "query", "type": "string", "enum": ["training", "prediction"]},
                    {"name": "lang", "in": "query", "type": "string", "enum": ["en", "id"]}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ReportEnvelope"}},
                    "404": {"description": "Course not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/courses/{id}/eligibility/export": {
            "get": {
                "tags": ["Eligibility"],
                "summary": "Download the eligibility report of a course",
                "produces": ["text/csv", "application/pdf", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "mode", "in": "query", "type": "string", "enum": ["training", "prediction"]},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf", "xlsx"]}
                ],
                "responses": {
                    "200": {"description": "Export file", "schema": {"type": "file"}},
                    "400": {"description": "Unsupported format", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/courses/{id}/eligibility/cache": {
            "delete": {
                "tags": ["Eligibility"],
                "summary": "Drop cached verdicts and reports of a course (ADMIN)",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Invalidated"}
                }
            }
        },
        "/eligibility/evaluate": {
            "post": {
                "tags": ["Eligibility"],
                "summary": "Evaluate an inline course snapshot",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/EvaluateRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ReportEnvelope"}},
                    "400": {"description": "Invalid payload", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/eligibility/batches": {
            "post": {
                "tags": ["Eligibility"],
                "summary": "Queue evaluation of several courses",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/BatchRequest"}}
                ],
                "responses": {
                    "202": {"description": "Queued", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/eligibility/batches/{id}": {
            "get": {
                "tags": ["Eligibility"],
                "summary": "Batch progress and results",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Batch not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/metrics/summary": {
            "get": {
                "tags": ["Observability"],
                "summary": "Process metrics snapshot",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "Analysable": {
            "type": "object",
            "properties": {
                "course_id": {"type": "string"},
                "mode": {"type": "string", "enum": ["training", "prediction"]},
                "analysable": {"type": "boolean"},
                "reason": {"type": "string", "enum": ["completion_not_enabled", "not_yet_started", "no_students", "no_sections", "no_end_time", "end_before_start", "course_too_long", "already_finished", "not_yet_finished"]},
                "message": {"type": "string"},
                "evaluated_at": {"type": "string", "format": "date-time"}
            }
        },
        "SampleResult": {
            "type": "object",
            "properties": {
                "sample_id": {"type": "string"},
                "user_id": {"type": "string"},
                "time_start": {"type": "string", "format": "date-time"},
                "time_end": {"type": "string", "format": "date-time"},
                "valid": {"type": "boolean"}
            }
        },
        "SampleSummary": {
            "type": "object",
            "properties": {
                "total": {"type": "integer"},
                "valid": {"type": "integer"},
                "invalid": {"type": "integer"},
                "valid_ratio": {"type": "number"},
                "mean_enrolment_days": {"type": "number"},
                "median_enrolment_days": {"type": "number"},
                "max_enrolment_days": {"type": "number"}
            }
        },
        "Report": {
            "allOf": [
                {"$ref": "#/definitions/Analysable"},
                {
                    "type": "object",
                    "properties": {
                        "samples": {"type": "array", "items": {"$ref": "#/definitions/SampleResult"}},
                        "summary": {"$ref": "#/definitions/SampleSummary"}
                    }
                }
            ]
        },
        "CourseInput": {
            "type": "object",
            "required": ["id", "format"],
            "properties": {
                "id": {"type": "string"},
                "completion_enabled": {"type": "boolean"},
                "start_date": {"type": "string", "format": "date-time"},
                "end_date": {"type": "string", "format": "date-time"},
                "format": {"type": "string"},
                "has_sections": {"type": "boolean"},
                "student_count": {"type": "integer"}
            }
        },
        "SampleInput": {
            "type": "object",
            "required": ["id"],
            "properties": {
                "id": {"type": "string"},
                "user_id": {"type": "string"},
                "time_start": {"type": "string", "format": "date-time"},
                "time_end": {"type": "string", "format": "date-time"},
                "time_created": {"type": "string", "format": "date-time"}
            }
        },
        "EvaluateRequest": {
            "type": "object",
            "required": ["course"],
            "properties": {
                "mode": {"type": "string", "enum": ["training", "prediction"]},
                "now": {"type": "string", "format": "date-time"},
                "course": {"$ref": "#/definitions/CourseInput"},
                "samples": {"type": "array", "maxItems": 5000, "items": {"$ref": "#/definitions/SampleInput"}}
            }
        },
        "BatchRequest": {
            "type": "object",
            "required": ["course_ids"],
            "properties": {
                "mode": {"type": "string", "enum": ["training", "prediction"]},
                "course_ids": {"type": "array", "minItems": 1, "maxItems": 500, "items": {"type": "string"}}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "meta": {"type": "object"}
            }
        },
        "AnalysableEnvelope": {
            "type": "object",
            "properties": {
                "data": {"$ref": "#/definitions/Analysable"},
                "meta": {"type": "object"}
            }
        },
        "ReportEnvelope": {
            "type": "object",
            "properties": {
                "data": {"$ref": "#/definitions/Report"},
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
