// Package docs registers the OpenAPI description served at /v1/swagger.
// Regenerate with: swag init -g cmd/api/main.go
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["system"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/candidates/me": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["candidates"],
                "summary": "Get candidate profile",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["candidates"],
                "summary": "Create or update candidate profile",
                "parameters": [
                    {"description": "Profile JSON", "name": "profile", "in": "body", "required": true, "schema": {"$ref": "#/definitions/v1.SaveProfileRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["candidates"],
                "summary": "Delete candidate profile",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/candidates/me/resume": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["candidates"],
                "summary": "Upload résumé",
                "parameters": [
                    {"type": "file", "description": "Résumé file", "name": "file", "in": "formData", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.Response"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/candidates/me/matches": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["candidates"],
                "summary": "List my matches",
                "parameters": [
                    {"type": "string", "name": "status", "in": "query"},
                    {"type": "integer", "name": "min_score", "in": "query"},
                    {"type": "integer", "name": "limit", "in": "query"},
                    {"type": "string", "name": "cursor", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/candidates/{id}/matches/evaluate": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["matches"],
                "summary": "Evaluate a candidate against the caller's jobs",
                "description": "Recruiters score against their own postings, admins against every job",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/jobs": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["jobs"],
                "summary": "List jobs",
                "parameters": [
                    {"type": "integer", "name": "page", "in": "query"},
                    {"type": "integer", "name": "page_size", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["jobs"],
                "summary": "Create a new job",
                "parameters": [
                    {"description": "Job JSON", "name": "job", "in": "body", "required": true, "schema": {"$ref": "#/definitions/v1.JobRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/response.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.Response"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/jobs/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["jobs"],
                "summary": "Get job details",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["jobs"],
                "summary": "Update a job",
                "description": "Update a job posting (owner or admin). Changing required_skills rescores pending and interview_scheduled matches; closed matches keep their score.",
                "parameters": [
                    {"type": "integer", "name": "id", "in": "path", "required": true},
                    {"description": "Job JSON", "name": "job", "in": "body", "required": true, "schema": {"$ref": "#/definitions/v1.JobRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["jobs"],
                "summary": "Delete a job",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/jobs/{id}/matches": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["matches"],
                "summary": "Ranked matches of a job",
                "parameters": [
                    {"type": "integer", "name": "id", "in": "path", "required": true},
                    {"type": "string", "name": "status", "in": "query"},
                    {"type": "integer", "name": "min_score", "in": "query"},
                    {"type": "integer", "name": "limit", "in": "query"},
                    {"type": "string", "name": "cursor", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/jobs/{id}/matches/evaluate": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["matches"],
                "summary": "Evaluate a job against every candidate",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/jobs/{id}/matches/export": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "text/csv"],
                "tags": ["matches"],
                "summary": "Export matches of a job",
                "parameters": [
                    {"type": "integer", "name": "id", "in": "path", "required": true},
                    {"type": "string", "name": "format", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "file"}}
                }
            }
        },
        "/jobs/{id}/shortlist": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["matches"],
                "summary": "Shortlist of a job",
                "parameters": [
                    {"type": "integer", "name": "id", "in": "path", "required": true},
                    {"type": "integer", "name": "min_score", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/matches": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["matches"],
                "summary": "Score one candidate against one job",
                "parameters": [
                    {"description": "Pair", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/v1.EvaluatePairRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/matches/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["matches"],
                "summary": "Get a match",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/matches/{id}/status": {
            "patch": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["matches"],
                "summary": "Move a match through its lifecycle",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"description": "New status", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/v1.UpdateMatchStatusRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/response.Response"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/matches/{id}/interviews": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["interviews"],
                "summary": "List interviews of a match",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["interviews"],
                "summary": "Schedule an interview",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"description": "Interview", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/domain.ScheduleInterviewRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/response.Response"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/interviews/{id}": {
            "patch": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["interviews"],
                "summary": "Complete or cancel an interview",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"description": "New status", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/v1.UpdateInterviewStatusRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/admin/stats": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "Dashboard statistics",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        }
    },
    "definitions": {
        "response.Response": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "message": {"type": "string"},
                "data": {},
                "error": {},
                "request_id": {"type": "string"}
            }
        },
        "v1.SaveProfileRequest": {
            "type": "object",
            "properties": {
                "full_name": {"type": "string"},
                "email": {"type": "string"},
                "skills": {"type": "array", "items": {"type": "string"}},
                "education": {"type": "array", "items": {"type": "object"}},
                "experience": {"type": "array", "items": {"type": "object"}},
                "certifications": {"type": "array", "items": {"type": "string"}}
            }
        },
        "v1.JobRequest": {
            "type": "object",
            "required": ["company", "required_skills", "title"],
            "properties": {
                "title": {"type": "string"},
                "company": {"type": "string"},
                "description": {"type": "string"},
                "required_skills": {"type": "array", "items": {"type": "string"}}
            }
        },
        "v1.EvaluatePairRequest": {
            "type": "object",
            "required": ["candidate_id", "job_id"],
            "properties": {
                "candidate_id": {"type": "integer"},
                "job_id": {"type": "integer"}
            }
        },
        "v1.UpdateMatchStatusRequest": {
            "type": "object",
            "required": ["status"],
            "properties": {
                "status": {"type": "string", "enum": ["pending", "interview_scheduled", "accepted", "rejected", "hired"]}
            }
        },
        "v1.UpdateInterviewStatusRequest": {
            "type": "object",
            "required": ["status"],
            "properties": {
                "status": {"type": "string", "enum": ["scheduled", "completed", "cancelled"]}
            }
        },
        "domain.ScheduleInterviewRequest": {
            "type": "object",
            "required": ["duration_minutes", "interview_type", "scheduled_time"],
            "properties": {
                "scheduled_time": {"type": "string"},
                "duration_minutes": {"type": "integer", "minimum": 15, "maximum": 480},
                "interview_type": {"type": "string", "enum": ["video", "phone", "in_person"]}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/v1",
	Schemes:          []string{},
	Title:            "TalentMatch Backend API",
	Description:      "Candidate to job matching engine using Clean Architecture.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
