// Package docs registers the OpenAPI document served at /swagger.
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
        "/artifacts": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["artifacts"],
                "summary": "Upload a PDF artifact",
                "parameters": [
                    {"type": "file", "description": "PDF file", "name": "file", "in": "formData", "required": true},
                    {"type": "string", "description": "Document kind", "name": "kind", "in": "formData", "required": true},
                    {"type": "integer", "description": "Subject id", "name": "subject_id", "in": "formData", "required": true},
                    {"type": "integer", "description": "Actor id", "name": "actor_id", "in": "formData", "required": true}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/model.Artifact"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorPayload"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handler.errorPayload"}}
                }
            }
        },
        "/artifacts/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/pdf"],
                "tags": ["artifacts"],
                "summary": "Download an artifact",
                "parameters": [
                    {"type": "integer", "description": "Artifact id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "file"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorPayload"}}
                }
            }
        },
        "/artifacts/{id}/link": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["artifacts"],
                "summary": "Presign a direct download URL for an artifact",
                "parameters": [
                    {"type": "integer", "description": "Artifact id", "name": "id", "in": "path", "required": true},
                    {"type": "string", "description": "Link lifetime as a Go duration, e.g. 15m", "name": "expires_in", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.DownloadLink"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorPayload"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorPayload"}}
                }
            }
        },
        "/artifacts/{kind}/{subjectId}/{actorId}/exists": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["artifacts"],
                "summary": "Check whether an artifact exists",
                "parameters": [
                    {"type": "string", "description": "Document kind", "name": "kind", "in": "path", "required": true},
                    {"type": "integer", "description": "Subject id", "name": "subjectId", "in": "path", "required": true},
                    {"type": "integer", "description": "Actor id", "name": "actorId", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "boolean"}}}
                }
            }
        },
        "/artifacts/{subjectId}/{actorId}": {
            "delete": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["artifacts"],
                "summary": "Delete every artifact of a subject by an actor",
                "parameters": [
                    {"type": "integer", "description": "Subject id", "name": "subjectId", "in": "path", "required": true},
                    {"type": "integer", "description": "Actor id", "name": "actorId", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "integer"}}}
                }
            }
        },
        "/forms/{kind}": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["multipart/form-data"],
                "produces": ["application/pdf"],
                "tags": ["forms"],
                "summary": "Generate, optionally sign, and store a form",
                "parameters": [
                    {"type": "string", "description": "medical_form or psychological_form", "name": "kind", "in": "path", "required": true},
                    {"type": "string", "description": "remote or local", "name": "strategy", "in": "query"},
                    {"type": "string", "description": "JSON object of placeholder values", "name": "fields", "in": "formData", "required": true},
                    {"type": "integer", "description": "Subject id", "name": "subject_id", "in": "formData", "required": true},
                    {"type": "integer", "description": "Actor id, defaults to the caller", "name": "actor_id", "in": "formData"},
                    {"type": "file", "description": "Signature image (PNG or JPEG)", "name": "signature", "in": "formData"}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"type": "file"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorPayload"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handler.errorPayload"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/handler.errorPayload"}}
                }
            }
        },
        "/pdf/stamp": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Position comes from a named preset or from explicit page, x, y, width and height in points.",
                "consumes": ["multipart/form-data"],
                "produces": ["application/pdf"],
                "tags": ["forms"],
                "summary": "Stamp an image onto a PDF page",
                "parameters": [
                    {"type": "file", "description": "PDF document", "name": "pdf", "in": "formData", "required": true},
                    {"type": "file", "description": "PNG or JPEG image", "name": "image", "in": "formData", "required": true},
                    {"type": "string", "description": "medic_signature, psychologist_signature or psychometric_qr", "name": "preset", "in": "formData"},
                    {"type": "string", "description": "first, last or a 1-based page number", "name": "page", "in": "formData"},
                    {"type": "number", "description": "Lower-left x in points", "name": "x", "in": "formData"},
                    {"type": "number", "description": "Lower-left y in points", "name": "y", "in": "formData"},
                    {"type": "number", "description": "Box width in points", "name": "width", "in": "formData"},
                    {"type": "number", "description": "Box height in points", "name": "height", "in": "formData"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "file"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorPayload"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/handler.errorPayload"}}
                }
            }
        },
        "/subjects/{subjectId}/artifacts": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["subjects"],
                "summary": "List a subject's artifacts",
                "parameters": [
                    {"type": "integer", "description": "Subject id", "name": "subjectId", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.ArtifactList"}}
                }
            }
        },
        "/subjects/{subjectId}/artifacts/latest": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["subjects"],
                "summary": "Most recent artifact of a subject",
                "parameters": [
                    {"type": "integer", "description": "Subject id", "name": "subjectId", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.Artifact"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorPayload"}}
                }
            }
        },
        "/subjects/{subjectId}/archive": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Stored forms and documents-service files are streamed entry by entry.",
                "produces": ["application/zip"],
                "tags": ["subjects"],
                "summary": "Download every document of a subject as a zip",
                "parameters": [
                    {"type": "integer", "description": "Subject id", "name": "subjectId", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "file"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorPayload"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/handler.errorPayload"}}
                }
            }
        },
        "/subjects/{subjectId}/documents/{kind}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/pdf"],
                "tags": ["subjects"],
                "summary": "Fetch a document owned by the documents service",
                "parameters": [
                    {"type": "integer", "description": "Subject id", "name": "subjectId", "in": "path", "required": true},
                    {"type": "string", "description": "credential or psychometric_file", "name": "kind", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "file"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorPayload"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/handler.errorPayload"}}
                }
            }
        },
        "/health": {
            "get": {
                "description": "Checks database connectivity.",
                "produces": ["application/json"],
                "tags": ["ops"],
                "summary": "Readiness probe",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handler.errorPayload"}}
                }
            }
        },
        "/healthz": {
            "get": {
                "tags": ["ops"],
                "summary": "Liveness probe",
                "responses": {"200": {"description": "OK"}}
            }
        }
    },
    "definitions": {
        "handler.ArtifactList": {
            "type": "object",
            "properties": {
                "items": {"type": "array", "items": {"$ref": "#/definitions/model.Artifact"}},
                "total": {"type": "integer"}
            }
        },
        "handler.errorEnvelope": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "handler.errorPayload": {
            "type": "object",
            "properties": {
                "error": {"$ref": "#/definitions/handler.errorEnvelope"},
                "request_id": {"type": "string"}
            }
        },
        "model.Artifact": {
            "type": "object",
            "properties": {
                "actor_id": {"type": "integer"},
                "content_type": {"type": "string"},
                "created_at": {"type": "string"},
                "id": {"type": "integer"},
                "kind": {"type": "string"},
                "size": {"type": "integer"},
                "subject_id": {"type": "integer"}
            }
        },
        "model.DownloadLink": {
            "type": "object",
            "properties": {
                "artifact_id": {"type": "integer"},
                "expires_at": {"type": "string"},
                "url": {"type": "string"}
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
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Certification Documents API",
	Description:      "Generates, signs, stores and bundles driver certification documents.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
