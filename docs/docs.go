// Package docs registers the OpenAPI description served under /swagger/.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/resume/parse": {
            "post": {
                "description": "Upload a resume (PDF/DOCX/TXT) and extract name, email, phone and skills",
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["resume"],
                "summary": "Upload and parse a resume",
                "parameters": [
                    {"type": "file", "description": "Resume file (PDF or DOCX)", "name": "file", "in": "formData", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.Result"}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "500": {"description": "Internal Server Error", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/resume/jobs": {
            "post": {
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["jobs"],
                "summary": "Submit an async parse job",
                "parameters": [
                    {"type": "file", "description": "Resume file (PDF or DOCX)", "name": "file", "in": "formData", "required": true}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/api.JobState"}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/resume/jobs/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["jobs"],
                "summary": "Get job status",
                "parameters": [
                    {"type": "string", "description": "Job ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.JobState"}},
                    "404": {"description": "Not Found", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/resumes": {
            "get": {
                "description": "Search stored results by name, email and skills (requires DATABASE_URL)",
                "produces": ["application/json"],
                "tags": ["resumes"],
                "summary": "Search parsed resumes",
                "parameters": [
                    {"type": "string", "description": "Name contains", "name": "name", "in": "query"},
                    {"type": "string", "description": "Email contains", "name": "email", "in": "query"},
                    {"type": "array", "items": {"type": "string"}, "collectionFormat": "multi", "description": "Skill (repeatable, any matches)", "name": "skill", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/storage.ParsedResume"}}},
                    "503": {"description": "Service Unavailable", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/resumes/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["resumes"],
                "summary": "Get a parsed resume",
                "parameters": [
                    {"type": "string", "description": "Result ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/storage.ParsedResume"}},
                    "404": {"description": "Not Found", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/download/{format}": {
            "get": {
                "produces": ["text/csv", "application/json"],
                "tags": ["resume"],
                "summary": "Download latest result",
                "parameters": [
                    {"type": "string", "description": "csv or json", "name": "format", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "file"}},
                    "404": {"description": "Not Found", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        }
    },
    "definitions": {
        "types.Result": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "filename": {"type": "string"},
                "digest": {"type": "string"},
                "name": {"type": "string"},
                "email": {"type": "string"},
                "phone": {"type": "string"},
                "skills": {"type": "array", "items": {"type": "string"}},
                "csv_path": {"type": "string"},
                "json_path": {"type": "string"},
                "cached": {"type": "boolean"}
            }
        },
        "api.JobState": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "filename": {"type": "string"},
                "status": {"type": "string", "enum": ["pending", "processing", "completed", "failed"]},
                "error": {"type": "string"},
                "result": {"$ref": "#/definitions/types.Result"},
                "created_at": {"type": "string"},
                "completed_at": {"type": "string"}
            }
        },
        "storage.ParsedResume": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "filename": {"type": "string"},
                "digest": {"type": "string"},
                "file_type": {"type": "string"},
                "name": {"type": "string"},
                "email": {"type": "string"},
                "phone": {"type": "string"},
                "skills": {"type": "array", "items": {"type": "string"}},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "Resume Parser API",
	Description:      "Extracts name, email, phone and skills from PDF/DOCX resumes",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
