package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Health Program API",
        "description": "Client, program and enrollment management for health programs",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Auth", "description": "Token issue and account management"},
        {"name": "Programs", "description": "Health program catalogue"},
        {"name": "Clients", "description": "Client registry, profiles and exports"},
        {"name": "Enrollments", "description": "Client enrollment in programs"},
        {"name": "Dashboard", "description": "Summary statistics"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"},
                    "503": {"description": "Database unreachable"}
                }
            }
        },
        "/api/auth/login/": {
            "post": {
                "tags": ["Auth"],
                "summary": "Authenticate user",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/AuthResponse"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ErrorEnvelope"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/ErrorEnvelope"}},
                    "429": {"description": "Too many requests"}
                }
            }
        },
        "/api/auth/register/": {
            "post": {
                "tags": ["Auth"],
                "summary": "Register user",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RegisterRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/AuthResponse"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ErrorEnvelope"}},
                    "429": {"description": "Too many requests"}
                }
            }
        },
        "/api/auth/refresh/": {
            "post": {
                "tags": ["Auth"],
                "summary": "Rotate refresh token",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RefreshTokenRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/RefreshTokenResponse"}},
                    "401": {"description": "Invalid refresh token", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            }
        },
        "/api/auth/logout/": {
            "post": {
                "tags": ["Auth"],
                "summary": "Revoke refresh token",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "schema": {"$ref": "#/definitions/RefreshTokenRequest"}}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            }
        },
        "/api/auth/change-password/": {
            "post": {
                "tags": ["Auth"],
                "summary": "Change password",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ChangePasswordRequest"}}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            }
        },
        "/api/auth/me/": {
            "get": {
                "tags": ["Auth"],
                "summary": "Current user",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/UserInfo"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            }
        },
        "/api/programs/": {
            "get": {
                "tags": ["Programs"],
                "summary": "List programs",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "ordering", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Page"}},
                    "404": {"description": "Invalid page", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            },
            "post": {
                "tags": ["Programs"],
                "summary": "Create program",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ProgramRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/Program"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            }
        },
        "/api/programs/{id}/": {
            "parameters": [
                {"name": "id", "in": "path", "required": true, "type": "string", "format": "uuid"}
            ],
            "get": {
                "tags": ["Programs"],
                "summary": "Get program",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Program"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            },
            "put": {
                "tags": ["Programs"],
                "summary": "Replace program",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ProgramRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Program"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ErrorEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            },
            "patch": {
                "tags": ["Programs"],
                "summary": "Update program fields",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ProgramRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Program"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Programs"],
                "summary": "Delete program and its enrollments",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            }
        },
        "/api/clients/": {
            "get": {
                "tags": ["Clients"],
                "summary": "List clients",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "ordering", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Page"}},
                    "404": {"description": "Invalid page", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            },
            "post": {
                "tags": ["Clients"],
                "summary": "Register client",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ClientRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/Client"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            }
        },
        "/api/clients/export/": {
            "get": {
                "tags": ["Clients"],
                "summary": "Export clients",
                "security": [{"BearerAuth": []}],
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "ordering", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File attachment"},
                    "400": {"description": "Unsupported format", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            }
        },
        "/api/clients/{id}/": {
            "parameters": [
                {"name": "id", "in": "path", "required": true, "type": "string", "format": "uuid"}
            ],
            "get": {
                "tags": ["Clients"],
                "summary": "Get client",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Client"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            },
            "put": {
                "tags": ["Clients"],
                "summary": "Replace client",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ClientRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Client"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ErrorEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            },
            "patch": {
                "tags": ["Clients"],
                "summary": "Update client fields",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ClientRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Client"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Clients"],
                "summary": "Delete client and its enrollments",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            }
        },
        "/api/clients/{id}/profile/": {
            "get": {
                "tags": ["Clients"],
                "summary": "Client profile with enrollments",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string", "format": "uuid"}
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "headers": {"X-Cache": {"type": "string", "description": "HIT or MISS"}},
                        "schema": {"$ref": "#/definitions/ClientProfile"}
                    },
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            }
        },
        "/api/enrollments/": {
            "get": {
                "tags": ["Enrollments"],
                "summary": "List enrollments",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "client", "in": "query", "type": "string", "format": "uuid"},
                    {"name": "program", "in": "query", "type": "string", "format": "uuid"},
                    {"name": "ordering", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Page"}},
                    "400": {"description": "Invalid filter", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            },
            "post": {
                "tags": ["Enrollments"],
                "summary": "Enroll client in program",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/EnrollmentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/Enrollment"}},
                    "400": {"description": "Validation error or duplicate enrollment", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            }
        },
        "/api/enrollments/export/": {
            "get": {
                "tags": ["Enrollments"],
                "summary": "Export enrollments",
                "security": [{"BearerAuth": []}],
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]},
                    {"name": "client", "in": "query", "type": "string", "format": "uuid"},
                    {"name": "program", "in": "query", "type": "string", "format": "uuid"}
                ],
                "responses": {
                    "200": {"description": "File attachment"},
                    "400": {"description": "Unsupported format", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            }
        },
        "/api/enrollments/{id}/": {
            "parameters": [
                {"name": "id", "in": "path", "required": true, "type": "string", "format": "uuid"},
                {"name": "client", "in": "query", "type": "string", "format": "uuid"},
                {"name": "program", "in": "query", "type": "string", "format": "uuid"}
            ],
            "get": {
                "tags": ["Enrollments"],
                "summary": "Get enrollment",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Enrollment"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            },
            "put": {
                "tags": ["Enrollments"],
                "summary": "Replace enrollment",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/EnrollmentRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Enrollment"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ErrorEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            },
            "patch": {
                "tags": ["Enrollments"],
                "summary": "Update enrollment fields",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/EnrollmentRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Enrollment"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Enrollments"],
                "summary": "Delete enrollment",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            }
        },
        "/api/dashboard/": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Dashboard summary",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/DashboardStats"}}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "required": ["username", "password"],
            "properties": {
                "username": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "RegisterRequest": {
            "type": "object",
            "required": ["username", "password"],
            "properties": {
                "username": {"type": "string", "maxLength": 150},
                "email": {"type": "string", "format": "email"},
                "password": {"type": "string", "minLength": 6},
                "first_name": {"type": "string"},
                "last_name": {"type": "string"}
            }
        },
        "RefreshTokenRequest": {
            "type": "object",
            "properties": {
                "refresh_token": {"type": "string"}
            }
        },
        "ChangePasswordRequest": {
            "type": "object",
            "required": ["old_password", "new_password"],
            "properties": {
                "old_password": {"type": "string"},
                "new_password": {"type": "string", "minLength": 6}
            }
        },
        "UserInfo": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "username": {"type": "string"},
                "email": {"type": "string"},
                "first_name": {"type": "string"},
                "last_name": {"type": "string"},
                "is_staff": {"type": "boolean"}
            }
        },
        "AuthResponse": {
            "type": "object",
            "properties": {
                "access_token": {"type": "string"},
                "refresh_token": {"type": "string"},
                "token_type": {"type": "string"},
                "expires_in": {"type": "integer"},
                "issued_at": {"type": "string", "format": "date-time"},
                "user": {"$ref": "#/definitions/UserInfo"}
            }
        },
        "RefreshTokenResponse": {
            "type": "object",
            "properties": {
                "access_token": {"type": "string"},
                "refresh_token": {"type": "string"},
                "token_type": {"type": "string"},
                "expires_in": {"type": "integer"},
                "issued_at": {"type": "string", "format": "date-time"}
            }
        },
        "ProgramRequest": {
            "type": "object",
            "required": ["name", "description"],
            "properties": {
                "name": {"type": "string", "maxLength": 100},
                "description": {"type": "string"}
            }
        },
        "Program": {
            "type": "object",
            "properties": {
                "id": {"type": "string", "format": "uuid"},
                "name": {"type": "string"},
                "description": {"type": "string"},
                "created_at": {"type": "string", "format": "date-time"},
                "updated_at": {"type": "string", "format": "date-time"}
            }
        },
        "ClientRequest": {
            "type": "object",
            "required": ["first_name", "last_name", "date_of_birth", "gender", "contact_number", "email", "address"],
            "properties": {
                "first_name": {"type": "string", "maxLength": 100},
                "last_name": {"type": "string", "maxLength": 100},
                "date_of_birth": {"type": "string", "format": "date"},
                "gender": {"type": "string", "enum": ["M", "F", "O"]},
                "contact_number": {"type": "string"},
                "email": {"type": "string", "format": "email"},
                "address": {"type": "string"}
            }
        },
        "Client": {
            "type": "object",
            "properties": {
                "id": {"type": "string", "format": "uuid"},
                "first_name": {"type": "string"},
                "last_name": {"type": "string"},
                "date_of_birth": {"type": "string", "format": "date"},
                "gender": {"type": "string"},
                "contact_number": {"type": "string"},
                "email": {"type": "string"},
                "address": {"type": "string"},
                "created_at": {"type": "string", "format": "date-time"},
                "updated_at": {"type": "string", "format": "date-time"}
            }
        },
        "ProfileEnrollment": {
            "type": "object",
            "properties": {
                "id": {"type": "string", "format": "uuid"},
                "program_id": {"type": "string", "format": "uuid"},
                "program_name": {"type": "string"},
                "program_description": {"type": "string"},
                "enrollment_date": {"type": "string", "format": "date"},
                "status": {"type": "string"},
                "notes": {"type": "string"}
            }
        },
        "ClientProfile": {
            "type": "object",
            "allOf": [{"$ref": "#/definitions/Client"}],
            "properties": {
                "enrollments": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/ProfileEnrollment"}
                }
            }
        },
        "EnrollmentRequest": {
            "type": "object",
            "required": ["client", "program", "enrollment_date"],
            "properties": {
                "client": {"type": "string", "format": "uuid"},
                "program": {"type": "string", "format": "uuid"},
                "enrollment_date": {"type": "string", "format": "date"},
                "status": {"type": "string", "enum": ["active", "completed", "terminated"]},
                "notes": {"type": "string"}
            }
        },
        "Enrollment": {
            "type": "object",
            "properties": {
                "id": {"type": "string", "format": "uuid"},
                "client": {"type": "string", "format": "uuid"},
                "program": {"type": "string", "format": "uuid"},
                "client_name": {"type": "string"},
                "program_name": {"type": "string"},
                "enrollment_date": {"type": "string", "format": "date"},
                "status": {"type": "string"},
                "notes": {"type": "string"},
                "created_at": {"type": "string", "format": "date-time"},
                "updated_at": {"type": "string", "format": "date-time"}
            }
        },
        "DashboardStats": {
            "type": "object",
            "properties": {
                "total_clients": {"type": "integer"},
                "total_programs": {"type": "integer"},
                "total_enrollments": {"type": "integer"},
                "enrollments_by_status": {"type": "object", "additionalProperties": {"type": "integer"}},
                "recent_clients": {"type": "array", "items": {"$ref": "#/definitions/Client"}},
                "recent_programs": {"type": "array", "items": {"$ref": "#/definitions/Program"}},
                "generated_at": {"type": "string", "format": "date-time"}
            }
        },
        "Page": {
            "type": "object",
            "properties": {
                "count": {"type": "integer"},
                "next": {"type": "string"},
                "previous": {"type": "string"},
                "results": {"type": "array", "items": {"type": "object"}}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"},
                "fields": {"type": "object", "additionalProperties": {"type": "array", "items": {"type": "string"}}}
            }
        },
        "ErrorEnvelope": {
            "type": "object",
            "properties": {
                "error": {"$ref": "#/definitions/APIError"}
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
