// Package docs registers the OpenAPI description served under /swagger.
// Regenerate with: swag init -g main.go
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
        "/": {
            "get": {
                "produces": ["application/json"],
                "tags": ["healthcheck"],
                "summary": "Healthcheck",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/raffles/active": {
            "get": {
                "produces": ["application/json"],
                "tags": ["raffles"],
                "summary": "Get the active raffle",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Raffle"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/response.Err"}}
                }
            }
        },
        "/raffles/draw": {
            "post": {
                "description": "Picks one participant that has not won yet and awards the next prize position",
                "produces": ["application/json"],
                "tags": ["raffles"],
                "summary": "Draw a winner in the active raffle",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.DrawResult"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.Err"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/response.Err"}}
                }
            }
        },
        "/raffles/winners/reset": {
            "post": {
                "description": "Clears the won position of the winners of one raffle, or of every raffle when raffle_id is omitted",
                "produces": ["application/json"],
                "tags": ["raffles"],
                "summary": "Reset raffle winners",
                "parameters": [
                    {"type": "integer", "description": "Raffle ID", "name": "raffle_id", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.ResetResult"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.Err"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/response.Err"}}
                }
            }
        },
        "/raffles/{raffleID}/draw": {
            "post": {
                "produces": ["application/json"],
                "tags": ["raffles"],
                "summary": "Draw a winner in a raffle",
                "parameters": [
                    {"type": "integer", "description": "Raffle ID", "name": "raffleID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.DrawResult"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.Err"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/response.Err"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/response.Err"}}
                }
            }
        },
        "/raffles/{raffleID}/activate": {
            "post": {
                "description": "Activating a raffle deactivates every other raffle",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["raffles"],
                "summary": "Activate or deactivate a raffle",
                "parameters": [
                    {"type": "integer", "description": "Raffle ID", "name": "raffleID", "in": "path", "required": true},
                    {"description": "Active flag", "name": "input", "in": "body", "required": true, "schema": {"$ref": "#/definitions/request.ActivateRaffleRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Raffle"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.Err"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/response.Err"}}
                }
            }
        },
        "/participants/import": {
            "post": {
                "description": "Streams the file into the participants of the raffle. Comma and semicolon delimiters are detected from the header.",
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["participants"],
                "summary": "Import participants from a CSV file",
                "parameters": [
                    {"type": "file", "description": "CSV file", "name": "file", "in": "formData", "required": true},
                    {"type": "integer", "description": "Raffle ID", "name": "raffle_id", "in": "formData", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.ImportResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.ImportResponse"}},
                    "413": {"description": "Request Entity Too Large", "schema": {"$ref": "#/definitions/response.Err"}}
                }
            }
        }
    },
    "definitions": {
        "domain.Winner": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "full_name": {"type": "string"},
                "dni": {"type": "string"},
                "phone": {"type": "string"},
                "location": {"type": "string"},
                "province": {"type": "string"},
                "carton_number": {"type": "string"},
                "ganador_en": {"type": "integer"},
                "premio": {"type": "string"}
            }
        },
        "domain.DrawResult": {
            "type": "object",
            "properties": {
                "raffle_id": {"type": "integer"},
                "winner": {"$ref": "#/definitions/domain.Winner"},
                "posicion_sorteo": {"type": "integer"},
                "total_participants": {"type": "integer"},
                "available_participants": {"type": "integer"},
                "previous_winners": {"type": "integer"},
                "timestamp": {"type": "string"}
            }
        },
        "domain.ResetResult": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "reset_count": {"type": "integer"},
                "raffle_id": {"type": "integer"},
                "remaining_eligible_count": {"type": "integer"}
            }
        },
        "domain.Raffle": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "name": {"type": "string"},
                "date": {"type": "string"},
                "active": {"type": "boolean"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "domain.ImportError": {
            "type": "object",
            "properties": {
                "line": {"type": "integer"},
                "error": {"type": "string"}
            }
        },
        "request.ActivateRaffleRequest": {
            "type": "object",
            "properties": {
                "active": {"type": "boolean"}
            }
        },
        "response.ImportResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "status": {"type": "string"},
                "mode": {"type": "string"},
                "imported": {"type": "integer"},
                "failed": {"type": "integer"},
                "processed": {"type": "integer"},
                "chunks": {"type": "integer"},
                "batch_id": {"type": "string"},
                "errors": {"type": "array", "items": {"$ref": "#/definitions/domain.ImportError"}}
            }
        },
        "response.Err": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "error": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "",
	Host:             "",
	BasePath:         "",
	Schemes:          []string{},
	Title:            "",
	Description:      "",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
