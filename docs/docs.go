// Package docs registers the OpenAPI document served at /docs.
//
// Keep it in step with the @-annotations on the handlers; `swag init -g
// cmd/api/main.go` regenerates the same shape.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {"name": "VFL"},
        "license": {"name": "MIT"},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/reconcile/mismatches": {
            "get": {
                "tags": ["reconcile"],
                "summary": "List link mismatches",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "enum": ["fantasy", "stat"], "name": "kind", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.MismatchesResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/respond.ErrorResponse"}}
                }
            }
        },
        "/reconcile/suggestions": {
            "get": {
                "tags": ["reconcile"],
                "summary": "Suggest canonical players",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "name", "in": "query", "required": true},
                    {"type": "string", "name": "team", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.SuggestionsResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/respond.ErrorResponse"}}
                }
            }
        },
        "/reconcile/apply": {
            "post": {
                "tags": ["reconcile"],
                "summary": "Apply reconciliation assignments",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.ApplyRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.ApplyResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/respond.ErrorResponse"}}
                }
            }
        },
        "/stats/import": {
            "post": {
                "tags": ["stats"],
                "summary": "Import match stats",
                "consumes": ["text/csv"],
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "matchId", "in": "query", "required": true},
                    {"type": "integer", "name": "season", "in": "query"},
                    {"type": "string", "name": "round", "in": "query"},
                    {"type": "boolean", "name": "deriveTotals", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/statsimport.Result"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/respond.ErrorResponse"}}
                }
            }
        },
        "/players/search": {
            "get": {
                "tags": ["players"],
                "summary": "Search registry",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "q", "in": "query", "required": true},
                    {"type": "integer", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/registry.Hit"}}}
                }
            }
        },
        "/players": {
            "post": {
                "tags": ["players"],
                "summary": "Create registry player",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/registry.NewPlayer"}},
                    {"type": "boolean", "name": "force", "in": "query"}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/model.CanonicalPlayer"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/respond.ErrorResponse"}}
                }
            }
        },
        "/players/{id}": {
            "get": {
                "tags": ["players"],
                "summary": "Get registry player",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.CanonicalPlayer"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/respond.ErrorResponse"}}
                }
            }
        },
        "/history": {
            "get": {
                "tags": ["history"],
                "summary": "Historical results",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "integer", "name": "year", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/model.HistoricalMatch"}}}
                }
            }
        }
    },
    "definitions": {
        "respond.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {
                    "type": "object",
                    "properties": {
                        "code": {"type": "string"},
                        "message": {"type": "string"},
                        "detail": {"type": "string"}
                    }
                }
            }
        },
        "model.CanonicalPlayer": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "fullName": {"type": "string"},
                "firstName": {"type": "string"},
                "lastName": {"type": "string"},
                "team": {"type": "string"},
                "position": {"type": "string"},
                "aliases": {"type": "array", "items": {"type": "string"}},
                "createdAt": {"type": "string"}
            }
        },
        "model.HistoricalMatch": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "year": {"type": "integer"},
                "homeTeam": {"type": "string"},
                "awayTeam": {"type": "string"},
                "homeScore": {"type": "integer"},
                "awayScore": {"type": "integer"},
                "ground": {"type": "string"}
            }
        },
        "match.Source": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "team": {"type": "string"}
            }
        },
        "match.Match": {
            "type": "object",
            "properties": {
                "player": {"$ref": "#/definitions/model.CanonicalPlayer"},
                "confidence": {"type": "integer"},
                "via": {"type": "string"}
            }
        },
        "reconcile.Mismatch": {
            "type": "object",
            "properties": {
                "kind": {"type": "string"},
                "source": {"$ref": "#/definitions/match.Source"},
                "currentId": {"type": "string"},
                "reason": {"type": "string"},
                "rows": {"type": "integer"},
                "best": {"$ref": "#/definitions/match.Match"},
                "suggestions": {"type": "array", "items": {"$ref": "#/definitions/match.Match"}}
            }
        },
        "reconcile.Assignment": {
            "type": "object",
            "properties": {
                "sourceId": {"type": "string"},
                "canonicalId": {"type": "string"}
            }
        },
        "reconcile.Result": {
            "type": "object",
            "properties": {
                "fixed": {"type": "integer"},
                "skipped": {"type": "integer"},
                "errors": {"type": "integer"},
                "playersUpdated": {"type": "integer"},
                "statsUpdated": {"type": "integer"},
                "batches": {"type": "integer"},
                "log": {"type": "array", "items": {"type": "string"}}
            }
        },
        "handler.MismatchesResponse": {
            "type": "object",
            "properties": {
                "count": {"type": "integer"},
                "mismatches": {"type": "array", "items": {"$ref": "#/definitions/reconcile.Mismatch"}}
            }
        },
        "handler.SuggestionsResponse": {
            "type": "object",
            "properties": {
                "source": {"$ref": "#/definitions/match.Source"},
                "best": {"$ref": "#/definitions/match.Match"},
                "suggestions": {"type": "array", "items": {"$ref": "#/definitions/match.Match"}}
            }
        },
        "handler.ApplyRequest": {
            "type": "object",
            "properties": {
                "assignments": {"type": "array", "items": {"$ref": "#/definitions/reconcile.Assignment"}},
                "auto": {"type": "boolean"},
                "dryRun": {"type": "boolean"}
            }
        },
        "handler.ApplyResponse": {
            "type": "object",
            "properties": {
                "assignments": {"type": "array", "items": {"$ref": "#/definitions/reconcile.Assignment"}},
                "dryRun": {"type": "boolean"},
                "result": {"$ref": "#/definitions/reconcile.Result"},
                "summary": {"type": "string"}
            }
        },
        "statsimport.Result": {
            "type": "object",
            "properties": {
                "parsed": {"type": "integer"},
                "derived": {"type": "integer"},
                "saved": {"type": "integer"},
                "skipped": {"type": "integer"},
                "matchFlagged": {"type": "boolean"},
                "errors": {"type": "array", "items": {"type": "string"}}
            }
        },
        "registry.Hit": {
            "type": "object",
            "properties": {
                "player": {"$ref": "#/definitions/model.CanonicalPlayer"},
                "matched": {"type": "string"},
                "distance": {"type": "integer"}
            }
        },
        "registry.NewPlayer": {
            "type": "object",
            "properties": {
                "fullName": {"type": "string"},
                "firstName": {"type": "string"},
                "lastName": {"type": "string"},
                "team": {"type": "string"},
                "position": {"type": "string"},
                "aliases": {"type": "array", "items": {"type": "string"}}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "localhost:8000",
	BasePath:         "/api/v1",
	Schemes:          []string{"http", "https"},
	Title:            "VFL Data API",
	Description:      "Player identity reconciliation for the VFL fantasy league: mismatch scans, match suggestions, batched link repair, box-score CSV import and registry management.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
