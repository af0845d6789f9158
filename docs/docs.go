// Package docs holds the OpenAPI description of the HTTP API, registered with swag
// and served by http-swagger.
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
                "tags": ["System"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.HealthResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handlers.HealthResponse"}}
                }
            }
        },
        "/rounds": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Rounds"],
                "summary": "List rounds",
                "parameters": [
                    {"type": "string", "description": "Category filter", "name": "category", "in": "query"},
                    {"type": "string", "description": "Status filter (draft, active, archived)", "name": "status", "in": "query"},
                    {"type": "boolean", "description": "Active flag filter", "name": "active", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.RoundListResponse"}},
                    "400": {"description": "invalid_active", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Rounds"],
                "summary": "Create round",
                "parameters": [
                    {"description": "Round policy", "name": "round", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.RoundPolicy"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handlers.RoundResponse"}},
                    "400": {"description": "invalid_category, invalid_title or invalid_<field>", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "409": {"description": "duplicate_title", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/rounds/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Rounds"],
                "summary": "Get round",
                "parameters": [
                    {"type": "string", "description": "Round ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.RoundResponse"}},
                    "404": {"description": "not_found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Rounds"],
                "summary": "Update round",
                "parameters": [
                    {"type": "string", "description": "Round ID", "name": "id", "in": "path", "required": true},
                    {"description": "Fields to change", "name": "round", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.RoundPolicy"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.RoundResponse"}},
                    "400": {"description": "No fields to update", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "404": {"description": "not_found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Rounds"],
                "summary": "Delete round",
                "parameters": [
                    {"type": "string", "description": "Round ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.RoundResponse"}},
                    "404": {"description": "not_found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/rounds/{id}/history": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Rounds"],
                "summary": "Get round history",
                "parameters": [
                    {"type": "string", "description": "Round ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.HistoryResponse"}},
                    "404": {"description": "not_found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/worker/availability": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Worker"],
                "summary": "Get worker availability",
                "parameters": [
                    {"type": "string", "description": "Worker identity", "name": "workerId", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.AvailabilityResponse"}},
                    "400": {"description": "invalid_workerId", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            },
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Worker"],
                "summary": "Set worker availability",
                "parameters": [
                    {"description": "available, busy or offline", "name": "availability", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.AvailabilityRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.AvailabilityResponse"}},
                    "400": {"description": "invalid_workerId or invalid_status", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/worker/rounds/{id}/questions": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Worker"],
                "summary": "Get session questions",
                "parameters": [
                    {"type": "string", "description": "Round ID", "name": "id", "in": "path", "required": true},
                    {"type": "string", "description": "Session to resume; generated when absent", "name": "sessionId", "in": "query"},
                    {"type": "string", "description": "Worker identity", "name": "workerId", "in": "query"},
                    {"type": "string", "description": "User identity", "name": "userId", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.QuestionsResponse"}},
                    "400": {"description": "invalid_session_round or invalid_session_id", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "403": {"description": "Round is not active, Round has not started yet or Round has ended", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "404": {"description": "not_found or no_questions_available", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/worker/rounds/{id}/submit": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Worker"],
                "summary": "Submit answers",
                "parameters": [
                    {"type": "string", "description": "Round ID", "name": "id", "in": "path", "required": true},
                    {"description": "Answers keyed by question id", "name": "submission", "in": "body", "required": true, "schema": {"$ref": "#/definitions/service.SubmitRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.SubmitResponse"}},
                    "400": {"description": "invalid_session_round", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "404": {"description": "not_found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "handlers.AvailabilityRequest": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "workerId": {"type": "string"}
            }
        },
        "handlers.AvailabilityResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "status": {"type": "string"},
                "updatedAt": {"type": "string"},
                "workerId": {"type": "string"}
            }
        },
        "handlers.ErrorResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "success": {"type": "boolean"}
            }
        },
        "handlers.HealthResponse": {
            "type": "object",
            "properties": {
                "capabilities": {"$ref": "#/definitions/models.BankCapabilities"},
                "database": {"type": "string"},
                "status": {"type": "string"},
                "success": {"type": "boolean"},
                "version": {"type": "string"}
            }
        },
        "handlers.HistoryResponse": {
            "type": "object",
            "properties": {
                "count": {"type": "integer"},
                "items": {"type": "array", "items": {"$ref": "#/definitions/models.HistoryEntry"}},
                "success": {"type": "boolean"}
            }
        },
        "handlers.QuestionsResponse": {
            "type": "object",
            "properties": {
                "questions": {"type": "array", "items": {"$ref": "#/definitions/models.DeliveredQuestion"}},
                "round": {"$ref": "#/definitions/handlers.RoundSummary"},
                "sessionId": {"type": "string"},
                "success": {"type": "boolean"}
            }
        },
        "handlers.RoundListResponse": {
            "type": "object",
            "properties": {
                "count": {"type": "integer"},
                "items": {"type": "array", "items": {"$ref": "#/definitions/models.Round"}},
                "success": {"type": "boolean"}
            }
        },
        "handlers.RoundResponse": {
            "type": "object",
            "properties": {
                "data": {"$ref": "#/definitions/models.Round"},
                "message": {"type": "string"},
                "success": {"type": "boolean"}
            }
        },
        "handlers.RoundSummary": {
            "type": "object",
            "properties": {
                "category": {"type": "string"},
                "description": {"type": "string"},
                "durationMinutes": {"type": "integer"},
                "id": {"type": "string"},
                "passingScore": {"type": "integer"},
                "questionCount": {"type": "integer"},
                "showAnswers": {"type": "boolean"},
                "showBreakdown": {"type": "boolean"},
                "showScore": {"type": "boolean"},
                "title": {"type": "string"}
            }
        },
        "handlers.SubmitResponse": {
            "type": "object",
            "properties": {
                "answers": {"type": "object", "additionalProperties": {"type": "string"}},
                "result": {"$ref": "#/definitions/service.GradeResult"},
                "roundId": {"type": "string"},
                "sessionId": {"type": "string"},
                "success": {"type": "boolean"},
                "workerId": {"type": "string"}
            }
        },
        "models.BankCapabilities": {
            "type": "object",
            "properties": {
                "difficultyLevel": {"type": "boolean"},
                "setNumber": {"type": "boolean"}
            }
        },
        "models.Criteria": {
            "type": "object",
            "properties": {
                "level1": {"type": "integer"},
                "level2": {"type": "integer"},
                "level3": {"type": "integer"}
            }
        },
        "models.DeliveredQuestion": {
            "type": "object",
            "properties": {
                "choices": {"type": "array", "items": {"type": "string"}},
                "id": {"type": "string"},
                "order": {"type": "integer"},
                "text": {"type": "string"}
            }
        },
        "models.DifficultyWeights": {
            "type": "object",
            "properties": {
                "easy": {"type": "integer"},
                "hard": {"type": "integer"},
                "medium": {"type": "integer"}
            }
        },
        "models.FieldDiff": {
            "type": "object",
            "properties": {
                "field": {"type": "string"},
                "from": {},
                "to": {}
            }
        },
        "models.HistoryEntry": {
            "type": "object",
            "properties": {
                "action": {"type": "string"},
                "actor": {"type": "string"},
                "changes": {"type": "array", "items": {"$ref": "#/definitions/models.FieldDiff"}},
                "timestamp": {"type": "string"},
                "version": {"type": "integer"}
            }
        },
        "models.Round": {
            "type": "object",
            "properties": {
                "active": {"type": "boolean"},
                "category": {"type": "string"},
                "createdAt": {"type": "string"},
                "createdBy": {"type": "string"},
                "criteria": {"$ref": "#/definitions/models.Criteria"},
                "description": {"type": "string"},
                "difficultyWeights": {"$ref": "#/definitions/models.DifficultyWeights"},
                "durationMinutes": {"type": "integer"},
                "endAt": {"type": "string"},
                "frequencyMonths": {"type": "integer"},
                "history": {"type": "array", "items": {"$ref": "#/definitions/models.HistoryEntry"}},
                "id": {"type": "string"},
                "passingScore": {"type": "integer"},
                "questionCount": {"type": "integer"},
                "showAnswers": {"type": "boolean"},
                "showBreakdown": {"type": "boolean"},
                "showScore": {"type": "boolean"},
                "startAt": {"type": "string"},
                "status": {"type": "string"},
                "subcategoryQuotas": {"type": "object", "additionalProperties": {"type": "integer"}},
                "title": {"type": "string"},
                "updatedAt": {"type": "string"},
                "updatedBy": {"type": "string"}
            }
        },
        "models.RoundPolicy": {
            "type": "object",
            "properties": {
                "active": {"type": "boolean"},
                "category": {"type": "string", "maxLength": 100},
                "criteria": {"$ref": "#/definitions/models.Criteria"},
                "description": {"type": "string", "maxLength": 5000},
                "difficultyWeights": {"$ref": "#/definitions/models.DifficultyWeights"},
                "durationMinutes": {"type": "integer", "minimum": 1, "maximum": 1440},
                "endAt": {"type": "string"},
                "frequencyMonths": {"type": "integer", "minimum": 1, "maximum": 120},
                "passingScore": {"type": "integer", "minimum": 0, "maximum": 100},
                "questionCount": {"type": "integer", "minimum": 1, "maximum": 500},
                "showAnswers": {"type": "boolean"},
                "showBreakdown": {"type": "boolean"},
                "showScore": {"type": "boolean"},
                "startAt": {"type": "string"},
                "status": {"type": "string", "enum": ["draft", "active", "archived"]},
                "subcategoryQuotas": {"type": "object", "additionalProperties": {"type": "integer"}},
                "title": {"type": "string", "maxLength": 255}
            }
        },
        "service.GradeResult": {
            "type": "object",
            "properties": {
                "graded": {"type": "boolean"},
                "passed": {"type": "boolean"},
                "score": {"type": "integer"}
            }
        },
        "service.SubmitRequest": {
            "type": "object",
            "properties": {
                "answers": {"type": "object", "additionalProperties": {"type": "string"}},
                "sessionId": {"type": "string"},
                "workerId": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and JWT token.",
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
	Title:            "Assessment Round API",
	Description:      "Assessment rounds, worker sessions and question delivery",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
