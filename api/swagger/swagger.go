package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Hemo Scheduler API",
        "description": "Dialysis chair scheduling: placement, capacity analytics, imports, exports and snapshot persistence",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "in": "header",
            "name": "Authorization"
        }
    },
    "tags": [
        {
            "name": "Schedule",
            "description": "Chair map and patient placement"
        },
        {
            "name": "Analytics",
            "description": "Capacity report and simulator"
        },
        {
            "name": "Imports",
            "description": "Spreadsheet import"
        },
        {
            "name": "Exports",
            "description": "CSV and PDF reports"
        },
        {
            "name": "Data",
            "description": "Backups, restore, reload and wipe"
        }
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Liveness probe",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness probe with dependency pings",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/metrics": {
            "get": {
                "summary": "Prometheus metrics",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/v1/schedule": {
            "get": {
                "summary": "Current schedule snapshot",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "tags": [
                    "Schedule"
                ]
            }
        },
        "/api/v1/schedule/records": {
            "get": {
                "summary": "Schedule as flat records",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "tags": [
                    "Schedule"
                ]
            },
            "put": {
                "summary": "Rebuild the schedule from flat records",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "tags": [
                    "Schedule"
                ],
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "type": "object",
                            "title": "ReplaceRecordsRequest"
                        }
                    }
                ]
            }
        },
        "/api/v1/schedule/matrix": {
            "get": {
                "summary": "Occupancy matrix of one rotation",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "tags": [
                    "Schedule"
                ],
                "parameters": [
                    {
                        "name": "dayGroup",
                        "in": "query",
                        "type": "string",
                        "required": true
                    }
                ]
            }
        },
        "/api/v1/schedule/time-slots": {
            "get": {
                "summary": "Grid row labels",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "tags": [
                    "Schedule"
                ]
            }
        },
        "/api/v1/schedule/patients": {
            "post": {
                "summary": "Create or edit a patient placement",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "tags": [
                    "Schedule"
                ],
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "type": "object",
                            "title": "SavePatientRequest"
                        }
                    }
                ]
            }
        },
        "/api/v1/schedule/patients/move": {
            "post": {
                "summary": "Move or swap a turn occupant",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "tags": [
                    "Schedule"
                ],
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "type": "object",
                            "title": "MovePatientRequest"
                        }
                    }
                ]
            }
        },
        "/api/v1/schedule/patients/drop": {
            "post": {
                "summary": "Drop a patient on a grid cell",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "tags": [
                    "Schedule"
                ],
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "type": "object",
                            "title": "DropPatientRequest"
                        }
                    }
                ]
            }
        },
        "/api/v1/schedule/patients/lookup": {
            "get": {
                "summary": "Sessions of a patient by name",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "tags": [
                    "Schedule"
                ],
                "parameters": [
                    {
                        "name": "name",
                        "in": "query",
                        "type": "string",
                        "required": true
                    }
                ]
            }
        },
        "/api/v1/schedule/enrollments": {
            "get": {
                "summary": "One entry per patient with memberships",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "tags": [
                    "Schedule"
                ]
            }
        },
        "/api/v1/schedule/drift": {
            "get": {
                "summary": "Patients whose copies disagree",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "tags": [
                    "Schedule"
                ]
            }
        },
        "/api/v1/analytics/report": {
            "get": {
                "summary": "Capacity report",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "tags": [
                    "Analytics"
                ],
                "parameters": [
                    {
                        "name": "strategy",
                        "in": "query",
                        "type": "string",
                        "required": false
                    }
                ]
            }
        },
        "/api/v1/analytics/stats": {
            "get": {
                "summary": "Headline counters",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "tags": [
                    "Analytics"
                ]
            }
        },
        "/api/v1/analytics/simulate": {
            "post": {
                "summary": "Rank free placements for a new session",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "tags": [
                    "Analytics"
                ],
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "type": "object",
                            "title": "SimulateRequest"
                        }
                    }
                ]
            }
        },
        "/api/v1/analytics/system": {
            "get": {
                "summary": "Process counters",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "tags": [
                    "Analytics"
                ]
            }
        },
        "/api/v1/imports": {
            "post": {
                "summary": "Import spreadsheet rows (JSON or multipart CSV)",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "tags": [
                    "Imports"
                ]
            }
        },
        "/api/v1/exports/{kind}": {
            "get": {
                "summary": "Download a CSV or PDF report",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "tags": [
                    "Exports"
                ],
                "parameters": [
                    {
                        "name": "kind",
                        "in": "path",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "format",
                        "in": "query",
                        "type": "string",
                        "required": false
                    },
                    {
                        "name": "dayGroup",
                        "in": "query",
                        "type": "string",
                        "required": false
                    }
                ]
            }
        },
        "/api/v1/data/status": {
            "get": {
                "summary": "Save indicator",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "tags": [
                    "Data"
                ]
            }
        },
        "/api/v1/data/backup": {
            "get": {
                "summary": "Download the schedule as a backup file",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "tags": [
                    "Data"
                ]
            }
        },
        "/api/v1/data/restore": {
            "post": {
                "summary": "Replace the schedule with a backup file",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "tags": [
                    "Data"
                ]
            }
        },
        "/api/v1/data/reload": {
            "post": {
                "summary": "Discard unsaved changes and reload",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "tags": [
                    "Data"
                ]
            }
        },
        "/api/v1/data/wipe": {
            "post": {
                "summary": "Erase the schedule and stored copies",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "tags": [
                    "Data"
                ],
                "parameters": [
                    {
                        "name": "confirm",
                        "in": "query",
                        "type": "boolean",
                        "required": true
                    }
                ]
            }
        },
        "/api/v1/data/backups": {
            "get": {
                "summary": "Off-site backups with signed links",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "tags": [
                    "Data"
                ]
            }
        },
        "/api/v1/data/backups/download": {
            "get": {
                "summary": "Download an off-site backup",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "tags": [
                    "Data"
                ],
                "parameters": [
                    {
                        "name": "token",
                        "in": "query",
                        "type": "string",
                        "required": true
                    }
                ]
            }
        },
        "/api/v1/schedule/patients/{id}": {
            "patch": {
                "summary": "Update patient fields on every slot",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "tags": [
                    "Schedule"
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true
                    }
                ]
            },
            "delete": {
                "summary": "Remove a patient from every slot",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "tags": [
                    "Schedule"
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true
                    }
                ]
            }
        },
        "/api/v1/schedule/enrollments/{id}": {
            "put": {
                "summary": "Replace the memberships of a patient",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "tags": [
                    "Schedule"
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true
                    }
                ]
            }
        }
    },
    "definitions": {
        "APIError": {
            "type": "object",
            "properties": {
                "code": {
                    "type": "string"
                },
                "message": {
                    "type": "string"
                },
                "status": {
                    "type": "integer"
                }
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {
                    "type": "object"
                },
                "error": {
                    "$ref": "#/definitions/APIError"
                },
                "meta": {
                    "type": "object"
                }
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
