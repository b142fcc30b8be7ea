// Package docs registers the OpenAPI description of the Zynexa REST API with swag.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "license": {
            "name": "Apache 2.0",
            "url": "http://www.apache.org/licenses/LICENSE-2.0.html"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/auth/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Login with a signed challenge",
                "parameters": [{"in": "body", "name": "login", "required": true, "schema": {"$ref": "#/definitions/types.InputLogin"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.OutputLogin"}},
                    "400": {"description": "Missing required fields", "schema": {"$ref": "#/definitions/api.ApiError"}},
                    "401": {"description": "Invalid signature", "schema": {"$ref": "#/definitions/api.ApiError"}},
                    "404": {"description": "Identity not found", "schema": {"$ref": "#/definitions/api.ApiError"}}
                }
            }
        },
        "/api/auth/logout": {
            "post": {
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Destroys the session",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/auth/session": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Returns the identity of the current session",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/identity/register": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Identity"],
                "summary": "Register a public key (or update its display name)",
                "parameters": [{"in": "body", "name": "identity", "required": true, "schema": {"$ref": "#/definitions/types.InputRegister"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.Identity"}},
                    "400": {"description": "validation error", "schema": {"$ref": "#/definitions/api.ApiError"}}
                }
            }
        },
        "/api/identity/publish": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Identity"],
                "summary": "Anchors the identity on the ledger",
                "responses": {
                    "200": {"description": "OK"},
                    "401": {"description": "Invalid signature", "schema": {"$ref": "#/definitions/api.ApiError"}},
                    "500": {"description": "Fee payer misconfigured, insufficient funds or ledger error", "schema": {"$ref": "#/definitions/api.ApiError"}}
                }
            }
        },
        "/api/identity/verify": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Identity"],
                "summary": "Checks a detached signature",
                "responses": {"200": {"description": "OK"}, "400": {"description": "malformed input"}}
            }
        },
        "/api/identity/{publicKey}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Identity"],
                "summary": "Returns the identity by public key",
                "parameters": [{"type": "string", "in": "path", "name": "publicKey", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.Identity"}},
                    "404": {"description": "Identity not found", "schema": {"$ref": "#/definitions/api.ApiError"}}
                }
            },
            "patch": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Identity"],
                "summary": "Updates the display name of an identity",
                "parameters": [{"type": "string", "in": "path", "name": "publicKey", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.Identity"}},
                    "400": {"description": "Invalid display name", "schema": {"$ref": "#/definitions/api.ApiError"}},
                    "404": {"description": "Identity not found", "schema": {"$ref": "#/definitions/api.ApiError"}}
                }
            }
        },
        "/api/features/verify": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Features"],
                "summary": "Unlocks a feature with an on-ledger verification transaction",
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Missing required fields or feature already verified", "schema": {"$ref": "#/definitions/api.ApiError"}},
                    "401": {"description": "Invalid signature", "schema": {"$ref": "#/definitions/api.ApiError"}}
                }
            }
        },
        "/api/features/status/{publicKey}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Features"],
                "summary": "Lists unlocked features of an identity",
                "parameters": [{"type": "string", "in": "path", "name": "publicKey", "required": true}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/messages/send": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Messaging"],
                "summary": "Relays a signed message as a ledger memo",
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "validation error, stale timestamp or replay", "schema": {"$ref": "#/definitions/api.ApiError"}},
                    "401": {"description": "Not authenticated or invalid signature", "schema": {"$ref": "#/definitions/api.ApiError"}},
                    "403": {"description": "Sender is not the session identity or feature locked", "schema": {"$ref": "#/definitions/api.ApiError"}}
                }
            }
        },
        "/api/messages/{publicKey}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Messaging"],
                "summary": "Lists cached messages sent or received by the session identity",
                "parameters": [{"type": "string", "in": "path", "name": "publicKey", "required": true}],
                "responses": {
                    "200": {"description": "OK"},
                    "401": {"description": "Not authenticated", "schema": {"$ref": "#/definitions/api.ApiError"}},
                    "403": {"description": "Cannot access messages for another identity", "schema": {"$ref": "#/definitions/api.ApiError"}}
                }
            }
        },
        "/api/health/blockchain": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Fee payer balance and ledger connectivity",
                "responses": {"200": {"description": "OK"}, "500": {"description": "status error"}}
            }
        }
    },
    "definitions": {
        "api.ApiError": {
            "type": "object",
            "properties": {
                "status": {"type": "integer"},
                "code": {"type": "string"},
                "error": {"type": "string"},
                "txHash": {"type": "string"},
                "featureName": {"type": "string"}
            }
        },
        "types.Identity": {
            "type": "object",
            "properties": {
                "publicKey": {"type": "string"},
                "displayName": {"type": "string"},
                "onchainTxHash": {"type": "string"},
                "isVerified": {"type": "boolean"},
                "createdAt": {"type": "string"}
            }
        },
        "types.InputLogin": {
            "type": "object",
            "required": ["message", "publicKey", "signature"],
            "properties": {
                "publicKey": {"type": "string"},
                "message": {"type": "string"},
                "signature": {"type": "string"}
            }
        },
        "types.InputRegister": {
            "type": "object",
            "required": ["publicKey"],
            "properties": {
                "publicKey": {"type": "string"},
                "displayName": {"type": "string", "maxLength": 64}
            }
        },
        "types.OutputLogin": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "identity": {"$ref": "#/definitions/types.Identity"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Zynexa Server API",
	Description:      "Signature authenticated identities, feature gates and ledger memo relay",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
