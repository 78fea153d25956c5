// Package docs registers the OpenAPI document served at /swagger/*.
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
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "security": [{"BearerAuth": []}],
    "paths": {
        "/auth/register": {"post": {"tags": ["auth"], "summary": "Register an organization admin", "security": [], "responses": {"201": {"description": "Created"}, "400": {"description": "Validation error"}, "409": {"description": "Username or email taken"}}}},
        "/auth/login": {"post": {"tags": ["auth"], "summary": "Log in with username or email", "security": [], "responses": {"200": {"description": "OK"}, "401": {"description": "Invalid credentials"}, "403": {"description": "Subscription inactive"}}}},
        "/auth/me": {"get": {"tags": ["auth"], "summary": "Caller profile", "responses": {"200": {"description": "OK"}}}},
        "/staff": {
            "get": {"tags": ["staff"], "summary": "List staff", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["staff"], "summary": "Create a staff user (admin only)", "responses": {"201": {"description": "Created"}}}
        },
        "/staff/{id}": {"delete": {"tags": ["staff"], "summary": "Delete a staff user (admin only)", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"204": {"description": "No Content"}}}},
        "/orders": {
            "get": {"tags": ["orders"], "summary": "List orders", "parameters": [{"name": "status", "in": "query", "type": "string"}, {"name": "skip", "in": "query", "type": "integer"}, {"name": "limit", "in": "query", "type": "integer"}], "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["orders"], "summary": "Create an order", "responses": {"201": {"description": "Created"}, "400": {"description": "Billing validation failed"}}}
        },
        "/orders/active": {"get": {"tags": ["orders"], "summary": "Active orders", "parameters": [{"name": "policy", "in": "query", "type": "string", "enum": ["all_open", "today_only"]}], "responses": {"200": {"description": "OK"}}}},
        "/orders/today-bills": {"get": {"tags": ["orders"], "summary": "Bills of the current business day", "responses": {"200": {"description": "OK"}}}},
        "/orders/{id}": {
            "get": {"tags": ["orders"], "summary": "Get an order", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}},
            "put": {"tags": ["orders"], "summary": "Update an open order", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}}},
            "delete": {"tags": ["orders"], "summary": "Delete an order", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"204": {"description": "No Content"}}}
        },
        "/orders/{id}/status": {"put": {"tags": ["orders"], "summary": "Change order status", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}, "400": {"description": "Invalid transition"}}}},
        "/orders/{id}/payments": {"post": {"tags": ["payments"], "summary": "Record a payment", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"201": {"description": "Created"}}}},
        "/orders/{id}/receipt": {"get": {"tags": ["orders"], "summary": "PDF receipt", "produces": ["application/pdf"], "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}}}},
        "/payments": {"get": {"tags": ["payments"], "summary": "List payments", "parameters": [{"name": "order_id", "in": "query", "type": "string"}], "responses": {"200": {"description": "OK"}}}},
        "/tables": {
            "get": {"tags": ["tables"], "summary": "List tables", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["tables"], "summary": "Create a table", "responses": {"201": {"description": "Created"}, "409": {"description": "Duplicate table number"}}}
        },
        "/tables/{id}": {
            "get": {"tags": ["tables"], "summary": "Get a table", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}}},
            "put": {"tags": ["tables"], "summary": "Update a table", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}}},
            "delete": {"tags": ["tables"], "summary": "Delete a table", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"204": {"description": "No Content"}, "400": {"description": "Table is occupied"}}}
        },
        "/menu": {
            "get": {"tags": ["menu"], "summary": "List menu items", "parameters": [{"name": "category", "in": "query", "type": "string"}, {"name": "available", "in": "query", "type": "boolean"}], "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["menu"], "summary": "Create a menu item", "responses": {"201": {"description": "Created"}}}
        },
        "/menu/{id}": {
            "get": {"tags": ["menu"], "summary": "Get a menu item", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}}},
            "put": {"tags": ["menu"], "summary": "Update a menu item", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}}},
            "delete": {"tags": ["menu"], "summary": "Delete a menu item", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"204": {"description": "No Content"}}}
        },
        "/menu/{id}/image": {"post": {"tags": ["menu"], "summary": "Upload a menu image", "consumes": ["multipart/form-data"], "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}, {"name": "image", "in": "formData", "required": true, "type": "file"}], "responses": {"200": {"description": "OK"}}}},
        "/support-tickets": {
            "get": {"tags": ["support"], "summary": "List the organization's tickets", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["support"], "summary": "Open a ticket", "responses": {"201": {"description": "Created"}}}
        },
        "/ws/orders": {"get": {"tags": ["live"], "summary": "Live order feed (websocket)", "parameters": [{"name": "token", "in": "query", "type": "string"}], "responses": {"101": {"description": "Switching Protocols"}}}},
        "/super-admin/login": {"post": {"tags": ["super-admin"], "summary": "Operator login", "security": [], "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}}},
        "/super-admin/dashboard": {"get": {"tags": ["super-admin"], "summary": "Platform totals", "responses": {"200": {"description": "OK"}}}},
        "/super-admin/users": {"get": {"tags": ["super-admin"], "summary": "List users", "parameters": [{"name": "search", "in": "query", "type": "string"}, {"name": "status", "in": "query", "type": "string", "enum": ["all", "active", "inactive", "expired"]}, {"name": "skip", "in": "query", "type": "integer"}, {"name": "limit", "in": "query", "type": "integer"}], "responses": {"200": {"description": "OK"}}}},
        "/super-admin/users/{id}": {
            "get": {"tags": ["super-admin"], "summary": "User with organization counters", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}}},
            "delete": {"tags": ["super-admin"], "summary": "Delete a user, cascading over an admin's organization", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}}}
        },
        "/super-admin/users/{id}/subscription": {"put": {"tags": ["super-admin"], "summary": "Set subscription state", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}}}},
        "/super-admin/organizations/{id}/active-orders": {"get": {"tags": ["super-admin"], "summary": "Active-orders diagnostics", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}, {"name": "policy", "in": "query", "type": "string"}], "responses": {"200": {"description": "OK"}}}},
        "/super-admin/organizations/{id}/today-bills": {"get": {"tags": ["super-admin"], "summary": "Today's-bills diagnostics", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}}}},
        "/super-admin/system-metrics": {"get": {"tags": ["super-admin"], "summary": "Recent runtime samples", "responses": {"200": {"description": "OK"}}}},
        "/super-admin/tickets": {"get": {"tags": ["super-admin"], "summary": "All support tickets", "responses": {"200": {"description": "OK"}}}},
        "/super-admin/tickets/{id}": {"put": {"tags": ["super-admin"], "summary": "Update a ticket", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}}}},
        "/super-admin/audit-logs": {"get": {"tags": ["super-admin"], "summary": "Audit trail", "responses": {"200": {"description": "OK"}}}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "restobill API",
	Description:      "Multi-tenant restaurant billing backend.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
