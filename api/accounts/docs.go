// Package accounts registers the OpenAPI document served at /swagger/.
// Regenerate with: swag init -g internal/accounts/http/router.go -o api/accounts
package accounts

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "AussieBroadWAN Team",
            "url": "https://github.com/aussiebroadwan/spacehub"
        },
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/v1/auth/signup": {"post": {"tags": ["Auth"], "summary": "Sign up", "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/accountsdk.SignupRequest"}}], "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/accountsdk.Account"}}, "409": {"description": "duplicate_account", "schema": {"$ref": "#/definitions/accountsdk.ErrorResponse"}}, "422": {"description": "validation_error", "schema": {"$ref": "#/definitions/accountsdk.ErrorResponse"}}, "502": {"description": "delivery_failed", "schema": {"$ref": "#/definitions/accountsdk.ErrorResponse"}}}}},
        "/v1/auth/verify-otp": {"post": {"tags": ["Auth"], "summary": "Verify one-time code", "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/accountsdk.VerifyOTPRequest"}}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/accountsdk.SessionResponse"}}, "400": {"description": "expired", "schema": {"$ref": "#/definitions/accountsdk.ErrorResponse"}}, "401": {"description": "invalid_credentials", "schema": {"$ref": "#/definitions/accountsdk.ErrorResponse"}}}}},
        "/v1/auth/resend-otp": {"post": {"tags": ["Auth"], "summary": "Resend verification code", "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/accountsdk.EmailRequest"}}], "responses": {"204": {"description": "No Content"}}}},
        "/v1/auth/login": {"post": {"tags": ["Auth"], "summary": "Log in", "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/accountsdk.LoginRequest"}}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/accountsdk.SessionResponse"}}, "401": {"description": "invalid_credentials or account_not_verified", "schema": {"$ref": "#/definitions/accountsdk.ErrorResponse"}}}}},
        "/v1/auth/forgot-password": {"post": {"tags": ["Auth"], "summary": "Request a password reset code", "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/accountsdk.EmailRequest"}}], "responses": {"204": {"description": "No Content"}}}},
        "/v1/auth/reset-password": {"patch": {"tags": ["Auth"], "summary": "Reset password", "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/accountsdk.ResetPasswordRequest"}}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/accountsdk.SessionResponse"}}}}},
        "/v1/auth/password": {"patch": {"security": [{"BearerAuth": []}], "tags": ["Auth"], "summary": "Change password", "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/accountsdk.UpdatePasswordRequest"}}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/accountsdk.SessionResponse"}}}}},
        "/v1/me": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["Me"], "summary": "Current account", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/accountsdk.Account"}}}},
            "patch": {"security": [{"BearerAuth": []}], "tags": ["Me"], "summary": "Update account", "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/accountsdk.UpdateMeRequest"}}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/accountsdk.Account"}}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["Me"], "summary": "Deactivate account", "responses": {"204": {"description": "No Content"}}}
        },
        "/v1/me/profile": {"patch": {"security": [{"BearerAuth": []}], "tags": ["Me"], "summary": "Update profile", "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"type": "object", "additionalProperties": {"type": "string"}}}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/accountsdk.Account"}}}}},
        "/v1/me/cards": {"post": {"security": [{"BearerAuth": []}], "tags": ["Me"], "summary": "Add payment card", "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/accountsdk.AddCardRequest"}}], "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/accountsdk.Account"}}}}},
        "/v1/me/cards/{cardID}": {"delete": {"security": [{"BearerAuth": []}], "tags": ["Me"], "summary": "Remove payment card", "parameters": [{"in": "path", "name": "cardID", "required": true, "type": "string"}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/accountsdk.Account"}}}}},
        "/v1/invitations": {"post": {"security": [{"BearerAuth": []}], "tags": ["Invitations"], "summary": "Invite a manager", "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/accountsdk.InviteRequest"}}], "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/accountsdk.Account"}}}}},
        "/v1/invitations/accept": {"get": {"tags": ["Invitations"], "summary": "Accept an invitation", "parameters": [{"in": "query", "name": "email", "required": true, "type": "string"}, {"in": "query", "name": "token", "required": true, "type": "string"}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/accountsdk.AcceptInvitationResponse"}}}}},
        "/v1/invitations/complete": {"post": {"tags": ["Invitations"], "summary": "Complete manager registration", "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/accountsdk.CompleteRegistrationRequest"}}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/accountsdk.SessionResponse"}}}}},
        "/v1/accounts": {"get": {"security": [{"BearerAuth": []}], "tags": ["Admin"], "summary": "List accounts", "parameters": [{"in": "query", "name": "role", "type": "string"}, {"in": "query", "name": "active", "type": "boolean"}, {"in": "query", "name": "limit", "type": "integer"}, {"in": "query", "name": "offset", "type": "integer"}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/accountsdk.AccountList"}}}}},
        "/v1/accounts/{id}": {"get": {"security": [{"BearerAuth": []}], "tags": ["Admin"], "summary": "Get an account", "parameters": [{"in": "path", "name": "id", "required": true, "type": "string"}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/accountsdk.Account"}}, "404": {"description": "not_found", "schema": {"$ref": "#/definitions/accountsdk.ErrorResponse"}}}}},
        "/v1/accounts/{id}/role": {"patch": {"security": [{"BearerAuth": []}], "tags": ["Admin"], "summary": "Change an account's role", "parameters": [{"in": "path", "name": "id", "required": true, "type": "string"}, {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/accountsdk.ChangeRoleRequest"}}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/accountsdk.Account"}}}}},
        "/v1/accounts/{id}/status": {"patch": {"security": [{"BearerAuth": []}], "tags": ["Admin"], "summary": "Activate or deactivate an account", "parameters": [{"in": "path", "name": "id", "required": true, "type": "string"}, {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/accountsdk.SetStatusRequest"}}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/accountsdk.Account"}}}}},
        "/.well-known/jwks.json": {"get": {"tags": ["well-known"], "summary": "Get JWKS", "responses": {"200": {"description": "OK"}}}},
        "/livez": {"get": {"tags": ["Health"], "summary": "Liveness probe", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/accountsdk.HealthResponse"}}}}},
        "/readyz": {"get": {"tags": ["Health"], "summary": "Readiness probe", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/accountsdk.HealthResponse"}}, "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/accountsdk.HealthResponse"}}}}}
    },
    "definitions": {
        "accountsdk.ErrorResponse": {"type": "object", "properties": {"error": {"type": "string"}, "error_description": {"type": "string"}, "fields": {"type": "object", "additionalProperties": {"type": "string"}}}},
        "accountsdk.Account": {"type": "object", "properties": {"id": {"type": "string"}, "email": {"type": "string"}, "role": {"type": "string"}, "verified": {"type": "boolean"}, "active": {"type": "boolean"}, "profile": {"type": "object"}, "billing_customer_id": {"type": "string"}, "card_ids": {"type": "array", "items": {"type": "string"}}, "invitation": {"$ref": "#/definitions/accountsdk.Invitation"}, "password_changed_at": {"type": "string"}, "version": {"type": "integer"}, "created_at": {"type": "string"}, "updated_at": {"type": "string"}}},
        "accountsdk.Invitation": {"type": "object", "properties": {"branch_id": {"type": "string"}, "invited_by": {"type": "string"}, "state": {"type": "string"}, "expires_at": {"type": "string"}}},
        "accountsdk.AccountList": {"type": "object", "properties": {"accounts": {"type": "array", "items": {"$ref": "#/definitions/accountsdk.Account"}}, "limit": {"type": "integer"}, "offset": {"type": "integer"}}},
        "accountsdk.SessionResponse": {"type": "object", "properties": {"token": {"type": "string"}, "token_type": {"type": "string"}, "expires_at": {"type": "string"}, "account": {"$ref": "#/definitions/accountsdk.Account"}}},
        "accountsdk.SignupRequest": {"type": "object", "properties": {"email": {"type": "string"}, "password": {"type": "string"}, "password_confirm": {"type": "string"}, "role": {"type": "string", "enum": ["customer", "storage_owner", "truck_driver"]}, "full_name": {"type": "string"}, "phone_no": {"type": "string"}}},
        "accountsdk.VerifyOTPRequest": {"type": "object", "properties": {"email": {"type": "string"}, "code": {"type": "string"}}},
        "accountsdk.EmailRequest": {"type": "object", "properties": {"email": {"type": "string"}}},
        "accountsdk.LoginRequest": {"type": "object", "properties": {"email": {"type": "string"}, "password": {"type": "string"}}},
        "accountsdk.ResetPasswordRequest": {"type": "object", "properties": {"email": {"type": "string"}, "code": {"type": "string"}, "password": {"type": "string"}, "password_confirm": {"type": "string"}}},
        "accountsdk.UpdatePasswordRequest": {"type": "object", "properties": {"current_password": {"type": "string"}, "password": {"type": "string"}, "password_confirm": {"type": "string"}}},
        "accountsdk.UpdateMeRequest": {"type": "object", "properties": {"email": {"type": "string"}}},
        "accountsdk.AddCardRequest": {"type": "object", "properties": {"payment_method_id": {"type": "string"}}},
        "accountsdk.InviteRequest": {"type": "object", "properties": {"email": {"type": "string"}, "branch_id": {"type": "string"}, "full_name": {"type": "string"}, "phone_no": {"type": "string"}}},
        "accountsdk.AcceptInvitationResponse": {"type": "object", "properties": {"email": {"type": "string"}, "ticket": {"type": "string"}, "expires_at": {"type": "string"}}},
        "accountsdk.CompleteRegistrationRequest": {"type": "object", "properties": {"email": {"type": "string"}, "ticket": {"type": "string"}, "password": {"type": "string"}, "password_confirm": {"type": "string"}, "full_name": {"type": "string"}, "phone_no": {"type": "string"}}},
        "accountsdk.ChangeRoleRequest": {"type": "object", "properties": {"role": {"type": "string"}}},
        "accountsdk.SetStatusRequest": {"type": "object", "properties": {"active": {"type": "boolean"}}},
        "accountsdk.HealthResponse": {"type": "object", "properties": {"status": {"type": "string"}, "uptime": {"type": "string"}, "version": {"type": "string"}, "checks": {"type": "object", "properties": {"database": {"type": "string"}, "signer": {"type": "string"}}}}}
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Session token. Format: \"Bearer {token}\".",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "0.1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "Spacehub Accounts API",
	Description:      "Signup, verification, login, password recovery, profiles and manager invitations for the spacehub marketplace.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
