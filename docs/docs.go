// Package docs swagger 文档，执行 swag init -g cmd/bookstore/main.go 重新生成
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
                "tags": ["系统"],
                "summary": "健康检查",
                "responses": {"200": {"description": "OK"}, "503": {"description": "Service Unavailable"}}
            }
        },
        "/api/auth/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["认证"],
                "summary": "用户登录",
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/handler.loginRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}}
            }
        },
        "/api/books": {
            "get": {
                "produces": ["application/json"],
                "tags": ["图书"],
                "summary": "搜索图书",
                "parameters": [
                    {"type": "string", "name": "keyword", "in": "query"},
                    {"type": "integer", "name": "category_id", "in": "query"},
                    {"type": "string", "name": "sort", "in": "query"},
                    {"type": "integer", "default": 1, "name": "page", "in": "query"},
                    {"type": "integer", "default": 20, "name": "limit", "in": "query"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}}
            }
        },
        "/api/orders": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["订单"],
                "summary": "创建订单",
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/handler.createOrderRequest"}}],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/response.Response"}}}
            }
        }
    },
    "definitions": {
        "handler.loginRequest": {
            "type": "object",
            "required": ["username", "password"],
            "properties": {"username": {"type": "string"}, "password": {"type": "string"}}
        },
        "handler.orderItemRequest": {
            "type": "object",
            "required": ["book_id", "quantity"],
            "properties": {"book_id": {"type": "integer"}, "quantity": {"type": "integer"}}
        },
        "handler.createOrderRequest": {
            "type": "object",
            "required": ["address_id", "payment_method", "items"],
            "properties": {
                "address_id": {"type": "integer"},
                "payment_method": {"type": "string"},
                "items": {"type": "array", "items": {"$ref": "#/definitions/handler.orderItemRequest"}}
            }
        },
        "response.Response": {
            "type": "object",
            "properties": {"code": {"type": "integer"}, "message": {"type": "string"}, "data": {}}
        }
    },
    "securityDefinitions": {
        "ApiKeyAuth": {"type": "apiKey", "name": "X-API-KEY", "in": "header"},
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Bookstore API",
	Description:      "网上书店后端：图书目录、库存、收货地址、订单、收藏",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
