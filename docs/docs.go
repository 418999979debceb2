// Package docs регистрирует описание API для gin-swagger.
// Regenerate: swag init -g cmd/web/main.go -o docs
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
        "/auth/signup": {"post": {"tags": ["auth"], "summary": "Регистрация студента", "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}, "409": {"description": "Conflict"}}}},
        "/auth/login": {"post": {"tags": ["auth"], "summary": "Вход", "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}}},
        "/auth/refresh": {"post": {"tags": ["auth"], "summary": "Обновить access токен", "responses": {"200": {"description": "OK"}}}},
        "/auth/logout": {"post": {"tags": ["auth"], "summary": "Выход", "responses": {"200": {"description": "OK"}}}},
        "/auth/me": {"get": {"security": [{"BearerAuth": []}], "tags": ["auth"], "summary": "Текущий пользователь", "responses": {"200": {"description": "OK"}}}},
        "/pay": {"post": {"tags": ["subscription"], "summary": "Создать заказ на подписку", "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}, "500": {"description": "Gateway not configured"}, "502": {"description": "Gateway error"}}}},
        "/verify": {"post": {"security": [{"BearerAuth": []}], "tags": ["subscription"], "summary": "Подтвердить оплату", "responses": {"200": {"description": "OK"}, "400": {"description": "Invalid signature"}, "404": {"description": "Order not found"}}}},
        "/webhook/razorpay": {"post": {"tags": ["subscription"], "summary": "Вебхук Razorpay", "responses": {"200": {"description": "OK"}, "400": {"description": "Invalid signature"}}}},
        "/subscription/status": {"get": {"security": [{"BearerAuth": []}], "tags": ["subscription"], "summary": "Статус подписки", "responses": {"200": {"description": "OK"}}}},
        "/profile": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["profile"], "summary": "Профиль текущего пользователя", "responses": {"200": {"description": "OK"}}},
            "put": {"security": [{"BearerAuth": []}], "tags": ["profile"], "summary": "Обновить академические данные", "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["profile"], "summary": "Удалить аккаунт", "responses": {"200": {"description": "OK"}}}
        },
        "/profile/redirect": {"get": {"security": [{"BearerAuth": []}], "tags": ["profile"], "summary": "Путь дашборда", "responses": {"200": {"description": "OK"}}}},
        "/materials": {"get": {"security": [{"BearerAuth": []}], "tags": ["materials"], "summary": "Каталог материалов", "responses": {"200": {"description": "OK"}, "402": {"description": "Subscription required"}}}},
        "/materials/{id}/download": {"post": {"security": [{"BearerAuth": []}], "tags": ["materials"], "summary": "Ссылка на скачивание", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}},
        "/teacher/uploads": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["teacher"], "summary": "Мои загрузки", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["teacher"], "summary": "Загрузить материал", "consumes": ["multipart/form-data"], "responses": {"201": {"description": "Created"}, "413": {"description": "File too large"}, "415": {"description": "Unsupported type"}}}
        },
        "/teacher/uploads/{id}": {"delete": {"security": [{"BearerAuth": []}], "tags": ["teacher"], "summary": "Удалить материал", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}}}},
        "/admin/users/{id}/role": {"put": {"security": [{"BearerAuth": []}], "tags": ["admin"], "summary": "Сменить роль пользователя", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}},
        "/admin/uploads": {"get": {"security": [{"BearerAuth": []}], "tags": ["admin"], "summary": "Материалы на модерации", "responses": {"200": {"description": "OK"}}}},
        "/admin/uploads/{id}/status": {"put": {"security": [{"BearerAuth": []}], "tags": ["admin"], "summary": "Сменить статус материала", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}},
        "/admin/payments": {"get": {"security": [{"BearerAuth": []}], "tags": ["admin"], "summary": "Журнал платежей", "responses": {"200": {"description": "OK"}}}}
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "StudyHub API",
	Description:      "Учебный портал: материалы по курсам и семестрам, подписка через Razorpay.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
