// Package docs регистрирует описание API для gin-swagger.
// Шаблон ведется вручную по аннотациям хэндлеров и покрывает основные публичные маршруты.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "Mehndi Marketplace",
            "email": "support@mehndi.local"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/auth/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Вход по email или username",
                "parameters": [
                    {
                        "description": "Учетные данные",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/dto.LoginRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.TokenResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/apperrors.ErrorResponse"}}
                }
            }
        },
        "/auth/register": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Регистрация покупателя или дизайнера",
                "parameters": [
                    {
                        "description": "Данные регистрации",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/dto.RegisterRequest"}
                    }
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/dto.TokenResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/apperrors.ErrorResponse"}}
                }
            }
        },
        "/bookings": {
            "post": {
                "description": "Пересечение с живым бронированием дизайнера дает 409 с conflicting_booking_id",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["bookings"],
                "summary": "Запрос на бронирование дизайнера",
                "parameters": [
                    {
                        "description": "Параметры бронирования",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/dto.CreateBookingRequest"}
                    }
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/dto.BookingResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/apperrors.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/apperrors.ErrorResponse"}}
                }
            }
        },
        "/designs": {
            "get": {
                "description": "Без роли admin возвращаются только одобренные дизайны (и свои у дизайнера)",
                "produces": ["application/json"],
                "tags": ["designs"],
                "summary": "Каталог дизайнов",
                "parameters": [
                    {"type": "string", "description": "Поиск по названию, описанию и тегам", "name": "search", "in": "query"},
                    {"type": "string", "description": "ID категории", "name": "category", "in": "query"},
                    {"type": "string", "description": "ID дизайнера", "name": "designer", "in": "query"},
                    {"type": "string", "description": "-created_at | created_at | -likes_count | -views_count | title", "name": "ordering", "in": "query"},
                    {"type": "integer", "description": "Страница", "name": "page", "in": "query"},
                    {"type": "integer", "description": "Размер страницы", "name": "page_size", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.Paginated-dto_DesignResponse"}}
                }
            }
        }
    },
    "definitions": {
        "apperrors.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {
                    "type": "object",
                    "properties": {
                        "code": {"type": "string"},
                        "domain": {"type": "string"},
                        "message": {"type": "string"},
                        "details": {}
                    }
                }
            }
        },
        "dto.LoginRequest": {
            "type": "object",
            "required": ["password"],
            "properties": {
                "email": {"type": "string"},
                "username": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "dto.RegisterRequest": {
            "type": "object",
            "required": ["email", "password", "role", "username"],
            "properties": {
                "username": {"type": "string"},
                "email": {"type": "string"},
                "password": {"type": "string"},
                "role": {"type": "string", "enum": ["customer", "designer"]},
                "first_name": {"type": "string"},
                "last_name": {"type": "string"},
                "phone": {"type": "string"},
                "location": {"type": "string"},
                "bio": {"type": "string"},
                "years_of_experience": {"type": "integer"},
                "specialization": {"type": "string"},
                "portfolio_url": {"type": "string"}
            }
        },
        "dto.TokenResponse": {
            "type": "object",
            "properties": {
                "access_token": {"type": "string"},
                "refresh_token": {"type": "string"},
                "token_type": {"type": "string"},
                "expires_in": {"type": "integer"},
                "user": {"type": "object"}
            }
        },
        "dto.CreateBookingRequest": {
            "type": "object",
            "required": ["booking_date", "booking_time", "designer_id", "duration_hours", "event_type", "location"],
            "properties": {
                "designer_id": {"type": "string"},
                "booking_date": {"type": "string", "example": "2024-06-01"},
                "booking_time": {"type": "string", "example": "14:00"},
                "duration_hours": {"type": "integer", "maximum": 12, "minimum": 1},
                "event_type": {"type": "string"},
                "location": {"type": "string"},
                "notes": {"type": "string"},
                "estimated_price": {"type": "number"}
            }
        },
        "dto.BookingResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "booking_date": {"type": "string"},
                "booking_time": {"type": "string"},
                "duration_hours": {"type": "integer"},
                "status": {"type": "string", "enum": ["pending", "confirmed", "completed", "cancelled"]},
                "is_past": {"type": "boolean"}
            }
        },
        "dto.Paginated-dto_DesignResponse": {
            "type": "object",
            "properties": {
                "count": {"type": "integer"},
                "next": {"type": "string"},
                "previous": {"type": "string"},
                "results": {"type": "array", "items": {"type": "object"}}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8000",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Mehndi Marketplace API",
	Description:      "Каталог дизайнов мехенди, бронирование мастеров, отзывы и модерация.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
