// @title           Mehndi Marketplace API
// @version         1.0
// @description     Каталог дизайнов мехенди, бронирование мастеров, отзывы и модерация.
// @contact.name    Mehndi Marketplace
// @contact.email   support@mehndi.local
// @host            localhost:8000
// @BasePath        /api/v1
// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            Authorization

package main

import "mehndi_backend/internal/app"

func main() {
	app.Run()
}
