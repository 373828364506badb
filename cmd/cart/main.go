package main

import (
	"supernova/app"
	"supernova/controllers"
	"supernova/routes"
	"supernova/services"
)

func main() {
	a := app.MustNew("cart")

	carts := services.NewCartService(a.Carts())

	routes.RegisterCartRoutes(a.Engine(), a.Verifier(a.Denylist()), controllers.NewCartController(carts))
	a.Run()
}
