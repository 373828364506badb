package main

import (
	"supernova/app"
	"supernova/controllers"
	"supernova/routes"
	"supernova/services"
)

func main() {
	a := app.MustNew("product")

	products := services.NewProductService(a.Products())

	routes.RegisterProductRoutes(a.Engine(), a.Verifier(a.Denylist()), controllers.NewProductController(products))
	a.Run()
}
