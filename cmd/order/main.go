package main

import (
	"supernova/app"
	"supernova/clients"
	"supernova/controllers"
	"supernova/routes"
	"supernova/services"
)

func main() {
	a := app.MustNew("order")
	cfg := a.Config()

	orders := a.Orders()
	events := a.Events()

	checkout := services.NewCheckout(
		clients.NewCartClient(cfg.CartURL, cfg.ClientTimeout),
		clients.NewProductClient(cfg.ProductURL, cfg.ClientTimeout),
		orders,
		events,
	)
	lifecycle := services.NewOrderService(orders, events)

	routes.RegisterOrderRoutes(a.Engine(), a.Verifier(a.Denylist()), controllers.NewOrderController(checkout, lifecycle))
	a.Run()
}
