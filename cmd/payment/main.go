package main

import (
	"log/slog"

	"supernova/app"
	"supernova/clients"
	"supernova/controllers"
	"supernova/gateway"
	"supernova/routes"
	"supernova/services"
)

func main() {
	a := app.MustNew("payment")
	cfg := a.Config()

	var gw services.Gateway
	if cfg.RazorpayKeyID != "" && cfg.RazorpayKeySecret != "" {
		gw = gateway.NewRazorpay(cfg.RazorpayKeyID, cfg.RazorpayKeySecret)
	} else {
		secret := cfg.RazorpayKeySecret
		if secret == "" {
			secret = cfg.JWTSecret
		}
		slog.Warn("Razorpay keys not set, using the local payment gateway")
		gw = gateway.NewLocal(secret)
	}

	payments := services.NewPaymentService(
		a.Payments(),
		clients.NewOrderClient(cfg.OrderURL, cfg.ClientTimeout),
		gw,
		a.Events(),
	)

	routes.RegisterPaymentRoutes(a.Engine(), a.Verifier(a.Denylist()), controllers.NewPaymentController(payments, cfg.RazorpayKeyID))
	a.Run()
}
