package main

import (
	"supernova/app"
	"supernova/controllers"
	"supernova/middleware"
	"supernova/routes"
	"supernova/services"
)

func main() {
	a := app.MustNew("auth")
	cfg := a.Config()

	denylist := a.Denylist()
	auth := services.NewAuthService(a.Users(), denylist, middleware.NewIssuer(cfg.JWTSecret, cfg.TokenTTL))

	routes.RegisterAuthRoutes(a.Engine(), a.Verifier(denylist), controllers.NewAuthController(auth, cfg.CookieSecure))
	a.Run()
}
