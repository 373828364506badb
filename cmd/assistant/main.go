package main

import (
	"log/slog"
	"os"

	"github.com/tmc/langchaingo/llms/openai"

	"supernova/app"
	"supernova/assistant"
	"supernova/clients"
	"supernova/controllers"
	"supernova/routes"
)

func main() {
	a := app.MustNew("assistant")
	cfg := a.Config()

	llm, err := openai.New(
		openai.WithBaseURL(cfg.LLMBaseURL),
		openai.WithModel(cfg.LLMModel),
		openai.WithToken(cfg.LLMAPIKey),
	)
	if err != nil {
		slog.Error("LLM client init failed", "error", err)
		os.Exit(1)
	}

	tools := assistant.NewToolbox(
		clients.NewProductClient(cfg.ProductURL, cfg.ClientTimeout),
		clients.NewCartClient(cfg.CartURL, cfg.ClientTimeout),
	)
	agent := assistant.NewAgent(llm, tools, cfg.MaxSteps)

	routes.RegisterAssistantRoutes(a.Engine(), a.Verifier(a.Denylist()), controllers.NewAssistantController(agent, cfg.AllowedOrigins))
	a.Run()
}
