package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/devang100/live-ai-assistant/internal/api"
	"github.com/devang100/live-ai-assistant/internal/config"
	"github.com/devang100/live-ai-assistant/internal/core"
	"github.com/devang100/live-ai-assistant/internal/llm"
	"github.com/devang100/live-ai-assistant/internal/search"
	"github.com/devang100/live-ai-assistant/internal/store"
)

func main() {
	// Load configuration
	config.LoadConfig()

	// Setup logging
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	if config.AppConfig.LogLevel == "DEBUG" {
		log.Println("Service starting in DEBUG mode")
	}

	// Initialize database store
	dbStore, err := store.NewSQLiteStore(config.AppConfig.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer dbStore.Close()

	// Resolve the LLM provider once for the lifetime of the process.
	provider, providerErr := llm.SelectProvider(config.AppConfig.GroqAPIKey, config.AppConfig.OpenAIAPIKey)
	if providerErr != nil {
		// Not fatal: chat requests answer with a configuration-error body.
		log.Printf("Warning: %v", providerErr)
	} else {
		log.Printf("Using LLM provider %q with model %q", provider.Name, provider.Model)
	}

	// Initialize search client
	searchClient := search.NewClient(config.AppConfig.TavilyAPIKey)
	if !searchClient.Enabled() {
		log.Println("Tavily API key not configured; web search is disabled")
	}

	// Pick the search-intent policy
	var decider core.SearchDecider
	switch config.AppConfig.SearchPolicy {
	case "model":
		decider = &core.ModelDecider{Provider: provider}
	default:
		decider = core.HeuristicDecider{}
	}
	log.Printf("Search-intent policy: %s", config.AppConfig.SearchPolicy)

	// Initialize Chat service
	chatService := core.NewChatService(provider, providerErr, searchClient, decider, dbStore,
		config.AppConfig.Temperature, config.AppConfig.MaxTokens)

	// Initialize API Handler and Router
	apiHandler := api.NewAPIHandler(chatService, dbStore)
	router := api.NewRouter(apiHandler)

	// Start HTTP server
	serverAddr := fmt.Sprintf(":%s", config.AppConfig.HTTPPort)

	srv := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // Streamed LLM replies can take time
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown handling
	go func() {
		log.Printf("Starting server on %s. Press Ctrl+C to quit.", serverAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v\n", serverAddr, err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Give active connections time to finish.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting gracefully")
}
