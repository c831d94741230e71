package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ramonehamilton/DeckOps/internal/api/handlers"
	"github.com/ramonehamilton/DeckOps/internal/api/response"
)

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	// Health check endpoint (no versioning)
	s.router.Get("/health", s.healthCheck)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.healthCheck)

		// Deck routes
		deckHandler := handlers.NewDeckHandler(s.deckFacade)
		simulationHandler := handlers.NewSimulationHandler(s.simulationFacade)
		r.Route("/decks", func(r chi.Router) {
			r.Get("/", deckHandler.GetDecks)
			r.Post("/", deckHandler.CreateDeck)
			r.Post("/import", deckHandler.ImportDeck)
			r.Get("/{deckID}", deckHandler.GetDeck)
			r.Put("/{deckID}", deckHandler.UpdateDeck)
			r.Delete("/{deckID}", deckHandler.DeleteDeck)
			r.Get("/{deckID}/export", deckHandler.ExportDeck)
			r.Get("/{deckID}/composition", deckHandler.GetComposition)
			r.Post("/{deckID}/cards", deckHandler.AddCard)
			r.Delete("/{deckID}/cards/{cardID}", deckHandler.RemoveCard)
			r.Put("/{deckID}/cards/{cardID}/role", deckHandler.SetCardRole)
			r.Get("/{deckID}/simulations", simulationHandler.GetHistory)
			r.Get("/{deckID}/simulations/chart", simulationHandler.GetHistoryChart)
		})

		r.Post("/simulate", simulationHandler.Simulate)

		// Card routes
		cardHandler := handlers.NewCardHandler(s.cardFacade)
		r.Route("/cards", func(r chi.Router) {
			r.Get("/search", cardHandler.SearchCards)
			r.Get("/{cardID}", cardHandler.GetCard)
		})
		r.Get("/banlist", cardHandler.GetBanList)

		// System routes
		systemHandler := handlers.NewSystemHandler(s.systemFacade)
		r.Route("/system", func(r chi.Router) {
			r.Get("/metrics", systemHandler.GetMetrics)
			r.Get("/version", systemHandler.GetVersion)
		})
	})
}

// healthCheck returns server health status.
func (s *Server) healthCheck(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"service": "deckops-api",
	})
}
