package server

import (
	"database/sql"
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/swaggest/swgui/v5emb"
)

func addRoutes(r chi.Router, logger *slog.Logger, db *sql.DB, store Gateway, broker *Broker, ins *Insights, spaDir string) {
	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", v5emb.New("Festboard API", "/openapi.json", "/docs"))
	r.Get("/healthz", handleHealth(logger, db))

	r.Route("/api", func(r chi.Router) {
		r.Post("/login", handleLogin(store))
		r.Post("/logout", handleLogout(store))
		r.Get("/me", handleMe(store))

		// Public results surface.
		r.Get("/results", handlePublicResults(store))
		r.Get("/leaderboard", handleLeaderboard(store, logger))
		r.Get("/champions", handleChampions(store))
		r.Get("/insights", handleInsights(store, ins))

		// Real-time program stream for logged-in dashboards.
		r.With(requireRole(store, RoleGreenRoom, RoleJudge, RoleTeamLeader)).
			Get("/events", handleEvents(store, broker))

		r.Route("/admin", func(r chi.Router) {
			r.Use(requireRole(store, RoleAdmin))
			r.Get("/programs", handleListPrograms(store))
			r.Post("/programs", handleCreateProgram(store))
			r.Get("/programs/{id}", handleGetProgram(store))
			r.Put("/programs/{id}", handleUpdateProgram(store))
			r.Delete("/programs/{id}", handleDeleteProgram(store))
			r.Post("/programs/{id}/status", handleSetStatus(store))
			r.Post("/programs/{id}/reevaluate", handleReevaluate(store))
			r.Post("/programs/{id}/cancel", handleCancelProgram(store))
			r.Post("/programs/{id}/participants", handleAddParticipant(store))
			r.Delete("/programs/{id}/participants/{chestNumber}", handleRemoveParticipant(store))
			r.Delete("/participants/{chestNumber}", handleDeleteParticipantEverywhere(store, logger))
			r.Get("/reconcile", handleReconcileReport(store))
			r.Post("/reconcile", handleReconcileApply(store, logger))
		})

		r.Route("/greenroom", func(r chi.Router) {
			r.Use(requireRole(store, RoleGreenRoom))
			r.Get("/programs", handleGreenRoomPrograms(store))
			r.Post("/programs/{id}/publish", handlePublish(store, true))
			r.Post("/programs/{id}/recall", handlePublish(store, false))
			r.Post("/programs/{id}/codes", handleAssignCodes(store))
			r.Post("/programs/{id}/reveal", handleReveal(store))
			r.Post("/programs/{id}/allocate", handleAllocate(store))
		})

		r.Route("/judge", func(r chi.Router) {
			r.Use(requireRole(store, RoleJudge))
			r.Get("/programs", handleJudgePrograms(store))
			r.Post("/programs/{id}/scores", handleSubmitScores(store))
		})

		r.Route("/team", func(r chi.Router) {
			r.Use(requireRole(store, RoleTeamLeader))
			r.Get("/programs", handleTeamPrograms(store))
			r.Post("/programs/{id}/participants", handleTeamRegister(store))
			r.Delete("/programs/{id}/participants/{chestNumber}", handleTeamRemove(store))
		})
	})

	if spaDir != "" {
		if info, err := os.Stat(spaDir); err == nil && info.IsDir() {
			logger.Info("serving SPA", "dir", spaDir)
			r.NotFound(handleSPA(spaDir))
		}
	}
}
