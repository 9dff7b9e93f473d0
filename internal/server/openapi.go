package server

import (
	"encoding/json"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"

	"github.com/artsfest/festboard/internal/festival"
)

// ErrorResponse is returned for all error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "Festboard API"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("Backend API for the festival event-management dashboard.")

	// GET /healthz
	getHealthz, _ := r.NewOperationContext(http.MethodGet, "/healthz")
	getHealthz.SetSummary("Health check")
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusServiceUnavailable))
	_ = r.AddOperation(getHealthz)

	// POST /api/login
	postLogin, _ := r.NewOperationContext(http.MethodPost, "/api/login")
	postLogin.SetSummary("Log in")
	postLogin.SetDescription("Authenticate with username and password. Sets the session cookie.")
	postLogin.AddReqStructure(LoginRequest{})
	postLogin.AddRespStructure(MeResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postLogin.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(postLogin)

	// POST /api/logout
	postLogout, _ := r.NewOperationContext(http.MethodPost, "/api/logout")
	postLogout.SetSummary("Log out")
	postLogout.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(postLogout)

	// GET /api/me
	getMe, _ := r.NewOperationContext(http.MethodGet, "/api/me")
	getMe.SetSummary("Current user")
	getMe.AddRespStructure(MeResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getMe.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(getMe)

	// GET /api/results
	getResults, _ := r.NewOperationContext(http.MethodGet, "/api/results")
	getResults.SetSummary("Published results")
	getResults.SetDescription("Completed programs whose results have been published.")
	getResults.AddRespStructure([]festival.Program{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(getResults)

	// GET /api/leaderboard
	getLeaderboard, _ := r.NewOperationContext(http.MethodGet, "/api/leaderboard")
	getLeaderboard.SetSummary("Team leaderboard")
	getLeaderboard.SetDescription("Festival-wide team totals over every completed program.")
	getLeaderboard.AddRespStructure(festival.Standings{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(getLeaderboard)

	// GET /api/champions
	getChampions, _ := r.NewOperationContext(http.MethodGet, "/api/champions")
	getChampions.SetSummary("Individual champion awards")
	getChampions.AddRespStructure(ChampionsResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(getChampions)

	// GET /api/insights
	getInsights, _ := r.NewOperationContext(http.MethodGet, "/api/insights")
	getInsights.SetSummary("AI status summary")
	getInsights.SetDescription("Short generated summary of the festival; degrades to a static string.")
	getInsights.AddRespStructure(InsightsResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(getInsights)

	// GET /api/events
	getEvents, _ := r.NewOperationContext(http.MethodGet, "/api/events")
	getEvents.SetSummary("SSE program stream")
	getEvents.SetDescription("Server-Sent Events stream pushing the full program collection on every change.")
	getEvents.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK),
		openapi.WithContentType("text/event-stream"))
	_ = r.AddOperation(getEvents)

	// Admin programs CRUD.
	getPrograms, _ := r.NewOperationContext(http.MethodGet, "/api/admin/programs")
	getPrograms.SetSummary("List programs")
	getPrograms.AddRespStructure([]festival.Program{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(getPrograms)

	postProgram, _ := r.NewOperationContext(http.MethodPost, "/api/admin/programs")
	postProgram.SetSummary("Create program")
	postProgram.AddReqStructure(ProgramRequest{})
	postProgram.AddRespStructure(festival.Program{}, openapi.WithHTTPStatus(http.StatusCreated))
	postProgram.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	_ = r.AddOperation(postProgram)

	putProgram, _ := r.NewOperationContext(http.MethodPut, "/api/admin/programs/{id}")
	putProgram.SetSummary("Update program")
	putProgram.SetDescription("Partial update; omitted fields are left untouched. Status edits are checked against the workflow.")
	putProgram.AddReqStructure(ProgramPatch{})
	putProgram.AddRespStructure(festival.Program{}, openapi.WithHTTPStatus(http.StatusOK))
	putProgram.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(putProgram)

	postScores, _ := r.NewOperationContext(http.MethodPost, "/api/judge/programs/{id}/scores")
	postScores.SetSummary("Submit scores")
	postScores.SetDescription("Applies the judge's score sheet, ranks every participant and team, and completes the program.")
	postScores.AddReqStructure(ScoreSheet{})
	postScores.AddRespStructure(festival.Program{}, openapi.WithHTTPStatus(http.StatusOK))
	postScores.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(postScores)

	postReconcile, _ := r.NewOperationContext(http.MethodPost, "/api/admin/reconcile")
	postReconcile.SetSummary("Repair team assignments")
	postReconcile.SetDescription("Rebuilds team membership from chest numbers across all programs.")
	postReconcile.AddRespStructure(ReconcileResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(postReconcile)

	return r.Spec
}

func handleOpenAPI() http.HandlerFunc {
	spec := newOpenAPISpec()
	data, _ := json.Marshal(spec)

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Write(data)
	}
}
