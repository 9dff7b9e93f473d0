package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/artsfest/festboard/internal/festival"
)

// insightsFallback is shown whenever generation is unavailable. The insights
// card is cosmetic; it must never take the dashboard down with it.
const insightsFallback = "The festival is in full swing. Check the program list for the latest schedule and results."

// InsightsResponse is the response for GET /api/insights.
type InsightsResponse struct {
	Summary string `json:"summary"`
}

// Insights generates a short natural-language summary of the program
// collection. The client is nil when no API key is configured, in which case
// every request degrades to the static fallback.
type Insights struct {
	client *genai.Client
	model  string
	logger *slog.Logger
}

func NewInsights(ctx context.Context, apiKey, model string, logger *slog.Logger) *Insights {
	ins := &Insights{model: model, logger: logger}
	if model == "" {
		ins.model = "gemini-2.0-flash"
	}
	if apiKey == "" {
		return ins
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		logger.Warn("genai client unavailable, insights will use fallback", "error", err)
		return ins
	}
	ins.client = client
	return ins
}

// Summarize returns a one-paragraph status summary, falling back to a static
// string on any failure.
func (ins *Insights) Summarize(ctx context.Context, programs []festival.Program) string {
	if ins.client == nil {
		return insightsFallback
	}

	var b strings.Builder
	b.WriteString("Write a short, upbeat two-sentence status update for an arts festival dashboard based on these programs:\n")
	for _, p := range programs {
		fmt.Fprintf(&b, "- %s (%s): %s\n", p.Name, p.Category, p.Status)
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	result, err := ins.client.Models.GenerateContent(ctx, ins.model, genai.Text(b.String()), nil)
	if err != nil {
		ins.logger.Warn("insights generation failed", "error", err)
		return insightsFallback
	}
	text := strings.TrimSpace(result.Text())
	if text == "" {
		return insightsFallback
	}
	return text
}

func handleInsights(store Gateway, ins *Insights) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		programs, err := store.ListPrograms(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, InsightsResponse{
			Summary: ins.Summarize(r.Context(), programs),
		})
	}
}
