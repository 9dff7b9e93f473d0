package server

import (
	"log/slog"
	"net/http"

	"github.com/artsfest/festboard/internal/festival"
)

// ChampionsResponse bundles every individual award, recomputed from the full
// collection on each request.
type ChampionsResponse struct {
	KalaPrathibha  *festival.Champion `json:"kalaPrathibha"`
	SargaPrathibha *festival.Champion `json:"sargaPrathibha"`

	ZoneA *festival.Champion `json:"zoneA"`
	ZoneB *festival.Champion `json:"zoneB"`
	ZoneC *festival.Champion `json:"zoneC"`

	Junior *festival.Champion `json:"junior"`
	Senior *festival.Champion `json:"senior"`
}

// handlePublicResults lists completed programs whose results the admin has
// published.
func handlePublicResults(store Gateway) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		programs, err := store.ListPrograms(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		published := []festival.Program{}
		for _, p := range programs {
			if p.Status == festival.StatusCompleted && p.IsResultPublished {
				published = append(published, p)
			}
		}
		writeJSON(w, http.StatusOK, published)
	}
}

func handleLeaderboard(store Gateway, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		programs, err := store.ListPrograms(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, festival.TeamStandings(programs, logger))
	}
}

func handleChampions(store Gateway) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		programs, err := store.ListPrograms(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, ChampionsResponse{
			KalaPrathibha:  festival.KalaPrathibha(programs),
			SargaPrathibha: festival.SargaPrathibha(programs),
			ZoneA:          festival.ZoneChampion(programs, festival.ZoneA),
			ZoneB:          festival.ZoneChampion(programs, festival.ZoneB),
			ZoneC:          festival.ZoneChampion(programs, festival.ZoneC),
			Junior:         festival.AgeGroupChampion(programs, festival.AgeJunior),
			Senior:         festival.AgeGroupChampion(programs, festival.AgeSenior),
		})
	}
}
