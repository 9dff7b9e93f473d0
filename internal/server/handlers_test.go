package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artsfest/festboard/internal/database"
	"github.com/artsfest/festboard/internal/festival"
)

// newTestServer spins up the full route tree over a fresh seeded database.
func newTestServer(t *testing.T) (*httptest.Server, *DocStore) {
	t.Helper()
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	db, err := database.Open(ctx, filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	broker := NewBroker()
	store, err := NewDocStore(ctx, db, broker, logger)
	require.NoError(t, err)
	require.NoError(t, SeedDemo(ctx, logger, store))

	r := chi.NewRouter()
	addRoutes(r, logger, db, store, broker, NewInsights(ctx, "", "", logger), "")

	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)
	return ts, store
}

// login returns a client whose cookie jar carries the user's session.
func login(t *testing.T, ts *httptest.Server, username, password string) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{Jar: jar}

	resp := doJSON(t, client, http.MethodPost, ts.URL+"/api/login",
		LoginRequest{Username: username, Password: password}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, "login as %s", username)
	return client
}

// doJSON issues a request with an optional JSON body and decodes the response
// into out when non-nil. The response body is always closed.
func doJSON(t *testing.T, client *http.Client, method, url string, body, out any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func TestLogin(t *testing.T) {
	ts, _ := newTestServer(t)
	client := &http.Client{}

	resp := doJSON(t, client, http.MethodPost, ts.URL+"/api/login",
		LoginRequest{Username: "admin", Password: "wrong"}, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = doJSON(t, client, http.MethodPost, ts.URL+"/api/login",
		LoginRequest{Username: "nobody", Password: "x"}, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	admin := login(t, ts, "admin", "admin")
	var me MeResponse
	resp = doJSON(t, admin, http.MethodGet, ts.URL+"/api/me", nil, &me)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, RoleAdmin, me.Role)

	resp = doJSON(t, admin, http.MethodPost, ts.URL+"/api/logout", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp = doJSON(t, admin, http.MethodGet, ts.URL+"/api/me", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRoleEnforcement(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := doJSON(t, &http.Client{}, http.MethodGet, ts.URL+"/api/admin/programs", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	greenroom := login(t, ts, "greenroom", "greenroom")
	resp = doJSON(t, greenroom, http.MethodGet, ts.URL+"/api/admin/programs", nil, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Admins pass every role check.
	admin := login(t, ts, "admin", "admin")
	resp = doJSON(t, admin, http.MethodGet, ts.URL+"/api/judge/programs", nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAdminProgramCRUD(t *testing.T) {
	ts, _ := newTestServer(t)
	admin := login(t, ts, "admin", "admin")

	var created festival.Program
	resp := doJSON(t, admin, http.MethodPost, ts.URL+"/api/admin/programs", ProgramRequest{
		Name:     "Recitation",
		Category: "C zone no stage junior",
	}, &created)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, festival.StatusPending, created.Status)

	resp = doJSON(t, admin, http.MethodPost, ts.URL+"/api/admin/programs",
		ProgramRequest{Category: "stage"}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "name is required")

	resp = doJSON(t, admin, http.MethodPost, ts.URL+"/api/admin/programs",
		ProgramRequest{Name: "Group Song", Category: "stage", IsGroup: true}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "group programs need membersPerGroup")

	var got festival.Program
	resp = doJSON(t, admin, http.MethodGet, ts.URL+"/api/admin/programs/"+created.ID, nil, &got)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Recitation", got.Name)

	venue := "Room 12"
	var updated festival.Program
	resp = doJSON(t, admin, http.MethodPut, ts.URL+"/api/admin/programs/"+created.ID,
		ProgramPatch{Venue: &venue}, &updated)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Room 12", updated.Venue)
	assert.Equal(t, "Recitation", updated.Name)

	// The edit form cannot force COMPLETED, nor hand the program to the
	// judges without going through allocation.
	completed := festival.StatusCompleted
	resp = doJSON(t, admin, http.MethodPut, ts.URL+"/api/admin/programs/"+created.ID,
		ProgramPatch{Status: &completed}, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	judging := festival.StatusJudging
	resp = doJSON(t, admin, http.MethodPut, ts.URL+"/api/admin/programs/"+created.ID,
		ProgramPatch{Status: &judging}, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// Results cannot be published before completion.
	published := true
	resp = doJSON(t, admin, http.MethodPut, ts.URL+"/api/admin/programs/"+created.ID,
		ProgramPatch{IsResultPublished: &published}, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = doJSON(t, admin, http.MethodDelete, ts.URL+"/api/admin/programs/"+created.ID, nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp = doJSON(t, admin, http.MethodGet, ts.URL+"/api/admin/programs/"+created.ID, nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestParticipantRegistration(t *testing.T) {
	ts, _ := newTestServer(t)
	admin := login(t, ts, "admin", "admin")

	var p festival.Program
	resp := doJSON(t, admin, http.MethodPost, ts.URL+"/api/admin/programs",
		ProgramRequest{Name: "Solo", Category: "stage"}, &p)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	programURL := ts.URL + "/api/admin/programs/" + p.ID

	var after festival.Program
	resp = doJSON(t, admin, http.MethodPost, programURL+"/participants",
		ParticipantRequest{Name: "Asha", ChestNumber: "201"}, &after)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, after.Teams, 1)
	assert.Equal(t, "PRUDENTIA", after.Teams[0].TeamName, "team derives from the chest number")

	resp = doJSON(t, admin, http.MethodPost, programURL+"/participants",
		ParticipantRequest{Name: "Binu", ChestNumber: "301"}, &after)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, after.Teams, 2)
	assert.Equal(t, "SAPIENTIA", after.Teams[1].TeamName)

	resp = doJSON(t, admin, http.MethodPost, programURL+"/participants",
		ParticipantRequest{Name: "Dup", ChestNumber: "201"}, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode, "duplicate chest numbers are rejected")

	resp = doJSON(t, admin, http.MethodPost, programURL+"/participants",
		ParticipantRequest{Name: "Ghost", ChestNumber: "999"}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "chest number outside every range")

	resp = doJSON(t, admin, http.MethodDelete, programURL+"/participants/301", nil, &after)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, after.Teams, 1, "emptied teams are dropped")

	resp = doJSON(t, admin, http.MethodDelete, programURL+"/participants/301", nil, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

// chestCodes maps chest numbers to assigned code letters.
func chestCodes(p festival.Program) map[string]string {
	codes := make(map[string]string)
	for _, t := range p.Teams {
		for _, pt := range t.Participants {
			codes[pt.ChestNumber] = pt.CodeLetter
		}
	}
	return codes
}

func TestFestivalWorkflow(t *testing.T) {
	ts, _ := newTestServer(t)
	admin := login(t, ts, "admin", "admin")

	var p festival.Program
	resp := doJSON(t, admin, http.MethodPost, ts.URL+"/api/admin/programs",
		ProgramRequest{Name: "Classical Solo", Category: "B zone stage senior"}, &p)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	adminURL := ts.URL + "/api/admin/programs/" + p.ID
	greenURL := ts.URL + "/api/greenroom/programs/" + p.ID

	for _, reg := range []ParticipantRequest{
		{Name: "Asha", ChestNumber: "201"},
		{Name: "Binu", ChestNumber: "301"},
	} {
		resp = doJSON(t, admin, http.MethodPost, adminURL+"/participants", reg, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	// Allocation before publication is rejected.
	resp = doJSON(t, admin, http.MethodPost, greenURL+"/allocate",
		AllocateRequest{JudgePanel: "Stage 1"}, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = doJSON(t, admin, http.MethodPost, greenURL+"/publish", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Allocation still blocked until every code is revealed.
	resp = doJSON(t, admin, http.MethodPost, greenURL+"/allocate",
		AllocateRequest{JudgePanel: "Stage 1"}, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = doJSON(t, admin, http.MethodPost, greenURL+"/codes", nil, &p)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	codes := chestCodes(p)
	require.Len(t, codes, 2)
	assert.NotEqual(t, codes["201"], codes["301"])

	resp = doJSON(t, admin, http.MethodPost, greenURL+"/reveal",
		RevealRequest{ChestNumber: "999"}, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	for _, chest := range []string{"201", "301"} {
		resp = doJSON(t, admin, http.MethodPost, greenURL+"/reveal",
			RevealRequest{ChestNumber: chest}, &p)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}
	assert.True(t, p.AllCodesRevealed())
	assert.Equal(t, codes, chestCodes(p), "reveal never reassigns letters")

	resp = doJSON(t, admin, http.MethodPost, greenURL+"/allocate",
		AllocateRequest{JudgePanel: "Stage 1"}, &p)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, festival.StatusJudging, p.Status)

	// The judge sees the program anonymized, scoped to their panel.
	judge := login(t, ts, "judge1", "judge1")
	var assigned []JudgeProgram
	resp = doJSON(t, judge, http.MethodGet, ts.URL+"/api/judge/programs", nil, &assigned)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, assigned, 1)
	require.Len(t, assigned[0].Entities, 2)
	for _, e := range assigned[0].Entities {
		assert.NotEmpty(t, e.CodeLetter)
		assert.Equal(t, 1, e.MemberCount)
	}

	resp = doJSON(t, judge, http.MethodPost, ts.URL+"/api/judge/programs/"+p.ID+"/scores",
		ScoreSheet{Scores: map[string]festival.ScoreEntry{
			codes["201"]: {Score: 90, Grade: "A+"},
			codes["301"]: {Score: 60, Grade: "B"},
		}}, &p)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, festival.StatusCompleted, p.Status)
	assert.False(t, p.IsPublished, "completion pulls the program from the green room")

	winner := p.ParticipantByChest("201")
	require.NotNil(t, winner)
	assert.InDelta(t, 8.5, winner.Points, 1e-9)
	assert.Equal(t, 1, winner.Rank)

	// Results stay hidden until the admin publishes them.
	var public []festival.Program
	resp = doJSON(t, admin, http.MethodGet, ts.URL+"/api/results", nil, &public)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, public)

	published := true
	resp = doJSON(t, admin, http.MethodPut, adminURL,
		ProgramPatch{IsResultPublished: &published}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, admin, http.MethodGet, ts.URL+"/api/results", nil, &public)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, public, 1)
	assert.Equal(t, "Classical Solo", public[0].Name)

	var standings festival.Standings
	resp = doJSON(t, admin, http.MethodGet, ts.URL+"/api/leaderboard", nil, &standings)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 10.0, standings.Totals["PRUDENTIA"])
	assert.Equal(t, 7.0, standings.Totals["SAPIENTIA"])
	assert.Equal(t, "PRUDENTIA", standings.Leader)
	assert.Equal(t, 3.0, standings.Margin)

	var champions ChampionsResponse
	resp = doJSON(t, admin, http.MethodGet, ts.URL+"/api/champions", nil, &champions)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, champions.KalaPrathibha)
	assert.Equal(t, "Asha", champions.KalaPrathibha.Name)
	require.NotNil(t, champions.ZoneB)
	assert.Equal(t, "Asha", champions.ZoneB.Name)
	assert.Nil(t, champions.ZoneA)

	// Re-evaluate reopens judging; resubmission overwrites the stored result.
	resp = doJSON(t, admin, http.MethodPost, adminURL+"/reevaluate", nil, &p)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, festival.StatusJudging, p.Status)

	resp = doJSON(t, judge, http.MethodPost, ts.URL+"/api/judge/programs/"+p.ID+"/scores",
		ScoreSheet{Scores: map[string]festival.ScoreEntry{
			codes["201"]: {Score: 40, Grade: "C"},
			codes["301"]: {Score: 95, Grade: "A+"},
		}}, &p)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, p.ParticipantByChest("301").Rank)
}

func TestJudgePanelScoping(t *testing.T) {
	ts, store := newTestServer(t)
	ctx := context.Background()

	// A program judged by another panel is invisible to judge1 and rejects
	// their submissions.
	_, err := store.CreateProgram(ctx, festival.Program{
		ID:         "other-panel",
		Name:       "Mono Act",
		Category:   "stage",
		Status:     festival.StatusJudging,
		JudgePanel: "Stage 2",
	})
	require.NoError(t, err)

	judge := login(t, ts, "judge1", "judge1")
	var assigned []JudgeProgram
	resp := doJSON(t, judge, http.MethodGet, ts.URL+"/api/judge/programs", nil, &assigned)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, assigned)

	resp = doJSON(t, judge, http.MethodPost, ts.URL+"/api/judge/programs/other-panel/scores",
		ScoreSheet{}, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestGreenRoomVisibility(t *testing.T) {
	ts, store := newTestServer(t)
	ctx := context.Background()

	_, err := store.CreateProgram(ctx, festival.Program{
		ID: "vis", Name: "Visible", StartTime: "1", IsPublished: true,
	})
	require.NoError(t, err)
	_, err = store.CreateProgram(ctx, festival.Program{
		ID: "hid", Name: "Hidden", StartTime: "2",
	})
	require.NoError(t, err)

	greenroom := login(t, ts, "greenroom", "greenroom")
	var visible []festival.Program
	resp := doJSON(t, greenroom, http.MethodGet, ts.URL+"/api/greenroom/programs", nil, &visible)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, visible, 1)
	assert.Equal(t, "Visible", visible[0].Name)

	// Recall removes it again.
	resp = doJSON(t, greenroom, http.MethodPost, ts.URL+"/api/greenroom/programs/vis/recall", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp = doJSON(t, greenroom, http.MethodGet, ts.URL+"/api/greenroom/programs", nil, &visible)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, visible)
}

func TestTeamLeaderScope(t *testing.T) {
	ts, store := newTestServer(t)
	ctx := context.Background()

	_, err := store.CreateProgram(ctx, festival.Program{ID: "solo", Name: "Solo", Status: festival.StatusPending})
	require.NoError(t, err)

	leader := login(t, ts, "leader-prudentia", "prudentia")

	resp := doJSON(t, leader, http.MethodPost, ts.URL+"/api/team/programs/solo/participants",
		ParticipantRequest{Name: "Asha", ChestNumber: "250"}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Chest 350 belongs to the other team.
	resp = doJSON(t, leader, http.MethodPost, ts.URL+"/api/team/programs/solo/participants",
		ParticipantRequest{Name: "Binu", ChestNumber: "350"}, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = doJSON(t, leader, http.MethodDelete, ts.URL+"/api/team/programs/solo/participants/250", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Registration closes once the program leaves PENDING.
	status := festival.StatusCancelled
	require.NoError(t, store.UpdateProgram(ctx, "solo", ProgramPatch{Status: &status}))
	resp = doJSON(t, leader, http.MethodPost, ts.URL+"/api/team/programs/solo/participants",
		ParticipantRequest{Name: "Asha", ChestNumber: "250"}, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestDeleteParticipantEverywhere(t *testing.T) {
	ts, store := newTestServer(t)
	ctx := context.Background()

	teams := []festival.Team{{ID: "t", TeamName: "PRUDENTIA", Participants: []festival.Participant{
		{Name: "Asha", ChestNumber: "201"},
		{Name: "Devi", ChestNumber: "202"},
	}}}
	for _, id := range []string{"a", "b"} {
		_, err := store.CreateProgram(ctx, festival.Program{ID: id, Name: id, Teams: teams})
		require.NoError(t, err)
	}

	admin := login(t, ts, "admin", "admin")
	var result BatchResult
	resp := doJSON(t, admin, http.MethodDelete, ts.URL+"/api/admin/participants/201", nil, &result)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.ElementsMatch(t, []string{"a", "b"}, result.Succeeded)
	assert.Empty(t, result.Failed)

	for _, id := range []string{"a", "b"} {
		p, err := store.GetProgram(ctx, id)
		require.NoError(t, err)
		assert.Nil(t, p.ParticipantByChest("201"))
		assert.NotNil(t, p.ParticipantByChest("202"))
	}
}

func TestReconcileEndpoints(t *testing.T) {
	ts, store := newTestServer(t)
	ctx := context.Background()

	_, err := store.CreateProgram(ctx, festival.Program{
		ID:   "misfiled",
		Name: "Misfiled",
		Teams: []festival.Team{{ID: "t", TeamName: "PRUDENTIA", Participants: []festival.Participant{
			{Name: "Asha", ChestNumber: "201"},
			{Name: "Binu", ChestNumber: "301"},
		}}},
	})
	require.NoError(t, err)

	admin := login(t, ts, "admin", "admin")

	var moves []festival.Move
	resp := doJSON(t, admin, http.MethodGet, ts.URL+"/api/admin/reconcile", nil, &moves)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, moves, 1)
	assert.Equal(t, "301", moves[0].ChestNumber)
	assert.Equal(t, "SAPIENTIA", moves[0].ToTeam)

	var applied ReconcileResponse
	resp = doJSON(t, admin, http.MethodPost, ts.URL+"/api/admin/reconcile", nil, &applied)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"misfiled"}, applied.Result.Succeeded)
	assert.Empty(t, applied.Result.Failed)

	p, err := store.GetProgram(ctx, "misfiled")
	require.NoError(t, err)
	require.Len(t, p.Teams, 2)
	assert.Equal(t, "SAPIENTIA", p.Teams[1].TeamName)

	// Second run finds nothing to do.
	resp = doJSON(t, admin, http.MethodPost, ts.URL+"/api/admin/reconcile", nil, &applied)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, applied.Moves)
	assert.Empty(t, applied.Result.Succeeded)
}

func TestInsightsFallback(t *testing.T) {
	ts, _ := newTestServer(t)

	var out InsightsResponse
	resp := doJSON(t, &http.Client{}, http.MethodGet, ts.URL+"/api/insights", nil, &out)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, insightsFallback, out.Summary, "no API key means the static fallback")
}

func TestHealthz(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := doJSON(t, &http.Client{}, http.MethodGet, ts.URL+"/healthz", nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
