package httpapi_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"fraglog/internal/httpapi"
	"fraglog/internal/ingest"
	"fraglog/internal/rank"
	"fraglog/internal/store"
)

const sampleDocument = `23/04/2019 15:34:22 - New match 11348965 has started
23/04/2019 15:36:04 - Roman killed Nick using M16
23/04/2019 15:36:33 - <WORLD> killed Nick by DROWN
23/04/2019 15:39:22 - Match 11348965 has ended`

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	mem := store.NewMemory()
	return httpapi.New(ingest.New(mem), rank.NewService(mem), mem).Router()
}

func doRequest(t *testing.T, router *gin.Engine, method, path, contentType string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	rec := doRequest(t, newTestRouter(), http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestUploadAndRanking(t *testing.T) {
	router := newTestRouter()

	rec := doRequest(t, router, http.MethodPost, "/logs/upload", "text/plain", []byte(sampleDocument))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"ok": true}`, rec.Body.String())

	rec = doRequest(t, router, http.MethodGet, "/matches", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var matches []rank.MatchInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &matches))
	require.Len(t, matches, 1)
	require.Equal(t, "11348965", matches[0].Label)
	require.NotNil(t, matches[0].EndedAt)

	rec = doRequest(t, router, http.MethodGet, "/matches/11348965/ranking", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var ranking rank.MatchRanking
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ranking))
	require.Len(t, ranking.Ranking, 2)
	require.Equal(t, "Roman", ranking.Ranking[0].Player)
	require.Equal(t, []string{rank.NoDeathAward}, ranking.Ranking[0].Awards)
	require.Equal(t, "Nick", ranking.Ranking[1].Player)
	require.Equal(t, 2, ranking.Ranking[1].Deaths)
}

func TestUploadMultipartFile(t *testing.T) {
	router := newTestRouter()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "games.log")
	require.NoError(t, err)
	_, err = fw.Write([]byte(sampleDocument))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	rec := doRequest(t, router, http.MethodPost, "/logs/upload", mw.FormDataContentType(), buf.Bytes())
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, router, http.MethodGet, "/matches", "", nil)
	require.Contains(t, rec.Body.String(), "11348965")
}

func TestUploadEmptyBody(t *testing.T) {
	rec := doRequest(t, newTestRouter(), http.MethodPost, "/logs/upload", "text/plain", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMatchRankingNotFound(t *testing.T) {
	rec := doRequest(t, newTestRouter(), http.MethodGet, "/matches/999/ranking", "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSetTeamsNotFound(t *testing.T) {
	body := []byte(`{"teams": {"A": "T1"}}`)
	rec := doRequest(t, newTestRouter(), http.MethodPost, "/logs/matches/999/teams", "application/json", body)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSetTeamsAndFriendlyFire(t *testing.T) {
	router := newTestRouter()

	start := "23/04/2019 15:34:22 - New match 1 has started"
	rec := doRequest(t, router, http.MethodPost, "/logs/upload", "text/plain", []byte(start))
	require.Equal(t, http.StatusOK, rec.Code)

	body := []byte(`{"teams": {"A": "T1", "B": "T1"}}`)
	rec = doRequest(t, router, http.MethodPost, "/logs/matches/1/teams", "application/json", body)
	require.Equal(t, http.StatusOK, rec.Code)

	doc := start + "\n23/04/2019 15:35:00 - A killed B using AK47"
	rec = doRequest(t, router, http.MethodPost, "/logs/upload", "text/plain", []byte(doc))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, router, http.MethodGet, "/matches/1/ranking", "", nil)
	var ranking rank.MatchRanking
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ranking))
	require.Equal(t, "A", ranking.Ranking[0].Player)
	require.Equal(t, 1, ranking.Ranking[0].Frags)
	require.Equal(t, 0, ranking.Ranking[0].Score) // friendly fire penalty
}

func TestGlobalRanking(t *testing.T) {
	router := newTestRouter()

	rec := doRequest(t, router, http.MethodGet, "/players/ranking", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `[]`, rec.Body.String())

	rec = doRequest(t, router, http.MethodPost, "/logs/upload", "text/plain", []byte(sampleDocument))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, router, http.MethodGet, "/players/ranking", "", nil)
	var entries []rank.GlobalEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	require.Len(t, entries, 2)
	require.Equal(t, "Roman", entries[0].Player)
	require.Equal(t, "Nick", entries[1].Player)
}
