package handlers

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crucial707/mineops/internal/db"
	"github.com/crucial707/mineops/internal/repo"
)

func newDraftRepo(t *testing.T) *repo.DraftRepo {
	t.Helper()
	d, err := db.OpenDrafts(filepath.Join(t.TempDir(), "drafts.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })
	return repo.NewDraftRepo(d)
}

func TestDraftHandler_RoundTrip(t *testing.T) {
	h := &DraftHandler{Repo: newDraftRepo(t)}
	params := map[string]string{"key": repo.DraftShiftLog}

	rr := httptest.NewRecorder()
	h.GetDraft(rr, requestWithChiURLParams("GET", "/v1/drafts/shiftHandoverLogData", nil, params))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = httptest.NewRecorder()
	h.SaveDraft(rr, requestWithChiURLParams("PUT", "/v1/drafts/shiftHandoverLogData",
		[]byte(`{"shiftDetails":"half written"}`), params))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = httptest.NewRecorder()
	h.GetDraft(rr, requestWithChiURLParams("GET", "/v1/drafts/shiftHandoverLogData", nil, params))
	require.Equal(t, http.StatusOK, rr.Code)
	var out repo.Draft
	decodeBody(t, rr, &out)
	assert.JSONEq(t, `{"shiftDetails":"half written"}`, string(out.Payload))

	rr = httptest.NewRecorder()
	h.DeleteDraft(rr, requestWithChiURLParams("DELETE", "/v1/drafts/shiftHandoverLogData", nil, params))
	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestDraftHandler_SaveDraft_Rejects(t *testing.T) {
	h := &DraftHandler{Repo: newDraftRepo(t)}

	rr := httptest.NewRecorder()
	h.SaveDraft(rr, requestWithChiURLParams("PUT", "/v1/drafts/notes", []byte(`{}`), map[string]string{"key": "notes"}))
	assert.Equal(t, http.StatusNotFound, rr.Code, "unknown key")

	rr = httptest.NewRecorder()
	h.SaveDraft(rr, requestWithChiURLParams("PUT", "/v1/drafts/smpDraft", []byte(`{"rows":1}`),
		map[string]string{"key": repo.DraftSafetyPlan}))
	assert.Equal(t, http.StatusBadRequest, rr.Code, "safety plan draft must be an array of rows")
}
