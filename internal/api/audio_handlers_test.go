package api

import (
	"net/http"
	"testing"

	"github.com/viberehab/backend/internal/audio"
	"github.com/viberehab/backend/internal/testutil"
)

func saveTestAudio(t *testing.T, env *testEnv, filename string, permanent bool) audio.FileInfo {
	t.Helper()
	info, err := env.server.audio.Save([]byte("RIFF fake audio"), filename, permanent, "wav")
	if err != nil {
		t.Fatalf("failed to save test audio: %v", err)
	}
	return info
}

func TestGetAudioHandler(t *testing.T) {
	env := newTestEnv(t)
	saveTestAudio(t, env, "story", false)

	rr := env.do(testutil.CreateHTTPRequest(t, http.MethodGet, "/api/audio/story.wav", nil))
	testutil.AssertHTTPStatus(t, http.StatusOK, rr.Code, "get audio")
	if ct := rr.Header().Get("Content-Type"); ct != "audio/wav" {
		t.Errorf("expected audio/wav content type, got %q", ct)
	}
	if rr.Body.String() != "RIFF fake audio" {
		t.Errorf("unexpected audio payload %q", rr.Body.String())
	}
}

func TestGetAudioHandler_NotFound(t *testing.T) {
	env := newTestEnv(t)
	rr := env.do(testutil.CreateHTTPRequest(t, http.MethodGet, "/api/audio/missing.wav", nil))
	testutil.AssertHTTPStatus(t, http.StatusNotFound, rr.Code, "missing audio")
	testutil.AssertJSONResponse(t, rr, false)
}

func TestAudioInfoHandler(t *testing.T) {
	env := newTestEnv(t)
	saveTestAudio(t, env, "story", true)

	rr := env.do(testutil.CreateHTTPRequest(t, http.MethodGet, "/api/audio/story.wav/info", nil))
	testutil.AssertHTTPStatus(t, http.StatusOK, rr.Code, "audio info")

	var info audio.FileInfo
	decodeBody(t, rr, &info)
	if info.Filename != "story.wav" {
		t.Errorf("expected filename story.wav, got %q", info.Filename)
	}
	if !info.Permanent {
		t.Error("expected permanent flag set")
	}
	if info.URL != "/api/audio/story.wav" {
		t.Errorf("unexpected URL %q", info.URL)
	}
}

func TestListAudioHandler(t *testing.T) {
	env := newTestEnv(t)
	saveTestAudio(t, env, "first", false)
	saveTestAudio(t, env, "second", true)

	rr := env.do(testutil.CreateHTTPRequest(t, http.MethodGet, "/api/audio/list", nil))
	testutil.AssertHTTPStatus(t, http.StatusOK, rr.Code, "list audio")
	var resp struct {
		Files []audio.FileInfo `json:"files"`
		Count int              `json:"count"`
	}
	decodeBody(t, rr, &resp)
	if resp.Count != 2 {
		t.Errorf("expected 2 files, got %d", resp.Count)
	}

	rr = env.do(testutil.CreateHTTPRequest(t, http.MethodGet, "/api/audio/list?permanent_only=true", nil))
	decodeBody(t, rr, &resp)
	if resp.Count != 1 || resp.Files[0].Filename != "second.wav" {
		t.Errorf("expected only the permanent file, got %+v", resp.Files)
	}
}

func TestDeleteAudioHandler(t *testing.T) {
	env := newTestEnv(t)
	saveTestAudio(t, env, "story", false)

	rr := env.do(testutil.CreateHTTPRequest(t, http.MethodDelete, "/api/audio/story.wav", nil))
	testutil.AssertHTTPStatus(t, http.StatusOK, rr.Code, "delete audio")
	testutil.AssertJSONResponse(t, rr, true)

	rr = env.do(testutil.CreateHTTPRequest(t, http.MethodGet, "/api/audio/story.wav", nil))
	testutil.AssertHTTPStatus(t, http.StatusNotFound, rr.Code, "deleted audio fetch")
}

func TestCleanupAudioHandler(t *testing.T) {
	env := newTestEnv(t)
	saveTestAudio(t, env, "fresh", false)

	// Fresh files survive a cleanup with the default age.
	rr := env.do(testutil.CreateHTTPRequest(t, http.MethodPost, "/api/audio/cleanup", nil))
	testutil.AssertHTTPStatus(t, http.StatusOK, rr.Code, "cleanup")
	response := testutil.AssertJSONResponse(t, rr, true)
	if response["deleted_count"].(float64) != 0 {
		t.Errorf("expected no deletions for fresh file, got %v", response["deleted_count"])
	}

	rr = env.do(testutil.CreateHTTPRequest(t, http.MethodGet, "/api/audio/fresh.wav", nil))
	testutil.AssertHTTPStatus(t, http.StatusOK, rr.Code, "fresh file kept")
}

func TestAudioHandler_MethodNotAllowed(t *testing.T) {
	env := newTestEnv(t)
	cases := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/audio/list"},
		{http.MethodGet, "/api/audio/cleanup"},
		{http.MethodPost, "/api/audio/story.wav"},
		{http.MethodPost, "/api/audio/story.wav/info"},
	}
	for _, c := range cases {
		rr := env.do(testutil.CreateHTTPRequest(t, c.method, c.path, nil))
		testutil.AssertHTTPStatus(t, http.StatusMethodNotAllowed, rr.Code, c.method+" "+c.path)
	}
}

func TestAudioHandler_UnknownSubpath(t *testing.T) {
	env := newTestEnv(t)
	rr := env.do(testutil.CreateHTTPRequest(t, http.MethodGet, "/api/audio/story.wav/extra/deep", nil))
	testutil.AssertHTTPStatus(t, http.StatusNotFound, rr.Code, "deep audio path")
}

func TestAudioHandler_PathTraversalRejected(t *testing.T) {
	env := newTestEnv(t)
	rr := env.do(testutil.CreateHTTPRequest(t, http.MethodGet, "/api/audio/..%2fsecret.wav", nil))
	if rr.Code == http.StatusOK {
		t.Error("expected traversal attempt to be rejected")
	}
}
