package uploaders

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clip-publisher/internal/model"
	"clip-publisher/internal/retry"
)

type fbServer struct {
	t          *testing.T
	srv        *httptest.Server
	failPhase  string
	failStatus int
	startCalls int
	uploadBody []byte
	finishForm map[string]string
}

func newFBServer(t *testing.T, failPhase string, failStatus int) *fbServer {
	f := &fbServer{t: t, failPhase: failPhase, failStatus: failStatus}
	f.srv = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fbServer) fail(w http.ResponseWriter) {
	w.WriteHeader(f.failStatus)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{"message": "Invalid parameter", "code": 100},
	})
}

func (f *fbServer) handle(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/upload-session" {
		if f.failPhase == "upload" {
			f.fail(w)
			return
		}
		assert.Equal(f.t, "0", r.Header.Get("offset"))
		assert.NotEmpty(f.t, r.Header.Get("file_size"))
		assert.Contains(f.t, r.Header.Get("Authorization"), "OAuth ")
		f.uploadBody, _ = io.ReadAll(r.Body)
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true})
		return
	}

	require.NoError(f.t, r.ParseForm())
	switch r.Form.Get("upload_phase") {
	case "start":
		f.startCalls++
		if f.failPhase == "start" {
			f.fail(w)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"video_id":   "9001",
			"upload_url": f.srv.URL + "/upload-session",
		})
	case "finish":
		if f.failPhase == "finish" {
			_ = json.NewEncoder(w).Encode(map[string]any{"success": false})
			return
		}
		f.finishForm = map[string]string{
			"title":       r.Form.Get("title"),
			"description": r.Form.Get("description"),
			"video_state": r.Form.Get("video_state"),
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true})
	default:
		w.WriteHeader(http.StatusBadRequest)
	}
}

func testUploader(srv *fbServer) *FacebookUploader {
	up := NewFacebookUploader("page-1", "token-1", discardLog())
	up.baseURL = srv.srv.URL
	return up
}

func testVideo(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clip.mp4")
	require.NoError(t, os.WriteFile(path, []byte("fake video bytes"), 0o644))
	return path
}

func TestFacebookUploadThreePhases(t *testing.T) {
	srv := newFBServer(t, "", 0)
	up := testUploader(srv)

	var final float64
	res, err := up.Upload(context.Background(), &model.UploadRequest{
		VideoPath:   testVideo(t),
		Title:       "My clip",
		Description: "desc",
		Tags:        []string{"music", "new song"},
	}, func(f float64) { final = f })

	require.NoError(t, err)
	require.Equal(t, model.StatusSuccess, res.Status)
	assert.Equal(t, "https://www.facebook.com/reel/9001", res.URL)
	assert.Equal(t, "9001", res.VideoID)
	assert.Equal(t, 1.0, final)

	assert.Equal(t, []byte("fake video bytes"), srv.uploadBody)
	assert.Equal(t, "My clip", srv.finishForm["title"])
	assert.Equal(t, "PUBLISHED", srv.finishForm["video_state"])
	assert.Contains(t, srv.finishForm["description"], "#music")
	assert.Contains(t, srv.finishForm["description"], "#newsong")
}

func TestFacebookStartRejectionIsTerminal(t *testing.T) {
	srv := newFBServer(t, "start", http.StatusBadRequest)
	up := testUploader(srv)

	res, err := up.Upload(context.Background(), &model.UploadRequest{VideoPath: testVideo(t), Title: "x"}, nil)

	assert.NoError(t, err, "a 400 rejection keeps being rejected, retrying cannot fix it")
	require.Equal(t, model.StatusFailed, res.Status)
	assert.Equal(t, "start", res.Details["phase"])
	assert.Contains(t, res.Error, "Invalid parameter")
}

func TestFacebookRejectionIsNotRetried(t *testing.T) {
	srv := newFBServer(t, "start", http.StatusBadRequest)
	up := testUploader(srv)
	req := &model.UploadRequest{VideoPath: testVideo(t), Title: "x"}

	cfg := retry.Config{MaxRetries: 2, Backoff: time.Millisecond}
	res := retry.Upload(context.Background(), "facebook", cfg, func(ctx context.Context) (*model.UploadResult, error) {
		return up.Upload(ctx, req, nil)
	})

	assert.Equal(t, 1, srv.startCalls, "a rejection must reach the start phase exactly once")
	assert.Equal(t, model.StatusFailed, res.Status)
}

func TestFacebookServerErrorIsTransient(t *testing.T) {
	srv := newFBServer(t, "start", http.StatusInternalServerError)
	up := testUploader(srv)

	res, err := up.Upload(context.Background(), &model.UploadRequest{VideoPath: testVideo(t), Title: "x"}, nil)

	assert.Error(t, err, "5xx is worth retrying")
	require.Equal(t, model.StatusFailed, res.Status)
	assert.Equal(t, "start", res.Details["phase"])
}

func TestFacebookTransferRejectionTagsPhase(t *testing.T) {
	srv := newFBServer(t, "upload", http.StatusBadRequest)
	up := testUploader(srv)

	res, err := up.Upload(context.Background(), &model.UploadRequest{VideoPath: testVideo(t), Title: "x"}, nil)

	assert.NoError(t, err)
	require.Equal(t, model.StatusFailed, res.Status)
	assert.Equal(t, "upload", res.Details["phase"])
}

func TestFacebookTransferServerErrorIsTransient(t *testing.T) {
	srv := newFBServer(t, "upload", http.StatusBadGateway)
	up := testUploader(srv)

	res, err := up.Upload(context.Background(), &model.UploadRequest{VideoPath: testVideo(t), Title: "x"}, nil)

	assert.Error(t, err)
	require.Equal(t, model.StatusFailed, res.Status)
	assert.Equal(t, "upload", res.Details["phase"])
}

func TestFacebookFinishRejectionIsTerminal(t *testing.T) {
	srv := newFBServer(t, "finish", 0)
	up := testUploader(srv)

	res, err := up.Upload(context.Background(), &model.UploadRequest{VideoPath: testVideo(t), Title: "x"}, nil)

	assert.NoError(t, err, "an acknowledged finish refusal is a rejection")
	require.Equal(t, model.StatusFailed, res.Status)
	assert.Equal(t, "finish", res.Details["phase"])
}

func TestFacebookIsConfigured(t *testing.T) {
	log := discardLog()
	assert.True(t, NewFacebookUploader("p", "t", log).IsConfigured())
	assert.False(t, NewFacebookUploader("", "t", log).IsConfigured())
	assert.False(t, NewFacebookUploader("p", "", log).IsConfigured())
}
