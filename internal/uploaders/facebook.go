package uploaders

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"clip-publisher/internal/logging"
	"clip-publisher/internal/model"
	"clip-publisher/internal/progress"
)

const (
	facebookGraphBase      = "https://graph.facebook.com/v21.0"
	facebookTitleMax       = 255
	facebookDescriptionMax = 5000
)

// FacebookUploader publishes Reels through the Graph API's three-phase
// resumable flow: start negotiates a video id and upload URL, upload streams
// the raw file, finish attaches metadata and triggers publishing.
type FacebookUploader struct {
	pageID      string
	accessToken string
	baseURL     string
	client      *http.Client
	log         *logging.Logger
}

func NewFacebookUploader(pageID, accessToken string, log *logging.Logger) *FacebookUploader {
	return &FacebookUploader{
		pageID:      pageID,
		accessToken: accessToken,
		baseURL:     facebookGraphBase,
		client:      &http.Client{Timeout: 10 * time.Minute},
		log:         log,
	}
}

func (f *FacebookUploader) Platform() string {
	return "facebook"
}

func (f *FacebookUploader) IsConfigured() bool {
	return f.pageID != "" && f.accessToken != ""
}

func (f *FacebookUploader) Upload(ctx context.Context, req *model.UploadRequest, cb progress.Func) (*model.UploadResult, error) {
	videoID, uploadURL, err := f.startPhase(ctx)
	if err != nil {
		return f.phaseFailure("start", "failed to start reel upload session", err)
	}

	if err := f.uploadPhase(ctx, uploadURL, req.VideoPath, cb); err != nil {
		return f.phaseFailure("upload", "failed to transfer video bytes", err)
	}

	if err := f.finishPhase(ctx, videoID, req); err != nil {
		return f.phaseFailure("finish", "failed to publish reel", err)
	}

	if cb != nil {
		cb(1.0)
	}
	reelURL := "https://www.facebook.com/reel/" + videoID
	f.log.Infof("facebook reel published: %s", reelURL)
	return model.Succeeded("facebook", reelURL, videoID), nil
}

// graphError is a non-success response from the Graph API, kept whole so the
// failure can be classified and the API's own message surfaced.
type graphError struct {
	status int
	body   string
}

func (e *graphError) Error() string {
	return fmt.Sprintf("graph api returned %d: %s", e.status, e.body)
}

// retryable reports whether a retry can plausibly fix the response. Server
// failures and throttling can recover; everything else the API said no to is
// a rejection that will keep being rejected.
func (e *graphError) retryable() bool {
	return e.status >= 500 ||
		e.status == http.StatusRequestTimeout ||
		e.status == http.StatusTooManyRequests
}

// phaseFailure builds the phase-tagged failed Result for one phase and
// decides retryability: rejections come back with a nil error so the retry
// orchestrator stops, transport and server failures keep the error.
func (f *FacebookUploader) phaseFailure(phase, msg string, err error) (*model.UploadResult, error) {
	f.log.Errorf("facebook %s phase: %v", phase, err)

	var gerr *graphError
	if errors.As(err, &gerr) {
		if apiMsg := gjson.Get(gerr.body, "error.message").String(); apiMsg != "" {
			msg = msg + ": " + apiMsg
		}
		res := model.Failed("facebook", msg).WithDetail("phase", phase)
		if !gerr.retryable() {
			return res, nil
		}
		return res, err
	}
	return model.Failed("facebook", msg).WithDetail("phase", phase), err
}

// startPhase negotiates an upload session and returns the video id and the
// session's upload URL.
func (f *FacebookUploader) startPhase(ctx context.Context) (string, string, error) {
	form := url.Values{
		"upload_phase": {"start"},
		"access_token": {f.accessToken},
	}
	endpoint := fmt.Sprintf("%s/%s/video_reels", f.baseURL, f.pageID)
	body, err := f.postForm(ctx, endpoint, form)
	if err != nil {
		return "", "", err
	}

	videoID := gjson.GetBytes(body, "video_id").String()
	uploadURL := gjson.GetBytes(body, "upload_url").String()
	if videoID == "" || uploadURL == "" {
		return "", "", fmt.Errorf("start response missing video_id or upload_url: %s", body)
	}
	return videoID, uploadURL, nil
}

// uploadPhase streams the raw file to the session URL with the offset and
// size headers the resumable protocol requires.
func (f *FacebookUploader) uploadPhase(ctx context.Context, uploadURL, videoPath string, cb progress.Func) error {
	file, err := os.Open(videoPath)
	if err != nil {
		return fmt.Errorf("open video: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("stat video: %w", err)
	}

	body := progress.NewReader(file, info.Size(), cb)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uploadURL, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "OAuth "+f.accessToken)
	req.Header.Set("offset", "0")
	req.Header.Set("file_size", strconv.FormatInt(info.Size(), 10))
	req.ContentLength = body.Len()

	resp, err := f.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return &graphError{status: resp.StatusCode, body: string(respBody)}
	}
	if !gjson.GetBytes(respBody, "success").Bool() {
		// The session accepted the bytes but refused the upload; reusing the
		// session will not help.
		return &graphError{status: resp.StatusCode, body: string(respBody)}
	}
	return nil
}

// finishPhase attaches metadata and flips the reel to published.
func (f *FacebookUploader) finishPhase(ctx context.Context, videoID string, req *model.UploadRequest) error {
	description := req.Description
	if len(req.Tags) > 0 {
		hashtags := make([]string, 0, len(req.Tags))
		for _, t := range req.Tags {
			hashtags = append(hashtags, "#"+strings.ReplaceAll(t, " ", ""))
		}
		description = strings.TrimSpace(description + "\n\n" + strings.Join(hashtags, " "))
	}

	form := url.Values{
		"upload_phase": {"finish"},
		"video_id":     {videoID},
		"video_state":  {"PUBLISHED"},
		"title":        {model.Truncate(req.Title, facebookTitleMax)},
		"description":  {model.Truncate(description, facebookDescriptionMax)},
		"access_token": {f.accessToken},
	}
	endpoint := fmt.Sprintf("%s/%s/video_reels", f.baseURL, f.pageID)
	body, err := f.postForm(ctx, endpoint, form)
	if err != nil {
		return err
	}
	if !gjson.GetBytes(body, "success").Bool() {
		return &graphError{status: http.StatusOK, body: string(body)}
	}
	return nil
}

func (f *FacebookUploader) postForm(ctx context.Context, endpoint string, form url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &graphError{status: resp.StatusCode, body: string(body)}
	}
	return body, nil
}
