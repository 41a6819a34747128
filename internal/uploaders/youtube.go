package uploaders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"clip-publisher/internal/logging"
	"clip-publisher/internal/model"
	"clip-publisher/internal/progress"
	"clip-publisher/internal/store"
)

const (
	youtubeTitleMax       = 100
	youtubeDescriptionMax = 5000
	youtubeCategoryMusic  = "10"
	youtubeChunkSize      = 5 * 1024 * 1024
)

// YouTubeUploader publishes Shorts through the Data API v3 resumable upload.
// The OAuth token lives in an injected store; the one-time consent flow is
// handled by cmd/authorize.
type YouTubeUploader struct {
	credentialsPath string
	tokens          store.Store
	log             *logging.Logger
}

func NewYouTubeUploader(credentialsPath string, tokens store.Store, log *logging.Logger) *YouTubeUploader {
	return &YouTubeUploader{
		credentialsPath: credentialsPath,
		tokens:          tokens,
		log:             log,
	}
}

func (y *YouTubeUploader) Platform() string {
	return "youtube"
}

func (y *YouTubeUploader) IsConfigured() bool {
	if y.credentialsPath == "" {
		return false
	}
	_, err := os.Stat(y.credentialsPath)
	return err == nil
}

func (y *YouTubeUploader) Upload(ctx context.Context, req *model.UploadRequest, cb progress.Func) (*model.UploadResult, error) {
	service, err := y.authenticate(ctx)
	if err != nil {
		y.log.Errorf("youtube auth: %v", err)
		return model.Failed("youtube", "YouTube authentication failed, run the authorize command"), nil
	}

	videoFile, err := os.Open(req.VideoPath)
	if err != nil {
		return model.Failed("youtube", fmt.Sprintf("cannot open video file %s", req.VideoPath)), nil
	}
	defer videoFile.Close()

	info, err := videoFile.Stat()
	if err != nil {
		return model.Failed("youtube", "cannot stat video file"), nil
	}

	title := model.Truncate(forceShortsTag(req.Title), youtubeTitleMax)
	description := model.Truncate(forceShortsTag(req.Description), youtubeDescriptionMax)

	privacy := string(req.Privacy)
	if privacy == "" {
		privacy = string(model.PrivacyPublic)
	}

	status := &youtube.VideoStatus{
		PrivacyStatus:           privacy,
		SelfDeclaredMadeForKids: false,
	}
	if req.PublishAt != nil {
		// Scheduled videos must sit private until YouTube flips them.
		status.PrivacyStatus = string(model.PrivacyPrivate)
		status.PublishAt = req.PublishAt.UTC().Format(time.RFC3339)
	}

	video := &youtube.Video{
		Snippet: &youtube.VideoSnippet{
			Title:       title,
			Description: description,
			Tags:        req.Tags,
			CategoryId:  youtubeCategoryMusic,
		},
		Status: status,
	}

	call := service.Videos.Insert([]string{"snippet", "status"}, video)
	call = call.Media(videoFile,
		googleapi.ChunkSize(youtubeChunkSize),
		googleapi.ContentType("video/mp4"),
	)
	total := info.Size()
	call.ProgressUpdater(func(current, _ int64) {
		if cb != nil && total > 0 {
			f := float64(current) / float64(total)
			if f > 1.0 {
				f = 1.0
			}
			cb(f)
		}
	})

	inserted, err := call.Context(ctx).Do()
	if err != nil {
		return y.classifyError(err)
	}
	if cb != nil {
		cb(1.0)
	}

	url := "https://youtube.com/shorts/" + inserted.Id
	y.log.Infof("youtube upload done: %s", url)
	return model.Succeeded("youtube", url, inserted.Id), nil
}

// classifyError translates API failures into short user-facing messages and
// decides whether a retry can help.
func (y *YouTubeUploader) classifyError(err error) (*model.UploadResult, error) {
	y.log.Errorf("youtube upload: %v", err)

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		for _, item := range gerr.Errors {
			if item.Reason == "quotaExceeded" || item.Reason == "uploadLimitExceeded" {
				return model.Failed("youtube", "daily upload quota exceeded, try again tomorrow"), nil
			}
		}
		switch gerr.Code {
		case http.StatusForbidden:
			return model.Failed("youtube", "access forbidden, check channel permissions"), nil
		case http.StatusNotFound:
			return model.Failed("youtube", "resource not found, check channel setup"), nil
		}
		// Other API codes (5xx etc.) are worth retrying.
		res := model.Failed("youtube", fmt.Sprintf("upload failed with status %d", gerr.Code))
		return res, err
	}

	if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "timeout") {
		return model.Failed("youtube", "upload timed out"), err
	}
	return model.Failed("youtube", "upload failed: "+err.Error()), err
}

func (y *YouTubeUploader) authenticate(ctx context.Context) (*youtube.Service, error) {
	credBytes, err := os.ReadFile(y.credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("read credentials file: %w", err)
	}

	oauthCfg, err := google.ConfigFromJSON(credBytes, youtube.YoutubeUploadScope)
	if err != nil {
		return nil, fmt.Errorf("parse credentials file: %w", err)
	}

	raw, ok, err := y.tokens.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load token: %w", err)
	}
	if !ok {
		return nil, errors.New("no cached token")
	}
	token := &oauth2.Token{}
	if err := json.Unmarshal(raw, token); err != nil {
		return nil, fmt.Errorf("decode token: %w", err)
	}

	// TokenSource refreshes behind the scenes; persist the rotated token so
	// the refresh survives the next process.
	src := oauthCfg.TokenSource(ctx, token)
	fresh, err := src.Token()
	if err != nil {
		return nil, fmt.Errorf("refresh token: %w", err)
	}
	if fresh.AccessToken != token.AccessToken {
		if b, err := json.Marshal(fresh); err == nil {
			if err := y.tokens.Save(ctx, b); err != nil {
				y.log.Warnf("persist refreshed token: %v", err)
			}
		}
	}

	return youtube.NewService(ctx, option.WithTokenSource(oauth2.ReuseTokenSource(fresh, src)))
}

// forceShortsTag appends #Shorts when the text does not already carry it.
func forceShortsTag(s string) string {
	if strings.Contains(strings.ToLower(s), "#shorts") {
		return s
	}
	if s == "" {
		return "#Shorts"
	}
	return s + " #Shorts"
}
