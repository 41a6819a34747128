// Package outputs discovers finished videos waiting to be published.
package outputs

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/samber/lo"
)

// VideoFile describes one publishable video in the output directory.
type VideoFile struct {
	Filename string
	Path     string
	SizeMB   float64
	ModTime  time.Time
	Title    string
}

// List returns the .mp4 files under dir, newest first, with a display title
// derived from the filename.
func List(dir string) ([]VideoFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read output dir: %w", err)
	}

	mp4s := lo.Filter(entries, func(e os.DirEntry, _ int) bool {
		return !e.IsDir() && strings.HasSuffix(strings.ToLower(e.Name()), ".mp4")
	})

	videos := make([]VideoFile, 0, len(mp4s))
	for _, e := range mp4s {
		info, err := e.Info()
		if err != nil {
			continue
		}
		videos = append(videos, VideoFile{
			Filename: e.Name(),
			Path:     filepath.Join(dir, e.Name()),
			SizeMB:   float64(info.Size()) / (1024 * 1024),
			ModTime:  info.ModTime(),
			Title:    TitleFromFilename(e.Name()),
		})
	}

	sort.Slice(videos, func(i, j int) bool {
		return videos[i].ModTime.After(videos[j].ModTime)
	})
	return videos, nil
}

// TitleFromFilename turns "some_song_name_short.mp4" into "some song name".
func TitleFromFilename(name string) string {
	title := strings.TrimSuffix(name, filepath.Ext(name))
	title = strings.TrimSuffix(title, "_short")
	title = strings.ReplaceAll(title, "_", " ")
	return strings.TrimSpace(title)
}
