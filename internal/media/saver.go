package media

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/benbjohnson/clock"
	"resty.dev/v3"
)

// Saver downloads item images into a directory.
type Saver struct {
	dir   string
	http  *resty.Client
	clock clock.Clock
}

func NewSaver(dir string, timeout time.Duration, clk clock.Clock) *Saver {
	if clk == nil {
		clk = clock.New()
	}
	return &Saver{
		dir: dir,
		http: resty.New().
			SetTimeout(timeout).
			SetRetryCount(0),
		clock: clk,
	}
}

func (s *Saver) Dir() string {
	return s.dir
}

// Save fetches imageURL and writes it as JPEG_yyyyMMdd_HHmmss.jpg. It returns
// the path written.
func (s *Saver) Save(ctx context.Context, imageURL string) (string, error) {
	if imageURL == "" {
		return "", fmt.Errorf("no image url")
	}

	resp, err := s.http.R().SetContext(ctx).Get(imageURL)
	if err != nil {
		return "", fmt.Errorf("failed to download image: %w", err)
	}
	if !resp.IsSuccess() {
		return "", fmt.Errorf("image download returned status %d", resp.StatusCode())
	}
	body := []byte(resp.String())
	if len(body) == 0 {
		return "", fmt.Errorf("image download returned no data")
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create image dir: %w", err)
	}
	return s.write(body)
}

func (s *Saver) write(body []byte) (string, error) {
	base := "JPEG_" + s.clock.Now().Format("20060102_150405")
	name := base + ".jpg"
	for n := 1; ; n++ {
		path := filepath.Join(s.dir, name)
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if errors.Is(err, os.ErrExist) {
			name = fmt.Sprintf("%s_%d.jpg", base, n)
			continue
		}
		if err != nil {
			return "", fmt.Errorf("failed to create image file: %w", err)
		}
		if _, err := f.Write(body); err != nil {
			f.Close()
			os.Remove(path)
			return "", fmt.Errorf("failed to write image: %w", err)
		}
		if err := f.Close(); err != nil {
			return "", fmt.Errorf("failed to write image: %w", err)
		}
		return path, nil
	}
}

// Close releases the HTTP client.
func (s *Saver) Close() error {
	return s.http.Close()
}
