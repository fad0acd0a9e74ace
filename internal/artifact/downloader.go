package artifact

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"github.com/ajnaduvil/ThetaDataTerminalManager/internal/logging"
)

// Progress is one download progress report. Percent is 0 while the total
// size is unknown, and the final report for a successful download is always
// exactly 100.
type Progress struct {
	Percent    int
	Downloaded int64
	Total      int64
}

// ProgressFunc receives progress reports during a download.
type ProgressFunc func(Progress)

// CompleteFunc receives the outcome of a download. The "download in
// progress" flag is already cleared when it runs, so a new download may be
// started from inside the callback.
type CompleteFunc func(success bool)

// Downloader fetches the terminal jar from its fixed URL into its fixed
// destination. At most one transfer runs at a time; there is no mid-download
// cancellation and failed transfers are not retried or cleaned up.
type Downloader struct {
	url    string
	dest   string
	client *http.Client

	mu sync.Mutex
	// +checklocks:mu
	downloading bool
}

// NewDownloader creates a downloader for the given URL and destination path.
func NewDownloader(url, dest string) *Downloader {
	return &Downloader{
		url:    url,
		dest:   dest,
		client: http.DefaultClient,
	}
}

// SetHTTPClient overrides the HTTP client. This is useful for testing.
func (d *Downloader) SetHTTPClient(client *http.Client) {
	d.client = client
}

// InProgress reports whether a download session is currently active.
func (d *Downloader) InProgress() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.downloading
}

// StartAsync begins the transfer on its own goroutine and returns
// immediately. If a session is already active the call is a no-op and
// returns false; no second transfer and no duplicate completion callback are
// produced. Either callback may be nil.
func (d *Downloader) StartAsync(onProgress ProgressFunc, onComplete CompleteFunc) bool {
	d.mu.Lock()
	if d.downloading {
		d.mu.Unlock()
		return false
	}
	d.downloading = true
	d.mu.Unlock()

	slog.Info("starting terminal download", "url", d.url, "dest", d.dest)

	go func() {
		defer logging.LogPanic("artifact-download", nil)
		success := d.download(onProgress)

		// Clear the session before notifying so the completion callback may
		// immediately start another download.
		d.mu.Lock()
		d.downloading = false
		d.mu.Unlock()

		if success {
			slog.Info("terminal download completed", "dest", d.dest)
		}
		if onComplete != nil {
			onComplete(success)
		}
	}()

	return true
}

// download runs one transfer to completion or failure, reporting progress at
// the transport's read granularity.
func (d *Downloader) download(onProgress ProgressFunc) bool {
	resp, err := d.client.Get(d.url)
	if err != nil {
		slog.Error("download request failed", "url", d.url, "error", err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Error("download request failed", "url", d.url, "status", resp.Status)
		return false
	}

	total := resp.ContentLength
	if total < 0 {
		total = 0
	}

	if err := os.MkdirAll(filepath.Dir(d.dest), 0700); err != nil {
		slog.Error("create download dir failed", "error", err)
		return false
	}
	out, err := os.Create(d.dest)
	if err != nil {
		slog.Error("create download file failed", "dest", d.dest, "error", err)
		return false
	}
	defer out.Close()

	var downloaded int64
	buf := make([]byte, 32*1024)
	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			if _, writeErr := out.Write(buf[:n]); writeErr != nil {
				// Partial file is left as-is.
				slog.Error("write download file failed", "dest", d.dest, "error", writeErr)
				return false
			}
			downloaded += int64(n)
			if onProgress != nil {
				onProgress(Progress{
					Percent:    percent(downloaded, total),
					Downloaded: downloaded,
					Total:      total,
				})
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			slog.Error("download transfer failed", "url", d.url, "error", readErr)
			return false
		}
	}

	if err := out.Close(); err != nil {
		slog.Error("close download file failed", "dest", d.dest, "error", err)
		return false
	}

	// Force a final 100% report so observers can detect completion by the
	// 100 event even if the last natural report under-reported. When the
	// server never sent a total, the transferred byte count stands in for it.
	if onProgress != nil {
		if total <= 0 {
			total = downloaded
		}
		onProgress(Progress{Percent: 100, Downloaded: total, Total: total})
	}

	return true
}

// percent computes floor(downloaded*100/total), or 0 when the total is
// unknown.
func percent(downloaded, total int64) int {
	if total <= 0 {
		return 0
	}
	return int(downloaded * 100 / total)
}

// String describes the downloader's fixed endpoints.
func (d *Downloader) String() string {
	return fmt.Sprintf("downloader(%s -> %s)", d.url, d.dest)
}
