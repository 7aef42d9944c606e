package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"sevasetu_admin/internal/domain"
)

// DocFetcher downloads every document of a verification case into a local
// directory, a bounded number at a time.
type DocFetcher struct {
	src     domain.KYCSource
	workers int64
	log     zerolog.Logger
}

func NewDocFetcher(src domain.KYCSource, workers int, log zerolog.Logger) *DocFetcher {
	if workers < 1 {
		workers = 1
	}
	return &DocFetcher{src: src, workers: int64(workers), log: log}
}

// DownloadAll fetches the application, then pulls its documents concurrently
// into dir. Individual failures are logged and counted; the rest keep
// downloading. Returns the number of documents written.
func (f *DocFetcher) DownloadAll(ctx context.Context, applicationID, dir string) (int, error) {
	app, err := f.src.Application(ctx, applicationID)
	if err != nil {
		return 0, err
	}
	if len(app.Documents) == 0 {
		return 0, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("kycdocs: mkdir %s: %w", dir, err)
	}

	sem := semaphore.NewWeighted(f.workers)
	var wg sync.WaitGroup
	var ok, failed int32

	for _, doc := range app.Documents {
		doc := doc

		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer sem.Release(1)

			if err := f.downloadOne(ctx, doc, dir); err != nil {
				atomic.AddInt32(&failed, 1)
				f.log.Warn().Str("doc", doc.ID).Str("file", doc.FileName).Err(err).Msg("document download failed")
				return
			}
			atomic.AddInt32(&ok, 1)
			f.log.Info().Str("doc", doc.ID).Str("file", doc.FileName).Msg("document downloaded")
		}()
	}
	wg.Wait()

	if n := atomic.LoadInt32(&failed); n > 0 {
		return int(atomic.LoadInt32(&ok)), fmt.Errorf("kycdocs: %d of %d documents failed", n, len(app.Documents))
	}
	if err := ctx.Err(); err != nil {
		return int(atomic.LoadInt32(&ok)), err
	}
	return int(atomic.LoadInt32(&ok)), nil
}

func (f *DocFetcher) downloadOne(ctx context.Context, doc domain.KYCDocument, dir string) error {
	rc, err := f.src.FetchDocument(ctx, doc)
	if err != nil {
		return err
	}
	defer rc.Close()

	path := filepath.Join(dir, safeName(doc))
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		os.Remove(path)
		return err
	}
	return out.Close()
}

// safeName flattens whatever the backend calls the file into a single local
// path element, prefixed with the document kind so a case's files sort
// together.
func safeName(doc domain.KYCDocument) string {
	name := filepath.Base(strings.ReplaceAll(doc.FileName, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		name = doc.ID
	}
	return doc.Kind + "_" + name
}
