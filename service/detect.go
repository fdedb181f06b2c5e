package service

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/eyescreen/eyescreen/apiclient"
	"github.com/eyescreen/eyescreen/db"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Detector runs backend operations and records each successful one in the
// history. A nil repo disables recording.
type Detector struct {
	client  *apiclient.Client
	repo    db.Repo
	workers int
	now     func() time.Time
}

func NewDetector(client *apiclient.Client, repo db.Repo, workers int) *Detector {
	if workers <= 0 {
		workers = 1
	}
	return &Detector{client: client, repo: repo, workers: workers, now: time.Now}
}

// DetectSingle uploads one left/right pair.
func (d *Detector) DetectSingle(ctx context.Context, leftPath, rightPath string) (db.Run, error) {
	result, err := d.single(ctx, leftPath, rightPath)
	if err != nil {
		return db.Run{}, err
	}
	return d.record(ctx, db.Run{
		Kind:      db.KindSingle,
		Subject:   filepath.Base(leftPath) + " + " + filepath.Base(rightPath),
		Result:    result,
		Processed: 1,
	})
}

// DetectBatch processes a folder that lives on the backend host.
func (d *Detector) DetectBatch(ctx context.Context, folderPath string) (db.Run, error) {
	res, err := d.client.ProcessBatch(ctx, folderPath)
	if err != nil {
		return db.Run{}, err
	}
	return d.record(ctx, db.Run{
		Kind:      db.KindBatch,
		Subject:   folderPath,
		ExcelPath: res.ExcelPath,
		Processed: res.Processed,
	})
}

// DetectUpload sends every paired image under dir in a single streamed
// request and lets the backend build the spreadsheet. Each image is open only
// while it is being sent.
func (d *Detector) DetectUpload(ctx context.Context, dir string) (db.Run, error) {
	files, err := CollectUploads(dir)
	if err != nil {
		return db.Run{}, err
	}
	if len(files) == 0 {
		return db.Run{}, ErrNoPairs
	}

	uploads := make([]apiclient.Upload, 0, len(files))
	for _, uf := range files {
		uploads = append(uploads, apiclient.FileUpload(uf.Rel, uf.Path))
	}

	res, err := d.client.ProcessBatchFiles(ctx, filepath.Base(filepath.Clean(dir)), uploads)
	if err != nil {
		return db.Run{}, err
	}
	return d.record(ctx, db.Run{
		Kind:      db.KindUpload,
		Subject:   dir,
		ExcelPath: res.ExcelPath,
		Processed: res.Processed,
	})
}

// DetectLocal pairs the images under dir and submits each pair as a single
// detection through a bounded worker pool. The first failure cancels the rest.
func (d *Detector) DetectLocal(ctx context.Context, dir string) (db.Run, error) {
	pairs, err := PairFolder(dir)
	if err != nil {
		return db.Run{}, err
	}
	if len(pairs) == 0 {
		return db.Run{}, ErrNoPairs
	}

	jobs := make(chan int, len(pairs))
	for i := range pairs {
		jobs <- i
	}
	close(jobs)

	// each worker writes only its own indices
	items := make([]db.RunItem, len(pairs))
	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < min(d.workers, len(pairs)); w++ {
		g.Go(func() error {
			for i := range jobs {
				p := pairs[i]
				result, err := d.single(gctx, p.Left, p.Right)
				if err != nil {
					return fmt.Errorf("folder %s: %w", p.Folder, err)
				}
				items[i] = db.RunItem{
					Folder:     p.Folder,
					LeftImage:  filepath.Base(p.Left),
					RightImage: filepath.Base(p.Right),
					Result:     result,
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return db.Run{}, err
	}

	return d.record(ctx, db.Run{
		Kind:      db.KindLocal,
		Subject:   dir,
		Processed: len(items),
		Items:     items,
	})
}

// Ask sends a chat message.
func (d *Detector) Ask(ctx context.Context, message string) (db.Run, error) {
	reply, err := d.client.Chat(ctx, message)
	if err != nil {
		return db.Run{}, err
	}
	return d.record(ctx, db.Run{
		Kind:    db.KindChat,
		Subject: message,
		Result:  reply,
	})
}

func (d *Detector) single(ctx context.Context, leftPath, rightPath string) (string, error) {
	return d.client.ProcessSingle(ctx,
		apiclient.FileUpload(filepath.Base(leftPath), leftPath),
		apiclient.FileUpload(filepath.Base(rightPath), rightPath),
	)
}

func (d *Detector) record(ctx context.Context, run db.Run) (db.Run, error) {
	run.ID = uuid.NewString()
	run.Mode = d.client.Endpoint().Mode().String()
	run.CreatedAt = d.now().UTC()
	if d.repo == nil {
		return run, nil
	}
	if err := d.repo.InsertRun(ctx, run); err != nil {
		return run, fmt.Errorf("record run: %w", err)
	}
	return run, nil
}
