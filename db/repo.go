package db

import (
	"context"
	"database/sql"
	"time"
)

// Re-export so callers can check db.ErrNoRows without importing database/sql.
var ErrNoRows = sql.ErrNoRows

// RunKind names the backend operation a run recorded.
type RunKind string

const (
	KindSingle RunKind = "single" // one left/right pair
	KindBatch  RunKind = "batch"  // folder on the backend's filesystem
	KindUpload RunKind = "upload" // local folder uploaded in one request
	KindLocal  RunKind = "local"  // local folder, one request per pair
	KindChat   RunKind = "chat"
)

// ---------- Row models (mirror the schema) ----------

type Run struct {
	ID        string
	Kind      RunKind
	Mode      string // profile the client ran under
	Subject   string // file pair, folder or chat message
	Result    string // report text or chat reply
	ExcelPath string
	Processed int
	CreatedAt time.Time
	Items     []RunItem // only populated for local batches
}

// RunItem is one folder of a local batch.
type RunItem struct {
	Folder     string
	LeftImage  string
	RightImage string
	Result     string
}

type Repo interface {
	InsertRun(ctx context.Context, r Run) error
	ListRuns(ctx context.Context, limit int) ([]Run, error)
	GetRun(ctx context.Context, id string) (Run, error) // ErrNoRows if none
	PruneRuns(ctx context.Context, keep int) (int64, error)
}
