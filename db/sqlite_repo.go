package db

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

type sqliteRepo struct {
	db *sql.DB
}

func NewRepo(sqldb *sql.DB) Repo {
	return &sqliteRepo{db: sqldb}
}

func (r *sqliteRepo) InsertRun(ctx context.Context, run Run) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	const insRun = `
INSERT INTO runs(id, kind, mode, subject, result, excel_path, processed, created_at)
VALUES(?, ?, ?, ?, ?, ?, ?, ?);`
	created := run.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	if _, err := tx.ExecContext(ctx, insRun,
		run.ID, string(run.Kind), run.Mode, run.Subject, run.Result, run.ExcelPath, run.Processed,
		created.UTC().UnixMilli(),
	); err != nil {
		_ = tx.Rollback()
		return err
	}

	if len(run.Items) > 0 {
		const insItem = `
INSERT INTO run_items(run_id, folder, left_image, right_image, result)
VALUES(?, ?, ?, ?, ?)
ON CONFLICT(run_id, folder) DO UPDATE SET
  left_image  = excluded.left_image,
  right_image = excluded.right_image,
  result      = excluded.result;`
		stmt, err := tx.PrepareContext(ctx, insItem)
		if err != nil {
			_ = tx.Rollback()
			return err
		}
		defer stmt.Close()
		for _, it := range run.Items {
			if _, err := stmt.ExecContext(ctx, run.ID, it.Folder, it.LeftImage, it.RightImage, it.Result); err != nil {
				_ = tx.Rollback()
				return err
			}
		}
	}
	return tx.Commit()
}

func (r *sqliteRepo) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `
SELECT id, kind, mode, subject, result, excel_path, processed, created_at
FROM runs
ORDER BY created_at DESC, rowid DESC
LIMIT ?;`
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		run, scanErr := scanRun(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetRun returns one run with its items.
func (r *sqliteRepo) GetRun(ctx context.Context, id string) (Run, error) {
	const q = `
SELECT id, kind, mode, subject, result, excel_path, processed, created_at
FROM runs WHERE id = ?;`
	run, err := scanRun(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		return Run{}, err
	}

	const qItems = `
SELECT folder, left_image, right_image, result
FROM run_items
WHERE run_id = ?
ORDER BY folder ASC;`
	rows, err := r.db.QueryContext(ctx, qItems, id)
	if err != nil {
		return Run{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var it RunItem
		if err := rows.Scan(&it.Folder, &it.LeftImage, &it.RightImage, &it.Result); err != nil {
			return Run{}, err
		}
		run.Items = append(run.Items, it)
	}
	if err := rows.Err(); err != nil {
		return Run{}, err
	}
	return run, nil
}

// PruneRuns keeps the newest keep runs and deletes the rest.
func (r *sqliteRepo) PruneRuns(ctx context.Context, keep int) (int64, error) {
	if keep < 0 {
		return 0, errors.New("keep must be >= 0")
	}
	const q = `
DELETE FROM runs
WHERE id IN (
  SELECT id FROM runs
  ORDER BY created_at DESC, rowid DESC
  LIMIT -1 OFFSET ?
);`
	res, err := r.db.ExecContext(ctx, q, keep)
	if err != nil {
		return 0, err
	}
	aff, _ := res.RowsAffected()
	return aff, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(s rowScanner) (Run, error) {
	var run Run
	var kind string
	var created int64
	if err := s.Scan(&run.ID, &kind, &run.Mode, &run.Subject, &run.Result, &run.ExcelPath, &run.Processed, &created); err != nil {
		return Run{}, err
	}
	run.Kind = RunKind(kind)
	run.CreatedAt = time.UnixMilli(created).UTC()
	return run, nil
}
