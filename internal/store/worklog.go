package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/tjgf2022/logkeeper-roles-hub/types"
)

// WorkLogRepository handles persistence for work log entries.
type WorkLogRepository struct {
	db *sql.DB
}

func NewWorkLogRepository(db *sql.DB) *WorkLogRepository {
	return &WorkLogRepository{db: db}
}

// List returns every entry in insertion order. Visibility and search
// filtering are applied by the policy layer on the materialized slice.
func (r *WorkLogRepository) List(ctx context.Context) ([]types.WorkLog, error) {
	const query = `
		SELECT id, title, content, author_id, author_name, author_role, status, priority, tags, created_at, updated_at
		FROM work_logs
		ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []types.WorkLog
	for rows.Next() {
		var log types.WorkLog
		var tagsJSON []byte
		if err := rows.Scan(
			&log.ID,
			&log.Title,
			&log.Content,
			&log.AuthorID,
			&log.AuthorName,
			&log.AuthorRole,
			&log.Status,
			&log.Priority,
			&tagsJSON,
			&log.CreatedAt,
			&log.UpdatedAt,
		); err != nil {
			return nil, err
		}
		_ = json.Unmarshal(tagsJSON, &log.Tags)
		logs = append(logs, log)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return logs, nil
}

func (r *WorkLogRepository) Get(ctx context.Context, id int) (types.WorkLog, error) {
	const query = `
		SELECT id, title, content, author_id, author_name, author_role, status, priority, tags, created_at, updated_at
		FROM work_logs
		WHERE id = $1`
	var log types.WorkLog
	var tagsJSON []byte
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&log.ID,
		&log.Title,
		&log.Content,
		&log.AuthorID,
		&log.AuthorName,
		&log.AuthorRole,
		&log.Status,
		&log.Priority,
		&tagsJSON,
		&log.CreatedAt,
		&log.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.WorkLog{}, ErrNotFound
		}
		return types.WorkLog{}, err
	}
	_ = json.Unmarshal(tagsJSON, &log.Tags)
	return log, nil
}

func (r *WorkLogRepository) Create(ctx context.Context, log types.WorkLog) (types.WorkLog, error) {
	now := time.Now()
	log.CreatedAt = now
	log.UpdatedAt = now

	tagsJSON, err := json.Marshal(log.Tags)
	if err != nil {
		return types.WorkLog{}, err
	}

	const query = `
		INSERT INTO work_logs (title, content, author_id, author_name, author_role, status, priority, tags, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		log.Title,
		log.Content,
		log.AuthorID,
		log.AuthorName,
		log.AuthorRole,
		log.Status,
		log.Priority,
		tagsJSON,
		log.CreatedAt,
		log.UpdatedAt,
	).Scan(&log.ID); err != nil {
		return types.WorkLog{}, err
	}
	return log, nil
}

func (r *WorkLogRepository) Update(ctx context.Context, log types.WorkLog) (types.WorkLog, error) {
	log.UpdatedAt = time.Now()

	tagsJSON, err := json.Marshal(log.Tags)
	if err != nil {
		return types.WorkLog{}, err
	}

	const query = `
		UPDATE work_logs
		SET title = $1,
			content = $2,
			status = $3,
			priority = $4,
			tags = $5,
			updated_at = $6
		WHERE id = $7`
	result, err := r.db.ExecContext(
		ctx,
		query,
		log.Title,
		log.Content,
		log.Status,
		log.Priority,
		tagsJSON,
		log.UpdatedAt,
		log.ID,
	)
	if err != nil {
		return types.WorkLog{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.WorkLog{}, err
	}
	if affected == 0 {
		return types.WorkLog{}, ErrNotFound
	}
	return log, nil
}

func (r *WorkLogRepository) Delete(ctx context.Context, id int) error {
	const query = `DELETE FROM work_logs WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
