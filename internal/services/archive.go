package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/tjgf2022/logkeeper-roles-hub/internal/policy"
	"github.com/tjgf2022/logkeeper-roles-hub/internal/storage"
	"github.com/tjgf2022/logkeeper-roles-hub/types"
)

// ErrArchiveUnconfigured is returned when no object-storage backend is
// configured for archives.
var ErrArchiveUnconfigured = errors.New("archive storage is not configured")

// ArchiveService snapshots the full work-log collection into object
// storage. It backs the settings view and is restricted to supers.
type ArchiveService struct {
	logs    WorkLogRepository
	storage *storage.Storage
}

func NewArchiveService(logs WorkLogRepository, store *storage.Storage) *ArchiveService {
	return &ArchiveService{logs: logs, storage: store}
}

type archiveSnapshot struct {
	TakenAt time.Time       `json:"taken_at"`
	TakenBy types.Viewer    `json:"taken_by"`
	Count   int             `json:"count"`
	Logs    []types.WorkLog `json:"logs"`
}

// Snapshot writes a JSON archive of every work log and returns the
// object key.
func (s *ArchiveService) Snapshot(ctx context.Context, viewer types.Viewer) (string, error) {
	if !policy.Allows(viewer.Role, policy.CapViewSettings) {
		return "", ErrPermissionDenied
	}
	if s.storage == nil {
		return "", ErrArchiveUnconfigured
	}

	logs, err := s.logs.List(ctx)
	if err != nil {
		return "", err
	}

	payload, err := json.Marshal(archiveSnapshot{
		TakenAt: time.Now(),
		TakenBy: viewer,
		Count:   len(logs),
		Logs:    logs,
	})
	if err != nil {
		return "", err
	}

	if err := s.storage.EnsureBucket(ctx); err != nil {
		return "", err
	}

	key := fmt.Sprintf("archives/worklogs-%s.json", time.Now().UTC().Format("20060102T150405Z"))
	if err := s.storage.Put(ctx, key, bytes.NewReader(payload), int64(len(payload)), "application/json"); err != nil {
		return "", err
	}
	return key, nil
}
