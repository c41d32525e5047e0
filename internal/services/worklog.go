package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/tjgf2022/logkeeper-roles-hub/internal/events"
	"github.com/tjgf2022/logkeeper-roles-hub/internal/policy"
	"github.com/tjgf2022/logkeeper-roles-hub/types"
)

// WorkLogRepository defines persistence operations for work logs.
type WorkLogRepository interface {
	List(ctx context.Context) ([]types.WorkLog, error)
	Get(ctx context.Context, id int) (types.WorkLog, error)
	Create(ctx context.Context, log types.WorkLog) (types.WorkLog, error)
	Update(ctx context.Context, log types.WorkLog) (types.WorkLog, error)
	Delete(ctx context.Context, id int) error
}

// WorkLogService encapsulates work-log use-cases. Visibility and
// mutation permissions are decided by the policy layer; successful
// mutations emit a lifecycle event.
type WorkLogService struct {
	repo   WorkLogRepository
	events *events.Publisher
}

func NewWorkLogService(repo WorkLogRepository, publisher *events.Publisher) *WorkLogService {
	return &WorkLogService{repo: repo, events: publisher}
}

// List returns the entries visible to the viewer that match the
// criteria, in insertion order.
func (s *WorkLogService) List(ctx context.Context, viewer types.Viewer, criteria policy.LogCriteria) ([]types.WorkLog, error) {
	logs, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return policy.VisibleLogs(logs, viewer, criteria), nil
}

// Get loads a single entry if the viewer may see it.
func (s *WorkLogService) Get(ctx context.Context, viewer types.Viewer, id int) (types.WorkLog, error) {
	log, err := s.repo.Get(ctx, id)
	if err != nil {
		return types.WorkLog{}, err
	}
	if !policy.CanViewLog(viewer, log) {
		return types.WorkLog{}, ErrPermissionDenied
	}
	return log, nil
}

// LogDraft carries the caller-editable fields of an entry.
type LogDraft struct {
	Title    string
	Content  string
	Status   types.LogStatus
	Priority types.LogPriority
	Tags     []string
}

func (d LogDraft) validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if strings.TrimSpace(d.Content) == "" {
		return fmt.Errorf("%w: content is required", ErrValidation)
	}
	if d.Status != "" {
		if _, ok := types.ParseLogStatus(string(d.Status)); !ok {
			return fmt.Errorf("%w: unknown status %q", ErrValidation, d.Status)
		}
	}
	if d.Priority != "" {
		if _, ok := types.ParseLogPriority(string(d.Priority)); !ok {
			return fmt.Errorf("%w: unknown priority %q", ErrValidation, d.Priority)
		}
	}
	return nil
}

// Create stores a new entry authored by the viewer.
func (s *WorkLogService) Create(ctx context.Context, viewer types.Viewer, draft LogDraft) (types.WorkLog, error) {
	if err := draft.validate(); err != nil {
		return types.WorkLog{}, err
	}

	status := draft.Status
	if status == "" {
		status = types.LogStatusPending
	}
	priority := draft.Priority
	if priority == "" {
		priority = types.LogPriorityMedium
	}

	created, err := s.repo.Create(ctx, types.WorkLog{
		Title:      strings.TrimSpace(draft.Title),
		Content:    strings.TrimSpace(draft.Content),
		AuthorID:   viewer.UserID,
		AuthorName: viewer.Name,
		AuthorRole: viewer.Role,
		Status:     status,
		Priority:   priority,
		Tags:       draft.Tags,
	})
	if err != nil {
		return types.WorkLog{}, err
	}

	s.events.LogEvent(ctx, events.ActionCreated, viewer, created)
	return created, nil
}

// Update edits an existing entry if the viewer may modify it. The
// author identity of the entry never changes.
func (s *WorkLogService) Update(ctx context.Context, viewer types.Viewer, id int, draft LogDraft) (types.WorkLog, error) {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return types.WorkLog{}, err
	}
	if !policy.CanEditLog(viewer, current) {
		return types.WorkLog{}, ErrPermissionDenied
	}
	if err := draft.validate(); err != nil {
		return types.WorkLog{}, err
	}

	current.Title = strings.TrimSpace(draft.Title)
	current.Content = strings.TrimSpace(draft.Content)
	if draft.Status != "" {
		current.Status = draft.Status
	}
	if draft.Priority != "" {
		current.Priority = draft.Priority
	}
	current.Tags = draft.Tags

	updated, err := s.repo.Update(ctx, current)
	if err != nil {
		return types.WorkLog{}, err
	}

	s.events.LogEvent(ctx, events.ActionUpdated, viewer, updated)
	return updated, nil
}

// Delete removes an entry if the viewer may delete it.
func (s *WorkLogService) Delete(ctx context.Context, viewer types.Viewer, id int) error {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if !policy.CanDeleteLog(viewer, current) {
		return ErrPermissionDenied
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.events.LogEvent(ctx, events.ActionDeleted, viewer, current)
	return nil
}
