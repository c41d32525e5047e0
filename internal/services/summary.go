package services

import (
	"context"
	"time"

	"github.com/tjgf2022/logkeeper-roles-hub/internal/policy"
	"github.com/tjgf2022/logkeeper-roles-hub/types"
)

const recentLogLimit = 3

// Summary is the dashboard payload. UserStats is present only when the
// viewer may see the user totals.
type Summary struct {
	TotalLogs      int             `json:"total_logs"`
	TodayLogs      int             `json:"today_logs"`
	CompletionRate int             `json:"completion_rate"`
	RecentLogs     []types.WorkLog `json:"recent_logs"`
	UserStats      *UserStats      `json:"user_stats,omitempty"`
}

// UserStats summarizes the account base for admin and super viewers.
type UserStats struct {
	TotalUsers  int `json:"total_users"`
	ActiveUsers int `json:"active_users"`
	Admins      int `json:"admins"`
}

// SummaryService aggregates the dashboard numbers from the fully
// materialized collections; every count respects the viewer's
// visibility.
type SummaryService struct {
	logs  WorkLogRepository
	users UserRepository
}

func NewSummaryService(logs WorkLogRepository, users UserRepository) *SummaryService {
	return &SummaryService{logs: logs, users: users}
}

// Summarize builds the dashboard summary for the viewer.
func (s *SummaryService) Summarize(ctx context.Context, viewer types.Viewer) (Summary, error) {
	all, err := s.logs.List(ctx)
	if err != nil {
		return Summary{}, err
	}
	visible := policy.VisibleLogs(all, viewer, policy.LogCriteria{})

	summary := Summary{TotalLogs: len(visible)}

	today := time.Now().Truncate(24 * time.Hour)
	completed := 0
	for _, log := range visible {
		if !log.CreatedAt.Before(today) {
			summary.TodayLogs++
		}
		if log.Status == types.LogStatusCompleted {
			completed++
		}
	}
	if len(visible) > 0 {
		summary.CompletionRate = completed * 100 / len(visible)
	}

	// Newest entries first; the list view preserves insertion order so
	// the tail of the visible slice is the most recent.
	for i := len(visible) - 1; i >= 0 && len(summary.RecentLogs) < recentLogLimit; i-- {
		summary.RecentLogs = append(summary.RecentLogs, visible[i])
	}

	if policy.Allows(viewer.Role, policy.CapViewUsers) {
		users, err := s.users.List(ctx)
		if err != nil {
			return Summary{}, err
		}
		stats := UserStats{TotalUsers: len(users)}
		for _, user := range users {
			if user.Status == types.UserStatusActive {
				stats.ActiveUsers++
			}
			if user.Role.AtLeast(types.RoleAdmin) {
				stats.Admins++
			}
		}
		summary.UserStats = &stats
	}

	return summary, nil
}
