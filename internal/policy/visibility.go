package policy

import (
	"strings"

	"github.com/tjgf2022/logkeeper-roles-hub/types"
)

// FilterAll is the sentinel value meaning "no categorical filter". An
// empty string behaves the same so unset query parameters need no
// special handling.
const FilterAll = "all"

// LogCriteria is the ephemeral search state for the work-log list.
type LogCriteria struct {
	Query    string
	Status   string
	Priority string
}

// DefaultLogCriteria returns criteria that match every visible entry.
func DefaultLogCriteria() LogCriteria {
	return LogCriteria{Status: FilterAll, Priority: FilterAll}
}

// Reset restores every clause to its sentinel in one step; callers
// never observe a partially reset state.
func (c *LogCriteria) Reset() {
	*c = DefaultLogCriteria()
}

// UserCriteria is the ephemeral search state for the users list.
type UserCriteria struct {
	Query  string
	Role   string
	Status string
}

// DefaultUserCriteria returns criteria that match every visible account.
func DefaultUserCriteria() UserCriteria {
	return UserCriteria{Role: FilterAll, Status: FilterAll}
}

// Reset restores every clause to its sentinel in one step.
func (c *UserCriteria) Reset() {
	*c = DefaultUserCriteria()
}

// VisibleLogs returns the subset of entries the viewer may see that
// also match the criteria, preserving input order. Each entry passes
// iff the ownership clause, the text clause, and both categorical
// clauses all hold; the clauses are independent, so evaluation order
// does not matter.
func VisibleLogs(logs []types.WorkLog, viewer types.Viewer, criteria LogCriteria) []types.WorkLog {
	visible := make([]types.WorkLog, 0, len(logs))
	for _, log := range logs {
		if !CanViewLog(viewer, log) {
			continue
		}
		if !matchQuery(criteria.Query, log.Title, log.Content, log.AuthorName) {
			continue
		}
		if !matchCategory(criteria.Status, string(log.Status)) {
			continue
		}
		if !matchCategory(criteria.Priority, string(log.Priority)) {
			continue
		}
		visible = append(visible, log)
	}
	return visible
}

// VisibleUsers returns the subset of accounts the viewer may see that
// also match the criteria, preserving input order. Non-admin viewers
// see nothing; admins do not see super accounts.
func VisibleUsers(users []types.User, viewer types.Viewer, criteria UserCriteria) []types.User {
	visible := make([]types.User, 0, len(users))
	for _, user := range users {
		if !CanManageUser(viewer, user) {
			continue
		}
		if !matchQuery(criteria.Query, user.Name, user.Email, user.Department) {
			continue
		}
		if !matchCategory(criteria.Role, string(user.Role)) {
			continue
		}
		if !matchCategory(criteria.Status, string(user.Status)) {
			continue
		}
		visible = append(visible, user)
	}
	return visible
}

// matchQuery reports whether the query is a case-insensitive substring
// of any field. An empty query matches everything.
func matchQuery(query string, fields ...string) bool {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return true
	}
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field), query) {
			return true
		}
	}
	return false
}

// matchCategory reports whether a categorical filter accepts the value.
// The sentinel FilterAll (or an unset filter) accepts any value;
// otherwise the comparison is exact.
func matchCategory(filter, value string) bool {
	if filter == "" || filter == FilterAll {
		return true
	}
	return filter == value
}
