package taskquery

import (
	"strings"
	"time"

	"letterdesk/apperr"
	"letterdesk/models"
	"letterdesk/permissions"

	"gorm.io/gorm"
)

// Timeframe filters tasks by due date, computed against the current time
// at query time.
const (
	TimeframeAll     = "all"
	TimeframeToday   = "today"
	TimeframeWeek    = "week"
	TimeframeMonth   = "month"
	TimeframeOverdue = "overdue"
)

const (
	TaskTypeAll          = "all"
	TaskTypeAssignedToMe = "assigned_to_me"
	TaskTypeCreatedByMe  = "created_by_me"
)

type Filters struct {
	Status     string // a TaskStatus value or "all"
	Priority   string // a TaskPriority value or "all"
	AssigneeID *uint
	BranchID   *uint
	Search     string
	Timeframe  string
	TaskType   string
	Page       int
	Limit      int
}

type Summary struct {
	Total        int64                       `json:"total"`
	ByStatus     map[models.TaskStatus]int64 `json:"by_status"`
	Overdue      int64                       `json:"overdue"`
	AssignedToMe int64                       `json:"assigned_to_me"`
	CreatedByMe  int64                       `json:"created_by_me"`
}

// Service lists and summarizes tasks, scoping every query to what the
// requester's permission set allows.
type Service struct {
	db       *gorm.DB
	resolver *permissions.Resolver
}

func NewService(db *gorm.DB, resolver *permissions.Resolver) *Service {
	return &Service{db: db, resolver: resolver}
}

// List returns the tasks visible to the requester under the given
// filters, plus the total matching count for pagination.
func (s *Service) List(requester *models.User, f Filters) ([]models.Task, int64, error) {
	set, err := s.resolver.Resolve(requester.ID)
	if err != nil {
		return nil, 0, err
	}

	q, visible := s.scoped(set, requester)
	if !visible {
		// No view grant at all: an empty list, not an error.
		return []models.Task{}, 0, nil
	}

	if f.Status != "" && f.Status != "all" {
		q = q.Where("tasks.status = ?", f.Status)
	}
	if f.Priority != "" && f.Priority != "all" {
		q = q.Where("tasks.priority = ?", f.Priority)
	}
	if f.AssigneeID != nil {
		q = q.Where("tasks.assigned_to_id = ?", *f.AssigneeID)
	}
	if f.BranchID != nil {
		q = q.Where("tasks.branch_id = ?", *f.BranchID)
	}
	switch f.TaskType {
	case TaskTypeAssignedToMe:
		q = q.Where("tasks.assigned_to_id = ?", requester.ID)
	case TaskTypeCreatedByMe:
		q = q.Where("tasks.created_by_id = ?", requester.ID)
	}

	q = timeframeClause(q, f.Timeframe, time.Now())

	if search := strings.TrimSpace(f.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		q = q.
			Joins("LEFT JOIN users AS creators ON creators.id = tasks.created_by_id").
			Joins("LEFT JOIN users AS assignees ON assignees.id = tasks.assigned_to_id").
			Where(
				"LOWER(tasks.title) LIKE ? OR LOWER(tasks.description) LIKE ? OR LOWER(creators.name) LIKE ? OR LOWER(assignees.name) LIKE ?",
				pattern, pattern, pattern, pattern,
			)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, apperr.Wrap(apperr.Transient, "failed to count tasks", err)
	}

	page := f.Page
	if page < 1 {
		page = 1
	}
	limit := f.Limit
	if limit < 1 {
		limit = 10
	}
	offset := (page - 1) * limit

	var tasks []models.Task
	err = q.Preload("CreatedBy").Preload("AssignedTo").
		Order("tasks.created_at DESC").Offset(offset).Limit(limit).Find(&tasks).Error
	if err != nil {
		return nil, 0, apperr.Wrap(apperr.Transient, "failed to fetch tasks", err)
	}
	return tasks, total, nil
}

// Summarize computes per-status counts plus overdue/assigned/created
// counters under the same scoping rule as List. Only the branch filter
// from the active UI state applies here.
func (s *Service) Summarize(requester *models.User, branchID *uint) (*Summary, error) {
	set, err := s.resolver.Resolve(requester.ID)
	if err != nil {
		return nil, err
	}

	summary := &Summary{ByStatus: map[models.TaskStatus]int64{}}

	base, visible := s.scoped(set, requester)
	if !visible {
		return summary, nil
	}
	if branchID != nil {
		base = base.Where("tasks.branch_id = ?", *branchID)
	}

	type statusCount struct {
		Status models.TaskStatus
		Count  int64
	}
	var rows []statusCount
	err = base.Session(&gorm.Session{}).
		Select("tasks.status AS status, COUNT(*) AS count").
		Group("tasks.status").Scan(&rows).Error
	if err != nil {
		return nil, apperr.Wrap(apperr.Transient, "failed to summarize tasks", err)
	}
	for _, row := range rows {
		summary.ByStatus[row.Status] = row.Count
		summary.Total += row.Count
	}

	now := time.Now()
	err = base.Session(&gorm.Session{}).
		Where("tasks.due_date IS NOT NULL AND tasks.due_date < ? AND tasks.status NOT IN ?",
			now, []models.TaskStatus{models.TaskStatusCompleted, models.TaskStatusRejected}).
		Count(&summary.Overdue).Error
	if err != nil {
		return nil, apperr.Wrap(apperr.Transient, "failed to count overdue tasks", err)
	}

	err = base.Session(&gorm.Session{}).
		Where("tasks.assigned_to_id = ?", requester.ID).Count(&summary.AssignedToMe).Error
	if err != nil {
		return nil, apperr.Wrap(apperr.Transient, "failed to count assigned tasks", err)
	}

	err = base.Session(&gorm.Session{}).
		Where("tasks.created_by_id = ?", requester.ID).Count(&summary.CreatedByMe).Error
	if err != nil {
		return nil, apperr.Wrap(apperr.Transient, "failed to count created tasks", err)
	}

	return summary, nil
}

// scoped applies the fail-closed row scope: all-view grants see
// everything, otherwise only the creator/assignee clauses the grants
// allow. The second return is false when no clause applies.
func (s *Service) scoped(set *permissions.Set, requester *models.User) (*gorm.DB, bool) {
	q := s.db.Model(&models.Task{}).Where("tasks.is_active = ?", true)

	if set.Has(permissions.ViewTasksAll) {
		return q, true
	}

	canOwn := set.Has(permissions.ViewTasksOwn)
	canAssigned := set.Has(permissions.ViewTasksAssigned)
	switch {
	case canOwn && canAssigned:
		return q.Where("tasks.created_by_id = ? OR tasks.assigned_to_id = ?", requester.ID, requester.ID), true
	case canOwn:
		return q.Where("tasks.created_by_id = ?", requester.ID), true
	case canAssigned:
		return q.Where("tasks.assigned_to_id = ?", requester.ID), true
	default:
		return nil, false
	}
}

// timeframeClause restricts by due date relative to now.
func timeframeClause(q *gorm.DB, timeframe string, now time.Time) *gorm.DB {
	switch timeframe {
	case TimeframeToday:
		start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		return q.Where("tasks.due_date >= ? AND tasks.due_date < ?", start, start.AddDate(0, 0, 1))
	case TimeframeWeek:
		start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		return q.Where("tasks.due_date >= ? AND tasks.due_date < ?", start, start.AddDate(0, 0, 7))
	case TimeframeMonth:
		start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		return q.Where("tasks.due_date >= ? AND tasks.due_date < ?", start, start.AddDate(0, 1, 0))
	case TimeframeOverdue:
		return q.Where("tasks.due_date IS NOT NULL AND tasks.due_date < ? AND tasks.status NOT IN ?",
			now, []models.TaskStatus{models.TaskStatusCompleted, models.TaskStatusRejected})
	default:
		return q
	}
}
