package taskflow

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"letterdesk/apperr"
	"letterdesk/models"
	"letterdesk/permissions"

	"gorm.io/gorm"
)

const (
	actionTransition = "transition"
	actionAccess     = "access"
	actionDelete     = "delete"
)

// Controller validates and executes task mutations: status transitions,
// comments, detail edits, time records and attachments. Every successful
// mutation appends exactly one TaskLog row.
type Controller struct {
	db       *gorm.DB
	resolver *permissions.Resolver
	procs    *procCaller
	blobs    BlobStore
}

func NewController(db *gorm.DB, resolver *permissions.Resolver, blobs BlobStore) *Controller {
	return &Controller{
		db:       db,
		resolver: resolver,
		procs:    newProcCaller(db),
		blobs:    blobs,
	}
}

type CreateInput struct {
	Title        string
	Description  string
	Priority     models.TaskPriority
	AssignedToID *uint
	BranchID     *uint
	DueDate      *time.Time
	Notes        string
}

// Create inserts a task in status "new" and appends its create log row.
func (tc *Controller) Create(requester *models.User, in CreateInput) (*models.Task, error) {
	set, err := tc.resolver.Resolve(requester.ID)
	if err != nil {
		return nil, err
	}
	if !set.Has(permissions.CreateTasks) {
		return nil, apperr.New(apperr.Authorization, "you do not have permission to create tasks")
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, apperr.New(apperr.Validation, "title is required")
	}

	priority := in.Priority
	if priority == "" {
		priority = models.TaskPriorityMedium
	}

	task := models.Task{
		Title:        in.Title,
		Description:  in.Description,
		Status:       models.TaskStatusNew,
		Priority:     priority,
		CreatedByID:  requester.ID,
		AssignedToID: in.AssignedToID,
		BranchID:     in.BranchID,
		DueDate:      in.DueDate,
		Notes:        in.Notes,
		IsActive:     true,
	}

	err = tc.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&task).Error; err != nil {
			return apperr.Wrap(apperr.Transient, "failed to create task", err)
		}
		newStatus := task.Status
		logRow := models.TaskLog{
			TaskID:    task.ID,
			UserID:    requester.ID,
			Action:    models.LogActionCreate,
			NewStatus: &newStatus,
			Notes:     in.Notes,
		}
		if err := tx.Create(&logRow).Error; err != nil {
			return apperr.Wrap(apperr.Transient, "failed to write task log", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &task, nil
}

type TransitionInput struct {
	TaskID uint
	// Expected is the status the caller last observed; the write is an
	// optimistic compare-and-set against it.
	Expected models.TaskStatus
	To       models.TaskStatus
	Reason   string
}

// Transition validates a status change against the transition table,
// authorizes it, and persists it with a compare-and-set on Expected. On
// success exactly one update_status log row is appended.
func (tc *Controller) Transition(requester *models.User, in TransitionInput) (*models.Task, error) {
	rule, ok := transitionRuleFor(in.Expected, in.To)
	if !ok {
		return nil, apperr.Newf(apperr.InvalidTransition, "cannot move task from %q to %q", in.Expected, in.To)
	}
	if rule.reasonRequired && strings.TrimSpace(in.Reason) == "" {
		return nil, apperr.Newf(apperr.Validation, "a reason is required to move a task to %q", in.To)
	}

	task, err := tc.loadTask(in.TaskID)
	if err != nil {
		return nil, err
	}
	if err := tc.canPerform(requester, task, actionTransition); err != nil {
		return nil, err
	}
	if task.Status != in.Expected {
		return nil, apperr.Newf(apperr.Conflict,
			"task status changed to %q since it was last read, refresh and retry", task.Status)
	}

	var completion *time.Time
	if in.To == models.TaskStatusCompleted {
		now := time.Now()
		completion = &now
	}

	if err := tc.persistStatus(requester.ID, task, in, completion); err != nil {
		return nil, err
	}

	task.Status = in.To
	task.CompletionDate = completion
	return task, nil
}

// persistStatus writes the new status through the update_task_status
// procedure when available, otherwise via a guarded direct update plus a
// log insert in one transaction. The procedure carries no expected-status
// argument, so on that path the compare-and-set rests on the pre-call
// check in Transition and a concurrent writer between that read and the
// procedure call goes undetected; the direct-update path checks the
// expectation in the UPDATE itself.
func (tc *Controller) persistStatus(userID uint, task *models.Task, in TransitionInput, completion *time.Time) error {
	err := tc.db.Transaction(func(tx *gorm.DB) error {
		if err := tc.procs.callUpdateStatus(tx, task.ID, in.To, completion); err != nil {
			return err
		}
		return tc.appendStatusLog(tx, userID, task.ID, in.Expected, in.To, in.Reason)
	})
	if err == nil {
		return nil
	}
	if !errors.Is(err, errProcUnavailable) {
		return err
	}

	// Degraded mode: direct compare-and-set update plus log insert.
	return tc.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{"status": in.To}
		if completion != nil {
			updates["completion_date"] = completion
		}
		res := tx.Model(&models.Task{}).
			Where("id = ? AND status = ? AND is_active = ?", task.ID, in.Expected, true).
			Updates(updates)
		if res.Error != nil {
			return apperr.Wrap(apperr.Transient, "failed to update task status", res.Error)
		}
		if res.RowsAffected == 0 {
			var current models.Task
			if err := tx.Where("id = ? AND is_active = ?", task.ID, true).First(&current).Error; err != nil {
				return apperr.Newf(apperr.NotFound, "task %d not found", task.ID)
			}
			return apperr.Newf(apperr.Conflict,
				"task status changed to %q since it was last read, refresh and retry", current.Status)
		}
		return tc.appendStatusLog(tx, userID, task.ID, in.Expected, in.To, in.Reason)
	})
}

func (tc *Controller) appendStatusLog(db *gorm.DB, userID, taskID uint, prev, next models.TaskStatus, reason string) error {
	logRow := models.TaskLog{
		TaskID:         taskID,
		UserID:         userID,
		Action:         models.LogActionUpdateStatus,
		PreviousStatus: &prev,
		NewStatus:      &next,
		Notes:          reason,
	}
	if err := db.Create(&logRow).Error; err != nil {
		return apperr.Wrap(apperr.Transient, "failed to write task log", err)
	}
	return nil
}

// Get returns a single task with its related records, subject to the
// same access rule as every other task read.
func (tc *Controller) Get(requester *models.User, taskID uint) (*models.Task, error) {
	var task models.Task
	err := tc.db.Preload("CreatedBy").Preload("AssignedTo").
		Where("id = ? AND is_active = ?", taskID, true).First(&task).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Newf(apperr.NotFound, "task %d not found", taskID)
		}
		return nil, apperr.Wrap(apperr.Transient, "failed to load task", err)
	}
	if err := tc.canPerform(requester, &task, actionAccess); err != nil {
		return nil, err
	}
	return &task, nil
}

// Logs returns the audit trail for a task the requester can access.
func (tc *Controller) Logs(requester *models.User, taskID uint) ([]models.TaskLog, error) {
	task, err := tc.loadTask(taskID)
	if err != nil {
		return nil, err
	}
	if err := tc.canPerform(requester, task, actionAccess); err != nil {
		return nil, err
	}
	var logs []models.TaskLog
	if err := tc.db.Where("task_id = ?", taskID).Order("created_at ASC").Find(&logs).Error; err != nil {
		return nil, apperr.Wrap(apperr.Transient, "failed to load task logs", err)
	}
	return logs, nil
}

// Comment appends a comment log row, via the add_task_comment procedure
// when available.
func (tc *Controller) Comment(requester *models.User, taskID uint, text string) error {
	if strings.TrimSpace(text) == "" {
		return apperr.New(apperr.Validation, "comment text is required")
	}
	task, err := tc.loadTask(taskID)
	if err != nil {
		return err
	}
	if err := tc.canPerform(requester, task, actionAccess); err != nil {
		return err
	}

	err = tc.procs.callAddComment(taskID, requester.ID, text)
	if err == nil {
		return nil
	}
	if !errors.Is(err, errProcUnavailable) {
		return err
	}
	logRow := models.TaskLog{
		TaskID: taskID,
		UserID: requester.ID,
		Action: models.LogActionComment,
		Notes:  text,
	}
	if err := tc.db.Create(&logRow).Error; err != nil {
		return apperr.Wrap(apperr.Transient, "failed to write comment", err)
	}
	return nil
}

type DetailsInput struct {
	Title        *string
	Description  *string
	Priority     *models.TaskPriority
	AssignedToID *uint
	DueDate      *time.Time
	Notes        *string
}

// UpdateDetails edits task metadata (not status) and appends one
// update_details log row naming the changed fields.
func (tc *Controller) UpdateDetails(requester *models.User, taskID uint, in DetailsInput) (*models.Task, error) {
	task, err := tc.loadTask(taskID)
	if err != nil {
		return nil, err
	}
	if err := tc.canPerform(requester, task, actionAccess); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	var changed []string
	if in.Title != nil {
		if strings.TrimSpace(*in.Title) == "" {
			return nil, apperr.New(apperr.Validation, "title cannot be empty")
		}
		updates["title"] = *in.Title
		changed = append(changed, "title")
	}
	if in.Description != nil {
		updates["description"] = *in.Description
		changed = append(changed, "description")
	}
	if in.Priority != nil {
		updates["priority"] = *in.Priority
		changed = append(changed, "priority")
	}
	if in.AssignedToID != nil {
		updates["assigned_to_id"] = *in.AssignedToID
		changed = append(changed, "assignee")
	}
	if in.DueDate != nil {
		updates["due_date"] = *in.DueDate
		changed = append(changed, "due date")
	}
	if in.Notes != nil {
		updates["notes"] = *in.Notes
		changed = append(changed, "notes")
	}
	if len(updates) == 0 {
		return nil, apperr.New(apperr.Validation, "nothing to update")
	}

	err = tc.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(task).Updates(updates).Error; err != nil {
			return apperr.Wrap(apperr.Transient, "failed to update task", err)
		}
		logRow := models.TaskLog{
			TaskID: task.ID,
			UserID: requester.ID,
			Action: models.LogActionUpdateDetails,
			Notes:  "updated " + strings.Join(changed, ", "),
		}
		if err := tx.Create(&logRow).Error; err != nil {
			return apperr.Wrap(apperr.Transient, "failed to write task log", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

// RecordTime appends a time_record log row for minutes of work.
func (tc *Controller) RecordTime(requester *models.User, taskID uint, minutes int, note string) error {
	if minutes <= 0 {
		return apperr.New(apperr.Validation, "minutes must be a positive number")
	}
	task, err := tc.loadTask(taskID)
	if err != nil {
		return err
	}
	if err := tc.canPerform(requester, task, actionAccess); err != nil {
		return err
	}

	notes := fmt.Sprintf("%dm", minutes)
	if note != "" {
		notes += ": " + note
	}
	logRow := models.TaskLog{
		TaskID: taskID,
		UserID: requester.ID,
		Action: models.LogActionTimeRecord,
		Notes:  notes,
	}
	if err := tc.db.Create(&logRow).Error; err != nil {
		return apperr.Wrap(apperr.Transient, "failed to record time", err)
	}
	return nil
}

// SoftDelete flips the task's active flag. Tasks are never hard-deleted
// here, and their logs are kept.
func (tc *Controller) SoftDelete(requester *models.User, taskID uint) error {
	task, err := tc.loadTask(taskID)
	if err != nil {
		return err
	}
	if err := tc.canPerform(requester, task, actionDelete); err != nil {
		return err
	}
	if err := tc.db.Model(task).Update("is_active", false).Error; err != nil {
		return apperr.Wrap(apperr.Transient, "failed to delete task", err)
	}
	return nil
}

// Restore reactivates a soft-deleted task. Admin only.
func (tc *Controller) Restore(requester *models.User, taskID uint) error {
	set, err := tc.resolver.Resolve(requester.ID)
	if err != nil {
		return err
	}
	if !set.Admin() {
		return apperr.New(apperr.Authorization, "only administrators can restore tasks")
	}
	res := tc.db.Model(&models.Task{}).Where("id = ?", taskID).Update("is_active", true)
	if res.Error != nil {
		return apperr.Wrap(apperr.Transient, "failed to restore task", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.Newf(apperr.NotFound, "task %d not found", taskID)
	}
	return nil
}

func (tc *Controller) loadTask(taskID uint) (*models.Task, error) {
	var task models.Task
	err := tc.db.Where("id = ? AND is_active = ?", taskID, true).First(&task).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Newf(apperr.NotFound, "task %d not found", taskID)
		}
		return nil, apperr.Wrap(apperr.Transient, "failed to load task", err)
	}
	return &task, nil
}

// canPerform is the single ownership-aware authorization primitive: it
// resolves the capability grant and the ownership predicate together, so
// no caller checks them separately.
func (tc *Controller) canPerform(requester *models.User, task *models.Task, action string) error {
	set, err := tc.resolver.Resolve(requester.ID)
	if err != nil {
		return err
	}
	if set.Admin() {
		return nil
	}

	isCreator := task.CreatedByID == requester.ID
	isAssignee := task.AssignedToID != nil && *task.AssignedToID == requester.ID

	switch action {
	case actionTransition:
		if isAssignee && set.Has(permissions.CompleteTasksOwn) {
			return nil
		}
		if isCreator && set.Has(permissions.EditTasksOwn) {
			return nil
		}
	case actionAccess:
		if isCreator && set.Has(permissions.ViewTasksOwn) {
			return nil
		}
		if isAssignee && set.Has(permissions.ViewTasksAssigned) {
			return nil
		}
	case actionDelete:
		if isCreator && set.Has(permissions.DeleteTasksOwn) {
			return nil
		}
	}
	return apperr.New(apperr.Authorization, "you do not have permission for this task")
}
