package taskflow

import (
	"errors"
	"log"
	"mime/multipart"

	"letterdesk/apperr"
	"letterdesk/models"

	"gorm.io/gorm"
)

// BlobStore stores attachment files and returns a retrievable URL.
type BlobStore interface {
	Save(file *multipart.FileHeader) (string, error)
	Delete(fileURL string) error
}

// AddAttachment stores the file and records it against the task.
func (tc *Controller) AddAttachment(requester *models.User, taskID uint, file *multipart.FileHeader) (*models.TaskAttachment, error) {
	if file == nil || file.Size == 0 {
		return nil, apperr.New(apperr.Validation, "an attachment file is required")
	}
	task, err := tc.loadTask(taskID)
	if err != nil {
		return nil, err
	}
	if err := tc.canPerform(requester, task, actionAccess); err != nil {
		return nil, err
	}

	fileURL, err := tc.blobs.Save(file)
	if err != nil {
		return nil, apperr.Wrap(apperr.Transient, "failed to store attachment", err)
	}

	attachment := models.TaskAttachment{
		TaskID:     taskID,
		FileName:   file.Filename,
		FileSize:   file.Size,
		FileURL:    fileURL,
		UploadedBy: requester.ID,
	}
	err = tc.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&attachment).Error; err != nil {
			return apperr.Wrap(apperr.Transient, "failed to save attachment", err)
		}
		logRow := models.TaskLog{
			TaskID: taskID,
			UserID: requester.ID,
			Action: models.LogActionUpdateDetails,
			Notes:  "attachment added: " + file.Filename,
		}
		if err := tx.Create(&logRow).Error; err != nil {
			return apperr.Wrap(apperr.Transient, "failed to write task log", err)
		}
		return nil
	})
	if err != nil {
		// Roll back the stored blob so no orphan file is left behind.
		_ = tc.blobs.Delete(fileURL)
		return nil, err
	}
	return &attachment, nil
}

// Attachments lists a task's attachments under the usual access rule.
func (tc *Controller) Attachments(requester *models.User, taskID uint) ([]models.TaskAttachment, error) {
	task, err := tc.loadTask(taskID)
	if err != nil {
		return nil, err
	}
	if err := tc.canPerform(requester, task, actionAccess); err != nil {
		return nil, err
	}
	var attachments []models.TaskAttachment
	if err := tc.db.Where("task_id = ?", taskID).Order("uploaded_at ASC").Find(&attachments).Error; err != nil {
		return nil, apperr.Wrap(apperr.Transient, "failed to load attachments", err)
	}
	return attachments, nil
}

// RemoveAttachment deletes the attachment record and its stored file.
func (tc *Controller) RemoveAttachment(requester *models.User, attachmentID uint) error {
	var attachment models.TaskAttachment
	if err := tc.db.First(&attachment, attachmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.Newf(apperr.NotFound, "attachment %d not found", attachmentID)
		}
		return apperr.Wrap(apperr.Transient, "failed to load attachment", err)
	}
	task, err := tc.loadTask(attachment.TaskID)
	if err != nil {
		return err
	}
	if err := tc.canPerform(requester, task, actionAccess); err != nil {
		return err
	}

	err = tc.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&attachment).Error; err != nil {
			return apperr.Wrap(apperr.Transient, "failed to delete attachment", err)
		}
		logRow := models.TaskLog{
			TaskID: attachment.TaskID,
			UserID: requester.ID,
			Action: models.LogActionUpdateDetails,
			Notes:  "attachment removed: " + attachment.FileName,
		}
		if err := tx.Create(&logRow).Error; err != nil {
			return apperr.Wrap(apperr.Transient, "failed to write task log", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := tc.blobs.Delete(attachment.FileURL); err != nil {
		// The record is gone; a leftover file is not fatal.
		log.Printf("[ATTACHMENTS] failed to remove blob %s: %v", attachment.FileURL, err)
	}
	return nil
}
