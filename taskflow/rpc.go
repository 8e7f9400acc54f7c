package taskflow

import (
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"letterdesk/apperr"
	"letterdesk/models"

	"gorm.io/gorm"
)

// errProcUnavailable signals that a server-side procedure is not
// installed and the caller should take the direct-operation path. It is
// never surfaced to users.
var errProcUnavailable = errors.New("stored procedure unavailable")

type capability int

const (
	capUnknown capability = iota
	capAvailable
	capUnavailable
)

// procCaller invokes the optional server-side procedures and remembers,
// for the process lifetime, which of them exist. The first
// undefined-function failure flips the capability to unavailable; it is
// never re-probed.
type procCaller struct {
	db *gorm.DB

	mu           sync.Mutex
	updateStatus capability
	addComment   capability
}

func newProcCaller(db *gorm.DB) *procCaller {
	return &procCaller{db: db}
}

func (p *procCaller) capOf(c *capability) capability {
	p.mu.Lock()
	defer p.mu.Unlock()
	return *c
}

func (p *procCaller) setCap(c *capability, v capability) {
	p.mu.Lock()
	*c = v
	p.mu.Unlock()
}

// callUpdateStatus invokes update_task_status(task_id, status,
// completion_date) on tx, so the caller can pair it with the client-side
// log insert in one transaction. Returns errProcUnavailable when the
// procedure is not installed.
func (p *procCaller) callUpdateStatus(tx *gorm.DB, taskID uint, status models.TaskStatus, completion *time.Time) error {
	if p.capOf(&p.updateStatus) == capUnavailable {
		return errProcUnavailable
	}
	err := tx.Exec("SELECT update_task_status(?, ?, ?)", taskID, string(status), completion).Error
	if err == nil {
		p.setCap(&p.updateStatus, capAvailable)
		return nil
	}
	if isUndefinedFunction(err) {
		p.setCap(&p.updateStatus, capUnavailable)
		log.Printf("[TASK-RPC] update_task_status unavailable, using direct update: %v", err)
		return errProcUnavailable
	}
	return apperr.Wrap(apperr.Transient, "update_task_status failed", err)
}

// callAddComment invokes add_task_comment(task_id, user_id, text), which
// writes the comment log row server-side.
func (p *procCaller) callAddComment(taskID, userID uint, text string) error {
	if p.capOf(&p.addComment) == capUnavailable {
		return errProcUnavailable
	}
	err := p.db.Exec("SELECT add_task_comment(?, ?, ?)", taskID, userID, text).Error
	if err == nil {
		p.setCap(&p.addComment, capAvailable)
		return nil
	}
	if isUndefinedFunction(err) {
		p.setCap(&p.addComment, capUnavailable)
		log.Printf("[TASK-RPC] add_task_comment unavailable, using direct insert: %v", err)
		return errProcUnavailable
	}
	return apperr.Wrap(apperr.Transient, "add_task_comment failed", err)
}

// isUndefinedFunction distinguishes "the procedure is not installed" from
// business errors. Postgres reports SQLSTATE 42883, sqlite "no such
// function".
func isUndefinedFunction(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "42883") ||
		strings.Contains(msg, "does not exist") ||
		strings.Contains(msg, "no such function")
}
