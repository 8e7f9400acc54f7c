package permissions

import "letterdesk/models"

// Permission codes referenced across the service. The resolver accepts
// arbitrary well-formed codes; these constants exist so call sites do not
// scatter string literals.
const (
	CreateLetters    Code = "create:letters"
	ViewLetters      Code = "view:letters"
	EditLettersOwn   Code = "edit:letters:own"
	DeleteLettersOwn Code = "delete:letters:own"

	ViewTemplates Code = "view:templates"
	EditTemplates Code = "edit:templates"

	RequestApprovalsOwn Code = "request:approvals:own"

	CreateTasks       Code = "create:tasks"
	ViewTasksOwn      Code = "view:tasks:own"
	ViewTasksAssigned Code = "view:tasks:assigned"
	ViewTasksAll      Code = "view:tasks:all"
	EditTasksOwn      Code = "edit:tasks:own"
	CompleteTasksOwn  Code = "complete:tasks:own"
	DeleteTasksOwn    Code = "delete:tasks:own"

	ViewUsers   Code = "view:users"
	EditUsers   Code = "edit:users"
	DeleteUsers Code = "delete:users"
)

// roleDefaults is the single source of role-default bundles. Admins never
// consult it: they resolve to the universal set.
var roleDefaults = map[models.Role][]Code{
	models.RoleUser: {
		CreateLetters,
		ViewLetters,
		EditLettersOwn,
		DeleteLettersOwn,
		ViewTemplates,
		RequestApprovalsOwn,
		CreateTasks,
		ViewTasksOwn,
		ViewTasksAssigned,
		EditTasksOwn,
		CompleteTasksOwn,
		DeleteTasksOwn,
	},
}

// DefaultPermissions returns the default bundle for a role. The returned
// slice is a copy; callers may append to it.
func DefaultPermissions(role models.Role) []Code {
	defaults := roleDefaults[role]
	out := make([]Code, len(defaults))
	copy(out, defaults)
	return out
}
