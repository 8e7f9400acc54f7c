package taskflow

import "letterdesk/models"

type transitionRule struct {
	reasonRequired bool
}

// transitions is the fixed table of legal status changes. "completed" and
// "rejected" are terminal; anything absent here is rejected before any
// store call.
var transitions = map[models.TaskStatus]map[models.TaskStatus]transitionRule{
	models.TaskStatusNew: {
		models.TaskStatusInProgress: {reasonRequired: false},
		models.TaskStatusRejected:   {reasonRequired: true},
	},
	models.TaskStatusInProgress: {
		models.TaskStatusCompleted: {reasonRequired: false},
		models.TaskStatusPostponed: {reasonRequired: true},
		models.TaskStatusRejected:  {reasonRequired: true},
	},
	models.TaskStatusPostponed: {
		models.TaskStatusInProgress: {reasonRequired: false},
	},
}

func transitionRuleFor(from, to models.TaskStatus) (transitionRule, bool) {
	rule, ok := transitions[from][to]
	return rule, ok
}
