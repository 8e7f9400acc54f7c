package taskquery

import (
	"fmt"
	"testing"
	"time"

	"letterdesk/database"
	"letterdesk/models"
	"letterdesk/permissions"
	"letterdesk/taskflow"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type testEnv struct {
	db       *gorm.DB
	resolver *permissions.Resolver
	service  *Service
	flow     *taskflow.Controller

	admin *models.User
	alice *models.User
	bob   *models.User
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	resolver := permissions.NewResolver(db)
	return &testEnv{
		db:       db,
		resolver: resolver,
		service:  NewService(db, resolver),
		flow:     taskflow.NewController(db, resolver, nil),
		admin:    seedUser(t, db, "admin", models.RoleAdmin),
		alice:    seedUser(t, db, "alice", models.RoleUser),
		bob:      seedUser(t, db, "bob", models.RoleUser),
	}
}

func seedUser(t *testing.T, db *gorm.DB, name string, role models.Role) *models.User {
	t.Helper()
	user := &models.User{
		Name:     name,
		Email:    name + "@example.com",
		Password: "irrelevant",
		Role:     role,
		IsActive: true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedTask(t *testing.T, db *gorm.DB, title string, creator *models.User, assignee *models.User, mutate func(*models.Task)) *models.Task {
	t.Helper()
	task := &models.Task{
		Title:       title,
		Status:      models.TaskStatusNew,
		Priority:    models.TaskPriorityMedium,
		CreatedByID: creator.ID,
		IsActive:    true,
	}
	if assignee != nil {
		task.AssignedToID = &assignee.ID
	}
	if mutate != nil {
		mutate(task)
	}
	require.NoError(t, db.Create(task).Error)
	return task
}

func titles(tasks []models.Task) []string {
	out := make([]string, len(tasks))
	for i, task := range tasks {
		out[i] = task.Title
	}
	return out
}

func TestListScopesToCreatorOrAssignee(t *testing.T) {
	env := setupEnv(t)

	seedTask(t, env.db, "mine", env.alice, nil, nil)
	seedTask(t, env.db, "assigned to me", env.bob, env.alice, nil)
	seedTask(t, env.db, "not mine", env.bob, env.bob, nil)

	tasks, total, err := env.service.List(env.alice, Filters{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.ElementsMatch(t, []string{"mine", "assigned to me"}, titles(tasks))

	// Admin sees everything.
	_, total, err = env.service.List(env.admin, Filters{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
}

func TestListWithoutAnyViewGrantIsEmptyNotError(t *testing.T) {
	env := setupEnv(t)
	ghost := seedUser(t, env.db, "ghost", models.Role("viewer"))

	seedTask(t, env.db, "invisible", env.alice, ghost, nil)

	tasks, total, err := env.service.List(ghost, Filters{})
	require.NoError(t, err)
	assert.EqualValues(t, 0, total)
	assert.Empty(t, tasks)
}

func TestListAllScopeGrantLiftsRestriction(t *testing.T) {
	env := setupEnv(t)
	seedTask(t, env.db, "someone else's", env.bob, env.bob, nil)

	require.NoError(t, env.db.Create(&models.UserPermission{
		UserID: env.alice.ID,
		Code:   string(permissions.ViewTasksAll),
	}).Error)
	env.resolver.Invalidate(env.alice.ID)

	_, total, err := env.service.List(env.alice, Filters{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}

func TestListStatusAndPriorityFilters(t *testing.T) {
	env := setupEnv(t)

	seedTask(t, env.db, "urgent", env.alice, nil, func(task *models.Task) {
		task.Priority = models.TaskPriorityHigh
	})
	seedTask(t, env.db, "running", env.alice, nil, func(task *models.Task) {
		task.Status = models.TaskStatusInProgress
	})

	tasks, _, err := env.service.List(env.alice, Filters{Status: "in_progress"})
	require.NoError(t, err)
	assert.Equal(t, []string{"running"}, titles(tasks))

	tasks, _, err = env.service.List(env.alice, Filters{Priority: "high"})
	require.NoError(t, err)
	assert.Equal(t, []string{"urgent"}, titles(tasks))

	tasks, _, err = env.service.List(env.alice, Filters{Status: "all", Priority: "all"})
	require.NoError(t, err)
	assert.Len(t, tasks, 2)
}

func TestListTimeframes(t *testing.T) {
	env := setupEnv(t)
	now := time.Now()
	// Anchor at noon so "today" stays today whatever the wall clock.
	noon := time.Date(now.Year(), now.Month(), now.Day(), 12, 0, 0, 0, now.Location())

	due := func(offset time.Duration) func(*models.Task) {
		return func(task *models.Task) {
			d := noon.Add(offset)
			task.DueDate = &d
		}
	}

	seedTask(t, env.db, "due today", env.alice, nil, due(0))
	seedTask(t, env.db, "due this week", env.alice, nil, due(3*24*time.Hour))
	seedTask(t, env.db, "due this month", env.alice, nil, due(20*24*time.Hour))
	seedTask(t, env.db, "late", env.alice, nil, due(-36*time.Hour))
	seedTask(t, env.db, "late but done", env.alice, nil, func(task *models.Task) {
		d := noon.Add(-36 * time.Hour)
		task.DueDate = &d
		task.Status = models.TaskStatusCompleted
	})

	tasks, _, err := env.service.List(env.alice, Filters{Timeframe: TimeframeToday})
	require.NoError(t, err)
	assert.Equal(t, []string{"due today"}, titles(tasks))

	tasks, _, err = env.service.List(env.alice, Filters{Timeframe: TimeframeWeek})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"due today", "due this week"}, titles(tasks))

	tasks, _, err = env.service.List(env.alice, Filters{Timeframe: TimeframeMonth})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"due today", "due this week", "due this month"}, titles(tasks))

	// Overdue excludes terminal statuses.
	tasks, _, err = env.service.List(env.alice, Filters{Timeframe: TimeframeOverdue})
	require.NoError(t, err)
	assert.Equal(t, []string{"late"}, titles(tasks))
}

func TestListSearchMatchesTitleAndNames(t *testing.T) {
	env := setupEnv(t)

	seedTask(t, env.db, "Renew the postage contract", env.alice, nil, nil)
	seedTask(t, env.db, "Misc paperwork", env.alice, env.bob, nil)
	seedTask(t, env.db, "Unrelated", env.alice, nil, nil)

	tasks, _, err := env.service.List(env.alice, Filters{Search: "POSTAGE"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Renew the postage contract"}, titles(tasks))

	// Assignee display name matches too.
	tasks, _, err = env.service.List(env.alice, Filters{Search: "bob"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Misc paperwork"}, titles(tasks))
}

func TestListTaskTypeFilter(t *testing.T) {
	env := setupEnv(t)

	seedTask(t, env.db, "created by alice", env.alice, env.bob, nil)
	seedTask(t, env.db, "assigned to alice", env.bob, env.alice, nil)

	tasks, _, err := env.service.List(env.alice, Filters{TaskType: TaskTypeCreatedByMe})
	require.NoError(t, err)
	assert.Equal(t, []string{"created by alice"}, titles(tasks))

	tasks, _, err = env.service.List(env.alice, Filters{TaskType: TaskTypeAssignedToMe})
	require.NoError(t, err)
	assert.Equal(t, []string{"assigned to alice"}, titles(tasks))
}

func TestSummarizeCountsUnderScope(t *testing.T) {
	env := setupEnv(t)

	seedTask(t, env.db, "one", env.alice, nil, nil)
	seedTask(t, env.db, "two", env.alice, nil, func(task *models.Task) {
		task.Status = models.TaskStatusInProgress
	})
	seedTask(t, env.db, "assigned", env.bob, env.alice, nil)
	seedTask(t, env.db, "invisible", env.bob, env.bob, nil)
	seedTask(t, env.db, "late", env.alice, nil, func(task *models.Task) {
		d := time.Now().Add(-48 * time.Hour)
		task.DueDate = &d
	})

	summary, err := env.service.Summarize(env.alice, nil)
	require.NoError(t, err)

	assert.EqualValues(t, 4, summary.Total)
	assert.EqualValues(t, 3, summary.ByStatus[models.TaskStatusNew])
	assert.EqualValues(t, 1, summary.ByStatus[models.TaskStatusInProgress])
	assert.EqualValues(t, 1, summary.Overdue)
	assert.EqualValues(t, 1, summary.AssignedToMe)
	assert.EqualValues(t, 3, summary.CreatedByMe)
}

func TestSummarizeReflectsTransition(t *testing.T) {
	env := setupEnv(t)

	task, err := env.flow.Create(env.alice, taskflow.CreateInput{Title: "soon rejected"})
	require.NoError(t, err)
	seedTask(t, env.db, "stays new", env.alice, nil, nil)

	before, err := env.service.Summarize(env.alice, nil)
	require.NoError(t, err)

	_, err = env.flow.Transition(env.alice, taskflow.TransitionInput{
		TaskID:   task.ID,
		Expected: models.TaskStatusNew,
		To:       models.TaskStatusRejected,
		Reason:   "superseded",
	})
	require.NoError(t, err)

	after, err := env.service.Summarize(env.alice, nil)
	require.NoError(t, err)

	assert.Equal(t, before.ByStatus[models.TaskStatusNew]-1, after.ByStatus[models.TaskStatusNew])
	assert.Equal(t, before.ByStatus[models.TaskStatusRejected]+1, after.ByStatus[models.TaskStatusRejected])
}

func TestSummarizeBranchFilter(t *testing.T) {
	env := setupEnv(t)

	branch := models.Branch{Name: "North"}
	require.NoError(t, env.db.Create(&branch).Error)

	seedTask(t, env.db, "north task", env.alice, nil, func(task *models.Task) {
		task.BranchID = &branch.ID
	})
	seedTask(t, env.db, "no branch", env.alice, nil, nil)

	summary, err := env.service.Summarize(env.alice, &branch.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, summary.Total)
	assert.EqualValues(t, 1, summary.CreatedByMe)
}
