package middleware

import (
	"bytes"
	"fmt"
	"log"
	"net/http/httptest"
	"strings"
	"testing"

	"letterdesk/config"
	"letterdesk/database"
	"letterdesk/models"
	"letterdesk/permissions"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
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

func bearerFor(t *testing.T, user *models.User) string {
	t.Helper()
	token, err := GenerateJWT(user.ID, user.Name, user.Role, user.Email)
	require.NoError(t, err)
	return "Bearer " + token
}

func setupGuardApp(t *testing.T) (*fiber.App, *permissions.Resolver, *gorm.DB) {
	t.Helper()
	config.AppConfig = &config.Config{JWTKey: "test-secret", SaltRound: 4}

	db := newTestDB(t)
	resolver := permissions.NewResolver(db)

	ok := func(c *fiber.Ctx) error {
		return JsonResponse(c, fiber.StatusOK, true, "ok", nil)
	}

	app := fiber.New()
	app.Get("/admin-only", JWTMiddleware,
		RequirePermissions(resolver, GuardConfig{}, permissions.DeleteUsers), ok)
	app.Get("/admin-or-home", JWTMiddleware,
		RequirePermissions(resolver, GuardConfig{Fallback: "/home"}, permissions.DeleteUsers), ok)
	app.Get("/any-session", JWTMiddleware,
		RequirePermissions(resolver, GuardConfig{}), ok)

	return app, resolver, db
}

func TestRouteGuardUnauthenticatedRedirectsToLogin(t *testing.T) {
	app, _, _ := setupGuardApp(t)

	req := httptest.NewRequest("GET", "/admin-only", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestRouteGuardDeniedRendersFallbackNeverContent(t *testing.T) {
	app, _, db := setupGuardApp(t)
	user := seedUser(t, db, "plain", models.RoleUser)

	req := httptest.NewRequest("GET", "/admin-only", nil)
	req.Header.Set("Authorization", bearerFor(t, user))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	// With a designated fallback the session gets redirected instead.
	req = httptest.NewRequest("GET", "/admin-or-home", nil)
	req.Header.Set("Authorization", bearerFor(t, user))
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/home", resp.Header.Get("Location"))
}

func TestRouteGuardAdminPasses(t *testing.T) {
	app, _, db := setupGuardApp(t)
	admin := seedUser(t, db, "admin", models.RoleAdmin)

	req := httptest.NewRequest("GET", "/admin-only", nil)
	req.Header.Set("Authorization", bearerFor(t, admin))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRouteGuardEmptyRequirementAlwaysVisible(t *testing.T) {
	app, _, db := setupGuardApp(t)
	user := seedUser(t, db, "plain", models.RoleUser)

	req := httptest.NewRequest("GET", "/any-session", nil)
	req.Header.Set("Authorization", bearerFor(t, user))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestInlineGuardWarnsOncePerFailedState(t *testing.T) {
	db := newTestDB(t)
	resolver := permissions.NewResolver(db)
	guard := NewInlineGuard(resolver)
	user := seedUser(t, db, "plain", models.RoleUser)

	var buf bytes.Buffer
	orig := log.Writer()
	log.SetOutput(&buf)
	defer log.SetOutput(orig)

	assert.False(t, guard.Allow(user.ID, permissions.DeleteUsers))
	assert.False(t, guard.Allow(user.ID, permissions.DeleteUsers))
	assert.False(t, guard.Allow(user.ID, permissions.DeleteUsers))
	assert.Equal(t, 1, strings.Count(buf.String(), "[GUARD]"),
		"repeated evaluations of the same failed state warn once")

	// The grant flips the state; a later failure warns again.
	require.NoError(t, db.Create(&models.UserPermission{
		UserID: user.ID,
		Code:   string(permissions.DeleteUsers),
	}).Error)
	resolver.Invalidate(user.ID)
	assert.True(t, guard.Allow(user.ID, permissions.DeleteUsers))

	require.NoError(t, db.Model(&models.UserPermission{}).
		Where("user_id = ?", user.ID).Update("is_deleted", true).Error)
	resolver.Invalidate(user.ID)
	assert.False(t, guard.Allow(user.ID, permissions.DeleteUsers))
	assert.Equal(t, 2, strings.Count(buf.String(), "[GUARD]"))
}

func TestInlineGuardForgetEvictsOnlyThatUser(t *testing.T) {
	db := newTestDB(t)
	guard := NewInlineGuard(permissions.NewResolver(db))
	first := seedUser(t, db, "first", models.RoleUser)
	second := seedUser(t, db, "second", models.RoleUser)

	var buf bytes.Buffer
	orig := log.Writer()
	log.SetOutput(&buf)
	defer log.SetOutput(orig)

	assert.False(t, guard.Allow(first.ID, permissions.DeleteUsers))
	assert.False(t, guard.Allow(second.ID, permissions.DeleteUsers))
	assert.Equal(t, 2, strings.Count(buf.String(), "[GUARD]"))

	guard.Forget(first.ID)

	// The forgotten user warns again; the other stays suppressed.
	assert.False(t, guard.Allow(first.ID, permissions.DeleteUsers))
	assert.False(t, guard.Allow(second.ID, permissions.DeleteUsers))
	assert.Equal(t, 3, strings.Count(buf.String(), "[GUARD]"))

	guard.mu.Lock()
	assert.Len(t, guard.warned, 2)
	guard.mu.Unlock()
}

func TestInlineGuardEmptyRequirement(t *testing.T) {
	db := newTestDB(t)
	guard := NewInlineGuard(permissions.NewResolver(db))
	user := seedUser(t, db, "plain", models.RoleUser)

	assert.True(t, guard.Allow(user.ID))
}
