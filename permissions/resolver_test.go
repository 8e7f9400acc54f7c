package permissions

import (
	"fmt"
	"testing"

	"letterdesk/database"
	"letterdesk/models"

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

func TestResolveAdminUniversalSet(t *testing.T) {
	db := newTestDB(t)
	admin := seedUser(t, db, "admin", models.RoleAdmin)

	set, err := NewResolver(db).Resolve(admin.ID)
	require.NoError(t, err)

	assert.True(t, set.Admin())
	assert.True(t, set.Has(ViewLetters))
	assert.True(t, set.Has(DeleteUsers))
	assert.True(t, set.Has(Code("anything:at-all")))
}

func TestResolveUserDefaults(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "plain", models.RoleUser)

	set, err := NewResolver(db).Resolve(user.ID)
	require.NoError(t, err)

	assert.False(t, set.Admin())
	assert.True(t, set.Has(ViewLetters))
	assert.True(t, set.Has(CreateTasks))
	assert.False(t, set.Has(DeleteUsers))
	assert.False(t, set.Has(ViewTasksAll))
}

func TestHasAnyEmptyListIsAlwaysTrue(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "plain", models.RoleUser)

	set, err := NewResolver(db).Resolve(user.ID)
	require.NoError(t, err)
	assert.True(t, set.HasAny())

	// Even a nil set (no session at all) passes an empty requirement.
	var unauthenticated *Set
	assert.True(t, unauthenticated.HasAny())
	assert.False(t, unauthenticated.HasAny(ViewLetters))
}

func TestOwnSuffixSatisfiedByBaseCode(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "granted", models.RoleUser)
	require.NoError(t, db.Create(&models.UserPermission{
		UserID: user.ID,
		Code:   "approve:letters",
	}).Error)

	set, err := NewResolver(db).Resolve(user.ID)
	require.NoError(t, err)

	// The unscoped grant covers the own-scoped check; ownership itself
	// is the resource layer's concern.
	assert.True(t, set.Has(Code("approve:letters")))
	assert.True(t, set.Has(Code("approve:letters:own")))
	assert.False(t, set.Has(Code("approve:templates")))
}

func TestBundleRoleGrant(t *testing.T) {
	db := newTestDB(t)
	viewer := seedUser(t, db, "viewer", models.Role("viewer"))

	resolver := NewResolver(db)
	set, err := resolver.Resolve(viewer.ID)
	require.NoError(t, err)
	// Unknown roles carry no default bundle.
	assert.False(t, set.Has(ViewLetters))

	require.NoError(t, db.Create(&models.UserPermission{
		UserID:     viewer.ID,
		BundleRole: models.RoleUser,
	}).Error)
	resolver.Invalidate(viewer.ID)

	set, err = resolver.Resolve(viewer.ID)
	require.NoError(t, err)
	assert.True(t, set.Has(ViewLetters))
	assert.True(t, set.Has(CreateTasks))
}

func TestInactiveUserDeniedEverything(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "frozen", models.RoleUser)
	require.NoError(t, db.Model(user).Update("is_active", false).Error)

	set, err := NewResolver(db).Resolve(user.ID)
	require.NoError(t, err)

	assert.False(t, set.Has(ViewLetters))
	assert.False(t, set.Has(ViewTasksOwn))
	assert.True(t, set.HasAny(), "empty requirement stays vacuously true")
}

func TestInvalidateRecomputesAfterGrantChange(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "upgraded", models.RoleUser)

	resolver := NewResolver(db)
	set, err := resolver.Resolve(user.ID)
	require.NoError(t, err)
	assert.False(t, set.Has(ViewTasksAll))

	grant := models.UserPermission{UserID: user.ID, Code: string(ViewTasksAll)}
	require.NoError(t, db.Create(&grant).Error)

	// Still the stale cached set until invalidated.
	set, err = resolver.Resolve(user.ID)
	require.NoError(t, err)
	assert.False(t, set.Has(ViewTasksAll))

	resolver.Invalidate(user.ID)
	set, err = resolver.Resolve(user.ID)
	require.NoError(t, err)
	assert.True(t, set.Has(ViewTasksAll))

	// Revoking flows through the same invalidation path.
	require.NoError(t, db.Model(&grant).Update("is_deleted", true).Error)
	resolver.Invalidate(user.ID)
	set, err = resolver.Resolve(user.ID)
	require.NoError(t, err)
	assert.False(t, set.Has(ViewTasksAll))
}

func TestResolveUnknownUser(t *testing.T) {
	db := newTestDB(t)
	_, err := NewResolver(db).Resolve(9999)
	assert.Error(t, err)
}
