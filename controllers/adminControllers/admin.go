package adminControllers

import (
	"strconv"

	"letterdesk/middleware"
	"letterdesk/models"
	"letterdesk/permissions"
	"letterdesk/taskflow"
	adminValidator "letterdesk/validators/admin"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// AdminController manages users and custom permission grants. Routes are
// gated behind the admin role by the route guard; every grant or role
// mutation invalidates the resolver cache for the affected user.
type AdminController struct {
	DB       *gorm.DB
	Resolver *permissions.Resolver
	Flow     *taskflow.Controller
	Inline   *middleware.InlineGuard
}

// invalidate drops every cached decision about the user: the resolved
// permission set and any inline-guard warning state.
func (ac *AdminController) invalidate(userID uint) {
	ac.Resolver.Invalidate(userID)
	if ac.Inline != nil {
		ac.Inline.Forget(userID)
	}
}

func (ac *AdminController) UserList(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedUserList").(*adminValidator.UserListRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	offset := (reqData.Page - 1) * reqData.Limit

	var users []models.User
	var total int64

	if err := ac.DB.
		Where("is_deleted = ?", false).
		Preload("Branch").
		Offset(offset).
		Limit(reqData.Limit).
		Find(&users).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch user list!", nil)
	}

	ac.DB.Model(&models.User{}).Where("is_deleted = ?", false).Count(&total)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Users fetched successfully!", fiber.Map{
		"users": users,
		"pagination": fiber.Map{
			"total": total,
			"page":  reqData.Page,
			"limit": reqData.Limit,
		},
	})
}

func (ac *AdminController) UpdateRole(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedRoleUpdate").(*adminValidator.RoleUpdateRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	res := ac.DB.Model(&models.User{}).
		Where("id = ? AND is_deleted = false", reqData.UserID).
		Update("role", reqData.Role)
	if res.Error != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update role!", nil)
	}
	if res.RowsAffected == 0 {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "User not found!", nil)
	}

	// The user's effective permissions changed; drop the cached set.
	ac.invalidate(reqData.UserID)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Role updated successfully!", nil)
}

func (ac *AdminController) SetActive(c *fiber.Ctx) error {
	userID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || userID == 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid user id!", nil)
	}

	reqData := new(struct {
		IsActive bool `json:"is_active"`
	})
	if err := c.BodyParser(reqData); err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	res := ac.DB.Model(&models.User{}).
		Where("id = ? AND is_deleted = false", userID).
		Update("is_active", reqData.IsActive)
	if res.Error != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update user!", nil)
	}
	if res.RowsAffected == 0 {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "User not found!", nil)
	}

	ac.invalidate(uint(userID))

	return middleware.JsonResponse(c, fiber.StatusOK, true, "User updated successfully!", nil)
}

func (ac *AdminController) GrantPermission(c *fiber.Ctx) error {
	adminID, _ := c.Locals("userId").(uint)

	reqData, ok := c.Locals("validatedGrant").(*adminValidator.GrantRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	var user models.User
	if err := ac.DB.Where("id = ? AND is_deleted = false", reqData.UserID).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "User not found!", nil)
	}

	grant := models.UserPermission{
		UserID:     reqData.UserID,
		Code:       reqData.Code,
		BundleRole: models.Role(reqData.BundleRole),
		GrantedBy:  adminID,
	}
	if err := ac.DB.Create(&grant).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to grant permission!", nil)
	}

	ac.invalidate(reqData.UserID)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Permission granted successfully!", grant)
}

func (ac *AdminController) RevokePermission(c *fiber.Ctx) error {
	grantID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || grantID == 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid grant id!", nil)
	}

	var grant models.UserPermission
	if err := ac.DB.Where("id = ? AND is_deleted = false", grantID).First(&grant).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Grant not found!", nil)
	}

	if err := ac.DB.Model(&grant).Update("is_deleted", true).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to revoke permission!", nil)
	}

	ac.invalidate(grant.UserID)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Permission revoked successfully!", nil)
}

func (ac *AdminController) UserPermissions(c *fiber.Ctx) error {
	userID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || userID == 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid user id!", nil)
	}

	var grants []models.UserPermission
	if err := ac.DB.Where("user_id = ? AND is_deleted = false", userID).Find(&grants).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch grants!", nil)
	}

	set, err := ac.Resolver.Resolve(uint(userID))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Permissions fetched successfully!", fiber.Map{
		"grants":    grants,
		"effective": set.Codes(),
		"is_admin":  set.Admin(),
	})
}

func (ac *AdminController) RestoreTask(c *fiber.Ctx) error {
	adminID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	var admin models.User
	if err := ac.DB.Where("id = ? AND is_deleted = false", adminID).First(&admin).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	taskID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || taskID == 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid task id!", nil)
	}

	if err := ac.Flow.Restore(&admin, uint(taskID)); err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Task restored successfully!", nil)
}
