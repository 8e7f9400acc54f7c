package adminValidator

import (
	"letterdesk/middleware"
	"letterdesk/models"
	"letterdesk/permissions"

	"github.com/gofiber/fiber/v2"
)

type UserListRequest struct {
	Page  int `query:"page"`
	Limit int `query:"limit"`
}

// UserList validator middleware
func UserList() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(UserListRequest)
		if err := c.QueryParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid query parameters!", nil)
		}
		if reqData.Page < 1 {
			reqData.Page = 1
		}
		if reqData.Limit < 1 {
			reqData.Limit = 10
		}
		c.Locals("validatedUserList", reqData)
		return c.Next()
	}
}

type GrantRequest struct {
	UserID     uint   `json:"user_id"`
	Code       string `json:"code"`
	BundleRole string `json:"bundle_role"`
}

// GrantPermission validator middleware: the grant names either an
// explicit code or a role bundle, never both.
func GrantPermission() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(GrantRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)
		if reqData.UserID == 0 {
			errors["user_id"] = "A user id is required!"
		}
		if reqData.Code == "" && reqData.BundleRole == "" {
			errors["code"] = "A permission code or bundle role is required!"
		}
		if reqData.Code != "" && reqData.BundleRole != "" {
			errors["code"] = "Provide either a permission code or a bundle role, not both!"
		}
		if reqData.Code != "" {
			if _, err := permissions.ParseCode(reqData.Code); err != nil {
				errors["code"] = "Malformed permission code!"
			}
		}
		if reqData.BundleRole != "" && reqData.BundleRole != string(models.RoleUser) {
			errors["bundle_role"] = "Unknown bundle role!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedGrant", reqData)
		return c.Next()
	}
}

type RoleUpdateRequest struct {
	UserID uint   `json:"user_id"`
	Role   string `json:"role"`
}

// UpdateRole validator middleware
func UpdateRole() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(RoleUpdateRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)
		if reqData.UserID == 0 {
			errors["user_id"] = "A user id is required!"
		}
		if reqData.Role != string(models.RoleAdmin) && reqData.Role != string(models.RoleUser) {
			errors["role"] = "Role must be admin or user!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedRoleUpdate", reqData)
		return c.Next()
	}
}
