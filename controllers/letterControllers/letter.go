package letterControllers

import (
	"errors"
	"strconv"

	"letterdesk/middleware"
	"letterdesk/models"
	"letterdesk/permissions"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// LetterController is glue over the letters and templates collections.
// The interesting part is the gating: routes are guarded by letter
// permission codes, and own-scoped edits check ownership here.
type LetterController struct {
	DB       *gorm.DB
	Resolver *permissions.Resolver
}

func (lc *LetterController) Create(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData := new(struct {
		Title      string `json:"title"`
		Body       string `json:"body"`
		Recipient  string `json:"recipient"`
		TemplateID *uint  `json:"template_id"`
		BranchID   *uint  `json:"branch_id"`
	})
	if err := c.BodyParser(reqData); err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}
	if reqData.Title == "" {
		return middleware.ValidationErrorResponse(c, map[string]string{"title": "Title is required!"})
	}

	letter := models.Letter{
		Title:       reqData.Title,
		Body:        reqData.Body,
		Recipient:   reqData.Recipient,
		Status:      models.LetterStatusDraft,
		TemplateID:  reqData.TemplateID,
		CreatedByID: userID,
		BranchID:    reqData.BranchID,
		IsActive:    true,
	}
	if err := lc.DB.Create(&letter).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create letter!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Letter created successfully!", letter)
}

func (lc *LetterController) List(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	set, err := lc.Resolver.Resolve(userID)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	q := lc.DB.Model(&models.Letter{}).Where("is_active = ?", true)
	// Non-admin users see their own letters only.
	if !set.Admin() {
		q = q.Where("created_by_id = ?", userID)
	}

	var letters []models.Letter
	if err := q.Order("created_at DESC").Find(&letters).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch letters!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Letters fetched successfully!", letters)
}

func (lc *LetterController) Update(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	letterID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || letterID == 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid letter id!", nil)
	}

	var letter models.Letter
	if err := lc.DB.Where("id = ? AND is_active = ?", letterID, true).First(&letter).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Letter not found!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch letter!", nil)
	}

	set, err := lc.Resolver.Resolve(userID)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	// Own-scoped capability: the grant allows editing, ownership decides
	// which letters.
	if !set.Admin() && !(set.Has(permissions.EditLettersOwn) && letter.CreatedByID == userID) {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You do not have permission to edit this letter!", nil)
	}

	reqData := new(struct {
		Title     *string `json:"title"`
		Body      *string `json:"body"`
		Recipient *string `json:"recipient"`
		Status    *string `json:"status"`
	})
	if err := c.BodyParser(reqData); err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	updates := map[string]interface{}{}
	if reqData.Title != nil {
		updates["title"] = *reqData.Title
	}
	if reqData.Body != nil {
		updates["body"] = *reqData.Body
	}
	if reqData.Recipient != nil {
		updates["recipient"] = *reqData.Recipient
	}
	if reqData.Status != nil {
		updates["status"] = *reqData.Status
	}
	if len(updates) == 0 {
		return middleware.ValidationErrorResponse(c, map[string]string{"body": "Nothing to update!"})
	}

	if err := lc.DB.Model(&letter).Updates(updates).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update letter!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Letter updated successfully!", letter)
}

func (lc *LetterController) Delete(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	letterID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || letterID == 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid letter id!", nil)
	}

	var letter models.Letter
	if err := lc.DB.Where("id = ? AND is_active = ?", letterID, true).First(&letter).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Letter not found!", nil)
	}

	set, err := lc.Resolver.Resolve(userID)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	if !set.Admin() && !(set.Has(permissions.DeleteLettersOwn) && letter.CreatedByID == userID) {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You do not have permission to delete this letter!", nil)
	}

	if err := lc.DB.Model(&letter).Update("is_active", false).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete letter!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Letter deleted successfully!", nil)
}

func (lc *LetterController) Templates(c *fiber.Ctx) error {
	var templates []models.LetterTemplate
	if err := lc.DB.Where("is_deleted = ?", false).Order("name ASC").Find(&templates).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch templates!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Templates fetched successfully!", templates)
}
