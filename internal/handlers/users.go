package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/renterz-unitsdb/internal/services"
	"github.com/localnerve/renterz-unitsdb/internal/utils"
)

// GetUsers handles GET /api/inventory/users
// @Summary List directory users
// @Description Get all directory accounts; passwords are never serialized
// @Tags Users
// @Accept json
// @Produce json
// @Success 200 {array} models.DirectoryUser
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /inventory/users [get]
func (h *InventoryHandler) GetUsers(c *fiber.Ctx) error {
	users, err := services.ListDirectoryUsers(h.DB)
	if err != nil {
		return serviceError(c, err, "getUsers")
	}
	return utils.SuccessResponse(c, users, fiber.StatusOK)
}

// LookupUser handles GET /api/inventory/users/lookup
// @Summary Look up a directory user by email
// @Description Find an account by email, case-insensitive
// @Tags Users
// @Accept json
// @Produce json
// @Param email query string true "Account email"
// @Success 200 {object} models.DirectoryUser
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /inventory/users/lookup [get]
func (h *InventoryHandler) LookupUser(c *fiber.Ctx) error {
	email := c.Query("email")
	if email == "" {
		return utils.ErrorResponse(c, "Email is required.", fiber.StatusBadRequest, "lookupUser")
	}

	user, err := services.FindUserByEmail(h.DB, email)
	if err != nil {
		return serviceError(c, err, "lookupUser")
	}
	if user == nil {
		return utils.NotFoundResponse(c, "User not found")
	}
	return utils.SuccessResponse(c, user, fiber.StatusOK)
}

// CreateUser handles POST /api/inventory/users
// @Summary Register a directory user
// @Description Register an account, rejecting duplicate emails and mobiles
// @Tags Users
// @Accept json
// @Produce json
// @Param body body services.DirectoryUserInput true "User payload"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /inventory/users [post]
func (h *InventoryHandler) CreateUser(c *fiber.Ctx) error {
	var input services.DirectoryUserInput
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, "Invalid request body", fiber.StatusBadRequest, "createUser")
	}

	user, err := services.AddDirectoryUser(h.DB, input)
	if err != nil {
		return serviceError(c, err, "createUser")
	}

	if err := h.snapshot(); err != nil {
		return serviceError(c, err, "createUser")
	}
	return utils.MutationSuccessResponse(c, user)
}

// DeleteUser handles DELETE /api/inventory/users/:userId
// @Summary Remove a directory user
// @Description Delete an account by id
// @Tags Users
// @Accept json
// @Produce json
// @Param userId path int true "User ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /inventory/users/{userId} [delete]
func (h *InventoryHandler) DeleteUser(c *fiber.Ctx) error {
	userID, err := parseID(c, "userId")
	if err != nil {
		return serviceError(c, err, "deleteUser")
	}

	if err := services.RemoveDirectoryUser(h.DB, userID); err != nil {
		return serviceError(c, err, "deleteUser")
	}

	if err := h.snapshot(); err != nil {
		return serviceError(c, err, "deleteUser")
	}
	return utils.MutationSuccessResponse(c, nil)
}
