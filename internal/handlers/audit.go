package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/renterz-unitsdb/internal/services"
	"github.com/localnerve/renterz-unitsdb/internal/utils"
)

// GetUnitAudit handles GET /api/inventory/audit
// @Summary List audit entries
// @Description Get allocation audit entries newest first, optionally scoped to one unit
// @Tags Audit
// @Accept json
// @Produce json
// @Param unitId query int false "Unit ID filter"
// @Success 200 {array} models.UnitAuditEntry
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /inventory/audit [get]
func (h *InventoryHandler) GetUnitAudit(c *fiber.Ctx) error {
	var unitID *uint64
	if raw := c.Query("unitId"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return utils.ErrorResponse(c, "Invalid unitId: "+raw, fiber.StatusBadRequest, "getUnitAudit")
		}
		unitID = &parsed
	}

	entries, err := services.UnitAudit(h.DB, unitID)
	if err != nil {
		return serviceError(c, err, "getUnitAudit")
	}
	return utils.SuccessResponse(c, entries, fiber.StatusOK)
}
