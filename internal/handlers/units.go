// units.go
//
// A scalable, high performance drop-in replacement for the renterz browser inventory service
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of renterz-unitsdb.
// renterz-unitsdb is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// renterz-unitsdb is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with renterz-unitsdb.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/renterz-unitsdb/internal/services"
	"github.com/localnerve/renterz-unitsdb/internal/types"
	"github.com/localnerve/renterz-unitsdb/internal/utils"
)

// allocateBody is the allocation request. The assignee accepts a single
// object or a one-element list, matching what the dashboard sends.
type allocateBody struct {
	AllocationType string                            `json:"allocationType"`
	Assignee       types.FlexList[services.AssigneeInput] `json:"assignee"`
}

// capacityBody is the sharing capacity update request.
type capacityBody struct {
	SharingCapacity types.FlexInt `json:"sharingCapacity"`
}

// removeTenantBody identifies the tenant to unbind.
type removeTenantBody struct {
	Email string `json:"email"`
}

// GetUnits handles GET /api/inventory/units
// @Summary List units
// @Description Get units filtered by search text, property and allocation chip
// @Tags Units
// @Accept json
// @Produce json
// @Param search query string false "Free-text search over unit number, property, owner and tenant names"
// @Param propertyId query int false "Property ID filter"
// @Param allocation query string false "Allocation chip: OWNER_PENDING, TENANT_PENDING, OCCUPIED, AVAILABLE"
// @Success 200 {array} models.Unit
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /inventory/units [get]
func (h *InventoryHandler) GetUnits(c *fiber.Ctx) error {
	query := services.ParseUnitQuery(
		c.Query("search"),
		c.Query("propertyId"),
		c.Query("allocation"),
	)

	units, err := services.ListUnits(h.DB, query)
	if err != nil {
		return serviceError(c, err, "getUnits")
	}
	return utils.SuccessResponse(c, units, fiber.StatusOK)
}

// GetUnit handles GET /api/inventory/units/:unitId
// @Summary Get a unit
// @Description Get a single normalized unit by id
// @Tags Units
// @Accept json
// @Produce json
// @Param unitId path int true "Unit ID"
// @Success 200 {object} models.Unit
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /inventory/units/{unitId} [get]
func (h *InventoryHandler) GetUnit(c *fiber.Ctx) error {
	unitID, err := parseID(c, "unitId")
	if err != nil {
		return serviceError(c, err, "getUnit")
	}

	unit, err := services.GetUnit(h.DB, unitID)
	if err != nil {
		return serviceError(c, err, "getUnit")
	}
	return utils.SuccessResponse(c, unit, fiber.StatusOK)
}

// AllocateUnit handles POST /api/inventory/units/:unitId/allocate
// @Summary Allocate a unit
// @Description Bind an owner or tenant to a unit and append an audit entry
// @Tags Units
// @Accept json
// @Produce json
// @Param unitId path int true "Unit ID"
// @Param body body handlers.allocateBody true "Allocation payload"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Failure 413 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /inventory/units/{unitId}/allocate [post]
func (h *InventoryHandler) AllocateUnit(c *fiber.Ctx) error {
	unitID, err := parseID(c, "unitId")
	if err != nil {
		return serviceError(c, err, "allocateUnit")
	}

	var body allocateBody
	if err := c.BodyParser(&body); err != nil {
		return utils.ErrorResponse(c, "Invalid request body", fiber.StatusBadRequest, "allocateUnit")
	}

	assignees := body.Assignee.Slice()
	if len(assignees) == 0 {
		return utils.ErrorResponse(c, "Assignee is required", fiber.StatusBadRequest, "allocateUnit")
	}

	allocationType := strings.ToUpper(strings.TrimSpace(body.AllocationType))
	result, err := services.AllocateUnit(h.DB, unitID, allocationType, assignees[0], actorMeta(c))
	if err != nil {
		return serviceError(c, err, "allocateUnit")
	}

	if err := h.snapshot(); err != nil {
		return serviceError(c, err, "allocateUnit")
	}
	return utils.MutationSuccessResponse(c, result)
}

// UpdateSharingCapacity handles PUT /api/inventory/units/:unitId/capacity
// @Summary Update sharing capacity
// @Description Set a PG unit's sharing capacity; non-PG units are unchanged
// @Tags Units
// @Accept json
// @Produce json
// @Param unitId path int true "Unit ID"
// @Param body body handlers.capacityBody true "Capacity payload"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /inventory/units/{unitId}/capacity [put]
func (h *InventoryHandler) UpdateSharingCapacity(c *fiber.Ctx) error {
	unitID, err := parseID(c, "unitId")
	if err != nil {
		return serviceError(c, err, "updateSharingCapacity")
	}

	var body capacityBody
	if err := c.BodyParser(&body); err != nil {
		return utils.ErrorResponse(c, "Invalid request body", fiber.StatusBadRequest, "updateSharingCapacity")
	}

	unit, err := services.UpdateSharingCapacity(h.DB, unitID, body.SharingCapacity)
	if err != nil {
		return serviceError(c, err, "updateSharingCapacity")
	}

	if err := h.snapshot(); err != nil {
		return serviceError(c, err, "updateSharingCapacity")
	}
	return utils.MutationSuccessResponse(c, unit)
}

// RemoveTenant handles DELETE /api/inventory/units/:unitId/tenants
// @Summary Remove a tenant
// @Description Unbind the tenant with the given email and append a TENANT_REMOVED audit entry
// @Tags Units
// @Accept json
// @Produce json
// @Param unitId path int true "Unit ID"
// @Param body body handlers.removeTenantBody true "Tenant email"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /inventory/units/{unitId}/tenants [delete]
func (h *InventoryHandler) RemoveTenant(c *fiber.Ctx) error {
	unitID, err := parseID(c, "unitId")
	if err != nil {
		return serviceError(c, err, "removeTenant")
	}

	var body removeTenantBody
	if err := c.BodyParser(&body); err != nil {
		return utils.ErrorResponse(c, "Invalid request body", fiber.StatusBadRequest, "removeTenant")
	}

	unit, err := services.RemoveTenantFromUnit(h.DB, unitID, body.Email, actorMeta(c))
	if err != nil {
		return serviceError(c, err, "removeTenant")
	}

	if err := h.snapshot(); err != nil {
		return serviceError(c, err, "removeTenant")
	}
	return utils.MutationSuccessResponse(c, unit)
}
