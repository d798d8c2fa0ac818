// properties.go
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
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/renterz-unitsdb/internal/services"
	"github.com/localnerve/renterz-unitsdb/internal/utils"
)

// GetProperties handles GET /api/inventory/properties
// @Summary List properties
// @Description Get all registered properties, newest first
// @Tags Properties
// @Accept json
// @Produce json
// @Success 200 {array} models.Property
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /inventory/properties [get]
func (h *InventoryHandler) GetProperties(c *fiber.Ctx) error {
	properties, err := services.ListProperties(h.DB)
	if err != nil {
		return serviceError(c, err, "getProperties")
	}
	return utils.SuccessResponse(c, properties, fiber.StatusOK)
}

// GetProperty handles GET /api/inventory/properties/:propertyId
// @Summary Get a property
// @Description Get a single property by id
// @Tags Properties
// @Accept json
// @Produce json
// @Param propertyId path int true "Property ID"
// @Success 200 {object} models.Property
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /inventory/properties/{propertyId} [get]
func (h *InventoryHandler) GetProperty(c *fiber.Ctx) error {
	propertyID, err := parseID(c, "propertyId")
	if err != nil {
		return serviceError(c, err, "getProperty")
	}

	property, err := services.GetProperty(h.DB, propertyID)
	if err != nil {
		return serviceError(c, err, "getProperty")
	}
	return utils.SuccessResponse(c, property, fiber.StatusOK)
}

// CreateProperty handles POST /api/inventory/properties
// @Summary Create a property
// @Description Register a property and generate its unit batch
// @Tags Properties
// @Accept json
// @Produce json
// @Param body body services.PropertyInput true "Property payload"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 413 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /inventory/properties [post]
func (h *InventoryHandler) CreateProperty(c *fiber.Ctx) error {
	var input services.PropertyInput
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, "Invalid request body", fiber.StatusBadRequest, "createProperty")
	}

	property, err := services.CreateProperty(h.DB, input)
	if err != nil {
		return serviceError(c, err, "createProperty")
	}

	if err := h.snapshot(); err != nil {
		return serviceError(c, err, "createProperty")
	}
	return utils.MutationSuccessResponse(c, property)
}

// UpdateProperty handles PUT /api/inventory/properties/:propertyId
// @Summary Update a property
// @Description Update a property's descriptive fields; name and type changes propagate to its units
// @Tags Properties
// @Accept json
// @Produce json
// @Param propertyId path int true "Property ID"
// @Param body body services.PropertyInput true "Property payload"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /inventory/properties/{propertyId} [put]
func (h *InventoryHandler) UpdateProperty(c *fiber.Ctx) error {
	propertyID, err := parseID(c, "propertyId")
	if err != nil {
		return serviceError(c, err, "updateProperty")
	}

	var input services.PropertyInput
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, "Invalid request body", fiber.StatusBadRequest, "updateProperty")
	}

	property, err := services.UpdateProperty(h.DB, propertyID, input)
	if err != nil {
		return serviceError(c, err, "updateProperty")
	}

	if err := h.snapshot(); err != nil {
		return serviceError(c, err, "updateProperty")
	}
	return utils.MutationSuccessResponse(c, property)
}

// DeleteProperty handles DELETE /api/inventory/properties/:propertyId
// @Summary Delete a property
// @Description Remove a property and its units; audit history is retained
// @Tags Properties
// @Accept json
// @Produce json
// @Param propertyId path int true "Property ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /inventory/properties/{propertyId} [delete]
func (h *InventoryHandler) DeleteProperty(c *fiber.Ctx) error {
	propertyID, err := parseID(c, "propertyId")
	if err != nil {
		return serviceError(c, err, "deleteProperty")
	}

	if err := services.DeleteProperty(h.DB, propertyID); err != nil {
		return serviceError(c, err, "deleteProperty")
	}

	if err := h.snapshot(); err != nil {
		return serviceError(c, err, "deleteProperty")
	}
	return utils.MutationSuccessResponse(c, nil)
}
