// common.go
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
	"errors"
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/renterz-unitsdb/internal/services"
	"github.com/localnerve/renterz-unitsdb/internal/store"
	"github.com/localnerve/renterz-unitsdb/internal/types"
	"github.com/localnerve/renterz-unitsdb/internal/utils"
	"gorm.io/gorm"
)

// InventoryHandler handles the inventory routes. Store is optional; when
// present, every successful mutation mirrors the collections into it.
type InventoryHandler struct {
	DB    *gorm.DB
	Store *store.Store
}

// serviceError maps a service error to the response for its kind: 400 for
// invalid input, 404 for missing records, 409 for state conflicts, 413 for
// storage limit overruns, 500 otherwise.
func serviceError(c *fiber.Ctx, err error, errorType string) error {
	var validation *types.ValidationError
	if errors.As(err, &validation) {
		return utils.ErrorResponse(c, validation.Message, fiber.StatusBadRequest, errorType)
	}

	var notFound *types.NotFoundError
	if errors.As(err, &notFound) {
		return utils.NotFoundResponse(c, notFound.Message)
	}

	var conflict *types.ConflictError
	if errors.As(err, &conflict) {
		return utils.ErrorResponse(c, conflict.Message, fiber.StatusConflict, errorType)
	}

	var storageLimit *store.StorageLimitError
	if errors.As(err, &storageLimit) {
		return utils.ErrorResponse(c, storageLimit.Error(), fiber.StatusRequestEntityTooLarge, errorType)
	}

	return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, errorType)
}

// parseID parses a numeric path parameter.
func parseID(c *fiber.Ctx, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil {
		return 0, types.NewValidationError("Invalid %s: %s", name, c.Params(name))
	}
	return id, nil
}

// actorMeta extracts the acting user set by the auth middleware for audit
// attribution. Missing fields degrade to empty values.
func actorMeta(c *fiber.Ctx) services.AllocationMeta {
	meta := services.AllocationMeta{}

	user, ok := c.Locals("user").(map[string]interface{})
	if !ok {
		return meta
	}

	if name, ok := user["given_name"].(string); ok {
		meta.AssignedByName = name
	}
	if email, ok := user["email"].(string); ok {
		meta.AssignedByEmail = email
	}
	if id, ok := user["id"].(string); ok {
		if parsed, err := strconv.ParseUint(id, 10, 64); err == nil {
			meta.AssignedByUserID = &parsed
		}
	}

	return meta
}

// snapshot mirrors the collections into the JSON store after a mutation.
// Storage limit errors surface to the caller; anything else is logged and
// swallowed, the database is the source of truth.
func (h *InventoryHandler) snapshot() error {
	if h.Store == nil {
		return nil
	}

	err := services.SnapshotInventory(h.DB, h.Store)
	if err == nil {
		return nil
	}

	var storageLimit *store.StorageLimitError
	if errors.As(err, &storageLimit) {
		return err
	}

	log.Printf("Snapshot failed: %v", err)
	return nil
}
