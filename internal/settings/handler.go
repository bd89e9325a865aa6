package settings

import (
	"malkabul-backend/internal/database"
	"malkabul-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type UpdateSettingsRequest struct {
	WorkflowMode       string `json:"workflow_mode"`
	AutoAddToInventory *bool  `json:"auto_add_to_inventory"`
}

// GET /api/settings/receiving
func GetSettingsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(Load(database.DB))
	}
}

// PUT /api/settings/receiving (sadece admin)
func UpdateSettingsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body UpdateSettingsRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		cfg := Load(database.DB)

		if body.WorkflowMode != "" {
			mode := models.WorkflowMode(body.WorkflowMode)
			if mode != models.ModeSimple && mode != models.ModeThreeStep {
				return fiber.NewError(fiber.StatusBadRequest, "workflow_mode 'simple' veya 'three_step' olmalı")
			}
			cfg.WorkflowMode = mode
		}
		if body.AutoAddToInventory != nil {
			cfg.AutoAddToInventory = *body.AutoAddToInventory
		}

		if err := Save(database.DB, cfg); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ayarlar kaydedilemedi")
		}

		return c.JSON(cfg)
	}
}
