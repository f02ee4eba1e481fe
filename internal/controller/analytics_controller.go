package controller

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"portfolio-chat-be/internal/dto"
	"portfolio-chat-be/internal/service"
)

type IAnalyticsController interface {
	RegisterRoutes(r fiber.Router)
	Export(ctx *fiber.Ctx) error
}

type analyticsController struct {
	analyticsService service.IAnalyticsService
}

func NewAnalyticsController(analyticsService service.IAnalyticsService) IAnalyticsController {
	return &analyticsController{
		analyticsService: analyticsService,
	}
}

func (c *analyticsController) RegisterRoutes(r fiber.Router) {
	r.Get("/analytics", c.Export)
}

func (c *analyticsController) Export(ctx *fiber.Ctx) error {
	var query dto.AnalyticsExportQuery
	if err := ctx.QueryParser(&query); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid query parameters")
	}

	body, contentType, err := c.analyticsService.Export(ctx.Context(), query)
	if err != nil {
		if errors.Is(err, service.ErrBadExportQuery) {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return err
	}

	ctx.Set(fiber.HeaderContentType, contentType)
	return ctx.Send(body)
}
