package controller

import (
	"github.com/gofiber/fiber/v2"

	"portfolio-chat-be/internal/dto"
	"portfolio-chat-be/internal/pkg/serverutils"
	"portfolio-chat-be/internal/service"
)

type IIndexController interface {
	RegisterRoutes(r fiber.Router)
	Reindex(ctx *fiber.Ctx) error
	Sources(ctx *fiber.Ctx) error
}

type indexController struct {
	indexService service.IIndexService
}

func NewIndexController(indexService service.IIndexService) IIndexController {
	return &indexController{
		indexService: indexService,
	}
}

func (c *indexController) RegisterRoutes(r fiber.Router) {
	r.Post("/reindex", c.Reindex)
	r.Get("/sources", c.Sources)
}

func (c *indexController) Reindex(ctx *fiber.Ctx) error {
	summary, err := c.indexService.Rebuild(ctx.Context())
	if err != nil {
		return fiber.NewError(fiber.StatusConflict, err.Error())
	}

	return ctx.JSON(serverutils.SuccessResponse("Reindex complete", dto.ReindexResponse{
		TotalChunks: summary.TotalChunks,
		ByType:      summary.ByType,
		ByFile:      summary.ByFile,
	}))
}

func (c *indexController) Sources(ctx *fiber.Ctx) error {
	summary := c.indexService.Sources()
	return ctx.JSON(serverutils.SuccessResponse("Success", summary))
}
