package controller

import (
	"github.com/gofiber/fiber/v2"

	"portfolio-chat-be/internal/dto"
	"portfolio-chat-be/internal/pkg/serverutils"
	"portfolio-chat-be/internal/service"
)

type IDebugController interface {
	RegisterRoutes(r fiber.Router)
	ProbeLLM(ctx *fiber.Ctx) error
	ProbeGeo(ctx *fiber.Ctx) error
}

type debugController struct {
	debugService service.IDebugService
	geoService   service.IGeoService
}

func NewDebugController(debugService service.IDebugService, geoService service.IGeoService) IDebugController {
	return &debugController{
		debugService: debugService,
		geoService:   geoService,
	}
}

func (c *debugController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/debug")
	h.Post("/llm", c.ProbeLLM)
	h.Get("/geo", c.ProbeGeo)
}

func (c *debugController) ProbeLLM(ctx *fiber.Ctx) error {
	var req dto.DebugLLMRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.debugService.Probe(ctx.Context(), req)
	if err != nil {
		return fiber.NewError(fiber.StatusBadGateway, err.Error())
	}

	return ctx.JSON(serverutils.SuccessResponse("Success", res))
}

func (c *debugController) ProbeGeo(ctx *fiber.Ctx) error {
	ip := ctx.Query("ip", ctx.IP())

	info, err := c.geoService.Lookup(ctx.Context(), ip)
	if err != nil {
		return fiber.NewError(fiber.StatusBadGateway, err.Error())
	}

	return ctx.JSON(serverutils.SuccessResponse("Success", fiber.Map{
		"ip":  ip,
		"geo": info,
	}))
}
