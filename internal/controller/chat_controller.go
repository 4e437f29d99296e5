package controller

import (
	"bufio"
	"context"
	"errors"

	"github.com/Stellarhold170NT/therapy/internal/dto"
	"github.com/Stellarhold170NT/therapy/internal/pkg/logger"
	"github.com/Stellarhold170NT/therapy/internal/pkg/serverutils"
	"github.com/Stellarhold170NT/therapy/internal/service"
	"github.com/Stellarhold170NT/therapy/pkg/stream"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	Stream(ctx *fiber.Ctx) error
	Debug(ctx *fiber.Ctx) error
	TestSearch(ctx *fiber.Ctx) error
	VectorStoreStatus(ctx *fiber.Ctx) error
}

type chatController struct {
	chatService service.IChatService
	logger      logger.ILogger
}

func NewChatController(chatService service.IChatService, appLogger logger.ILogger) IChatController {
	return &chatController{
		chatService: chatService,
		logger:      appLogger,
	}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat/v1")
	h.Post("stream", c.Stream)
	h.Get("debug/:session_id", c.Debug)
	h.Post("test-search", c.TestSearch)
	h.Get("vector-store-status", c.VectorStoreStatus)
}

func (c *chatController) Stream(ctx *fiber.Ctx) error {
	var req dto.ChatStreamRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	ctx.Set(fiber.HeaderContentType, "text/event-stream")
	ctx.Set(fiber.HeaderCacheControl, "no-cache")
	ctx.Set(fiber.HeaderConnection, "keep-alive")
	ctx.Set("X-Accel-Buffering", "no")

	ctx.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		transport := stream.NewSSEWriter(w)
		// Generation outlives a client disconnect: history and telemetry
		// writes still complete, so the stream runs on a fresh context.
		if err := c.chatService.StreamChat(context.Background(), &req, transport); err != nil {
			c.logger.Error("chat_controller", "chat stream failed", map[string]interface{}{
				"session_id": req.SessionId,
				"error":      err.Error(),
			})
		}
	}))

	return nil
}

func (c *chatController) Debug(ctx *fiber.Ctx) error {
	sessionId := ctx.Params("session_id")
	snap := c.chatService.GetDebugSnapshot(sessionId)
	return ctx.JSON(serverutils.SuccessResponse("Success get debug snapshot", snap))
}

func (c *chatController) TestSearch(ctx *fiber.Ctx) error {
	var req dto.TestSearchRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.chatService.TestSearch(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success test search", res))
}

func (c *chatController) VectorStoreStatus(ctx *fiber.Ctx) error {
	res, err := c.chatService.VectorStoreStatus(ctx.Context())
	if err != nil {
		if errors.Is(err, service.ErrNoActiveConfig) {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get vector store status", res))
}
