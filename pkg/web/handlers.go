// Package web provides HTTP handlers and REST API endpoints for workflow migration.
package web

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/dukex/migromat/pkg/models"
	"github.com/dukex/migromat/pkg/services"
)

type APIHandlers struct {
	workflowService  *services.Workflow
	executionService *services.Execution
	scheduler        *services.Scheduler
	validator        *validator.Validate
	logger           *slog.Logger
}

func NewAPIHandlers(
	workflowService *services.Workflow,
	executionService *services.Execution,
	scheduler *services.Scheduler,
	validator *validator.Validate,
	logger *slog.Logger,
) *APIHandlers {
	return &APIHandlers{
		workflowService:  workflowService,
		executionService: executionService,
		scheduler:        scheduler,
		validator:        validator,
		logger:           logger,
	}
}

// Mount registers every workflow, execution and schedule route on router.
func (h *APIHandlers) Mount(router fiber.Router) {
	w := router.Group("/workflows")
	w.Get("/", h.GetWorkflows)
	w.Post("/upload", h.UploadWorkflow)
	w.Get("/:id", h.GetWorkflow)
	w.Delete("/:id", h.DeleteWorkflow)
	w.Post("/:id/execute", h.ExecuteWorkflow)
	w.Get("/:id/executions", h.GetWorkflowExecutions)
	w.Post("/:id/convert/:platform", h.ConvertWorkflow)
	w.Post("/:id/download/:platform", h.DownloadWorkflow)
	w.Post("/:id/export/:language", h.ExportWorkflow)
	w.Post("/:id/schedules", h.CreateSchedule)

	router.Get("/executions/:id", h.GetExecution)
	router.Get("/schedules", h.GetSchedules)
	router.Delete("/schedules/:id", h.DeleteSchedule)
	router.Get("/health", h.HealthCheck)
}

// UploadWorkflow accepts a multipart "file" field or the raw document as request body.
func (h *APIHandlers) UploadWorkflow(c fiber.Ctx) error {
	raw, filename, err := readDocument(c)
	if err != nil {
		return badRequest(c, "Invalid upload: "+err.Error())
	}

	stored, err := h.workflowService.Upload(c.Context(), raw, filename)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(UploadResponse{
		WorkflowID: stored.ID,
		Name:       stored.Name,
		Platform:   stored.Platform,
		StepsCount: len(stored.Canonical.Steps),
		Complexity: stored.Canonical.Complexity,
		Message:    "Ready",
	})
}

func readDocument(c fiber.Ctx) ([]byte, string, error) {
	header, err := c.FormFile("file")
	if err != nil {
		return c.Body(), c.Query("filename"), nil
	}

	file, err := header.Open()
	if err != nil {
		return nil, "", err
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, "", err
	}

	return raw, header.Filename, nil
}

func (h *APIHandlers) GetWorkflows(c fiber.Ctx) error {
	summaries, err := h.workflowService.List(c.Context())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(WorkflowListResponse{Workflows: summaries, Total: len(summaries)})
}

func (h *APIHandlers) GetWorkflow(c fiber.Ctx) error {
	workflow, err := h.workflowService.FetchByID(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(workflow)
}

func (h *APIHandlers) DeleteWorkflow(c fiber.Ctx) error {
	if err := h.workflowService.Delete(c.Context(), c.Params("id")); err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(MessageResponse{Message: "Deleted"})
}

// ExecuteWorkflow starts a background execution and answers before the first step runs.
func (h *APIHandlers) ExecuteWorkflow(c fiber.Ctx) error {
	var req ExecuteRequest

	if len(c.Body()) > 0 {
		if err := c.Bind().JSON(&req); err != nil {
			return badRequest(c, "Invalid JSON format")
		}
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	record, err := h.executionService.Start(c.Context(), services.StartExecutionRequest{
		WorkflowID:  c.Params("id"),
		Input:       req.InputData,
		Credentials: req.Credentials,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusAccepted).JSON(ExecuteResponse{
		ExecutionID: record.ID,
		Status:      record.Status,
		Message:     "Started",
	})
}

func (h *APIHandlers) GetExecution(c fiber.Ctx) error {
	record, err := h.executionService.Get(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(record)
}

func (h *APIHandlers) GetWorkflowExecutions(c fiber.Ctx) error {
	id := c.Params("id")

	if _, err := h.workflowService.FetchByID(c.Context(), id); err != nil {
		return handleServiceError(c, err)
	}

	records, err := h.executionService.ListByWorkflow(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{"executions": records, "total": len(records)})
}

// ConvertWorkflow returns the converted document together with its mapping report.
func (h *APIHandlers) ConvertWorkflow(c fiber.Ctx) error {
	download, err := h.workflowService.Convert(c.Context(), c.Params("id"), c.Params("platform"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(download.Result)
}

// DownloadWorkflow returns the converted document as a file attachment.
func (h *APIHandlers) DownloadWorkflow(c fiber.Ctx) error {
	download, err := h.workflowService.Convert(c.Context(), c.Params("id"), c.Params("platform"))
	if err != nil {
		return handleServiceError(c, err)
	}

	c.Attachment(download.Filename)

	return c.JSON(download.Document)
}

// ExportWorkflow returns a generated script as a file attachment. A generator failure still
// answers with the placeholder script and reports the cause in the X-Generation-Warning header.
func (h *APIHandlers) ExportWorkflow(c fiber.Ctx) error {
	script, err := h.workflowService.Export(c.Context(), c.Params("id"), c.Params("language"))
	if err != nil {
		return handleServiceError(c, err)
	}

	if script.Warning != "" {
		c.Set("X-Generation-Warning", script.Warning)
	}

	c.Attachment(script.Filename)
	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)

	return c.SendString(script.Source)
}

func (h *APIHandlers) CreateSchedule(c fiber.Ctx) error {
	var req CreateScheduleRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	schedule, err := h.scheduler.Create(c.Context(), services.CreateScheduleRequest{
		WorkflowID:     c.Params("id"),
		CronExpression: req.CronExpression,
		Input:          req.InputData,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(schedule)
}

func (h *APIHandlers) GetSchedules(c fiber.Ctx) error {
	schedules, err := h.scheduler.List(c.Context())
	if err != nil {
		return handleServiceError(c, err)
	}

	if schedules == nil {
		schedules = []*models.Schedule{}
	}

	return c.JSON(fiber.Map{"schedules": schedules, "total": len(schedules)})
}

func (h *APIHandlers) DeleteSchedule(c fiber.Ctx) error {
	if err := h.scheduler.Delete(c.Context(), c.Params("id")); err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(MessageResponse{Message: "Deleted"})
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	message, ok := h.workflowService.HealthCheck(c.Context())
	if !ok {
		h.logger.WarnContext(c.Context(), "Health check failed", "reason", message)

		return c.Status(http.StatusServiceUnavailable).JSON(HealthResponse{Status: "unhealthy", Message: message})
	}

	stats, err := h.workflowService.Stats(c.Context())
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(HealthResponse{
		Status:     "healthy",
		Message:    message,
		Workflows:  stats.Workflows,
		Executions: stats.Executions,
		Schedules:  stats.Schedules,
	})
}
