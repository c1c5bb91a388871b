package handler

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"docconvert/internal/logging"
	"docconvert/internal/service"
)

const (
	msgNoFile          = "No file uploaded."
	msgConversionError = "An error occurred while converting the file."

	healthTimeout = 2 * time.Second
)

// Greeting answers the root route with a fixed plain-text body.
//
// @Summary		Greeting
// @Tags		system
// @Produce		plain
// @Success		200	{string}	string	"Hello Docs"
// @Router		/ [get]
func Greeting(text string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendString(text)
	}
}

// UploadAndConvert stores the uploaded file, converts it to PDF and streams
// the result back as an attachment. Errors are plain text.
//
// @Summary		Convert a document to PDF
// @Tags		conversions
// @Accept		multipart/form-data
// @Produce		application/pdf
// @Param		Doc_to_Pdf	formData	file	true	"document to convert"
// @Success		200	{file}		binary
// @Failure		400	{string}	string	"No file uploaded."
// @Failure		500	{string}	string	"An error occurred while converting the file."
// @Router		/uploads [post]
func UploadAndConvert(svc service.ConversionService, field string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile(field)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).SendString(msgNoFile)
		}

		f, err := fh.Open()
		if err != nil {
			logging.Error("Error opening uploaded file", "request_id", requestIDFromCtx(c), "error", err)
			return c.Status(fiber.StatusInternalServerError).SendString(msgConversionError)
		}
		defer f.Close()

		res := svc.Process(c.UserContext(), service.Upload{
			Reader:      f,
			Filename:    fh.Filename,
			ContentType: fh.Header.Get(fiber.HeaderContentType),
			Size:        fh.Size,
		})
		if res.Err != nil {
			if errors.Is(res.Err, service.ErrNoFile) {
				return c.Status(fiber.StatusBadRequest).SendString(msgNoFile)
			}
			logging.Error("Error converting file", "request_id", requestIDFromCtx(c), "filename", fh.Filename, "error", res.Err)
			return c.Status(fiber.StatusInternalServerError).SendString(msgConversionError)
		}

		// the body stream is closed by fasthttp once it has been sent
		c.Attachment(res.Document.StoredName)
		return c.Status(fiber.StatusOK).SendStream(res.Body, int(res.Document.Size))
	}
}

// HealthCheck pings storage and, when configured, the database and cache.
//
// @Summary		Readiness
// @Tags		system
// @Produce		json
// @Success		200	{object}	map[string]any
// @Failure		503	{object}	errorPayload
// @Router		/health [get]
func HealthCheck(svc service.ConversionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), healthTimeout)
		defer cancel()

		results := svc.Health(ctx)
		names := make([]string, 0, len(results))
		for name := range results {
			names = append(names, name)
		}
		sort.Strings(names)

		checks := make(fiber.Map, len(results))
		for _, name := range names {
			if err := results[name]; err != nil {
				logging.Warn("dependency unavailable", "dependency", name, "error", err)
				return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
			}
			checks[name] = "ok"
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy", "checks": checks})
	}
}

// LivenessProbe always answers 200.
//
// @Summary		Liveness
// @Tags		system
// @Success		200
// @Router		/healthz [get]
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// ListConversions returns conversion records, newest first.
//
// @Summary		List conversions
// @Tags		conversions
// @Produce		json
// @Param		limit	query		int	false	"page size (max 100)"	default(10)
// @Param		offset	query		int	false	"offset"				default(0)
// @Success		200		{object}	service.ConversionListResult
// @Failure		400		{object}	errorPayload
// @Failure		404		{object}	errorPayload
// @Router		/conversions [get]
func ListConversions(svc service.ConversionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, err := strconv.Atoi(c.Query("limit", "10"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := strconv.Atoi(c.Query("offset", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}

		res, err := svc.List(c.UserContext(), limit, offset)
		if err != nil {
			if errors.Is(err, service.ErrRecordsDisabled) {
				return writeError(c, fiber.StatusNotFound, "RECORDS_DISABLED", "conversion records are not enabled")
			}
			logging.Error("list conversions failed", "request_id", requestIDFromCtx(c), "error", err)
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(res)
	}
}

// GetConversion returns one conversion record.
//
// @Summary		Get a conversion
// @Tags		conversions
// @Produce		json
// @Param		id	path		string	true	"conversion id (uuid)"
// @Success		200	{object}	model.Conversion
// @Failure		400	{object}	errorPayload
// @Failure		404	{object}	errorPayload
// @Router		/conversions/{id} [get]
func GetConversion(svc service.ConversionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rec, err := svc.Get(c.UserContext(), c.Params("id"))
		switch {
		case err == nil:
			return c.JSON(rec)
		case errors.Is(err, service.ErrInvalidID), errors.Is(err, service.ErrIDRequired):
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		case errors.Is(err, service.ErrNotFound):
			return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "conversion not found")
		case errors.Is(err, service.ErrRecordsDisabled):
			return writeError(c, fiber.StatusNotFound, "RECORDS_DISABLED", "conversion records are not enabled")
		default:
			logging.Error("get conversion failed", "request_id", requestIDFromCtx(c), "error", err)
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
	}
}
