package handler

import (
	"context"
	"database/sql"
	"log"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"meetapi/internal/export"
	"meetapi/internal/http/middleware"
	"meetapi/internal/model"
	"meetapi/internal/service"
)

// HealthCheck reports readiness: the database must answer a ping.
func HealthCheck(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe is the bare liveness endpoint.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

type startRecordingRequest struct {
	Title        string   `json:"title"`
	Participants []string `json:"participants"`
}

// StartRecording creates a new recording session for the caller's account.
func StartRecording(sessions service.SessionRegistry) fiber.Handler {
	return func(c *fiber.Ctx) error {
		account, ok := middleware.AccountFromCtx(c)
		if !ok {
			return fiber.ErrUnauthorized
		}

		var req startRecordingRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_INPUT", "malformed request body")
		}

		m, err := sessions.Create(c.UserContext(), account, req.Title, req.Participants)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"id":                   m.ID,
			"status":               m.Status,
			"max_duration_minutes": m.MaxDurationMinutes,
		})
	}
}

// ListRecordings returns the caller's sessions, newest first.
func ListRecordings(sessions service.SessionRegistry) fiber.Handler {
	return func(c *fiber.Ctx) error {
		account, ok := middleware.AccountFromCtx(c)
		if !ok {
			return fiber.ErrUnauthorized
		}

		limit, err := strconv.Atoi(c.Query("limit", "10"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := strconv.Atoi(c.Query("offset", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}

		res, err := sessions.List(c.UserContext(), account, limit, offset)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// GetRecording returns the full projection of one session, transcript and
// summary included once they exist.
func GetRecording(sessions service.SessionRegistry) fiber.Handler {
	return func(c *fiber.Ctx) error {
		account, ok := middleware.AccountFromCtx(c)
		if !ok {
			return fiber.ErrUnauthorized
		}

		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}

		m, err := sessions.Get(c.UserContext(), id, account)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(m)
	}
}

// DeleteRecording removes a session, its fragments and their blobs.
func DeleteRecording(sessions service.SessionRegistry) fiber.Handler {
	return func(c *fiber.Ctx) error {
		account, ok := middleware.AccountFromCtx(c)
		if !ok {
			return fiber.ErrUnauthorized
		}

		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}

		if err := sessions.Delete(c.UserContext(), id, account); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// UploadFragment admits one audio fragment (multipart: sequence_number field
// plus an audio file part).
func UploadFragment(ingester service.FragmentIngester) fiber.Handler {
	return func(c *fiber.Ctx) error {
		account, ok := middleware.AccountFromCtx(c)
		if !ok {
			return fiber.ErrUnauthorized
		}

		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}

		seq, err := strconv.Atoi(c.FormValue("sequence_number"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_INPUT", "sequence_number is required")
		}

		fh, err := c.FormFile("audio")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_INPUT", "audio file is required")
		}
		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_INPUT", "cannot open uploaded file")
		}
		defer f.Close()

		ct := fh.Header.Get("Content-Type")
		if ct == "" {
			ct = "audio/webm"
		}

		fragment, err := ingester.Admit(c.UserContext(), account, id, seq, f, fh.Filename, ct, fh.Size)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"fragment_id":     fragment.ID,
			"sequence_number": fragment.SequenceNumber,
			"status":          fragment.Status,
		})
	}
}

type endRecordingRequest struct {
	LastSequenceNumber *int `json:"last_sequence_number"`
}

// EndRecording claims the session for processing and runs the pipeline in the
// background. The claim races concurrent end calls; only the winner gets 202.
func EndRecording(coordinator service.ProcessingCoordinator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		account, ok := middleware.AccountFromCtx(c)
		if !ok {
			return fiber.ErrUnauthorized
		}

		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}

		var req endRecordingRequest
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&req); err != nil {
				return writeError(c, fiber.StatusBadRequest, "INVALID_INPUT", "malformed request body")
			}
		}
		lastSeq := service.NoLastSequence
		if req.LastSequenceNumber != nil {
			lastSeq = *req.LastSequenceNumber
		}

		m, err := coordinator.Begin(c.UserContext(), account, id)
		if err != nil {
			return writeServiceError(c, err)
		}

		// The request context dies with the response; the pipeline gets its own.
		go func() {
			if err := coordinator.Process(context.Background(), account.ID, m.ID, lastSeq); err != nil {
				log.Printf("meeting %s: processing failed: %v", m.ID, err)
			}
		}()

		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
			"id":     m.ID,
			"status": model.StatusProcessing,
		})
	}
}

type exportRecordingRequest struct {
	Format string `json:"format"`
}

// ExportRecording renders the summary into a document and returns a
// time-limited download URL.
func ExportRecording(bridge service.ExportBridge) fiber.Handler {
	return func(c *fiber.Ctx) error {
		account, ok := middleware.AccountFromCtx(c)
		if !ok {
			return fiber.ErrUnauthorized
		}

		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}

		var req exportRecordingRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_INPUT", "malformed request body")
		}

		url, err := bridge.Export(c.UserContext(), account, id, export.Format(req.Format))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"download_url": url})
	}
}
