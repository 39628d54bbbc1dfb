package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"meetapi/internal/export"
	"meetapi/internal/http/middleware"
	"meetapi/internal/model"
	"meetapi/internal/service"
	serviceMocks "meetapi/internal/service/mocks"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testAccount = model.AccountRef{ID: "acc-1", Premium: true}

// withAccount stands in for the gateway headers in handler-level tests.
func withAccount(account model.AccountRef) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(middleware.AccountLocalKey, account)
		return c.Next()
	}
}

func jsonRequest(method, target string, payload any) *http.Request {
	var body *bytes.Buffer
	if payload != nil {
		b, _ := json.Marshal(payload)
		body = bytes.NewBuffer(b)
	} else {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestHealthCheck(t *testing.T) {
	db, dbMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	app := fiber.New()
	app.Get("/health", HealthCheck(db))

	t.Run("healthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(nil)

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]string
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "healthy", body["status"])
	})

	t.Run("unhealthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(errors.New("db error"))

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "SERVICE_UNAVAILABLE", body.Error.Code)
	})
}

func TestLivenessProbe(t *testing.T) {
	app := fiber.New()
	app.Get("/healthz", LivenessProbe())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestStartRecording(t *testing.T) {
	mockSvc := new(serviceMocks.MockSessionRegistry)
	app := fiber.New()
	app.Post("/recordings", withAccount(testAccount), StartRecording(mockSvc))

	t.Run("created", func(t *testing.T) {
		mockSvc.On("Create", mock.Anything, testAccount, "Weekly sync", []string{"alice"}).
			Return(&model.Meeting{ID: "m-1", Status: model.StatusRecording, MaxDurationMinutes: 120}, nil).Once()

		resp, _ := app.Test(jsonRequest(http.MethodPost, "/recordings", fiber.Map{
			"title":        "Weekly sync",
			"participants": []string{"alice"},
		}))

		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var body map[string]any
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "m-1", body["id"])
		assert.Equal(t, "recording", body["status"])
		assert.Equal(t, float64(120), body["max_duration_minutes"])
		mockSvc.AssertExpectations(t)
	})

	t.Run("expired trial yields 402", func(t *testing.T) {
		mockSvc.On("Create", mock.Anything, testAccount, "Weekly sync", []string(nil)).
			Return(nil, &service.Error{Reason: service.ReasonNotEntitled, Message: "trial period has ended"}).Once()

		resp, _ := app.Test(jsonRequest(http.MethodPost, "/recordings", fiber.Map{"title": "Weekly sync"}))

		assert.Equal(t, http.StatusPaymentRequired, resp.StatusCode)
		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "NOT_ENTITLED", body.Error.Code)
	})

	t.Run("invalid title yields 400", func(t *testing.T) {
		mockSvc.On("Create", mock.Anything, testAccount, "", []string(nil)).
			Return(nil, &service.Error{Reason: service.ReasonInvalidInput, Message: "title is required"}).Once()

		resp, _ := app.Test(jsonRequest(http.MethodPost, "/recordings", fiber.Map{"title": ""}))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "INVALID_INPUT", body.Error.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/recordings", strings.NewReader("{not json"))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestUploadFragment(t *testing.T) {
	mockIng := new(serviceMocks.MockFragmentIngester)
	app := fiber.New()
	app.Post("/recordings/:id/fragments", withAccount(testAccount), UploadFragment(mockIng))

	meetingID := uuid.New().String()

	multipartBody := func(seq string) (*bytes.Buffer, string) {
		body := &bytes.Buffer{}
		writer := multipart.NewWriter(body)
		if seq != "" {
			writer.WriteField("sequence_number", seq)
		}
		part, _ := writer.CreateFormFile("audio", "chunk.webm")
		part.Write([]byte("audio bytes"))
		writer.Close()
		return body, writer.FormDataContentType()
	}

	t.Run("admitted", func(t *testing.T) {
		mockIng.On("Admit", mock.Anything, testAccount, meetingID, 3,
			mock.Anything, "chunk.webm", mock.Anything, mock.Anything).
			Return(&model.Fragment{ID: "f-1", SequenceNumber: 3, Status: model.FragmentUploaded}, nil).Once()

		body, ct := multipartBody("3")
		req := httptest.NewRequest(http.MethodPost, "/recordings/"+meetingID+"/fragments", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var res map[string]any
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "f-1", res["fragment_id"])
		assert.Equal(t, float64(3), res["sequence_number"])
		mockIng.AssertExpectations(t)
	})

	t.Run("missing sequence number", func(t *testing.T) {
		body, ct := multipartBody("")
		req := httptest.NewRequest(http.MethodPost, "/recordings/"+meetingID+"/fragments", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("missing audio part", func(t *testing.T) {
		body := &bytes.Buffer{}
		writer := multipart.NewWriter(body)
		writer.WriteField("sequence_number", "1")
		writer.Close()

		req := httptest.NewRequest(http.MethodPost, "/recordings/"+meetingID+"/fragments", body)
		req.Header.Set("Content-Type", writer.FormDataContentType())
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("duration ceiling reached", func(t *testing.T) {
		mockIng.On("Admit", mock.Anything, testAccount, meetingID, 9,
			mock.Anything, "chunk.webm", mock.Anything, mock.Anything).
			Return(nil, &service.Error{Reason: service.ReasonDurationExceeded, Message: "recording time limit reached"}).Once()

		body, ct := multipartBody("9")
		req := httptest.NewRequest(http.MethodPost, "/recordings/"+meetingID+"/fragments", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "DURATION_EXCEEDED", res.Error.Code)
	})

	t.Run("invalid meeting id", func(t *testing.T) {
		body, ct := multipartBody("1")
		req := httptest.NewRequest(http.MethodPost, "/recordings/not-a-uuid/fragments", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestEndRecording(t *testing.T) {
	meetingID := uuid.New().String()

	t.Run("accepted and processed in the background", func(t *testing.T) {
		mockCoord := new(serviceMocks.MockProcessingCoordinator)
		app := fiber.New()
		app.Post("/recordings/:id/end", withAccount(testAccount), EndRecording(mockCoord))

		mockCoord.On("Begin", mock.Anything, testAccount, meetingID).
			Return(&model.Meeting{ID: meetingID, Status: model.StatusProcessing}, nil).Once()
		mockCoord.On("Process", mock.Anything, "acc-1", meetingID, 7).
			Return(nil).Maybe()

		resp, _ := app.Test(jsonRequest(http.MethodPost, "/recordings/"+meetingID+"/end",
			fiber.Map{"last_sequence_number": 7}))

		assert.Equal(t, http.StatusAccepted, resp.StatusCode)

		var body map[string]any
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "processing", body["status"])
		mockCoord.AssertCalled(t, "Begin", mock.Anything, testAccount, meetingID)
	})

	t.Run("lost claim yields 409", func(t *testing.T) {
		mockCoord := new(serviceMocks.MockProcessingCoordinator)
		app := fiber.New()
		app.Post("/recordings/:id/end", withAccount(testAccount), EndRecording(mockCoord))

		mockCoord.On("Begin", mock.Anything, testAccount, meetingID).
			Return(nil, &service.Error{Reason: service.ReasonInvalidStateTransition, Message: "already processing"}).Once()

		resp, _ := app.Test(jsonRequest(http.MethodPost, "/recordings/"+meetingID+"/end", nil))

		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "INVALID_STATE_TRANSITION", body.Error.Code)
		mockCoord.AssertNotCalled(t, "Process", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown recording yields 404", func(t *testing.T) {
		mockCoord := new(serviceMocks.MockProcessingCoordinator)
		app := fiber.New()
		app.Post("/recordings/:id/end", withAccount(testAccount), EndRecording(mockCoord))

		mockCoord.On("Begin", mock.Anything, testAccount, meetingID).
			Return(nil, &service.Error{Reason: service.ReasonNotFound, Message: "recording not found"}).Once()

		resp, _ := app.Test(jsonRequest(http.MethodPost, "/recordings/"+meetingID+"/end", nil))

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestGetRecording(t *testing.T) {
	mockSvc := new(serviceMocks.MockSessionRegistry)
	app := fiber.New()
	app.Get("/recordings/:id", withAccount(testAccount), GetRecording(mockSvc))

	t.Run("success", func(t *testing.T) {
		id := uuid.New().String()
		transcript := "hello world"
		mockSvc.On("Get", mock.Anything, id, testAccount).
			Return(&model.Meeting{ID: id, Status: model.StatusCompleted, Transcript: &transcript}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/recordings/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result model.Meeting
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Equal(t, id, result.ID)
		assert.Equal(t, "hello world", *result.Transcript)
		mockSvc.AssertExpectations(t)
	})

	t.Run("foreign recording is 404", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Get", mock.Anything, id, testAccount).
			Return(nil, &service.Error{Reason: service.ReasonNotFound, Message: "recording not found"}).Once()

		req := httptest.NewRequest(http.MethodGet, "/recordings/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "NOT_FOUND", res.Error.Code)
	})

	t.Run("invalid id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/recordings/invalid-uuid", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "INVALID_ID", res.Error.Code)
	})
}

func TestListRecordings(t *testing.T) {
	mockSvc := new(serviceMocks.MockSessionRegistry)
	app := fiber.New()
	app.Get("/recordings", withAccount(testAccount), ListRecordings(mockSvc))

	t.Run("success", func(t *testing.T) {
		mockSvc.On("List", mock.Anything, testAccount, 10, 0).
			Return(&service.MeetingListResult{
				Items: []model.Meeting{{ID: uuid.New().String(), Title: "Weekly sync"}},
				Total: 1,
			}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/recordings?limit=10&offset=0", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result service.MeetingListResult
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Len(t, result.Items, 1)
		assert.Equal(t, 1, result.Total)
		mockSvc.AssertExpectations(t)
	})

	t.Run("invalid limit", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/recordings?limit=abc", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "INVALID_LIMIT", body.Error.Code)
	})
}

func TestDeleteRecording(t *testing.T) {
	mockSvc := new(serviceMocks.MockSessionRegistry)
	app := fiber.New()
	app.Delete("/recordings/:id", withAccount(testAccount), DeleteRecording(mockSvc))

	t.Run("success", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Delete", mock.Anything, id, testAccount).Return(nil).Once()

		req := httptest.NewRequest(http.MethodDelete, "/recordings/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Delete", mock.Anything, id, testAccount).
			Return(&service.Error{Reason: service.ReasonNotFound, Message: "recording not found"}).Once()

		req := httptest.NewRequest(http.MethodDelete, "/recordings/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestExportRecording(t *testing.T) {
	mockBridge := new(serviceMocks.MockExportBridge)
	app := fiber.New()
	app.Post("/recordings/:id/export", withAccount(testAccount), ExportRecording(mockBridge))

	id := uuid.New().String()

	t.Run("success", func(t *testing.T) {
		mockBridge.On("Export", mock.Anything, testAccount, id, export.FormatPDF).
			Return("https://storage.local/exports/x.pdf?sig=abc", nil).Once()

		resp, _ := app.Test(jsonRequest(http.MethodPost, "/recordings/"+id+"/export",
			fiber.Map{"format": "pdf"}))

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]string
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Contains(t, body["download_url"], "exports/x.pdf")
		mockBridge.AssertExpectations(t)
	})

	t.Run("free plan gets 402", func(t *testing.T) {
		mockBridge.On("Export", mock.Anything, testAccount, id, export.FormatDocx).
			Return("", &service.Error{Reason: service.ReasonNotEntitled, Message: "export requires a premium plan"}).Once()

		resp, _ := app.Test(jsonRequest(http.MethodPost, "/recordings/"+id+"/export",
			fiber.Map{"format": "docx"}))

		assert.Equal(t, http.StatusPaymentRequired, resp.StatusCode)
	})

	t.Run("no summary yet gets 409", func(t *testing.T) {
		mockBridge.On("Export", mock.Anything, testAccount, id, export.FormatPDF).
			Return("", &service.Error{Reason: service.ReasonInvalidStateTransition, Message: "recording has no summary to export yet"}).Once()

		resp, _ := app.Test(jsonRequest(http.MethodPost, "/recordings/"+id+"/export",
			fiber.Map{"format": "pdf"}))

		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})
}
