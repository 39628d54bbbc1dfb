package middleware

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meetapi/internal/model"
)

func TestAccount(t *testing.T) {
	app := fiber.New()
	app.Use(Account())

	var seen model.AccountRef
	app.Get("/test", func(c *fiber.Ctx) error {
		account, ok := AccountFromCtx(c)
		require.True(t, ok)
		seen = account
		return c.SendStatus(fiber.StatusOK)
	})

	t.Run("missing identity is rejected", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/test", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("premium identity resolved from headers", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set(AccountIDHeader, "acc-1")
		req.Header.Set(AccountPremiumHeader, "true")

		resp, _ := app.Test(req)

		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, "acc-1", seen.ID)
		assert.True(t, seen.Premium)
		assert.Nil(t, seen.TrialExpiresAt)
	})

	t.Run("trial deadline parsed", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set(AccountIDHeader, "acc-2")
		req.Header.Set(TrialExpiresHeader, "2025-07-01T00:00:00Z")

		resp, _ := app.Test(req)

		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.False(t, seen.Premium)
		require.NotNil(t, seen.TrialExpiresAt)
		assert.Equal(t, time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), seen.TrialExpiresAt.UTC())
	})

	t.Run("malformed trial deadline is rejected", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set(AccountIDHeader, "acc-3")
		req.Header.Set(TrialExpiresHeader, "next tuesday")

		resp, _ := app.Test(req)

		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})
}
