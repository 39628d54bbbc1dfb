package middleware

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"meetapi/internal/model"
)

const (
	// AccountIDHeader carries the verified account id, injected by the
	// upstream auth gateway. Requests without it never reach the services.
	AccountIDHeader = "X-Account-ID"
	// AccountPremiumHeader carries the account's plan tier as a boolean.
	AccountPremiumHeader = "X-Account-Premium"
	// TrialExpiresHeader carries the free trial deadline in RFC 3339, when
	// the account has one.
	TrialExpiresHeader = "X-Trial-Expires-At"
	// AccountLocalKey is the key used to store the AccountRef in Fiber's
	// context locals.
	AccountLocalKey = "account"
)

// Account resolves the caller's identity from the gateway headers and stores
// it in context locals. It rejects requests that carry no account id; this
// service never authenticates on its own.
func Account() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(AccountIDHeader)
		if id == "" {
			return fiber.ErrUnauthorized
		}

		premium, _ := strconv.ParseBool(c.Get(AccountPremiumHeader))

		account := model.AccountRef{ID: id, Premium: premium}
		if raw := c.Get(TrialExpiresHeader); raw != "" {
			at, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "malformed trial deadline header")
			}
			account.TrialExpiresAt = &at
		}

		c.Locals(AccountLocalKey, account)
		return c.Next()
	}
}

// AccountFromCtx returns the AccountRef stored by Account.
func AccountFromCtx(c *fiber.Ctx) (model.AccountRef, bool) {
	account, ok := c.Locals(AccountLocalKey).(model.AccountRef)
	return account, ok
}
