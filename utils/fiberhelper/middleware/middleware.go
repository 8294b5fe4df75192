package middleware

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"

	"pivotdash/errors"
	"pivotdash/utils/auth"
)

// TokenValidationMiddleware rejects requests without a valid bearer token.
// The verified email is stashed in ctx.Locals("email") for handlers.
func TokenValidationMiddleware(secret string) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		header := ctx.Get(fiber.HeaderAuthorization)
		if header == "" {
			return errors.NewUnauthorized(errors.ErrMissingToken)
		}
		tokenString := strings.TrimPrefix(header, "Bearer ")
		if tokenString == header {
			return errors.NewUnauthorized(errors.ErrMissingToken)
		}

		email, err := auth.ParseUserToken(tokenString, secret)
		if err != nil {
			return err
		}
		ctx.Locals("email", email)
		return ctx.Next()
	}
}

func LogMiddleware(skipPath ...string) fiber.Handler {
	customTags := map[string]logger.LogFunc{
		"requestBody": getRequestBody(),
	}

	return logger.New(logger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		Format:     "${time} | ${status} | ${latency} | ${method} | ${path} | Query: ${queryParams} | Body: ${requestBody}\n",
		Next: func(c *fiber.Ctx) bool {
			// Skip the middleware if the request path
			for _, p := range skipPath {
				if c.Path() == p {
					return true
				}
			}
			return false
		},
		CustomTags: customTags,
	})
}

func getRequestBody() logger.LogFunc {
	return func(output logger.Buffer, c *fiber.Ctx, data *logger.Data, extraParam string) (int, error) {
		var requestBody map[string]interface{}
		if c.Get("Content-Type") != "multipart/form-data" {
			err := json.Unmarshal(c.Body(), &requestBody)
			if err == nil {
				body := strings.TrimSpace(string(c.Body()))
				body = strings.ReplaceAll(body, "\n", "")
				return output.WriteString(fmt.Sprintf("%v", body))
			}
		}
		return output.WriteString("")
	}
}
