package controllers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/sujit-baniya/flash"

	"github.com/gc-digital-net/crosspost/internal/pkg/connect"
	"github.com/gc-digital-net/crosspost/internal/pkg/usercontext"
)

// HandleConnectInitiate starts the OAuth flow for one platform and hands the
// authorization URL back to the caller.
func HandleConnectInitiate(c *fiber.Ctx) error {
	uCtx := usercontext.GetUserContext(c)
	if !uCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "login required"})
	}

	platform := c.Params("platform")
	authURL, err := connectService.Initiate(platform, uCtx.UserID, uCtx.UserID)
	if err != nil {
		if errors.Is(err, connect.ErrUnknownPlatform) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unknown_platform", "message": "unknown platform: " + platform})
		}
		log.Errorf("[Connect] Failed to initiate %s flow for user %d: %v", platform, uCtx.UserID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "initiate_failed"})
	}

	return c.JSON(fiber.Map{"auth_url": authURL})
}

// HandleConnectCallback finishes the OAuth flow. Failures redirect back to
// the connections page with a stable error code; the human-readable detail
// travels as a flash message.
func HandleConnectCallback(c *fiber.Ctx) error {
	platform := c.Params("platform")

	uCtx := usercontext.GetUserContext(c)
	if !uCtx.IsLoggedIn {
		return callbackError(c, "invalid_session", "Login session expired during authorization")
	}

	if oauthErr := strings.TrimSpace(c.Query("error")); oauthErr != "" {
		msg := c.Query("error_description", oauthErr)
		return callbackError(c, "oauth_failed", platform+" authorization failed: "+msg)
	}

	code := strings.TrimSpace(c.Query("code"))
	state := strings.TrimSpace(c.Query("state"))
	if code == "" || state == "" {
		return callbackError(c, "missing_params", "Authorization response is missing code or state")
	}

	conn, err := connectService.Complete(c.Context(), platform, code, state, uCtx.UserID)
	if err != nil {
		switch {
		case errors.Is(err, connect.ErrInvalidState), errors.Is(err, connect.ErrUnauthenticated):
			return callbackError(c, "invalid_state", "Authorization state did not match, please retry")
		case errors.Is(err, connect.ErrTokenExchangeFailed), errors.Is(err, connect.ErrProfileFetchFailed):
			log.Warnf("[Connect] %s callback failed for user %d: %v", platform, uCtx.UserID, err)
			return callbackError(c, "oauth_failed", platform+" rejected the authorization")
		default:
			log.Errorf("[Connect] Failed to store %s connection for user %d: %v", platform, uCtx.UserID, err)
			return callbackError(c, "database_error", "Connection could not be saved")
		}
	}

	return flash.WithSuccess(c, fiber.Map{
		"type":    "success",
		"message": "Connected " + platform + " as @" + conn.Handle,
	}).Redirect("/connections?success=connected")
}

func callbackError(c *fiber.Ctx, code, message string) error {
	return flash.WithError(c, fiber.Map{
		"type":    "error",
		"message": message,
	}).Redirect("/connections?error=" + code)
}

// HandleDisconnect deactivates the caller's connection on one platform.
func HandleDisconnect(c *fiber.Ctx) error {
	uCtx := usercontext.GetUserContext(c)
	if !uCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "login required"})
	}

	platform := c.Params("platform")
	if err := connectService.Deactivate(uCtx.UserID, platform); err != nil {
		if errors.Is(err, connect.ErrNoConnection) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "no_connection"})
		}
		log.Errorf("[Connect] Failed to disconnect %s for user %d: %v", platform, uCtx.UserID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "disconnect_failed"})
	}

	return c.JSON(fiber.Map{"disconnected": platform})
}

// HandleListConnections returns the caller's connections. Token columns are
// excluded from serialization at the model level.
func HandleListConnections(c *fiber.Ctx) error {
	uCtx := usercontext.GetUserContext(c)
	if !uCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "login required"})
	}

	conns, err := connectService.Connections(uCtx.UserID)
	if err != nil {
		log.Errorf("[Connect] Failed to list connections for user %d: %v", uCtx.UserID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "list_failed"})
	}

	return c.JSON(fiber.Map{"connections": conns})
}
