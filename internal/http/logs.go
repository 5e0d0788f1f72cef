package http

import (
	"fmt"
	"net/http"

	"github.com/jmehdipour/dialer/internal/logstore"
	"github.com/jmehdipour/dialer/internal/telephony"
	echo "github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
)

func logsPageHandler(store logstore.Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		logs, err := store.All(c.Request().Context())
		if err != nil {
			log.Errorf("load call logs: %v", err)
			return c.String(http.StatusInternalServerError, "call log unavailable")
		}
		return c.Render(http.StatusOK, "logs.html", map[string]any{"Logs": logs})
	}
}

func apiLogsHandler(store logstore.Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		logs, err := store.All(c.Request().Context())
		if err != nil {
			log.Errorf("load call logs: %v", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "call log unavailable"})
		}
		return c.JSON(http.StatusOK, map[string]any{"logs": logs})
	}
}

func cleanupLogsHandler(store logstore.Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		count, err := store.Cleanup(c.Request().Context(), telephony.CleanError)
		if err != nil {
			log.Errorf("cleanup call logs: %v", err)
			return c.JSON(http.StatusInternalServerError, map[string]any{
				"success": false,
				"error":   err.Error(),
			})
		}
		return c.JSON(http.StatusOK, map[string]any{
			"success": true,
			"count":   count,
			"message": fmt.Sprintf("cleaned up %d log entries", count),
		})
	}
}
