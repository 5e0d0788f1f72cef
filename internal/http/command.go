package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/jmehdipour/dialer/internal/dispatcher"
	"github.com/jmehdipour/dialer/internal/interpreter"
	"github.com/jmehdipour/dialer/internal/metrics"
	"github.com/jmehdipour/dialer/internal/phone"
	"github.com/jmehdipour/dialer/internal/telephony"
	echo "github.com/labstack/echo/v4"
)

func aiCommandHandler(disp *dispatcher.Dispatcher, provider telephony.Provider, commands *interpreter.Chain) echo.HandlerFunc {
	return func(c echo.Context) error {
		command := strings.TrimSpace(c.FormValue("command"))
		if command == "" {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "empty command"})
		}

		pending := phone.ParseCandidates(c.FormValue("numbers"))

		action, resolver, err := commands.Resolve(c.Request().Context(), command, pending)
		if err != nil {
			if errors.Is(err, interpreter.ErrNotUnderstood) {
				return c.JSON(http.StatusUnprocessableEntity, map[string]any{
					"success": false,
					"error":   "command not understood",
				})
			}
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "command resolution failed"})
		}
		metrics.CommandsTotal.WithLabelValues(resolver, string(action.Kind)).Inc()

		verified := verifiedNumbers(c, provider)

		switch action.Kind {
		case interpreter.ActionCallOne:
			normalized, droppedOne := phone.Normalize([]string{action.Number}, verified)
			if len(normalized) == 0 {
				reason := "no valid phone number in command"
				if len(droppedOne) > 0 {
					reason = droppedOne[0].Reason
				}
				return c.JSON(http.StatusBadRequest, map[string]any{
					"success": false,
					"error":   reason,
				})
			}
			results := disp.Dispatch(c.Request().Context(), phone.Numbers(normalized))
			return c.JSON(http.StatusOK, map[string]any{
				"success":  true,
				"action":   action.Kind,
				"resolver": resolver,
				"result":   results[0],
			})

		case interpreter.ActionCallAll:
			if len(pending) == 0 {
				return c.JSON(http.StatusBadRequest, map[string]any{
					"success": false,
					"error":   "no phone numbers available to call",
				})
			}
			normalized, dropped := phone.Normalize(pending, verified)
			if len(normalized) == 0 {
				return c.JSON(http.StatusBadRequest, map[string]any{
					"success": false,
					"error":   "no valid phone numbers found",
					"dropped": dropped,
				})
			}
			results := disp.Dispatch(c.Request().Context(), phone.Numbers(normalized))
			return c.JSON(http.StatusOK, map[string]any{
				"success":  true,
				"action":   action.Kind,
				"resolver": resolver,
				"total":    len(results),
				"results":  results,
				"dropped":  dropped,
			})
		}

		return c.JSON(http.StatusUnprocessableEntity, map[string]any{
			"success": false,
			"error":   "command not understood",
		})
	}
}
