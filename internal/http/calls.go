package http

import (
	"io"
	"net/http"

	"github.com/jmehdipour/dialer/internal/dispatcher"
	"github.com/jmehdipour/dialer/internal/logger"
	"github.com/jmehdipour/dialer/internal/phone"
	"github.com/jmehdipour/dialer/internal/telephony"
	echo "github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	"go.uber.org/zap"
)

// readUpload returns the text content of the optional "file" form part.
func readUpload(c echo.Context) (string, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		// no file part at all is fine
		return "", nil
	}
	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()
	raw, err := io.ReadAll(f)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// verifiedNumbers fetches the caller-ID allow list; a lookup failure
// degrades to an empty set so normalization still runs with the +1 default.
func verifiedNumbers(c echo.Context, provider telephony.Provider) []string {
	verified, err := provider.ListVerifiedNumbers(c.Request().Context())
	if err != nil {
		logger.Log.Warn("verified number lookup failed", zap.Error(err))
		return nil
	}
	return verified
}

func callHandler(disp *dispatcher.Dispatcher, provider telephony.Provider) echo.HandlerFunc {
	return func(c echo.Context) error {
		text := c.FormValue("numbers")
		uploaded, err := readUpload(c)
		if err != nil {
			log.Errorf("read upload failed: %v", err)
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "uploaded file unreadable"})
		}

		candidates := phone.ParseCandidates(text, uploaded)
		if len(candidates) == 0 {
			return c.JSON(http.StatusBadRequest, map[string]any{
				"success": false,
				"error":   "no valid phone numbers provided",
			})
		}

		normalized, dropped := phone.Normalize(candidates, verifiedNumbers(c, provider))
		if len(normalized) == 0 {
			return c.JSON(http.StatusBadRequest, map[string]any{
				"success": false,
				"error":   "no valid phone numbers provided",
				"dropped": dropped,
			})
		}

		results := disp.Dispatch(c.Request().Context(), phone.Numbers(normalized))

		return c.JSON(http.StatusOK, map[string]any{
			"success": true,
			"total":   len(results),
			"results": results,
			"dropped": dropped,
		})
	}
}
