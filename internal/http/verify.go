package http

import (
	"fmt"
	"net/http"

	"github.com/jmehdipour/dialer/internal/phone"
	"github.com/jmehdipour/dialer/internal/telephony"
	echo "github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
)

// checkVerificationHandler reports whether one number is on the account's
// verified caller-ID list.
func checkVerificationHandler(provider telephony.Provider) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw := c.Param("number")

		verified, err := provider.ListVerifiedNumbers(c.Request().Context())
		if err != nil {
			log.Errorf("verified number lookup failed: %v", err)
			return c.JSON(http.StatusBadGateway, map[string]any{
				"success":      false,
				"error":        telephony.CleanError(err.Error()),
				"phone_number": raw,
			})
		}

		normalized, dropped := phone.Normalize([]string{raw}, verified)
		if len(normalized) == 0 {
			reason := "invalid phone number"
			if len(dropped) > 0 {
				reason = dropped[0].Reason
			}
			return c.JSON(http.StatusBadRequest, map[string]any{
				"success":      false,
				"error":        reason,
				"phone_number": raw,
			})
		}
		number := normalized[0].Number

		// a verified-suffix resolution is membership by construction; a
		// passthrough or defaulted number still needs the exact check
		isVerified := normalized[0].Resolution == phone.ResolutionVerified
		if !isVerified {
			for _, v := range verified {
				if sameNumber(number, v) {
					isVerified = true
					break
				}
			}
		}

		message := "Verified"
		if !isVerified {
			message = fmt.Sprintf("Number %s is NOT verified. Verify it in the provider console first.", number)
		}

		return c.JSON(http.StatusOK, map[string]any{
			"success":          true,
			"phone_number":     number,
			"is_verified":      isVerified,
			"verified_numbers": verified,
			"message":          message,
		})
	}
}

// sameNumber compares two numbers ignoring spacing and punctuation.
func sameNumber(a, b string) bool {
	na, da := phone.NormalizeOne(a, nil)
	nb, db := phone.NormalizeOne(b, nil)
	if da != nil || db != nil {
		return false
	}
	return na.Number == nb.Number
}
