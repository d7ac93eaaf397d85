package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Health answers liveness probes from load balancers and uptime
// monitors with a plain-text "ok". It deliberately touches nothing:
// a degraded database or broker must not fail the probe.
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}
