package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"alert-relay/internal/http/middleware"
	"alert-relay/internal/model"
	"alert-relay/internal/plate"
	"alert-relay/internal/service"
)

type Handler struct {
	deviceService    *service.DeviceService
	vehicleService   *service.VehicleService
	alertService     *service.AlertService
	pushTokenService *service.PushTokenService
	log              zerolog.Logger
}

func NewHandler(
	deviceService *service.DeviceService,
	vehicleService *service.VehicleService,
	alertService *service.AlertService,
	pushTokenService *service.PushTokenService,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		deviceService:    deviceService,
		vehicleService:   vehicleService,
		alertService:     alertService,
		pushTokenService: pushTokenService,
		log:              log,
	}
}

// RateLimiters carries the per-route limiters the router wires in.
type RateLimiters struct {
	Register gin.HandlerFunc
	Vehicles gin.HandlerFunc
	Alerts   gin.HandlerFunc
}

func (h *Handler) Register(r *gin.Engine, authMiddleware gin.HandlerFunc, limits RateLimiters) {
	api := r.Group("/api/v1")

	api.POST("/auth/register", limits.Register, h.registerDevice)

	protected := api.Group("/")
	protected.Use(authMiddleware)

	authGroup := protected.Group("/auth")
	{
		authGroup.GET("/me", h.getDevice)
		authGroup.PATCH("/me", h.updateDevice)
		authGroup.DELETE("/me", h.deleteDevice)
	}

	vehicles := protected.Group("/vehicles")
	{
		vehicles.POST("", limits.Vehicles, h.registerVehicle)
		vehicles.GET("", h.listVehicles)
		vehicles.GET("/:id", h.getVehicle)
		vehicles.GET("/:id/qr", h.getVehicleQR)
		vehicles.DELETE("/:id", h.deleteVehicle)
	}

	alerts := protected.Group("/alerts")
	{
		alerts.POST("", limits.Alerts, h.createAlert)
		alerts.GET("", h.listAlerts)
		alerts.GET("/:id", h.getAlert)
	}

	pushGroup := protected.Group("/push")
	{
		pushGroup.POST("/token", h.registerPushToken)
		pushGroup.DELETE("/token", h.deletePushToken)
	}
}

func (h *Handler) registerDevice(c *gin.Context) {
	var req struct {
		DeviceID  string   `json:"device_id" binding:"required"`
		Latitude  *float64 `json:"latitude"`
		Longitude *float64 `json:"longitude"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	out, err := h.deviceService.RegisterOrLogin(c.Request.Context(), service.RegisterDeviceInput{
		DeviceID:  req.DeviceID,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": out.AccessToken,
		"token_type":   "bearer",
		"device_uuid":  out.DeviceUUID,
	})
}

func (h *Handler) getDevice(c *gin.Context) {
	deviceID, ok := middleware.MustDeviceID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing device"))
		return
	}

	device, err := h.deviceService.Get(c.Request.Context(), deviceID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(device))
}

func (h *Handler) updateDevice(c *gin.Context) {
	deviceID, ok := middleware.MustDeviceID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing device"))
		return
	}

	var req struct {
		Latitude      *float64 `json:"latitude" binding:"required"`
		Longitude     *float64 `json:"longitude" binding:"required"`
		AlertRadiusKm *float64 `json:"alert_radius_km"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	device, err := h.deviceService.Update(c.Request.Context(), deviceID, service.UpdateDeviceInput{
		Latitude:      *req.Latitude,
		Longitude:     *req.Longitude,
		AlertRadiusKm: req.AlertRadiusKm,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(device))
}

func (h *Handler) deleteDevice(c *gin.Context) {
	deviceID, ok := middleware.MustDeviceID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing device"))
		return
	}

	if err := h.deviceService.Delete(c.Request.Context(), deviceID); err != nil {
		h.handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) registerVehicle(c *gin.Context) {
	deviceID, ok := middleware.MustDeviceID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing device"))
		return
	}

	var req struct {
		Plate    string `json:"plate" binding:"required"`
		Nickname string `json:"nickname"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	vehicle, err := h.vehicleService.Register(c.Request.Context(), deviceID, service.RegisterVehicleInput{
		Plate:    req.Plate,
		Nickname: req.Nickname,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse(vehicle))
}

func (h *Handler) listVehicles(c *gin.Context) {
	deviceID, ok := middleware.MustDeviceID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing device"))
		return
	}

	vehicles, err := h.vehicleService.List(c.Request.Context(), deviceID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(vehicles))
}

func (h *Handler) getVehicle(c *gin.Context) {
	deviceID, ok := middleware.MustDeviceID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing device"))
		return
	}

	vehicleID, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid vehicle id"))
		return
	}

	vehicle, err := h.vehicleService.Get(c.Request.Context(), deviceID, vehicleID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(vehicle))
}

func (h *Handler) getVehicleQR(c *gin.Context) {
	deviceID, ok := middleware.MustDeviceID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing device"))
		return
	}

	vehicleID, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid vehicle id"))
		return
	}

	qr, err := h.vehicleService.QRCode(c.Request.Context(), deviceID, vehicleID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"qr_code_url":  qr.QRCodeURL,
		"qr_code_data": qr.QRCodeData,
		"vehicle_id":   qr.VehicleID,
	})
}

func (h *Handler) deleteVehicle(c *gin.Context) {
	deviceID, ok := middleware.MustDeviceID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing device"))
		return
	}

	vehicleID, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid vehicle id"))
		return
	}

	if err := h.vehicleService.Delete(c.Request.Context(), deviceID, vehicleID); err != nil {
		h.handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) createAlert(c *gin.Context) {
	deviceID, ok := middleware.MustDeviceID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing device"))
		return
	}

	var req struct {
		VehicleQRToken string   `json:"vehicle_qr_token" binding:"required"`
		AlertType      string   `json:"alert_type" binding:"required"`
		Latitude       *float64 `json:"latitude" binding:"required"`
		Longitude      *float64 `json:"longitude" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	alert, err := h.alertService.Create(c.Request.Context(), deviceID, service.CreateAlertInput{
		VehicleQRToken: req.VehicleQRToken,
		AlertType:      model.AlertType(req.AlertType),
		Latitude:       *req.Latitude,
		Longitude:      *req.Longitude,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse(alert))
}

func (h *Handler) listAlerts(c *gin.Context) {
	deviceID, ok := middleware.MustDeviceID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing device"))
		return
	}

	limit := parseIntQuery(c, "limit", 20)
	offset := parseIntQuery(c, "offset", 0)

	list, err := h.alertService.ListMine(c.Request.Context(), deviceID, limit, offset)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"alerts":   list.Alerts,
		"total":    list.Total,
		"has_more": list.HasMore,
	})
}

func (h *Handler) getAlert(c *gin.Context) {
	deviceID, ok := middleware.MustDeviceID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing device"))
		return
	}

	alertID, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid alert id"))
		return
	}

	alert, err := h.alertService.Get(c.Request.Context(), deviceID, alertID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(alert))
}

func (h *Handler) registerPushToken(c *gin.Context) {
	deviceID, ok := middleware.MustDeviceID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing device"))
		return
	}

	var req struct {
		Token    string `json:"token" binding:"required"`
		Platform string `json:"platform" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	pushToken, err := h.pushTokenService.Register(c.Request.Context(), deviceID, service.RegisterPushTokenInput{
		Token:    req.Token,
		Platform: model.Platform(req.Platform),
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse(pushToken))
}

func (h *Handler) deletePushToken(c *gin.Context) {
	deviceID, ok := middleware.MustDeviceID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing device"))
		return
	}

	token := strings.TrimSpace(c.Query("token"))
	if token == "" {
		c.JSON(http.StatusBadRequest, errorResponse("token is required"))
		return
	}

	if err := h.pushTokenService.Delete(c.Request.Context(), deviceID, token); err != nil {
		h.handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) handleError(c *gin.Context, err error) {
	var plateErr *plate.ValidationError
	switch {
	case errors.As(err, &plateErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":           plateErr.Message,
			"kind":            string(plateErr.Kind),
			"examples":        plateErr.Examples,
			"supported_codes": plateErr.SupportedCodes,
		})
	case errors.Is(err, service.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, errorResponse(err.Error()))
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, errorResponse(err.Error()))
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, service.ErrSelfAlert):
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, errorResponse(err.Error()))
	default:
		h.log.Error().Err(err).Msg("handler error")
		c.JSON(http.StatusInternalServerError, errorResponse("internal error"))
	}
}

func successResponse(data interface{}) gin.H {
	return gin.H{
		"data": data,
	}
}

func errorResponse(message string) gin.H {
	return gin.H{
		"error": message,
	}
}

func parseID(c *gin.Context) (uuid.UUID, error) {
	return uuid.Parse(strings.TrimSpace(c.Param("id")))
}

func parseIntQuery(c *gin.Context, name string, fallback int) int {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
