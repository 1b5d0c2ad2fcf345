package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/soundguard/soundguard-go/internal/datastore"
	"github.com/soundguard/soundguard-go/internal/errors"
)

// Settings update requests use pointer fields so an absent field leaves the
// stored value untouched, matching partial-update semantics.

// NotificationSettingsRequest is a partial update of alerting preferences.
type NotificationSettingsRequest struct {
	EmergencyEnabled      *bool `json:"emergencyEnabled"`
	EmergencySoundEnabled *bool `json:"emergencySoundEnabled"`
}

// MicrophoneSettingsRequest is a partial update of audio device preferences.
type MicrophoneSettingsRequest struct {
	InputDevice  *string `json:"inputDevice"`
	OutputDevice *string `json:"outputDevice"`
	InputVolume  *int    `json:"inputVolume"`
	OutputVolume *int    `json:"outputVolume"`
}

// StorageSettingsRequest is a partial update of clip retention preferences.
type StorageSettingsRequest struct {
	AutoSaveEnabled *bool `json:"autoSaveEnabled"`
	RetentionDays   *int  `json:"retentionDays"`
}

func (c *Controller) initSettingsRoutes(group *echo.Group) {
	settings := group.Group("/settings")
	settings.GET("/notifications", c.GetNotificationSettings)
	settings.PUT("/notifications", c.UpdateNotificationSettings)
	settings.GET("/microphone", c.GetMicrophoneSettings)
	settings.PUT("/microphone", c.UpdateMicrophoneSettings)
	settings.GET("/storage", c.GetStorageSettings)
	settings.PUT("/storage", c.UpdateStorageSettings)
}

// GetNotificationSettings returns the user's alerting preferences, creating
// the default row on first access.
func (c *Controller) GetNotificationSettings(ctx echo.Context) error {
	userID := currentUserID(ctx)

	settings, err := c.DS.GetNotificationSettings(userID)
	if errors.Is(err, datastore.ErrRecordNotFound) {
		settings = datastore.NotificationSettings{
			UserID:                userID,
			EmergencyEnabled:      true,
			EmergencySoundEnabled: true,
		}
		err = c.DS.SaveNotificationSettings(&settings)
	}
	if err != nil {
		return c.HandleError(ctx, err, "알림 설정 조회 실패", http.StatusInternalServerError)
	}
	return ctx.JSON(http.StatusOK, settings)
}

// UpdateNotificationSettings applies a partial update of the user's alerting
// preferences.
func (c *Controller) UpdateNotificationSettings(ctx echo.Context) error {
	var req NotificationSettingsRequest
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "잘못된 요청입니다", http.StatusBadRequest)
	}

	userID := currentUserID(ctx)
	settings, err := c.DS.GetNotificationSettings(userID)
	if errors.Is(err, datastore.ErrRecordNotFound) {
		settings = datastore.NotificationSettings{
			UserID:                userID,
			EmergencyEnabled:      true,
			EmergencySoundEnabled: true,
		}
		err = nil
	}
	if err != nil {
		return c.HandleError(ctx, err, "알림 설정 조회 실패", http.StatusInternalServerError)
	}

	if req.EmergencyEnabled != nil {
		settings.EmergencyEnabled = *req.EmergencyEnabled
	}
	if req.EmergencySoundEnabled != nil {
		settings.EmergencySoundEnabled = *req.EmergencySoundEnabled
	}

	if err := c.DS.SaveNotificationSettings(&settings); err != nil {
		return c.HandleError(ctx, err, "알림 설정 저장 실패", http.StatusInternalServerError)
	}
	return ctx.JSON(http.StatusOK, settings)
}

// GetMicrophoneSettings returns the user's audio device preferences,
// creating a default row on first access.
func (c *Controller) GetMicrophoneSettings(ctx echo.Context) error {
	userID := currentUserID(ctx)

	settings, err := c.DS.GetMicrophoneSettings(userID)
	if errors.Is(err, datastore.ErrRecordNotFound) {
		settings = datastore.MicrophoneSettings{
			UserID:       userID,
			InputVolume:  50,
			OutputVolume: 50,
		}
		err = c.DS.SaveMicrophoneSettings(&settings)
	}
	if err != nil {
		return c.HandleError(ctx, err, "마이크 설정 조회 실패", http.StatusInternalServerError)
	}
	return ctx.JSON(http.StatusOK, settings)
}

// UpdateMicrophoneSettings applies a partial update of the user's audio
// device preferences.
func (c *Controller) UpdateMicrophoneSettings(ctx echo.Context) error {
	var req MicrophoneSettingsRequest
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "잘못된 요청입니다", http.StatusBadRequest)
	}

	userID := currentUserID(ctx)
	settings, err := c.DS.GetMicrophoneSettings(userID)
	if errors.Is(err, datastore.ErrRecordNotFound) {
		settings = datastore.MicrophoneSettings{
			UserID:       userID,
			InputVolume:  50,
			OutputVolume: 50,
		}
		err = nil
	}
	if err != nil {
		return c.HandleError(ctx, err, "마이크 설정 조회 실패", http.StatusInternalServerError)
	}

	if req.InputDevice != nil {
		settings.InputDevice = *req.InputDevice
	}
	if req.OutputDevice != nil {
		settings.OutputDevice = *req.OutputDevice
	}
	if req.InputVolume != nil {
		settings.InputVolume = clampVolume(*req.InputVolume)
	}
	if req.OutputVolume != nil {
		settings.OutputVolume = clampVolume(*req.OutputVolume)
	}

	if err := c.DS.SaveMicrophoneSettings(&settings); err != nil {
		return c.HandleError(ctx, err, "마이크 설정 저장 실패", http.StatusInternalServerError)
	}
	return ctx.JSON(http.StatusOK, settings)
}

// GetStorageSettings returns the user's clip retention preferences, creating
// a default row on first access.
func (c *Controller) GetStorageSettings(ctx echo.Context) error {
	userID := currentUserID(ctx)

	settings, err := c.DS.GetStorageSettings(userID)
	if errors.Is(err, datastore.ErrRecordNotFound) {
		settings = datastore.StorageSettings{
			UserID:          userID,
			AutoSaveEnabled: true,
			RetentionDays:   30,
		}
		err = c.DS.SaveStorageSettings(&settings)
	}
	if err != nil {
		return c.HandleError(ctx, err, "저장 설정 조회 실패", http.StatusInternalServerError)
	}
	return ctx.JSON(http.StatusOK, settings)
}

// UpdateStorageSettings applies a partial update of the user's clip
// retention preferences.
func (c *Controller) UpdateStorageSettings(ctx echo.Context) error {
	var req StorageSettingsRequest
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "잘못된 요청입니다", http.StatusBadRequest)
	}

	userID := currentUserID(ctx)
	settings, err := c.DS.GetStorageSettings(userID)
	if errors.Is(err, datastore.ErrRecordNotFound) {
		settings = datastore.StorageSettings{
			UserID:          userID,
			AutoSaveEnabled: true,
			RetentionDays:   30,
		}
		err = nil
	}
	if err != nil {
		return c.HandleError(ctx, err, "저장 설정 조회 실패", http.StatusInternalServerError)
	}

	if req.AutoSaveEnabled != nil {
		settings.AutoSaveEnabled = *req.AutoSaveEnabled
	}
	if req.RetentionDays != nil && *req.RetentionDays > 0 {
		settings.RetentionDays = *req.RetentionDays
	}

	if err := c.DS.SaveStorageSettings(&settings); err != nil {
		return c.HandleError(ctx, err, "저장 설정 저장 실패", http.StatusInternalServerError)
	}
	return ctx.JSON(http.StatusOK, settings)
}

func clampVolume(volume int) int {
	if volume < 0 {
		return 0
	}
	if volume > 100 {
		return 100
	}
	return volume
}
