package api

import (
	"encoding/base64"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/wav"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/soundguard/soundguard-go/internal/datastore"
	"github.com/soundguard/soundguard-go/internal/errors"
)

// SaveAudioRequest carries a base64 encoded clip, used by recorders that
// buffer audio in the browser instead of posting multipart forms.
type SaveAudioRequest struct {
	AudioData string `json:"audioData"`
	FileName  string `json:"fileName"`
}

func (c *Controller) initMediaRoutes(group *echo.Group) {
	files := group.Group("/audio-files")
	files.POST("/upload", c.UploadAudioFile)
	files.POST("/save", c.SaveAudioBlob)
	files.GET("/list", c.GetUserAudioFiles)
	files.GET("/download/:id", c.DownloadAudioFile)
	files.DELETE("/:id", c.DeleteAudioFile)
}

// UploadAudioFile stores a multipart audio upload for the authenticated
// user. Uploads are rejected while the user's auto save setting is off.
func (c *Controller) UploadAudioFile(ctx echo.Context) error {
	userID := currentUserID(ctx)

	if !c.autoSaveEnabled(userID) {
		return ctx.JSON(http.StatusBadRequest, ErrorResponse{Error: "자동 저장이 비활성화되어 있습니다"})
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, ErrorResponse{Error: "파일이 필요합니다"})
	}

	fileName := ctx.FormValue("fileName")
	if fileName == "" {
		fileName = fileHeader.Filename
	}

	src, err := fileHeader.Open()
	if err != nil {
		return c.HandleError(ctx, err, "파일 저장 실패", http.StatusInternalServerError)
	}
	defer src.Close()

	record, err := c.storeAudioClip(userID, fileName, fileHeader.Header.Get(echo.HeaderContentType), src)
	if err != nil {
		return c.HandleError(ctx, err, "파일 저장 실패", http.StatusInternalServerError)
	}
	return ctx.JSON(http.StatusOK, record)
}

// SaveAudioBlob stores a base64 encoded clip for the authenticated user.
func (c *Controller) SaveAudioBlob(ctx echo.Context) error {
	userID := currentUserID(ctx)

	var req SaveAudioRequest
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "잘못된 요청입니다", http.StatusBadRequest)
	}
	if req.AudioData == "" || req.FileName == "" {
		return ctx.JSON(http.StatusBadRequest, ErrorResponse{Error: "필수 항목이 누락되었습니다"})
	}

	if !c.autoSaveEnabled(userID) {
		return ctx.JSON(http.StatusBadRequest, ErrorResponse{Error: "자동 저장이 비활성화되어 있습니다"})
	}

	audioData, err := base64.StdEncoding.DecodeString(req.AudioData)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, ErrorResponse{Error: "오디오 데이터 디코딩 실패"})
	}

	record, err := c.storeAudioClip(userID, req.FileName, "audio/wav", strings.NewReader(string(audioData)))
	if err != nil {
		return c.HandleError(ctx, err, "파일 저장 실패", http.StatusInternalServerError)
	}
	return ctx.JSON(http.StatusOK, record)
}

// GetUserAudioFiles lists the authenticated user's stored clips.
func (c *Controller) GetUserAudioFiles(ctx echo.Context) error {
	files, err := c.DS.GetUserAudioFiles(currentUserID(ctx))
	if err != nil {
		return c.HandleError(ctx, err, "파일 목록 조회 실패", http.StatusInternalServerError)
	}
	return ctx.JSON(http.StatusOK, files)
}

// DownloadAudioFile streams one of the user's stored clips.
func (c *Controller) DownloadAudioFile(ctx echo.Context) error {
	record, err := c.ownedAudioFile(ctx)
	if err != nil {
		return c.audioFileError(ctx, err)
	}

	path, err := c.resolveClipPath(record.FilePath)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, ErrorResponse{Error: "잘못된 파일 경로입니다"})
	}
	if _, err := os.Stat(path); err != nil {
		return ctx.JSON(http.StatusNotFound, ErrorResponse{Error: "파일을 찾을 수 없습니다"})
	}
	return ctx.Attachment(path, record.FileName)
}

// DeleteAudioFile removes one of the user's stored clips from disk and from
// the datastore.
func (c *Controller) DeleteAudioFile(ctx echo.Context) error {
	record, err := c.ownedAudioFile(ctx)
	if err != nil {
		return c.audioFileError(ctx, err)
	}

	if path, err := c.resolveClipPath(record.FilePath); err == nil {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			c.logger.Warn("failed to remove clip from disk", "path", path, "error", err)
		}
	}

	if err := c.DS.DeleteAudioFile(record.ID, currentUserID(ctx)); err != nil {
		return c.audioFileError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, map[string]bool{"success": true})
}

// storeAudioClip writes the clip under the upload directory and records its
// metadata. WAV uploads get duration and sample rate extracted from the
// header.
func (c *Controller) storeAudioClip(userID, fileName, contentType string, src io.Reader) (*datastore.AudioFile, error) {
	// filepath.Base strips any directory components a hostile client sends.
	fileName = filepath.Base(fileName)
	if fileName == "." || fileName == string(os.PathSeparator) {
		return nil, errors.Newf("invalid file name").
			Component("api").
			Category(errors.CategoryValidation).
			Build()
	}

	id := uuid.NewString()
	dir := filepath.Join(c.Settings.Storage.UploadPath, userID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	path := filepath.Join(dir, id+"_"+fileName)
	dst, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	size, err := io.Copy(dst, src)
	closeErr := dst.Close()
	if err != nil {
		return nil, err
	}
	if closeErr != nil {
		return nil, closeErr
	}

	record := &datastore.AudioFile{
		ID:          id,
		UserID:      userID,
		FileName:    fileName,
		FilePath:    path,
		FileSize:    size,
		ContentType: contentType,
	}

	if strings.HasSuffix(strings.ToLower(fileName), ".wav") {
		c.readWavMetadata(path, record)
	}

	if err := c.DS.SaveAudioFile(record); err != nil {
		// Do not leave an orphaned file behind.
		_ = os.Remove(path)
		return nil, err
	}
	return record, nil
}

// readWavMetadata fills duration and sample rate from the WAV header. A
// clip that fails to parse is stored without metadata.
func (c *Controller) readWavMetadata(path string, record *datastore.AudioFile) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()

	decoder := wav.NewDecoder(f)
	decoder.ReadInfo()
	if !decoder.IsValidFile() {
		c.logger.Debug("uploaded clip is not a valid wav file", "path", path)
		return
	}

	record.SampleRate = int(decoder.SampleRate)
	if duration, err := decoder.Duration(); err == nil {
		record.Duration = duration.Seconds()
	}
}

// ownedAudioFile loads the clip named by the :id param and verifies the
// authenticated user owns it.
func (c *Controller) ownedAudioFile(ctx echo.Context) (datastore.AudioFile, error) {
	record, err := c.DS.GetAudioFile(ctx.Param("id"))
	if err != nil {
		return datastore.AudioFile{}, err
	}
	if record.UserID != currentUserID(ctx) {
		return datastore.AudioFile{}, datastore.ErrNotOwner
	}
	return record, nil
}

// resolveClipPath verifies a stored path still points inside the upload
// directory before it is used for disk access.
func (c *Controller) resolveClipPath(storedPath string) (string, error) {
	base, err := filepath.Abs(c.Settings.Storage.UploadPath)
	if err != nil {
		return "", err
	}
	path, err := filepath.Abs(storedPath)
	if err != nil {
		return "", err
	}
	if path != base && !strings.HasPrefix(path, base+string(os.PathSeparator)) {
		return "", errors.Newf("path escapes upload directory").
			Component("api").
			Category(errors.CategoryValidation).
			Build()
	}
	return path, nil
}

func (c *Controller) audioFileError(ctx echo.Context, err error) error {
	switch {
	case errors.Is(err, datastore.ErrRecordNotFound):
		return ctx.JSON(http.StatusNotFound, ErrorResponse{Error: "파일을 찾을 수 없습니다"})
	case errors.Is(err, datastore.ErrNotOwner):
		return ctx.JSON(http.StatusForbidden, ErrorResponse{Error: "파일에 대한 권한이 없습니다"})
	default:
		return c.HandleError(ctx, err, "파일 처리 실패", http.StatusInternalServerError)
	}
}

// autoSaveEnabled reports whether the user allows clip storage; missing
// settings mean enabled.
func (c *Controller) autoSaveEnabled(userID string) bool {
	settings, err := c.DS.GetStorageSettings(userID)
	if err != nil {
		return true
	}
	return settings.AutoSaveEnabled
}
