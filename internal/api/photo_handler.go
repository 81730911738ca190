package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/dutchcoders/go-clamd"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"resumebuilder/internal/api/middleware"
	"resumebuilder/internal/config"
	"resumebuilder/internal/storage"
)

type objectStore interface {
	UploadFile(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (*minio.UploadInfo, error)
	GeneratePresignedURL(ctx context.Context, objectKey string, duration time.Duration) (string, error)
	DeleteObject(ctx context.Context, objectKey string) error
}

// PhotoHandler manages the optional portrait photo attached to a project.
// Uploads are scanned before they reach object storage and rate limited
// per user per day.
type PhotoHandler struct {
	db        *gorm.DB
	Storage   objectStore
	publisher *ActivityPublisher
	redis     redis.UniversalClient
	logger    *slog.Logger
	uploads   config.UploadsConfig
}

func NewPhotoHandler(db *gorm.DB, storageClient objectStore, publisher *ActivityPublisher, redisClient redis.UniversalClient, logger *slog.Logger, uploads config.UploadsConfig) *PhotoHandler {
	return &PhotoHandler{
		db:        db,
		Storage:   storageClient,
		publisher: publisher,
		redis:     redisClient,
		logger:    logger,
		uploads:   uploads,
	}
}

var photoExtByMIME = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/webp": ".webp",
}

func (h *PhotoHandler) allowedMIME(contentType string) bool {
	for _, allowed := range h.uploads.MIMEWhitelist() {
		if strings.EqualFold(allowed, contentType) {
			return true
		}
	}
	return false
}

// UploadPhoto replaces the project photo. The previous object is removed
// after the new one is stored, so a failed upload keeps the old photo.
func (h *PhotoHandler) UploadPhoto(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}
	projectID, ok := uintParam(c, "id")
	if !ok {
		BadRequest(c, "invalid project id")
		return
	}

	ctx := c.Request.Context()
	logger := middleware.LoggerFromContext(c)

	project, err := getOwnedProject(ctx, h.db, userID, projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "project not found")
			return
		}
		logger.Error("project lookup failed", slog.Any("error", err))
		Internal(c, "failed to load project")
		return
	}

	if h.uploads.MaxPerDay > 0 && h.redis != nil {
		rateKey := fmt.Sprintf("rate:photo:%d:%s", userID, time.Now().UTC().Format("20060102"))
		count, err := bumpQuota(ctx, h.redis, rateKey, 24*time.Hour)
		if err == nil && count > int64(h.uploads.MaxPerDay) {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "daily upload limit reached"})
			return
		}
	}

	file, err := c.FormFile("file")
	if err != nil {
		BadRequest(c, "missing file")
		return
	}
	if h.uploads.MaxBytes > 0 && file.Size > h.uploads.MaxBytes {
		BadRequest(c, fmt.Sprintf("file exceeds %d bytes", h.uploads.MaxBytes))
		return
	}

	contentType := file.Header.Get("Content-Type")
	if !h.allowedMIME(contentType) {
		BadRequest(c, "unsupported file type")
		return
	}

	if h.uploads.ClamdAddr != "" {
		clean, err := h.scanUpload(file)
		if err != nil {
			logger.Error("scan file", slog.String("error", err.Error()))
			Internal(c, "failed to scan file")
			return
		}
		if !clean {
			BadRequest(c, "malicious file detected")
			return
		}
	}

	fileReader, err := file.Open()
	if err != nil {
		Internal(c, "failed to open file")
		return
	}
	defer fileReader.Close()

	ext := photoExtByMIME[strings.ToLower(contentType)]
	if ext == "" {
		ext = path.Ext(file.Filename)
	}
	objectKey := fmt.Sprintf("resume-photos/%d/%s%s", userID, uuid.NewString(), ext)

	if _, err := h.Storage.UploadFile(ctx, objectKey, fileReader, file.Size, contentType); err != nil {
		logger.Error("upload photo", slog.String("error", err.Error()))
		Internal(c, "failed to upload photo")
		return
	}

	photoURL, err := h.Storage.GeneratePresignedURL(ctx, objectKey, 24*time.Hour)
	if err != nil {
		logger.Error("generate photo url", slog.String("error", err.Error()))
		Internal(c, "failed to generate photo url")
		return
	}

	previousKey := project.PhotoKey
	now := time.Now().UTC()
	if err := h.db.WithContext(ctx).Model(project).Updates(map[string]any{
		"photo_key":        objectKey,
		"photo_url":        photoURL,
		"photo_updated_at": now,
		"updated_at":       now,
	}).Error; err != nil {
		logger.Error("persist photo failed", slog.Any("error", err))
		Internal(c, "failed to save photo")
		return
	}

	if previousKey != "" && previousKey != objectKey {
		if err := h.Storage.DeleteObject(ctx, previousKey); err != nil {
			logger.Warn("delete previous photo failed", slog.String("objectKey", previousKey), slog.Any("error", err))
		}
	}

	h.publisher.Publish(ctx, userID, "resume.updated", fmt.Sprintf("%d", project.ID))
	c.JSON(http.StatusCreated, gin.H{"photo_url": photoURL, "photo_updated_at": now})
}

// GetPhotoURL returns a fresh short-lived link to the stored photo.
func (h *PhotoHandler) GetPhotoURL(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}
	projectID, ok := uintParam(c, "id")
	if !ok {
		BadRequest(c, "invalid project id")
		return
	}

	ctx := c.Request.Context()

	project, err := getOwnedProject(ctx, h.db, userID, projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "project not found")
			return
		}
		Internal(c, "failed to load project")
		return
	}
	if project.PhotoKey == "" {
		NotFound(c, "project has no photo")
		return
	}

	signedURL, err := h.Storage.GeneratePresignedURL(ctx, project.PhotoKey, 15*time.Minute)
	if err != nil {
		middleware.LoggerFromContext(c).Error("generate presigned url", slog.String("error", err.Error()))
		Internal(c, "failed to generate url")
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": signedURL})
}

// DeletePhoto removes the project photo. Deleting a project without a photo
// is a no-op success.
func (h *PhotoHandler) DeletePhoto(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}
	projectID, ok := uintParam(c, "id")
	if !ok {
		BadRequest(c, "invalid project id")
		return
	}

	ctx := c.Request.Context()
	logger := middleware.LoggerFromContext(c)

	project, err := getOwnedProject(ctx, h.db, userID, projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "project not found")
			return
		}
		logger.Error("project lookup failed", slog.Any("error", err))
		Internal(c, "failed to load project")
		return
	}

	if project.PhotoKey != "" {
		if err := h.Storage.DeleteObject(ctx, project.PhotoKey); err != nil && !storage.IsNoSuchKey(err) {
			logger.Error("delete photo object failed", slog.String("objectKey", project.PhotoKey), slog.Any("error", err))
			Internal(c, "failed to delete photo")
			return
		}
	}

	if err := h.db.WithContext(ctx).Model(project).Updates(map[string]any{
		"photo_key":        "",
		"photo_url":        "",
		"photo_updated_at": nil,
		"updated_at":       time.Now().UTC(),
	}).Error; err != nil {
		logger.Error("clear photo failed", slog.Any("error", err))
		Internal(c, "failed to delete photo")
		return
	}

	h.publisher.Publish(ctx, userID, "resume.updated", fmt.Sprintf("%d", project.ID))
	c.Status(http.StatusNoContent)
}

func (h *PhotoHandler) scanUpload(file *multipart.FileHeader) (bool, error) {
	clamdClient := clamd.NewClamd(h.uploads.ClamdAddr)

	fileReader, err := file.Open()
	if err != nil {
		return false, err
	}

	abortChan := make(chan bool)
	scanChan, err := clamdClient.ScanStream(fileReader, abortChan)
	fileReader.Close()
	if err != nil {
		return false, err
	}
	defer close(abortChan)

	for result := range scanChan {
		if result.Status != clamd.RES_OK {
			return false, nil
		}
	}
	return true, nil
}
