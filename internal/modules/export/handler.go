package export

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/echomeet/core/internal/modules/meetings"
	"github.com/echomeet/core/internal/modules/settings"
	"github.com/echomeet/core/internal/pkg/response"
	"github.com/echomeet/core/internal/pkg/taskqueue"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	TaskExportAll  = "export_all"
	TaskImportBulk = "import_bulk"

	defaultS3PathTemplate = "exports/{Y}/{m}/{filename}"
	maxImportUploadBytes  = 2 << 30
)

// Handler exposes export/import endpoints, saved-archive management, and
// async bulk operations through the task queue.
type Handler struct {
	engine      *Engine
	settings    *settings.Service
	tasks       *taskqueue.Service
	log         *zap.Logger
	archivesDir string
}

func NewHandler(engine *Engine, settingsSvc *settings.Service, tasks *taskqueue.Service, log *zap.Logger, archivesDir string) *Handler {
	return &Handler{
		engine:      engine,
		settings:    settingsSvc,
		tasks:       tasks,
		log:         log,
		archivesDir: archivesDir,
	}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/exports", authMW)

	g.GET("/meetings/:id", h.exportOne)
	g.GET("/all", h.exportAll)

	g.GET("", h.listArchives)
	g.GET("/files/:filename", h.downloadArchive)
	g.DELETE("/files/:filename", h.deleteArchive)
	g.POST("/upload-to-s3", h.uploadToS3)

	g.POST("/import", h.importOne)
	g.POST("/import/bulk", h.importBulk)

	g.POST("/tasks/export-all", h.enqueueExportAll)
	g.POST("/tasks/import-bulk", h.enqueueImportBulk)
	g.GET("/tasks/:id", h.taskStatus)
}

// GET /exports/meetings/:id
func (h *Handler) exportOne(c *gin.Context) {
	buf, filename, err := h.engine.ExportMeeting(c.Param("id"))
	if err != nil {
		if errors.Is(err, meetings.ErrNotFound) {
			response.NotFound(c)
			return
		}
		response.InternalError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "application/zip", buf.Bytes())
}

// GET /exports/all
func (h *Handler) exportAll(c *gin.Context) {
	buf, filename, err := h.engine.ExportAll(nil)
	if err != nil {
		if errors.Is(err, ErrNothingToExport) {
			response.UnprocessableEntity(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}

	if _, err := SaveArchive(h.archivesDir, filename, buf.Bytes()); err != nil {
		h.log.Warn("failed to save export archive locally", zap.Error(err))
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "application/zip", buf.Bytes())
}

// GET /exports
func (h *Handler) listArchives(c *gin.Context) {
	response.OK(c, ListArchives(h.archivesDir))
}

// GET /exports/files/:filename
func (h *Handler) downloadArchive(c *gin.Context) {
	filename := filepath.Base(c.Param("filename"))
	if !strings.HasSuffix(filename, ".zip") {
		response.BadRequest(c, "invalid filename")
		return
	}
	data, err := os.ReadFile(filepath.Join(h.archivesDir, filename))
	if err != nil {
		if os.IsNotExist(err) {
			response.NotFound(c)
			return
		}
		response.InternalError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "application/zip", data)
}

// DELETE /exports/files/:filename
func (h *Handler) deleteArchive(c *gin.Context) {
	filename := filepath.Base(c.Param("filename"))
	if filename == "" || !strings.HasSuffix(filename, ".zip") {
		response.BadRequest(c, "invalid filename")
		return
	}
	_ = os.Remove(filepath.Join(h.archivesDir, filename))
	response.NoContent(c)
}

// POST /exports/upload-to-s3
func (h *Handler) uploadToS3(c *gin.Context) {
	cfg, err := h.settings.Get()
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if !cfg.BackupOptions.Enable {
		response.NoContent(c)
		return
	}

	uploader, err := newS3Uploader(cfg.S3Options)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	buf, filename, err := h.engine.ExportAll(nil)
	if err != nil {
		if errors.Is(err, ErrNothingToExport) {
			response.UnprocessableEntity(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	if _, err := SaveArchive(h.archivesDir, filename, buf.Bytes()); err != nil {
		h.log.Warn("failed to save export archive locally", zap.Error(err))
	}

	now := time.Now()
	key := renderObjectKey(cfg.BackupOptions.Path, filename, now)
	url, err := uploader.Upload(c.Request.Context(), key, buf.Bytes(), "application/zip")
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, gin.H{"key": key, "url": url})
}

// POST /exports/import?policy=replace|keep-both|skip
func (h *Handler) importOne(c *gin.Context) {
	zr, err := h.readUploadedZip(c)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	id, err := h.engine.ImportMeeting(zr, ParsePolicy(c.Query("policy")))
	if err != nil {
		if errors.Is(err, ErrInvalidMetadata) {
			response.UnprocessableEntity(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	response.OK(c, gin.H{"id": id})
}

// POST /exports/import/bulk?policy=...
func (h *Handler) importBulk(c *gin.Context) {
	zr, err := h.readUploadedZip(c)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	ids, err := h.engine.ImportAll(zr, ParsePolicy(c.Query("policy")), nil)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, gin.H{"ids": ids, "count": len(ids)})
}

func (h *Handler) readUploadedZip(c *gin.Context) (*zip.Reader, error) {
	file, err := c.FormFile("file")
	if err != nil {
		return nil, fmt.Errorf("missing file")
	}
	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, maxImportUploadBytes))
	if err != nil {
		return nil, err
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("invalid zip file")
	}
	return zr, nil
}

// POST /exports/tasks/export-all
func (h *Handler) enqueueExportAll(c *gin.Context) {
	ctx := c.Request.Context()
	task, err := h.tasks.Enqueue(ctx, TaskExportAll, gin.H{}, TaskExportAll, "")
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if task.Status == taskqueue.TaskPending {
		go h.runExportAllTask(task.ID)
	}
	response.OK(c, task)
}

func (h *Handler) runExportAllTask(taskID string) {
	ctx := context.Background()
	_ = h.tasks.UpdateStatus(ctx, taskID, taskqueue.TaskRunning, nil, "")

	buf, filename, err := h.engine.ExportAll(func(pct float64) {
		_ = h.tasks.UpdateProgress(ctx, taskID, pct/100)
	})
	if err != nil {
		_ = h.tasks.UpdateStatus(ctx, taskID, taskqueue.TaskFailed, nil, err.Error())
		return
	}

	path, err := SaveArchive(h.archivesDir, filename, buf.Bytes())
	if err != nil {
		_ = h.tasks.UpdateStatus(ctx, taskID, taskqueue.TaskFailed, nil, err.Error())
		return
	}
	_ = h.tasks.UpdateStatus(ctx, taskID, taskqueue.TaskCompleted, gin.H{
		"filename": filename,
		"path":     path,
		"size":     formatSize(int64(buf.Len())),
	}, "")
}

// POST /exports/tasks/import-bulk?policy=...
func (h *Handler) enqueueImportBulk(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "missing file")
		return
	}

	// Spool the upload so the worker can read it after the request ends.
	tmpDir := filepath.Join(h.archivesDir, "incoming")
	if err := os.MkdirAll(tmpDir, 0o755); err != nil {
		response.InternalError(c, err)
		return
	}
	tmpPath := filepath.Join(tmpDir, fmt.Sprintf("import-%d.zip", time.Now().UnixNano()))
	if err := c.SaveUploadedFile(file, tmpPath); err != nil {
		response.InternalError(c, err)
		return
	}

	policy := ParsePolicy(c.Query("policy"))
	task, err := h.tasks.Enqueue(c.Request.Context(), TaskImportBulk, gin.H{
		"path":   tmpPath,
		"policy": string(policy),
	}, "", "")
	if err != nil {
		response.InternalError(c, err)
		return
	}
	go h.runImportBulkTask(task.ID, tmpPath, policy)
	response.OK(c, task)
}

func (h *Handler) runImportBulkTask(taskID, path string, policy DuplicatePolicy) {
	ctx := context.Background()
	defer os.Remove(path)
	_ = h.tasks.UpdateStatus(ctx, taskID, taskqueue.TaskRunning, nil, "")

	data, err := os.ReadFile(path)
	if err != nil {
		_ = h.tasks.UpdateStatus(ctx, taskID, taskqueue.TaskFailed, nil, err.Error())
		return
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		_ = h.tasks.UpdateStatus(ctx, taskID, taskqueue.TaskFailed, nil, "invalid zip file")
		return
	}

	ids, err := h.engine.ImportAll(zr, policy, func(current, total int) {
		if total > 0 {
			_ = h.tasks.UpdateProgress(ctx, taskID, float64(current)/float64(total))
		}
	})
	if err != nil {
		_ = h.tasks.UpdateStatus(ctx, taskID, taskqueue.TaskFailed, nil, err.Error())
		return
	}
	_ = h.tasks.UpdateStatus(ctx, taskID, taskqueue.TaskCompleted, gin.H{
		"ids":   ids,
		"count": len(ids),
	}, "")
}

// GET /exports/tasks/:id
func (h *Handler) taskStatus(c *gin.Context) {
	task, err := h.tasks.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if task == nil {
		response.NotFound(c)
		return
	}
	response.OK(c, task)
}

func renderObjectKey(template, filename string, now time.Time) string {
	tpl := strings.TrimSpace(template)
	if tpl == "" {
		tpl = defaultS3PathTemplate
	}

	replacer := strings.NewReplacer(
		"{Y}", now.Format("2006"),
		"{m}", now.Format("01"),
		"{d}", now.Format("02"),
		"{H}", now.Format("15"),
		"{M}", now.Format("04"),
		"{s}", now.Format("05"),
		"{filename}", filename,
	)

	key := replacer.Replace(tpl)
	key = strings.ReplaceAll(key, "\\", "/")
	key = strings.TrimSpace(strings.TrimPrefix(key, "/"))
	for strings.Contains(key, "//") {
		key = strings.ReplaceAll(key, "//", "/")
	}
	if key == "" {
		return filename
	}
	return key
}
