package handlers

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"building-risk-service/imageutil"
	"building-risk-service/models"
	"building-risk-service/service"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
)

// Handlers exposes the analysis pipeline over HTTP.
type Handlers struct {
	svc         *service.Service
	maxImageDim int
}

func NewHandlers(svc *service.Service, maxImageDim int) *Handlers {
	return &Handlers{svc: svc, maxImageDim: maxImageDim}
}

// HealthCheck reports process liveness only; it never touches the provider.
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "building-risk-service",
	})
}

// PipelineHealth probes the hosted model. Missing configuration and
// unreachable endpoints both surface as 503 with a diagnostic message.
func (h *Handlers) PipelineHealth(c *gin.Context) {
	status := h.svc.Health(c.Request.Context())
	if !status.OK {
		c.JSON(http.StatusServiceUnavailable, status)
		return
	}
	c.JSON(http.StatusOK, status)
}

// Categories returns the fixed risk taxonomy the analyzer assesses against.
func (h *Handlers) Categories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"categories": models.Categories(),
	})
}

// AnalyzeBuilding accepts 1-10 building photographs as multipart files under
// the "images" field and returns one RiskReport. A reply the normalizer could
// not parse is still a 200 with the fallback report; only validation,
// configuration, and transport failures map to error statuses.
func (h *Handlers) AnalyzeBuilding(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "expected multipart form upload: " + err.Error()})
		return
	}

	files := form.File["images"]
	assets := make([]models.ImageAsset, 0, len(files))
	for _, fh := range files {
		asset, err := readUpload(fh)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read upload " + fh.Filename + ": " + err.Error()})
			return
		}
		asset.Data, asset.ContentType = imageutil.Downscale(asset.Data, asset.ContentType, h.maxImageDim)
		assets = append(assets, asset)
	}

	report, err := h.svc.Analyze(c.Request.Context(), assets)
	if err != nil {
		h.writeAnalyzeError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

func (h *Handlers) writeAnalyzeError(c *gin.Context, err error) {
	var validationErr *models.ValidationError
	var configErr *models.ConfigurationError
	var transportErr *models.TransportError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Error()})
	case errors.As(err, &configErr):
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":  "analysis service unavailable",
			"detail": configErr.Error(),
		})
	case errors.As(err, &transportErr):
		c.JSON(http.StatusBadGateway, gin.H{"error": transportErr.Error()})
	default:
		log.Errorf("Unexpected analysis error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "analysis failed"})
	}
}

func readUpload(fh *multipart.FileHeader) (models.ImageAsset, error) {
	f, err := fh.Open()
	if err != nil {
		return models.ImageAsset{}, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return models.ImageAsset{}, err
	}

	contentType := fh.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	return models.ImageAsset{
		Name:        fh.Filename,
		ContentType: contentType,
		Data:        data,
	}, nil
}
