// Package server exposes the matcher over HTTP: an upload-and-classify
// endpoint plus a login endpoint that gates on the classification outcome
// and consults the DVLA store for Drivers Licence holders.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Tokyo44/multidatabse-connection-with-vision-main/internal/extract"
	"github.com/Tokyo44/multidatabse-connection-with-vision-main/internal/imaging"
	"github.com/Tokyo44/multidatabse-connection-with-vision-main/internal/logger"
	"github.com/Tokyo44/multidatabse-connection-with-vision-main/internal/match"
	"github.com/Tokyo44/multidatabse-connection-with-vision-main/internal/ocr"
	"github.com/Tokyo44/multidatabse-connection-with-vision-main/internal/store"
)

// MinimumConfidence is the classification confidence required to log in.
const MinimumConfidence = 40.0

// Classifier is the part of the matcher the server needs.
type Classifier interface {
	Classify(ctx context.Context, imageBytes []byte) (match.Result, error)
}

// RecordFinder is the part of the DVLA store the login flow needs.
type RecordFinder interface {
	FindByLicense(ctx context.Context, num string) ([]store.Driver, error)
	FindByName(ctx context.Context, first, last string) ([]store.Driver, error)
}

type Server struct {
	classifier Classifier
	records    RecordFinder // nil disables the DVLA lookup
	router     *gin.Engine
}

// LoginResponse reports whether the uploaded document passed the gate, and
// for Drivers Licence holders the matching DVLA records, best match first.
type LoginResponse struct {
	Authorized bool           `json:"authorized"`
	Reason     string         `json:"reason,omitempty"`
	Result     match.Result   `json:"result"`
	Drivers    []store.Driver `json:"drivers,omitempty"`
}

func New(classifier Classifier, records RecordFinder) *Server {
	s := &Server{
		classifier: classifier,
		records:    records,
	}

	router := gin.New()
	router.Use(gin.Recovery(), requestID())

	v1 := router.Group("/api/v1")
	v1.POST("/classify", s.handleClassify)
	v1.POST("/login", s.handleLogin)
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	s.router = router
	return s
}

// Run blocks serving HTTP on addr.
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := uuid.NewString()
		c.Set("request_id", id)
		c.Header("X-Request-ID", id)
		logger.DebugLog("request %s: %s %s", id, c.Request.Method, c.Request.URL.Path)
		c.Next()
	}
}

func (s *Server) handleClassify(c *gin.Context) {
	result, ok := s.classifyUpload(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleLogin(c *gin.Context) {
	result, ok := s.classifyUpload(c)
	if !ok {
		return
	}

	resp := LoginResponse{Result: result}
	switch {
	case result.Label == match.Unknown:
		resp.Reason = "no recognizable ID card keywords found in the image"
	case result.Confidence < MinimumConfidence:
		resp.Reason = fmt.Sprintf("confidence %.1f%% is below the required %.0f%%",
			result.Confidence, MinimumConfidence)
	default:
		resp.Authorized = true
	}
	if !resp.Authorized {
		c.JSON(http.StatusUnauthorized, resp)
		return
	}

	if result.Label == match.DriversLicence && s.records != nil {
		drivers, err := s.lookupDrivers(c, result)
		if err != nil {
			logger.DebugLog("driver lookup failed: %v", err)
			c.JSON(http.StatusBadGateway, gin.H{"error": fmt.Sprintf("driver lookup failed: %v", err)})
			return
		}
		resp.Drivers = drivers
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) lookupDrivers(c *gin.Context, result match.Result) ([]store.Driver, error) {
	ctx := c.Request.Context()
	if result.LicenseNumber != "" {
		return s.records.FindByLicense(ctx, result.LicenseNumber)
	}
	if result.FirstName != "" && result.LastName != "" {
		return s.records.FindByName(ctx, result.FirstName, result.LastName)
	}
	return nil, nil
}

// classifyUpload reads the uploaded image and classifies it, writing the
// error response itself when anything goes wrong.
func (s *Server) classifyUpload(c *gin.Context) (match.Result, bool) {
	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing image upload"})
		return match.Result{}, false
	}

	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("opening upload: %v", err)})
		return match.Result{}, false
	}
	defer f.Close()

	imageBytes, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("reading upload: %v", err)})
		return match.Result{}, false
	}

	result, err := s.classifier.Classify(c.Request.Context(), imageBytes)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return match.Result{}, false
	}
	return result, true
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, imaging.ErrImageDecode):
		return http.StatusBadRequest
	case errors.Is(err, ocr.ErrBackendUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, extract.ErrExtraction):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
