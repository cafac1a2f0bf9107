package httpapi

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/mikey/phish-detector/internal/core"
	"github.com/mikey/phish-detector/internal/features"
	"go.uber.org/zap"
)

// PredictRequest is the body of POST /predict
type PredictRequest struct {
	EmailText string `json:"email_text" validate:"required"`
}

// PredictResponse is the body returned by POST /predict
type PredictResponse struct {
	Prediction           core.Label      `json:"prediction"`
	ConfidencePhishing   float64         `json:"confidence_phishing"`
	ConfidenceLegitimate float64         `json:"confidence_legitimate"`
	IsPhishing           bool            `json:"is_phishing"`
	Wordcloud            []features.Term `json:"wordcloud"`
	ModelVersion         string          `json:"model_version"`
	ProcessingID         string          `json:"processing_id"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) predict(c echo.Context) error {
	var req PredictRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "Invalid request payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: core.ErrInvalidInput.Error()})
	}

	analysis, err := s.detector.Analyze(c.Request().Context(), req.EmailText)
	if err != nil {
		if errors.Is(err, core.ErrInvalidInput) {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		}
		s.logger.Error("Prediction failed",
			zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "Error during prediction: " + err.Error()})
	}

	r := analysis.Result
	return c.JSON(http.StatusOK, PredictResponse{
		Prediction:           r.Label,
		ConfidencePhishing:   r.ConfidencePhishing,
		ConfidenceLegitimate: r.ConfidenceLegitimate,
		IsPhishing:           r.IsPhishing,
		Wordcloud:            analysis.Wordcloud,
		ModelVersion:         r.ModelVersion,
		ProcessingID:         r.ProcessingID,
	})
}

func (s *Server) health(c echo.Context) error {
	status := "not loaded"
	if s.detector != nil && s.detector.ModelVersion() != "" {
		status = "loaded"
	}
	return c.JSON(http.StatusOK, map[string]string{
		"status":       "healthy",
		"model_status": status,
	})
}

func (s *Server) apiInfo(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"name":        "Phishing Email Detector API",
		"version":     APIVersion,
		"description": "Phishing email detection using NLP features and a random forest",
		"endpoints": map[string]string{
			"/predict":  "POST - Predict if email is phishing",
			"/health":   "GET - Health check",
			"/api/info": "GET - API information",
			"/metrics":  "GET - Prometheus metrics",
		},
		"model": s.info,
	})
}
