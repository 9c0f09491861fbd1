package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"

	"job-advisor/internal/domain"
	"job-advisor/internal/usecase"
)

const correlationHeader = "X-Correlation-Id"

type Service interface {
	Ask(ctx context.Context, in usecase.AskInput) (domain.ResponsePayload, error)
	RecordFeedback(ctx context.Context, f domain.FeedbackRecord) error
	RecordJob(ctx context.Context, r domain.JobRecord) (int64, error)
	DeleteFor(ctx context.Context, q usecase.CacheQuery) error
	ExtendTTL(ctx context.Context, q usecase.CacheQuery, ttl time.Duration) (bool, error)
	FlushCache(ctx context.Context, prefix string) (int, error)
}

type Handler struct {
	svc Service
}

type askRequest struct {
	Message   string `json:"message"`
	Category  string `json:"category"`
	Model     string `json:"model"`
	SessionID string `json:"session_id"`
	UserID    string `json:"user_id"`
	JobTitle  string `json:"job_title"`
	JobSlug   string `json:"job_slug"`
	// System replaces the built-in advisor instruction.
	System    string `json:"system"`
}

type askResponse struct {
	domain.ResponsePayload
	SessionID string `json:"session_id,omitempty"`
}

type feedbackRequest struct {
	Message   string   `json:"message"`
	Response  string   `json:"response"`
	SessionID string   `json:"session_id"`
	UserID    string   `json:"user_id"`
	Vote      int      `json:"vote"`
	Tags      []string `json:"tags"`
	Comment   string   `json:"comment"`
}

type jobRequest struct {
	CategoryID    int64  `json:"category_id"`
	Title         string `json:"title"`
	Income        string `json:"income"`
	Investment    string `json:"investment"`
	City          string `json:"city"`
	Gender        string `json:"gender"`
	Advantages    string `json:"advantages"`
	Disadvantages string `json:"disadvantages"`
	Details       string `json:"details"`
}

type jobResponse struct {
	ID int64 `json:"id"`
}

type cacheRequest struct {
	Message    string `json:"message"`
	Category   string `json:"category"`
	Model      string `json:"model"`
	JobTitle   string `json:"job_title"`
	TTLSeconds int    `json:"ttl_seconds"`
	Prefix     string `json:"prefix"`
}

type cacheResponse struct {
	Extended bool `json:"extended,omitempty"`
	Deleted  int  `json:"deleted,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func NewHandler(svc Service) (*Handler, error) {
	if svc == nil {
		return nil, errors.New("handler: service must not be nil")
	}
	return &Handler{svc: svc}, nil
}

func (h *Handler) Handle(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	correlationID := headerValue(event.Headers, correlationHeader)
	if correlationID == "" {
		correlationID = newUUID()
	}
	log := slog.With("correlation_id", correlationID, "path", event.Path)

	if event.HTTPMethod != http.MethodPost {
		return jsonResponse(http.StatusMethodNotAllowed, correlationID, errorResponse{Error: "METHOD_NOT_ALLOWED"}), nil
	}

	path := strings.TrimRight(event.Path, "/")
	switch path {
	case "/ask":
		return h.ask(ctx, log, correlationID, event.Body), nil
	case "/feedback":
		return h.feedback(ctx, log, correlationID, event.Body), nil
	case "/jobs":
		return h.job(ctx, log, correlationID, event.Body), nil
	case "/cache/delete", "/cache/extend", "/cache/flush":
		return h.cache(ctx, log, correlationID, path, event.Body), nil
	}
	return jsonResponse(http.StatusNotFound, correlationID, errorResponse{Error: "NOT_FOUND"}), nil
}

func (h *Handler) ask(ctx context.Context, log *slog.Logger, correlationID, body string) events.APIGatewayProxyResponse {
	var req askRequest
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		return invalidBody(correlationID)
	}
	// Anonymous callers get a session so follow-up questions carry history.
	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" && strings.TrimSpace(req.UserID) == "" {
		sessionID = newUUID()
	}

	p, err := h.svc.Ask(ctx, usecase.AskInput{
		Message:      req.Message,
		Category:     req.Category,
		Model:        req.Model,
		SessionID:    sessionID,
		UserID:       req.UserID,
		JobTitle:     req.JobTitle,
		JobSlug:      req.JobSlug,
		SystemPrompt: req.System,
	})
	if err != nil {
		return errorResult(log, correlationID, err)
	}
	return jsonResponse(http.StatusOK, correlationID, askResponse{ResponsePayload: p, SessionID: sessionID})
}

func (h *Handler) feedback(ctx context.Context, log *slog.Logger, correlationID, body string) events.APIGatewayProxyResponse {
	var req feedbackRequest
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		return invalidBody(correlationID)
	}
	err := h.svc.RecordFeedback(ctx, domain.FeedbackRecord{
		Message:   req.Message,
		Response:  req.Response,
		SessionID: req.SessionID,
		UserID:    req.UserID,
		Vote:      req.Vote,
		Tags:      req.Tags,
		Comment:   req.Comment,
	})
	if err != nil {
		return errorResult(log, correlationID, err)
	}
	return jsonResponse(http.StatusNoContent, correlationID, nil)
}

func (h *Handler) job(ctx context.Context, log *slog.Logger, correlationID, body string) events.APIGatewayProxyResponse {
	var req jobRequest
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		return invalidBody(correlationID)
	}
	id, err := h.svc.RecordJob(ctx, domain.JobRecord{
		CategoryID:    req.CategoryID,
		Title:         req.Title,
		Income:        req.Income,
		Investment:    req.Investment,
		City:          req.City,
		Gender:        req.Gender,
		Advantages:    req.Advantages,
		Disadvantages: req.Disadvantages,
		Details:       req.Details,
	})
	if err != nil {
		return errorResult(log, correlationID, err)
	}
	return jsonResponse(http.StatusCreated, correlationID, jobResponse{ID: id})
}

func (h *Handler) cache(ctx context.Context, log *slog.Logger, correlationID, path, body string) events.APIGatewayProxyResponse {
	var req cacheRequest
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		return invalidBody(correlationID)
	}
	q := usecase.CacheQuery{Message: req.Message, Category: req.Category, Model: req.Model, JobTitle: req.JobTitle}

	var (
		out cacheResponse
		err error
	)
	switch path {
	case "/cache/delete":
		err = h.svc.DeleteFor(ctx, q)
	case "/cache/extend":
		out.Extended, err = h.svc.ExtendTTL(ctx, q, time.Duration(req.TTLSeconds)*time.Second)
	default:
		out.Deleted, err = h.svc.FlushCache(ctx, req.Prefix)
	}
	if err != nil {
		return errorResult(log, correlationID, err)
	}
	return jsonResponse(http.StatusOK, correlationID, out)
}

func invalidBody(correlationID string) events.APIGatewayProxyResponse {
	return jsonResponse(http.StatusBadRequest, correlationID, errorResponse{Error: string(usecase.ErrorInvalidInput)})
}

func errorResult(log *slog.Logger, correlationID string, err error) events.APIGatewayProxyResponse {
	code := usecase.CodeOf(err)
	status := statusFor(code)
	if status >= http.StatusInternalServerError {
		log.Error("request failed", "code", code, "err", err)
	} else {
		log.Info("request rejected", "code", code, "err", err)
	}
	return jsonResponse(status, correlationID, errorResponse{Error: string(code)})
}

func statusFor(code usecase.ErrorCode) int {
	switch code {
	case usecase.ErrorInvalidInput:
		return http.StatusBadRequest
	case usecase.ErrorUpstream, usecase.ErrorTransport:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func jsonResponse(status int, correlationID string, v any) events.APIGatewayProxyResponse {
	headers := map[string]string{correlationHeader: correlationID}
	if v == nil {
		return events.APIGatewayProxyResponse{StatusCode: status, Headers: headers}
	}
	body, err := json.Marshal(v)
	if err != nil {
		status = http.StatusInternalServerError
		body = []byte(`{"error":"INTERNAL_ERROR"}`)
	}
	headers["Content-Type"] = "application/json"
	return events.APIGatewayProxyResponse{StatusCode: status, Headers: headers, Body: string(body)}
}

// headerValue looks up name case-insensitively.
func headerValue(headers map[string]string, name string) string {
	if v, ok := headers[name]; ok {
		return strings.TrimSpace(v)
	}
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

var newUUID = func() string {
	return uuid.NewString()
}
