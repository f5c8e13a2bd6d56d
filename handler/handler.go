package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"

	"travel-agent/internal/usecase"
)

const correlationHeader = "X-Correlation-Id"

// ChatUseCase is the single operation exposed over HTTP.
type ChatUseCase interface {
	Chat(ctx context.Context, in usecase.ChatInput) (usecase.ChatOutput, error)
}

type chatRequest struct {
	Question string `json:"question"`
	Name     string `json:"name"`
	Email    string `json:"email"`
}

type chatResponse struct {
	Status   string `json:"status"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Intent   string `json:"intent"`
}

type errorResponse struct {
	Status  string `json:"status"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Handler serves API Gateway proxy events.
type Handler struct {
	uc     ChatUseCase
	logger *slog.Logger
}

func NewHandler(uc ChatUseCase) (*Handler, error) {
	if uc == nil {
		return nil, errors.New("handler: chat use case must not be nil")
	}
	return &Handler{uc: uc, logger: slog.Default().With("component", "handler")}, nil
}

func (h *Handler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	corrID := headerValue(req.Headers, correlationHeader)
	if corrID == "" {
		corrID = newCorrelationID()
	}
	logger := h.logger.With("correlation_id", corrID)

	var body chatRequest
	if err := json.Unmarshal([]byte(req.Body), &body); err != nil {
		logger.Info("rejected malformed body", "err", err)
		return jsonResponse(http.StatusBadRequest, corrID, invalidBody()), nil
	}

	status, payload := runChat(ctx, h.uc, logger, body)
	return jsonResponse(status, corrID, payload), nil
}

// runChat calls the use case and shapes the result for both transports.
func runChat(ctx context.Context, uc ChatUseCase, logger *slog.Logger, body chatRequest) (int, any) {
	out, err := uc.Chat(ctx, usecase.ChatInput{
		Question: body.Question,
		Name:     body.Name,
		Email:    body.Email,
	})
	if err != nil {
		status, resp := errorPayload(err)
		if status >= http.StatusInternalServerError {
			logger.Error("chat failed", "status", status, "err", err)
		} else {
			logger.Info("chat rejected", "status", status, "err", err)
		}
		return status, resp
	}
	logger.Info("chat answered", "intent", out.Intent)
	return http.StatusOK, chatResponse{
		Status:   "success",
		Question: body.Question,
		Answer:   out.Answer,
		Intent:   out.Intent,
	}
}

func errorPayload(err error) (int, errorResponse) {
	var ucErr *usecase.Error
	if !errors.As(err, &ucErr) {
		return http.StatusInternalServerError, errorResponse{
			Status:  "error",
			Error:   string(usecase.ErrorInternal),
			Message: usecase.FallbackAnswer,
		}
	}
	resp := errorResponse{Status: "error", Error: string(ucErr.Code), Message: usecase.FallbackAnswer}
	switch ucErr.Code {
	case usecase.ErrorInvalidInput:
		resp.Message = invalidInputMessage(ucErr.Reason)
		return http.StatusBadRequest, resp
	case usecase.ErrorRateLimited:
		resp.Message = "Too many requests, please try again shortly."
		return http.StatusTooManyRequests, resp
	case usecase.ErrorConflict:
		resp.Message = "Another message is still being processed, please retry."
		return http.StatusConflict, resp
	case usecase.ErrorUpstream:
		return http.StatusBadGateway, resp
	default:
		return http.StatusInternalServerError, resp
	}
}

func invalidInputMessage(reason string) string {
	switch reason {
	case "question_too_long":
		return "The question is too long."
	case "invalid_email":
		return "Please provide a valid email address."
	default:
		return "Please provide 'question', 'name', and 'email' in the request body."
	}
}

func invalidBody() errorResponse {
	return errorResponse{
		Status:  "error",
		Error:   string(usecase.ErrorInvalidInput),
		Message: invalidInputMessage(""),
	}
}

func jsonResponse(status int, corrID string, payload any) events.APIGatewayProxyResponse {
	b, err := json.Marshal(payload)
	if err != nil {
		status = http.StatusInternalServerError
		b = []byte(`{"status":"error","error":"INTERNAL_ERROR","message":"` + usecase.FallbackAnswer + `"}`)
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers: map[string]string{
			"Content-Type":    "application/json",
			correlationHeader: corrID,
		},
		Body: string(b),
	}
}

func headerValue(headers map[string]string, name string) string {
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

var newCorrelationID = func() string {
	return uuid.NewString()
}
