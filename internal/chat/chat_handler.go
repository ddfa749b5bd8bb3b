package chat

import (
	"net/http"

	"go-leavechat/internal/leave"
	"go-leavechat/internal/nlp/entity"
	"go-leavechat/internal/nlp/intent"
	"go-leavechat/internal/shared/apperror"
	"go-leavechat/internal/shared/contextutil"
	"go-leavechat/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ChatRequest struct {
	EmployeeID string `json:"employee_id" binding:"required"`
	Message    string `json:"message" binding:"required"`
}

type SessionRequest struct {
	EmployeeID string `json:"employee_id" binding:"required"`
}

type ChatResponse struct {
	Reply  string `json:"reply"`
	Intent string `json:"intent"`
}

type SessionResponse struct {
	Greeting   string `json:"greeting"`
	EmployeeID string `json:"employee_id"`
}

// Handler serves the chat API. Each request gets its own orchestrator
// turn pinned to the employee named in the body, so no conversation
// state leaks between callers.
type Handler struct {
	classifier *intent.Classifier
	extractor  *entity.Extractor
	service    leave.Service
	threshold  float64
	logger     *zap.Logger
}

func NewHandler(
	classifier *intent.Classifier,
	extractor *entity.Extractor,
	service leave.Service,
	threshold float64,
	logger ...*zap.Logger,
) *Handler {
	l := zap.L().Named("chat.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("chat.handler")
	}
	return &Handler{
		classifier: classifier,
		extractor:  extractor,
		service:    service,
		threshold:  threshold,
		logger:     l,
	}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("chat request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
		zap.String("message", httpErr.Message),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) newTurn() *Orchestrator {
	return NewOrchestrator(h.classifier, h.extractor, h.service, h.threshold, h.logger)
}

// Chat runs one conversational turn for the employee in the body.
func (h *Handler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("chat validation failed", zap.Error(err))
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "employee_id and message are required", err.Error())
		return
	}

	ctx := contextutil.WithEmployeeID(c.Request.Context(), req.EmployeeID)

	turn := h.newTurn()
	if _, err := turn.SetEmployee(ctx, req.EmployeeID); err != nil {
		h.writeServiceError(c, err)
		return
	}

	reply := turn.Process(ctx, req.Message)
	response.Success(c, http.StatusOK, ChatResponse{Reply: reply.Text, Intent: reply.Intent})
}

// Session validates an employee id and returns the login greeting.
func (h *Handler) Session(c *gin.Context) {
	var req SessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("session validation failed", zap.Error(err))
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "employee_id is required", err.Error())
		return
	}

	turn := h.newTurn()
	greeting, err := turn.SetEmployee(c.Request.Context(), req.EmployeeID)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, SessionResponse{
		Greeting:   greeting,
		EmployeeID: turn.EmployeeID(),
	})
}
