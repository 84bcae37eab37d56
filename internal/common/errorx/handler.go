package errorx

import (
	"fmt"
	"net/http"

	"github.com/amoylab/rentmanager/internal/common/cnst"
	"github.com/amoylab/rentmanager/internal/i18n"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Body is the wire shape of the error envelope
type Body struct {
	Code    Code                `json:"code"`
	Message string              `json:"message"`
	Details map[string][]string `json:"details,omitempty"`
}

// ErrorHandler renders errors as the {error:{...}} envelope
type ErrorHandler struct {
	logger *zap.Logger
	tr     *i18n.I18n
}

func NewErrorHandler(logger *zap.Logger, tr *i18n.I18n) *ErrorHandler {
	return &ErrorHandler{
		logger: logger,
		tr:     tr,
	}
}

// HandleError writes err to the response and aborts the chain
func (h *ErrorHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	apiErr := As(err)
	h.logError(c, apiErr)
	c.AbortWithStatusJSON(apiErr.HTTPStatus, gin.H{"error": h.render(c, apiErr)})
}

func (h *ErrorHandler) render(c *gin.Context, e *APIError) Body {
	lang := h.tr.Lang(c)
	body := Body{
		Code:    e.Code,
		Message: h.tr.Translate(e.MessageID, lang, e.Params),
	}
	if len(e.Details) > 0 {
		body.Details = make(map[string][]string, len(e.Details))
		for field, msgs := range e.Details {
			for _, m := range msgs {
				body.Details[field] = append(body.Details[field], h.tr.Translate(m.MessageID, lang, m.Params))
			}
		}
	}
	return body
}

func (h *ErrorHandler) logError(c *gin.Context, e *APIError) {
	fields := []zap.Field{
		zap.String("code", string(e.Code)),
		zap.String("message_id", e.MessageID),
		zap.Int("status", e.HTTPStatus),
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.String("client_ip", c.ClientIP()),
	}
	if uid := c.GetString(cnst.CtxKeyUserID); uid != "" {
		fields = append(fields, zap.String("user_id", uid))
	}
	if e.cause != nil {
		fields = append(fields, zap.Error(e.cause))
	}

	switch {
	case e.HTTPStatus >= http.StatusInternalServerError:
		h.logger.Error("request failed", fields...)
	case e.Code == CodeForbidden || e.Code == CodeUnauthorized:
		h.logger.Warn("request rejected", fields...)
	default:
		h.logger.Info("request rejected", fields...)
	}
}

// RecoveryMiddleware turns panics into INTERNAL_ERROR envelopes
func (h *ErrorHandler) RecoveryMiddleware() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, recovered any) {
		h.logger.Error("panic recovered", zap.Any("panic", recovered), zap.Stack("stack"))
		h.HandleError(c, Internal(fmt.Errorf("panic: %v", recovered)))
	})
}

// NoRoute answers unknown paths with a NOT_FOUND envelope
func (h *ErrorHandler) NoRoute(c *gin.Context) {
	h.HandleError(c, NotFound(i18n.MsgRouteNotFound).WithParams(map[string]any{"Path": c.Request.URL.Path}))
}
