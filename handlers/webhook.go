package handlers

import (
	"io"
	"net/http"

	"barberflow/services/tasks"
	"barberflow/utils"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// Enqueuer is the slice of asynq.Client the webhook handler needs, kept
// narrow so tests can fake it.
type Enqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// WebhookHandler terminates the Meta webhook: subscription verification
// on GET, message delivery on POST. Delivery is acknowledged before any
// business processing so the platform's response deadline is never at
// the mercy of a slow downstream call.
type WebhookHandler struct {
	VerifyToken string
	Queue       Enqueuer
}

// NewWebhookHandler creates a WebhookHandler.
func NewWebhookHandler(verifyToken string, queue Enqueuer) *WebhookHandler {
	return &WebhookHandler{VerifyToken: verifyToken, Queue: queue}
}

// Verify answers Meta's subscription handshake: echo the challenge with
// 200 only when the mode is "subscribe" and the token matches.
func (h *WebhookHandler) Verify(c *gin.Context) {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode == "subscribe" && token != "" && token == h.VerifyToken {
		c.String(http.StatusOK, challenge)
		return
	}

	utils.GetLogger().Warn("webhook verification rejected", zap.String("mode", mode))
	utils.JSONError(c, http.StatusForbidden, "Forbidden", "webhook verification failed")
}

// Receive acknowledges a delivery and hands the raw body to the
// background queue. The 200 is written first and unconditionally; an
// enqueue failure is logged, never surfaced as a second response, and
// never retried — the platform was already told we have the payload.
func (h *WebhookHandler) Receive(c *gin.Context) {
	logger := utils.GetLogger()

	rawBody, err := io.ReadAll(c.Request.Body)
	if err != nil {
		logger.Warn("failed to read webhook body", zap.Error(err))
		rawBody = nil
	}

	c.JSON(http.StatusOK, gin.H{"status": "received"})

	if len(rawBody) == 0 {
		return
	}

	task, opts := tasks.NewWebhookTask(rawBody)
	if _, err := h.Queue.Enqueue(task, opts...); err != nil {
		logger.Error("failed to enqueue webhook payload", zap.Error(err))
	}
}
