package middleware

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"strings"

	"barberflow/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SignatureMiddleware validates the X-Hub-Signature-256 header: an
// HMAC-SHA256 of the raw, unparsed request body keyed with the app
// secret. A missing or mismatched signature is rejected with 403 before
// the handler acknowledges anything. An empty secret disables the check
// (local development without Meta app credentials).
func SignatureMiddleware(appSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if appSecret == "" {
			c.Next()
			return
		}

		signature := extractSignature(c)
		if signature == "" {
			rejectSignature(c, "missing X-Hub-Signature-256 header")
			return
		}

		body, err := readAndRestoreBody(c)
		if err != nil {
			rejectSignature(c, "failed to read request body")
			return
		}

		if !verifySignature(body, signature, appSecret) {
			rejectSignature(c, "invalid webhook signature")
			return
		}

		c.Next()
	}
}

func extractSignature(c *gin.Context) string {
	header := c.GetHeader("X-Hub-Signature-256")
	if header == "" {
		return ""
	}
	if signature, found := strings.CutPrefix(header, "sha256="); found {
		return signature
	}
	return header
}

// readAndRestoreBody consumes the request body for signing and puts an
// identical copy back so the handler can still read it.
func readAndRestoreBody(c *gin.Context) ([]byte, error) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return nil, err
	}
	c.Request.Body.Close()
	c.Request.Body = io.NopCloser(bytes.NewBuffer(body))
	return body, nil
}

// verifySignature compares the expected digest with hmac.Equal; the
// comparison must be constant-time so timing differences cannot leak
// the signature byte by byte.
func verifySignature(body []byte, receivedSignature, appSecret string) bool {
	mac := hmac.New(sha256.New, []byte(appSecret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(receivedSignature))
}

func rejectSignature(c *gin.Context, reason string) {
	utils.GetLogger().Warn("webhook signature verification failed",
		zap.String("ip", getClientIP(c)),
		zap.String("reason", reason))
	c.AbortWithStatusJSON(http.StatusForbidden, utils.ErrorResponse{
		Message: "Forbidden",
		Details: "webhook signature verification failed",
	})
}
