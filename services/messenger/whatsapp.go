package messenger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"barberflow/utils"

	"go.uber.org/zap"
)

// maxButtons is the WhatsApp Cloud API limit on interactive reply
// buttons per message; maxButtonTitle is its title length limit.
const (
	maxButtons     = 3
	maxButtonTitle = 20
)

// WhatsAppSender implements Sender against the Graph API.
type WhatsAppSender struct {
	BaseURL     string
	AccessToken string
	HTTPClient  *http.Client
}

// NewWhatsAppSender creates a Graph API sender. baseURL is the
// versioned API root, e.g. "https://graph.facebook.com/v19.0".
func NewWhatsAppSender(baseURL, accessToken string) *WhatsAppSender {
	return &WhatsAppSender{
		BaseURL:     strings.TrimRight(baseURL, "/"),
		AccessToken: accessToken,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type textPayload struct {
	MessagingProduct string `json:"messaging_product"`
	RecipientType    string `json:"recipient_type"`
	To               string `json:"to"`
	Type             string `json:"type"`
	Text             struct {
		PreviewURL bool   `json:"preview_url"`
		Body       string `json:"body"`
	} `json:"text"`
}

type interactivePayload struct {
	MessagingProduct string `json:"messaging_product"`
	RecipientType    string `json:"recipient_type"`
	To               string `json:"to"`
	Type             string `json:"type"`
	Interactive      struct {
		Type string `json:"type"`
		Body struct {
			Text string `json:"text"`
		} `json:"body"`
		Action struct {
			Buttons []replyButton `json:"buttons"`
		} `json:"action"`
	} `json:"interactive"`
}

type replyButton struct {
	Type  string `json:"type"`
	Reply struct {
		ID    string `json:"id"`
		Title string `json:"title"`
	} `json:"reply"`
}

// SendText sends a plain text message.
func (s *WhatsAppSender) SendText(ctx context.Context, phoneNumberID, to, body string) error {
	payload := textPayload{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		To:               normalizeRecipient(to),
		Type:             "text",
	}
	payload.Text.Body = body

	return s.post(ctx, phoneNumberID, payload)
}

// SendButtons sends a body with tappable reply buttons. The platform
// caps buttons at three and titles at twenty characters; longer titles
// are truncated rather than rejected so a long service label degrades
// instead of blocking the conversation.
func (s *WhatsAppSender) SendButtons(ctx context.Context, phoneNumberID, to, body string, buttons []Button) error {
	if len(buttons) == 0 {
		return s.SendText(ctx, phoneNumberID, to, body)
	}
	if len(buttons) > maxButtons {
		return fmt.Errorf("too many buttons: %d (limit %d)", len(buttons), maxButtons)
	}

	payload := interactivePayload{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		To:               normalizeRecipient(to),
		Type:             "interactive",
	}
	payload.Interactive.Type = "button"
	payload.Interactive.Body.Text = body
	for _, b := range buttons {
		var rb replyButton
		rb.Type = "reply"
		rb.Reply.ID = b.ID
		rb.Reply.Title = truncateTitle(b.Title)
		payload.Interactive.Action.Buttons = append(payload.Interactive.Action.Buttons, rb)
	}

	return s.post(ctx, phoneNumberID, payload)
}

func (s *WhatsAppSender) post(ctx context.Context, phoneNumberID string, payload any) error {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal message payload: %w", err)
	}

	url := fmt.Sprintf("%s/%s/messages", s.BaseURL, phoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.AccessToken)

	resp, err := s.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("message send failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read send response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("message send returned %d: %s", resp.StatusCode, graphErrorMessage(respBody))
	}

	utils.GetLogger().Debug("whatsapp message sent",
		zap.String("phone_number_id", phoneNumberID),
		zap.Int("status", resp.StatusCode))
	return nil
}

// graphErrorMessage pulls the human-readable message out of a Graph API
// error body.
func graphErrorMessage(body []byte) string {
	var errResp struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
			Code    int    `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &errResp); err != nil || errResp.Error.Message == "" {
		return string(body)
	}
	return errResp.Error.Message
}

// normalizeRecipient strips the "+" that E.164 carries; the Graph API
// addresses recipients by bare digits.
func normalizeRecipient(to string) string {
	return strings.TrimPrefix(to, "+")
}

func truncateTitle(title string) string {
	runes := []rune(title)
	if len(runes) <= maxButtonTitle {
		return title
	}
	return string(runes[:maxButtonTitle-1]) + "…"
}
