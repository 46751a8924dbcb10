package models

// WhatsApp Cloud API webhook payload shapes. Only the fields the
// conversation flow reads are mapped; everything else in Meta's payload
// is ignored by json.Unmarshal.

// WebhookPayload is the top-level envelope Meta posts to the webhook.
type WebhookPayload struct {
	Object string         `json:"object"`
	Entry  []WebhookEntry `json:"entry"`
}

// WebhookEntry is one business-account entry in the envelope.
type WebhookEntry struct {
	ID      string          `json:"id"`
	Changes []WebhookChange `json:"changes"`
}

// WebhookChange carries one field update; messages arrive with
// Field == "messages".
type WebhookChange struct {
	Field string       `json:"field"`
	Value WebhookValue `json:"value"`
}

// WebhookValue holds the inbound messages plus the metadata that routes
// them to a shop.
type WebhookValue struct {
	MessagingProduct string           `json:"messaging_product"`
	Metadata         WebhookMetadata  `json:"metadata"`
	Contacts         []WebhookContact `json:"contacts,omitempty"`
	Messages         []InboundMessage `json:"messages,omitempty"`
	Statuses         []StatusUpdate   `json:"statuses,omitempty"`
}

// WebhookMetadata identifies the receiving WhatsApp number.
// PhoneNumberID is the routing key to the shop.
type WebhookMetadata struct {
	DisplayPhoneNumber string `json:"display_phone_number"`
	PhoneNumberID      string `json:"phone_number_id"`
}

// WebhookContact carries the sender's profile.
type WebhookContact struct {
	WaID    string `json:"wa_id"`
	Profile struct {
		Name string `json:"name"`
	} `json:"profile"`
}

// InboundMessage is one customer message. Type selects which of the
// optional bodies is present.
type InboundMessage struct {
	From        string              `json:"from"` // Sender phone, digits only
	ID          string              `json:"id"`   // Meta message id, dedup key
	Timestamp   string              `json:"timestamp"`
	Type        string              `json:"type"`
	Text        *TextBody           `json:"text,omitempty"`
	Interactive *InteractiveReply   `json:"interactive,omitempty"`
	Button      *TemplateButtonBody `json:"button,omitempty"`
}

// TextBody is a plain text message.
type TextBody struct {
	Body string `json:"body"`
}

// InteractiveReply is a tap on an interactive message we sent.
type InteractiveReply struct {
	Type        string       `json:"type"` // "button_reply" or "list_reply"
	ButtonReply *ButtonReply `json:"button_reply,omitempty"`
	ListReply   *ButtonReply `json:"list_reply,omitempty"`
}

// ButtonReply carries the id we assigned when sending the buttons.
type ButtonReply struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// TemplateButtonBody is a quick-reply tap on a template message.
type TemplateButtonBody struct {
	Payload string `json:"payload"`
	Text    string `json:"text"`
}

// StatusUpdate is a delivery receipt for a message we sent. The flow
// ignores these but they share the webhook with inbound messages.
type StatusUpdate struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	Timestamp   string `json:"timestamp"`
	RecipientID string `json:"recipient_id"`
}

// Input returns the effective user input of the message: the button id
// for interactive replies, the payload for template taps, the body for
// text. Empty means the message type carries nothing actionable.
func (m *InboundMessage) Input() string {
	switch m.Type {
	case "text":
		if m.Text != nil {
			return m.Text.Body
		}
	case "interactive":
		if m.Interactive == nil {
			return ""
		}
		if m.Interactive.ButtonReply != nil {
			return m.Interactive.ButtonReply.ID
		}
		if m.Interactive.ListReply != nil {
			return m.Interactive.ListReply.ID
		}
	case "button":
		if m.Button != nil {
			if m.Button.Payload != "" {
				return m.Button.Payload
			}
			return m.Button.Text
		}
	}
	return ""
}
