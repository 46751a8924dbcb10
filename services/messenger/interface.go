package messenger

import "context"

// Button is one tappable reply option. ID comes back verbatim in the
// webhook when the customer taps it.
type Button struct {
	ID    string
	Title string
}

// Sender delivers outbound messages to a customer. phoneNumberID
// selects which shop's WhatsApp number the message goes out on.
type Sender interface {
	SendText(ctx context.Context, phoneNumberID, to, body string) error
	// SendButtons sends a body with up to three tappable replies, the
	// platform's interactive-button limit.
	SendButtons(ctx context.Context, phoneNumberID, to, body string, buttons []Button) error
}
