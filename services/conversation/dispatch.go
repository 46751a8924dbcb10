package conversation

import (
	"context"
	"encoding/json"

	ledgerRepo "barberflow/database/repository/ledger"
	shopRepo "barberflow/database/repository/shop"
	"barberflow/models"
	"barberflow/utils"

	"go.uber.org/zap"
)

// MessageHandler processes one routed customer message. Satisfied by
// *Engine.
type MessageHandler interface {
	HandleMessage(ctx context.Context, shop *models.Shop, from, text string) error
}

// Dispatcher unpacks acknowledged webhook payloads in the background
// worker: it routes each message to its shop, claims its id in the
// dedup ledger, and hands the extracted input to the engine. The HTTP
// acknowledgment already went out, so everything here resolves to
// either handling the message or logging why it was dropped.
type Dispatcher struct {
	Shops  shopRepo.ShopRepository
	Ledger ledgerRepo.LedgerRepository
	Engine MessageHandler
}

// ProcessPayload handles one raw webhook body. A failure on one message
// is logged and does not stop the rest; the returned error is always
// nil because redelivering an acked payload would replay side effects.
func (d *Dispatcher) ProcessPayload(ctx context.Context, rawBody []byte) error {
	logger := utils.GetLogger()

	var payload models.WebhookPayload
	if err := json.Unmarshal(rawBody, &payload); err != nil {
		logger.Warn("dropping malformed webhook payload", zap.Error(err))
		return nil
	}
	if payload.Object != "whatsapp_business_account" {
		logger.Debug("ignoring webhook for unexpected object", zap.String("object", payload.Object))
		return nil
	}

	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			if change.Field != "messages" {
				continue
			}
			d.processChange(ctx, change.Value)
		}
	}
	return nil
}

// processChange handles one "messages" change: resolve the shop from
// the receiving number, then walk the inbound messages. Status-only
// changes (delivery and read receipts) carry no Messages and fall
// through untouched.
func (d *Dispatcher) processChange(ctx context.Context, value models.WebhookValue) {
	logger := utils.GetLogger()

	if len(value.Messages) == 0 {
		return
	}

	shop, err := d.Shops.GetByPhoneNumberID(ctx, value.Metadata.PhoneNumberID)
	if err != nil {
		logger.Error("shop routing lookup failed",
			zap.String("phone_number_id", value.Metadata.PhoneNumberID),
			zap.Error(err))
		return
	}
	if shop == nil {
		logger.Debug("dropping messages for unknown number",
			zap.String("phone_number_id", value.Metadata.PhoneNumberID))
		return
	}

	for _, msg := range value.Messages {
		input := msg.Input()
		if input == "" {
			logger.Debug("ignoring unsupported message type",
				zap.String("type", msg.Type),
				zap.String("message_id", msg.ID))
			continue
		}

		fresh, err := d.Ledger.Claim(ctx, msg.ID, shop.ID, msg.From)
		if err != nil {
			logger.Error("dedup claim failed, dropping message",
				zap.String("message_id", msg.ID),
				zap.Error(err))
			continue
		}
		if !fresh {
			logger.Debug("skipping redelivered message", zap.String("message_id", msg.ID))
			continue
		}

		if err := d.Engine.HandleMessage(ctx, shop, msg.From, input); err != nil {
			logger.Error("message handling failed",
				zap.String("message_id", msg.ID),
				zap.String("shop_id", shop.ID),
				zap.Error(err))
		}
	}
}
