package messaging

import (
	"context"
	"fmt"
	"strings"

	"civicbot-be/config"

	"github.com/rs/zerolog"
	"github.com/twilio/twilio-go"
	api "github.com/twilio/twilio-go/rest/api/v2010"
)

// WhatsApp sends outbound messages through the Twilio WhatsApp channel.
type WhatsApp struct {
	client *twilio.RestClient
	from   string
	log    zerolog.Logger
}

func NewWhatsApp(cfg config.Config, log zerolog.Logger) *WhatsApp {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.TwilioAccountSID,
		Password: cfg.TwilioAuthToken,
	})
	return &WhatsApp{client: client, from: cfg.TwilioWhatsAppFrom, log: log}
}

// Send delivers one message to a channel address. Single attempt; the caller
// decides what a failure means.
func (w *WhatsApp) Send(_ context.Context, address, text string) error {
	if strings.TrimSpace(w.from) == "" {
		return fmt.Errorf("whatsapp: sender number not configured")
	}

	params := &api.CreateMessageParams{}
	params.SetFrom(whatsAppAddress(w.from))
	params.SetTo(whatsAppAddress(address))
	params.SetBody(text)

	resp, err := w.client.Api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("whatsapp send: %w", err)
	}
	if resp.Sid != nil {
		w.log.Info().Str("sid", *resp.Sid).Msg("whatsapp message sent")
	}
	return nil
}

// whatsAppAddress normalizes a stored channel address into Twilio's
// "whatsapp:+<E.164>" form.
func whatsAppAddress(number string) string {
	number = strings.TrimSpace(number)
	if strings.HasPrefix(number, "whatsapp:") {
		return number
	}
	if !strings.HasPrefix(number, "+") {
		number = "+" + number
	}
	return "whatsapp:" + number
}
