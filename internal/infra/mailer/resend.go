package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"arequita-backend/internal/pkg/config"
)

const (
	resendEndpoint = "https://api.resend.com/emails"
	sendTimeout    = 10 * time.Second
)

// ResendMailer delivers transactional mail through the Resend HTTP API.
// Send dispatches on a goroutine and never reports failure to the caller;
// a reservation must not fail because the mail provider is down.
type ResendMailer struct {
	apiKey string
	from   string
	client *http.Client
	logger *slog.Logger
}

func NewResendMailer(cfg config.MailConfig, logger *slog.Logger) *ResendMailer {
	return &ResendMailer{
		apiKey: cfg.APIKey,
		from:   cfg.From,
		client: &http.Client{Timeout: sendTimeout},
		logger: logger,
	}
}

type resendPayload struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

func (m *ResendMailer) Send(_ context.Context, recipient, template string, data map[string]any) {
	if m.apiKey == "" {
		m.logger.Debug("mail disabled, skipping send", slog.String("template", template))
		return
	}
	subject, body := render(template, data)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()

		payload, err := json.Marshal(resendPayload{
			From:    m.from,
			To:      []string{recipient},
			Subject: subject,
			HTML:    body,
		})
		if err != nil {
			m.logger.Error("mail encode failed", slog.String("template", template), slog.String("error", err.Error()))
			return
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, resendEndpoint, bytes.NewReader(payload))
		if err != nil {
			m.logger.Error("mail request failed", slog.String("error", err.Error()))
			return
		}
		req.Header.Set("Authorization", "Bearer "+m.apiKey)
		req.Header.Set("Content-Type", "application/json")

		resp, err := m.client.Do(req)
		if err != nil {
			m.logger.Error("mail send failed",
				slog.String("template", template),
				slog.String("error", err.Error()))
			return
		}
		defer resp.Body.Close()
		if resp.StatusCode >= 300 {
			m.logger.Error("mail send rejected",
				slog.String("template", template),
				slog.Int("status", resp.StatusCode))
			return
		}
		m.logger.Info("mail sent", slog.String("template", template))
	}()
}

func render(template string, data map[string]any) (subject, body string) {
	switch template {
	case "camping_pre_reservation_received":
		subject = fmt.Sprintf("Pre-reserva %v recibida - Camping Arequita", data["code"])
		body = fmt.Sprintf(
			"<p>Hola %v,</p><p>Recibimos tu pre-reserva <strong>%v</strong>.</p>"+
				"<p>Tenés 48 horas para confirmarla; vence el %v.</p>"+
				"<p>Confirmala desde este enlace: /confirmar/%v</p>",
			data["full_name"], data["code"], data["expires_at"], data["token"])
	case "camping_pre_reservation_confirmed":
		subject = fmt.Sprintf("Pre-reserva %v confirmada - Camping Arequita", data["code"])
		body = fmt.Sprintf(
			"<p>Hola %v,</p><p>Tu pre-reserva <strong>%v</strong> quedó confirmada. Te esperamos.</p>",
			data["full_name"], data["code"])
	case "agenda_reservation_created":
		subject = fmt.Sprintf("Reserva %v - Agenda de trámites", data["code"])
		body = fmt.Sprintf(
			"<p>Hola %v,</p><p>Tu reserva <strong>%v</strong> quedó registrada para el %v a las %v.</p>"+
				"<p>Si no podés asistir, cancelala desde: /cancelar/%v</p>",
			data["first_name"], data["code"], data["date"], data["time"], data["cancellation_token"])
	default:
		subject = "Notificación"
		body = "<p>Notificación del sistema de reservas.</p>"
	}
	return subject, body
}
