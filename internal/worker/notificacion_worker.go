package worker

// notificacion_worker.go
// Emails a supervisor when one of their agents submits a lead.

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
)

// LeadNotificacionPayload is the job payload sent to QueueNotificaciones.
type LeadNotificacionPayload struct {
	ToEmail      string  `json:"to_email"`
	ToNombre     string  `json:"to_nombre"`
	LeadID       string  `json:"lead_id"`
	Cliente      string  `json:"cliente"`
	AgenteNombre string  `json:"agente_nombre"`
	Team         string  `json:"team"`
	Producto     string  `json:"producto"`
	TipoServicio string  `json:"tipo_servicio"`
	DiaVenta     string  `json:"dia_venta"`
	Status       string  `json:"status"`
	Puntaje      float64 `json:"puntaje"`
}

// Sender is the outbound mail transport (infra.Mailer in production).
type Sender interface {
	Send(to, subject, text, html string) error
}

type NotificacionWorker struct {
	mailer Sender
}

func NewNotificacionWorker(mailer Sender) *NotificacionWorker {
	return &NotificacionWorker{mailer: mailer}
}

// Process sends the notification. Malformed payloads are dropped without retry.
func (w *NotificacionWorker) Process(_ context.Context, raw json.RawMessage) error {
	var p LeadNotificacionPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		log.Error().Err(err).Msg("notificacion_worker: invalid payload")
		return nil
	}
	if strings.TrimSpace(p.ToEmail) == "" {
		log.Warn().Str("lead_id", p.LeadID).Msg("notificacion_worker: empty to_email, skipping")
		return nil
	}

	subject, body := renderLeadNotificacion(p)
	if err := w.mailer.Send(p.ToEmail, subject, body, ""); err != nil {
		log.Error().Err(err).Str("to", p.ToEmail).Str("lead_id", p.LeadID).Msg("notificacion_worker: send failed")
		return err
	}
	log.Info().Str("to", p.ToEmail).Str("lead_id", p.LeadID).Msg("notificacion_worker: notification sent")
	return nil
}

func renderLeadNotificacion(p LeadNotificacionPayload) (string, string) {
	subject := fmt.Sprintf("Nueva venta de %s: %s", p.AgenteNombre, p.Cliente)

	var b strings.Builder
	saludo := p.ToNombre
	if saludo == "" {
		saludo = "supervisor"
	}
	fmt.Fprintf(&b, "Hola %s,\n\n", saludo)
	fmt.Fprintf(&b, "%s registró una venta", p.AgenteNombre)
	if p.Team != "" {
		fmt.Fprintf(&b, " (%s)", p.Team)
	}
	b.WriteString(".\n\n")
	fmt.Fprintf(&b, "Cliente: %s\n", p.Cliente)
	if p.Producto != "" {
		fmt.Fprintf(&b, "Producto: %s\n", p.Producto)
	}
	if p.TipoServicio != "" {
		fmt.Fprintf(&b, "Servicio: %s\n", p.TipoServicio)
	}
	fmt.Fprintf(&b, "Fecha de venta: %s\n", p.DiaVenta)
	fmt.Fprintf(&b, "Estado: %s\n", p.Status)
	fmt.Fprintf(&b, "Puntaje: %g\n", p.Puntaje)
	return subject, b.String()
}
