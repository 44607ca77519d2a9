package notification

import (
	"bytes"
	"context"
	"html/template"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/smallbiznis/reservo/internal/events"
	"github.com/smallbiznis/reservo/internal/providers/email"
)

var confirmationTmpl = template.Must(template.New("booking_confirmed").Parse(`
<p>Hi {{.CustomerName}},</p>
<p>Your booking for <strong>{{.EventDate}}</strong> is confirmed.</p>
<p>Package: {{.PackageTitle}}</p>
{{- if .AddOnTitles}}
<p>Add-ons:</p>
<ul>
{{- range .AddOnTitles}}
  <li>{{.}}</li>
{{- end}}
</ul>
{{- end}}
<p>Total paid: {{.Total}} {{.Currency}}</p>
`))

type Params struct {
	fx.In

	Log   *zap.Logger
	Bus   *events.Bus
	Email email.Provider
}

type Notifier struct {
	log   *zap.Logger
	email email.Provider
}

func New(p Params) *Notifier {
	return &Notifier{
		log:   p.Log.Named("notification"),
		email: p.Email,
	}
}

// Register subscribes the notifier to booking events. Email failures
// are logged by the bus and never affect the booking itself.
func Register(n *Notifier, bus *events.Bus) {
	bus.SubscribeBookingPaid(n.SendBookingConfirmation)
}

func (n *Notifier) SendBookingConfirmation(ctx context.Context, payload events.BookingPaidPayload) error {
	var body bytes.Buffer
	if err := confirmationTmpl.Execute(&body, payload); err != nil {
		return err
	}

	subject := "Your booking for " + payload.EventDate.String() + " is confirmed"
	if err := n.email.Send(ctx, []string{payload.Email}, subject, body.String()); err != nil {
		return err
	}

	n.log.Info("booking confirmation sent",
		zap.String("booking_id", payload.BookingID.String()),
		zap.String("tenant_id", payload.TenantID.String()),
	)
	return nil
}

var Module = fx.Module("notification",
	fx.Provide(New),
	fx.Invoke(Register),
)
