package service

import (
	"bytes"
	"html/template"
)

// mailData feeds every email template.
type mailData struct {
	ID            string
	GuestName     string
	GuestEmail    string
	HotelName     string
	RoomNumber    string
	CheckIn       string
	CheckOut      string
	Total         string
	PaymentStatus string
	ReviewURL     string
	Confirmed     bool
}

var mailTemplates = template.Must(template.New("mail").Parse(`
{{define "confirmation"}}<h1>{{if .Confirmed}}¡Su reserva ha sido confirmada!{{else}}¡Hemos recibido su reserva!{{end}}</h1>
<p>Estimado/a {{.GuestName}},</p>
<p>{{if .Confirmed}}Le informamos que su reserva ha sido confirmada:{{else}}Su reserva ha sido registrada y está pendiente de confirmación:{{end}}</p>
<ul>
  <li><strong>Número de reserva:</strong> {{.ID}}</li>
  <li><strong>Fecha de entrada:</strong> {{.CheckIn}}</li>
  <li><strong>Fecha de salida:</strong> {{.CheckOut}}</li>
  <li><strong>Precio total:</strong> ${{.Total}}</li>
</ul>
<p>Si tiene alguna duda o necesita hacer cambios en su reserva, por favor póngase en contacto con nosotros.</p>
<p>¡Esperamos que disfrute de su estancia!</p>{{end}}

{{define "cancellation_guest"}}<h1>Su reserva ha sido cancelada</h1>
<p>Estimado/a {{.GuestName}},</p>
<p>Le informamos que su reserva ha sido cancelada:</p>
<ul>
  <li><strong>Número de reserva:</strong> {{.ID}}</li>
  <li><strong>Hotel:</strong> {{.HotelName}}</li>
  <li><strong>Fecha de entrada que tenía programada:</strong> {{.CheckIn}}</li>
  <li><strong>Fecha de salida que tenía programada:</strong> {{.CheckOut}}</li>
  <li><strong>Estado del pago:</strong> {{.PaymentStatus}}</li>
</ul>
<p>Si esta cancelación no fue solicitada por usted o tiene alguna pregunta, por favor póngase en contacto con nosotros.</p>{{end}}

{{define "cancellation_hotel"}}<h1>Una reserva ha sido cancelada</h1>
<p>Le informamos que la siguiente reserva ha sido cancelada:</p>
<ul>
  <li><strong>Número de reserva:</strong> {{.ID}}</li>
  <li><strong>Cliente:</strong> {{.GuestName}}</li>
  <li><strong>Email del cliente:</strong> {{.GuestEmail}}</li>
  <li><strong>Fecha de entrada que tenía programada:</strong> {{.CheckIn}}</li>
  <li><strong>Fecha de salida que tenía programada:</strong> {{.CheckOut}}</li>
  <li><strong>Estado del pago:</strong> {{.PaymentStatus}}</li>
</ul>
<p>La habitación ha sido marcada como disponible y puede ser reservada nuevamente.</p>{{end}}

{{define "checkin"}}<h1>¡Bienvenido a {{.HotelName}}!</h1>
<p>Estimado/a {{.GuestName}},</p>
<p>Su check-in ha sido completado exitosamente:</p>
<ul>
  <li><strong>Número de reserva:</strong> {{.ID}}</li>
  <li><strong>Habitación:</strong> {{.RoomNumber}}</li>
  <li><strong>Fecha de salida programada:</strong> {{.CheckOut}}</li>
</ul>
<p>Esperamos que disfrute de su estancia. Si necesita alguna asistencia, no dude en contactar a la recepción.</p>{{end}}

{{define "payment_guest"}}<h1>Confirmación de Pago</h1>
<p>Estimado/a {{.GuestName}},</p>
<p>Le confirmamos que hemos recibido el pago de su reserva:</p>
<ul>
  <li><strong>Número de reserva:</strong> {{.ID}}</li>
  <li><strong>Hotel:</strong> {{.HotelName}}</li>
  <li><strong>Monto:</strong> ${{.Total}}</li>
  <li><strong>Estado del pago:</strong> Pagado</li>
</ul>
<p>Gracias por su preferencia.</p>{{end}}

{{define "payment_hotel"}}<h1>Pago de Reserva Recibido</h1>
<p>Se ha recibido el pago de la siguiente reserva:</p>
<ul>
  <li><strong>Número de reserva:</strong> {{.ID}}</li>
  <li><strong>Cliente:</strong> {{.GuestName}}</li>
  <li><strong>Monto:</strong> ${{.Total}}</li>
</ul>{{end}}

{{define "checkout"}}<h1>¡Gracias por hospedarse con nosotros!</h1>
<p>Estimado/a {{.GuestName}},</p>
<p>Su check-out ha sido procesado correctamente. Esperamos que haya disfrutado de su estancia en {{.HotelName}}.</p>
<p>Nos encantaría conocer su opinión sobre su experiencia. Sus comentarios son muy valiosos para nosotros y nos ayudan a mejorar nuestro servicio.</p>
<p>Por favor, tómese un momento para dejar una reseña en nuestra plataforma:</p>
<p style="text-align: center;">
  <a href="{{.ReviewURL}}" style="background-color: #4CAF50; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px;">Dejar una reseña</a>
</p>
<p>¡Esperamos tener el placer de recibirle nuevamente en el futuro!</p>{{end}}
`))

// Subjects per template.
var mailSubjects = map[string]string{
	"confirmation":       "Confirmación de Reserva",
	"cancellation_guest": "Cancelación de Reserva",
	"cancellation_hotel": "Notificación de Cancelación de Reserva",
	"checkin":            "Check-in Confirmado",
	"payment_guest":      "Pago Confirmado",
	"payment_hotel":      "Pago de Reserva Confirmado",
	"checkout":           "Gracias por su estancia - ¿Podría dejarnos su opinión?",
}

func renderMail(name string, data mailData) (string, error) {
	var buf bytes.Buffer
	if err := mailTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
