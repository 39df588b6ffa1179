package mailer

import (
	"context"
	"testing"
	"time"

	"foodcart_back_end/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	sent []Message
}

func (r *recordingSender) Send(_ context.Context, m Message) error {
	r.sent = append(r.sent, m)
	return nil
}

func TestMailer_SendOTP(t *testing.T) {
	rec := &recordingSender{}
	m := New(rec)

	require.NoError(t, m.SendOTP(context.Background(), "jo@example.com", "Jo <script>", "123456", 10*time.Minute))
	require.Len(t, rec.sent, 1)

	msg := rec.sent[0]
	assert.Equal(t, "jo@example.com", msg.To)
	assert.Contains(t, msg.HTML, "123456")
	assert.Contains(t, msg.HTML, "10 minutes")
	assert.Contains(t, msg.HTML, "Jo &lt;script&gt;")
}

func TestMailer_OwnerDecisions(t *testing.T) {
	rec := &recordingSender{}
	m := New(rec)
	req := &models.OwnerRequest{Name: "Jo", Email: "jo@example.com", RestaurantName: "Luigi's"}

	require.NoError(t, m.SendOwnerApproved(context.Background(), req))
	require.NoError(t, m.SendOwnerRejected(context.Background(), req))

	require.Len(t, rec.sent, 2)
	assert.Contains(t, rec.sent[0].HTML, "approved")
	assert.Contains(t, rec.sent[1].HTML, "not approved")
}

func TestMailer_SendOrderStatus(t *testing.T) {
	rec := &recordingSender{}
	m := New(rec)

	event := models.OrderEvent{
		OrderID:       "o1",
		CustomerEmail: "jo@example.com",
		From:          models.StatusPreparing,
		To:            models.StatusOutForDelivery,
		At:            time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, m.SendOrderStatus(context.Background(), event))
	require.Len(t, rec.sent, 1)
	assert.Equal(t, "Your order is out for delivery", rec.sent[0].Subject)

	event.CustomerEmail = ""
	require.NoError(t, m.SendOrderStatus(context.Background(), event))
	assert.Len(t, rec.sent, 1)
}

func TestLogSender(t *testing.T) {
	assert.NoError(t, NewLogSender(zerolog.Nop()).Send(context.Background(), Message{To: "x@example.com"}))
}
