package stripe

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/chris/marketplace-escrow/pkg/gateway"
	stripego "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	t.Run("Server Error Is Retryable", func(t *testing.T) {
		err := classify(gateway.OpCapture, &stripego.Error{HTTPStatusCode: 502, Type: stripego.ErrorTypeAPI})

		assert.True(t, gateway.IsRetryable(err))
		assert.False(t, gateway.IsOutcomeUnknown(err))
	})

	t.Run("Rate Limit Is Retryable", func(t *testing.T) {
		err := classify(gateway.OpCapture, &stripego.Error{HTTPStatusCode: 429})

		assert.True(t, gateway.IsRetryable(err))
	})

	t.Run("Card Error Is Permanent", func(t *testing.T) {
		err := classify(gateway.OpAuthorize, &stripego.Error{HTTPStatusCode: 402, Type: stripego.ErrorTypeCard, Code: stripego.ErrorCodeCardDeclined})

		var gerr *gateway.Error
		require.True(t, errors.As(err, &gerr))
		assert.False(t, gerr.Retryable)
		assert.Equal(t, "card_declined", gerr.Code)
	})

	t.Run("Timeout Leaves Outcome Unknown", func(t *testing.T) {
		err := classify(gateway.OpRefund, context.DeadlineExceeded)

		assert.True(t, gateway.IsOutcomeUnknown(err))
		assert.True(t, gateway.IsRetryable(err))
	})
}

func TestAuthorize(t *testing.T) {
	var gotKey, gotCapture string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotKey = r.Header.Get("Idempotency-Key")
		gotCapture = r.PostForm.Get("capture_method")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"pi_123","object":"payment_intent","client_secret":"pi_123_secret_abc","status":"requires_payment_method","amount":10000}`))
	}))
	defer server.Close()

	adapter := New(Options{SecretKey: "sk_test_123", BaseURL: server.URL, HTTPClient: server.Client()})

	auth, err := adapter.Authorize(context.Background(), gateway.AuthorizeRequest{
		Amount:         10000,
		Currency:       "usd",
		IdempotencyKey: gateway.IdempotencyKey("tx-1", gateway.OpAuthorize, 0),
	})

	require.NoError(t, err)
	assert.Equal(t, "pi_123", auth.ID)
	assert.Equal(t, "pi_123_secret_abc", auth.ClientSecret)
	assert.Equal(t, "escrow:tx-1:authorize:0", gotKey)
	assert.Equal(t, "manual", gotCapture)
}

func TestRetrieve(t *testing.T) {
	reply := func(multicapture string) string {
		return `{"id":"pi_123","object":"payment_intent","status":"requires_capture","amount":5000,"amount_capturable":5000,` +
			`"latest_charge":{"id":"ch_123","object":"charge","amount_captured":0,"amount_refunded":0,` +
			`"payment_method_details":{"type":"card","card":{"multicapture":{"status":"` + multicapture + `"}}}}}`
	}

	for status, want := range map[string]bool{"available": true, "unavailable": false} {
		t.Run("Multicapture "+status, func(t *testing.T) {
			var gotExpand string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotExpand = r.URL.Query().Get("expand[0]")
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(reply(status)))
			}))
			defer server.Close()

			adapter := New(Options{SecretKey: "sk_test_123", BaseURL: server.URL, HTTPClient: server.Client()})

			snap, err := adapter.Retrieve(context.Background(), "pi_123")

			require.NoError(t, err)
			assert.Equal(t, "latest_charge", gotExpand)
			assert.Equal(t, "ch_123", snap.ChargeID)
			assert.Equal(t, int64(5000), snap.AmountCapturable)
			assert.Equal(t, want, snap.Multicapture)
		})
	}
}

func TestVerifier(t *testing.T) {
	secret := "whsec_test"
	v := NewVerifier(secret)

	sign := func(payload string) *webhook.SignedPayload {
		return webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
			Payload:   []byte(payload),
			Secret:    secret,
			Timestamp: time.Now(),
		})
	}

	t.Run("Success", func(t *testing.T) {
		signed := sign(`{"id":"evt_1","object":"event","type":"payment_intent.canceled","data":{"object":{"id":"pi_9","object":"payment_intent","status":"canceled","amount":500}}}`)

		event, err := v.Verify(signed.Payload, signed.Header)

		require.NoError(t, err)
		assert.Equal(t, gateway.EventAuthorizationCanceled, event.Type)
		assert.Equal(t, "pi_9", event.ObjectID)
		assert.Equal(t, "pi_9", event.AuthorizationID)
		assert.Equal(t, int64(500), event.Amount)
	})

	t.Run("Charge Refunded Uses Payment Intent", func(t *testing.T) {
		signed := sign(`{"id":"evt_2","object":"event","type":"charge.refunded","data":{"object":{"id":"ch_1","object":"charge","payment_intent":"pi_9","amount_refunded":300}}}`)

		event, err := v.Verify(signed.Payload, signed.Header)

		require.NoError(t, err)
		assert.Equal(t, "ch_1", event.ObjectID)
		assert.Equal(t, "pi_9", event.AuthorizationID)
		assert.Equal(t, int64(300), event.AmountRefunded)
	})

	t.Run("Bad Signature Fails", func(t *testing.T) {
		signed := sign(`{"id":"evt_3","object":"event","type":"payment_intent.canceled","data":{"object":{"id":"pi_9"}}}`)

		_, err := v.Verify(signed.Payload, "t=1,v1=deadbeef")

		assert.Error(t, err)
	})
}
