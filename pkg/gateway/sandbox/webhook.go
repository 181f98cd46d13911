package sandbox

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/chris/marketplace-escrow/pkg/gateway"
)

// DefaultTolerance bounds how old a signed notification may be.
const DefaultTolerance = 5 * time.Minute

var (
	ErrMissingSignature = errors.New("missing signature header")
	ErrBadSignature     = errors.New("signature does not match payload")
	ErrStaleSignature   = errors.New("signature timestamp outside tolerance")
)

// Notification is the JSON body of a sandbox webhook.
type Notification struct {
	ID               string `json:"id"`
	Type             string `json:"type"`
	ObjectID         string `json:"object_id"`
	AuthorizationID  string `json:"authorization_id"`
	Status           string `json:"status,omitempty"`
	Amount           int64  `json:"amount,omitempty"`
	AmountCapturable int64  `json:"amount_capturable,omitempty"`
	AmountCaptured   int64  `json:"amount_captured,omitempty"`
	AmountRefunded   int64  `json:"amount_refunded,omitempty"`
}

// Verifier authenticates sandbox notifications signed with a shared secret.
// Header format is "t=<unix seconds>,v1=<hex hmac-sha256 of t.payload>".
type Verifier struct {
	Secret    []byte
	Tolerance time.Duration
	Now       func() time.Time
}

// NewVerifier creates a Verifier with the default tolerance.
func NewVerifier(secret string) *Verifier {
	return &Verifier{Secret: []byte(secret), Tolerance: DefaultTolerance, Now: time.Now}
}

// Sign produces the signature header for payload at ts.
func (v *Verifier) Sign(payload []byte, ts time.Time) string {
	return fmt.Sprintf("t=%d,v1=%s", ts.Unix(), hex.EncodeToString(v.mac(ts.Unix(), payload)))
}

// Verify checks the signature header and decodes the notification.
func (v *Verifier) Verify(payload []byte, header string) (*gateway.Event, error) {
	if header == "" {
		return nil, ErrMissingSignature
	}
	var ts int64
	var sigs [][]byte
	for _, part := range strings.Split(header, ",") {
		k, val, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch k {
		case "t":
			parsed, err := strconv.ParseInt(val, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: bad timestamp", ErrBadSignature)
			}
			ts = parsed
		case "v1":
			if sig, err := hex.DecodeString(val); err == nil {
				sigs = append(sigs, sig)
			}
		}
	}
	if ts == 0 || len(sigs) == 0 {
		return nil, ErrMissingSignature
	}

	expected := v.mac(ts, payload)
	matched := false
	for _, sig := range sigs {
		if hmac.Equal(sig, expected) {
			matched = true
			break
		}
	}
	if !matched {
		return nil, ErrBadSignature
	}
	if v.Tolerance > 0 {
		age := v.now().Sub(time.Unix(ts, 0))
		if age > v.Tolerance || age < -v.Tolerance {
			return nil, ErrStaleSignature
		}
	}

	var n Notification
	if err := json.Unmarshal(payload, &n); err != nil {
		return nil, fmt.Errorf("%w: %v", gateway.ErrMalformedEvent, err)
	}
	if n.ID == "" || n.Type == "" {
		return nil, fmt.Errorf("%w: id and type are required", gateway.ErrMalformedEvent)
	}
	objectID := n.ObjectID
	if objectID == "" {
		objectID = n.AuthorizationID
	}
	return &gateway.Event{
		ID:               n.ID,
		Type:             n.Type,
		ObjectID:         objectID,
		AuthorizationID:  n.AuthorizationID,
		Status:           n.Status,
		Amount:           n.Amount,
		AmountCapturable: n.AmountCapturable,
		AmountCaptured:   n.AmountCaptured,
		AmountRefunded:   n.AmountRefunded,
	}, nil
}

func (v *Verifier) mac(ts int64, payload []byte) []byte {
	m := hmac.New(sha256.New, v.Secret)
	fmt.Fprintf(m, "%d.", ts)
	m.Write(payload)
	return m.Sum(nil)
}

func (v *Verifier) now() time.Time {
	if v.Now != nil {
		return v.Now()
	}
	return time.Now()
}
