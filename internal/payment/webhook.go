package payment

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
)

// EventCheckoutCompleted is the only event type acted on; everything else is
// acknowledged and ignored.
const EventCheckoutCompleted = "checkout.session.completed"

// SignatureTolerance bounds how stale a signed event timestamp may be.
const SignatureTolerance = 5 * time.Minute

var (
	ErrMissingSignature = errors.New("missing webhook signature header")
	ErrBadSignature     = errors.New("webhook signature verification failed")
	ErrSignatureExpired = errors.New("webhook signature timestamp outside tolerance")
)

// Event is an inbound provider event envelope.
type Event struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

// Session decodes the event payload object as a checkout session.
func (e *Event) Session() (*Session, error) {
	var s Session
	if err := json.Unmarshal(e.Data.Object, &s); err != nil {
		return nil, fmt.Errorf("decode event session object: %w", err)
	}
	return &s, nil
}

// ParseEvent verifies the signature header against the signing secret and
// decodes the event. Signature failure means the payload is never parsed.
func ParseEvent(payload []byte, sigHeader, secret string) (*Event, error) {
	if err := VerifySignature(payload, sigHeader, secret, time.Now()); err != nil {
		return nil, err
	}

	var event Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("decode webhook event: %w", err)
	}
	return &event, nil
}

// VerifySignature checks the provider's "t=<unix>,v1=<hex hmac>" header: the
// HMAC-SHA256 of "<t>.<payload>" keyed with the signing secret. Multiple v1
// entries are accepted if any matches.
func VerifySignature(payload []byte, sigHeader, secret string, now time.Time) error {
	if sigHeader == "" {
		return ErrMissingSignature
	}

	var timestamp int64
	var signatures [][]byte
	for _, part := range strings.Split(sigHeader, ",") {
		k, v, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			continue
		}
		switch k {
		case "t":
			ts, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return ErrBadSignature
			}
			timestamp = ts
		case "v1":
			sig, err := hex.DecodeString(v)
			if err != nil {
				continue
			}
			signatures = append(signatures, sig)
		}
	}

	if timestamp == 0 || len(signatures) == 0 {
		return ErrBadSignature
	}

	age := now.Sub(time.Unix(timestamp, 0))
	if age > SignatureTolerance || age < -SignatureTolerance {
		return ErrSignatureExpired
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strconv.FormatInt(timestamp, 10)))
	mac.Write([]byte("."))
	mac.Write(payload)
	expected := mac.Sum(nil)

	for _, sig := range signatures {
		if hmac.Equal(expected, sig) {
			return nil
		}
	}
	return ErrBadSignature
}

// SignPayload produces a valid signature header for the given payload. Used
// by tests and local tooling to emulate the provider.
func SignPayload(payload []byte, secret string, at time.Time) string {
	ts := strconv.FormatInt(at.Unix(), 10)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(ts))
	mac.Write([]byte("."))
	mac.Write(payload)
	return "t=" + ts + ",v1=" + hex.EncodeToString(mac.Sum(nil))
}
