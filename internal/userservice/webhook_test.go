package userservice

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestVerifySignature(t *testing.T) {
	secret := "whsec_test"
	body := []byte(`{"type":"subscription.renewed"}`)
	now := time.Now()
	ts := now.Unix()
	sig := Sign(secret, ts, body)

	testCases := []struct {
		name      string
		secret    string
		signature string
		timestamp string
		body      []byte
		err       error
	}{
		{name: "valid", secret: secret, signature: sig, timestamp: strconv.FormatInt(ts, 10), body: body},
		{name: "wrong secret", secret: "other", signature: sig, timestamp: strconv.FormatInt(ts, 10), body: body, err: ErrInvalidSignature},
		{name: "tampered body", secret: secret, signature: sig, timestamp: strconv.FormatInt(ts, 10), body: []byte(`{}`), err: ErrInvalidSignature},
		{name: "bad timestamp", secret: secret, signature: sig, timestamp: "yesterday", body: body, err: ErrInvalidSignature},
		{name: "stale", secret: secret, signature: Sign(secret, ts-600, body), timestamp: strconv.FormatInt(ts-600, 10), body: body, err: ErrStaleTimestamp},
		{name: "future", secret: secret, signature: Sign(secret, ts+600, body), timestamp: strconv.FormatInt(ts+600, 10), body: body, err: ErrStaleTimestamp},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := VerifySignature(tc.secret, tc.signature, tc.timestamp, tc.body, now)
			if tc.err == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.err)
		})
	}
}
