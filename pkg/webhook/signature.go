package webhook

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
	"unicode"
)

// SignedHeader is a parsed signature header.
type SignedHeader struct {
	Timestamp  int64
	Signatures []string
}

// ParseHeader splits a header of the form
//
//	t=1700000000,v1=5257a869...,v1=ee2f...,v0=6ffb...
//
// keeping the timestamp and every signature tagged with scheme. Pairs without
// "=" and unknown keys are ignored. The header is malformed when the timestamp
// is missing or unparseable, or no signature uses scheme.
func ParseHeader(header, scheme string) (*SignedHeader, error) {
	if scheme == "" {
		scheme = DefaultScheme
	}

	h := &SignedHeader{Timestamp: -1}
	for pair := range strings.SplitSeq(header, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok {
			continue
		}
		switch key {
		case "t":
			ts, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: invalid timestamp %q", ErrMalformedHeader, value)
			}
			h.Timestamp = ts
		case scheme:
			h.Signatures = append(h.Signatures, value)
		}
	}

	if h.Timestamp < 0 {
		return nil, fmt.Errorf("%w: missing timestamp", ErrMalformedHeader)
	}
	if len(h.Signatures) == 0 {
		return nil, fmt.Errorf("%w: no %s signatures", ErrMalformedHeader, scheme)
	}
	return h, nil
}

// ComputeSignature returns the hex HMAC-SHA256 of "{timestamp}.{payload}".
func ComputeSignature(timestamp int64, payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(strconv.AppendInt(nil, timestamp, 10))
	mac.Write([]byte{'.'})
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// GenerateHeader signs payload with every secret, producing a header that
// verifies against any one of them. Used to test handlers and to sign
// forwarded events.
func GenerateHeader(payload []byte, ts time.Time, secrets ...string) string {
	timestamp := ts.Unix()

	var b strings.Builder
	b.WriteString("t=")
	b.WriteString(strconv.FormatInt(timestamp, 10))
	for _, secret := range secrets {
		b.WriteString(",")
		b.WriteString(DefaultScheme)
		b.WriteString("=")
		b.WriteString(ComputeSignature(timestamp, payload, secret))
	}
	return b.String()
}

// VerifyHeader checks that header carries a valid signature of payload under
// secret and that its timestamp is within tolerance.
func VerifyHeader(payload []byte, header, secret string, opts ...Option) error {
	o := newOptions(opts)

	if secret == "" {
		return ErrMissingSecret
	}

	signed, err := ParseHeader(header, o.scheme)
	if err != nil {
		return err
	}

	expected := []byte(ComputeSignature(signed.Timestamp, payload, secret))
	matched := false
	for _, candidate := range signed.Signatures {
		// Every candidate is compared so timing does not depend on which one matches.
		if hmac.Equal(expected, []byte(candidate)) {
			matched = true
		}
	}
	if !matched {
		vErr := &VerificationError{Err: ErrNoMatchingSignature}
		if strings.ContainsFunc(secret, unicode.IsSpace) {
			vErr.Hint = "the webhook secret contains whitespace, check it was copied without surrounding spaces or newlines"
		}
		return vErr
	}

	if o.tolerance > 0 {
		age := o.now().Unix() - signed.Timestamp
		if age > int64(o.tolerance/time.Second) {
			return &VerificationError{
				Err:  ErrStaleTimestamp,
				Hint: fmt.Sprintf("signed %ds ago, tolerance is %s", age, o.tolerance),
			}
		}
	}

	return nil
}

// ConstructEvent verifies the signature and decodes the payload into T.
// A verified payload that is not valid JSON fails with
// ErrInvalidPayloadEncoding.
func ConstructEvent[T any](payload []byte, header, secret string, opts ...Option) (T, error) {
	var event T
	if err := VerifyHeader(payload, header, secret, opts...); err != nil {
		return event, err
	}
	if err := json.Unmarshal(payload, &event); err != nil {
		return event, errors.Join(ErrInvalidPayloadEncoding, err)
	}
	return event, nil
}
