package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// DomainAction is the domain prefix for action record identity.
// The version suffix leaves room for a future algorithm migration.
const DomainAction = "todoflux/action/v1"

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ActionID computes the content-addressed ID of an action stamped with seq.
// The same action dispatched twice gets two IDs because seq differs.
func ActionID(a Action, seq int64) (string, error) {
	canonical, err := MarshalCanonical(map[string]any{
		"action_type": string(a.Type),
		"seq":         seq,
		"text":        a.Text,
	})
	if err != nil {
		return "", fmt.Errorf("ActionID: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainAction, canonical), nil
}

// MustActionID is like ActionID but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustActionID(a Action, seq int64) string {
	id, err := ActionID(a, seq)
	if err != nil {
		panic(err)
	}
	return id
}
