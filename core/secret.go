package core

import "log/slog"

const redacted = "[REDACTED]"

// Secret wraps a sensitive string such as a client secret. The value never
// leaks through fmt verbs, JSON, text marshaling or slog attributes.
//
// Use Expose() where the raw value is genuinely needed (HTTP headers).
//
//	secret := NewSecret("MjU5...")
//	fmt.Println(secret)                 // [REDACTED]
//	slog.Info("creds", "secret", secret) // secret=[REDACTED]
//	secret.Expose()                     // "MjU5..."
type Secret struct {
	value string
}

// NewSecret creates a new Secret from a string value.
func NewSecret(value string) Secret {
	return Secret{value: value}
}

// String implements fmt.Stringer.
func (s Secret) String() string {
	return redacted
}

// GoString implements fmt.GoStringer for %#v.
func (s Secret) GoString() string {
	return "core.Secret{" + redacted + "}"
}

// MarshalJSON returns a redacted JSON string.
func (s Secret) MarshalJSON() ([]byte, error) {
	return []byte(`"` + redacted + `"`), nil
}

// MarshalText returns a redacted text representation (used by YAML encoders).
func (s Secret) MarshalText() ([]byte, error) {
	return []byte(redacted), nil
}

// LogValue implements slog.LogValuer.
func (s Secret) LogValue() slog.Value {
	return slog.StringValue(redacted)
}

// Expose returns the actual secret value.
// Be careful not to log or serialize the returned value.
func (s Secret) Expose() string {
	return s.value
}

// IsEmpty reports whether the secret value is empty.
func (s Secret) IsEmpty() bool {
	return s.value == ""
}
