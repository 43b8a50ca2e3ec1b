package extract

import (
	"encoding/base64"
	"errors"
	"strings"

	"github.com/NATEHSIAO/pdf-invoice/core/port/out"
)

// ErrUnsupportedAttachment is returned when an attachment envelope carries
// neither provider payload key.
var ErrUnsupportedAttachment = errors.New("unsupported attachment format")

// StandardizeAttachment converts a provider attachment envelope to raw PDF
// bytes. Which payload key is populated, not its contents, decides the
// decoding: Content is standard base64 (Microsoft Graph), Data is URL-safe
// base64 (Gmail). An envelope with neither is unsupported.
func StandardizeAttachment(env *out.AttachmentEnvelope) ([]byte, error) {
	switch {
	case env.Content != "":
		return DecodeStandard(env.Content)
	case env.Data != "":
		return DecodeURLSafe(env.Data)
	default:
		return nil, ErrUnsupportedAttachment
	}
}

// DecodeStandard decodes a Microsoft Graph attachment payload, which is
// standard base64.
func DecodeStandard(payload string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(strings.TrimSpace(payload))
}

// DecodeURLSafe decodes a Gmail attachment payload, which is URL-safe base64.
// Gmail omits padding but some intermediaries re-add it, so padding is trimmed
// before decoding.
func DecodeURLSafe(payload string) ([]byte, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(payload), "=")
	return base64.RawURLEncoding.DecodeString(trimmed)
}
