package extract

import (
	"bytes"
	"encoding/base64"
	"testing"

	"github.com/NATEHSIAO/pdf-invoice/core/port/out"
)

func TestStandardizeAttachment(t *testing.T) {
	raw := []byte("%PDF-1.4 fake document body \xfb\xff!")

	tests := []struct {
		name    string
		env     out.AttachmentEnvelope
		want    []byte
		wantErr bool
	}{
		{
			name: "content key decodes as standard base64",
			env:  out.AttachmentEnvelope{Content: base64.StdEncoding.EncodeToString(raw)},
			want: raw,
		},
		{
			name: "data key decodes as url-safe base64",
			env:  out.AttachmentEnvelope{Data: base64.URLEncoding.EncodeToString(raw)},
			want: raw,
		},
		{
			name: "data key without padding",
			env:  out.AttachmentEnvelope{Data: base64.RawURLEncoding.EncodeToString(raw)},
			want: raw,
		},
		{
			name: "content takes precedence when both set",
			env: out.AttachmentEnvelope{
				Content: base64.StdEncoding.EncodeToString(raw),
				Data:    base64.RawURLEncoding.EncodeToString([]byte("other")),
			},
			want: raw,
		},
		{
			name:    "neither key set",
			env:     out.AttachmentEnvelope{Filename: "a.pdf"},
			wantErr: true,
		},
		{
			name:    "content not base64",
			env:     out.AttachmentEnvelope{Content: "%%%not-base64%%%"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := StandardizeAttachment(&tt.env)
			if (err != nil) != tt.wantErr {
				t.Fatalf("StandardizeAttachment() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !bytes.Equal(got, tt.want) {
				t.Errorf("StandardizeAttachment() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStandardizeAttachmentUnsupportedError(t *testing.T) {
	_, err := StandardizeAttachment(&out.AttachmentEnvelope{})
	if err != ErrUnsupportedAttachment {
		t.Errorf("error = %v, want ErrUnsupportedAttachment", err)
	}
}
