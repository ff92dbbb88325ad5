package filepart

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/atelier-dev/atelier/internal/session"
)

func TestToPartTextFile(t *testing.T) {
	att := session.Attachment{Name: "notes.md", MIMEType: "text/markdown", Data: []byte("# Notes\nhello")}

	part, err := ToPart(att)
	if err != nil {
		t.Fatalf("ToPart failed: %v", err)
	}
	if part.InlineData != nil {
		t.Fatal("text file produced inline data part")
	}
	if !strings.Contains(part.Text, "--- document: notes.md ---") {
		t.Errorf("boundary marker missing file name: %q", part.Text)
	}
	if !strings.Contains(part.Text, "# Notes\nhello") {
		t.Errorf("document content missing: %q", part.Text)
	}
}

func TestToPartBinaryFile(t *testing.T) {
	raw := []byte{0x89, 0x50, 0x4E, 0x47, 0x00, 0x01}
	att := session.Attachment{Name: "logo.png", MIMEType: "image/png", Data: raw}

	part, err := ToPart(att)
	if err != nil {
		t.Fatalf("ToPart failed: %v", err)
	}
	if part.InlineData == nil {
		t.Fatal("binary file did not produce inline data part")
	}
	if part.InlineData.MIMEType != "image/png" {
		t.Errorf("mime type = %q, want image/png", part.InlineData.MIMEType)
	}
	decoded, err := base64.StdEncoding.DecodeString(part.InlineData.Data)
	if err != nil {
		t.Fatalf("data is not valid base64: %v", err)
	}
	if string(decoded) != string(raw) {
		t.Error("base64 payload does not round-trip to original bytes")
	}
}

func TestToPartUnknownMIMEFallsBackToUTF8Check(t *testing.T) {
	att := session.Attachment{Name: "config", Data: []byte("key = value")}
	part, err := ToPart(att)
	if err != nil {
		t.Fatalf("ToPart failed: %v", err)
	}
	if part.InlineData != nil {
		t.Error("valid UTF-8 with no MIME type should be treated as text")
	}
}

func TestToPartEmptyAttachment(t *testing.T) {
	if _, err := ToPart(session.Attachment{Name: "empty.txt"}); err == nil {
		t.Error("empty attachment should fail")
	}
}

func TestToPartsFailsFast(t *testing.T) {
	atts := []session.Attachment{
		{Name: "a.txt", MIMEType: "text/plain", Data: []byte("a")},
		{Name: "empty"},
	}
	if _, err := ToParts(atts); err == nil {
		t.Error("ToParts should fail on the empty attachment")
	}
}
