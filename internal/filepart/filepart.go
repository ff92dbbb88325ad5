// Package filepart converts staged file attachments into message parts.
package filepart

import (
	"encoding/base64"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/atelier-dev/atelier/internal/chat"
	"github.com/atelier-dev/atelier/internal/session"
)

// textLikePrefixes lists MIME types treated as text beyond text/*.
var textLikeMIME = map[string]bool{
	"application/json":       true,
	"application/xml":        true,
	"application/yaml":       true,
	"application/javascript": true,
	"application/x-sh":       true,
}

// ToPart converts one attachment into a message part. Text-like files
// become a text part wrapped in a document boundary marker that embeds
// the original file name, so the model can tell documents apart.
// Everything else becomes inline base64 data with its MIME type.
func ToPart(att session.Attachment) (chat.Part, error) {
	if len(att.Data) == 0 {
		return chat.Part{}, fmt.Errorf("attachment %q is empty", att.Name)
	}
	if isTextLike(att) {
		return chat.Part{Text: wrapDocument(att.Name, string(att.Data))}, nil
	}
	return chat.Part{
		InlineData: &chat.InlineData{
			MIMEType: att.MIMEType,
			Data:     base64.StdEncoding.EncodeToString(att.Data),
		},
	}, nil
}

// ToParts converts all attachments, failing on the first bad one.
func ToParts(atts []session.Attachment) ([]chat.Part, error) {
	parts := make([]chat.Part, 0, len(atts))
	for _, att := range atts {
		part, err := ToPart(att)
		if err != nil {
			return nil, err
		}
		parts = append(parts, part)
	}
	return parts, nil
}

func isTextLike(att session.Attachment) bool {
	if strings.HasPrefix(att.MIMEType, "text/") || textLikeMIME[att.MIMEType] {
		return true
	}
	// Unknown MIME type: treat valid UTF-8 as text.
	return att.MIMEType == "" && utf8.Valid(att.Data)
}

func wrapDocument(name, content string) string {
	return fmt.Sprintf("--- document: %s ---\n%s\n--- end document: %s ---", name, content, name)
}
