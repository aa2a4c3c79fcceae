package ingest

import (
	"bytes"
	"io"
	"mime"
	"mime/multipart"
	"net/mail"
	"strings"

	"golang.org/x/text/encoding/ianaindex"
)

// extractTextFromMessage extracts the text content from an email message.
// For multipart messages it collects the text/plain parts.
func extractTextFromMessage(msg *mail.Message) (string, error) {
	contentType := msg.Header.Get("Content-Type")

	if !strings.Contains(strings.ToLower(contentType), "multipart/") {
		bodyBytes, err := io.ReadAll(msg.Body)
		if err != nil {
			return "", err
		}
		return string(bodyBytes), nil
	}

	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil || !strings.HasPrefix(mediaType, "multipart/") {
		bodyBytes, err := io.ReadAll(msg.Body)
		if err != nil {
			return "", err
		}
		return string(bodyBytes), nil
	}

	boundary, ok := params["boundary"]
	if !ok {
		bodyBytes, err := io.ReadAll(msg.Body)
		if err != nil {
			return "", err
		}
		return string(bodyBytes), nil
	}

	mr := multipart.NewReader(msg.Body, boundary)

	var textContent bytes.Buffer
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Return whatever text was collected before the malformed part
			break
		}

		partContentType := strings.ToLower(part.Header.Get("Content-Type"))
		if strings.Contains(partContentType, "text/plain") {
			partBytes, err := io.ReadAll(part)
			if err != nil {
				continue
			}
			textContent.Write(partBytes)
			textContent.WriteString("\n")
		}
		// Nested multiparts and attachments are skipped
	}

	if textContent.Len() > 0 {
		return textContent.String(), nil
	}
	return "[No text content found in multipart message]", nil
}

// headerDecoder decodes RFC 2047 encoded words, resolving charsets
// through the IANA index so non-UTF-8 subjects survive
var headerDecoder = mime.WordDecoder{
	CharsetReader: func(charset string, input io.Reader) (io.Reader, error) {
		enc, err := ianaindex.MIME.Encoding(charset)
		if err != nil || enc == nil {
			return input, nil
		}
		return enc.NewDecoder().Reader(input), nil
	},
}

// decodeEncodedHeader decodes an encoded header value, returning the raw
// value when decoding fails
func decodeEncodedHeader(value string) string {
	decoded, err := headerDecoder.DecodeHeader(value)
	if err != nil {
		return value
	}
	return decoded
}
