// Package mailfile reads email text from plain-text and RFC 5322 (.eml) files.
package mailfile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"
)

// Message is the classifiable content of one email
type Message struct {
	From    string
	Subject string
	Body    string
}

// Text returns the subject and body joined for classification
func (m *Message) Text() string {
	if m.Subject == "" {
		return m.Body
	}
	return m.Subject + "\n\n" + m.Body
}

// Parse reads a MIME message. text/plain parts are preferred; HTML parts are
// used only when the message has no plain text. Attachments are skipped.
func Parse(r io.Reader) (*Message, error) {
	mr, err := mail.CreateReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}
	defer mr.Close()

	msg := &Message{}
	if subject, err := mr.Header.Subject(); err == nil {
		msg.Subject = subject
	}
	if from, err := mr.Header.AddressList("From"); err == nil && len(from) > 0 {
		msg.From = from[0].Address
	}

	var plain, html strings.Builder
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if plain.Len() > 0 || html.Len() > 0 {
				break
			}
			return nil, fmt.Errorf("failed to read message part: %w", err)
		}

		h, ok := part.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}
		contentType, _, _ := h.ContentType()
		switch {
		case strings.HasPrefix(contentType, "text/plain"), contentType == "":
			if _, err := io.Copy(&plain, part.Body); err != nil {
				return nil, fmt.Errorf("failed to read text part: %w", err)
			}
		case strings.HasPrefix(contentType, "text/html"):
			if _, err := io.Copy(&html, part.Body); err != nil {
				return nil, fmt.Errorf("failed to read html part: %w", err)
			}
		}
	}

	msg.Body = plain.String()
	if strings.TrimSpace(msg.Body) == "" {
		msg.Body = html.String()
	}
	return msg, nil
}

// IsSupported reports whether path has an extension ReadFile understands
func IsSupported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".eml":
		return true
	}
	return false
}

// Load reads a message from a file. .eml files are parsed as MIME messages;
// anything else becomes the body verbatim, with no sender or subject.
func Load(path string) (*Message, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if strings.ToLower(filepath.Ext(path)) != ".eml" {
		return &Message{Body: string(data)}, nil
	}
	msg, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return msg, nil
}

// ReadFile returns the classifiable text of a file
func ReadFile(path string) (string, error) {
	msg, err := Load(path)
	if err != nil {
		return "", err
	}
	return msg.Text(), nil
}

// ListDir returns the supported files directly inside dir, sorted by name
func ListDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !IsSupported(e.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}
