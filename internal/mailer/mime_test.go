package mailer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestBuildMIMEPlainText(t *testing.T) {
	raw := string(BuildMIME("from@example.com", "to@example.com", Message{
		Subject: "Hello",
		Body:    "Hi Alice",
	}))

	for _, want := range []string{
		"From: from@example.com\r\n",
		"To: to@example.com\r\n",
		"Content-Type: text/plain; charset=UTF-8\r\n",
		"Hi Alice",
	} {
		if !strings.Contains(raw, want) {
			t.Errorf("message missing %q:\n%s", want, raw)
		}
	}
	if strings.Contains(raw, "multipart/mixed") {
		t.Error("plain message should not be multipart")
	}
}

func TestBuildMIMEWithAttachment(t *testing.T) {
	raw := string(BuildMIME("from@example.com", "to@example.com", Message{
		Subject: "Report",
		Body:    "See attached",
		Attachments: []Attachment{
			{Filename: "report.pdf", ContentType: "application/pdf", Data: []byte("%PDF-1.4 fake")},
		},
	}))

	for _, want := range []string{
		"Content-Type: multipart/mixed; boundary=",
		"Content-Disposition: attachment; filename=\"report.pdf\"",
		"Content-Transfer-Encoding: base64",
		"See attached",
	} {
		if !strings.Contains(raw, want) {
			t.Errorf("message missing %q:\n%s", want, raw)
		}
	}
	// Closing boundary marker.
	if !strings.Contains(raw, "--\r\n") {
		t.Error("message missing closing boundary")
	}
}

func TestEncodeBase64LinesWrapsAt76(t *testing.T) {
	encoded := encodeBase64Lines(make([]byte, 200))
	for _, line := range strings.Split(strings.TrimRight(encoded, "\r\n"), "\r\n") {
		if len(line) > 76 {
			t.Errorf("line exceeds 76 chars: %d", len(line))
		}
	}
}

func TestLoadAttachments(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}

	attachments, err := LoadAttachments([]string{path})
	if err != nil {
		t.Fatal(err)
	}
	if len(attachments) != 1 {
		t.Fatalf("expected 1 attachment, got %d", len(attachments))
	}
	att := attachments[0]
	if att.Filename != "notes.txt" || string(att.Data) != "hello" {
		t.Errorf("unexpected attachment: %+v", att)
	}
	if !strings.HasPrefix(att.ContentType, "text/plain") {
		t.Errorf("content type = %q", att.ContentType)
	}
}

func TestLoadAttachmentsMissingFile(t *testing.T) {
	if _, err := LoadAttachments([]string{filepath.Join(t.TempDir(), "gone.txt")}); err == nil {
		t.Fatal("expected error for missing file")
	}
}
