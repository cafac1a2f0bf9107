package mailfile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const multipartEmail = "From: Security Team <security@bank.example>\r\n" +
	"To: user@example.com\r\n" +
	"Subject: Verify your account\r\n" +
	"MIME-Version: 1.0\r\n" +
	"Content-Type: multipart/alternative; boundary=\"b1\"\r\n" +
	"\r\n" +
	"--b1\r\n" +
	"Content-Type: text/plain; charset=utf-8\r\n" +
	"\r\n" +
	"Click here immediately to verify your account.\r\n" +
	"--b1\r\n" +
	"Content-Type: text/html; charset=utf-8\r\n" +
	"\r\n" +
	"<p>Click <a href=\"http://bad.example\">here</a></p>\r\n" +
	"--b1--\r\n"

const htmlOnlyEmail = "From: promo@shop.example\r\n" +
	"Subject: Sale\r\n" +
	"MIME-Version: 1.0\r\n" +
	"Content-Type: text/html; charset=utf-8\r\n" +
	"\r\n" +
	"<p>Limited time offer</p>\r\n"

func TestParseMultipartPrefersPlainText(t *testing.T) {
	msg, err := Parse(strings.NewReader(multipartEmail))
	require.NoError(t, err)

	assert.Equal(t, "security@bank.example", msg.From)
	assert.Equal(t, "Verify your account", msg.Subject)
	assert.Contains(t, msg.Body, "Click here immediately")
	assert.NotContains(t, msg.Body, "<p>")
	assert.True(t, strings.HasPrefix(msg.Text(), "Verify your account\n\n"))
}

func TestParseHTMLOnly(t *testing.T) {
	msg, err := Parse(strings.NewReader(htmlOnlyEmail))
	require.NoError(t, err)

	assert.Contains(t, msg.Body, "<p>Limited time offer</p>")
}

func TestReadFileAndListDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.eml"), []byte(multipartEmail), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("plain body"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "c.pdf"), []byte("%PDF"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.txt"), 0o755))

	paths, err := ListDir(dir)
	require.NoError(t, err)
	require.Equal(t, []string{filepath.Join(dir, "a.txt"), filepath.Join(dir, "b.eml")}, paths)

	text, err := ReadFile(paths[0])
	require.NoError(t, err)
	assert.Equal(t, "plain body", text)

	text, err = ReadFile(paths[1])
	require.NoError(t, err)
	assert.Contains(t, text, "Verify your account")
	assert.Contains(t, text, "Click here immediately")
}

func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

func TestLoadKeepsSender(t *testing.T) {
	dir := t.TempDir()
	eml := filepath.Join(dir, "msg.eml")
	txt := filepath.Join(dir, "msg.txt")
	require.NoError(t, os.WriteFile(eml, []byte(multipartEmail), 0o644))
	require.NoError(t, os.WriteFile(txt, []byte("From: someone@example.com\nhello"), 0o644))

	msg, err := Load(eml)
	require.NoError(t, err)
	assert.Equal(t, "security@bank.example", msg.From)

	raw, err := Load(txt)
	require.NoError(t, err)
	assert.Empty(t, raw.From)
	assert.Equal(t, "From: someone@example.com\nhello", raw.Body)
}
