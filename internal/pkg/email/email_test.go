package email

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendPasswordResetEmail_LogsWithoutSMTP(t *testing.T) {
	var out bytes.Buffer
	svc := NewEmailService(SMTPConfig{Host: "smtp.example.com"}, zerolog.New(&out))

	err := svc.SendPasswordResetEmail("student@sims.edu", "Student", "http://localhost:3000/reset-password?token=abc")
	require.NoError(t, err)
	assert.Contains(t, out.String(), "reset-password?token=abc")
	assert.Contains(t, out.String(), "student@sims.edu")
}

func TestBuildMessage(t *testing.T) {
	svc := NewEmailService(SMTPConfig{FromName: "SIMS", FromEmail: "no-reply@sims.edu"}, zerolog.Nop())
	msg := svc.buildMessage("a@sims.edu", "Hi", "<p>x</p>")

	headers, body, found := strings.Cut(msg, "\r\n\r\n")
	require.True(t, found)
	assert.Equal(t, "<p>x</p>", body)
	assert.Contains(t, headers, "From: SIMS <no-reply@sims.edu>")
	assert.Contains(t, headers, "To: a@sims.edu")
	assert.True(t, strings.HasPrefix(headers, "Content-Type:"))
}

func TestGenerateToken(t *testing.T) {
	a, err := GenerateToken(32)
	require.NoError(t, err)
	b, err := GenerateToken(32)
	require.NoError(t, err)

	assert.Len(t, a, 32)
	assert.NotEqual(t, a, b)
	for _, c := range a {
		assert.True(t, strings.ContainsRune(tokenChars, c))
	}
}
