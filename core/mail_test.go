package core

import (
	"net/mail"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appfs "github.com/trezcool/edusite/fs"
)

func TestEmailMessage_Render(t *testing.T) {
	require.NoError(t, ParseEmailTemplates(appfs.FS, true))

	msg := &EmailMessage{
		To:           []mail.Address{{Address: "staff@test.local"}},
		Subject:      "New contact message",
		TemplateName: "contact_received",
		TemplateData: map[string]string{
			"Name":    "Jane Doe",
			"Email":   "jane@test.local",
			"Phone":   "0123456789",
			"Subject": "Fees",
			"Message": "How much is the Go course?",
		},
	}
	require.NoError(t, msg.Render("EduSite", "http://edusite.test"))

	assert.True(t, msg.HasContent())
	assert.Contains(t, msg.TextContent, "Name: Jane Doe")
	assert.Contains(t, msg.TextContent, "How much is the Go course?")
	assert.Contains(t, msg.TextContent, "http://edusite.test")
	assert.Contains(t, msg.HTMLContent, "mailto:jane@test.local")
}

func TestEmailMessage_Render_unknownTemplate(t *testing.T) {
	require.NoError(t, ParseEmailTemplates(appfs.FS, true))

	msg := &EmailMessage{TemplateName: "nope"}
	assert.Error(t, msg.Render("EduSite", ""))

	plain := &EmailMessage{BodyStr: "plain body"}
	require.NoError(t, plain.Render("EduSite", ""))
	assert.Equal(t, "plain body", plain.TextContent)
}
