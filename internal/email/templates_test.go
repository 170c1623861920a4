package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplateManager_RenderNotification(t *testing.T) {
	tm := NewTemplateManager()

	html, err := tm.Render(NotificationTemplate, TemplateData{
		"Name":    "Aisha",
		"Title":   "Booking confirmed",
		"Message": "<b>See you</b>",
		"AppName": "Mehndi",
	})
	require.NoError(t, err)
	assert.Contains(t, html, "Hello Aisha")
	assert.Contains(t, html, "&lt;b&gt;See you&lt;/b&gt;")
	assert.NotContains(t, html, "Booking:")

	_, err = tm.Render("missing", nil)
	assert.Error(t, err)
}
