package notification

import (
	"fmt"
	"html"

	"cropconnect/models"
)

func emailBody(name string, n models.Notification) string {
	greeting := "Hello"
	if name != "" {
		greeting = "Hello " + html.EscapeString(name)
	}
	return fmt.Sprintf(
		"<p>%s,</p><p>%s</p><p>Open Crop Connect to see the details.</p>",
		greeting, html.EscapeString(n.Message))
}
