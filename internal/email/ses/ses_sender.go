package ses

import (
	"context"
	"fmt"
	"html"
	"net/url"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"albayan/internal/domain"
	"albayan/internal/port"
)

type sesSender struct {
	client      *sesv2.Client
	fromAddress string
	fromName    string
	frontendURL string
}

// NewSESSender creates a new SES-backed EmailSender.
func NewSESSender(ctx context.Context, region, fromAddress, fromName, frontendURL string) (port.EmailSender, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config for SES: %w", err)
	}
	return &sesSender{
		client:      sesv2.NewFromConfig(cfg),
		fromAddress: fromAddress,
		fromName:    fromName,
		frontendURL: frontendURL,
	}, nil
}

func (s *sesSender) SendReportStatus(ctx context.Context, msg port.ReportStatusEmail) error {
	subject, textBody, htmlBody := buildReportStatus(msg, s.frontendURL)
	from := fmt.Sprintf("%s <%s>", s.fromName, s.fromAddress)

	_, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: &from,
		Destination: &types.Destination{
			ToAddresses: []string{msg.To},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: &subject},
				Body: &types.Body{
					Html: &types.Content{Data: &htmlBody},
					Text: &types.Content{Data: &textBody},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("SES SendEmail: %w", err)
	}
	return nil
}

func buildReportStatus(msg port.ReportStatusEmail, frontendURL string) (subject, text, htmlBody string) {
	requestURL := fmt.Sprintf("%s/reports/requests/%s", frontendURL, url.PathEscape(msg.RequestID))

	var t strings.Builder
	var h strings.Builder
	if msg.Status == domain.StatusSuccessful {
		subject = fmt.Sprintf("Your report %s is ready", msg.Template)
		fmt.Fprintf(&t, "Your report %q has been generated.\n\n", msg.Template)
		fmt.Fprintf(&h, "<p>Your report <strong>%s</strong> has been generated.</p>", html.EscapeString(msg.Template))
		if len(msg.Links) > 0 {
			t.WriteString("Download:\n")
			h.WriteString("<ul>")
			for _, link := range msg.Links {
				fmt.Fprintf(&t, "%s\n", link)
				fmt.Fprintf(&h, `<li><a href="%s">%s</a></li>`, html.EscapeString(link), html.EscapeString(link))
			}
			h.WriteString("</ul>")
		}
	} else {
		subject = fmt.Sprintf("Your report %s failed", msg.Template)
		fmt.Fprintf(&t, "Your report %q could not be generated: %s\n", msg.Template, msg.Error)
		fmt.Fprintf(&h, "<p>Your report <strong>%s</strong> could not be generated.</p><p style=\"color: #b91c1c;\">%s</p>",
			html.EscapeString(msg.Template), html.EscapeString(msg.Error))
	}
	fmt.Fprintf(&t, "\nRequest details: %s\n\nAlbayan Reports", requestURL)

	htmlBody = fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2 style="color: #333;">%s</h2>
  %s
  <p><a href="%s">View request %s</a></p>
  <hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
  <p style="color: #999; font-size: 12px;">Albayan Reports</p>
</body>
</html>`, html.EscapeString(subject), h.String(), html.EscapeString(requestURL), html.EscapeString(msg.RequestID))
	return subject, t.String(), htmlBody
}
