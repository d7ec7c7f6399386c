package email

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"

	"channelscout/internal/models"
	"channelscout/shared/config"
)

type Sender struct {
	config *config.EmailConfig
}

func NewSender(cfg *config.EmailConfig) *Sender {
	return &Sender{
		config: cfg,
	}
}

// SendDigest emails a freshly generated recommendation batch. An empty batch
// sends nothing.
func (s *Sender) SendDigest(digest *models.RecommendationDigest) error {
	if digest == nil {
		return fmt.Errorf("digest cannot be nil")
	}

	if len(digest.Items) == 0 {
		return nil // Nothing to report
	}

	subject := fmt.Sprintf("YouTube Channel Digest - %d Recommendations (%s)",
		len(digest.Items), digest.Date.Format("Jan 2, 2006"))

	body, err := s.generateDigestBody(digest)
	if err != nil {
		return fmt.Errorf("failed to generate digest body: %w", err)
	}

	return s.SendHTML(subject, body)
}

// SendHTML sends an email with custom HTML content
func (s *Sender) SendHTML(subject, htmlBody string) error {
	return s.sendViaSMTP(subject, htmlBody)
}

func (s *Sender) sendViaSMTP(subject, body string) error {
	auth := smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.SMTPServer)

	to := []string{s.config.ToEmail}
	msg := []byte(fmt.Sprintf(`To: %s
From: %s
Subject: %s
MIME-Version: 1.0
Content-Type: text/html; charset=UTF-8

%s`, s.config.ToEmail, s.config.FromEmail, subject, body))

	addr := fmt.Sprintf("%s:%d", s.config.SMTPServer, s.config.SMTPPort)
	return smtp.SendMail(addr, auth, s.config.FromEmail, to, msg)
}

// digestView groups the batch by kind for rendering.
type digestView struct {
	Date        string
	Categories  []models.TasteCategory
	Channels    []models.RecommendationItem
	HiddenGems  []models.RecommendationItem
	ContentGaps []models.RecommendationItem
}

const digestTemplate = `<html>
<body style="font-family: Arial, sans-serif; max-width: 640px; margin: 0 auto;">
  <h2>Your YouTube Channel Digest</h2>
  <p>{{.Date}}</p>

  <h3>Your interests right now</h3>
  <ul>
    {{range .Categories}}<li><strong>{{.Name}}</strong> ({{printf "%.0f" (pct .Weight)}}%) &mdash; {{.Description}}</li>
    {{end}}
  </ul>

  {{if .Channels}}<h3>Channels for you</h3>
  <ul>
    {{range .Channels}}<li><strong>{{.ChannelTitle}}</strong> ({{.Category}}) &mdash; {{.Reason}}</li>
    {{end}}
  </ul>{{end}}

  {{if .HiddenGems}}<h3>Hidden gems</h3>
  <ul>
    {{range .HiddenGems}}<li><strong>{{.ChannelTitle}}</strong> ({{.Category}}) &mdash; {{.Reason}}</li>
    {{end}}
  </ul>{{end}}

  {{if .ContentGaps}}<h3>Something new to explore</h3>
  <ul>
    {{range .ContentGaps}}<li><strong>{{.ChannelTitle}}</strong> ({{.Category}}) &mdash; {{.Reason}}</li>
    {{end}}
  </ul>{{end}}
</body>
</html>`

func (s *Sender) generateDigestBody(digest *models.RecommendationDigest) (string, error) {
	tmpl, err := template.New("digest").Funcs(template.FuncMap{
		"pct": func(w float64) float64 { return w * 100 },
	}).Parse(digestTemplate)
	if err != nil {
		return "", err
	}

	view := digestView{
		Date:       digest.Date.Format("January 2, 2006"),
		Categories: digest.Categories,
	}
	for _, item := range digest.Items {
		switch item.Type {
		case models.RecommendationHiddenGem:
			view.HiddenGems = append(view.HiddenGems, item)
		case models.RecommendationContentGap:
			view.ContentGaps = append(view.ContentGaps, item)
		default:
			view.Channels = append(view.Channels, item)
		}
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, view); err != nil {
		return "", err
	}

	return buf.String(), nil
}
