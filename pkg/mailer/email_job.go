package mailer

// EmailJob is the JSON payload put on the RabbitMQ queue for sending email.
// Either Template (+Data) or Subject/Text/HTML must be set.
type EmailJob struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject,omitempty"`
	Text     string         `json:"text,omitempty"`
	HTML     string         `json:"html,omitempty"`
	Template string         `json:"template,omitempty"` // "welcome", "sale_recorded"
	Data     map[string]any `json:"data,omitempty"`
}

// WithDefaults fills app-wide template fields the producer did not set.
func (j *EmailJob) WithDefaults(appName, appURL string) {
	if j.Data == nil {
		j.Data = map[string]any{}
	}
	for k, v := range map[string]string{"AppName": appName, "AppURL": appURL, "Email": j.To} {
		if cur, ok := j.Data[k].(string); !ok || cur == "" {
			j.Data[k] = v
		}
	}
}
