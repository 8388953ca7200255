package httptransport

import (
	"html/template"
	"log/slog"
	"net/http"

	"authd/internal/authz/service"
)

// Minimal guest pages. The decision engine picks the view through its tagged
// outcome; anything user-controlled arrives pre-escaped or goes through the
// template engine's own escaping.
var pageTemplates = template.Must(template.New("pages").Parse(`
{{define "consent"}}<!DOCTYPE html>
<html>
<head><title>Authorize {{.ClientName}}</title></head>
<body>
<h1>Authorize {{.ClientName}}</h1>
<p>{{.ClientName}} is requesting access to your account.</p>
<form method="POST" action="/authorize/confirm?{{.ConfirmQuery}}">
	<button type="submit">Authorize</button>
</form>
<p><a href="{{.BackURL}}">Cancel</a></p>
</body>
</html>
{{end}}

{{define "error"}}<!DOCTYPE html>
<html>
<head><title>Authorization failed</title></head>
<body>
<h1>Request not valid</h1>
{{if .ClientName}}<p>The request from {{.ClientName}} could not be processed.</p>
{{else}}<p>The authorization request could not be processed.</p>
{{end}}<p><a href="{{.BackURL}}">Back</a></p>
</body>
</html>
{{end}}

{{define "switch-user"}}<!DOCTYPE html>
<html>
<head><title>Switch account</title></head>
<body>
<h1>Switch account</h1>
<p>You are signed in as {{.CurrentUser}} but authorization was requested for {{.RequestedUser}}.</p>
<p><a href="{{.LogoutURL}}">Sign in as {{.RequestedUser}}</a></p>
<p><a href="{{.BackURL}}">Cancel</a></p>
</body>
</html>
{{end}}

{{define "success"}}<!DOCTYPE html>
<html>
<head><title>Authorization successful</title></head>
<body>
<h1>Authorization successful</h1>
<p>You can close this window and return to the application.</p>
</body>
</html>
{{end}}
`))

type consentView struct {
	ClientName   string
	ConfirmQuery template.URL
	BackURL      string
}

type errorView struct {
	ClientName *string
	BackURL    string
}

type switchUserView struct {
	CurrentUser   template.HTML
	RequestedUser template.HTML
	LogoutURL     string
	BackURL       string
}

// renderOutcome maps a decision outcome onto its page.
func renderOutcome(w http.ResponseWriter, r *http.Request, logger *slog.Logger, outcome service.Outcome, confirmQuery string) {
	switch outcome.Kind {
	case service.OutcomeConsent:
		clientName := ""
		if outcome.ClientName != nil {
			clientName = *outcome.ClientName
		}
		renderPage(w, r, logger, http.StatusOK, "consent", consentView{
			ClientName:   clientName,
			ConfirmQuery: template.URL(confirmQuery),
			BackURL:      outcome.BackURL,
		})
	case service.OutcomeSwitchUser:
		renderPage(w, r, logger, http.StatusOK, "switch-user", switchUserView{
			CurrentUser:   template.HTML(outcome.CurrentUserHTML),
			RequestedUser: template.HTML(outcome.RequestedUserHTML),
			LogoutURL:     outcome.LogoutURL,
			BackURL:       outcome.BackURL,
		})
	default:
		renderPage(w, r, logger, http.StatusOK, "error", errorView{
			ClientName: outcome.ClientName,
			BackURL:    outcome.BackURL,
		})
	}
}

func renderPage(w http.ResponseWriter, r *http.Request, logger *slog.Logger, status int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pageTemplates.ExecuteTemplate(w, name, data); err != nil {
		logger.ErrorContext(r.Context(), "template render failed",
			"template", name,
			"error", err,
		)
	}
}
