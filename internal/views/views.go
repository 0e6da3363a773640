// Package views holds the HTML fragments served to HTMX requests and the
// HTML bodies of outgoing email. Components render through the templ
// runtime; every interpolated value goes through templ.EscapeString.
package views

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/estateadmin/internal/core"
)

// ErrorAlert is the inline error box shown above a form.
func ErrorAlert(message, action, code string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w,
			`<div class="alert alert-error" role="alert"><p class="alert-message">%s</p>`,
			templ.EscapeString(message))
		if err != nil {
			return err
		}
		if action != "" {
			if _, err := fmt.Fprintf(w, `<p class="alert-action">%s</p>`, templ.EscapeString(action)); err != nil {
				return err
			}
		}
		_, err = fmt.Fprintf(w, `<small class="alert-code">%s</small></div>`, templ.EscapeString(code))
		return err
	})
}

// TwoFactorBanner asks the user to turn on two-factor authentication.
// The dismiss button posts to dismissURL and removes the banner.
func TwoFactorBanner(setupURL, dismissURL string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w,
			`<div id="two-factor-banner" class="banner banner-warning">`+
				`<p>Twoje konto nie ma włączonego uwierzytelniania dwuskładnikowego.</p>`+
				`<a class="button" href="%s">Włącz teraz</a>`+
				`<button type="button" hx-post="%s" hx-target="#two-factor-banner" hx-swap="delete">Przypomnij później</button>`+
				`</div>`,
			templ.EscapeString(setupURL), templ.EscapeString(dismissURL))
		return err
	})
}

// ReminderEmail is the HTML body of the 2FA reminder.
func ReminderEmail(name, appName, setupURL string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w,
			`<!DOCTYPE html><html lang="pl"><body>`+
				`<p>Dzień dobry %s,</p>`+
				`<p>Twoje konto w serwisie %s nie jest jeszcze zabezpieczone uwierzytelnianiem dwuskładnikowym.</p>`+
				`<p><a href="%s">Skonfiguruj uwierzytelnianie dwuskładnikowe</a></p>`+
				`<p>Pozdrawiamy,<br>%s</p>`+
				`</body></html>`,
			templ.EscapeString(name), templ.EscapeString(appName),
			templ.EscapeString(setupURL), templ.EscapeString(appName))
		return err
	})
}

// ImportSummary shows the counters of a finished import and its first
// failures.
func ImportSummary(res *core.Result, maxFailures int) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w,
			`<div class="import-summary" data-state="%s"><h3>%s</h3><dl>`+
				`<dt>Wiersze</dt><dd>%d</dd>`+
				`<dt>Zaimportowane</dt><dd>%d</dd>`+
				`<dt>Pominięte</dt><dd>%d</dd>`+
				`<dt>Błędne</dt><dd>%d</dd>`+
				`<dt>Nieprzetworzone</dt><dd>%d</dd></dl>`,
			templ.EscapeString(string(res.State)), templ.EscapeString(res.FileName),
			res.TotalRows, res.Imported, res.Skipped, res.Failed, res.Unprocessed)
		if err != nil {
			return err
		}

		if res.Error != "" {
			if _, err := fmt.Fprintf(w, `<p class="import-error" role="alert">%s</p>`, templ.EscapeString(res.Error)); err != nil {
				return err
			}
		}

		if len(res.Failures) > 0 {
			if _, err := io.WriteString(w, `<table class="failures"><thead><tr><th>Wiersz</th><th>Rodzaj</th><th>Przyczyna</th></tr></thead><tbody>`); err != nil {
				return err
			}
			for i, f := range res.Failures {
				if i == maxFailures {
					break
				}
				if _, err := fmt.Fprintf(w, `<tr><td>%d</td><td>%s</td><td>%s</td></tr>`,
					f.Line, templ.EscapeString(string(f.Kind)), templ.EscapeString(f.Reason)); err != nil {
					return err
				}
			}
			if _, err := io.WriteString(w, `</tbody></table>`); err != nil {
				return err
			}
			if more := len(res.Failures) - maxFailures; maxFailures >= 0 && more > 0 {
				if _, err := fmt.Fprintf(w, `<p class="more">i %d kolejnych</p>`, more); err != nil {
					return err
				}
			}
		}

		_, err = io.WriteString(w, `</div>`)
		return err
	})
}
