package views

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/estateadmin/internal/core"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	if err := c.Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	return buf.String()
}

func TestErrorAlert(t *testing.T) {
	tests := []struct {
		name        string
		message     string
		action      string
		contains    []string
		notContains []string
	}{
		{
			name:     "with action",
			message:  "File is empty",
			action:   "Upload a file",
			contains: []string{"File is empty", "Upload a file", "FILE005"},
		},
		{
			name:        "without action",
			message:     "Oops",
			contains:    []string{"Oops"},
			notContains: []string{"alert-action"},
		},
		{
			name:        "escapes markup",
			message:     "<script>alert(1)</script>",
			contains:    []string{"&lt;script&gt;"},
			notContains: []string{"<script>"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := render(t, ErrorAlert(tt.message, tt.action, "FILE005"))
			for _, s := range tt.contains {
				if !strings.Contains(out, s) {
					t.Errorf("output missing %q: %s", s, out)
				}
			}
			for _, s := range tt.notContains {
				if strings.Contains(out, s) {
					t.Errorf("output contains %q: %s", s, out)
				}
			}
		})
	}
}

func TestTwoFactorBanner(t *testing.T) {
	out := render(t, TwoFactorBanner("/profile/two-factor?a=1&b=2", "/api/two-factor/reminder/dismiss"))
	if !strings.Contains(out, `href="/profile/two-factor?a=1&amp;b=2"`) {
		t.Errorf("setup link not escaped: %s", out)
	}
	if !strings.Contains(out, `hx-post="/api/two-factor/reminder/dismiss"`) {
		t.Errorf("dismiss target missing: %s", out)
	}
}

func TestReminderEmail(t *testing.T) {
	out := render(t, ReminderEmail("Anna <Nowak>", "Panel", "https://example.pl/2fa"))
	for _, s := range []string{"Anna &lt;Nowak&gt;", "Panel", `href="https://example.pl/2fa"`} {
		if !strings.Contains(out, s) {
			t.Errorf("output missing %q: %s", s, out)
		}
	}
}

func TestImportSummary(t *testing.T) {
	res := &core.Result{
		FileName:  "lokale.csv",
		State:     core.StateCompleted,
		TotalRows: 4,
		Imported:  1,
		Failed:    3,
		Failures: []core.RowFailure{
			{Line: 2, Kind: core.KindValidation, Reason: "area: required field is empty"},
			{Line: 3, Kind: core.KindInvalidNumeric, Reason: "area: invalid number"},
			{Line: 4, Kind: core.KindBatchCommit, Reason: "batch commit failed"},
		},
	}

	out := render(t, ImportSummary(res, 2))
	if !strings.Contains(out, "lokale.csv") || !strings.Contains(out, `data-state="completed"`) {
		t.Errorf("header missing: %s", out)
	}
	if strings.Count(out, "<tr><td>") != 2 {
		t.Errorf("want 2 failure rows: %s", out)
	}
	if !strings.Contains(out, "i 1 kolejnych") {
		t.Errorf("overflow note missing: %s", out)
	}
}

func TestImportSummary_ShowsError(t *testing.T) {
	res := &core.Result{State: core.StateCompleted, Error: "import history not saved <db>"}

	out := render(t, ImportSummary(res, 20))
	if !strings.Contains(out, `class="import-error"`) || !strings.Contains(out, "&lt;db&gt;") {
		t.Errorf("escaped error missing: %s", out)
	}
	if strings.Contains(out, "<table") {
		t.Errorf("no failures expected: %s", out)
	}
}
