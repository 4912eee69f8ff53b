package html

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/a-h/templ"

	"adminconsole/frontend/shared/nav"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	if err := c.Render(context.Background(), &buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	return buf.String()
}

func TestLayoutRendersToastsAndBody(t *testing.T) {
	body := templ.Raw(`<p id="body">hola</p>`)
	out := render(t, Layout(Page{
		Title:  "Usuarios",
		Nav:    nav.TopNavData{Username: "ana", Links: []nav.Link{{Label: "Usuarios", Href: "/console/users", Active: true}}},
		Status: "Usuario creado",
		Error:  "<b>x</b>",
	}, body))

	for _, want := range []string{`<p id="body">hola</p>`, "Usuario creado", "&lt;b&gt;x&lt;/b&gt;", `data-duration="5000"`, `class="active"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("layout missing %q", want)
		}
	}
}

func TestQuerySkipsEmptyValues(t *testing.T) {
	if got := string(Query("nombre", "ana", "email", "", "page", 0)); got != "?nombre=ana" {
		t.Fatalf("unexpected query %q", got)
	}
	if got := string(Query("email", "")); got != "" {
		t.Fatalf("expected empty query, got %q", got)
	}
}

func TestScriptsCarryDelays(t *testing.T) {
	if out := render(t, FilterScript("filters", 500*time.Millisecond)); !strings.Contains(out, "setTimeout(load, 500)") {
		t.Fatalf("filter script missing delay")
	}
	if out := render(t, ConfirmScript("f", "confirmPassword", "/console/users/validate", time.Second)); !strings.Contains(out, "setTimeout(check, 1000)") {
		t.Fatalf("confirm script missing delay")
	}
	out := render(t, ConditionalFieldScript("f", "rol_id", "admin-field", map[string]FieldRule{"2": {Visible: true, Required: true}}))
	if !strings.Contains(out, `"2":{"visible":true,"required":true}`) {
		t.Fatalf("conditional script missing rules: %s", out)
	}
}

func TestBackReencodesReturnQuery(t *testing.T) {
	if got := string(Back("/console/users", "nombre=ana&size=10")); got != "/console/users?nombre=ana&size=10" {
		t.Fatalf("unexpected back link %q", got)
	}
	if got := string(Back("/console/users", "")); got != "/console/users" {
		t.Fatalf("unexpected back link %q", got)
	}
}
