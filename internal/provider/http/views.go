package http

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/aussiebroadwan/oauth1d/internal/provider/i18n"
	"github.com/aussiebroadwan/oauth1d/pkg/httpx"
	"github.com/aussiebroadwan/oauth1d/pkg/slogx"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed views/*.html
var viewsFS embed.FS

const (
	viewAuthorize = "authorize.html"
	viewSuccess   = "success.html"
	viewFailure   = "failure.html"
	viewTokens    = "tokens.html"
)

// Views renders the embedded HTML pages.
type Views struct {
	pages map[string]*template.Template
}

// NewViews parses every page together with the shared layout.
func NewViews() (*Views, error) {
	v := &Views{pages: make(map[string]*template.Template)}
	for _, name := range []string{viewAuthorize, viewSuccess, viewFailure, viewTokens} {
		t, err := template.ParseFS(viewsFS, "views/layout.html", "views/"+name)
		if err != nil {
			return nil, fmt.Errorf("parse view %s: %w", name, err)
		}
		v.pages[name] = t
	}
	return v, nil
}

// page is the value every template executes against.
type page struct {
	Lang  string
	Flash string
	Data  any

	printer *message.Printer
}

func (p page) T(key string, args ...any) string {
	return p.printer.Sprintf(key, args...)
}

func (p page) Permission(name string) string {
	return p.printer.Sprintf(i18n.KeyPermissionPrefix + name)
}

// localizer resolves the request language, persisting an explicit choice.
func localizer(w http.ResponseWriter, r *http.Request) (language.Tag, *message.Printer) {
	tag, persist := i18n.ResolveTag(r)
	if persist {
		i18n.SetLanguageCookie(w, tag)
	}
	return tag, i18n.Printer(tag)
}

func (v *Views) render(w http.ResponseWriter, r *http.Request, status int, name string, data any, flash string) {
	tag, printer := localizer(w, r)

	var buf bytes.Buffer
	err := v.pages[name].ExecuteTemplate(&buf, "layout", page{
		Lang:    tag.String(),
		Flash:   flash,
		Data:    data,
		printer: printer,
	})
	if err != nil {
		slogx.FromContext(r.Context()).Error("render view", "view", name, "error", err)
		httpx.WriteText(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	httpx.NoCache(w)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("X-Frame-Options", "DENY")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// failure renders the failure page with a localized message.
func (v *Views) failure(w http.ResponseWriter, r *http.Request, status int, key string, args ...any) {
	_, printer := localizer(w, r)
	v.render(w, r, status, viewFailure, failureData{Message: printer.Sprintf(key, args...)}, "")
}

type authorizeData struct {
	Token       string
	Callback    string
	ClientName  string
	Permissions []string
}

type successData struct {
	ClientName string
	Verifier   string
}

type failureData struct {
	Message string
}

type tokensData struct {
	Tokens []tokenRow
}

type tokenRow struct {
	Token       string
	ClientName  string
	Issued      string
	Permissions []string
}
