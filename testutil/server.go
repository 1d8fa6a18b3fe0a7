// Copyright 2025 Agentic World, LLC (Sherin Thomas)
//
// This file includes modifications to code originally developed by Adam Tauber,
// licensed under the Apache License, Version 2.0.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package testutil provides shared test utilities for hounds tests: a
// fixture site whose pages raise script errors and console messages, and a
// scripted in-memory browser.
package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"time"
)

// Messages raised by the fixture pages
const (
	InlineErrorMessage = "boom"
	LateErrorMessage   = "late boom"
	ConsoleLogText     = "hello from the console"
	ConsoleWarnText    = "careful now"
	ConsoleErrorText   = "something went wrong"
	PrivateErrorText   = "not signed in"
)

// SessionCookie is the cookie set by /login and required by /private
const SessionCookie = "session_id"

func page(title, head, body string) []byte {
	return []byte(fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
<title>%s</title>
%s
</head>
<body>
%s
</body>
</html>
`, title, head, body))
}

var (
	IndexHTML = page("Index", "", `
<a href="/error">inline error</a>
<a href="/after-load">error after load</a>
<a href="/console">console</a>
<a href="/nested/">nested</a>
<a href="/nested/#top">nested again</a>
<a href="/missing">missing</a>
<a href="https://example.com/">external</a>
`)
	ErrorHTML = page("Error", "", fmt.Sprintf(`
<a href="/">home</a>
<script>
function explode() { throw new Error(%q); }
explode();
</script>
`, InlineErrorMessage))
	AfterLoadHTML = page("After load", "", fmt.Sprintf(`
<script>
setTimeout(function () { throw new Error(%q); }, 50);
</script>
`, LateErrorMessage))
	ConsoleHTML = page("Console", "", fmt.Sprintf(`
<script>
console.log(%q);
console.warn(%q);
console.error(%q);
</script>
`, ConsoleLogText, ConsoleWarnText, ConsoleErrorText))
	NestedHTML = page("Nested", "", `
<a href="../">up</a>
<a href="page">page</a>
`)
	NestedPageHTML = page("Nested page", "", `<p>nothing to see</p>`)
	BaseHTML       = page("Base", `<base href="/nested/">`, `<a href="page">page</a>`)
	NotFoundHTML   = page("Not found", "", `<p>not found</p>`)
	LoginHTML      = page("Login", "", `
<form method="post" action="/login">
<input id="name" name="name">
<button id="submit" type="submit">Sign in</button>
</form>
`)
	PrivateHTML = page("Private", "", fmt.Sprintf(`
<script>
if (document.cookie.indexOf(%q) < 0) { throw new Error(%q); }
</script>
<a href="/">home</a>
`, SessionCookie+"=", PrivateErrorText))
)

// NewUnstartedTestServer creates an unstarted HTTP test server with all
// fixture pages configured
func NewUnstartedTestServer() *httptest.Server {
	return httptest.NewUnstartedServer(Handler())
}

// Handler serves the fixture site
func Handler() http.Handler {
	mux := http.NewServeMux()

	html := func(body []byte) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.Write(body)
		}
	}

	mux.HandleFunc("/{$}", html(IndexHTML))
	mux.HandleFunc("/error", html(ErrorHTML))
	mux.HandleFunc("/after-load", html(AfterLoadHTML))
	mux.HandleFunc("/console", html(ConsoleHTML))
	mux.HandleFunc("/nested/{$}", html(NestedHTML))
	mux.HandleFunc("/nested/page", html(NestedPageHTML))
	mux.HandleFunc("/base", html(BaseHTML))

	mux.HandleFunc("/missing", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusNotFound)
		w.Write(NotFoundHTML)
	})

	mux.HandleFunc("/500", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(500)
		w.Write([]byte("<p>error</p>"))
	})

	mux.HandleFunc("/latin1", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
		// "café" in ISO-8859-1
		w.Write([]byte("<html><body><a href=\"/caf\xe9\">caf\xe9</a></body></html>"))
	})

	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: url.QueryEscape(r.FormValue("name")), Path: "/"})
			http.Redirect(w, r, "/private", http.StatusSeeOther)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(LoginHTML)
	})
	mux.HandleFunc("/private", html(PrivateHTML))

	mux.Handle("/redirect", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		destination := "/nested/"
		if d := r.URL.Query().Get("d"); d != "" {
			destination = d
		}
		http.Redirect(w, r, destination, http.StatusSeeOther)
	}))

	mux.HandleFunc("/user_agent", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(200)
		w.Write([]byte(r.Header.Get("User-Agent")))
	})

	mux.HandleFunc("/referer", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprintf(w, `<a href="/referer?from=%s">again</a>`, url.QueryEscape(r.Header.Get("Referer")))
	})

	mux.HandleFunc("/slow", func(w http.ResponseWriter, r *http.Request) {
		delay := 500 * time.Millisecond
		if d, err := time.ParseDuration(r.URL.Query().Get("d")); err == nil {
			delay = d
		}
		select {
		case <-r.Context().Done():
			return
		case <-time.After(delay):
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(page("Slow", "", `<a href="/">home</a>`))
	})

	return mux
}

// NewTestServer creates and starts a new HTTP test server
func NewTestServer() *httptest.Server {
	srv := NewUnstartedTestServer()
	srv.Start()
	return srv
}

// RequireSessionCookieSimple is middleware that requires a session cookie,
// redirecting to set it if not present
func RequireSessionCookieSimple(handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := r.Cookie(SessionCookie); err == http.ErrNoCookie {
			http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: "1"})
			http.Redirect(w, r, r.RequestURI, http.StatusFound)
			return
		}
		handler.ServeHTTP(w, r)
	})
}
