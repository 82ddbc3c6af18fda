/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/julienschmidt/httprouter"
)

func homePage(cfg *Config) string {
	var b strings.Builder

	b.WriteString(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
	b.WriteString(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
	b.WriteString(`<title>Tabletop</title></head><body><main>`)
	b.WriteString(`<h1>Tabletop</h1>`)
	b.WriteString(fmt.Sprintf(`<form method="post" action="%s/find">`, cfg.prefix))
	b.WriteString(`<label for="code">Table code</label> `)
	b.WriteString(`<input id="code" name="code" maxlength="4" autocomplete="off" required> `)
	b.WriteString(`<button type="submit">Join</button></form>`)
	b.WriteString(`</main></body></html>`)

	return b.String()
}

func serveHomePage(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		securityHeaders(cfg, w)

		if _, err := io.WriteString(w, homePage(cfg)); err != nil {
			errs <- err
		}
	}
}

func serveHealthCheck(cfg *Config, tt *tabletop, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		securityHeaders(cfg, w)

		_, err := fmt.Fprintf(w, "Ok (%d tables)\n", tt.registry.Len())
		if err != nil {
			errs <- err

			return
		}
	}
}

func serveRobots(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		data := fmt.Sprintf(`User-agent: *
Disallow: %[1]s/api/
Disallow: %[1]s/table/
Disallow: %[1]s/ws/
`, cfg.prefix)

		w.Header().Set("Cache-Control", "public, max-age=3600")
		w.Header().Set("Expires", time.Now().Add(time.Hour).UTC().Format(http.TimeFormat))
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Content-Length", strconv.Itoa(len(data)))
		securityHeaders(cfg, w)

		_, err := w.Write([]byte(data))
		if err != nil {
			errs <- err

			return
		}
	}
}
