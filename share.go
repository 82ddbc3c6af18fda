/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"fmt"
	"html"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
)

const qrSize = 320

// tableURL is the absolute address of a table page as seen by the client.
func tableURL(cfg *Config, r *http.Request, code string) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	return scheme + "://" + r.Host + cfg.prefix + "/table/" + code
}

// serveQR renders a PNG QR code pointing at the table page.
func serveQR(cfg *Config, tt *tabletop, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		code := p.ByName("code")
		if _, ok := tt.registry.Get(code); !ok {
			writeError(cfg, w, http.StatusNotFound, fmt.Sprintf("table `%s` not found", code))
			return
		}

		png, err := qrcode.Encode(tableURL(cfg, r, code), qrcode.Medium, qrSize)
		if err != nil {
			errorf("generating qr code for table %s: %v", code, err)
			writeError(cfg, w, http.StatusInternalServerError, "internal error")
			return
		}

		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Content-Length", strconv.Itoa(len(png)))
		securityHeaders(cfg, w)

		if _, err := w.Write(png); err != nil {
			errs <- err
		}
	}
}

func tablePage(cfg *Config, code string) string {
	var b strings.Builder

	code = html.EscapeString(code)

	b.WriteString(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
	b.WriteString(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
	b.WriteString(fmt.Sprintf("<title>Table %s</title></head>", code))
	b.WriteString(fmt.Sprintf(`<body><main id="table" data-code="%s" data-state="%s/api/table/%s/state" data-live="%s/ws/table/%s">`,
		code, cfg.prefix, code, cfg.prefix, code))
	b.WriteString(fmt.Sprintf("<h1>Table %s</h1>", code))
	b.WriteString(fmt.Sprintf(`<img src="%s/table/%s/qr" alt="QR code for table %s" width="%d" height="%d">`,
		cfg.prefix, code, code, qrSize, qrSize))
	b.WriteString(`</main></body></html>`)

	return b.String()
}

func serveTablePage(cfg *Config, tt *tabletop, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		startTime := time.Now()

		code := p.ByName("code")

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		securityHeaders(cfg, w)

		if _, ok := tt.registry.Get(code); !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, newPage("Table not found", fmt.Sprintf("No table with code %s exists.", code)))
			return
		}

		_ = viewerID(cfg, w, r)

		written, err := io.WriteString(w, tablePage(cfg, code))
		if err != nil {
			errs <- err
			return
		}

		logf(cfg, "SERVE: Table page %s (%s) to %s in %s",
			code,
			humanReadableSize(int64(written)),
			realIP(r),
			time.Since(startTime).Round(time.Microsecond),
		)
	}
}

// serveFindTable redirects a submitted code to its table page.
func serveFindTable(cfg *Config, tt *tabletop) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		r.Body = http.MaxBytesReader(w, r.Body, 4<<10)

		code := strings.ToUpper(strings.TrimSpace(r.PostFormValue("code")))

		if _, ok := tt.registry.Get(code); !ok || code == "" {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			securityHeaders(cfg, w)
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, newPage("Table not found", "Table not found"))
			return
		}

		http.Redirect(w, r, cfg.prefix+"/table/"+code, http.StatusSeeOther)
	}
}
