/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/Seednode/tabletop/tables"
	"github.com/julienschmidt/httprouter"
)

const maxCreateBody = 64 << 10

type createRequest struct {
	Name    string         `json:"name"`
	Sharing tables.Sharing `json:"sharing"`
	Icons   []string       `json:"icons"`
}

type createResponse struct {
	Code string `json:"code"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(cfg *Config, w http.ResponseWriter, status int, v any) (int, error) {
	data, err := json.Marshal(v)
	if err != nil {
		writeError(cfg, w, http.StatusInternalServerError, "internal error")
		return 0, fmt.Errorf("encode response: %w", err)
	}
	data = append(data, '\n')

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	securityHeaders(cfg, w)
	w.WriteHeader(status)

	return w.Write(data)
}

func writeError(cfg *Config, w http.ResponseWriter, status int, message string) {
	data, _ := json.Marshal(errorResponse{Error: message})

	w.Header().Set("Content-Type", "application/json")
	securityHeaders(cfg, w)
	w.WriteHeader(status)
	_, _ = w.Write(append(data, '\n'))
}

// classify maps a core error onto a status and a message safe to show.
// Internal errors never leak their details.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, tables.ErrNotFound):
		return http.StatusNotFound, err.Error()
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

func serveCreateTable(cfg *Config, tt *tabletop, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		startTime := time.Now()

		var req createRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxCreateBody)).Decode(&req); err != nil {
			writeError(cfg, w, http.StatusBadRequest, "malformed table options")
			return
		}

		host := viewerID(cfg, w, r)

		code, err := tt.registry.Create(r.Context(), tables.CreateOptions{
			Name:      req.Name,
			Sharing:   req.Sharing,
			Host:      &host,
			IconPacks: req.Icons,
		})
		if err != nil {
			status, message := classify(err)
			if status == http.StatusInternalServerError {
				errorf("creating table for %s: %v", realIP(r), err)
			}
			logf(cfg, "TABLE: Refused table %q for %s: %v", req.Name, realIP(r), err)
			writeError(cfg, w, status, message)
			return
		}

		if _, err := writeJSON(cfg, w, http.StatusOK, createResponse{Code: code}); err != nil {
			errs <- err
			return
		}

		logf(cfg, "TABLE: Created table %s (%q, %s sharing) for %s in %s",
			code,
			req.Name,
			req.Sharing.Kind,
			realIP(r),
			time.Since(startTime).Round(time.Microsecond),
		)
	}
}

func serveTableState(cfg *Config, tt *tabletop, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		startTime := time.Now()

		code := p.ByName("code")

		snapshot, err := tt.registry.Lookup(code)
		if err != nil {
			writeError(cfg, w, http.StatusNotFound, fmt.Sprintf("table `%s` not found", code))
			return
		}

		written, err := writeJSON(cfg, w, http.StatusOK, snapshot)
		if err != nil {
			errs <- err
			return
		}

		logf(cfg, "SERVE: State of table %s (%s) to %s in %s",
			code,
			humanReadableSize(int64(written)),
			realIP(r),
			time.Since(startTime).Round(time.Microsecond),
		)
	}
}

func serveIconPack(cfg *Config, tt *tabletop, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		startTime := time.Now()

		id, err := strconv.ParseUint(p.ByName("id"), 10, 32)
		if err != nil {
			writeError(cfg, w, http.StatusBadRequest, "invalid icon pack id")
			return
		}

		pack, err := tt.catalog.FetchIconPack(r.Context(), uint32(id))
		if err != nil {
			status, _ := classify(err)
			if status == http.StatusNotFound {
				writeError(cfg, w, status, "icon pack not found")
				return
			}
			errorf("fetching icon pack %d: %v", id, err)
			writeError(cfg, w, status, "internal error")
			return
		}

		written, err := writeJSON(cfg, w, http.StatusOK, pack)
		if err != nil {
			errs <- err
			return
		}

		logf(cfg, "CATALOG: Icon pack %d (%s) to %s in %s",
			id,
			humanReadableSize(int64(written)),
			realIP(r),
			time.Since(startTime).Round(time.Microsecond),
		)
	}
}

func serveIconPacks(cfg *Config, tt *tabletop, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		packs, err := tt.catalog.ListIconPacks(r.Context())
		if err != nil {
			errorf("listing icon packs: %v", err)
			writeError(cfg, w, http.StatusInternalServerError, "internal error")
			return
		}

		if _, err := writeJSON(cfg, w, http.StatusOK, packs); err != nil {
			errs <- err
		}
	}
}
