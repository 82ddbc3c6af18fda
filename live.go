/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/Seednode/tabletop/broadcast"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// serveLive attaches a viewer to the live channel of one table. Messages
// read from the socket go through the processor; everything the table's hub
// publishes, including the viewer's own accepted updates, is written back.
func serveLive(cfg *Config, tt *tabletop) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		code := p.ByName("code")
		notFound := fmt.Sprintf("table `%s` not found", code)

		if _, ok := tt.registry.Get(code); !ok {
			writeError(cfg, w, http.StatusNotFound, notFound)
			return
		}

		sub, err := tt.hubs.Subscribe(code)
		if err != nil {
			writeError(cfg, w, http.StatusNotFound, notFound)
			return
		}

		// The table may have been swept between the lookup and the subscribe.
		if _, ok := tt.registry.Get(code); !ok {
			sub.Close()
			writeError(cfg, w, http.StatusNotFound, notFound)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			sub.Close()
			logf(cfg, "LIVE: Upgrade for table %s from %s failed: %v", code, realIP(r), err)
			return
		}

		remote := realIP(r)

		logf(cfg, "LIVE: %s joined table %s as %s (%d connected)", remote, code, sub.ID, tt.hubs.Subscribers(code))

		go writePump(conn, sub)
		readPump(cfg, tt, conn, sub, code, remote)

		logf(cfg, "LIVE: %s left table %s", remote, code)
	}
}

func readPump(cfg *Config, tt *tabletop, conn *websocket.Conn, sub *broadcast.Subscriber, code, remote string) {
	defer func() {
		sub.Close()
		_ = conn.Close()
	}()

	conn.SetReadLimit(cfg.maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logf(cfg, "LIVE: Reading from %s on table %s: %v", remote, code, err)
			}
			return
		}

		u, err := tt.processor.Handle(code, msg)
		if err != nil {
			logf(cfg, "LIVE: Dropped update from %s on table %s: %v", remote, code, err)
			continue
		}

		logf(cfg, "LIVE: Accepted %s from %s on table %s", u.Type, remote, code)
	}
}

func writePump(conn *websocket.Conn, sub *broadcast.Subscriber) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()

	for {
		select {
		case msg, ok := <-sub.Messages():
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
