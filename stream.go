package main

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const STREAM_INTERVAL = 250 * time.Millisecond

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// StateStreamHandler pushes the state of every unit to the client until the
// connection closes.
func StateStreamHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Print("upgrade:", err)
		return
	}
	defer conn.Close()

	// the client never sends anything useful, but reading is the only way
	// to notice it has gone away
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	t := time.NewTicker(STREAM_INTERVAL)
	defer t.Stop()

	for {
		if err := conn.WriteJSON(Device.States()); err != nil {
			log.Println("write:", err)
			return
		}

		select {
		case <-done:
			return
		case <-t.C:
		}
	}
}
