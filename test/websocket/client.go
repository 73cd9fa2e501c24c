package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/gorilla/websocket"
)

// 手工联调客户端：连上 /ws 后轮流发 spin / getProfile / getLogs
var (
	addr   = flag.String("addr", "127.0.0.1:8000", "server address")
	token  = flag.String("token", "", "one-time session token")
	gameID = flag.Int64("game", 1001, "game id")
	bet    = flag.String("bet", "10", "bet amount")
)

func main() {
	flag.Parse()

	u := fmt.Sprintf("ws://%s/ws?token=%s&gameId=%d", *addr, *token, *gameID)
	log.Printf("dial %s", u)

	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		log.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()

	go func() {
		for {
			_, raw, err := conn.ReadMessage()
			if err != nil {
				log.Printf("read stop: %v", err)
				return
			}
			log.Printf("<- %s", raw)
		}
	}()

	send := func(body string) {
		log.Printf("-> %s", body)
		if err := conn.WriteMessage(websocket.TextMessage, []byte(body)); err != nil {
			log.Fatalf("write failed: %v", err)
		}
	}

	id := int64(0)
	for {
		id++
		send(fmt.Sprintf(`{"id":%d,"type":"getProfile"}`, id))
		time.Sleep(time.Second)
		id++
		send(fmt.Sprintf(`{"id":%d,"type":"spin","payload":{"bet":"%s"}}`, id, *bet))
		time.Sleep(time.Second)
		id++
		send(fmt.Sprintf(`{"id":%d,"type":"getLogs","payload":{"limit":5,"sort":"t.desc"}}`, id))
		time.Sleep(8 * time.Second)
	}
}
