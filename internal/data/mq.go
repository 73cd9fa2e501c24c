package data

import (
	"fmt"
	"net/url"
	"sync"
	"time"

	"egame-ws/internal/conf"

	"github.com/streadway/amqp"
	"github.com/yola1107/kratos/v2/log"
)

const settledExchange = "spin.settled"

// Publisher pushes settled-spin events for downstream reconciliation
// consumers. Publish failures never fail a spin.
type Publisher struct {
	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
	log  *log.Helper
}

func NewPublisher(c *conf.Data, logger log.Logger) (*Publisher, func(), error) {
	addr := fmt.Sprintf("amqp://%s:%s@%s:%d/%s",
		url.QueryEscape(c.Rabbitmq.Username),
		url.QueryEscape(c.Rabbitmq.Password),
		c.Rabbitmq.Host, c.Rabbitmq.Port,
		url.QueryEscape(c.Rabbitmq.Vhost),
	)
	conn, err := amqp.Dial(addr)
	if err != nil {
		return nil, nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, err
	}
	if err = ch.ExchangeDeclare(settledExchange, "fanout", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, nil, err
	}
	p := &Publisher{conn: conn, ch: ch, log: log.NewHelper(logger)}
	cleanup := func() {
		ch.Close()
		conn.Close()
	}
	return p, cleanup, nil
}

func (p *Publisher) Publish(body []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ch.Publish(settledExchange, "", false, false, amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
	})
}
