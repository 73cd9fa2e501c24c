package main

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"github.com/streadway/amqp"
)

const (
	rabbitMQHost     = "127.0.0.1"
	rabbitMQPort     = "5672"
	rabbitMQUser     = "guest"
	rabbitMQPassword = "guest"
	exchangeName     = "spin.settled"
	queueName        = "spin.settled.debug"
)

// buildRabbitMQURL 构建RabbitMQ连接URL（自动编码特殊字符）
func buildRabbitMQURL() string {
	encodedUser := url.QueryEscape(rabbitMQUser)
	encodedPassword := url.QueryEscape(rabbitMQPassword)

	return fmt.Sprintf("amqp://%s:%s@%s:%s/", encodedUser, encodedPassword, rabbitMQHost, rabbitMQPort)
}

// Consumer 挂到 spin.settled 扇出交换机上打印每条结算事件
func Consumer(ctx context.Context) error {
	conn, err := amqp.Dial(buildRabbitMQURL())
	if err != nil {
		return fmt.Errorf("连接RabbitMQ失败: %w", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("创建通道失败: %w", err)
	}
	defer ch.Close()

	err = ch.ExchangeDeclare(
		exchangeName, // 交换机名称
		"fanout",     // 类型
		true,         // 持久化
		false,        // 自动删除
		false,        // 内部
		false,        // 无等待
		nil,          // 参数
	)
	if err != nil {
		return fmt.Errorf("声明交换机失败: %w", err)
	}

	// 调试队列：排他、断开自动清理
	q, err := ch.QueueDeclare(queueName, false, true, true, false, nil)
	if err != nil {
		return fmt.Errorf("声明队列失败: %w", err)
	}

	if err = ch.QueueBind(q.Name, "", exchangeName, false, nil); err != nil {
		return fmt.Errorf("绑定队列失败: %w", err)
	}

	msgs, err := ch.Consume(q.Name, "", true, true, false, false, nil)
	if err != nil {
		return fmt.Errorf("注册消费者失败: %w", err)
	}

	log.Println("[消费者] 已启动，等待结算事件...")

	for {
		select {
		case <-ctx.Done():
			log.Println("[消费者] 已停止")
			return nil
		case msg, ok := <-msgs:
			if !ok {
				log.Println("[消费者] 消息通道已关闭")
				return nil
			}
			log.Printf("[消费者] ✓ 接收: %s", string(msg.Body))
		}
	}
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := Consumer(ctx); err != nil {
			log.Fatalf("[消费者] 错误: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("正在停止...")
	cancel()
}
