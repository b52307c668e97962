// Package rabbitmq implementa o broker de mensagens sobre RabbitMQ (AMQP 0-9-1)
package rabbitmq

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/vfg2006/invoice-report-api/infrastructure/messaging"
	"github.com/vfg2006/invoice-report-api/pkg/log"
	"github.com/vfg2006/invoice-report-api/pkg/utils"
)

// channel é o subconjunto de *amqp091.Channel usado pelo broker
type channel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp091.Table) (amqp091.Queue, error)
	Qos(prefetchCount, prefetchSize int, global bool) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp091.Table) (<-chan amqp091.Delivery, error)
	Close() error
}

type channelOpener func() (channel, error)

var _ messaging.Broker = (*Broker)(nil)

// Broker publica e consome mensagens em filas duráveis usando a exchange padrão
type Broker struct {
	conn     *amqp091.Connection
	open     channelOpener
	prefetch int

	// Um único channel de publicação protegido por mutex
	pubMu    sync.Mutex
	pub      channel
	declared map[string]bool
}

// Dial conecta ao RabbitMQ e abre o channel de publicação
func Dial(url string, prefetch int) (*Broker, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq: erro ao conectar: %w", err)
	}

	broker, err := newBroker(func() (channel, error) {
		return conn.Channel()
	}, prefetch)
	if err != nil {
		conn.Close()
		return nil, err
	}
	broker.conn = conn

	return broker, nil
}

func newBroker(open channelOpener, prefetch int) (*Broker, error) {
	pub, err := open()
	if err != nil {
		return nil, fmt.Errorf("rabbitmq: erro ao abrir channel de publicação: %w", err)
	}

	return &Broker{
		open:     open,
		prefetch: prefetch,
		pub:      pub,
		declared: make(map[string]bool),
	}, nil
}

// Publish envia o payload como JSON persistente para a fila topic.
// Não aguarda confirmação do broker.
func (b *Broker) Publish(ctx context.Context, topic string, payload any) error {
	body, err := messaging.Encode(payload)
	if err != nil {
		return fmt.Errorf("rabbitmq: erro ao serializar mensagem: %w", err)
	}

	messageID, err := utils.GenerateID()
	if err != nil {
		return fmt.Errorf("rabbitmq: erro ao gerar message id: %w", err)
	}

	b.pubMu.Lock()
	defer b.pubMu.Unlock()

	if !b.declared[topic] {
		if _, err := declareQueue(b.pub, topic); err != nil {
			return err
		}
		b.declared[topic] = true
	}

	err = b.pub.PublishWithContext(ctx, "", topic, false, false, amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		MessageId:    messageID,
		Timestamp:    time.Now(),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("rabbitmq: erro ao publicar em %s: %w", topic, err)
	}

	log.ForContext(ctx).WithFields(log.Fields{
		"topic":      topic,
		"message_id": messageID,
	}).Info("Mensagem publicada")

	return nil
}

// Subscribe consome a fila topic com ack manual até o contexto ser cancelado.
// Mensagens processadas sem erro recebem ack; as demais são descartadas sem requeue.
func (b *Broker) Subscribe(ctx context.Context, topic string, handler messaging.Handler) error {
	ch, err := b.open()
	if err != nil {
		return fmt.Errorf("rabbitmq: erro ao abrir channel de consumo: %w", err)
	}
	defer ch.Close()

	if b.prefetch > 0 {
		if err := ch.Qos(b.prefetch, 0, false); err != nil {
			return fmt.Errorf("rabbitmq: erro ao configurar QoS: %w", err)
		}
	}

	if _, err := declareQueue(ch, topic); err != nil {
		return err
	}

	deliveries, err := ch.Consume(topic, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("rabbitmq: erro ao consumir %s: %w", topic, err)
	}

	log.L.WithField("topic", topic).Info("🟢 Consumidor RabbitMQ aguardando mensagens")

	for {
		select {
		case <-ctx.Done():
			log.L.WithField("topic", topic).Info("Parando consumidor RabbitMQ")
			return nil
		case msg, ok := <-deliveries:
			if !ok {
				return messaging.ErrClosed
			}
			b.handleDelivery(ctx, topic, msg, handler)
		}
	}
}

func (b *Broker) handleDelivery(ctx context.Context, topic string, msg amqp091.Delivery, handler messaging.Handler) {
	msgCtx := log.WithExistingCorrelationID(ctx, msg.MessageId)
	logger := log.ForContext(msgCtx).WithField("topic", topic)

	if err := messaging.Dispatch(msgCtx, handler, msg.Body); err != nil {
		logger.WithError(err).Error("❌ Mensagem inválida, descartando sem requeue")
		if nackErr := msg.Nack(false, false); nackErr != nil {
			logger.WithError(nackErr).Error("Erro ao enviar nack")
		}
		return
	}

	if err := msg.Ack(false); err != nil {
		logger.WithError(err).Error("Erro ao enviar ack")
	}
}

// Close encerra o channel de publicação e a conexão
func (b *Broker) Close() error {
	b.pubMu.Lock()
	defer b.pubMu.Unlock()

	if err := b.pub.Close(); err != nil {
		log.L.WithError(err).Warn("Erro ao fechar channel de publicação")
	}

	if b.conn != nil {
		return b.conn.Close()
	}
	return nil
}

func declareQueue(ch channel, topic string) (amqp091.Queue, error) {
	queue, err := ch.QueueDeclare(topic, true, false, false, false, nil)
	if err != nil {
		return queue, fmt.Errorf("rabbitmq: erro ao declarar fila %s: %w", topic, err)
	}
	return queue, nil
}
