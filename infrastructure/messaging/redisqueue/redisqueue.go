// Package redisqueue implementa o broker de mensagens sobre listas do Redis.
// A entrega é at-most-once: a mensagem sai da lista antes de ser processada.
package redisqueue

import (
	"context"
	"errors"
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"
	"github.com/vfg2006/invoice-report-api/infrastructure/messaging"
	"github.com/vfg2006/invoice-report-api/pkg/log"
	"github.com/vfg2006/invoice-report-api/pkg/utils"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	keyPrefix          = "queue:"
	defaultPollTimeout = 5 * time.Second
)

// envelope carrega o message id junto do payload original
type envelope struct {
	ID      string              `json:"id"`
	Payload jsoniter.RawMessage `json:"payload"`
}

var _ messaging.Broker = (*Queue)(nil)

type Queue struct {
	rdb         *redis.Client
	pollTimeout time.Duration
}

// New cria a fila sobre um client já configurado
func New(rdb *redis.Client, pollTimeout time.Duration) *Queue {
	if pollTimeout <= 0 {
		pollTimeout = defaultPollTimeout
	}
	return &Queue{rdb: rdb, pollTimeout: pollTimeout}
}

// Connect abre o client Redis e verifica a conexão
func Connect(ctx context.Context, addr, password string, db int, pollTimeout time.Duration) (*Queue, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redisqueue: erro ao conectar em %s: %w", addr, err)
	}

	return New(rdb, pollTimeout), nil
}

func key(topic string) string {
	return keyPrefix + topic
}

func (q *Queue) Publish(ctx context.Context, topic string, payload any) error {
	body, err := messaging.Encode(payload)
	if err != nil {
		return fmt.Errorf("redisqueue: erro ao serializar mensagem: %w", err)
	}

	messageID, err := utils.GenerateID()
	if err != nil {
		return fmt.Errorf("redisqueue: erro ao gerar message id: %w", err)
	}

	data, err := json.Marshal(envelope{ID: messageID, Payload: body})
	if err != nil {
		return fmt.Errorf("redisqueue: erro ao montar envelope: %w", err)
	}

	if err := q.rdb.LPush(ctx, key(topic), data).Err(); err != nil {
		return fmt.Errorf("redisqueue: erro ao publicar em %s: %w", topic, err)
	}

	log.ForContext(ctx).WithFields(log.Fields{
		"topic":      topic,
		"message_id": messageID,
	}).Info("Mensagem publicada")

	return nil
}

// Subscribe faz polling bloqueante (BRPOP) na lista do tópico até o contexto
// ser cancelado. Erros do handler apenas descartam a mensagem.
func (q *Queue) Subscribe(ctx context.Context, topic string, handler messaging.Handler) error {
	log.L.WithField("topic", topic).Info("🟢 Consumidor Redis aguardando mensagens")

	for {
		if ctx.Err() != nil {
			log.L.WithField("topic", topic).Info("Parando consumidor Redis")
			return nil
		}

		result, err := q.rdb.BRPop(ctx, q.pollTimeout, key(topic)).Result()
		if err != nil {
			switch {
			case errors.Is(err, redis.Nil):
				continue
			case ctx.Err() != nil:
				continue
			case errors.Is(err, redis.ErrClosed):
				return messaging.ErrClosed
			default:
				return fmt.Errorf("redisqueue: erro ao consumir %s: %w", topic, err)
			}
		}

		// BRPOP retorna [chave, valor]
		if len(result) != 2 {
			continue
		}

		q.handleMessage(ctx, topic, []byte(result[1]), handler)
	}
}

func (q *Queue) handleMessage(ctx context.Context, topic string, data []byte, handler messaging.Handler) {
	var msg envelope
	if err := json.Unmarshal(data, &msg); err != nil {
		log.L.WithField("topic", topic).WithError(err).Error("❌ Envelope inválido, descartando mensagem")
		return
	}

	msgCtx := log.WithExistingCorrelationID(ctx, msg.ID)
	if err := messaging.Dispatch(msgCtx, handler, msg.Payload); err != nil {
		log.ForContext(msgCtx).WithField("topic", topic).WithError(err).Error("❌ Mensagem inválida, descartando")
	}
}

func (q *Queue) Close() error {
	return q.rdb.Close()
}
