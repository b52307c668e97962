// Package broker escolhe o transporte de mensagens a partir de QUEUE_DRIVER
package broker

import (
	"context"
	"fmt"

	"github.com/vfg2006/invoice-report-api/infrastructure/messaging"
	"github.com/vfg2006/invoice-report-api/infrastructure/messaging/rabbitmq"
	"github.com/vfg2006/invoice-report-api/infrastructure/messaging/redisqueue"
	"github.com/vfg2006/invoice-report-api/internal/config"
	"github.com/vfg2006/invoice-report-api/pkg/log"
)

func New(ctx context.Context, cfg *config.Config) (messaging.Broker, error) {
	switch cfg.Queue.Driver {
	case config.QueueDriverRabbitMQ:
		b, err := rabbitmq.Dial(cfg.RabbitMQ.URL, cfg.RabbitMQ.Prefetch)
		if err != nil {
			return nil, err
		}
		log.L.Info("Conexão com RabbitMQ estabelecida com sucesso")
		return b, nil

	case config.QueueDriverRedis:
		q, err := redisqueue.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.PollTimeout)
		if err != nil {
			return nil, err
		}
		log.L.Info("Conexão com Redis estabelecida com sucesso")
		return q, nil

	default:
		return nil, fmt.Errorf("broker: driver de fila desconhecido %q", cfg.Queue.Driver)
	}
}
