// Package messaging define o contrato de publicação e consumo de mensagens,
// independente do broker usado (RabbitMQ ou Redis).
package messaging

import (
	"context"
	"errors"
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

//go:generate mockgen -source=messaging.go -destination=mocks/messaging.go -package=mocks

// ErrClosed é retornado quando o broker encerra a entrega de mensagens
var ErrClosed = errors.New("messaging: delivery channel closed")

// Handler processa o corpo de uma mensagem. Um erro indica que a mensagem é
// inválida e deve ser descartada sem reentrega.
type Handler func(ctx context.Context, body []byte) error

// Publisher publica mensagens sem aguardar confirmação do broker
type Publisher interface {
	Publish(ctx context.Context, topic string, payload any) error
}

// Subscriber consome mensagens do tópico até o contexto ser cancelado
type Subscriber interface {
	Subscribe(ctx context.Context, topic string, handler Handler) error
}

// Broker agrupa publicação, consumo e encerramento da conexão
type Broker interface {
	Publisher
	Subscriber
	Close() error
}

// Encode serializa o payload em JSON; []byte é repassado sem alteração
func Encode(payload any) ([]byte, error) {
	if body, ok := payload.([]byte); ok {
		return body, nil
	}
	return json.Marshal(payload)
}

// Dispatch executa o handler convertendo um panic em erro
func Dispatch(ctx context.Context, handler Handler, body []byte) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("messaging: panic no handler: %v", r)
		}
	}()

	return handler(ctx, body)
}
