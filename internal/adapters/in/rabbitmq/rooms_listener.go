package rabbitmq

import (
	"context"
	"fmt"
	"strings"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/suchimauz/meeting-rooms-availability/internal/config"
	"github.com/suchimauz/meeting-rooms-availability/internal/core/ports/in"
	"github.com/suchimauz/meeting-rooms-availability/internal/core/ports/out"
)

type (
	RoomsResourceType string
	RoomsAction       string
)

const RoomsResource RoomsResourceType = "rooms"

const (
	RoomsActionInvalidate RoomsAction = "invalidate"
	RoomsActionRefresh    RoomsAction = "refresh"
)

type RoomsMessageRoutingKey struct {
	Source       string
	Receiver     string
	ResourceType RoomsResourceType
	Action       RoomsAction
}

// RoomsListener слушает события каталога и сбрасывает или пересобирает кэш переговорок
type RoomsListener struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	useCase in.RoomAvailabilityUseCase
	cfg     *config.Config
	logger  out.LoggerPort
}

func NewRoomsListener(useCase in.RoomAvailabilityUseCase, cfg *config.Config, logger out.LoggerPort) (*RoomsListener, error) {
	if !cfg.RabbitMQ.Enabled {
		logger.Info("rabbitmq.disabled", out.LogFields{
			"message": "RabbitMQ is disabled, listener will not be started",
		})
		return nil, nil
	}

	conn, err := amqp.Dial(cfg.RabbitMQ.URL)
	if err != nil {
		logger.Error("rabbitmq.connect.failed", out.LogFields{
			"error": err.Error(),
		})
		return nil, err
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		logger.Error("rabbitmq.channel.failed", out.LogFields{
			"error": err.Error(),
		})
		return nil, err
	}

	return newRoomsListener(useCase, cfg, logger, conn, channel), nil
}

func newRoomsListener(useCase in.RoomAvailabilityUseCase, cfg *config.Config, logger out.LoggerPort, conn *amqp.Connection, channel *amqp.Channel) *RoomsListener {
	return &RoomsListener{
		conn:    conn,
		channel: channel,
		useCase: useCase,
		cfg:     cfg,
		logger:  logger,
	}
}

func (l *RoomsListener) Start(ctx context.Context) error {
	queue, err := l.channel.QueueDeclare(
		l.cfg.RabbitMQ.Queue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return err
	}

	err = l.channel.QueueBind(
		queue.Name,
		l.cfg.RabbitMQ.Bind,
		l.cfg.RabbitMQ.Exchange,
		false,
		nil,
	)
	if err != nil {
		return err
	}

	msgs, err := l.channel.Consume(
		queue.Name,
		"",    // consumer
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		return err
	}

	go l.consume(ctx, msgs)

	l.logger.Info("rooms.queue.started", out.LogFields{
		"queue":    queue.Name,
		"exchange": l.cfg.RabbitMQ.Exchange,
		"bind":     l.cfg.RabbitMQ.Bind,
	})

	return nil
}

func (l *RoomsListener) Stop() error {
	if l == nil || l.channel == nil {
		return nil
	}

	if err := l.channel.Close(); err != nil {
		return err
	}
	return l.conn.Close()
}

func (l *RoomsListener) consume(ctx context.Context, msgs <-chan amqp.Delivery) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				l.logger.Warn("rooms.queue.closed", out.LogFields{})
				return
			}
			l.handleDelivery(ctx, msg)
		}
	}
}

func (l *RoomsListener) handleDelivery(ctx context.Context, msg amqp.Delivery) {
	routingKey, err := parseRoutingKey(msg.RoutingKey)
	if err != nil {
		l.logger.Warn("rooms.message.rejected", out.LogFields{
			"routingKey": msg.RoutingKey,
			"error":      err.Error(),
		})
		// Повторная доставка такого сообщения ничего не изменит
		_ = msg.Nack(false, false)
		return
	}

	if err := l.processMessage(ctx, routingKey); err != nil {
		// refresh не возвращаем в очередь: каталог недоступен, а следующий запрос
		// всё равно пересоберёт список
		requeue := routingKey.Action != RoomsActionRefresh
		l.logger.Error("rooms.message.failed", out.LogFields{
			"routingKey": msg.RoutingKey,
			"requeue":    requeue,
			"error":      err.Error(),
		})
		_ = msg.Nack(false, requeue)
		return
	}

	_ = msg.Ack(false)
}

func (l *RoomsListener) processMessage(ctx context.Context, routingKey RoomsMessageRoutingKey) error {
	switch routingKey.Action {
	case RoomsActionInvalidate:
		if err := l.useCase.InvalidateRooms(ctx); err != nil {
			return err
		}
	case RoomsActionRefresh:
		if _, _, err := l.useCase.ListRooms(ctx, in.ListRoomsOptions{Refresh: true}); err != nil {
			return err
		}
	}

	l.logger.Info("rooms.message.processed", out.LogFields{
		"source": routingKey.Source,
		"action": string(routingKey.Action),
	})

	return nil
}

// Пример routingKey:
// directory.meeting-rooms-svc.rooms.invalidate
// directory.meeting-rooms-svc.rooms.refresh
func parseRoutingKey(routingKey string) (RoomsMessageRoutingKey, error) {
	parts := strings.Split(routingKey, ".")
	if len(parts) != 4 {
		return RoomsMessageRoutingKey{}, fmt.Errorf("invalid routing key: %s", routingKey)
	}

	key := RoomsMessageRoutingKey{
		Source:       parts[0],
		Receiver:     parts[1],
		ResourceType: RoomsResourceType(parts[2]),
		Action:       RoomsAction(parts[3]),
	}

	if key.ResourceType != RoomsResource {
		return RoomsMessageRoutingKey{}, fmt.Errorf("unsupported resource type: %s", key.ResourceType)
	}

	switch key.Action {
	case RoomsActionInvalidate, RoomsActionRefresh:
	default:
		return RoomsMessageRoutingKey{}, fmt.Errorf("unsupported action: %s", key.Action)
	}

	return key, nil
}
