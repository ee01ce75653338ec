package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"gopherai-insight/internal/model"
	"gopherai-insight/internal/platform/rabbitmq"
)

// MessageWriter stores one chat message.
type MessageWriter interface {
	Create(ctx context.Context, message *model.ChatMessage) error
}

// MessagePersistWorker drains the persist queue into the conversation log.
type MessagePersistWorker struct {
	conn      *amqp.Connection
	writer    MessageWriter
	queueName string
	logger    *zap.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

var errUndecodable = errors.New("undecodable chat message")

func NewMessagePersistWorker(conn *amqp.Connection, writer MessageWriter, queueName string, logger *zap.Logger) *MessagePersistWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MessagePersistWorker{
		conn:      conn,
		writer:    writer,
		queueName: queueName,
		logger:    logger.With(zap.String("queue", queueName)),
	}
}

func (w *MessagePersistWorker) Start(ctx context.Context) error {
	if w.cancel != nil {
		return nil
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	ch, err := w.conn.Channel()
	if err != nil {
		cancel()
		return fmt.Errorf("open worker channel failed: %w", err)
	}

	if err := rabbitmq.DeclareQueue(ch, w.queueName); err != nil {
		_ = ch.Close()
		cancel()
		return err
	}

	deliveries, err := ch.Consume(
		w.queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("consume queue failed: %w", err)
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer ch.Close()

		for {
			select {
			case <-workerCtx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}
				if err := w.handle(workerCtx, d.Body); err != nil {
					// undecodable payloads are dropped; store failures are retried
					_ = d.Nack(false, !errors.Is(err, errUndecodable) && !d.Redelivered)
					continue
				}
				_ = d.Ack(false)
			}
		}
	}()

	return nil
}

func (w *MessagePersistWorker) handle(ctx context.Context, body []byte) error {
	var msg model.ChatMessage
	if err := json.Unmarshal(body, &msg); err != nil || msg.ID == "" {
		w.logger.Error("worker decode chat message failed", zap.Error(err), zap.Int("bytes", len(body)))
		return errUndecodable
	}
	if err := w.writer.Create(ctx, &msg); err != nil {
		w.logger.Error("worker persist chat message failed",
			zap.String("message_id", msg.ID),
			zap.Uint("user_id", msg.UserID),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (w *MessagePersistWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
