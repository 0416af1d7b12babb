package util

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// KafkaProducer обертка над Kafka writer для публикации событий аудита
// (создание/удаление пользователей, изменение ролей) в топик auth_events
type KafkaProducer struct {
	writer *kafka.Writer
}

// NewKafkaProducer создает новый Kafka producer.
// brokers - список брокеров в формате ["host:port"], topic - топик событий.
func NewKafkaProducer(brokers []string, topic string) *KafkaProducer {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
		// Небольшой батч: события аудита редкие, важна задержка, а не пропускная способность
		BatchSize:    10,
		BatchTimeout: 1 * time.Second,
	}

	return &KafkaProducer{writer: writer}
}

// PublishMessage отправляет сообщение в Kafka.
// key используется для партиционирования (ID пользователя или роли,
// чтобы события одной сущности сохраняли порядок).
func (p *KafkaProducer) PublishMessage(ctx context.Context, key string, value []byte) error {
	message := kafka.Message{
		Key:   []byte(key),
		Value: value,
		Time:  time.Now(),
	}

	if err := p.writer.WriteMessages(ctx, message); err != nil {
		return fmt.Errorf("failed to write message to kafka: %w", err)
	}

	return nil
}

// Close закрывает Kafka writer и освобождает ресурсы
func (p *KafkaProducer) Close() error {
	return p.writer.Close()
}
