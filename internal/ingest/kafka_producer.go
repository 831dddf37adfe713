package ingest

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/example/cabshare/internal/models"
)

// RideProducer publishes newly posted rides so the backfill worker can
// enrich them asynchronously.
type RideProducer struct {
	writer *kafka.Writer
}

func NewRideProducer(brokers []string, topic string) *RideProducer {
	w := kafka.NewWriter(kafka.WriterConfig{Brokers: brokers, Topic: topic, Balancer: &kafka.LeastBytes{}})
	return &RideProducer{writer: w}
}

func (p *RideProducer) PublishRidePosted(r models.Ride) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	b, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{Key: []byte(r.ID), Value: b})
}

func (p *RideProducer) Close() error {
	if p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
