// Package messaging bridges the catalog to the message broker. Other
// services request product listings by category over a fetch topic and
// receive the matching products on a response topic.
package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"time"

	"kommshop-catalog/internal/config"
	"kommshop-catalog/internal/domain"
	"kommshop-catalog/internal/service"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// FetchProductsRequest asks for the products of a single category. An
// empty category means the full catalog.
type FetchProductsRequest struct {
	Category string `json:"category"`
}

// FetchProductsResponse carries the matching products back to the caller.
type FetchProductsResponse struct {
	Category string            `json:"category"`
	Products []*domain.Product `json:"products"`
}

// Listener consumes fetch requests and publishes product listings.
type Listener struct {
	reader   *kafka.Reader
	writer   *kafka.Writer
	products service.ProductService
	logger   *zap.Logger
}

func NewListener(cfg config.MessagingConfig, products service.ProductService, logger *zap.Logger) *Listener {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		Topic:    cfg.FetchTopic,
		GroupID:  cfg.GroupID,
		MinBytes: 1,
		MaxBytes: 10e6,
		MaxWait:  3 * time.Second,
	})

	writer := &kafka.Writer{
		Addr:     kafka.TCP(cfg.Brokers...),
		Topic:    cfg.ResponseTopic,
		Balancer: &kafka.LeastBytes{},
	}

	return &Listener{
		reader:   reader,
		writer:   writer,
		products: products,
		logger:   logger.With(zap.String("component", "product_listener")),
	}
}

// Run starts the listener loop. Blocks until the context is cancelled.
func (l *Listener) Run(ctx context.Context) error {
	l.logger.Info("Starting product fetch listener")

	for {
		msg, err := l.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				l.logger.Info("Product fetch listener stopped")
				return ctx.Err()
			}
			// A closed reader yields io.EOF; the loop must not spin on it
			if errors.Is(err, io.EOF) {
				l.logger.Info("Product fetch listener closed")
				return nil
			}
			l.logger.Error("Failed to read message", zap.Error(err))
			continue
		}

		var req FetchProductsRequest
		if err := json.Unmarshal(msg.Value, &req); err != nil {
			l.logger.Error("Failed to unmarshal fetch request",
				zap.Error(err),
				zap.String("raw_value", string(msg.Value)),
			)
			continue
		}

		if err := l.handleFetch(ctx, req); err != nil {
			l.logger.Error("Failed to handle fetch request",
				zap.Error(err),
				zap.String("category", req.Category),
			)
		}
	}
}

func (l *Listener) handleFetch(ctx context.Context, req FetchProductsRequest) error {
	products, err := l.products.FindAll(ctx, "", req.Category)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(FetchProductsResponse{
		Category: req.Category,
		Products: products,
	})
	if err != nil {
		return err
	}

	if err := l.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(req.Category),
		Value: payload,
	}); err != nil {
		return err
	}

	l.logger.Debug("Published product listing",
		zap.String("category", req.Category),
		zap.Int("count", len(products)),
	)
	return nil
}

// Close releases the broker connections.
func (l *Listener) Close() error {
	rerr := l.reader.Close()
	werr := l.writer.Close()
	if rerr != nil {
		return rerr
	}
	return werr
}
