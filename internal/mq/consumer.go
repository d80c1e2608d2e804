// Package mq provides a RabbitMQ consumer for audit records.
// Services publish flat JSON records to the audit exchange; this consumer
// masks the sensitive fields of each record and writes it to the audit log.
package mq

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/samber/lo"
	"go.opentelemetry.io/otel/attribute"

	"github.com/eco2-team/backend/domains/data-shield/internal/constants"
	"github.com/eco2-team/backend/domains/data-shield/internal/logging"
	"github.com/eco2-team/backend/domains/data-shield/internal/metrics"
	"github.com/eco2-team/backend/domains/data-shield/internal/shield"
	"github.com/eco2-team/backend/domains/data-shield/internal/tracing"
)

const (
	// exchangeType is fanout so every audit sink sees every record.
	exchangeType = "fanout"

	spanRecord = "mq.audit_record"
)

// Metrics for MQ consumer
var (
	mqRecordsReceived = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "data_shield",
		Subsystem: "mq",
		Name:      "records_received_total",
		Help:      "Total number of audit records received from RabbitMQ",
	})

	mqRecordsProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "data_shield",
		Subsystem: "mq",
		Name:      "records_processed_total",
		Help:      "Total number of audit records masked and logged",
	})

	mqRecordsFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "data_shield",
		Subsystem: "mq",
		Name:      "records_failed_total",
		Help:      "Total number of audit records that could not be masked",
	}, []string{"reason"})

	mqConnectionStatus = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "data_shield",
		Subsystem: "mq",
		Name:      "connection_status",
		Help:      "Current connection status (1=connected, 0=disconnected)",
	})

	mqReconnects = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "data_shield",
		Subsystem: "mq",
		Name:      "reconnects_total",
		Help:      "Total number of reconnection attempts",
	})
)

// AuditConsumer consumes audit records from RabbitMQ.
type AuditConsumer struct {
	amqpURL  string
	exchange string
	shield   *shield.Shield
	logger   *logging.Logger
	done     chan struct{}
}

// NewAuditConsumer creates a new AuditConsumer bound to exchange.
func NewAuditConsumer(amqpURL, exchange string, sh *shield.Shield, logger *logging.Logger) (*AuditConsumer, error) {
	if sh == nil {
		return nil, errors.New(constants.ErrShieldRequired)
	}
	if logger == nil {
		return nil, errors.New(constants.ErrLoggerRequired)
	}
	if exchange == "" {
		exchange = constants.DefaultAuditExchange
	}
	return &AuditConsumer{
		amqpURL:  amqpURL,
		exchange: exchange,
		shield:   sh,
		logger:   logger,
		done:     make(chan struct{}),
	}, nil
}

// Start begins consuming records from RabbitMQ.
// It will automatically reconnect on connection failure.
func (c *AuditConsumer) Start() {
	go c.consumeLoop()
}

// Stop stops the consumer.
func (c *AuditConsumer) Stop() {
	close(c.done)
}

// consumeLoop handles connection and reconnection to RabbitMQ.
func (c *AuditConsumer) consumeLoop() {
	for {
		select {
		case <-c.done:
			c.logger.Info("MQ consumer stopped")
			return
		default:
			if err := c.connect(); err != nil {
				c.logger.Error("MQ connection failed",
					"error", err,
					"retry_in", constants.ReconnectDelay,
				)
				mqConnectionStatus.Set(0)
				mqReconnects.Inc()
				select {
				case <-c.done:
				case <-time.After(constants.ReconnectDelay):
				}
				continue
			}
		}
	}
}

// connect establishes a connection to RabbitMQ and starts consuming.
func (c *AuditConsumer) connect() error {
	conn, err := amqp.Dial(c.amqpURL)
	if err != nil {
		return err
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	err = ch.ExchangeDeclare(
		c.exchange,   // name
		exchangeType, // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		return err
	}

	// Declare anonymous exclusive queue
	q, err := ch.QueueDeclare(
		"",    // name (auto-generated)
		false, // durable
		true,  // delete when unused
		true,  // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return err
	}

	err = ch.QueueBind(
		q.Name,     // queue name
		"",         // routing key (ignored for fanout)
		c.exchange, // exchange
		false,      // no-wait
		nil,        // arguments
	)
	if err != nil {
		return err
	}

	msgs, err := ch.Consume(
		q.Name, // queue
		"",     // consumer tag
		true,   // auto-ack
		true,   // exclusive
		false,  // no-local
		false,  // no-wait
		nil,    // arguments
	)
	if err != nil {
		return err
	}

	mqConnectionStatus.Set(1)
	c.logger.Info("MQ consumer connected",
		"exchange", c.exchange,
		"queue", q.Name,
	)

	connClose := conn.NotifyClose(make(chan *amqp.Error, 1))

	for {
		select {
		case <-c.done:
			return nil
		case err := <-connClose:
			c.logger.Warn("MQ connection closed", "error", err)
			mqConnectionStatus.Set(0)
			return err
		case msg, ok := <-msgs:
			if !ok {
				mqConnectionStatus.Set(0)
				return amqp.ErrClosed
			}
			c.handleMessage(context.Background(), msg.Body)
		}
	}
}

// handleMessage masks one flat JSON record and logs it.
// Rejected records are counted and logged without their body.
func (c *AuditConsumer) handleMessage(ctx context.Context, body []byte) {
	ctx, span := tracing.StartSpan(ctx, spanRecord, attribute.Int("record.size", len(body)))
	defer span.End()

	mqRecordsReceived.Inc()

	masked, err := c.shield.MaskFlatJSON(string(body))
	if err != nil {
		reason, errType := constants.ReasonMalformedRecord, metrics.ErrorTypeRecordMalformed
		if errors.Is(err, shield.ErrTypeMismatch) {
			reason, errType = constants.ReasonTypeMismatch, metrics.ErrorTypeRecordType
		}
		tracing.SetError(ctx, err, reason)
		mqRecordsFailed.WithLabelValues(reason).Inc()
		metrics.ErrorsTotal.WithLabelValues(errType).Inc()
		c.logger.WithContext(ctx).AuditRecordRejected(reason, len(body), err)
		return
	}

	metrics.FieldsMasked.WithLabelValues(metrics.SourceRecord).Add(float64(c.countSensitive(masked)))
	c.logger.WithContext(ctx).AuditRecord(masked, c.exchange)
	mqRecordsProcessed.Inc()
}

// countSensitive counts the sensitive keys of an already masked record.
func (c *AuditConsumer) countSensitive(masked string) int {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(masked), &fields); err != nil {
		return 0
	}
	return lo.CountBy(lo.Keys(fields), c.shield.IsSensitive)
}
