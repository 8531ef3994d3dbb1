package dag

import (
	"context"
	"time"

	"github.com/kbukum/sitekit/logger"
	"github.com/kbukum/sitekit/observability"
)

// WithTracing wraps a Node with a span named spanName carrying the node name
// under attrKey.
func WithTracing(node Node, spanName, attrKey string) Node {
	return &tracingNode{inner: node, spanName: spanName, attrKey: attrKey}
}

type tracingNode struct {
	inner    Node
	spanName string
	attrKey  string
}

func (n *tracingNode) Name() string { return n.inner.Name() }

func (n *tracingNode) Run(ctx context.Context, state *State) (any, error) {
	ctx, span := observability.StartSpan(ctx, n.spanName)
	defer span.End()

	observability.SetSpanAttribute(ctx, n.attrKey, n.inner.Name())

	result, err := n.inner.Run(ctx, state)
	if err != nil {
		observability.SetSpanError(ctx, err)
	} else {
		observability.SetSpanAttribute(ctx, observability.AttrDocuments, sizeOf(result))
	}

	return result, err
}

// WithMetrics wraps a Node with pipeline metric recording.
func WithMetrics(node Node, metrics *observability.Metrics) Node {
	return &metricsNode{inner: node, metrics: metrics}
}

type metricsNode struct {
	inner   Node
	metrics *observability.Metrics
}

func (n *metricsNode) Name() string { return n.inner.Name() }

func (n *metricsNode) Run(ctx context.Context, state *State) (any, error) {
	start := time.Now()
	result, err := n.inner.Run(ctx, state)
	duration := time.Since(start)

	status := "ok"
	if err != nil {
		status = "error"
		n.metrics.RecordError(ctx, "execute", n.inner.Name())
	}
	n.metrics.RecordPipeline(ctx, n.inner.Name(), status, sizeOf(result), duration)

	return result, err
}

// WithLogging wraps a Node with start/finish logging.
func WithLogging(node Node, log *logger.Logger) Node {
	return &loggingNode{inner: node, log: log}
}

type loggingNode struct {
	inner Node
	log   *logger.Logger
}

func (n *loggingNode) Name() string { return n.inner.Name() }

func (n *loggingNode) Run(ctx context.Context, state *State) (any, error) {
	log := n.log.WithPipeline(n.inner.Name())
	log.Info("pipeline started")

	start := time.Now()
	result, err := n.inner.Run(ctx, state)
	duration := time.Since(start)

	fields := logger.DurationFields("execute", duration)
	if err != nil {
		log.WithError(err).Error("pipeline failed", fields)
	} else {
		fields[logger.FieldDocuments] = sizeOf(result)
		log.Info("pipeline finished", fields)
	}

	return result, err
}
