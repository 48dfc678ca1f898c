package telemetry

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/zgpcy/toutsurmoneau-exporter/internal/logger"
)

// InstrumentResty opens a span around every request made by client and logs
// the exchange at debug level. Request bodies are never recorded, the login
// form carries the account password.
func InstrumentResty(client *resty.Client, tracer trace.Tracer, log *logger.Logger) {
	client.OnBeforeRequest(onBeforeRequest(tracer))
	client.OnAfterResponse(onAfterResponse(log))
	client.OnError(onError(log))
}

func onBeforeRequest(tracer trace.Tracer) resty.RequestMiddleware {
	return func(_ *resty.Client, req *resty.Request) error {
		ctx, _ := tracer.Start(req.Context(), "http "+req.Method, trace.WithSpanKind(trace.SpanKindClient))
		req.SetContext(ctx)
		return nil
	}
}

func onAfterResponse(log *logger.Logger) resty.ResponseMiddleware {
	return func(_ *resty.Client, res *resty.Response) error {
		span := trace.SpanFromContext(res.Request.Context())
		defer span.End()

		span.SetAttributes(
			attribute.String("http.request.method", res.Request.Method),
			attribute.String("url.full", res.Request.URL),
			attribute.Int("http.response.status_code", res.StatusCode()),
			attribute.Int("http.response.body.size", len(res.Body())),
		)
		if res.IsError() {
			span.SetStatus(codes.Error, res.Status())
		}

		log.Debug("HTTP exchange",
			"method", res.Request.Method,
			"url", res.Request.URL,
			"status", res.StatusCode(),
			"duration_ms", res.Time().Milliseconds())
		return nil
	}
}

func onError(log *logger.Logger) resty.ErrorHook {
	return func(req *resty.Request, err error) {
		span := trace.SpanFromContext(req.Context())
		defer span.End()

		span.SetAttributes(
			attribute.String("http.request.method", req.Method),
			attribute.String("url.full", req.URL),
		)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		log.Debug("HTTP request failed",
			"method", req.Method,
			"url", req.URL,
			"error", err)
	}
}

// StartStep opens a child span for one named step of a larger operation.
// The returned func ends the span and records *err when it is non-nil.
func StartStep(ctx context.Context, tracer trace.Tracer, name string, attrs ...attribute.KeyValue) (context.Context, func(err *error)) {
	started := time.Now()
	ctx, span := tracer.Start(ctx, name, trace.WithAttributes(attrs...))
	return ctx, func(err *error) {
		span.SetAttributes(attribute.Int64("step.duration_ms", time.Since(started).Milliseconds()))
		if err != nil && *err != nil {
			span.RecordError(*err)
			span.SetStatus(codes.Error, (*err).Error())
		}
		span.End()
	}
}
