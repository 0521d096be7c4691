package core

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	operationTransferAsset = "transfer_asset"
	operationCanCheckIn    = "can_check_in"
	operationCheckIn       = "check_in"
	operationCanCheckOut   = "can_check_out"
	operationCheckOut      = "check_out"
	operationDepositAsset  = "deposit_asset"
	operationWithdrawAsset = "withdraw_asset"
)

// observer bundles the logger, metrics recorder and tracer shared by the
// adapters.
type observer struct {
	logger          Logger
	metricsRecorder MetricsRecorder
	tracer          trace.Tracer
}

func newObserver(s settings) observer {
	return observer{
		logger:          s.logger,
		metricsRecorder: s.metricsRecorder,
		tracer:          s.tracer,
	}
}

type operationScope struct {
	observer  observer
	ctx       context.Context
	span      trace.Span
	operation string
	startedAt time.Time
	fields    map[string]any
	failure   error
}

// begin logs the call at trace level and opens a span. The returned scope
// must be closed with end.
func (o observer) begin(ctx context.Context, operation string, fields map[string]any) *operationScope {
	if ctx == nil {
		ctx = context.Background()
	}
	scope := &operationScope{
		observer:  o,
		ctx:       ctx,
		operation: operation,
		startedAt: time.Now(),
		fields:    cloneFields(fields),
	}
	if o.tracer != nil {
		scope.ctx, scope.span = o.tracer.Start(ctx, "nonfungibles."+operation,
			trace.WithAttributes(spanAttributes(fields)...),
		)
	}
	o.log(scope.ctx, "trace", operation, fields)
	return scope
}

func (s *operationScope) context() context.Context {
	if s == nil || s.ctx == nil {
		return context.Background()
	}
	return s.ctx
}

func (s *operationScope) set(key string, value any) {
	if s == nil {
		return
	}
	s.fields[key] = value
	if s.span != nil {
		s.span.SetAttributes(attribute.String(key, fmt.Sprint(value)))
	}
}

// fail records err as the outcome even when end is later called with nil,
// as happens when a deferred end runs while a commit panics.
func (s *operationScope) fail(err error) {
	if s == nil || err == nil {
		return
	}
	s.failure = err
}

func (s *operationScope) end(err error) {
	if s == nil {
		return
	}
	if err == nil {
		err = s.failure
	}
	status := "success"
	if err != nil {
		status = "failure"
	}
	tags := map[string]string{
		"operation": s.operation,
		"status":    status,
	}
	if mode, ok := s.fields["tracking_mode"]; ok {
		tags["tracking_mode"] = fmt.Sprint(mode)
	}
	if err != nil {
		tags["error_code"] = errorCode(err)
		fields := cloneFields(s.fields)
		fields["error"] = err.Error()
		fields["error_code"] = tags["error_code"]
		s.observer.log(s.ctx, "debug", s.operation+" rejected", fields)
	}

	ctx := s.context()
	if s.observer.metricsRecorder != nil {
		s.observer.metricsRecorder.IncCounter(ctx, "nonfungibles."+s.operation+".total", 1, cloneTags(tags))
		s.observer.metricsRecorder.ObserveHistogram(
			ctx,
			"nonfungibles."+s.operation+".duration_ms",
			float64(time.Since(s.startedAt).Microseconds())/1000,
			cloneTags(tags),
		)
	}
	if s.span != nil {
		if err != nil {
			s.span.RecordError(err)
			s.span.SetStatus(codes.Error, errorCode(err))
		}
		s.span.End()
	}
}

func (o observer) invariantViolated(ctx context.Context, violation *InvariantViolation) {
	fields := itemMetadata(violation.Item)
	fields["operation"] = violation.Operation
	fields["tracking_mode"] = string(violation.Mode)
	if violation.Cause != nil {
		fields["error"] = violation.Cause.Error()
	}
	o.log(ctx, "error", "invariant violation", fields)
	if o.metricsRecorder != nil {
		o.metricsRecorder.IncCounter(ctx, "nonfungibles.invariant_violation.total", 1, map[string]string{
			"operation":     violation.Operation,
			"tracking_mode": string(violation.Mode),
		})
	}
}

func (o observer) log(ctx context.Context, level string, message string, fields map[string]any) {
	if o.logger == nil {
		return
	}
	logger := o.logger
	if ctx != nil {
		logger = logger.WithContext(ctx)
	}
	if fieldsLogger, ok := logger.(FieldsLogger); ok {
		logger = fieldsLogger.WithFields(cloneFields(fields))
	}
	args := flattenFields(fields)
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "error":
		logger.Error(message, args...)
	case "debug":
		logger.Debug(message, args...)
	default:
		logger.Trace(message, args...)
	}
}

func spanAttributes(fields map[string]any) []attribute.KeyValue {
	if len(fields) == 0 {
		return nil
	}
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	attrs := make([]attribute.KeyValue, 0, len(keys))
	for _, key := range keys {
		attrs = append(attrs, attribute.String(key, fmt.Sprint(fields[key])))
	}
	return attrs
}

func cloneFields(fields map[string]any) map[string]any {
	if len(fields) == 0 {
		return map[string]any{}
	}
	copied := make(map[string]any, len(fields))
	for key, value := range fields {
		copied[key] = value
	}
	return copied
}

func cloneTags(tags map[string]string) map[string]string {
	copied := make(map[string]string, len(tags))
	for key, value := range tags {
		copied[key] = value
	}
	return copied
}

func flattenFields(fields map[string]any) []any {
	if len(fields) == 0 {
		return nil
	}
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	args := make([]any, 0, len(keys)*2)
	for _, key := range keys {
		args = append(args, key, fields[key])
	}
	return args
}

func mergeFields(sets ...map[string]any) map[string]any {
	out := map[string]any{}
	for _, set := range sets {
		for key, value := range set {
			out[key] = value
		}
	}
	return out
}
