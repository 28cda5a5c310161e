package logging

import (
	"context"
)

const (
	TraceIDKey     = "trace_id"
	ExchangeIDKey  = "exchange_id"
	RouteIDKey     = "route_id"
	ServiceNameKey = "service_name"
)

func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, TraceIDKey, traceID)
}

func WithExchangeID(ctx context.Context, exchangeID string) context.Context {
	return context.WithValue(ctx, ExchangeIDKey, exchangeID)
}

func WithRouteID(ctx context.Context, routeID string) context.Context {
	return context.WithValue(ctx, RouteIDKey, routeID)
}

func WithServiceName(ctx context.Context, serviceName string) context.Context {
	return context.WithValue(ctx, ServiceNameKey, serviceName)
}

func GetTraceID(ctx context.Context) string {
	if traceID, ok := ctx.Value(TraceIDKey).(string); ok {
		return traceID
	}
	return ""
}

func GetExchangeID(ctx context.Context) string {
	if exchangeID, ok := ctx.Value(ExchangeIDKey).(string); ok {
		return exchangeID
	}
	return ""
}

func GetRouteID(ctx context.Context) string {
	if routeID, ok := ctx.Value(RouteIDKey).(string); ok {
		return routeID
	}
	return ""
}

func GetServiceName(ctx context.Context) string {
	if serviceName, ok := ctx.Value(ServiceNameKey).(string); ok {
		return serviceName
	}
	return ""
}

func GetLogFields(ctx context.Context) []interface{} {
	fields := make([]interface{}, 0, 8)

	if traceID := GetTraceID(ctx); traceID != "" {
		fields = append(fields, "trace_id", traceID)
	}

	if exchangeID := GetExchangeID(ctx); exchangeID != "" {
		fields = append(fields, "exchange_id", exchangeID)
	}

	if routeID := GetRouteID(ctx); routeID != "" {
		fields = append(fields, "route_id", routeID)
	}

	if serviceName := GetServiceName(ctx); serviceName != "" {
		fields = append(fields, "service_name", serviceName)
	}

	return fields
}
