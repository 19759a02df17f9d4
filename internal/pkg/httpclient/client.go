// internal/pkg/httpclient/client.go

package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// Resolver 把服务名解析成一个可用实例，*nacos.Client 满足该接口
type Resolver interface {
	DiscoverServiceInstance(serviceName string) (string, int, error)
}

// StaticResolver 用于未启用注册中心的环境，服务名直接映射到 host:port
type StaticResolver map[string]string

func (r StaticResolver) DiscoverServiceInstance(serviceName string) (string, int, error) {
	addr, ok := r[serviceName]
	if !ok {
		return "", 0, errors.Errorf("no static address for service %s", serviceName)
	}
	i := strings.LastIndexByte(addr, ':')
	if i < 0 {
		return "", 0, errors.Errorf("invalid static address %s", addr)
	}
	host, portStr := addr[:i], addr[i+1:]
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, errors.Wrapf(err, "invalid port in %s", addr)
	}
	return host, port, nil
}

// StatusError 表示下游返回了非 2xx 状态码
type StatusError struct {
	Service    string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("service %s returned status %d: %s", e.Service, e.StatusCode, e.Body)
}

// Client 是一个可追踪的 HTTP 客户端，超时完全受控于调用方传入的 context
type Client struct {
	Tracer     trace.Tracer
	HTTPClient *http.Client
	Resolver   Resolver
}

func NewClient(tracer trace.Tracer, resolver Resolver) *Client {
	return &Client{
		Tracer: tracer,
		HTTPClient: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 100,
			},
		},
		Resolver: resolver,
	}
}

// PostJSON 向 service 的 path 发送 JSON 请求，out 不为空时解码响应体
func (c *Client) PostJSON(ctx context.Context, service, path string, body, out any) error {
	ctx, span := c.Tracer.Start(ctx, "call-"+service, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	host, port, err := c.Resolver.DiscoverServiceInstance(service)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "service discovery failed")
		return err
	}
	target := fmt.Sprintf("http://%s:%d%s", host, port, path)

	payload, err := json.Marshal(body)
	if err != nil {
		return errors.Wrap(err, "marshal request body")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(payload))
	if err != nil {
		span.RecordError(err)
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	span.SetAttributes(
		attribute.String("http.url", target),
		attribute.String("http.method", http.MethodPost),
	)
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return errors.Wrapf(err, "call %s", service)
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		err := &StatusError{Service: service, StatusCode: resp.StatusCode, Body: string(bytes.TrimSpace(msg))}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		span.RecordError(err)
		return errors.Wrapf(err, "decode response from %s", service)
	}
	return nil
}
