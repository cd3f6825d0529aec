package tracing

import (
	"fmt"
	"io"

	"github.com/opentracing/opentracing-go"
	"github.com/uber/jaeger-client-go"
	jaegercfg "github.com/uber/jaeger-client-go/config"
)

// InitTracer 初始化 Jaeger tracer 并注册为 opentracing 全局实例。
//
// - serviceName 作为 span 的服务标识，和 Consul 注册名保持一致
// - endpoint 是 jaeger-agent 的 host:port（UDP 上报）
// - sampler 为常量采样率，越界值夹取到 [0, 1]；开发环境配 1.0 全采样
//
// HTTP 中间件从请求头提取上游 span 时走这里注册的全局 tracer，
// 所以即使返回的 tracer 没被直接引用，初始化也不能跳过。
func InitTracer(serviceName, endpoint string, sampler float64) (opentracing.Tracer, io.Closer, error) {
	if serviceName == "" {
		return nil, nil, fmt.Errorf("tracing service name is empty")
	}
	if sampler < 0 {
		sampler = 0
	} else if sampler > 1 {
		sampler = 1
	}

	cfg := &jaegercfg.Configuration{
		ServiceName: serviceName,
		Sampler: &jaegercfg.SamplerConfig{
			Type:  jaeger.SamplerTypeConst,
			Param: sampler,
		},
		Reporter: &jaegercfg.ReporterConfig{
			LogSpans:           true,
			LocalAgentHostPort: endpoint,
		},
	}

	tracer, closer, err := cfg.NewTracer(jaegercfg.Logger(jaeger.StdLogger))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to init jaeger tracer: %w", err)
	}

	opentracing.SetGlobalTracer(tracer)
	return tracer, closer, nil
}
