package main

import (
	"flag"
	"fmt"
	"net/http"
	"net/http/httputil"
	"strings"
	"time"

	"github.com/VinoFleet/VinoFleet/internal/common/discovery"
	"github.com/hashicorp/consul/api"
)

// 最小 HTTP 网关：按路径前缀把请求转发到 Consul 里的后端服务。
// - /api/workflow/*, /api/auth/* -> workflow-service
// - /api/fleet/*                 -> fleet-service
// 每次请求现查一次健康实例；规模上去之后可以换成本地缓存 + watch。

var (
	listenAddr = flag.String("listen", ":8080", "HTTP listen address")
	consulAddr = flag.String("consul", "localhost:8500", "Consul address")
)

func serviceFor(path string) string {
	switch {
	case strings.HasPrefix(path, "/api/workflow/"), strings.HasPrefix(path, "/api/auth/"):
		return "workflow-service"
	case strings.HasPrefix(path, "/api/fleet/"):
		return "fleet-service"
	}
	return ""
}

func main() {
	flag.Parse()

	consulClient, err := api.NewClient(&api.Config{Address: *consulAddr})
	if err != nil {
		panic(fmt.Sprintf("failed to create consul client: %v", err))
	}

	proxy := &httputil.ReverseProxy{
		Director: func(req *http.Request) {
			service := serviceFor(req.URL.Path)
			if service == "" {
				return
			}
			addr, err := discovery.HealthyAddress(consulClient, service)
			if err != nil {
				// 留空 host，Transport 会以连接错误收场，由 ErrorHandler 兜底
				return
			}
			req.URL.Scheme = "http"
			req.URL.Host = addr
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			http.Error(w, "upstream unavailable", http.StatusBadGateway)
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/api/", func(w http.ResponseWriter, r *http.Request) {
		if serviceFor(r.URL.Path) == "" {
			http.NotFound(w, r)
			return
		}
		proxy.ServeHTTP(w, r)
	})

	srv := &http.Server{
		Addr:              *listenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	fmt.Printf("api-gateway listening on %s\n", *listenAddr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		panic(err)
	}
}
