package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Total number of orders created",
	})

	OrdersFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_failed_total",
		Help: "Total number of failed order creations",
	}, []string{"reason"})

	ProductsWrittenTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "products_written_total",
		Help: "Total number of catalog write operations",
	}, []string{"operation"})

	ProductCacheHitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "product_cache_hits_total",
		Help: "Product cache lookups by outcome",
	}, []string{"outcome"})

	LoginsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "logins_total",
		Help: "Total number of login attempts",
	}, []string{"result"})

	TokensIssuedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tokens_issued_total",
		Help: "Total number of tokens issued",
	})

	TokenValidationFailedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "token_validation_failed_total",
		Help: "Total number of rejected bearer tokens",
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
