package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersPlacedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_placed_total",
		Help: "Total number of orders created at checkout",
	})

	CheckoutFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_failed_total",
		Help: "Total number of failed checkouts",
	}, []string{"reason"})

	OrdersPaidTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_paid_total",
		Help: "Total number of orders with payment recorded",
	})

	OrdersCancelledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_cancelled_total",
		Help: "Total number of cancelled orders",
	})

	OrdersDeletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_deleted_total",
		Help: "Total number of deleted orders",
	})

	CheckoutLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "checkout_latency_seconds",
		Help:    "Latency of cart-to-order checkout",
		Buckets: prometheus.DefBuckets,
	})

	InventoryAdjustmentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inventory_adjustments_total",
		Help: "Total number of manual inventory adjustments",
	}, []string{"type"})

	ShipmentsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shipments_created_total",
		Help: "Total number of supplier shipments recorded",
	})

	ShipmentItemsReceivedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shipment_items_received_total",
		Help: "Total number of shipment items received into inventory",
	})

	ShipmentItemsSkippedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shipment_items_skipped_total",
		Help: "Total number of shipment items skipped during receipt",
	})

	ShipmentReceiveLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "shipment_receive_latency_seconds",
		Help:    "Latency of shipment receipt processing",
		Buckets: prometheus.DefBuckets,
	})

	CashFlowEntriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cash_flow_entries_total",
		Help: "Total number of cash flow ledger entries recorded",
	}, []string{"type", "category"})

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
