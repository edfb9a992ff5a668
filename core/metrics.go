package core

import "github.com/prometheus/client_golang/prometheus"

const prometheusNamespace = "contract"

var EventsCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: prometheusNamespace,
	Name:      "events_delivered_total",
	Help:      "Number of decoded log events delivered to handlers",
}, []string{"event"})

var TxErrorsCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: prometheusNamespace,
	Name:      "send_errors_total",
	Help:      "Number of failed transaction submissions",
}, []string{"method"})

var FiltersCounter = prometheus.NewCounter(prometheus.CounterOpts{
	Namespace: prometheusNamespace,
	Name:      "filters_created_total",
	Help:      "Number of server-side log filters installed",
})

var FilterUninstallErrors = prometheus.NewCounter(prometheus.CounterOpts{
	Namespace: prometheusNamespace,
	Name:      "filter_uninstall_errors_total",
	Help:      "Number of failed server-side filter uninstalls",
})

var LastDeliveredBlockGauge = prometheus.NewGauge(prometheus.GaugeOpts{
	Namespace: prometheusNamespace,
	Name:      "last_delivered_block",
	Help:      "Block number of the last delivered log event",
})
