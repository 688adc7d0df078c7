package scheduler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ticksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cms_scheduler_ticks_total",
			Help: "Total number of scheduler passes",
		},
	)

	publishedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cms_scheduler_published_total",
			Help: "Total number of content items published by the scheduler",
		},
	)

	errorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cms_scheduler_errors_total",
			Help: "Total number of failed due queries and auto-publish attempts",
		},
	)
)
