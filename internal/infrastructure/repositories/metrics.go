package repositories

import "github.com/prometheus/client_golang/prometheus"

var cacheLookups = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "place_cache_lookups_total",
		Help: "Read-through cache lookups by kind and result (hit, miss, coalesced)",
	},
	[]string{"kind", "result"},
)

func init() {
	prometheus.MustRegister(cacheLookups)
}

// CacheLookups exposes the lookup counter for tests.
func CacheLookups() *prometheus.CounterVec {
	return cacheLookups
}
