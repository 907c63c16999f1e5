// Package promcollector exports starcache metrics to Prometheus.
//
//	reg := prometheus.NewRegistry()
//	f, err := starcache.Open(ctx, store, "stars.dat",
//		starcache.WithMetricsCollector(promcollector.New(reg)))
package promcollector
