// Package http serves the credentialwatch JSON API:
//
//	POST /api/sweep   run an expiry sweep
//	POST /api/chat    answer one conversation turn
//	GET  /api/tools   tool catalog and endpoint status
//	GET  /healthz     liveness
//	GET  /metrics     Prometheus metrics
package http
