// Package devserver exposes the navigation pipeline of the demo application
// over HTTP and WebSocket for development and debugging.
//
// Endpoints:
//
//	GET /healthz                  liveness probe
//	GET /api/routes               the route table
//	GET /api/navigate?to=&from=   one-shot navigation, JSON outcome
//	GET /_navguard/ws             live navigation session
//	GET /metrics                  Prometheus metrics (when a gatherer is set)
//
// A WebSocket client sends commands and receives events:
//
//	<- {"type":"ready","session":"01J..."}
//	-> {"type":"navigate","to":"/admin/images"}
//	<- {"type":"layout","layout":"admin"}
//	<- {"type":"commit","outcome":{...}}
//	<- {"type":"loading","active":true}
//	<- {"type":"loading"}
//
// Loading events follow the commit because the session flushes the
// indicator calls the guard deferred to the next render only after it has
// reported the new view.
package devserver
