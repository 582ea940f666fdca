/*
Package metrics provides Prometheus metrics, health/readiness endpoints,
and a periodic Collector for the repository core.

Metrics are registered at package init time via prometheus.MustRegister
and exposed through Handler for scraping. Some are updated inline at
the call site that already knows the value (TxnDuration,
ChangelogEventsTotal, ResourceCreateDuration); the store- and binary-store-wide gauges
(TermsTotal, ContextsTotal, BinaryBytesTotal, BinaryFilesTotal) are
instead sampled periodically by a Collector, since computing them
exactly on every write would mean walking the whole environment or
pairtree on every transaction.

Health and readiness are tracked separately from Prometheus metrics via
RegisterComponent/UpdateComponent and exposed as JSON through
HealthHandler/ReadyHandler/LivenessHandler, matching a standard
Kubernetes probe set: liveness never fails once the process is up,
readiness fails until the store, binary store, and SPARQL evaluator
have all reported in.
*/
package metrics
