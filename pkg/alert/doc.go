// Package alert derives and persists quota threshold alerts.
//
// The Policy is a pure function: given a limit's old value, new value, and
// ceiling, it returns the percentage bands (75/90/100 by default) crossed
// upward by the update. The Store makes recording idempotent per
// (period, limit, band) — one alert per band per billing period, with no
// re-arming when usage dips back under a band.
//
// Alerts are strictly advisory. The quota engine emits them after an
// admitted update; they never participate in the allow/deny decision.
package alert
