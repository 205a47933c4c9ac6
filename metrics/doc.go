// Package metrics evaluates classifier accuracy
package metrics
