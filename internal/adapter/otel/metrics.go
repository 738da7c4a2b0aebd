package otel

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "vehix"

// Metrics holds all fleet metric instruments.
type Metrics struct {
	AssignmentsOpened metric.Int64Counter
	AssignmentsClosed metric.Int64Counter
	StockTransfers    metric.Int64Counter
	QuotaDenials      metric.Int64Counter
	IntegrityRepairs  metric.Int64Counter
	AuditDuration     metric.Float64Histogram
}

// NewMetrics creates all metric instruments.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)
	m := &Metrics{}
	var err error

	m.AssignmentsOpened, err = meter.Int64Counter("vehix.assignments.opened",
		metric.WithDescription("Number of assignments opened"))
	if err != nil {
		return nil, err
	}

	m.AssignmentsClosed, err = meter.Int64Counter("vehix.assignments.closed",
		metric.WithDescription("Number of assignments closed"))
	if err != nil {
		return nil, err
	}

	m.StockTransfers, err = meter.Int64Counter("vehix.stock.transfers",
		metric.WithDescription("Number of completed stock transfers"))
	if err != nil {
		return nil, err
	}

	m.QuotaDenials, err = meter.Int64Counter("vehix.quota.denials",
		metric.WithDescription("Number of operations denied by quota"))
	if err != nil {
		return nil, err
	}

	m.IntegrityRepairs, err = meter.Int64Counter("vehix.integrity.repairs",
		metric.WithDescription("Number of rows repaired by the integrity auditor"))
	if err != nil {
		return nil, err
	}

	m.AuditDuration, err = meter.Float64Histogram("vehix.integrity.audit_duration_seconds",
		metric.WithDescription("Integrity audit run duration in seconds"))
	if err != nil {
		return nil, err
	}

	return m, nil
}
