package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	otelx "github.com/LCoppers-Cloud/Vehix-sub002/internal/adapter/otel"
	"github.com/LCoppers-Cloud/Vehix-sub002/internal/adapter/ws"
	"github.com/LCoppers-Cloud/Vehix-sub002/internal/config"
	"github.com/LCoppers-Cloud/Vehix-sub002/internal/domain/integrity"
	"github.com/LCoppers-Cloud/Vehix-sub002/internal/middleware"
	"github.com/LCoppers-Cloud/Vehix-sub002/internal/port/database"
	"github.com/LCoppers-Cloud/Vehix-sub002/internal/port/messagequeue"
	"github.com/LCoppers-Cloud/Vehix-sub002/internal/resilience"
)

// integrityTables are scanned for duplicate ids, in this order.
var integrityTables = []string{
	"tenants",
	"users",
	"vehicles",
	"warehouses",
	"inventory_items",
	"vehicle_assignments",
	"stock_location_items",
}

// IntegrityService is the auditor: it detects and repairs duplicate ids,
// orphaned stock rows, and open assignments whose referents are gone.
// Every run produces a full report; nothing is repaired silently.
type IntegrityService struct {
	store    database.Store
	cfg      *config.Integrity
	notifier *Notifier
	metrics  *otelx.Metrics
	logger   *slog.Logger

	mu      sync.Mutex
	lastRun *integrity.Report
}

// NewIntegrityService creates a new auditor. metrics may be nil.
func NewIntegrityService(store database.Store, cfg *config.Integrity, notifier *Notifier, metrics *otelx.Metrics, logger *slog.Logger) *IntegrityService {
	return &IntegrityService{
		store:    store,
		cfg:      cfg,
		notifier: notifier,
		metrics:  metrics,
		logger:   logger,
	}
}

// Run performs one full audit: duplicate scans across all tables
// (concurrent), then per-tenant orphan repair. Deterministic: a second
// run over unchanged data reports zero findings.
func (s *IntegrityService) Run(ctx context.Context) (*integrity.Report, error) {
	ctx, span := otelx.StartAuditSpan(ctx)
	defer span.End()

	report := &integrity.Report{StartedAt: time.Now().UTC()}
	var mu sync.Mutex

	// Scan phase: all tables in parallel.
	g, gctx := errgroup.WithContext(ctx)
	dupTables := make([]string, 0, len(integrityTables))
	for _, table := range integrityTables {
		g.Go(func() error {
			dups, err := s.store.FindDuplicateIDs(gctx, table)
			if err != nil {
				return err
			}
			if len(dups) == 0 {
				return nil
			}
			mu.Lock()
			dupTables = append(dupTables, table)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Repair phase: sequential, one transaction per table.
	for _, table := range dupTables {
		found, repaired, err := s.store.RepairDuplicateIDs(ctx, table)
		if err != nil {
			return nil, err
		}
		report.Merge(integrity.TableReport{
			Table:              table,
			DuplicatesFound:    found,
			DuplicatesRepaired: repaired,
		})
		s.logger.Warn("repaired duplicate ids",
			"table", table, "found", found, "repaired", repaired)
	}

	// Orphan phase: per tenant, honoring each tenant's repair policy.
	tenants, err := s.store.ListTenants(ctx)
	if err != nil {
		return nil, err
	}
	closeDate := time.Now().UTC()
	for _, tn := range tenants {
		tctx := middleware.WithTenantID(ctx, tn.ID)

		policy := integrity.OrphanDelete
		if tn.FallbackWarehouseID != "" {
			policy = integrity.OrphanReassign
		}
		found, repaired, err := s.store.RepairOrphanStock(tctx, policy, tn.FallbackWarehouseID)
		if err != nil {
			return nil, err
		}

		closed, err := s.store.CloseOrphanAssignments(tctx, closeDate)
		if err != nil {
			return nil, err
		}

		if found > 0 || closed > 0 {
			report.Merge(integrity.TableReport{
				Table:               "tenant:" + tn.ID,
				OrphansFound:        found,
				OrphansRepaired:     repaired,
				OpenAssignmentFixes: closed,
			})
			s.logger.Warn("repaired orphans",
				"tenant_id", tn.ID, "policy", policy,
				"stock_found", found, "stock_repaired", repaired,
				"assignments_closed", closed)
		}
	}

	report.FinishedAt = time.Now().UTC()

	s.mu.Lock()
	s.lastRun = report
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.IntegrityRepairs.Add(ctx, int64(report.DuplicatesRepaired+report.OrphansRepaired))
		s.metrics.AuditDuration.Record(ctx, report.FinishedAt.Sub(report.StartedAt).Seconds())
	}

	s.logger.Info("integrity audit finished",
		"duplicates_found", report.DuplicatesFound,
		"duplicates_repaired", report.DuplicatesRepaired,
		"orphans_found", report.OrphansFound,
		"orphans_repaired", report.OrphansRepaired,
		"clean", report.Clean())

	// Reports go hub-wide: they are operator telemetry, not tenant data.
	s.notifier.Publish(middleware.WithTenantID(ctx, ""), messagequeue.SubjectIntegrityReport,
		ws.EventIntegrityReport, report)
	return report, nil
}

// LastReport returns the most recent audit report, or nil before the
// first run.
func (s *IntegrityService) LastReport() *integrity.Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRun
}

// Sweep blocks, running the audit every cfg.SweepInterval until ctx is
// canceled. Transient storage failures are retried with backoff; a run
// that still fails is logged and skipped, never fatal.
func (s *IntegrityService) Sweep(ctx context.Context) {
	if s.cfg.SweepInterval <= 0 {
		return
	}

	ticker := time.NewTicker(s.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			err := resilience.Retry(ctx, s.cfg.SweepAttempts, time.Second, func(ctx context.Context) error {
				_, err := s.Run(ctx)
				return err
			})
			if err != nil {
				s.logger.Error("integrity sweep failed", "error", err)
			}
		}
	}
}
