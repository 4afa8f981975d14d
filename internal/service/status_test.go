package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/taskgate/taskgate/internal/domain/gateway"
)

func TestStatusReportFullyConfigured(t *testing.T) {
	at := time.Date(2025, 5, 20, 9, 30, 0, 0, time.UTC)
	source := &mockBoard{circuit: gateway.CircuitBreakerState{Status: gateway.CircuitClosed}}
	mirror := &mockTracker{rateLimit: &gateway.RateLimitInfo{Remaining: 42}}
	store := &mockSyncStore{record: &gateway.SyncRecord{
		Source:             gateway.SourceID,
		LastSuccessfulSync: &at,
		ItemsSynced:        7,
	}}
	svc := NewStatusService(source, mirror, store)

	report := svc.Report(context.Background())

	if !report.Source.Configured || report.Source.Circuit != gateway.CircuitClosed {
		t.Errorf("Source = %+v", report.Source)
	}
	if !report.Mirror.Configured || report.Mirror.RateLimit != "42 remaining" {
		t.Errorf("Mirror = %+v", report.Mirror)
	}
	if !report.Sync.Available || report.Sync.ItemsSynced != 7 {
		t.Errorf("Sync = %+v", report.Sync)
	}
	if want := at.Format(time.RFC3339); report.Sync.LastSuccessfulSync != want {
		t.Errorf("LastSuccessfulSync = %q, want %q", report.Sync.LastSuccessfulSync, want)
	}
}

func TestStatusReportNothingConfigured(t *testing.T) {
	svc := NewStatusService(nil, nil, nil)

	report := svc.Report(context.Background())

	if report.Source.Configured || report.Source.Circuit != gateway.NotConfigured {
		t.Errorf("Source = %+v", report.Source)
	}
	if report.Mirror.Configured || report.Mirror.RateLimit != gateway.NotConfigured {
		t.Errorf("Mirror = %+v", report.Mirror)
	}
	if report.Sync.Available || report.Sync.Detail != gateway.DatabaseUnavailable {
		t.Errorf("Sync = %+v", report.Sync)
	}
}

func TestStatusReportNeverSynced(t *testing.T) {
	// No record yet is a normal state, not a database failure.
	svc := NewStatusService(nil, nil, &mockSyncStore{})

	report := svc.Report(context.Background())

	if !report.Sync.Available {
		t.Error("Sync.Available = false for a missing record")
	}
	if report.Sync.LastSuccessfulSync != gateway.SyncNever {
		t.Errorf("LastSuccessfulSync = %q, want %q", report.Sync.LastSuccessfulSync, gateway.SyncNever)
	}
	if report.Sync.ItemsSynced != 0 || report.Sync.Detail != "" {
		t.Errorf("Sync = %+v", report.Sync)
	}
}

func TestStatusReportStoreFailureDegradesOnlySyncSection(t *testing.T) {
	source := &mockBoard{circuit: gateway.CircuitBreakerState{Status: gateway.CircuitHalfOpen, Failures: 3}}
	mirror := &mockTracker{}
	store := &mockSyncStore{findErr: errors.New("pg down")}
	svc := NewStatusService(source, mirror, store)

	report := svc.Report(context.Background())

	if report.Sync.Available {
		t.Error("Sync.Available = true after store failure")
	}
	if report.Sync.Detail != gateway.DatabaseUnavailable {
		t.Errorf("Detail = %q, want %q", report.Sync.Detail, gateway.DatabaseUnavailable)
	}
	// The other sections still report.
	if report.Source.Circuit != gateway.CircuitHalfOpen || report.Source.Failures != 3 {
		t.Errorf("Source = %+v", report.Source)
	}
	if report.Mirror.RateLimit != gateway.RateLimitConfigured {
		t.Errorf("Mirror = %+v", report.Mirror)
	}
}

func TestStatusReportRateLimitAbsent(t *testing.T) {
	// A tracker that has not reported rate limit headers yet renders the
	// configured literal, not a count.
	svc := NewStatusService(nil, &mockTracker{}, nil)

	report := svc.Report(context.Background())
	if report.Mirror.RateLimit != gateway.RateLimitConfigured {
		t.Errorf("RateLimit = %q, want %q", report.Mirror.RateLimit, gateway.RateLimitConfigured)
	}
}

func TestStatusReportFailureOnlyRecord(t *testing.T) {
	// A record written only by failed runs has no success timestamp.
	store := &mockSyncStore{record: &gateway.SyncRecord{
		Source:       gateway.SourceID,
		ErrorMessage: "list board tasks: board down",
	}}
	svc := NewStatusService(nil, nil, store)

	report := svc.Report(context.Background())

	if report.Sync.LastSuccessfulSync != gateway.SyncNever {
		t.Errorf("LastSuccessfulSync = %q, want %q", report.Sync.LastSuccessfulSync, gateway.SyncNever)
	}
	if report.Sync.LastError != "list board tasks: board down" {
		t.Errorf("LastError = %q", report.Sync.LastError)
	}
	if !report.Sync.Available {
		t.Error("Sync.Available = false, record read succeeded")
	}
}
