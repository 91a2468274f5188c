package audit

import (
	"context"
	"errors"
	"log"
	"time"

	"bed-request-backend/config"
	"bed-request-backend/internal/model"
	"bed-request-backend/internal/reqid"
	"bed-request-backend/internal/store"
)

// Auditor periodically checks the identifier-sequence invariants: no two
// records share a suffix, every issued identifier parses, and the counter
// row is never behind the highest issued suffix. A finding does not stop the
// service; it is the operator signal for sequence remediation.
type Auditor struct {
	cfg   *config.Config
	store store.Store
}

// Finding describes one invariant violation discovered during a sweep.
type Finding struct {
	RequestID string
	Problem   string
}

// NewAuditor creates a new sequence auditor.
func NewAuditor(cfg *config.Config, s store.Store) *Auditor {
	return &Auditor{cfg: cfg, store: s}
}

// Run executes sweeps at the configured interval until ctx is cancelled.
func (a *Auditor) Run(ctx context.Context) {
	if !a.cfg.Audit.Enabled {
		log.Println("Sequence auditor is disabled. Not starting.")
		return
	}
	log.Println("Starting sequence auditor...")

	a.sweep(ctx)

	ticker := time.NewTicker(a.cfg.Audit.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Sequence auditor shutting down.")
			return
		case <-ticker.C:
			a.sweep(ctx)
		}
	}
}

func (a *Auditor) sweep(ctx context.Context) {
	findings, err := a.SweepOnce(ctx)
	if err != nil {
		log.Printf("Sequence audit failed: %v", err)
		return
	}
	for _, f := range findings {
		log.Printf("Sequence audit finding for %q: %s", f.RequestID, f.Problem)
	}
}

// SweepOnce runs a single audit pass and returns its findings.
func (a *Auditor) SweepOnce(ctx context.Context) ([]Finding, error) {
	ids, err := a.store.ListRequestIDs(ctx)
	if err != nil {
		return nil, err
	}

	var findings []Finding
	seen := make(map[uint64]string, len(ids))
	var maxSuffix uint64

	for _, id := range ids {
		n, err := reqid.Parse(id)
		if err != nil {
			findings = append(findings, Finding{RequestID: id, Problem: "identifier does not parse"})
			continue
		}
		if prev, dup := seen[n]; dup {
			findings = append(findings, Finding{RequestID: id, Problem: "suffix already issued to " + prev})
			continue
		}
		seen[n] = id
		if n > maxSuffix {
			maxSuffix = n
		}
	}

	counter, err := a.store.SequenceValue(ctx, model.BedRequestSequenceName)
	if err != nil {
		// No counter row yet is normal on a store that has never allocated.
		if errors.Is(err, store.ErrNotFound) {
			if maxSuffix > 0 {
				findings = append(findings, Finding{Problem: "records exist but the counter row is missing"})
			}
			return findings, nil
		}
		return nil, err
	}
	if counter < maxSuffix {
		findings = append(findings, Finding{Problem: "counter is behind the highest issued suffix"})
	}

	return findings, nil
}
