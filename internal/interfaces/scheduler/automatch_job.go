package scheduler

import (
	"context"
	"fmt"
	"log"
	"strconv"

	"mietwerk/internal/domain/matchrule"
)

// AutoMatchJob implements the Job interface for one organization's
// auto-match pass: every rule applied, in creation order, over the
// currently-unmatched transactions. Safe to run at any time; rows a human
// has classified or dismissed are never touched.
type AutoMatchJob struct {
	orgID        int64
	matchService *matchrule.Service
}

// NewAutoMatchJob creates a new auto-match job for an organization
func NewAutoMatchJob(orgID int64, matchService *matchrule.Service) *AutoMatchJob {
	return &AutoMatchJob{
		orgID:        orgID,
		matchService: matchService,
	}
}

// Execute runs the auto-match pass
func (j *AutoMatchJob) Execute(ctx context.Context) error {
	log.Printf("Starting auto-match pass for org %d", j.orgID)

	result, err := j.matchService.AutoMatchAll(ctx, j.orgID)
	if err != nil {
		log.Printf("Auto-match pass failed for org %d: %v", j.orgID, err)
		return fmt.Errorf("auto-match failed: %w", err)
	}

	if result.Failed > 0 {
		log.Printf("Auto-match pass for org %d completed with errors: Applied=%d, Skipped=%d, Failed=%d",
			j.orgID, result.Applied, result.Skipped, result.Failed)
		// Return error to mark for retry
		return fmt.Errorf("auto-match completed with %d failures", result.Failed)
	}

	log.Printf("Auto-match pass for org %d completed successfully: Applied=%d, Skipped=%d",
		j.orgID, result.Applied, result.Skipped)

	return nil
}

// OrgID returns the organization this job runs for
func (j *AutoMatchJob) OrgID() string {
	return strconv.FormatInt(j.orgID, 10)
}

// Description returns a human-readable description of the job
func (j *AutoMatchJob) Description() string {
	return fmt.Sprintf("Auto-match pass for org %d", j.orgID)
}

// AutoMatchJobProvider builds one AutoMatchJob per organization that has
// at least one rule. Wired as the scheduler's JobProvider.
func AutoMatchJobProvider(matchService *matchrule.Service, rules matchrule.Repository) func(context.Context) ([]Job, error) {
	return func(ctx context.Context) ([]Job, error) {
		orgIDs, err := rules.ListOrgIDs(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list organizations with rules: %w", err)
		}

		jobs := make([]Job, 0, len(orgIDs))
		for _, orgID := range orgIDs {
			jobs = append(jobs, NewAutoMatchJob(orgID, matchService))
		}
		return jobs, nil
	}
}
