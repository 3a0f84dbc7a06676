package entity

// CampaignSyncResult is the outcome of reconciling one campaign within a
// run. Applied counts supporter records written before any failure,
// Skipped counts records rejected for an unknown status value, and Error
// is set when the fetch or a mid-batch write failed for this campaign.
type CampaignSyncResult struct {
	CampaignId int64  `json:"campaign_id" bson:"campaign_id"`
	Applied    int    `json:"applied" bson:"applied"`
	Skipped    int    `json:"skipped" bson:"skipped"`
	Error      string `json:"error,omitempty" bson:"error,omitempty"`
}

func (r *CampaignSyncResult) Failed() bool {
	return r.Error != ""
}

// SyncReport summarizes one reconciliation run across all campaigns.
// A failed campaign never aborts the run, so the report always carries one
// result per known campaign.
type SyncReport struct {
	RunId      string               `json:"run_id" bson:"run_id"`
	StartedAt  string               `json:"started_at" bson:"started_at"`
	FinishedAt string               `json:"finished_at" bson:"finished_at"`
	Campaigns  []CampaignSyncResult `json:"campaigns" bson:"campaigns"`
}

func (r *SyncReport) Applied() int {
	total := 0
	for i := range r.Campaigns {
		total += r.Campaigns[i].Applied
	}
	return total
}

func (r *SyncReport) Failures() int {
	count := 0
	for i := range r.Campaigns {
		if r.Campaigns[i].Failed() {
			count++
		}
	}
	return count
}
