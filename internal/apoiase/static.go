package apoiase

import (
	"context"

	"apoiasync/entity"
)

// Static serves a fixed supporter report per campaign. It stands in for
// the platform API while the integration is disabled in configuration;
// campaigns without fixtures report no supporters.
type Static struct {
	reports map[int64][]entity.SupporterRecord
}

func NewStatic() *Static {
	return &Static{
		reports: map[int64][]entity.SupporterRecord{
			1: {
				{Id: 101, Name: "Apoiador 1", Status: "active"},
				{Id: 102, Name: "Apoiador 2", Status: "inactive"},
				{Id: 103, Name: "Apoiador 3", Status: "active"},
				{Id: 104, Name: "Apoiador 4", Status: "inactive"},
				{Id: 105, Name: "Apoiador 5", Status: "active"},
			},
			2: {
				{Id: 201, Name: "Apoiador 6", Status: "active"},
				{Id: 202, Name: "Apoiador 7", Status: "inactive"},
				{Id: 203, Name: "Apoiador 8", Status: "active"},
			},
		},
	}
}

func (s *Static) FetchSupporters(_ context.Context, campaign *entity.Campaign) ([]entity.SupporterRecord, error) {
	report := s.reports[campaign.Id]
	records := make([]entity.SupporterRecord, len(report))
	copy(records, report)
	return records, nil
}
