package apoiase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"apoiasync/entity"
)

func TestStaticFixtures(t *testing.T) {
	source := NewStatic()
	ctx := context.Background()

	records, err := source.FetchSupporters(ctx, &entity.Campaign{Id: 1})
	assert.Equal(t, nil, err)
	assert.Equal(t, 5, len(records))
	assert.Equal(t, int64(101), records[0].Id)

	records, err = source.FetchSupporters(ctx, &entity.Campaign{Id: 2})
	assert.Equal(t, nil, err)
	assert.Equal(t, 3, len(records))
}

func TestStaticUnknownCampaign(t *testing.T) {
	source := NewStatic()

	records, err := source.FetchSupporters(context.Background(), &entity.Campaign{Id: 99})
	assert.Equal(t, nil, err)
	assert.Equal(t, 0, len(records))
}

func TestStaticReturnsCopies(t *testing.T) {
	source := NewStatic()
	ctx := context.Background()

	records, err := source.FetchSupporters(ctx, &entity.Campaign{Id: 1})
	assert.Equal(t, nil, err)
	records[0].Status = "mutated"

	again, err := source.FetchSupporters(ctx, &entity.Campaign{Id: 1})
	assert.Equal(t, nil, err)
	assert.Equal(t, "active", again[0].Status)
}
