package roster

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"apoiasync/entity"
)

type supporterKey struct {
	campaignId  int64
	supporterId int64
}

// fakeDB mimics the roster store invariants in memory: one link per
// supporter, one per telegram id, token moves on rebind.
type fakeDB struct {
	supporters map[supporterKey]*entity.Supporter
	links      []*entity.TelegramLink

	getSupporterErr error
	getLinkErr      error
	upsertLinkErr   error
}

func newFakeDB() *fakeDB {
	return &fakeDB{supporters: make(map[supporterKey]*entity.Supporter)}
}

func (f *fakeDB) addSupporter(campaignId, supporterId int64, status entity.SupporterStatus) {
	f.supporters[supporterKey{campaignId, supporterId}] = &entity.Supporter{
		CampaignId: campaignId,
		Id:         supporterId,
		Name:       "supporter",
		Status:     status,
	}
}

func (f *fakeDB) GetSupporter(_ context.Context, campaignId, supporterId int64) (*entity.Supporter, error) {
	if f.getSupporterErr != nil {
		return nil, f.getSupporterErr
	}
	return f.supporters[supporterKey{campaignId, supporterId}], nil
}

func (f *fakeDB) GetLinkBySupporter(_ context.Context, campaignId, supporterId int64) (*entity.TelegramLink, error) {
	for _, link := range f.links {
		if link.CampaignId == campaignId && link.SupporterId == supporterId {
			return link, nil
		}
	}
	return nil, nil
}

func (f *fakeDB) GetLinkByTelegramId(_ context.Context, telegramId string) (*entity.TelegramLink, error) {
	if f.getLinkErr != nil {
		return nil, f.getLinkErr
	}
	for _, link := range f.links {
		if link.TelegramId == telegramId {
			return link, nil
		}
	}
	return nil, nil
}

func (f *fakeDB) UpsertLink(_ context.Context, campaignId, supporterId int64, telegramId string) error {
	if f.upsertLinkErr != nil {
		return f.upsertLinkErr
	}
	kept := f.links[:0]
	for _, link := range f.links {
		evict := link.TelegramId == telegramId &&
			!(link.CampaignId == campaignId && link.SupporterId == supporterId)
		if !evict {
			kept = append(kept, link)
		}
	}
	f.links = kept
	for _, link := range f.links {
		if link.CampaignId == campaignId && link.SupporterId == supporterId {
			link.TelegramId = telegramId
			return nil
		}
	}
	f.links = append(f.links, &entity.TelegramLink{
		Id:          "fake",
		CampaignId:  campaignId,
		SupporterId: supporterId,
		TelegramId:  telegramId,
	})
	return nil
}

func newTestRoster(db Database) *Roster {
	return New(db, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestLinkActiveSupporter(t *testing.T) {
	db := newFakeDB()
	db.addSupporter(1, 101, entity.StatusActive)
	r := newTestRoster(db)

	result, err := r.Link(context.Background(), 1, 101, "555")
	assert.Equal(t, nil, err)
	assert.Equal(t, int64(1), result.CampaignId)
	assert.Equal(t, int64(101), result.SupporterId)
	assert.Equal(t, "555", result.TelegramId)
	assert.Equal(t, 1, len(db.links))
}

func TestLinkUnknownSupporter(t *testing.T) {
	db := newFakeDB()
	db.addSupporter(1, 101, entity.StatusActive)
	r := newTestRoster(db)

	result, err := r.Link(context.Background(), 1, 9999, "555")
	assert.Equal(t, ErrSupporterNotFound, err)
	assert.Nil(t, result)
	assert.Equal(t, 0, len(db.links))
}

func TestLinkInactiveSupporter(t *testing.T) {
	db := newFakeDB()
	db.addSupporter(1, 102, entity.StatusInactive)
	r := newTestRoster(db)

	result, err := r.Link(context.Background(), 1, 102, "555")
	assert.Equal(t, ErrSupporterNotActive, err)
	assert.Nil(t, result)
	assert.Equal(t, 0, len(db.links))
}

func TestRelinkOverwrites(t *testing.T) {
	db := newFakeDB()
	db.addSupporter(1, 101, entity.StatusActive)
	r := newTestRoster(db)
	ctx := context.Background()

	_, err := r.Link(ctx, 1, 101, "555")
	assert.Equal(t, nil, err)
	_, err = r.Link(ctx, 1, 101, "777")
	assert.Equal(t, nil, err)

	// Exactly one link, bearing the second token.
	assert.Equal(t, 1, len(db.links))
	assert.Equal(t, "777", db.links[0].TelegramId)

	check, err := r.Check(ctx, 1, "555")
	assert.Equal(t, nil, err)
	assert.False(t, check.Active)
	assert.Equal(t, "not linked to any supporter", check.Reason)

	check, err = r.Check(ctx, 1, "777")
	assert.Equal(t, nil, err)
	assert.True(t, check.Active)
}

func TestTelegramIdMovesBetweenSupporters(t *testing.T) {
	db := newFakeDB()
	db.addSupporter(1, 101, entity.StatusActive)
	db.addSupporter(1, 103, entity.StatusActive)
	r := newTestRoster(db)
	ctx := context.Background()

	_, err := r.Link(ctx, 1, 101, "555")
	assert.Equal(t, nil, err)
	_, err = r.Link(ctx, 1, 103, "555")
	assert.Equal(t, nil, err)

	assert.Equal(t, 1, len(db.links))
	assert.Equal(t, int64(103), db.links[0].SupporterId)
}

func TestCheckNotLinked(t *testing.T) {
	db := newFakeDB()
	r := newTestRoster(db)

	result, err := r.Check(context.Background(), 1, "unknown-token")
	assert.Equal(t, nil, err)
	assert.False(t, result.Active)
	assert.Equal(t, "not linked to any supporter", result.Reason)
}

func TestCheckCampaignScoping(t *testing.T) {
	db := newFakeDB()
	db.addSupporter(1, 101, entity.StatusActive)
	r := newTestRoster(db)
	ctx := context.Background()

	_, err := r.Link(ctx, 1, 101, "555")
	assert.Equal(t, nil, err)

	result, err := r.Check(ctx, 2, "555")
	assert.Equal(t, nil, err)
	assert.False(t, result.Active)
	assert.Equal(t, "not an active supporter of this campaign", result.Reason)
}

func TestCheckSameIdOtherCampaign(t *testing.T) {
	// Supporter id 101 exists in both campaigns as distinct people; the
	// link belongs to campaign 1 and must not grant access to campaign 2.
	db := newFakeDB()
	db.addSupporter(1, 101, entity.StatusActive)
	db.addSupporter(2, 101, entity.StatusActive)
	r := newTestRoster(db)
	ctx := context.Background()

	_, err := r.Link(ctx, 1, 101, "555")
	assert.Equal(t, nil, err)

	result, err := r.Check(ctx, 2, "555")
	assert.Equal(t, nil, err)
	assert.False(t, result.Active)
}

func TestCheckStatusReadFresh(t *testing.T) {
	db := newFakeDB()
	db.addSupporter(1, 101, entity.StatusActive)
	r := newTestRoster(db)
	ctx := context.Background()

	_, err := r.Link(ctx, 1, 101, "555")
	assert.Equal(t, nil, err)

	result, err := r.Check(ctx, 1, "555")
	assert.Equal(t, nil, err)
	assert.True(t, result.Active)

	// Cancellation picked up by reconciliation revokes access with no
	// unlink; reactivation restores it with no re-link.
	db.addSupporter(1, 101, entity.StatusInactive)
	result, err = r.Check(ctx, 1, "555")
	assert.Equal(t, nil, err)
	assert.False(t, result.Active)

	db.addSupporter(1, 101, entity.StatusActive)
	result, err = r.Check(ctx, 1, "555")
	assert.Equal(t, nil, err)
	assert.True(t, result.Active)
}

func TestCheckStoreErrorIsNotANegativeResult(t *testing.T) {
	db := newFakeDB()
	db.getLinkErr = errors.New("connection refused")
	r := newTestRoster(db)

	result, err := r.Check(context.Background(), 1, "555")
	assert.NotNil(t, err)
	assert.Nil(t, result)
}

func TestLinkStoreErrorSurfaces(t *testing.T) {
	db := newFakeDB()
	db.addSupporter(1, 101, entity.StatusActive)
	db.upsertLinkErr = errors.New("duplicate entry")
	r := newTestRoster(db)

	result, err := r.Link(context.Background(), 1, 101, "555")
	assert.NotNil(t, err)
	assert.Nil(t, result)
}
