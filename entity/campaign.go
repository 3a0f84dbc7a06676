package entity

// Campaign is a crowdfunding campaign whose supporters are granted access
// to a Telegram group. Campaigns are created by an administrative seeding
// step and never change or disappear afterwards; ids are assigned by the
// crowdfunding platform and are stable.
type Campaign struct {
	Id        int64  `json:"id" yaml:"id" bson:"id"`
	Name      string `json:"name" yaml:"name" bson:"name"`
	GroupLink string `json:"group_link" yaml:"group_link" bson:"group_link"`
}
