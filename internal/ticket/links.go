package ticket

import (
	"slices"

	"github.com/baiirun/mspdesk/internal/model"
)

// The link helpers build the id list for a PUT that adds one record to a
// ticket's contacts, assets or articles. Adding an id already present
// returns the list unchanged.

func ContactIDs(t model.Ticket) []int64 {
	ids := make([]int64, 0, len(t.Contacts))
	for _, c := range t.Contacts {
		ids = append(ids, c.ID)
	}
	return ids
}

func AssetIDs(t model.Ticket) []int64 {
	ids := make([]int64, 0, len(t.Assets))
	for _, a := range t.Assets {
		ids = append(ids, a.ID)
	}
	return ids
}

func ArticleIDs(t model.Ticket) []int64 {
	ids := make([]int64, 0, len(t.Articles))
	for _, a := range t.Articles {
		ids = append(ids, a.ID)
	}
	return ids
}

// WithID appends id unless ids already contains it.
func WithID(ids []int64, id int64) []int64 {
	if slices.Contains(ids, id) {
		return ids
	}
	return append(ids, id)
}

// WithoutID removes id from ids.
func WithoutID(ids []int64, id int64) []int64 {
	return slices.DeleteFunc(slices.Clone(ids), func(v int64) bool { return v == id })
}

// LinkContact returns the update that adds a contact to the ticket.
func LinkContact(t model.Ticket, contactID int64) model.TicketUpdate {
	ids := WithID(ContactIDs(t), contactID)
	return model.TicketUpdate{ContactIDs: &ids}
}

// LinkAsset returns the update that adds an asset to the ticket.
func LinkAsset(t model.Ticket, assetID int64) model.TicketUpdate {
	ids := WithID(AssetIDs(t), assetID)
	return model.TicketUpdate{AssetIDs: &ids}
}

// LinkArticle returns the update that embeds a knowledge-base article.
func LinkArticle(t model.Ticket, articleID int64) model.TicketUpdate {
	ids := WithID(ArticleIDs(t), articleID)
	return model.TicketUpdate{ArticleIDs: &ids}
}

// Assign returns the update that assigns a tech.
func Assign(techID int64) model.TicketUpdate {
	return model.TicketUpdate{AssignedTechID: &techID}
}

// SetMilestone returns the update that moves the ticket to a milestone.
func SetMilestone(milestoneID int64) model.TicketUpdate {
	return model.TicketUpdate{MilestoneID: &milestoneID}
}
