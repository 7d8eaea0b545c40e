package actions

import (
	"github.com/wevysya/voiceos/internal/core/domain"
)

// seedSource marks documents that ship with the binary.
const seedSource = "voiceos-seed"

// SeedDocuments returns the starter knowledge corpus. IDs are stable so
// re-seeding overwrites rather than duplicates.
func SeedDocuments() []*domain.KnowledgeDocument {
	docs := []struct {
		id, title, category, content string
	}{
		{
			"seed-overview", "WeVysya Overview", "general",
			"WeVysya is a business network that connects Vysya entrepreneurs and professionals. " +
				"Members grow their businesses through referrals, chapter meetings and one-to-one introductions.",
		},
		{
			"seed-membership", "Membership Tiers", "membership",
			"WeVysya has guest, member, inner circle and admin tiers. " +
				"Guests can browse profiles. Members can message others and log referrals. " +
				"Inner circle members can also call other members directly from the app.",
		},
		{
			"seed-chapters", "Chapter Meetings", "events",
			"Chapters are local groups of members that meet regularly to exchange referrals. " +
				"Upcoming chapter meetings and events are listed on the events screen.",
		},
		{
			"seed-referrals", "Giving Referrals", "referrals",
			"A referral passes a business opportunity to another member. " +
				"Say \"log a referral to\" followed by the member's name and the business to record one.",
		},
		{
			"seed-voice", "Using the Voice Assistant", "help",
			"Ask a question about WeVysya or give a command such as \"call Ramesh\" or \"open events\". " +
				"If the assistant is unsure what you meant it will ask you to repeat the request.",
		},
	}

	out := make([]*domain.KnowledgeDocument, 0, len(docs))
	for _, d := range docs {
		out = append(out, &domain.KnowledgeDocument{
			ID:      d.id,
			Content: d.content,
			Metadata: domain.DocumentMetadata{
				Title:    d.title,
				Category: d.category,
				Source:   seedSource,
			},
		})
	}
	return out
}
