// Package moderation derives ephemeral visibility signals from a note's
// counters. Nothing here is ever persisted; scores and tiers are computed
// at serialization time.
package moderation

import "github.com/Nix177/audio-geo-notes/internal/models"

// Tier classifies how visible a note should be.
type Tier string

const (
	TierOK       Tier = "ok"
	TierWarning  Tier = "warning"
	TierCritical Tier = "critical"
)

// Tier thresholds. Reports weigh double because a report is a stronger
// signal than a downvote.
const (
	reportWeight = 2

	criticalReports = 4
	criticalScore   = -10

	warningReports = 2
	okScore        = 20
)

// Score computes the visibility score: likes - downvotes - 2*reports.
func Score(n models.Note) int {
	return n.Likes - n.Downvotes - n.Reports*reportWeight
}

// Status returns the moderation tier for a note. The clauses overlap, so
// they must be evaluated critical first: reports=3 with a high score is
// still a warning via the reports clause.
func Status(n models.Note) Tier {
	score := Score(n)
	switch {
	case n.Reports >= criticalReports || score <= criticalScore:
		return TierCritical
	case n.Reports >= warningReports || score < okScore:
		return TierWarning
	default:
		return TierOK
	}
}

// Label returns the user-facing description for a tier.
func Label(t Tier) string {
	switch t {
	case TierCritical:
		return "Contenu sous revue"
	case TierWarning:
		return "Visibilite reduite"
	default:
		return "Contenu normal"
	}
}
