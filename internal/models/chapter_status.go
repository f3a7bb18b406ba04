package models

// Chapter statuses, in lifecycle order.
const (
	StatusPending             = "pending"
	StatusAITranslated        = "ai_translated"
	StatusHumanReviewing      = "human_reviewing"
	StatusPublished           = "published"
	StatusVerifiedForTraining = "verified_for_training"
)

// chapterTransitions maps a target status to the statuses allowed to move into it.
var chapterTransitions = map[string][]string{
	StatusAITranslated:        {StatusPending, StatusAITranslated},
	StatusHumanReviewing:      {StatusAITranslated, StatusHumanReviewing},
	StatusPublished:           {StatusHumanReviewing},
	StatusVerifiedForTraining: {StatusHumanReviewing, StatusPublished},
}

// draftTransitions are extra edges that open only once the chapter holds a
// non-empty working draft, so a hand translation can skip the AI step.
var draftTransitions = map[string][]string{
	StatusHumanReviewing: {StatusPending},
}

// ChapterStatuses lists every known status.
func ChapterStatuses() []string {
	return []string{
		StatusPending,
		StatusAITranslated,
		StatusHumanReviewing,
		StatusPublished,
		StatusVerifiedForTraining,
	}
}

func IsValidChapterStatus(status string) bool {
	for _, s := range ChapterStatuses() {
		if s == status {
			return true
		}
	}
	return false
}

// SourcesFor returns the statuses a chapter may be in to move to target.
// An unknown or unreachable target yields nil.
func SourcesFor(target string) []string {
	sources := chapterTransitions[target]
	out := make([]string, len(sources))
	copy(out, sources)
	return out
}

// DraftSourcesFor returns the statuses that may move to target only when a
// draft exists.
func DraftSourcesFor(target string) []string {
	sources := draftTransitions[target]
	out := make([]string, len(sources))
	copy(out, sources)
	return out
}

// CanTransitionWithDraft reports whether from may move to to, counting the
// draft-gated edges when hasDraft is set.
func CanTransitionWithDraft(from, to string, hasDraft bool) bool {
	if CanTransition(from, to) {
		return true
	}
	if !hasDraft {
		return false
	}
	for _, s := range draftTransitions[to] {
		if s == from {
			return true
		}
	}
	return false
}

func CanTransition(from, to string) bool {
	for _, s := range chapterTransitions[to] {
		if s == from {
			return true
		}
	}
	return false
}
