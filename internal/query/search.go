package query

import (
	"cmp"
	"slices"
	"strings"

	"github.com/Joseda-hg/taskdeck/internal/model"
)

const DefaultSearchLimit = 5

// Search ranks non-deleted matches: exact title first, then titles starting
// with the query, then the rest. Within a rank newer tasks come first.
func Search(tasks []model.Task, userID, query string, limit int) []model.Task {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return []model.Task{}
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	type hit struct {
		task model.Task
		rank int
	}
	hits := []hit{}
	for _, task := range owned(tasks, userID) {
		if task.Deleted || !matchesSearch(task, needle) {
			continue
		}
		hits = append(hits, hit{task: task, rank: titleRank(task.Title, needle)})
	}

	slices.SortFunc(hits, func(a, b hit) int {
		if c := cmp.Compare(a.rank, b.rank); c != 0 {
			return c
		}
		if c := b.task.CreatedAt.Compare(a.task.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.task.ID, a.task.ID)
	})

	if len(hits) > limit {
		hits = hits[:limit]
	}
	result := make([]model.Task, 0, len(hits))
	for _, h := range hits {
		result = append(result, h.task)
	}
	return result
}

func titleRank(title, needle string) int {
	lower := strings.ToLower(strings.TrimSpace(title))
	switch {
	case lower == needle:
		return 0
	case strings.HasPrefix(lower, needle):
		return 1
	}
	return 2
}

func matchesSearch(task model.Task, needle string) bool {
	if strings.Contains(strings.ToLower(task.Title), needle) ||
		strings.Contains(strings.ToLower(task.Description), needle) {
		return true
	}
	for _, item := range task.Checklist {
		if strings.Contains(strings.ToLower(item.Text), needle) {
			return true
		}
	}
	for _, attachment := range task.Attachments {
		if strings.Contains(strings.ToLower(attachment.Name), needle) {
			return true
		}
	}
	return false
}
