package streak

import (
	"sort"
	"solveit_backend/internal/model"
	"strings"
)

// TallyTopics counts completed questions per topic label and returns the limit
// largest groups, biggest first. Ties keep the order in which topics first appear.
// An empty label counts as Uncategorized.
func TallyTopics(topics []string, limit int) []model.TopicCount {
	index := make(map[string]int)
	tally := make([]model.TopicCount, 0)

	for _, topic := range topics {
		label := strings.TrimSpace(topic)
		if label == "" {
			label = model.UncategorizedTopic
		}
		if i, ok := index[label]; ok {
			tally[i].Value++
			continue
		}
		index[label] = len(tally)
		tally = append(tally, model.TopicCount{Name: label, Value: 1})
	}

	sort.SliceStable(tally, func(i, j int) bool {
		return tally[i].Value > tally[j].Value
	})

	if limit > 0 && len(tally) > limit {
		tally = tally[:limit]
	}
	return tally
}
