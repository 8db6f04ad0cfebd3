package streak

import (
	"fmt"
	"solveit_backend/internal/model"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTallyTopicsOrdersByCount(t *testing.T) {
	topics := []string{"A", "B", "A", "C", "B", "B", "A", "B", "B"}

	got := TallyTopics(topics, 10)

	assert.Equal(t, []string{"B", "A", "C"}, names(got))
	assert.Equal(t, 5, got[0].Value)
	assert.Equal(t, 3, got[1].Value)
	assert.Equal(t, 1, got[2].Value)
}

func TestTallyTopicsTiesKeepFirstAppearance(t *testing.T) {
	got := TallyTopics([]string{"Graphs", "Arrays", "DP", "Arrays", "Graphs", "DP"}, 10)
	assert.Equal(t, []string{"Graphs", "Arrays", "DP"}, names(got))
}

func TestTallyTopicsEmptyLabel(t *testing.T) {
	got := TallyTopics([]string{"", "  ", "Array"}, 10)

	assert.Equal(t, "Uncategorized", got[0].Name)
	assert.Equal(t, 2, got[0].Value)
}

func TestTallyTopicsTruncates(t *testing.T) {
	var topics []string
	for i := 0; i < 15; i++ {
		for j := 0; j <= i; j++ {
			topics = append(topics, fmt.Sprintf("topic-%02d", i))
		}
	}

	got := TallyTopics(topics, 10)

	assert.Len(t, got, 10)
	assert.Equal(t, "topic-14", got[0].Name)
	assert.Equal(t, "topic-05", got[9].Name)
}

func TestTallyTopicsEmpty(t *testing.T) {
	got := TallyTopics(nil, 10)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func names(tally []model.TopicCount) []string {
	out := make([]string, len(tally))
	for i, tc := range tally {
		out[i] = tc.Name
	}
	return out
}
