package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConceptSet(t *testing.T) {
	set := NewConceptSet()
	assert.Equal(t, 0, set.Len())
	assert.Empty(t, set.Values())

	set.Add("photosynthesis basics", "cell structure")
	set.Add("photosynthesis basics", "energy transfer")

	assert.Equal(t, 3, set.Len())
	assert.Equal(t,
		[]string{"photosynthesis basics", "cell structure", "energy transfer"},
		set.Values())
}

func TestConceptSetIgnoresEmpty(t *testing.T) {
	set := NewConceptSet()
	set.Add("", "topic", "")
	assert.Equal(t, []string{"topic"}, set.Values())
}

func TestConceptSetValuesIsACopy(t *testing.T) {
	set := NewConceptSet()
	set.Add("one", "two")

	values := set.Values()
	values[0] = "mutated"

	assert.Equal(t, []string{"one", "two"}, set.Values())
}
