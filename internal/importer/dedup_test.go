package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeduplicator_IsDuplicate(t *testing.T) {
	d := NewDeduplicator()

	assert.False(t, d.IsDuplicate("alpha"))
	assert.True(t, d.IsDuplicate("alpha"))
	assert.False(t, d.IsDuplicate("beta"))
	assert.True(t, d.IsDuplicate("alpha"))
	assert.Equal(t, 2, d.Seen())
}

func TestDeduplicator_Filter(t *testing.T) {
	d := NewDeduplicator()

	unique := d.Filter([]string{"a", "b", "a", "c", "b"})
	assert.Equal(t, []string{"a", "b", "c"}, unique)

	// Seen-set persists across batches within the same run.
	unique = d.Filter([]string{"c", "d"})
	assert.Equal(t, []string{"d"}, unique)
	assert.Equal(t, 4, d.Seen())
}

func TestDeduplicator_FilterEmpty(t *testing.T) {
	d := NewDeduplicator()
	assert.Empty(t, d.Filter(nil))
}

func TestDeduplicator_DistinctContent(t *testing.T) {
	d := NewDeduplicator()

	// Whitespace-distinct content is distinct: the importer trims before
	// dedup, the Deduplicator itself hashes exact bytes.
	assert.False(t, d.IsDuplicate("alpha"))
	assert.False(t, d.IsDuplicate("alpha "))
}
