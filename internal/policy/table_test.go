package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAgeGroup(t *testing.T) {
	g, err := ParseAgeGroup("Middle_School")
	require.NoError(t, err)
	assert.Equal(t, MiddleSchool, g)

	_, err = ParseAgeGroup("infant")
	assert.Error(t, err)
}

func TestAgeGroupOrdering(t *testing.T) {
	assert.True(t, Toddler < Preschool)
	assert.True(t, Preschool < Elementary)
	assert.True(t, Elementary < MiddleSchool)
	assert.True(t, MiddleSchool < HighSchool)
	assert.True(t, HighSchool < Adult)
}

func TestTable_AppRule(t *testing.T) {
	table := Default()

	allowed, ok := table.AppRule(MiddleSchool, "Family Chat")
	require.True(t, ok)
	assert.True(t, allowed)

	allowed, ok = table.AppRule(MiddleSchool, "Casino Royale")
	require.True(t, ok)
	assert.False(t, allowed)

	_, ok = table.AppRule(MiddleSchool, "Some Unknown App")
	assert.False(t, ok, "apps without an explicit rule fall through to the role default")
}

func TestTable_BlockedDomain(t *testing.T) {
	table := Default()

	fragment, blocked := table.BlockedDomain(Elementary, "www.casino-games.example")
	require.True(t, blocked)
	assert.Equal(t, "casino", fragment)

	_, blocked = table.BlockedDomain(Elementary, "www.khanacademy.org")
	assert.False(t, blocked)

	// Substring match is case-insensitive.
	_, blocked = table.BlockedDomain(Toddler, "VIDEOTUBE.example")
	assert.True(t, blocked)
}

func TestTable_KeywordsAccumulateForYoungerGroups(t *testing.T) {
	table := Default()

	high := table.Keywords(HighSchool)
	toddler := table.Keywords(Toddler)

	assert.Contains(t, high, "violence")
	assert.NotContains(t, high, "scary")

	// The toddler set is a strict superset of the high-school set.
	for _, k := range high {
		assert.Contains(t, toddler, k)
	}
	assert.Contains(t, toddler, "scary")
	assert.Contains(t, toddler, "monster")
	assert.Contains(t, toddler, "horror")
}

func TestTable_BlockedKeyword(t *testing.T) {
	table := Default()

	kw, blocked := table.BlockedKeyword(Preschool, "A SCARY story about dragons")
	require.True(t, blocked)
	assert.Equal(t, "scary", kw)

	_, blocked = table.BlockedKeyword(HighSchool, "a scary story about dragons")
	assert.False(t, blocked, "scary is only blocked for younger groups")

	_, blocked = table.BlockedKeyword(Adult, "some gambling tips")
	assert.True(t, blocked, "the universal base set applies to every group")
}
