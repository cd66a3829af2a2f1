package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sonicbind/surfacemap/errors"
)

func TestCompartment_AddGetRemove(t *testing.T) {
	c := NewCompartment(CompartmentMain)
	assert.Equal(t, CompartmentMain, c.Kind())

	m1 := New("volume")
	m2 := New("pan")
	require.NoError(t, c.Add(m1))
	require.NoError(t, c.Add(m2))
	assert.Equal(t, 2, c.Len())

	assert.Same(t, m1, c.Get(m1.ID))
	assert.Nil(t, c.Get(NewMappingID()), "unknown id is a miss, not an error")

	assert.True(t, c.Remove(m1.ID))
	assert.False(t, c.Remove(m1.ID), "second remove reports false")
	assert.Nil(t, c.Get(m1.ID))
	assert.Equal(t, 1, c.Len())
}

func TestCompartment_AddRejectsDuplicatesAndZeroIDs(t *testing.T) {
	c := NewCompartment(CompartmentController)
	m := New("x")
	require.NoError(t, c.Add(m))

	err := c.Add(m)
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))

	err = c.Add(&Mapping{})
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))

	assert.Error(t, c.Add(nil))
}

func TestCompartment_PreservesOrder(t *testing.T) {
	c := NewCompartment(CompartmentMain)
	names := []string{"a", "b", "c", "d"}
	for _, n := range names {
		require.NoError(t, c.Add(New(n)))
	}

	var seen []string
	c.Each(func(m *Mapping) { seen = append(seen, m.Name) })
	assert.Equal(t, names, seen)

	// Removal keeps the remaining order intact.
	var second MappingID
	i := 0
	c.Each(func(m *Mapping) {
		if i == 1 {
			second = m.ID
		}
		i++
	})
	c.Remove(second)

	seen = seen[:0]
	c.Each(func(m *Mapping) { seen = append(seen, m.Name) })
	assert.Equal(t, []string{"a", "c", "d"}, seen)
}

func TestCompartment_Groups(t *testing.T) {
	c := NewCompartment(CompartmentMain)
	require.NoError(t, c.AddGroup(&Group{ID: "mutes", Name: "Mutes", Exclusive: true}))

	err := c.AddGroup(&Group{ID: "mutes"})
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))
	assert.Error(t, c.AddGroup(&Group{ID: DefaultGroup}))

	m1 := New("mute1")
	m1.Group = "mutes"
	m2 := New("mute2")
	m2.Group = "mutes"
	m3 := New("other")
	require.NoError(t, c.Add(m1))
	require.NoError(t, c.Add(m2))
	require.NoError(t, c.Add(m3))

	err = c.Add(func() *Mapping { m := New("dangling"); m.Group = "nope"; return m }())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrGroupNotFound))

	assert.True(t, c.GroupOf(m1).Exclusive)
	assert.False(t, c.GroupOf(m3).Exclusive)

	var members []string
	c.GroupMembers("mutes", func(m *Mapping) { members = append(members, m.Name) })
	assert.Equal(t, []string{"mute1", "mute2"}, members)
}

func TestAffected(t *testing.T) {
	one := AffectedOne(PropSource)
	prop, ok := one.One()
	require.True(t, ok)
	assert.Equal(t, PropSource, prop)
	assert.False(t, one.Multiple())

	multi := AffectedMultiple()
	_, ok = multi.One()
	assert.False(t, ok)
	assert.True(t, multi.Multiple())
}

func TestQualifiedMappingID_String(t *testing.T) {
	id := NewMappingID()
	q := Qualified(CompartmentController, id)
	assert.Equal(t, "controller/"+id.String(), q.String())

	parsed, err := ParseMappingID(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, parsed)

	_, err = ParseMappingID("not-a-uuid")
	assert.Error(t, err)
}
