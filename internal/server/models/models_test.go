package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestUser_Apply_OnlyTouchesSetFields(t *testing.T) {
	u := &User{ID: 1, Name: "ada", Email: "ada@example.com", Bio: ptr("old")}
	u.Apply(UserUpdate{Name: ptr("Ada L."), ProgrammingLanguages: &StringList{"go", "c"}})

	assert.Equal(t, "Ada L.", u.Name)
	assert.Equal(t, "old", *u.Bio)
	assert.Equal(t, StringList{"go", "c"}, u.ProgrammingLanguages)
	assert.Equal(t, "ada@example.com", u.Email)
}

func TestUser_PasswordNeverSerialized(t *testing.T) {
	b, err := json.Marshal(&User{ID: 1, Name: "ada", Password: "secret-hash"})
	require.NoError(t, err)
	assert.NotContains(t, string(b), "secret-hash")
	assert.NotContains(t, string(b), "password")
}

func TestStringList_ValueAndScan(t *testing.T) {
	v, err := StringList(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, []byte("[]"), v)

	var l StringList
	require.NoError(t, l.Scan([]byte(`["go","rust"]`)))
	assert.Equal(t, StringList{"go", "rust"}, l)

	require.NoError(t, l.Scan(nil))
	assert.Error(t, l.Scan(42))
}

func TestBadgeCriteria_ValueAndScan(t *testing.T) {
	c := BadgeCriteria{Type: "posts", Threshold: 25}
	v, err := c.Value()
	require.NoError(t, err)

	var back BadgeCriteria
	require.NoError(t, back.Scan(v))
	assert.Equal(t, c, back)

	require.NoError(t, back.Scan(`{"type":"upvotes","threshold":10}`))
	assert.Equal(t, "upvotes", back.Type)
}

func TestThreadAndPost_Apply(t *testing.T) {
	th := &Thread{Title: "a"}
	th.Apply(ThreadUpdate{IsClosed: ptr(true)})
	assert.True(t, th.IsClosed)
	assert.Equal(t, "a", th.Title)

	p := &Post{Content: "x"}
	p.Apply(PostUpdate{IsDeleted: ptr(true)})
	assert.True(t, p.IsDeleted)
	assert.Equal(t, "x", p.Content)
}

func TestValidFlagStatus(t *testing.T) {
	assert.True(t, ValidFlagStatus(FlagResolved))
	assert.False(t, ValidFlagStatus("closed"))
}
