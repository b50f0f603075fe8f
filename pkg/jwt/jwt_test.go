package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParse(t *testing.T) {
	m := NewManager("secret", "bookstore", time.Hour, 24*time.Hour)

	pair, err := m.Issue(42, "alice", "USER")
	require.NoError(t, err)
	assert.Equal(t, int64(3600), pair.ExpiresIn)

	claims, err := m.Parse(pair.AccessToken, TypeAccess)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.NotEmpty(t, claims.ID)

	refresh, err := m.Parse(pair.RefreshToken, TypeRefresh)
	require.NoError(t, err)
	assert.NotEqual(t, claims.ID, refresh.ID)
}

func TestParseRejectsWrongType(t *testing.T) {
	m := NewManager("secret", "bookstore", time.Hour, time.Hour)
	pair, err := m.Issue(1, "bob", "USER")
	require.NoError(t, err)

	_, err = m.Parse(pair.RefreshToken, TypeAccess)
	assert.ErrorIs(t, err, ErrWrongType)
}

func TestParseRejectsExpiredAndForeign(t *testing.T) {
	m := NewManager("secret", "bookstore", time.Minute, time.Minute)
	pair, err := m.Issue(1, "bob", "USER")
	require.NoError(t, err)

	m.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, err = m.Parse(pair.AccessToken, TypeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)

	other := NewManager("other-secret", "bookstore", time.Minute, time.Minute)
	_, err = other.Parse(pair.AccessToken, TypeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = m.Parse("not-a-token", TypeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
