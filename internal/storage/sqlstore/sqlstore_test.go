package sqlstore

import (
	"strings"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
)

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, "ann", escapeLike("ann"))
	assert.Equal(t, "100!%", escapeLike("100%"))
	assert.Equal(t, "a!_b", escapeLike("a_b"))
	assert.Equal(t, "wow!!", escapeLike("wow!"))
	assert.Equal(t, "!!!%!_", escapeLike("!%_"))
}

func TestQueriesRebind(t *testing.T) {
	t.Run("question marks stay for sqlite", func(t *testing.T) {
		q := newQueries(sqlx.NewDb(nil, "sqlite3"), "go_lower")
		assert.Equal(t, "SELECT id, name, surname, age, phone, email FROM students WHERE id = ?", q.selectByID)
		assert.Contains(t, q.searchByName, "go_lower(name) LIKE ? ESCAPE '!' OR go_lower(surname) LIKE ?")
	})

	t.Run("numbered placeholders for postgres", func(t *testing.T) {
		q := newQueries(sqlx.NewDb(nil, "postgres"), Dialect{}.lower())
		assert.Equal(t,
			"UPDATE students SET name = $1, surname = $2, age = $3, phone = $4, email = $5 WHERE id = $6",
			q.update)
		assert.False(t, strings.Contains(q.searchByName, "?"))
		assert.Contains(t, q.searchByName, "LOWER(surname) LIKE $2 ESCAPE '!'")
	})
}
