package inmemdb

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/masomo-admin/core/quiz"
	"github.com/trezcool/masomo-admin/core/user"
)

func init() {
	HashCost = bcrypt.MinCost
}

func TestTable(t *testing.T) {
	tbl := NewTable(quiz.ID, func(q *quiz.Quiz, id string) { q.ID = id })

	a := tbl.Insert(quiz.Quiz{Title: "Aljabar"})
	b := tbl.Insert(quiz.Quiz{Title: "Geometri"})
	require.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, 2, tbl.Len())

	got, err := tbl.Get(a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Aljabar", got.Title)

	_, err = tbl.Get("nope")
	assert.Equal(t, ErrNotFound, err)

	upd, err := tbl.Update(a.ID, func(q *quiz.Quiz) error {
		q.Title = "Aljabar Dasar"
		q.ID = "hijack"
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, a.ID, upd.ID, "IDs are immutable")

	_, err = tbl.Update("nope", func(*quiz.Quiz) error { return nil })
	assert.Equal(t, ErrNotFound, err)

	found, ok := tbl.Find(func(q quiz.Quiz) bool { return q.Title == "Geometri" })
	assert.True(t, ok)
	assert.Equal(t, b.ID, found.ID)

	require.NoError(t, tbl.Delete(a.ID))
	assert.Equal(t, ErrNotFound, tbl.Delete(a.ID))
	assert.Equal(t, []quiz.Quiz{b}, tbl.All())
}

func TestTable_Concurrent(t *testing.T) {
	tbl := NewTable(quiz.ID, func(q *quiz.Quiz, id string) { q.ID = id })
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			q := tbl.Insert(quiz.Quiz{Title: "x"})
			_, _ = tbl.Get(q.ID)
			_ = tbl.All()
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, tbl.Len())
}

func TestSeed(t *testing.T) {
	db := Open()
	require.NoError(t, Seed(db, "Rahasia#123"))

	acc, err := db.AccountByLogin(" SARI ")
	require.NoError(t, err)
	assert.Equal(t, user.RoleTeacher, acc.Role)
	assert.NoError(t, acc.CheckPassword("Rahasia#123"))
	assert.Error(t, acc.CheckPassword("nope"))

	_, err = db.AccountByLogin("admin@masomo.test")
	assert.NoError(t, err)
	_, err = db.AccountByLogin("ghost")
	assert.Equal(t, ErrNotFound, err)

	students := db.Users(func(u user.User) bool { return u.IsStudent() })
	assert.Len(t, students, 3)
	assert.Equal(t, 120, students[0].TotalXP)
	assert.Equal(t, 2, students[0].Level)
	assert.Equal(t, 2, db.Transactions.Len())
	assert.Equal(t, 3, db.Quizzes.Len())
}

func TestAwardXP(t *testing.T) {
	db := Open()
	acc, err := db.CreateAccount(user.User{Name: "Andi", Username: "Andi", Role: user.RoleStudent}, "x")
	require.NoError(t, err)
	assert.Equal(t, "andi", acc.Username)

	tx, err := db.AwardXP(user.User{ID: "u0"}, acc.ID, 250, "bonus", "manual")
	require.NoError(t, err)
	assert.Equal(t, "Andi", tx.UserName)
	assert.Equal(t, "u0", tx.CreatedBy)
	_, err = db.AwardXP(user.User{ID: "u0"}, acc.ID, -400, "penalty", "manual")
	require.NoError(t, err)

	got, _ := db.Accounts.Get(acc.ID)
	assert.Equal(t, 0, got.TotalXP, "XP never goes below zero")
	assert.Equal(t, 1, got.Level)
	_, err = db.AwardXP(user.User{}, "ghost", 1, "x", "manual")
	assert.Equal(t, ErrNotFound, err)
}
