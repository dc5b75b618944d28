package inmemdb

import (
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/masomo-admin/core/activity"
	"github.com/trezcool/masomo-admin/core/class"
	"github.com/trezcool/masomo-admin/core/exam"
	"github.com/trezcool/masomo-admin/core/quiz"
	"github.com/trezcool/masomo-admin/core/studyresource"
	"github.com/trezcool/masomo-admin/core/user"
	"github.com/trezcool/masomo-admin/core/xp"
)

var (
	HashCost = bcrypt.DefaultCost // lowered in tests
	NowFunc  = time.Now           // mockable
)

// Account is a user together with its credentials.
type Account struct {
	user.User
	PasswordHash []byte `json:"-"`
}

func (a *Account) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), HashCost)
	if err != nil {
		return err
	}
	a.PasswordHash = hash
	return nil
}

func (a *Account) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(a.PasswordHash, []byte(pwd))
}

// DB holds every collection of the sandbox backend.
type DB struct {
	Accounts     *Table[Account]
	Quizzes      *Table[quiz.Quiz]
	QuizTypes    *Table[quiz.QuizType]
	Exams        *Table[exam.Exam]
	Results      *Table[exam.Result]
	Classes      *Table[class.Class]
	Resources    *Table[studyresource.Resource]
	Milestones   *Table[xp.Milestone]
	Transactions *Table[xp.Transaction]
	Activities   *Table[activity.Activity]
}

func Open() *DB {
	return &DB{
		Accounts:     NewTable(func(a Account) string { return a.ID }, func(a *Account, id string) { a.ID = id }),
		Quizzes:      NewTable(quiz.ID, func(q *quiz.Quiz, id string) { q.ID = id }),
		QuizTypes:    NewTable(quiz.TypeID, func(qt *quiz.QuizType, id string) { qt.ID = id }),
		Exams:        NewTable(exam.ID, func(e *exam.Exam, id string) { e.ID = id }),
		Results:      NewTable(func(r exam.Result) string { return r.ID }, func(r *exam.Result, id string) { r.ID = id }),
		Classes:      NewTable(class.ID, func(c *class.Class, id string) { c.ID = id }),
		Resources:    NewTable(studyresource.ID, func(r *studyresource.Resource, id string) { r.ID = id }),
		Milestones:   NewTable(xp.ID, func(m *xp.Milestone, id string) { m.ID = id }),
		Transactions: NewTable(func(t xp.Transaction) string { return t.ID }, func(t *xp.Transaction, id string) { t.ID = id }),
		Activities:   NewTable(activity.ID, func(a *activity.Activity, id string) { a.ID = id }),
	}
}

// AccountByLogin finds the account whose username or email is `login`.
func (db *DB) AccountByLogin(login string) (Account, error) {
	login = strings.ToLower(strings.TrimSpace(login))
	acc, ok := db.Accounts.Find(func(a Account) bool {
		return a.Username == login || strings.ToLower(a.Email) == login
	})
	if !ok {
		return Account{}, ErrNotFound
	}
	return acc, nil
}

// CreateAccount stores a new account with `pwd` hashed.
func (db *DB) CreateAccount(usr user.User, pwd string) (Account, error) {
	now := NowFunc()
	acc := Account{User: usr}
	acc.Username = strings.ToLower(acc.Username)
	acc.CreatedAt, acc.UpdatedAt = now, now
	if err := acc.SetPassword(pwd); err != nil {
		return Account{}, err
	}
	return db.Accounts.Insert(acc), nil
}

// Users returns the profiles of every account, optionally restricted by `match`.
func (db *DB) Users(match func(user.User) bool) []user.User {
	accs := db.Accounts.All()
	users := make([]user.User, 0, len(accs))
	for _, acc := range accs {
		if match == nil || match(acc.User) {
			users = append(users, acc.User)
		}
	}
	return users
}

// Log appends an audit entry.
func (db *DB) Log(usr user.User, action, resource, resourceID, description, ip string) activity.Activity {
	return db.Activities.Insert(activity.Activity{
		UserID:      usr.ID,
		UserName:    usr.DisplayName(),
		Role:        usr.Role,
		Action:      action,
		Resource:    resource,
		ResourceID:  resourceID,
		Description: description,
		IPAddress:   ip,
		CreatedAt:   NowFunc(),
	})
}
