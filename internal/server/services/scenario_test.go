package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/todolist/internal/common"
	"github.com/dmitrijs2005/todolist/internal/cryptox"
	"github.com/dmitrijs2005/todolist/internal/logging"
	"github.com/dmitrijs2005/todolist/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/todolist/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/todolist/internal/server/testdb"
	"github.com/stretchr/testify/suite"
)

// ScenarioSuite runs the services end to end against a migrated SQLite
// database and the real argon2id codec.
type ScenarioSuite struct {
	suite.Suite
	ctx context.Context

	users    *UserService
	sessions *SessionService
	lists    *ListService
	tasks    *TaskService
}

func (s *ScenarioSuite) SetupTest() {
	s.ctx = context.Background()
	db := testdb.OpenSQLite(s.T())
	rm := &repomanager.SQLiteRepositoryManager{}
	log := logging.Nop()

	codec := cryptox.NewPasswordCodec(cryptox.Argon2Params{
		Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32,
	}, nil)

	s.sessions = NewSessionService(sessions.NewSQLiteRepository(db), 0, log)
	s.users = NewUserService(db, rm, codec, s.sessions, log)
	s.lists = NewListService(db, rm, log)
	s.tasks = NewTaskService(db, rm, log)
}

func TestScenarioSuite(t *testing.T) {
	suite.Run(t, new(ScenarioSuite))
}

func (s *ScenarioSuite) TestSecondRegistrationIsTaken() {
	_, err := s.users.Register(s.ctx, "alice", "pw1")
	s.Require().NoError(err)

	_, err = s.users.Register(s.ctx, "alice", "pw2")
	s.ErrorIs(err, common.ErrUsernameTaken)
}

func (s *ScenarioSuite) TestConcurrentRegistrationHasOneWinner() {
	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.users.Register(s.ctx, "carol", fmt.Sprintf("pw%d", i))
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		s.ErrorIs(err, common.ErrUsernameTaken)
	}
	s.Equal(1, ok)
}

func (s *ScenarioSuite) TestAuthenticate() {
	reg, err := s.users.Register(s.ctx, "alice", "pw1")
	s.Require().NoError(err)

	u, err := s.users.Authenticate(s.ctx, "alice", "pw1")
	s.Require().NoError(err)
	s.Equal(reg.ID, u.ID)

	exposed, err := json.Marshal(u)
	s.Require().NoError(err)
	s.NotContains(string(exposed), u.PasswordHash)
	s.NotContains(string(exposed), "argon2id")

	_, err = s.users.Authenticate(s.ctx, "alice", "wrong")
	s.ErrorIs(err, common.ErrInvalidCredentials)

	_, err = s.users.Authenticate(s.ctx, "nobody", "pw1")
	s.ErrorIs(err, common.ErrUserNotFound)
}

func (s *ScenarioSuite) TestSoftDeletedUserCannotLoginAndNameIsFreed() {
	alice, err := s.users.Register(s.ctx, "alice", "pw1")
	s.Require().NoError(err)
	sess, err := s.sessions.Create(s.ctx, alice.ID)
	s.Require().NoError(err)

	s.Require().NoError(s.users.SoftDelete(s.ctx, alice.ID))
	s.Require().NoError(s.users.SoftDelete(s.ctx, alice.ID))

	_, err = s.users.Authenticate(s.ctx, "alice", "pw1")
	s.ErrorIs(err, common.ErrUserNotFound)

	_, err = s.sessions.Resolve(s.ctx, sess.Handle)
	s.ErrorIs(err, common.ErrSessionInvalid)

	again, err := s.users.Register(s.ctx, "alice", "pw9")
	s.Require().NoError(err)
	s.NotEqual(alice.ID, again.ID)
}

func (s *ScenarioSuite) TestChangePasswordRevokesSessions() {
	alice, err := s.users.Register(s.ctx, "alice", "pw1")
	s.Require().NoError(err)
	sess, err := s.sessions.Create(s.ctx, alice.ID)
	s.Require().NoError(err)

	s.Require().NoError(s.users.ChangePassword(s.ctx, alice.ID, "pw1", "pw2"))

	_, err = s.sessions.Resolve(s.ctx, sess.Handle)
	s.ErrorIs(err, common.ErrSessionInvalid)

	_, err = s.users.Authenticate(s.ctx, "alice", "pw1")
	s.ErrorIs(err, common.ErrInvalidCredentials)
	_, err = s.users.Authenticate(s.ctx, "alice", "pw2")
	s.NoError(err)
}

func (s *ScenarioSuite) TestDeleteListOwnership() {
	alice, err := s.users.Register(s.ctx, "alice", "pw1")
	s.Require().NoError(err)
	bob, err := s.users.Register(s.ctx, "bob", "pw2")
	s.Require().NoError(err)

	list, err := s.lists.CreateList(s.ctx, alice.ID, "Groceries")
	s.Require().NoError(err)

	// bob cannot delete it, and the outcome matches a missing list
	s.ErrorIs(s.lists.DeleteList(s.ctx, list.ID, bob.ID), common.ErrNoMatchingRow)
	s.ErrorIs(s.lists.DeleteList(s.ctx, "no-such-list", bob.ID), common.ErrNoMatchingRow)

	own, err := s.lists.ListLists(s.ctx, alice.ID)
	s.Require().NoError(err)
	s.Require().Len(own, 1)
	s.Equal(list.ID, own[0].ID)

	s.Require().NoError(s.lists.DeleteList(s.ctx, list.ID, alice.ID))
	s.ErrorIs(s.lists.DeleteList(s.ctx, list.ID, alice.ID), common.ErrNoMatchingRow)

	own, err = s.lists.ListLists(s.ctx, alice.ID)
	s.Require().NoError(err)
	s.Empty(own)
}

func (s *ScenarioSuite) TestCompleteUncompletePairing() {
	alice, err := s.users.Register(s.ctx, "alice", "pw1")
	s.Require().NoError(err)
	list, err := s.lists.CreateList(s.ctx, alice.ID, "Groceries")
	s.Require().NoError(err)
	task, err := s.tasks.CreateTask(s.ctx, list.ID, "Buy milk", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), alice.ID)
	s.Require().NoError(err)

	s.Require().NoError(s.tasks.CompleteTask(s.ctx, task.ID, alice.ID))
	got, err := s.tasks.ListTasks(s.ctx, list.ID)
	s.Require().NoError(err)
	s.Require().Len(got, 1)
	s.NotNil(got[0].CompletedAt)
	s.NotNil(got[0].CompletedBy)

	s.Require().NoError(s.tasks.UncompleteTask(s.ctx, task.ID))
	got, err = s.tasks.ListTasks(s.ctx, list.ID)
	s.Require().NoError(err)
	s.Nil(got[0].CompletedAt)
	s.Nil(got[0].CompletedBy)
	s.Nil(got[0].CompletedByName)

	s.ErrorIs(s.tasks.CompleteTask(s.ctx, "no-such-task", alice.ID), common.ErrNoMatchingRow)
}

func (s *ScenarioSuite) TestConcurrentCompleteStaysCompleted() {
	alice, err := s.users.Register(s.ctx, "alice", "pw1")
	s.Require().NoError(err)
	list, err := s.lists.CreateList(s.ctx, alice.ID, "Groceries")
	s.Require().NoError(err)
	task, err := s.tasks.CreateTask(s.ctx, list.ID, "Buy milk", time.Now(), alice.ID)
	s.Require().NoError(err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.NoError(s.tasks.CompleteTask(s.ctx, task.ID, alice.ID))
		}()
	}
	wg.Wait()

	got, err := s.tasks.ListTasks(s.ctx, list.ID)
	s.Require().NoError(err)
	s.True(got[0].Completed())
}

// TestAliceAndBob walks the reference scenario, including the documented
// behaviour that completing a task needs no ownership of its list.
func (s *ScenarioSuite) TestAliceAndBob() {
	alice, err := s.users.Register(s.ctx, "alice", "pw1")
	s.Require().NoError(err)
	bob, err := s.users.Register(s.ctx, "bob", "pw2")
	s.Require().NoError(err)
	s.NotEqual(alice.ID, bob.ID)

	groceries, err := s.lists.CreateList(s.ctx, alice.ID, "Groceries")
	s.Require().NoError(err)

	aliceLists, err := s.lists.ListLists(s.ctx, alice.ID)
	s.Require().NoError(err)
	s.Require().Len(aliceLists, 1)
	s.Equal("Groceries", aliceLists[0].Title)

	bobLists, err := s.lists.ListLists(s.ctx, bob.ID)
	s.Require().NoError(err)
	s.Empty(bobLists)

	milk, err := s.tasks.CreateTask(s.ctx, groceries.ID, "Buy milk", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), alice.ID)
	s.Require().NoError(err)

	tasks, err := s.tasks.ListTasks(s.ctx, groceries.ID)
	s.Require().NoError(err)
	s.Require().Len(tasks, 1)
	s.Equal(milk.ID, tasks[0].ID)
	s.False(tasks[0].Completed())

	s.Require().NoError(s.tasks.CompleteTask(s.ctx, milk.ID, bob.ID))

	tasks, err = s.tasks.ListTasks(s.ctx, groceries.ID)
	s.Require().NoError(err)
	s.Require().True(tasks[0].Completed())
	s.Equal(bob.ID, *tasks[0].CompletedBy)
	s.Equal("bob", *tasks[0].CompletedByName)
}
