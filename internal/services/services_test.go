package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/devboard-api/internal/config"
	"github.com/yukikurage/devboard-api/internal/database"
	"github.com/yukikurage/devboard-api/internal/models"
	"github.com/yukikurage/devboard-api/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ServiceTestSuite runs the services against an in-memory SQLite database
type ServiceTestSuite struct {
	suite.Suite
	db       *gorm.DB
	users    *UserService
	tasks    *TaskService
	comments *CommentService
	admin    *AdminService
	tokens   *TokenService
}

func (s *ServiceTestSuite) SetupTest() {
	var err error
	s.db, err = database.Connect(config.DatabaseConfig{Driver: "sqlite", DSN: ":memory:", LogLevel: "silent"}, zerolog.Nop())
	s.Require().NoError(err)
	s.Require().NoError(database.Migrate(s.db, zerolog.Nop()))

	userRepo := repository.NewUserRepository(s.db)
	taskRepo := repository.NewTaskRepository(s.db)
	commentRepo := repository.NewCommentRepository(s.db)

	s.tokens = NewTokenService("test-secret", time.Hour)
	s.users = NewUserService(userRepo, s.tokens, zerolog.Nop())
	s.tasks = NewTaskService(taskRepo, userRepo, commentRepo, UpdateByAnyUser, nil, zerolog.Nop())
	s.comments = NewCommentService(commentRepo, taskRepo, userRepo, zerolog.Nop())
	s.admin = NewAdminService(userRepo, taskRepo, commentRepo, zerolog.Nop())
}

func (s *ServiceTestSuite) TearDownTest() {
	sqlDB, err := s.db.DB()
	s.Require().NoError(err)
	sqlDB.Close()
}

func (s *ServiceTestSuite) register(username string) Actor {
	user, err := s.users.Register(RegisterInput{
		Username: username,
		Email:    username + "@example.com",
		Password: "password123",
	})
	s.Require().NoError(err)
	return ActorFromUser(*user)
}

func (s *ServiceTestSuite) registerAdmin(username string) Actor {
	actor := s.register(username)
	s.Require().NoError(s.db.Model(&models.User{}).Where("id = ?", actor.ID).Update("role", models.RoleAdmin).Error)
	actor.Role = models.RoleAdmin
	return actor
}

func (s *ServiceTestSuite) createTask(actor Actor, input CreateTaskInput) *TaskView {
	view, err := s.tasks.CreateTask(actor, input)
	s.Require().NoError(err)
	return view
}

func ptr[T any](v T) *T {
	return &v
}

func ids(views []TaskView) []uint64 {
	out := make([]uint64, len(views))
	for i, v := range views {
		out[i] = v.Task.ID
	}
	return out
}

// --- user directory ---

func (s *ServiceTestSuite) TestRegister_HashesPassword() {
	user, err := s.users.Register(RegisterInput{Username: " alice ", Email: "alice@example.com", Password: "s3cretpw"})
	s.Require().NoError(err)

	s.Equal("alice", user.Username)
	s.Equal(models.RoleUser, user.Role)
	s.NotEqual("s3cretpw", user.PasswordHash)
	s.NoError(bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("s3cretpw")))
}

func (s *ServiceTestSuite) TestRegister_RejectsDuplicates() {
	s.register("alice")

	_, err := s.users.Register(RegisterInput{Username: "alice", Email: "new@example.com", Password: "password123"})
	s.ErrorIs(err, ErrAlreadyExists)
	s.ErrorIs(err, ErrUsernameTaken)

	_, err = s.users.Register(RegisterInput{Username: "alice2", Email: "alice@example.com", Password: "password123"})
	s.ErrorIs(err, ErrEmailTaken)

	var count int64
	s.db.Model(&models.User{}).Count(&count)
	s.EqualValues(1, count)
}

func (s *ServiceTestSuite) TestRegister_Validation() {
	_, err := s.users.Register(RegisterInput{Username: "bob", Email: "bob@example.com", Password: "123"})
	s.ErrorIs(err, ErrValidation)
	_, err = s.users.Register(RegisterInput{Username: "  ", Email: "bob@example.com", Password: "password123"})
	s.ErrorIs(err, ErrValidation)
}

func (s *ServiceTestSuite) TestAuthenticate() {
	s.register("alice")

	result, err := s.users.Authenticate(LoginInput{Username: "alice", Password: "password123"})
	s.Require().NoError(err)
	s.Equal("alice", result.User.Username)

	username, err := s.tokens.Verify(result.Token)
	s.NoError(err)
	s.Equal("alice", username)

	user, err := s.users.VerifyToken(result.Token)
	s.NoError(err)
	s.Equal(result.User.ID, user.ID)

	result, err = s.users.Authenticate(LoginInput{Username: "alice", Password: "wrong"})
	s.ErrorIs(err, ErrInvalidCredentials)
	s.Nil(result)

	_, err = s.users.Authenticate(LoginInput{Username: "nobody", Password: "password123"})
	s.ErrorIs(err, ErrUserNotFound)
}

func (s *ServiceTestSuite) TestVerifyToken_UnknownUser() {
	token, _, err := s.tokens.Issue("ghost")
	s.Require().NoError(err)

	_, err = s.users.VerifyToken(token)
	s.ErrorIs(err, ErrInvalidToken)
}

func (s *ServiceTestSuite) TestUpdateProfile() {
	alice := s.register("alice")
	s.register("bob")

	user, err := s.users.UpdateProfile(alice.ID, ProfileUpdate{Nickname: ptr("Al")})
	s.Require().NoError(err)
	s.Equal("Al", user.Nickname)
	s.Equal("alice@example.com", user.Email)

	user, err = s.users.UpdateProfile(alice.ID, ProfileUpdate{Avatar: ptr("https://example.com/a.png")})
	s.Require().NoError(err)
	s.Equal("Al", user.Nickname)
	s.Equal("https://example.com/a.png", user.Avatar)

	_, err = s.users.UpdateProfile(alice.ID, ProfileUpdate{Email: ptr("bob@example.com")})
	s.ErrorIs(err, ErrAlreadyExists)

	// unchanged email is not a conflict
	_, err = s.users.UpdateProfile(alice.ID, ProfileUpdate{Email: ptr("alice@example.com")})
	s.NoError(err)

	_, err = s.users.UpdateProfile(999, ProfileUpdate{Nickname: ptr("x")})
	s.ErrorIs(err, ErrUserNotFound)

	stored, err := s.users.GetUser(alice.ID)
	s.Require().NoError(err)
	s.Equal(models.RoleUser, stored.Role)
	s.Equal("alice", stored.Username)
}

// --- tasks ---

func (s *ServiceTestSuite) TestCreateAndGet_RoundTrip() {
	alice := s.register("alice")
	bob := s.register("bob")

	created := s.createTask(alice, CreateTaskInput{Title: "Write changelog", Description: "draft", AssigneeID: &bob.ID})
	s.Equal(models.TaskStatusTodo, created.Task.Status)
	s.Equal(models.TaskPriorityMedium, created.Task.Priority)
	s.Equal("alice", created.Task.Creator.Username)
	s.Require().NotNil(created.Task.Assignee)
	s.Equal("bob", created.Task.Assignee.Username)

	got, err := s.tasks.GetTask(created.Task.ID)
	s.Require().NoError(err)
	s.Equal("Write changelog", got.Task.Title)
	s.Equal("draft", got.Task.Description)
	s.Equal(alice.ID, got.Task.CreatorID)
	s.Equal(bob.ID, *got.Task.AssigneeID)
	s.EqualValues(0, got.CommentCount)
}

func (s *ServiceTestSuite) TestCreateTask_Validation() {
	alice := s.register("alice")

	_, err := s.tasks.CreateTask(alice, CreateTaskInput{Title: "   "})
	s.ErrorIs(err, ErrValidation)

	long := make([]rune, 256)
	for i := range long {
		long[i] = 'a'
	}
	_, err = s.tasks.CreateTask(alice, CreateTaskInput{Title: string(long)})
	s.ErrorIs(err, ErrValidation)

	_, err = s.tasks.CreateTask(alice, CreateTaskInput{Title: "ok", AssigneeID: ptr(uint64(999))})
	s.ErrorIs(err, ErrNotFound)

	_, err = s.tasks.CreateTask(Actor{ID: 999}, CreateTaskInput{Title: "ghost"})
	s.ErrorIs(err, ErrUserNotFound)
}

func (s *ServiceTestSuite) TestListTasks_Conjunction() {
	u1 := s.register("u1")
	u2 := s.register("u2")

	t1 := s.createTask(u1, CreateTaskInput{Title: "Fix login bug", Priority: models.TaskPriorityHigh, AssigneeID: &u2.ID})
	s.createTask(u1, CreateTaskInput{Title: "Write docs", Priority: models.TaskPriorityLow, AssigneeID: &u2.ID})
	s.createTask(u2, CreateTaskInput{Title: "Login page", Priority: models.TaskPriorityHigh})

	views, err := s.tasks.ListTasks(ParseFilter(FilterParams{AssigneeID: &u2.ID, Priority: "high"}))
	s.Require().NoError(err)
	s.Equal([]uint64{t1.Task.ID}, ids(views))

	views, err = s.tasks.ListTasks(ParseFilter(FilterParams{Search: "  LOGIN "}))
	s.Require().NoError(err)
	s.Len(views, 2)

	views, err = s.tasks.ListTasks(ParseFilter(FilterParams{Search: "   "}))
	s.Require().NoError(err)
	s.Len(views, 3)

	views, err = s.tasks.ListTasks(ParseFilter(FilterParams{CreatorID: &u1.ID, Status: "todo"}))
	s.Require().NoError(err)
	s.Len(views, 2)
}

func (s *ServiceTestSuite) TestListTasks_AssigneeFilterExcludesUnassigned() {
	u := s.register("u")
	s.createTask(u, CreateTaskInput{Title: "unassigned"})

	views, err := s.tasks.ListTasks(ParseFilter(FilterParams{AssigneeID: &u.ID}))
	s.Require().NoError(err)
	s.Empty(views)
}

func (s *ServiceTestSuite) TestListTasks_InvalidEnumMatchesNothing() {
	u := s.register("u")
	s.createTask(u, CreateTaskInput{Title: "t"})

	q := ParseFilter(FilterParams{Priority: "URGENT"})
	s.True(q.MatchNone)
	views, err := s.tasks.ListTasks(q)
	s.Require().NoError(err)
	s.NotNil(views)
	s.Empty(views)

	views, err = s.tasks.ListTasks(ParseFilter(FilterParams{Status: "closed"}))
	s.Require().NoError(err)
	s.Empty(views)
}

func (s *ServiceTestSuite) TestListTasks_CommentCounts() {
	u := s.register("u")
	task := s.createTask(u, CreateTaskInput{Title: "t"})
	_, err := s.comments.CreateComment(u, task.Task.ID, "one")
	s.Require().NoError(err)
	_, err = s.comments.CreateComment(u, task.Task.ID, "two")
	s.Require().NoError(err)

	views, err := s.tasks.ListTasks(ParseFilter(FilterParams{}))
	s.Require().NoError(err)
	s.Require().Len(views, 1)
	s.EqualValues(2, views[0].CommentCount)

	n, err := s.comments.CountComments(task.Task.ID)
	s.NoError(err)
	s.EqualValues(2, n)
}

func (s *ServiceTestSuite) TestListTasksByStatusAndMine() {
	alice := s.register("alice")
	bob := s.register("bob")

	mine := s.createTask(alice, CreateTaskInput{Title: "mine"})
	assigned := s.createTask(bob, CreateTaskInput{Title: "assigned", AssigneeID: &alice.ID, Status: models.TaskStatusInProgress})
	s.createTask(bob, CreateTaskInput{Title: "other"})

	views, err := s.tasks.ListMyTasks(alice.ID)
	s.Require().NoError(err)
	s.ElementsMatch([]uint64{mine.Task.ID, assigned.Task.ID}, ids(views))

	views, err = s.tasks.ListTasksByStatus(models.TaskStatusInProgress)
	s.Require().NoError(err)
	s.Equal([]uint64{assigned.Task.ID}, ids(views))
}

func (s *ServiceTestSuite) TestUpdateTask() {
	alice := s.register("alice")
	bob := s.register("bob")
	task := s.createTask(alice, CreateTaskInput{Title: "t", Description: "keep me"})

	// any authenticated user may update
	updated, err := s.tasks.UpdateTask(bob, task.Task.ID, UpdateTaskInput{
		Status:     ptr(models.TaskStatusDone),
		AssigneeID: &bob.ID,
	})
	s.Require().NoError(err)
	s.Equal(models.TaskStatusDone, updated.Task.Status)
	s.Equal("keep me", updated.Task.Description)
	s.Equal(models.TaskPriorityMedium, updated.Task.Priority)
	s.Require().NotNil(updated.Task.Assignee)
	s.Equal("bob", updated.Task.Assignee.Username)

	_, err = s.tasks.UpdateTask(alice, task.Task.ID, UpdateTaskInput{Title: ptr("")})
	s.ErrorIs(err, ErrValidation)

	_, err = s.tasks.UpdateTask(alice, task.Task.ID, UpdateTaskInput{AssigneeID: ptr(uint64(999))})
	s.ErrorIs(err, ErrNotFound)
	got, err := s.tasks.GetTask(task.Task.ID)
	s.Require().NoError(err)
	s.Equal(bob.ID, *got.Task.AssigneeID)

	_, err = s.tasks.UpdateTask(alice, 999, UpdateTaskInput{Title: ptr("x")})
	s.ErrorIs(err, ErrTaskNotFound)
}

func (s *ServiceTestSuite) TestUpdateTask_ParticipantsPolicy() {
	alice := s.register("alice")
	bob := s.register("bob")
	carol := s.register("carol")
	task := s.createTask(alice, CreateTaskInput{Title: "t", AssigneeID: &bob.ID})

	s.tasks.policy = UpdateByParticipants

	_, err := s.tasks.UpdateTask(carol, task.Task.ID, UpdateTaskInput{Title: ptr("hijack")})
	s.ErrorIs(err, ErrTaskAccessDenied)

	_, err = s.tasks.UpdateTask(bob, task.Task.ID, UpdateTaskInput{Title: ptr("assignee edit")})
	s.NoError(err)
}

func (s *ServiceTestSuite) TestDeleteTask_Permissions() {
	creator := s.register("creator")
	other := s.register("other")
	admin := s.registerAdmin("admin")

	own := s.createTask(creator, CreateTaskInput{Title: "own"})
	foreign := s.createTask(creator, CreateTaskInput{Title: "foreign"})

	s.ErrorIs(s.tasks.DeleteTask(other, own.Task.ID), ErrAccessDenied)
	s.NoError(s.tasks.DeleteTask(creator, own.Task.ID))
	s.ErrorIs(s.tasks.DeleteTask(creator, own.Task.ID), ErrTaskNotFound)

	s.NoError(s.tasks.DeleteTask(admin, foreign.Task.ID))
	_, err := s.tasks.GetTask(foreign.Task.ID)
	s.ErrorIs(err, ErrNotFound)

	s.ErrorIs(s.tasks.DeleteTask(Actor{ID: 999}, s.createTask(creator, CreateTaskInput{Title: "x"}).Task.ID), ErrUserNotFound)
}

func (s *ServiceTestSuite) TestDeleteTask_UsesStoredRole() {
	creator := s.register("creator")
	other := s.register("other")
	task := s.createTask(creator, CreateTaskInput{Title: "t"})

	// a stale actor claiming ADMIN does not bypass the check
	other.Role = models.RoleAdmin
	s.ErrorIs(s.tasks.DeleteTask(other, task.Task.ID), ErrTaskAccessDenied)
}

func (s *ServiceTestSuite) TestAdminDeleteTask_RemovesComments() {
	u := s.register("u")
	task := s.createTask(u, CreateTaskInput{Title: "t"})
	_, err := s.comments.CreateComment(u, task.Task.ID, "c")
	s.Require().NoError(err)

	s.Require().NoError(s.tasks.AdminDeleteTask(task.Task.ID))
	s.ErrorIs(s.tasks.AdminDeleteTask(task.Task.ID), ErrTaskNotFound)

	comments, err := s.comments.ListComments(task.Task.ID)
	s.NoError(err)
	s.Empty(comments)
}

func (s *ServiceTestSuite) TestIsCreator() {
	alice := s.register("alice")
	task := s.createTask(alice, CreateTaskInput{Title: "t"})

	s.True(s.tasks.IsCreator(task.Task.ID, "alice"))
	s.False(s.tasks.IsCreator(task.Task.ID, "bob"))
	s.False(s.tasks.IsCreator(999, "alice"))
}

func (s *ServiceTestSuite) TestAliceScenario() {
	alice := s.register("alice")
	task := s.createTask(alice, CreateTaskInput{Title: "T"})

	views, err := s.tasks.ListTasks(ParseFilter(FilterParams{AssigneeID: &alice.ID}))
	s.Require().NoError(err)
	s.Empty(views)

	views, err = s.tasks.ListMyTasks(alice.ID)
	s.Require().NoError(err)
	s.Equal([]uint64{task.Task.ID}, ids(views))

	_, err = s.tasks.UpdateTask(alice, task.Task.ID, UpdateTaskInput{Status: ptr(models.TaskStatusDone)})
	s.Require().NoError(err)
	got, err := s.tasks.GetTask(task.Task.ID)
	s.Require().NoError(err)
	s.Equal(models.TaskStatusDone, got.Task.Status)

	s.Require().NoError(s.tasks.DeleteTask(alice, task.Task.ID))
	_, err = s.tasks.GetTask(task.Task.ID)
	s.ErrorIs(err, ErrNotFound)
}

// --- comments ---

func (s *ServiceTestSuite) TestComments() {
	author := s.register("author")
	other := s.register("other")
	admin := s.registerAdmin("admin")
	task := s.createTask(author, CreateTaskInput{Title: "t"})

	first, err := s.comments.CreateComment(author, task.Task.ID, "first")
	s.Require().NoError(err)
	s.Equal("author", first.User.Username)
	second, err := s.comments.CreateComment(other, task.Task.ID, "second")
	s.Require().NoError(err)

	list, err := s.comments.ListComments(task.Task.ID)
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	s.Equal(second.ID, list[0].ID)

	detail, err := s.tasks.GetTaskDetail(task.Task.ID)
	s.Require().NoError(err)
	s.Len(detail.Comments, 2)
	s.EqualValues(2, detail.CommentCount)

	s.ErrorIs(s.comments.DeleteComment(other, first.ID), ErrCommentAccessDenied)
	s.NoError(s.comments.DeleteComment(author, first.ID))
	s.ErrorIs(s.comments.DeleteComment(author, first.ID), ErrCommentNotFound)
	s.NoError(s.comments.DeleteComment(admin, second.ID))

	s.ErrorIs(s.comments.DeleteComment(Actor{ID: 999}, 12345), ErrCommentNotFound)
}

func (s *ServiceTestSuite) TestCreateComment_Errors() {
	u := s.register("u")
	task := s.createTask(u, CreateTaskInput{Title: "t"})

	_, err := s.comments.CreateComment(u, 999, "hi")
	s.ErrorIs(err, ErrTaskNotFound)

	_, err = s.comments.CreateComment(Actor{ID: 999}, task.Task.ID, "hi")
	s.ErrorIs(err, ErrUserNotFound)

	_, err = s.comments.CreateComment(u, task.Task.ID, "  ")
	s.ErrorIs(err, ErrValidation)

	c, err := s.comments.CreateComment(u, task.Task.ID, "mine")
	s.Require().NoError(err)
	err = s.comments.DeleteComment(Actor{ID: 999}, c.ID)
	s.ErrorIs(err, ErrUserNotFound)
}

func (s *ServiceTestSuite) TestListComments_UnknownTask() {
	list, err := s.comments.ListComments(999)
	s.NoError(err)
	s.Empty(list)
}

// --- reporting ---

func (s *ServiceTestSuite) TestDashboard_TotalsMatchBreakdowns() {
	alice := s.register("alice")
	bob := s.register("bob")
	s.registerAdmin("root")

	s.createTask(alice, CreateTaskInput{Title: "a", Priority: models.TaskPriorityHigh})
	s.createTask(alice, CreateTaskInput{Title: "b", Status: models.TaskStatusDone, AssigneeID: &bob.ID})
	c := s.createTask(bob, CreateTaskInput{Title: "c", Status: models.TaskStatusInProgress, Priority: models.TaskPriorityLow})
	_, err := s.comments.CreateComment(bob, c.Task.ID, "hello")
	s.Require().NoError(err)

	d, err := s.admin.GetDashboard()
	s.Require().NoError(err)

	s.EqualValues(3, d.TotalUsers)
	s.Equal(d.TotalUsers, d.Admins+d.Users)
	s.EqualValues(1, d.Admins)

	s.EqualValues(3, d.TotalTasks)
	var statusSum, prioritySum int64
	for _, n := range d.ByStatus {
		statusSum += n
	}
	for _, n := range d.ByPriority {
		prioritySum += n
	}
	s.Equal(d.TotalTasks, statusSum)
	s.Equal(d.TotalTasks, prioritySum)
	s.EqualValues(1, d.ByStatus[models.TaskStatusInProgress])
	s.EqualValues(1, d.ByPriority[models.TaskPriorityMedium])

	s.EqualValues(1, d.TotalComments)
	s.EqualValues(2, d.Unassigned)
	s.EqualValues(3, d.UsersToday)
	s.EqualValues(3, d.TasksToday)
	s.EqualValues(1, d.CommentsToday)
}

func (s *ServiceTestSuite) TestDashboard_Empty() {
	d, err := s.admin.GetDashboard()
	s.Require().NoError(err)
	s.Zero(d.TotalTasks)
	s.Len(d.ByStatus, 3)
	s.Len(d.ByPriority, 3)
}

func (s *ServiceTestSuite) TestUserSummaries() {
	alice := s.register("alice")
	bob := s.register("bob")
	t := s.createTask(alice, CreateTaskInput{Title: "t", AssigneeID: &bob.ID})
	s.createTask(alice, CreateTaskInput{Title: "u"})
	_, err := s.comments.CreateComment(bob, t.Task.ID, "x")
	s.Require().NoError(err)

	summaries, err := s.admin.ListUserSummaries()
	s.Require().NoError(err)
	s.Require().Len(summaries, 2)
	s.Equal("alice", summaries[0].User.Username)
	s.EqualValues(2, summaries[0].TasksCreated)
	s.EqualValues(0, summaries[0].TasksAssigned)
	s.EqualValues(1, summaries[1].TasksAssigned)
	s.EqualValues(1, summaries[1].CommentsCount)

	one, err := s.admin.GetUserSummary(bob.ID)
	s.Require().NoError(err)
	s.Equal(summaries[1].TasksAssigned, one.TasksAssigned)
	s.Equal(summaries[1].CommentsCount, one.CommentsCount)

	_, err = s.admin.GetUserSummary(999)
	s.ErrorIs(err, ErrUserNotFound)
}

// --- suggestions ---

type fakeSuggester struct {
	out []TaskSuggestion
	err error
}

func (f fakeSuggester) SuggestTasks(context.Context, string) ([]TaskSuggestion, error) {
	return f.out, f.err
}

func (s *ServiceTestSuite) TestSuggestTasks() {
	_, err := s.tasks.SuggestTasks(context.Background(), "anything")
	s.ErrorIs(err, ErrAIServiceUnavailable)

	s.tasks.suggester = fakeSuggester{out: []TaskSuggestion{
		{Title: "  Ship it ", Priority: "high"},
		{Title: " "},
		{Title: "Docs", Priority: "whenever"},
	}}

	got, err := s.tasks.SuggestTasks(context.Background(), "ship it and write docs")
	s.Require().NoError(err)
	s.Require().Len(got, 2)
	s.Equal("Ship it", got[0].Title)
	s.Equal(models.TaskPriorityHigh, got[0].Priority)
	s.Equal(models.TaskPriorityMedium, got[1].Priority)

	_, err = s.tasks.SuggestTasks(context.Background(), "   ")
	s.ErrorIs(err, ErrValidation)

	s.tasks.suggester = fakeSuggester{err: errors.New("upstream down")}
	_, err = s.tasks.SuggestTasks(context.Background(), "text")
	s.Error(err)
	s.NotErrorIs(err, ErrValidation)
}

func TestServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ServiceTestSuite))
}
