package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lmills91/task-manager/internal/model"
)

const selectTask = "SELECT " + taskColumns + " FROM tasks WHERE id=?"
const selectTaskForOwner = "SELECT " + taskColumns + " FROM tasks WHERE id=? AND owner_id=? AND deleted=? LIMIT 1"

// newMockDB returns a sqlmock-backed database that matches SQL by
// exact string, plus a cleanup that verifies every expectation ran.
func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return db, mock
}

func taskRows(id uint64, title string, status string, deleted bool, ownerID uint64, now time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "title", "description", "status", "deleted", "due_date", "owner_id", "created_at", "updated_at"}).
		AddRow(id, title, nil, status, deleted, nil, ownerID, now, now)
}

func TestTaskRepoCreateDefaultsToPending(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTaskRepo(db, NewHistoryRepo(db))
	now := time.Now().UTC()

	mock.ExpectExec("INSERT INTO tasks (title, description, status, due_date, owner_id) VALUES (?,?,?,?,?)").
		WithArgs("task 1", nil, model.StatusPending, nil, uint64(1)).
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectQuery(selectTask).
		WithArgs(int64(7)).
		WillReturnRows(taskRows(7, "task 1", model.StatusPending, false, 1, now))

	task := model.Task{Title: "task 1", OwnerID: 1}
	require.NoError(t, repo.Create(context.Background(), &task))
	assert.Equal(t, uint64(7), task.ID)
	assert.Equal(t, model.StatusPending, task.Status)
	assert.False(t, task.Deleted)
}

func TestTaskRepoCreateRejectsInvalidStatus(t *testing.T) {
	db, _ := newMockDB(t)
	repo := NewTaskRepo(db, NewHistoryRepo(db))

	task := model.Task{Title: "task 1", OwnerID: 1, Status: "Cancelled"}
	err := repo.Create(context.Background(), &task)
	assert.ErrorIs(t, err, model.ErrInvalidStatus)
}

func TestTaskRepoGetByIDForOwnerHidesForeignTasks(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTaskRepo(db, NewHistoryRepo(db))

	// The owner filter lives in the WHERE clause: a task owned by
	// someone else comes back exactly like a missing one.
	mock.ExpectQuery(selectTaskForOwner).
		WithArgs(uint64(7), uint64(2), false).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByIDForOwner(context.Background(), 7, 2, false)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestTaskRepoListByOwnerReturnsActiveOnly(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTaskRepo(db, NewHistoryRepo(db))
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT " + taskColumns + " FROM tasks WHERE owner_id=? AND deleted=FALSE ORDER BY id").
		WithArgs(uint64(1)).
		WillReturnRows(taskRows(3, "first", model.StatusPending, false, 1, now).
			AddRow(9, "second", nil, model.StatusDoing, false, nil, 1, now, now))

	tasks, err := repo.ListByOwner(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, uint64(3), tasks[0].ID)
	assert.Equal(t, uint64(9), tasks[1].ID)
}

func TestTaskRepoUpdateValidatesBeforeAnyQuery(t *testing.T) {
	db, _ := newMockDB(t)
	repo := NewTaskRepo(db, NewHistoryRepo(db))

	bad := "Cancelled"
	_, err := repo.Update(context.Background(), 7, 1, TaskPatch{Status: &bad})
	assert.ErrorIs(t, err, model.ErrInvalidStatus)
}

func TestTaskRepoUpdateAppliesOnlySuppliedFields(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTaskRepo(db, NewHistoryRepo(db))
	now := time.Now().UTC()

	mock.ExpectQuery(selectTaskForOwner).
		WithArgs(uint64(7), uint64(1), false).
		WillReturnRows(taskRows(7, "task 1", model.StatusPending, false, 1, now))
	mock.ExpectExec("UPDATE tasks SET status=? WHERE id=?").
		WithArgs(model.StatusDoing, uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(selectTask).
		WithArgs(uint64(7)).
		WillReturnRows(taskRows(7, "task 1", model.StatusDoing, false, 1, now))

	status := model.StatusDoing
	got, err := repo.Update(context.Background(), 7, 1, TaskPatch{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, model.StatusDoing, got.Status)
	assert.Equal(t, "task 1", got.Title)
}

func TestTaskRepoUpdateEmptyPatchIsANoOp(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTaskRepo(db, NewHistoryRepo(db))
	now := time.Now().UTC()

	mock.ExpectQuery(selectTaskForOwner).
		WithArgs(uint64(7), uint64(1), false).
		WillReturnRows(taskRows(7, "task 1", model.StatusPending, false, 1, now))

	got, err := repo.Update(context.Background(), 7, 1, TaskPatch{})
	require.NoError(t, err)
	assert.Equal(t, "task 1", got.Title)
}

// expectSetDeleted wires the full transaction SetDeleted runs: resolve
// the owner, flip the flag, append exactly one history row, read the
// task back, commit.
func expectSetDeleted(mock sqlmock.Sqlmock, id, ownerID uint64, deleted bool, action string, now time.Time) {
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT owner_id FROM tasks WHERE id=? AND owner_id=? LIMIT 1").
		WithArgs(id, ownerID).
		WillReturnRows(sqlmock.NewRows([]string{"owner_id"}).AddRow(ownerID))
	mock.ExpectExec("UPDATE tasks SET deleted=? WHERE id=?").
		WithArgs(deleted, id).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO history (date_created, action, owner_id, task_id) VALUES (?,?,?,?)").
		WithArgs(sqlmock.AnyArg(), action, ownerID, id).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery(selectTask).
		WithArgs(id).
		WillReturnRows(taskRows(id, "task 1", model.StatusPending, deleted, ownerID, now))
	mock.ExpectCommit()
}

func TestTaskRepoSetDeletedAuditsBothDirections(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTaskRepo(db, NewHistoryRepo(db))
	now := time.Now().UTC()

	expectSetDeleted(mock, 7, 1, true, model.ActionDeleted, now)
	got, err := repo.SetDeleted(context.Background(), 7, 1, true)
	require.NoError(t, err)
	assert.True(t, got.Deleted)

	expectSetDeleted(mock, 7, 1, false, model.ActionRestored, now)
	got, err = repo.SetDeleted(context.Background(), 7, 1, false)
	require.NoError(t, err)
	assert.False(t, got.Deleted)
}

func TestTaskRepoSetDeletedNotFoundForForeignOwner(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTaskRepo(db, NewHistoryRepo(db))

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT owner_id FROM tasks WHERE id=? AND owner_id=? LIMIT 1").
		WithArgs(uint64(7), uint64(2)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := repo.SetDeleted(context.Background(), 7, 2, true)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestTaskRepoSetDeletedRollsBackWhenAuditFails(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTaskRepo(db, NewHistoryRepo(db))

	// If the history insert fails the flag change must not survive:
	// both commit together or not at all.
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT owner_id FROM tasks WHERE id=? AND owner_id=? LIMIT 1").
		WithArgs(uint64(7), uint64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"owner_id"}).AddRow(1))
	mock.ExpectExec("UPDATE tasks SET deleted=? WHERE id=?").
		WithArgs(true, uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO history (date_created, action, owner_id, task_id) VALUES (?,?,?,?)").
		WithArgs(sqlmock.AnyArg(), model.ActionDeleted, uint64(1), uint64(7)).
		WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	_, err := repo.SetDeleted(context.Background(), 7, 1, true)
	assert.Error(t, err)
}
