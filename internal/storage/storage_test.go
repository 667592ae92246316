package storage

import (
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/emotitask/emotitask/internal/core"
)

// testDB creates an in-memory database for testing
func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(Config{InMemory: true})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() {
		db.Close()
	})
	if err := db.Migrate(); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	return db
}

// testUser inserts a user for tests that need one
func testUser(t *testing.T, db *DB) *core.User {
	t.Helper()
	user := &core.User{Name: "Alice", Email: "alice@example.com", IsActive: true}
	if err := NewUserStore(db).Create(user); err != nil {
		t.Fatalf("create test user: %v", err)
	}
	return user
}

// =============================================================================
// DB Tests
// =============================================================================

func TestDB_Open_InMemory(t *testing.T) {
	db, err := Open(Config{InMemory: true})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer db.Close()

	if db.conn == nil {
		t.Error("db.conn should not be nil")
	}
	if !db.isMemory {
		t.Error("db.isMemory should be true for in-memory database")
	}
}

func TestDB_Migrate_Idempotent(t *testing.T) {
	db := testDB(t)

	// A second run must be a no-op
	if err := db.Migrate(); err != nil {
		t.Errorf("second Migrate() error = %v", err)
	}
}

func TestDB_Transaction_Rollback(t *testing.T) {
	db := testDB(t)
	user := testUser(t, db)

	wantErr := errors.New("boom")
	err := db.Transaction(func(tx *sql.Tx) error {
		if _, err := tx.Exec(`UPDATE users SET name = 'Bob' WHERE id = ?`, user.ID); err != nil {
			return err
		}
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("Transaction() error = %v, want %v", err, wantErr)
	}

	got, err := NewUserStore(db).Get(user.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Name != "Alice" {
		t.Errorf("name after rollback = %q, want %q", got.Name, "Alice")
	}
}

// =============================================================================
// UserStore Tests
// =============================================================================

func TestUserStore_CreateAndGet(t *testing.T) {
	db := testDB(t)
	store := NewUserStore(db)

	user := &core.User{Name: "Alice", Email: "alice@example.com", IsActive: true}
	if err := store.Create(user); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if user.ID == 0 {
		t.Fatal("Create() should assign an ID")
	}

	got, err := store.Get(user.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Email != "alice@example.com" {
		t.Errorf("email = %q, want %q", got.Email, "alice@example.com")
	}
	if !got.IsActive {
		t.Error("is_active should round-trip as true")
	}
}

func TestUserStore_Get_NotFound(t *testing.T) {
	db := testDB(t)

	_, err := NewUserStore(db).Get(999)
	if !errors.Is(err, core.ErrRecordNotFound) {
		t.Errorf("Get() error = %v, want ErrRecordNotFound", err)
	}
}

func TestUserStore_Update(t *testing.T) {
	db := testDB(t)
	store := NewUserStore(db)
	user := testUser(t, db)

	user.Name = "Alice Updated"
	if err := store.Update(user); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	got, _ := store.Get(user.ID)
	if got.Name != "Alice Updated" {
		t.Errorf("name = %q, want %q", got.Name, "Alice Updated")
	}
}

func TestUserStore_Delete(t *testing.T) {
	db := testDB(t)
	store := NewUserStore(db)
	user := testUser(t, db)

	if err := store.Delete(user.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := store.Get(user.ID); !errors.Is(err, core.ErrRecordNotFound) {
		t.Errorf("Get() after delete error = %v, want ErrRecordNotFound", err)
	}
	if err := store.Delete(user.ID); !errors.Is(err, core.ErrRecordNotFound) {
		t.Errorf("second Delete() error = %v, want ErrRecordNotFound", err)
	}
}

// =============================================================================
// TaskStore Tests
// =============================================================================

func TestTaskStore_CreateAndGet(t *testing.T) {
	db := testDB(t)
	user := testUser(t, db)
	store := NewTaskStore(db)

	start := time.Date(2025, 6, 21, 15, 0, 0, 0, time.UTC)
	task := &core.Task{
		UserID:    user.ID,
		Name:      "Write report",
		Priority:  core.PriorityHigh,
		StartTime: &start,
	}
	if err := store.Create(task); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := store.Get(task.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Name != "Write report" {
		t.Errorf("name = %q, want %q", got.Name, "Write report")
	}
	if got.Priority != core.PriorityHigh {
		t.Errorf("priority = %d, want %d", got.Priority, core.PriorityHigh)
	}
	if got.StartTime == nil || !got.StartTime.Equal(start) {
		t.Errorf("start_time = %v, want %v", got.StartTime, start)
	}
}

func TestTaskStore_UpdateField(t *testing.T) {
	db := testDB(t)
	user := testUser(t, db)
	store := NewTaskStore(db)

	task := &core.Task{UserID: user.ID, Name: "Old name", Priority: core.PriorityLow}
	if err := store.Create(task); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	updated, err := store.UpdateField(task.ID, "priority", 3)
	if err != nil {
		t.Fatalf("UpdateField() error = %v", err)
	}
	if updated.Priority != 3 {
		t.Errorf("snapshot priority = %d, want 3", updated.Priority)
	}
	if updated.Name != "Old name" {
		t.Errorf("snapshot name = %q, other fields must be untouched", updated.Name)
	}

	// Idempotent: same assignment, same final state
	again, err := store.UpdateField(task.ID, "priority", 3)
	if err != nil {
		t.Fatalf("second UpdateField() error = %v", err)
	}
	if again.Priority != 3 {
		t.Errorf("priority after retry = %d, want 3", again.Priority)
	}
}

func TestTaskStore_UpdateField_UnknownColumn(t *testing.T) {
	db := testDB(t)
	user := testUser(t, db)
	store := NewTaskStore(db)

	task := &core.Task{UserID: user.ID, Name: "Task", Priority: 1}
	if err := store.Create(task); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if _, err := store.UpdateField(task.ID, "user_id", 42); !errors.Is(err, core.ErrInvalidInput) {
		t.Errorf("UpdateField(user_id) error = %v, want ErrInvalidInput", err)
	}

	got, _ := store.Get(task.ID)
	if got.UserID != user.ID {
		t.Errorf("user_id = %d, task must be unchanged", got.UserID)
	}
}

func TestTaskStore_UpdateField_NotFound(t *testing.T) {
	db := testDB(t)

	_, err := NewTaskStore(db).UpdateField(12345, "name", "ghost")
	if !errors.Is(err, core.ErrRecordNotFound) {
		t.Errorf("UpdateField() error = %v, want ErrRecordNotFound", err)
	}
}

func TestTaskStore_UpdateField_Concurrent(t *testing.T) {
	db := testDB(t)
	user := testUser(t, db)
	store := NewTaskStore(db)

	task := &core.Task{UserID: user.ID, Name: "Concurrent", Priority: 1}
	if err := store.Create(task); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// Two concurrent single-field updates to different fields must both
	// land: no lost update.
	var wg sync.WaitGroup
	errs := make(chan error, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, err := store.UpdateField(task.ID, "priority", 3)
		errs <- err
	}()
	go func() {
		defer wg.Done()
		_, err := store.UpdateField(task.ID, "description", "updated concurrently")
		errs <- err
	}()
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent UpdateField() error = %v", err)
		}
	}

	got, err := store.Get(task.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Priority != 3 {
		t.Errorf("priority = %d, want 3", got.Priority)
	}
	if got.Description != "updated concurrently" {
		t.Errorf("description = %q, want %q", got.Description, "updated concurrently")
	}
}

func TestTaskStore_UpdateField_ConcurrentSameField(t *testing.T) {
	db := testDB(t)
	user := testUser(t, db)
	store := NewTaskStore(db)

	task := &core.Task{UserID: user.ID, Name: "Contended", Priority: 1}
	if err := store.Create(task); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// Two concurrent updates to the same field must serialize: both
	// succeed and exactly one writer's value wins.
	var wg sync.WaitGroup
	errs := make(chan error, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, err := store.UpdateField(task.ID, "priority", 2)
		errs <- err
	}()
	go func() {
		defer wg.Done()
		_, err := store.UpdateField(task.ID, "priority", 3)
		errs <- err
	}()
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent UpdateField() error = %v", err)
		}
	}

	got, err := store.Get(task.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Priority != 2 && got.Priority != 3 {
		t.Errorf("priority = %d, want one writer's value (2 or 3)", got.Priority)
	}
}

func TestTaskStore_GetOpenByUser(t *testing.T) {
	db := testDB(t)
	user := testUser(t, db)
	store := NewTaskStore(db)

	open := &core.Task{UserID: user.ID, Name: "Open", Priority: 2}
	done := &core.Task{UserID: user.ID, Name: "Done", Priority: 2, IsCompleted: true}
	if err := store.Create(open); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := store.Create(done); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	tasks, err := store.GetOpenByUser(user.ID, 10)
	if err != nil {
		t.Fatalf("GetOpenByUser() error = %v", err)
	}
	if len(tasks) != 1 || tasks[0].Name != "Open" {
		t.Errorf("GetOpenByUser() = %d tasks, want only the open one", len(tasks))
	}
}

// =============================================================================
// ChatHistoryStore Tests
// =============================================================================

func TestChatHistoryStore_CreateAndUpdateMessages(t *testing.T) {
	db := testDB(t)
	user := testUser(t, db)
	store := NewChatHistoryStore(db)

	ch := &core.ChatHistory{UserID: user.ID, Name: "Monday check-in"}
	if err := store.Create(ch); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	messages := `[{"role":"user","content":"hi"},{"role":"assistant","content":"hello"}]`
	if err := store.UpdateMessages(ch.ID, messages, "gpt-3.5-turbo", 42); err != nil {
		t.Fatalf("UpdateMessages() error = %v", err)
	}

	got, err := store.Get(ch.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Messages != messages {
		t.Errorf("messages did not round-trip")
	}
	if got.ModelUsed != "gpt-3.5-turbo" || got.TokensUsed != 42 {
		t.Errorf("usage = (%q, %d), want (gpt-3.5-turbo, 42)", got.ModelUsed, got.TokensUsed)
	}
}

// =============================================================================
// StyleStore Tests
// =============================================================================

func TestSeedStaticData(t *testing.T) {
	db := testDB(t)

	if err := db.SeedStaticData(); err != nil {
		t.Fatalf("SeedStaticData() error = %v", err)
	}
	// Second run must not duplicate
	if err := db.SeedStaticData(); err != nil {
		t.Fatalf("second SeedStaticData() error = %v", err)
	}

	store := NewStyleStore(db)

	types, err := store.GetMBTITypes()
	if err != nil {
		t.Fatalf("GetMBTITypes() error = %v", err)
	}
	if len(types) != 16 {
		t.Errorf("mbti types = %d, want 16", len(types))
	}

	questions, err := store.GetQuestions()
	if err != nil {
		t.Fatalf("GetQuestions() error = %v", err)
	}
	if len(questions) != 10 {
		t.Errorf("questions = %d, want 10", len(questions))
	}

	answers, err := store.GetAnswers(questions[0].ID)
	if err != nil {
		t.Fatalf("GetAnswers() error = %v", err)
	}
	if len(answers) != 4 {
		t.Errorf("answers for question 1 = %d, want 4", len(answers))
	}
}

func TestStyleStore_ChatStyleForUser(t *testing.T) {
	db := testDB(t)
	if err := db.SeedStaticData(); err != nil {
		t.Fatalf("SeedStaticData() error = %v", err)
	}
	user := testUser(t, db)
	store := NewStyleStore(db)

	// Not assigned yet
	if _, err := store.GetChatStyleForUser(user.ID); !errors.Is(err, core.ErrRecordNotFound) {
		t.Errorf("GetChatStyleForUser() error = %v, want ErrRecordNotFound", err)
	}

	if err := store.AssignUserMBTIType(user.ID, 1); err != nil {
		t.Fatalf("AssignUserMBTIType() error = %v", err)
	}

	style, err := store.GetChatStyleForUser(user.ID)
	if err != nil {
		t.Fatalf("GetChatStyleForUser() error = %v", err)
	}
	if len(style.Keywords) != 3 || style.Keywords[0] != "strategic" {
		t.Errorf("keywords = %v, want INTJ style", style.Keywords)
	}
	if style.Temperature != 0.6 {
		t.Errorf("temperature = %v, want 0.6", style.Temperature)
	}

	// Re-assignment updates in place
	if err := store.AssignUserMBTIType(user.ID, 4); err != nil {
		t.Fatalf("reassign error = %v", err)
	}
	mt, err := store.GetUserMBTIType(user.ID)
	if err != nil {
		t.Fatalf("GetUserMBTIType() error = %v", err)
	}
	if mt.PersonaID != "ENTP" {
		t.Errorf("persona = %q, want ENTP", mt.PersonaID)
	}
}
