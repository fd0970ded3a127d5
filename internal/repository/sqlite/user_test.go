package sqlite

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/sakif/snippets-api/internal/apperror"
	"github.com/sakif/snippets-api/internal/model"
	"github.com/sakif/snippets-api/internal/repository"
)

// =========================================================================
// CREATE TESTS
// =========================================================================

func TestUserCreate(t *testing.T) {
	db := newTestDB(t)

	user := &model.User{
		Username:     "testuser",
		Email:        "test@example.com",
		FirstName:    "Test",
		LastName:     "User",
		PasswordHash: "$2a$12$fakehash",
	}

	err := db.CreateUser(context.Background(), user)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// Verify the user was modified in-place (pointer receiver)
	if user.ID == "" {
		t.Error("Create() did not set user.ID")
	}
	if user.CreatedAt.IsZero() {
		t.Error("Create() did not set user.CreatedAt")
	}
	if user.UpdatedAt.IsZero() {
		t.Error("Create() did not set user.UpdatedAt")
	}

	t.Logf("Created user with ID: %s", user.ID)
}

func TestUserCreate_DuplicateEmail(t *testing.T) {
	db := newTestDB(t)

	createTestUser(t, db, "firstuser")

	duplicate := &model.User{
		Username:     "seconduser",
		Email:        "firstuser@example.com", // same email
		PasswordHash: "hash",
	}
	err := db.CreateUser(context.Background(), duplicate)
	if err == nil {
		t.Fatal("Create() should have returned an error for duplicate email")
	}
	// The UNIQUE violation surfaces as a field-scoped validation error
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("Create() error = %v, want ErrValidation", err)
	}
	var appErr *apperror.AppError
	if errors.As(err, &appErr) && appErr.Field != "email" {
		t.Errorf("Field = %q, want %q", appErr.Field, "email")
	}
}

func TestUserCreate_DuplicateUsername(t *testing.T) {
	db := newTestDB(t)

	createTestUser(t, db, "firstuser")

	duplicate := &model.User{
		Username:     "firstuser", // same username
		Email:        "different@example.com",
		PasswordHash: "hash",
	}
	err := db.CreateUser(context.Background(), duplicate)
	if err == nil {
		t.Fatal("Create() should have returned an error for duplicate username")
	}
	var appErr *apperror.AppError
	if errors.As(err, &appErr) && appErr.Field != "username" {
		t.Errorf("Field = %q, want %q", appErr.Field, "username")
	}
}

// =========================================================================
// LOOKUP TESTS
// =========================================================================

func TestGetUserByID(t *testing.T) {
	db := newTestDB(t)
	created := createTestUser(t, db, "getbyid_user")

	found, err := db.GetUserByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetUserByID() error = %v", err)
	}

	if found.ID != created.ID {
		t.Errorf("ID = %q, want %q", found.ID, created.ID)
	}
	if found.Username != "getbyid_user" {
		t.Errorf("Username = %q, want %q", found.Username, "getbyid_user")
	}
}

func TestGetUserByID_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetUserByID(context.Background(), "nonexistent-id")

	if err == nil {
		t.Fatal("GetUserByID() should have returned an error for nonexistent ID")
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetUserByID() error = %v, want ErrNotFound", err)
	}
}

func TestGetUserByEmail(t *testing.T) {
	db := newTestDB(t)
	created := createTestUser(t, db, "email_lookup")

	found, err := db.GetUserByEmail(context.Background(), "email_lookup@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail() error = %v", err)
	}
	if found.ID != created.ID {
		t.Errorf("ID = %q, want %q", found.ID, created.ID)
	}
}

func TestGetUserByEmail_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetUserByEmail(context.Background(), "nobody@example.com")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetUserByEmail() error = %v, want ErrNotFound", err)
	}
}

func TestGetUserByUsername(t *testing.T) {
	db := newTestDB(t)
	created := createTestUser(t, db, "name_lookup")

	found, err := db.GetUserByUsername(context.Background(), "name_lookup")
	if err != nil {
		t.Fatalf("GetUserByUsername() error = %v", err)
	}
	if found.ID != created.ID {
		t.Errorf("ID = %q, want %q", found.ID, created.ID)
	}
}

// =========================================================================
// LIST TESTS
// =========================================================================

func TestListUsers(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		createTestUser(t, db, fmt.Sprintf("user%d", i))
	}

	users, err := db.ListUsers(ctx, repository.ListOptions{Limit: 10})
	if err != nil {
		t.Fatalf("ListUsers() error = %v", err)
	}
	if len(users) != 3 {
		t.Errorf("ListUsers() returned %d users, want 3", len(users))
	}

	count, err := db.CountUsers(ctx)
	if err != nil {
		t.Fatalf("CountUsers() error = %v", err)
	}
	if count != 3 {
		t.Errorf("CountUsers() = %d, want 3", count)
	}
}

func TestListUsers_Pagination(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		createTestUser(t, db, fmt.Sprintf("pageduser%d", i))
	}

	page1, err := db.ListUsers(ctx, repository.ListOptions{Limit: 2, Offset: 0})
	if err != nil {
		t.Fatalf("ListUsers() page 1 error = %v", err)
	}
	page2, err := db.ListUsers(ctx, repository.ListOptions{Limit: 2, Offset: 2})
	if err != nil {
		t.Fatalf("ListUsers() page 2 error = %v", err)
	}

	if len(page1) != 2 || len(page2) != 2 {
		t.Fatalf("pages returned %d and %d users, want 2 and 2", len(page1), len(page2))
	}
	if page1[0].ID == page2[0].ID {
		t.Error("Page 1 and Page 2 returned the same first user")
	}
}

// =========================================================================
// UPDATE TESTS
// =========================================================================

func TestUpdateUser(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := createTestUser(t, db, "before_update")

	user.Username = "after_update"
	user.FirstName = "Ada"
	user.LastName = "Lovelace"

	if err := db.UpdateUser(ctx, user); err != nil {
		t.Fatalf("UpdateUser() error = %v", err)
	}

	found, err := db.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUserByID() after update: %v", err)
	}
	if found.Username != "after_update" {
		t.Errorf("Username = %q, want %q", found.Username, "after_update")
	}
	if found.FirstName != "Ada" || found.LastName != "Lovelace" {
		t.Errorf("Name = %q %q, want Ada Lovelace", found.FirstName, found.LastName)
	}
}

func TestUpdateUser_DoesNotTouchPassword(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := createTestUser(t, db, "password_keeper")
	originalHash := user.PasswordHash

	user.FirstName = "Changed"
	if err := db.UpdateUser(ctx, user); err != nil {
		t.Fatalf("UpdateUser() error = %v", err)
	}

	found, err := db.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUserByID() after update: %v", err)
	}
	if found.PasswordHash != originalHash {
		t.Error("UpdateUser() changed the password hash")
	}
}

func TestUpdateUser_NotFound(t *testing.T) {
	db := newTestDB(t)

	ghost := &model.User{ID: "nonexistent", Username: "ghost", Email: "ghost@example.com"}
	err := db.UpdateUser(context.Background(), ghost)

	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("UpdateUser() error = %v, want ErrNotFound", err)
	}
}

func TestUpdateUser_DuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	createTestUser(t, db, "holder")
	mover := createTestUser(t, db, "mover")

	mover.Email = "holder@example.com"
	err := db.UpdateUser(ctx, mover)

	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("UpdateUser() error = %v, want ErrValidation", err)
	}
}

// =========================================================================
// PASSWORD TESTS
// =========================================================================

func TestUpdatePassword(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := createTestUser(t, db, "rotator")

	if err := db.UpdatePassword(ctx, user.ID, "$2a$12$newhash"); err != nil {
		t.Fatalf("UpdatePassword() error = %v", err)
	}

	found, err := db.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUserByID() after password update: %v", err)
	}
	if found.PasswordHash != "$2a$12$newhash" {
		t.Errorf("PasswordHash = %q, want the new hash", found.PasswordHash)
	}
}

func TestUpdatePassword_NotFound(t *testing.T) {
	db := newTestDB(t)

	err := db.UpdatePassword(context.Background(), "nonexistent", "hash")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("UpdatePassword() error = %v, want ErrNotFound", err)
	}
}
