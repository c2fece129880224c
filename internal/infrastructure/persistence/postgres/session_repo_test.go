package postgres

import (
	"context"
	"errors"
	"testing"

	authDomain "ride-hail-client/internal/domain/auth"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestSessionRepo_LoadTokens(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock: %s", err)
	}
	defer db.Close()

	repo := NewSessionRepo(db)

	rows := sqlmock.NewRows([]string{"value"}).AddRow([]byte(`{"access":"a-1","refresh":"r-1"}`))
	mock.ExpectQuery("SELECT value FROM client_state").
		WithArgs(authDomain.KeyTokens).
		WillReturnRows(rows)

	pair, err := repo.LoadTokens(context.Background())
	if err != nil {
		t.Fatalf("LoadTokens failed: %v", err)
	}
	if pair.Access != "a-1" || pair.Refresh != "r-1" {
		t.Errorf("unexpected pair: %+v", pair)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestSessionRepo_LoadTokensAbsent(t *testing.T) {
	tests := []struct {
		name string
		rows *sqlmock.Rows
	}{
		{"no row", sqlmock.NewRows([]string{"value"})},
		{"partial pair", sqlmock.NewRows([]string{"value"}).AddRow([]byte(`{"access":"a-1"}`))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			if err != nil {
				t.Fatalf("failed to open sqlmock: %s", err)
			}
			defer db.Close()

			mock.ExpectQuery("SELECT value FROM client_state").
				WithArgs(authDomain.KeyTokens).
				WillReturnRows(tt.rows)

			_, err = NewSessionRepo(db).LoadTokens(context.Background())
			if !errors.Is(err, authDomain.ErrNoSession) {
				t.Fatalf("expected ErrNoSession, got %v", err)
			}
		})
	}
}

func TestSessionRepo_SaveTokens(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock: %s", err)
	}
	defer db.Close()

	repo := NewSessionRepo(db)
	mock.ExpectExec("INSERT INTO client_state").
		WithArgs(authDomain.KeyTokens, []byte(`{"access":"a-2","refresh":"r-1"}`)).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.SaveTokens(context.Background(), authDomain.CredentialPair{Access: "a-2", Refresh: "r-1"}); err != nil {
		t.Fatalf("SaveTokens failed: %v", err)
	}
	if err := repo.SaveTokens(context.Background(), authDomain.CredentialPair{Access: "a-2"}); err == nil {
		t.Fatal("expected partial pair to be rejected")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestSessionRepo_Profile(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock: %s", err)
	}
	defer db.Close()

	repo := NewSessionRepo(db)
	mock.ExpectExec("INSERT INTO client_state").
		WithArgs(authDomain.KeyProfile, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery("SELECT value FROM client_state").
		WithArgs(authDomain.KeyProfile).
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow([]byte(`{"id":4,"username":"ion","is_driver":true}`)))

	if err := repo.SaveProfile(context.Background(), authDomain.User{ID: 4, Username: "ion", IsDriver: true}); err != nil {
		t.Fatalf("SaveProfile failed: %v", err)
	}
	u, err := repo.LoadProfile(context.Background())
	if err != nil {
		t.Fatalf("LoadProfile failed: %v", err)
	}
	if u.ID != 4 || u.Role() != authDomain.RoleDriver {
		t.Errorf("unexpected profile: %+v", u)
	}
}

func TestSessionRepo_Clear(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock: %s", err)
	}
	defer db.Close()

	mock.ExpectExec("DELETE FROM client_state").
		WithArgs(authDomain.KeyTokens, authDomain.KeyProfile).
		WillReturnResult(sqlmock.NewResult(0, 2))

	if err := NewSessionRepo(db).Clear(context.Background()); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
