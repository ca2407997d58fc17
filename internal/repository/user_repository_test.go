package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestToggleFavoriteAdds(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()
	repo := NewUserRepo(db)

	// Nothing deleted, so the movie was not favorited yet; expect an insert.
	mock.ExpectExec("DELETE FROM user_favorites").
		WithArgs(3, "872585").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO user_favorites").
		WithArgs(3, "872585").
		WillReturnResult(sqlmock.NewResult(0, 1))

	added, err := repo.ToggleFavorite(context.Background(), 3, "872585")
	if err != nil {
		t.Fatalf("ToggleFavorite: %v", err)
	}
	if !added {
		t.Fatalf("expected movie to be added to favorites")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestToggleFavoriteRemoves(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()
	repo := NewUserRepo(db)

	mock.ExpectExec("DELETE FROM user_favorites").
		WithArgs(3, "872585").
		WillReturnResult(sqlmock.NewResult(0, 1))

	added, err := repo.ToggleFavorite(context.Background(), 3, "872585")
	if err != nil {
		t.Fatalf("ToggleFavorite: %v", err)
	}
	if added {
		t.Fatalf("expected movie to be removed from favorites")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
