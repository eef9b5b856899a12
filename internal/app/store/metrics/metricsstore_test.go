package metricsstore_test

import (
	"testing"

	metricsstore "github.com/dalemusser/quizmart/internal/app/store/metrics"
	"github.com/dalemusser/quizmart/internal/domain/models"
	"github.com/dalemusser/quizmart/internal/testutil"
)

func TestFetchDashboardCounts_Empty(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	counts := metricsstore.FetchDashboardCounts(ctx, db)

	if counts != (metricsstore.Counts{}) {
		t.Errorf("expected all zero counts, got %+v", counts)
	}
}

func TestFetchDashboardCounts_WithData(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fixtures.CreateUser(ctx, "Owner", "owner@example.com")
	m1 := fixtures.CreateUser(ctx, "One", "one@example.com")
	m2 := fixtures.CreateUser(ctx, "Two", "two@example.com")
	company := fixtures.CreateCompany(ctx, "Acme", owner.ID, true)
	fixtures.CreateMembership(ctx, company.ID, m1.ID, models.StatusMember)
	fixtures.CreateMembership(ctx, company.ID, m2.ID, models.StatusPendingInvite)
	quiz := fixtures.CreateQuiz(ctx, company.ID, owner.ID, "Quiz")
	fixtures.CreateQuizResult(ctx, quiz.ID, m1.ID, company.ID, 1, 1)
	fixtures.CreateProduct(ctx, "Mug", "9.99")

	counts := metricsstore.FetchDashboardCounts(ctx, db)

	tests := []struct {
		name string
		got  int64
		want int64
	}{
		{"Users", counts.Users, 3},
		{"Companies", counts.Companies, 1},
		{"Memberships", counts.Memberships, 1},
		{"PendingJoins", counts.PendingJoins, 1},
		{"Quizzes", counts.Quizzes, 1},
		{"QuizResults", counts.QuizResults, 1},
		{"Products", counts.Products, 1},
		{"Orders", counts.Orders, 0},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s: got %d, want %d", tt.name, tt.got, tt.want)
		}
	}
}
