package repo

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"sommy-store/internal/database"
	"sommy-store/internal/domain"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupDB starts a throwaway Postgres container and applies the schema.
func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container-backed test in short mode")
	}

	ctx := context.Background()
	ctr, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("store"),
		tcpostgres.WithUsername("store"),
		tcpostgres.WithPassword("store"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(ctr); err != nil {
			t.Logf("terminate container: %v", err)
		}
	})

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := sql.Open("pgx", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.Migrate(ctx, db))
	return db
}

func TestCartRepo(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	carts := NewCartRepo(db)

	owner := uuid.New()
	product := uuid.New()
	now := time.Now().UTC().Truncate(time.Microsecond)

	t.Run("absent cart reads as nil", func(t *testing.T) {
		cart, err := carts.FindByOwner(ctx, owner)
		require.NoError(t, err)
		require.Nil(t, cart)
	})

	t.Run("upsert inserts then overwrites", func(t *testing.T) {
		cart := &domain.Cart{
			OwnerID:   owner,
			Items:     []domain.CartItem{{ProductID: product, Quantity: 2}},
			CreatedAt: now,
			UpdatedAt: now,
		}
		require.NoError(t, carts.Upsert(ctx, cart))

		got, err := carts.FindByOwner(ctx, owner)
		require.NoError(t, err)
		require.Len(t, got.Items, 1)
		require.Equal(t, 2, got.Items[0].Quantity)

		cart.Items[0].Quantity = 5
		cart.UpdatedAt = now.Add(time.Second)
		require.NoError(t, carts.Upsert(ctx, cart))

		got, err = carts.FindByOwner(ctx, owner)
		require.NoError(t, err)
		require.Len(t, got.Items, 1)
		require.Equal(t, 5, got.Items[0].Quantity)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		require.NoError(t, carts.Delete(ctx, owner))
		require.NoError(t, carts.Delete(ctx, owner))

		cart, err := carts.FindByOwner(ctx, owner)
		require.NoError(t, err)
		require.Nil(t, cart)
	})
}

func TestOrderRepo(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	orders := NewOrderRepo(db)

	owner := uuid.New()
	now := time.Now().UTC().Truncate(time.Microsecond)

	seed := func(t *testing.T, orderDate time.Time) *domain.Order {
		t.Helper()
		order := &domain.Order{
			ID:      uuid.New(),
			OwnerID: owner,
			Items: []domain.OrderLineItem{
				{ProductID: uuid.New(), Name: "Shirt", Quantity: 2, UnitPrice: 25},
			},
			Total:           50,
			Status:          domain.OrderPending,
			OrderDate:       orderDate,
			RefundStatus:    domain.RefundNone,
			ShippingAddress: "1 Main St",
			PaymentMethod:   "card",
			CreatedAt:       orderDate,
			UpdatedAt:       orderDate,
		}
		require.NoError(t, orders.Create(ctx, order))
		return order
	}

	first := seed(t, now.Add(-2*time.Hour))
	second := seed(t, now.Add(-time.Hour))

	t.Run("find by id round trips line items", func(t *testing.T) {
		got, err := orders.FindByID(ctx, first.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		require.Equal(t, first.Items, got.Items)
		require.Equal(t, domain.OrderPending, got.Status)
		require.Equal(t, "1 Main St", got.ShippingAddress)
	})

	t.Run("unknown id reads as nil", func(t *testing.T) {
		got, err := orders.FindByID(ctx, uuid.New())
		require.NoError(t, err)
		require.Nil(t, got)
	})

	t.Run("owner history is newest first", func(t *testing.T) {
		got, err := orders.FindByOwner(ctx, owner)
		require.NoError(t, err)
		require.Len(t, got, 2)
		require.Equal(t, second.ID, got[0].ID)
		require.Equal(t, first.ID, got[1].ID)
	})

	t.Run("update persists the cancellation bookkeeping", func(t *testing.T) {
		first.Status = domain.OrderCancelled
		first.CancellationFee = 1.50
		first.RefundAmount = 48.50
		first.RefundStatus = domain.RefundPending
		first.UpdatedAt = now.Add(-30 * time.Minute)
		require.NoError(t, orders.Update(ctx, first))

		got, err := orders.FindByID(ctx, first.ID)
		require.NoError(t, err)
		require.Equal(t, domain.OrderCancelled, got.Status)
		require.Equal(t, 1.50, got.CancellationFee)
		require.Equal(t, 48.50, got.RefundAmount)
		require.Equal(t, domain.RefundPending, got.RefundStatus)
	})

	t.Run("pending refund sweep honors the cutoff", func(t *testing.T) {
		aged, err := orders.FindPendingRefunds(ctx, 10*time.Minute, 100)
		require.NoError(t, err)
		require.Len(t, aged, 1)
		require.Equal(t, first.ID, aged[0].ID)

		none, err := orders.FindPendingRefunds(ctx, time.Hour, 100)
		require.NoError(t, err)
		require.Empty(t, none)
	})
}

func TestProductRepo(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	products := NewProductRepo(db)

	now := time.Now().UTC().Truncate(time.Microsecond)
	product := &domain.Product{
		ID:          uuid.New(),
		Name:        "Sneaker",
		Price:       79.99,
		Quantity:    10,
		Category:    "shoes",
		Description: "Everyday runner",
		Images:      []string{"a.jpg"},
		Sizes:       []string{"42", "43"},
		InStock:     true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	require.NoError(t, products.Create(ctx, product))

	t.Run("nil lists round trip as empty", func(t *testing.T) {
		got, err := products.FindByID(ctx, product.ID)
		require.NoError(t, err)
		require.Equal(t, []string{"a.jpg"}, got.Images)
		require.Equal(t, []string{"42", "43"}, got.Sizes)
		require.Equal(t, []string{}, got.Colors)
	})

	t.Run("update", func(t *testing.T) {
		product.Price = 59.99
		product.InStock = false
		product.UpdatedAt = now.Add(time.Second)
		require.NoError(t, products.Update(ctx, product))

		got, err := products.FindByID(ctx, product.ID)
		require.NoError(t, err)
		require.Equal(t, 59.99, got.Price)
		require.False(t, got.InStock)
	})

	t.Run("delete reports whether a row existed", func(t *testing.T) {
		deleted, err := products.Delete(ctx, product.ID)
		require.NoError(t, err)
		require.True(t, deleted)

		deleted, err = products.Delete(ctx, product.ID)
		require.NoError(t, err)
		require.False(t, deleted)
	})
}

func TestUserAndResetRepos(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	users := NewUserRepo(db)
	resets := NewPasswordResetRepo(db)

	now := time.Now().UTC().Truncate(time.Microsecond)
	user := &domain.User{
		ID:           uuid.New(),
		Name:         "Ada",
		Email:        "ada@example.com",
		Phone:        "5550102030",
		PasswordHash: "hash",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, users.Create(ctx, user))

	t.Run("lookup by email and phone", func(t *testing.T) {
		got, err := users.FindByEmail(ctx, "ada@example.com")
		require.NoError(t, err)
		require.Equal(t, user.ID, got.ID)

		got, err = users.FindByPhone(ctx, "5550102030")
		require.NoError(t, err)
		require.Equal(t, user.ID, got.ID)
	})

	t.Run("duplicate email rejected by schema", func(t *testing.T) {
		dup := *user
		dup.ID = uuid.New()
		dup.Phone = ""
		require.Error(t, users.Create(ctx, &dup))
	})

	t.Run("admin lookup excludes regular users", func(t *testing.T) {
		got, err := users.FindAdminByEmail(ctx, "ada@example.com")
		require.NoError(t, err)
		require.Nil(t, got)
	})

	t.Run("replace keeps a single token per email", func(t *testing.T) {
		expires := now.Add(time.Hour)
		require.NoError(t, resets.Replace(ctx, &domain.PasswordReset{Email: user.Email, Token: "first", Expires: expires}))
		require.NoError(t, resets.Replace(ctx, &domain.PasswordReset{Email: user.Email, Token: "second", Expires: expires}))

		got, err := resets.FindByToken(ctx, "first")
		require.NoError(t, err)
		require.Nil(t, got, "older token must be gone")

		got, err = resets.FindByToken(ctx, "second")
		require.NoError(t, err)
		require.NotNil(t, got)

		require.NoError(t, resets.DeleteByToken(ctx, "second"))
		got, err = resets.FindByToken(ctx, "second")
		require.NoError(t, err)
		require.Nil(t, got)
	})
}
