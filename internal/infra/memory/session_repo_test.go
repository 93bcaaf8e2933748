//go:build !integration

package memory_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"telegram-announce-bot/internal/domain"
	"telegram-announce-bot/internal/domain/model"
	"telegram-announce-bot/internal/infra/memory"
)

func TestSessionRepo(t *testing.T) {
	ctx := context.Background()

	t.Run("get before set", func(t *testing.T) {
		repo := memory.NewSessionRepo()

		_, err := repo.Get(ctx, 1)

		if !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("err = %v, want ErrNotFound", err)
		}
	})

	t.Run("set then get returns a copy", func(t *testing.T) {
		repo := memory.NewSessionRepo()
		if err := repo.Set(ctx, 1, model.NewSession()); err != nil {
			t.Fatalf("set: %v", err)
		}

		got, err := repo.Get(ctx, 1)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got.Step != model.StepAwaitingContent {
			t.Errorf("step = %s", got.Step)
		}

		// Mutating the returned session must not leak into the store.
		got.Step = model.StepAwaitingDestination
		again, err := repo.Get(ctx, 1)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if again.Step != model.StepAwaitingContent {
			t.Error("stored session was mutated through a returned copy")
		}
	})

	t.Run("set overwrites", func(t *testing.T) {
		repo := memory.NewSessionRepo()
		_ = repo.Set(ctx, 1, model.NewSession())

		s := model.NewSession()
		s.Step = model.StepAwaitingDestination
		_ = repo.Set(ctx, 1, s)

		got, err := repo.Get(ctx, 1)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got.Step != model.StepAwaitingDestination {
			t.Errorf("step = %s", got.Step)
		}
	})

	t.Run("clear removes and is idempotent", func(t *testing.T) {
		repo := memory.NewSessionRepo()
		_ = repo.Set(ctx, 1, model.NewSession())

		if err := repo.Clear(ctx, 1); err != nil {
			t.Fatalf("clear: %v", err)
		}
		if _, err := repo.Get(ctx, 1); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("err = %v, want ErrNotFound", err)
		}
		if err := repo.Clear(ctx, 1); err != nil {
			t.Fatalf("second clear: %v", err)
		}
	})

	t.Run("users are independent", func(t *testing.T) {
		repo := memory.NewSessionRepo()
		_ = repo.Set(ctx, 1, model.NewSession())
		_ = repo.Set(ctx, 2, model.NewSession())

		_ = repo.Clear(ctx, 1)

		if _, err := repo.Get(ctx, 2); err != nil {
			t.Errorf("user 2 session lost: %v", err)
		}
		if got := repo.Len(); got != 1 {
			t.Errorf("Len() = %d, want 1", got)
		}
	})

	t.Run("concurrent access", func(t *testing.T) {
		repo := memory.NewSessionRepo()
		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func(userID int64) {
				defer wg.Done()
				_ = repo.Set(ctx, userID, model.NewSession())
				_, _ = repo.Get(ctx, userID)
				_ = repo.Clear(ctx, userID)
			}(int64(i))
		}
		wg.Wait()
		if got := repo.Len(); got != 0 {
			t.Errorf("Len() = %d, want 0", got)
		}
	})
}
