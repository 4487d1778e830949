package auth

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/agronet/identity-api/internal/database"
	"github.com/agronet/identity-api/internal/models"
)

func googleProfile(id, email, name string) models.ExternalProfile {
	return models.ExternalProfile{
		Provider:    models.AuthOriginGoogle,
		ExternalID:  id,
		Email:       email,
		DisplayName: name,
	}
}

func TestResolver_CreateLocal(t *testing.T) {
	t.Parallel()

	repo := database.NewMemoryUserRepository()
	resolver := NewResolver(repo, nil)

	user, err := resolver.CreateLocal(context.Background(), "A", "a@b.c", "secret1")
	if err != nil {
		t.Fatalf("CreateLocal failed: %v", err)
	}

	if user.Origin != models.AuthOriginLocal {
		t.Errorf("origin = %q, want local", user.Origin)
	}
	if user.PasswordHash == "secret1" || user.PasswordHash == "" {
		t.Error("stored credential must be a hash, not the plaintext")
	}

	stored, err := repo.GetByEmail(context.Background(), "a@b.c")
	if err != nil {
		t.Fatalf("GetByEmail failed: %v", err)
	}
	if stored.ID != user.ID {
		t.Error("stored user does not match returned user")
	}
}

func TestResolver_CreateLocal_DuplicateEmail(t *testing.T) {
	t.Parallel()

	repo := database.NewMemoryUserRepository()
	resolver := NewResolver(repo, nil)

	if _, err := resolver.CreateLocal(context.Background(), "A", "a@b.c", "secret1"); err != nil {
		t.Fatalf("first CreateLocal failed: %v", err)
	}

	_, err := resolver.CreateLocal(context.Background(), "B", "a@b.c", "other-password")
	if !errors.Is(err, database.ErrDuplicateEmail) {
		t.Fatalf("second CreateLocal = %v, want ErrDuplicateEmail", err)
	}
}

func TestResolver_ResolveLocal(t *testing.T) {
	t.Parallel()

	repo := database.NewMemoryUserRepository()
	resolver := NewResolver(repo, nil)

	created, err := resolver.CreateLocal(context.Background(), "A", "a@b.c", "secret1")
	if err != nil {
		t.Fatalf("CreateLocal failed: %v", err)
	}

	user, err := resolver.ResolveLocal(context.Background(), "a@b.c", "secret1")
	if err != nil {
		t.Fatalf("ResolveLocal failed: %v", err)
	}
	if user.ID != created.ID {
		t.Error("resolved user does not match created user")
	}
}

func TestResolver_ResolveLocal_Failures(t *testing.T) {
	t.Parallel()

	repo := database.NewMemoryUserRepository()
	resolver := NewResolver(repo, nil)
	ctx := context.Background()

	if _, err := resolver.CreateLocal(ctx, "A", "a@b.c", "secret1"); err != nil {
		t.Fatalf("CreateLocal failed: %v", err)
	}
	if _, err := resolver.ResolveFederated(ctx, googleProfile("g-1", "fed@b.c", "Fed")); err != nil {
		t.Fatalf("ResolveFederated failed: %v", err)
	}

	tests := []struct {
		name     string
		email    string
		password string
		want     error
	}{
		{"unknown email", "missing@b.c", "secret1", ErrUserNotFound},
		{"wrong password", "a@b.c", "secret2", ErrInvalidCredentials},
		{"federated account", "fed@b.c", "secret1", ErrWrongAuthMethod},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := resolver.ResolveLocal(ctx, tt.email, tt.password)
			if !errors.Is(err, tt.want) {
				t.Errorf("ResolveLocal = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestResolver_ResolveFederated_FirstLoginCreates(t *testing.T) {
	t.Parallel()

	repo := database.NewMemoryUserRepository()
	resolver := NewResolver(repo, nil)
	ctx := context.Background()

	user, err := resolver.ResolveFederated(ctx, googleProfile("g-1", "a@b.c", "A"))
	if err != nil {
		t.Fatalf("ResolveFederated failed: %v", err)
	}

	if user.Origin != models.AuthOriginGoogle {
		t.Errorf("origin = %q, want google", user.Origin)
	}
	if user.ProviderID != "g-1" {
		t.Errorf("provider id = %q, want g-1", user.ProviderID)
	}
	if user.PasswordHash != "" {
		t.Error("federated user must not carry a password hash")
	}
}

func TestResolver_ResolveFederated_ReturnsExistingUnchanged(t *testing.T) {
	t.Parallel()

	repo := database.NewMemoryUserRepository()
	resolver := NewResolver(repo, nil)
	ctx := context.Background()

	first, err := resolver.ResolveFederated(ctx, googleProfile("g-1", "a@b.c", "A"))
	if err != nil {
		t.Fatalf("first ResolveFederated failed: %v", err)
	}

	// Same identity, later login with a renamed profile.
	second, err := resolver.ResolveFederated(ctx, googleProfile("g-1", "a@b.c", "A Renamed"))
	if err != nil {
		t.Fatalf("second ResolveFederated failed: %v", err)
	}

	if second.ID != first.ID {
		t.Error("same identity must resolve to the same record")
	}
	if second.Name != "A" {
		t.Errorf("name = %q, want the originally stored %q", second.Name, "A")
	}
}

func TestResolver_ResolveFederated_EmailConflict(t *testing.T) {
	t.Parallel()

	repo := database.NewMemoryUserRepository()
	resolver := NewResolver(repo, nil)
	ctx := context.Background()

	if _, err := resolver.CreateLocal(ctx, "A", "a@b.c", "secret1"); err != nil {
		t.Fatalf("CreateLocal failed: %v", err)
	}

	_, err := resolver.ResolveFederated(ctx, googleProfile("g-1", "a@b.c", "A"))
	if !errors.Is(err, ErrIdentityConflict) {
		t.Fatalf("ResolveFederated = %v, want ErrIdentityConflict", err)
	}
}

func TestResolver_ResolveFederated_IncompleteProfile(t *testing.T) {
	t.Parallel()

	resolver := NewResolver(database.NewMemoryUserRepository(), nil)
	ctx := context.Background()

	if _, err := resolver.ResolveFederated(ctx, googleProfile("", "a@b.c", "A")); err == nil {
		t.Error("profile without external id must be rejected")
	}
	if _, err := resolver.ResolveFederated(ctx, googleProfile("g-1", "", "A")); err == nil {
		t.Error("profile without email must be rejected")
	}

	local := models.ExternalProfile{Provider: models.AuthOriginLocal, ExternalID: "x", Email: "a@b.c"}
	if _, err := resolver.ResolveFederated(ctx, local); err == nil {
		t.Error("local origin must be rejected as a federated provider")
	}
}

func TestResolver_ResolveFederated_ConcurrentFirstLogin(t *testing.T) {
	t.Parallel()

	repo := database.NewMemoryUserRepository()
	resolver := NewResolver(repo, nil)
	profile := googleProfile("g-1", "a@b.c", "A")

	const goroutines = 16
	results := make([]*models.User, goroutines)
	errs := make([]error, goroutines)

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = resolver.ResolveFederated(context.Background(), profile)
		}(i)
	}
	wg.Wait()

	for i := 0; i < goroutines; i++ {
		if errs[i] != nil {
			t.Fatalf("goroutine %d failed: %v", i, errs[i])
		}
		if results[i].ID != results[0].ID {
			t.Fatalf("goroutine %d resolved a different record", i)
		}
	}
}
