package service

import (
	"context"
	"sync"
	"testing"

	"notes-service/internal/errs"
	"notes-service/internal/model"
	"notes-service/internal/store"
	"notes-service/internal/testdb"
	"notes-service/pkg/jwtutil"
	"notes-service/pkg/password"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"pgregory.net/rapid"
)

type fixture struct {
	store   *store.Store
	notes   *NoteService
	tenants *TenantService
	auth    *AuthService
	tokens  *jwtutil.JWTUtil

	acmeAdmin    model.Identity
	acmeMember   model.Identity
	globexAdmin  model.Identity
	globexMember model.Identity
}

func identityOf(t require.TestingT, s *store.Store, email string) model.Identity {
	u, err := s.FindUserByEmail(context.Background(), email)
	require.NoError(t, err)
	return model.Identity{UserID: u.ID, Email: u.Email, Role: u.Role, TenantID: u.TenantID}
}

func newFixture(t require.TestingT, s *store.Store) *fixture {
	log := zap.NewNop()
	tokens, err := jwtutil.NewJWTUtil(jwtutil.JWTConfig{SigningKey: "test-key", ExpirationHours: 24})
	require.NoError(t, err)
	auth, err := NewAuthService(s, password.FakeInsecureHasher{}, tokens, log, nil)
	require.NoError(t, err)

	return &fixture{
		store:        s,
		notes:        NewNoteService(s, log, nil),
		tenants:      NewTenantService(s, log, nil),
		auth:         auth,
		tokens:       tokens,
		acmeAdmin:    identityOf(t, s, "admin@acme.test"),
		acmeMember:   identityOf(t, s, "user@acme.test"),
		globexAdmin:  identityOf(t, s, "admin@globex.test"),
		globexMember: identityOf(t, s, "user@globex.test"),
	}
}

func setup(t *testing.T) *fixture {
	t.Helper()
	return newFixture(t, testdb.New(t))
}

func TestCreateValidation(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	for _, tc := range []struct{ title, content string }{
		{"", "body"},
		{"title", ""},
		{"   ", "body"},
		{"", ""},
	} {
		_, err := f.notes.Create(ctx, f.acmeMember, tc.title, tc.content)
		assert.True(t, errs.Is(err, errs.Validation), "title=%q content=%q: %v", tc.title, tc.content, err)
	}

	list, err := f.notes.List(ctx, f.acmeMember)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCreateUsesIdentityScope(t *testing.T) {
	f := setup(t)
	note, err := f.notes.Create(context.Background(), f.acmeMember, "Hello", "World")
	require.NoError(t, err)
	assert.Equal(t, f.acmeMember.UserID, note.UserID)
	assert.Equal(t, f.acmeMember.TenantID, note.TenantID)
}

func TestFreePlanQuota(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	for i := 0; i < model.FreePlanNoteLimit; i++ {
		_, err := f.notes.Create(ctx, f.acmeMember, "n", "c")
		require.NoError(t, err)
	}

	_, err := f.notes.Create(ctx, f.acmeAdmin, "n", "c")
	assert.True(t, errs.Is(err, errs.QuotaExceeded))
	assert.Equal(t, "Note limit reached. Upgrade to Pro plan to create more notes.", errs.MessageOf(err))

	count, err := f.store.CountNotes(ctx, f.acmeAdmin.TenantID)
	require.NoError(t, err)
	assert.Equal(t, int64(model.FreePlanNoteLimit), count, "rejected create must not write")

	// The cap is per tenant
	_, err = f.notes.Create(ctx, f.globexMember, "n", "c")
	assert.NoError(t, err)
}

func TestDeletingFreesQuota(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	var last *model.Note
	for i := 0; i < model.FreePlanNoteLimit; i++ {
		n, err := f.notes.Create(ctx, f.acmeMember, "n", "c")
		require.NoError(t, err)
		last = n
	}
	require.NoError(t, f.notes.Delete(ctx, f.acmeMember, last.ID))

	_, err := f.notes.Create(ctx, f.acmeMember, "n", "c")
	assert.NoError(t, err)
}

func TestProPlanHasNoCap(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.tenants.Upgrade(ctx, f.acmeAdmin, "acme")
	require.NoError(t, err)

	for i := 0; i < model.FreePlanNoteLimit+5; i++ {
		_, err := f.notes.Create(ctx, f.acmeMember, "n", "c")
		require.NoError(t, err)
	}
}

func TestConcurrentCreatesRespectQuota(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	results := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.notes.Create(ctx, f.acmeMember, "n", "c")
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	created := 0
	for err := range results {
		if err == nil {
			created++
			continue
		}
		assert.True(t, errs.Is(err, errs.QuotaExceeded), "unexpected error: %v", err)
	}
	assert.Equal(t, model.FreePlanNoteLimit, created)
}

func TestConcurrentCreatesOnPooledFileStore(t *testing.T) {
	f := newFixture(t, testdb.NewFile(t))
	ctx := context.Background()

	var wg sync.WaitGroup
	results := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.notes.Create(ctx, f.acmeMember, "n", "c")
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	created := 0
	for err := range results {
		if err == nil {
			created++
			continue
		}
		assert.False(t, errs.Is(err, errs.Internal), "internal error: %v", err)
		assert.True(t, errs.Is(err, errs.QuotaExceeded), "unexpected error: %v", err)
	}
	assert.Equal(t, model.FreePlanNoteLimit, created)
}

func TestCrossTenantNoteAccessIsNotFound(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	note, err := f.notes.Create(ctx, f.globexMember, "Secret", "globex only")
	require.NoError(t, err)

	_, err = f.notes.Get(ctx, f.acmeMember, note.ID)
	assert.True(t, errs.Is(err, errs.NotFound))

	_, err = f.notes.Update(ctx, f.acmeAdmin, note.ID, "pwned", "pwned")
	assert.True(t, errs.Is(err, errs.NotFound))

	err = f.notes.Delete(ctx, f.acmeAdmin, note.ID)
	assert.True(t, errs.Is(err, errs.NotFound))

	// Untouched for the owner
	got, err := f.notes.Get(ctx, f.globexAdmin, note.ID)
	require.NoError(t, err)
	assert.Equal(t, "Secret", got.Title)
}

func TestMissingAndForeignNotesLookAlike(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	foreign, err := f.notes.Create(ctx, f.globexMember, "t", "c")
	require.NoError(t, err)

	_, foreignErr := f.notes.Update(ctx, f.acmeMember, foreign.ID, "x", "y")
	_, missingErr := f.notes.Update(ctx, f.acmeMember, 424242, "x", "y")
	assert.Equal(t, errs.CodeOf(missingErr), errs.CodeOf(foreignErr))
	assert.Equal(t, errs.MessageOf(missingErr), errs.MessageOf(foreignErr))

	foreignErr = f.notes.Delete(ctx, f.acmeMember, foreign.ID)
	missingErr = f.notes.Delete(ctx, f.acmeMember, 424242)
	assert.Equal(t, errs.CodeOf(missingErr), errs.CodeOf(foreignErr))
	assert.Equal(t, errs.MessageOf(missingErr), errs.MessageOf(foreignErr))
}

func TestUpdateValidationBeforeLookup(t *testing.T) {
	f := setup(t)
	_, err := f.notes.Update(context.Background(), f.acmeMember, 424242, "", "c")
	assert.True(t, errs.Is(err, errs.Validation))
}

func TestParseNoteID(t *testing.T) {
	id, err := ParseNoteID("12")
	require.NoError(t, err)
	assert.Equal(t, uint(12), id)

	for _, raw := range []string{"", "0", "-1", "abc", "1; DROP TABLE notes"} {
		_, err := ParseNoteID(raw)
		assert.True(t, errs.Is(err, errs.NotFound), raw)
	}
}

// Property: for any interleaving of creates across tenants, every listing and
// lookup only ever returns notes of the caller's tenant.
func TestTenantIsolationProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		s, closeFn, err := testdb.OpenSeeded(nil)
		if err != nil {
			rt.Fatalf("open store: %v", err)
		}
		defer closeFn()
		f := newFixture(rt, s)
		ctx := context.Background()

		// Pro plans so the cap does not interfere with the interleaving
		if _, err := f.tenants.Upgrade(ctx, f.acmeAdmin, "acme"); err != nil {
			rt.Fatalf("upgrade acme: %v", err)
		}
		if _, err := f.tenants.Upgrade(ctx, f.globexAdmin, "globex"); err != nil {
			rt.Fatalf("upgrade globex: %v", err)
		}

		callers := []model.Identity{f.acmeAdmin, f.acmeMember, f.globexAdmin, f.globexMember}
		owner := map[uint]uint{}
		n := rapid.IntRange(1, 12).Draw(rt, "creates")
		for i := 0; i < n; i++ {
			caller := rapid.SampledFrom(callers).Draw(rt, "creator")
			title := rapid.StringMatching(`[A-Za-z0-9]{1,20}`).Draw(rt, "title")
			note, err := f.notes.Create(ctx, caller, title, "content")
			if err != nil {
				rt.Fatalf("create: %v", err)
			}
			owner[note.ID] = caller.TenantID
		}

		for _, caller := range callers {
			list, err := f.notes.List(ctx, caller)
			if err != nil {
				rt.Fatalf("list: %v", err)
			}
			for _, note := range list {
				if note.TenantID != caller.TenantID {
					rt.Fatalf("tenant %d listed note %d of tenant %d", caller.TenantID, note.ID, note.TenantID)
				}
			}
			for id, tenantID := range owner {
				_, err := f.notes.Get(ctx, caller, id)
				if tenantID == caller.TenantID && err != nil {
					rt.Fatalf("own note %d not visible: %v", id, err)
				}
				if tenantID != caller.TenantID && !errs.Is(err, errs.NotFound) {
					rt.Fatalf("foreign note %d visible to tenant %d: %v", id, caller.TenantID, err)
				}
			}
		}
	})
}

// Property: with a free plan, the number of successful creates is
// min(attempts, limit) and every rejection is QuotaExceeded.
func TestFreePlanQuotaProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		s, closeFn, err := testdb.OpenSeeded(nil)
		if err != nil {
			rt.Fatalf("open store: %v", err)
		}
		defer closeFn()
		f := newFixture(rt, s)
		ctx := context.Background()

		attempts := rapid.IntRange(0, 8).Draw(rt, "attempts")
		created := 0
		for i := 0; i < attempts; i++ {
			_, err := f.notes.Create(ctx, f.acmeMember, "t", "c")
			switch {
			case err == nil:
				created++
			case errs.Is(err, errs.QuotaExceeded):
			default:
				rt.Fatalf("unexpected error: %v", err)
			}
		}
		want := attempts
		if want > model.FreePlanNoteLimit {
			want = model.FreePlanNoteLimit
		}
		if created != want {
			rt.Fatalf("created %d notes, want %d", created, want)
		}
	})
}
