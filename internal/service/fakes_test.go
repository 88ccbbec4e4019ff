package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	config "github.com/halknowsaguy/api/configs"
	"github.com/halknowsaguy/api/internal/models"
	"github.com/halknowsaguy/api/internal/repository"
	"github.com/halknowsaguy/api/internal/transfer"
	"golang.org/x/oauth2"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type fakeSocialAccountRepo struct {
	mu             sync.Mutex
	accounts       map[string]*models.SocialAccount
	nextID         int64
	upserts        int
	getErr         error
	beforeSetToken func(r *fakeSocialAccountRepo)
}

func newFakeSocialAccountRepo() *fakeSocialAccountRepo {
	return &fakeSocialAccountRepo{accounts: map[string]*models.SocialAccount{}}
}

func (r *fakeSocialAccountRepo) Upsert(_ context.Context, sa *models.SocialAccount) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.upserts++

	stored := *sa
	if existing, ok := r.accounts[sa.Platform]; ok {
		stored.ID = existing.ID
	} else {
		r.nextID++
		stored.ID = r.nextID
	}
	r.accounts[sa.Platform] = &stored
	return stored.ID, nil
}

func (r *fakeSocialAccountRepo) GetByPlatform(_ context.Context, platform string) (*models.SocialAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	sa, ok := r.accounts[platform]
	if !ok {
		return nil, nil
	}
	cp := *sa
	return &cp, nil
}

func (r *fakeSocialAccountRepo) SetToken(_ context.Context, platform, oldAccessToken string, sa *models.SocialAccount) error {
	if r.beforeSetToken != nil {
		r.beforeSetToken(r)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.accounts[platform]
	if !ok || existing.AccessToken != oldAccessToken {
		return repository.ErrNoRowsAffected
	}
	if sa.AccessToken != "" {
		existing.AccessToken = sa.AccessToken
	}
	if sa.RefreshToken != "" {
		existing.RefreshToken = sa.RefreshToken
	}
	existing.TokenExpiresAt = sa.TokenExpiresAt
	return nil
}

func (r *fakeSocialAccountRepo) put(sa *models.SocialAccount) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	sa.ID = r.nextID
	r.accounts[sa.Platform] = sa
}

func (r *fakeSocialAccountRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.accounts)
}

type fakeFeedItemRepo struct {
	mu         sync.Mutex
	items      map[string]*models.FeedItem
	order      []string
	failOn     string
	raceOn     string
	listErr    error
	createCall int
}

func newFakeFeedItemRepo() *fakeFeedItemRepo {
	return &fakeFeedItemRepo{items: map[string]*models.FeedItem{}}
}

func (r *fakeFeedItemRepo) GetByExternalID(_ context.Context, platform, externalID string) (*models.FeedItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[platform+"/"+externalID]
	if !ok {
		return nil, nil
	}
	return item, nil
}

func (r *fakeFeedItemRepo) Create(_ context.Context, item *models.FeedItem) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.createCall++

	if item.ExternalID == r.failOn {
		return 0, context.DeadlineExceeded
	}
	key := item.Platform + "/" + item.ExternalID
	if item.ExternalID == r.raceOn {
		// Simulates a concurrent import inserting between lookup and insert.
		r.items[key] = item
		r.order = append(r.order, key)
		return 0, repository.ErrDuplicate
	}
	if _, ok := r.items[key]; ok {
		return 0, repository.ErrDuplicate
	}
	stored := *item
	stored.ID = int64(len(r.items) + 1)
	r.items[key] = &stored
	r.order = append(r.order, key)
	return stored.ID, nil
}

func (r *fakeFeedItemRepo) Count(context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.items)), nil
}

func (r *fakeFeedItemRepo) ListVisible(context.Context) ([]*models.FeedItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []*models.FeedItem
	for _, key := range r.order {
		if item := r.items[key]; !item.IsHidden {
			out = append(out, item)
		}
	}
	return out, nil
}

type fakeTokenService struct {
	token *oauth2.Token
	err   error
}

func (f *fakeTokenService) BeginAuthorization(context.Context) (*transfer.AuthorizationRequest, error) {
	return nil, nil
}

func (f *fakeTokenService) CompleteAuthorization(context.Context, string, string, string, string) (*models.SocialAccount, error) {
	return nil, nil
}

func (f *fakeTokenService) GetValidAccessToken(context.Context) (*oauth2.Token, error) {
	return f.token, f.err
}

// fakeProvider is an in-process stand-in for the Twitter OAuth2 and v2 API.
type fakeProvider struct {
	*httptest.Server
	mux          *http.ServeMux
	exchanges    atomic.Int32
	refreshes    atomic.Int32
	failRefresh  atomic.Bool
	lastVerifier atomic.Value
}

func newFakeProvider(t *testing.T) *fakeProvider {
	t.Helper()
	p := &fakeProvider{mux: http.NewServeMux()}
	p.Server = httptest.NewServer(p.mux)
	t.Cleanup(p.Close)
	return p
}

// handleOAuth serves the token endpoint and /2/users/me. Exchanges only
// succeed for "good-code"; refreshes hand out "access-2".
func (p *fakeProvider) handleOAuth() {
	p.mux.HandleFunc("/2/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if id, secret, ok := r.BasicAuth(); !ok || id != "client-id" || secret != "client-secret" {
			writeJSON(w, http.StatusUnauthorized, `{"error":"unauthorized_client","error_description":"Missing valid authorization header"}`)
			return
		}

		switch r.PostForm.Get("grant_type") {
		case "authorization_code":
			p.exchanges.Add(1)
			p.lastVerifier.Store(r.PostForm.Get("code_verifier"))
			if r.PostForm.Get("code") != "good-code" || r.PostForm.Get("code_verifier") == "" {
				writeJSON(w, http.StatusBadRequest, `{"error":"invalid_request","error_description":"Value passed for the authorization code was invalid."}`)
				return
			}
			writeJSON(w, http.StatusOK, `{"token_type":"bearer","access_token":"access-1","refresh_token":"refresh-1","expires_in":7200,"scope":"tweet.read users.read offline.access"}`)
		case "refresh_token":
			p.refreshes.Add(1)
			if p.failRefresh.Load() || r.PostForm.Get("refresh_token") == "" {
				writeJSON(w, http.StatusBadRequest, `{"error":"invalid_request","error_description":"Value passed for the token was invalid."}`)
				return
			}
			writeJSON(w, http.StatusOK, `{"token_type":"bearer","access_token":"access-2","refresh_token":"refresh-2","expires_in":7200}`)
		default:
			writeJSON(w, http.StatusBadRequest, `{"error":"unsupported_grant_type"}`)
		}
	})

	p.mux.HandleFunc("/2/users/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer access-1" {
			writeJSON(w, http.StatusUnauthorized, `{"title":"Unauthorized","detail":"Unauthorized","status":401}`)
			return
		}
		writeJSON(w, http.StatusOK, `{"data":{"id":"42","name":"Hal","username":"halknowsaguy"}}`)
	})
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func (p *fakeProvider) config() config.Config {
	return config.Config{
		Twitter: config.Twitter{
			ClientID:     "client-id",
			ClientSecret: "client-secret",
			CallbackURL:  "http://localhost:3000/api/auth/twitter/callback",
			AuthURL:      p.URL + "/i/oauth2/authorize",
			TokenURL:     p.URL + "/2/oauth2/token",
			APIURL:       p.URL,
		},
		SecretKey:       testSecret,
		ProviderTimeout: 5 * time.Second,
	}
}
