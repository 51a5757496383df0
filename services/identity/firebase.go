package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"clipsynq/config"
	"clipsynq/models"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

var _ Provider = (*FirebaseProvider)(nil)

// Identity Toolkit REST endpoints. Sign-in is a client-side operation the
// Admin SDK does not cover, so it goes through the public API with the web
// API key, same as the browser SDK does under the hood.
const identityToolkitURL = "https://identitytoolkit.googleapis.com/v1"

// FirebaseProvider implements Provider against Firebase Authentication.
type FirebaseProvider struct {
	authClient *auth.Client
	apiKey     string
	httpClient *http.Client

	mu      sync.RWMutex
	current *models.AuthUser
}

// NewFirebaseProvider initialises the Firebase app and auth client.
func NewFirebaseProvider(ctx context.Context) (*FirebaseProvider, error) {
	opt := option.WithCredentialsFile(config.AppConfig.FirebaseCredentialsFile)
	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		return nil, fmt.Errorf("identity: error initializing app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("identity: error getting Auth client: %w", err)
	}
	return &FirebaseProvider{
		authClient: client,
		apiKey:     config.AppConfig.FirebaseAPIKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}, nil
}

type toolkitRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type toolkitResponse struct {
	LocalID     string `json:"localId"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	PhotoURL    string `json:"photoUrl"`
	Error       *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (p *FirebaseProvider) SignInWithEmail(ctx context.Context, email, password string) (*models.AuthUser, error) {
	return p.call(ctx, "accounts:signInWithPassword", email, password)
}

func (p *FirebaseProvider) SignUpWithEmail(ctx context.Context, email, password string) (*models.AuthUser, error) {
	return p.call(ctx, "accounts:signUp", email, password)
}

func (p *FirebaseProvider) call(ctx context.Context, endpoint, email, password string) (*models.AuthUser, error) {
	body, err := json.Marshal(toolkitRequest{Email: email, Password: password, ReturnSecureToken: true})
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/%s?key=%s", identityToolkitURL, endpoint, p.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("identity request failed: %w", err)
	}
	defer resp.Body.Close()

	var out toolkitResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode identity response: %w", err)
	}
	if out.Error != nil {
		return nil, fmt.Errorf("identity provider rejected request: %s", friendlyAuthError(out.Error.Message))
	}

	user := &models.AuthUser{
		UID:         out.LocalID,
		Email:       out.Email,
		DisplayName: out.DisplayName,
		PhotoURL:    out.PhotoURL,
	}
	p.mu.Lock()
	p.current = user
	p.mu.Unlock()
	return user, nil
}

func (p *FirebaseProvider) CurrentUser() *models.AuthUser {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current
}

func (p *FirebaseProvider) SignOut(ctx context.Context) error {
	p.mu.Lock()
	user := p.current
	p.current = nil
	p.mu.Unlock()
	if user == nil {
		return nil
	}
	if err := p.authClient.RevokeRefreshTokens(ctx, user.UID); err != nil {
		zap.L().Warn("failed to revoke refresh tokens", zap.String("uid", user.UID), zap.Error(err))
		return fmt.Errorf("failed to revoke provider session: %w", err)
	}
	return nil
}

// friendlyAuthError maps Identity Toolkit error codes onto readable notices.
func friendlyAuthError(code string) string {
	switch code {
	case "EMAIL_NOT_FOUND":
		return "no account found with this email"
	case "INVALID_PASSWORD", "INVALID_LOGIN_CREDENTIALS":
		return "incorrect email or password"
	case "EMAIL_EXISTS":
		return "an account already exists with this email"
	case "WEAK_PASSWORD : Password should be at least 6 characters", "WEAK_PASSWORD":
		return "password should be at least 6 characters"
	case "USER_DISABLED":
		return "this account has been disabled"
	case "TOO_MANY_ATTEMPTS_TRY_LATER":
		return "too many attempts, try again later"
	default:
		return code
	}
}
