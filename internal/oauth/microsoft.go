package oauth

import (
	"context"
	"encoding/json"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/microsoft"

	"github.com/agronet/identity-api/internal/models"
)

const microsoftGraphMeURL = "https://graph.microsoft.com/v1.0/me"

// MicrosoftProvider authenticates users through the Azure AD v2
// endpoints.
type MicrosoftProvider struct {
	config      *oauth2.Config
	userInfoURL string
}

// NewMicrosoftProvider configures the Microsoft adapter. tenant may be
// "common" for multi-tenant apps.
func NewMicrosoftProvider(clientID, clientSecret, redirectURL, tenant string) *MicrosoftProvider {
	if tenant == "" {
		tenant = "common"
	}
	return &MicrosoftProvider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"openid", "profile", "email", "User.Read"},
			Endpoint:     microsoft.AzureADEndpoint(tenant),
		},
		userInfoURL: microsoftGraphMeURL,
	}
}

// Name implements Provider.
func (p *MicrosoftProvider) Name() models.AuthOrigin {
	return models.AuthOriginMicrosoft
}

// AuthCodeURL implements Provider.
func (p *MicrosoftProvider) AuthCodeURL(state string) string {
	return p.config.AuthCodeURL(state)
}

// FetchProfile exchanges the code and reads the Microsoft Graph /me
// endpoint. Graph reports the primary email as mail for most accounts
// and only as userPrincipalName for some personal ones.
func (p *MicrosoftProvider) FetchProfile(ctx context.Context, code string) (*models.ExternalProfile, error) {
	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("microsoft code exchange failed: %w", err)
	}

	data, err := fetchUserInfo(ctx, p.config.Client(ctx, token), p.userInfoURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch microsoft profile: %w", err)
	}

	var info struct {
		ID                string `json:"id"`
		DisplayName       string `json:"displayName"`
		Mail              string `json:"mail"`
		UserPrincipalName string `json:"userPrincipalName"`
	}
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("failed to decode microsoft profile: %w", err)
	}

	email := info.Mail
	if email == "" {
		email = info.UserPrincipalName
	}

	if info.ID == "" || email == "" {
		return nil, fmt.Errorf("microsoft profile missing id or email")
	}

	return &models.ExternalProfile{
		Provider:    models.AuthOriginMicrosoft,
		ExternalID:  info.ID,
		Email:       email,
		DisplayName: info.DisplayName,
	}, nil
}
