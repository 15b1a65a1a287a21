package auth

import (
	"context"

	"github.com/codehive/codehive/config"
	"github.com/coreos/go-oidc/v3/oidc"
)

// verifyOIDC verifies a given OIDC ID-Token against one configured provider.
// It returns the user's id if verification was successful. The user id is the
// "email" claim; ensure this is unique across the user base.
func verifyOIDC(ctx context.Context, idToken string, oidcConf *config.OIDCConfig) (string, error) {
	provider, err := oidc.NewProvider(ctx, oidcConf.ProviderUrl)
	if err != nil {
		return "", err
	}
	conf := oidc.Config{}
	if oidcConf.ClientId == "" {
		conf.SkipClientIDCheck = true
	} else {
		conf.ClientID = oidcConf.ClientId
	}
	verifier := provider.Verifier(&conf)
	verifiedIdToken, err := verifier.Verify(ctx, idToken)
	if err != nil {
		return "", err
	}

	claims := struct {
		Email string `json:"email"`
	}{}
	err = verifiedIdToken.Claims(&claims)
	if err != nil {
		return "", err
	}
	return claims.Email, nil
}
