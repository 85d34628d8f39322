package api

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/khanghh/casoauth/internal/oauth"
	"github.com/khanghh/casoauth/model"
)

type OAuthHandler struct {
	oauthService *oauth.CentralOAuthService
}

func bearerToken(ctx *fiber.Ctx) string {
	header := ctx.Get(fiber.HeaderAuthorization)
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ctx.Query("access_token")
}

func tokenErrorResponse(ctx *fiber.Ctx, err error) error {
	var invalidToken *oauth.InvalidTokenError
	if errors.As(err, &invalidToken) {
		return ctx.Status(fiber.StatusUnauthorized).JSON(
			NewErrorResponse(fiber.StatusUnauthorized, "Invalid token: "+invalidToken.TokenID),
		)
	}
	var invalidScope *oauth.InvalidScopeError
	if errors.As(err, &invalidScope) {
		return ctx.Status(fiber.StatusBadRequest).JSON(
			NewErrorResponse(fiber.StatusBadRequest, "Invalid scope: "+invalidScope.Scope),
		)
	}
	return ctx.Status(fiber.StatusInternalServerError).JSON(
		NewErrorResponse(fiber.StatusInternalServerError, "Internal server error"),
	)
}

// PostToken implements the token endpoint: exchanging an authorization code
// for an access or refresh token, and a refresh token for an access token.
func (h *OAuthHandler) PostToken(ctx *fiber.Ctx) error {
	clientID := ctx.FormValue("client_id")
	clientSecret := ctx.FormValue("client_secret")
	service, err := h.oauthService.GetRegisteredService(ctx.Context(), clientID)
	if err != nil || service.ClientSecret != clientSecret {
		return ctx.Status(fiber.StatusUnauthorized).JSON(
			NewErrorResponse(fiber.StatusUnauthorized, "Invalid client credentials"),
		)
	}

	switch ctx.FormValue("grant_type") {
	case "authorization_code":
		return h.exchangeAuthorizationCode(ctx, clientID)
	case "refresh_token":
		return h.exchangeRefreshToken(ctx, clientID)
	default:
		return ctx.Status(fiber.StatusBadRequest).JSON(
			NewErrorResponse(fiber.StatusBadRequest, "Unsupported grant type"),
		)
	}
}

func (h *OAuthHandler) exchangeAuthorizationCode(ctx *fiber.Ctx, clientID string) error {
	code, err := h.oauthService.GetTokenByVariant(ctx.Context(), ctx.FormValue("code"), model.VariantAuthorizationCode)
	if err != nil {
		return tokenErrorResponse(ctx, err)
	}
	if code.ClientID != clientID {
		return ctx.Status(fiber.StatusUnauthorized).JSON(
			NewErrorResponse(fiber.StatusUnauthorized, "Authorization code does not belong to this client"),
		)
	}

	if code.Type == model.TokenTypeOffline {
		refreshToken, err := h.oauthService.GrantOfflineRefreshToken(ctx.Context(), code)
		if err != nil {
			return tokenErrorResponse(ctx, err)
		}
		accessToken, err := h.oauthService.GrantOfflineAccessToken(ctx.Context(), refreshToken)
		if err != nil {
			return tokenErrorResponse(ctx, err)
		}
		return ctx.JSON(TokenResponse{
			AccessToken:  accessToken.ID,
			RefreshToken: refreshToken.ID,
			TokenType:    "Bearer",
			Scope:        accessToken.Scope,
		})
	}

	accessToken, err := h.oauthService.GrantOnlineAccessToken(ctx.Context(), code)
	if err != nil {
		return tokenErrorResponse(ctx, err)
	}
	return ctx.JSON(TokenResponse{
		AccessToken: accessToken.ID,
		TokenType:   "Bearer",
		Scope:       accessToken.Scope,
	})
}

func (h *OAuthHandler) exchangeRefreshToken(ctx *fiber.Ctx, clientID string) error {
	refreshToken, err := h.oauthService.GetTokenByVariant(ctx.Context(), ctx.FormValue("refresh_token"), model.VariantRefreshToken)
	if err != nil {
		return tokenErrorResponse(ctx, err)
	}
	if refreshToken.ClientID != clientID {
		return ctx.Status(fiber.StatusUnauthorized).JSON(
			NewErrorResponse(fiber.StatusUnauthorized, "Refresh token does not belong to this client"),
		)
	}
	accessToken, err := h.oauthService.GrantOfflineAccessToken(ctx.Context(), refreshToken)
	if err != nil {
		return tokenErrorResponse(ctx, err)
	}
	return ctx.JSON(TokenResponse{
		AccessToken: accessToken.ID,
		TokenType:   "Bearer",
		Scope:       accessToken.Scope,
	})
}

// PostRevoke revokes a single token by id, or every token of a client when
// client credentials are supplied instead.
func (h *OAuthHandler) PostRevoke(ctx *fiber.Ctx) error {
	if tokenID := ctx.FormValue("token"); tokenID != "" {
		token, err := h.oauthService.GetToken(ctx.Context(), tokenID)
		if err != nil {
			return tokenErrorResponse(ctx, err)
		}
		if !h.oauthService.RevokeToken(ctx.Context(), token) {
			return ctx.Status(fiber.StatusBadRequest).JSON(
				NewErrorResponse(fiber.StatusBadRequest, "Token could not be revoked"),
			)
		}
		return ctx.SendStatus(fiber.StatusNoContent)
	}

	clientID := ctx.FormValue("client_id")
	clientSecret := ctx.FormValue("client_secret")
	if !h.oauthService.RevokeClientTokens(ctx.Context(), clientID, clientSecret) {
		return ctx.SendStatus(fiber.StatusUnauthorized)
	}
	return ctx.SendStatus(fiber.StatusNoContent)
}

// GetProfile resolves the bearer token and returns the principal it speaks
// for together with its scope set.
func (h *OAuthHandler) GetProfile(ctx *fiber.Ctx) error {
	accessToken, err := h.oauthService.GetToken(ctx.Context(), bearerToken(ctx))
	if err != nil {
		return tokenErrorResponse(ctx, err)
	}
	return ctx.JSON(NewDataResponse(ProfileResponse{
		PrincipalID: accessToken.PrincipalID,
		Scopes:      accessToken.Scopes(),
	}))
}

// GetClientMetadata returns the client display record and its distinct
// principal count after verifying the client secret.
func (h *OAuthHandler) GetClientMetadata(ctx *fiber.Ctx) error {
	clientID := ctx.FormValue("client_id")
	clientSecret := ctx.FormValue("client_secret")
	metadata, err := h.oauthService.GetClientMetadata(ctx.Context(), clientID, clientSecret)
	if err != nil {
		return ctx.SendStatus(fiber.StatusUnauthorized)
	}
	return ctx.JSON(NewDataResponse(metadata))
}

// GetPrincipalMetadata lists, for the bearer CAS token's principal, one
// record per client with the union of granted scopes.
func (h *OAuthHandler) GetPrincipalMetadata(ctx *fiber.Ctx) error {
	accessToken, err := h.oauthService.GetToken(ctx.Context(), bearerToken(ctx))
	if err != nil {
		return tokenErrorResponse(ctx, err)
	}
	metadata, err := h.oauthService.GetPrincipalMetadata(ctx.Context(), accessToken)
	if err != nil {
		return tokenErrorResponse(ctx, err)
	}
	return ctx.JSON(NewDataResponse(metadata))
}

func NewOAuthHandler(oauthService *oauth.CentralOAuthService) *OAuthHandler {
	return &OAuthHandler{
		oauthService: oauthService,
	}
}
