package services

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/supabase-community/gotrue-go"
	"github.com/supabase-community/gotrue-go/types"
	httptools "github.com/xdoubleu/essentia/v2/pkg/communication/httptools"
	"github.com/xdoubleu/essentia/v2/pkg/errortools"
	tpltools "github.com/xdoubleu/essentia/v2/pkg/tpl"
	"github.com/xhit/go-str2duration/v2"
	"planner.xdoubleu.com/cmd/planner/internal/dtos"
	"planner.xdoubleu.com/internal/constants"
	"planner.xdoubleu.com/internal/models"
)

// AuthService signs users in against Supabase and keeps the session in an
// access and a refresh cookie.
type AuthService struct {
	supabaseUserID   string
	client           gotrue.Client
	tpl              *template.Template
	useSecureCookies bool
	accessExpiry     string
	refreshExpiry    string
}

type session struct {
	accessToken  string
	refreshToken string
}

func (service *AuthService) GetAllUsers() ([]models.User, error) {
	//nolint:exhaustruct //email is unknown until the user signs in
	return []models.User{
		{
			ID: service.supabaseUserID,
		},
	}, nil
}

// SignInWithEmail returns the session cookies. The refresh cookie is only
// included when the user asked to be remembered.
func (service *AuthService) SignInWithEmail(
	signInDto *dtos.SignInDto,
) ([]*http.Cookie, error) {
	//nolint:exhaustruct //don't need other fields
	response, err := service.client.Token(types.TokenRequest{
		GrantType: "password",
		Email:     signInDto.Email,
		Password:  signInDto.Password,
	})
	if err != nil {
		return nil, errortools.NewUnauthorizedError(
			errors.New("invalid credentials"),
		)
	}

	cookies, err := service.sessionCookies(session{
		accessToken:  response.AccessToken,
		refreshToken: response.RefreshToken,
	})
	if err != nil {
		return nil, err
	}

	if !signInDto.RememberMe {
		return cookies[:1], nil
	}

	return cookies, nil
}

func (service *AuthService) GetUser(accessToken string) (*models.User, error) {
	response, err := service.client.WithToken(accessToken).GetUser()
	if err != nil {
		return nil, err
	}

	user := models.UserFromTypesUser(response.User)

	return &user, nil
}

func (service *AuthService) SignOut(
	accessToken string,
) (*http.Cookie, *http.Cookie, error) {
	err := service.client.WithToken(accessToken).Logout()
	if err != nil {
		return nil, nil, err
	}

	return service.expiredCookie(models.AccessScope),
		service.expiredCookie(models.RefreshScope),
		nil
}

func (service *AuthService) GetCookieName(scope models.Scope) string {
	switch scope {
	case models.AccessScope:
		return "accessToken"
	case models.RefreshScope:
		return "refreshToken"
	default:
		panic("invalid scope")
	}
}

func (service *AuthService) CreateCookie(
	scope models.Scope,
	token string,
	expiry string,
) (*http.Cookie, error) {
	ttl, err := str2duration.ParseDuration(expiry)
	if err != nil {
		return nil, err
	}

	return &http.Cookie{
		Name:     service.GetCookieName(scope),
		Value:    token,
		Expires:  time.Now().Add(ttl),
		SameSite: http.SameSiteStrictMode,
		HttpOnly: true,
		Secure:   service.useSecureCookies,
		Path:     "/",
	}, nil
}

func (service *AuthService) expiredCookie(scope models.Scope) *http.Cookie {
	//nolint:exhaustruct //other fields are optional
	return &http.Cookie{
		Name:     service.GetCookieName(scope),
		Value:    "",
		MaxAge:   -1,
		SameSite: http.SameSiteStrictMode,
		HttpOnly: true,
		Path:     "/",
	}
}

// sessionCookies returns the access cookie followed by the refresh cookie.
func (service *AuthService) sessionCookies(s session) ([]*http.Cookie, error) {
	accessCookie, err := service.CreateCookie(
		models.AccessScope,
		s.accessToken,
		service.accessExpiry,
	)
	if err != nil {
		return nil, err
	}

	refreshCookie, err := service.CreateCookie(
		models.RefreshScope,
		s.refreshToken,
		service.refreshExpiry,
	)
	if err != nil {
		return nil, err
	}

	return []*http.Cookie{accessCookie, refreshCookie}, nil
}

func (service *AuthService) Access(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tokenCookie, err := r.Cookie("accessToken")
		if err != nil {
			httptools.UnauthorizedResponse(w, r,
				errortools.NewUnauthorizedError(errors.New("no token in cookies")))
			return
		}

		user, err := service.GetUser(tokenCookie.Value)
		if err != nil {
			httptools.HandleError(w, r, err)
			return
		}

		next(w, r.WithContext(service.contextSetUser(r.Context(), *user)))
	}
}

// TemplateAccess renders the sign-in page instead of next when neither
// cookie yields a user.
func (service *AuthService) TemplateAccess(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := service.currentUser(r)

		if user == nil {
			user = service.refreshSession(w, r)
		}

		if user == nil {
			tpltools.RenderWithPanic(service.tpl, w, "sign-in.html", nil)
			return
		}

		next(w, r.WithContext(service.contextSetUser(r.Context(), *user)))
	}
}

func (service *AuthService) currentUser(r *http.Request) *models.User {
	accessToken, err := r.Cookie("accessToken")
	if err != nil {
		return nil
	}

	user, err := service.GetUser(accessToken.Value)
	if err != nil {
		return nil
	}

	return user
}

func (service *AuthService) refreshSession(
	w http.ResponseWriter,
	r *http.Request,
) *models.User {
	tokenCookie, err := r.Cookie("refreshToken")
	if err != nil {
		return nil
	}

	//nolint:exhaustruct //don't need other fields
	response, err := service.client.Token(types.TokenRequest{
		GrantType:    "refresh_token",
		RefreshToken: tokenCookie.Value,
	})
	if err != nil {
		return nil
	}

	cookies, err := service.sessionCookies(session{
		accessToken:  response.AccessToken,
		refreshToken: response.RefreshToken,
	})
	if err != nil {
		return nil
	}

	for _, cookie := range cookies {
		http.SetCookie(w, cookie)
	}

	user, err := service.GetUser(response.AccessToken)
	if err != nil {
		return nil
	}

	return user
}

func (service *AuthService) contextSetUser(
	ctx context.Context,
	user models.User,
) context.Context {
	if hub := sentry.GetHubFromContext(ctx); hub != nil {
		//nolint:exhaustruct //other fields are optional
		hub.Scope().SetUser(sentry.User{
			ID:    user.ID,
			Email: user.Email,
		})
	}

	return context.WithValue(ctx, constants.UserContextKey, user)
}
