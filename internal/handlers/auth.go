package handlers

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/lightstrail/aurora-backend/internal/auth"
	"github.com/lightstrail/aurora-backend/internal/middleware"
	"github.com/lightstrail/aurora-backend/internal/models"
	"github.com/lightstrail/aurora-backend/internal/repositories"
	"golang.org/x/crypto/bcrypt"
)

const tokenTTL = 72 * time.Hour

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	userRepository repositories.UserRepository
	googleOAuth    *auth.GoogleOAuth
	jwtSecret      string
	frontendURL    string
}

// NewAuthHandler creates a new AuthHandler. googleOAuth may be nil when
// the Google client credentials are not configured.
func NewAuthHandler(userRepo repositories.UserRepository, googleOAuth *auth.GoogleOAuth, jwtSecret, frontendURL string) *AuthHandler {
	return &AuthHandler{
		userRepository: userRepo,
		googleOAuth:    googleOAuth,
		jwtSecret:      jwtSecret,
		frontendURL:    frontendURL,
	}
}

// RegisterAuthRoutes registers public authentication routes.
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group) {
	g.POST("/signup", h.Signup)
	g.POST("/login", h.Login)
	if h.googleOAuth != nil {
		g.GET("/google", h.GoogleRedirect)
		g.GET("/google/callback", h.GoogleCallback)
	}
}

// RegisterUserRoutes registers routes that require a valid JWT.
func (h *AuthHandler) RegisterUserRoutes(g *echo.Group) {
	g.GET("/me", h.Me)
	g.DELETE("/users/me", h.DeleteAccount)
}

// Signup handles local user registration with email and password.
func (h *AuthHandler) Signup(c echo.Context) error {
	var req models.SignupRequest

	if err := c.Bind(&req); err != nil {
		return respondError(c, http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return respondValidationError(c, http.StatusBadRequest, "Validation failed", err.Error())
	}

	ctx := c.Request().Context()

	// Check if user with this email already exists
	if _, err := h.userRepository.GetUserByEmail(ctx, req.Email); err == nil {
		return respondError(c, http.StatusConflict, "User with this email already registered")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return respondError(c, http.StatusInternalServerError, "Failed to hash password")
	}

	user := &models.User{
		Email:     req.Email,
		Password:  string(hashedPassword),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Provider:  models.ProviderLocal,
	}

	if err := h.userRepository.CreateUser(ctx, user); err != nil {
		return respondError(c, http.StatusInternalServerError, "Failed to create user")
	}

	token, err := h.generateJWT(user)
	if err != nil {
		return respondError(c, http.StatusInternalServerError, "Failed to generate token after signup")
	}

	return respondOK(c, http.StatusCreated, "User registered successfully", echo.Map{
		"token": token,
		"user":  user.Sanitize(),
	})
}

// Login handles local email/password sign-in.
func (h *AuthHandler) Login(c echo.Context) error {
	var req models.LoginRequest

	if err := c.Bind(&req); err != nil {
		return respondError(c, http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return respondValidationError(c, http.StatusBadRequest, "Validation failed", err.Error())
	}

	ctx := c.Request().Context()

	user, err := h.userRepository.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return respondError(c, http.StatusUnauthorized, "Invalid email or password")
	}
	if user.Password == "" {
		// Google-only accounts have no local password to check.
		return respondError(c, http.StatusUnauthorized, "Account uses Google sign-in")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return respondError(c, http.StatusUnauthorized, "Invalid email or password")
	}

	token, err := h.generateJWT(user)
	if err != nil {
		return respondError(c, http.StatusInternalServerError, "Failed to generate token")
	}

	return respondOK(c, http.StatusOK, "Login successful", echo.Map{
		"token": token,
		"user":  user.Sanitize(),
	})
}

// GoogleRedirect sends the browser to Google's consent page.
func (h *AuthHandler) GoogleRedirect(c echo.Context) error {
	state, err := randomState()
	if err != nil {
		return respondError(c, http.StatusInternalServerError, "Failed to start Google sign-in")
	}

	c.SetCookie(&http.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Path:     "/",
		MaxAge:   int((10 * time.Minute).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return c.Redirect(http.StatusTemporaryRedirect, h.googleOAuth.AuthURL(state))
}

// GoogleCallback finishes the OAuth flow: exchanges the code, finds or
// creates the local account, then redirects to the frontend with a token.
func (h *AuthHandler) GoogleCallback(c echo.Context) error {
	stateCookie, err := c.Cookie("oauth_state")
	if err != nil || stateCookie.Value == "" || stateCookie.Value != c.QueryParam("state") {
		return respondError(c, http.StatusUnauthorized, "Invalid OAuth state")
	}

	code := c.QueryParam("code")
	if code == "" {
		return respondError(c, http.StatusBadRequest, "Missing authorization code")
	}

	ctx := c.Request().Context()

	profile, err := h.googleOAuth.Exchange(ctx, code)
	if err != nil {
		return respondError(c, http.StatusUnauthorized, "Google sign-in failed")
	}

	user, err := h.findOrCreateGoogleUser(c, profile)
	if err != nil {
		return respondError(c, http.StatusInternalServerError, "Failed to sign in with Google")
	}

	token, err := h.generateJWT(user)
	if err != nil {
		return respondError(c, http.StatusInternalServerError, "Failed to generate token")
	}

	redirect := fmt.Sprintf("%s/auth/callback?token=%s", h.frontendURL, url.QueryEscape(token))
	return c.Redirect(http.StatusTemporaryRedirect, redirect)
}

func (h *AuthHandler) findOrCreateGoogleUser(c echo.Context, profile *auth.GoogleUser) (*models.User, error) {
	ctx := c.Request().Context()

	user, err := h.userRepository.GetUserByGoogleID(ctx, profile.ID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	// Link an existing local account with the same email.
	user, err = h.userRepository.GetUserByEmail(ctx, profile.Email)
	if err == nil {
		user.GoogleID = profile.ID
		user.Provider = models.ProviderGoogle
		if err := h.userRepository.UpdateUser(ctx, user); err != nil {
			return nil, err
		}
		return user, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	user = &models.User{
		Email:     profile.Email,
		FirstName: profile.GivenName,
		LastName:  profile.FamilyName,
		GoogleID:  profile.ID,
		Provider:  models.ProviderGoogle,
	}
	if err := h.userRepository.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Me returns the authenticated user's profile.
func (h *AuthHandler) Me(c echo.Context) error {
	claims, ok := middleware.UserClaims(c)
	if !ok {
		return respondError(c, http.StatusUnauthorized, "Missing authentication")
	}

	user, err := h.userRepository.GetUserByID(c.Request().Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return respondError(c, http.StatusNotFound, "User not found")
		}
		return respondError(c, http.StatusInternalServerError, "Failed to load user")
	}

	return respondOK(c, http.StatusOK, "", user.Sanitize())
}

// DeleteAccount removes the authenticated user's account.
func (h *AuthHandler) DeleteAccount(c echo.Context) error {
	claims, ok := middleware.UserClaims(c)
	if !ok {
		return respondError(c, http.StatusUnauthorized, "Missing authentication")
	}

	if err := h.userRepository.DeleteUser(c.Request().Context(), claims.UserID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return respondError(c, http.StatusNotFound, "User not found")
		}
		return respondError(c, http.StatusInternalServerError, "Failed to delete user")
	}

	return respondOK(c, http.StatusOK, "Account deleted", nil)
}

func (h *AuthHandler) generateJWT(user *models.User) (string, error) {
	claims := &models.JwtCustomClaims{
		UserID: user.ID.Hex(),
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.jwtSecret))
}

func randomState() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
