package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/golang-jwt/jwt/v4"
	"github.com/lightstrail/aurora-backend/internal/models"
	"github.com/lightstrail/aurora-backend/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

type stubUserRepo struct {
	byEmail  map[string]*models.User
	byGoogle map[string]*models.User
	byID     map[string]*models.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{
		byEmail:  make(map[string]*models.User),
		byGoogle: make(map[string]*models.User),
		byID:     make(map[string]*models.User),
	}
}

func (s *stubUserRepo) CreateUser(ctx context.Context, user *models.User) error {
	user.ID = primitive.NewObjectID()
	s.byEmail[user.Email] = user
	s.byID[user.ID.Hex()] = user
	if user.GoogleID != "" {
		s.byGoogle[user.GoogleID] = user
	}
	return nil
}

func (s *stubUserRepo) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := s.byID[id]; ok {
		return u, nil
	}
	return nil, repositories.ErrNotFound
}

func (s *stubUserRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	if u, ok := s.byEmail[email]; ok {
		return u, nil
	}
	return nil, repositories.ErrNotFound
}

func (s *stubUserRepo) GetUserByGoogleID(ctx context.Context, googleID string) (*models.User, error) {
	if u, ok := s.byGoogle[googleID]; ok {
		return u, nil
	}
	return nil, repositories.ErrNotFound
}

func (s *stubUserRepo) UpdateUser(ctx context.Context, user *models.User) error {
	s.byID[user.ID.Hex()] = user
	s.byEmail[user.Email] = user
	if user.GoogleID != "" {
		s.byGoogle[user.GoogleID] = user
	}
	return nil
}

func (s *stubUserRepo) DeleteUser(ctx context.Context, id string) error {
	u, ok := s.byID[id]
	if !ok {
		return repositories.ErrNotFound
	}
	delete(s.byID, id)
	delete(s.byEmail, u.Email)
	return nil
}

const signupBody = `{
	"email": "viewer@example.com",
	"password": "hunter22",
	"firstName": "Kai",
	"lastName": "Nilsen"
}`

func newAuthTestHandler(repo *stubUserRepo) *AuthHandler {
	return NewAuthHandler(repo, nil, "test-secret", "http://localhost:5173")
}

func TestSignupCreatesUserAndIssuesToken(t *testing.T) {
	e := newTestEcho()
	repo := newStubUserRepo()
	h := newAuthTestHandler(repo)

	c, rec := newJSONContext(e, http.MethodPost, "/auth/signup", signupBody)
	require.NoError(t, h.Signup(c))

	require.Equal(t, http.StatusCreated, rec.Code)
	resp := decodeEnvelope(t, rec)
	assert.True(t, resp.Success)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	tokenStr, _ := data["token"].(string)
	require.NotEmpty(t, tokenStr)

	claims := &models.JwtCustomClaims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	assert.Equal(t, "viewer@example.com", claims.Email)

	stored := repo.byEmail["viewer@example.com"]
	require.NotNil(t, stored)
	assert.NotEqual(t, "hunter22", stored.Password, "password must be stored hashed")
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("hunter22")))
}

func TestSignupRejectsDuplicateEmail(t *testing.T) {
	e := newTestEcho()
	repo := newStubUserRepo()
	repo.byEmail["viewer@example.com"] = &models.User{Email: "viewer@example.com"}
	h := newAuthTestHandler(repo)

	c, rec := newJSONContext(e, http.MethodPost, "/auth/signup", signupBody)
	require.NoError(t, h.Signup(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestSignupValidatesFields(t *testing.T) {
	e := newTestEcho()
	h := newAuthTestHandler(newStubUserRepo())

	c, rec := newJSONContext(e, http.MethodPost, "/auth/signup",
		`{"email":"nope","password":"short","firstName":"K","lastName":""}`)
	require.NoError(t, h.Signup(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginVerifiesCredentials(t *testing.T) {
	e := newTestEcho()
	repo := newStubUserRepo()
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter22"), bcrypt.DefaultCost)
	require.NoError(t, err)
	require.NoError(t, repo.CreateUser(context.Background(), &models.User{
		Email:    "viewer@example.com",
		Password: string(hash),
		Provider: models.ProviderLocal,
	}))
	h := newAuthTestHandler(repo)

	c, rec := newJSONContext(e, http.MethodPost, "/auth/login",
		`{"email":"viewer@example.com","password":"hunter22"}`)
	require.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	c, rec = newJSONContext(e, http.MethodPost, "/auth/login",
		`{"email":"viewer@example.com","password":"wrong"}`)
	require.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginRejectsGoogleOnlyAccounts(t *testing.T) {
	e := newTestEcho()
	repo := newStubUserRepo()
	require.NoError(t, repo.CreateUser(context.Background(), &models.User{
		Email:    "viewer@example.com",
		GoogleID: "g-123",
		Provider: models.ProviderGoogle,
	}))
	h := newAuthTestHandler(repo)

	c, rec := newJSONContext(e, http.MethodPost, "/auth/login",
		`{"email":"viewer@example.com","password":"whatever"}`)
	require.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMeReturnsSanitizedUser(t *testing.T) {
	e := newTestEcho()
	repo := newStubUserRepo()
	user := &models.User{
		Email:     "viewer@example.com",
		Password:  "hash",
		FirstName: "Kai",
		LastName:  "Nilsen",
		Provider:  models.ProviderLocal,
	}
	require.NoError(t, repo.CreateUser(context.Background(), user))
	h := newAuthTestHandler(repo)

	c, rec := newJSONContext(e, http.MethodGet, "/auth/me", "")
	require.NoError(t, h.Me(withClaims(c, user.ID.Hex())))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "hash", "credentials must never leak")
	assert.Contains(t, rec.Body.String(), "Kai")
}

func TestDeleteAccountRemovesUser(t *testing.T) {
	e := newTestEcho()
	repo := newStubUserRepo()
	user := &models.User{Email: "viewer@example.com"}
	require.NoError(t, repo.CreateUser(context.Background(), user))
	h := newAuthTestHandler(repo)

	c, rec := newJSONContext(e, http.MethodDelete, "/auth/users/me", "")
	require.NoError(t, h.DeleteAccount(withClaims(c, user.ID.Hex())))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, repo.byID)
}
