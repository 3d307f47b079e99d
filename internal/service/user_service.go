package service

import (
	"context"
	"fmt"
	"strings"

	"duskblog/internal/mail"
	"duskblog/internal/middleware"
	"duskblog/internal/models"
	"duskblog/internal/repository"
	"duskblog/internal/validation"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// UserService implements account management and the mail flows.
type UserService struct {
	userRepo    repository.UserRepository
	mailer      mail.Sender
	frontendURL string
	adminEmail  string
}

// SignupInput carries the fields of a signup request.
type SignupInput struct {
	Username       string
	Email          string
	Password       string
	Role           string
	ProfilePicture string
}

// UpdateUserInput carries the fields of a profile update.
type UpdateUserInput struct {
	ID             string
	Username       string
	Email          string
	Password       string
	ProfilePicture string
}

// ContactAdminInput carries a contact-form submission.
type ContactAdminInput struct {
	Name    string
	Email   string
	Subject string
	Message string
}

// NewUserService creates a UserService. adminEmail, when set, overrides
// the admin account's address as the contact-form recipient.
func NewUserService(userRepo repository.UserRepository, mailer mail.Sender, frontendURL, adminEmail string) *UserService {
	return &UserService{
		userRepo:    userRepo,
		mailer:      mailer,
		frontendURL: frontendURL,
		adminEmail:  adminEmail,
	}
}

// Signup registers a new account. The email is lowercased before the
// uniqueness check so lookups are case-insensitive.
func (s *UserService) Signup(ctx context.Context, in SignupInput) (*models.User, error) {
	if validation.AnyBlank(in.Username, in.Email, in.Password) {
		return nil, models.NewValidationError("All fields are required")
	}
	if err := validation.ValidateUsername(in.Username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	email := strings.ToLower(in.Email)
	existing, err := s.userRepo.GetByUsernameOrEmail(ctx, in.Username, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewConflictError("User with this email or username already exists")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Username:       in.Username,
		Email:          email,
		Password:       string(hashed),
		IsAdmin:        in.Role == "admin",
		ProfilePicture: in.ProfilePicture,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login verifies credentials. An unknown email is NotFound (the login
// endpoint answers 404), a bad password Unauthorized.
func (s *UserService) Login(ctx context.Context, email, password string) (*models.User, error) {
	if validation.AnyBlank(email, password) {
		return nil, models.NewValidationError("All fields are required")
	}

	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(email))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewNotFoundError("User", email)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}
	return user, nil
}

// LoginWithGoogle resolves or creates the account for a verified Google
// identity. First-time logins get a random placeholder password so the
// account can never be entered with an empty one.
func (s *UserService) LoginWithGoogle(ctx context.Context, name, email string) (*models.User, error) {
	email = strings.ToLower(email)
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user != nil {
		return user, nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(uuid.New().String()), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	user = &models.User{
		Username: name,
		Email:    email,
		Password: string(hashed),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// SignOut drops the stored refresh token, ending the single active session.
func (s *UserService) SignOut(ctx context.Context, userID string) error {
	return s.userRepo.ClearRefreshToken(ctx, userID)
}

// GetByID resolves a user.
func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// Update replaces the profile fields. All of username/email/password are
// required; the picture is kept when not supplied.
func (s *UserService) Update(ctx context.Context, in UpdateUserInput) (*models.User, error) {
	if validation.AnyBlank(in.Username, in.Email, in.Password) {
		return nil, models.NewValidationError("All fields are required")
	}

	user, err := s.userRepo.GetByID(ctx, in.ID)
	if err != nil {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user.Username = in.Username
	user.Email = strings.ToLower(in.Email)
	user.Password = string(hashed)
	if in.ProfilePicture != "" {
		user.ProfilePicture = in.ProfilePicture
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Delete removes an account. Posts and comments of the user are kept;
// their author reference simply stops resolving.
func (s *UserService) Delete(ctx context.Context, id string) error {
	return s.userRepo.Delete(ctx, id)
}

// List returns all users; an empty store is NotFound per the endpoint contract.
func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, models.NewNotFoundError("User", "any")
	}
	return users, nil
}

// ForgotPassword mails the reset link. Delivery is awaited: a failing
// transport fails this call.
func (s *UserService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(email))
	if err != nil {
		return err
	}
	if user == nil {
		return models.NewNotFoundError("User", email)
	}

	resetURL := fmt.Sprintf("%s/user/reset-password/%s", strings.TrimRight(s.frontendURL, "/"), user.ID.Hex())
	msg := mail.PasswordReset(user.Username, user.Email, resetURL)
	if err := s.mailer.Send(ctx, msg); err != nil {
		middleware.MailFailures.WithLabelValues("password_reset").Inc()
		return models.NewInternalError(err)
	}
	return nil
}

// ResetPassword stores a new password hash for the user.
func (s *UserService) ResetPassword(ctx context.Context, userID, password string) error {
	if err := validation.ValidatePassword(password); err != nil {
		return models.NewValidationError(err.Error())
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.NewInternalError(err)
	}
	return s.userRepo.SetPassword(ctx, userID, string(hashed))
}

// ContactAdmin forwards a contact-form submission to the admin by mail.
// Delivery is awaited, like ForgotPassword.
func (s *UserService) ContactAdmin(ctx context.Context, in ContactAdminInput) error {
	admin, err := s.userRepo.GetAdmin(ctx)
	if err != nil {
		return err
	}

	to := s.adminEmail
	if to == "" {
		to = admin.Email
	}
	msg := mail.ContactAdmin(admin.Username, to, in.Name, in.Email, in.Subject, in.Message)
	if err := s.mailer.Send(ctx, msg); err != nil {
		middleware.MailFailures.WithLabelValues("contact_admin").Inc()
		return models.NewInternalError(err)
	}
	return nil
}
