package user

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/escondite/core"
)

var (
	// errors
	ErrNotFound           = errors.New("user not found")
	ErrUsernameExists     = errors.New("a user with this username already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrLastAdmin          = errors.New("cannot remove the last admin")
)

type (
	Repository interface {
		CheckUsernameUniqueness(ctx context.Context, username string, excludedIDs ...int) error
		CreateUser(ctx context.Context, usr User) (User, error)
		// QueryUsers applies AND operation on available QueryFilter fields.
		QueryUsers(ctx context.Context, filter QueryFilter) ([]User, error)
		GetUserByID(ctx context.Context, id int) (User, error)
		GetUserByUsername(ctx context.Context, username string) (User, error)
		CountUsersByRole(ctx context.Context, role string) (int, error)
		UpdateUser(ctx context.Context, usr User) (User, error)
		DeleteUser(ctx context.Context, id int) error
	}

	Service struct {
		repo   Repository
		logger core.Logger
	}
)

func NewService(repo Repository, logger core.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (svc *Service) checkUniqueness(ctx context.Context, uname string, excludedIDs ...int) error {
	if err := svc.repo.CheckUsernameUniqueness(ctx, uname, excludedIDs...); err != nil {
		if errors.Is(err, ErrUsernameExists) {
			return core.NewValidationError(err, core.FieldError{Field: "username", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, nu NewUser) (User, error) {
	nu.clean()
	if err := core.ValidateStruct(nu); err != nil {
		return User{}, err
	}
	if err := svc.checkUniqueness(ctx, nu.Username); err != nil {
		return User{}, err
	}

	usr := User{Username: nu.Username, Role: nu.Role}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, errors.Wrap(err, "hashing password")
	}
	usr, err := svc.repo.CreateUser(ctx, usr)
	if err != nil {
		return User{}, errors.Wrap(err, "creating user")
	}
	svc.logger.Info("user created", "user_id", usr.ID, "username", usr.Username, "role", usr.Role)
	return usr, nil
}

func (svc *Service) QueryAll(ctx context.Context, filter QueryFilter) ([]User, error) {
	filter.Search = core.CleanString(filter.Search, true /* lower */)
	filter.Role = core.CleanString(filter.Role, true /* lower */)
	return svc.repo.QueryUsers(ctx, filter)
}

func (svc *Service) GetByID(ctx context.Context, id int) (User, error) {
	return svc.repo.GetUserByID(ctx, id)
}

func (svc *Service) GetByUsername(ctx context.Context, uname string) (User, error) {
	return svc.repo.GetUserByUsername(ctx, core.CleanString(uname, true /* lower */))
}

func (svc *Service) Update(ctx context.Context, id int, uu UpdateUser) (User, error) {
	orig, err := svc.repo.GetUserByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	uu.clean(orig)
	if err = core.ValidateStruct(uu); err != nil {
		return User{}, err
	}
	if err = svc.checkUniqueness(ctx, uu.Username, orig.ID); err != nil {
		return User{}, err
	}
	if orig.IsAdmin() && uu.Role != RoleAdmin {
		if err = svc.checkNotLastAdmin(ctx); err != nil {
			return User{}, err
		}
	}

	usr := orig
	usr.Username = uu.Username
	usr.Role = uu.Role
	if usr, err = svc.repo.UpdateUser(ctx, usr); err != nil {
		return User{}, errors.Wrap(err, "updating user")
	}
	svc.logger.Info("user updated", "user_id", usr.ID, "username", usr.Username, "role", usr.Role)
	return usr, nil
}

func (svc *Service) SetPassword(ctx context.Context, sp SetUserPassword) error {
	usr, err := svc.GetByUsername(ctx, sp.Username)
	if err != nil {
		return err
	}
	sp.Username = usr.Username
	if err = core.ValidateStruct(sp); err != nil {
		return err
	}
	if err = usr.SetPassword(sp.Password); err != nil {
		return errors.Wrap(err, "hashing password")
	}
	if _, err = svc.repo.UpdateUser(ctx, usr); err != nil {
		return errors.Wrap(err, "updating password")
	}
	svc.logger.Info("password changed", "user_id", usr.ID, "username", usr.Username)
	return nil
}

func (svc *Service) Delete(ctx context.Context, uname string) error {
	usr, err := svc.GetByUsername(ctx, uname)
	if err != nil {
		return err
	}
	if usr.IsAdmin() {
		if err = svc.checkNotLastAdmin(ctx); err != nil {
			return err
		}
	}
	if err = svc.repo.DeleteUser(ctx, usr.ID); err != nil {
		return err
	}
	svc.logger.Info("user deleted", "user_id", usr.ID, "username", usr.Username)
	return nil
}

func (svc *Service) checkNotLastAdmin(ctx context.Context) error {
	n, err := svc.repo.CountUsersByRole(ctx, RoleAdmin)
	if err != nil {
		return errors.Wrap(err, "counting admins")
	}
	if n <= 1 {
		return ErrLastAdmin
	}
	return nil
}

// EnsureAdmin creates the default admin account unless it already exists.
// It reports whether the account was created.
func (svc *Service) EnsureAdmin(ctx context.Context, password string) (bool, error) {
	if _, err := svc.repo.GetUserByUsername(ctx, DefaultAdminUsername); err == nil {
		return false, nil
	} else if !errors.Is(err, ErrNotFound) {
		return false, err
	}
	_, err := svc.Create(ctx, NewUser{
		Username:        DefaultAdminUsername,
		Password:        password,
		PasswordConfirm: password,
		Role:            RoleAdmin,
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

// Authenticate returns the user matching the credentials, or ErrInvalidCredentials.
func (svc *Service) Authenticate(ctx context.Context, uname, password string) (User, error) {
	usr, err := svc.GetByUsername(ctx, uname)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, ErrInvalidCredentials
		}
		return User{}, err
	}
	if err = usr.CheckPassword(password); err != nil {
		return User{}, ErrInvalidCredentials
	}
	return usr, nil
}
