package user

import (
	"errors"
	"net/mail"
	"strconv"
	"time"

	"github.com/uzimahq/uzima/core"
	"github.com/uzimahq/uzima/core/audit"
)

var (
	// errors
	ErrNotFound       = errors.New("user not found")
	ErrEmailExists    = errors.New("a user with this email already exists")
	ErrUsernameExists = errors.New("a user with this username already exists")
)

type (
	Repository interface {
		CheckUsernameUniqueness(username, email string, excludedUsers ...User) error
		CreateUser(usr User) (User, error)
		QueryAllUsers() ([]User, error)
		GetUserByID(id int) (User, error)
		GetUserByUsername(username string) (User, error)
		GetUserByEmail(email string) (User, error)
		GetUserByUsernameOrEmail(username string) (User, error)
		// FilterUsers applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on one of User.Name,
		// User.Username or User.Email.
		FilterUsers(filter QueryFilter) ([]User, error)
		UpdateUser(usr User, isActive *bool) (User, error)
		UpdateLastLogin(id int, t time.Time) (User, error)
		DeleteUsersByID(ids ...int) error
	}

	Service struct {
		repo    Repository
		mailSvc core.EmailService
		audit   audit.Recorder
		nowFunc func() time.Time // mockable
	}
)

func NewService(repo Repository, mailSvc core.EmailService, rec audit.Recorder) *Service {
	return &Service{repo: repo, mailSvc: mailSvc, audit: rec, nowFunc: time.Now}
}

func (svc *Service) CheckUniqueness(uname, email string, exclUsers ...User) error {
	if err := svc.repo.CheckUsernameUniqueness(uname, email, exclUsers...); err != nil {
		var field string
		switch err {
		case ErrUsernameExists:
			field = "username"
		case ErrEmailExists:
			field = "email"
		default:
			return err
		}
		return core.NewValidationError(err, core.FieldError{Field: field, Error: err.Error()})
	}
	return nil
}

func (svc *Service) Create(actorID int, nu NewUser) (User, error) {
	now := svc.nowFunc().UTC()
	usr := User{
		Name:      nu.Name,
		Username:  nu.Username,
		Email:     nu.Email,
		IsActive:  true,
		Roles:     nu.Roles,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if nu.DepartmentID > 0 {
		usr.DepartmentID.SetValid(nu.DepartmentID)
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, err
	}

	usr, err := svc.repo.CreateUser(usr)
	if err != nil {
		return User{}, err
	}
	svc.audit.Record(actorID, audit.ActionCreated, audit.KindUser, strconv.Itoa(usr.ID), usr.Username)

	if usr.Email != "" {
		svc.mailSvc.SendMessages(&core.EmailMessage{
			To:           []mail.Address{{Name: usr.Name, Address: usr.Email}},
			Subject:      "Welcome to Uzima",
			TemplateName: "welcome",
			TemplateData: struct{ Name string }{Name: usr.Name},
		})
	}
	return usr, nil
}

func (svc *Service) QueryAll() ([]User, error) {
	return svc.repo.QueryAllUsers()
}

func (svc *Service) GetByID(id int) (User, error) {
	return svc.repo.GetUserByID(id)
}

func (svc *Service) GetByUsername(uname string) (User, error) {
	return svc.repo.GetUserByUsername(core.CleanString(uname, true /* lower */))
}

func (svc *Service) GetByEmail(email string) (User, error) {
	return svc.repo.GetUserByEmail(core.CleanString(email, true /* lower */))
}

func (svc *Service) GetByUsernameOrEmail(uname string) (User, error) {
	return svc.repo.GetUserByUsernameOrEmail(core.CleanString(uname, true /* lower */))
}

func (svc *Service) Filter(filter QueryFilter) ([]User, error) {
	return svc.repo.FilterUsers(filter)
}

func (svc *Service) SetLastLogin(usr User) (User, error) {
	return svc.repo.UpdateLastLogin(usr.ID, svc.nowFunc().UTC())
}

func (svc *Service) Update(actorID, id int, uu UpdateUser) (User, error) {
	usr := User{
		ID:        id,
		Name:      uu.Name,
		Username:  uu.Username,
		Email:     uu.Email,
		Roles:     uu.Roles,
		UpdatedAt: svc.nowFunc().UTC(),
	}
	if uu.DepartmentID > 0 {
		usr.DepartmentID.SetValid(uu.DepartmentID)
	}
	if uu.Password != "" {
		if err := usr.SetPassword(uu.Password); err != nil {
			return User{}, err
		}
	}

	usr, err := svc.repo.UpdateUser(usr, uu.IsActive)
	if err != nil {
		return User{}, err
	}
	svc.audit.Record(actorID, audit.ActionUpdated, audit.KindUser, strconv.Itoa(usr.ID), usr.Username)
	return usr, nil
}

func (svc *Service) Delete(actorID int, ids ...int) error {
	if err := svc.repo.DeleteUsersByID(ids...); err != nil {
		return err
	}
	for _, id := range ids {
		svc.audit.Record(actorID, audit.ActionDeleted, audit.KindUser, strconv.Itoa(id), "")
	}
	return nil
}

// RequestPasswordReset emails a reset link to the account with the given
// email, if an active one exists.
func (svc *Service) RequestPasswordReset(email string) error {
	usr, err := svc.GetByEmail(email)
	if err != nil {
		return err
	}
	if !usr.IsActive {
		return ErrNotFound
	}

	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject:      "Password reset",
		TemplateName: "password-reset",
		TemplateData: struct {
			Name  string
			UID   string
			Token string
		}{Name: usr.Name, UID: EncodeUID(usr), Token: makeToken(usr)},
	})
	return nil
}

// ResetPassword sets a new password after verifying the reset token.
func (svc *Service) ResetPassword(rp ResetUserPassword) error {
	id, err := decodeUID(rp.UID)
	if err != nil {
		return core.NewValidationError(errInvalidToken)
	}
	usr, err := svc.GetByID(id)
	if err != nil {
		if err == ErrNotFound {
			return core.NewValidationError(errInvalidToken)
		}
		return err
	}
	if err = verifyToken(usr, rp.Token); err != nil {
		return core.NewValidationError(err)
	}

	if err = usr.SetPassword(rp.Password); err != nil {
		return err
	}
	usr.UpdatedAt = svc.nowFunc().UTC()
	_, err = svc.repo.UpdateUser(usr, nil)
	return err
}
