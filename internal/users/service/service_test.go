package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks UserStore,AdminStore,AuditPublisher

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"landregistry/internal/platform/metrics"
	"landregistry/internal/users/models"
	"landregistry/internal/users/service/mocks"
	"landregistry/internal/users/store"
	"landregistry/pkg/domain"
	dErrors "landregistry/pkg/domain-errors"
	audit "landregistry/pkg/platform/audit"
	auditmemory "landregistry/pkg/platform/audit/store/memory"
	"landregistry/pkg/platform/sentinel"
	"landregistry/pkg/platform/tx"
	"landregistry/pkg/requestcontext"
)

var (
	mainAdmin = domain.MustAddress("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	admin7    = domain.MustAddress("0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")
	admin9    = domain.MustAddress("0xcccccccccccccccccccccccccccccccccccccccc")
	citizen   = domain.MustAddress("0x1111111111111111111111111111111111111111")
)

func validRegistration() models.Registration {
	return models.Registration{
		Name:         "Asha Patil",
		Age:          34,
		City:         "Pune",
		GovernmentID: "123456789012",
		DocumentCID:  "bafybeigdyrzt5sfp7udm7hu76uh7y26nf3efuylqabf3oclgtqy55fbzdi",
		Email:        "asha@example.com",
		DepartmentID: 7,
	}
}

// UserServiceSuite exercises the registry against the in-memory stores.
type UserServiceSuite struct {
	suite.Suite
	ctx        context.Context
	auditStore *auditmemory.InMemoryStore
	metrics    *metrics.Metrics
	svc        *Service
}

func TestUserServiceSuite(t *testing.T) {
	suite.Run(t, new(UserServiceSuite))
}

func (s *UserServiceSuite) SetupTest() {
	s.ctx = requestcontext.WithTime(context.Background(), time.Date(2026, 4, 2, 8, 0, 0, 0, time.UTC))
	s.auditStore = auditmemory.NewInMemoryStore()
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.svc = New(store.NewInMemoryUsers(), store.NewInMemoryAdmins(), tx.NewMemoryRunner(), mainAdmin,
		WithAuditPublisher(audit.NewPublisher(s.auditStore)),
		WithMetrics(s.metrics),
	)
	_, err := s.svc.AddRegionalAdmin(s.ctx, mainAdmin, NewAdmin{
		Address: admin7, Name: "Ravi", DepartmentID: 7, Designation: "Tehsildar", City: "Pune",
	})
	s.Require().NoError(err)
	_, err = s.svc.AddRegionalAdmin(s.ctx, mainAdmin, NewAdmin{
		Address: admin9, Name: "Meera", DepartmentID: 9, Designation: "Tehsildar", City: "Nashik",
	})
	s.Require().NoError(err)
}

func (s *UserServiceSuite) TestRegisterUser() {
	s.Run("new registration is pending", func() {
		u, err := s.svc.RegisterUser(s.ctx, citizen, validRegistration())
		s.Require().NoError(err)
		s.Equal(models.StatusPending, u.Status)
		s.Equal(1.0, testutil.ToFloat64(s.metrics.UsersRegistered))
		s.Contains(s.auditStore.Actions(), string(audit.EventUserRegistered))
	})

	s.Run("second registration conflicts", func() {
		_, err := s.svc.RegisterUser(s.ctx, citizen, validRegistration())
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("admins cannot register", func() {
		_, err := s.svc.RegisterUser(s.ctx, admin7, validRegistration())
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
		_, err = s.svc.RegisterUser(s.ctx, mainAdmin, validRegistration())
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("invalid fields are validation errors", func() {
		other := domain.MustAddress("0x2222222222222222222222222222222222222222")
		cases := map[string]func(r *models.Registration){
			"minor":        func(r *models.Registration) { r.Age = 17 },
			"short gov id": func(r *models.Registration) { r.GovernmentID = "12345" },
			"letters":      func(r *models.Registration) { r.GovernmentID = "12345678901A" },
			"no city":      func(r *models.Registration) { r.City = "" },
			"no dept":      func(r *models.Registration) { r.DepartmentID = 0 },
		}
		for name, mutate := range cases {
			reg := validRegistration()
			mutate(&reg)
			_, err := s.svc.RegisterUser(s.ctx, other, reg)
			s.True(dErrors.HasCode(err, dErrors.CodeValidation), name)
		}
	})
}

func (s *UserServiceSuite) TestReview() {
	_, err := s.svc.RegisterUser(s.ctx, citizen, validRegistration())
	s.Require().NoError(err)

	s.Run("admin of another department is forbidden", func() {
		_, err := s.svc.VerifyUser(s.ctx, admin9, citizen)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("non-admin is forbidden", func() {
		_, err := s.svc.VerifyUser(s.ctx, citizen, citizen)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("rejection needs a reason", func() {
		_, err := s.svc.RejectUser(s.ctx, admin7, citizen, "")
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("rejected user can resubmit and be verified", func() {
		u, err := s.svc.RejectUser(s.ctx, admin7, citizen, "document unreadable")
		s.Require().NoError(err)
		s.Equal(models.StatusRejected, u.Status)
		s.Equal("document unreadable", u.RejectionReason)

		reg := validRegistration()
		reg.DocumentCID = "bafy-new-scan"
		u, err = s.svc.RegisterUser(s.ctx, citizen, reg)
		s.Require().NoError(err)
		s.Equal(models.StatusPending, u.Status)
		s.Empty(u.RejectionReason)

		u, err = s.svc.VerifyUser(s.ctx, admin7, citizen)
		s.Require().NoError(err)
		s.Equal(models.StatusVerified, u.Status)
		s.Equal(admin7, u.VerifiedBy)
		s.NotNil(u.ReviewedAt)

		verified, err := s.svc.IsVerified(s.ctx, citizen)
		s.Require().NoError(err)
		s.True(verified)
	})

	s.Run("verified user cannot be reviewed again", func() {
		_, err := s.svc.RejectUser(s.ctx, admin7, citizen, "late change of mind")
		s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	s.Run("verified user cannot resubmit", func() {
		_, err := s.svc.RegisterUser(s.ctx, citizen, validRegistration())
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})
}

func (s *UserServiceSuite) TestRegionalAdmins() {
	s.Run("only the main admin may appoint", func() {
		_, err := s.svc.AddRegionalAdmin(s.ctx, admin7, NewAdmin{
			Address: citizen, Name: "X", DepartmentID: 7, Designation: "Clerk", City: "Pune",
		})
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("registered users cannot be appointed", func() {
		_, err := s.svc.RegisterUser(s.ctx, citizen, validRegistration())
		s.Require().NoError(err)
		_, err = s.svc.AddRegionalAdmin(s.ctx, mainAdmin, NewAdmin{
			Address: citizen, Name: "X", DepartmentID: 7, Designation: "Clerk", City: "Pune",
		})
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("duplicate admin conflicts", func() {
		_, err := s.svc.AddRegionalAdmin(s.ctx, mainAdmin, NewAdmin{
			Address: admin7, Name: "Ravi", DepartmentID: 7, Designation: "Tehsildar", City: "Pune",
		})
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("list is ordered by department", func() {
		admins, err := s.svc.ListRegionalAdmins(s.ctx)
		s.Require().NoError(err)
		s.Require().Len(admins, 2)
		s.Equal(admin7, admins[0].Address)
		s.Equal(admin9, admins[1].Address)
	})

	s.Run("removal demotes to unregistered", func() {
		s.Require().NoError(s.svc.RemoveRegionalAdmin(s.ctx, mainAdmin, admin9))
		role, err := s.svc.Role(s.ctx, admin9)
		s.Require().NoError(err)
		s.Equal(models.RoleUnregistered, role)

		err = s.svc.RemoveRegionalAdmin(s.ctx, mainAdmin, admin9)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *UserServiceSuite) TestQueries() {
	_, err := s.svc.RegisterUser(s.ctx, citizen, validRegistration())
	s.Require().NoError(err)

	s.Run("roles", func() {
		for addr, want := range map[domain.Address]models.Role{
			mainAdmin: models.RoleMainAdmin,
			admin7:    models.RoleRegionalAdmin,
			citizen:   models.RoleUser,
			domain.MustAddress("0x3333333333333333333333333333333333333333"): models.RoleUnregistered,
		} {
			role, err := s.svc.Role(s.ctx, addr)
			s.Require().NoError(err)
			s.Equal(want, role, addr.String())
		}
	})

	s.Run("admin lists own department filtered by status", func() {
		pending, err := s.svc.ListUsersByDepartment(s.ctx, admin7, models.StatusPending)
		s.Require().NoError(err)
		s.Len(pending, 1)

		verified, err := s.svc.ListUsersByDepartment(s.ctx, admin7, models.StatusVerified)
		s.Require().NoError(err)
		s.Empty(verified)

		other, err := s.svc.ListUsersByDepartment(s.ctx, admin9, "")
		s.Require().NoError(err)
		s.Empty(other)
	})

	s.Run("get user visibility", func() {
		_, err := s.svc.GetUser(s.ctx, citizen, citizen)
		s.NoError(err)
		_, err = s.svc.GetUser(s.ctx, admin7, citizen)
		s.NoError(err)
		_, err = s.svc.GetUser(s.ctx, mainAdmin, citizen)
		s.NoError(err)
		_, err = s.svc.GetUser(s.ctx, admin9, citizen)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})
}

// UserServiceMockSuite covers failure paths that need a misbehaving port.
type UserServiceMockSuite struct {
	suite.Suite
	ctrl   *gomock.Controller
	users  *mocks.MockUserStore
	admins *mocks.MockAdminStore
	audit  *mocks.MockAuditPublisher
	svc    *Service
}

func TestUserServiceMockSuite(t *testing.T) {
	suite.Run(t, new(UserServiceMockSuite))
}

func (s *UserServiceMockSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.users = mocks.NewMockUserStore(s.ctrl)
	s.admins = mocks.NewMockAdminStore(s.ctrl)
	s.audit = mocks.NewMockAuditPublisher(s.ctrl)
	s.svc = New(s.users, s.admins, tx.NewMemoryRunner(), mainAdmin, WithAuditPublisher(s.audit))
}

func (s *UserServiceMockSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *UserServiceMockSuite) TestAuditFailureFailsRegistration() {
	s.admins.EXPECT().FindByAddress(gomock.Any(), citizen).Return(nil, sentinel.ErrNotFound)
	s.users.EXPECT().FindByAddress(gomock.Any(), citizen).Return(nil, sentinel.ErrNotFound)
	s.users.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
	s.audit.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(errors.New("outbox unavailable"))

	_, err := s.svc.RegisterUser(context.Background(), citizen, validRegistration())
	s.Require().Error(err)
	s.Contains(err.Error(), "outbox unavailable")
}

func (s *UserServiceMockSuite) TestStoreFailureIsInternal() {
	s.admins.EXPECT().FindByAddress(gomock.Any(), citizen).Return(nil, errors.New("connection reset"))

	_, err := s.svc.RegisterUser(context.Background(), citizen, validRegistration())
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}

func (s *UserServiceMockSuite) TestReviewEmitsDecision() {
	s.admins.EXPECT().FindByAddress(gomock.Any(), admin7).
		Return(&models.RegionalAdmin{Address: admin7, DepartmentID: 7}, nil)
	s.users.EXPECT().Execute(gomock.Any(), citizen, gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ domain.Address, validate func(*models.User) error, mutate func(*models.User)) (*models.User, error) {
			u := &models.User{Address: citizen, Registration: validRegistration(), Status: models.StatusPending}
			if err := validate(u); err != nil {
				return nil, err
			}
			mutate(u)
			return u, nil
		})
	s.audit.EXPECT().Emit(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, e audit.Event) error {
			s.Equal(string(audit.EventUserVerified), e.Action)
			s.Equal("verified", e.Decision)
			s.Equal(admin7, e.Actor)
			return nil
		})

	u, err := s.svc.VerifyUser(context.Background(), admin7, citizen)
	s.Require().NoError(err)
	s.Equal(models.StatusVerified, u.Status)
}
