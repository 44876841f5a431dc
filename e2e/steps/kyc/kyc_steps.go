package kyc

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	AddressOf(alias string) string
	As(alias string) error
	POST(path string, body any) error
	DELETE(path string) error
	Status() int
	Body() string
}

// RegisterSteps registers admin appointment and KYC review steps
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &kycSteps{tc: tc}

	ctx.Step(`^"([^"]*)" appoints "([^"]*)" as regional admin of department (\d+)$`, steps.appointAdmin)
	ctx.Step(`^"([^"]*)" removes regional admin "([^"]*)"$`, steps.removeAdmin)
	ctx.Step(`^"([^"]*)" registers for KYC in department (\d+)$`, steps.register)
	ctx.Step(`^"([^"]*)" registers for KYC aged (\d+)$`, steps.registerAged)
	ctx.Step(`^"([^"]*)" verifies user "([^"]*)"$`, steps.verify)
	ctx.Step(`^"([^"]*)" rejects user "([^"]*)" because "([^"]*)"$`, steps.reject)

	ctx.Step(`^"([^"]*)" is a verified user of department (\d+) reviewed by "([^"]*)"$`, steps.verifiedUser)
}

type kycSteps struct {
	tc TestContext
}

func (s *kycSteps) appointAdmin(ctx context.Context, by, alias string, dept int64) error {
	if err := s.tc.As(by); err != nil {
		return err
	}
	return s.tc.POST("/admins", map[string]any{
		"address":               s.tc.AddressOf(alias),
		"name":                  alias,
		"revenue_department_id": dept,
		"designation":           "Tehsildar",
		"city":                  "Pune",
	})
}

func (s *kycSteps) removeAdmin(ctx context.Context, by, alias string) error {
	if err := s.tc.As(by); err != nil {
		return err
	}
	return s.tc.DELETE("/admins/" + s.tc.AddressOf(alias))
}

func (s *kycSteps) register(ctx context.Context, alias string, dept int64) error {
	return s.submit(alias, 35, dept)
}

func (s *kycSteps) registerAged(ctx context.Context, alias string, age int) error {
	return s.submit(alias, age, 1)
}

func (s *kycSteps) submit(alias string, age int, dept int64) error {
	if err := s.tc.As(alias); err != nil {
		return err
	}
	return s.tc.POST("/users", map[string]any{
		"name":                  alias,
		"age":                   age,
		"city":                  "Pune",
		"government_id":         governmentID(),
		"document_cid":          "bafy-" + alias,
		"email":                 alias + "@example.com",
		"revenue_department_id": dept,
	})
}

func (s *kycSteps) verify(ctx context.Context, admin, alias string) error {
	if err := s.tc.As(admin); err != nil {
		return err
	}
	return s.tc.POST("/users/"+s.tc.AddressOf(alias)+"/verify", nil)
}

func (s *kycSteps) reject(ctx context.Context, admin, alias, reason string) error {
	if err := s.tc.As(admin); err != nil {
		return err
	}
	return s.tc.POST("/users/"+s.tc.AddressOf(alias)+"/reject", map[string]any{"reason": reason})
}

func (s *kycSteps) verifiedUser(ctx context.Context, alias string, dept int64, admin string) error {
	if err := s.register(ctx, alias, dept); err != nil {
		return err
	}
	if s.tc.Status() != 201 {
		return fmt.Errorf("register %s: %s", alias, s.tc.Body())
	}
	if err := s.verify(ctx, admin, alias); err != nil {
		return err
	}
	if s.tc.Status() != 200 {
		return fmt.Errorf("verify %s: %s", alias, s.tc.Body())
	}
	return nil
}

func governmentID() string {
	n, _ := rand.Int(rand.Reader, big.NewInt(899_999_999_999))
	return fmt.Sprintf("%012d", n.Int64()+100_000_000_000)
}
