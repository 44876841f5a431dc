package market

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	AddressOf(alias string) string
	As(alias string) error
	POST(path string, body any) error
	GET(path string) error
	Status() int
	Body() string
	SaveField(field, name string) error
	Saved(name string) (int64, error)
	ResponseField(field string) (any, error)
}

// RegisterSteps registers property and sale lifecycle steps
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &marketSteps{tc: tc}

	ctx.Step(`^"([^"]*)" registers a property in department (\d+) worth (\d+)$`, steps.registerProperty)
	ctx.Step(`^"([^"]*)" verifies the property$`, steps.verifyProperty)
	ctx.Step(`^"([^"]*)" owns a verified property in department (\d+) reviewed by "([^"]*)"$`, steps.ownsVerifiedProperty)
	ctx.Step(`^"([^"]*)" looks up the property$`, steps.getProperty)
	ctx.Step(`^the property should be owned by "([^"]*)"$`, steps.ownedBy)

	ctx.Step(`^"([^"]*)" puts the property on sale for (\d+)$`, steps.putOnSale)
	ctx.Step(`^"([^"]*)" cancels the sale$`, steps.cancelSale)
	ctx.Step(`^"([^"]*)" offers (\d+) for the sale$`, steps.offer)
	ctx.Step(`^"([^"]*)" accepts the offer$`, steps.accept)
	ctx.Step(`^"([^"]*)" rejects the offer$`, steps.reject)
	ctx.Step(`^"([^"]*)" withdraws the offer$`, steps.withdraw)
	ctx.Step(`^"([^"]*)" pays (\d+) for the offer$`, steps.pay)
	ctx.Step(`^"([^"]*)" transfers ownership for the sale$`, steps.transfer)
	ctx.Step(`^"([^"]*)" looks up the sale$`, steps.getSale)
}

type marketSteps struct {
	tc TestContext
}

func (s *marketSteps) registerProperty(ctx context.Context, alias string, dept, value int64) error {
	if err := s.tc.As(alias); err != nil {
		return err
	}
	if err := s.tc.POST("/properties", map[string]any{
		"revenue_department_id": dept,
		"location_id":           42,
		"survey_number":         "118/2B",
		"area":                  1500,
		"market_value":          value,
		"document_cid":          "bafy-deed",
	}); err != nil {
		return err
	}
	if s.tc.Status() == 201 {
		return s.tc.SaveField("property_id", "property")
	}
	return nil
}

func (s *marketSteps) verifyProperty(ctx context.Context, admin string) error {
	return s.onSaved(admin, "property", "/properties/%d/verify", nil)
}

func (s *marketSteps) ownsVerifiedProperty(ctx context.Context, alias string, dept int64, admin string) error {
	if err := s.registerProperty(ctx, alias, dept, 90_000); err != nil {
		return err
	}
	if s.tc.Status() != 201 {
		return fmt.Errorf("register property: %s", s.tc.Body())
	}
	if err := s.verifyProperty(ctx, admin); err != nil {
		return err
	}
	if s.tc.Status() != 200 {
		return fmt.Errorf("verify property: %s", s.tc.Body())
	}
	return nil
}

func (s *marketSteps) getProperty(ctx context.Context, alias string) error {
	return s.getSaved(alias, "property", "/properties/%d")
}

func (s *marketSteps) ownedBy(ctx context.Context, alias string) error {
	v, err := s.tc.ResponseField("owner")
	if err != nil {
		return err
	}
	if want := s.tc.AddressOf(alias); v != want {
		return fmt.Errorf("expected owner %s (%s), got %v", alias, want, v)
	}
	return nil
}

func (s *marketSteps) putOnSale(ctx context.Context, alias string, price int64) error {
	id, err := s.tc.Saved("property")
	if err != nil {
		return err
	}
	if err := s.tc.As(alias); err != nil {
		return err
	}
	if err := s.tc.POST("/sales", map[string]any{"property_id": id, "price": price}); err != nil {
		return err
	}
	if s.tc.Status() == 201 {
		return s.tc.SaveField("sale_id", "sale")
	}
	return nil
}

func (s *marketSteps) cancelSale(ctx context.Context, alias string) error {
	return s.onSaved(alias, "sale", "/sales/%d/cancel", nil)
}

func (s *marketSteps) offer(ctx context.Context, alias string, price int64) error {
	if err := s.onSaved(alias, "sale", "/sales/%d/requests", map[string]any{"offered_price": price}); err != nil {
		return err
	}
	if s.tc.Status() == 201 {
		return s.tc.SaveField("request_id", "request")
	}
	return nil
}

func (s *marketSteps) accept(ctx context.Context, alias string) error {
	return s.onSaved(alias, "request", "/requests/%d/accept", nil)
}

func (s *marketSteps) reject(ctx context.Context, alias string) error {
	return s.onSaved(alias, "request", "/requests/%d/reject", nil)
}

func (s *marketSteps) withdraw(ctx context.Context, alias string) error {
	return s.onSaved(alias, "request", "/requests/%d/cancel", nil)
}

func (s *marketSteps) pay(ctx context.Context, alias string, amount int64) error {
	return s.onSaved(alias, "request", "/requests/%d/payment", map[string]any{"amount": amount})
}

func (s *marketSteps) transfer(ctx context.Context, admin string) error {
	return s.onSaved(admin, "sale", "/sales/%d/transfer", nil)
}

func (s *marketSteps) getSale(ctx context.Context, alias string) error {
	return s.getSaved(alias, "sale", "/sales/%d")
}

func (s *marketSteps) onSaved(alias, name, pathFmt string, body any) error {
	id, err := s.tc.Saved(name)
	if err != nil {
		return err
	}
	if err := s.tc.As(alias); err != nil {
		return err
	}
	return s.tc.POST(fmt.Sprintf(pathFmt, id), body)
}

func (s *marketSteps) getSaved(alias, name, pathFmt string) error {
	id, err := s.tc.Saved(name)
	if err != nil {
		return err
	}
	if err := s.tc.As(alias); err != nil {
		return err
	}
	return s.tc.GET(fmt.Sprintf(pathFmt, id))
}
