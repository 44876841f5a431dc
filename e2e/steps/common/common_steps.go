package common

import (
	"context"
	"fmt"
	"strconv"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	As(alias string) error
	Anonymous()
	GET(path string) error
	Status() int
	Body() string
	ResponseField(field string) (any, error)
	ResponseList(field string) ([]map[string]any, error)
	SaveField(field, name string) error
}

// RegisterSteps registers generic request and assertion steps
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &commonSteps{tc: tc}

	ctx.Step(`^"([^"]*)" requests "([^"]*)"$`, steps.getAs)
	ctx.Step(`^an anonymous caller requests "([^"]*)"$`, steps.getAnonymous)

	ctx.Step(`^the response status should be (\d+)$`, steps.statusShouldBe)
	ctx.Step(`^the error code should be "([^"]*)"$`, steps.errorCodeShouldBe)
	ctx.Step(`^the response field "([^"]*)" should be "([^"]*)"$`, steps.fieldShouldBe)
	ctx.Step(`^the response field "([^"]*)" should be (\d+)$`, steps.fieldShouldBeNumber)
	ctx.Step(`^the response list "([^"]*)" should have (\d+) entr(?:y|ies)$`, steps.listShouldHave)
	ctx.Step(`^I save the response field "([^"]*)" as "([^"]*)"$`, steps.saveField)
}

type commonSteps struct {
	tc TestContext
}

func (s *commonSteps) getAs(ctx context.Context, alias, path string) error {
	if err := s.tc.As(alias); err != nil {
		return err
	}
	return s.tc.GET(path)
}

func (s *commonSteps) getAnonymous(ctx context.Context, path string) error {
	s.tc.Anonymous()
	return s.tc.GET(path)
}

func (s *commonSteps) statusShouldBe(ctx context.Context, want int) error {
	if got := s.tc.Status(); got != want {
		return fmt.Errorf("expected status %d, got %d: %s", want, got, s.tc.Body())
	}
	return nil
}

func (s *commonSteps) errorCodeShouldBe(ctx context.Context, code string) error {
	return s.fieldShouldBe(ctx, "error", code)
}

func (s *commonSteps) fieldShouldBe(ctx context.Context, field, want string) error {
	v, err := s.tc.ResponseField(field)
	if err != nil {
		return err
	}
	if got := fmt.Sprint(v); got != want {
		return fmt.Errorf("expected %s=%q, got %q", field, want, got)
	}
	return nil
}

func (s *commonSteps) fieldShouldBeNumber(ctx context.Context, field string, want int64) error {
	v, err := s.tc.ResponseField(field)
	if err != nil {
		return err
	}
	f, ok := v.(float64)
	if !ok || int64(f) != want {
		return fmt.Errorf("expected %s=%s, got %v", field, strconv.FormatInt(want, 10), v)
	}
	return nil
}

func (s *commonSteps) listShouldHave(ctx context.Context, field string, n int) error {
	list, err := s.tc.ResponseList(field)
	if err != nil {
		return err
	}
	if len(list) != n {
		return fmt.Errorf("expected %d %s, got %d: %s", n, field, len(list), s.tc.Body())
	}
	return nil
}

func (s *commonSteps) saveField(ctx context.Context, field, name string) error {
	return s.tc.SaveField(field, name)
}
